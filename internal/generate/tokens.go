package generate

import "strings"

// DefaultMaxPromptTokens bounds the passage text sent with one question.
const DefaultMaxPromptTokens = 6000

// tokensPerTenWords is the rough tokenizer ratio for Turkish text.
const tokensPerTenWords = 16

// EstimateTokens gives a rough token count from the word count.
func EstimateTokens(text string) int {
	if text == "" {
		return 0
	}
	words := len(strings.Fields(text))
	tokens := words * tokensPerTenWords / 10
	if tokens < 1 {
		tokens = 1
	}
	return tokens
}

// FitPassages keeps passages in order until the token budget is spent. The
// passage that crosses the budget is cut at a word boundary; later ones are
// dropped. The first passage always contributes at least one word.
func FitPassages(passages []string, maxTokens int) []string {
	if maxTokens <= 0 {
		return passages
	}
	out := make([]string, 0, len(passages))
	remaining := maxTokens
	for _, p := range passages {
		cost := EstimateTokens(p)
		if cost <= remaining {
			out = append(out, p)
			remaining -= cost
			continue
		}
		words := strings.Fields(p)
		keep := remaining * 10 / tokensPerTenWords
		if len(out) == 0 && keep < 1 {
			keep = 1
		}
		if keep > 0 {
			out = append(out, strings.Join(words[:min(keep, len(words))], " "))
		}
		break
	}
	return out
}
