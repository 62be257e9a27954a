package segment

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MinSentenceRunes is the shortest sentence SplitSentences keeps.
const MinSentenceRunes = 5

// placeholder temporarily replaces periods that must not end a sentence.
const placeholder = "\uE000"

// Digit-dot sequences that are not sentence ends: decimals and thousands
// ("3.5", "1.000") and ordinals followed by a lowercase word ("5. madde").
var (
	decimalDot = regexp.MustCompile(`\d\.\d`)
	ordinalDot = regexp.MustCompile(`\d\.\s+\p{Ll}`)
)

type guards struct {
	abbrev *regexp.Regexp // nil when the pack has no abbreviations
}

func newGuards(abbreviations []string) *guards {
	words := make([]string, 0, len(abbreviations))
	for _, a := range abbreviations {
		if a = strings.TrimSpace(a); a != "" {
			words = append(words, regexp.QuoteMeta(a))
		}
	}
	if len(words) == 0 {
		return &guards{}
	}
	// Longer alternatives first so "prof" wins over "p".
	sort.SliceStable(words, func(i, j int) bool { return len(words[i]) > len(words[j]) })
	expr := `(?i)(?:^|[^\p{L}\p{N}])(?:` + strings.Join(words, "|") + `)\.`
	return &guards{abbrev: regexp.MustCompile(expr)}
}

func (g *guards) protect(text string) string {
	hide := func(m string) string { return strings.ReplaceAll(m, ".", placeholder) }
	if g.abbrev != nil {
		text = g.abbrev.ReplaceAllStringFunc(text, hide)
	}
	// Overlapping matches ("1.2.3") need a second pass.
	for range 2 {
		text = decimalDot.ReplaceAllStringFunc(text, hide)
	}
	text = ordinalDot.ReplaceAllStringFunc(text, hide)
	return text
}

func restore(text string) string {
	return strings.ReplaceAll(text, placeholder, ".")
}

// SplitSentences splits text after runs of terminal punctuation that are
// followed by whitespace, leaving abbreviations and digit-dot sequences
// intact. Sentences shorter than MinSentenceRunes are dropped.
func (s *Segmenter) SplitSentences(text string) []Sentence {
	protected := s.guards.protect(text)

	var raw []string
	var current strings.Builder
	prevTerminal := false
	for _, r := range protected {
		if prevTerminal && unicode.IsSpace(r) {
			raw = append(raw, current.String())
			current.Reset()
			prevTerminal = false
			continue
		}
		current.WriteRune(r)
		prevTerminal = isTerminal(r)
	}
	if current.Len() > 0 {
		raw = append(raw, current.String())
	}

	var sentences []Sentence
	for _, part := range raw {
		part = strings.TrimSpace(restore(part))
		if utf8.RuneCountInString(part) < MinSentenceRunes {
			continue
		}
		sentences = append(sentences, Sentence{Text: part, Index: len(sentences)})
	}
	return sentences
}
