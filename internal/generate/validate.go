package generate

import (
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	ErrNoPassages  = errors.New("no passages to answer from")
	ErrEmptyAnswer = errors.New("empty answer")
	ErrNoAnswer    = errors.New("passages do not contain the answer")
	ErrLeakyAnswer = errors.New("answer talks about the prompt instead of the document")
)

// MaxAnswerRunes bounds a generated answer; longer replies are cut at a word
// boundary.
const MaxAnswerRunes = 2000

var codeBlockRe = regexp.MustCompile("(?s)^```(?:\\w+)?\\s*(.*?)\\s*```$")

var leakPattern = regexp.MustCompile(
	`(?i)(system\s*prompt|sistem\s+talimat|\[bölüm\s+\d+\]|` +
		`as\s+an\s+ai|bir\s+yapay\s+zeka\s+olarak|ignore\s+(previous|all|above))`,
)

// ValidateAnswer cleans a model reply and rejects replies that cannot be
// shown to the user as an answer.
func ValidateAnswer(text string) (string, error) {
	text = stripCodeBlock(text)
	text = strings.TrimPrefix(text, "Yanıt:")
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptyAnswer
	}
	if strings.Contains(text, NoAnswerMarker) {
		return "", ErrNoAnswer
	}
	if leakPattern.MatchString(text) {
		return "", ErrLeakyAnswer
	}
	if utf8.RuneCountInString(text) > MaxAnswerRunes {
		r := []rune(text)[:MaxAnswerRunes]
		cut := string(r)
		if i := strings.LastIndexAny(cut, " \n"); i > len(cut)/2 {
			cut = cut[:i]
		}
		text = strings.TrimSpace(cut) + "..."
	}
	return text, nil
}

func stripCodeBlock(s string) string {
	s = strings.TrimSpace(s)
	if m := codeBlockRe.FindStringSubmatch(s); len(m) > 1 {
		return m[1]
	}
	return s
}
