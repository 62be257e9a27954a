// Package segment splits raw document text into heading-aware sections and
// splits any block of text into sentences.
package segment

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dgallion1/docqa/internal/lang"
	"github.com/dgallion1/docqa/internal/textnorm"
)

const (
	// ShortHeadingRunes is the length under which a lone line without
	// terminal punctuation is treated as a heading.
	ShortHeadingRunes = 60
	// MaxTitleCaseWords bounds the "every word capitalized" heading rule.
	MaxTitleCaseWords = 10
)

// Section is a contiguous span of the document.
type Section struct {
	Text      string
	WordCount int
	Index     int // Origin order within the document.
}

// Sentence is a span within a block of text.
type Sentence struct {
	Text  string
	Index int // Origin order within the block.
}

// Segmenter is safe for concurrent use.
type Segmenter struct {
	norm   *textnorm.Normalizer
	guards *guards
}

func New(pack *lang.Pack) *Segmenter {
	if pack == nil {
		pack = lang.Turkish()
	}
	return &Segmenter{
		norm:   textnorm.New(pack),
		guards: newGuards(pack.Abbreviations),
	}
}

// SplitSections splits text on blank lines and merges consecutive chunks into
// one section until a chunk starting with a heading-like line opens the next.
func (s *Segmenter) SplitSections(text string) []Section {
	var sections []Section
	var current []string

	flush := func() {
		if len(current) == 0 {
			return
		}
		body := strings.Join(current, "\n\n")
		sections = append(sections, Section{
			Text:      body,
			WordCount: WordCount(body),
			Index:     len(sections),
		})
		current = nil
	}

	for _, chunk := range splitByBlankLines(text) {
		if s.isHeading(chunk) {
			flush()
		}
		current = append(current, chunk)
	}
	flush()

	return sections
}

// isHeading looks at the first line of a chunk.
func (s *Segmenter) isHeading(chunk string) bool {
	first, _, multiLine := strings.Cut(chunk, "\n")
	first = strings.TrimSpace(first)
	if first == "" {
		return false
	}
	if strings.HasSuffix(first, ":") {
		return true
	}
	if hasLetter(first) && s.norm.Upper(first) == first {
		return true
	}
	if endsWithTerminal(first) {
		return false
	}
	if isTitleCase(first) {
		return true
	}
	return !multiLine && utf8.RuneCountInString(first) < ShortHeadingRunes
}

// splitByBlankLines splits on lines that are empty after trimming and returns
// the trimmed, non-empty chunks.
func splitByBlankLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	var chunks []string
	var current []string
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			if len(current) > 0 {
				chunks = append(chunks, strings.TrimSpace(strings.Join(current, "\n")))
				current = nil
			}
			continue
		}
		current = append(current, line)
	}
	if len(current) > 0 {
		chunks = append(chunks, strings.TrimSpace(strings.Join(current, "\n")))
	}
	return chunks
}

// WordCount counts whitespace-separated words.
func WordCount(text string) int {
	return len(strings.Fields(text))
}

func hasLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}

func endsWithTerminal(s string) bool {
	r, _ := utf8.DecodeLastRuneInString(s)
	return isTerminal(r)
}

func isTerminal(r rune) bool {
	return r == '.' || r == '!' || r == '?' || r == '…'
}

// isTitleCase reports whether every word that starts with a letter starts
// with an uppercase one.
func isTitleCase(line string) bool {
	words := strings.Fields(line)
	if len(words) == 0 || len(words) > MaxTitleCaseWords {
		return false
	}
	letters := 0
	for _, w := range words {
		r, _ := utf8.DecodeRuneInString(w)
		if !unicode.IsLetter(r) {
			continue
		}
		letters++
		if !unicode.IsUpper(r) {
			return false
		}
	}
	return letters > 0
}
