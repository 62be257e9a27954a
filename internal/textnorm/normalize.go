// Package textnorm turns free text into comparable tokens: language-aware
// lowercasing, punctuation stripping, stop-word removal and a best-effort
// suffix-stripping stemmer.
package textnorm

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"

	"github.com/dgallion1/docqa/internal/lang"
)

// MinKeywordLength is the shortest token kept by Keywords.
const MinKeywordLength = 3

// Normalizer is safe for concurrent use; it holds only the read-only pack.
type Normalizer struct {
	pack *lang.Pack
}

func New(pack *lang.Pack) *Normalizer {
	if pack == nil {
		pack = lang.Turkish()
	}
	return &Normalizer{pack: pack}
}

// Pack returns the language pack the normalizer was built with.
func (n *Normalizer) Pack() *lang.Pack { return n.pack }

// Lower lowercases text using the pack's language rules. A Caser carries
// state, so one is created per call.
func (n *Normalizer) Lower(text string) string {
	return cases.Lower(n.pack.Language()).String(text)
}

// Upper uppercases text using the pack's language rules.
func (n *Normalizer) Upper(text string) string {
	return cases.Upper(n.pack.Language()).String(text)
}

// Normalize lowercases text, replaces everything that is not a letter, digit
// or whitespace with a space and collapses runs of whitespace.
func (n *Normalizer) Normalize(text string) string {
	lower := n.Lower(text)
	var sb strings.Builder
	sb.Grow(len(lower))
	space := false
	for _, r := range lower {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.Is(unicode.Mn, r) {
			if space && sb.Len() > 0 {
				sb.WriteByte(' ')
			}
			space = false
			sb.WriteRune(r)
			continue
		}
		space = true
	}
	return sb.String()
}

// Tokens returns the whitespace-separated tokens of the normalized text.
func (n *Normalizer) Tokens(text string) []string {
	return strings.Fields(n.Normalize(text))
}

// Keywords returns the salient tokens of text in order, duplicates included.
func (n *Normalizer) Keywords(text string) []string {
	tokens := n.Tokens(text)
	out := tokens[:0]
	for _, tok := range tokens {
		if utf8.RuneCountInString(tok) < MinKeywordLength || n.pack.IsStopWord(tok) {
			continue
		}
		out = append(out, tok)
	}
	return out
}

// Stem strips known suffixes from the end of token. Each pass removes at
// most one suffix and only when the remainder keeps MinStemLength runes; it
// gives up after MaxStemPasses passes or when a pass removes nothing. The
// result is an approximation and can under- or over-strip.
func (n *Normalizer) Stem(token string) string {
	stem := token
	for pass := 0; pass < n.pack.MaxStemPasses; pass++ {
		stripped := false
		for _, suffix := range n.pack.Suffixes {
			if !strings.HasSuffix(stem, suffix) {
				continue
			}
			rest := strings.TrimSuffix(stem, suffix)
			if utf8.RuneCountInString(rest) < n.pack.MinStemLength {
				continue
			}
			stem = rest
			stripped = true
			break
		}
		if !stripped {
			break
		}
	}
	return stem
}

// Stems returns every token plus its stem when the two differ.
func (n *Normalizer) Stems(tokens []string) map[string]struct{} {
	out := make(map[string]struct{}, len(tokens)*2)
	for _, tok := range tokens {
		out[tok] = struct{}{}
		if s := n.Stem(tok); s != tok {
			out[s] = struct{}{}
		}
	}
	return out
}
