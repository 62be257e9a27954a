package qa

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/dgallion1/docqa/internal/segment"
	"github.com/dgallion1/docqa/internal/textnorm"
)

// Granularity selects the length bands used to normalize a score.
type Granularity int

const (
	SectionGranularity Granularity = iota
	SentenceGranularity
)

// Candidate is a scored section or sentence.
type Candidate struct {
	Text  string  `json:"text"`
	Index int     `json:"index"` // origin order
	Score float64 `json:"score"`
	Exact bool    `json:"exact"` // contains the whole normalized question
}

// Scorer computes relevance scores. It holds no mutable state.
type Scorer struct {
	norm *textnorm.Normalizer
	opts Options
}

func NewScorer(norm *textnorm.Normalizer, opts Options) *Scorer {
	return &Scorer{norm: norm, opts: opts}
}

// Score returns the relevance of text to q and whether text contains the
// whole normalized question.
func (s *Scorer) Score(text string, q *Question, g Granularity) (float64, bool) {
	normalized := s.norm.Normalize(text)
	tokens := strings.Fields(normalized)

	var score float64
	distinct := q.Distinct()

	// Whole-word phrase match; a question made only of stop words never
	// counts as exact.
	exact := len(distinct) > 0 && q.Normalized != "" &&
		strings.Contains(" "+normalized+" ", " "+q.Normalized+" ")
	if exact {
		score += s.opts.ExactMatchBonus
	}

	offsets := make([]int, 0, len(distinct))
	if len(distinct) > 0 && len(tokens) > 0 {
		starts := tokenOffsets(tokens)
		var stems []string // computed on first stem fallback

		for _, kw := range distinct {
			freq, first := 0, -1
			for i, tok := range tokens {
				if tok == kw {
					freq++
					if first < 0 {
						first = starts[i]
					}
				}
			}
			if freq == 0 {
				if stems == nil {
					stems = make([]string, len(tokens))
					for i, tok := range tokens {
						stems[i] = s.norm.Stem(tok)
					}
				}
				want := q.stems[kw]
				for i, st := range stems {
					if st == want {
						freq++
						if first < 0 {
							first = starts[i]
						}
					}
				}
			}
			if freq == 0 {
				continue
			}
			score += min(float64(freq)*s.opts.FrequencyWeight, s.opts.FrequencyCap)
			offsets = append(offsets, first)
		}

		for i := 0; i < len(offsets); i++ {
			for j := i + 1; j < len(offsets); j++ {
				score += s.proximityBonus(abs(offsets[i] - offsets[j]))
			}
		}

		score += float64(len(offsets)) / float64(len(distinct)) * s.opts.CoverageWeight
	}

	if len(offsets) > 0 && s.matchesCategory(text, q.Category) {
		score += s.opts.CategoryBonus
	}

	bands := s.opts.SectionLength
	if g == SentenceGranularity {
		bands = s.opts.SentenceLength
	}
	score *= lengthFactor(bands, segment.WordCount(text))

	return score, exact
}

func (s *Scorer) proximityBonus(distance int) float64 {
	for _, b := range s.opts.Proximity {
		if distance < b.Within {
			return b.Bonus
		}
	}
	return 0
}

func (s *Scorer) matchesCategory(text string, c Category) bool {
	if c == Generic {
		return false
	}
	for _, re := range s.norm.Pack().PatternsFor(string(c)) {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

// ScoreSections scores every section, drops those at or below the floor and
// returns the rest ranked.
func (s *Scorer) ScoreSections(sections []segment.Section, q *Question) []Candidate {
	out := make([]Candidate, 0, len(sections))
	for _, sec := range sections {
		score, exact := s.Score(sec.Text, q, SectionGranularity)
		if score <= s.opts.ScoreFloor {
			continue
		}
		out = append(out, Candidate{Text: sec.Text, Index: sec.Index, Score: score, Exact: exact})
	}
	Rank(out)
	return out
}

// ScoreSentences is ScoreSections at sentence granularity.
func (s *Scorer) ScoreSentences(sentences []segment.Sentence, q *Question) []Candidate {
	out := make([]Candidate, 0, len(sentences))
	for _, sent := range sentences {
		score, exact := s.Score(sent.Text, q, SentenceGranularity)
		if score <= s.opts.ScoreFloor {
			continue
		}
		out = append(out, Candidate{Text: sent.Text, Index: sent.Index, Score: score, Exact: exact})
	}
	Rank(out)
	return out
}

// Rank sorts candidates with exact matches first, then by descending score.
// Equal candidates keep their input order.
func Rank(c []Candidate) {
	sort.SliceStable(c, func(i, j int) bool {
		if c[i].Exact != c[j].Exact {
			return c[i].Exact
		}
		return c[i].Score > c[j].Score
	})
}

// tokenOffsets returns the rune offset of each token in the single-space
// joined form of tokens.
func tokenOffsets(tokens []string) []int {
	starts := make([]int, len(tokens))
	pos := 0
	for i, tok := range tokens {
		starts[i] = pos
		pos += utf8.RuneCountInString(tok) + 1
	}
	return starts
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
