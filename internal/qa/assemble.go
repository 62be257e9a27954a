package qa

import (
	"sort"
	"strings"
	"unicode"

	"github.com/dgallion1/docqa/internal/segment"
	"github.com/dgallion1/docqa/internal/textnorm"
)

// Assembler turns ranked section candidates into the answer text.
type Assembler struct {
	norm   *textnorm.Normalizer
	seg    *segment.Segmenter
	scorer *Scorer
	opts   Options
}

func NewAssembler(norm *textnorm.Normalizer, seg *segment.Segmenter, scorer *Scorer, opts Options) *Assembler {
	return &Assembler{norm: norm, seg: seg, scorer: scorer, opts: opts}
}

// Assemble builds the answer from ranked candidates. It returns the pack's
// not-found message when ranked is empty.
func (a *Assembler) Assemble(q *Question, ranked []Candidate) string {
	if len(ranked) == 0 {
		return a.norm.Pack().Messages.NotFound
	}

	included := []string{ranked[0].Text}
	parts := []string{a.Refine(ranked[0].Text, q)}

	for i := 1; i < len(ranked) && i <= a.opts.ExpandCandidates; i++ {
		if segment.WordCount(strings.Join(parts, " ")) >= a.opts.MinAnswerWords {
			break
		}
		next := ranked[i].Text
		if !a.distinctFromAll(next, included) {
			continue
		}
		included = append(included, next)
		parts = append(parts, a.Refine(next, q))
	}

	answer := Truncate(strings.Join(parts, "\n\n"), a.opts.AnswerBudget, a.opts.Ellipsis)
	if a.opts.ConfidenceNotes {
		answer = a.withConfidenceNote(answer, q)
	}
	return answer
}

func (a *Assembler) distinctFromAll(text string, included []string) bool {
	for _, inc := range included {
		if Similarity(a.norm, text, inc) >= a.opts.SimilarityThreshold {
			return false
		}
	}
	return true
}

// Refine replaces a long section by its best sentences, joined in the order
// they appear in the section. Short sections, and sections where no sentence
// clears the floor, are returned unchanged.
func (a *Assembler) Refine(text string, q *Question) string {
	if segment.WordCount(text) <= a.opts.RefineAboveWords {
		return text
	}
	ranked := a.scorer.ScoreSentences(a.seg.SplitSentences(text), q)
	if len(ranked) == 0 {
		return text
	}
	if len(ranked) > a.opts.RefineTopSentences {
		ranked = ranked[:a.opts.RefineTopSentences]
	}
	sort.Slice(ranked, func(i, j int) bool { return ranked[i].Index < ranked[j].Index })

	picked := make([]string, len(ranked))
	for i, c := range ranked {
		picked[i] = c.Text
	}
	return strings.Join(picked, " ")
}

// Truncate shortens text to at most budget runes including the ellipsis. It
// prefers to cut after the last sentence-ending period that leaves at least
// half the budget; otherwise it cuts hard. An ellipsis longer than the
// budget is itself cut to the budget.
func Truncate(text string, budget int, ellipsis string) string {
	runes := []rune(text)
	if budget <= 0 || len(runes) <= budget {
		return text
	}
	ell := []rune(ellipsis)
	if len(ell) > budget {
		ell = ell[:budget]
	}
	ellipsis = string(ell)
	limit := budget - len(ell)
	for i := limit - 1; i >= budget/2; i-- {
		if runes[i] == '.' && (i+1 == len(runes) || unicode.IsSpace(runes[i+1])) {
			return string(runes[:i+1]) + ellipsis
		}
	}
	return strings.TrimRightFunc(string(runes[:limit]), unicode.IsSpace) + ellipsis
}

// withConfidenceNote prefixes a disclaimer when the answer covers the question
// poorly. Coverage is the share of question keywords found in the answer;
// density is the share of answer keywords that appear in the question.
func (a *Assembler) withConfidenceNote(answer string, q *Question) string {
	distinct := q.Distinct()
	if len(distinct) == 0 {
		return answer
	}
	answerKeywords := a.norm.Keywords(answer)
	present := make(map[string]struct{}, len(answerKeywords))
	for _, kw := range answerKeywords {
		present[kw] = struct{}{}
	}

	covered := 0
	for _, kw := range distinct {
		if _, ok := present[kw]; ok {
			covered++
		}
	}
	coverage := float64(covered) / float64(len(distinct))

	var density float64
	if len(answerKeywords) > 0 {
		hits := 0
		for _, kw := range answerKeywords {
			if _, ok := q.stems[kw]; ok {
				hits++
			}
		}
		density = float64(hits) / float64(len(answerKeywords))
	}

	msgs := a.norm.Pack().Messages
	switch relevance := coverage*a.opts.CoverageShare + density*a.opts.DensityShare; {
	case relevance < a.opts.LowConfidence && msgs.LowConfidence != "":
		return msgs.LowConfidence + "\n\n" + answer
	case relevance < a.opts.PartialConfidence && msgs.PartialMatch != "":
		return msgs.PartialMatch + "\n\n" + answer
	}
	return answer
}
