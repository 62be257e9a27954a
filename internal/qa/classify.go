package qa

import (
	"strings"

	"github.com/dgallion1/docqa/internal/textnorm"
)

// Category is the coarse semantic type of a question.
type Category string

const (
	Generic    Category = "generic"
	Temporal   Category = "temporal"
	Locational Category = "locational"
	Person     Category = "person"
	Causal     Category = "causal"
	Method     Category = "method"
)

// classifyOrder is the priority in which trigger lists are consulted.
var classifyOrder = []Category{Temporal, Locational, Person, Causal, Method}

// Question is a parsed question. Build it with ParseQuestion.
type Question struct {
	Raw        string
	Normalized string
	Keywords   []string // in question order, duplicates kept
	Category   Category

	distinct []string
	stems    map[string]string
}

// ParseQuestion normalizes, extracts keywords and classifies a question.
func ParseQuestion(norm *textnorm.Normalizer, raw string) *Question {
	q := &Question{
		Raw:        raw,
		Normalized: norm.Normalize(raw),
		Keywords:   norm.Keywords(raw),
		stems:      make(map[string]string),
	}
	for _, kw := range q.Keywords {
		if _, seen := q.stems[kw]; seen {
			continue
		}
		q.stems[kw] = norm.Stem(kw)
		q.distinct = append(q.distinct, kw)
	}
	q.Category = Classify(norm, q.Normalized)
	return q
}

// Distinct returns the keywords with duplicates removed, in first-seen order.
func (q *Question) Distinct() []string { return q.distinct }

// Classify returns the first category whose trigger phrase occurs as whole
// words in the normalized question, or Generic.
func Classify(norm *textnorm.Normalizer, normalized string) Category {
	padded := " " + normalized + " "
	for _, c := range classifyOrder {
		for _, trigger := range norm.Pack().TriggersFor(string(c)) {
			phrase := norm.Normalize(trigger)
			if phrase == "" {
				continue
			}
			if strings.Contains(padded, " "+phrase+" ") {
				return c
			}
		}
	}
	return Generic
}
