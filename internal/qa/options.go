package qa

import "math"

// LengthBand multiplies a candidate's score when its word count is below
// Below. Bands are checked in order; the first match wins.
type LengthBand struct {
	Below  int
	Factor float64
}

// ProximityBand awards Bonus to a pair of matched keywords whose first
// occurrences are fewer than Within runes apart.
type ProximityBand struct {
	Within int
	Bonus  float64
}

// Options holds every tunable weight and threshold of the scorer and the
// assembler. The defaults were tuned by hand against prospectus text.
type Options struct {
	ExactMatchBonus float64
	FrequencyWeight float64
	FrequencyCap    float64
	Proximity       []ProximityBand
	CoverageWeight  float64
	CategoryBonus   float64
	SectionLength   []LengthBand
	SentenceLength  []LengthBand
	ScoreFloor      float64

	RefineAboveWords    int
	RefineTopSentences  int
	MinAnswerWords      int
	ExpandCandidates    int
	SimilarityThreshold float64
	AnswerBudget        int
	Ellipsis            string

	ConfidenceNotes   bool
	LowConfidence     float64
	PartialConfidence float64
	CoverageShare     float64
	DensityShare      float64

	GenerateTopK int
}

func DefaultOptions() Options {
	return Options{
		ExactMatchBonus: 100,
		FrequencyWeight: 5,
		FrequencyCap:    25,
		Proximity: []ProximityBand{
			{Within: 50, Bonus: 5},
			{Within: 100, Bonus: 3},
			{Within: 200, Bonus: 1},
		},
		CoverageWeight: 50,
		CategoryBonus:  15,
		SectionLength: []LengthBand{
			{Below: 10, Factor: 0.5},
			{Below: 50, Factor: 1.0},
			{Below: 301, Factor: 1.2},
			{Below: math.MaxInt, Factor: 0.7},
		},
		SentenceLength: []LengthBand{
			{Below: 4, Factor: 0.5},
			{Below: 41, Factor: 1.2},
			{Below: math.MaxInt, Factor: 0.8},
		},
		ScoreFloor: 1.0,

		RefineAboveWords:    150,
		RefineTopSentences:  3,
		MinAnswerWords:      30,
		ExpandCandidates:    2,
		SimilarityThreshold: 0.6,
		AnswerBudget:        1000,
		Ellipsis:            "...",

		LowConfidence:     0.3,
		PartialConfidence: 0.5,
		CoverageShare:     0.7,
		DensityShare:      0.3,

		GenerateTopK: 3,
	}
}

func lengthFactor(bands []LengthBand, words int) float64 {
	for _, b := range bands {
		if words < b.Below {
			return b.Factor
		}
	}
	return 1
}
