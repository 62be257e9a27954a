package qa

import "github.com/dgallion1/docqa/internal/textnorm"

// Similarity returns the Dice overlap of the normalized token multisets of a
// and b: 2*Σmin(fa,fb) / (|a|+|b|). It is 0 when either side is empty.
func Similarity(norm *textnorm.Normalizer, a, b string) float64 {
	ta := norm.Tokens(a)
	tb := norm.Tokens(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}
	fa := frequencies(ta)
	fb := frequencies(tb)

	shared := 0
	for w, ca := range fa {
		shared += min(ca, fb[w])
	}
	return 2 * float64(shared) / float64(len(ta)+len(tb))
}

func frequencies(tokens []string) map[string]int {
	f := make(map[string]int, len(tokens))
	for _, t := range tokens {
		f[t]++
	}
	return f
}
