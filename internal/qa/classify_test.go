package qa

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dgallion1/docqa/internal/lang"
	"github.com/dgallion1/docqa/internal/textnorm"
)

func TestClassify(t *testing.T) {
	norm := textnorm.New(lang.Turkish())
	tests := []struct {
		question string
		want     Category
	}{
		{"Şirket nerede kurulmuştur?", Locational},
		{"Şirket ne zaman kuruldu?", Temporal},
		{"Ne zaman ve nerede kuruldu?", Temporal},
		{"Yönetim kurulu başkanı kimdir?", Person},
		{"Paylar neden halka arz ediliyor?", Causal},
		{"Başvuru nasıl yapılır?", Method},
		{"Sermaye tutarı", Generic},
		{"Kimlik belgesi gerekli mi?", Generic},
		{"", Generic},
	}
	for _, tc := range tests {
		t.Run(tc.question, func(t *testing.T) {
			assert.Equal(t, tc.want, Classify(norm, norm.Normalize(tc.question)))
		})
	}
}

func TestParseQuestion(t *testing.T) {
	norm := textnorm.New(lang.Turkish())
	q := ParseQuestion(norm, "Şirket nerede kurulmuştur? Şirket!")

	assert.Equal(t, "şirket nerede kurulmuştur şirket", q.Normalized)
	assert.Equal(t, []string{"şirket", "kurulmuştur", "şirket"}, q.Keywords)
	assert.Equal(t, []string{"şirket", "kurulmuştur"}, q.Distinct())
	assert.Equal(t, Locational, q.Category)
	assert.Equal(t, "kurul", q.stems["kurulmuştur"])
}
