package generate

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateAnswer(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr error
	}{
		{"plain", "  Şirket Ankara'da kurulmuştur. ", "Şirket Ankara'da kurulmuştur.", nil},
		{"code block", "```\nŞirket Ankara'da kurulmuştur.\n```", "Şirket Ankara'da kurulmuştur.", nil},
		{"label", "Yanıt: 25 TL.", "25 TL.", nil},
		{"empty", "  \n ", "", ErrEmptyAnswer},
		{"no answer marker", "YANIT_YOK", "", ErrNoAnswer},
		{"marker inside text", "Bölümlerde bilgi yok. YANIT_YOK", "", ErrNoAnswer},
		{"prompt leak", "As an AI I cannot see the document.", "", ErrLeakyAnswer},
		{"passage label leak", "[Bölüm 2] şirketin merkezini veriyor.", "", ErrLeakyAnswer},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ValidateAnswer(tc.in)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestValidateAnswer_TruncatesLongReplies(t *testing.T) {
	got, err := ValidateAnswer(strings.Repeat("kelime ", 600))
	require.NoError(t, err)
	assert.LessOrEqual(t, utf8.RuneCountInString(got), MaxAnswerRunes+3)
	assert.True(t, strings.HasSuffix(got, "kelime..."))
}

func TestBuildAnswerPrompt(t *testing.T) {
	p := BuildAnswerPrompt(" Şirket nerede? ", []string{"Birinci bölüm.", " İkinci bölüm. "})
	assert.True(t, strings.HasPrefix(p, "Soru: Şirket nerede?\n"))
	assert.Contains(t, p, "[Bölüm 1]\nBirinci bölüm.\n---")
	assert.Contains(t, p, "[Bölüm 2]\nİkinci bölüm.\n---")
	assert.Less(t, strings.Index(p, "[Bölüm 1]"), strings.Index(p, "[Bölüm 2]"))
	assert.Contains(t, SystemPrompt, NoAnswerMarker)
}

func TestBackoff(t *testing.T) {
	assert.Zero(t, Backoff(0, 0))
	for range 20 {
		d := Backoff(0, 100*time.Millisecond)
		assert.GreaterOrEqual(t, d, 100*time.Millisecond)
		assert.Less(t, d, 150*time.Millisecond)
	}
	d := Backoff(10, time.Second)
	assert.GreaterOrEqual(t, d, 30*time.Second)
	assert.Less(t, d, 45*time.Second)
}
