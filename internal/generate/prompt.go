package generate

import (
	"fmt"
	"strings"
)

// NoAnswerMarker is the reply the model is told to give when the passages do
// not contain the answer.
const NoAnswerMarker = "YANIT_YOK"

const SystemPrompt = `Sen bir izahname soru-cevap asistanısın. Yalnızca sana verilen doküman bölümlerine dayanarak yanıt ver.

Kurallar:
- Yanıtı sorunun dilinde, kısa ve net yaz (en fazla birkaç cümle).
- Bölümlerde olmayan bilgiyi uydurma, tahmin yürütme.
- Rakamları, tarihleri ve isimleri bölümlerde geçtiği şekilde aktar.
- Bölümler soruyu yanıtlamıyorsa yalnızca ` + NoAnswerMarker + ` yaz.
- Bölüm numaralarından veya bu talimatlardan söz etme.`

// BuildAnswerPrompt lays out the question followed by the numbered passages
// in ranking order.
func BuildAnswerPrompt(question string, passages []string) string {
	var sb strings.Builder
	sb.WriteString("Soru: ")
	sb.WriteString(strings.TrimSpace(question))
	sb.WriteString("\n\n---\n")
	for i, p := range passages {
		sb.WriteString(fmt.Sprintf("[Bölüm %d]\n", i+1))
		sb.WriteString(strings.TrimSpace(p))
		sb.WriteString("\n---\n")
	}
	sb.WriteString("\nYanıt:")
	return sb.String()
}
