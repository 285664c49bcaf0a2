package responder

import (
	"fmt"

	"github.com/xaenox/maeum/internal/models"
)

var contextHints = map[models.EmotionLabel]string{
	models.Happy:   "사용자가 기쁜 감정을 표현하고 있습니다. 함께 기뻐하고 격려해주세요. 😊",
	models.Sad:     "사용자가 슬픈 감정을 표현하고 있습니다. 따뜻하게 위로하고 공감해주세요. 🤗",
	models.Angry:   "사용자가 화난 감정을 표현하고 있습니다. 진정시키고 이해해주세요. 😌",
	models.Anxious: "사용자가 불안한 감정을 표현하고 있습니다. 안심시키고 차분히 정리해주세요. 🧘‍♀️",
	models.Neutral: "사용자가 중립적인 감정을 표현하고 있습니다. 관심을 기울이고 들어주세요. 🙂",
}

// ContextHint returns the instruction that biases the model toward label.
func ContextHint(label models.EmotionLabel) string {
	if hint, ok := contextHints[label]; ok {
		return hint
	}
	return contextHints[models.Neutral]
}

const systemPromptTemplate = `당신은 감정 공감 전문 AI 상담사입니다. 다음 원칙을 따라 대화하세요:

1. 항상 따뜻하고 공감적인 톤으로 대화하세요
2. 사용자의 감정을 먼저 인정하고 공감해주세요
3. 판단하지 말고 들어주는 자세를 유지하세요
4. 필요시 구체적이고 실용적인 조언을 제공하세요
5. 위기 상황이 감지되면 전문가 도움을 권하세요
6. 한국어로 자연스럽게 대화하세요
7. 너무 길지 않게, 2-3문장으로 답변하세요

현재 감정 분석: %s

사용자가 힘든 감정을 표현할 때는 특히 더 세심하게 공감해주세요.`

// SystemPrompt builds the counselor instruction for the detected label.
func SystemPrompt(label models.EmotionLabel) string {
	return fmt.Sprintf(systemPromptTemplate, ContextHint(label))
}
