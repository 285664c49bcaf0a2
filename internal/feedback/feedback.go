// Package feedback composes the reply shown after a diary entry is saved.
package feedback

import (
	"strings"

	"github.com/xaenox/maeum/internal/models"
)

const (
	GenericFeedback  = "감정을 기록해주셔서 고마워요. 🙂 꾸준히 감정을 기록하는 것이 좋아요."
	MixedFeedback    = "복잡한 감정들을 기록해주셨네요. 😊😢 기쁨과 슬픔이 함께하는 것도 자연스러운 일이에요. 모든 감정을 받아들이고 스스로를 돌봐주세요."
	PositiveFeedback = "여러 긍정적인 감정들을 느끼고 계시네요! 😊✨ 그런 좋은 에너지를 계속 간직하세요."
	NegativeFeedback = "여러 어려운 감정들을 겪고 계시는군요. 😢💪 그런 마음들을 표현해주셔서 고마워요. 조금씩 나아질 거예요."
	VariedFeedback   = "다양한 감정들을 기록해주셨네요. 🙂 감정의 변화를 인식하고 기록하는 것이 중요해요."

	// Soft validation messages returned instead of feedback.
	MissingEmotionGuide = "오늘은 어떤 하루였는지 감정을 선택해주세요! 😊"
	MissingContentGuide = "오늘 있었던 이야기를 조금이라도 적어주세요. 아무것이나 괜찮아요! ✍️"
)

var singleFeedback = map[models.EmotionLabel]string{
	models.Happy:   "기쁜 마음을 기록해주셔서 좋아요! 😊 그런 긍정적인 에너지를 계속 간직하세요.",
	models.Sad:     "힘든 감정을 표현해주셔서 고마워요. 😢 그런 마음이 이해돼요. 조금씩 나아질 거예요.",
	models.Angry:   "화가 나는 감정을 기록해주셨네요. 😌 그런 감정을 느끼는 것은 자연스러워요.",
	models.Anxious: "불안한 마음을 나눠주셔서 고마워요. 😟 함께 차분히 정리해보아요.",
	models.Neutral: "오늘의 감정을 기록해주셨네요. 🙂 꾸준히 감정을 기록하는 것이 좋아요.",
}

// SingleFeedback returns the wording for one label, neutral when unknown.
func SingleFeedback(label models.EmotionLabel) string {
	if text, ok := singleFeedback[label]; ok {
		return text
	}
	return singleFeedback[models.Neutral]
}

// ComposeFeedback turns any number of labels into one message. With two or
// more labels only the presence of happy and of a negative label matters, so
// the result does not depend on order or repetition.
func ComposeFeedback(labels []models.EmotionLabel) string {
	switch len(labels) {
	case 0:
		return GenericFeedback
	case 1:
		return SingleFeedback(labels[0])
	}

	var hasPositive, hasNegative bool
	for _, l := range labels {
		if l == models.Happy {
			hasPositive = true
		}
		if l.Negative() {
			hasNegative = true
		}
	}

	switch {
	case hasPositive && hasNegative:
		return MixedFeedback
	case hasPositive:
		return PositiveFeedback
	case hasNegative:
		return NegativeFeedback
	default:
		return VariedFeedback
	}
}

// Validate returns a guidance message when the request cannot be recorded.
func Validate(req *models.DiaryFeedbackRequest) (string, bool) {
	if len(req.EmotionList()) == 0 {
		return MissingEmotionGuide, false
	}
	if strings.TrimSpace(req.DiaryEntry) == "" {
		return MissingContentGuide, false
	}
	return "", true
}

// ForRequest composes feedback for a validated request.
func ForRequest(req *models.DiaryFeedbackRequest) string {
	emotions := req.EmotionList()
	labels := make([]models.EmotionLabel, 0, len(emotions))
	for _, e := range emotions {
		labels = append(labels, models.EmotionLabel(e))
	}
	return ComposeFeedback(labels)
}
