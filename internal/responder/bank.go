package responder

import (
	"math/rand/v2"

	"github.com/xaenox/maeum/internal/models"
)

// ReplyBank maps a label to its candidate canned replies.
type ReplyBank map[models.EmotionLabel][]string

// DefaultReplyBank returns a fresh copy of the built-in replies.
func DefaultReplyBank() ReplyBank {
	return ReplyBank{
		models.Happy: {
			"정말 기쁜 일이 있으신 것 같아요! 😊 그런 기쁜 마음을 함께 나눠주셔서 감사해요. 더 많은 좋은 일들이 찾아올 거예요!",
			"와, 정말 기쁘시겠어요! 😄 그런 긍정적인 에너지가 느껴져요. 기쁜 일을 더 오래 기억하고 간직하세요.",
		},
		models.Sad: {
			"마음이 많이 아프시겠어요. 😢 그런 감정을 느끼는 것은 당연해요. 제가 함께 있어드릴게요. 천천히 말씀해 주세요.",
			"힘든 시간을 보내고 계시는군요. 🤗 외롭지 않아요, 제가 들어드릴게요. 언제든 말씀해 주세요.",
		},
		models.Angry: {
			"화가 나실 만한 일이 있었군요. 😌 그런 감정을 느끼는 것은 자연스러워요. 천천히 말씀해 주세요.",
			"짜증나시는 일이 있으셨나요? 😌 화가 날 때는 깊은 숨을 쉬어보세요. 제가 들어드릴게요.",
		},
		models.Anxious: {
			"불안하신 마음을 이해해요. 🧘‍♀️ 함께 차분히 정리해보아요. 어떤 것이 가장 걱정되시나요?",
			"긴장되시는군요. 😌 불안할 때는 천천히 호흡을 해보세요. 제가 함께 있어드릴게요.",
		},
		models.Neutral: {
			"편하게 말씀해 주세요. 🙂 제가 들어드릴게요. 어떤 일이든 괜찮아요.",
			"무슨 생각을 하고 계시나요? 😊 편하게 나누어 주세요. 제가 함께 있어드릴게요.",
		},
	}
}

// Rand is the entropy source used to pick a reply.
type Rand interface {
	IntN(n int) int
}

type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }

// GlobalRand returns a Rand backed by the goroutine-safe math/rand/v2 source.
func GlobalRand() Rand { return globalRand{} }

// Selector picks canned replies. It holds no mutable state.
type Selector struct {
	bank ReplyBank
	rnd  Rand
}

func NewSelector(bank ReplyBank, rnd Rand) *Selector {
	if bank == nil {
		bank = DefaultReplyBank()
	}
	if rnd == nil {
		rnd = GlobalRand()
	}
	return &Selector{bank: bank, rnd: rnd}
}

// SelectReply returns a uniformly chosen reply for label, using the neutral
// list when the label has no replies.
func (s *Selector) SelectReply(label models.EmotionLabel) string {
	candidates := s.bank[label]
	if len(candidates) == 0 {
		candidates = s.bank[models.Neutral]
	}
	if len(candidates) == 0 {
		return fallbackReply
	}
	return candidates[s.rnd.IntN(len(candidates))]
}

// Used only when a custom bank has no neutral replies either.
const fallbackReply = "편하게 말씀해 주세요. 🙂 제가 들어드릴게요."
