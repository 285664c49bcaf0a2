package responder

import (
	"context"

	"go.uber.org/zap"

	"github.com/xaenox/maeum/internal/models"
	"github.com/xaenox/maeum/pkg/config"
)

// Mode names the reply strategy in logs and responses.
type Mode string

const (
	ModeCanned Mode = "canned"
	ModeLive   Mode = "live"
)

// Chunk is one piece of a streamed reply. A chunk with Err set is the last
// one sent.
type Chunk struct {
	Text string
	Err  error
}

// Reply carries either a complete Text or a Stream of chunks.
type Reply struct {
	Emotion models.EmotionLabel
	Text    string
	Stream  <-chan Chunk
}

func (r *Reply) Streaming() bool {
	return r.Stream != nil
}

// Responder produces the assistant turn for a conversation whose last user
// message was classified as label.
type Responder interface {
	Respond(ctx context.Context, messages []models.ChatMessage, label models.EmotionLabel) (*Reply, error)
	Mode() Mode
}

// CannedResponder answers from the reply bank without any network call.
type CannedResponder struct {
	selector *Selector
}

func NewCannedResponder(selector *Selector) *CannedResponder {
	if selector == nil {
		selector = NewSelector(nil, nil)
	}
	return &CannedResponder{selector: selector}
}

func (r *CannedResponder) Respond(_ context.Context, _ []models.ChatMessage, label models.EmotionLabel) (*Reply, error) {
	return &Reply{Emotion: label, Text: r.selector.SelectReply(label)}, nil
}

func (r *CannedResponder) Mode() Mode { return ModeCanned }

// New picks the live model when cfg carries a credential and the canned bank
// otherwise. The choice is fixed for the lifetime of the returned value.
func New(cfg config.OpenAIConfig, selector *Selector, logger *zap.Logger) Responder {
	if cfg.Live() {
		logger.Info("Using live model responder",
			zap.String("model", cfg.Model),
			zap.String("base_url", cfg.BaseURL))
		return NewLiveResponder(cfg, logger)
	}
	logger.Info("No model credential configured, using canned responder")
	return NewCannedResponder(selector)
}
