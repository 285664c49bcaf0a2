package responder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/xaenox/maeum/internal/models"
	"github.com/xaenox/maeum/pkg/config"
)

// LiveResponder streams a chat completion biased by the emotion context hint.
type LiveResponder struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float64
	logger      *zap.Logger
}

func NewLiveResponder(cfg config.OpenAIConfig, logger *zap.Logger) *LiveResponder {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	if cfg.Timeout > 0 {
		// Bounds the whole streamed response, not only the first byte.
		clientConfig.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &LiveResponder{
		client:      openai.NewClientWithConfig(clientConfig),
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		logger:      logger,
	}
}

func (r *LiveResponder) Mode() Mode { return ModeLive }

func (r *LiveResponder) buildMessages(messages []models.ChatMessage, label models.EmotionLabel) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(messages)+1)
	out = append(out, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: SystemPrompt(label),
	})
	for _, m := range messages {
		var role string
		switch m.Role {
		case models.RoleUser:
			role = openai.ChatMessageRoleUser
		case models.RoleAssistant:
			role = openai.ChatMessageRoleAssistant
		default:
			// Client supplied system turns would override the counselor prompt.
			continue
		}
		out = append(out, openai.ChatCompletionMessage{Role: role, Content: m.Content})
	}
	return out
}

// Respond opens the completion stream before returning so that request
// failures surface as an error instead of an empty stream.
func (r *LiveResponder) Respond(ctx context.Context, messages []models.ChatMessage, label models.EmotionLabel) (*Reply, error) {
	stream, err := r.client.CreateChatCompletionStream(ctx, openai.ChatCompletionRequest{
		Model:       r.model,
		Messages:    r.buildMessages(messages, label),
		MaxTokens:   r.maxTokens,
		Temperature: float32(r.temperature),
		Stream:      true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open completion stream: %w", err)
	}

	chunks := make(chan Chunk)
	go func() {
		defer close(chunks)
		defer stream.Close()

		send := func(c Chunk) bool {
			select {
			case chunks <- c:
				return true
			case <-ctx.Done():
				return false
			}
		}

		for {
			resp, err := stream.Recv()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				r.logger.Error("Completion stream failed",
					zap.Error(err),
					zap.String("emotion", string(label)))
				send(Chunk{Err: err})
				return
			}
			if len(resp.Choices) == 0 || resp.Choices[0].Delta.Content == "" {
				continue
			}
			if !send(Chunk{Text: resp.Choices[0].Delta.Content}) {
				return
			}
		}
	}()

	return &Reply{Emotion: label, Stream: chunks}, nil
}
