package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xaenox/maeum/internal/models"
)

type chatRequest struct {
	Messages []models.ChatMessage `json:"messages"`
}

// handleChat classifies the latest user message and answers either with a
// complete JSON reply or a plain-text stream, depending on the responder.
func (s *Server) handleChat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, http.StatusBadRequest, "Invalid request: "+err.Error(), nil)
		return
	}

	label := models.Neutral
	if text, ok := models.LastUserMessage(req.Messages); ok {
		label = s.classifier.Classify(text)
	}

	reply, err := s.responder.Respond(c.Request.Context(), req.Messages, label)
	if err != nil {
		s.fail(c, http.StatusBadGateway, "응답을 생성하지 못했습니다.", err)
		return
	}

	c.Header(emotionHeader, string(label))

	if !reply.Streaming() {
		c.JSON(http.StatusOK, models.ChatReply{
			ID:        uuid.New().String(),
			Role:      models.RoleAssistant,
			Content:   reply.Text,
			Emotion:   label,
			CreatedAt: s.now().UTC(),
		})
		return
	}

	c.Header("Content-Type", "text/plain; charset=utf-8")
	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	for chunk := range reply.Stream {
		if chunk.Err != nil {
			s.logger.Warn("Chat stream ended with error",
				zap.Error(chunk.Err),
				zap.String("request_id", c.GetString(requestIDKey)))
			return
		}
		if _, err := c.Writer.Write([]byte(chunk.Text)); err != nil {
			// The responder stops once the request context is cancelled.
			s.logger.Debug("Client went away during chat stream", zap.Error(err))
			return
		}
		c.Writer.Flush()
	}
}
