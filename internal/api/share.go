package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/xaenox/maeum/internal/models"
)

const defaultShareTitle = "AI와의 대화"

type createShareRequest struct {
	Messages []models.ChatMessage `json:"messages"`
	Title    string               `json:"title"`
}

// newShareID returns 22 random hex characters.
func newShareID() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")[:22]
}

func (s *Server) handleCreateShare(c *gin.Context) {
	var req createShareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, http.StatusBadRequest, "Invalid request: "+err.Error(), nil)
		return
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = defaultShareTitle
	}
	messages := req.Messages
	if messages == nil {
		messages = []models.ChatMessage{}
	}

	conv := &models.SharedConversation{
		ID:        newShareID(),
		Title:     title,
		Messages:  messages,
		CreatedAt: s.now().UTC(),
	}
	if err := s.shares.SaveShare(c.Request.Context(), conv); err != nil {
		s.fail(c, http.StatusInternalServerError, "공유 링크 생성에 실패했습니다.", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"shareId":  conv.ID,
		"shareUrl": "/shared-conversation/" + conv.ID,
	})
}

func (s *Server) handleGetShare(c *gin.Context) {
	id := c.Query("id")
	if id == "" {
		s.fail(c, http.StatusBadRequest, "공유 ID가 필요합니다.", nil)
		return
	}

	conv, err := s.shares.GetShareAndCountView(c.Request.Context(), id)
	if err != nil {
		s.storageError(c, "공유된 대화를 찾을 수 없습니다.", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "conversation": conv})
}
