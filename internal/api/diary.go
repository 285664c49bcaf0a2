package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/xaenox/maeum/internal/feedback"
	"github.com/xaenox/maeum/internal/models"
	"github.com/xaenox/maeum/internal/stats"
)

const ownerIDParam = "ownerId"

// ownerID reads the diary owner from the query string. It answers 400 and
// returns false when it is missing.
func (s *Server) ownerID(c *gin.Context) (string, bool) {
	owner := strings.TrimSpace(c.Query(ownerIDParam))
	if owner == "" {
		s.fail(c, http.StatusBadRequest, "ownerId is required", nil)
		return "", false
	}
	return owner, true
}

// handleDiaryFeedback composes feedback for a diary entry and stores it.
// Missing emotions or text are answered with guidance, not an HTTP error.
// The entry is filed under the requested date, today by default, and
// replaces an earlier entry of the same owner on that date.
func (s *Server) handleDiaryFeedback(c *gin.Context) {
	var req models.DiaryFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, http.StatusBadRequest, "Invalid request: "+err.Error(), nil)
		return
	}

	owner := strings.TrimSpace(req.OwnerID)
	if owner == "" {
		s.fail(c, http.StatusBadRequest, "ownerId is required", nil)
		return
	}

	now := s.now().UTC()
	date := now.Format(models.DiaryDateLayout)
	if strings.TrimSpace(req.Date) != "" {
		day, err := models.ParseDiaryDate(req.Date)
		if err != nil {
			s.fail(c, http.StatusBadRequest, "date must be YYYY-MM-DD", nil)
			return
		}
		date = day.Format(models.DiaryDateLayout)
	}

	if guide, ok := feedback.Validate(&req); !ok {
		c.JSON(http.StatusOK, gin.H{"success": false, "feedback": guide})
		return
	}

	entry := &models.DiaryEntry{
		OwnerID:   owner,
		Date:      date,
		Emotions:  req.EmotionList(),
		Content:   req.DiaryEntry,
		Feedback:  feedback.ForRequest(&req),
		Weather:   req.Weather,
		CreatedAt: now,
	}
	if err := s.store.SaveDiary(c.Request.Context(), entry); err != nil {
		s.fail(c, http.StatusInternalServerError, "일기를 저장하지 못했습니다.", err)
		return
	}

	s.logger.Debug("Diary entry saved",
		zap.String("diary_id", entry.ID),
		zap.String("date", entry.Date),
		zap.Strings("emotions", entry.Emotions))

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"feedback": entry.Feedback,
		"data":     entry,
	})
}

func (s *Server) handleListDiaries(c *gin.Context) {
	owner, ok := s.ownerID(c)
	if !ok {
		return
	}

	var since time.Time
	if raw := c.Query("since"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			s.fail(c, http.StatusBadRequest, "since must be an RFC3339 timestamp", nil)
			return
		}
		since = parsed
	}

	entries, err := s.store.ListDiaries(c.Request.Context(), owner, since)
	if err != nil {
		s.storageError(c, "일기를 불러오지 못했습니다.", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "diaries": entries})
}

func (s *Server) handleGetDiary(c *gin.Context) {
	owner, ok := s.ownerID(c)
	if !ok {
		return
	}

	entry, err := s.store.GetDiary(c.Request.Context(), owner, c.Param("id"))
	if err != nil {
		s.storageError(c, "일기를 찾을 수 없습니다.", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "diary": entry})
}

func (s *Server) handleDeleteDiary(c *gin.Context) {
	owner, ok := s.ownerID(c)
	if !ok {
		return
	}

	if err := s.store.DeleteDiary(c.Request.Context(), owner, c.Param("id")); err != nil {
		s.storageError(c, "일기를 찾을 수 없습니다.", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleStats(c *gin.Context) {
	owner, ok := s.ownerID(c)
	if !ok {
		return
	}

	r, err := stats.ParseRange(c.Query("range"))
	if err != nil {
		s.fail(c, http.StatusBadRequest, err.Error(), nil)
		return
	}

	now := s.now()
	entries, err := s.store.ListDiaries(c.Request.Context(), owner, r.Start(now))
	if err != nil {
		s.storageError(c, "통계를 계산하지 못했습니다.", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "stats": stats.Compute(entries, r, now)})
}
