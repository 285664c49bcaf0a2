package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/xaenox/maeum/internal/models"
	"github.com/xaenox/maeum/internal/storage"
)

type createPostRequest struct {
	Content string `json:"content"`
	Emotion string `json:"emotion"`
}

type likeRequest struct {
	ViewerID string `json:"viewerId"`
}

func (s *Server) handleListPosts(c *gin.Context) {
	posts, err := s.store.ListPosts(c.Request.Context())
	if err != nil {
		s.storageError(c, "게시글을 불러오지 못했습니다.", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "posts": posts})
}

func (s *Server) handleCreatePost(c *gin.Context) {
	var req createPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, http.StatusBadRequest, "Invalid request: "+err.Error(), nil)
		return
	}

	post := &models.CommunityPost{
		Content:   req.Content,
		Emotion:   req.Emotion,
		CreatedAt: s.now().UTC(),
	}
	err := s.store.CreatePost(c.Request.Context(), post)
	if errors.Is(err, storage.ErrEmptyContent) {
		s.fail(c, http.StatusBadRequest, "내용을 입력해주세요.", nil)
		return
	}
	if err != nil {
		s.storageError(c, "게시글을 저장하지 못했습니다.", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "post": post})
}

func (s *Server) handleToggleLike(c *gin.Context) {
	var req likeRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.ViewerID) == "" {
		s.fail(c, http.StatusBadRequest, "viewerId is required", nil)
		return
	}

	post, liked, err := s.store.ToggleLike(c.Request.Context(), c.Param("id"), req.ViewerID)
	if err != nil {
		s.storageError(c, "게시글을 찾을 수 없습니다.", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "post": post, "isLiked": liked})
}

func (s *Server) handleDeletePost(c *gin.Context) {
	if err := s.store.DeletePost(c.Request.Context(), c.Param("id")); err != nil {
		s.storageError(c, "게시글을 찾을 수 없습니다.", err)
		return
	}
	c.Status(http.StatusNoContent)
}
