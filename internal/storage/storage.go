package storage

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/xaenox/maeum/internal/models"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("not found")

// ErrEmptyContent is returned when a post has no text.
var ErrEmptyContent = errors.New("content is empty")

type Storage interface {
	Close() error

	DiaryStorage
	CommunityStorage
}

// DiaryStorage persists diary entries per owner. Entries of other owners
// behave as missing.
type DiaryStorage interface {
	// SaveDiary assigns ID, CreatedAt and Date when they are empty. Saving
	// for an (owner, date) that already has an entry replaces that entry and
	// keeps its ID.
	SaveDiary(ctx context.Context, entry *models.DiaryEntry) error
	GetDiary(ctx context.Context, ownerID, id string) (*models.DiaryEntry, error)
	// ListDiaries returns the owner's entries dated on or after the UTC day
	// of since, newest date first. A zero since lists everything.
	ListDiaries(ctx context.Context, ownerID string, since time.Time) ([]*models.DiaryEntry, error)
	DeleteDiary(ctx context.Context, ownerID, id string) error
}

type CommunityStorage interface {
	CreatePost(ctx context.Context, post *models.CommunityPost) error
	// ListPosts returns posts newest first.
	ListPosts(ctx context.Context) ([]*models.CommunityPost, error)
	// ToggleLike likes the post for viewerID, or removes an existing like.
	// It reports whether the post is liked afterwards.
	ToggleLike(ctx context.Context, postID, viewerID string) (*models.CommunityPost, bool, error)
	DeletePost(ctx context.Context, id string) error
}

// ShareStore keeps shared conversations.
type ShareStore interface {
	SaveShare(ctx context.Context, conv *models.SharedConversation) error
	// GetShareAndCountView increments the view counter and returns the
	// updated conversation.
	GetShareAndCountView(ctx context.Context, id string) (*models.SharedConversation, error)
	Close() error
}

func prepareDiary(entry *models.DiaryEntry) {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	if entry.Date == "" {
		entry.Date = entry.CreatedAt.UTC().Format(models.DiaryDateLayout)
	}
	if entry.Emotions == nil {
		entry.Emotions = []string{}
	}
}

// sinceDate is the first day ListDiaries includes.
func sinceDate(since time.Time) string {
	if since.IsZero() {
		return "0001-01-01"
	}
	return since.UTC().Format(models.DiaryDateLayout)
}

func preparePost(post *models.CommunityPost) error {
	post.Content = strings.TrimSpace(post.Content)
	if post.Content == "" {
		return ErrEmptyContent
	}
	if post.ID == "" {
		post.ID = uuid.New().String()
	}
	if post.CreatedAt.IsZero() {
		post.CreatedAt = time.Now().UTC()
	}
	if strings.TrimSpace(post.Emotion) == "" {
		post.Emotion = models.DefaultPostEmotion
	}
	return nil
}
