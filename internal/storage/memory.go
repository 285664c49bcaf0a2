package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/xaenox/maeum/internal/models"
)

type MemoryStorage struct {
	mu        sync.RWMutex
	diaries   map[string]*models.DiaryEntry
	diaryDays map[string]string // owner + date -> entry id
	posts     map[string]*models.CommunityPost
	likes     map[string]map[string]struct{}
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		diaries:   make(map[string]*models.DiaryEntry),
		diaryDays: make(map[string]string),
		posts:     make(map[string]*models.CommunityPost),
		likes:     make(map[string]map[string]struct{}),
	}
}

func copyDiary(e *models.DiaryEntry) *models.DiaryEntry {
	c := *e
	c.Emotions = append([]string(nil), e.Emotions...)
	return &c
}

func diaryDayKey(ownerID, date string) string {
	return ownerID + "\x00" + date
}

// Diary methods
func (s *MemoryStorage) SaveDiary(ctx context.Context, entry *models.DiaryEntry) error {
	prepareDiary(entry)

	s.mu.Lock()
	defer s.mu.Unlock()

	key := diaryDayKey(entry.OwnerID, entry.Date)
	if id, ok := s.diaryDays[key]; ok {
		entry.ID = id
	} else if prev, ok := s.diaries[entry.ID]; ok {
		delete(s.diaryDays, diaryDayKey(prev.OwnerID, prev.Date))
	}

	s.diaries[entry.ID] = copyDiary(entry)
	s.diaryDays[key] = entry.ID
	return nil
}

func (s *MemoryStorage) GetDiary(ctx context.Context, ownerID, id string) (*models.DiaryEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if entry, exists := s.diaries[id]; exists && entry.OwnerID == ownerID {
		return copyDiary(entry), nil
	}
	return nil, ErrNotFound
}

func (s *MemoryStorage) ListDiaries(ctx context.Context, ownerID string, since time.Time) ([]*models.DiaryEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	from := sinceDate(since)
	result := make([]*models.DiaryEntry, 0)
	for _, entry := range s.diaries {
		if entry.OwnerID != ownerID || entry.Date < from {
			continue
		}
		result = append(result, copyDiary(entry))
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Date != result[j].Date {
			return result[i].Date > result[j].Date
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (s *MemoryStorage) DeleteDiary(ctx context.Context, ownerID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, exists := s.diaries[id]
	if !exists || entry.OwnerID != ownerID {
		return ErrNotFound
	}
	delete(s.diaries, id)
	delete(s.diaryDays, diaryDayKey(entry.OwnerID, entry.Date))
	return nil
}

// Community methods
func (s *MemoryStorage) CreatePost(ctx context.Context, post *models.CommunityPost) error {
	if err := preparePost(post); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	post.Likes = len(s.likes[post.ID])
	stored := *post
	s.posts[post.ID] = &stored
	return nil
}

func (s *MemoryStorage) ListPosts(ctx context.Context) ([]*models.CommunityPost, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*models.CommunityPost, 0, len(s.posts))
	for _, post := range s.posts {
		p := *post
		result = append(result, &p)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (s *MemoryStorage) ToggleLike(ctx context.Context, postID, viewerID string) (*models.CommunityPost, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	post, exists := s.posts[postID]
	if !exists {
		return nil, false, ErrNotFound
	}

	viewers, ok := s.likes[postID]
	if !ok {
		viewers = make(map[string]struct{})
		s.likes[postID] = viewers
	}

	_, liked := viewers[viewerID]
	if liked {
		delete(viewers, viewerID)
	} else {
		viewers[viewerID] = struct{}{}
	}
	post.Likes = len(viewers)

	p := *post
	return &p, !liked, nil
}

func (s *MemoryStorage) DeletePost(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.posts[id]; !exists {
		return ErrNotFound
	}
	delete(s.posts, id)
	delete(s.likes, id)
	return nil
}

func (s *MemoryStorage) Close() error {
	// Nothing to close for in-memory storage
	return nil
}

// MemoryShareStore keeps shared conversations for the process lifetime.
type MemoryShareStore struct {
	mu     sync.Mutex
	shares map[string]*models.SharedConversation
}

func NewMemoryShareStore() *MemoryShareStore {
	return &MemoryShareStore{shares: make(map[string]*models.SharedConversation)}
}

func copyShare(c *models.SharedConversation) *models.SharedConversation {
	out := *c
	out.Messages = append([]models.ChatMessage(nil), c.Messages...)
	return &out
}

func (s *MemoryShareStore) SaveShare(ctx context.Context, conv *models.SharedConversation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.shares[conv.ID] = copyShare(conv)
	return nil
}

func (s *MemoryShareStore) GetShareAndCountView(ctx context.Context, id string) (*models.SharedConversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, exists := s.shares[id]
	if !exists {
		return nil, ErrNotFound
	}
	conv.Views++
	return copyShare(conv), nil
}

func (s *MemoryShareStore) Close() error {
	return nil
}
