package storage

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xaenox/maeum/internal/models"
)

// exerciseDiaries runs the diary contract against any backend.
func exerciseDiaries(t *testing.T, s Storage) {
	ctx := context.Background()
	base := time.Now().UTC().Truncate(time.Second)
	const owner = "chat-a"

	older := &models.DiaryEntry{OwnerID: owner, Emotions: []string{"sad"}, Content: "비", CreatedAt: base.Add(-48 * time.Hour)}
	newer := &models.DiaryEntry{OwnerID: owner, Emotions: []string{"happy", "anxious"}, Content: "맑음", Feedback: "좋아요", CreatedAt: base}
	require.NoError(t, s.SaveDiary(ctx, older))
	require.NoError(t, s.SaveDiary(ctx, newer))
	require.NotEmpty(t, older.ID)
	require.NotEqual(t, older.ID, newer.ID)
	assert.Equal(t, base.Format(models.DiaryDateLayout), newer.Date)

	got, err := s.GetDiary(ctx, owner, newer.ID)
	require.NoError(t, err)
	assert.Equal(t, newer.Emotions, got.Emotions)
	assert.Equal(t, "맑음", got.Content)
	assert.Equal(t, "좋아요", got.Feedback)
	assert.Equal(t, newer.Date, got.Date)
	assert.Equal(t, owner, got.OwnerID)
	assert.True(t, newer.CreatedAt.Equal(got.CreatedAt))

	all, err := s.ListDiaries(ctx, owner, time.Time{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, newer.ID, all[0].ID)
	assert.Equal(t, older.ID, all[1].ID)

	recent, err := s.ListDiaries(ctx, owner, base.Add(-time.Hour))
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, newer.ID, recent[0].ID)

	require.NoError(t, s.DeleteDiary(ctx, owner, older.ID))
	_, err = s.GetDiary(ctx, owner, older.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.DeleteDiary(ctx, owner, older.ID), ErrNotFound)
}

// exerciseDiaryOwnership checks that owners only see their own entries.
func exerciseDiaryOwnership(t *testing.T, s Storage) {
	ctx := context.Background()

	private := &models.DiaryEntry{OwnerID: "chat-a", Emotions: []string{"sad"}, Content: "chat A private"}
	require.NoError(t, s.SaveDiary(ctx, private))
	other := &models.DiaryEntry{OwnerID: "chat-b", Emotions: []string{"happy"}, Content: "chat B"}
	require.NoError(t, s.SaveDiary(ctx, other))
	assert.NotEqual(t, private.ID, other.ID)

	visible, err := s.ListDiaries(ctx, "chat-b", time.Now().AddDate(0, 0, -7))
	require.NoError(t, err)
	require.Len(t, visible, 1)
	assert.Equal(t, "chat B", visible[0].Content)

	_, err = s.GetDiary(ctx, "chat-b", private.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.DeleteDiary(ctx, "chat-b", private.ID), ErrNotFound)

	got, err := s.GetDiary(ctx, "chat-a", private.ID)
	require.NoError(t, err)
	assert.Equal(t, "chat A private", got.Content)
}

// exerciseDiaryDates checks backdating and same-day replacement.
func exerciseDiaryDates(t *testing.T, s Storage) {
	ctx := context.Background()
	const owner = "chat-dates"

	first := &models.DiaryEntry{OwnerID: owner, Date: "2026-03-01", Emotions: []string{"sad"}, Content: "처음"}
	require.NoError(t, s.SaveDiary(ctx, first))
	assert.Equal(t, "2026-03-01", first.Date)

	again := &models.DiaryEntry{OwnerID: owner, Date: "2026-03-01", Emotions: []string{"happy"}, Content: "다시"}
	require.NoError(t, s.SaveDiary(ctx, again))
	assert.Equal(t, first.ID, again.ID)

	other := &models.DiaryEntry{OwnerID: owner, Date: "2026-03-02", Emotions: []string{"angry"}, Content: "다음날"}
	require.NoError(t, s.SaveDiary(ctx, other))

	all, err := s.ListDiaries(ctx, owner, time.Time{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "2026-03-02", all[0].Date)
	assert.Equal(t, "2026-03-01", all[1].Date)
	assert.Equal(t, "다시", all[1].Content)
	assert.Equal(t, []string{"happy"}, all[1].Emotions)

	fromSecond, err := s.ListDiaries(ctx, owner, time.Date(2026, 3, 2, 18, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, fromSecond, 1)
	assert.Equal(t, other.ID, fromSecond[0].ID)

	// Another owner may use the same day.
	elsewhere := &models.DiaryEntry{OwnerID: "chat-else", Date: "2026-03-01", Emotions: []string{"neutral"}, Content: "x"}
	require.NoError(t, s.SaveDiary(ctx, elsewhere))
	assert.NotEqual(t, first.ID, elsewhere.ID)
}

func exercisePosts(t *testing.T, s Storage) {
	ctx := context.Background()
	base := time.Now().UTC().Truncate(time.Second)

	assert.ErrorIs(t, s.CreatePost(ctx, &models.CommunityPost{Content: "   "}), ErrEmptyContent)

	first := &models.CommunityPost{Content: "시험 기간이라 힘들어요", Emotion: "스트레스", CreatedAt: base.Add(-time.Hour)}
	second := &models.CommunityPost{Content: " 오늘은 괜찮았어요 ", CreatedAt: base}
	require.NoError(t, s.CreatePost(ctx, first))
	require.NoError(t, s.CreatePost(ctx, second))
	assert.Equal(t, models.DefaultPostEmotion, second.Emotion)
	assert.Equal(t, "오늘은 괜찮았어요", second.Content)

	posts, err := s.ListPosts(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, second.ID, posts[0].ID)

	post, liked, err := s.ToggleLike(ctx, first.ID, "viewer-a")
	require.NoError(t, err)
	assert.True(t, liked)
	assert.Equal(t, 1, post.Likes)

	post, liked, err = s.ToggleLike(ctx, first.ID, "viewer-b")
	require.NoError(t, err)
	assert.True(t, liked)
	assert.Equal(t, 2, post.Likes)

	post, liked, err = s.ToggleLike(ctx, first.ID, "viewer-a")
	require.NoError(t, err)
	assert.False(t, liked)
	assert.Equal(t, 1, post.Likes)

	_, _, err = s.ToggleLike(ctx, "missing", "viewer-a")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.DeletePost(ctx, first.ID))
	assert.ErrorIs(t, s.DeletePost(ctx, first.ID), ErrNotFound)
	posts, err = s.ListPosts(ctx)
	require.NoError(t, err)
	assert.Len(t, posts, 1)
}

func TestMemoryStorageDiaries(t *testing.T) {
	exerciseDiaries(t, NewMemoryStorage())
}

func TestMemoryStorageDiaryOwnership(t *testing.T) {
	exerciseDiaryOwnership(t, NewMemoryStorage())
}

func TestMemoryStorageDiaryDates(t *testing.T) {
	exerciseDiaryDates(t, NewMemoryStorage())
}

func TestMemoryStorageReplaceThenDelete(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStorage()

	entry := &models.DiaryEntry{OwnerID: "o", Date: "2026-01-05", Content: "a"}
	require.NoError(t, s.SaveDiary(ctx, entry))
	require.NoError(t, s.DeleteDiary(ctx, "o", entry.ID))

	fresh := &models.DiaryEntry{OwnerID: "o", Date: "2026-01-05", Content: "b"}
	require.NoError(t, s.SaveDiary(ctx, fresh))
	assert.NotEqual(t, entry.ID, fresh.ID)

	got, err := s.GetDiary(ctx, "o", fresh.ID)
	require.NoError(t, err)
	assert.Equal(t, "b", got.Content)
}

func TestMemoryStoragePosts(t *testing.T) {
	exercisePosts(t, NewMemoryStorage())
}

func TestMemoryStorageReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStorage()

	entry := &models.DiaryEntry{OwnerID: "o", Emotions: []string{"happy"}, Content: "x"}
	require.NoError(t, s.SaveDiary(ctx, entry))
	entry.Emotions[0] = "sad"

	got, err := s.GetDiary(ctx, "o", entry.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"happy"}, got.Emotions)

	got.Content = "changed"
	again, err := s.GetDiary(ctx, "o", entry.ID)
	require.NoError(t, err)
	assert.Equal(t, "x", again.Content)
}

func TestMemoryShareStoreCountsViews(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryShareStore()

	conv := &models.SharedConversation{
		ID:       "abc",
		Title:    "AI와의 대화",
		Messages: []models.ChatMessage{{Role: "user", Content: "안녕"}},
	}
	require.NoError(t, s.SaveShare(ctx, conv))

	got, err := s.GetShareAndCountView(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, 1, got.Views)
	assert.Equal(t, conv.Messages, got.Messages)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = s.GetShareAndCountView(ctx, "abc")
		}()
	}
	wg.Wait()

	got, err = s.GetShareAndCountView(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, 22, got.Views)

	_, err = s.GetShareAndCountView(ctx, "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}
