package models

import (
	"strings"
	"time"
)

// DiaryDateLayout is the calendar-day format of DiaryEntry.Date.
const DiaryDateLayout = "2006-01-02"

// DiaryEntry is one persisted mood diary record. An owner keeps at most one
// entry per Date.
type DiaryEntry struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"ownerId"`
	Date      string    `json:"date"`
	Emotions  []string  `json:"emotions"`
	Content   string    `json:"content"`
	Feedback  string    `json:"feedback"`
	Weather   string    `json:"weather,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Labels converts the stored emotion strings into labels.
func (d *DiaryEntry) Labels() []EmotionLabel {
	labels := make([]EmotionLabel, 0, len(d.Emotions))
	for _, e := range d.Emotions {
		labels = append(labels, EmotionLabel(e))
	}
	return labels
}

// DiaryFeedbackRequest is the payload of the diary feedback endpoint.
// Emotion is the legacy single-label form. Date defaults to today.
type DiaryFeedbackRequest struct {
	OwnerID    string   `json:"ownerId"`
	Date       string   `json:"date,omitempty"`
	Emotions   []string `json:"emotions"`
	Emotion    string   `json:"emotion,omitempty"`
	DiaryEntry string   `json:"diaryEntry"`
	Weather    string   `json:"weather,omitempty"`
}

// ParseDiaryDate checks that s is a YYYY-MM-DD calendar day.
func ParseDiaryDate(s string) (time.Time, error) {
	return time.Parse(DiaryDateLayout, strings.TrimSpace(s))
}

// EmotionList merges the plural and legacy forms, dropping blanks.
func (r *DiaryFeedbackRequest) EmotionList() []string {
	var out []string
	for _, e := range r.Emotions {
		if e = strings.TrimSpace(e); e != "" {
			out = append(out, e)
		}
	}
	if len(out) == 0 {
		if e := strings.TrimSpace(r.Emotion); e != "" {
			out = append(out, e)
		}
	}
	return out
}

// CommunityPost is an anonymous post in the community feed.
type CommunityPost struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Emotion   string    `json:"emotion"`
	Likes     int       `json:"likes"`
	Comments  int       `json:"comments"`
	CreatedAt time.Time `json:"createdAt"`
}

// DefaultPostEmotion tags posts submitted without an emotion.
const DefaultPostEmotion = "일반"
