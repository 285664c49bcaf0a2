package models

import "time"

// EmotionLabel is one of the fixed mood categories used to tag text.
type EmotionLabel string

const (
	Happy   EmotionLabel = "happy"
	Sad     EmotionLabel = "sad"
	Angry   EmotionLabel = "angry"
	Anxious EmotionLabel = "anxious"
	Neutral EmotionLabel = "neutral"
)

// Labels returns every label in declaration order.
func Labels() []EmotionLabel {
	return []EmotionLabel{Happy, Sad, Angry, Anxious, Neutral}
}

// Valid reports whether l belongs to the closed label set.
func (l EmotionLabel) Valid() bool {
	switch l {
	case Happy, Sad, Angry, Anxious, Neutral:
		return true
	}
	return false
}

// Negative reports whether l is one of sad, angry or anxious.
func (l EmotionLabel) Negative() bool {
	return l == Sad || l == Angry || l == Anxious
}

// ParseEmotionLabel maps s to a label, falling back to Neutral.
func ParseEmotionLabel(s string) EmotionLabel {
	l := EmotionLabel(s)
	if l.Valid() {
		return l
	}
	return Neutral
}

// Chat roles accepted by the chat endpoint.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// ChatMessage is one turn of a conversation.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// LastUserMessage returns the content of the most recent user turn.
func LastUserMessage(messages []ChatMessage) (string, bool) {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == RoleUser {
			return messages[i].Content, true
		}
	}
	return "", false
}

// ChatReply is the complete assistant answer returned in offline mode.
type ChatReply struct {
	ID        string       `json:"id"`
	Role      string       `json:"role"`
	Content   string       `json:"content"`
	Emotion   EmotionLabel `json:"emotion"`
	CreatedAt time.Time    `json:"createdAt"`
}

// SharedConversation is a conversation published under a share id.
type SharedConversation struct {
	ID        string        `json:"id"`
	Title     string        `json:"title"`
	Messages  []ChatMessage `json:"messages"`
	CreatedAt time.Time     `json:"createdAt"`
	Views     int           `json:"views"`
}
