package classifier

import (
	"strings"

	"github.com/xaenox/maeum/internal/models"
)

type Classifier interface {
	Classify(text string) models.EmotionLabel
}

// KeywordEntry binds a label to its trigger substrings.
type KeywordEntry struct {
	Label    models.EmotionLabel
	Triggers []string
}

// KeywordTable is evaluated in slice order; earlier entries win ties.
type KeywordTable []KeywordEntry

// DefaultTable returns a fresh copy of the built-in Korean trigger table.
func DefaultTable() KeywordTable {
	return KeywordTable{
		{Label: models.Happy, Triggers: []string{"기쁘", "행복", "좋", "즐거", "신나", "웃", "😊", "😄", "😃", "만족", "감사"}},
		{Label: models.Sad, Triggers: []string{"슬프", "우울", "힘들", "지치", "외로", "😢", "😭", "😔", "절망", "허전"}},
		{Label: models.Angry, Triggers: []string{"화나", "짜증", "분노", "열받", "😠", "😡", "🤬", "열받", "분통"}},
		{Label: models.Anxious, Triggers: []string{"불안", "걱정", "긴장", "스트레스", "😟", "😰", "😨", "초조", "두려움"}},
		{Label: models.Neutral, Triggers: []string{"그냥", "보통", "평범", "괜찮", "😐", "😑", "일반"}},
	}
}

// Score is the number of distinct triggers of Label found in a text.
type Score struct {
	Label models.EmotionLabel
	Value int
}

// KeywordClassifier scores text by trigger containment.
type KeywordClassifier struct {
	table KeywordTable
}

func NewKeywordClassifier(table KeywordTable) *KeywordClassifier {
	// Triggers are folded once so matching only lowers the input.
	folded := make(KeywordTable, 0, len(table))
	for _, entry := range table {
		triggers := make([]string, 0, len(entry.Triggers))
		for _, t := range entry.Triggers {
			if t == "" {
				continue
			}
			triggers = append(triggers, strings.ToLower(t))
		}
		folded = append(folded, KeywordEntry{Label: entry.Label, Triggers: triggers})
	}
	return &KeywordClassifier{table: folded}
}

// NewDefaultClassifier builds a classifier over DefaultTable.
func NewDefaultClassifier() *KeywordClassifier {
	return NewKeywordClassifier(DefaultTable())
}

// Classify returns the label with the highest score. A label only takes the
// lead by strictly beating the current maximum, so ties keep the earlier
// entry and text without any trigger is Neutral.
func (c *KeywordClassifier) Classify(text string) models.EmotionLabel {
	detected := models.Neutral
	maxScore := 0
	for _, s := range c.Scores(text) {
		if s.Value > maxScore {
			maxScore = s.Value
			detected = s.Label
		}
	}
	return detected
}

// Scores returns the score of every table entry in table order.
func (c *KeywordClassifier) Scores(text string) []Score {
	content := strings.ToLower(text)
	scores := make([]Score, 0, len(c.table))
	for _, entry := range c.table {
		score := 0
		for _, trigger := range entry.Triggers {
			if strings.Contains(content, trigger) {
				score++
			}
		}
		scores = append(scores, Score{Label: entry.Label, Value: score})
	}
	return scores
}
