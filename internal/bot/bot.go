package bot

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/xaenox/maeum/internal/classifier"
	"github.com/xaenox/maeum/internal/feedback"
	"github.com/xaenox/maeum/internal/models"
	"github.com/xaenox/maeum/internal/responder"
	"github.com/xaenox/maeum/internal/stats"
	"github.com/xaenox/maeum/internal/storage"
)

const (
	historyLimit = 20
	replyTimeout = 60 * time.Second
)

type Bot struct {
	api        *tgbotapi.BotAPI
	classifier classifier.Classifier
	responder  responder.Responder
	storage    storage.Storage
	logger     *zap.Logger

	mu        sync.Mutex
	histories map[int64][]models.ChatMessage
}

func New(token string, clf classifier.Classifier, resp responder.Responder, store storage.Storage, logger *zap.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	logger.Info("Authorized on Telegram", zap.String("username", api.Self.UserName))
	return newBot(api, clf, resp, store, logger), nil
}

func newBot(api *tgbotapi.BotAPI, clf classifier.Classifier, resp responder.Responder, store storage.Storage, logger *zap.Logger) *Bot {
	return &Bot{
		api:        api,
		classifier: clf,
		responder:  resp,
		storage:    store,
		logger:     logger,
		histories:  make(map[int64][]models.ChatMessage),
	}
}

// Start polls for updates until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	defer b.api.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil {
				continue
			}
			go b.handleMessage(ctx, update.Message)
		}
	}
}

func (b *Bot) handleMessage(ctx context.Context, message *tgbotapi.Message) {
	ctx, cancel := context.WithTimeout(ctx, replyTimeout)
	defer cancel()

	if message.IsCommand() {
		b.handleCommand(ctx, message)
		return
	}

	content := message.Text
	if message.Caption != "" {
		content = message.Caption
	}
	if strings.TrimSpace(content) == "" {
		return
	}

	reply, err := b.chatReply(ctx, message.Chat.ID, content)
	if err != nil {
		b.logger.Error("Failed to generate reply",
			zap.Error(err),
			zap.Int64("chat_id", message.Chat.ID))
		b.sendErrorMessage(message.Chat.ID, "지금은 답변을 드리기 어려워요. 잠시 후 다시 시도해 주세요.")
		return
	}
	b.sendMessage(message.Chat.ID, reply)
}

// chatReply classifies text and asks the responder. Both turns enter the
// chat history only once the reply is complete, so a failed turn is not
// resent. Streamed replies are collected since Telegram messages are sent
// whole.
func (b *Bot) chatReply(ctx context.Context, chatID int64, text string) (string, error) {
	label := b.classifier.Classify(text)
	userTurn := models.ChatMessage{Role: models.RoleUser, Content: text}
	history := append(b.history(chatID), userTurn)

	reply, err := b.responder.Respond(ctx, history, label)
	if err != nil {
		return "", err
	}

	answer := reply.Text
	if reply.Streaming() {
		var sb strings.Builder
		for chunk := range reply.Stream {
			if chunk.Err != nil {
				return "", chunk.Err
			}
			sb.WriteString(chunk.Text)
		}
		answer = sb.String()
	}

	b.appendHistory(chatID, userTurn, models.ChatMessage{Role: models.RoleAssistant, Content: answer})
	b.logger.Debug("Chat reply generated",
		zap.Int64("chat_id", chatID),
		zap.String("emotion", string(label)),
		zap.String("mode", string(b.responder.Mode())))
	return answer, nil
}

// history returns a copy of the chat's recent turns.
func (b *Bot) history(chatID int64) []models.ChatMessage {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]models.ChatMessage(nil), b.histories[chatID]...)
}

func (b *Bot) appendHistory(chatID int64, msgs ...models.ChatMessage) []models.ChatMessage {
	b.mu.Lock()
	defer b.mu.Unlock()

	history := append(b.histories[chatID], msgs...)
	if len(history) > historyLimit {
		history = history[len(history)-historyLimit:]
	}
	b.histories[chatID] = history
	return append([]models.ChatMessage(nil), history...)
}

// diaryOwner files diary entries per chat.
func diaryOwner(chatID int64) string {
	return "telegram:" + strconv.FormatInt(chatID, 10)
}

func (b *Bot) handleCommand(ctx context.Context, message *tgbotapi.Message) {
	switch message.Command() {
	case "start":
		b.handleStart(message)
	case "help":
		b.handleHelp(message)
	case "diary":
		b.handleDiary(ctx, message)
	case "stats":
		b.handleStats(ctx, message)
	case "reset":
		b.mu.Lock()
		delete(b.histories, message.Chat.ID)
		b.mu.Unlock()
		b.sendMessage(message.Chat.ID, "대화를 새로 시작할게요. 🙂")
	default:
		b.sendMessage(message.Chat.ID, "알 수 없는 명령이에요. /help 로 사용법을 확인해 주세요.")
	}
}

func (b *Bot) handleStart(message *tgbotapi.Message) {
	welcome := `안녕하세요, 마음 친구예요! 🙂
오늘 어떤 하루를 보내셨나요? 편하게 이야기해 주시면 들어드릴게요.

/help 로 감정 일기 쓰는 방법을 볼 수 있어요.`

	b.sendMessage(message.Chat.ID, welcome)
}

func (b *Bot) handleHelp(message *tgbotapi.Message) {
	help := `사용할 수 있는 명령:
/start - 시작하기
/help - 도움말
/diary 감정들 | 일기 내용 - 감정 일기 쓰기
  예) /diary happy sad | 친구를 만났지만 헤어질 때 허전했어요
  감정: happy, sad, angry, anxious, neutral
  같은 날 다시 쓰면 그날 일기를 새로 바꿔요
/stats [week|month] - 감정 통계 보기
/reset - 대화 기록 지우기

그 밖의 메시지는 대화로 받아들일게요.`

	b.sendMessage(message.Chat.ID, help)
}

// parseDiaryArgs splits "label label | text" into a feedback request.
func parseDiaryArgs(args string) models.DiaryFeedbackRequest {
	labels, text, _ := strings.Cut(args, "|")

	var emotions []string
	for _, f := range strings.Fields(labels) {
		emotions = append(emotions, strings.ToLower(f))
	}
	return models.DiaryFeedbackRequest{Emotions: emotions, DiaryEntry: strings.TrimSpace(text)}
}

// recordDiary validates, composes feedback and stores today's entry for the
// chat, replacing an earlier one from the same day. It returns the text to
// show the user.
func (b *Bot) recordDiary(ctx context.Context, chatID int64, req models.DiaryFeedbackRequest) (string, error) {
	if guide, ok := feedback.Validate(&req); !ok {
		return guide, nil
	}

	entry := &models.DiaryEntry{
		OwnerID:  diaryOwner(chatID),
		Emotions: req.EmotionList(),
		Content:  req.DiaryEntry,
		Feedback: feedback.ForRequest(&req),
	}
	if err := b.storage.SaveDiary(ctx, entry); err != nil {
		return "", err
	}
	return entry.Feedback, nil
}

func (b *Bot) handleDiary(ctx context.Context, message *tgbotapi.Message) {
	text, err := b.recordDiary(ctx, message.Chat.ID, parseDiaryArgs(message.CommandArguments()))
	if err != nil {
		b.logger.Error("Failed to save diary entry",
			zap.Error(err),
			zap.Int64("chat_id", message.Chat.ID))
		b.sendErrorMessage(message.Chat.ID, "일기를 저장하지 못했어요. 다시 시도해 주세요.")
		return
	}
	b.sendMessage(message.Chat.ID, text)
}

func (b *Bot) handleStats(ctx context.Context, message *tgbotapi.Message) {
	r, err := stats.ParseRange(strings.TrimSpace(message.CommandArguments()))
	if err != nil {
		b.sendMessage(message.Chat.ID, "기간은 week 또는 month 로 입력해 주세요.")
		return
	}

	now := time.Now()
	entries, err := b.storage.ListDiaries(ctx, diaryOwner(message.Chat.ID), r.Start(now))
	if err != nil {
		b.logger.Error("Failed to list diary entries",
			zap.Error(err),
			zap.Int64("chat_id", message.Chat.ID))
		b.sendErrorMessage(message.Chat.ID, "통계를 불러오지 못했어요.")
		return
	}

	msg := tgbotapi.NewMessage(message.Chat.ID, formatStats(stats.Compute(entries, r, now)))
	msg.ParseMode = "MarkdownV2"
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("Failed to send stats message",
			zap.Error(err),
			zap.Int64("chat_id", message.Chat.ID))
	}
}

func formatStats(summary stats.Summary) string {
	period := "최근 7일"
	if summary.Range == stats.RangeMonth {
		period = "최근 한 달"
	}
	if summary.Total == 0 {
		return escapeMarkdown(period + " 동안 기록된 감정이 없어요. 일기를 작성해보세요!")
	}

	emotions := make([]string, 0, len(summary.Counts))
	for e := range summary.Counts {
		emotions = append(emotions, e)
	}
	sort.Slice(emotions, func(i, j int) bool {
		ci, cj := summary.Counts[emotions[i]], summary.Counts[emotions[j]]
		if ci != cj {
			return ci > cj
		}
		return emotions[i] < emotions[j]
	})

	response := fmt.Sprintf("*%s 감정 통계*\n", escapeMarkdown(period))
	response += escapeMarkdown(fmt.Sprintf("일기 %d개, 감정 %d개", summary.Entries, summary.Total)) + "\n\n"
	for _, e := range emotions {
		count := summary.Counts[e]
		percent := count * 100 / summary.Total
		response += escapeMarkdown(fmt.Sprintf("#%s %d (%d%%)", e, count, percent)) + "\n"
	}
	return response
}

// escapeMarkdown escapes the characters reserved by Telegram MarkdownV2.
func escapeMarkdown(text string) string {
	specialChars := []string{"\\", "_", "*", "[", "]", "(", ")", "~", "`", ">", "#", "+", "-", "=", "|", "{", "}", ".", "!"}
	escaped := text
	for _, char := range specialChars {
		escaped = strings.ReplaceAll(escaped, char, "\\"+char)
	}
	return escaped
}

func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("Failed to send message",
			zap.Error(err),
			zap.Int64("chat_id", chatID))
	}
}

func (b *Bot) sendErrorMessage(chatID int64, text string) {
	b.sendMessage(chatID, "⚠️ "+text)
}
