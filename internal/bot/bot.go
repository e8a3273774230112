package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/example/studyplan/internal/clock"
	"github.com/example/studyplan/internal/config"
	"github.com/example/studyplan/internal/progress"
	"github.com/example/studyplan/internal/review"
	"github.com/example/studyplan/internal/session"
	"github.com/example/studyplan/internal/spaced_repetition"
	"github.com/example/studyplan/pkg/models"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// MenuButton represents a button in the menu
type MenuButton struct {
	Text         string
	CallbackData string
}

// createKeyboard creates a keyboard from menu buttons
func createKeyboard(buttons [][]MenuButton) tgbotapi.InlineKeyboardMarkup {
	var keyboard [][]tgbotapi.InlineKeyboardButton
	for _, row := range buttons {
		var keyboardRow []tgbotapi.InlineKeyboardButton
		for _, button := range row {
			keyboardRow = append(keyboardRow, tgbotapi.NewInlineKeyboardButtonData(button.Text, button.CallbackData))
		}
		keyboard = append(keyboard, keyboardRow)
	}
	return tgbotapi.NewInlineKeyboardMarkup(keyboard...)
}

// sender is the part of the Telegram API the bot uses
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Store represents the persistence the bot reads and writes
type Store interface {
	review.Store

	GetOrCreateUser(ctx context.Context, telegramID int64, username, firstName string) (*models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error

	CreateReviewItem(ctx context.Context, item *models.ReviewItem) error
	ListDueItems(ctx context.Context, userID string, now time.Time, limit int) ([]models.ReviewItem, error)

	CreateSession(ctx context.Context, s *models.StudySession) error
	UpdateSession(ctx context.Context, s *models.StudySession) error
	GetSession(ctx context.Context, id string) (models.StudySession, error)
	GetOpenSession(ctx context.Context, userID string) (models.StudySession, error)
	ListScheduledSessions(ctx context.Context, userID string) ([]models.StudySession, error)

	GetPlan(ctx context.Context, id string) (models.Plan, error)
	GetLatestPlan(ctx context.Context, userID string) (models.Plan, error)
	SavePlan(ctx context.Context, p *models.Plan) error

	CreateTask(ctx context.Context, t *models.Task) error
	GetTask(ctx context.Context, id string) (models.Task, error)
	UpdateTask(ctx context.Context, t *models.Task) error

	ProgressRange(ctx context.Context, userID string, from, to time.Time) ([]models.ProgressRecord, error)
	SessionsBetween(ctx context.Context, userID string, from, to time.Time) ([]models.StudySession, error)
	TasksBetween(ctx context.Context, userID string, from, to time.Time) ([]models.Task, error)
}

// Bot represents the Telegram bot application
type Bot struct {
	api       sender
	token     string
	store     Store
	cfg       *config.Config
	config    *BotConfig
	clock     clock.Clock
	reviews   *review.Scheduler
	reviewSvc *review.Service
	sessions  *session.Machine
	tracker   *progress.Tracker

	// Per-user locks serialising read-modify-write of a user's entities.
	// Entries live only while a command of that user holds or waits for them.
	locksMu sync.Mutex
	locks   map[int64]*userLock
}

type userLock struct {
	mu   sync.Mutex
	refs int
}

// New creates a new bot instance. The Telegram connection is made in Start.
func New(cfg *config.Config, store Store, c clock.Clock) (*Bot, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if cfg.TelegramToken == "" {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN is not set")
	}
	if store == nil {
		return nil, fmt.Errorf("database connection is not established")
	}
	return newBot(nil, cfg, store, c), nil
}

func newBot(api sender, cfg *config.Config, store Store, c clock.Clock) *Bot {
	c = clock.OrSystem(c)
	reviews := review.NewScheduler(c)
	return &Bot{
		api:       api,
		token:     cfg.TelegramToken,
		store:     store,
		cfg:       cfg,
		config:    DefaultConfig(),
		clock:     c,
		reviews:   reviews,
		reviewSvc: review.NewService(store, reviews),
		sessions:  session.NewMachine(c),
		tracker:   progress.NewTracker(c),
		locks:     make(map[int64]*userLock),
	}
}

// Start connects to Telegram and handles updates until ctx is cancelled
func (b *Bot) Start(ctx context.Context) error {
	if b.api == nil {
		botAPI, err := tgbotapi.NewBotAPI(b.token)
		if err != nil {
			return fmt.Errorf("unable to create bot: %v", err)
		}
		b.api = botAPI
		slog.Info("authorized on telegram", "account", botAPI.Self.UserName)
	}
	api, ok := b.api.(*tgbotapi.BotAPI)
	if !ok {
		return fmt.Errorf("bot API does not support long polling")
	}

	// Set up the update configuration
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = b.config.UpdateTimeout
	updates := api.GetUpdatesChan(updateConfig)

	for {
		select {
		case <-ctx.Done():
			api.StopReceivingUpdates()
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			go b.handleUpdate(ctx, update)
		}
	}
}

// SendReminders implements the scheduler.Notifier interface
func (b *Bot) SendReminders(ctx context.Context, user models.User, count int) error {
	if b.api == nil {
		return fmt.Errorf("bot is not connected")
	}
	noun := "cards"
	if count == 1 {
		noun = "card"
	}
	msg := tgbotapi.NewMessage(user.TelegramID, fmt.Sprintf("You have %d %s due for review. Send /due to start.", count, noun))
	msg.ReplyMarkup = createKeyboard([][]MenuButton{{{Text: "Start review", CallbackData: callbackDue}}})
	if _, err := b.api.Send(msg); err != nil {
		return err
	}
	slog.Info("sent reminder", "user_id", user.ID, "count", count)
	return nil
}

// lockUser serialises commands of one Telegram user
func (b *Bot) lockUser(telegramID int64) func() {
	b.locksMu.Lock()
	l, ok := b.locks[telegramID]
	if !ok {
		l = &userLock{}
		b.locks[telegramID] = l
	}
	l.refs++
	b.locksMu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		b.locksMu.Lock()
		if l.refs--; l.refs == 0 {
			delete(b.locks, telegramID)
		}
		b.locksMu.Unlock()
	}
}

// handleUpdate handles incoming updates from Telegram
func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.Message != nil && update.Message.From != nil:
		msg := update.Message
		unlock := b.lockUser(msg.From.ID)
		defer unlock()

		user, err := b.store.GetOrCreateUser(ctx, msg.From.ID, msg.From.UserName, msg.From.FirstName)
		if err != nil {
			slog.Error("failed to load user", "telegram_id", msg.From.ID, "error", err)
			b.reply(msg.Chat.ID, "Something went wrong, please try again later.")
			return
		}
		if !msg.IsCommand() {
			b.reply(msg.Chat.ID, "I don't understand. Use /help to see the commands.")
			return
		}
		if err := b.HandleCommand(ctx, user, msg); err != nil {
			slog.Warn("command failed", "command", msg.Command(), "user_id", user.ID, "error", err)
			b.reply(msg.Chat.ID, userMessage(err))
		}

	case update.CallbackQuery != nil && update.CallbackQuery.From != nil:
		cb := update.CallbackQuery
		unlock := b.lockUser(cb.From.ID)
		defer unlock()

		user, err := b.store.GetOrCreateUser(ctx, cb.From.ID, cb.From.UserName, cb.From.FirstName)
		if err != nil {
			slog.Error("failed to load user", "telegram_id", cb.From.ID, "error", err)
			return
		}
		if err := b.HandleCallback(ctx, user, cb); err != nil {
			slog.Warn("callback failed", "data", cb.Data, "user_id", user.ID, "error", err)
			if cb.Message != nil {
				b.reply(cb.Message.Chat.ID, userMessage(err))
			}
		}
	}
}

func (b *Bot) reply(chatID int64, text string) {
	b.send(tgbotapi.NewMessage(chatID, text))
}

func (b *Bot) send(msg tgbotapi.MessageConfig) {
	if _, err := b.api.Send(msg); err != nil {
		slog.Error("failed to send message", "chat_id", msg.ChatID, "error", err)
	}
}

func (b *Bot) formatTime(t time.Time) string {
	return t.In(b.cfg.Location).Format("Mon 02 Jan 15:04")
}

// splitArgs splits command arguments on whitespace
func splitArgs(message *tgbotapi.Message) []string {
	return strings.Fields(message.CommandArguments())
}

// parseGrade accepts a 0-5 quality or an answer accuracy such as "80%"
func parseGrade(s string) (int, error) {
	s = strings.TrimSpace(s)
	if pct, ok := strings.CutSuffix(s, "%"); ok {
		accuracy, err := strconv.ParseFloat(pct, 64)
		if err != nil || accuracy < 0 || accuracy > 100 {
			return 0, fmt.Errorf("accuracy must be a percentage from 0%% to 100%%")
		}
		return spaced_repetition.QualityFromAccuracy(accuracy / 100), nil
	}
	return parseQuality(s)
}

func parseQuality(s string) (int, error) {
	q, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("quality must be a number from 0 to 5")
	}
	return q, nil
}
