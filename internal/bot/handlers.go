package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/example/studyplan/internal/apperr"
	"github.com/example/studyplan/internal/clock"
	"github.com/example/studyplan/internal/plan"
	"github.com/example/studyplan/internal/progress"
	"github.com/example/studyplan/internal/review"
	"github.com/example/studyplan/internal/session"
	"github.com/example/studyplan/pkg/models"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Constants for callback data
const (
	callbackDue        = "due"
	callbackShowPrefix = "show:"
	callbackRatePrefix = "rate:"
)

const helpText = `Study planner commands:

/due - review the cards that are due
/review <card> <0-5|accuracy%> [ms] - grade a card
/add <front> | <back> [| easy|medium|hard] - add a card
/plan_new [goal] - start a new plan
/milestone_add <YYYY-MM-DD> <title> - add a milestone to your plan
/task_new [minutes] <title> - add a task for today
/session_new [minutes] <title> - plan a session starting now
/session_start [session] - start the next planned session
/pause, /resume, /complete - control the running session
/cancel [session] - cancel the running or a planned session
/task_done <task> <minutes> - complete a task and plan its reviews
/progress - last week's progress
/streak - consecutive study days
/plan [plan] - plan totals and next milestone
/milestone [plan] <milestone> - mark a milestone achieved
/notify <hour|off> - daily reminder hour`

// usageError is shown to the user as is
type usageError string

func (e usageError) Error() string { return string(e) }

// userMessage turns a handler error into the reply text
func userMessage(err error) string {
	var ue usageError
	switch {
	case errors.As(err, &ue):
		return string(ue)
	case errors.Is(err, apperr.ErrInvalidQuality):
		return "Quality must be a number from 0 to 5."
	case errors.Is(err, apperr.ErrInvalidTransition):
		return "That is not possible right now: " + err.Error()
	case errors.Is(err, apperr.ErrItemNotFound):
		return "Not found."
	case errors.Is(err, apperr.ErrInvalidInput):
		return err.Error()
	default:
		return "Something went wrong, please try again later."
	}
}

// HandleCommand handles bot commands
func (b *Bot) HandleCommand(ctx context.Context, user *models.User, message *tgbotapi.Message) error {
	var err error
	switch message.Command() {
	case "start":
		err = b.handleStart(user, message)
	case "help":
		b.reply(message.Chat.ID, helpText)
	case "due":
		err = b.handleDue(ctx, user, message.Chat.ID)
	case "review":
		err = b.handleReview(ctx, user, message)
	case "add":
		err = b.handleAdd(ctx, user, message)
	case "plan_new":
		err = b.handlePlanNew(ctx, user, message)
	case "milestone_add":
		err = b.handleMilestoneAdd(ctx, user, message)
	case "task_new":
		err = b.handleTaskNew(ctx, user, message)
	case "session_new":
		err = b.handleSessionNew(ctx, user, message)
	case "session_start":
		err = b.handleSessionStart(ctx, user, message)
	case "pause":
		err = b.handleOpenSession(ctx, user, message, b.sessions.Pause)
	case "resume":
		err = b.handleOpenSession(ctx, user, message, b.sessions.Resume)
	case "complete":
		err = b.handleOpenSession(ctx, user, message, b.sessions.Complete)
	case "cancel":
		err = b.handleCancel(ctx, user, message)
	case "task_done":
		err = b.handleTaskDone(ctx, user, message)
	case "progress":
		err = b.handleProgress(ctx, user, message.Chat.ID)
	case "streak":
		err = b.handleStreak(ctx, user, message.Chat.ID)
	case "plan":
		err = b.handlePlan(ctx, user, message)
	case "milestone":
		err = b.handleMilestone(ctx, user, message)
	case "notify":
		err = b.handleNotify(ctx, user, message)
	default:
		b.reply(message.Chat.ID, "Unknown command. Use /help to see the commands.")
	}
	return err
}

func (b *Bot) handleStart(user *models.User, message *tgbotapi.Message) error {
	name := user.FirstName
	if name == "" {
		name = user.Username
	}
	msg := tgbotapi.NewMessage(message.Chat.ID, fmt.Sprintf("Welcome, %s! 🎓\n\n%s", name, helpText))
	msg.ReplyMarkup = createKeyboard([][]MenuButton{{{Text: "🎯 Review due cards", CallbackData: callbackDue}}})
	b.send(msg)
	return nil
}

// dueLimit is the number of cards offered in one /due batch
func (b *Bot) dueLimit(user *models.User) int {
	limit := b.cfg.MaxDailyReviews
	if user.ReviewsPerDay > 0 && user.ReviewsPerDay < limit {
		limit = user.ReviewsPerDay
	}
	return limit
}

func (b *Bot) handleDue(ctx context.Context, user *models.User, chatID int64) error {
	items, err := b.store.ListDueItems(ctx, user.ID, b.clock.Now(), b.dueLimit(user))
	if err != nil {
		return err
	}
	if len(items) == 0 {
		b.reply(chatID, "Nothing is due. 🎉")
		return nil
	}

	b.reply(chatID, fmt.Sprintf("%d card(s) due.", len(items)))
	b.sendCard(chatID, items[0])
	return nil
}

func (b *Bot) sendCard(chatID int64, item models.ReviewItem) {
	status := review.GetDueStatus(item, b.clock.Now())
	msg := tgbotapi.NewMessage(chatID, fmt.Sprintf("❓ %s\n\n(%s, card %s)", item.Front, status, item.ID))
	msg.ReplyMarkup = createKeyboard([][]MenuButton{{{Text: "Show answer", CallbackData: callbackShowPrefix + item.ID}}})
	b.send(msg)
}

func qualityButtons(itemID string) [][]MenuButton {
	row := make([]MenuButton, 0, 6)
	for q := 0; q <= 5; q++ {
		row = append(row, MenuButton{Text: strconv.Itoa(q), CallbackData: fmt.Sprintf("%s%s:%d", callbackRatePrefix, itemID, q)})
	}
	return [][]MenuButton{row}
}

// ownedItem loads an item and hides items of other users
func (b *Bot) ownedItem(ctx context.Context, user *models.User, id string) (models.ReviewItem, error) {
	item, err := b.store.GetReviewItem(ctx, id)
	if err != nil {
		return models.ReviewItem{}, err
	}
	if item.UserID != user.ID {
		return models.ReviewItem{}, apperr.NotFound("review item", id)
	}
	return item, nil
}

func (b *Bot) applyReview(ctx context.Context, user *models.User, chatID int64, itemID string, quality int, opts ...review.Option) error {
	if _, err := b.ownedItem(ctx, user, itemID); err != nil {
		return err
	}
	item, err := b.reviewSvc.ReviewByID(ctx, itemID, quality, opts...)
	if err != nil {
		return err
	}
	text := fmt.Sprintf("Next review in %d day(s), %s. Ease %.2f.", item.Interval, b.formatTime(item.NextReview), item.EaseFactor)
	if review.IsMastered(item) {
		text += " Mastered ⭐"
	}
	b.reply(chatID, text)
	return nil
}

func (b *Bot) handleReview(ctx context.Context, user *models.User, message *tgbotapi.Message) error {
	args := splitArgs(message)
	if len(args) < 2 {
		return usageError("Usage: /review <card> <0-5|accuracy%> [response ms]")
	}
	quality, err := parseGrade(args[1])
	if err != nil {
		return usageError(err.Error())
	}
	var opts []review.Option
	if len(args) > 2 {
		ms, err := strconv.ParseFloat(args[2], 64)
		if err != nil {
			return usageError("Response time must be a number of milliseconds")
		}
		opts = append(opts, review.WithResponseTime(ms))
	}
	return b.applyReview(ctx, user, message.Chat.ID, args[0], quality, opts...)
}

func (b *Bot) handleAdd(ctx context.Context, user *models.User, message *tgbotapi.Message) error {
	parts := strings.Split(message.CommandArguments(), "|")
	if len(parts) < 2 {
		return usageError("Usage: /add <front> | <back> [| easy|medium|hard]")
	}
	item, err := b.reviews.NewItem(user.ID, "", strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]))
	if err != nil {
		return err
	}
	if len(parts) > 2 {
		switch d := models.Difficulty(strings.ToLower(strings.TrimSpace(parts[2]))); d {
		case models.DifficultyEasy, models.DifficultyMedium, models.DifficultyHard:
			item.Difficulty = d
		default:
			return usageError("Difficulty must be easy, medium or hard")
		}
	}
	if err := b.store.CreateReviewItem(ctx, &item); err != nil {
		return err
	}
	b.reply(message.Chat.ID, fmt.Sprintf("Card added (%s). It is due now.", item.ID))
	return nil
}

func (b *Bot) handleSessionNew(ctx context.Context, user *models.User, message *tgbotapi.Message) error {
	args := splitArgs(message)
	minutes := b.config.DefaultSessionMinutes
	if len(args) > 0 {
		if m, err := strconv.Atoi(args[0]); err == nil {
			minutes = m
			args = args[1:]
		}
	}
	title := strings.Join(args, " ")
	if title == "" {
		title = "Study session"
	}

	p, hasPlan, err := b.latestPlan(ctx, user)
	if err != nil {
		return err
	}
	s, err := b.sessions.New(user.ID, p.GoalID, title, models.SessionTypeStudy, b.clock.Now(), minutes)
	if err != nil {
		return err
	}
	if hasPlan {
		s.PlanID = p.ID
	}
	if err := b.store.CreateSession(ctx, &s); err != nil {
		return err
	}
	b.reply(message.Chat.ID, fmt.Sprintf("Planned %q for %d min (%s). Send /session_start to begin.", s.Title, s.PlannedDuration, s.ID))
	return nil
}

// latestPlan returns the user's most recent plan, if there is one
func (b *Bot) latestPlan(ctx context.Context, user *models.User) (models.Plan, bool, error) {
	p, err := b.store.GetLatestPlan(ctx, user.ID)
	if errors.Is(err, apperr.ErrItemNotFound) {
		return models.Plan{}, false, nil
	}
	if err != nil {
		return models.Plan{}, false, err
	}
	return p, true, nil
}

func (b *Bot) handlePlanNew(ctx context.Context, user *models.User, message *tgbotapi.Message) error {
	goal := strings.TrimSpace(message.CommandArguments())
	p := plan.New(user.ID, goal, b.clock.Now())
	p.ReviewIntervals = append(models.IntList(nil), b.cfg.ReviewIntervals...)
	if err := b.store.SavePlan(ctx, &p); err != nil {
		return err
	}
	b.reply(message.Chat.ID, fmt.Sprintf("📅 Plan %s created. New sessions and tasks join it.", p.ID))
	return nil
}

func (b *Bot) handleMilestoneAdd(ctx context.Context, user *models.User, message *tgbotapi.Message) error {
	args := splitArgs(message)
	if len(args) < 2 {
		return usageError("Usage: /milestone_add <YYYY-MM-DD> <title>")
	}
	target, err := time.ParseInLocation("2006-01-02", args[0], b.cfg.Location)
	if err != nil {
		return usageError("Date must look like 2024-06-30")
	}
	p, hasPlan, err := b.latestPlan(ctx, user)
	if err != nil {
		return err
	}
	if !hasPlan {
		return usageError("No plan yet. Use /plan_new first.")
	}
	updated, m := plan.AddMilestone(p, strings.Join(args[1:], " "), "checkpoint", target)
	updated.UpdatedAt = b.clock.Now()
	if err := b.store.SavePlan(ctx, &updated); err != nil {
		return err
	}
	b.reply(message.Chat.ID, fmt.Sprintf("🏁 Milestone %q due %s (%s).", m.Title, args[0], m.ID))
	return nil
}

func (b *Bot) handleTaskNew(ctx context.Context, user *models.User, message *tgbotapi.Message) error {
	args := splitArgs(message)
	minutes := b.config.DefaultTaskMinutes
	if len(args) > 0 {
		if m, err := strconv.Atoi(args[0]); err == nil {
			minutes = m
			args = args[1:]
		}
	}
	if len(args) == 0 {
		return usageError("Usage: /task_new [minutes] <title>")
	}
	if minutes <= 0 {
		return usageError("Minutes must be positive")
	}
	p, _, err := b.latestPlan(ctx, user)
	if err != nil {
		return err
	}

	now := b.clock.Now()
	t := models.Task{
		UserID:            user.ID,
		GoalID:            p.GoalID,
		Title:             strings.Join(args, " "),
		Type:              "study",
		EstimatedDuration: minutes,
		Difficulty:        3,
		Status:            models.TaskNotStarted,
		ScheduledDate:     &now,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := b.store.CreateTask(ctx, &t); err != nil {
		return err
	}
	b.reply(message.Chat.ID, fmt.Sprintf("📝 Task %q added (%s). Send /task_done %s <minutes> when finished.", t.Title, t.ID, t.ID))
	return nil
}

func (b *Bot) handleSessionStart(ctx context.Context, user *models.User, message *tgbotapi.Message) error {
	if open, err := b.store.GetOpenSession(ctx, user.ID); err == nil {
		return usageError(fmt.Sprintf("Session %q is already %s. Finish it first.", open.Title, open.Status))
	} else if !errors.Is(err, apperr.ErrItemNotFound) {
		return err
	}

	var s models.StudySession
	if args := splitArgs(message); len(args) > 0 {
		var err error
		if s, err = b.ownedSession(ctx, user, args[0]); err != nil {
			return err
		}
	} else {
		scheduled, err := b.store.ListScheduledSessions(ctx, user.ID)
		if err != nil {
			return err
		}
		if len(scheduled) == 0 {
			return usageError("No planned sessions. Use /session_new first.")
		}
		s = scheduled[0]
	}

	started, err := b.sessions.Start(s)
	if err != nil {
		return err
	}
	if err := b.store.UpdateSession(ctx, &started); err != nil {
		return err
	}
	b.reply(message.Chat.ID, fmt.Sprintf("▶️ %q started, planned %d min.", started.Title, started.PlannedDuration))
	return nil
}

func (b *Bot) ownedSession(ctx context.Context, user *models.User, id string) (models.StudySession, error) {
	s, err := b.store.GetSession(ctx, id)
	if err != nil {
		return models.StudySession{}, err
	}
	if s.UserID != user.ID {
		return models.StudySession{}, apperr.NotFound("study session", id)
	}
	return s, nil
}

// handleOpenSession applies op to the user's active or paused session
func (b *Bot) handleOpenSession(ctx context.Context, user *models.User, message *tgbotapi.Message, op func(models.StudySession) (models.StudySession, error)) error {
	open, err := b.store.GetOpenSession(ctx, user.ID)
	if errors.Is(err, apperr.ErrItemNotFound) {
		return usageError("No session is running.")
	}
	if err != nil {
		return err
	}
	updated, err := op(open)
	if err != nil {
		return err
	}
	return b.saveSession(ctx, message.Chat.ID, updated)
}

func (b *Bot) handleCancel(ctx context.Context, user *models.User, message *tgbotapi.Message) error {
	if args := splitArgs(message); len(args) > 0 {
		s, err := b.ownedSession(ctx, user, args[0])
		if err != nil {
			return err
		}
		cancelled, err := b.sessions.Cancel(s)
		if err != nil {
			return err
		}
		return b.saveSession(ctx, message.Chat.ID, cancelled)
	}
	return b.handleOpenSession(ctx, user, message, b.sessions.Cancel)
}

// saveSession stores a session after a transition and refreshes its plan
func (b *Bot) saveSession(ctx context.Context, chatID int64, s models.StudySession) error {
	if err := b.store.UpdateSession(ctx, &s); err != nil {
		return err
	}
	if s.PlanID != "" && s.Status.Terminal() {
		if err := b.refreshPlan(ctx, s); err != nil {
			slog.Error("failed to refresh plan", "plan_id", s.PlanID, "session_id", s.ID, "error", err)
		}
	}

	now := b.clock.Now()
	var text string
	switch s.Status {
	case models.SessionPaused:
		text = fmt.Sprintf("⏸ Paused after %s. Send /resume to continue.", session.Elapsed(s, now).Round(time.Minute))
	case models.SessionActive:
		text = fmt.Sprintf("▶️ Resumed. %s studied so far.", session.Elapsed(s, now).Round(time.Minute))
	case models.SessionCompleted:
		actual := 0
		if s.ActualDuration != nil {
			actual = *s.ActualDuration
		}
		text = fmt.Sprintf("✅ Done: %d of %d min, %d pause(s), focus score %d.", actual, s.PlannedDuration, s.PauseCount, s.FocusScore)
	case models.SessionCancelled:
		text = fmt.Sprintf("Session %q cancelled.", s.Title)
	default:
		text = fmt.Sprintf("Session %q is %s.", s.Title, s.Status)
	}
	b.reply(chatID, text)
	return nil
}

func (b *Bot) refreshPlan(ctx context.Context, s models.StudySession) error {
	p, err := b.store.GetPlan(ctx, s.PlanID)
	if err != nil {
		return err
	}
	p, err = plan.ReplaceSession(p, s, b.clock.Now())
	if err != nil {
		return err
	}
	return b.store.SavePlan(ctx, &p)
}

func (b *Bot) handleTaskDone(ctx context.Context, user *models.User, message *tgbotapi.Message) error {
	args := splitArgs(message)
	if len(args) < 2 {
		return usageError("Usage: /task_done <task> <minutes>")
	}
	minutes, err := strconv.Atoi(args[1])
	if err != nil {
		return usageError("Minutes must be a number")
	}
	t, err := b.store.GetTask(ctx, args[0])
	if err != nil {
		return err
	}
	if t.UserID != user.ID {
		return apperr.NotFound("task", args[0])
	}

	now := b.clock.Now()
	if t.IsReview {
		done, err := review.CompleteReviewTask(t, minutes, now)
		if err != nil {
			return err
		}
		if err := b.store.UpdateTask(ctx, &done); err != nil {
			return err
		}
		b.reply(message.Chat.ID, fmt.Sprintf("Review of %q done.", done.Title))
		return nil
	}

	done, err := review.MarkComplete(t, minutes, now)
	if err != nil {
		return err
	}
	if err := b.store.UpdateTask(ctx, &done); err != nil {
		return err
	}
	intervals := b.cfg.ReviewIntervals
	if p, err := b.store.GetLatestPlan(ctx, user.ID); err == nil && len(p.ReviewIntervals) > 0 {
		intervals = p.ReviewIntervals
	}
	reviews, err := review.SpawnReviewTasks(done, intervals, now)
	if err != nil {
		return err
	}
	for i := range reviews {
		if err := b.store.CreateTask(ctx, &reviews[i]); err != nil {
			return err
		}
	}
	text := fmt.Sprintf("✅ %q done.", done.Title)
	if len(reviews) > 0 {
		text += fmt.Sprintf(" %d review(s) planned, first on %s.", len(reviews), b.formatTime(*reviews[0].ScheduledDate))
	}
	b.reply(message.Chat.ID, text)
	return nil
}

// recordsThrough returns the stored records from the given day on, with today's
// record rebuilt from today's sessions and tasks since the rollup runs at night
func (b *Bot) recordsThrough(ctx context.Context, user *models.User, from time.Time) ([]models.ProgressRecord, error) {
	today := b.tracker.Today()
	tomorrow := today.AddDate(0, 0, 1)
	stored, err := b.store.ProgressRange(ctx, user.ID, from, tomorrow)
	if err != nil {
		return nil, err
	}
	sessions, err := b.store.SessionsBetween(ctx, user.ID, today, tomorrow)
	if err != nil {
		return nil, err
	}
	tasks, err := b.store.TasksBetween(ctx, user.ID, today, tomorrow)
	if err != nil {
		return nil, err
	}
	live := progress.BuildDaily(user.ID, today, sessions, tasks)
	if live.PlannedTime == 0 && live.TimeStudied == 0 && live.TasksPlanned == 0 {
		return stored, nil
	}

	records := make([]models.ProgressRecord, 0, len(stored)+1)
	for _, r := range stored {
		if !clock.StartOfDay(r.Date.In(today.Location())).Equal(today) {
			records = append(records, r)
		}
	}
	return append(records, live), nil
}

func (b *Bot) handleProgress(ctx context.Context, user *models.User, chatID int64) error {
	today := b.tracker.Today()
	records, err := b.recordsThrough(ctx, user, today.AddDate(0, 0, -b.config.ProgressDays+1))
	if err != nil {
		return err
	}
	if len(records) == 0 {
		b.reply(chatID, "No progress recorded yet.")
		return nil
	}
	s := progress.Summarize(records)
	b.reply(chatID, fmt.Sprintf(
		"📊 Last %d days\nStudied %d of %d planned min on %d day(s)\nTasks %d/%d done, %d skipped (%d%%)\nBurnout avg %d, peak %d\nStatus: %s",
		b.config.ProgressDays, s.ActualTime, s.PlannedTime, s.StudyDays,
		s.TasksCompleted, s.TasksPlanned, s.TasksSkipped, s.CompletionRate,
		s.AverageBurnout, s.PeakBurnout, s.Status))
	return nil
}

func (b *Bot) handleStreak(ctx context.Context, user *models.User, chatID int64) error {
	today := b.tracker.Today()
	records, err := b.recordsThrough(ctx, user, today.AddDate(0, 0, -b.config.StreakLookbackDays))
	if err != nil {
		return err
	}
	streak := b.tracker.CurrentStreak(records)
	if streak == 0 {
		b.reply(chatID, "No streak yet. Study today to start one!")
		return nil
	}
	b.reply(chatID, fmt.Sprintf("🔥 %d day streak", streak))
	return nil
}

func (b *Bot) loadPlan(ctx context.Context, user *models.User, id string) (models.Plan, error) {
	if id == "" {
		return b.store.GetLatestPlan(ctx, user.ID)
	}
	p, err := b.store.GetPlan(ctx, id)
	if err != nil {
		return models.Plan{}, err
	}
	if p.UserID != user.ID {
		return models.Plan{}, apperr.NotFound("plan", id)
	}
	return p, nil
}

func (b *Bot) handlePlan(ctx context.Context, user *models.User, message *tgbotapi.Message) error {
	var id string
	if args := splitArgs(message); len(args) > 0 {
		id = args[0]
	}
	p, err := b.loadPlan(ctx, user, id)
	if err != nil {
		return err
	}
	now := b.clock.Now()
	p = plan.Recompute(p, now)

	var sb strings.Builder
	fmt.Fprintf(&sb, "📅 Plan %s (v%d)\n", p.ID, p.PlanVersion)
	fmt.Fprintf(&sb, "%d session(s), %d%% complete\n", len(p.Sessions), p.CompletionRate)
	fmt.Fprintf(&sb, "%.1f of %.1f planned hours done\n", p.TotalCompletedHours, p.TotalPlannedHours)
	if m, ok := plan.NextMilestone(p); ok {
		fmt.Fprintf(&sb, "Next milestone: %s on %s\n", m.Title, b.formatTime(m.TargetDate))
	}
	if overdue := plan.OverdueMilestones(p, now); len(overdue) > 0 {
		fmt.Fprintf(&sb, "⚠️ %d milestone(s) overdue\n", len(overdue))
	}
	b.reply(message.Chat.ID, strings.TrimSpace(sb.String()))
	return nil
}

func (b *Bot) handleMilestone(ctx context.Context, user *models.User, message *tgbotapi.Message) error {
	args := splitArgs(message)
	var planID, milestoneID string
	switch len(args) {
	case 1:
		milestoneID = args[0]
	case 2:
		planID, milestoneID = args[0], args[1]
	default:
		return usageError("Usage: /milestone [plan] <milestone>")
	}
	p, err := b.loadPlan(ctx, user, planID)
	if err != nil {
		return err
	}
	updated, m, err := plan.AchieveMilestoneByID(p, milestoneID, b.clock.Now())
	if err != nil {
		return err
	}
	if err := b.store.SavePlan(ctx, &updated); err != nil {
		return err
	}
	b.reply(message.Chat.ID, fmt.Sprintf("🏁 Milestone %q achieved on %s.", m.Title, b.formatTime(*m.AchievedAt)))
	return nil
}

func (b *Bot) handleNotify(ctx context.Context, user *models.User, message *tgbotapi.Message) error {
	args := splitArgs(message)
	if len(args) == 0 {
		return usageError(fmt.Sprintf("Reminders are %s at %02d:00. Usage: /notify <hour|off>",
			boolToEnabledString(user.NotificationEnabled), user.NotificationHour))
	}
	if strings.EqualFold(args[0], "off") {
		user.NotificationEnabled = false
	} else {
		hour, err := strconv.Atoi(args[0])
		if err != nil || hour < 0 || hour > 23 {
			return usageError("Hour must be a number from 0 to 23")
		}
		if !b.cfg.InNotificationWindow(hour) {
			return usageError(fmt.Sprintf("Reminders are sent between %02d:00 and %02d:00",
				b.cfg.NotificationStartHour, b.cfg.NotificationEndHour))
		}
		user.NotificationEnabled = true
		user.NotificationHour = hour
	}
	if err := b.store.UpdateUser(ctx, user); err != nil {
		return err
	}
	b.reply(message.Chat.ID, fmt.Sprintf("Reminders %s at %02d:00.", boolToEnabledString(user.NotificationEnabled), user.NotificationHour))
	return nil
}

func boolToEnabledString(enabled bool) string {
	if enabled {
		return "enabled"
	}
	return "disabled"
}

// HandleCallback handles callback queries from inline buttons
func (b *Bot) HandleCallback(ctx context.Context, user *models.User, callback *tgbotapi.CallbackQuery) error {
	if _, err := b.api.Request(tgbotapi.NewCallback(callback.ID, "")); err != nil {
		slog.Warn("failed to answer callback", "error", err)
	}
	if callback.Message == nil {
		return nil
	}
	chatID := callback.Message.Chat.ID

	switch data := callback.Data; {
	case data == callbackDue:
		return b.handleDue(ctx, user, chatID)

	case strings.HasPrefix(data, callbackShowPrefix):
		item, err := b.ownedItem(ctx, user, strings.TrimPrefix(data, callbackShowPrefix))
		if err != nil {
			return err
		}
		msg := tgbotapi.NewMessage(chatID, fmt.Sprintf("💡 %s\n\nHow well did you recall it?", item.Back))
		msg.ReplyMarkup = createKeyboard(qualityButtons(item.ID))
		b.send(msg)
		return nil

	case strings.HasPrefix(data, callbackRatePrefix):
		rest := strings.TrimPrefix(data, callbackRatePrefix)
		idx := strings.LastIndex(rest, ":")
		if idx < 0 {
			return fmt.Errorf("malformed callback %q", data)
		}
		quality, err := parseQuality(rest[idx+1:])
		if err != nil {
			return err
		}
		if err := b.applyReview(ctx, user, chatID, rest[:idx], quality); err != nil {
			return err
		}
		// Offer the next due card straight away
		next, err := b.store.ListDueItems(ctx, user.ID, b.clock.Now(), 1)
		if err != nil {
			return err
		}
		if len(next) > 0 {
			b.sendCard(chatID, next[0])
		} else {
			b.reply(chatID, "All caught up for now. 🎉")
		}
		return nil
	}
	return fmt.Errorf("unknown callback %q", callback.Data)
}
