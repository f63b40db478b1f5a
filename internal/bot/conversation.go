package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"listify/internal/model"
	"listify/internal/schedule"
	"listify/internal/service"
)

type conversationStage int

const (
	stageNone conversationStage = iota
	stageName
	stageCategory
	stageRecurring
	stageDate
	stageTime
)

type conversationState struct {
	stage      conversationStage
	input      service.TaskInput
	categories []model.Category
}

func (b *Bot) startNewTaskConversation(msg *tgbotapi.Message) error {
	b.log.Info("start new task conversation", zap.Int64("user_id", msg.From.ID))
	b.setConversation(msg.From.ID, &conversationState{stage: stageName})
	return b.sendWithReplyMarkup(msg.Chat.ID, "🆕 New task.\n<b>Step 1:</b> what should it be called?", cancelKeyboard())
}

func (b *Bot) handleConversation(ctx context.Context, msg *tgbotapi.Message) error {
	state := b.getConversation(msg.From.ID)
	if state == nil {
		return nil
	}

	chatID := msg.Chat.ID
	text := strings.TrimSpace(msg.Text)
	kind := model.ParseRecurringKind(state.input.Recurring)

	switch state.stage {
	case stageName:
		if text == "" {
			return b.sendWithReplyMarkup(chatID, "The name cannot be empty. What should the task be called?", cancelKeyboard())
		}
		state.input.Name = text
		categories, err := b.svc.Categories.List(ctx)
		if err != nil {
			b.log.Warn("list categories for conversation", zap.Error(err))
		}
		state.categories = categories
		state.stage = stageCategory
		return b.sendWithReplyMarkup(chatID, "🏷 <b>Step 2:</b> pick a category or type a new one (or skip).", categoryKeyboard(categories))
	case stageCategory:
		if !isSkipInput(text) {
			state.input.Category = matchCategory(text, state.categories)
		}
		state.stage = stageRecurring
		return b.sendWithReplyMarkup(chatID, "🔁 <b>Step 3:</b> how often?", recurrenceKeyboard())
	case stageRecurring:
		kind, ok := parseRecurrenceInput(text)
		if !ok {
			return b.sendWithReplyMarkup(chatID, "Pick one of the options.", recurrenceKeyboard())
		}
		state.input.Recurring = string(kind)
		switch kind {
		case model.RecurringDaily:
			state.stage = stageTime
			return b.sendWithReplyMarkup(chatID, "⏰ <b>Last step:</b> at what time? Use <code>HH:MM</code>, or skip for 23:59.", skipKeyboard())
		case model.RecurringWeekly:
			state.stage = stageDate
			return b.sendWithReplyMarkup(chatID, "📆 <b>Step 4:</b> which day of the week?", weekdayKeyboard())
		case model.RecurringMonthly:
			state.stage = stageDate
			return b.sendWithReplyMarkup(chatID, "📆 <b>Step 4:</b> which day of the month (1–31)? Shorter months use their last day.", cancelKeyboard())
		default:
			state.stage = stageDate
			return b.sendWithReplyMarkup(chatID, "📆 <b>Step 4:</b> due date as <code>MM-DD-YYYY</code>, or skip.", skipKeyboard())
		}
	case stageDate:
		if isSkipInput(text) {
			if kind.IsRecurring() {
				return b.sendWithReplyMarkup(chatID, "This schedule needs a day. Try again.", dateKeyboard(kind))
			}
			state.input.Date = ""
		} else {
			if _, err := schedule.ParseRule(kind, &text, nil); err != nil {
				return b.sendWithReplyMarkup(chatID, fmt.Sprintf("I cannot use that: %s. Try again.", escape(parseReason(err))), dateKeyboard(kind))
			}
			state.input.Date = text
		}
		state.stage = stageTime
		return b.sendWithReplyMarkup(chatID, "⏰ <b>Last step:</b> at what time? Use <code>HH:MM</code>, or skip.", skipKeyboard())
	case stageTime:
		if !isSkipInput(text) {
			var date *string
			if state.input.Date != "" {
				date = &state.input.Date
			}
			if _, err := schedule.ParseRule(kind, date, &text); err != nil {
				return b.sendWithReplyMarkup(chatID, fmt.Sprintf("I cannot use that: %s. Try again.", escape(parseReason(err))), skipKeyboard())
			}
			state.input.Time = text
		}
		err := b.finishTaskCreation(ctx, state.input, chatID)
		b.clearConversation(msg.From.ID)
		return err
	default:
		b.clearConversation(msg.From.ID)
		return b.sendText(chatID, "The dialog was reset. Start again with /newtask.")
	}
}

func (b *Bot) finishTaskCreation(ctx context.Context, input service.TaskInput, chatID int64) error {
	task, err := b.svc.Tasks.CreateTask(ctx, input)
	if err != nil {
		return b.sendText(chatID, fmt.Sprintf("Could not save the task: %s", escape(err.Error())))
	}

	var summary strings.Builder
	summary.WriteString("✅ <b>Task saved</b>\n")
	summary.WriteString(fmt.Sprintf("• <b>ID:</b> %d\n", task.ID))
	summary.WriteString(fmt.Sprintf("• <b>Name:</b> %s\n", escape(normalizeTitle(task.Name))))
	if task.Category != "" {
		summary.WriteString(fmt.Sprintf("• <b>Category:</b> %s\n", escape(task.Category)))
	}
	if rule, err := schedule.ParseRule(task.Recurring, task.Date, task.Time); err == nil {
		summary.WriteString(fmt.Sprintf("• <b>Schedule:</b> %s\n", rule.Describe()))
	}

	b.refreshLive()
	return b.sendText(chatID, strings.TrimSpace(summary.String()))
}

func dateKeyboard(kind model.RecurringKind) tgbotapi.ReplyKeyboardMarkup {
	switch kind {
	case model.RecurringWeekly:
		return weekdayKeyboard()
	case model.RecurringMonthly:
		return cancelKeyboard()
	default:
		return skipKeyboard()
	}
}

// matchCategory maps a category keyboard label back to the stored name. Anything else is used
// as typed.
func matchCategory(text string, categories []model.Category) string {
	for _, c := range categories {
		if text == categoryButton(c) || strings.EqualFold(text, c.Name) {
			return c.Name
		}
	}
	return text
}

// parseCategoryArgs reads "<name> [icon] [#RRGGBB]". The name may span several words; an icon
// is a trailing word without letters or digits.
func parseCategoryArgs(args string) service.CategoryInput {
	fields := strings.Fields(args)
	var input service.CategoryInput
	if n := len(fields); n > 1 && strings.HasPrefix(fields[n-1], "#") {
		input.Color = fields[n-1]
		fields = fields[:n-1]
	}
	if n := len(fields); n > 1 && !hasLetterOrDigit(fields[n-1]) {
		input.Icon = fields[n-1]
		fields = fields[:n-1]
	}
	input.Name = strings.Join(fields, " ")
	return input
}

func hasLetterOrDigit(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

func parseReason(err error) string {
	var perr *schedule.ParseError
	if errors.As(err, &perr) {
		return perr.Reason
	}
	return err.Error()
}

func (b *Bot) setConversation(userID int64, state *conversationState) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.conversations[userID] = state
}

func (b *Bot) getConversation(userID int64) *conversationState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.conversations[userID]
}

func (b *Bot) hasConversation(userID int64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.conversations[userID]
	return ok
}

func (b *Bot) clearConversation(userID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.conversations, userID)
}
