package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"listify/internal/config"
	"listify/internal/countdown"
	"listify/internal/model"
	"listify/internal/service"
)

const (
	cbTogglePrefix  = "toggle:"
	cbDeletePrefix  = "delete:"
	cbConfirmPrefix = "confirm:"
	cbCancelPrefix  = "cancel:"
)

// messenger is the part of the Telegram API the handlers talk to. *tgbotapi.BotAPI satisfies it.
type messenger interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Services bundles what the bot needs from the service layer.
type Services struct {
	Tasks      *service.TaskService
	Categories *service.CategoryService
	Board      *service.Board
	Stats      *service.StatsService
	Scheduler  service.IntervalScheduler
}

// Bot aggregates Telegram API with services.
type Bot struct {
	api     messenger
	updates *tgbotapi.BotAPI
	svc     Services
	cfg     config.Config
	log     *zap.Logger
	now     func() time.Time

	mu            sync.Mutex
	conversations map[int64]*conversationState
	live          map[int64]*liveView
	lists         map[int64][]listMessage
}

func New(token string, svc Services, cfg config.Config, log *zap.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}

	log.Info("bot authorized", zap.String("account", api.Self.UserName))

	b := newBot(api, svc, cfg, log)
	b.updates = api
	return b, nil
}

func newBot(api messenger, svc Services, cfg config.Config, log *zap.Logger) *Bot {
	return &Bot{
		api:           api,
		svc:           svc,
		cfg:           cfg,
		log:           log,
		now:           time.Now,
		conversations: make(map[int64]*conversationState),
		live:          make(map[int64]*liveView),
		lists:         make(map[int64][]listMessage),
	}
}

// Start begins polling updates until ctx is cancelled. Live views stop when it returns.
func (b *Bot) Start(ctx context.Context) error {
	if b.updates == nil {
		return errors.New("bot has no update source")
	}
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := b.updates.GetUpdatesChan(updateConfig)

	b.log.Info("start polling updates")

	go func() {
		<-ctx.Done()
		b.updates.StopReceivingUpdates()
	}()
	defer b.stopAllLive()

	for update := range updates {
		b.handleUpdate(ctx, update)
	}

	return nil
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		if err := b.handleCallback(ctx, update.CallbackQuery); err != nil {
			b.log.Error("handle callback", zap.Error(err))
		}
	case update.Message != nil:
		if update.Message.Chat == nil || !update.Message.Chat.IsPrivate() {
			return
		}
		if err := b.handleMessage(ctx, update.Message); err != nil {
			b.log.Error("handle message", zap.Error(err))
		}
	}
}

// allowed reports whether the sender may use the bot. Without an owner everyone may.
func (b *Bot) allowed(from *tgbotapi.User) bool {
	return b.cfg.OwnerID == 0 || (from != nil && from.ID == b.cfg.OwnerID)
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) error {
	if msg.From == nil {
		return nil
	}

	if !b.allowed(msg.From) {
		b.log.Warn("message from unknown user", zap.Int64("user_id", msg.From.ID))
		return b.sendText(msg.Chat.ID, "🔒 This bot is private.")
	}

	if !msg.IsCommand() && isCancelDialogInput(msg.Text) {
		b.clearConversation(msg.From.ID)
		return b.sendText(msg.Chat.ID, "⏪ Task creation cancelled. Send /newtask to start over.")
	}

	if !msg.IsCommand() {
		if handled, err := b.handleMenuAlias(ctx, msg); handled {
			return err
		}
	}

	if msg.IsCommand() {
		b.log.Info("command",
			zap.Int64("user_id", msg.From.ID),
			zap.String("command", msg.Command()),
			zap.String("args", msg.CommandArguments()),
		)
		return b.handleCommand(ctx, msg)
	}

	if b.hasConversation(msg.From.ID) {
		b.log.Debug("conversation step", zap.Int64("user_id", msg.From.ID), zap.Int("stage", int(b.getConversation(msg.From.ID).stage)))
		return b.handleConversation(ctx, msg)
	}

	return b.sendText(msg.Chat.ID, "I did not get that. Send /newtask to add a task or /help for the command list.")
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) error {
	switch msg.Command() {
	case "start":
		return b.handleStart(msg)
	case "help":
		return b.handleHelp(msg)
	case "tasks":
		return b.startLive(ctx, msg.Chat.ID, parseFilter(msg.CommandArguments()))
	case "stop":
		return b.handleStop(msg)
	case "newtask":
		return b.startNewTaskConversation(msg)
	case "done":
		return b.handleDone(ctx, msg)
	case "delete":
		return b.handleDelete(ctx, msg)
	case "categories":
		return b.handleCategories(ctx, msg)
	case "addcategory":
		return b.handleAddCategory(ctx, msg)
	case "delcategory":
		return b.handleDeleteCategory(ctx, msg)
	case "resetcategories":
		return b.handleResetCategories(ctx, msg)
	case "undo":
		return b.handleUndo(ctx, msg)
	case "stats":
		return b.handleStats(ctx, msg)
	case "cancel":
		b.clearConversation(msg.From.ID)
		return b.sendText(msg.Chat.ID, "⏪ Task creation cancelled.")
	default:
		return b.sendText(msg.Chat.ID, "Unknown command. See /help.")
	}
}

func (b *Bot) handleMenuAlias(ctx context.Context, msg *tgbotapi.Message) (bool, error) {
	text := strings.TrimSpace(strings.ToLower(msg.Text))
	switch text {
	case strings.ToLower(menuLabelNewTask):
		return true, b.startNewTaskConversation(msg)
	case strings.ToLower(menuLabelTasks):
		return true, b.startLive(ctx, msg.Chat.ID, countdown.Filter{Kind: countdown.FilterAll})
	case strings.ToLower(menuLabelCategories):
		return true, b.handleCategories(ctx, msg)
	case strings.ToLower(menuLabelStats):
		return true, b.handleStats(ctx, msg)
	case strings.ToLower(menuLabelHelp):
		return true, b.handleHelp(msg)
	default:
		return false, nil
	}
}

func (b *Bot) handleStart(msg *tgbotapi.Message) error {
	name := strings.TrimSpace(msg.From.FirstName)
	if name == "" {
		name = "there"
	}
	text := fmt.Sprintf("👋 Hi, %s!\n<b>I keep your tasks and count down to what is due next.</b>\n\n%s", escape(name), helpText)
	return b.sendText(msg.Chat.ID, text)
}

func (b *Bot) handleHelp(msg *tgbotapi.Message) error {
	return b.sendText(msg.Chat.ID, "ℹ️ <b>Commands</b>\n"+helpText)
}

func (b *Bot) handleStop(msg *tgbotapi.Message) error {
	if !b.stopLive(msg.Chat.ID) {
		return b.sendText(msg.Chat.ID, "No live list is running in this chat.")
	}
	return b.sendText(msg.Chat.ID, "⏹ Live updates stopped.")
}

func (b *Bot) handleDone(ctx context.Context, msg *tgbotapi.Message) error {
	args := strings.TrimSpace(msg.CommandArguments())
	if args == "" {
		return b.sendText(msg.Chat.ID, "Give the task id: /done 12")
	}
	taskID, err := parseTaskID(args, "")
	if err != nil {
		return b.sendText(msg.Chat.ID, "The task id must be a number.")
	}

	task, err := b.toggleTask(ctx, taskID)
	if err != nil {
		return b.sendText(msg.Chat.ID, taskErrorText(err))
	}
	return b.sendText(msg.Chat.ID, toggledText(task))
}

// handleDelete removes a task completely, recurring ones included.
func (b *Bot) handleDelete(ctx context.Context, msg *tgbotapi.Message) error {
	args := strings.TrimSpace(msg.CommandArguments())
	if args == "" {
		return b.sendText(msg.Chat.ID, "Give the task id: /delete 12")
	}
	taskID, err := parseTaskID(args, "")
	if err != nil {
		return b.sendText(msg.Chat.ID, "The task id must be a number.")
	}

	task, err := b.deleteTask(ctx, taskID)
	if err != nil {
		return b.sendText(msg.Chat.ID, taskErrorText(err))
	}
	return b.sendText(msg.Chat.ID, fmt.Sprintf("🗑 Task «%s» deleted.", escape(normalizeTitle(task.Name))))
}

func (b *Bot) handleCategories(ctx context.Context, msg *tgbotapi.Message) error {
	categories, err := b.svc.Categories.List(ctx)
	if err != nil {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("Could not load categories: %s", escape(err.Error())))
	}
	return b.sendText(msg.Chat.ID, renderCategories(categories))
}

func (b *Bot) handleAddCategory(ctx context.Context, msg *tgbotapi.Message) error {
	input := parseCategoryArgs(msg.CommandArguments())
	if input.Name == "" {
		return b.sendText(msg.Chat.ID, "Usage: /addcategory &lt;name&gt; [icon] [#RRGGBB]")
	}

	category, err := b.svc.Categories.Create(ctx, input)
	switch {
	case errors.Is(err, service.ErrCategoryExists):
		return b.sendText(msg.Chat.ID, fmt.Sprintf("Category «%s» already exists.", escape(input.Name)))
	case err != nil:
		return b.sendText(msg.Chat.ID, fmt.Sprintf("Could not add the category: %s", escape(err.Error())))
	}

	b.refreshLive()
	return b.sendText(msg.Chat.ID, fmt.Sprintf("%s Category «%s» added. /undo removes it.", category.Icon, escape(category.Name)))
}

func (b *Bot) handleDeleteCategory(ctx context.Context, msg *tgbotapi.Message) error {
	name := strings.TrimSpace(msg.CommandArguments())
	if name == "" {
		return b.sendText(msg.Chat.ID, "Usage: /delcategory &lt;name&gt;")
	}

	category, err := b.svc.Categories.Delete(ctx, name)
	switch {
	case errors.Is(err, service.ErrCategoryNotFound):
		return b.sendText(msg.Chat.ID, fmt.Sprintf("There is no category «%s».", escape(name)))
	case err != nil:
		return b.sendText(msg.Chat.ID, fmt.Sprintf("Could not delete the category: %s", escape(err.Error())))
	}

	b.refreshLive()
	return b.sendText(msg.Chat.ID, fmt.Sprintf("🗑 Category «%s» deleted. Its tasks keep the name. /undo restores it.", escape(category.Name)))
}

func (b *Bot) handleResetCategories(ctx context.Context, msg *tgbotapi.Message) error {
	stored, err := b.svc.Categories.ResetDefaults(ctx)
	if err != nil {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("Could not reset categories: %s", escape(err.Error())))
	}

	names := make([]string, 0, len(stored))
	for _, c := range stored {
		names = append(names, c.Icon+" "+escape(c.Name))
	}
	b.refreshLive()
	return b.sendText(msg.Chat.ID, fmt.Sprintf("♻️ Categories reset to %s. /undo brings the previous set back.", strings.Join(names, ", ")))
}

func (b *Bot) handleUndo(ctx context.Context, msg *tgbotapi.Message) error {
	action, err := b.svc.Categories.Undo(ctx)
	switch {
	case errors.Is(err, service.ErrNothingToUndo):
		return b.sendText(msg.Chat.ID, "Nothing to undo.")
	case err != nil:
		return b.sendText(msg.Chat.ID, fmt.Sprintf("Undo failed: %s", escape(err.Error())))
	}

	b.refreshLive()
	return b.sendText(msg.Chat.ID, fmt.Sprintf("↩️ Undone: %s.", escape(action.Describe())))
}

func (b *Bot) handleStats(ctx context.Context, msg *tgbotapi.Message) error {
	stats, err := b.svc.Stats.Compute(ctx, b.now())
	if err != nil {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("Could not compute statistics: %s", escape(err.Error())))
	}
	return b.sendText(msg.Chat.ID, renderStats(stats))
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) error {
	if cb == nil || cb.From == nil || cb.Message == nil || cb.Message.Chat == nil {
		return nil
	}
	if !b.allowed(cb.From) {
		b.answer(cb, "This bot is private")
		return nil
	}

	data := cb.Data
	chatID := cb.Message.Chat.ID
	b.log.Info("callback", zap.Int64("user_id", cb.From.ID), zap.String("data", data))

	switch {
	case strings.HasPrefix(data, cbTogglePrefix):
		taskID, err := parseTaskID(data, cbTogglePrefix)
		if err != nil {
			b.answer(cb, "")
			return nil
		}
		task, err := b.toggleTask(ctx, taskID)
		if err != nil {
			b.answer(cb, plainTaskError(err))
			return nil
		}
		if task.Completed {
			b.answer(cb, fmt.Sprintf("Completed #%d", task.ID))
		} else {
			b.answer(cb, fmt.Sprintf("Reopened #%d", task.ID))
		}
		return b.redrawIfIdle(ctx, chatID, cb.Message.MessageID)
	case strings.HasPrefix(data, cbDeletePrefix):
		b.answer(cb, "")
		taskID, err := parseTaskID(data, cbDeletePrefix)
		if err != nil {
			return nil
		}
		task, err := b.svc.Tasks.GetTask(ctx, taskID)
		if err != nil {
			return b.sendText(chatID, taskErrorText(err))
		}
		text := fmt.Sprintf("Delete task «%s» (#%d)?", escape(normalizeTitle(task.Name)), task.ID)
		return b.sendWithReplyMarkup(chatID, text, confirmDeleteKeyboard(task.ID))
	case strings.HasPrefix(data, cbConfirmPrefix):
		taskID, err := parseTaskID(data, cbConfirmPrefix)
		if err != nil {
			b.answer(cb, "")
			return nil
		}
		task, err := b.deleteTask(ctx, taskID)
		if err != nil {
			b.answer(cb, plainTaskError(err))
			return b.editText(chatID, cb.Message.MessageID, taskErrorText(err))
		}
		b.answer(cb, "Deleted")
		return b.editText(chatID, cb.Message.MessageID, fmt.Sprintf("🗑 Task «%s» deleted.", escape(normalizeTitle(task.Name))))
	case strings.HasPrefix(data, cbCancelPrefix):
		b.answer(cb, "Cancelled")
		return b.editText(chatID, cb.Message.MessageID, "↩️ Deletion cancelled.")
	default:
		b.answer(cb, "")
		return nil
	}
}

func (b *Bot) toggleTask(ctx context.Context, taskID uint) (*model.Task, error) {
	task, err := b.svc.Tasks.ToggleCompleted(ctx, taskID, b.now())
	if err != nil {
		return nil, err
	}
	b.refreshLive()
	return task, nil
}

func (b *Bot) deleteTask(ctx context.Context, taskID uint) (*model.Task, error) {
	task, err := b.svc.Tasks.GetTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if err := b.svc.Tasks.DeleteTask(ctx, taskID); err != nil {
		return nil, err
	}
	b.refreshLive()
	return task, nil
}

func (b *Bot) answer(cb *tgbotapi.CallbackQuery, text string) {
	if _, err := b.api.Request(tgbotapi.NewCallback(cb.ID, text)); err != nil {
		b.log.Warn("callback ack", zap.Error(err))
	}
}

func (b *Bot) sendText(chatID int64, text string) error {
	return b.sendWithReplyMarkup(chatID, text, mainMenuKeyboard())
}

func (b *Bot) sendWithReplyMarkup(chatID int64, text string, markup interface{}) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = markup
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) editText(chatID int64, messageID int, text string) error {
	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	edit.ParseMode = tgbotapi.ModeHTML
	_, err := b.api.Send(edit)
	return err
}

func toggledText(task *model.Task) string {
	if task.Completed {
		return fmt.Sprintf("✅ Task «%s» completed.", escape(normalizeTitle(task.Name)))
	}
	return fmt.Sprintf("↩️ Task «%s» is open again.", escape(normalizeTitle(task.Name)))
}

func taskErrorText(err error) string {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "Task not found."
	}
	return fmt.Sprintf("⚠️ Error: %s", escape(err.Error()))
}

func plainTaskError(err error) string {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "Task not found"
	}
	return "Something went wrong"
}

// parseFilter reads "/tasks [kind] [category]". A first word that is not a kind starts the
// category name.
func parseFilter(args string) countdown.Filter {
	fields := strings.Fields(args)
	filter := countdown.Filter{Kind: countdown.FilterAll}
	if len(fields) > 0 {
		if kind, ok := countdown.ParseKind(fields[0]); ok {
			filter.Kind = kind
			fields = fields[1:]
		}
	}
	filter.Category = strings.Join(fields, " ")
	return filter
}

func parseTaskID(data, prefix string) (uint, error) {
	raw := strings.TrimPrefix(data, prefix)
	value, err := strconv.ParseUint(strings.TrimPrefix(strings.TrimSpace(raw), "#"), 10, 64)
	if err != nil {
		return 0, err
	}
	return uint(value), nil
}
