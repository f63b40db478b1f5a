package bot

import (
	"context"
	"fmt"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"listify/internal/countdown"
	"listify/internal/service"
)

const (
	pausedFooter = "\n\n⏸ Live updates paused. Send /tasks to resume."

	// maxRememberedLists bounds how many sent list messages per chat keep their filter.
	maxRememberedLists = 10
)

// listMessage is a task list the bot sent, kept so buttons pressed on it redraw the same filter.
type listMessage struct {
	messageID int
	filter    countdown.Filter
}

// liveView is a task list message that keeps its countdowns current by editing itself.
type liveView struct {
	chatID    int64
	filter    countdown.Filter
	refresher *service.Refresher

	mu        sync.Mutex
	messageID int
	lastText  string
}

// startLive replaces the chat's live view with a new list. The first render sends the message;
// later ones edit it until the view expires or is stopped.
func (b *Bot) startLive(ctx context.Context, chatID int64, filter countdown.Filter) error {
	b.stopLive(chatID)

	view := &liveView{chatID: chatID, filter: filter}
	expires := b.now().Add(b.cfg.LiveViewTTL)
	view.refresher = service.NewRefresher(b.svc.Scheduler, b.cfg.RefreshInterval, func(ctx context.Context) {
		expired := !b.now().Before(expires)
		if err := b.renderLive(ctx, view, expired); err != nil {
			b.log.Warn("render live view", zap.Int64("chat_id", chatID), zap.Error(err))
		}
		if expired {
			b.endLive(view)
		}
	})

	b.mu.Lock()
	b.live[chatID] = view
	b.mu.Unlock()

	if err := view.refresher.Start(ctx); err != nil {
		b.endLive(view)
		return fmt.Errorf("start live view: %w", err)
	}

	view.mu.Lock()
	sent := view.messageID != 0
	view.mu.Unlock()
	if !sent {
		b.endLive(view)
		return b.sendText(chatID, "Could not show the task list. Try /tasks again.")
	}

	b.log.Info("live view started", zap.Int64("chat_id", chatID), zap.String("kind", string(filter.Kind)), zap.String("category", filter.Category))
	return nil
}

func (b *Bot) renderLive(ctx context.Context, view *liveView, expired bool) error {
	now := b.now()
	text, markup := b.boardMessage(ctx, view.filter, now)
	if expired {
		text += pausedFooter
	}

	view.mu.Lock()
	defer view.mu.Unlock()

	if view.messageID == 0 {
		msg := tgbotapi.NewMessage(view.chatID, text)
		msg.ParseMode = tgbotapi.ModeHTML
		if len(markup.InlineKeyboard) > 0 {
			msg.ReplyMarkup = markup
		}
		sent, err := b.api.Send(msg)
		if err != nil {
			return err
		}
		view.messageID, view.lastText = sent.MessageID, text
		b.rememberList(view.chatID, sent.MessageID, view.filter)
		return nil
	}

	// Telegram rejects edits that change nothing.
	if text == view.lastText {
		return nil
	}
	edit := tgbotapi.NewEditMessageTextAndMarkup(view.chatID, view.messageID, text, markup)
	edit.ParseMode = tgbotapi.ModeHTML
	if _, err := b.api.Send(edit); err != nil {
		return err
	}
	view.lastText = text
	return nil
}

// redrawIfIdle re-renders a list message a button was pressed on, unless a live view already
// refreshed it. The message keeps the filter it was sent with; lists the bot no longer knows
// about are redrawn unfiltered.
func (b *Bot) redrawIfIdle(ctx context.Context, chatID int64, messageID int) error {
	if view := b.liveView(chatID); view != nil {
		view.mu.Lock()
		current := view.messageID
		view.mu.Unlock()
		if current == messageID {
			return nil
		}
	}

	filter, ok := b.listFilter(chatID, messageID)
	if !ok {
		filter = countdown.Filter{Kind: countdown.FilterAll}
	}
	text, markup := b.boardMessage(ctx, filter, b.now())
	edit := tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, text, markup)
	edit.ParseMode = tgbotapi.ModeHTML
	_, err := b.api.Send(edit)
	return err
}

func (b *Bot) rememberList(chatID int64, messageID int, filter countdown.Filter) {
	b.mu.Lock()
	defer b.mu.Unlock()
	lists := append(b.lists[chatID], listMessage{messageID: messageID, filter: filter})
	if len(lists) > maxRememberedLists {
		lists = lists[len(lists)-maxRememberedLists:]
	}
	b.lists[chatID] = lists
}

func (b *Bot) listFilter(chatID int64, messageID int) (countdown.Filter, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, list := range b.lists[chatID] {
		if list.messageID == messageID {
			return list.filter, true
		}
	}
	return countdown.Filter{}, false
}

// refreshLive re-renders every live view right away.
func (b *Bot) refreshLive() {
	b.mu.Lock()
	views := make([]*liveView, 0, len(b.live))
	for _, view := range b.live {
		views = append(views, view)
	}
	b.mu.Unlock()

	for _, view := range views {
		view.refresher.Trigger()
	}
}

func (b *Bot) liveView(chatID int64) *liveView {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.live[chatID]
}

// stopLive stops the chat's live view and reports whether one was running.
func (b *Bot) stopLive(chatID int64) bool {
	b.mu.Lock()
	view, ok := b.live[chatID]
	delete(b.live, chatID)
	b.mu.Unlock()

	if ok {
		view.refresher.Stop()
		b.log.Info("live view stopped", zap.Int64("chat_id", chatID))
	}
	return ok
}

// endLive stops view and forgets it if it is still the chat's current one.
func (b *Bot) endLive(view *liveView) {
	b.mu.Lock()
	if b.live[view.chatID] == view {
		delete(b.live, view.chatID)
	}
	b.mu.Unlock()
	view.refresher.Stop()
}

func (b *Bot) stopAllLive() {
	b.mu.Lock()
	views := b.live
	b.live = make(map[int64]*liveView)
	b.mu.Unlock()

	for _, view := range views {
		view.refresher.Stop()
	}
	b.log.Info("live views stopped", zap.Int("count", len(views)))
}
