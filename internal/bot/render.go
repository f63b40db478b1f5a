package bot

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"
	"unicode"
	"unicode/utf16"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"listify/internal/countdown"
	"listify/internal/model"
	"listify/internal/schedule"
	"listify/internal/service"
)

const (
	iconDefault    = "🟢"
	iconDue        = "⏳"
	iconOverdue    = "⚠️"
	iconRecurring  = "♻️"
	iconCompleted  = "✅"
	iconNoCategory = "🏷️"

	// A keyboard holds at most 100 buttons, two per listed task.
	maxListed = 40
	maxBar    = 20

	// Telegram caps message text at 4096 UTF-16 code units. The reserve leaves room for the
	// "…and N more" line and the paused footer.
	maxMessageText = 4096
	textReserve    = 96
)

const helpText = "• /tasks [all|once|daily|weekly|monthly] [category] — live task list\n" +
	"• /stop — stop updating the live list\n" +
	"• /newtask — add a task step by step\n" +
	"• /done &lt;id&gt; — mark a task done or open it again\n" +
	"• /delete &lt;id&gt; — delete a task\n" +
	"• /categories — list categories\n" +
	"• /addcategory &lt;name&gt; [icon] [#RRGGBB] — add a category\n" +
	"• /delcategory &lt;name&gt; — delete a category\n" +
	"• /resetcategories — restore the default categories\n" +
	"• /undo — undo the last category change\n" +
	"• /stats — completion statistics\n" +
	"• /cancel — cancel the current input"

func (b *Bot) boardMessage(ctx context.Context, filter countdown.Filter, now time.Time) (string, tgbotapi.InlineKeyboardMarkup) {
	entries := b.svc.Board.Snapshot(ctx, now, filter)
	categories, err := b.svc.Categories.List(ctx)
	if err != nil {
		b.log.Warn("list categories for board", zap.Error(err))
	}
	return renderBoard(entries, categories, filter, now)
}

// renderBoard formats sorted entries as an HTML list with one toggle/delete button row per task.
func renderBoard(entries []countdown.Entry, categories []model.Category, filter countdown.Filter, now time.Time) (string, tgbotapi.InlineKeyboardMarkup) {
	icons := make(map[string]string, len(categories))
	for _, c := range categories {
		icons[strings.ToLower(strings.TrimSpace(c.Name))] = c.Icon
	}

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("📋 <b>%s</b>", filter.Kind.Label()))
	if filter.Category != "" {
		builder.WriteString(" · " + escape(filter.Category))
	}
	builder.WriteString(fmt.Sprintf("\n<i>Updated %s</i>\n\n", now.Format("15:04")))

	if len(entries) == 0 {
		if (filter.Kind == "" || filter.Kind == countdown.FilterAll) && filter.Category == "" {
			builder.WriteString("No tasks yet. Add one with /newtask.")
		} else {
			builder.WriteString("No tasks match this filter.")
		}
		// An empty keyboard, not a nil one, removes stale buttons when editing.
		return strings.TrimSpace(builder.String()), tgbotapi.InlineKeyboardMarkup{InlineKeyboard: [][]tgbotapi.InlineKeyboardButton{}}
	}

	var rows [][]tgbotapi.InlineKeyboardButton
	length := textLength(builder.String())
	for i, entry := range entries {
		line := formatEntry(entry, icons)
		if i == maxListed || length+textLength(line) > maxMessageText-textReserve {
			builder.WriteString(fmt.Sprintf("…and %d more\n", len(entries)-i))
			break
		}
		builder.WriteString(line)
		length += textLength(line)
		rows = append(rows, entryButtons(entry.Task))
	}
	return strings.TrimSpace(builder.String()), tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// textLength counts s the way Telegram measures message length.
func textLength(s string) int {
	n := 0
	for _, r := range s {
		n += utf16.RuneLen(r)
	}
	return n
}

func formatEntry(entry countdown.Entry, icons map[string]string) string {
	task := entry.Task
	var b strings.Builder

	title := escape(normalizeTitle(task.Name))
	if task.Completed {
		title = "<s>" + title + "</s>"
	}
	b.WriteString(fmt.Sprintf("%s <b>#%d</b> %s", statusIcon(entry), task.ID, title))
	if entry.Countdown.Label != "" {
		b.WriteString(" · <b>" + entry.Countdown.Label + "</b>")
	}
	b.WriteByte('\n')

	details := make([]string, 0, 2)
	if name := strings.TrimSpace(task.Category); name != "" {
		icon, ok := icons[strings.ToLower(name)]
		if !ok || icon == "" {
			icon = iconNoCategory
		}
		details = append(details, icon+" "+escape(name))
	}
	details = append(details, describeSchedule(entry))
	b.WriteString("   " + strings.Join(details, " · ") + "\n")
	return b.String()
}

func statusIcon(entry countdown.Entry) string {
	switch {
	case entry.Task.Completed:
		return iconCompleted
	case entry.Resolution.Status == schedule.Overdue:
		return iconOverdue
	case entry.Resolution.Status == schedule.Upcoming && entry.Kind.IsRecurring():
		return iconRecurring
	case entry.Resolution.Status == schedule.Upcoming:
		return iconDue
	default:
		return iconDefault
	}
}

func describeSchedule(entry countdown.Entry) string {
	if entry.Err != nil {
		return "⚠️ unreadable schedule"
	}
	rule, err := schedule.ParseRule(entry.Task.Recurring, entry.Task.Date, entry.Task.Time)
	if err != nil {
		return "No schedule"
	}
	return rule.Describe()
}

func entryButtons(task model.Task) []tgbotapi.InlineKeyboardButton {
	label := fmt.Sprintf("✅ #%d · %s", task.ID, shortTitle(task.Name, 20))
	if task.Completed {
		label = fmt.Sprintf("↩️ #%d · %s", task.ID, shortTitle(task.Name, 20))
	}
	return tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData(label, fmt.Sprintf("%s%d", cbTogglePrefix, task.ID)),
		tgbotapi.NewInlineKeyboardButtonData("🗑", fmt.Sprintf("%s%d", cbDeletePrefix, task.ID)),
	)
}

func renderCategories(categories []model.Category) string {
	if len(categories) == 0 {
		return "No categories yet. Add one with /addcategory or restore the defaults with /resetcategories."
	}
	var builder strings.Builder
	builder.WriteString("📂 <b>Categories</b>\n")
	for _, c := range categories {
		builder.WriteString(fmt.Sprintf("• %s %s <code>%s</code>\n", c.Icon, escape(c.Name), c.Color))
	}
	return strings.TrimSpace(builder.String())
}

func renderStats(stats service.Stats) string {
	var builder strings.Builder
	builder.WriteString("📊 <b>Statistics</b>\n")
	builder.WriteString(fmt.Sprintf("• Total tasks: %d\n", stats.Total))
	builder.WriteString(fmt.Sprintf("• Completed: %d (%s)\n\n", stats.Completed, stats.CompletionRate))
	builder.WriteString(fmt.Sprintf("<b>This week</b> (from %s)\n<code>", schedule.FormatDate(stats.WeekStart)))
	for i, count := range stats.Weekly {
		bar := count
		if bar > maxBar {
			bar = maxBar
		}
		builder.WriteString(fmt.Sprintf("%s %-*s %d\n", service.WeekdayLabels[i], maxBar, strings.Repeat("█", bar), count))
	}
	return strings.TrimRight(builder.String(), "\n") + "</code>"
}

func shortTitle(title string, maxLen int) string {
	clean := strings.TrimSpace(strings.ReplaceAll(title, "\n", " "))
	clean = normalizeTitle(clean)
	runes := []rune(clean)
	if len(runes) <= maxLen {
		return clean
	}
	if maxLen <= 1 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-1]) + "…"
}

func normalizeTitle(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return value
	}
	runes := []rune(value)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

func escape(s string) string {
	return html.EscapeString(s)
}
