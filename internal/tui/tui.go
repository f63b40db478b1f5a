package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"listify/internal/countdown"
	"listify/internal/model"
	"listify/internal/schedule"
)

var (
	appStyle      = lipgloss.NewStyle().Padding(1, 2)
	titleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("170")).Bold(true)
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	confirmStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("229")).Bold(true)
	doneStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Strikethrough(true)
	labelStyle    = lipgloss.NewStyle().Width(10).Align(lipgloss.Right)
)

// Board produces the sorted task list.
type Board interface {
	Snapshot(ctx context.Context, now time.Time, filter countdown.Filter) []countdown.Entry
}

// Tasks applies the changes the list allows.
type Tasks interface {
	ToggleCompleted(ctx context.Context, taskID uint, now time.Time) (*model.Task, error)
	DeleteTask(ctx context.Context, taskID uint) error
}

type Categories interface {
	List(ctx context.Context) ([]model.Category, error)
}

type boardLoadedMsg struct {
	entries    []countdown.Entry
	categories []model.Category
	err        error
}

type tickMsg time.Time

// Model is the top-level BubbleTea model of the terminal task list.
type Model struct {
	ctx        context.Context
	board      Board
	tasks      Tasks
	categories Categories
	interval   time.Duration
	now        func() time.Time
	copy       func(string) error

	keys keyMap
	help help.Model

	entries    []countdown.Entry
	known      []model.Category
	filter     countdown.Filter
	cursor     int
	confirming bool
	status     string
	err        error
}

// NewModel creates the TUI model. The list reloads every interval while the program runs.
func NewModel(ctx context.Context, board Board, tasks Tasks, categories Categories, interval time.Duration) Model {
	return Model{
		ctx:        ctx,
		board:      board,
		tasks:      tasks,
		categories: categories,
		interval:   interval,
		now:        time.Now,
		copy:       clipboard.WriteAll,
		keys:       newKeyMap(),
		help:       help.New(),
		filter:     countdown.Filter{Kind: countdown.FilterAll},
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.load(), m.tick())
}

// tick schedules the next periodic reload. Each tickMsg re-arms it, so quitting stops it.
func (m Model) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) load() tea.Cmd {
	board, categories, ctx, filter, now := m.board, m.categories, m.ctx, m.filter, m.now()
	return func() tea.Msg {
		entries := board.Snapshot(ctx, now, filter)
		known, err := categories.List(ctx)
		return boardLoadedMsg{entries: entries, categories: known, err: err}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		return m, nil

	case tickMsg:
		return m, tea.Batch(m.load(), m.tick())

	case boardLoadedMsg:
		m.entries = msg.entries
		if msg.err == nil {
			m.known = msg.categories
		}
		m.err = msg.err
		if m.cursor >= len(m.entries) {
			m.cursor = len(m.entries) - 1
		}
		if m.cursor < 0 {
			m.cursor = 0
		}
		return m, nil

	case tea.KeyMsg:
		if m.confirming {
			return m.updateConfirm(msg)
		}
		return m.updateList(msg)
	}
	return m, nil
}

func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.entries)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Toggle):
		if entry, ok := m.selected(); ok {
			task, err := m.tasks.ToggleCompleted(m.ctx, entry.Task.ID, m.now())
			if err != nil {
				m.err = err
				return m, nil
			}
			m.status = fmt.Sprintf("reopened #%d", task.ID)
			if task.Completed {
				m.status = fmt.Sprintf("completed #%d", task.ID)
			}
			return m, m.load()
		}
	case key.Matches(msg, m.keys.Delete):
		if _, ok := m.selected(); ok {
			m.confirming = true
		}
	case key.Matches(msg, m.keys.Kind):
		m.filter.Kind = nextKind(m.filter.Kind)
		m.cursor = 0
		return m, m.load()
	case key.Matches(msg, m.keys.Category):
		m.filter.Category = nextCategory(m.filter.Category, m.known)
		m.cursor = 0
		return m, m.load()
	case key.Matches(msg, m.keys.Copy):
		if entry, ok := m.selected(); ok {
			if err := m.copy(copyLine(entry)); err != nil {
				m.err = fmt.Errorf("copy to clipboard: %w", err)
				return m, nil
			}
			m.status = fmt.Sprintf("copied #%d", entry.Task.ID)
		}
	case key.Matches(msg, m.keys.Reload):
		return m, m.load()
	}
	return m, nil
}

func (m Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y":
		m.confirming = false
		if entry, ok := m.selected(); ok {
			if err := m.tasks.DeleteTask(m.ctx, entry.Task.ID); err != nil {
				m.err = err
				return m, nil
			}
			m.status = fmt.Sprintf("deleted #%d", entry.Task.ID)
		}
		return m, m.load()
	case "n", "esc":
		m.confirming = false
	}
	return m, nil
}

func (m Model) selected() (countdown.Entry, bool) {
	if m.cursor < 0 || m.cursor >= len(m.entries) {
		return countdown.Entry{}, false
	}
	return m.entries[m.cursor], true
}

func nextKind(current countdown.Kind) countdown.Kind {
	for i, kind := range countdown.Kinds {
		if kind == current {
			return countdown.Kinds[(i+1)%len(countdown.Kinds)]
		}
	}
	return countdown.FilterAll
}

// nextCategory cycles through "every category" and then each known category by name.
func nextCategory(current string, categories []model.Category) string {
	if current == "" {
		if len(categories) == 0 {
			return ""
		}
		return categories[0].Name
	}
	for i, c := range categories {
		if strings.EqualFold(c.Name, current) {
			if i+1 < len(categories) {
				return categories[i+1].Name
			}
			return ""
		}
	}
	return ""
}

// copyLine renders a task as one plain text line.
func copyLine(entry countdown.Entry) string {
	parts := []string{fmt.Sprintf("#%d %s", entry.Task.ID, entry.Task.Name)}
	if entry.Countdown.Label != "" {
		parts = append(parts, "("+entry.Countdown.Label+")")
	}
	if rule, err := schedule.ParseRule(entry.Task.Recurring, entry.Task.Date, entry.Task.Time); err == nil {
		parts = append(parts, "- "+rule.Describe())
	}
	if entry.Task.Category != "" {
		parts = append(parts, "["+entry.Task.Category+"]")
	}
	return strings.Join(parts, " ")
}

func (m Model) View() string {
	var b strings.Builder

	header := m.filter.Kind.Label()
	if m.filter.Category != "" {
		header += " · " + m.filter.Category
	}
	b.WriteString(titleStyle.Render("listify · "+header) + "\n\n")

	colors := make(map[string]string, len(m.known))
	for _, c := range m.known {
		colors[strings.ToLower(c.Name)] = c.Color
	}

	if len(m.entries) == 0 {
		b.WriteString(statusStyle.Render("No tasks.") + "\n")
	}
	for i, entry := range m.entries {
		b.WriteString(m.renderRow(i, entry, colors) + "\n")
	}

	if m.confirming {
		if entry, ok := m.selected(); ok {
			b.WriteString("\n" + confirmStyle.Render(fmt.Sprintf("Delete #%d %s?", entry.Task.ID, entry.Task.Name)) +
				"  " + statusStyle.Render("y: delete • n/esc: cancel") + "\n")
		}
	}
	if m.err != nil {
		b.WriteString("\n" + errorStyle.Render("Error: "+m.err.Error()) + "\n")
	} else if m.status != "" {
		b.WriteString("\n" + statusStyle.Render(m.status) + "\n")
	}

	b.WriteString("\n" + m.help.View(m.keys))
	return appStyle.Render(b.String())
}

func (m Model) renderRow(i int, entry countdown.Entry, colors map[string]string) string {
	cursor := "  "
	if i == m.cursor {
		cursor = "> "
	}
	check := "[ ]"
	if entry.Task.Completed {
		check = "[x]"
	}

	name := entry.Task.Name
	switch {
	case entry.Task.Completed:
		name = doneStyle.Render(name)
	case entry.Overdue():
		name = errorStyle.Render(name)
	case i == m.cursor:
		name = selectedStyle.Render(name)
	}

	category := ""
	if entry.Task.Category != "" {
		style := statusStyle
		if color, ok := colors[strings.ToLower(entry.Task.Category)]; ok && color != "" {
			style = lipgloss.NewStyle().Foreground(lipgloss.Color(color))
		}
		category = "  " + style.Render("["+entry.Task.Category+"]")
	}

	return fmt.Sprintf("%s%s %s %s%s", cursor, check, labelStyle.Render(entry.Countdown.Label), name, category)
}
