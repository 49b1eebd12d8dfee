// Package review is an interactive terminal list for choosing which scan
// results (duplicates, dead links, search hits) to act on.
package review

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// Item is one selectable row.
type Item struct {
	ID     string
	Title  string
	URL    string
	Detail string // folder path, failure reason, ...
	Group  string // header shown above the first item of each group
}

// Options configures a Model.
type Options struct {
	Title string
	// Multi enables checkbox selection. Without it Enter picks the row under
	// the cursor.
	Multi bool
	// Preselect checks every item initially (Multi only).
	Preselect bool
}

// Model is the bubbletea model of the review list.
type Model struct {
	items   []Item
	opts    Options
	keys    KeyMap
	styles  Styles
	checked map[int]bool

	cursor    int
	confirmed bool
	cancelled bool
	status    string
	width     int
	height    int

	copy func(string) error
}

// New creates a Model over items.
func New(items []Item, opts Options) Model {
	m := Model{
		items:   items,
		opts:    opts,
		keys:    DefaultKeyMap(),
		styles:  DefaultStyles(),
		checked: make(map[int]bool),
		width:   80,
		height:  24,
		copy:    clipboard.WriteAll,
	}
	if opts.Multi && opts.Preselect {
		for i := range items {
			m.checked[i] = true
		}
	}
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		m.status = ""
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.cancelled = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.Confirm):
			if len(m.items) > 0 {
				m.confirmed = true
			} else {
				m.cancelled = true
			}
			return m, tea.Quit

		case key.Matches(msg, m.keys.Down):
			if m.cursor < len(m.items)-1 {
				m.cursor++
			}

		case key.Matches(msg, m.keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}

		case key.Matches(msg, m.keys.Top):
			m.cursor = 0

		case key.Matches(msg, m.keys.Bottom):
			if len(m.items) > 0 {
				m.cursor = len(m.items) - 1
			}

		case key.Matches(msg, m.keys.Toggle):
			if m.opts.Multi && len(m.items) > 0 {
				m.checked[m.cursor] = !m.checked[m.cursor]
				if m.cursor < len(m.items)-1 {
					m.cursor++
				}
			}

		case key.Matches(msg, m.keys.SelectAll):
			if m.opts.Multi {
				for i := range m.items {
					m.checked[i] = true
				}
			}

		case key.Matches(msg, m.keys.None):
			if m.opts.Multi {
				m.checked = make(map[int]bool)
			}

		case key.Matches(msg, m.keys.YankURL):
			if len(m.items) > 0 {
				url := m.items[m.cursor].URL
				if err := m.copy(url); err != nil {
					m.status = "Copy failed: " + err.Error()
				} else {
					m.status = "Copied " + url
				}
			}
		}
	}

	return m, nil
}

// rowsPerItem is the number of lines an item takes in the list.
const rowsPerItem = 2

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder

	header := m.opts.Title
	if header == "" {
		header = "Review"
	}
	if m.opts.Multi {
		header = fmt.Sprintf("%s (%d of %d selected)", header, m.countChecked(), len(m.items))
	} else {
		header = fmt.Sprintf("%s (%d results)", header, len(m.items))
	}
	b.WriteString(m.styles.Header.Render(header))
	b.WriteString("\n")

	if len(m.items) == 0 {
		b.WriteString(m.styles.Detail.Render("Nothing to review."))
		b.WriteString("\n")
	}

	// Header, blank line, status line, hints.
	maxVisible := max((m.height-5)/rowsPerItem, 1)
	start, end := VisibleRange(maxVisible, m.cursor, len(m.items))
	width := max(m.width-6, 10)

	for i := start; i < end; i++ {
		item := m.items[i]
		if item.Group != "" && (i == start || m.items[i-1].Group != item.Group) {
			b.WriteString(m.styles.Group.Render(item.Group))
			b.WriteString("\n")
		}

		cursor := "  "
		style := m.styles.Item
		if i == m.cursor {
			cursor = "> "
			style = m.styles.ItemSelected
		}

		box := ""
		if m.opts.Multi {
			box = "[ ] "
			if m.checked[i] {
				box = m.styles.Checked.Render("[x]") + " "
			}
		}

		title, _ := TruncateText(item.Title, width-4)
		b.WriteString(cursor + box + style.Render(title) + "\n")

		second := item.URL
		if item.Detail != "" {
			second = item.Detail + "  " + item.URL
		}
		second, _ = TruncateText(second, width)
		b.WriteString("     " + m.styles.URL.Render(second) + "\n")
	}

	b.WriteString("\n")
	if m.status != "" {
		b.WriteString(m.styles.Status.Render(m.status))
		b.WriteString("\n")
	}
	b.WriteString(m.renderHints())

	return b.String()
}

func (m Model) renderHints() string {
	bindings := []key.Binding{m.keys.Down, m.keys.YankURL, m.keys.Confirm, m.keys.Quit}
	if m.opts.Multi {
		bindings = []key.Binding{m.keys.Down, m.keys.Toggle, m.keys.SelectAll, m.keys.None, m.keys.YankURL, m.keys.Confirm, m.keys.Quit}
	}

	parts := make([]string, len(bindings))
	for i, kb := range bindings {
		h := kb.Help()
		parts[i] = m.styles.HintKey.Render(h.Key) + " " + m.styles.HintDesc.Render(h.Desc)
	}
	return strings.Join(parts, "  ")
}

func (m Model) countChecked() int {
	n := 0
	for i := range m.items {
		if m.checked[i] {
			n++
		}
	}
	return n
}

// Selected returns the chosen items: the checked ones in multi mode, the one
// under the cursor otherwise. Nothing is returned unless the user confirmed.
func (m Model) Selected() []Item {
	if !m.confirmed || m.cancelled {
		return nil
	}
	if !m.opts.Multi {
		return []Item{m.items[m.cursor]}
	}
	var out []Item
	for i, item := range m.items {
		if m.checked[i] {
			out = append(out, item)
		}
	}
	return out
}

// Cancelled returns true if the user cancelled the review.
func (m Model) Cancelled() bool {
	return m.cancelled
}

// Run shows the list on the terminal and returns the chosen items.
func Run(items []Item, opts Options) ([]Item, error) {
	final, err := tea.NewProgram(New(items, opts), tea.WithAltScreen()).Run()
	if err != nil {
		return nil, fmt.Errorf("review: %w", err)
	}
	return final.(Model).Selected(), nil
}
