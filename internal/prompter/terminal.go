package prompter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/saeedalam/projectassistant/pkg/types"
)

// Theme colors the prompts
type Theme struct {
	Accent lipgloss.Color
	Muted  lipgloss.Color
}

// ThemeFor maps the configured theme name to colors
func ThemeFor(name string) Theme {
	if name == "matrix" {
		return Theme{Accent: lipgloss.Color("#00FF41"), Muted: lipgloss.Color("#008F11")}
	}
	return Theme{Accent: lipgloss.Color("#00D7FF"), Muted: lipgloss.Color("#6C6C6C")}
}

// Terminal runs a small bubbletea program per question
type Terminal struct {
	in    io.Reader
	out   io.Writer
	theme Theme
}

// NewTerminal creates a prompter reading keys from in and drawing to out
func NewTerminal(in io.Reader, out io.Writer, theme Theme) *Terminal {
	return &Terminal{in: in, out: out, theme: theme}
}

func (t *Terminal) run(ctx context.Context, m tea.Model) (tea.Model, error) {
	p := tea.NewProgram(m,
		tea.WithInput(t.in),
		tea.WithOutput(t.out),
		tea.WithContext(ctx),
	)
	final, err := p.Run()
	if err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, err
	}
	return final, nil
}

func (t *Terminal) ChooseTaskType(ctx context.Context, suggested string) (string, error) {
	m := newSelectModel("What type of task is this?", types.TaskTypes, taskTypeIndex(suggested), t.theme)
	final, err := t.run(ctx, m)
	if err != nil {
		return "", err
	}
	sm := final.(selectModel)
	if sm.cancelled {
		return suggested, nil
	}
	return types.TaskTypes[sm.cursor], nil
}

func (t *Terminal) Confirm(ctx context.Context, question string, def bool) (bool, error) {
	cursor := 1
	if def {
		cursor = 0
	}
	final, err := t.run(ctx, newSelectModel(question, []string{"Yes", "No"}, cursor, t.theme))
	if err != nil {
		return false, err
	}
	sm := final.(selectModel)
	if sm.cancelled {
		return false, ErrCancelled
	}
	return sm.cursor == 0, nil
}

func (t *Terminal) Input(ctx context.Context, question, def string) (string, error) {
	final, err := t.run(ctx, newInputModel(question, def, t.theme))
	if err != nil {
		return "", err
	}
	im := final.(inputModel)
	if im.cancelled {
		return "", ErrCancelled
	}
	value := strings.TrimSpace(im.input.Value())
	if value == "" {
		value = def
	}
	return value, nil
}

func (t *Terminal) Select(ctx context.Context, title string, options []string) (int, error) {
	if len(options) == 0 {
		return -1, fmt.Errorf("nothing to select")
	}
	final, err := t.run(ctx, newSelectModel(title, options, 0, t.theme))
	if err != nil {
		return -1, err
	}
	sm := final.(selectModel)
	if sm.cancelled {
		return -1, ErrCancelled
	}
	return sm.cursor, nil
}

// =============================================================================
// SELECT
// =============================================================================

type selectModel struct {
	title     string
	options   []string
	cursor    int
	done      bool
	cancelled bool

	titleStyle  lipgloss.Style
	activeStyle lipgloss.Style
	hintStyle   lipgloss.Style
}

func newSelectModel(title string, options []string, cursor int, theme Theme) selectModel {
	if cursor < 0 || cursor >= len(options) {
		cursor = 0
	}
	return selectModel{
		title:       title,
		options:     options,
		cursor:      cursor,
		titleStyle:  lipgloss.NewStyle().Foreground(theme.Accent).Bold(true),
		activeStyle: lipgloss.NewStyle().Foreground(theme.Accent),
		hintStyle:   lipgloss.NewStyle().Foreground(theme.Muted),
	}
}

func (m selectModel) Init() tea.Cmd {
	return nil
}

func (m selectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.options)-1 {
			m.cursor++
		}
	case "enter":
		m.done = true
		return m, tea.Quit
	case "esc", "ctrl+c", "q":
		m.cancelled = true
		return m, tea.Quit
	default:
		// Digits pick an option directly
		if s := key.String(); len(s) == 1 && s[0] >= '1' && s[0] <= '9' {
			if i := int(s[0] - '1'); i < len(m.options) {
				m.cursor = i
				m.done = true
				return m, tea.Quit
			}
		}
	}
	return m, nil
}

func (m selectModel) View() string {
	if m.done || m.cancelled {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(m.titleStyle.Render(m.title))
	sb.WriteString("\n")
	for i, opt := range m.options {
		line := fmt.Sprintf("  %d. %s", i+1, opt)
		if i == m.cursor {
			line = m.activeStyle.Render(fmt.Sprintf("> %d. %s", i+1, opt))
		}
		sb.WriteString(line)
		sb.WriteString("\n")
	}
	sb.WriteString(m.hintStyle.Render("↑/↓ to move, enter to choose, esc to cancel"))
	sb.WriteString("\n")
	return sb.String()
}

// =============================================================================
// INPUT
// =============================================================================

type inputModel struct {
	question  string
	input     textinput.Model
	done      bool
	cancelled bool

	titleStyle lipgloss.Style
}

func newInputModel(question, def string, theme Theme) inputModel {
	ti := textinput.New()
	ti.Placeholder = def
	ti.Prompt = "> "
	ti.PromptStyle = lipgloss.NewStyle().Foreground(theme.Accent)
	ti.CharLimit = 512
	ti.Width = 60
	ti.Focus()

	return inputModel{
		question:   question,
		input:      ti,
		titleStyle: lipgloss.NewStyle().Foreground(theme.Accent).Bold(true),
	}
}

func (m inputModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m inputModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.Type {
		case tea.KeyEnter:
			m.done = true
			return m, tea.Quit
		case tea.KeyEsc, tea.KeyCtrlC:
			m.cancelled = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m inputModel) View() string {
	if m.done || m.cancelled {
		return ""
	}
	return m.titleStyle.Render(m.question) + "\n" + m.input.View() + "\n"
}
