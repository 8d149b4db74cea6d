package prompter

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/saeedalam/projectassistant/pkg/types"
)

func press(m tea.Model, keys ...tea.KeyMsg) tea.Model {
	for _, k := range keys {
		m, _ = m.Update(k)
	}
	return m
}

var (
	keyDown  = tea.KeyMsg{Type: tea.KeyDown}
	keyUp    = tea.KeyMsg{Type: tea.KeyUp}
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
	keyEsc   = tea.KeyMsg{Type: tea.KeyEsc}
)

func TestNonInteractive(t *testing.T) {
	var p Prompter = NonInteractive{}
	ctx := context.Background()

	if got, _ := p.ChooseTaskType(ctx, types.TaskTypeFix); got != types.TaskTypeFix {
		t.Errorf("Expected suggestion kept, got %s", got)
	}
	if got, _ := p.Confirm(ctx, "save?", true); !got {
		t.Error("Expected default true")
	}
	if got, _ := p.Input(ctx, "path?", "a.ts"); got != "a.ts" {
		t.Errorf("Expected default input, got %s", got)
	}
	if _, err := p.Select(ctx, "pick", []string{"a"}); !errors.Is(err, ErrNonInteractive) {
		t.Errorf("Expected ErrNonInteractive, got %v", err)
	}
}

func TestSelectModelNavigation(t *testing.T) {
	m := newSelectModel("pick", []string{"a", "b", "c"}, 0, ThemeFor("matrix"))

	final := press(m, keyDown, keyDown, keyDown, keyUp, keyEnter).(selectModel)
	if !final.done || final.cursor != 1 {
		t.Errorf("Expected done at 1, got done=%v cursor=%d", final.done, final.cursor)
	}
}

func TestSelectModelDigitAndCancel(t *testing.T) {
	m := newSelectModel("pick", types.TaskTypes, 0, ThemeFor(""))

	final := press(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'3'}}).(selectModel)
	if !final.done || types.TaskTypes[final.cursor] != types.TaskTypeFix {
		t.Errorf("Expected digit 3 to choose %s", types.TaskTypeFix)
	}

	cancelled := press(m, keyEsc).(selectModel)
	if !cancelled.cancelled {
		t.Error("Expected esc to cancel")
	}
}

func TestSelectModelDefaultCursor(t *testing.T) {
	m := newSelectModel("type", types.TaskTypes, taskTypeIndex(types.TaskTypeImplement), ThemeFor("matrix"))
	if m.cursor != 3 {
		t.Errorf("Expected cursor on the suggested type, got %d", m.cursor)
	}
	if out := m.View(); out == "" {
		t.Error("Expected a rendered list")
	}

	bad := newSelectModel("x", []string{"a"}, 7, ThemeFor("matrix"))
	if bad.cursor != 0 {
		t.Errorf("Expected out of range cursor reset, got %d", bad.cursor)
	}
}

func TestInputModel(t *testing.T) {
	m := newInputModel("File path?", "src/x.ts", ThemeFor("matrix"))

	final := press(m,
		tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("app/page.tsx")},
		keyEnter,
	).(inputModel)
	if !final.done {
		t.Fatal("Expected enter to finish input")
	}
	if got := final.input.Value(); got != "app/page.tsx" {
		t.Errorf("Expected typed value, got %q", got)
	}

	cancelled := press(m, keyEsc).(inputModel)
	if !cancelled.cancelled {
		t.Error("Expected esc to cancel")
	}
}
