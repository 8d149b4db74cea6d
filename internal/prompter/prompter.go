// Package prompter asks the user questions, either through a terminal UI or
// by answering with defaults when nobody is at the keyboard.
package prompter

import (
	"context"
	"errors"

	"github.com/saeedalam/projectassistant/pkg/types"
)

var (
	// ErrCancelled is returned when the user aborts a prompt
	ErrCancelled = errors.New("prompt cancelled")
	// ErrNonInteractive is returned for questions that have no sensible default
	ErrNonInteractive = errors.New("input required but running non-interactively")
)

// Prompter is every question the assistant may ask
type Prompter interface {
	// ChooseTaskType returns suggested or the user's replacement
	ChooseTaskType(ctx context.Context, suggested string) (string, error)
	Confirm(ctx context.Context, question string, def bool) (bool, error)
	Input(ctx context.Context, question, def string) (string, error)
	// Select returns the index of the chosen option
	Select(ctx context.Context, title string, options []string) (int, error)
}

// NonInteractive answers every question with its default
type NonInteractive struct{}

func (NonInteractive) ChooseTaskType(ctx context.Context, suggested string) (string, error) {
	return suggested, nil
}

func (NonInteractive) Confirm(ctx context.Context, question string, def bool) (bool, error) {
	return def, nil
}

func (NonInteractive) Input(ctx context.Context, question, def string) (string, error) {
	return def, nil
}

func (NonInteractive) Select(ctx context.Context, title string, options []string) (int, error) {
	return -1, ErrNonInteractive
}

// taskTypeIndex returns the position of t in types.TaskTypes, or 0
func taskTypeIndex(t string) int {
	for i, tt := range types.TaskTypes {
		if tt == t {
			return i
		}
	}
	return 0
}
