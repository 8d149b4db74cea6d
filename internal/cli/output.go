package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/charmbracelet/glamour"
	"github.com/fatih/color"

	"github.com/saeedalam/projectassistant/internal/events"
)

// console prints colored CLI output
type console struct {
	out    io.Writer
	accent *color.Color
	ok     *color.Color
	warn   *color.Color
	fail   *color.Color
	dim    *color.Color
	bold   *color.Color
}

func newConsole(out io.Writer, theme string) *console {
	accent := color.New(color.FgHiCyan, color.Bold)
	if theme == "matrix" {
		accent = color.New(color.FgHiGreen, color.Bold)
	}
	return &console{
		out:    out,
		accent: accent,
		ok:     color.New(color.FgHiGreen),
		warn:   color.New(color.FgYellow),
		fail:   color.New(color.FgRed),
		dim:    color.New(color.FgHiBlack),
		bold:   color.New(color.Bold),
	}
}

func (c *console) title(format string, args ...any) {
	c.accent.Fprintf(c.out, format+"\n", args...)
	c.dim.Fprintln(c.out, strings.Repeat("─", 50))
}

func (c *console) success(format string, args ...any) {
	c.ok.Fprintf(c.out, format+"\n", args...)
}

func (c *console) warning(format string, args ...any) {
	c.warn.Fprintf(c.out, format+"\n", args...)
}

func (c *console) errorf(format string, args ...any) {
	c.fail.Fprintf(c.out, format+"\n", args...)
}

func (c *console) muted(format string, args ...any) {
	c.dim.Fprintf(c.out, format+"\n", args...)
}

func (c *console) println(args ...any) {
	fmt.Fprintln(c.out, args...)
}

// field prints an aligned "label: value" line
func (c *console) field(label string, value any) {
	fmt.Fprintf(c.out, "%-18s %s\n", label+":", c.ok.Sprint(value))
}

// markdown renders md for the terminal, falling back to the raw text
func (c *console) markdown(md string) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err == nil {
		if out, err := r.Render(md); err == nil {
			fmt.Fprint(c.out, out)
			return
		}
	}
	fmt.Fprintln(c.out, md)
}

func orNone(list []string) string {
	if len(list) == 0 {
		return "None detected"
	}
	return strings.Join(list, ", ")
}

var phaseLabels = map[string]string{
	events.PhaseIndexing:   " Indexing project files...",
	events.PhaseScoring:    " Scoring relevance...",
	events.PhaseBuilding:   " Building context...",
	events.PhaseGenerating: " Generating code...",
}

// progress shows a spinner labelled by the task phase events on bus until
// the returned stop func is called
func progress(out io.Writer, bus *events.Bus, theme string) (stop func()) {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(out))
	s.Suffix = " Starting task..."
	if theme == "matrix" {
		s.Color("green")
	} else {
		s.Color("cyan")
	}

	sub := bus.Subscribe(16)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for ev := range sub.C {
			if ev.Type != events.TaskPhase {
				continue
			}
			if pd, ok := ev.Data.(events.PhaseData); ok {
				if label, ok := phaseLabels[pd.Phase]; ok {
					s.Lock()
					s.Suffix = label
					s.Unlock()
				}
			}
		}
	}()

	s.Start()
	return func() {
		s.Stop()
		bus.Unsubscribe(sub)
		<-done
	}
}
