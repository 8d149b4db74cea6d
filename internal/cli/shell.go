package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/saeedalam/projectassistant/pkg/types"
)

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Interactive session",
	Long: `Start an interactive shell.

Any line that is not a command is run as a task when a session is active.
When enableBrowser is set the HTTP API is served alongside the shell.`,
	Args: cobra.NoArgs,
	RunE: withApp(func(a *app, cmd *cobra.Command, args []string) error {
		return a.shell(cmd.Context())
	}),
}

func init() {
	rootCmd.AddCommand(shellCmd)
}

type shellLine struct {
	text string
	ok   bool
}

func (a *app) shell(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	serverErr := make(chan error, 1)
	if a.cfg.EnableBrowser {
		srv := a.newAPIServer(0)
		go func() { serverErr <- srv.Run(ctx) }()
		a.con.muted("Web API at http://%s", srv.Addr())
	}

	if !a.cfg.EnableCLI {
		if !a.cfg.EnableBrowser {
			return fmt.Errorf("both enableCLI and enableBrowser are off; nothing to run")
		}
		return <-serverErr
	}

	a.con.title("Project Assistant")
	a.con.muted("Type \"help\" for available commands.")
	if strings.TrimSpace(os.Getenv(a.cfg.APIKeyEnv())) == "" {
		a.con.warning("Warning: %s is not set. AI features are unavailable until it is.", a.cfg.APIKeyEnv())
	}

	sc := bufio.NewScanner(a.in)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	// One read at a time so terminal prompts own stdin while a command runs
	next := func() <-chan shellLine {
		ch := make(chan shellLine, 1)
		go func() {
			if sc.Scan() {
				ch <- shellLine{text: sc.Text(), ok: true}
				return
			}
			ch <- shellLine{}
		}()
		return ch
	}

	prompt := color.New(color.FgBlue).Sprint("Assistant> ")
	for {
		fmt.Fprint(a.con.out, prompt)

		var line shellLine
		select {
		case <-ctx.Done():
			a.con.println()
			a.con.success("Goodbye!")
			return nil
		case err := <-serverErr:
			return err
		case line = <-next():
		}
		if !line.ok {
			a.con.println()
			return sc.Err()
		}

		quit, err := a.dispatch(ctx, strings.TrimSpace(line.text))
		if err != nil {
			if errors.Is(err, context.Canceled) && ctx.Err() != nil {
				continue
			}
			a.con.errorf("Error: %v", err)
		}
		if quit {
			a.con.success("Thank you for using Project Assistant!")
			return nil
		}
	}
}

// dispatch runs one shell line and reports whether the shell should exit
func (a *app) dispatch(ctx context.Context, input string) (bool, error) {
	if input == "" {
		return false, nil
	}
	name, rest, _ := strings.Cut(input, " ")
	rest = strings.TrimSpace(rest)

	switch name {
	case "help":
		a.shellHelp()
	case "exit", "quit":
		return true, nil
	case "start":
		return false, a.startSession(rest)
	case "status":
		return false, a.showStatus()
	case "task":
		if rest == "" {
			a.con.warning("Usage: task <description>")
			return false, nil
		}
		return false, a.runTask(ctx, rest, "")
	case "export":
		return false, a.export()
	case "rollback":
		return false, a.rollback(ctx, rest)
	case "backups":
		return false, a.listBackups()
	case "sessions":
		return false, a.listSessions()
	case "load":
		if rest == "" {
			a.con.warning("Usage: load <session-id>")
			return false, nil
		}
		return false, a.loadSession(rest)
	case "browse":
		if !a.cfg.EnableBrowser {
			a.con.warning("Web interface is disabled. Enable it in config.json.")
			return false, nil
		}
		a.con.println(fmt.Sprintf("Open http://127.0.0.1:%d", a.cfg.Port))
	default:
		if s := a.sessions.Current(); s != nil && s.Status == types.SessionRunning {
			return false, a.runTask(ctx, input, "")
		}
		a.con.warning("Unknown command. Type \"help\" for available commands.")
	}
	return false, nil
}

func (a *app) shellHelp() {
	a.con.title("Available Commands")
	cmds := []struct{ name, desc string }{
		{"start [path]", "Start a new session"},
		{"status", "Display current session status"},
		{"task <text>", "Execute a new task"},
		{"export", "Export modified files"},
		{"rollback [id]", "Roll back changes to a file"},
		{"backups", "List backups by file"},
		{"sessions", "List saved sessions"},
		{"load <id>", "Load a previous session"},
		{"browse", "Show the web interface address"},
		{"help", "Display this help information"},
		{"exit", "Exit the shell"},
	}
	for _, c := range cmds {
		fmt.Fprintf(a.con.out, "%s %s\n", a.con.accent.Sprintf("%-14s", c.name), c.desc)
	}
}
