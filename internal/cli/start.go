package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/saeedalam/projectassistant/pkg/types"
)

var startCmd = &cobra.Command{
	Use:   "start [path]",
	Short: "Start a new session for a project",
	Long: `Start a new session for a project.

The project is analyzed (framework, router, styling, state management and UI
libraries) and the session becomes current for later commands.

Example:
  project-assistant start
  project-assistant start ~/code/storefront`,
	Args: cobra.MaximumNArgs(1),
	RunE: withApp(func(a *app, cmd *cobra.Command, args []string) error {
		dir := ""
		if len(args) > 0 {
			dir = args[0]
		}
		return a.startSession(dir)
	}),
}

func init() {
	rootCmd.AddCommand(startCmd)
}

func (a *app) startSession(dir string) error {
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return err
		}
		dir = cwd
	}

	s, err := a.sessions.Start(dir)
	if err != nil {
		return err
	}

	a.con.success("Session started: %s", s.ID)
	a.con.println()
	a.printProject(s.ProjectDir, s.ProjectInfo)
	return nil
}

func (a *app) printProject(dir string, info types.ProjectInfo) {
	a.con.title("Project Information")
	a.con.field("Directory", dir)
	a.con.field("Framework", info.Framework)
	if info.RouterType != "" {
		a.con.field("Router", info.RouterType)
	}
	ts := "No"
	if info.HasTypeScript {
		ts = "Yes"
	}
	a.con.field("TypeScript", ts)
	a.con.field("Styling", orNone(info.Styling))
	a.con.field("State Management", orNone(info.StateManagement))
	a.con.field("UI Libraries", orNone(info.UILibraries))
}
