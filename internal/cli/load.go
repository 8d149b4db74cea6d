package cli

import (
	"github.com/spf13/cobra"
)

var loadCmd = &cobra.Command{
	Use:   "load <sessionId>",
	Short: "Make a previous session current",
	Long: `Make a previous session current.

Example:
  project-assistant sessions
  project-assistant load ses-20260101-1a2b3c4d`,
	Args: cobra.ExactArgs(1),
	RunE: withApp(func(a *app, cmd *cobra.Command, args []string) error {
		return a.loadSession(args[0])
	}),
}

func init() {
	rootCmd.AddCommand(loadCmd)
}

func (a *app) loadSession(id string) error {
	s, err := a.sessions.Load(id)
	if err != nil {
		return err
	}
	a.con.success("Session loaded: %s", s.ID)
	a.con.field("Project", s.ProjectDir)
	a.con.field("Status", s.Status)
	a.con.field("Tasks", len(s.Tasks))
	a.con.field("Modified files", len(s.ModifiedFiles))
	return nil
}
