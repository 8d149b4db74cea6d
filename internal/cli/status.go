package cli

import (
	"errors"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/saeedalam/projectassistant/internal/session"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current session",
	Long: `Show the current session.

Displays:
- Session id, status and duration
- Project directory
- Modified files, backups and tasks`,
	Args: cobra.NoArgs,
	RunE: withApp(func(a *app, cmd *cobra.Command, args []string) error {
		return a.showStatus()
	}),
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func (a *app) showStatus() error {
	report, err := a.sessions.Status()
	if errors.Is(err, session.ErrNoSession) {
		a.con.warning("No active session. Run 'project-assistant start' to begin.")
		return nil
	}
	if err != nil {
		return err
	}

	a.con.title("Session Status")
	a.con.field("Session", report.ID)
	a.con.field("Status", report.Status)
	a.con.field("Duration", report.Duration)
	a.con.field("Project", report.ProjectDir)
	a.con.field("Tasks", report.Tasks)
	a.con.field("Backups", report.Backups)
	a.con.field("Modified files", len(report.ModifiedFiles))
	for _, f := range report.ModifiedFiles {
		rel, err := filepath.Rel(report.ProjectDir, f)
		if err != nil {
			rel = f
		}
		a.con.muted("  - %s", rel)
	}
	return nil
}
