package cli

import (
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/saeedalam/projectassistant/internal/session"
)

var backupsCmd = &cobra.Command{
	Use:   "backups",
	Short: "List this session's backups grouped by file",
	Args:  cobra.NoArgs,
	RunE: withApp(func(a *app, cmd *cobra.Command, args []string) error {
		return a.listBackups()
	}),
}

func init() {
	rootCmd.AddCommand(backupsCmd)
}

func (a *app) listBackups() error {
	groups, err := a.sessions.BackupsByFile()
	if errors.Is(err, session.ErrNoSession) {
		a.con.warning("No active session.")
		return nil
	}
	if err != nil {
		return err
	}
	if len(groups) == 0 {
		a.con.warning("No backups available in this session.")
		return nil
	}

	a.con.title("Backups")
	for _, g := range groups {
		a.con.accent.Fprintln(a.con.out, g.File)
		for _, b := range g.Backups {
			a.con.println("  " + b.ID + "  " + a.con.dim.Sprint(b.Timestamp.Local().Format(time.DateTime)))
		}
	}
	return nil
}
