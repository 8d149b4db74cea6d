package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/saeedalam/projectassistant/internal/prompter"
	"github.com/saeedalam/projectassistant/internal/session"
)

var rollbackCmd = &cobra.Command{
	Use:   "rollback [backupId]",
	Short: "Restore a file from one of this session's backups",
	Long: `Restore a file from one of this session's backups.

Without a backup id you pick the file and then the backup interactively.
The content being replaced is backed up first, so a rollback can itself be
rolled back.

Example:
  project-assistant rollback
  project-assistant rollback 3f9c2a8e-...`,
	Args: cobra.MaximumNArgs(1),
	RunE: withApp(func(a *app, cmd *cobra.Command, args []string) error {
		id := ""
		if len(args) > 0 {
			id = args[0]
		}
		return a.rollback(cmd.Context(), id)
	}),
}

func init() {
	rootCmd.AddCommand(rollbackCmd)
}

func (a *app) rollback(ctx context.Context, backupID string) error {
	if backupID == "" {
		id, err := a.chooseBackup(ctx)
		if err != nil || id == "" {
			return err
		}
		backupID = id
	}

	res, err := a.sessions.Rollback(backupID)
	if errors.Is(err, session.ErrNoSession) {
		a.con.warning("No active session.")
		return nil
	}
	if err != nil {
		return err
	}

	a.con.success("Restored %s", res.File)
	if res.SnapshotID != "" {
		a.con.muted("Previous content kept as backup %s", res.SnapshotID)
	}
	return nil
}

// chooseBackup walks the user through file then backup selection. An empty
// id with a nil error means there was nothing to choose or the user cancelled.
func (a *app) chooseBackup(ctx context.Context) (string, error) {
	groups, err := a.sessions.BackupsByFile()
	if errors.Is(err, session.ErrNoSession) {
		a.con.warning("No active session.")
		return "", nil
	}
	if err != nil {
		return "", err
	}
	if len(groups) == 0 {
		a.con.warning("No backups available in this session.")
		return "", nil
	}

	files := make([]string, len(groups))
	for i, g := range groups {
		files[i] = fmt.Sprintf("%s (%d backups)", g.File, len(g.Backups))
	}
	fi, err := a.prompter.Select(ctx, "Select a file to roll back", files)
	if err != nil {
		return "", a.selectErr(err)
	}

	group := groups[fi]
	options := make([]string, len(group.Backups))
	for i, b := range group.Backups {
		options[i] = b.Timestamp.Local().Format(time.DateTime)
	}
	bi, err := a.prompter.Select(ctx, "Select a backup to restore", options)
	if err != nil {
		return "", a.selectErr(err)
	}
	return group.Backups[bi].ID, nil
}

func (a *app) selectErr(err error) error {
	switch {
	case errors.Is(err, prompter.ErrCancelled):
		a.con.muted("Rollback cancelled.")
		return nil
	case errors.Is(err, prompter.ErrNonInteractive):
		return fmt.Errorf("backup id required when not interactive; list them with 'project-assistant backups'")
	}
	return err
}
