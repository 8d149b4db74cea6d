package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/saeedalam/projectassistant/internal/session"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Copy every file modified in this session into an export directory",
	Long: `Copy every file modified in this session into a new directory under
the application's exports/, keeping the project layout, together with a
metadata.json manifest.`,
	Args: cobra.NoArgs,
	RunE: withApp(func(a *app, cmd *cobra.Command, args []string) error {
		return a.export()
	}),
}

func init() {
	rootCmd.AddCommand(exportCmd)
}

func (a *app) export() error {
	res, err := a.sessions.ExportModified()
	switch {
	case errors.Is(err, session.ErrNoSession):
		a.con.warning("No active session.")
		return nil
	case errors.Is(err, session.ErrNothingToExport):
		a.con.warning("No modified files to export.")
		return nil
	case err != nil:
		return err
	}

	a.con.success("Exported %d file(s)", res.Count)
	a.con.field("Export", res.ExportID)
	a.con.field("Directory", res.ExportDir)
	return nil
}
