package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List saved sessions, newest first",
	Args:  cobra.NoArgs,
	RunE: withApp(func(a *app, cmd *cobra.Command, args []string) error {
		return a.listSessions()
	}),
}

func init() {
	rootCmd.AddCommand(sessionsCmd)
}

func (a *app) listSessions() error {
	list, err := a.sessions.List()
	if err != nil {
		return err
	}
	if len(list) == 0 {
		a.con.warning("No saved sessions.")
		return nil
	}

	current := ""
	if s := a.sessions.Current(); s != nil {
		current = s.ID
	}

	a.con.title("Sessions")
	for _, s := range list {
		marker := "  "
		if s.ID == current {
			marker = "* "
		}
		line := fmt.Sprintf("%s%s  %s  %d task(s)  %s", marker, s.ID, s.StartTime.Local().Format(time.DateTime), s.Tasks, s.ProjectDir)
		if s.ID == current {
			a.con.success("%s", line)
		} else {
			a.con.println(line)
		}
	}
	return nil
}
