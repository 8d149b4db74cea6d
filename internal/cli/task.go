package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/saeedalam/projectassistant/internal/orchestrator"
	"github.com/saeedalam/projectassistant/internal/session"
	"github.com/saeedalam/projectassistant/pkg/types"
)

var taskType string

var taskCmd = &cobra.Command{
	Use:   "task <description...>",
	Short: "Generate code for a task in the current session",
	Long: `Generate code for a task in the current session.

The most relevant project files are sent to the AI provider together with
the task. Without --type the task type is inferred from the description and
offered for confirmation.

Task types: create, modify, fix, implement, other

Example:
  project-assistant task "Fix the login form validation"
  project-assistant task --type create "A pricing card component"`,
	Args: cobra.MinimumNArgs(1),
	RunE: withApp(func(a *app, cmd *cobra.Command, args []string) error {
		return a.runTask(cmd.Context(), strings.Join(args, " "), taskType)
	}),
}

func init() {
	taskCmd.Flags().StringVarP(&taskType, "type", "t", "", "Task type (create, modify, fix, implement, other)")
	rootCmd.AddCommand(taskCmd)
}

func (a *app) runTask(ctx context.Context, description, rawType string) error {
	description = strings.TrimSpace(description)
	if description == "" {
		return fmt.Errorf("task description is required")
	}
	tt := ""
	if rawType != "" {
		t, ok := types.ParseTaskType(rawType)
		if !ok {
			return fmt.Errorf("unknown task type %q", rawType)
		}
		tt = t
	}

	var stop func()
	if a.sessions.Current() != nil {
		stop = progress(a.con.out, a.sessions.Bus(), a.cfg.Theme)
	}
	task, err := a.orch.Run(ctx, description, tt)
	if stop != nil {
		stop()
	}

	if err != nil {
		switch {
		case errors.Is(err, session.ErrNoSession):
			a.con.warning("No active session. Run 'project-assistant start' first.")
		case errors.Is(err, orchestrator.ErrMissingCredential):
			a.con.warning("Set %s to use AI features.", a.cfg.APIKeyEnv())
		case task.ID != "":
			a.con.errorf("Task %s failed", task.ID)
		}
		return err
	}

	a.printTask(task)

	saved, err := a.orch.OfferSave(ctx, task)
	if err != nil {
		return err
	}
	if saved != nil {
		a.con.success("Saved %s", saved.RelativePath)
		if saved.BackupID != "" {
			a.con.muted("Backup: %s", saved.BackupID)
		}
	}
	return nil
}

func (a *app) printTask(task types.Task) {
	a.con.success("Task completed: %s", task.ID)
	a.con.muted("Type: %s", task.Type)
	if task.Result == nil {
		return
	}
	if len(task.Result.Files) > 0 {
		a.con.muted("Context: %s", strings.Join(task.Result.Files, ", "))
	}
	a.con.println()

	var md strings.Builder
	if task.Result.Explanation != "" {
		md.WriteString(task.Result.Explanation)
		md.WriteString("\n\n")
	}
	if task.Result.Code != "" {
		md.WriteString("```\n")
		md.WriteString(task.Result.Code)
		md.WriteString("\n```\n")
	}
	a.con.markdown(md.String())
}
