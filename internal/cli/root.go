package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	flagHome           string
	flagDebug          bool
	flagNonInteractive bool
)

var rootCmd = &cobra.Command{
	Use:   "project-assistant",
	Short: "AI pair programmer for React and Next.js projects",
	Long: `Project Assistant - generate code with full knowledge of your project

Project Assistant analyzes a React or Next.js project, picks the files that
matter for a task, asks an AI provider for code, and saves the result with a
backup of everything it overwrites.

Quick Start:
  project-assistant start               Start a session in the current directory
  project-assistant task "Fix the login form"
  project-assistant rollback            Undo a saved file
  project-assistant shell               Interactive session
  project-assistant serve               HTTP API and event stream`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		color.New(color.FgRed).Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagHome, "home", "", "Application directory (default $PROJECT_ASSISTANT_HOME or ~/.project-assistant)")
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&flagNonInteractive, "non-interactive", false, "Never prompt; use defaults")
}
