package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/saeedalam/projectassistant/internal/api"
	"github.com/saeedalam/projectassistant/internal/logging"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP API and event stream",
	Long: `Serve the HTTP API and the /ws event stream on localhost.

The port defaults to the configured port (3030).

Example:
  project-assistant serve
  project-assistant serve --port 8080`,
	Args: cobra.NoArgs,
	RunE: withApp(func(a *app, cmd *cobra.Command, args []string) error {
		return a.serve(cmd.Context(), servePort)
	}),
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Port to listen on (default from config)")
	rootCmd.AddCommand(serveCmd)
}

// newAPIServer builds the HTTP server over the app's session and orchestrator
func (a *app) newAPIServer(port int) *api.Server {
	if port == 0 {
		port = a.cfg.Port
	}
	logger := logging.NewServer(a.cfg.Debug, a.con.out)
	router := api.NewRouter(a.sessions, a.orch, logger)
	return api.NewServer(port, router, a.cfg.CompletionTimeoutDuration(), logger)
}

func (a *app) serve(ctx context.Context, port int) error {
	srv := a.newAPIServer(port)
	a.con.success("Server running at http://%s", srv.Addr())
	a.con.muted("Press Ctrl+C to stop")
	return srv.Run(ctx)
}
