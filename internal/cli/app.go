package cli

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/saeedalam/projectassistant/internal/backup"
	"github.com/saeedalam/projectassistant/internal/completion"
	"github.com/saeedalam/projectassistant/internal/config"
	"github.com/saeedalam/projectassistant/internal/logging"
	"github.com/saeedalam/projectassistant/internal/orchestrator"
	"github.com/saeedalam/projectassistant/internal/prompter"
	"github.com/saeedalam/projectassistant/internal/session"
	"github.com/saeedalam/projectassistant/internal/storage"
)

const (
	// cacheFile is the completion cache database under the cache directory
	cacheFile = "completions.db"
	// cacheMaxAge is how long a cached completion is kept
	cacheMaxAge = 30 * 24 * time.Hour
)

// newService builds the completion provider; replaced in tests
var newService = completion.New

// app is everything a command needs, wired from the application directory
type app struct {
	paths    config.Paths
	cfg      *config.Config
	logger   zerolog.Logger
	con      *console
	cache    *storage.CompletionCache
	sessions *session.Manager
	orch     *orchestrator.Orchestrator
	prompter prompter.Prompter
	in       io.Reader
}

// openApp loads configuration, opens the stores and resumes the current
// session. Configuration problems are reported and defaults used.
func openApp(cmd *cobra.Command) (*app, error) {
	home := flagHome
	if home == "" {
		home = config.DefaultAppDir()
	}
	paths := config.NewPaths(home)
	if err := paths.Ensure(); err != nil {
		return nil, err
	}

	cfg, cfgErr := config.Load(paths.ConfigFile)
	out := cmd.OutOrStdout()
	con := newConsole(out, cfg.Theme)
	if cfgErr != nil {
		con.warning("Warning: %v", cfgErr)
	}
	if flagDebug {
		cfg.Debug = true
	}
	logger := logging.New(cfg.Debug, cmd.ErrOrStderr())

	a := &app{
		paths:  paths,
		cfg:    cfg,
		logger: logger,
		con:    con,
		in:     cmd.InOrStdin(),
	}

	if cfg.CacheEnabled {
		cache, err := storage.OpenCompletionCache(filepath.Join(paths.CacheDir, cacheFile))
		if err != nil {
			logger.Warn().Err(err).Msg("completion cache disabled")
		} else {
			a.cache = cache
			if n, err := cache.Prune(cacheMaxAge); err != nil {
				logger.Warn().Err(err).Msg("failed to prune completion cache")
			} else if n > 0 {
				logger.Debug().Int64("removed", n).Msg("pruned completion cache")
			}
		}
	}

	a.sessions = session.NewManager(session.Options{
		Store:          storage.NewSessionStore(paths.SessionsDir, paths.CurrentFile),
		Backups:        backup.NewManager(paths.BackupsDir),
		ExportsDir:     paths.ExportsDir,
		SessionTimeout: cfg.SessionTimeoutDuration(),
		Logger:         logger,
	})
	if _, err := a.sessions.Resume(); err != nil && !errors.Is(err, session.ErrNoSession) {
		logger.Warn().Err(err).Msg("could not resume the current session")
	}

	a.prompter = prompter.NonInteractive{}
	if !flagNonInteractive && isTerminal(a.in) {
		a.prompter = prompter.NewTerminal(a.in, out, prompter.ThemeFor(cfg.Theme))
	}

	a.orch = orchestrator.New(orchestrator.Options{
		Sessions: a.sessions,
		Config:   cfg,
		Factory: func(apiKey string) (completion.Service, error) {
			return newService(cfg, completion.Options{APIKey: apiKey, Cache: a.cache, Logger: logger})
		},
		Prompter: a.prompter,
		Logger:   logger,
	})
	return a, nil
}

// Close releases the cache. Session changes are persisted as they happen.
func (a *app) Close() {
	if a.cache != nil {
		a.cache.Close()
	}
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}

// withApp adapts a command body that needs the wired app
func withApp(run func(a *app, cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()
		return run(a, cmd, args)
	}
}
