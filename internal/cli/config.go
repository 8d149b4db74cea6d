package cli

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/saeedalam/projectassistant/internal/config"
)

var configInit bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration",
	Long: `Show the effective configuration and where it is read from.

With --init a config.json holding the defaults is written if none exists.`,
	Args: cobra.NoArgs,
	RunE: withApp(func(a *app, cmd *cobra.Command, args []string) error {
		return a.showConfig(configInit)
	}),
}

func init() {
	configCmd.Flags().BoolVar(&configInit, "init", false, "Write a default config.json if missing")
	rootCmd.AddCommand(configCmd)
}

func (a *app) showConfig(initFile bool) error {
	if initFile {
		if _, err := os.Stat(a.paths.ConfigFile); os.IsNotExist(err) {
			if err := config.DefaultConfig().Save(a.paths.ConfigFile); err != nil {
				return err
			}
			a.con.success("Wrote %s", a.paths.ConfigFile)
		} else {
			a.con.muted("%s already exists", a.paths.ConfigFile)
		}
	}

	a.con.title("Configuration")
	a.con.field("File", a.paths.ConfigFile)
	a.con.field("App directory", a.paths.AppDir)
	a.con.field("API key", a.cfg.APIKeyEnv())
	if a.cache != nil {
		if n, err := a.cache.Count(); err == nil {
			a.con.field("Cached replies", n)
		}
	}

	data, err := json.MarshalIndent(a.cfg, "", "  ")
	if err != nil {
		return err
	}
	a.con.println(string(data))
	return nil
}
