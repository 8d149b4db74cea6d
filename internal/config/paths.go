package config

import (
	"os"
	"path/filepath"
)

// HomeEnv overrides the application directory
const HomeEnv = "PROJECT_ASSISTANT_HOME"

// Paths locates everything the tool writes outside the user's project
type Paths struct {
	AppDir      string
	CacheDir    string
	SessionsDir string
	ExportsDir  string
	BackupsDir  string
	ConfigFile  string
	CurrentFile string
}

// NewPaths lays out the application directory rooted at appDir
func NewPaths(appDir string) Paths {
	return Paths{
		AppDir:      appDir,
		CacheDir:    filepath.Join(appDir, "cache"),
		SessionsDir: filepath.Join(appDir, "sessions"),
		ExportsDir:  filepath.Join(appDir, "exports"),
		BackupsDir:  filepath.Join(appDir, "backups"),
		ConfigFile:  filepath.Join(appDir, "config.json"),
		CurrentFile: filepath.Join(appDir, "current"),
	}
}

// DefaultAppDir returns $PROJECT_ASSISTANT_HOME or ~/.project-assistant
func DefaultAppDir() string {
	if v := os.Getenv(HomeEnv); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".project-assistant"
	}
	return filepath.Join(home, ".project-assistant")
}

// Ensure creates every directory in the layout
func (p Paths) Ensure() error {
	for _, dir := range []string{p.AppDir, p.CacheDir, p.SessionsDir, p.ExportsDir, p.BackupsDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return nil
}
