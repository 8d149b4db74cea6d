package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.MaxContextFiles != 8 {
		t.Errorf("Expected maxContextFiles 8, got %d", cfg.MaxContextFiles)
	}
	if cfg.MaxFileSizeKB != 200 {
		t.Errorf("Expected maxFileSizeKb 200, got %d", cfg.MaxFileSizeKB)
	}
	if len(cfg.IgnoreDirs) != 7 {
		t.Errorf("Expected 7 ignored dirs, got %v", cfg.IgnoreDirs)
	}
}

func TestLoadOverridesAndIgnoresUnknownKeys(t *testing.T) {
	path := writeConfig(t, `{
  "model": "gpt-4o",
  "maxContextFiles": 3,
  "maxFileSizeKb": 50,
  "ignoreDirs": ["vendor"],
  "somethingElse": {"nested": true}
}`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Model != "gpt-4o" {
		t.Errorf("Expected model gpt-4o, got %s", cfg.Model)
	}
	if cfg.MaxContextFiles != 3 {
		t.Errorf("Expected maxContextFiles 3, got %d", cfg.MaxContextFiles)
	}
	if cfg.MaxFileBytes() != 50*1024 {
		t.Errorf("Expected 51200 bytes, got %d", cfg.MaxFileBytes())
	}
	if len(cfg.IgnoreDirs) != 1 || cfg.IgnoreDirs[0] != "vendor" {
		t.Errorf("Expected ignoreDirs [vendor], got %v", cfg.IgnoreDirs)
	}
	// Unset keys keep their defaults
	if cfg.Port != 3030 {
		t.Errorf("Expected default port 3030, got %d", cfg.Port)
	}
}

func TestLoadListsReplaceDefaults(t *testing.T) {
	path := writeConfig(t, `{"preferredFileTypes": [".vue"], "ignoreDirs": ["vendor", "tmp"]}`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(cfg.PreferredFileTypes) != 1 || cfg.PreferredFileTypes[0] != ".vue" {
		t.Errorf("Expected preferredFileTypes [.vue], got %v", cfg.PreferredFileTypes)
	}
	if len(cfg.IgnoreDirs) != 2 || cfg.IgnoreDirs[0] != "vendor" || cfg.IgnoreDirs[1] != "tmp" {
		t.Errorf("Expected ignoreDirs [vendor tmp], got %v", cfg.IgnoreDirs)
	}
	if cfg.MaxContextFiles != 8 || !cfg.CacheEnabled || cfg.Theme != "matrix" {
		t.Errorf("Expected unset keys to keep defaults, got %+v", cfg)
	}
}

func TestLoadModelFollowsProvider(t *testing.T) {
	cfg, err := Load(writeConfig(t, `{"provider": "anthropic"}`))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Model != DefaultAnthropicModel {
		t.Errorf("Expected model %s, got %s", DefaultAnthropicModel, cfg.Model)
	}

	cfg, err = Load(writeConfig(t, `{"provider": "anthropic", "model": "claude-3-5-haiku-latest"}`))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Model != "claude-3-5-haiku-latest" {
		t.Errorf("Expected configured model kept, got %s", cfg.Model)
	}

	cfg, err = Load(writeConfig(t, `{"temperature": 1}`))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Model != DefaultOpenAIModel {
		t.Errorf("Expected model %s, got %s", DefaultOpenAIModel, cfg.Model)
	}
}

func TestLoadMalformedFallsBackToDefaults(t *testing.T) {
	path := writeConfig(t, `{"model": `)

	cfg, err := Load(path)
	if err == nil {
		t.Fatal("Expected parse error to be reported")
	}
	if cfg == nil {
		t.Fatal("Expected defaults alongside the error")
	}
	if cfg.Model != "gpt-4-turbo-preview" {
		t.Errorf("Expected default model, got %s", cfg.Model)
	}
}

func TestLoadResetsInvalidValues(t *testing.T) {
	path := writeConfig(t, `{"port": 70000, "temperature": 5, "maxContextFiles": 0}`)

	cfg, err := Load(path)
	if err == nil {
		t.Fatal("Expected validation error")
	}
	if cfg.Port != 3030 || cfg.Temperature != 0.7 || cfg.MaxContextFiles != 8 {
		t.Errorf("Expected invalid values reset, got port=%d temp=%g max=%d", cfg.Port, cfg.Temperature, cfg.MaxContextFiles)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.json")
	cfg := DefaultConfig()
	cfg.Provider = ProviderAnthropic
	cfg.Model = "claude-sonnet-4-5-20250929"

	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Provider != ProviderAnthropic || loaded.Model != cfg.Model {
		t.Errorf("Expected saved provider/model, got %s/%s", loaded.Provider, loaded.Model)
	}
	if loaded.APIKeyEnv() != "ANTHROPIC_API_KEY" {
		t.Errorf("Expected ANTHROPIC_API_KEY, got %s", loaded.APIKeyEnv())
	}
}

func TestPathsEnsure(t *testing.T) {
	p := NewPaths(filepath.Join(t.TempDir(), "app"))
	if err := p.Ensure(); err != nil {
		t.Fatalf("Ensure failed: %v", err)
	}
	for _, dir := range []string{p.SessionsDir, p.BackupsDir, p.ExportsDir, p.CacheDir} {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			t.Errorf("Expected directory %s", dir)
		}
	}
}
