package indexer

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/saeedalam/projectassistant/internal/analyzer"
	"github.com/saeedalam/projectassistant/pkg/types"
)

var defaultIgnore = []string{"node_modules", ".git", ".next", "out", "dist", "build", "public"}
var jsExts = []string{".js", ".jsx", ".ts", ".tsx"}

func writeFiles(t *testing.T, root string, files ...string) {
	t.Helper()
	for _, f := range files {
		full := filepath.Join(root, f)
		if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
			t.Fatalf("Failed to create dir for %s: %v", f, err)
		}
		if err := os.WriteFile(full, []byte("export {}\n"), 0644); err != nil {
			t.Fatalf("Failed to write %s: %v", f, err)
		}
	}
}

func relAll(t *testing.T, root string, paths []string) []string {
	t.Helper()
	realRoot, _ := filepath.EvalSymlinks(root)
	var out []string
	for _, p := range paths {
		rel, err := filepath.Rel(root, p)
		if err != nil || rel[0] == '.' {
			rel, _ = filepath.Rel(realRoot, p)
		}
		out = append(out, filepath.ToSlash(rel))
	}
	sort.Strings(out)
	return out
}

func TestPatterns(t *testing.T) {
	tests := []struct {
		name string
		info types.ProjectInfo
		dirs []string
	}{
		{"app router", types.ProjectInfo{Framework: analyzer.FrameworkNext, RouterType: analyzer.RouterApp}, []string{"app", "components"}},
		{"pages router", types.ProjectInfo{Framework: analyzer.FrameworkNext, RouterType: analyzer.RouterPages}, []string{"pages", "components"}},
		{"next unknown router", types.ProjectInfo{Framework: analyzer.FrameworkNext, RouterType: analyzer.Unknown}, []string{"pages", "components"}},
		{"react", types.ProjectInfo{Framework: analyzer.FrameworkReact}, []string{"src"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Patterns(tt.info, jsExts)
			if len(got) != len(tt.dirs) {
				t.Fatalf("Expected %d patterns, got %d", len(tt.dirs), len(got))
			}
			for i, p := range got {
				if p.Dir != tt.dirs[i] {
					t.Errorf("Pattern %d: expected %s, got %s", i, tt.dirs[i], p.Dir)
				}
			}
		})
	}
}

func TestWalkSkipsIgnoredAndFiltersExtensions(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root,
		"app/page.tsx",
		"app/layout.tsx",
		"app/styles.css",
		"app/node_modules/dep/index.js",
		"components/Button.tsx",
		"components/build/Generated.tsx",
		"lib/outside.ts",
	)

	ix := New(defaultIgnore, zerolog.Nop())
	patterns := []Pattern{{Dir: "app", Extensions: jsExts}, {Dir: "components", Extensions: jsExts}}

	paths, err := ix.Collect(context.Background(), root, patterns)
	if err != nil {
		t.Fatalf("Walk failed: %v", err)
	}

	got := relAll(t, root, paths)
	want := []string{"app/layout.tsx", "app/page.tsx", "components/Button.tsx"}
	if len(got) != len(want) {
		t.Fatalf("Expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Expected %v, got %v", want, got)
			break
		}
	}
	for _, p := range paths {
		if !filepath.IsAbs(p) {
			t.Errorf("Expected absolute path, got %s", p)
		}
	}
}

func TestWalkMissingPatternRoot(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "src/index.ts")

	ix := New(defaultIgnore, zerolog.Nop())
	paths, err := ix.Collect(context.Background(), root, []Pattern{{Dir: "app", Extensions: jsExts}, {Dir: "src", Extensions: jsExts}})
	if err != nil {
		t.Fatalf("Walk failed: %v", err)
	}
	if len(paths) != 1 {
		t.Errorf("Expected 1 file, got %v", paths)
	}
}

func TestWalkSymlinkCycleTerminates(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "src/a/file.ts")

	// src/a/loop -> src, a directory cycle
	if err := os.Symlink(filepath.Join(root, "src"), filepath.Join(root, "src", "a", "loop")); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}

	ix := New(defaultIgnore, zerolog.Nop())
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	paths, err := ix.Collect(ctx, root, []Pattern{{Dir: "src", Extensions: jsExts}})
	if err != nil {
		t.Fatalf("Walk failed: %v", err)
	}
	if len(paths) != 1 {
		t.Errorf("Expected the file exactly once, got %v", paths)
	}
}

func TestWalkCancelled(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "src/a.ts", "src/b.ts")

	ix := New(defaultIgnore, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out := make(chan string)
	err := ix.Walk(ctx, root, []Pattern{{Dir: "src", Extensions: jsExts}}, out)
	if err == nil {
		t.Fatal("Expected cancellation error")
	}
	if _, ok := <-out; ok {
		t.Error("Expected output channel to be closed")
	}
}
