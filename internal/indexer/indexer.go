// Package indexer walks a project tree and streams candidate source files.
package indexer

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/saeedalam/projectassistant/internal/analyzer"
	"github.com/saeedalam/projectassistant/pkg/types"
)

// Pattern is a directory under the project root plus the accepted extensions
type Pattern struct {
	Dir        string
	Extensions []string
}

// Match reports whether the file name carries one of the pattern's extensions
func (p Pattern) Match(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range p.Extensions {
		if strings.EqualFold(e, ext) {
			return true
		}
	}
	return false
}

// Patterns derives the directories worth scanning from the project layout
func Patterns(info types.ProjectInfo, extensions []string) []Pattern {
	var dirs []string
	switch {
	case info.Framework == analyzer.FrameworkNext && info.RouterType == analyzer.RouterApp:
		dirs = []string{"app", "components"}
	case info.Framework == analyzer.FrameworkNext:
		dirs = []string{"pages", "components"}
	default:
		dirs = []string{"src"}
	}

	patterns := make([]Pattern, 0, len(dirs))
	for _, d := range dirs {
		patterns = append(patterns, Pattern{Dir: d, Extensions: extensions})
	}
	return patterns
}

// Indexer walks directories, skipping ignored names and symlink cycles
type Indexer struct {
	ignore map[string]bool
	logger zerolog.Logger
}

// New creates an indexer that never descends into the given directory names
func New(ignoreDirs []string, logger zerolog.Logger) *Indexer {
	ignore := make(map[string]bool, len(ignoreDirs))
	for _, d := range ignoreDirs {
		ignore[d] = true
	}
	return &Indexer{ignore: ignore, logger: logger}
}

// walkState is shared by every pattern of one Walk call so overlapping roots
// and symlinks never yield the same real file or directory twice
type walkState struct {
	visitedDirs  map[string]bool
	emittedFiles map[string]bool
}

// Walk sends the absolute path of every matching file under root to out and
// closes out when finished. Entries that cannot be read are logged and
// skipped; only cancellation aborts the walk.
func (ix *Indexer) Walk(ctx context.Context, root string, patterns []Pattern, out chan<- string) error {
	defer close(out)

	state := &walkState{
		visitedDirs:  make(map[string]bool),
		emittedFiles: make(map[string]bool),
	}

	for _, p := range patterns {
		dir := filepath.Join(root, p.Dir)
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			continue
		}
		if err := ix.walkDir(ctx, dir, p, state, out); err != nil {
			return err
		}
	}
	return nil
}

func (ix *Indexer) walkDir(ctx context.Context, dir string, p Pattern, state *walkState, out chan<- string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	real, err := filepath.EvalSymlinks(dir)
	if err != nil {
		ix.logger.Debug().Err(err).Str("dir", dir).Msg("skip unresolvable directory")
		return nil
	}
	if state.visitedDirs[real] {
		ix.logger.Debug().Str("dir", dir).Str("real", real).Msg("skip already visited directory")
		return nil
	}
	state.visitedDirs[real] = true

	entries, err := os.ReadDir(dir)
	if err != nil {
		ix.logger.Warn().Err(err).Str("dir", dir).Msg("cannot read directory")
		return nil
	}

	for _, entry := range entries {
		full := filepath.Join(dir, entry.Name())

		// Stat follows symlinks so linked directories are walked like real ones
		info, err := os.Stat(full)
		if err != nil {
			ix.logger.Debug().Err(err).Str("path", full).Msg("skip unreadable entry")
			continue
		}

		if info.IsDir() {
			if ix.ignore[entry.Name()] {
				continue
			}
			if err := ix.walkDir(ctx, full, p, state, out); err != nil {
				return err
			}
			continue
		}

		if !info.Mode().IsRegular() || !p.Match(entry.Name()) {
			continue
		}

		realFile, err := filepath.EvalSymlinks(full)
		if err != nil {
			continue
		}
		if state.emittedFiles[realFile] {
			continue
		}
		state.emittedFiles[realFile] = true

		abs, err := filepath.Abs(full)
		if err != nil {
			abs = full
		}
		select {
		case out <- abs:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// Collect runs Walk to completion and returns the discovered paths in order
func (ix *Indexer) Collect(ctx context.Context, root string, patterns []Pattern) ([]string, error) {
	ch := make(chan string, 64)
	errc := make(chan error, 1)
	go func() { errc <- ix.Walk(ctx, root, patterns, ch) }()

	var paths []string
	for p := range ch {
		paths = append(paths, p)
	}
	return paths, <-errc
}
