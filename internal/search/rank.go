package search

import (
	"context"
	"os"
	"sort"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/saeedalam/projectassistant/pkg/types"
)

const (
	DefaultMaxFileBytes = 200 * 1024
	DefaultMaxResults   = 8
)

// Options bounds a ranking pass
type Options struct {
	MaxFileBytes int64 // files larger than this are skipped, never truncated
	MaxResults   int
}

func (o Options) withDefaults() Options {
	if o.MaxFileBytes <= 0 {
		o.MaxFileBytes = DefaultMaxFileBytes
	}
	if o.MaxResults <= 0 {
		o.MaxResults = DefaultMaxResults
	}
	return o
}

// Scorer ranks candidate files against a task description
type Scorer struct {
	opts   Options
	logger zerolog.Logger
}

// NewScorer creates a scorer with the given limits
func NewScorer(opts Options, logger zerolog.Logger) *Scorer {
	return &Scorer{opts: opts.withDefaults(), logger: logger}
}

// Rank consumes paths until the channel closes and returns the highest
// scoring files first. Files that cannot be read or are not valid UTF-8 are
// skipped. Files scoring zero are dropped. Ties keep discovery order.
func (s *Scorer) Rank(ctx context.Context, paths <-chan string, description string) ([]types.RelevantFile, error) {
	keywords := Keywords(description)

	var scored []types.RelevantFile
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case path, ok := <-paths:
			if !ok {
				return s.top(scored), nil
			}
			if len(keywords) == 0 {
				continue
			}
			f, ok := s.scoreFile(path, keywords)
			if ok {
				scored = append(scored, f)
			}
		}
	}
}

// RankPaths is Rank over an already collected slice
func (s *Scorer) RankPaths(ctx context.Context, paths []string, description string) ([]types.RelevantFile, error) {
	ch := make(chan string, len(paths))
	for _, p := range paths {
		ch <- p
	}
	close(ch)
	return s.Rank(ctx, ch, description)
}

func (s *Scorer) scoreFile(path string, keywords []string) (types.RelevantFile, bool) {
	info, err := os.Stat(path)
	if err != nil {
		s.logger.Debug().Err(err).Str("path", path).Msg("skip unreadable file")
		return types.RelevantFile{}, false
	}
	if info.Size() > s.opts.MaxFileBytes {
		s.logger.Debug().Str("path", path).Int64("size", info.Size()).Msg("skip oversized file")
		return types.RelevantFile{}, false
	}

	data, err := os.ReadFile(path)
	if err != nil {
		s.logger.Debug().Err(err).Str("path", path).Msg("skip unreadable file")
		return types.RelevantFile{}, false
	}
	if !utf8.Valid(data) {
		s.logger.Debug().Str("path", path).Msg("skip non-utf8 file")
		return types.RelevantFile{}, false
	}

	content := string(data)
	score := Score(path, content, keywords)
	if score == 0 {
		return types.RelevantFile{}, false
	}
	return types.RelevantFile{Path: path, Content: content, Score: score}, true
}

func (s *Scorer) top(files []types.RelevantFile) []types.RelevantFile {
	sort.SliceStable(files, func(i, j int) bool {
		return files[i].Score > files[j].Score
	})
	if len(files) > s.opts.MaxResults {
		files = files[:s.opts.MaxResults]
	}
	return files
}
