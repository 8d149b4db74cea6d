// Package orchestrator runs a task end to end: find relevant files, build the
// prompt, ask the completion provider, parse the reply and record the outcome.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/saeedalam/projectassistant/internal/completion"
	"github.com/saeedalam/projectassistant/internal/config"
	"github.com/saeedalam/projectassistant/internal/events"
	"github.com/saeedalam/projectassistant/internal/indexer"
	"github.com/saeedalam/projectassistant/internal/prompt"
	"github.com/saeedalam/projectassistant/internal/prompter"
	"github.com/saeedalam/projectassistant/internal/response"
	"github.com/saeedalam/projectassistant/internal/search"
	"github.com/saeedalam/projectassistant/internal/session"
	"github.com/saeedalam/projectassistant/pkg/types"
)

// ErrMissingCredential is returned when the provider API key is not set
var ErrMissingCredential = errors.New("missing API credential")

// ServiceFactory builds a completion service for an API key
type ServiceFactory func(apiKey string) (completion.Service, error)

// Options wires an Orchestrator
type Options struct {
	Sessions  *session.Manager
	Config    *config.Config
	Factory   ServiceFactory
	Prompter  prompter.Prompter           // nil answers with defaults
	LookupEnv func(string) (string, bool) // nil uses os.LookupEnv
	Logger    zerolog.Logger
}

// Orchestrator runs tasks against the current session
type Orchestrator struct {
	sessions  *session.Manager
	cfg       *config.Config
	factory   ServiceFactory
	prompter  prompter.Prompter
	lookupEnv func(string) (string, bool)
	logger    zerolog.Logger

	mu     sync.Mutex
	svc    completion.Service
	svcKey string
}

// New creates an orchestrator
func New(opts Options) *Orchestrator {
	p := opts.Prompter
	if p == nil {
		p = prompter.NonInteractive{}
	}
	lookup := opts.LookupEnv
	if lookup == nil {
		lookup = os.LookupEnv
	}
	return &Orchestrator{
		sessions:  opts.Sessions,
		cfg:       opts.Config,
		factory:   opts.Factory,
		prompter:  p,
		lookupEnv: lookup,
		logger:    opts.Logger,
	}
}

// InferTaskType guesses a task type from the description
func InferTaskType(description string) string {
	d := strings.ToLower(description)
	switch {
	case strings.Contains(d, "create") || strings.Contains(d, "new component"):
		return types.TaskTypeCreate
	case strings.Contains(d, "fix") || strings.Contains(d, "bug"):
		return types.TaskTypeFix
	case strings.Contains(d, "modify") || strings.Contains(d, "change"):
		return types.TaskTypeModify
	case strings.Contains(d, "implement") || strings.Contains(d, "feature"):
		return types.TaskTypeImplement
	default:
		return types.TaskTypeOther
	}
}

// Run executes one task. Precondition failures return an error without
// creating a task; every later failure is recorded on the task, which is
// returned alongside the error.
func (o *Orchestrator) Run(ctx context.Context, description, taskType string) (types.Task, error) {
	sess := o.sessions.Current()
	if sess == nil {
		return types.Task{}, session.ErrNoSession
	}

	svc, err := o.service()
	if err != nil {
		return types.Task{}, err
	}

	if taskType == "" {
		inferred := InferTaskType(description)
		taskType, err = o.prompter.ChooseTaskType(ctx, inferred)
		if err != nil || taskType == "" {
			taskType = inferred
		}
	}

	task, err := o.sessions.BeginTask(description, taskType)
	if err != nil {
		return types.Task{}, err
	}
	log := o.logger.With().Str("task", task.ID).Logger()

	result, err := o.execute(ctx, sess, task, svc, log)
	if err != nil {
		log.Debug().Err(err).Msg("task failed")
		failed, ferr := o.sessions.FailTask(sess.ID, task.ID, err)
		if ferr != nil {
			log.Error().Err(ferr).Msg("failed to record task failure")
			failed = task
			failed.Status = types.TaskFailed
			failed.Error = err.Error()
		}
		return failed, err
	}

	done, err := o.sessions.CompleteTask(sess.ID, task.ID, result)
	if err != nil {
		return task, err
	}
	return done, nil
}

func (o *Orchestrator) execute(ctx context.Context, sess *types.Session, task types.Task, svc completion.Service, log zerolog.Logger) (types.TaskResult, error) {
	files, err := o.relevantFiles(ctx, sess, task)
	if err != nil {
		return types.TaskResult{}, fmt.Errorf("index project: %w", err)
	}
	log.Debug().Int("files", len(files)).Msg("relevant files selected")

	o.phase(task.ID, events.PhaseBuilding)
	pc := prompt.Build(files, sess.ProjectDir, sess.ProjectInfo)
	msgs := prompt.Render(pc, task.Type, task.Description, prompt.DefaultLimits())

	o.phase(task.ID, events.PhaseGenerating)
	cctx, cancel := context.WithTimeout(ctx, o.cfg.CompletionTimeoutDuration())
	defer cancel()

	text, err := svc.Complete(cctx, completion.Request{
		System:      msgs.System,
		User:        msgs.User,
		Model:       o.cfg.Model,
		MaxTokens:   o.cfg.MaxTokens,
		Temperature: o.cfg.Temperature,
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return types.TaskResult{}, fmt.Errorf("completion timed out after %s", o.cfg.CompletionTimeoutDuration())
		}
		return types.TaskResult{}, err
	}

	parsed, err := response.Parse(text)
	if err != nil {
		return types.TaskResult{}, fmt.Errorf("parse response: %w", err)
	}

	return types.TaskResult{
		Code:        parsed.Code,
		Explanation: parsed.Explanation,
		Files:       pc.Paths(),
	}, nil
}

// relevantFiles streams the project walk into the scorer
func (o *Orchestrator) relevantFiles(ctx context.Context, sess *types.Session, task types.Task) ([]types.RelevantFile, error) {
	ix := indexer.New(o.cfg.IgnoreDirs, o.logger)
	scorer := search.NewScorer(search.Options{
		MaxFileBytes: o.cfg.MaxFileBytes(),
		MaxResults:   o.cfg.MaxContextFiles,
	}, o.logger)
	patterns := indexer.Patterns(sess.ProjectInfo, o.cfg.PreferredFileTypes)

	g, gctx := errgroup.WithContext(ctx)
	paths := make(chan string, 64)

	o.phase(task.ID, events.PhaseIndexing)
	g.Go(func() error {
		return ix.Walk(gctx, sess.ProjectDir, patterns, paths)
	})

	var files []types.RelevantFile
	g.Go(func() error {
		o.phase(task.ID, events.PhaseScoring)
		ranked, err := scorer.Rank(gctx, paths, task.Description)
		files = ranked
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return files, nil
}

func (o *Orchestrator) phase(taskID, phase string) {
	o.sessions.Bus().Publish(events.TaskPhase, events.PhaseData{TaskID: taskID, Phase: phase})
}

// service returns the completion service, rebuilding it if the key changed
func (o *Orchestrator) service() (completion.Service, error) {
	env := o.cfg.APIKeyEnv()
	key, ok := o.lookupEnv(env)
	if !ok || strings.TrimSpace(key) == "" {
		return nil, fmt.Errorf("%w: set %s", ErrMissingCredential, env)
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	if o.svc != nil && o.svcKey == key {
		return o.svc, nil
	}
	svc, err := o.factory(key)
	if err != nil {
		return nil, err
	}
	o.svc, o.svcKey = svc, key
	return svc, nil
}

// OfferSave asks whether to write a completed task's code and where, then
// saves it through the session. It returns nil when nothing was saved.
func (o *Orchestrator) OfferSave(ctx context.Context, task types.Task) (*types.SaveResult, error) {
	if task.Status != types.TaskCompleted || task.Result == nil || task.Result.Code == "" {
		return nil, nil
	}

	ok, err := o.prompter.Confirm(ctx, "Save the generated code to a file?", false)
	if err != nil || !ok {
		if errors.Is(err, prompter.ErrCancelled) {
			return nil, nil
		}
		return nil, err
	}

	def := ""
	if len(task.Result.Files) > 0 && (task.Type == types.TaskTypeModify || task.Type == types.TaskTypeFix) {
		def = task.Result.Files[0]
	}
	path, err := o.prompter.Input(ctx, "File path (relative to the project root):", def)
	if err != nil {
		if errors.Is(err, prompter.ErrCancelled) {
			return nil, nil
		}
		return nil, err
	}
	if strings.TrimSpace(path) == "" {
		return nil, nil
	}

	// Parsed blocks drop their final newline; files on disk keep one
	content := task.Result.Code
	if !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	res, err := o.sessions.SaveFile(path, content)
	if err != nil {
		return nil, err
	}
	return &res, nil
}
