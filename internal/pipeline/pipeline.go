package pipeline

import (
	"context"
	"errors"
	"log/slog"

	"github.com/nao1215/wikigraph/internal/model"
)

// Run is the state shared by the steps of one pipeline execution.
// Each step reads what earlier steps produced and adds its own results.
type Run struct {
	// Name is the key the outer network is saved under.
	Name string

	// Seeds are the titles the outer crawl starts from.
	Seeds []string

	// Outer is the session of the outer crawl.
	Outer *model.Session

	// Inner is the session of the inner pass over Outer's node set.
	Inner *model.Session

	// Saved lists the persist names written by SaveStep.
	Saved []string

	// SessionIDs are the database IDs assigned by DBStep, in session order.
	SessionIDs []int64

	// PerformedSteps lists the steps that ran, in order.
	PerformedSteps []string

	// Interrupted is set when the context was cancelled during the run.
	Interrupted bool

	// Err is the first error returned by a step.
	Err error
}

// NewRun creates the state for a crawl of seeds saved under name.
func NewRun(name string, seeds []string) *Run {
	return &Run{
		Name:  name,
		Seeds: append([]string(nil), seeds...),
	}
}

// Sessions returns the sessions produced so far, outer first.
func (r *Run) Sessions() []*model.Session {
	sessions := make([]*model.Session, 0, 2)
	if r.Outer != nil {
		sessions = append(sessions, r.Outer)
	}
	if r.Inner != nil {
		sessions = append(sessions, r.Inner)
	}
	return sessions
}

// Step defines the interface that all pipeline steps must implement.
type Step interface {
	// Do executes the pipeline step.
	// It receives the context for cancellation and the run to update.
	Do(ctx context.Context, run *Run) error

	// Name returns the step's name for logging purposes.
	Name() string
}

// Pipeline orchestrates the execution of multiple steps.
// Regular steps run in order until one fails or the context is cancelled.
// Final steps always run afterwards, so whatever was crawled is kept.
type Pipeline struct {
	// steps contains the ordered list of steps to execute.
	steps []Step

	// finalSteps run after steps regardless of their outcome.
	finalSteps []Step

	// logger is used for structured logging during execution.
	logger *slog.Logger

	// continueOnError determines whether to continue executing steps
	// after one fails. If false, the pipeline stops on first error.
	continueOnError bool
}

// Option is a function that configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets a custom logger for the pipeline.
// If not set, slog.Default() is used.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithContinueOnError configures the pipeline to continue execution
// even when a step fails. Cancellation still stops the regular steps.
func WithContinueOnError(continueOnError bool) Option {
	return func(p *Pipeline) {
		p.continueOnError = continueOnError
	}
}

// New creates a new Pipeline with the given options.
// Steps should be added using AddStep after creation.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		steps: make([]Step, 0),
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.logger == nil {
		p.logger = slog.Default()
	}

	return p
}

// Logger returns the pipeline's logger.
func (p *Pipeline) Logger() *slog.Logger {
	return p.logger
}

// AddStep appends a step to the pipeline.
// Steps are executed in the order they are added.
func (p *Pipeline) AddStep(step Step) {
	p.steps = append(p.steps, step)
}

// AddSteps appends multiple steps to the pipeline.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// AddFinalStep appends a step that runs after the regular steps even if
// one of them failed or the context was cancelled. Final steps get a
// context that is not cancelled with the parent.
func (p *Pipeline) AddFinalStep(step Step) {
	p.finalSteps = append(p.finalSteps, step)
}

// Execute runs all pipeline steps in sequence and returns the first error.
// The context is checked before each regular step; a cancelled context
// marks the run as interrupted.
func (p *Pipeline) Execute(ctx context.Context, run *Run) error {
	for _, step := range p.steps {
		if err := ctx.Err(); err != nil {
			p.logger.Warn("pipeline cancelled",
				"step", step.Name(),
				"reason", err,
			)
			run.Interrupted = true
			p.recordError(run, err)
			break
		}

		if err := p.runStep(ctx, step, run); err != nil && !p.continueOnError {
			break
		}
	}

	finalCtx := context.WithoutCancel(ctx)
	for _, step := range p.finalSteps {
		_ = p.runStep(finalCtx, step, run)
	}

	return run.Err
}

// runStep executes one step and records its outcome in run.
func (p *Pipeline) runStep(ctx context.Context, step Step, run *Run) error {
	p.logger.Info("executing step",
		"step", step.Name(),
		"name", run.Name,
	)

	err := step.Do(ctx, run)
	run.PerformedSteps = append(run.PerformedSteps, step.Name())

	switch {
	case err == nil:
		p.logger.Debug("step completed",
			"step", step.Name(),
			"name", run.Name,
		)
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		p.logger.Warn("step interrupted",
			"step", step.Name(),
			"name", run.Name,
			"reason", err,
		)
		run.Interrupted = true
	default:
		p.logger.Error("step failed",
			"step", step.Name(),
			"name", run.Name,
			"error", err,
		)
	}

	if err != nil {
		p.recordError(run, err)
	}
	return err
}

func (p *Pipeline) recordError(run *Run, err error) {
	if run.Err == nil {
		run.Err = err
	}
}

// StepCount returns the number of steps in the pipeline, final steps included.
func (p *Pipeline) StepCount() int {
	return len(p.steps) + len(p.finalSteps)
}

// StepNames returns the names of all steps in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, 0, p.StepCount())
	for _, step := range p.steps {
		names = append(names, step.Name())
	}
	for _, step := range p.finalSteps {
		names = append(names, step.Name())
	}
	return names
}
