package pipeline

import (
	"context"
	"fmt"
)

// Step transforms a Context. It may block on I/O.
type Step interface {
	// Name identifies the step in errors and logs.
	Name() string

	// Run returns the updated Context, or an error that aborts the run.
	Run(ctx context.Context, pc Context) (Context, error)
}

// StepFunc is the function form of a Step.
type StepFunc func(ctx context.Context, pc Context) (Context, error)

type namedStep struct {
	name string
	fn   StepFunc
}

func (s namedStep) Name() string { return s.name }

func (s namedStep) Run(ctx context.Context, pc Context) (Context, error) {
	return s.fn(ctx, pc)
}

// Named wraps a function as a Step.
func Named(name string, fn StepFunc) Step {
	return namedStep{name: name, fn: fn}
}

// Pipeline chains Steps and runs them in order.
//
// There is no retry, skip or branching: the first failing step aborts
// the run and its error is returned, wrapped with the step name.
type Pipeline struct {
	steps []Step
}

// NewPipeline creates a new pipeline with the given steps.
// Steps are executed in the order provided.
func NewPipeline(steps ...Step) *Pipeline {
	return &Pipeline{
		steps: steps,
	}
}

// Run passes pc through every step in order.
// On failure the Context as of the failing step's input is returned.
func (p *Pipeline) Run(ctx context.Context, pc Context) (Context, error) {
	for _, step := range p.steps {
		next, err := step.Run(ctx, pc)
		if err != nil {
			return pc, fmt.Errorf("step %s: %w", step.Name(), err)
		}
		pc = next
	}
	return pc, nil
}

// Add appends a step to the pipeline.
func (p *Pipeline) Add(step Step) {
	p.steps = append(p.steps, step)
}

// Len returns the number of steps in the pipeline.
func (p *Pipeline) Len() int {
	return len(p.steps)
}

// Names returns the step names in execution order.
func (p *Pipeline) Names() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name()
	}
	return names
}
