// internal/pipeline/pipeline.go
//
// Ordered, composable chain of request transformers.
//
// Context
// -------
// A Pipeline is built once, at controller-registration time, through a
// Builder, and is thereafter immutable shared state read by every request
// routed to that controller.  Run threads one *core.Context through the
// stages in registration order:
//
//   - A stage whose predicate rejects the current action is skipped
//     entirely — it never sees the Context, so it cannot leave side
//     effects behind.
//   - Execution stops as soon as a stage halts the Context, commits a
//     response, or returns an error.
//   - Transport cancellation is observed at each stage boundary; a
//     cancelled request aborts without committing.
//
// Action dispatch and auto-render are ordinary stages registered like any
// other, so their position in the chain is explicit rather than implied.
//
// Notes
// -----
// • Oxford commas, two spaces after periods.
package pipeline

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/yanizio/conduct/internal/core"
)

// Func transforms the Context.  Returning an error aborts the remaining
// stages for this request.
type Func func(*core.Context) error

// Predicate decides whether a stage runs for the named action.
type Predicate func(action string) bool

// Only builds a predicate accepting exactly the listed actions.
func Only(actions ...string) Predicate {
	set := make(map[string]struct{}, len(actions))
	for _, a := range actions {
		set[a] = struct{}{}
	}
	return func(action string) bool {
		_, ok := set[action]
		return ok
	}
}

// Except builds a predicate rejecting exactly the listed actions.
func Except(actions ...string) Predicate {
	only := Only(actions...)
	return func(action string) bool { return !only(action) }
}

// stage pairs a Func with its identity and guard.
type stage struct {
	name string
	fn   Func
	pred Predicate // nil = always run
}

// Builder accumulates stages.  Not safe for concurrent use; build the
// pipeline during controller initialization, before serving.
type Builder struct {
	stages []stage
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder { return &Builder{} }

// Register appends a stage that runs for every action.
func (b *Builder) Register(name string, fn Func) *Builder {
	return b.RegisterIf(name, fn, nil)
}

// RegisterIf appends a stage guarded by pred.  A nil pred always runs.
func (b *Builder) RegisterIf(name string, fn Func, pred Predicate) *Builder {
	if name == "" {
		panic("pipeline: stage name must be non-empty")
	}
	if fn == nil {
		panic(fmt.Sprintf("pipeline: stage %q has a nil func", name))
	}
	b.stages = append(b.stages, stage{name: name, fn: fn, pred: pred})
	return b
}

// Build freezes the registered stages into an immutable Pipeline.  The
// Builder may keep accumulating for further Build calls; the returned
// Pipeline never changes.
func (b *Builder) Build() *Pipeline {
	return &Pipeline{stages: append([]stage(nil), b.stages...)}
}

// Pipeline is an immutable stage chain, safe for concurrent Run calls on
// distinct Contexts.
type Pipeline struct {
	stages []stage
}

// Len reports the number of registered stages.
func (p *Pipeline) Len() int { return len(p.stages) }

// StageError wraps a failure with the stage that produced it.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("pipeline: stage %q: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// Run executes the chain for one request.  An empty pipeline returns the
// Context untouched.
func (p *Pipeline) Run(c *core.Context, action string) error {
	for _, st := range p.stages {
		// Cancellation is checked at the boundary, never mid-stage.
		if err := c.Ctx().Err(); err != nil {
			zap.S().Debugw("pipeline aborted by transport",
				"stage", st.name, "action", action, "err", err)
			return err
		}

		if st.pred != nil && !st.pred(action) {
			continue
		}

		if err := st.fn(c); err != nil {
			return &StageError{Stage: st.name, Err: err}
		}

		if c.Halted() || c.Committed() {
			return nil
		}
	}
	return nil
}
