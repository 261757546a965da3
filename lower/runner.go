package lower

import (
	"fmt"
	"time"
)

// Timing records how long one pass took. Timings are diagnostics only and
// never affect control flow.
type Timing struct {
	Pass    string
	Elapsed time.Duration
}

// Runner executes an ordered pass list against one module and context.
//
// Passes run strictly in list order on a single goroutine; each sees the
// module exactly as the previous pass left it. The first fatal failure
// stops execution with no rollback — passes mutate the module
// destructively, so the module must not be reused after a failure.
type Runner struct {
	// Deadline, when non-zero, is checked between passes. A pass already
	// running is never interrupted; cancellation is coarse-grained, at
	// pass boundaries only.
	Deadline time.Time

	timings []Timing
}

// Run executes the passes in order and returns the compilation's resource
// usage (populated by the collector pass, empty otherwise). A pass failure
// is returned as a *PassError identifying the pass and stage; passes after
// the failing one never execute.
func (r *Runner) Run(ctx *Context, passes []Pass) (*ResourceUsage, error) {
	r.timings = r.timings[:0]
	for _, pass := range passes {
		if !r.Deadline.IsZero() && time.Now().After(r.Deadline) {
			return nil, fmt.Errorf("%w before pass %s", ErrDeadlineExceeded, pass.Name())
		}
		start := time.Now()
		err := pass.Run(ctx)
		r.timings = append(r.timings, Timing{Pass: pass.Name(), Elapsed: time.Since(start)})
		if err != nil {
			return nil, &PassError{Pass: pass.Name(), Stage: ctx.Stage(), Err: err}
		}
	}
	return ctx.Usage(), nil
}

// Timings returns the per-pass timings recorded by the last Run.
func (r *Runner) Timings() []Timing {
	timings := make([]Timing, len(r.timings))
	copy(timings, r.timings)
	return timings
}
