// Package spvlower is the front-end lowering stage of a GPU shader
// compiler. It takes the parsed IR of one shader stage and rewrites it in
// place into a simplified, target-ready form, then reports the resource
// bindings the lowered code uses.
//
// The package ties together the pieces under lower/: a pass registry, a
// per-stage pipeline builder, and a sequential runner. The one-call form:
//
//	usage, err := spvlower.Lower(module, ir.StageFragment, spvlower.DefaultOptions())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// For more control build the pieces directly:
//
//	registry := lower.NewRegistry()
//	lower.RegisterLowerPasses(registry)
//	registry.Freeze()
//	passes, err := lower.NewBuilder(registry).Build(stage, lower.BuildOptions{})
//	usage, err := (&lower.Runner{}).Run(lower.NewContext(module, stage, cfg), passes)
//
// Several stages of one pipeline may be lowered concurrently as long as
// each goroutine has its own module and context; a frozen registry is
// safe to share.
package spvlower

import (
	"fmt"
	"time"

	"github.com/gogpu/spvlower/ir"
	"github.com/gogpu/spvlower/lower"
	"github.com/gogpu/spvlower/target"
)

// Options configures one lowering compilation.
type Options struct {
	// Config is the target configuration (nil selects target.Default()).
	Config *target.Config

	// CollectDetails selects per-instruction resource usage records.
	CollectDetails bool

	// Deadline, when non-zero, aborts between passes once exceeded.
	Deadline time.Time
}

// DefaultOptions returns sensible default options.
func DefaultOptions() Options {
	return Options{}
}

// NewRegistry returns a frozen registry holding the standard lowering
// pass roster.
func NewRegistry() (*lower.Registry, error) {
	registry := lower.NewRegistry()
	if err := lower.RegisterLowerPasses(registry); err != nil {
		return nil, fmt.Errorf("registering lower passes: %w", err)
	}
	registry.Freeze()
	return registry, nil
}

// Lower runs the standard lowering pipeline over module for the given
// stage. The module is rewritten in place; the returned usage describes
// the resource bindings the lowered code accesses. On error the module is
// in an unspecified partially-lowered state and must not be reused.
func Lower(module *ir.Module, stage ir.ShaderStage, opts Options) (*lower.ResourceUsage, error) {
	registry, err := NewRegistry()
	if err != nil {
		return nil, err
	}
	passes, err := lower.NewBuilder(registry).Build(stage, lower.BuildOptions{
		CollectDetails: opts.CollectDetails,
	})
	if err != nil {
		return nil, err
	}
	runner := &lower.Runner{Deadline: opts.Deadline}
	return runner.Run(lower.NewContext(module, stage, opts.Config), passes)
}
