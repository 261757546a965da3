// Package lower implements the shader lowering pipeline: the pass
// registry, the per-stage pipeline builder, the sequential runner, the
// per-compilation context shared by all passes, and the lowering passes
// themselves.
//
// A compilation lowers one ir.Module for one shader stage. Passes run
// strictly in the order the builder produced; each mutates the module in
// place and either transforms it or succeeds doing nothing. The registry
// is safe for concurrent use once frozen, so multiple stages of the same
// pipeline may be lowered on separate goroutines as long as each has its
// own module and context.
package lower

// Pass is a single named lowering transformation over a module.
//
// A pass must either transform the module or return nil having done
// nothing; it must never fail merely because it had nothing to do (a pass
// irrelevant to the compiled stage still gets invoked). A non-nil error is
// fatal for the compilation.
type Pass interface {
	// Name returns the pass's registered identity.
	Name() string

	// Run applies the transformation to ctx.Module().
	Run(ctx *Context) error
}

// Info describes a registered pass: its identity, prerequisites, the
// stages it applies to, and the factory producing fresh instances.
// Registry entries are immutable after registration.
type Info struct {
	// Name is the pass's unique identity.
	Name string

	// Deps lists pass names that must run before this pass.
	Deps []string

	// Stages is the mask of stages the pass applies to; zero means all.
	Stages uint32

	// Factory produces a fresh Pass instance for one pipeline.
	Factory func(opts BuildOptions) Pass
}
