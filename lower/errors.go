package lower

import (
	"errors"
	"fmt"

	"github.com/gogpu/spvlower/ir"
)

// Sentinel errors for registry construction and pipeline execution.
// Build-time errors (registration, ordering) are detected before any
// module is touched; run-time errors abandon the current compilation.
var (
	// ErrDuplicateRegistration reports a pass name registered twice.
	ErrDuplicateRegistration = errors.New("pass already registered")

	// ErrRegistryFrozen reports registration after the registry has been
	// used to resolve an order.
	ErrRegistryFrozen = errors.New("registry is frozen")

	// ErrUnknownPass reports a requested or dependency pass name that was
	// never registered.
	ErrUnknownPass = errors.New("unknown pass")

	// ErrCyclicDependency reports a dependency graph with no valid order.
	ErrCyclicDependency = errors.New("cyclic pass dependency")

	// ErrNoPassesForStage reports an empty pipeline when the caller
	// required a non-trivial one.
	ErrNoPassesForStage = errors.New("no passes registered for stage")

	// ErrEntryPointMissing reports a module with no entry point for the
	// compiled stage.
	ErrEntryPointMissing = errors.New("entry point missing")

	// ErrDeadlineExceeded reports a deadline observed between passes.
	ErrDeadlineExceeded = errors.New("lowering deadline exceeded")
)

// PassError wraps a fatal pass failure with the identity needed for a
// precise diagnostic: which pass, on which stage. The module is left in a
// partially-lowered, unspecified state and must not be reused.
type PassError struct {
	Pass  string
	Stage ir.ShaderStage
	Err   error
}

// Error implements the error interface.
func (e *PassError) Error() string {
	return fmt.Sprintf("pass %s failed on %s shader: %v", e.Pass, ir.StageName(e.Stage), e.Err)
}

// Unwrap returns the underlying cause.
func (e *PassError) Unwrap() error { return e.Err }
