package lower

import (
	"fmt"

	"github.com/gogpu/spvlower/ir"
	"github.com/gogpu/spvlower/target"
)

// Diagnostic is a non-fatal finding a pass reported while lowering.
type Diagnostic struct {
	Pass    string
	Message string
}

// Context is the per-compilation state shared by every pass: the module
// being lowered, the stage, the immutable target configuration, and the
// diagnostic sink. One Context governs exactly one module for one stage
// and does not outlive the compilation.
//
// Passes read the context; they mutate it only through Diagnose and the
// resource-usage sink.
type Context struct {
	module *ir.Module
	stage  ir.ShaderStage
	config *target.Config

	entry       *ir.EntryPoint
	entryLooked bool

	diags []Diagnostic
	usage *ResourceUsage
}

// NewContext creates the context for lowering module as the given stage.
// A nil config selects target.Default().
func NewContext(module *ir.Module, stage ir.ShaderStage, config *target.Config) *Context {
	if config == nil {
		config = target.Default()
	}
	return &Context{module: module, stage: stage, config: config}
}

// Module returns the module being lowered.
func (c *Context) Module() *ir.Module { return c.module }

// Stage returns the shader stage being compiled.
func (c *Context) Stage() ir.ShaderStage { return c.stage }

// Config returns the target configuration. It is immutable for the
// duration of the pipeline.
func (c *Context) Config() *target.Config { return c.config }

// EntryPoint returns the module's entry point for the compiled stage.
// The lookup result is cached after the first call.
func (c *Context) EntryPoint() (*ir.EntryPoint, bool) {
	if !c.entryLooked {
		c.entry, _ = c.module.EntryPointForStage(c.stage)
		c.entryLooked = true
	}
	return c.entry, c.entry != nil
}

// Diagnose records a non-fatal diagnostic attributed to pass.
func (c *Context) Diagnose(pass, format string, args ...any) {
	c.diags = append(c.diags, Diagnostic{Pass: pass, Message: fmt.Sprintf(format, args...)})
}

// Diagnostics returns all diagnostics accumulated so far.
func (c *Context) Diagnostics() []Diagnostic {
	diags := make([]Diagnostic, len(c.diags))
	copy(diags, c.diags)
	return diags
}

// Usage returns the compilation's resource usage, creating it empty on
// first access. The collector pass populates it; the runner hands it to
// the code-generation collaborator at pipeline completion.
func (c *Context) Usage() *ResourceUsage {
	if c.usage == nil {
		c.usage = NewResourceUsage()
	}
	return c.usage
}
