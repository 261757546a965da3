package lower

import (
	"fmt"

	"github.com/gogpu/spvlower/ir"
)

// BuildOptions configures pipeline construction.
type BuildOptions struct {
	// CollectDetails selects the resource collector's detailed mode:
	// per-instruction access records instead of binding presence only.
	CollectDetails bool

	// RequireNonEmpty makes Build fail with ErrNoPassesForStage when the
	// resulting pipeline would be empty. An empty pipeline is not an
	// error by default.
	RequireNonEmpty bool
}

// Builder assembles ordered pass pipelines for shader stages from a
// frozen registry.
type Builder struct {
	registry *Registry
}

// NewBuilder returns a builder over the given registry.
func NewBuilder(registry *Registry) *Builder {
	return &Builder{registry: registry}
}

// Build returns the ordered pass list for the given stage. It selects the
// registered passes applicable to the stage, resolves a dependency order,
// and instantiates one fresh Pass per entry. Identical (stage, options,
// registry state) always yields an identical pipeline.
func (b *Builder) Build(stage ir.ShaderStage, opts BuildOptions) ([]Pass, error) {
	var names []string
	for _, name := range b.registry.Names() {
		info, _ := b.registry.Lookup(name)
		if appliesTo(info, stage) {
			names = append(names, name)
		}
	}

	order, err := b.registry.ResolveOrder(names)
	if err != nil {
		return nil, fmt.Errorf("building %s pipeline: %w", ir.StageName(stage), err)
	}

	passes := make([]Pass, 0, len(order))
	for _, name := range order {
		info, _ := b.registry.Lookup(name)
		passes = append(passes, info.Factory(opts))
	}
	if opts.RequireNonEmpty && len(passes) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoPassesForStage, ir.StageName(stage))
	}
	return passes, nil
}

func appliesTo(info Info, stage ir.ShaderStage) bool {
	return info.Stages == 0 || info.Stages&ir.StageToMask(stage) != 0
}
