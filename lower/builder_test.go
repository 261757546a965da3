package lower

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/spvlower/ir"
)

type namedPass struct {
	name string
}

func (p namedPass) Name() string           { return p.name }
func (p namedPass) Run(ctx *Context) error { return nil }

func namedFactory(name string) func(BuildOptions) Pass {
	return func(BuildOptions) Pass { return namedPass{name: name} }
}

func TestBuildFiltersByStage(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(Info{
		Name:    "vertex-only",
		Stages:  ir.StageToMask(ir.StageVertex),
		Factory: namedFactory("vertex-only"),
	}))
	require.NoError(t, r.Register(Info{
		Name:    "everywhere",
		Factory: namedFactory("everywhere"),
	}))

	passes, err := NewBuilder(r).Build(ir.StageFragment, BuildOptions{})
	require.NoError(t, err)
	require.Len(t, passes, 1)
	assert.Equal(t, "everywhere", passes[0].Name())

	// The stage-restricted pass joins its own stage's pipeline.
	r2 := NewRegistry()
	require.NoError(t, r2.Register(Info{
		Name:    "vertex-only",
		Stages:  ir.StageToMask(ir.StageVertex),
		Factory: namedFactory("vertex-only"),
	}))
	passes, err = NewBuilder(r2).Build(ir.StageVertex, BuildOptions{})
	require.NoError(t, err)
	require.Len(t, passes, 1)
}

func TestBuildEmptyPipelinePolicy(t *testing.T) {
	r := NewRegistry()
	builder := NewBuilder(r)

	passes, err := builder.Build(ir.StageCompute, BuildOptions{})
	require.NoError(t, err)
	assert.Empty(t, passes)

	_, err = builder.Build(ir.StageCompute, BuildOptions{RequireNonEmpty: true})
	require.ErrorIs(t, err, ErrNoPassesForStage)
}

func TestBuildDeterministic(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, RegisterLowerPasses(r))
	builder := NewBuilder(r)

	names := func(passes []Pass) []string {
		out := make([]string, len(passes))
		for i, p := range passes {
			out[i] = p.Name()
		}
		return out
	}

	first, err := builder.Build(ir.StageFragment, BuildOptions{})
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := builder.Build(ir.StageFragment, BuildOptions{})
		require.NoError(t, err)
		assert.Equal(t, names(first), names(again))
	}
}

func TestDefaultRosterOrdering(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, RegisterLowerPasses(r))

	passes, err := NewBuilder(r).Build(ir.StageFragment, BuildOptions{})
	require.NoError(t, err)

	index := make(map[string]int, len(passes))
	for i, p := range passes {
		index[p.Name()] = i
	}

	// The collector runs after every pass that can change resource
	// accesses, and terminator normalization runs last.
	for _, producer := range []string{PassAccessChain, PassConstImmediateStore, PassMemoryOp, PassGlobal} {
		assert.Less(t, index[producer], index[PassCollectResources],
			"%s must run before the collector", producer)
	}
	assert.Equal(t, len(passes)-1, index[PassTerminator])
}

func TestBuildConcurrentFromFrozenRegistry(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, RegisterLowerPasses(r))
	r.Freeze()

	// Several stages of one pipeline build from the shared frozen
	// registry at once; the race detector must stay quiet.
	stages := []ir.ShaderStage{
		ir.StageVertex, ir.StageFragment, ir.StageCompute, ir.StageGeometry,
	}
	results := make([][]Pass, 4*len(stages))
	errs := make([]error, len(results))

	var wg sync.WaitGroup
	for i := range results {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], errs[i] = NewBuilder(r).Build(stages[i%len(stages)], BuildOptions{})
		}()
	}
	wg.Wait()

	for i := range results {
		require.NoError(t, errs[i])
		assert.NotEmpty(t, results[i])
	}
}

func TestBuildPropagatesCollectDetails(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, RegisterLowerPasses(r))

	passes, err := NewBuilder(r).Build(ir.StageFragment, BuildOptions{CollectDetails: true})
	require.NoError(t, err)

	var collector *resourceCollect
	for _, p := range passes {
		if c, ok := p.(*resourceCollect); ok {
			collector = c
		}
	}
	require.NotNil(t, collector)
	assert.True(t, collector.details)
}
