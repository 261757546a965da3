package lower

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/spvlower/ir"
)

func TestGlobalMaterializesInitializers(t *testing.T) {
	init := ir.ConstantHandle(0)
	module := &ir.Module{
		Types: []ir.Type{
			{Name: "f32", Inner: ir.ScalarType{Kind: ir.ScalarFloat, Width: 4}},
		},
		Constants: []ir.Constant{
			{Type: 0, Value: ir.ScalarValue{Bits: 0, Kind: ir.ScalarFloat}},
		},
		GlobalVariables: []ir.GlobalVariable{
			{Name: "accum", Space: ir.SpacePrivate, Type: 0, Init: &init},
		},
		Functions: []ir.Function{{
			Name: "main",
			Blocks: []ir.Block{{
				Label: "entry",
				Instructions: []ir.Instruction{
					{Result: 1, Kind: ir.InstLoad{Ptr: ir.GlobalRef(0)}},
					{Kind: ir.InstReturn{}},
				},
			}},
		}},
		EntryPoints: []ir.EntryPoint{{Name: "main", Stage: ir.StageFragment, Function: 0}},
	}

	ctx := NewContext(module, ir.StageFragment, nil)
	require.NoError(t, NewGlobal().Run(ctx))

	assert.Nil(t, module.GlobalVariables[0].Init, "initializer moved into the entry block")

	insts := module.Functions[0].Blocks[0].Instructions
	require.Len(t, insts, 3)
	store, ok := insts[0].Kind.(ir.InstStore)
	require.True(t, ok, "entry block must start with the materialized store")
	assert.Equal(t, ir.GlobalRef(0), store.Ptr)
	assert.Equal(t, ir.ConstantRef(0), store.Object)
}

func TestGlobalRemovesUnreferencedPrivates(t *testing.T) {
	module := &ir.Module{
		Types: []ir.Type{
			{Name: "f32", Inner: ir.ScalarType{Kind: ir.ScalarFloat, Width: 4}},
		},
		GlobalVariables: []ir.GlobalVariable{
			{Name: "dead", Space: ir.SpacePrivate, Type: 0},
			{Name: "ubo", Space: ir.SpaceUniform, Binding: &ir.ResourceBinding{Set: 0, Binding: 0}, Type: 0},
			{Name: "live", Space: ir.SpacePrivate, Type: 0},
		},
		Functions: []ir.Function{{
			Name: "main",
			Blocks: []ir.Block{{
				Instructions: []ir.Instruction{
					{Result: 1, Kind: ir.InstLoad{Ptr: ir.GlobalRef(1)}},
					{Result: 2, Kind: ir.InstLoad{Ptr: ir.GlobalRef(2)}},
					{Kind: ir.InstReturn{}},
				},
			}},
		}},
		EntryPoints: []ir.EntryPoint{{Name: "main", Stage: ir.StageFragment, Function: 0}},
	}

	ctx := NewContext(module, ir.StageFragment, nil)
	require.NoError(t, NewGlobal().Run(ctx))

	require.Len(t, module.GlobalVariables, 2)
	assert.Equal(t, "ubo", module.GlobalVariables[0].Name)
	assert.Equal(t, "live", module.GlobalVariables[1].Name)

	// References follow the compacted handles.
	insts := module.Functions[0].Blocks[0].Instructions
	assert.Equal(t, ir.GlobalRef(0), insts[0].Kind.(ir.InstLoad).Ptr)
	assert.Equal(t, ir.GlobalRef(1), insts[1].Kind.(ir.InstLoad).Ptr)

	diags := ctx.Diagnostics()
	require.Len(t, diags, 1)
	assert.Contains(t, diags[0].Message, "removed 1")
}

func TestGlobalKeepsUnboundResources(t *testing.T) {
	// Resource-space globals stay even when unreferenced; the pipeline
	// layout may still expose them.
	module := &ir.Module{
		GlobalVariables: []ir.GlobalVariable{
			{Name: "ubo", Space: ir.SpaceUniform, Binding: &ir.ResourceBinding{Set: 0, Binding: 0}, Type: 0},
		},
		Functions: []ir.Function{{
			Name: "main",
			Blocks: []ir.Block{{
				Instructions: []ir.Instruction{{Kind: ir.InstReturn{}}},
			}},
		}},
		EntryPoints: []ir.EntryPoint{{Name: "main", Stage: ir.StageVertex, Function: 0}},
	}

	ctx := NewContext(module, ir.StageVertex, nil)
	require.NoError(t, NewGlobal().Run(ctx))
	assert.Len(t, module.GlobalVariables, 1)
}

func TestGlobalRunsWithoutEntryPoint(t *testing.T) {
	// The pass must not fail merely because the module has no entry
	// point for this stage; the dead private global still goes away.
	init := ir.ConstantHandle(0)
	module := &ir.Module{
		Constants: []ir.Constant{
			{Value: ir.ScalarValue{Bits: 0, Kind: ir.ScalarFloat}},
		},
		GlobalVariables: []ir.GlobalVariable{
			{Name: "accum", Space: ir.SpacePrivate, Type: 0, Init: &init},
		},
	}

	ctx := NewContext(module, ir.StageGeometry, nil)
	require.NoError(t, NewGlobal().Run(ctx))
	assert.Empty(t, module.GlobalVariables)
}
