package lower

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/spvlower/ir"
)

func memoryOpModule(extra ...ir.Instruction) *ir.Module {
	retVal := ir.ResultRef(2)
	insts := []ir.Instruction{
		{Result: 1, Kind: ir.InstLoad{Ptr: ir.GlobalRef(0)}},
	}
	insts = append(insts, extra...)
	insts = append(insts,
		ir.Instruction{Result: 2, Kind: ir.InstLoad{Ptr: ir.GlobalRef(0)}},
		ir.Instruction{Kind: ir.InstReturn{Value: &retVal}},
	)
	return &ir.Module{
		Types: []ir.Type{
			{Name: "f32", Inner: ir.ScalarType{Kind: ir.ScalarFloat, Width: 4}},
		},
		GlobalVariables: []ir.GlobalVariable{
			{Name: "g", Space: ir.SpacePrivate, Type: 0},
		},
		Functions: []ir.Function{{
			Name:   "main",
			Blocks: []ir.Block{{Label: "entry", Instructions: insts}},
		}},
		EntryPoints: []ir.EntryPoint{{Name: "main", Stage: ir.StageCompute, Function: 0}},
	}
}

func TestMemoryOpRemovesRedundantLoad(t *testing.T) {
	module := memoryOpModule()
	ctx := NewContext(module, ir.StageCompute, nil)
	require.NoError(t, NewMemoryOp().Run(ctx))

	insts := module.Functions[0].Blocks[0].Instructions
	require.Len(t, insts, 2)

	ret := insts[1].Kind.(ir.InstReturn)
	assert.Equal(t, ir.ResultRef(1), *ret.Value, "the second load reuses the first result")
}

func TestMemoryOpStoreInvalidates(t *testing.T) {
	module := memoryOpModule(ir.Instruction{
		Kind: ir.InstStore{Ptr: ir.GlobalRef(0), Object: ir.ResultRef(1)},
	})
	ctx := NewContext(module, ir.StageCompute, nil)
	require.NoError(t, NewMemoryOp().Run(ctx))

	insts := module.Functions[0].Blocks[0].Instructions
	require.Len(t, insts, 4, "a load after a store must survive")
}

func TestMemoryOpCallInvalidates(t *testing.T) {
	module := memoryOpModule(ir.Instruction{
		Kind: ir.InstCall{Callee: 0},
	})
	ctx := NewContext(module, ir.StageCompute, nil)
	require.NoError(t, NewMemoryOp().Run(ctx))

	insts := module.Functions[0].Blocks[0].Instructions
	require.Len(t, insts, 4, "a load after a call must survive")
}

func TestMemoryOpDistinctPointers(t *testing.T) {
	retVal := ir.ResultRef(2)
	module := memoryOpModule()
	module.GlobalVariables = append(module.GlobalVariables, ir.GlobalVariable{
		Name: "h", Space: ir.SpacePrivate, Type: 0,
	})
	module.Functions[0].Blocks[0].Instructions = []ir.Instruction{
		{Result: 1, Kind: ir.InstLoad{Ptr: ir.GlobalRef(0)}},
		{Result: 2, Kind: ir.InstLoad{Ptr: ir.GlobalRef(1)}},
		{Kind: ir.InstReturn{Value: &retVal}},
	}

	ctx := NewContext(module, ir.StageCompute, nil)
	require.NoError(t, NewMemoryOp().Run(ctx))
	assert.Len(t, module.Functions[0].Blocks[0].Instructions, 3, "loads of distinct pointers both stay")
}
