package lower

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/spvlower/ir"
)

func foldModule(op ir.BinaryOperator, lhs, rhs ir.ScalarValue) *ir.Module {
	retType := ir.TypeHandle(0)
	retVal := ir.ResultRef(1)
	return &ir.Module{
		Types: []ir.Type{
			{Name: "i32", Inner: ir.ScalarType{Kind: ir.ScalarSint, Width: 4}},
		},
		Constants: []ir.Constant{
			{Type: 0, Value: lhs},
			{Type: 0, Value: rhs},
		},
		Functions: []ir.Function{{
			Name:   "main",
			Result: &retType,
			Blocks: []ir.Block{{
				Label: "entry",
				Instructions: []ir.Instruction{
					{Result: 1, Type: 0, Kind: ir.InstBinary{Op: op, LHS: ir.ConstantRef(0), RHS: ir.ConstantRef(1)}},
					{Kind: ir.InstReturn{Value: &retVal}},
				},
			}},
		}},
		EntryPoints: []ir.EntryPoint{{Name: "main", Stage: ir.StageCompute, Function: 0}},
	}
}

func TestConstFoldSintAdd(t *testing.T) {
	module := foldModule(ir.BinaryAdd,
		ir.ScalarValue{Bits: 2, Kind: ir.ScalarSint},
		ir.ScalarValue{Bits: 3, Kind: ir.ScalarSint})

	ctx := NewContext(module, ir.StageCompute, nil)
	require.NoError(t, NewConstFold().Run(ctx))

	insts := module.Functions[0].Blocks[0].Instructions
	require.Len(t, insts, 1, "the folded binary is removed")

	ret := insts[0].Kind.(ir.InstReturn)
	require.NotNil(t, ret.Value)
	require.Equal(t, ir.ValueConstant, ret.Value.Kind)
	folded := module.Constants[ret.Value.ID]
	assert.Equal(t, uint64(5), folded.Value.Bits)
	assert.Equal(t, ir.ScalarSint, folded.Value.Kind)
}

func TestConstFoldNegativeSint(t *testing.T) {
	module := foldModule(ir.BinarySubtract,
		ir.ScalarValue{Bits: 2, Kind: ir.ScalarSint},
		ir.ScalarValue{Bits: 5, Kind: ir.ScalarSint})

	ctx := NewContext(module, ir.StageCompute, nil)
	require.NoError(t, NewConstFold().Run(ctx))

	ret := module.Functions[0].Blocks[0].Instructions[0].Kind.(ir.InstReturn)
	folded := module.Constants[ret.Value.ID]
	assert.Equal(t, int64(-3), int64(folded.Value.Bits))
}

func TestConstFoldFloatMultiply(t *testing.T) {
	module := foldModule(ir.BinaryMultiply,
		ir.ScalarValue{Bits: math.Float64bits(1.5), Kind: ir.ScalarFloat},
		ir.ScalarValue{Bits: math.Float64bits(4.0), Kind: ir.ScalarFloat})

	ctx := NewContext(module, ir.StageCompute, nil)
	require.NoError(t, NewConstFold().Run(ctx))

	ret := module.Functions[0].Blocks[0].Instructions[0].Kind.(ir.InstReturn)
	folded := module.Constants[ret.Value.ID]
	assert.Equal(t, 6.0, math.Float64frombits(folded.Value.Bits))
}

func TestConstFoldWrapsSignedToTypeWidth(t *testing.T) {
	module := foldModule(ir.BinaryAdd,
		ir.ScalarValue{Bits: uint64(math.MaxInt32), Kind: ir.ScalarSint},
		ir.ScalarValue{Bits: 1, Kind: ir.ScalarSint})

	ctx := NewContext(module, ir.StageCompute, nil)
	require.NoError(t, NewConstFold().Run(ctx))

	ret := module.Functions[0].Blocks[0].Instructions[0].Kind.(ir.InstReturn)
	folded := module.Constants[ret.Value.ID]
	assert.Equal(t, int64(math.MinInt32), int64(folded.Value.Bits),
		"32-bit signed overflow must wrap, not widen")
}

func TestConstFoldWrapsUnsignedToTypeWidth(t *testing.T) {
	module := foldModule(ir.BinaryAdd,
		ir.ScalarValue{Bits: math.MaxUint32, Kind: ir.ScalarUint},
		ir.ScalarValue{Bits: 1, Kind: ir.ScalarUint})
	module.Types[0] = ir.Type{Name: "u32", Inner: ir.ScalarType{Kind: ir.ScalarUint, Width: 4}}

	ctx := NewContext(module, ir.StageCompute, nil)
	require.NoError(t, NewConstFold().Run(ctx))

	ret := module.Functions[0].Blocks[0].Instructions[0].Kind.(ir.InstReturn)
	folded := module.Constants[ret.Value.ID]
	assert.Equal(t, uint64(0), folded.Value.Bits)
}

func TestConstFoldSkipsDivisionByZero(t *testing.T) {
	module := foldModule(ir.BinaryDivide,
		ir.ScalarValue{Bits: 2, Kind: ir.ScalarSint},
		ir.ScalarValue{Bits: 0, Kind: ir.ScalarSint})

	ctx := NewContext(module, ir.StageCompute, nil)
	require.NoError(t, NewConstFold().Run(ctx))

	insts := module.Functions[0].Blocks[0].Instructions
	require.Len(t, insts, 2, "division by zero must not fold")
	_, ok := insts[0].Kind.(ir.InstBinary)
	assert.True(t, ok)
}

func TestConstFoldSkipsNonConstantOperands(t *testing.T) {
	module := foldModule(ir.BinaryAdd,
		ir.ScalarValue{Bits: 2, Kind: ir.ScalarSint},
		ir.ScalarValue{Bits: 3, Kind: ir.ScalarSint})
	bin := module.Functions[0].Blocks[0].Instructions[0].Kind.(ir.InstBinary)
	bin.LHS = ir.ArgumentRef(0)
	module.Functions[0].Blocks[0].Instructions[0].Kind = bin

	ctx := NewContext(module, ir.StageCompute, nil)
	require.NoError(t, NewConstFold().Run(ctx))
	assert.Len(t, module.Functions[0].Blocks[0].Instructions, 2)
}

func TestConstFoldMixedKindsSkipped(t *testing.T) {
	module := foldModule(ir.BinaryAdd,
		ir.ScalarValue{Bits: 2, Kind: ir.ScalarSint},
		ir.ScalarValue{Bits: 3, Kind: ir.ScalarUint})

	ctx := NewContext(module, ir.StageCompute, nil)
	require.NoError(t, NewConstFold().Run(ctx))
	assert.Len(t, module.Functions[0].Blocks[0].Instructions, 2)
}
