package lower

import (
	"math"

	"github.com/gogpu/spvlower/ir"
)

// PassMathFloatOp is the float-op simplification pass's identity.
const PassMathFloatOp = "lower-math-float-op"

// floatOp strength-reduces float arithmetic identities. x-0 and x*1 are
// exact and always applied. x+0 and x*0 are applied only when the target
// permits unsafe FP math: x+0 flips the sign of a -0 input, and x*0 is
// wrong for NaN and infinite inputs.
type floatOp struct{}

// NewFloatOp returns the float-op simplification pass.
func NewFloatOp() Pass { return &floatOp{} }

func (p *floatOp) Name() string { return PassMathFloatOp }

func (p *floatOp) Run(ctx *Context) error {
	module := ctx.Module()
	unsafe := ctx.Config().UnsafeFPMath
	for f := range module.Functions {
		p.runFunction(module, &module.Functions[f], unsafe)
	}
	return nil
}

func (p *floatOp) runFunction(module *ir.Module, fn *ir.Function, unsafe bool) {
	for b := range fn.Blocks {
		for i := len(fn.Blocks[b].Instructions) - 1; i >= 0; i-- {
			inst := fn.Blocks[b].Instructions[i]
			bin, ok := inst.Kind.(ir.InstBinary)
			if !ok {
				continue
			}
			replacement, ok := simplifyFloat(module, bin, unsafe)
			if !ok {
				continue
			}
			fn.ReplaceUses(ir.ResultRef(inst.Result), replacement)
			fn.RemoveInstruction(b, i)
		}
	}
}

func simplifyFloat(module *ir.Module, bin ir.InstBinary, unsafe bool) (ir.Value, bool) {
	switch bin.Op {
	case ir.BinaryAdd:
		if unsafe {
			if isFloatConst(module, bin.RHS, 0) {
				return bin.LHS, true
			}
			if isFloatConst(module, bin.LHS, 0) {
				return bin.RHS, true
			}
		}
	case ir.BinarySubtract:
		if isFloatConst(module, bin.RHS, 0) {
			return bin.LHS, true
		}
	case ir.BinaryMultiply:
		if isFloatConst(module, bin.RHS, 1) {
			return bin.LHS, true
		}
		if isFloatConst(module, bin.LHS, 1) {
			return bin.RHS, true
		}
		if unsafe {
			if isFloatConst(module, bin.RHS, 0) {
				return bin.RHS, true
			}
			if isFloatConst(module, bin.LHS, 0) {
				return bin.LHS, true
			}
		}
	}
	return ir.Value{}, false
}

// isFloatConst reports whether v is a float scalar constant equal to want.
// A negative-zero constant never matches zero; dropping it would change
// the sign of downstream results.
func isFloatConst(module *ir.Module, v ir.Value, want float64) bool {
	if v.Kind != ir.ValueConstant || int(v.ID) >= len(module.Constants) {
		return false
	}
	value := module.Constants[v.ID].Value
	if value.Kind != ir.ScalarFloat {
		return false
	}
	return value.Bits == math.Float64bits(want)
}
