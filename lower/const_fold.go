package lower

import (
	"math"

	"github.com/gogpu/spvlower/ir"
)

// PassMathConstFolding is the constant-folding pass's identity.
const PassMathConstFolding = "lower-math-const-folding"

// constFold replaces binary arithmetic whose operands are both constants
// with a module constant and rewrites all uses. Operations whose result
// is not defined at compile time (division by zero, unsupported operand
// kinds) are left alone.
type constFold struct{}

// NewConstFold returns the constant-folding pass.
func NewConstFold() Pass { return &constFold{} }

func (p *constFold) Name() string { return PassMathConstFolding }

func (p *constFold) Run(ctx *Context) error {
	module := ctx.Module()
	for f := range module.Functions {
		p.runFunction(module, &module.Functions[f])
	}
	return nil
}

func (p *constFold) runFunction(module *ir.Module, fn *ir.Function) {
	for b := range fn.Blocks {
		for i := len(fn.Blocks[b].Instructions) - 1; i >= 0; i-- {
			inst := fn.Blocks[b].Instructions[i]
			bin, ok := inst.Kind.(ir.InstBinary)
			if !ok || bin.LHS.Kind != ir.ValueConstant || bin.RHS.Kind != ir.ValueConstant {
				continue
			}
			lhs := module.Constants[bin.LHS.ID]
			rhs := module.Constants[bin.RHS.ID]
			folded, ok := foldBinary(bin.Op, lhs.Value, rhs.Value)
			if !ok {
				continue
			}
			folded = truncate(folded, module.TypeSize(inst.Type))
			handle := module.AddConstant(ir.Constant{Type: inst.Type, Value: folded})
			fn.ReplaceUses(ir.ResultRef(inst.Result), ir.ConstantRef(handle))
			fn.RemoveInstruction(b, i)
		}
	}
}

// truncate narrows a folded integer to the declared type width so the
// result matches what hardware arithmetic at that width would produce
// (INT32_MAX + 1 wraps, it does not widen). Signed values are
// re-sign-extended into the 64-bit carrier; floats and unknown widths
// pass through.
func truncate(value ir.ScalarValue, size uint32) ir.ScalarValue {
	bits := size * 8
	if bits == 0 || bits >= 64 {
		return value
	}
	switch value.Kind {
	case ir.ScalarSint:
		shift := 64 - bits
		value.Bits = uint64(int64(value.Bits) << shift >> shift)
	case ir.ScalarUint:
		value.Bits &= 1<<bits - 1
	}
	return value
}

// foldBinary evaluates op over two scalar constants of the same kind.
func foldBinary(op ir.BinaryOperator, lhs, rhs ir.ScalarValue) (ir.ScalarValue, bool) {
	if lhs.Kind != rhs.Kind {
		return ir.ScalarValue{}, false
	}
	switch lhs.Kind {
	case ir.ScalarSint:
		return foldSint(op, int64(lhs.Bits), int64(rhs.Bits))
	case ir.ScalarUint:
		return foldUint(op, lhs.Bits, rhs.Bits)
	case ir.ScalarFloat:
		return foldFloat(op, math.Float64frombits(lhs.Bits), math.Float64frombits(rhs.Bits))
	default:
		return ir.ScalarValue{}, false
	}
}

func foldSint(op ir.BinaryOperator, lhs, rhs int64) (ir.ScalarValue, bool) {
	var result int64
	switch op {
	case ir.BinaryAdd:
		result = lhs + rhs
	case ir.BinarySubtract:
		result = lhs - rhs
	case ir.BinaryMultiply:
		result = lhs * rhs
	case ir.BinaryDivide:
		if rhs == 0 {
			return ir.ScalarValue{}, false
		}
		result = lhs / rhs
	case ir.BinaryModulo:
		if rhs == 0 {
			return ir.ScalarValue{}, false
		}
		result = lhs % rhs
	case ir.BinaryAnd:
		result = lhs & rhs
	case ir.BinaryExclusiveOr:
		result = lhs ^ rhs
	case ir.BinaryInclusiveOr:
		result = lhs | rhs
	case ir.BinaryShiftLeft:
		result = lhs << uint64(rhs)
	case ir.BinaryShiftRight:
		result = lhs >> uint64(rhs)
	default:
		return ir.ScalarValue{}, false
	}
	return ir.ScalarValue{Bits: uint64(result), Kind: ir.ScalarSint}, true
}

func foldUint(op ir.BinaryOperator, lhs, rhs uint64) (ir.ScalarValue, bool) {
	var result uint64
	switch op {
	case ir.BinaryAdd:
		result = lhs + rhs
	case ir.BinarySubtract:
		result = lhs - rhs
	case ir.BinaryMultiply:
		result = lhs * rhs
	case ir.BinaryDivide:
		if rhs == 0 {
			return ir.ScalarValue{}, false
		}
		result = lhs / rhs
	case ir.BinaryModulo:
		if rhs == 0 {
			return ir.ScalarValue{}, false
		}
		result = lhs % rhs
	case ir.BinaryAnd:
		result = lhs & rhs
	case ir.BinaryExclusiveOr:
		result = lhs ^ rhs
	case ir.BinaryInclusiveOr:
		result = lhs | rhs
	case ir.BinaryShiftLeft:
		result = lhs << rhs
	case ir.BinaryShiftRight:
		result = lhs >> rhs
	default:
		return ir.ScalarValue{}, false
	}
	return ir.ScalarValue{Bits: result, Kind: ir.ScalarUint}, true
}

func foldFloat(op ir.BinaryOperator, lhs, rhs float64) (ir.ScalarValue, bool) {
	var result float64
	switch op {
	case ir.BinaryAdd:
		result = lhs + rhs
	case ir.BinarySubtract:
		result = lhs - rhs
	case ir.BinaryMultiply:
		result = lhs * rhs
	case ir.BinaryDivide:
		if rhs == 0 {
			return ir.ScalarValue{}, false
		}
		result = lhs / rhs
	default:
		return ir.ScalarValue{}, false
	}
	return ir.ScalarValue{Bits: math.Float64bits(result), Kind: ir.ScalarFloat}, true
}
