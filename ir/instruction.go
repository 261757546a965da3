package ir

// Instruction represents a single instruction inside a basic block.
//
// Result is the instruction's SSA-style result identifier, unique within
// its function; it is zero for instructions that produce no value.
// Type is the result type, when a result exists.
type Instruction struct {
	Result uint32
	Type   TypeHandle
	Kind   InstKind
	Meta   []MetaTag
}

// MetaTag is a non-semantic annotation attached to an instruction by the
// front end (debug names, source locations). Lowering strips these before
// code generation.
type MetaTag struct {
	Name  string
	Value string
}

// InstKind represents the different kinds of instructions.
type InstKind interface {
	instKind()
}

// Value references an operand: a constant, a global or local variable
// address, a function argument, or the result of another instruction.
type Value struct {
	Kind ValueKind
	ID   uint32
}

// ValueKind discriminates Value references.
type ValueKind uint8

const (
	ValueConstant ValueKind = iota // ID is a ConstantHandle
	ValueGlobal                    // ID is a GlobalVariableHandle
	ValueLocal                     // ID indexes Function.LocalVars
	ValueArgument                  // ID indexes Function.Arguments
	ValueResult                    // ID is an Instruction.Result
)

// ConstantRef returns a Value referencing a module constant.
func ConstantRef(h ConstantHandle) Value { return Value{Kind: ValueConstant, ID: uint32(h)} }

// GlobalRef returns a Value referencing a global variable's address.
func GlobalRef(h GlobalVariableHandle) Value { return Value{Kind: ValueGlobal, ID: uint32(h)} }

// LocalRef returns a Value referencing a local variable's address.
func LocalRef(index uint32) Value { return Value{Kind: ValueLocal, ID: index} }

// ArgumentRef returns a Value referencing a function argument.
func ArgumentRef(index uint32) Value { return Value{Kind: ValueArgument, ID: index} }

// ResultRef returns a Value referencing another instruction's result.
func ResultRef(result uint32) Value { return Value{Kind: ValueResult, ID: result} }

// InstLoad loads the value a pointer refers to.
type InstLoad struct {
	Ptr Value
}

func (InstLoad) instKind() {}

// InstStore stores Object through Ptr. Produces no result.
type InstStore struct {
	Ptr    Value
	Object Value
}

func (InstStore) instKind() {}

// InstAccessChain computes the address of a sub-element of Base.
// Base must be an address (global, local, or another access chain result).
type InstAccessChain struct {
	Base    Value
	Indices []Value
}

func (InstAccessChain) instKind() {}

// InstBinary applies a binary operator to two operands.
type InstBinary struct {
	Op  BinaryOperator
	LHS Value
	RHS Value
}

func (InstBinary) instKind() {}

// BinaryOperator represents binary operations.
type BinaryOperator uint8

const (
	BinaryAdd      BinaryOperator = iota // Addition
	BinarySubtract                       // Subtraction
	BinaryMultiply                       // Multiplication
	BinaryDivide                         // Division
	BinaryModulo                         // Modulo (remainder)

	BinaryAnd         // Bitwise AND
	BinaryExclusiveOr // Bitwise XOR
	BinaryInclusiveOr // Bitwise OR

	BinaryShiftLeft  // Left shift (<<)
	BinaryShiftRight // Right shift (>>) - arithmetic for signed, logical for unsigned
)

// InstCall calls another function in the module.
type InstCall struct {
	Callee FunctionHandle
	Args   []Value
}

func (InstCall) instKind() {}

// InstReturn returns from the function. Value is nil for void returns.
// Terminator.
type InstReturn struct {
	Value *Value
}

func (InstReturn) instKind() {}

// InstBranch jumps unconditionally to Target. Terminator.
type InstBranch struct {
	Target BlockHandle
}

func (InstBranch) instKind() {}

// InstCondBranch jumps to Accept when Cond is true, else Reject. Terminator.
type InstCondBranch struct {
	Cond   Value
	Accept BlockHandle
	Reject BlockHandle
}

func (InstCondBranch) instKind() {}

// InstKill terminates the fragment invocation (discard). Terminator.
type InstKill struct{}

func (InstKill) instKind() {}

// InstUnreachable marks a point control flow can never reach. Terminator.
type InstUnreachable struct{}

func (InstUnreachable) instKind() {}

// IsTerminator reports whether the instruction kind ends a basic block.
func IsTerminator(kind InstKind) bool {
	switch kind.(type) {
	case InstReturn, InstBranch, InstCondBranch, InstKill, InstUnreachable:
		return true
	default:
		return false
	}
}

// Operands returns the values the instruction kind reads. The returned
// slice aliases nothing inside the instruction; mutating it has no effect.
func Operands(kind InstKind) []Value {
	switch k := kind.(type) {
	case InstLoad:
		return []Value{k.Ptr}
	case InstStore:
		return []Value{k.Ptr, k.Object}
	case InstAccessChain:
		ops := make([]Value, 0, len(k.Indices)+1)
		ops = append(ops, k.Base)
		ops = append(ops, k.Indices...)
		return ops
	case InstBinary:
		return []Value{k.LHS, k.RHS}
	case InstCall:
		ops := make([]Value, len(k.Args))
		copy(ops, k.Args)
		return ops
	case InstCondBranch:
		return []Value{k.Cond}
	case InstReturn:
		if k.Value != nil {
			return []Value{*k.Value}
		}
	}
	return nil
}

// replaceIn returns kind with every operand equal to old rewritten to new.
func replaceIn(kind InstKind, old, new Value) InstKind {
	sub := func(v Value) Value {
		if v == old {
			return new
		}
		return v
	}
	switch k := kind.(type) {
	case InstLoad:
		k.Ptr = sub(k.Ptr)
		return k
	case InstStore:
		k.Ptr = sub(k.Ptr)
		k.Object = sub(k.Object)
		return k
	case InstAccessChain:
		k.Base = sub(k.Base)
		indices := make([]Value, len(k.Indices))
		for i, v := range k.Indices {
			indices[i] = sub(v)
		}
		k.Indices = indices
		return k
	case InstBinary:
		k.LHS = sub(k.LHS)
		k.RHS = sub(k.RHS)
		return k
	case InstCall:
		args := make([]Value, len(k.Args))
		for i, v := range k.Args {
			args[i] = sub(v)
		}
		k.Args = args
		return k
	case InstCondBranch:
		k.Cond = sub(k.Cond)
		return k
	case InstReturn:
		if k.Value != nil {
			v := sub(*k.Value)
			k.Value = &v
		}
		return k
	default:
		return kind
	}
}

// ReplaceUses rewrites every operand equal to old with new across the
// whole function body.
func (f *Function) ReplaceUses(old, new Value) {
	for b := range f.Blocks {
		insts := f.Blocks[b].Instructions
		for i := range insts {
			insts[i].Kind = replaceIn(insts[i].Kind, old, new)
		}
	}
}

// Uses counts operands across the function body that reference v.
func (f *Function) Uses(v Value) int {
	count := 0
	for b := range f.Blocks {
		for i := range f.Blocks[b].Instructions {
			for _, op := range Operands(f.Blocks[b].Instructions[i].Kind) {
				if op == v {
					count++
				}
			}
		}
	}
	return count
}

// RemoveInstruction deletes the instruction at index idx from block b.
func (f *Function) RemoveInstruction(b int, idx int) {
	insts := f.Blocks[b].Instructions
	f.Blocks[b].Instructions = append(insts[:idx], insts[idx+1:]...)
}
