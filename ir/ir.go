package ir

import "github.com/gogpu/spvlower/spirv"

// Module represents a shader module in IR form.
//
// A Module is mutated in place by lowering passes. There is exactly one
// designated entry point per shader stage per compilation.
type Module struct {
	// Types holds all type definitions
	Types []Type

	// Constants holds module-scope constants
	Constants []Constant

	// GlobalVariables holds module-scope variables
	GlobalVariables []GlobalVariable

	// Functions holds all function definitions
	Functions []Function

	// EntryPoints holds shader entry points
	EntryPoints []EntryPoint
}

// EntryPoint represents a shader entry point.
type EntryPoint struct {
	Name      string
	Stage     ShaderStage
	Function  FunctionHandle
	Workgroup [3]uint32 // For compute shaders
}

// Handle types for referencing IR objects
type (
	TypeHandle           uint32
	FunctionHandle       uint32
	GlobalVariableHandle uint32
	ConstantHandle       uint32
	BlockHandle          uint32
)

// EntryPointForStage returns the entry point designated for the given stage.
func (m *Module) EntryPointForStage(stage ShaderStage) (*EntryPoint, bool) {
	for i := range m.EntryPoints {
		if m.EntryPoints[i].Stage == stage {
			return &m.EntryPoints[i], true
		}
	}
	return nil, false
}

// AddConstant appends a constant to the module and returns its handle.
// An existing constant with identical type and value is reused.
func (m *Module) AddConstant(c Constant) ConstantHandle {
	for i := range m.Constants {
		if m.Constants[i].Type == c.Type && m.Constants[i].Value == c.Value {
			return ConstantHandle(i)
		}
	}
	m.Constants = append(m.Constants, c)
	return ConstantHandle(len(m.Constants) - 1)
}

// Type represents a type in the IR.
type Type struct {
	Name  string
	Inner TypeInner
}

// TypeInner represents the inner type kind.
type TypeInner interface {
	typeInner()
}

// ScalarType represents scalar types.
type ScalarType struct {
	Kind  ScalarKind
	Width uint8 // in bytes
}

func (ScalarType) typeInner() {}

// ScalarKind represents scalar type kinds.
type ScalarKind uint8

const (
	ScalarSint  ScalarKind = iota // Signed integer
	ScalarUint                    // Unsigned integer
	ScalarFloat                   // Floating point
	ScalarBool                    // Boolean
)

// VectorType represents vector types.
type VectorType struct {
	Size   uint8
	Scalar ScalarType
}

func (VectorType) typeInner() {}

// ArrayType represents array types.
type ArrayType struct {
	Base   TypeHandle
	Count  *uint32 // nil for runtime-sized arrays
	Stride uint32
}

func (ArrayType) typeInner() {}

// StructType represents struct types.
type StructType struct {
	Members []StructMember
	Span    uint32 // Size in bytes
}

func (StructType) typeInner() {}

// StructMember represents a struct member.
type StructMember struct {
	Name   string
	Type   TypeHandle
	Offset uint32
}

// PointerType represents pointer types.
type PointerType struct {
	Base  TypeHandle
	Space AddressSpace
}

func (PointerType) typeInner() {}

// AddressSpace represents memory address spaces.
type AddressSpace uint8

const (
	SpaceFunction AddressSpace = iota
	SpacePrivate
	SpaceWorkGroup
	SpaceUniform
	SpaceStorage
	SpacePushConstant
	SpaceHandle
)

// IsResource reports whether variables in this address space are bound
// through the pipeline's resource interface (descriptors, push constants).
func (s AddressSpace) IsResource() bool {
	switch s {
	case SpaceUniform, SpaceStorage, SpacePushConstant, SpaceHandle:
		return true
	default:
		return false
	}
}

// StorageClass returns the SPIR-V storage class code for this address
// space. The second result is false for address spaces with no defined
// storage class.
func (s AddressSpace) StorageClass() (spirv.StorageClass, bool) {
	switch s {
	case SpaceFunction:
		return spirv.StorageClassFunction, true
	case SpacePrivate:
		return spirv.StorageClassPrivate, true
	case SpaceWorkGroup:
		return spirv.StorageClassWorkgroup, true
	case SpaceUniform:
		return spirv.StorageClassUniform, true
	case SpaceStorage:
		return spirv.StorageClassStorageBuffer, true
	case SpacePushConstant:
		return spirv.StorageClassPushConstant, true
	case SpaceHandle:
		return spirv.StorageClassUniformConstant, true
	default:
		return 0, false
	}
}

// TypeSize returns the size in bytes of the given type, or 0 when the size
// is not statically known (runtime arrays, handles, pointers).
func (m *Module) TypeSize(handle TypeHandle) uint32 {
	if int(handle) >= len(m.Types) {
		return 0
	}
	switch t := m.Types[handle].Inner.(type) {
	case ScalarType:
		return uint32(t.Width)
	case VectorType:
		return uint32(t.Size) * uint32(t.Scalar.Width)
	case ArrayType:
		if t.Count == nil {
			return 0
		}
		return *t.Count * t.Stride
	case StructType:
		return t.Span
	default:
		return 0
	}
}

// Constant represents a constant value.
type Constant struct {
	Name  string
	Type  TypeHandle
	Value ScalarValue
}

// ScalarValue represents a scalar constant value.
//
// Bits holds the value widened to 64 bits: signed integers are
// sign-extended, unsigned integers zero-extended, and floats stored as
// IEEE-754 double bits regardless of the declared width.
type ScalarValue struct {
	Bits uint64
	Kind ScalarKind
}

// GlobalVariable represents a module-scope variable.
type GlobalVariable struct {
	Name    string
	Space   AddressSpace
	Binding *ResourceBinding // Set for resource address spaces
	Type    TypeHandle
	Init    *ConstantHandle
}

// ResourceBinding identifies a descriptor binding slot.
type ResourceBinding struct {
	Set     uint32
	Binding uint32
}

// Function represents a function definition.
type Function struct {
	Name      string
	Arguments []FunctionArgument
	Result    *TypeHandle
	LocalVars []LocalVariable
	Blocks    []Block
}

// FunctionArgument represents a function argument.
type FunctionArgument struct {
	Name string
	Type TypeHandle
}

// LocalVariable represents a function-local variable.
type LocalVariable struct {
	Name string
	Type TypeHandle
	Init *ConstantHandle
}

// Block is a basic block: a label and a sequence of instructions, the
// last of which should be a terminator once lowering has finished.
type Block struct {
	Label        string
	Instructions []Instruction
}
