// Package spirv holds the SPIR-V numeric contracts the lowering pipeline
// shares with its external collaborators: the binary-format front end that
// produces the IR and the code generator that consumes it.
package spirv

// Version represents a SPIR-V version.
type Version struct {
	Major uint8
	Minor uint8
}

// Common SPIR-V versions
var (
	Version1_0 = Version{1, 0}
	Version1_3 = Version{1, 3}
	Version1_4 = Version{1, 4}
	Version1_5 = Version{1, 5}
	Version1_6 = Version{1, 6}
)

// ExecutionModel represents a SPIR-V execution model code.
type ExecutionModel uint32

// Execution models for the stages a shader binary can declare.
const (
	ExecutionModelVertex                 ExecutionModel = 0
	ExecutionModelTessellationControl    ExecutionModel = 1
	ExecutionModelTessellationEvaluation ExecutionModel = 2
	ExecutionModelGeometry               ExecutionModel = 3
	ExecutionModelFragment               ExecutionModel = 4
	ExecutionModelGLCompute              ExecutionModel = 5

	// ExecutionModelCopyShader is the internal code for the synthetic
	// copy shader. It has no SPIR-V counterpart; the value sits outside
	// the core execution-model range so it can never collide with one.
	ExecutionModelCopyShader ExecutionModel = 1024
)

// StorageClass represents a SPIR-V storage class code.
type StorageClass uint32

// Storage classes for the address spaces the lowering pipeline tracks.
const (
	StorageClassUniformConstant StorageClass = 0
	StorageClassInput           StorageClass = 1
	StorageClassUniform         StorageClass = 2
	StorageClassOutput          StorageClass = 3
	StorageClassWorkgroup       StorageClass = 4
	StorageClassPrivate         StorageClass = 6
	StorageClassFunction        StorageClass = 7
	StorageClassPushConstant    StorageClass = 9
	StorageClassStorageBuffer   StorageClass = 12
)

// Decoration represents a SPIR-V decoration code.
type Decoration uint32

// Decorations the front end attaches to resource variables.
const (
	DecorationBlock         Decoration = 2
	DecorationArrayStride   Decoration = 6
	DecorationBuiltIn       Decoration = 11
	DecorationNonWritable   Decoration = 24
	DecorationNonReadable   Decoration = 25
	DecorationLocation      Decoration = 30
	DecorationBinding       Decoration = 33
	DecorationDescriptorSet Decoration = 34
	DecorationOffset        Decoration = 35
)

// SPIR-V module header constants
const (
	MagicNumber = 0x07230203
	GeneratorID = 0x00000000 // Unregistered generator
)
