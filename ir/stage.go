package ir

import "github.com/gogpu/spvlower/spirv"

// ShaderStage represents a shader stage.
//
// The hardware stages Vertex through Compute are contiguous. StageCopyShader
// is a synthetic stage that exists only after lowering and has no
// binary-format counterpart; its ordinal sits outside the contiguous range,
// so stage-indexed tables must never index positionally. StageInvalid is the
// out-of-range sentinel.
type ShaderStage int

const (
	StageVertex ShaderStage = iota
	StageTessControl
	StageTessEval
	StageGeometry
	StageFragment
	StageCompute

	// StageCount is the number of hardware stages (Vertex..Compute).
	StageCount

	// StageCopyShader is the synthetic copy shader, ordinal StageCount.
	StageCopyShader = StageCount
)

// StageInvalid marks an undetermined or corrupt stage.
const StageInvalid ShaderStage = -1

// StageName returns the human-readable name of a shader stage.
// Unknown ordinals (including StageInvalid) report "bad".
func StageName(stage ShaderStage) string {
	switch stage {
	case StageVertex:
		return "vertex"
	case StageTessControl:
		return "tessellation control"
	case StageTessEval:
		return "tessellation evaluation"
	case StageGeometry:
		return "geometry"
	case StageFragment:
		return "fragment"
	case StageCompute:
		return "compute"
	case StageCopyShader:
		return "copy"
	default:
		return "bad"
	}
}

// ToExecutionModel converts a shader stage to its execution-model code.
// The second result is false for StageInvalid and unknown ordinals.
func ToExecutionModel(stage ShaderStage) (spirv.ExecutionModel, bool) {
	switch stage {
	case StageVertex:
		return spirv.ExecutionModelVertex, true
	case StageTessControl:
		return spirv.ExecutionModelTessellationControl, true
	case StageTessEval:
		return spirv.ExecutionModelTessellationEvaluation, true
	case StageGeometry:
		return spirv.ExecutionModelGeometry, true
	case StageFragment:
		return spirv.ExecutionModelFragment, true
	case StageCompute:
		return spirv.ExecutionModelGLCompute, true
	case StageCopyShader:
		return spirv.ExecutionModelCopyShader, true
	default:
		return 0, false
	}
}

// FromExecutionModel converts an execution-model code to a shader stage.
// The second result is false for codes with no defined stage; the stage is
// then StageInvalid.
func FromExecutionModel(model spirv.ExecutionModel) (ShaderStage, bool) {
	switch model {
	case spirv.ExecutionModelVertex:
		return StageVertex, true
	case spirv.ExecutionModelTessellationControl:
		return StageTessControl, true
	case spirv.ExecutionModelTessellationEvaluation:
		return StageTessEval, true
	case spirv.ExecutionModelGeometry:
		return StageGeometry, true
	case spirv.ExecutionModelFragment:
		return StageFragment, true
	case spirv.ExecutionModelGLCompute:
		return StageCompute, true
	case spirv.ExecutionModelCopyShader:
		return StageCopyShader, true
	default:
		return StageInvalid, false
	}
}

// StageToMask translates a shader stage to its single-bit stage mask.
// Masks for distinct stages never collide; StageCopyShader's bit does not
// alias any hardware stage's. StageInvalid yields 0.
func StageToMask(stage ShaderStage) uint32 {
	if stage < StageVertex || stage > StageCopyShader {
		return 0
	}
	return 1 << uint(stage)
}

// StageMaskAll covers every stage including the synthetic copy shader.
const StageMaskAll uint32 = 1<<uint(StageCopyShader+1) - 1

// UnlinkedStage is a coarse grouping of shader stages used for
// partial-pipeline compilation decisions.
type UnlinkedStage int

const (
	UnlinkedStageVertexProcess UnlinkedStage = iota
	UnlinkedStageFragment
	UnlinkedStageCompute
	UnlinkedStageCount
)

// UnlinkedStageName returns the name of the unlinked stage category.
func UnlinkedStageName(category UnlinkedStage) string {
	switch category {
	case UnlinkedStageVertexProcess:
		return "vertex"
	case UnlinkedStageFragment:
		return "fragment"
	case UnlinkedStageCompute:
		return "compute"
	default:
		return "unknown"
	}
}

// UnlinkedStageMask returns the stage mask covering every shader stage
// that can be part of the given unlinked stage category.
func UnlinkedStageMask(category UnlinkedStage) uint32 {
	switch category {
	case UnlinkedStageVertexProcess:
		return StageToMask(StageVertex) | StageToMask(StageTessControl) |
			StageToMask(StageTessEval) | StageToMask(StageGeometry)
	case UnlinkedStageFragment:
		return StageToMask(StageFragment)
	case UnlinkedStageCompute:
		return StageToMask(StageCompute)
	default:
		return 0
	}
}

// StageInfo describes one stage's compile input in a pipeline request.
type StageInfo struct {
	Stage      ShaderStage
	EntryPoint string
}

// StageExists reports whether infos contains an entry for the given stage.
func StageExists(infos []StageInfo, stage ShaderStage) bool {
	for _, info := range infos {
		if info.Stage == stage {
			return true
		}
	}
	return false
}

// HasDataForUnlinkedStage reports whether infos carries the input required
// to compile an unlinked shader of the given category.
func HasDataForUnlinkedStage(category UnlinkedStage, infos []StageInfo) bool {
	switch category {
	case UnlinkedStageVertexProcess:
		return StageExists(infos, StageVertex)
	case UnlinkedStageFragment:
		return StageExists(infos, StageFragment)
	case UnlinkedStageCompute:
		return StageExists(infos, StageCompute)
	default:
		return false
	}
}
