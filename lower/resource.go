package lower

import (
	"fmt"

	"github.com/gogpu/spvlower/ir"
)

// PassCollectResources is the resource collector's registered identity.
const PassCollectResources = "collect-resources"

// BindingKey identifies a descriptor binding slot.
type BindingKey struct {
	Set     uint32
	Binding uint32
}

// AccessKind is a bitmask of how a binding is accessed.
type AccessKind uint8

const (
	AccessRead AccessKind = 1 << iota
	AccessWrite
)

// String returns "read", "write", "read|write", or "none".
func (a AccessKind) String() string {
	switch a {
	case AccessRead:
		return "read"
	case AccessWrite:
		return "write"
	case AccessRead | AccessWrite:
		return "read|write"
	default:
		return "none"
	}
}

// AccessDetail records one resource-accessing instruction, reported only
// in detailed collection mode.
type AccessDetail struct {
	Function string
	Block    int
	Access   AccessKind
}

// BindingUsage is the aggregated usage of one binding.
type BindingUsage struct {
	// StageMask accumulates the stages that access the binding. Within
	// one compilation it holds a single stage's bit; merging across
	// stages is the caller's concern.
	StageMask uint32

	// Access is the union of access kinds, zero in summary mode.
	Access AccessKind

	// Details holds per-instruction records in detailed mode.
	Details []AccessDetail
}

// PushConstantRange is a push-constant region referenced by the shader.
type PushConstantRange struct {
	Offset    uint32
	Size      uint32
	StageMask uint32
}

// ResourceUsage aggregates the resource-binding usage of one lowered
// module. It is constructed empty, populated monotonically by the
// collector, and handed to code generation at pipeline completion.
type ResourceUsage struct {
	Bindings      map[BindingKey]*BindingUsage
	PushConstants []PushConstantRange
}

// NewResourceUsage returns an empty result.
func NewResourceUsage() *ResourceUsage {
	return &ResourceUsage{Bindings: make(map[BindingKey]*BindingUsage)}
}

// resourceCollect walks every instruction reachable from the entry point
// and aggregates binding usage. It never mutates the module.
type resourceCollect struct {
	details bool
}

// NewResourceCollect returns the collector pass; detailed selects
// per-instruction granularity over binding presence.
func NewResourceCollect(detailed bool) Pass {
	return &resourceCollect{details: detailed}
}

func (p *resourceCollect) Name() string { return PassCollectResources }

func (p *resourceCollect) Run(ctx *Context) error {
	entry, ok := ctx.EntryPoint()
	if !ok {
		return fmt.Errorf("%w for %s shader", ErrEntryPointMissing, ir.StageName(ctx.Stage()))
	}
	module := ctx.Module()
	if int(entry.Function) >= len(module.Functions) {
		return fmt.Errorf("%w: entry %q references function %d of %d",
			ErrEntryPointMissing, entry.Name, entry.Function, len(module.Functions))
	}

	usage := ctx.Usage()
	stageMask := ir.StageToMask(ctx.Stage())

	for _, fn := range reachableFunctions(module, entry.Function) {
		p.collectFunction(ctx, usage, &module.Functions[fn], stageMask)
	}

	for key := range usage.Bindings {
		if key.Set >= ctx.Config().MaxDescriptorSets {
			ctx.Diagnose(PassCollectResources, "descriptor set %d exceeds target limit of %d sets",
				key.Set, ctx.Config().MaxDescriptorSets)
		}
	}
	return nil
}

// reachableFunctions returns root plus every function transitively called
// from it, in a deterministic discovery order.
func reachableFunctions(module *ir.Module, root ir.FunctionHandle) []ir.FunctionHandle {
	seen := map[ir.FunctionHandle]bool{root: true}
	order := []ir.FunctionHandle{root}
	for i := 0; i < len(order); i++ {
		fn := &module.Functions[order[i]]
		for b := range fn.Blocks {
			for _, inst := range fn.Blocks[b].Instructions {
				call, ok := inst.Kind.(ir.InstCall)
				if !ok || int(call.Callee) >= len(module.Functions) {
					continue
				}
				if !seen[call.Callee] {
					seen[call.Callee] = true
					order = append(order, call.Callee)
				}
			}
		}
	}
	return order
}

func (p *resourceCollect) collectFunction(ctx *Context, usage *ResourceUsage, fn *ir.Function, stageMask uint32) {
	// Pointer provenance: access-chain results trace back to the global
	// they derive from.
	origin := make(map[uint32]ir.GlobalVariableHandle)
	resolve := func(v ir.Value) (ir.GlobalVariableHandle, bool) {
		switch v.Kind {
		case ir.ValueGlobal:
			return ir.GlobalVariableHandle(v.ID), true
		case ir.ValueResult:
			g, ok := origin[v.ID]
			return g, ok
		default:
			return 0, false
		}
	}

	for b := range fn.Blocks {
		for _, inst := range fn.Blocks[b].Instructions {
			switch kind := inst.Kind.(type) {
			case ir.InstAccessChain:
				if g, ok := resolve(kind.Base); ok {
					origin[inst.Result] = g
				}
			case ir.InstLoad:
				if g, ok := resolve(kind.Ptr); ok {
					p.record(ctx, usage, g, AccessRead, fn.Name, b, stageMask)
				}
			case ir.InstStore:
				if g, ok := resolve(kind.Ptr); ok {
					p.record(ctx, usage, g, AccessWrite, fn.Name, b, stageMask)
				}
			}
		}
	}
}

func (p *resourceCollect) record(ctx *Context, usage *ResourceUsage, handle ir.GlobalVariableHandle,
	access AccessKind, function string, block int, stageMask uint32) {
	module := ctx.Module()
	if int(handle) >= len(module.GlobalVariables) {
		return
	}
	global := &module.GlobalVariables[handle]
	if !global.Space.IsResource() {
		return
	}

	if global.Space == ir.SpacePushConstant {
		p.recordPushConstant(ctx, usage, global, stageMask)
		return
	}
	if global.Binding == nil {
		return
	}

	key := BindingKey{Set: global.Binding.Set, Binding: global.Binding.Binding}
	record, ok := usage.Bindings[key]
	if !ok {
		record = &BindingUsage{}
		usage.Bindings[key] = record
	}
	record.StageMask |= stageMask
	if p.details {
		record.Access |= access
		record.Details = append(record.Details, AccessDetail{
			Function: function,
			Block:    block,
			Access:   access,
		})
	}
}

func (p *resourceCollect) recordPushConstant(ctx *Context, usage *ResourceUsage, global *ir.GlobalVariable, stageMask uint32) {
	size := ctx.Module().TypeSize(global.Type)
	for i := range usage.PushConstants {
		if usage.PushConstants[i].Offset == 0 && usage.PushConstants[i].Size == size {
			usage.PushConstants[i].StageMask |= stageMask
			return
		}
	}
	if size > ctx.Config().MaxPushConstantSize {
		ctx.Diagnose(PassCollectResources, "push constant block %q is %d bytes, target allows %d",
			global.Name, size, ctx.Config().MaxPushConstantSize)
	}
	usage.PushConstants = append(usage.PushConstants, PushConstantRange{
		Offset:    0,
		Size:      size,
		StageMask: stageMask,
	})
}
