package lower

import "github.com/gogpu/spvlower/ir"

// PassGlobal is the global-variable lowering pass's identity.
const PassGlobal = "lower-global"

// global lowers module-scope private variables: initializers become
// explicit stores at the head of the entry point's first block, and
// private globals that nothing references are removed from the module.
type global struct{}

// NewGlobal returns the global-variable lowering pass.
func NewGlobal() Pass { return &global{} }

func (p *global) Name() string { return PassGlobal }

func (p *global) Run(ctx *Context) error {
	module := ctx.Module()
	p.materializeInitializers(ctx, module)
	p.removeUnreferenced(ctx, module)
	return nil
}

// materializeInitializers rewrites private-global initializers into
// stores at the entry block head, so code generation never deals with
// initialized globals.
func (p *global) materializeInitializers(ctx *Context, module *ir.Module) {
	entry, ok := ctx.EntryPoint()
	if !ok || int(entry.Function) >= len(module.Functions) {
		return
	}
	fn := &module.Functions[entry.Function]
	if len(fn.Blocks) == 0 {
		return
	}

	var stores []ir.Instruction
	for g := range module.GlobalVariables {
		gv := &module.GlobalVariables[g]
		if gv.Space != ir.SpacePrivate || gv.Init == nil {
			continue
		}
		stores = append(stores, ir.Instruction{
			Kind: ir.InstStore{
				Ptr:    ir.GlobalRef(ir.GlobalVariableHandle(g)),
				Object: ir.ConstantRef(*gv.Init),
			},
		})
		gv.Init = nil
	}
	if len(stores) == 0 {
		return
	}
	head := fn.Blocks[0].Instructions
	fn.Blocks[0].Instructions = append(stores, head...)
}

// removeUnreferenced drops private globals with no uses in any function,
// remapping global references to the compacted table.
func (p *global) removeUnreferenced(ctx *Context, module *ir.Module) {
	referenced := make(map[ir.GlobalVariableHandle]bool)
	for f := range module.Functions {
		fn := &module.Functions[f]
		for b := range fn.Blocks {
			for i := range fn.Blocks[b].Instructions {
				for _, op := range ir.Operands(fn.Blocks[b].Instructions[i].Kind) {
					if op.Kind == ir.ValueGlobal {
						referenced[ir.GlobalVariableHandle(op.ID)] = true
					}
				}
			}
		}
	}

	total := len(module.GlobalVariables)
	remap := make([]ir.GlobalVariableHandle, total)
	live := make([]bool, total)
	kept := module.GlobalVariables[:0]
	removed := 0
	for g := range module.GlobalVariables {
		handle := ir.GlobalVariableHandle(g)
		gv := module.GlobalVariables[g]
		if gv.Space == ir.SpacePrivate && !referenced[handle] {
			removed++
			continue
		}
		remap[g] = ir.GlobalVariableHandle(len(kept))
		live[g] = true
		kept = append(kept, gv)
	}
	if removed == 0 {
		return
	}
	module.GlobalVariables = kept

	// Rewrite in ascending handle order: compaction only moves handles
	// down, so no rewrite can produce a handle a later step rewrites.
	for f := range module.Functions {
		fn := &module.Functions[f]
		for g := 0; g < total; g++ {
			if live[g] && remap[g] != ir.GlobalVariableHandle(g) {
				fn.ReplaceUses(ir.GlobalRef(ir.GlobalVariableHandle(g)), ir.GlobalRef(remap[g]))
			}
		}
	}
	ctx.Diagnose(PassGlobal, "removed %d unreferenced private globals", removed)
}
