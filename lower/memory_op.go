package lower

import "github.com/gogpu/spvlower/ir"

// PassMemoryOp is the memory-op lowering pass's identity.
const PassMemoryOp = "lower-memory-op"

// memoryOp removes redundant re-loads: a load of a pointer already loaded
// in the same block, with no intervening store or call, reuses the first
// load's result.
type memoryOp struct{}

// NewMemoryOp returns the memory-op lowering pass.
func NewMemoryOp() Pass { return &memoryOp{} }

func (p *memoryOp) Name() string { return PassMemoryOp }

func (p *memoryOp) Run(ctx *Context) error {
	module := ctx.Module()
	for f := range module.Functions {
		fn := &module.Functions[f]
		for b := range fn.Blocks {
			p.runBlock(fn, b)
		}
	}
	return nil
}

func (p *memoryOp) runBlock(fn *ir.Function, b int) {
	// Cache of pointer -> result of its live load. Any store or call may
	// alias any pointer, so both clear the whole cache.
	cached := make(map[ir.Value]uint32)
	insts := fn.Blocks[b].Instructions
	for i := 0; i < len(insts); i++ {
		switch kind := insts[i].Kind.(type) {
		case ir.InstLoad:
			if prior, ok := cached[kind.Ptr]; ok {
				fn.ReplaceUses(ir.ResultRef(insts[i].Result), ir.ResultRef(prior))
				fn.RemoveInstruction(b, i)
				insts = fn.Blocks[b].Instructions
				i--
				continue
			}
			cached[kind.Ptr] = insts[i].Result
		case ir.InstStore, ir.InstCall:
			cached = make(map[ir.Value]uint32)
		}
	}
}
