package lower

import "github.com/gogpu/spvlower/ir"

// PassConstImmediateStore is the constant-store forwarding pass's identity.
const PassConstImmediateStore = "lower-const-immediate-store"

// constStore forwards stores of constants to later loads of the same
// local within a block, then removes stores whose local is never loaded
// again and whose address never escapes.
type constStore struct{}

// NewConstStore returns the constant-store forwarding pass.
func NewConstStore() Pass { return &constStore{} }

func (p *constStore) Name() string { return PassConstImmediateStore }

func (p *constStore) Run(ctx *Context) error {
	module := ctx.Module()
	for f := range module.Functions {
		fn := &module.Functions[f]
		for b := range fn.Blocks {
			p.forwardBlock(fn, b)
		}
		p.removeDeadStores(fn)
	}
	return nil
}

// forwardBlock tracks, per local, the constant most recently stored to it
// and rewrites loads of that local to use the constant directly.
func (p *constStore) forwardBlock(fn *ir.Function, b int) {
	known := make(map[uint32]ir.ConstantHandle)
	insts := fn.Blocks[b].Instructions
	for i := 0; i < len(insts); i++ {
		switch kind := insts[i].Kind.(type) {
		case ir.InstStore:
			if kind.Ptr.Kind != ir.ValueLocal {
				// A store through a derived pointer may hit any local.
				known = make(map[uint32]ir.ConstantHandle)
				continue
			}
			if kind.Object.Kind == ir.ValueConstant {
				known[kind.Ptr.ID] = ir.ConstantHandle(kind.Object.ID)
			} else {
				delete(known, kind.Ptr.ID)
			}
		case ir.InstLoad:
			if kind.Ptr.Kind != ir.ValueLocal {
				continue
			}
			constant, ok := known[kind.Ptr.ID]
			if !ok {
				continue
			}
			fn.ReplaceUses(ir.ResultRef(insts[i].Result), ir.ConstantRef(constant))
			fn.RemoveInstruction(b, i)
			insts = fn.Blocks[b].Instructions
			i--
		case ir.InstCall:
			// A callee may write through any local address passed to it.
			for _, arg := range kind.Args {
				if arg.Kind == ir.ValueLocal {
					delete(known, arg.ID)
				}
			}
		}
	}
}

// removeDeadStores deletes constant stores to locals that have no
// remaining loads and whose address is never taken by an access chain or
// passed to a call.
func (p *constStore) removeDeadStores(fn *ir.Function) {
	escaped := make(map[uint32]bool)
	loaded := make(map[uint32]bool)
	for b := range fn.Blocks {
		for i := range fn.Blocks[b].Instructions {
			switch kind := fn.Blocks[b].Instructions[i].Kind.(type) {
			case ir.InstLoad:
				if kind.Ptr.Kind == ir.ValueLocal {
					loaded[kind.Ptr.ID] = true
				}
			case ir.InstAccessChain:
				if kind.Base.Kind == ir.ValueLocal {
					escaped[kind.Base.ID] = true
				}
			case ir.InstCall:
				for _, arg := range kind.Args {
					if arg.Kind == ir.ValueLocal {
						escaped[arg.ID] = true
					}
				}
			}
		}
	}
	for b := range fn.Blocks {
		for i := len(fn.Blocks[b].Instructions) - 1; i >= 0; i-- {
			store, ok := fn.Blocks[b].Instructions[i].Kind.(ir.InstStore)
			if !ok || store.Ptr.Kind != ir.ValueLocal || store.Object.Kind != ir.ValueConstant {
				continue
			}
			if loaded[store.Ptr.ID] || escaped[store.Ptr.ID] {
				continue
			}
			fn.RemoveInstruction(b, i)
		}
	}
}
