package lower

import "github.com/gogpu/spvlower/ir"

// PassAccessChain is the access-chain lowering pass's identity.
const PassAccessChain = "lower-access-chain"

// accessChain collapses access chains whose base is itself an access
// chain into a single chain rooted at the underlying variable, so later
// passes and code generation see one address computation per access.
type accessChain struct{}

// NewAccessChain returns the access-chain lowering pass.
func NewAccessChain() Pass { return &accessChain{} }

func (p *accessChain) Name() string { return PassAccessChain }

func (p *accessChain) Run(ctx *Context) error {
	module := ctx.Module()
	for f := range module.Functions {
		p.runFunction(&module.Functions[f])
	}
	return nil
}

func (p *accessChain) runFunction(fn *ir.Function) {
	// Chains are defined before use, so a single in-order sweep reaches
	// a fixpoint: by the time a chain is visited its base chain has
	// already been collapsed.
	chains := make(map[uint32]ir.InstAccessChain)
	for b := range fn.Blocks {
		insts := fn.Blocks[b].Instructions
		for i := range insts {
			chain, ok := insts[i].Kind.(ir.InstAccessChain)
			if !ok {
				continue
			}
			if chain.Base.Kind == ir.ValueResult {
				if base, ok := chains[chain.Base.ID]; ok {
					merged := make([]ir.Value, 0, len(base.Indices)+len(chain.Indices))
					merged = append(merged, base.Indices...)
					merged = append(merged, chain.Indices...)
					chain = ir.InstAccessChain{Base: base.Base, Indices: merged}
					insts[i].Kind = chain
				}
			}
			chains[insts[i].Result] = chain
		}
	}

	// Chains that no longer have uses after collapsing are dead.
	for b := range fn.Blocks {
		for i := len(fn.Blocks[b].Instructions) - 1; i >= 0; i-- {
			inst := fn.Blocks[b].Instructions[i]
			if _, ok := inst.Kind.(ir.InstAccessChain); !ok {
				continue
			}
			if fn.Uses(ir.ResultRef(inst.Result)) == 0 {
				fn.RemoveInstruction(b, i)
			}
		}
	}
}
