package lower

import "github.com/gogpu/spvlower/ir"

// PassTerminator is the terminator normalization pass's identity.
const PassTerminator = "lower-terminator"

// terminator normalizes block terminators: instructions after a block's
// first terminator are unreachable and removed, and a block with no
// terminator gets an explicit Unreachable appended.
type terminator struct{}

// NewTerminator returns the terminator normalization pass.
func NewTerminator() Pass { return &terminator{} }

func (p *terminator) Name() string { return PassTerminator }

func (p *terminator) Run(ctx *Context) error {
	module := ctx.Module()
	for f := range module.Functions {
		fn := &module.Functions[f]
		for b := range fn.Blocks {
			p.runBlock(ctx, fn, b)
		}
	}
	return nil
}

func (p *terminator) runBlock(ctx *Context, fn *ir.Function, b int) {
	insts := fn.Blocks[b].Instructions
	for i := range insts {
		if !ir.IsTerminator(insts[i].Kind) {
			continue
		}
		if trailing := len(insts) - i - 1; trailing > 0 {
			ctx.Diagnose(PassTerminator, "%s block %q: dropped %d unreachable instructions",
				fn.Name, fn.Blocks[b].Label, trailing)
			fn.Blocks[b].Instructions = insts[:i+1]
		}
		return
	}
	fn.Blocks[b].Instructions = append(insts, ir.Instruction{Kind: ir.InstUnreachable{}})
}
