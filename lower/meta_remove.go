package lower

// PassInstMetaRemove is the instruction-metadata removal pass's identity.
const PassInstMetaRemove = "lower-inst-meta-remove"

// metaRemove strips the non-semantic metadata the front end attached to
// instructions. Code generation must never see it.
type metaRemove struct{}

// NewMetaRemove returns the metadata removal pass.
func NewMetaRemove() Pass { return &metaRemove{} }

func (p *metaRemove) Name() string { return PassInstMetaRemove }

func (p *metaRemove) Run(ctx *Context) error {
	module := ctx.Module()
	for f := range module.Functions {
		fn := &module.Functions[f]
		for b := range fn.Blocks {
			insts := fn.Blocks[b].Instructions
			for i := range insts {
				insts[i].Meta = nil
			}
		}
	}
	return nil
}
