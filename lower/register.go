package lower

// RegisterLowerPasses registers the standard lowering pass roster. It is
// called once at process start, before any pipeline is built; the
// registration order doubles as the tie-break for independent passes, so
// it matches the canonical pipeline order.
//
// The resource collector declares a dependency on every pass that can add
// or remove resource-accessing operations, and terminator normalization
// runs after collection (the collector reads bindings, not control flow,
// but keeping it ahead of the final terminator rewrite keeps the
// pipeline's observable shape stable).
func RegisterLowerPasses(registry *Registry) error {
	infos := []Info{
		{
			Name:    PassAccessChain,
			Factory: func(BuildOptions) Pass { return NewAccessChain() },
		},
		{
			Name:    PassConstImmediateStore,
			Deps:    []string{PassAccessChain},
			Factory: func(BuildOptions) Pass { return NewConstStore() },
		},
		{
			Name:    PassMathConstFolding,
			Deps:    []string{PassConstImmediateStore},
			Factory: func(BuildOptions) Pass { return NewConstFold() },
		},
		{
			Name:    PassMathFloatOp,
			Deps:    []string{PassMathConstFolding},
			Factory: func(BuildOptions) Pass { return NewFloatOp() },
		},
		{
			Name:    PassMemoryOp,
			Deps:    []string{PassAccessChain},
			Factory: func(BuildOptions) Pass { return NewMemoryOp() },
		},
		{
			Name:    PassGlobal,
			Factory: func(BuildOptions) Pass { return NewGlobal() },
		},
		{
			Name:    PassInstMetaRemove,
			Factory: func(BuildOptions) Pass { return NewMetaRemove() },
		},
		{
			Name: PassCollectResources,
			Deps: []string{
				PassAccessChain,
				PassConstImmediateStore,
				PassMemoryOp,
				PassGlobal,
			},
			Factory: func(opts BuildOptions) Pass { return NewResourceCollect(opts.CollectDetails) },
		},
		{
			Name:    PassTerminator,
			Deps:    []string{PassCollectResources},
			Factory: func(BuildOptions) Pass { return NewTerminator() },
		},
	}
	for _, info := range infos {
		if err := registry.Register(info); err != nil {
			return err
		}
	}
	return nil
}
