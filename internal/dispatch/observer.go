package dispatch

import "rawncc/internal/descriptor"

// Observer receives descriptors during a walk. Every handler is optional; nil handlers are
// skipped without classifying anything for them.
type Observer struct {
	Variable  func(descriptor.Variable)
	Function  func(descriptor.Function)
	Aggregate func(descriptor.Aggregate)
	Cast      func(descriptor.CastSite)
}

// ObserveAll returns an Observer that hands every descriptor to fn.
func ObserveAll(fn func(descriptor.Descriptor)) Observer {
	return Observer{
		Variable:  func(v descriptor.Variable) { fn(v) },
		Function:  func(f descriptor.Function) { fn(f) },
		Aggregate: func(a descriptor.Aggregate) { fn(a) },
		Cast:      func(c descriptor.CastSite) { fn(c) },
	}
}
