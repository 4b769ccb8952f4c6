package cache

// ScopedKeyer wraps a Keyer with a prefix, so that several deployments or
// schema versions can share one backend without colliding.
//
//	k := NewScopedKeyer(NewDefaultKeyer(), "diceplan:v1:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix. A nil inner uses
// [DefaultKeyer].
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// HeuristicKey returns the prefixed heuristic key.
func (k *ScopedKeyer) HeuristicKey(solver string, source, target, units int) string {
	return k.prefix + k.inner.HeuristicKey(solver, source, target, units)
}

// ResultKey returns the prefixed result key.
func (k *ScopedKeyer) ResultKey(source, target int, opts ResultKeyOpts) string {
	return k.prefix + k.inner.ResultKey(source, target, opts)
}
