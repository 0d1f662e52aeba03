package cache

// ScopedKeyer wraps a Keyer with a prefix so that several datasets or
// environments can share one backend without colliding.
//
// Example usage:
//
//	// Keys for the staging catalog
//	staging := NewScopedKeyer(NewDefaultKeyer(), "staging:")
//
//	// Unprefixed keys for production
//	prod := NewDefaultKeyer()
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// ClusterKey generates a prefixed key for propagation results.
func (k *ScopedKeyer) ClusterKey(inputHash string, opts ClusterKeyOpts) string {
	return k.prefix + k.inner.ClusterKey(inputHash, opts)
}

// ValidationKey generates a prefixed key for validation results.
func (k *ScopedKeyer) ValidationKey(inputHash string) string {
	return k.prefix + k.inner.ValidationKey(inputHash)
}
