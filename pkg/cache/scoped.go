package cache

// ScopedKeyer wraps a Keyer with a prefix, so several deployments can share
// one Redis instance.
//
//	keyer := cache.NewScopedKeyer(cache.NewDefaultKeyer(), "jigsaw:staging:")
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
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

func (k *ScopedKeyer) PuzzleKey(opts PuzzleKeyOpts) string {
	return k.prefix + k.inner.PuzzleKey(opts)
}

func (k *ScopedKeyer) ArtifactKey(docHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(docHash, opts)
}
