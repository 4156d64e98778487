package cache

// ScopedKeyer prefixes every key of an inner Keyer, giving each tenant or
// environment its own namespace in a shared backend:
//
//	staging := NewScopedKeyer(NewDefaultKeyer(), "staging:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer wraps inner. A nil inner uses DefaultKeyer.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// ResultKey implements Keyer.
func (k *ScopedKeyer) ResultKey(requestHash string, opts ResultKeyOpts) string {
	return k.prefix + k.inner.ResultKey(requestHash, opts)
}

// CheckKey implements Keyer.
func (k *ScopedKeyer) CheckKey(layoutHash, jurisdiction string) string {
	return k.prefix + k.inner.CheckKey(layoutHash, jurisdiction)
}

// InterpretKey implements Keyer.
func (k *ScopedKeyer) InterpretKey(model, description string) string {
	return k.prefix + k.inner.InterpretKey(model, description)
}
