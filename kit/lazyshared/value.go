package lazyshared

import "sync"

// Value is a zero-value-ready slot for lazily deriving a struct field.
// Add a private field of type Value[T] and return it from a getter:
//
//	func (c *Config) Pattern() *regexp.Regexp {
//		return c.pattern.Get(func() *regexp.Regexp { return regexp.MustCompile(c.Expr) })
//	}
type Value[T any] struct {
	once sync.Once
	val  T
}

// Get runs init on the first call only. Later calls ignore init.
func (v *Value[T]) Get(init func() T) T {
	v.once.Do(func() { v.val = init() })
	return v.val
}

// Func wraps fn so that it runs once and its result is shared.
func Func[T any](fn func() T) func() T {
	return New(fn).Get
}
