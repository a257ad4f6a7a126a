//go:build !linux && !darwin

package heap

// NewMapped falls back to a Slice provider where anonymous mmap is not wired up.
func NewMapped(limit int) (Provider, error) {
	return NewSlice(limit), nil
}
