//go:build linux || darwin

package heap

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// Mapped is a Provider backed by an anonymous private mapping.
//
// The whole limit is reserved at construction; the kernel commits pages on
// first touch. Growth only advances the break, so the address of Bytes()
// never changes.
type Mapped struct {
	mem []byte
	brk int
}

// NewMapped reserves limit bytes (rounded up to the page size) of anonymous
// memory. A non-positive limit selects DefaultMaxSize.
func NewMapped(limit int) (Provider, error) {
	if limit <= 0 {
		limit = DefaultMaxSize
	}
	page := os.Getpagesize()
	size := (limit + page - 1) / page * page

	mem, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, fmt.Errorf("heap: mmap %d bytes: %w", size, err)
	}
	return &Mapped{mem: mem[:limit]}, nil
}

// Grow implements Provider.
func (m *Mapped) Grow(n int) (int, error) {
	if m.mem == nil {
		return 0, ErrClosed
	}
	old := m.brk
	end, err := checkGrow(old, n, len(m.mem))
	if err != nil {
		return 0, err
	}
	m.brk = end
	return old, nil
}

// Bytes implements Provider.
func (m *Mapped) Bytes() []byte {
	if m.mem == nil {
		return nil
	}
	return m.mem[:m.brk]
}

// Size implements Provider.
func (m *Mapped) Size() int { return m.brk }

// Close unmaps the region. Closing twice is a no-op.
func (m *Mapped) Close() error {
	if m.mem == nil {
		return nil
	}
	err := unix.Munmap(m.mem[:cap(m.mem)])
	m.mem = nil
	m.brk = 0
	if errors.Is(err, unix.EINVAL) {
		return nil
	}
	return err
}
