package trace

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"time"

	"github.com/bytedance/gopkg/lang/mcache"
	"github.com/bytedance/gopkg/util/xxhash3"

	"github.com/joshuapare/heapkit/heap/alloc"
	"github.com/joshuapare/heapkit/internal/buf"
	"github.com/joshuapare/heapkit/internal/format"
	"github.com/joshuapare/heapkit/internal/logger"
)

var (
	// ErrCorrupt indicates a live payload no longer holds the bytes written to it.
	ErrCorrupt = errors.New("trace: payload corrupted")

	// ErrOverlap indicates two live payloads share bytes.
	ErrOverlap = errors.New("trace: payloads overlap")

	// ErrMisaligned indicates a returned address is not 8-byte aligned.
	ErrMisaligned = errors.New("trace: misaligned address")

	// ErrOutOfRegion indicates a payload extends past the region end.
	ErrOutOfRegion = errors.New("trace: payload outside region")

	// ErrLiveID indicates an allocation for an id that is still live.
	ErrLiveID = errors.New("trace: id already allocated")

	// ErrInconsistent indicates the heap checker reported violations.
	ErrInconsistent = errors.New("trace: heap inconsistent")
)

// OpError wraps a failure with the operation that caused it.
type OpError struct {
	Index int // position in Trace.Ops
	Op    Op
	Err   error
}

func (e *OpError) Error() string {
	return fmt.Sprintf("op %d (line %d, %s id %d): %v", e.Index, e.Op.Line, e.Op.Kind, e.Op.ID, e.Err)
}

func (e *OpError) Unwrap() error { return e.Err }

// Result summarizes one replay.
type Result struct {
	Name        string            `json:"name"`
	Ops         int               `json:"ops"`
	PeakLive    int64             `json:"peak_live_bytes"`
	HeapSize    int               `json:"heap_size"`
	Utilization float64           `json:"utilization"`
	Checks      int               `json:"checks"`
	Elapsed     time.Duration     `json:"elapsed_ns"`
	Violations  []alloc.Violation `json:"violations,omitempty"`
	Err         string            `json:"error,omitempty"`
	Stats       alloc.Stats       `json:"stats"`
}

// Valid reports whether the replay finished without error.
func (r *Result) Valid() bool { return r.Err == "" }

// Player replays traces against an allocator.
type Player struct {
	// CheckEvery runs the heap checker after every N operations, and once at
	// the end. Zero only checks at the end.
	CheckEvery int

	// Dump receives a verbose block dump when the checker fails. Nil
	// discards it.
	Dump io.Writer

	// Logger receives per-operation debug records. Nil selects logger.L.
	Logger *slog.Logger
}

type liveBlock struct {
	p    alloc.Ptr
	size int
	seed uint64
}

// replay holds the state of one Play call.
type replay struct {
	pl   *Player
	a    *alloc.Allocator
	log  *slog.Logger
	live []liveBlock // indexed by id; p == Null when not live

	liveBytes int64
	res       *Result
}

// Play replays tr against a. The Result is always returned; the error is the
// first failure, if any, wrapped in an *OpError.
func (pl *Player) Play(a *alloc.Allocator, tr *Trace) (*Result, error) {
	r := &replay{
		pl:   pl,
		a:    a,
		log:  pl.Logger,
		live: make([]liveBlock, tr.NumIDs),
		res:  &Result{Name: tr.Name},
	}
	if r.log == nil {
		r.log = logger.L
	}

	start := time.Now()
	err := r.run(tr)
	r.res.Elapsed = time.Since(start)

	r.res.HeapSize = a.HeapSize()
	if r.res.HeapSize > 0 {
		r.res.Utilization = float64(r.res.PeakLive) / float64(r.res.HeapSize)
	}
	r.res.Stats = a.Stats()
	if err != nil {
		r.res.Err = err.Error()
	}
	r.log.Debug("trace replayed", "trace", tr.Name, "ops", r.res.Ops, "heap", r.res.HeapSize, "err", err)
	return r.res, err
}

func (r *replay) run(tr *Trace) error {
	for i, op := range tr.Ops {
		if err := r.step(op); err != nil {
			return &OpError{Index: i, Op: op, Err: err}
		}
		r.res.Ops++
		if r.pl.CheckEvery > 0 && (i+1)%r.pl.CheckEvery == 0 {
			if err := r.check(); err != nil {
				return &OpError{Index: i, Op: op, Err: err}
			}
		}
	}

	// Everything still live must be intact at the end.
	for id, b := range r.live {
		if b.p == alloc.Null {
			continue
		}
		if err := r.verify(b, b.size); err != nil {
			return fmt.Errorf("id %d at end of trace: %w", id, err)
		}
	}
	return r.check()
}

func (r *replay) step(op Op) error {
	b := r.live[op.ID]

	switch op.Kind {
	case OpAlloc:
		if b.p != alloc.Null {
			return ErrLiveID
		}
		p, err := r.a.Malloc(op.Size)
		if err != nil {
			return err
		}
		return r.settle(op.ID, p, int(op.Size))

	case OpRealloc:
		if b.p != alloc.Null {
			if err := r.verify(b, b.size); err != nil {
				return err
			}
		}
		p, err := r.a.Realloc(b.p, op.Size)
		if err != nil {
			return err
		}
		r.drop(op.ID)
		if p != alloc.Null {
			b.p = p
			keep := min(b.size, int(op.Size))
			if err := r.verify(b, keep); err != nil {
				return fmt.Errorf("after realloc %d -> %d bytes: %w", b.size, op.Size, err)
			}
		}
		return r.settle(op.ID, p, int(op.Size))

	case OpFree:
		if b.p != alloc.Null {
			if err := r.verify(b, b.size); err != nil {
				return err
			}
		}
		r.a.Free(b.p)
		r.drop(op.ID)
		return nil
	}
	return fmt.Errorf("unknown operation %s", op.Kind)
}

// settle records p as the live block for id, checks its placement and fills
// its payload.
func (r *replay) settle(id int, p alloc.Ptr, size int) error {
	if p == alloc.Null {
		return nil
	}
	if !format.IsAligned(int(p)) {
		return fmt.Errorf("%w: 0x%X", ErrMisaligned, p)
	}
	if !buf.Has(r.a.Bytes(), int(p), size) {
		return fmt.Errorf("%w: 0x%X+%d (heap %d)", ErrOutOfRegion, p, size, r.a.HeapSize())
	}
	for other, b := range r.live {
		if other != id && b.p != alloc.Null && buf.Overlaps(int(p), size, int(b.p), b.size) {
			return fmt.Errorf("%w: 0x%X+%d and id %d at 0x%X+%d", ErrOverlap, p, size, other, b.p, b.size)
		}
	}
	if r.a.UsableSize(p) < size {
		return fmt.Errorf("%w: 0x%X holds %d bytes, want %d", ErrOutOfRegion, p, r.a.UsableSize(p), size)
	}

	b := liveBlock{p: p, size: size, seed: patternSeed(id)}
	fillPattern(r.a.Payload(p)[:size], b.seed)
	r.live[id] = b

	r.liveBytes += int64(size)
	r.res.PeakLive = max(r.res.PeakLive, r.liveBytes)
	return nil
}

func (r *replay) drop(id int) {
	r.liveBytes -= int64(r.live[id].size)
	r.live[id] = liveBlock{}
}

// verify compares the first n payload bytes of b with its fill pattern.
func (r *replay) verify(b liveBlock, n int) error {
	if n == 0 {
		return nil
	}
	want := mcache.Malloc(n)
	defer mcache.Free(want)
	fillPattern(want, b.seed)

	got := r.a.Payload(b.p)
	if len(got) < n {
		return fmt.Errorf("%w: 0x%X holds %d bytes, want %d", ErrCorrupt, b.p, len(got), n)
	}
	if bytes.Equal(got[:n], want) {
		return nil
	}
	for i := range n {
		if got[i] != want[i] {
			return fmt.Errorf("%w: 0x%X byte %d is %#02x, want %#02x", ErrCorrupt, b.p, i, got[i], want[i])
		}
	}
	return nil
}

func (r *replay) check() error {
	r.res.Checks++
	vs := r.a.Check(nil, false)
	if len(vs) == 0 {
		return nil
	}
	r.res.Violations = vs
	if r.pl.Dump != nil {
		r.a.Check(r.pl.Dump, true)
	}
	return fmt.Errorf("%w: %d violations, first: %v", ErrInconsistent, len(vs), vs[0])
}

// patternSeed derives the fill pattern for an id.
func patternSeed(id int) uint64 {
	return xxhash3.HashString(strconv.Itoa(id))
}

// fillPattern writes the deterministic pattern for seed into b.
func fillPattern(b []byte, seed uint64) {
	for i := range b {
		b[i] = byte(seed>>(8*(i&7))) + byte(i>>3)
	}
}
