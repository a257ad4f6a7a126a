package alloc

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/heapkit/internal/buf"
)

type liveBlock struct {
	p    Ptr
	size int
	seed byte
}

// Test_Property_RandomOps replays seeded malloc/free/realloc sequences and
// checks every invariant, payload contents and non-overlap after each step.
func Test_Property_RandomOps(t *testing.T) {
	for _, seed := range []int64{1, 7, 42, 1337} {
		t.Run(fmt.Sprintf("seed=%d", seed), func(t *testing.T) {
			runRandomOps(t, seed, 2000, WithGrowthBuffer(128))
		})
	}
}

func Test_Property_RandomOpsSmallChunks(t *testing.T) {
	runRandomOps(t, 99, 1500, WithChunkSize(64), WithGrowthBuffer(16))
}

func runRandomOps(t *testing.T, seed int64, steps int, opts ...Option) {
	t.Helper()
	a := newTestAllocator(t, opts...)
	rng := rand.New(rand.NewSource(seed)) // Fixed seed for reproducibility
	var live []liveBlock

	randSize := func() int {
		if rng.Intn(20) == 0 {
			return 1 + rng.Intn(20000)
		}
		return 1 + rng.Intn(600)
	}

	for i := range steps {
		op := rng.Intn(3)
		if len(live) == 0 || len(live) > 150 {
			op = len(live) / 151 // 0 = alloc when empty, 1 = free when crowded
		}

		switch op {
		case 0:
			size := randSize()
			p, err := a.Malloc(uint32(size))
			require.NoError(t, err, "step %d: malloc(%d)", i, size)
			b := liveBlock{p: p, size: size, seed: byte(rng.Intn(256))}
			fill(a, p, b.seed)
			live = append(live, b)

		case 1:
			j := rng.Intn(len(live))
			b := live[j]
			requirePattern(t, a, b.p, b.seed, b.size)
			a.Free(b.p)
			live[j] = live[len(live)-1]
			live = live[:len(live)-1]

		case 2:
			j := rng.Intn(len(live))
			b := live[j]
			size := randSize()
			p, err := a.Realloc(b.p, uint32(size))
			require.NoError(t, err, "step %d: realloc(0x%X, %d)", i, b.p, size)
			requirePattern(t, a, p, b.seed, min(b.size, size))
			b.p, b.size = p, size
			fill(a, p, b.seed)
			live[j] = b
		}

		requireConsistent(t, a)
		requireDisjoint(t, a, live)
	}

	for _, b := range live {
		requirePattern(t, a, b.p, b.seed, b.size)
		a.Free(b.p)
	}
	requireConsistent(t, a)
	s := a.Stats()
	require.Zero(t, s.LiveBlocks)
	require.Zero(t, s.LiveBytes)
}

// requireDisjoint fails if any two live blocks overlap or are misaligned.
func requireDisjoint(t *testing.T, a *Allocator, live []liveBlock) {
	t.Helper()
	for i, x := range live {
		require.Zero(t, x.p%8, "misaligned 0x%X", x.p)
		require.GreaterOrEqual(t, a.UsableSize(x.p), x.size)
		for _, y := range live[i+1:] {
			if buf.Overlaps(int(x.p), a.UsableSize(x.p), int(y.p), a.UsableSize(y.p)) {
				t.Fatalf("blocks 0x%X and 0x%X overlap", x.p, y.p)
			}
		}
	}
}
