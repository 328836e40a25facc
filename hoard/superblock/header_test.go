//go:build linux

package superblock

import (
	"fmt"
	"math/rand"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/hoardkit/internal/testutil"
)

func TestHeader_Uninitialized(t *testing.T) {
	s := newSuperblock(t)
	h := s.Header()

	assert.False(t, h.Valid())
	assert.Equal(t, s, h.Superblock())
	assert.Equal(t, NoOwner, h.Owner())
	assert.Zero(t, h.Size())
}

func TestHeader_FreeUninitialized(t *testing.T) {
	s := newSuperblock(t)
	testutil.ExpectFatal(t, func() {
		s.Header().Free(nil)
	}, "uninitialized")
}

func TestHeader_AllocUninitialized(t *testing.T) {
	s := newSuperblock(t)
	testutil.ExpectFatal(t, func() {
		s.Header().Alloc()
	}, "uninitialized")
}

func TestHeader_Inited(t *testing.T) {
	s, h := newInited(t, testBlockSize)

	assert.True(t, h.Valid())
	assert.True(t, h.Empty())
	assert.False(t, h.Checked())
	assert.Equal(t, s, h.Superblock())
	assert.Equal(t, uintptr(testBlockSize), h.BlockSize())
	assert.Equal(t, int((SuperblockSize-HeaderSize)/testBlockSize), h.Size())
}

func TestHeader_SizeFormula(t *testing.T) {
	_, h := newInited(t, testBlockSize)
	for _, bs := range []uintptr{8, 16, 24, 32, 48, 256, 1024, 4096, SuperblockSize / 4, SuperblockSize / 2, MaxBlockSize} {
		h.Init(bs)
		assert.Equal(t, int((SuperblockSize-HeaderSize)/bs), h.Size(), "block size %d", bs)
		assert.Equal(t, BlocksFor(bs), h.Size(), "block size %d", bs)
		assert.Zero(t, h.BlocksAllocated())
	}
}

func TestHeader_HeaderFitsReservation(t *testing.T) {
	assert.LessOrEqual(t, unsafe.Sizeof(Header{}), HeaderSize)
	assert.Zero(t, HeaderSize%16, "block storage must start 16-byte aligned")
	assert.GreaterOrEqual(t, liveWords*64, BlocksFor(MinBlockSize), "bitmap must cover every block")
}

func TestHeader_Alloc(t *testing.T) {
	s, h := newInited(t, testBlockSize)

	p := h.Alloc()
	require.NotNil(t, p)
	fill(p, testBlockSize, 1)

	assert.Equal(t, 1, h.BlocksAllocated())
	assert.False(t, h.Empty())
	assert.Equal(t, s.Addr()+HeaderSize, uintptr(p), "first block follows the header")
	assert.Equal(t, s, Of(p))
}

func TestHeader_AllocAddressOrder(t *testing.T) {
	_, h := newInited(t, 48)
	prev := uintptr(h.Alloc())
	for i := 1; i < 20; i++ {
		p := uintptr(h.Alloc())
		assert.Equal(t, prev+48, p, "alloc %d", i)
		prev = p
	}
}

func TestHeader_Free(t *testing.T) {
	_, h := newInited(t, testBlockSize)

	p := h.Alloc()
	fill(p, testBlockSize, 1)
	require.Equal(t, 1, h.BlocksAllocated())

	h.Free(p)
	assert.True(t, h.Empty())

	// LIFO: the block just freed comes back first.
	assert.Equal(t, p, h.Alloc())
}

func TestHeader_BlocksDoNotOverlap(t *testing.T) {
	_, h := newInited(t, 64)
	blocks := allocAll(t, h)
	for i, p := range blocks {
		fill(p, 64, byte(i))
	}
	for i, p := range blocks {
		requireFilled(t, p, 64, byte(i))
	}
}

func TestHeader_Overflow(t *testing.T) {
	_, h := newInited(t, testBlockSize)
	allocAll(t, h)
	require.Equal(t, h.Size(), h.BlocksAllocated())

	testutil.ExpectFatal(t, func() {
		h.Alloc()
	}, "exhausted")
}

func TestHeader_Underflow(t *testing.T) {
	_, h := newInited(t, testBlockSize)
	blocks := allocAll(t, h)

	r := rand.New(rand.NewSource(1))
	r.Shuffle(len(blocks), func(i, j int) { blocks[i], blocks[j] = blocks[j], blocks[i] })
	some := blocks[0]
	for _, p := range blocks {
		h.Free(p)
	}
	require.True(t, h.Empty())

	testutil.ExpectFatal(t, func() {
		h.Free(some)
	}, "underflow")
}

func TestHeader_FreeOutOfRange(t *testing.T) {
	s, h := newInited(t, testBlockSize)
	h.Alloc()

	tests := []struct {
		name string
		p    unsafe.Pointer
	}{
		{"nil", nil},
		{"header", unsafe.Pointer(h)},
		{"last header byte", unsafe.Add(s.Pointer(), HeaderSize-1)},
		{"past end", unsafe.Add(s.Pointer(), SuperblockSize)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testutil.ExpectFatal(t, func() {
				h.Free(tt.p)
			}, "outside block range")
		})
	}
}

func TestHeader_FreeSlack(t *testing.T) {
	// 3 blocks of SuperblockSize/4 leave a slack tail that is not a block.
	s, h := newInited(t, SuperblockSize/4)
	require.Equal(t, 3, h.Size())
	h.Alloc()

	slack := unsafe.Add(s.Pointer(), HeaderSize+3*(SuperblockSize/4))
	testutil.ExpectFatal(t, func() {
		h.Free(slack)
	}, "outside block range")
}

func TestHeader_FreeMisaligned(t *testing.T) {
	_, h := newInited(t, testBlockSize)
	p := h.Alloc()

	testutil.ExpectFatal(t, func() {
		h.Free(unsafe.Add(p, 8))
	}, "misaligned")
}

func TestHeader_InitBadBlockSize(t *testing.T) {
	for _, bs := range []uintptr{0, 4, 12, MaxBlockSize + 8} {
		t.Run(fmt.Sprintf("size_%d", bs), func(t *testing.T) {
			s := newSuperblock(t)
			testutil.ExpectFatal(t, func() {
				s.Header().Init(bs)
			}, "bad block size")
		})
	}
}

// Plain Init does not track liveness: an in-range, aligned block
// freed twice while others are still out is accepted.
func TestHeader_DoubleFreeUndetectedByInit(t *testing.T) {
	_, h := newInited(t, testBlockSize)
	a := h.Alloc()
	h.Alloc()

	h.Free(a)
	h.Free(a)
	assert.Zero(t, h.BlocksAllocated())
}

func TestHeader_CheckedDoubleFree(t *testing.T) {
	s := newSuperblock(t)
	h := s.Header()
	h.InitChecked(testBlockSize)
	require.True(t, h.Checked())

	a := h.Alloc()
	h.Alloc()
	h.Free(a)

	testutil.ExpectFatal(t, func() {
		h.Free(a)
	}, "not checked out")
}

func TestHeader_CheckedNeverAllocated(t *testing.T) {
	s := newSuperblock(t)
	h := s.Header()
	h.InitChecked(testBlockSize)
	a := h.Alloc()

	testutil.ExpectFatal(t, func() {
		h.Free(unsafe.Add(a, 10*testBlockSize))
	}, "not checked out")
}

func TestHeader_CheckedLoad(t *testing.T) {
	s := newSuperblock(t)
	s.Header().InitChecked(testBlockSize)
	loadRound(t, s, rand.New(rand.NewSource(7)))

	// Reinit in checked mode must forget the old live bits.
	s.Header().InitChecked(256)
	loadRound(t, s, rand.New(rand.NewSource(8)))
}

func TestHeader_RandomOrderFree(t *testing.T) {
	_, h := newInited(t, testBlockSize)

	blocks := make([]unsafe.Pointer, 0, 100)
	for i := 0; i < 100; i++ {
		blocks = append(blocks, h.Alloc())
		require.Equal(t, i+1, h.BlocksAllocated())
	}

	r := rand.New(rand.NewSource(42))
	r.Shuffle(len(blocks), func(i, j int) { blocks[i], blocks[j] = blocks[j], blocks[i] })
	for i, p := range blocks {
		h.Free(p)
		require.Equal(t, 99-i, h.BlocksAllocated())
	}
	assert.True(t, h.Empty())
}

func TestHeader_Reinit(t *testing.T) {
	_, h := newInited(t, testBlockSize)
	allocAll(t, h)
	require.Equal(t, h.Size(), h.BlocksAllocated())

	h.Init(256)
	assert.Zero(t, h.BlocksAllocated())
	assert.True(t, h.Empty())
	assert.Equal(t, BlocksFor(256), h.Size())
	allocAll(t, h)
}

func TestHeader_Load(t *testing.T) {
	s, _ := newInited(t, testBlockSize)
	loadRound(t, s, rand.New(rand.NewSource(1)))
}

func TestHeader_ReuseLoad(t *testing.T) {
	s, h := newInited(t, testBlockSize)
	r := rand.New(rand.NewSource(2))
	loadRound(t, s, r)
	h.Init(testBlockSize * 8)
	loadRound(t, s, r)
	h.Init(testBlockSize * 32)
	loadRound(t, s, r)
}

func TestHeader_LargeBlockReuse(t *testing.T) {
	s, h := newInited(t, testBlockSize)
	r := rand.New(rand.NewSource(3))
	loadRound(t, s, r)
	h.Init(SuperblockSize / 4)
	loadRound(t, s, r)
	h.Init(SuperblockSize / 2)
	loadRound(t, s, r)
	h.Init(testBlockSize)
	loadRound(t, s, r)
}

func TestHeader_Owner(t *testing.T) {
	_, h := newInited(t, testBlockSize)
	h.SetOwner(7)
	assert.Equal(t, OwnerID(7), h.Owner())

	// Init does not touch ownership.
	h.Init(64)
	assert.Equal(t, OwnerID(7), h.Owner())
	h.SetOwner(NoOwner)
	assert.Equal(t, NoOwner, h.Owner())
}
