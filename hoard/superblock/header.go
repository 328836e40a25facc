package superblock

import (
	"unsafe"

	"github.com/bits-and-blooms/bitset"

	"github.com/joshuapare/hoardkit/internal/fatal"
	"github.com/joshuapare/hoardkit/internal/format"
)

// OwnerID identifies the heap that currently holds a superblock.
//
// Headers live outside the Go heap where the collector does not look, so the
// owner is recorded as an id rather than a pointer.
type OwnerID uint64

// NoOwner marks a superblock held by the recycle pool.
const NoOwner OwnerID = 0

// Header is the allocator state embedded at offset zero of a superblock.
// A Header is only ever reached through Superblock.Header; it is never
// declared as a Go variable.
type Header struct {
	blockSize uintptr
	total     int
	allocated int
	free      unsafe.Pointer // first free block; its first word links to the next
	next      unsafe.Pointer // Stack link while parked in a pool
	owner     OwnerID
	valid     bool
	checked   bool
	live      [liveWords]uint64 // per-block checked-out bits, InitChecked only
}

// Init prepares the superblock to serve blocks of blockSize bytes. Any
// previous state, including blocks still checked out, is discarded.
func (h *Header) Init(blockSize uintptr) {
	h.init(blockSize, false)
}

// InitChecked is Init plus per-block live tracking: Free of a block that is
// not currently checked out becomes fatal even when the address is in range.
func (h *Header) InitChecked(blockSize uintptr) {
	h.init(blockSize, true)
}

func (h *Header) init(blockSize uintptr, checked bool) {
	if blockSize < MinBlockSize || blockSize > MaxBlockSize || !format.IsAligned(blockSize, BlockAlign) {
		fatal.Failf("superblock: init %p: bad block size %d (want %d..%d, multiple of %d)",
			h, blockSize, MinBlockSize, MaxBlockSize, BlockAlign)
	}
	h.blockSize = blockSize
	h.total = BlocksFor(blockSize)
	h.allocated = 0
	h.checked = checked
	if checked {
		h.liveSet().ClearAll()
	}

	// Thread the list back to front so blocks come out in address order.
	start := h.blocksStart()
	var head unsafe.Pointer
	for i := h.total - 1; i >= 0; i-- {
		p := unsafe.Add(start, uintptr(i)*blockSize)
		*(*unsafe.Pointer)(p) = head
		head = p
	}
	h.free = head
	h.valid = true
}

// Alloc checks out one block and returns its address.
func (h *Header) Alloc() unsafe.Pointer {
	if !h.valid {
		fatal.Failf("superblock: alloc on uninitialized %s", h.Superblock())
	}
	p := h.free
	if p == nil {
		fatal.Failf("superblock: alloc on exhausted %s (%d blocks of %d bytes)",
			h.Superblock(), h.total, h.blockSize)
	}
	h.free = *(*unsafe.Pointer)(p)
	h.allocated++
	if h.checked {
		h.liveSet().Set(h.index(p))
	}
	return p
}

// Free returns the block at p to the free list.
func (h *Header) Free(p unsafe.Pointer) {
	if !h.valid {
		fatal.Failf("superblock: free %p on uninitialized %s", p, h.Superblock())
	}
	start := uintptr(h.blocksStart())
	end := start + uintptr(h.total)*h.blockSize
	addr := uintptr(p)
	if addr < start || addr >= end {
		fatal.Failf("superblock: free %p outside block range [%#x, %#x)", p, start, end)
	}
	if (addr-start)%h.blockSize != 0 {
		fatal.Failf("superblock: free %p misaligned for block size %d", p, h.blockSize)
	}
	if h.allocated == 0 {
		fatal.Failf("superblock: free %p underflow, no blocks allocated in %s", p, h.Superblock())
	}
	if h.checked {
		live := h.liveSet()
		i := h.index(p)
		if !live.Test(i) {
			fatal.Failf("superblock: free %p: block %d is not checked out", p, i)
		}
		live.Clear(i)
	}

	*(*unsafe.Pointer)(p) = h.free
	h.free = p
	h.allocated--
}

// Valid reports whether Init has run since the superblock was created.
func (h *Header) Valid() bool { return h.valid }

// Checked reports whether the header was set up by InitChecked.
func (h *Header) Checked() bool { return h.checked }

// Empty reports whether no blocks are checked out.
func (h *Header) Empty() bool { return h.allocated == 0 }

// Size is the total number of blocks.
func (h *Header) Size() int { return h.total }

// BlockSize is the current block size in bytes.
func (h *Header) BlockSize() uintptr { return h.blockSize }

// BlocksAllocated is the number of blocks currently checked out.
func (h *Header) BlocksAllocated() int { return h.allocated }

// Owner returns the heap currently holding the superblock.
func (h *Header) Owner() OwnerID { return h.owner }

// SetOwner records the heap now holding the superblock.
func (h *Header) SetOwner(id OwnerID) { h.owner = id }

// Superblock returns the superblock this header is embedded in.
func (h *Header) Superblock() Superblock {
	return Superblock{p: unsafe.Pointer(h)}
}

func (h *Header) blocksStart() unsafe.Pointer {
	return unsafe.Add(unsafe.Pointer(h), HeaderSize)
}

// index converts an in-range, aligned block address to its slot number.
func (h *Header) index(p unsafe.Pointer) uint {
	return uint((uintptr(p) - uintptr(h.blocksStart())) / h.blockSize)
}

// liveSet views the header's bitmap words as a bitset without copying.
func (h *Header) liveSet() *bitset.BitSet {
	return bitset.From(h.live[:])
}
