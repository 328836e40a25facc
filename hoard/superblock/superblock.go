package superblock

import (
	"fmt"
	"unsafe"

	"github.com/joshuapare/hoardkit/internal/fatal"
	"github.com/joshuapare/hoardkit/internal/format"
	"github.com/joshuapare/hoardkit/internal/mmap"
)

// Mapper is a type alias for the canonical mapping interface in internal/mmap.
type Mapper = mmap.Mapper

// Superblock is the address of one SuperblockSize-aligned region. The zero
// value is the nil superblock. Two Superblocks are equal when they name the
// same region.
type Superblock struct {
	p unsafe.Pointer
}

// Make maps one fresh superblock from the operating system. Its header is
// not yet valid; call Header().Init before allocating.
func Make() Superblock {
	return MakeWith(mmap.Default)
}

// MakeWith is Make using m for the mapping.
func MakeWith(m Mapper) Superblock {
	p, err := m.Map(SuperblockSize, SuperblockSize)
	if err != nil {
		fatal.Failf("superblock: make: %v", err)
	}
	return Place(p)
}

// Destroy unmaps s. The region must have come from Make or from a batch
// mapping sliced with Place.
func Destroy(s Superblock) {
	DestroyWith(mmap.Default, s)
}

// DestroyWith is Destroy using m for the unmapping.
func DestroyWith(m Mapper, s Superblock) {
	if s.IsNil() {
		fatal.Failf("superblock: destroy of nil superblock")
	}
	if err := m.Unmap(s.p, SuperblockSize); err != nil {
		fatal.Failf("superblock: destroy %s: %v", s, err)
	}
}

// Place constructs a superblock with an invalid header at p, which must be
// SuperblockSize-aligned mapped memory of at least SuperblockSize bytes.
func Place(p unsafe.Pointer) Superblock {
	if p == nil || !format.IsAligned(uintptr(p), SuperblockSize) {
		fatal.Failf("superblock: place at %p: not %d-byte aligned", p, SuperblockSize)
	}
	*(*Header)(p) = Header{}
	return Superblock{p: p}
}

// Of returns the superblock containing the block at p.
func Of(p unsafe.Pointer) Superblock {
	off := uintptr(p) & (SuperblockSize - 1)
	return Superblock{p: unsafe.Add(p, -int(off))}
}

// Header returns the header embedded at the start of s.
func (s Superblock) Header() *Header {
	return (*Header)(s.p)
}

// Addr is the base address of s.
func (s Superblock) Addr() uintptr { return uintptr(s.p) }

// Pointer is the base address of s as an unsafe.Pointer.
func (s Superblock) Pointer() unsafe.Pointer { return s.p }

// IsNil reports whether s is the zero Superblock.
func (s Superblock) IsNil() bool { return s.p == nil }

func (s Superblock) String() string {
	return fmt.Sprintf("superblock@%#x", uintptr(s.p))
}
