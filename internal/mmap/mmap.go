// Package mmap provides aligned anonymous memory mappings for the superblock
// layer. Memory obtained here lives outside the Go heap: the garbage collector
// neither scans nor moves it, so it may hold raw links between blocks.
package mmap

import (
	"errors"
	"unsafe"

	"github.com/joshuapare/hoardkit/internal/format"
)

var (
	// ErrUnsupported indicates the platform has no anonymous mapping support wired in.
	ErrUnsupported = errors.New("mmap: anonymous mapping not supported on this platform")

	// ErrBadAlign indicates an alignment that is not a power of two.
	ErrBadAlign = errors.New("mmap: alignment must be a power of two")

	// ErrBadLength indicates a zero or overflowing mapping length.
	ErrBadLength = errors.New("mmap: bad mapping length")
)

// Mapper maps and unmaps anonymous, read-write memory.
//
// Map returns the base of a zero-filled region of at least length bytes
// whose address is a multiple of align. Unmap releases [p, p+length); the
// range may be any page-aligned sub-range of an earlier mapping.
//
// Implementations must be safe for concurrent use.
type Mapper interface {
	Map(length, align uintptr) (unsafe.Pointer, error)
	Unmap(p unsafe.Pointer, length uintptr) error
}

// OS maps memory straight from the operating system.
type OS struct{}

// Default is the mapper used when none is configured.
var Default Mapper = OS{}

func checkArgs(length, align uintptr) error {
	if length == 0 {
		return ErrBadLength
	}
	if !format.IsPow2(align) {
		return ErrBadAlign
	}
	return nil
}
