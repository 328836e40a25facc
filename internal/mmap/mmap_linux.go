//go:build linux

package mmap

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/joshuapare/hoardkit/internal/format"
)

var pageSize = uintptr(unix.Getpagesize())

// Map implements Mapper.
//
// Alignments above the page size are satisfied by over-mapping length+align
// bytes and unmapping the unaligned head and the unused tail.
func (OS) Map(length, align uintptr) (unsafe.Pointer, error) {
	if err := checkArgs(length, align); err != nil {
		return nil, err
	}
	length = format.AlignUp(length, pageSize)
	if align <= pageSize {
		return mmapAnon(length)
	}

	span := length + align
	if span < length {
		return nil, ErrBadLength
	}
	raw, err := mmapAnon(span)
	if err != nil {
		return nil, err
	}
	head := format.AlignUp(uintptr(raw), align) - uintptr(raw)
	tail := span - head - length
	if head > 0 {
		if err := unix.MunmapPtr(raw, head); err != nil {
			_ = unix.MunmapPtr(raw, span)
			return nil, fmt.Errorf("mmap: trim head of %d bytes: %w", head, err)
		}
	}
	base := unsafe.Add(raw, head)
	if tail > 0 {
		if err := unix.MunmapPtr(unsafe.Add(base, length), tail); err != nil {
			_ = unix.MunmapPtr(base, length+tail)
			return nil, fmt.Errorf("mmap: trim tail of %d bytes: %w", tail, err)
		}
	}
	return base, nil
}

// Unmap implements Mapper.
func (OS) Unmap(p unsafe.Pointer, length uintptr) error {
	if p == nil || length == 0 {
		return ErrBadLength
	}
	if err := unix.MunmapPtr(p, format.AlignUp(length, pageSize)); err != nil {
		return fmt.Errorf("mmap: unmap %d bytes at %p: %w", length, p, err)
	}
	return nil
}

func mmapAnon(length uintptr) (unsafe.Pointer, error) {
	p, err := unix.MmapPtr(-1, 0, nil, length,
		unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANONYMOUS)
	if err != nil {
		return nil, fmt.Errorf("mmap: map %d bytes: %w", length, err)
	}
	return p, nil
}
