package testutil

import (
	"sync"
	"unsafe"

	"github.com/joshuapare/hoardkit/internal/mmap"
)

// CountingMapper wraps a Mapper and records every call. It is safe for
// concurrent use.
type CountingMapper struct {
	Inner mmap.Mapper // nil means mmap.Default

	mu          sync.Mutex
	maps        int
	unmaps      int
	mappedBytes uintptr
	unmapBytes  uintptr
}

// Map implements mmap.Mapper.
func (c *CountingMapper) Map(length, align uintptr) (unsafe.Pointer, error) {
	p, err := c.inner().Map(length, align)
	if err == nil {
		c.mu.Lock()
		c.maps++
		c.mappedBytes += length
		c.mu.Unlock()
	}
	return p, err
}

// Unmap implements mmap.Mapper.
func (c *CountingMapper) Unmap(p unsafe.Pointer, length uintptr) error {
	err := c.inner().Unmap(p, length)
	if err == nil {
		c.mu.Lock()
		c.unmaps++
		c.unmapBytes += length
		c.mu.Unlock()
	}
	return err
}

// Maps returns the number of successful Map calls.
func (c *CountingMapper) Maps() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.maps
}

// Unmaps returns the number of successful Unmap calls.
func (c *CountingMapper) Unmaps() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.unmaps
}

// OutstandingBytes is mapped bytes minus unmapped bytes.
func (c *CountingMapper) OutstandingBytes() uintptr {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mappedBytes - c.unmapBytes
}

func (c *CountingMapper) inner() mmap.Mapper {
	if c.Inner == nil {
		return mmap.Default
	}
	return c.Inner
}

// FailingMapper refuses every Map call with Err.
type FailingMapper struct {
	Err error
}

// Map implements mmap.Mapper.
func (f FailingMapper) Map(uintptr, uintptr) (unsafe.Pointer, error) { return nil, f.Err }

// Unmap implements mmap.Mapper.
func (f FailingMapper) Unmap(unsafe.Pointer, uintptr) error { return f.Err }
