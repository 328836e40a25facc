//go:build !linux

package mmap

import "unsafe"

// Map implements Mapper. Only Linux is wired to the OS today.
func (OS) Map(length, align uintptr) (unsafe.Pointer, error) {
	if err := checkArgs(length, align); err != nil {
		return nil, err
	}
	return nil, ErrUnsupported
}

// Unmap implements Mapper.
func (OS) Unmap(unsafe.Pointer, uintptr) error {
	return ErrUnsupported
}
