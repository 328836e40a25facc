// Package format holds the address arithmetic shared by the superblock layer.
// Everything here works on uintptr values and never dereferences memory.
package format

// Alignment utilities. All alignments must be powers of two.

// IsPow2 reports whether n is a non-zero power of two.
func IsPow2(n uintptr) bool {
	return n != 0 && n&(n-1) == 0
}

// AlignUp returns n aligned up to the next multiple of align.
//
// Example:
//
//	AlignUp(1, 8)      = 8
//	AlignUp(8, 8)      = 8
//	AlignUp(9, 16)     = 16
//	AlignUp(70000, 65536) = 131072
func AlignUp(n, align uintptr) uintptr {
	return (n + align - 1) &^ (align - 1)
}

// AlignDown returns n aligned down to the previous multiple of align.
func AlignDown(n, align uintptr) uintptr {
	return n &^ (align - 1)
}

// IsAligned reports whether n is a multiple of align.
func IsAligned(n, align uintptr) bool {
	return n&(align-1) == 0
}

// MulOverflowSafe multiplies a and b, returning ok = false when the result
// would overflow uintptr. Used for count * SuperblockSize batch lengths.
func MulOverflowSafe(a, b uintptr) (uintptr, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	if a > ^uintptr(0)/b {
		return 0, false
	}
	return a * b, true
}
