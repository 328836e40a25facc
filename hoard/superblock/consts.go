package superblock

import "unsafe"

const (
	// SuperblockSize is the byte size and alignment of every superblock.
	SuperblockSize = 64 << 10

	// BlockAlign is the granularity of block sizes. Every block must hold
	// one free-list link at an aligned address.
	BlockAlign = 8

	// MinBlockSize is the smallest block size Init accepts.
	MinBlockSize = BlockAlign

	// HeaderSize is the space reserved for the Header at offset zero,
	// rounded so block storage starts 16-byte aligned.
	HeaderSize = (unsafe.Sizeof(Header{}) + 15) &^ 15

	// MaxBlockSize is the largest block size Init accepts: one block
	// spanning all of block storage.
	MaxBlockSize = SuperblockSize - HeaderSize
)

// maxBlocks bounds the block count at MinBlockSize; it sizes the live bitmap.
const (
	maxBlocks = SuperblockSize / MinBlockSize
	liveWords = maxBlocks / 64
)

// BlocksFor returns how many blocks of blockSize fit in one superblock.
func BlocksFor(blockSize uintptr) int {
	if blockSize == 0 || blockSize > MaxBlockSize {
		return 0
	}
	return int((SuperblockSize - HeaderSize) / blockSize)
}
