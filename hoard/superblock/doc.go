// Package superblock implements the fixed-size memory regions a Hoard-style
// allocator carves blocks from, and the in-place free-list allocator that
// lives at the start of each region.
//
// # Layout
//
// A superblock is SuperblockSize bytes of anonymous memory aligned to its own
// size. The Header occupies the first HeaderSize bytes; the rest is split into
// equal blocks:
//
//	+--------+---------+---------+-----+---------+-------+
//	| Header | block 0 | block 1 | ... | block N | slack |
//	+--------+---------+---------+-----+---------+-------+
//	0        HeaderSize                          N = Size()-1
//
// Because regions are self-aligned, Of recovers the superblock that owns any
// block address with a single mask.
//
// # Free list
//
// Free blocks are chained through their own first word, so bookkeeping stays
// O(1) whatever the block count. Alloc pops the head; Free validates the
// address (valid header, inside the block range, on a block boundary,
// something checked out) and pushes it back. InitChecked additionally keeps a
// per-block live bitmap in the header and rejects frees of blocks that are not
// checked out; plain Init leaves that double-free gap open.
//
// # Faults
//
// Misuse is never reported as an error. An exhausted superblock, an invalid
// free, a failed mapping or a pop from an empty Stack terminates the process
// through package fatal.
//
// # Thread Safety
//
// Header and Stack are not synchronized. A superblock has exactly one owner
// at a time and only the owner touches its header; hoard/recycle serializes
// access to the shared pool.
package superblock
