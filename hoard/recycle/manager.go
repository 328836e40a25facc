package recycle

import "github.com/joshuapare/hoardkit/hoard/superblock"

// Manager hands out superblocks and takes back empty ones.
//
// Implementations:
//   - Pool: batch-mapping, capped cache
//   - Direct: one mapping per superblock, no cache
type Manager interface {
	// GetSuperblock returns a superblock owned by nobody. It never returns
	// the nil superblock.
	GetSuperblock() superblock.Superblock

	// AddSuperblock takes s back and clears its owner. The caller must not
	// touch s afterwards.
	AddSuperblock(s superblock.Superblock)

	// Stats returns a snapshot of the manager's counters.
	Stats() Stats

	// Close unmaps every cached superblock. Superblocks still held by heaps
	// are not affected. Close is idempotent.
	Close()
}

// Stats is a point-in-time view of a Manager.
type Stats struct {
	Live     int // Superblocks mapped and not yet unmapped
	Cached   int // Superblocks idle in the cache
	Maps     int // Mapping calls issued
	Unmapped int // Superblocks released to the operating system
}

// InUse is the number of live superblocks held outside the cache.
func (s Stats) InUse() int { return s.Live - s.Cached }

// New returns the Manager selected by opts.Mode.
func New(opts Options) Manager {
	if opts.Mode == ModeDirect {
		return NewDirect(opts)
	}
	return NewPool(opts)
}
