package recycle

import (
	"sync/atomic"

	"github.com/joshuapare/hoardkit/hoard/superblock"
	"github.com/joshuapare/hoardkit/internal/fatal"
	"github.com/joshuapare/hoardkit/internal/trace"
)

// Direct is the non-pooled Manager: every GetSuperblock maps and every
// AddSuperblock unmaps. It relies on the mapper being safe for concurrent
// use and takes no lock of its own.
type Direct struct {
	mapper   superblock.Mapper
	live     atomic.Int64
	maps     atomic.Int64
	unmapped atomic.Int64
	closed   atomic.Bool
}

// NewDirect returns a Direct manager. Only opts.Mapper is consulted.
func NewDirect(opts Options) *Direct {
	return &Direct{mapper: opts.withDefaults().Mapper}
}

// GetSuperblock implements Manager.
func (d *Direct) GetSuperblock() superblock.Superblock {
	d.checkOpen("get")
	s := superblock.MakeWith(d.mapper)
	d.maps.Add(1)
	d.live.Add(1)
	trace.Event("SuperblockManager: GetSuperblock", trace.Addr("superblock", s.Pointer()))
	return s
}

// AddSuperblock implements Manager.
func (d *Direct) AddSuperblock(s superblock.Superblock) {
	d.checkOpen("add")
	if s.IsNil() {
		fatal.Failf("recycle: add of nil superblock")
	}
	trace.Event("SuperblockManager: AddSuperblock", trace.Addr("superblock", s.Pointer()))
	s.Header().SetOwner(superblock.NoOwner)
	superblock.DestroyWith(d.mapper, s)
	d.live.Add(-1)
	d.unmapped.Add(1)
}

// Stats implements Manager.
func (d *Direct) Stats() Stats {
	return Stats{
		Live:     int(d.live.Load()),
		Maps:     int(d.maps.Load()),
		Unmapped: int(d.unmapped.Load()),
	}
}

// Close implements Manager. Direct caches nothing, so Close only marks the
// manager closed.
func (d *Direct) Close() {
	d.closed.Store(true)
}

func (d *Direct) checkOpen(op string) {
	if d.closed.Load() {
		fatal.Failf("recycle: %s on closed manager", op)
	}
}
