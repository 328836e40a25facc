package recycle

import (
	"sync"
	"unsafe"

	"github.com/joshuapare/hoardkit/hoard/superblock"
	"github.com/joshuapare/hoardkit/internal/fatal"
	"github.com/joshuapare/hoardkit/internal/format"
	"github.com/joshuapare/hoardkit/internal/trace"
)

// Pool is the pooled Manager: a capped, batch-refilled stack of idle
// superblocks guarded by one mutex.
type Pool struct {
	mu       sync.Mutex
	stack    superblock.Stack
	live     int
	maps     int
	unmapped int
	closed   bool

	batch   int
	maxFree int
	mapper  superblock.Mapper
}

// NewPool maps an initial batch and returns the pool.
func NewPool(opts Options) *Pool {
	o := opts.withDefaults()
	p := &Pool{
		batch:   o.BatchCount,
		maxFree: o.MaxFree,
		mapper:  o.Mapper,
	}

	p.mu.Lock()
	p.mapBatch(p.batch)
	p.mu.Unlock()

	trace.Event("SuperblockManager: Construct",
		trace.Count("batch", p.batch), trace.Count("max_free", p.maxFree))
	return p
}

// GetSuperblock implements Manager.
func (p *Pool) GetSuperblock() superblock.Superblock {
	trace.Event("SuperblockManager: GetSuperblock")
	p.mu.Lock()
	defer p.mu.Unlock()

	p.checkOpen("get")
	if p.stack.IsEmpty() {
		p.mapBatch(p.batch)
	}
	return p.stack.Pop()
}

// AddSuperblock implements Manager.
func (p *Pool) AddSuperblock(s superblock.Superblock) {
	trace.Event("SuperblockManager: AddSuperblock", trace.Addr("superblock", s.Pointer()))
	p.mu.Lock()
	defer p.mu.Unlock()

	p.checkOpen("add")
	if s.IsNil() {
		fatal.Failf("recycle: add of nil superblock")
	}
	s.Header().SetOwner(superblock.NoOwner)

	if p.stack.Size() < p.maxFree {
		trace.Event("SuperblockManager: Superblock Saved", trace.Addr("superblock", s.Pointer()))
		p.stack.Push(s)
	} else {
		trace.Event("SuperblockManager: Superblock Destroyed", trace.Addr("superblock", s.Pointer()))
		p.live--
		p.unmapped++
		superblock.DestroyWith(p.mapper, s)
	}
	trace.Event("SuperblockManager: superblocks alive", trace.Count("alive", p.live))
}

// Stats implements Manager.
func (p *Pool) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Stats{
		Live:     p.live,
		Cached:   p.stack.Size(),
		Maps:     p.maps,
		Unmapped: p.unmapped,
	}
}

// Close implements Manager.
func (p *Pool) Close() {
	trace.Event("SuperblockManager: Destruct")
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}
	p.closed = true
	p.live -= p.stack.Size()
	for !p.stack.IsEmpty() {
		superblock.DestroyWith(p.mapper, p.stack.Pop())
		p.unmapped++
	}
}

// mapBatch maps n superblocks in one call and pushes them all.
// The caller holds p.mu.
func (p *Pool) mapBatch(n int) {
	trace.Event("SuperblockManager: MapNewSuperblocks", trace.Count("count", n))
	length, ok := format.MulOverflowSafe(uintptr(n), superblock.SuperblockSize)
	if !ok {
		fatal.Failf("recycle: batch of %d superblocks overflows the address space", n)
	}
	base, err := p.mapper.Map(length, superblock.SuperblockSize)
	if err != nil {
		fatal.Failf("recycle: map %d superblocks: %v", n, err)
	}
	for i := 0; i < n; i++ {
		p.stack.Push(superblock.Place(unsafe.Add(base, i*superblock.SuperblockSize)))
	}
	p.live += n
	p.maps++
	trace.Event("SuperblockManager: superblocks alive", trace.Count("alive", p.live))
}

func (p *Pool) checkOpen(op string) {
	if p.closed {
		fatal.Failf("recycle: %s on closed pool", op)
	}
}
