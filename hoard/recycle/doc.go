// Package recycle is the process-wide cache of idle superblocks that sits
// between per-thread heaps and the operating system.
//
// # Overview
//
// Heaps take superblocks with GetSuperblock and hand empty ones back with
// AddSuperblock. Two strategies implement Manager:
//
//   - Pool: keeps returned superblocks on an intrusive stack. When the stack
//     runs dry it maps BatchCount superblocks in one call and slices the
//     mapping. Returns beyond MaxFree cached superblocks are unmapped at
//     once, which bounds idle memory ("blowup").
//   - Direct: maps one superblock per GetSuperblock and unmaps on every
//     AddSuperblock. No cache.
//
// # Usage Example
//
//	m := recycle.New(recycle.Options{})
//	defer m.Close()
//
//	s := m.GetSuperblock()
//	h := s.Header()
//	h.SetOwner(heapID)
//	h.Init(64)
//	p := h.Alloc()
//	// ...
//	h.Free(p)
//	if h.Empty() {
//	    m.AddSuperblock(s) // clears the owner
//	}
//
// # Thread Safety
//
// Every Manager method is safe for concurrent use. Pool holds one mutex for
// the whole call, mapping and unmapping included.
//
// # Faults
//
// A failed mapping, a nil superblock or use after Close terminates the
// process through package fatal.
package recycle
