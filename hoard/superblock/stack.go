package superblock

import (
	"unsafe"

	"github.com/joshuapare/hoardkit/internal/fatal"
)

// Stack is a LIFO of superblocks linked through their own headers, so
// pushing never allocates. The zero value is an empty stack.
//
// A superblock may sit on at most one Stack at a time. Stack is not safe
// for concurrent use.
type Stack struct {
	head unsafe.Pointer
	size int
}

// Push places s on top of the stack.
func (st *Stack) Push(s Superblock) {
	if s.IsNil() {
		fatal.Failf("superblock: push of nil superblock")
	}
	s.Header().next = st.head
	st.head = s.p
	st.size++
}

// Pop removes and returns the most recently pushed superblock.
func (st *Stack) Pop() Superblock {
	if st.head == nil {
		fatal.Failf("superblock: pop on empty stack")
	}
	s := Superblock{p: st.head}
	h := s.Header()
	st.head = h.next
	h.next = nil
	st.size--
	return s
}

// IsEmpty reports whether the stack holds no superblocks.
func (st *Stack) IsEmpty() bool { return st.head == nil }

// Size is the number of superblocks on the stack.
func (st *Stack) Size() int { return st.size }
