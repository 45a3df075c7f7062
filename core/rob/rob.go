// Package rob implements the reorder buffer: a fixed-capacity circular
// FIFO that retires instructions strictly in program order.
package rob

import "github.com/apexsim/apex/isa"

// Capacity is the number of ROB slots.
const Capacity = 12

// Entry is one reorder buffer entry. Created at dispatch, mutated by
// functional units and memory issue, destroyed at retirement or flush.
type Entry struct {
	PC          uint32
	Op          isa.Opcode
	ArchDest    int8
	PhysDest    int8
	PrevPhys    int8 // the architectural destination's previous mapping
	Result       int32
	ResultValid  bool
	Exception    int8
	Mispredicted bool // set by the BRANCH FU; always true for JUMP

	LSQIndex int // -1 if this is not a memory operation
	BISIndex int // -1 if this is not a conditional branch
	Seq      uint64
}

// ROB is the 12-entry circular reorder buffer.
type ROB struct {
	entries [Capacity]Entry
	head    int
	tail    int
	size    int
}

// New returns an empty ROB.
func New() *ROB {
	return &ROB{head: -1, tail: -1}
}

// Size returns the number of occupied slots.
func (r *ROB) Size() int { return r.size }

// Full reports whether the ROB has no free slot.
func (r *ROB) Full() bool { return r.size == Capacity }

// Empty reports whether the ROB holds no entries.
func (r *ROB) Empty() bool { return r.size == 0 }

// HeadIndex returns the index of the oldest occupied slot, or -1 if empty.
func (r *ROB) HeadIndex() int { return r.head }

// TailIndex returns the index of the most recently pushed slot, or -1 if
// empty.
func (r *ROB) TailIndex() int { return r.tail }

// At returns a pointer to the entry at the given slot index for in-place
// mutation by functional units.
func (r *ROB) At(idx int) *Entry { return &r.entries[idx] }

// Head returns a pointer to the oldest entry, or nil if empty.
func (r *ROB) Head() *Entry {
	if r.Empty() {
		return nil
	}
	return &r.entries[r.head]
}

// Push appends a new entry, returning its slot index. ok is false if the
// ROB is full.
func (r *ROB) Push(e Entry) (idx int, ok bool) {
	if r.Full() {
		return -1, false
	}
	if r.Empty() {
		r.head = 0
		r.tail = 0
	} else {
		r.tail = (r.tail + 1) % Capacity
	}
	r.entries[r.tail] = e
	r.size++
	return r.tail, true
}

// Pop retires (removes) the head entry.
func (r *ROB) Pop() {
	if r.Empty() {
		return
	}
	if r.head == r.tail {
		r.head, r.tail = -1, -1
		r.size = 0
		return
	}
	r.head = (r.head + 1) % Capacity
	r.size--
}

// RewindTailTo discards every entry younger than idx, leaving idx as the
// new tail. idx must name a currently-occupied slot (the mispredicted
// branch's own ROB slot); the branch entry itself is kept.
func (r *ROB) RewindTailTo(idx int) {
	if r.Empty() {
		return
	}
	r.tail = idx
	r.size = (r.distance(r.head, idx)) + 1
}

// distance returns the number of steps from a to b walking forward
// through the circular buffer.
func (r *ROB) distance(a, b int) int {
	if b >= a {
		return b - a
	}
	return Capacity - a + b
}
