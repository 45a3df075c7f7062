// Package bis implements the branch instruction stack: a 2-deep FIFO
// recording every unresolved speculative conditional branch and which of
// the two rename/free-list checkpoint slots holds its pre-branch
// snapshot.
package bis

// Capacity is the number of outstanding unresolved branches the machine
// tracks at once.
const Capacity = 2

// Entry binds one speculative branch to its ROB slot and checkpoint slot.
type Entry struct {
	PC             uint32
	ROBIndex       int
	CheckpointSlot int
	Seq            uint64 // monotonic dispatch order, used to age-compare flushes
}

// BIS is the 2-entry circular branch instruction stack.
type BIS struct {
	entries [Capacity]Entry
	head    int
	tail    int
	size    int
}

// New returns an empty BIS.
func New() *BIS {
	return &BIS{head: -1, tail: -1}
}

func (b *BIS) Size() int   { return b.size }
func (b *BIS) Full() bool  { return b.size == Capacity }
func (b *BIS) Empty() bool { return b.size == 0 }

// Head returns a pointer to the oldest unresolved branch, or nil if empty.
func (b *BIS) Head() *Entry {
	if b.Empty() {
		return nil
	}
	return &b.entries[b.head]
}

// Push appends a new entry, returning its slot index. ok is false if the
// BIS already tracks Capacity unresolved branches.
func (b *BIS) Push(e Entry) (idx int, ok bool) {
	if b.Full() {
		return -1, false
	}
	if b.Empty() {
		b.head, b.tail = 0, 0
	} else {
		b.tail = (b.tail + 1) % Capacity
	}
	b.entries[b.tail] = e
	b.size++
	return b.tail, true
}

// Pop removes the head entry, called when its branch retires.
func (b *BIS) Pop() {
	if b.Empty() {
		return
	}
	if b.head == b.tail {
		b.head, b.tail = -1, -1
		b.size = 0
		return
	}
	b.head = (b.head + 1) % Capacity
	b.size--
}

// RewindTo discards every entry younger than the one at idx, leaving idx
// as the new tail (the entry at idx itself is kept).
func (b *BIS) RewindTo(idx int) {
	if b.Empty() {
		return
	}
	if idx == b.head {
		b.tail = idx
		b.size = 1
		return
	}
	b.tail = idx
	b.size = 2
}

// Occupied returns every occupied slot index in head-to-tail order.
func (b *BIS) Occupied() []int {
	if b.Empty() {
		return nil
	}
	if b.size == 1 {
		return []int{b.head}
	}
	return []int{b.head, b.tail}
}

// At returns a pointer to the entry at idx.
func (b *BIS) At(idx int) *Entry { return &b.entries[idx] }

// TailIndex returns the index of the most recently pushed (youngest
// unresolved) branch, or -1 if empty.
func (b *BIS) TailIndex() int { return b.tail }
