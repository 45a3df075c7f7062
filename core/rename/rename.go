// Package rename implements the architectural->physical rename table and
// the physical register free list, along with the two checkpoint slots
// used to roll both back on a branch misprediction.
package rename

import (
	"github.com/apexsim/apex/core/arch"
	"github.com/apexsim/apex/core/prf"
)

// NumCheckpoints is the number of simultaneously-outstanding speculative
// branch checkpoints the machine can hold (BIS capacity).
const NumCheckpoints = 2

// Snapshot is a saved copy of the rename table and free-list bitmap,
// captured when a conditional branch dispatches and restored if that
// branch mispredicts.
type Snapshot struct {
	Table [arch.NumRegs]int8
	Free  [prf.NumRegs]bool
}

// Table is the rename table, free list, and the two checkpoint slots.
type Table struct {
	table [arch.NumRegs]int8
	free  [prf.NumRegs]bool

	checkpoints [NumCheckpoints]Snapshot
	used        [NumCheckpoints]bool
}

// New returns a Table with architectural register a mapped 1:1 to
// physical register a (for a in [0, arch.NumRegs)), and the remaining
// physical registers on the free list.
func New() *Table {
	t := &Table{}
	for a := 0; a < arch.NumRegs; a++ {
		t.table[a] = int8(a)
	}
	for p := arch.NumRegs; p < prf.NumRegs; p++ {
		t.free[p] = true
	}
	return t
}

// Lookup returns the physical register currently mapped to architectural
// register a.
func (t *Table) Lookup(a int8) int8 {
	return t.table[a]
}

// IsFree reports whether physical register p is on the free list.
func (t *Table) IsFree(p int8) bool {
	return t.free[p]
}

// Alloc removes and returns a free physical register. ok is false if the
// free list is exhausted.
func (t *Table) Alloc() (p int8, ok bool) {
	for i, free := range t.free {
		if free {
			t.free[i] = false
			return int8(i), true
		}
	}
	return -1, false
}

// HasFree reports whether the free list holds at least one physical
// register, without allocating it.
func (t *Table) HasFree() bool {
	for _, free := range t.free {
		if free {
			return true
		}
	}
	return false
}

// Release returns p to the free list.
func (t *Table) Release(p int8) {
	if p < 0 {
		return
	}
	t.free[p] = true
}

// MapDest rewrites the rename table entry for architectural register a to
// point at the new physical register p, returning the physical register a
// previously mapped to (the caller is responsible for releasing it once
// its outstanding consumers drain to zero).
func (t *Table) MapDest(a int8, p int8) (previous int8) {
	previous = t.table[a]
	t.table[a] = p
	return previous
}

// FreeCheckpointSlot returns an unused checkpoint slot index, or -1 if
// both are occupied.
func (t *Table) FreeCheckpointSlot() int {
	for i, inUse := range t.used {
		if !inUse {
			return i
		}
	}
	return -1
}

// Checkpoint snapshots the current rename table and free list into slot.
func (t *Table) Checkpoint(slot int) {
	snap := &t.checkpoints[slot]
	snap.Table = t.table
	snap.Free = t.free
	t.used[slot] = true
}

// Restore rolls the rename table and free list back to the snapshot held
// in slot, then frees the slot. The other checkpoint slot, if occupied, is
// left untouched.
func (t *Table) Restore(slot int) {
	snap := &t.checkpoints[slot]
	t.table = snap.Table
	t.free = snap.Free
	t.used[slot] = false
}

// ReleaseCheckpoint frees slot without restoring it, used when a branch
// retires having predicted correctly.
func (t *Table) ReleaseCheckpoint(slot int) {
	t.used[slot] = false
}

// Sweep returns every physical register that is currently not referenced
// by the rename table and has zero consumers to the free list. inFlight
// reports, for a physical register, whether some not-yet-broadcast
// in-flight instruction still targets it as a destination; such registers
// must not be swept even with zero consumers and no rename-table
// reference.
func (t *Table) Sweep(consumers func(p int8) int, inFlight func(p int8) bool) {
	referenced := make(map[int8]bool, arch.NumRegs)
	for _, p := range t.table {
		referenced[p] = true
	}
	for p := 0; p < prf.NumRegs; p++ {
		pp := int8(p)
		if t.free[p] {
			continue
		}
		if referenced[pp] {
			continue
		}
		if consumers(pp) > 0 {
			continue
		}
		if inFlight(pp) {
			continue
		}
		t.free[p] = true
	}
}
