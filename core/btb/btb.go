// Package btb implements the branch target buffer: a small table mapping
// a branch's PC to its last-seen target and a 1-bit taken/not-taken
// history, consulted by fetch to redirect the PC and updated by the
// branch functional unit once the real outcome is known.
//
// spec.md leaves BTB eviction policy an open question; this implementation
// resolves it as no eviction at all (the table is program-bounded: a real
// program dispatches at most Capacity distinct branch sites in a run this
// simulator is sized for).
package btb

// Capacity is the maximum number of distinct branch PCs tracked.
const Capacity = 8

// Entry is one BTB row.
type Entry struct {
	PC      uint32
	Target  uint32
	History bool // true = predicted taken
	valid   bool
}

// BTB is the branch target buffer.
type BTB struct {
	entries [Capacity]Entry
}

// New returns an empty BTB.
func New() *BTB {
	return &BTB{}
}

// Lookup returns the entry for pc and whether it exists.
func (b *BTB) Lookup(pc uint32) (Entry, bool) {
	for i := range b.entries {
		if b.entries[i].valid && b.entries[i].PC == pc {
			return b.entries[i], true
		}
	}
	return Entry{}, false
}

// EnsureEntry inserts a not-taken entry for pc if one does not already
// exist, called at dispatch of a conditional branch. Does nothing if the
// table is full and pc is not already present.
func (b *BTB) EnsureEntry(pc uint32) {
	for i := range b.entries {
		if b.entries[i].valid && b.entries[i].PC == pc {
			return
		}
	}
	for i := range b.entries {
		if !b.entries[i].valid {
			b.entries[i] = Entry{PC: pc, History: false, valid: true}
			return
		}
	}
}

// Update records the real outcome of a resolved branch.
func (b *BTB) Update(pc uint32, taken bool, target uint32) {
	for i := range b.entries {
		if b.entries[i].valid && b.entries[i].PC == pc {
			b.entries[i].History = taken
			b.entries[i].Target = target
			return
		}
	}
	for i := range b.entries {
		if !b.entries[i].valid {
			b.entries[i] = Entry{PC: pc, Target: target, History: taken, valid: true}
			return
		}
	}
}
