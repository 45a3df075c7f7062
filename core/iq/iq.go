// Package iq implements the issue queue: an unordered pool of slots
// holding dispatched-but-not-yet-issued instructions together with their
// source tags/values/readiness bits, scanned once per cycle to select the
// oldest ready instruction per functional-unit class.
package iq

import "github.com/apexsim/apex/isa"

// Capacity is the number of IQ slots.
const Capacity = 8

// Entry is one issue queue entry.
type Entry struct {
	Occupied bool

	Op    isa.Opcode
	Class isa.FUClass
	PC    uint32
	Imm   int32

	Src1Tag   int8
	Src1Value int32
	Src1Ready bool

	Src2Tag   int8
	Src2Value int32
	Src2Ready bool

	Dest int8 // destination physical register, or isa.NoReg

	PredictedTaken  bool
	PredictedTarget uint32

	ROBIndex int
	LSQIndex int // -1 if not a memory op
	BISIndex int // -1 if not speculative

	Seq uint64 // dispatch order, used for flush age comparisons
}

// Ready reports whether every source this opcode requires for issue is
// valid.
func (e *Entry) Ready() bool {
	if e.Op.NeedsSrc1() && !e.Src1Ready {
		return false
	}
	if e.Op.NeedsSrc2() && !e.Src2Ready {
		return false
	}
	return true
}

// IQ is the 8-slot unordered issue queue.
type IQ struct {
	Slots [Capacity]Entry
}

// New returns an empty issue queue.
func New() *IQ {
	return &IQ{}
}

// FreeSlot returns the index of a free slot, or -1 if full.
func (q *IQ) FreeSlot() int {
	for i := range q.Slots {
		if !q.Slots[i].Occupied {
			return i
		}
	}
	return -1
}

// Full reports whether every slot is occupied.
func (q *IQ) Full() bool {
	return q.FreeSlot() == -1
}

// Insert places e into slot idx, marking it occupied.
func (q *IQ) Insert(idx int, e Entry) {
	e.Occupied = true
	q.Slots[idx] = e
}

// Free clears slot idx.
func (q *IQ) Free(idx int) {
	q.Slots[idx] = Entry{}
}

// SelectOldestReady scans every occupied slot matching class and returns
// the index of the one with the smallest PC among ready candidates, or -1
// if none are ready.
func (q *IQ) SelectOldestReady(class isa.FUClass) int {
	best := -1
	for i := range q.Slots {
		e := &q.Slots[i]
		if !e.Occupied || e.Class != class {
			continue
		}
		if !e.Ready() {
			continue
		}
		if best == -1 || e.PC < q.Slots[best].PC {
			best = i
		}
	}
	return best
}

// Broadcast sets the ready bit and value of every slot whose Src1Tag or
// Src2Tag matches tag, simulating the same-cycle forwarding sweep. A BZ/BNZ
// entry's src1 tracks its producer's zero flag rather than its value, so
// zero carries that bit for such entries.
func (q *IQ) Broadcast(tag int8, value int32, zero bool) {
	for i := range q.Slots {
		e := &q.Slots[i]
		if !e.Occupied {
			continue
		}
		if !e.Src1Ready && e.Src1Tag == tag {
			if e.Op.IsBranch() {
				e.Src1Value = boolToInt32(zero)
			} else {
				e.Src1Value = value
			}
			e.Src1Ready = true
		}
		if !e.Src2Ready && e.Src2Tag == tag {
			e.Src2Value = value
			e.Src2Ready = true
		}
	}
}

func boolToInt32(b bool) int32 {
	if b {
		return 1
	}
	return 0
}

// FlushYounger frees every occupied slot whose dispatch sequence is
// younger than (or speculatively dependent on) the flushing branch.
func (q *IQ) FlushYounger(keep func(e *Entry) bool) {
	for i := range q.Slots {
		e := &q.Slots[i]
		if !e.Occupied {
			continue
		}
		if !keep(e) {
			q.Slots[i] = Entry{}
		}
	}
}
