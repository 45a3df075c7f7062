package driver

import (
	"github.com/apexsim/apex/core/rob"
	"github.com/apexsim/apex/isa"
)

// retire commits the ROB head once its result is valid: writing the
// architectural register or memory cell, releasing BIS/checkpoint
// resources for a retiring branch, and running the opportunistic
// free-list sweep.
func (p *Pipeline) retire() {
	if p.robQ.Empty() {
		return
	}
	e := p.robQ.At(p.robQ.HeadIndex())
	if !e.ResultValid {
		return
	}

	if e.Op == isa.OpHALT {
		p.robQ.Pop()
		p.retired++
		p.arch.Cycle = p.cycle
		p.arch.Retired = p.retired
		p.halted = true
		p.exitReason = "HALT"
		return
	}

	if e.Op.IsMemory() {
		lsqE := p.lsqQ.At(e.LSQIndex)
		if e.Op.IsStore() {
			p.arch.WriteMem(lsqE.Addr, lsqE.StoreValue)
			p.prfF.DecConsumer(lsqE.StoreTag)
		}
		p.lsqQ.Pop()
	}

	if e.Op.IsBranch() {
		bisE := p.bisQ.At(e.BISIndex)
		if !e.Mispredicted {
			p.rtbl.ReleaseCheckpoint(bisE.CheckpointSlot)
		}
		p.bisQ.Pop()
	}

	if e.Op.WritesDest() {
		val, _ := p.prfF.Read(e.PhysDest)
		p.arch.WriteReg(e.ArchDest, val)
	}

	p.robQ.Pop()
	p.retired++
	p.arch.Cycle = p.cycle
	p.arch.Retired = p.retired

	p.rtbl.Sweep(p.prfF.ConsumerCount, p.inFlightAsDest)
}

// inFlightAsDest reports whether any not-yet-retired instruction still
// names physical register tag as its destination, anywhere in the
// pipeline: the ROB (not yet committed), the IQ (not yet issued), the FU
// latches (issued but not yet broadcast), or the LSQ (a load not yet
// retired).
func (p *Pipeline) inFlightAsDest(tag int8) bool {
	if tag == isa.NoReg {
		return false
	}

	if !p.robQ.Empty() {
		idx := p.robQ.HeadIndex()
		for i := 0; i < p.robQ.Size(); i++ {
			if p.robQ.At(idx).PhysDest == tag {
				return true
			}
			idx = (idx + 1) % rob.Capacity
		}
	}

	for i := range p.iqQ.Slots {
		e := &p.iqQ.Slots[i]
		if e.Occupied && e.Dest == tag {
			return true
		}
	}

	for _, l := range []struct{ Valid bool; Dest int8 }{
		{p.int1.Valid, p.int1.Dest}, {p.int2.Valid, p.int2.Dest},
		{p.mul1.Valid, p.mul1.Dest}, {p.mul2.Valid, p.mul2.Dest}, {p.mul3.Valid, p.mul3.Dest},
	} {
		if l.Valid && l.Dest == tag {
			return true
		}
	}

	for _, idx := range p.lsqQ.Occupied() {
		if p.lsqQ.At(idx).Dest == tag {
			return true
		}
	}

	return false
}
