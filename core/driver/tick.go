package driver

import (
	"github.com/apexsim/apex/core/arch"
	"github.com/apexsim/apex/core/fu"
	"github.com/apexsim/apex/core/iq"
	"github.com/apexsim/apex/core/lsq"
	"github.com/apexsim/apex/isa"
)

// Tick advances the machine by one cycle, processing stages back-to-front
// so that a value broadcast earlier in the tick (PRF write, IQ/LSQ
// forwarding) is visible to stages that run later in the very same tick —
// Issue, in particular, sees every broadcast Memory/Branch/MUL/INT produced
// this cycle. Every other stage boundary carries the usual one-cycle
// latency via the cur/next latch pairs swapped in at the end.
func (p *Pipeline) Tick() {
	if p.halted {
		return
	}

	p.retire()
	p.memory()
	p.doBranch()
	p.doMul()
	p.doInt()
	p.issue()
	dispatched := p.dispatch()
	p.fetch(dispatched)

	p.int1, p.int2 = p.nextInt1, p.nextInt2
	p.mul1, p.mul2, p.mul3 = p.nextMul1, p.nextMul2, p.nextMul3
	p.br1 = p.nextBr1
	p.ifid = p.nextIfid

	p.cycle++
}

// fetch reads one instruction per cycle from the code image at pc,
// consulting the BTB for a prediction. It stalls (refetching the same
// instruction next cycle) when dispatch could not accept the instruction
// currently latched, or when fetch/decode is frozen (HALT dispatched, or a
// JUMP dispatched and awaiting resolution).
func (p *Pipeline) fetch(dispatchAccepted bool) {
	if p.freezeFetchDecode {
		p.nextIfid = ifidLatch{}
		return
	}
	if p.ifid.Valid && !dispatchAccepted {
		p.nextIfid = p.ifid
		return
	}

	idx, ok := p.index[p.pc]
	if !ok {
		p.nextIfid = ifidLatch{}
		return
	}
	inst := p.prog[idx]

	predictedTaken := false
	predictedTarget := p.pc + arch.Stride
	if inst.Op.IsBranch() {
		if entry, found := p.btbT.Lookup(p.pc); found {
			predictedTaken = entry.History
			if predictedTaken {
				predictedTarget = entry.Target
			}
		}
	}

	p.nextIfid = ifidLatch{Valid: true, Inst: inst, PredictedTaken: predictedTaken, PredictedTarget: predictedTarget}

	if predictedTaken {
		p.pc = predictedTarget
	} else {
		p.pc += arch.Stride
	}
}

// flushBranch rolls back every effect of speculation past a mispredicted
// BZ/BNZ: IQ/LSQ entries dispatched after it are dropped (releasing their
// consumer references), the ROB/BIS tails rewind to the branch's own
// slots, the rename table and free list are restored from the branch's
// checkpoint, and any younger FU-latch occupant is cleared.
func (p *Pipeline) flushBranch(bisIdx, robIdx int, correctedPC uint32) {
	bEntry := p.bisQ.At(bisIdx)
	bSeq := bEntry.Seq
	slot := bEntry.CheckpointSlot

	p.dropYoungerThan(bSeq)

	p.robQ.RewindTailTo(robIdx)
	p.bisQ.RewindTo(bisIdx)
	p.rtbl.Restore(slot)

	p.redirect(correctedPC)
	p.flushes++
}

// flushJump handles the simpler JUMP case: dispatch stalls fetch/decode
// for a JUMP (§ no prediction), so nothing younger was ever dispatched and
// the flush reduces to redirecting PC and clearing the freeze.
func (p *Pipeline) flushJump(correctedPC uint32) {
	p.redirect(correctedPC)
	p.flushes++
}

func (p *Pipeline) redirect(correctedPC uint32) {
	p.pc = correctedPC
	p.ifid = ifidLatch{}
	p.nextIfid = ifidLatch{}
	p.freezeFetchDecode = false
}

// dropYoungerThan discards every IQ/LSQ entry and FU-latch occupant
// dispatched after bSeq, decrementing the PRF consumer references each one
// held on its source registers.
func (p *Pipeline) dropYoungerThan(bSeq uint64) {
	p.iqQ.FlushYounger(func(e *iq.Entry) bool {
		if e.Seq <= bSeq {
			return true
		}
		p.prfF.DecConsumer(e.Src1Tag)
		if e.Op.NeedsSrc2() {
			p.prfF.DecConsumer(e.Src2Tag)
		}
		return false
	})

	p.lsqQ.FlushYounger(func(e *lsq.Entry) bool {
		if e.Seq <= bSeq {
			return true
		}
		if e.StoreTag != isa.NoReg {
			p.prfF.DecConsumer(e.StoreTag)
		}
		return false
	})

	clear := func(l *fu.Latch) {
		if l.Valid && l.Seq > bSeq {
			p.prfF.DecConsumer(l.Src1Tag)
			if l.Op.NeedsSrc2() {
				p.prfF.DecConsumer(l.Src2Tag)
			}
			l.Clear()
		}
	}
	clear(&p.int1)
	clear(&p.int2)
	clear(&p.mul1)
	clear(&p.mul2)
	clear(&p.mul3)
}
