package driver

import (
	"github.com/apexsim/apex/core/fu"
	"github.com/apexsim/apex/isa"
)

// issue scans the IQ for the oldest ready instruction of each functional
// unit class and, if that class's first pipeline stage is free this cycle,
// removes it from the IQ and installs it there.
func (p *Pipeline) issue() {
	if idx := p.iqQ.SelectOldestReady(isa.FUInt); idx != -1 && !p.nextInt1.Valid {
		p.nextInt1 = p.latchFromIQ(idx)
		p.iqQ.Free(idx)
		p.issued++
	}
	if idx := p.iqQ.SelectOldestReady(isa.FUMul); idx != -1 && !p.nextMul1.Valid {
		p.nextMul1 = p.latchFromIQ(idx)
		p.iqQ.Free(idx)
		p.issued++
	}
	if idx := p.iqQ.SelectOldestReady(isa.FUBranch); idx != -1 && !p.nextBr1.Valid {
		p.nextBr1 = p.latchFromIQ(idx)
		p.iqQ.Free(idx)
		p.issued++
	}
}

func (p *Pipeline) latchFromIQ(idx int) fu.Latch {
	e := &p.iqQ.Slots[idx]
	return fu.Latch{
		Valid:           true,
		Op:              e.Op,
		PC:              e.PC,
		Dest:            e.Dest,
		Val1:            e.Src1Value,
		Val2:            e.Src2Value,
		Imm:             e.Imm,
		Src1Tag:         e.Src1Tag,
		Src2Tag:         e.Src2Tag,
		PredictedTaken:  e.PredictedTaken,
		PredictedTarget: e.PredictedTarget,
		ROBIndex:        e.ROBIndex,
		LSQIndex:        e.LSQIndex,
		BISIndex:        e.BISIndex,
		Seq:             e.Seq,
	}
}
