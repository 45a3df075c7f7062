package driver

import (
	"github.com/apexsim/apex/core/bis"
	"github.com/apexsim/apex/core/iq"
	"github.com/apexsim/apex/core/lsq"
	"github.com/apexsim/apex/core/rob"
	"github.com/apexsim/apex/isa"
)

// canDispatch reports whether every resource the instruction needs has a
// free slot, without reserving any of them. Dispatch only commits once all
// of these hold, so a stall never partially allocates state.
func (p *Pipeline) canDispatch(inst *isa.Instruction) bool {
	if p.robQ.Full() {
		return false
	}
	if inst.Op.IsMemory() && p.lsqQ.Full() {
		return false
	}
	if inst.Op.IsBranch() && (p.bisQ.Full() || p.rtbl.FreeCheckpointSlot() == -1) {
		return false
	}
	if p.iqQ.Full() {
		return false
	}
	if inst.Op.WritesDest() && !p.rtbl.HasFree() {
		return false
	}
	return true
}

// dispatch runs decode/rename/dispatch for the instruction latched in
// ifid, if its preconditions hold. It returns whether the instruction was
// consumed (accepted); the caller must re-present it next cycle otherwise.
func (p *Pipeline) dispatch() bool {
	if !p.ifid.Valid || p.freezeFetchDecode {
		return false
	}
	inst := p.ifid.Inst

	if !p.canDispatch(&inst) {
		p.stalls++
		return false
	}

	seq := p.seq
	p.seq++

	lookup := func(a int8) (tag int8, value int32, valid bool) {
		if a == isa.NoReg {
			return isa.NoReg, 0, true
		}
		tag = p.rtbl.Lookup(a)
		value, valid = p.prfF.Read(tag)
		return tag, value, valid
	}

	var destPhys int8 = isa.NoReg
	if inst.Op.WritesDest() {
		destPhys, _ = p.rtbl.Alloc()
		p.prfF.Reset(destPhys)
	}

	robIdx, _ := p.robQ.Push(rob.Entry{
		PC:       inst.PC,
		Op:       inst.Op,
		ArchDest: inst.Rd,
		PhysDest: destPhys,
		PrevPhys: isa.NoReg,
		LSQIndex: -1,
		BISIndex: -1,
		Seq:      seq,
	})
	if inst.Op == isa.OpHALT {
		p.robQ.At(robIdx).ResultValid = true
		p.freezeFetchDecode = true
	}

	bisIdx := p.bisQ.TailIndex()

	lsqIdx := -1
	if inst.Op.IsMemory() {
		e := lsq.Entry{PC: inst.PC, ROBIndex: robIdx, BISIndex: bisIdx, Seq: seq, Dest: isa.NoReg, StoreTag: isa.NoReg}
		if inst.Op.IsLoad() {
			e.Kind = lsq.Load
			e.Dest = destPhys
		} else {
			e.Kind = lsq.Store
			storeTag, storeVal, storeValid := lookup(inst.StoreValueReg())
			e.StoreTag, e.StoreValue, e.StoreValid = storeTag, storeVal, storeValid
			p.prfF.IncConsumer(storeTag)
		}
		// Src1Tag/Src1Value only record the address-base register for
		// tracing here; the IQ entry created below owns the consumer
		// reference for it and decrements it once the address is
		// forwarded in INT2, avoiding a double count.
		baseTag, baseVal, baseValid := lookup(inst.AddressBase())
		e.Src1Tag, e.Src1Value, e.Src1Valid = baseTag, baseVal, baseValid
		lsqIdx, _ = p.lsqQ.Push(e)
		p.robQ.At(robIdx).LSQIndex = lsqIdx
	}

	if inst.Op.IsBranch() {
		slot := p.rtbl.FreeCheckpointSlot()
		p.rtbl.Checkpoint(slot)
		idx, _ := p.bisQ.Push(bis.Entry{PC: inst.PC, ROBIndex: robIdx, CheckpointSlot: slot, Seq: seq})
		bisIdx = idx
		p.robQ.At(robIdx).BISIndex = idx
		p.btbT.EnsureEntry(inst.PC)
	}
	if inst.Op == isa.OpJUMP {
		p.freezeFetchDecode = true
	}

	iqe := iq.Entry{
		Op:              inst.Op,
		Class:           inst.Op.Class(),
		PC:              inst.PC,
		Imm:             inst.Imm,
		Dest:            destPhys,
		ROBIndex:        robIdx,
		LSQIndex:        lsqIdx,
		BISIndex:        bisIdx,
		Seq:             seq,
		PredictedTaken:  p.ifid.PredictedTaken,
		PredictedTarget: p.ifid.PredictedTarget,
	}
	iqe.Src1Tag, iqe.Src2Tag = isa.NoReg, isa.NoReg

	switch {
	case inst.Op.IsBranch():
		tag := p.lastZeroFlagProducer
		iqe.Src1Tag = tag
		p.prfF.IncConsumer(tag)
		if tag == isa.NoReg {
			iqe.Src1Value, iqe.Src1Ready = 0, true
		} else {
			iqe.Src1Value = boolToInt32(p.prfF.Zero(tag))
			_, iqe.Src1Ready = p.prfF.Read(tag)
		}
	case inst.Op == isa.OpJUMP:
		tag, val, valid := lookup(inst.JumpBase())
		iqe.Src1Tag, iqe.Src1Value, iqe.Src1Ready = tag, val, valid
		p.prfF.IncConsumer(tag)
	case inst.Op.IsMemory():
		baseTag, baseVal, baseValid := lookup(inst.AddressBase())
		iqe.Src1Tag, iqe.Src1Value, iqe.Src1Ready = baseTag, baseVal, baseValid
		p.prfF.IncConsumer(baseTag)
		if inst.Op.UsesRegRegAddress() {
			offTag, offVal, offValid := lookup(inst.AddressOffsetReg())
			iqe.Src2Tag, iqe.Src2Value, iqe.Src2Ready = offTag, offVal, offValid
			p.prfF.IncConsumer(offTag)
		}
	default:
		s1tag, s1val, s1valid := lookup(inst.ArithSrc1())
		iqe.Src1Tag, iqe.Src1Value, iqe.Src1Ready = s1tag, s1val, s1valid
		p.prfF.IncConsumer(s1tag)
		if inst.Op.NeedsSrc2() {
			s2tag, s2val, s2valid := lookup(inst.ArithSrc2())
			iqe.Src2Tag, iqe.Src2Value, iqe.Src2Ready = s2tag, s2val, s2valid
			p.prfF.IncConsumer(s2tag)
		}
	}

	// The destination is renamed only after every source above has been
	// looked up, so an instruction reading its own destination register
	// sees the previous mapping.
	if destPhys != isa.NoReg {
		p.robQ.At(robIdx).PrevPhys = p.rtbl.MapDest(inst.Rd, destPhys)
	}

	if slot := p.iqQ.FreeSlot(); slot != -1 {
		p.iqQ.Insert(slot, iqe)
	}

	if destPhys != isa.NoReg && inst.Op.WritesZeroFlag() {
		p.lastZeroFlagProducer = destPhys
	}

	return true
}
