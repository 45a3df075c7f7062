package driver

import (
	"github.com/apexsim/apex/core/fu"
	"github.com/apexsim/apex/isa"
)

// aluOperands picks the two operands ComputeALU consumes for op: a literal
// second operand for MOVC/ADDL/SUBL, two register values otherwise.
func aluOperands(op isa.Opcode, val1, val2, imm int32) (a, b int32) {
	switch op {
	case isa.OpMOVC:
		return 0, imm
	case isa.OpADDL, isa.OpSUBL:
		return val1, imm
	default:
		return val1, val2
	}
}

// doInt runs the 2-stage INT pipeline: INT2 broadcasts the result computed
// two steps ago (or forwards a computed address into its LSQ entry), INT1
// computes this cycle's freshly-issued (well, previous-cycle-issued)
// micro-op. The newly issued op for this cycle is installed into nextInt1
// by issue(), called later in the same tick.
func (p *Pipeline) doInt() {
	cur := p.int2
	if cur.Valid {
		if cur.Op.IsMemory() {
			e := p.lsqQ.At(cur.LSQIndex)
			e.Addr = cur.Result
			e.AddrValid = true
		} else if cur.Dest != isa.NoReg {
			p.prfF.Write(cur.Dest, cur.Result, cur.Op.WritesZeroFlag(), cur.Zero)
			p.iqQ.Broadcast(cur.Dest, cur.Result, cur.Zero)
			p.lsqQ.Broadcast(cur.Dest, cur.Result)
		}
		if !cur.Op.IsMemory() {
			entry := p.robQ.At(cur.ROBIndex)
			entry.Result = cur.Result
			entry.ResultValid = true
		}
		p.prfF.DecConsumer(cur.Src1Tag)
		if cur.Op.NeedsSrc2() {
			p.prfF.DecConsumer(cur.Src2Tag)
		}
	}

	var next2 fu.Latch
	next2.Clear()
	src := p.int1
	if src.Valid {
		next2 = src
		if src.Op.IsMemory() {
			offset := src.Imm
			if src.Op.UsesRegRegAddress() {
				offset = src.Val2
			}
			next2.Result = fu.ComputeAddress(src.Val1, offset)
		} else {
			a, b := aluOperands(src.Op, src.Val1, src.Val2, src.Imm)
			next2.Result, next2.Zero = fu.ComputeALU(src.Op, a, b)
		}
	}
	p.nextInt2 = next2
	p.nextInt1.Clear()
}

// doMul runs the 3-stage MUL pipeline: MUL3 broadcasts, MUL2 is a pure
// delay stage carrying MUL1's computed result forward, MUL1 multiplies.
func (p *Pipeline) doMul() {
	cur := p.mul3
	if cur.Valid {
		if cur.Dest != isa.NoReg {
			p.prfF.Write(cur.Dest, cur.Result, false, false)
			p.iqQ.Broadcast(cur.Dest, cur.Result, false)
			p.lsqQ.Broadcast(cur.Dest, cur.Result)
		}
		entry := p.robQ.At(cur.ROBIndex)
		entry.Result = cur.Result
		entry.ResultValid = true
		p.prfF.DecConsumer(cur.Src1Tag)
		p.prfF.DecConsumer(cur.Src2Tag)
	}

	next3 := p.mul2

	var next2 fu.Latch
	next2.Clear()
	src := p.mul1
	if src.Valid {
		next2 = src
		next2.Result, _ = fu.ComputeALU(isa.OpMUL, src.Val1, src.Val2)
	}

	p.nextMul3 = next3
	p.nextMul2 = next2
	p.nextMul1.Clear()
}

// doBranch resolves the single BRANCH FU stage: BZ/BNZ against the
// predicted outcome captured at fetch time, JUMP unconditionally. A
// misprediction (or any JUMP) triggers a flush.
func (p *Pipeline) doBranch() {
	p.nextBr1.Clear()

	cur := p.br1
	if !cur.Valid {
		return
	}

	var outcome fu.BranchOutcome
	switch cur.Op {
	case isa.OpBZ, isa.OpBNZ:
		outcome = fu.ResolveConditional(cur.Op, cur.PC, cur.Imm, cur.Val1, cur.PredictedTaken)
	case isa.OpJUMP:
		outcome = fu.ResolveJump(cur.Val1, cur.Imm)
	}

	entry := p.robQ.At(cur.ROBIndex)
	entry.ResultValid = true
	entry.Result = int32(outcome.Target)
	entry.Mispredicted = outcome.Mispredicted

	if cur.Op != isa.OpJUMP {
		p.btbT.Update(cur.PC, outcome.Taken, outcome.Target)
	}
	p.prfF.DecConsumer(cur.Src1Tag)

	if outcome.Mispredicted {
		if cur.Op == isa.OpJUMP {
			p.flushJump(outcome.CorrectedPC)
		} else {
			p.flushBranch(cur.BISIndex, cur.ROBIndex, outcome.CorrectedPC)
		}
	}
}
