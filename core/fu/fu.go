// Package fu implements the INT, MUL and BRANCH functional unit
// pipelines: per-stage latches shifted once per cycle, and the pure
// compute functions each stage invokes.
package fu

import "github.com/apexsim/apex/isa"

// Latch holds one in-flight micro-op as it moves through an FU's stages.
type Latch struct {
	Valid bool
	Op    isa.Opcode
	PC    uint32

	Dest int8 // destination physical register, isa.NoReg if none
	Val1 int32
	Val2 int32
	Imm  int32

	// Src1Tag/Src2Tag are the physical registers this micro-op consumed,
	// carried along so a later broadcast or flush can drop their
	// consumer-count reference.
	Src1Tag int8
	Src2Tag int8

	PredictedTaken  bool
	PredictedTarget uint32

	ROBIndex int
	LSQIndex int
	BISIndex int
	Seq      uint64

	// Result carries the arithmetic result (or computed address) once
	// this micro-op's compute stage has run.
	Result int32
	Zero   bool
}

// Clear resets the latch to an empty (NOP) bubble.
func (l *Latch) Clear() {
	*l = Latch{Dest: isa.NoReg, Src1Tag: isa.NoReg, Src2Tag: isa.NoReg, ROBIndex: -1, LSQIndex: -1, BISIndex: -1}
}

// IntPipe is the 2-stage INT pipeline (compute, broadcast).
type IntPipe struct {
	Stage1 Latch
	Stage2 Latch
}

// NewIntPipe returns an INT pipeline with both stages cleared.
func NewIntPipe() *IntPipe {
	p := &IntPipe{}
	p.Stage1.Clear()
	p.Stage2.Clear()
	return p
}

// Advance shifts Stage1 into Stage2 and installs next as the new Stage1.
func (p *IntPipe) Advance(next Latch) {
	p.Stage2 = p.Stage1
	p.Stage1 = next
}

// MulPipe is the 3-stage MUL pipeline (multiply, delay, broadcast).
type MulPipe struct {
	Stage1 Latch
	Stage2 Latch
	Stage3 Latch
}

// NewMulPipe returns a MUL pipeline with every stage cleared.
func NewMulPipe() *MulPipe {
	p := &MulPipe{}
	p.Stage1.Clear()
	p.Stage2.Clear()
	p.Stage3.Clear()
	return p
}

// Advance shifts Stage1->Stage2->Stage3 and installs next as the new
// Stage1.
func (p *MulPipe) Advance(next Latch) {
	p.Stage3 = p.Stage2
	p.Stage2 = p.Stage1
	p.Stage1 = next
}

// BranchPipe is the single-stage BRANCH functional unit.
type BranchPipe struct {
	Stage1 Latch
}

// NewBranchPipe returns a BRANCH pipeline with its stage cleared.
func NewBranchPipe() *BranchPipe {
	p := &BranchPipe{}
	p.Stage1.Clear()
	return p
}

// Advance installs next as the new (only) stage.
func (p *BranchPipe) Advance(next Latch) {
	p.Stage1 = next
}

// ComputeALU performs the arithmetic/logic operation for op over val1/val2
// (val2 being either a register value or a literal, depending on op),
// returning the result and whether the zero flag should be set.
func ComputeALU(op isa.Opcode, val1, val2 int32) (result int32, zero bool) {
	switch op {
	case isa.OpMOVC:
		result = val2
	case isa.OpADD, isa.OpADDL:
		result = val1 + val2
	case isa.OpSUB, isa.OpSUBL:
		result = val1 - val2
	case isa.OpMUL:
		result = val1 * val2
	case isa.OpAND:
		result = val1 & val2
	case isa.OpOR:
		result = val1 | val2
	case isa.OpEXOR:
		result = val1 ^ val2
	}
	if op.WritesZeroFlag() {
		zero = result == 0
	}
	return result, zero
}

// ComputeAddress computes a memory effective address: src1 + (literal or
// src2), per spec.md's "effective address = src1 + (literal or src2)".
func ComputeAddress(base int32, offset int32) int32 {
	return base + offset
}

// BranchOutcome is the result of resolving a branch in the BRANCH FU.
type BranchOutcome struct {
	Taken         bool
	Target        uint32
	Mispredicted  bool
	CorrectedPC   uint32
}

// ResolveConditional resolves BZ/BNZ. src1Value is the zero-flag value (0
// or 1) of the register the branch depends on. predictedTaken is the BTB
// history bit observed at fetch time.
func ResolveConditional(op isa.Opcode, pc uint32, imm int32, src1Value int32, predictedTaken bool) BranchOutcome {
	var taken bool
	switch op {
	case isa.OpBZ:
		taken = src1Value == 1
	case isa.OpBNZ:
		taken = src1Value == 0
	}

	target := uint32(int32(pc) + imm)
	out := BranchOutcome{Taken: taken, Target: target}

	if taken != predictedTaken {
		out.Mispredicted = true
		if taken {
			out.CorrectedPC = target
		} else {
			out.CorrectedPC = pc + 4
		}
	}
	return out
}

// ResolveJump resolves JUMP, which has no prediction and always flushes.
func ResolveJump(src1Base int32, imm int32) BranchOutcome {
	target := uint32(src1Base + imm)
	return BranchOutcome{Taken: true, Mispredicted: true, Target: target, CorrectedPC: target}
}
