// Package driver implements the Pipeline Driver: per-cycle orchestration
// of fetch, decode/rename/dispatch, issue, execute, memory and retire,
// plus misprediction flush/rollback. It is the component that wires every
// other core/ package together into a running cycle-accurate machine.
package driver

import (
	"github.com/apexsim/apex/core/arch"
	"github.com/apexsim/apex/core/bis"
	"github.com/apexsim/apex/core/btb"
	"github.com/apexsim/apex/core/fu"
	"github.com/apexsim/apex/core/iq"
	"github.com/apexsim/apex/core/lsq"
	"github.com/apexsim/apex/core/prf"
	"github.com/apexsim/apex/core/rename"
	"github.com/apexsim/apex/core/rob"
	"github.com/apexsim/apex/isa"
)

// ifidLatch holds the one instruction fetched but not yet dispatched,
// together with the prediction made for it at fetch time.
type ifidLatch struct {
	Valid           bool
	Inst            isa.Instruction
	PredictedTaken  bool
	PredictedTarget uint32
}

// Pipeline is the out-of-order APEX core: fetch, rename/dispatch, issue,
// the three functional unit pipelines, memory issue and retirement, bound
// together by one Tick per cycle.
type Pipeline struct {
	cfg *Config

	prog  []isa.Instruction
	index map[uint32]int

	pc   uint32
	arch *arch.State

	prfF *prf.File
	rtbl *rename.Table
	robQ *rob.ROB
	lsqQ *lsq.LSQ
	bisQ *bis.BIS
	btbT *btb.BTB
	iqQ  *iq.IQ

	// FU pipeline latches. cur* is read this tick; next* is written this
	// tick and swapped into cur* at the end of Tick, giving one cycle of
	// latency between adjacent stages while same-cycle PRF/IQ broadcasts
	// remain visible to Issue later in the same tick.
	int1, int2             fu.Latch
	nextInt1, nextInt2     fu.Latch
	mul1, mul2, mul3       fu.Latch
	nextMul1, nextMul2, nextMul3 fu.Latch
	br1     fu.Latch
	nextBr1 fu.Latch

	ifid     ifidLatch
	nextIfid ifidLatch

	freezeFetchDecode bool
	halted            bool
	exitReason        string

	lastZeroFlagProducer int8
	seq                  uint64

	cycle   uint64
	retired uint64
	stalls  uint64
	flushes uint64
	issued  uint64
}

// Option is a functional option for configuring a Pipeline at
// construction, in the style of the teacher's PipelineOption.
type Option func(*Pipeline)

// WithConfig overrides the structural/timing parameters DefaultConfig
// would otherwise install.
func WithConfig(cfg *Config) Option {
	return func(p *Pipeline) {
		if cfg != nil {
			p.cfg = cfg
		}
	}
}

// New allocates a Pipeline for the given decoded instruction image. The
// architectural register file and data memory start at their reset
// defaults (registers = -1, memory = 0); the rename table starts with
// architectural register a mapped to physical register a.
func New(prog []isa.Instruction, opts ...Option) *Pipeline {
	p := &Pipeline{
		cfg:   DefaultConfig(),
		prog:  prog,
		index: make(map[uint32]int, len(prog)),

		arch: arch.New(),
		prfF: prf.New(),
		rtbl: rename.New(),
		robQ: rob.New(),
		lsqQ: lsq.New(),
		bisQ: bis.New(),
		btbT: btb.New(),
		iqQ:  iq.New(),

		lastZeroFlagProducer: isa.NoReg,
	}

	for _, opt := range opts {
		opt(p)
	}

	for i, inst := range prog {
		p.index[inst.PC] = i
	}
	if len(prog) > 0 {
		p.pc = prog[0].PC
	} else {
		p.pc = arch.BaseAddr
	}

	for a := int8(0); a < arch.NumRegs; a++ {
		p.prfF.InitCommitted(a, p.arch.ReadReg(a))
	}

	p.int1.Clear()
	p.int2.Clear()
	p.mul1.Clear()
	p.mul2.Clear()
	p.mul3.Clear()
	p.br1.Clear()

	return p
}

// Halted reports whether the simulation has terminated (HALT retired).
func (p *Pipeline) Halted() bool { return p.halted }

// PC returns the current program counter.
func (p *Pipeline) PC() uint32 { return p.pc }

// Stats summarizes pipeline-level performance counters.
type Stats struct {
	Cycles   uint64
	Retired  uint64
	Stalls   uint64
	Flushes  uint64
	Issued   uint64
}

// CPI returns cycles per retired instruction.
func (s Stats) CPI() float64 {
	if s.Retired == 0 {
		return 0
	}
	return float64(s.Cycles) / float64(s.Retired)
}

// Stats returns a snapshot of the pipeline's performance counters.
func (p *Pipeline) Stats() Stats {
	return Stats{
		Cycles:  p.cycle,
		Retired: p.retired,
		Stalls:  p.stalls,
		Flushes: p.flushes,
		Issued:  p.issued,
	}
}

// ArchSnapshot is the external-facing view of architectural state returned
// by Snapshot.
type ArchSnapshot struct {
	Regs     [arch.NumRegs]int32
	Memory   map[int32]int32
	Cycles   uint64
	Retired  uint64
}

// Snapshot returns the current architectural registers and every nonzero
// data memory cell.
func (p *Pipeline) Snapshot() ArchSnapshot {
	return ArchSnapshot{
		Regs:    p.arch.Regs,
		Memory:  p.arch.NonZeroMem(),
		Cycles:  p.cycle,
		Retired: p.retired,
	}
}

// Run executes the pipeline until HALT retires or maxCycles ticks have
// elapsed, whichever comes first. It returns true if the program
// terminated via HALT.
func (p *Pipeline) Run(maxCycles uint64) bool {
	for i := uint64(0); i < maxCycles && !p.halted; i++ {
		p.Tick()
	}
	return p.halted
}

func boolToInt32(b bool) int32 {
	if b {
		return 1
	}
	return 0
}
