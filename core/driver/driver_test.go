package driver_test

import (
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/apexsim/apex/core/asm"
	"github.com/apexsim/apex/core/driver"
)

// run parses src, builds a Pipeline with default timing, and drives it to
// completion (or maxCycles, whichever comes first).
func run(src string, maxCycles uint64) *driver.Pipeline {
	prog, err := asm.Parse(strings.NewReader(src))
	Expect(err).NotTo(HaveOccurred())
	p := driver.New(prog)
	p.Run(maxCycles)
	return p
}

var _ = Describe("Pipeline end-to-end", func() {
	It("retires a straight-line sequence of independent instructions", func() {
		p := run(`
			MOVC R0, #5
			MOVC R1, #10
			ADD  R2, R0, R1
			HALT
		`, 200)

		Expect(p.Halted()).To(BeTrue())
		snap := p.Snapshot()
		Expect(snap.Regs[0]).To(Equal(int32(5)))
		Expect(snap.Regs[1]).To(Equal(int32(10)))
		Expect(snap.Regs[2]).To(Equal(int32(15)))
	})

	It("forwards a RAW-dependent chain of arithmetic through renaming", func() {
		p := run(`
			MOVC R0, #1
			ADD  R1, R0, R0
			ADD  R2, R1, R1
			MUL  R3, R2, R2
			HALT
		`, 200)

		Expect(p.Halted()).To(BeTrue())
		snap := p.Snapshot()
		Expect(snap.Regs[0]).To(Equal(int32(1)))
		Expect(snap.Regs[1]).To(Equal(int32(2)))
		Expect(snap.Regs[2]).To(Equal(int32(4)))
		Expect(snap.Regs[3]).To(Equal(int32(16)))
	})

	It("round-trips a store/load pair through data memory", func() {
		p := run(`
			MOVC  R0, #7
			MOVC  R1, #100
			STORE R0, R1, #0
			LOAD  R2, R1, #0
			HALT
		`, 200)

		Expect(p.Halted()).To(BeTrue())
		snap := p.Snapshot()
		Expect(snap.Regs[2]).To(Equal(int32(7)))
		Expect(snap.Memory[100]).To(Equal(int32(7)))
	})

	It("resolves register-register (LDR/STR) addressing", func() {
		p := run(`
			MOVC R0, #9
			MOVC R1, #200
			MOVC R2, #4
			STR  R0, R1, R2
			LDR  R3, R1, R2
			HALT
		`, 200)

		Expect(p.Halted()).To(BeTrue())
		snap := p.Snapshot()
		Expect(snap.Regs[3]).To(Equal(int32(9)))
		Expect(snap.Memory[204]).To(Equal(int32(9)))
	})

	It("takes a BZ branch predicted not-taken, flushing the skipped instruction", func() {
		p := run(`
			MOVC R0, #5
			SUB  R1, R0, R0
			BZ   #8
			MOVC R2, #99
			MOVC R2, #42
			HALT
		`, 200)

		Expect(p.Halted()).To(BeTrue())
		snap := p.Snapshot()
		Expect(snap.Regs[2]).To(Equal(int32(42)))
		Expect(p.Stats().Flushes).To(BeNumerically(">=", 1))
	})

	It("falls through a BZ branch whose zero flag is clear", func() {
		p := run(`
			MOVC R0, #5
			SUB  R1, R0, R0
			ADDL R1, R1, #1
			BZ   #8
			MOVC R2, #99
			MOVC R2, #42
			HALT
		`, 200)

		Expect(p.Halted()).To(BeTrue())
		snap := p.Snapshot()
		Expect(snap.Regs[2]).To(Equal(int32(42)))
		Expect(p.Stats().Flushes).To(BeZero(), "a correctly predicted fall-through never flushes")
	})

	It("takes a BNZ branch whose zero flag is clear", func() {
		p := run(`
			MOVC R0, #5
			ADDL R1, R0, #1
			BNZ  #8
			MOVC R2, #99
			MOVC R2, #42
			HALT
		`, 200)

		Expect(p.Halted()).To(BeTrue())
		snap := p.Snapshot()
		Expect(snap.Regs[2]).To(Equal(int32(42)))
	})

	It("redirects control flow unconditionally on JUMP", func() {
		p := run(`
			MOVC R0, #4012
			JUMP R0, #0
			MOVC R2, #99
			HALT
		`, 200)

		Expect(p.Halted()).To(BeTrue())
		snap := p.Snapshot()
		Expect(snap.Regs[2]).To(Equal(int32(-1)), "the dead instruction skipped by JUMP must never retire")
		Expect(p.Stats().Flushes).To(BeNumerically(">=", 1))
	})

	It("re-executes a backward branch loop to completion", func() {
		// R0 counts down from 3 to 0; R1 accumulates one increment per
		// iteration, landing on 3 once the loop's BNZ finally falls through.
		p := run(`
			MOVC R0, #3
			MOVC R1, #0
			ADDL R1, R1, #1
			SUBL R0, R0, #1
			BNZ  #-8
			HALT
		`, 400)

		Expect(p.Halted()).To(BeTrue())
		snap := p.Snapshot()
		Expect(snap.Regs[0]).To(Equal(int32(0)))
		Expect(snap.Regs[1]).To(Equal(int32(3)))
	})

	It("reports a nonzero CPI and issued count once work has retired", func() {
		p := run(`
			MOVC R0, #1
			HALT
		`, 200)

		stats := p.Stats()
		Expect(stats.Retired).To(BeNumerically(">", 0))
		Expect(stats.CPI()).To(BeNumerically(">", 0))
		Expect(stats.Issued).To(BeNumerically(">", 0))
	})
})

var _ = Describe("DefaultConfig / LoadConfig", func() {
	It("defaults to a 3-cycle memory latency", func() {
		Expect(driver.DefaultConfig().MemoryLatencyCycles).To(Equal(3))
	})

	It("rejects a missing config file", func() {
		_, err := driver.LoadConfig("/nonexistent/config.json")
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("WithConfig", func() {
	It("overrides the default memory latency applied to a Pipeline", func() {
		prog, err := asm.Parse(strings.NewReader(`
			MOVC  R0, #7
			MOVC  R1, #100
			STORE R0, R1, #0
			LOAD  R2, R1, #0
			HALT
		`))
		Expect(err).NotTo(HaveOccurred())

		fast := driver.New(prog, driver.WithConfig(&driver.Config{MemoryLatencyCycles: 1}))
		fast.Run(200)
		Expect(fast.Halted()).To(BeTrue())

		slow := driver.New(prog, driver.WithConfig(&driver.Config{MemoryLatencyCycles: 10}))
		slow.Run(200)
		Expect(slow.Halted()).To(BeTrue())

		Expect(slow.Stats().Cycles).To(BeNumerically(">", fast.Stats().Cycles))
	})

	It("is ignored when passed a nil config", func() {
		prog, _ := asm.Parse(strings.NewReader("HALT\n"))
		p := driver.New(prog, driver.WithConfig(nil))
		Expect(p).NotTo(BeNil())
	})
})
