package driver

import (
	"fmt"
	"io"
	"sort"

	"github.com/apexsim/apex/core/arch"
	"github.com/apexsim/apex/core/rob"
)

// DumpState writes a human-readable snapshot of pipeline state: cycle/
// retired counters, the rename table, the nonzero architectural registers
// and data memory, and the occupied IQ/LSQ/ROB slots, in the style of the
// original's print_* routines.
func (p *Pipeline) DumpState(w io.Writer) {
	snap := p.Snapshot()

	fmt.Fprintf(w, "cycle %d retired %d\n", snap.Cycles, snap.Retired)

	fmt.Fprintln(w, "  rename table:")
	for a := int8(0); a < arch.NumRegs; a++ {
		fmt.Fprintf(w, "    R%-2d -> P%-2d\n", a, p.rtbl.Lookup(a))
	}

	fmt.Fprintln(w, "  ARF (nonzero only):")
	for r := 0; r < arch.NumRegs; r++ {
		if snap.Regs[r] != 0 {
			fmt.Fprintf(w, "    R%-2d = %d\n", r, snap.Regs[r])
		}
	}

	if len(snap.Memory) > 0 {
		addrs := make([]int32, 0, len(snap.Memory))
		for a := range snap.Memory {
			addrs = append(addrs, a)
		}
		sort.Slice(addrs, func(i, j int) bool { return addrs[i] < addrs[j] })
		fmt.Fprintln(w, "  memory:")
		for _, a := range addrs {
			fmt.Fprintf(w, "    [%d] = %d\n", a, snap.Memory[a])
		}
	}

	fmt.Fprintln(w, "  IQ occupied:")
	for i := range p.iqQ.Slots {
		e := &p.iqQ.Slots[i]
		if !e.Occupied {
			continue
		}
		fmt.Fprintf(w, "    [%d] pc=%#x op=%s seq=%d ready=%v\n", i, e.PC, e.Op, e.Seq, e.Ready())
	}

	fmt.Fprintln(w, "  LSQ occupied:")
	for _, idx := range p.lsqQ.Occupied() {
		e := p.lsqQ.At(idx)
		fmt.Fprintf(w, "    [%d] pc=%#x kind=%v addrValid=%v progress=%d\n", idx, e.PC, e.Kind, e.AddrValid, e.Progress)
	}

	fmt.Fprintln(w, "  ROB occupied:")
	if p.robQ.Size() > 0 {
		idx := p.robQ.HeadIndex()
		for n := 0; n < p.robQ.Size(); n++ {
			e := p.robQ.At(idx)
			fmt.Fprintf(w, "    [%d] pc=%#x op=%s resultValid=%v seq=%d\n", idx, e.PC, e.Op, e.ResultValid, e.Seq)
			idx = (idx + 1) % rob.Capacity
		}
	}
}

// ExitReason reports why the pipeline stopped ("HALT" once it retires, ""
// while still running).
func (p *Pipeline) ExitReason() string { return p.exitReason }
