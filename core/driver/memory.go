package driver

import "github.com/apexsim/apex/core/lsq"

// memory drains the LSQ strictly from its head: one memory access at a
// time, gated on its ROB back-pointer being the ROB head (i.e. non-
// speculative) and its address (and, for stores, its value) being ready,
// and taking the configured fixed latency. A load's value is forwarded to
// the PRF and broadcast as soon as it completes; a store's architectural
// write is deferred to retirement, so the LSQ entry itself is popped there
// too, once this head is the oldest in-flight instruction.
func (p *Pipeline) memory() {
	head := p.lsqQ.Head()
	if head == nil {
		return
	}
	if head.Progress >= p.cfg.MemoryLatencyCycles {
		return
	}
	if head.ROBIndex != p.robQ.HeadIndex() {
		return
	}
	ready := head.AddrValid && (head.Kind == lsq.Load || head.StoreValid)
	if !ready {
		return
	}

	head.Progress++
	if head.Progress < p.cfg.MemoryLatencyCycles {
		return
	}

	entry := p.robQ.At(head.ROBIndex)
	if head.Kind == lsq.Load {
		val := p.arch.ReadMem(head.Addr)
		p.prfF.Write(head.Dest, val, false, false)
		p.iqQ.Broadcast(head.Dest, val, false)
		p.lsqQ.Broadcast(head.Dest, val)
		entry.Result = val
	}
	entry.ResultValid = true
}
