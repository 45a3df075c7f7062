package iq_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/apexsim/apex/core/iq"
	"github.com/apexsim/apex/isa"
)

var _ = Describe("IQ", func() {
	var q *iq.IQ

	BeforeEach(func() {
		q = iq.New()
	})

	It("starts with every slot free", func() {
		Expect(q.Full()).To(BeFalse())
		Expect(q.FreeSlot()).To(Equal(0))
	})

	It("fills up after Capacity inserts", func() {
		for i := 0; i < iq.Capacity; i++ {
			q.Insert(i, iq.Entry{})
		}
		Expect(q.Full()).To(BeTrue())
		Expect(q.FreeSlot()).To(Equal(-1))
	})

	Describe("Ready", func() {
		It("is ready immediately for an op needing no sources (MOVC)", func() {
			e := iq.Entry{Op: isa.OpMOVC}
			Expect(e.Ready()).To(BeTrue())
		})

		It("requires src1 for an op needing only one source", func() {
			e := iq.Entry{Op: isa.OpADDL, Src1Ready: false}
			Expect(e.Ready()).To(BeFalse())
			e.Src1Ready = true
			Expect(e.Ready()).To(BeTrue())
		})

		It("requires both sources for register-register arithmetic", func() {
			e := iq.Entry{Op: isa.OpADD, Src1Ready: true, Src2Ready: false}
			Expect(e.Ready()).To(BeFalse())
			e.Src2Ready = true
			Expect(e.Ready()).To(BeTrue())
		})
	})

	Describe("SelectOldestReady", func() {
		It("picks the ready entry with the smallest PC among its class", func() {
			q.Insert(0, iq.Entry{Class: isa.FUInt, PC: 4008, Op: isa.OpMOVC})
			q.Insert(1, iq.Entry{Class: isa.FUInt, PC: 4004, Op: isa.OpMOVC})
			q.Insert(2, iq.Entry{Class: isa.FUMul, PC: 4000, Op: isa.OpMUL, Src1Ready: true, Src2Ready: true})

			Expect(q.SelectOldestReady(isa.FUInt)).To(Equal(1))
		})

		It("skips entries that aren't ready", func() {
			q.Insert(0, iq.Entry{Class: isa.FUInt, PC: 4000, Op: isa.OpADD, Src1Ready: false, Src2Ready: true})
			Expect(q.SelectOldestReady(isa.FUInt)).To(Equal(-1))
		})

		It("returns -1 when no occupied slot matches the class", func() {
			q.Insert(0, iq.Entry{Class: isa.FUMul, Op: isa.OpMUL, Src1Ready: true, Src2Ready: true})
			Expect(q.SelectOldestReady(isa.FUInt)).To(Equal(-1))
		})
	})

	Describe("Broadcast", func() {
		It("satisfies a matching Src1Tag with the raw value for non-branch ops", func() {
			q.Insert(0, iq.Entry{Op: isa.OpADD, Src1Tag: 5, Src2Tag: isa.NoReg})
			q.Broadcast(5, 77, false)
			Expect(q.Slots[0].Src1Ready).To(BeTrue())
			Expect(q.Slots[0].Src1Value).To(Equal(int32(77)))
		})

		It("satisfies a branch's Src1Tag with the zero flag, not the value", func() {
			q.Insert(0, iq.Entry{Op: isa.OpBZ, Src1Tag: 5, Src2Tag: isa.NoReg})
			q.Broadcast(5, 77, true)
			Expect(q.Slots[0].Src1Ready).To(BeTrue())
			Expect(q.Slots[0].Src1Value).To(Equal(int32(1)))
		})

		It("satisfies Src2Tag independently of Src1Tag", func() {
			q.Insert(0, iq.Entry{Op: isa.OpADD, Src1Tag: isa.NoReg, Src2Tag: 9})
			q.Broadcast(9, 3, false)
			Expect(q.Slots[0].Src2Ready).To(BeTrue())
			Expect(q.Slots[0].Src2Value).To(Equal(int32(3)))
		})

		It("does not re-satisfy an already-ready source", func() {
			q.Insert(0, iq.Entry{Op: isa.OpADD, Src1Tag: 5, Src1Ready: true, Src1Value: 1})
			q.Broadcast(5, 999, false)
			Expect(q.Slots[0].Src1Value).To(Equal(int32(1)))
		})
	})

	Describe("FlushYounger", func() {
		It("frees every slot the keep function rejects", func() {
			q.Insert(0, iq.Entry{Seq: 1})
			q.Insert(1, iq.Entry{Seq: 2})
			q.FlushYounger(func(e *iq.Entry) bool { return e.Seq <= 1 })
			Expect(q.Slots[0].Occupied).To(BeTrue())
			Expect(q.Slots[1].Occupied).To(BeFalse())
		})
	})
})
