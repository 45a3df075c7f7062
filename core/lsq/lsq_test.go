package lsq_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/apexsim/apex/core/lsq"
	"github.com/apexsim/apex/isa"
)

var _ = Describe("LSQ", func() {
	var q *lsq.LSQ

	BeforeEach(func() {
		q = lsq.New()
	})

	It("starts empty", func() {
		Expect(q.Empty()).To(BeTrue())
		Expect(q.Head()).To(BeNil())
	})

	It("drains in FIFO order", func() {
		q.Push(lsq.Entry{Kind: lsq.Load, PC: 4000})
		q.Push(lsq.Entry{Kind: lsq.Store, PC: 4004})
		Expect(q.Head().PC).To(Equal(uint32(4000)))
		q.Pop()
		Expect(q.Head().PC).To(Equal(uint32(4004)))
	})

	It("reports full at Capacity", func() {
		for i := 0; i < lsq.Capacity; i++ {
			_, ok := q.Push(lsq.Entry{})
			Expect(ok).To(BeTrue())
		}
		Expect(q.Full()).To(BeTrue())
		_, ok := q.Push(lsq.Entry{})
		Expect(ok).To(BeFalse())
	})

	It("satisfies a store's value source by tag through Broadcast", func() {
		idx, _ := q.Push(lsq.Entry{Kind: lsq.Store, StoreTag: 7, StoreValid: false})
		q.Broadcast(7, 99)
		e := q.At(idx)
		Expect(e.StoreValid).To(BeTrue())
		Expect(e.StoreValue).To(Equal(int32(99)))
	})

	It("does not overwrite an already-satisfied store value", func() {
		idx, _ := q.Push(lsq.Entry{Kind: lsq.Store, StoreTag: 7, StoreValid: true, StoreValue: 5})
		q.Broadcast(7, 99)
		Expect(q.At(idx).StoreValue).To(Equal(int32(5)))
	})

	It("lists occupied slots in program order", func() {
		i1, _ := q.Push(lsq.Entry{PC: 1})
		i2, _ := q.Push(lsq.Entry{PC: 2})
		Expect(q.Occupied()).To(Equal([]int{i1, i2}))
	})

	It("drops entries dispatched after a flush point while keeping older ones", func() {
		q.Push(lsq.Entry{Seq: 1, StoreTag: isa.NoReg})
		q.Push(lsq.Entry{Seq: 2, StoreTag: isa.NoReg})
		q.Push(lsq.Entry{Seq: 3, StoreTag: isa.NoReg})

		q.FlushYounger(func(e *lsq.Entry) bool { return e.Seq <= 2 })

		Expect(q.Size()).To(Equal(2))
		Expect(q.Head().Seq).To(Equal(uint64(1)))
	})
})
