package rob_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/apexsim/apex/core/rob"
	"github.com/apexsim/apex/isa"
)

var _ = Describe("ROB", func() {
	var r *rob.ROB

	BeforeEach(func() {
		r = rob.New()
	})

	It("starts empty", func() {
		Expect(r.Empty()).To(BeTrue())
		Expect(r.Size()).To(Equal(0))
		Expect(r.Head()).To(BeNil())
	})

	It("pushes and retires strictly in FIFO order", func() {
		i1, _ := r.Push(rob.Entry{PC: 4000})
		i2, _ := r.Push(rob.Entry{PC: 4004})
		Expect(r.HeadIndex()).To(Equal(i1))
		Expect(r.TailIndex()).To(Equal(i2))
		Expect(r.Head().PC).To(Equal(uint32(4000)))

		r.Pop()
		Expect(r.Head().PC).To(Equal(uint32(4004)))
	})

	It("reports full once Capacity entries are pushed", func() {
		for i := 0; i < rob.Capacity; i++ {
			_, ok := r.Push(rob.Entry{})
			Expect(ok).To(BeTrue())
		}
		Expect(r.Full()).To(BeTrue())
		_, ok := r.Push(rob.Entry{})
		Expect(ok).To(BeFalse())
	})

	It("wraps the circular buffer correctly across pop/push cycles", func() {
		for i := 0; i < rob.Capacity; i++ {
			r.Push(rob.Entry{PC: uint32(i)})
		}
		for i := 0; i < rob.Capacity/2; i++ {
			r.Pop()
		}
		for i := 0; i < rob.Capacity/2; i++ {
			idx, ok := r.Push(rob.Entry{PC: uint32(100 + i)})
			Expect(ok).To(BeTrue())
			Expect(r.At(idx).PC).To(Equal(uint32(100 + i)))
		}
		Expect(r.Size()).To(Equal(rob.Capacity))
	})

	It("mutates an entry in place via At", func() {
		idx, _ := r.Push(rob.Entry{Op: isa.OpADD})
		r.At(idx).ResultValid = true
		r.At(idx).Result = 42
		Expect(r.Head().ResultValid).To(BeTrue())
		Expect(r.Head().Result).To(Equal(int32(42)))
	})

	It("rewinds the tail to a mispredicted branch's own slot on flush", func() {
		r.Push(rob.Entry{PC: 0})
		branchIdx, _ := r.Push(rob.Entry{PC: 4})
		r.Push(rob.Entry{PC: 8})
		r.Push(rob.Entry{PC: 12})

		r.RewindTailTo(branchIdx)
		Expect(r.TailIndex()).To(Equal(branchIdx))
		Expect(r.Size()).To(Equal(2))
	})

	It("becomes empty again after popping its last entry", func() {
		r.Push(rob.Entry{})
		r.Pop()
		Expect(r.Empty()).To(BeTrue())
		Expect(r.HeadIndex()).To(Equal(-1))
	})
})
