package bis_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/apexsim/apex/core/bis"
)

var _ = Describe("BIS", func() {
	var b *bis.BIS

	BeforeEach(func() {
		b = bis.New()
	})

	It("starts empty with no tail", func() {
		Expect(b.Empty()).To(BeTrue())
		Expect(b.TailIndex()).To(Equal(-1))
	})

	It("tracks at most Capacity unresolved branches", func() {
		_, ok1 := b.Push(bis.Entry{PC: 4})
		_, ok2 := b.Push(bis.Entry{PC: 8})
		Expect(ok1).To(BeTrue())
		Expect(ok2).To(BeTrue())
		Expect(b.Full()).To(BeTrue())
		_, ok3 := b.Push(bis.Entry{PC: 12})
		Expect(ok3).To(BeFalse())
	})

	It("reports the most recently pushed entry as tail", func() {
		b.Push(bis.Entry{PC: 4})
		i2, _ := b.Push(bis.Entry{PC: 8})
		Expect(b.TailIndex()).To(Equal(i2))
	})

	It("pops the oldest unresolved branch on retire", func() {
		i1, _ := b.Push(bis.Entry{PC: 4})
		b.Push(bis.Entry{PC: 8})
		Expect(b.Head().PC).To(Equal(uint32(4)))
		b.Pop()
		_ = i1
		Expect(b.Size()).To(Equal(1))
		Expect(b.Head().PC).To(Equal(uint32(8)))
	})

	It("rewinds to the flushing branch's own slot, dropping younger ones", func() {
		i1, _ := b.Push(bis.Entry{PC: 4})
		b.Push(bis.Entry{PC: 8})
		b.RewindTo(i1)
		Expect(b.Size()).To(Equal(1))
		Expect(b.Head().PC).To(Equal(uint32(4)))
	})

	It("lists occupied slots head-to-tail", func() {
		i1, _ := b.Push(bis.Entry{PC: 4})
		i2, _ := b.Push(bis.Entry{PC: 8})
		Expect(b.Occupied()).To(Equal([]int{i1, i2}))
	})
})
