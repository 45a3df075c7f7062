// Package prf implements the physical register file: the renamable
// backing store that sits behind the architectural registers.
package prf

// NumRegs is the number of physical registers.
const NumRegs = 24

// Register holds one physical register's value, validity, zero flag (set
// by arithmetic that writes it), and the count of in-flight IQ/LSQ entries
// that refer to it by tag.
type Register struct {
	Value     int32
	Valid     bool
	Zero      bool
	Consumers int
}

// File is the 24-entry physical register file.
type File struct {
	Regs [NumRegs]Register
}

// New returns a File with every register invalid and zero-valued.
func New() *File {
	return &File{}
}

// Read returns the current value and validity of physical register p.
func (f *File) Read(p int8) (value int32, valid bool) {
	r := &f.Regs[p]
	return r.Value, r.Valid
}

// Zero returns the zero flag of physical register p.
func (f *File) Zero(p int8) bool {
	return f.Regs[p].Zero
}

// Reset clears a physical register to the "awaiting its writer" state:
// invalid, no zero flag. Called when a register is allocated as a fresh
// destination.
func (f *File) Reset(p int8) {
	f.Regs[p] = Register{Consumers: f.Regs[p].Consumers}
}

// Write broadcasts a computed result into physical register p, marking it
// valid. setZero is only honored for instructions that define the zero
// flag; callers pass false otherwise.
func (f *File) Write(p int8, value int32, setZero bool, zero bool) {
	r := &f.Regs[p]
	r.Value = value
	r.Valid = true
	if setZero {
		r.Zero = zero
	}
}

// IncConsumer records a new IQ/LSQ entry referring to p by tag.
func (f *File) IncConsumer(p int8) {
	if p < 0 {
		return
	}
	f.Regs[p].Consumers++
}

// DecConsumer drops a reference to p; called once a broadcast is consumed
// or the referring entry is flushed.
func (f *File) DecConsumer(p int8) {
	if p < 0 {
		return
	}
	if f.Regs[p].Consumers > 0 {
		f.Regs[p].Consumers--
	}
}

// ConsumerCount returns the outstanding consumer count of p.
func (f *File) ConsumerCount(p int8) int {
	return f.Regs[p].Consumers
}

// InitCommitted marks physical register p as the initial backing register
// for an architectural register: valid immediately, holding value, with no
// outstanding consumers. Used only at machine reset.
func (f *File) InitCommitted(p int8, value int32) {
	f.Regs[p] = Register{Value: value, Valid: true}
}
