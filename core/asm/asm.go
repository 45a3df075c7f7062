// Package asm is the external-collaborator loader: it turns an ASCII APEX
// assembly listing into the decoded instruction image the core consumes.
// Its grammar is intentionally small — this package exists only so the
// driver and tests have something to feed the pipeline; parsing robustness
// is explicitly out of scope for the simulator core (spec.md §1).
package asm

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/apexsim/apex/core/arch"
	"github.com/apexsim/apex/isa"
)

var mnemonics = map[string]isa.Opcode{
	"MOVC":  isa.OpMOVC,
	"ADD":   isa.OpADD,
	"SUB":   isa.OpSUB,
	"MUL":   isa.OpMUL,
	"AND":   isa.OpAND,
	"OR":    isa.OpOR,
	"EX-OR": isa.OpEXOR,
	"EXOR":  isa.OpEXOR,
	"XOR":   isa.OpEXOR,
	"ADDL":  isa.OpADDL,
	"SUBL":  isa.OpSUBL,
	"LOAD":  isa.OpLOAD,
	"STORE": isa.OpSTORE,
	"LDR":   isa.OpLDR,
	"STR":   isa.OpSTR,
	"BZ":    isa.OpBZ,
	"BNZ":   isa.OpBNZ,
	"JUMP":  isa.OpJUMP,
	"HALT":  isa.OpHALT,
}

// Load reads and parses an APEX assembly program from disk. A missing or
// unreadable file is a Configuration error: it returns a nil slice and a
// non-nil error, and the caller must not allocate any simulator state.
func Load(path string) ([]isa.Instruction, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("asm: cannot open program file: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse decodes an APEX assembly listing, one instruction per line,
// assigning PCs starting at arch.BaseAddr in steps of arch.Stride.
func Parse(r io.Reader) ([]isa.Instruction, error) {
	var out []isa.Instruction
	scanner := bufio.NewScanner(r)
	pc := uint32(arch.BaseAddr)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if semi := strings.Index(line, ";"); semi >= 0 {
			line = strings.TrimSpace(line[:semi])
		}
		if line == "" {
			continue
		}

		inst, err := parseLine(line)
		if err != nil {
			return nil, fmt.Errorf("asm: %w", err)
		}
		inst.PC = pc
		out = append(out, inst)
		pc += arch.Stride
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("asm: %w", err)
	}
	return out, nil
}

func parseLine(line string) (isa.Instruction, error) {
	fields := tokenize(line)
	if len(fields) == 0 {
		return isa.Instruction{}, fmt.Errorf("empty instruction")
	}

	mnemonic := strings.ToUpper(fields[0])
	op, ok := mnemonics[mnemonic]
	if !ok {
		return isa.Instruction{}, fmt.Errorf("unknown opcode %q", fields[0])
	}

	inst := isa.Instruction{Op: op, Rd: isa.NoReg, Rs1: isa.NoReg, Rs2: isa.NoReg, Rs3: isa.NoReg}
	args := fields[1:]

	reg := func(i int) (int8, error) {
		if i >= len(args) {
			return isa.NoReg, fmt.Errorf("%s: missing operand %d", mnemonic, i)
		}
		return parseReg(args[i])
	}
	imm := func(i int) (int32, error) {
		if i >= len(args) {
			return 0, fmt.Errorf("%s: missing operand %d", mnemonic, i)
		}
		return parseImm(args[i])
	}

	var err error
	switch op {
	case isa.OpMOVC:
		if inst.Rd, err = reg(0); err != nil {
			return inst, err
		}
		inst.Imm, err = imm(1)
	case isa.OpADD, isa.OpSUB, isa.OpMUL, isa.OpAND, isa.OpOR, isa.OpEXOR:
		if inst.Rd, err = reg(0); err == nil {
			if inst.Rs1, err = reg(1); err == nil {
				inst.Rs2, err = reg(2)
			}
		}
	case isa.OpADDL, isa.OpSUBL:
		if inst.Rd, err = reg(0); err == nil {
			if inst.Rs1, err = reg(1); err == nil {
				inst.Imm, err = imm(2)
			}
		}
	case isa.OpLOAD:
		if inst.Rd, err = reg(0); err == nil {
			if inst.Rs1, err = reg(1); err == nil {
				inst.Imm, err = imm(2)
			}
		}
	case isa.OpSTORE:
		if inst.Rs1, err = reg(0); err == nil {
			if inst.Rs2, err = reg(1); err == nil {
				inst.Imm, err = imm(2)
			}
		}
	case isa.OpLDR:
		if inst.Rd, err = reg(0); err == nil {
			if inst.Rs1, err = reg(1); err == nil {
				inst.Rs2, err = reg(2)
			}
		}
	case isa.OpSTR:
		if inst.Rs1, err = reg(0); err == nil {
			if inst.Rs2, err = reg(1); err == nil {
				inst.Rs3, err = reg(2)
			}
		}
	case isa.OpBZ, isa.OpBNZ:
		inst.Imm, err = imm(0)
	case isa.OpJUMP:
		if inst.Rs1, err = reg(0); err == nil {
			inst.Imm, err = imm(1)
		}
	case isa.OpHALT:
		// No operands.
	}
	if err != nil {
		return inst, err
	}
	return inst, nil
}

func tokenize(line string) []string {
	line = strings.ReplaceAll(line, ",", " ")
	return strings.Fields(line)
}

func parseReg(tok string) (int8, error) {
	tok = strings.ToUpper(tok)
	if !strings.HasPrefix(tok, "R") {
		return 0, fmt.Errorf("expected register, got %q", tok)
	}
	n, err := strconv.Atoi(tok[1:])
	if err != nil || n < 0 || n >= arch.NumRegs {
		return 0, fmt.Errorf("invalid register %q", tok)
	}
	return int8(n), nil
}

func parseImm(tok string) (int32, error) {
	tok = strings.TrimPrefix(tok, "#")
	n, err := strconv.ParseInt(tok, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid literal %q", tok)
	}
	return int32(n), nil
}
