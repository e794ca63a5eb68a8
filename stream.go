package main

import (
	"fmt"

	"github.com/atto-lang/atto/internal/mem"
)

// Instruction is one opcode plus its optional immediate, represented
// uniformly regardless of whether the immediate is a number literal, an
// interned symbol id, or a branch/local offset (§3). Bundling both into one
// value, rather than gothird's "one opcode cell then an operand cell" FIRST
// memory layout, makes every instruction stream position both an
// instruction index and the VM's program-counter unit.
type Instruction struct {
	Op  Opcode
	Imm float64
}

// ImmOffset interprets Imm as an unsigned offset (branch target, local/arg
// index, interned symbol id, or CLOSE arity).
func (in Instruction) ImmOffset() uint { return uint(in.Imm) }

func (in Instruction) String() string {
	switch in.Op {
	case OpNOP, OpCALL, OpRET, OpSTOP, OpADD, OpSUB, OpMUL, OpDIV,
		OpISEQ, OpISLT, OpISLET, OpISGT, OpISGET,
		OpCAR, OpCDR, OpCONS, OpISNULL,
		OpDUP, OpDROP, OpSWAP:
		return in.Op.String()
	default:
		return fmt.Sprintf("%v %v", in.Op, in.Imm)
	}
}

// InstructionStream is a growable sequence of Instructions compiled from one
// top-level expression or one lambda body.
type InstructionStream struct {
	vec mem.Vec[Instruction]
}

// Len returns the number of instructions compiled so far.
func (s *InstructionStream) Len() uint { return s.vec.Len() }

// At returns the instruction at offset, or a zero Instruction (opcode NOP)
// past the end.
func (s *InstructionStream) At(offset uint) Instruction {
	in, _ := s.vec.At(offset)
	return in
}

// Append adds in at the end of the stream and returns its offset.
func (s *InstructionStream) Append(in Instruction) uint {
	addr, _ := s.vec.Append(in)
	return addr
}

// PatchImm overwrites the immediate of the instruction already compiled at
// offset -- used by the compiler's two-pass `if` backpatching (§4.3),
// the same "compile a placeholder, remember its address, patch it once the
// target is known" idiom as gothird's THIRD-level `if`/`then` (third.go).
func (s *InstructionStream) PatchImm(offset uint, imm float64) {
	in := s.At(offset)
	in.Imm = imm
	_ = s.vec.Set(offset, in)
}

// All returns every instruction compiled so far, in stream order.
func (s *InstructionStream) All() []Instruction { return s.vec.All() }

// Disassemble renders the stream as "OFFSET OPNAME imm" lines, used by the
// dumper and by tests asserting on exact compiled output.
func (s *InstructionStream) Disassemble() []string {
	lines := make([]string, 0, s.vec.Len())
	for i, in := range s.vec.All() {
		line := formatInstruction(uint(i), in)
		lines = append(lines, line)
	}
	return lines
}
