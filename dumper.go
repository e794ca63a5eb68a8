package main

import (
	"fmt"
	"strings"
)

// formatInstruction renders one compiled instruction as "OFFSET OPNAME imm",
// the same fixed-column disassembly shape gothird's dumper.go uses for FIRST
// memory, adapted to one opcode-plus-immediate cell per line instead of two
// FIRST cells.
func formatInstruction(offset uint, in Instruction) string {
	return fmt.Sprintf("%4d %v", offset, in)
}

// Disassemble renders every registered stream, in registration order, each
// prefixed with a "stream N:" header -- the entry point SPEC_FULL.md's
// supplemented disassembler feature names. The CLI does not call it.
func (vm *VM) Disassemble() string {
	var b strings.Builder
	for id, s := range vm.streams {
		fmt.Fprintf(&b, "stream %d:\n", id)
		for _, line := range s.Disassemble() {
			b.WriteString("  ")
			b.WriteString(line)
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// DumpStack renders the live data stack, top first, resolving each entry to
// its heap object -- used by the CLI's -dump flag and -stack meta-command and
// by tests that assert on end-of-run stack shape without reaching into VM
// internals.
func (vm *VM) DumpStack() string {
	var b strings.Builder
	all := vm.dataStack.All()
	for i := len(all) - 1; i >= 0; i-- {
		idx := all[i]
		obj := vm.heap.At(idx)
		fmt.Fprintf(&b, "%4d: #%d %v\n", len(all)-1-i, idx, vm.describe(obj))
	}
	return b.String()
}

// HeapUsage reports how many objects are live against the configured limit
// (0 meaning unbounded), used by the REPL's -heap-usage meta-command.
func (vm *VM) HeapUsage() (used, limit uint) {
	return vm.heap.Len(), vm.heap.vec.Limit
}

// describe renders an Object's payload for the kind it actually holds,
// without forcing it -- DumpStack is a read-only diagnostic, never an
// evaluation trigger.
func (vm *VM) describe(obj Object) string {
	switch obj.Kind {
	case KindNull:
		return "null"
	case KindNumber:
		return fmt.Sprintf("%v", obj.Num)
	case KindSymbol:
		return vm.symbols.string(uint(obj.Sym))
	case KindList:
		return fmt.Sprintf("(#%d . #%d)", obj.Car, obj.Cdr)
	case KindLambda:
		return fmt.Sprintf("lambda@stream%d", obj.Stream)
	case KindThunk:
		return fmt.Sprintf("thunk@stream%d", obj.Stream)
	default:
		return obj.Kind.String()
	}
}
