package main

import (
	"context"
	"io"

	"github.com/atto-lang/atto/internal/fileinput"
	"github.com/atto-lang/atto/internal/flushio"
	"github.com/atto-lang/atto/internal/mem"
)

// vmFlag bits, tracked in VM.flags the way gothird tracks a handful of
// session-wide booleans in one byte rather than separate fields.
const (
	FlagRunning uint8 = 1 << iota
	FlagVerbose
)

// pcState is the VM's program counter: which instruction stream, and which
// offset within it.
type pcState struct {
	Stream StreamID
	Offset uint
}

// Frame records a call site: where to resume, and the data-stack size at
// the moment of the call/force, which is the origin GETAG/GETLC addressing
// is relative to (§4's "entry-point data-stack size").
type Frame struct {
	Stream             StreamID
	ReturnOffset       uint
	EntryDataStackSize uint
}

// VM is the stack-based virtual machine described in §4.4: a data stack of
// heap indices, a heap of tagged objects, a call stack of Frames, a set of
// registered instruction streams, a program counter, and a flags byte.
type VM struct {
	logging
	fileinput.Input

	out     flushio.WriteFlusher
	closers []io.Closer

	heap      Heap
	dataStack mem.Vec[HeapIndex]
	callStack mem.Vec[Frame]
	streams   []*InstructionStream

	pc    pcState
	flags uint8

	globalEnv *Env
	symbols   symbols
}

func newVM() *VM {
	vm := &VM{globalEnv: &Env{}}
	// id 0 and 1 are reserved for the false/true boolean symbols (§6).
	vm.symbols.symbolicate("false")
	vm.symbols.symbolicate("true")
	return vm
}

// NewStream registers a fresh, empty instruction stream and returns its id.
func (vm *VM) NewStream() StreamID {
	id := StreamID(len(vm.streams))
	vm.streams = append(vm.streams, &InstructionStream{})
	return id
}

func (vm *VM) stream(id StreamID) *InstructionStream {
	return vm.streams[id]
}

func (vm *VM) currentStream() *InstructionStream {
	return vm.streams[vm.pc.Stream]
}

// halt aborts the current evaluation: it flushes output, logs the error,
// and panics with a haltError for panicerr.Recover (installed by Run) to
// turn back into a plain error at the top-level-driver boundary (§7).
func (vm *VM) halt(err error) {
	if vm.out != nil {
		_ = vm.out.Flush()
	}
	vm.logf("#", "halt: %v", err)
	panic(haltError{err})
}

func (vm *VM) alloc(obj Object) HeapIndex {
	idx, err := vm.heap.Alloc(obj)
	if err != nil {
		vm.halt(err)
	}
	return idx
}

func (vm *VM) pushData(idx HeapIndex) {
	if _, err := vm.dataStack.Append(idx); err != nil {
		vm.halt(err)
	}
}

func (vm *VM) popData() HeapIndex {
	if vm.dataStack.Len() == 0 {
		vm.halt(errEmptyDataStack)
	}
	return vm.dataStack.Pop()
}

func (vm *VM) frame() Frame {
	if vm.callStack.Len() == 0 {
		vm.halt(errEmptyCallStack)
	}
	return vm.callStack.Last()
}

// force runs a Thunk's stream to completion and mutates the thunk object in
// place to the kind/payload of its result (§4.4's force algorithm). It is a
// no-op if idx does not currently hold a Thunk, which is what makes forcing
// an already-forced thunk idempotent (§8).
func (vm *VM) force(idx HeapIndex) {
	obj := vm.heap.At(idx)
	if obj.Kind != KindThunk {
		return
	}

	savedPC := vm.pc
	savedFlags := vm.flags

	if _, err := vm.callStack.Append(Frame{
		Stream:             savedPC.Stream,
		ReturnOffset:       savedPC.Offset,
		EntryDataStackSize: vm.dataStack.Len(),
	}); err != nil {
		vm.halt(err)
	}
	vm.pc = pcState{Stream: obj.Stream, Offset: 0}
	vm.flags |= FlagRunning
	for vm.flags&FlagRunning != 0 {
		vm.step()
		if vm.pc.Offset >= vm.currentStream().Len() {
			vm.flags &^= FlagRunning
		}
	}

	vm.flags = savedFlags
	vm.pc = savedPC
	vm.callStack.Pop() // force's own synthetic frame, never popped by a RET

	result := vm.popData()
	vm.heap.Set(idx, vm.heap.At(result))
}

// step executes the instruction at the program counter, advancing past it
// by default; branch/call/return opcodes overwrite vm.pc themselves.
func (vm *VM) step() {
	in := vm.currentStream().At(vm.pc.Offset)
	vm.pc.Offset++

	if vm.logfn != nil {
		vm.logf("@", "%v s:%v r:%v", in, vm.dataStack.All(), vm.callStack.Len())
	}

	if int(in.Op) >= len(opcodeTable) || opcodeTable[in.Op] == nil {
		vm.halt(fatalError{unknownOpcode(in.Op)})
		return
	}
	opcodeTable[in.Op](vm, in)
}

// exec runs the fetch-execute loop (§4.4) until RUNNING clears or ctx is
// done, checked between instructions so evaluation stays cooperative.
func (vm *VM) exec(ctx context.Context) error {
	vm.flags |= FlagRunning
	for vm.flags&FlagRunning != 0 {
		if err := ctx.Err(); err != nil {
			return err
		}
		vm.step()
		if vm.pc.Offset >= vm.currentStream().Len() {
			vm.flags &^= FlagRunning
		}
	}
	return nil
}

// runStream points the PC at the start of stream and executes it to
// completion, used both by the top-level driver and by the definition
// handler's eager (immediate) evaluation path (§4.5, §4.6).
func (vm *VM) runStream(ctx context.Context, id StreamID) error {
	vm.pc = pcState{Stream: id, Offset: 0}
	return vm.exec(ctx)
}
