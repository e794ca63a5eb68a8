package main

// opcodeTable dispatches each Opcode to its handler; index is the Opcode
// value itself, mirroring gothird's vmCodeTable array-of-funcs dispatch
// (first.go) rather than a switch, so adding an opcode is "add a constant,
// add a table entry" instead of editing a growing switch.
var opcodeTable [opcodeMax]func(vm *VM, in Instruction)

func init() {
	opcodeTable[OpNOP] = func(vm *VM, in Instruction) {}

	opcodeTable[OpCALL] = opCall
	opcodeTable[OpRET] = opRet
	opcodeTable[OpB] = opBranch
	opcodeTable[OpBT] = opBranchIf(true)
	opcodeTable[OpBF] = opBranchIf(false)
	opcodeTable[OpCLOSE] = opClose
	opcodeTable[OpSTOP] = opStop

	opcodeTable[OpADD] = binaryArith(OpADD, func(a, b float64) float64 { return a + b })
	opcodeTable[OpSUB] = binaryArith(OpSUB, func(a, b float64) float64 { return a - b })
	opcodeTable[OpMUL] = binaryArith(OpMUL, func(a, b float64) float64 { return a * b })
	opcodeTable[OpDIV] = binaryArith(OpDIV, func(a, b float64) float64 { return a / b })

	opcodeTable[OpISEQ] = binaryCompare(OpISEQ, func(a, b float64) bool { return a == b })
	opcodeTable[OpISLT] = binaryCompare(OpISLT, func(a, b float64) bool { return a < b })
	opcodeTable[OpISLET] = binaryCompare(OpISLET, func(a, b float64) bool { return a <= b })
	opcodeTable[OpISGT] = binaryCompare(OpISGT, func(a, b float64) bool { return a > b })
	opcodeTable[OpISGET] = binaryCompare(OpISGET, func(a, b float64) bool { return a >= b })

	opcodeTable[OpCAR] = opCar
	opcodeTable[OpCDR] = opCdr
	opcodeTable[OpCONS] = opCons
	opcodeTable[OpISNULL] = opIsNull

	opcodeTable[OpPUSHN] = opPushN
	opcodeTable[OpPUSHS] = opPushS
	opcodeTable[OpPUSHL] = opPushL
	opcodeTable[OpPUSHZ] = opPushZ

	opcodeTable[OpDUP] = unimplemented(OpDUP)
	opcodeTable[OpDROP] = unimplemented(OpDROP)
	opcodeTable[OpSWAP] = unimplemented(OpSWAP)

	opcodeTable[OpGETGL] = opGetGlobal
	opcodeTable[OpGETLC] = opGetLocal
	opcodeTable[OpGETAG] = opGetArgument
}

// unimplemented halts with a clear, documented-gap error rather than silent
// wrong behavior for the opcodes §9 lists as reserved (DUP/DROP/SWAP -- the
// compiler never emits them, but the opcode table must still answer for
// their Opcode value if something calls them directly, e.g. from a test or
// a hand-assembled stream).
func unimplemented(op Opcode) func(vm *VM, in Instruction) {
	return func(vm *VM, in Instruction) {
		vm.halt(fatalError{unimplementedOpcodeError(op)})
	}
}

type unimplementedOpcodeError Opcode

func (op unimplementedOpcodeError) Error() string {
	return Opcode(op).String() + " is reserved and not implemented"
}

//// Control flow

func opCall(vm *VM, in Instruction) {
	lambdaIdx := vm.popData()
	vm.force(lambdaIdx)
	obj := vm.heap.At(lambdaIdx)
	if obj.Kind != KindLambda {
		vm.halt(typeError{OpCALL, KindLambda, obj.Kind})
	}
	if _, err := vm.callStack.Append(Frame{
		Stream:             vm.pc.Stream,
		ReturnOffset:       vm.pc.Offset,
		EntryDataStackSize: vm.dataStack.Len(),
	}); err != nil {
		vm.halt(err)
	}
	vm.pc = pcState{Stream: obj.Stream, Offset: 0}
}

func opRet(vm *VM, in Instruction) {
	if vm.callStack.Len() == 0 {
		// top-level program completed; a nil halt is not an error (§4.6).
		vm.halt(nil)
	}
	f := vm.callStack.Pop()
	vm.pc = pcState{Stream: f.Stream, Offset: f.ReturnOffset}
	vm.dataStack.Truncate(f.EntryDataStackSize + 1)
}

func opBranch(vm *VM, in Instruction) {
	vm.pc.Offset = in.ImmOffset()
}

func opBranchIf(want bool) func(vm *VM, in Instruction) {
	return func(vm *VM, in Instruction) {
		idx := vm.popData()
		vm.force(idx)
		obj := vm.heap.At(idx)
		if obj.Kind != KindSymbol {
			vm.halt(typeError{in.Op, KindSymbol, obj.Kind})
		}
		is := obj.Sym == SymTrue
		if is == want {
			vm.pc.Offset = in.ImmOffset()
		}
	}
}

// opClose discards the n values just below the top of the data stack,
// collapsing an application's argument window down to its result -- the
// Atto-level equivalent of gothird's "close the frame" bookkeeping. The
// surviving top-of-stack is the application's result.
func opClose(vm *VM, in Instruction) {
	n := in.ImmOffset()
	top := vm.popData()
	size := vm.dataStack.Len()
	if n > size {
		vm.halt(errEmptyDataStack)
	}
	vm.dataStack.Truncate(size - n)
	vm.pushData(top)
}

func opStop(vm *VM, in Instruction) {
	vm.flags &^= FlagRunning
}

//// Arithmetic & comparison

func binaryArith(op Opcode, fn func(a, b float64) float64) func(vm *VM, in Instruction) {
	return func(vm *VM, in Instruction) {
		a, b := vm.popData(), vm.popData()
		vm.force(a)
		vm.force(b)
		aObj, bObj := vm.heap.At(a), vm.heap.At(b)
		if aObj.Kind != KindNumber {
			vm.halt(typeError{op, KindNumber, aObj.Kind})
		}
		if bObj.Kind != KindNumber {
			vm.halt(typeError{op, KindNumber, bObj.Kind})
		}
		vm.pushData(vm.alloc(numberObject(fn(aObj.Num, bObj.Num))))
	}
}

func binaryCompare(op Opcode, fn func(a, b float64) bool) func(vm *VM, in Instruction) {
	return func(vm *VM, in Instruction) {
		a, b := vm.popData(), vm.popData()
		vm.force(a)
		vm.force(b)
		aObj, bObj := vm.heap.At(a), vm.heap.At(b)
		if aObj.Kind != KindNumber {
			vm.halt(typeError{op, KindNumber, aObj.Kind})
		}
		if bObj.Kind != KindNumber {
			vm.halt(typeError{op, KindNumber, bObj.Kind})
		}
		vm.pushData(vm.alloc(boolObject(fn(aObj.Num, bObj.Num))))
	}
}

//// List primitives

func opCar(vm *VM, in Instruction) {
	idx := vm.popData()
	vm.force(idx)
	obj := vm.heap.At(idx)
	if obj.Kind != KindList {
		vm.halt(typeError{OpCAR, KindList, obj.Kind})
	}
	vm.pushData(obj.Car)
}

func opCdr(vm *VM, in Instruction) {
	idx := vm.popData()
	vm.force(idx)
	obj := vm.heap.At(idx)
	if obj.Kind != KindList {
		vm.halt(typeError{OpCDR, KindList, obj.Kind})
	}
	vm.pushData(obj.Cdr)
}

func opCons(vm *VM, in Instruction) {
	car, cdr := vm.popData(), vm.popData()
	vm.pushData(vm.alloc(listObject(car, cdr)))
}

func opIsNull(vm *VM, in Instruction) {
	idx := vm.popData()
	vm.force(idx)
	obj := vm.heap.At(idx)
	vm.pushData(vm.alloc(boolObject(obj.Kind == KindNull)))
}

//// Stack push

func opPushN(vm *VM, in Instruction) { vm.pushData(vm.alloc(numberObject(in.Imm))) }
func opPushS(vm *VM, in Instruction) { vm.pushData(vm.alloc(symbolObject(uint64(in.ImmOffset())))) }
func opPushL(vm *VM, in Instruction) {
	vm.pushData(vm.alloc(lambdaObject(StreamID(in.ImmOffset()))))
}
func opPushZ(vm *VM, in Instruction) { vm.pushData(vm.alloc(nullObject())) }

//// Addressing

func opGetGlobal(vm *VM, in Instruction) {
	k := in.ImmOffset()
	if k >= vm.dataStack.Len() {
		vm.halt(errEmptyDataStack)
	}
	idx, err := vm.dataStack.At(k)
	if err != nil {
		vm.halt(err)
	}
	vm.pushData(idx)
}

func opGetLocal(vm *VM, in Instruction) {
	idx, err := vm.dataStack.At(vm.frame().EntryDataStackSize + in.ImmOffset())
	if err != nil {
		vm.halt(err)
	}
	vm.pushData(idx)
}

func opGetArgument(vm *VM, in Instruction) {
	base := vm.frame().EntryDataStackSize
	k := in.ImmOffset()
	if k+1 > base {
		vm.halt(errEmptyDataStack)
	}
	idx, err := vm.dataStack.At(base - k - 1)
	if err != nil {
		vm.halt(err)
	}
	vm.pushData(idx)
}
