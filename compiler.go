package main

import "fmt"

// compile lowers expr into stream per §4.3's table, threading env for
// reference resolution and vm for stream registration (Lambda) and symbol
// interning (SymbolLit). It returns the number of instructions appended,
// not a semantic value -- correctness lives entirely in stream's mutation,
// matching the C compiler's compile_expression contract (compiler.c).
func compile(vm *VM, env *Env, stream *InstructionStream, expr Expr) (uint, error) {
	start := stream.Len()

	switch e := expr.(type) {
	case NumberLit:
		stream.Append(Instruction{Op: OpPUSHN, Imm: e.Value})

	case SymbolLit:
		id := vm.symbols.symbolicate(e.Name)
		stream.Append(Instruction{Op: OpPUSHS, Imm: float64(id)})

	case Ref:
		if err := compileRef(env, stream, e.Name); err != nil {
			return 0, compileError{fmt.Sprintf("reference %q", e.Name), err}
		}

	case ListLit:
		if err := compileListLit(vm, env, stream, e); err != nil {
			return 0, err
		}

	case Lambda:
		if err := compileLambda(vm, env, stream, e); err != nil {
			return 0, err
		}

	case If:
		return compileIf(vm, env, stream, e)

	case Application:
		if err := compileApplication(vm, env, stream, e); err != nil {
			return 0, err
		}

	default:
		return 0, compileError{"expression", malformedError(fmt.Sprintf("unrecognized expression type %T", expr))}
	}

	return stream.Len() - start, nil
}

// compileRef resolves name against env and emits the addressing-mode opcode
// the binding's kind calls for.
func compileRef(env *Env, stream *InstructionStream, name string) error {
	kind, offset, ok := env.Find(name)
	if !ok {
		return unknownIdentifierError(name)
	}
	var op Opcode
	switch kind {
	case KindGlobalRef:
		op = OpGETGL
	case KindLocalRef:
		op = OpGETLC
	case KindArgumentRef:
		op = OpGETAG
	}
	stream.Append(Instruction{Op: op, Imm: float64(offset)})
	return nil
}

// compileListLit lowers `(list e1 .. en)`: push the Null tail, then cons the
// elements on from last to first so e1 ends up as the outermost car.
func compileListLit(vm *VM, env *Env, stream *InstructionStream, lit ListLit) error {
	stream.Append(Instruction{Op: OpPUSHZ})
	for i := len(lit.Elements) - 1; i >= 0; i-- {
		if _, err := compile(vm, env, stream, lit.Elements[i]); err != nil {
			return compileError{"list element", err}
		}
		stream.Append(Instruction{Op: OpCONS})
	}
	return nil
}

// compileLambda allocates the body a fresh stream, binds its parameters as
// Argument refs in a child scope, compiles the body, and emits PUSHL in the
// enclosing stream. The child scope is never kept past this call: lambda
// parameters are visible only while compiling their own body (§3 Lifecycle).
func compileLambda(vm *VM, env *Env, stream *InstructionStream, lam Lambda) error {
	id := vm.NewStream()
	bodyEnv := NewChildEnv(env)
	for i, p := range lam.Params {
		bodyEnv.Add(p, KindArgumentRef, uint(i))
	}

	body := vm.stream(id)
	if _, err := compile(vm, bodyEnv, body, lam.Body); err != nil {
		return compileError{"lambda body", err}
	}
	body.Append(Instruction{Op: OpRET})

	stream.Append(Instruction{Op: OpPUSHL, Imm: float64(id)})
	return nil
}

// compileApplication routes to the inline built-in-opcode form when the head
// is a bare reference to one of §4.3's built-ins, otherwise to a user/
// anonymous-lambda CALL+CLOSE.
func compileApplication(vm *VM, env *Env, stream *InstructionStream, app Application) error {
	if ref, ok := app.Head.(Ref); ok {
		if op, ok := builtinOpcodes[ref.Name]; ok {
			return compileBuiltinApplication(vm, env, stream, op, app.Args)
		}
	}
	return compileUserApplication(vm, env, stream, app)
}

func compileBuiltinApplication(vm *VM, env *Env, stream *InstructionStream, op Opcode, args []Expr) error {
	for i := len(args) - 1; i >= 0; i-- {
		if _, err := compile(vm, env, stream, args[i]); err != nil {
			return compileError{"built-in argument", err}
		}
	}
	stream.Append(Instruction{Op: op})
	return nil
}

func compileUserApplication(vm *VM, env *Env, stream *InstructionStream, app Application) error {
	for i := len(app.Args) - 1; i >= 0; i-- {
		if _, err := compile(vm, env, stream, app.Args[i]); err != nil {
			return compileError{"application argument", err}
		}
	}
	if _, err := compile(vm, env, stream, app.Head); err != nil {
		return compileError{"application head", err}
	}
	stream.Append(Instruction{Op: OpCALL})
	stream.Append(Instruction{Op: OpCLOSE, Imm: float64(len(app.Args))})
	return nil
}

// compileIf implements §4.3/§9's branch patching: the true and false
// branches are compiled first into scratch streams (so their lengths are
// known), then spliced into the real stream with their own internal branch
// targets shifted by the splice point -- the same "placeholder, remember the
// address, patch once the length is known" idiom gothird's THIRD-level
// `if`/`then`/`else` uses (third.go), applied one level down at the Go
// compiler instead of at the bootstrapped language's own compiler.
func compileIf(vm *VM, env *Env, stream *InstructionStream, n If) (uint, error) {
	start := stream.Len()

	var trueBranch, falseBranch InstructionStream
	if _, err := compile(vm, env, &trueBranch, n.Then); err != nil {
		return 0, compileError{"if-then", err}
	}
	if _, err := compile(vm, env, &falseBranch, n.Else); err != nil {
		return 0, compileError{"if-else", err}
	}
	if _, err := compile(vm, env, stream, n.Cond); err != nil {
		return 0, compileError{"if-cond", err}
	}

	bfAt := stream.Append(Instruction{Op: OpBF})
	trueStart := stream.Len()
	appendShifted(stream, &trueBranch, trueStart)

	bAt := stream.Append(Instruction{Op: OpB})
	falseStart := stream.Len()
	appendShifted(stream, &falseBranch, falseStart)

	end := stream.Len()
	stream.PatchImm(bfAt, float64(falseStart))
	stream.PatchImm(bAt, float64(end))

	return end - start, nil
}

// appendShifted copies src's instructions onto dst, adding shift to the
// immediate of any branch instruction -- src's own branch targets were
// computed as absolute offsets within src (starting at 0), so they must be
// rebased onto dst's coordinate space.
func appendShifted(dst, src *InstructionStream, shift uint) {
	for _, in := range src.All() {
		if isBranchOp(in.Op) {
			in.Imm += float64(shift)
		}
		dst.Append(in)
	}
}

func isBranchOp(op Opcode) bool {
	switch op {
	case OpB, OpBT, OpBF:
		return true
	default:
		return false
	}
}
