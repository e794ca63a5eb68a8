package main

import (
	"context"
	"fmt"

	"github.com/atto-lang/atto/internal/panicerr"
)

// Driver runs the read-compile-execute loop of §4.6 over a sequence of
// top-level forms. Producing those forms -- lexing, parsing, semantic
// analysis -- is the external collaborator's job (§1); Driver only ever
// consumes the typed Expr tree.
type Driver struct {
	vm *VM
}

// NewDriver wraps vm in a Driver ready to evaluate top-level forms against
// it.
func NewDriver(vm *VM) *Driver { return &Driver{vm: vm} }

// Eval processes one top-level form. A Define binds or rebinds a global
// (§4.5) and returns the object it bound as it stands, without forcing it,
// so a thunked (composite) body stays unevaluated; any other form compiles
// to a fresh stream, runs it, and the (forced) top of the data stack is
// returned for the caller to print.
func (d *Driver) Eval(ctx context.Context, form Expr) (Object, error) {
	if def, ok := form.(Define); ok {
		if err := defineGlobal(ctx, d.vm, def.Name, def.Body); err != nil {
			return Object{}, err
		}
		return d.vm.heap.At(d.vm.dataStack.Last()), nil
	}

	id := d.vm.NewStream()
	stream := d.vm.stream(id)
	if _, err := compile(d.vm, d.vm.globalEnv, stream, form); err != nil {
		return Object{}, compileError{"top-level expression", err}
	}
	stream.Append(Instruction{Op: OpSTOP})

	var obj Object
	if err := panicerr.Recover("eval", func() error {
		if err := d.vm.runStream(ctx, id); err != nil {
			return err
		}
		obj = d.topOfStack()
		return nil
	}); err != nil {
		return Object{}, err
	}
	return obj, nil
}

// topOfStack forces and returns the value on top of the data stack, or Null
// if the stack is empty.
func (d *Driver) topOfStack() Object {
	if d.vm.dataStack.Len() == 0 {
		return nullObject()
	}
	idx := d.vm.dataStack.Last()
	d.vm.force(idx)
	return d.vm.heap.At(idx)
}

// Format renders obj the way the REPL prints an evaluation result (§6):
// "[N] value", with N an increasing counter the caller maintains.
func (d *Driver) Format(n int, obj Object) string {
	return fmt.Sprintf("[%d] %v", n, d.vm.describe(obj))
}
