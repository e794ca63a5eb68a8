package main

import (
	"context"

	"github.com/atto-lang/atto/internal/panicerr"
)

// defineGlobal implements §4.5. The name is added to the global environment
// *before* the body is compiled, so the body's own references to name
// resolve (recursion); if anything after that point fails -- compile error
// or a runtime halt while eagerly running an Immediate body -- the
// pre-binding is rolled back via the undo closure Env.Add returned, so a
// failed define never leaves a dangling global pointing at an unallocated
// stack slot (§9's open question, resolved in favor of rollback).
func defineGlobal(ctx context.Context, vm *VM, name string, body Expr) error {
	offset := vm.dataStack.Len()
	undo := vm.globalEnv.Add(name, KindGlobalRef, offset)

	id := vm.NewStream()
	stream := vm.stream(id)
	if _, err := compile(vm, vm.globalEnv, stream, body); err != nil {
		undo()
		return compileError{"define " + name, err}
	}
	stream.Append(Instruction{Op: OpSTOP})

	err := panicerr.Recover("define "+name, func() error {
		if isImmediate(body) {
			return vm.runStream(ctx, id)
		}
		thunkIdx := vm.alloc(thunkObject(id))
		vm.pushData(thunkIdx)
		return nil
	})
	if err != nil {
		undo()
		return err
	}
	return nil
}
