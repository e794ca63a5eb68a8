/*
Command atto implements Atto, a small, lazily evaluated functional language
in the Lisp family.

The package is a read-compile-execute loop: source forms (already parsed
into a typed expression tree by internal/sexpr, or by any equivalent upstream
front end) are lowered by a Compiler into linear instruction streams and run
by a stack-based VM with call-by-need semantics for composite expressions.

The three load-bearing pieces are:

  - a Compiler that resolves lexical references to one of three addressing
    modes (global, local, argument) and lowers expressions into Instruction
    streams (see compiler.go, expr.go);

  - a VM over a tagged Object heap, with a data stack of heap indices, a call
    stack of Frames, and an opcode table covering arithmetic, comparison,
    list primitives, control flow, closures, and stack manipulation (see
    vm.go, opcodes.go, object.go);

  - a thunk mechanism: composite expressions bound by a top-level define are
    not run immediately but packaged as Thunk objects; primitive operations
    force their operands, and forcing memoizes the result in place (see
    vm.go's force method, definition.go).

The heap and instruction streams grow monotonically within a VM session:
there is no garbage collector and no tail-call optimization. See DESIGN.md
for the grounding of each piece and the open questions §9 of the
specification left for an implementation to resolve.
*/
package main
