package main

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/atto-lang/atto/internal/runeio"
	"github.com/atto-lang/atto/internal/sexpr"
)

// evalAll feeds src through the sexpr reader, semantic analysis, and the
// driver, in order, returning the Object left by the last top-level form --
// the harness every §8 end-to-end scenario runs through.
func evalAll(t *testing.T, driver *Driver, src string) Object {
	t.Helper()
	reader := sexpr.NewReader(runeio.NewReader(strings.NewReader(src)))

	var last Object
	for {
		node, err := reader.Read()
		if err != nil {
			break
		}
		form, err := ParseForm(node)
		require.NoError(t, err, "parsing %q", src)
		last, err = driver.Eval(context.Background(), form)
		require.NoError(t, err, "evaluating %q", src)
	}
	return last
}

func Test_EndToEnd_add(t *testing.T) {
	vm := New()
	driver := NewDriver(vm)
	obj := evalAll(t, driver, `(add 2 3)`)
	require.Equal(t, KindNumber, obj.Kind)
	require.Equal(t, float64(5), obj.Num)
}

func Test_EndToEnd_ifLt(t *testing.T) {
	vm := New()
	driver := NewDriver(vm)
	obj := evalAll(t, driver, `(if (lt 1 2) 10 20)`)
	require.Equal(t, KindNumber, obj.Kind)
	require.Equal(t, float64(10), obj.Num)
}

func Test_EndToEnd_thunkedDefine(t *testing.T) {
	vm := New()
	driver := NewDriver(vm)
	obj := evalAll(t, driver, `(define x (add 1 2)) x`)
	require.Equal(t, KindNumber, obj.Kind)
	require.Equal(t, float64(3), obj.Num)
}

func Test_EndToEnd_lambdaSquare(t *testing.T) {
	vm := New()
	driver := NewDriver(vm)
	obj := evalAll(t, driver, `(define sq (lambda (n) (mul n n))) (sq 7)`)
	require.Equal(t, KindNumber, obj.Kind)
	require.Equal(t, float64(49), obj.Num)
}

func Test_EndToEnd_recursiveFactorial(t *testing.T) {
	vm := New()
	driver := NewDriver(vm)
	obj := evalAll(t, driver, `
		(define fact (lambda (n) (if (eq n 0) 1 (mul n (fact (sub n 1))))))
		(fact 6)
	`)
	require.Equal(t, KindNumber, obj.Kind)
	require.Equal(t, float64(720), obj.Num)
}

func Test_EndToEnd_recursiveFactorial5(t *testing.T) {
	vm := New()
	driver := NewDriver(vm)
	obj := evalAll(t, driver, `
		(define f (lambda (n) (if (eq n 0) 1 (mul n (f (sub n 1))))))
		(f 5)
	`)
	require.Equal(t, float64(120), obj.Num)
}

func Test_EndToEnd_listCarCdr(t *testing.T) {
	vm := New()
	driver := NewDriver(vm)
	obj := evalAll(t, driver, `(car (cdr (list 10 20 30)))`)
	require.Equal(t, KindNumber, obj.Kind)
	require.Equal(t, float64(20), obj.Num)
}

func Test_Properties_nullOfEmptyAndNonEmptyList(t *testing.T) {
	vm := New()
	driver := NewDriver(vm)

	empty := evalAll(t, driver, `(null (list))`)
	require.Equal(t, SymTrue, empty.Sym)

	nonEmpty := evalAll(t, driver, `(null (list 1))`)
	require.Equal(t, SymFalse, nonEmpty.Sym)
}

func Test_Properties_eqReflexiveAndLtGtDual(t *testing.T) {
	vm := New()
	driver := NewDriver(vm)

	require.Equal(t, SymTrue, evalAll(t, driver, `(eq 9 9)`).Sym)
	require.Equal(t, evalAll(t, driver, `(lt 2 5)`).Sym, evalAll(t, driver, `(gt 5 2)`).Sym)
}

func Test_Properties_consCarCdrRoundTrip(t *testing.T) {
	vm := New()
	driver := NewDriver(vm)

	require.Equal(t, float64(7), evalAll(t, driver, `(car (cons 7 8))`).Num)
	require.Equal(t, float64(8), evalAll(t, driver, `(cdr (cons 7 8))`).Num)
}

func Test_RunnableAfterEachScenario(t *testing.T) {
	// each scenario must leave the VM in a runnable state for the next
	// input: no leaked call frames, no dangling RUNNING flag (§8).
	vm := New()
	driver := NewDriver(vm)

	evalAll(t, driver, `(define sq (lambda (n) (mul n n))) (sq 3)`)
	require.Equal(t, uint(0), vm.callStack.Len(), "no leaked call frames")
	require.Equal(t, uint8(0), vm.flags&FlagRunning, "RUNNING must be clear between inputs")

	obj := evalAll(t, driver, `(add 1 1)`)
	require.Equal(t, float64(2), obj.Num, "VM must still evaluate correctly afterward")
}

func Test_TypeError_ifNonSymbolCondition(t *testing.T) {
	vm := New()
	driver := NewDriver(vm)

	_, err := driver.Eval(context.Background(), If{
		Cond: NumberLit{Value: 1},
		Then: NumberLit{Value: 10},
		Else: NumberLit{Value: 20},
	})
	require.Error(t, err, "if with a non-symbol condition must be a runtime error, not silent coercion")
}

func Test_ThunkForcing_isIdempotent(t *testing.T) {
	vm := New()

	streamID := vm.NewStream()
	s := vm.stream(streamID)
	s.Append(Instruction{Op: OpPUSHN, Imm: 42})
	s.Append(Instruction{Op: OpSTOP})

	idx := vm.alloc(thunkObject(streamID))

	vm.force(idx)
	require.Equal(t, KindNumber, vm.heap.At(idx).Kind)
	require.Equal(t, float64(42), vm.heap.At(idx).Num)

	// forcing an already-forced thunk must be a no-op.
	vm.force(idx)
	require.Equal(t, KindNumber, vm.heap.At(idx).Kind)
	require.Equal(t, float64(42), vm.heap.At(idx).Num)
}
