package main

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_Compile_numberLit(t *testing.T) {
	vm := New()
	var s InstructionStream
	n, err := compile(vm, &Env{}, &s, NumberLit{Value: 5})
	require.NoError(t, err)
	require.Equal(t, uint(1), n)
	require.Equal(t, Instruction{Op: OpPUSHN, Imm: 5}, s.At(0))
}

func Test_Compile_ref(t *testing.T) {
	vm := New()
	var env Env
	env.Add("x", KindGlobalRef, 3)

	var s InstructionStream
	_, err := compile(vm, &env, &s, Ref{Name: "x"})
	require.NoError(t, err)
	require.Equal(t, Instruction{Op: OpGETGL, Imm: 3}, s.At(0))
}

func Test_Compile_unknownRef(t *testing.T) {
	vm := New()
	var s InstructionStream
	_, err := compile(vm, &Env{}, &s, Ref{Name: "nope"})
	require.Error(t, err)
}

func Test_Compile_listLit(t *testing.T) {
	vm := New()
	var s InstructionStream
	_, err := compile(vm, &Env{}, &s, ListLit{Elements: []Expr{
		NumberLit{Value: 1}, NumberLit{Value: 2},
	}})
	require.NoError(t, err)

	require.Equal(t, []Instruction{
		{Op: OpPUSHZ},
		{Op: OpPUSHN, Imm: 2},
		{Op: OpCONS},
		{Op: OpPUSHN, Imm: 1},
		{Op: OpCONS},
	}, s.All())
}

func Test_Compile_builtinApplication(t *testing.T) {
	vm := New()
	var s InstructionStream
	_, err := compile(vm, &Env{}, &s, Application{
		Head: Ref{Name: "add"},
		Args: []Expr{NumberLit{Value: 2}, NumberLit{Value: 3}},
	})
	require.NoError(t, err)

	require.Equal(t, []Instruction{
		{Op: OpPUSHN, Imm: 3},
		{Op: OpPUSHN, Imm: 2},
		{Op: OpADD},
	}, s.All())
}

func Test_Compile_userApplication(t *testing.T) {
	vm := New()
	var env Env
	env.Add("f", KindGlobalRef, 0)

	var s InstructionStream
	_, err := compile(vm, &env, &s, Application{
		Head: Ref{Name: "f"},
		Args: []Expr{NumberLit{Value: 1}},
	})
	require.NoError(t, err)

	require.Equal(t, []Instruction{
		{Op: OpPUSHN, Imm: 1},
		{Op: OpGETGL, Imm: 0},
		{Op: OpCALL},
		{Op: OpCLOSE, Imm: 1},
	}, s.All())
}

func Test_Compile_lambda(t *testing.T) {
	vm := New()
	var outer InstructionStream
	_, err := compile(vm, &Env{}, &outer, Lambda{
		Params: []string{"n"},
		Body:   Ref{Name: "n"},
	})
	require.NoError(t, err)
	require.Equal(t, uint(1), outer.Len())
	require.Equal(t, OpPUSHL, outer.At(0).Op)

	body := vm.stream(StreamID(outer.At(0).ImmOffset()))
	require.Equal(t, []Instruction{
		{Op: OpGETAG, Imm: 0},
		{Op: OpRET},
	}, body.All())
}

// Test_Compile_if exercises the two-pass branch-patching arithmetic directly:
// both branches are single instructions, so the expected offsets are the
// smallest case that still distinguishes "placeholder patched to falseStart"
// from "placeholder patched to end".
func Test_Compile_if(t *testing.T) {
	vm := New()
	var env Env
	env.Add("c", KindGlobalRef, 0)

	var s InstructionStream
	n, err := compile(vm, &env, &s, If{
		Cond: Ref{Name: "c"},
		Then: NumberLit{Value: 10},
		Else: NumberLit{Value: 20},
	})
	require.NoError(t, err)
	require.Equal(t, uint(5), n)

	require.Equal(t, []Instruction{
		{Op: OpGETGL, Imm: 0},  // 0: cond
		{Op: OpBF, Imm: 4},     // 1: branch to falseStart (4) when cond is false
		{Op: OpPUSHN, Imm: 10}, // 2: true branch
		{Op: OpB, Imm: 5},      // 3: skip false branch, to end (5)
		{Op: OpPUSHN, Imm: 20}, // 4: false branch (falseStart)
	}, s.All())
}

// Test_Compile_nestedIf confirms appendShifted rebases a nested if's own
// internal branch targets when it is spliced into an outer branch, the
// precise arithmetic §9's open question on offset computation calls out.
func Test_Compile_nestedIf(t *testing.T) {
	vm := New()
	var env Env
	env.Add("a", KindGlobalRef, 0)
	env.Add("b", KindGlobalRef, 1)

	nested := If{
		Cond: Ref{Name: "b"},
		Then: NumberLit{Value: 1},
		Else: NumberLit{Value: 2},
	}

	var s InstructionStream
	_, err := compile(vm, &env, &s, If{
		Cond: Ref{Name: "a"},
		Then: nested,
		Else: NumberLit{Value: 99},
	})
	require.NoError(t, err)

	all := s.All()
	// outer cond at 0, outer BF at 1; the true branch (the nested if) starts
	// at 2 and must have had its own internal branch targets shifted by 2.
	require.Equal(t, Instruction{Op: OpGETGL, Imm: 0}, all[0])
	require.Equal(t, OpBF, all[1].Op)

	trueStart := uint(2)
	require.Equal(t, Instruction{Op: OpGETGL, Imm: 1}, all[trueStart])
	nestedBF := all[trueStart+1]
	require.Equal(t, OpBF, nestedBF.Op)
	require.Greater(t, nestedBF.ImmOffset(), trueStart, "nested branch target must be shifted into the outer stream's coordinate space, not left relative to the scratch buffer")
}
