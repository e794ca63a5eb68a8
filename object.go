package main

import (
	"fmt"

	"github.com/atto-lang/atto/internal/mem"
)

// HeapIndex identifies a slot in the heap; stable for the life of a VM
// session (the heap never compacts or relocates an object).
type HeapIndex uint

// StreamID identifies one compiled instruction stream, registered on the VM
// at compile time and referenced from Lambda/Thunk objects and the PC.
type StreamID uint

// ObjKind tags the variant an Object currently holds.
type ObjKind byte

const (
	KindNull ObjKind = iota
	KindNumber
	KindSymbol
	KindList
	KindLambda
	KindThunk
)

func (k ObjKind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindNumber:
		return "number"
	case KindSymbol:
		return "symbol"
	case KindList:
		return "list"
	case KindLambda:
		return "lambda"
	case KindThunk:
		return "thunk"
	default:
		return fmt.Sprintf("ObjKind(%d)", byte(k))
	}
}

// Object is a tagged heap value. Only the fields relevant to Kind are
// meaningful; this mirrors a C-style tagged union as a flat Go struct so the
// heap stays a single contiguous slice (internal/mem.Vec[Object]) instead of
// one allocation per boxed value.
type Object struct {
	Kind ObjKind

	Num float64  // KindNumber
	Sym uint64   // KindSymbol; 0 and 1 are the interned false/true ids
	Car HeapIndex // KindList
	Cdr HeapIndex // KindList

	Stream StreamID // KindLambda, KindThunk
}

// SymFalse and SymTrue are the pre-interned boolean symbol ids produced by
// comparison opcodes and tested by BT/BF.
const (
	SymFalse uint64 = 0
	SymTrue  uint64 = 1
)

func nullObject() Object              { return Object{Kind: KindNull} }
func numberObject(n float64) Object   { return Object{Kind: KindNumber, Num: n} }
func symbolObject(id uint64) Object   { return Object{Kind: KindSymbol, Sym: id} }
func listObject(car, cdr HeapIndex) Object {
	return Object{Kind: KindList, Car: car, Cdr: cdr}
}
func lambdaObject(stream StreamID) Object { return Object{Kind: KindLambda, Stream: stream} }
func thunkObject(stream StreamID) Object  { return Object{Kind: KindThunk, Stream: stream} }

func boolObject(b bool) Object {
	if b {
		return symbolObject(SymTrue)
	}
	return symbolObject(SymFalse)
}

// Heap is the flat, append-only vector of tagged Objects described in §3 of
// the specification. There is no garbage collection and no compaction:
// HeapLimit (via Vec.Limit) is the only bound on its growth.
type Heap struct {
	vec mem.Vec[Object]
}

// Alloc appends obj and returns its new, permanent HeapIndex.
func (h *Heap) Alloc(obj Object) (HeapIndex, error) {
	addr, err := h.vec.Append(obj)
	return HeapIndex(addr), err
}

// At returns the object currently stored at i.
func (h *Heap) At(i HeapIndex) Object {
	obj, _ := h.vec.At(uint(i))
	return obj
}

// Set overwrites the object at i in place -- used only by thunk forcing
// (§4.4) to memoize a computed result over the thunk that produced it,
// preserving every HeapIndex that referred to the thunk.
func (h *Heap) Set(i HeapIndex, obj Object) {
	_ = h.vec.Set(uint(i), obj)
}

// Len reports how many objects have been allocated so far.
func (h *Heap) Len() uint { return h.vec.Len() }

// SetLimit bounds the heap's growth; see VMOption WithHeapLimit.
func (h *Heap) SetLimit(limit uint) { h.vec.Limit = limit }
