package main

import "fmt"

// Opcode is the one-byte instruction tag described in §3/§4.4.
type Opcode byte

const (
	OpNOP Opcode = iota

	// control flow
	OpCALL
	OpRET
	OpB
	OpBT
	OpBF
	OpCLOSE
	OpSTOP

	// arithmetic
	OpADD
	OpSUB
	OpMUL
	OpDIV

	// comparison
	OpISEQ
	OpISLT
	OpISLET
	OpISGT
	OpISGET

	// list primitives
	OpCAR
	OpCDR
	OpCONS
	OpISNULL

	// stack push
	OpPUSHN
	OpPUSHS
	OpPUSHL
	OpPUSHZ

	// stack manipulation -- reserved, see §9 "Unimplemented opcodes"
	OpDUP
	OpDROP
	OpSWAP

	// addressing
	OpGETGL
	OpGETLC
	OpGETAG

	opcodeMax
)

var opcodeNames = [opcodeMax]string{
	OpNOP:   "NOP",
	OpCALL:  "CALL",
	OpRET:   "RET",
	OpB:     "B",
	OpBT:    "BT",
	OpBF:    "BF",
	OpCLOSE: "CLOSE",
	OpSTOP:  "STOP",

	OpADD: "ADD",
	OpSUB: "SUB",
	OpMUL: "MUL",
	OpDIV: "DIV",

	OpISEQ:  "ISEQ",
	OpISLT:  "ISLT",
	OpISLET: "ISLET",
	OpISGT:  "ISGT",
	OpISGET: "ISGET",

	OpCAR:    "CAR",
	OpCDR:    "CDR",
	OpCONS:   "CONS",
	OpISNULL: "ISNULL",

	OpPUSHN: "PUSHN",
	OpPUSHS: "PUSHS",
	OpPUSHL: "PUSHL",
	OpPUSHZ: "PUSHZ",

	OpDUP:  "DUP",
	OpDROP: "DROP",
	OpSWAP: "SWAP",

	OpGETGL: "GETGL",
	OpGETLC: "GETLC",
	OpGETAG: "GETAG",
}

func (op Opcode) String() string {
	if int(op) < len(opcodeNames) && opcodeNames[op] != "" {
		return opcodeNames[op]
	}
	return fmt.Sprintf("Opcode(%d)", byte(op))
}

// builtinOpcodes maps the source grammar's reserved application-head
// identifiers (§6) to the opcode the compiler emits inline for them (§4.3).
// `if`, `lambda`, `define`, and `list` are not here: they are lowering
// rules, not primitive opcodes (see compiler.go).
var builtinOpcodes = map[string]Opcode{
	"add":  OpADD,
	"sub":  OpSUB,
	"mul":  OpMUL,
	"div":  OpDIV,
	"gt":   OpISGT,
	"get":  OpISGET,
	"lt":   OpISLT,
	"let":  OpISLET,
	"eq":   OpISEQ,
	"car":  OpCAR,
	"cdr":  OpCDR,
	"cons": OpCONS,
	"null": OpISNULL,
}
