package main

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/atto-lang/atto/internal/sexpr"
)

// ParseForm performs the semantic-analysis step the specification treats as
// an external collaborator (§1): it classifies one parsed sexpr.Node into
// the typed expression tree compiler.go consumes, recognizing `define`,
// `lambda`, `if`, and `list` by the grammar of §6 and everything else as
// either a literal, a reference, or an application.
func ParseForm(n sexpr.Node) (Expr, error) {
	if n.IsAtom() {
		return parseAtom(n.Atom)
	}
	if len(n.List) == 0 {
		return nil, malformedError("empty form")
	}

	if head := n.List[0]; head.IsAtom() {
		switch head.Atom {
		case "define":
			return parseDefine(n.List[1:])
		case "lambda":
			return parseLambda(n.List[1:])
		case "if":
			return parseIf(n.List[1:])
		case "list":
			return parseListLit(n.List[1:])
		}
	}
	return parseApplication(n)
}

func parseAtom(tok string) (Expr, error) {
	if n, ok := parseNumber(tok); ok {
		return NumberLit{Value: n}, nil
	}
	if strings.HasPrefix(tok, ":") && isIdentTail(tok[1:]) {
		return SymbolLit{Name: tok[1:]}, nil
	}
	if isIdentifier(tok) {
		return Ref{Name: tok}, nil
	}
	return nil, malformedError(fmt.Sprintf("malformed atom %q", tok))
}

func parseNumber(tok string) (float64, bool) {
	s := tok
	if strings.HasPrefix(s, "-") {
		s = s[1:]
	}
	if s == "" {
		return 0, false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	v, err := strconv.ParseFloat(tok, 64)
	return v, err == nil
}

func isIdentifier(tok string) bool {
	if tok == "" || !unicode.IsLetter(rune(tok[0])) {
		return false
	}
	return len(tok) == 1 || isIdentTail(tok[1:])
}

func isIdentTail(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-' {
			return false
		}
	}
	return true
}

func parseDefine(args []sexpr.Node) (Expr, error) {
	if len(args) != 2 || !args[0].IsAtom() {
		return nil, malformedError("malformed define")
	}
	body, err := ParseForm(args[1])
	if err != nil {
		return nil, compileError{"define body", err}
	}
	return Define{Name: args[0].Atom, Body: body}, nil
}

func parseLambda(args []sexpr.Node) (Expr, error) {
	if len(args) != 2 || args[0].IsAtom() {
		return nil, malformedError("malformed lambda")
	}
	params := make([]string, 0, len(args[0].List))
	for _, p := range args[0].List {
		if !p.IsAtom() {
			return nil, malformedError("malformed lambda parameter")
		}
		params = append(params, p.Atom)
	}
	body, err := ParseForm(args[1])
	if err != nil {
		return nil, err
	}
	return Lambda{Params: params, Body: body}, nil
}

func parseIf(args []sexpr.Node) (Expr, error) {
	if len(args) != 3 {
		return nil, malformedError("malformed if")
	}
	cond, err := ParseForm(args[0])
	if err != nil {
		return nil, err
	}
	then, err := ParseForm(args[1])
	if err != nil {
		return nil, err
	}
	els, err := ParseForm(args[2])
	if err != nil {
		return nil, err
	}
	return If{Cond: cond, Then: then, Else: els}, nil
}

func parseListLit(args []sexpr.Node) (Expr, error) {
	elems := make([]Expr, 0, len(args))
	for _, a := range args {
		e, err := ParseForm(a)
		if err != nil {
			return nil, err
		}
		elems = append(elems, e)
	}
	return ListLit{Elements: elems}, nil
}

func parseApplication(n sexpr.Node) (Expr, error) {
	if len(n.List) < 2 {
		return nil, malformedError("malformed application")
	}
	head, err := ParseForm(n.List[0])
	if err != nil {
		return nil, err
	}
	args := make([]Expr, 0, len(n.List)-1)
	for _, a := range n.List[1:] {
		e, err := ParseForm(a)
		if err != nil {
			return nil, err
		}
		args = append(args, e)
	}
	return Application{Head: head, Args: args}, nil
}
