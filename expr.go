package main

// Expr is the typed expression tree the compiler consumes (§4.3). Producing
// it -- lexing, S-expression parsing, and semantic analysis -- is the
// external collaborator's job (§1); internal/sexpr supplies a minimal one so
// this module runs end to end, but Compiler itself only ever depends on this
// interface, mirroring the clean split the original C sources kept between
// parser.c (builds atto_expression trees) and compiler.c (walks them).
type Expr interface {
	exprNode()
}

// NumberLit is a numeric literal, parsed as a double (§6).
type NumberLit struct {
	Value float64
}

// SymbolLit is a `:name` literal symbol.
type SymbolLit struct {
	Name string
}

// Ref is a bare identifier, resolved against the environment at compile time.
type Ref struct {
	Name string
}

// ListLit is a `(list e1 .. en)` form, including the empty `(list)`.
type ListLit struct {
	Elements []Expr
}

// Lambda is a `(lambda (p1 .. pn) body)` form.
type Lambda struct {
	Params []string
	Body   Expr
}

// If is an `(if cond then else)` form.
type If struct {
	Cond, Then, Else Expr
}

// Application is `(head arg1 .. argn)`, where head is either a built-in
// identifier, a user reference, or an inline Lambda (anonymous application).
type Application struct {
	Head Expr
	Args []Expr
}

// Define is a top-level `(define name body)` form. It is not itself an Expr
// dispatched by the compiler's lowering table -- the definition handler
// (definition.go) intercepts it before compile() ever sees it (§4.5).
type Define struct {
	Name string
	Body Expr
}

func (NumberLit) exprNode()   {}
func (SymbolLit) exprNode()   {}
func (Ref) exprNode()         {}
func (ListLit) exprNode()     {}
func (Lambda) exprNode()      {}
func (If) exprNode()          {}
func (Application) exprNode() {}

// Define satisfies Expr only so a parser can hand Driver.Eval a uniform
// top-level Expr stream; compile itself never dispatches on Define -- the
// driver intercepts it first and routes it to defineGlobal (§4.5/§4.6).
func (Define) exprNode() {}

// isImmediate reports whether e belongs to §4.5's "Immediate" dispatch class
// (run eagerly at definition time) as opposed to "Lazy" (thunked).
func isImmediate(e Expr) bool {
	switch e.(type) {
	case NumberLit, SymbolLit, Ref, Lambda:
		return true
	case ListLit, If, Application:
		return false
	default:
		return false
	}
}
