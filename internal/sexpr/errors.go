package sexpr

import "errors"

var (
	errUnexpectedClose = errors.New("sexpr: unexpected )")
	errUnclosedList    = errors.New("sexpr: unclosed list")
)
