package template

import "errors"

var (
	// ErrEmpty is returned when the template string is empty.
	ErrEmpty = errors.New("template is empty")

	// ErrParse is returned when the template fails to parse.
	ErrParse = errors.New("template parse error")

	// ErrExecute is returned when rendering fails, including any
	// reference to a variable absent from the context.
	ErrExecute = errors.New("template execution error")
)
