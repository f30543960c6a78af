// Package pkerrors defines the typed build-time error kinds that the
// grammar-to-automaton-to-emitted-code pipeline can fail with. Runtime errors
// in the generated/interpreted walk code are never signaled this way; those
// are plain return values, per the emitted code's no-panic contract.
package pkerrors

import "fmt"

// Kind identifies which stage of the pipeline rejected a grammar, or (for
// Unproductive) merely warned about it.
type Kind string

const (
	// Syntax means the input could not even be parsed as JSON, or a comment
	// was left unterminated.
	Syntax Kind = "GrammarSyntax"

	// Shape means the JSON parsed fine but the document isn't shaped like a
	// grammar: a symbol string that is neither a quoted terminal nor an
	// angle-bracketed non-terminal, an empty production list, or a
	// non-terminal with zero productions.
	Shape Kind = "GrammarShape"

	// Reference means a right-hand-side non-terminal has no defining rule.
	Reference Kind = "GrammarReference"

	// Empty means the grammar has no rules at all.
	Empty Kind = "GrammarEmpty"

	// Unproductive is a warning, not a fatal error: the entry non-terminal
	// has no finite derivation discoverable under bounded-depth expansion.
	Unproductive Kind = "GrammarUnproductive"

	// IO means the emitted source file could not be written.
	IO Kind = "EmitIO"
)

// pipelineError is the concrete error type returned for every Kind above. It
// carries a human-readable message and, optionally, a wrapped cause.
type pipelineError struct {
	kind Kind
	msg  string
	wrap error
}

func (e *pipelineError) Error() string {
	if e.msg == "" {
		return string(e.kind)
	}
	return fmt.Sprintf("%s: %s", e.kind, e.msg)
}

func (e *pipelineError) Unwrap() error {
	return e.wrap
}

// Is lets errors.Is match against a bare Kind sentinel, e.g.
// errors.Is(err, pkerrors.Reference).
func (e *pipelineError) Is(target error) bool {
	k, ok := target.(Kind)
	if !ok {
		return false
	}
	return e.kind == k
}

// Error lets a Kind itself satisfy the error interface, so callers can use a
// Kind both as an errors.Is sentinel and, in the rare case they want it,
// directly as an error value.
func (k Kind) Error() string {
	return string(k)
}

func new(kind Kind, wrap error, format string, args ...interface{}) error {
	return &pipelineError{
		kind: kind,
		msg:  fmt.Sprintf(format, args...),
		wrap: wrap,
	}
}

// Syntaxf builds a GrammarSyntax error.
func Syntaxf(format string, args ...interface{}) error {
	return new(Syntax, nil, format, args...)
}

// WrapSyntax builds a GrammarSyntax error that wraps the given cause (e.g. a
// json.SyntaxError).
func WrapSyntax(cause error, format string, args ...interface{}) error {
	return new(Syntax, cause, format, args...)
}

// Shapef builds a GrammarShape error.
func Shapef(format string, args ...interface{}) error {
	return new(Shape, nil, format, args...)
}

// Referencef builds a GrammarReference error.
func Referencef(format string, args ...interface{}) error {
	return new(Reference, nil, format, args...)
}

// Emptyf builds a GrammarEmpty error.
func Emptyf(format string, args ...interface{}) error {
	return new(Empty, nil, format, args...)
}

// Unproductivef builds a GrammarUnproductive warning. Callers must check
// explicitly for this Kind if they want to treat it as non-fatal; the
// Normalizer returns it alongside a valid Grammar rather than in place of
// one.
func Unproductivef(format string, args ...interface{}) error {
	return new(Unproductive, nil, format, args...)
}

// IOf builds an EmitIO error wrapping the underlying write failure.
func IOf(cause error, format string, args ...interface{}) error {
	return new(IO, cause, format, args...)
}

// KindOf returns the Kind of err if it is (or wraps) a pipeline error, and
// false otherwise.
func KindOf(err error) (Kind, bool) {
	var pe *pipelineError
	for err != nil {
		if p, ok := err.(*pipelineError); ok {
			pe = p
			break
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			break
		}
		err = u.Unwrap()
	}
	if pe == nil {
		return "", false
	}
	return pe.kind, true
}
