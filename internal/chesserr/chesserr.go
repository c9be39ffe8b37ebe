// Package chesserr defines the typed error taxonomy used across the
// lexer, parser, compiler, store, and worker (spec §7). Every error
// implements the standard error interface and wraps an underlying cause
// with fmt.Errorf("...: %w", ...) where one exists, so errors.Is/As work
// end to end.
package chesserr

import "fmt"

// LexErrorKind distinguishes lexer failure modes.
type LexErrorKind string

const (
	UnterminatedString LexErrorKind = "UnterminatedString"
	UnknownCharacter   LexErrorKind = "UnknownCharacter"
)

// LexError is returned by the ChessQL lexer with the 1-based position of
// the offending character.
type LexError struct {
	Kind     LexErrorKind
	Position int
	Detail   string
}

func (e *LexError) Error() string {
	return fmt.Sprintf("chessql: lex error %s at position %d: %s", e.Kind, e.Position, e.Detail)
}

// ParseErrorKind distinguishes parser failure modes.
type ParseErrorKind string

const (
	UnexpectedToken ParseErrorKind = "UnexpectedToken"
	UnexpectedEnd   ParseErrorKind = "UnexpectedEnd"
)

// ParseError is returned by the ChessQL parser with the offending token's
// lexeme and 1-based position.
type ParseError struct {
	Kind     ParseErrorKind
	Position int
	Lexeme   string
}

func (e *ParseError) Error() string {
	if e.Kind == UnexpectedEnd {
		return fmt.Sprintf("chessql: parse error: unexpected end of input at position %d", e.Position)
	}
	return fmt.Sprintf("chessql: parse error: unexpected token %q at position %d", e.Lexeme, e.Position)
}

// CompileErrorKind distinguishes compiler failure modes.
type CompileErrorKind string

const (
	UnknownField  CompileErrorKind = "UnknownField"
	UnknownMotif  CompileErrorKind = "UnknownMotif"
	TypeMismatch  CompileErrorKind = "TypeMismatch"
)

// CompileError is returned by the ChessQL compiler when whitelist lookup
// fails or a comparison value does not match the field's expected type.
type CompileError struct {
	Kind  CompileErrorKind
	Name  string
	Extra string
}

func (e *CompileError) Error() string {
	switch e.Kind {
	case UnknownField:
		return fmt.Sprintf("chessql: compile error: unknown field %q", e.Name)
	case UnknownMotif:
		return fmt.Sprintf("chessql: compile error: unknown motif %q", e.Name)
	case TypeMismatch:
		return fmt.Sprintf("chessql: compile error: type mismatch on field %q: %s", e.Name, e.Extra)
	default:
		return fmt.Sprintf("chessql: compile error: %s %q", e.Kind, e.Name)
	}
}

// IngestErrorKind distinguishes worker ingest failure modes.
type IngestErrorKind string

const (
	FetchFailed    IngestErrorKind = "FetchFailed"
	PgnParseFailed IngestErrorKind = "PgnParseFailed"
	StoreFailed    IngestErrorKind = "StoreFailed"
)

// IngestError is surfaced within the worker for a single game or month.
type IngestError struct {
	Kind    IngestErrorKind
	GameURL string
	Cause   error
}

func (e *IngestError) Error() string {
	if e.GameURL == "" {
		return fmt.Sprintf("ingest error %s: %v", e.Kind, e.Cause)
	}
	return fmt.Sprintf("ingest error %s for %s: %v", e.Kind, e.GameURL, e.Cause)
}

func (e *IngestError) Unwrap() error { return e.Cause }

// ConfigError reports an invalid or missing configuration value.
type ConfigError struct {
	Name   string
	Detail string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error: %s: %s", e.Name, e.Detail)
}

// NotFound reports an unknown request id on status lookup.
type NotFound struct {
	ID string
}

func (e *NotFound) Error() string {
	return fmt.Sprintf("not found: request %q", e.ID)
}

// InvalidArgument reports a violated precondition on a public operation.
type InvalidArgument struct {
	Detail string
}

func (e *InvalidArgument) Error() string {
	return fmt.Sprintf("invalid argument: %s", e.Detail)
}
