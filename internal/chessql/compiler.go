package chessql

import (
	"fmt"
	"strings"

	"github.com/atinm/chesstactics/internal/chesserr"
)

// fieldKind is the SQL type a whitelisted field compiles against.
type fieldKind int

const (
	fieldString fieldKind = iota
	fieldInt
)

type fieldSpec struct {
	column string
	kind   fieldKind
}

// fieldColumns maps both dotted (white.elo) and underscored (white_elo)
// ChessQL field spellings to their game_features column and expected
// value type, per spec §4.12's field whitelist. Only fields in this table
// may appear in a query; everything else is a CompileError{UnknownField}
// so no column name is ever derived from user input.
var fieldColumns = func() map[string]fieldSpec {
	m := map[string]fieldSpec{
		"white.name": {"white_username", fieldString},
		"black.name": {"black_username", fieldString},
		"white.elo":  {"white_elo", fieldInt},
		"black.elo":  {"black_elo", fieldInt},
		"eco":        {"eco", fieldString},
		"result":     {"result", fieldString},
		"num_moves":  {"num_moves", fieldInt},
		"time_class": {"time_class", fieldString},
		"platform":   {"platform", fieldString},
		"played_at":  {"played_at", fieldString},
	}
	for k, v := range m {
		m[strings.ReplaceAll(k, ".", "_")] = v
	}
	return m
}()

// motifWhitelist maps a motif() call's name to the motif value stored in
// motif_occurrences. Only names in this set are compilable; everything
// else is a CompileError{UnknownMotif}.
var motifWhitelist = map[string]string{
	"pin":                      "PIN",
	"cross_pin":                "CROSS_PIN",
	"fork":                     "FORK",
	"skewer":                   "SKEWER",
	"discovered_attack":        "DISCOVERED_ATTACK",
	"check":                    "CHECK",
	"checkmate":                "CHECKMATE",
	"promotion":                "PROMOTION",
	"promotion_with_check":     "PROMOTION_WITH_CHECK",
	"promotion_with_checkmate": "PROMOTION_WITH_CHECKMATE",
}

// Compiled is a parameterized WHERE-clause fragment plus its positional
// argument list. The fragment references the feature table under alias
// "g", per spec §4.12; the store wraps it as
// "SELECT g.* FROM game_features g WHERE <fragment> ORDER BY g.played_at DESC LIMIT ? OFFSET ?".
type Compiled struct {
	SQL  string
	Args []any
}

// Compile lowers a ChessQL AST into a parameterized SQL boolean fragment
// against the game_features / motif_occurrences schema (spec §4.12).
// Field and motif names are resolved against explicit whitelists; values
// are always bound positionally, never interpolated.
func Compile(n Node) (*Compiled, error) {
	var args []any
	sql, err := compileNode(n, &args)
	if err != nil {
		return nil, err
	}
	return &Compiled{SQL: sql, Args: args}, nil
}

func compileNode(n Node, args *[]any) (string, error) {
	switch v := n.(type) {
	case *Or:
		left, err := compileNode(v.Left, args)
		if err != nil {
			return "", err
		}
		right, err := compileNode(v.Right, args)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("(%s OR %s)", left, right), nil

	case *And:
		left, err := compileNode(v.Left, args)
		if err != nil {
			return "", err
		}
		right, err := compileNode(v.Right, args)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("(%s AND %s)", left, right), nil

	case *Not:
		inner, err := compileNode(v.Inner, args)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("(NOT %s)", inner), nil

	case *Comparison:
		return compileComparison(v, args)

	case *In:
		return compileIn(v, args)

	case *Motif:
		return compileMotif(v, args)

	default:
		return "", &chesserr.CompileError{Kind: chesserr.UnknownField, Name: fmt.Sprintf("%T", n)}
	}
}

func resolveField(name string) (string, fieldKind, error) {
	f, ok := fieldColumns[strings.ToLower(name)]
	if !ok {
		return "", 0, &chesserr.CompileError{Kind: chesserr.UnknownField, Name: name}
	}
	return f.column, f.kind, nil
}

// compileComparison folds string-typed fields through LOWER() on both
// sides of every comparison operator, per spec §4.12 ("comparisons on
// string-typed fields compile to LOWER(column) op LOWER(?)"); numeric
// fields compile to a direct comparison.
func compileComparison(c *Comparison, args *[]any) (string, error) {
	column, kind, err := resolveField(c.Field)
	if err != nil {
		return "", err
	}

	switch kind {
	case fieldString:
		if !c.Value.IsString {
			return "", &chesserr.CompileError{Kind: chesserr.TypeMismatch, Name: column, Extra: "expected string literal"}
		}
		*args = append(*args, strings.ToLower(c.Value.Str))
		return fmt.Sprintf("LOWER(%s) %s LOWER(?)", column, string(c.Op)), nil
	case fieldInt:
		if c.Value.IsString {
			return "", &chesserr.CompileError{Kind: chesserr.TypeMismatch, Name: column, Extra: "expected integer literal"}
		}
		*args = append(*args, c.Value.Int)
		return fmt.Sprintf("%s %s ?", column, string(c.Op)), nil
	default:
		return "", &chesserr.CompileError{Kind: chesserr.TypeMismatch, Name: column, Extra: "unknown field kind"}
	}
}

func compileIn(in *In, args *[]any) (string, error) {
	column, kind, err := resolveField(in.Field)
	if err != nil {
		return "", err
	}
	if len(in.Values) == 0 {
		return "", &chesserr.CompileError{Kind: chesserr.TypeMismatch, Name: column, Extra: "IN requires at least one value"}
	}

	placeholders := make([]string, 0, len(in.Values))
	for _, v := range in.Values {
		switch kind {
		case fieldString:
			if !v.IsString {
				return "", &chesserr.CompileError{Kind: chesserr.TypeMismatch, Name: column, Extra: "expected string literal"}
			}
			*args = append(*args, strings.ToLower(v.Str))
			placeholders = append(placeholders, "LOWER(?)")
		case fieldInt:
			if v.IsString {
				return "", &chesserr.CompileError{Kind: chesserr.TypeMismatch, Name: column, Extra: "expected integer literal"}
			}
			*args = append(*args, v.Int)
			placeholders = append(placeholders, "?")
		}
	}

	if kind == fieldString {
		return fmt.Sprintf("LOWER(%s) IN (%s)", column, strings.Join(placeholders, ", ")), nil
	}
	return fmt.Sprintf("%s IN (%s)", column, strings.Join(placeholders, ", ")), nil
}

// compileMotif lowers motif(name) into an EXISTS subquery against
// motif_occurrences, joined back to the enclosing game_features row on
// game_url (alias g, per the full query template in §4.12). The motif
// name itself comes from the fixed motifWhitelist, never from the query
// text, so it is safe to inline as a SQL string literal rather than bind
// it positionally — matching spec §4.12's own worked example (S5), whose
// params list carries only the user-supplied comparison values.
func compileMotif(m *Motif, args *[]any) (string, error) {
	stored, ok := motifWhitelist[strings.ToLower(m.Name)]
	if !ok {
		return "", &chesserr.CompileError{Kind: chesserr.UnknownMotif, Name: m.Name}
	}
	return fmt.Sprintf("EXISTS (SELECT 1 FROM motif_occurrences mo WHERE mo.game_url = g.game_url AND mo.motif = '%s')", stored), nil
}
