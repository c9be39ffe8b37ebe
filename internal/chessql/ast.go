package chessql

// CompareOp is a comparison operator in a Comparison node.
type CompareOp string

const (
	OpEq  CompareOp = "="
	OpNeq CompareOp = "!="
	OpLt  CompareOp = "<"
	OpLte CompareOp = "<="
	OpGt  CompareOp = ">"
	OpGte CompareOp = ">="
)

// Value is a literal value in the AST: either a string or an integer.
type Value struct {
	IsString bool
	Str      string
	Int      int64
}

// Node is any ChessQL AST node.
type Node interface {
	node()
}

// Or is a disjunction of two expressions.
type Or struct{ Left, Right Node }

// And is a conjunction of two expressions.
type And struct{ Left, Right Node }

// Not negates an expression.
type Not struct{ Inner Node }

// Comparison is `field op value`.
type Comparison struct {
	Field string
	Op    CompareOp
	Value Value
}

// In is `field IN [value, value, ...]`.
type In struct {
	Field  string
	Values []Value
}

// Motif is `motif(name)`.
type Motif struct {
	Name string
}

func (*Or) node()         {}
func (*And) node()        {}
func (*Not) node()        {}
func (*Comparison) node() {}
func (*In) node()         {}
func (*Motif) node()      {}
