// Package expr implements the expression IR and translator of spec §4.3:
// predicate/projection trees rendered to parameterized SQL fragments.
package expr

// Op is a binary comparison or logical operator.
type Op int

const (
	OpEQ Op = iota
	OpNEQ
	OpGT
	OpGTE
	OpLT
	OpLTE
	OpAnd
	OpOr
)

var opSQL = map[Op]string{
	OpEQ: "=", OpNEQ: "<>", OpGT: ">", OpGTE: ">=", OpLT: "<", OpLTE: "<=",
	OpAnd: "AND", OpOr: "OR",
}

// FuncName is a supported string/projection function (§4.3).
type FuncName int

const (
	FuncLower FuncName = iota
	FuncContains
	FuncStartsWith
	FuncEndsWith
)

// Node is the common interface for every IR node. Nodes are immutable
// values constructed by the builder DSL (builder.go) or directly by a host.
type Node interface{ isNode() }

// Column references an entity column by its Go field name; the translator
// resolves the column name and dialect quoting via the entity descriptor.
type Column struct {
	Field string
}

func (Column) isNode() {}

// Const is a captured closure constant. The translator assigns it a
// positional parameter name "@p0, @p1, …" per rendered fragment.
type Const struct {
	Value    any
	GoType   string
}

func (Const) isNode() {}

// Named is an `Any.Value<T>("name")` marker (§4.3): a named parameter
// bound to Value. Two Named nodes with the same Name share one binding
// slot — the first occurrence the translator renders wins, so a Named
// built without a Value (e.g. a bare expr.Named{Name: "x"} constructed
// directly by a host rather than through the builder DSL) stays unfilled
// until Translator.Fill supplies one.
type Named struct {
	Name   string
	Value  any
	GoType string
}

func (Named) isNode() {}

// Binary is a binary operation between two operands.
type Binary struct {
	Op          Op
	Left, Right Node
}

func (Binary) isNode() {}

// Not negates a predicate.
type Not struct {
	X Node
}

func (Not) isNode() {}

// Call applies a FuncName to a column with a string argument operand,
// e.g. Contains(Column, arg).
type Call struct {
	Func Op // unused; retained for symmetry, prefer FuncName below
	Name FuncName
	Recv Node
	Arg  Node
}

func (Call) isNode() {}

// CaseInsensitiveEQ renders `LOWER(col) = LOWER(@param)` (§4.3).
type CaseInsensitiveEQ struct {
	Left, Right Node
}

func (CaseInsensitiveEQ) isNode() {}

// InCollection renders a `Contains` call against a collection parameter as
// an IN clause, expanding to N slots; an empty collection renders to
// `1=0` and stays parameter-free (§4.3, §8 property 4 "Injection safety"
// doesn't apply here but the empty-set short circuit avoids `IN ()`, which
// is invalid SQL in every supported dialect).
type InCollection struct {
	Column string
	Items  []any
	GoType string
}

func (InCollection) isNode() {}

// SetField is one `col = expr` assignment inside an update projection
// (§4.3 "Update projections"), rendered in MemberInit order.
type SetField struct {
	Column string
	Value  Node
}

// MemberInit is an ordered list of SetField assignments for a SET clause.
type MemberInit struct {
	Sets []SetField
}

func (MemberInit) isNode() {}
