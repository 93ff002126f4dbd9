package expr

// Field is a typed column reference used by the expression builder DSL
// (§9 Design Notes: "a port exposes an expression builder DSL whose shape
// mirrors §4.3, consumed as a value"). It mirrors the teacher's generic
// StringField[P] predicate helpers but builds expr.Node values directly
// instead of dialect.Selector predicate funcs, since no runtime expression
// compilation is required (ahead-of-time generation only, §1 Non-goals).
type Field[T any] struct {
	name   string
	goType string
}

// NewField declares a typed field reference by its entity Go field name.
func NewField[T any](name string) Field[T] {
	var zero T
	return Field[T]{name: name, goType: goTypeName(zero)}
}

func goTypeName(v any) string {
	switch v.(type) {
	case string:
		return "string"
	case int, int32, int64:
		return "int64"
	case float32, float64:
		return "float64"
	case bool:
		return "bool"
	default:
		return "any"
	}
}

// EQ builds `field = value`.
func (f Field[T]) EQ(v T) Node {
	return Binary{Op: OpEQ, Left: Column{Field: f.name}, Right: Const{Value: v, GoType: f.goType}}
}

// EQValue builds `field = @name`, an Any.Value<T>("name")-style named
// parameter (§4.3) bound to v immediately. Two EQValue calls (or any other
// Named-producing call) sharing the same name across one predicate share a
// single binding slot.
func (f Field[T]) EQValue(name string, v T) Node {
	return Binary{Op: OpEQ, Left: Column{Field: f.name}, Right: Named{Name: name, Value: v, GoType: f.goType}}
}

// NEQ builds `field <> value`.
func (f Field[T]) NEQ(v T) Node {
	return Binary{Op: OpNEQ, Left: Column{Field: f.name}, Right: Const{Value: v, GoType: f.goType}}
}

// GT builds `field > value`.
func (f Field[T]) GT(v T) Node {
	return Binary{Op: OpGT, Left: Column{Field: f.name}, Right: Const{Value: v, GoType: f.goType}}
}

// GTE builds `field >= value`.
func (f Field[T]) GTE(v T) Node {
	return Binary{Op: OpGTE, Left: Column{Field: f.name}, Right: Const{Value: v, GoType: f.goType}}
}

// LT builds `field < value`.
func (f Field[T]) LT(v T) Node {
	return Binary{Op: OpLT, Left: Column{Field: f.name}, Right: Const{Value: v, GoType: f.goType}}
}

// LTE builds `field <= value`.
func (f Field[T]) LTE(v T) Node {
	return Binary{Op: OpLTE, Left: Column{Field: f.name}, Right: Const{Value: v, GoType: f.goType}}
}

// In builds an IN-clause predicate that expands to N slots at bind time
// (§4.3, §4.4).
func (f Field[T]) In(vs ...T) Node {
	items := make([]any, len(vs))
	for i, v := range vs {
		items[i] = v
	}
	return InCollection{Column: f.name, Items: items, GoType: f.goType}
}

// ContainsFold builds a case-insensitive comparison: `LOWER(col) = LOWER(@param)`.
func (f Field[T]) ContainsFold(name string, v T) Node {
	return CaseInsensitiveEQ{Left: Column{Field: f.name}, Right: Named{Name: name, Value: v, GoType: f.goType}}
}

// StringField specializes Field for the string-only LIKE-family operators.
type StringField struct{ Field[string] }

// NewStringField declares a string field reference.
func NewStringField(name string) StringField { return StringField{NewField[string](name)} }

// Contains builds `field LIKE @name`; the translator wraps v in '%' and
// escapes any literal '%'/'_'/'\' in v before binding it (§4.3).
func (f StringField) Contains(name, v string) Node {
	return Call{Name: FuncContains, Recv: Column{Field: f.name}, Arg: Named{Name: name, Value: v, GoType: "string"}}
}

// StartsWith builds `field LIKE @name`, anchoring the pattern at the start.
func (f StringField) StartsWith(name, v string) Node {
	return Call{Name: FuncStartsWith, Recv: Column{Field: f.name}, Arg: Named{Name: name, Value: v, GoType: "string"}}
}

// EndsWith builds `field LIKE @name`, anchoring the pattern at the end.
func (f StringField) EndsWith(name, v string) Node {
	return Call{Name: FuncEndsWith, Recv: Column{Field: f.name}, Arg: Named{Name: name, Value: v, GoType: "string"}}
}

// And combines predicates with AND.
func And(nodes ...Node) Node {
	return reduceBinary(OpAnd, nodes)
}

// Or combines predicates with OR.
func Or(nodes ...Node) Node {
	return reduceBinary(OpOr, nodes)
}

func reduceBinary(op Op, nodes []Node) Node {
	if len(nodes) == 0 {
		return nil
	}
	acc := nodes[0]
	for _, n := range nodes[1:] {
		acc = Binary{Op: op, Left: acc, Right: n}
	}
	return acc
}

// Set declares one `Field = value` assignment for an update projection.
func Set[T any](f Field[T], v T) SetField {
	return SetField{Column: f.name, Value: Const{Value: v, GoType: f.goType}}
}

// SetValue declares `Field = @name` for an update projection, bound to v
// immediately.
func SetValue[T any](f Field[T], name string, v T) SetField {
	return SetField{Column: f.name, Value: Named{Name: name, Value: v, GoType: f.goType}}
}

// Update builds a MemberInit node from an ordered list of SetField
// assignments (§4.3 "Update projections").
func Update(sets ...SetField) Node {
	return MemberInit{Sets: sets}
}
