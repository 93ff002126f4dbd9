package expr

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/syssam/sqlgen/dialect"
	"github.com/syssam/sqlgen/model"
	"github.com/syssam/sqlgen/runtime"
)

// Slot is one parameter binding produced while rendering an expression
// fragment; the binding planner (package binding) merges these into the
// method's overall BindingPlan in textual order (§3 BindingPlan, §4.4).
type Slot struct {
	Name   string
	Value  any
	GoType string
	// Expansion, when > 0, is the number of sibling slots this logical
	// parameter expanded into (an IN-clause collection, §4.3).
	Expansion int
}

// Translator renders IR nodes to SQL fragments against one dialect and
// entity column map. A Translator is created fresh per method-level
// expression parameter so the "@p0, @p1, …" counter and the named-slot
// dedup map start clean (§4.3 "per-fragment counter").
type Translator struct {
	Dialect *dialect.Descriptor
	Entity  *model.Entity

	// StartOffset is the number of bind-parameter ordinals already consumed
	// by earlier fragments in the same query (§4.3 "per-fragment counter"
	// still starts fresh at zero for a Translator used alone, but a
	// multi-fragment method — e.g. two {{where @x}} placeholders in one
	// template — must chain Translators so ordinal-style dialects render
	// the correct global position, not a position relative to each
	// fragment). The synthesizer sets this to len(args) at the point the
	// fragment is rendered.
	StartOffset int

	constCounter int
	named        map[string]struct{} // names already bound to a slot
	slots        []Slot
}

// NewTranslator creates a Translator for one rendering pass.
func NewTranslator(d *dialect.Descriptor, e *model.Entity) *Translator {
	return &Translator{Dialect: d, Entity: e, named: map[string]struct{}{}}
}

// Render renders node to a SQL fragment, accumulating Slots as a side
// effect, retrievable via Slots() once rendering completes.
func (tr *Translator) Render(node Node) (string, error) {
	switch n := node.(type) {
	case Column:
		return tr.renderColumn(n)
	case Const:
		return tr.renderConst(n)
	case Named:
		return tr.renderNamed(n)
	case Binary:
		return tr.renderBinary(n)
	case Not:
		inner, err := tr.Render(n.X)
		if err != nil {
			return "", err
		}
		return "NOT (" + inner + ")", nil
	case Call:
		return tr.renderCall(n)
	case CaseInsensitiveEQ:
		return tr.renderCaseInsensitiveEQ(n)
	case InCollection:
		return tr.renderInCollection(n)
	case MemberInit:
		return tr.renderMemberInit(n)
	default:
		return "", fmt.Errorf("expr: unsupported node type %T", node)
	}
}

// Slots returns the accumulated parameter slots in first-occurrence order.
func (tr *Translator) Slots() []Slot { return tr.slots }

func (tr *Translator) fieldByGoName(goName string) (model.Field, bool) {
	if tr.Entity == nil {
		return model.Field{}, false
	}
	for _, f := range tr.Entity.Fields {
		if f.Name == goName {
			return f, true
		}
	}
	return model.Field{}, false
}

func (tr *Translator) renderColumn(c Column) (string, error) {
	f, ok := tr.fieldByGoName(c.Field)
	if !ok {
		return "", fmt.Errorf("expr: unknown entity field %q", c.Field)
	}
	return tr.Dialect.QuoteIdent(f.Column), nil
}

func (tr *Translator) renderConst(c Const) (string, error) {
	name := fmt.Sprintf("p%d", tr.constCounter)
	tr.constCounter++
	ref := tr.Dialect.ParamRef(name, tr.StartOffset+len(tr.slots))
	tr.slots = append(tr.slots, Slot{Name: name, Value: c.Value, GoType: c.GoType})
	return ref, nil
}

func (tr *Translator) renderNamed(n Named) (string, error) {
	if _, seen := tr.named[n.Name]; seen {
		// Two occurrences of the same named marker share one slot (§4.3,
		// §8 property 5): don't append a second Slot, and reference the
		// first occurrence's position.
		for i, s := range tr.slots {
			if s.Name == n.Name {
				return tr.Dialect.ParamRef(n.Name, tr.StartOffset+i), nil
			}
		}
	}
	ref := tr.Dialect.ParamRef(n.Name, tr.StartOffset+len(tr.slots))
	tr.named[n.Name] = struct{}{}
	tr.slots = append(tr.slots, Slot{Name: n.Name, Value: n.Value, GoType: n.GoType})
	return ref, nil
}

// UnknownSlotError reports an attempt to fill a named slot that no
// rendered expression declared (§4.3, §8 Testable Property 5).
type UnknownSlotError struct {
	Name      string
	Available []string
}

func (e *UnknownSlotError) Error() string {
	return fmt.Sprintf("expr: unknown parameter slot %q (available: %s)", e.Name, strings.Join(e.Available, ", "))
}

// Fill supplies a value for a named slot after Render has rendered it.
// Render already binds a value for Named markers built through the
// builder DSL (they carry Value at construction time); Fill exists for
// Named markers a host constructs directly, e.g. expr.Named{Name: "x"},
// left unbound until the caller supplies the value. Filling a name no
// rendered expression declared returns an UnknownSlotError listing the
// names that are available.
func (tr *Translator) Fill(name string, value any) error {
	for i := range tr.slots {
		if tr.slots[i].Name == name {
			tr.slots[i].Value = value
			return nil
		}
	}
	available := make([]string, 0, len(tr.slots))
	for _, s := range tr.slots {
		available = append(available, s.Name)
	}
	return &UnknownSlotError{Name: name, Available: available}
}

// isBoolColumn reports whether operand is a Column referencing a bool field.
func (tr *Translator) isBoolColumn(n Node) bool {
	c, ok := n.(Column)
	if !ok {
		return false
	}
	f, ok := tr.fieldByGoName(c.Field)
	return ok && f.Type == "bool"
}

func (tr *Translator) renderBinary(b Binary) (string, error) {
	if b.Op == OpAnd || b.Op == OpOr {
		left, err := tr.Render(b.Left)
		if err != nil {
			return "", err
		}
		right, err := tr.Render(b.Right)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("(%s %s %s)", left, opSQL[b.Op], right), nil
	}

	// Booleans on boolean columns render as "= <literal>", not as a bound
	// parameter (§4.3).
	if b.Op == OpEQ {
		if bc, ok := b.Right.(Const); ok && tr.isBoolColumn(b.Left) {
			if v, ok := bc.Value.(bool); ok {
				left, err := tr.Render(b.Left)
				if err != nil {
					return "", err
				}
				return fmt.Sprintf("%s = %s", left, tr.Dialect.RenderBool(v)), nil
			}
		}
	}

	left, err := tr.Render(b.Left)
	if err != nil {
		return "", err
	}
	right, err := tr.Render(b.Right)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s %s %s", left, opSQL[b.Op], right), nil
}

func (tr *Translator) renderCall(c Call) (string, error) {
	recv, err := tr.Render(c.Recv)
	if err != nil {
		return "", err
	}
	switch c.Name {
	case FuncLower:
		return fmt.Sprintf("LOWER(%s)", recv), nil
	case FuncContains, FuncStartsWith, FuncEndsWith:
		// String ops render to LIKE; the SQL uses the parameter
		// unchanged — only the bound value gets the '%'/'_' escaping
		// and wildcard wrapping (§4.3).
		before := len(tr.slots)
		arg, err := tr.Render(c.Arg)
		if err != nil {
			return "", err
		}
		if len(tr.slots) > before {
			tr.slots[before].Value = likePattern(c.Name, tr.slots[before].Value)
		}
		return fmt.Sprintf("%s LIKE %s", recv, arg), nil
	default:
		return "", fmt.Errorf("expr: unsupported function %d", c.Name)
	}
}

// likePattern escapes '%'/'_'/'\' in v and wraps it with the wildcards the
// given LIKE function implies, so the bound parameter — not the SQL text —
// carries the pattern (§4.3).
func likePattern(fn FuncName, v any) any {
	s, ok := v.(string)
	if !ok {
		return v
	}
	escaped := runtime.EscapeLike(s)
	switch fn {
	case FuncStartsWith:
		return escaped + "%"
	case FuncEndsWith:
		return "%" + escaped
	default: // FuncContains
		return "%" + escaped + "%"
	}
}

func (tr *Translator) renderCaseInsensitiveEQ(n CaseInsensitiveEQ) (string, error) {
	left, err := tr.Render(n.Left)
	if err != nil {
		return "", err
	}
	right, err := tr.Render(n.Right)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("LOWER(%s) = LOWER(%s)", left, right), nil
}

func (tr *Translator) renderInCollection(n InCollection) (string, error) {
	f, ok := tr.fieldByGoName(n.Column)
	col := n.Column
	if ok {
		col = f.Column
	}
	qcol := tr.Dialect.QuoteIdent(col)
	if len(n.Items) == 0 {
		// Empty collection short-circuits to a parameter-free falsehood
		// rather than the invalid "IN ()" (§4.3, §8 property S3).
		return "1=0", nil
	}
	refs := make([]string, len(n.Items))
	for i, item := range n.Items {
		name := n.Column + "_" + strconv.Itoa(i)
		refs[i] = tr.Dialect.ParamRef(name, tr.StartOffset+len(tr.slots))
		tr.slots = append(tr.slots, Slot{Name: name, Value: item, GoType: n.GoType})
	}
	return fmt.Sprintf("%s IN (%s)", qcol, strings.Join(refs, ", ")), nil
}

func (tr *Translator) renderMemberInit(m MemberInit) (string, error) {
	parts := make([]string, len(m.Sets))
	for i, s := range m.Sets {
		col := s.Column
		if f, ok := tr.fieldByGoName(s.Column); ok {
			col = f.Column
		}
		val, err := tr.Render(s.Value)
		if err != nil {
			return "", err
		}
		parts[i] = fmt.Sprintf("%s = %s", tr.Dialect.QuoteIdent(col), val)
	}
	return strings.Join(parts, ", "), nil
}
