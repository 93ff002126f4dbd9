// Package synth implements the repository synthesizer of spec §4.8: it
// consumes a resolved MethodSpec (predefined or user-authored), plans its
// template/binding/shape, and emits a Go method body as a jennifer AST —
// never as a string-concatenated template, and never via runtime
// reflection (§1 Non-goals).
package synth

import (
	"fmt"

	"github.com/syssam/sqlgen/binding"
	"github.com/syssam/sqlgen/dialect"
	"github.com/syssam/sqlgen/model"
	"github.com/syssam/sqlgen/repo"
	"github.com/syssam/sqlgen/shape"
	"github.com/syssam/sqlgen/template"
)

// opKind discriminates one step of a method's runtime query-assembly
// sequence (§4.8 "a fixed sequence of builder calls, not a runtime-
// interpreted template").
type opKind int

const (
	opLiteral opKind = iota
	opParam
	opWhereExpr
	opPagination
	opReturningID
	opBatchValues
	opMemberValues
	opDynamicIdentifier
	opDynamicFragment
)

// op is one emission step; fields are interpreted per Kind.
type op struct {
	Kind opKind

	Text string // opLiteral

	ParamName  string // opParam, opWhereExpr, opDynamicIdentifier/Fragment, opMemberValues
	GoType     string // opParam
	Nullable   bool   // opParam
	Collection bool   // opParam: value is a slice bound as an IN-list

	Limit  binding.LimitPolicy // opPagination
	Offset binding.LimitPolicy // opPagination

	ItemsParam string // opBatchValues: the []entity method parameter
}

// MethodIR is the fully-resolved, ready-to-emit description of one method
// (§3 combines MethodSpec + BindingPlan + ResultRecipe into this).
type MethodIR struct {
	Iface   model.Interface
	Method  model.MethodSpec
	Dialect *dialect.Descriptor
	Entity  *model.Entity

	Ops    []op
	// CountOps, set only when Recipe.Kind == shape.KindPage, mirrors Ops
	// with {{columns}} replaced by COUNT(*) and {{limit}}/{{offset}}
	// dropped: the paired query MaterializePage issues to compute
	// TotalCount against the same filter predicate (§4.6).
	CountOps []op
	Plan     *binding.Plan
	Recipe   *shape.Recipe
}

// resolveTemplate finds the SQL template, params, shape, and options for a
// method: either the explicit ones on the MethodSpec, or looked up from the
// predefined shape library by PredefinedShape+Name (§4.7 last line: once
// resolved, a predefined method is synthesized identically to a
// user-authored one).
func resolveTemplate(method model.MethodSpec, lib repo.Library) (model.MethodSpec, error) {
	if method.Template != "" {
		return method, nil
	}
	if method.PredefinedShape == "" {
		return method, fmt.Errorf("synth: method %q has no template and no predefined shape", method.Name)
	}
	sk, ok := lib.Lookup(repo.ShapeName(method.PredefinedShape), method.Name)
	if !ok {
		return method, fmt.Errorf("synth: no predefined skeleton %s.%s", method.PredefinedShape, method.Name)
	}
	resolved := method
	resolved.Template = sk.Template
	resolved.Shape = sk.Shape
	if len(resolved.Params) == 0 {
		resolved.Params = sk.Params
	}
	if resolved.Options == (model.Options{}) {
		resolved.Options = sk.Options
	}
	if resolved.ScalarType == "" {
		resolved.ScalarType = sk.ScalarType
	}
	return resolved, nil
}

// knownDynamicFunc builds the template.Parse callback that resolves
// non-builtin placeholder names against a method's declared parameters
// (§4.2, §4.4).
func knownDynamicFunc(method model.MethodSpec) func(string) (bool, bool) {
	byName := map[string]model.Param{}
	for _, p := range method.Params {
		byName[p.Name] = p
	}
	return func(name string) (isFragment bool, ok bool) {
		p, found := byName[name]
		if !found {
			return false, false
		}
		return p.Role == model.RoleDynamicFragment, true
	}
}

// buildOps lowers tokenized placeholders into the method's op sequence,
// resolving every statically-known piece (table/columns/pk/bool literals/
// current timestamp) into literal text immediately, and leaving only
// genuinely call-time-variable pieces (predicates, limits/offsets,
// collections, batch rows, member-values, dynamic identifiers and
// fragments) as runtime ops (§4.8).
func buildOps(placeholders []template.Placeholder, method model.MethodSpec, d *dialect.Descriptor, entity *model.Entity, presets *dialect.Presets) ([]op, error) {
	return buildOpsMode(placeholders, method, d, entity, presets, false)
}

// buildCountOps lowers the same placeholders into the paired COUNT(*) query
// a Page-shaped method needs: {{columns}} becomes COUNT(*), and
// {{limit}}/{{offset}} are dropped rather than rendered (§4.6).
func buildCountOps(placeholders []template.Placeholder, method model.MethodSpec, d *dialect.Descriptor, entity *model.Entity, presets *dialect.Presets) ([]op, error) {
	return buildOpsMode(placeholders, method, d, entity, presets, true)
}

func buildOpsMode(placeholders []template.Placeholder, method model.MethodSpec, d *dialect.Descriptor, entity *model.Entity, presets *dialect.Presets, forCount bool) ([]op, error) {
	paramByName := map[string]model.Param{}
	for _, p := range method.Params {
		paramByName[p.Name] = p
	}

	// Pre-scan: limit/offset combine into a single dialect.RenderLimitOffset
	// call. Find the index of the LAST of the two placeholders so the
	// combined fragment lands after both of their usual adjacent positions
	// in a template like "ORDER BY pk {{limit}} {{offset}}" (§4.5).
	lastPagination := -1
	for i, ph := range placeholders {
		if ph.Kind == template.KindLimit || ph.Kind == template.KindOffset {
			lastPagination = i
		}
	}

	var ops []op
	appendLiteral := func(s string) {
		if s == "" {
			return
		}
		if n := len(ops); n > 0 && ops[n-1].Kind == opLiteral {
			ops[n-1].Text += s
			return
		}
		ops = append(ops, op{Kind: opLiteral, Text: s})
	}

	var limitPolicy, offsetPolicy binding.LimitPolicy

	for i, ph := range placeholders {
		switch ph.Kind {
		case template.KindLiteral:
			appendLiteralWithParamRefs(ph.Text, paramByName, &ops, appendLiteral)
		case template.KindTable:
			appendLiteral(d.QuoteIdent(tableName(method)))
		case template.KindColumns:
			if forCount {
				appendLiteral("COUNT(*)")
			} else {
				appendLiteral(columnList(d, entity, excludesPK(method)))
			}
		case template.KindPK:
			pk := entity.PrimaryKey()
			if pk == nil {
				return nil, fmt.Errorf("synth: %s: {{pk}} used but entity has no primary key", method.Name)
			}
			appendLiteral(d.QuoteIdent(pk.Column))
		case template.KindBoolTrue:
			appendLiteral(d.RenderBool(true))
		case template.KindBoolFalse:
			appendLiteral(d.RenderBool(false))
		case template.KindCurrentTimestamp:
			appendLiteral(d.CurrentTimestampExpr())
		case template.KindReturningID:
			frag, same := d.InsertIDSuffix()
			if same {
				col := ""
				if pk := entity.PrimaryKey(); pk != nil {
					col = pk.Column
				}
				appendLiteral(frag + d.QuoteIdent(col))
			}
			// !same: MaterializeGeneratedID issues a follow-up statement;
			// nothing is spliced into this query's text.
		case template.KindWhereExpr:
			ops = append(ops, op{Kind: opWhereExpr, ParamName: ph.Param})
		case template.KindLimit:
			if forCount {
				continue
			}
			lp, err := planLimitPolicy(ph, paramByName, presets)
			if err != nil {
				return nil, err
			}
			limitPolicy = lp
			if i == lastPagination {
				ops = append(ops, op{Kind: opPagination, Limit: limitPolicy, Offset: offsetPolicy})
			}
		case template.KindOffset:
			if forCount {
				continue
			}
			lp, err := planLimitPolicy(ph, paramByName, presets)
			if err != nil {
				return nil, err
			}
			offsetPolicy = lp
			if i == lastPagination {
				ops = append(ops, op{Kind: opPagination, Limit: limitPolicy, Offset: offsetPolicy})
			}
		case template.KindBatchValues:
			itemsParam := ""
			for _, p := range method.Params {
				if len(p.Type) > 2 && p.Type[:2] == "[]" {
					itemsParam = p.Name
					break
				}
			}
			ops = append(ops, op{Kind: opBatchValues, ItemsParam: itemsParam})
		case template.KindMemberValues:
			ops = append(ops, op{Kind: opMemberValues, ParamName: ph.Param})
		case template.KindDynamicIdentifier:
			ops = append(ops, op{Kind: opDynamicIdentifier, ParamName: ph.Param})
		case template.KindDynamicFragment:
			ops = append(ops, op{Kind: opDynamicFragment, ParamName: ph.Param})
		default:
			return nil, fmt.Errorf("synth: unhandled placeholder kind %d", ph.Kind)
		}
	}
	return ops, nil
}

// planLimitPolicy resolves a {{limit}}/{{offset}} placeholder to its
// LimitPolicy, folding a ":preset" argument to its resolved int immediately
// (no runtime lookup needed for presets, unlike a parameter-backed clause).
func planLimitPolicy(ph template.Placeholder, paramByName map[string]model.Param, presets *dialect.Presets) (binding.LimitPolicy, error) {
	if ph.Arg != "" {
		val, ok := presets.Lookup(ph.Arg)
		if !ok {
			return binding.LimitPolicy{}, fmt.Errorf("synth: unknown limit preset %q", ph.Arg)
		}
		return binding.LimitPolicy{Present: true, PresetValue: val}, nil
	}
	name := ph.Param
	if name == "" {
		name = "limit"
		if ph.Kind == template.KindOffset {
			name = "offset"
		}
	}
	p, ok := paramByName[name]
	return binding.LimitPolicy{Present: true, ParamName: name, Nullable: ok && p.Nullable}, nil
}

// appendLiteralWithParamRefs splits text on "@name" bind-parameter
// references, interleaving opParam entries so each parameter's SQL
// placeholder is emitted at the exact ordinal position it occurs in the
// rendered query (§3 BindingPlan invariant).
func appendLiteralWithParamRefs(text string, paramByName map[string]model.Param, ops *[]op, appendLiteral func(string)) {
	matches := paramRefIndexes(text)
	if len(matches) == 0 {
		appendLiteral(text)
		return
	}
	last := 0
	for _, m := range matches {
		appendLiteral(text[last:m.start])
		name := text[m.start+1 : m.end]
		p, ok := paramByName[name]
		collection := ok && len(p.Type) > 2 && p.Type[:2] == "[]"
		*ops = append(*ops, op{Kind: opParam, ParamName: name, GoType: p.Type, Nullable: p.Nullable, Collection: collection})
		last = m.end
	}
	appendLiteral(text[last:])
}

type refSpan struct{ start, end int }

func paramRefIndexes(s string) []refSpan {
	var out []refSpan
	for i := 0; i < len(s); i++ {
		if s[i] != '@' {
			continue
		}
		j := i + 1
		for j < len(s) && isIdentByte(s[j], j == i+1) {
			j++
		}
		if j > i+1 {
			out = append(out, refSpan{i, j})
			i = j - 1
		}
	}
	return out
}

func isIdentByte(b byte, first bool) bool {
	if b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') {
		return true
	}
	if !first && b >= '0' && b <= '9' {
		return true
	}
	return false
}

// specialCaseOps handles the three predefined skeletons whose template text
// (a bare "{{table}}") isn't a standalone query: Command's Truncate and
// Schema's TruncateTable/AnalyzeTable resolve through the dialect's
// TruncateOrDelete/AnalyzeSyntax renderers instead (§4.1, §4.7 "Truncate:
// dialect's truncate_fallback").
func specialCaseOps(method model.MethodSpec, d *dialect.Descriptor) ([]op, bool, error) {
	if method.PredefinedShape == "" {
		return nil, false, nil
	}
	table := tableName(method)
	switch method.Name {
	case "Truncate", "TruncateTable":
		return []op{{Kind: opLiteral, Text: d.TruncateOrDelete(table)}}, true, nil
	case "AnalyzeTable":
		if d.AnalyzeSyntax == "" {
			return nil, true, &dialect.UnsupportedOperationError{Dialect: d.ID, Op: "ANALYZE"}
		}
		return []op{{Kind: opLiteral, Text: d.AnalyzeSyntax + " " + d.QuoteIdent(table)}}, true, nil
	}
	return nil, false, nil
}

func tableName(method model.MethodSpec) string {
	if method.Table != "" {
		return method.Table
	}
	if method.Entity != nil {
		return method.Entity.Table
	}
	return ""
}

func columnList(d *dialect.Descriptor, entity *model.Entity, excludePK bool) string {
	if entity == nil {
		return "*"
	}
	out := ""
	first := true
	for _, f := range entity.Fields {
		if excludePK && f.PrimaryKey {
			continue
		}
		if !first {
			out += ", "
		}
		first = false
		out += d.QuoteIdent(f.Column)
	}
	return out
}

// excludesPK reports whether method writes rows whose primary key is
// database-generated, so the column/value lists omit it (§4.7 Insert/
// BatchInsertAndGetIds examples). A client-generated key (e.g. a UUID,
// §9 Design Notes) is set by the caller before INSERT and so is included
// like any other column.
func excludesPK(method model.MethodSpec) bool {
	isWrite := method.Name == "Insert" || method.Name == "BatchInsertAndGetIds"
	if !isWrite {
		return false
	}
	return method.Entity == nil || !method.Entity.ClientGeneratedID()
}

// insertFields returns the entity fields an Insert-like method writes.
func insertFields(entity *model.Entity, excludePK bool) []model.Field {
	if entity == nil {
		return nil
	}
	var out []model.Field
	for _, f := range entity.Fields {
		if excludePK && f.PrimaryKey {
			continue
		}
		out = append(out, f)
	}
	return out
}

// hasOrderByLiteral reports whether any literal op already spells ORDER BY,
// consulted for dialect.RenderLimitOffset's RequiresOrderByForFetch check.
func hasOrderByLiteral(ops []op) bool {
	for _, o := range ops {
		if o.Kind != opLiteral {
			continue
		}
		for i := 0; i+8 <= len(o.Text); i++ {
			if eqFoldASCII(o.Text[i:i+8], "ORDER BY") {
				return true
			}
		}
	}
	return false
}

func eqFoldASCII(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		ca, cb := a[i], b[i]
		if ca >= 'a' && ca <= 'z' {
			ca -= 32
		}
		if cb >= 'a' && cb <= 'z' {
			cb -= 32
		}
		if ca != cb {
			return false
		}
	}
	return true
}
