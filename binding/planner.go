// Package binding implements the parameter-binding planner of spec §4.4:
// it walks the tokenized template (and any expression-translator output)
// in textual order and produces a stable, ordered BindingPlan whose slot
// order matches the final SQL's parameter occurrence order (§3 invariant).
package binding

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/syssam/sqlgen/dialect"
	"github.com/syssam/sqlgen/expr"
	"github.com/syssam/sqlgen/model"
	"github.com/syssam/sqlgen/template"
)

// identifierCaser performs Unicode-aware upper-casing when checking a
// DynamicIdentifier value against the dangerous-keyword list (§4.4),
// rather than ASCII-only strings.ToUpper — a host-declared identifier can
// legitimately contain non-ASCII letters (e.g. a localized column alias)
// and folding must still compare correctly against the all-ASCII keyword
// list.
var identifierCaser = cases.Upper(language.Und)

// Source describes where a bound value comes from (§3 BindingSlot).
type Source int

const (
	SourceMethodParam Source = iota
	SourceTemplateExpansion
	SourceExpressionConstant
	SourceExpressionPlaceholder
)

// Slot is one entry of the rendered BindingPlan.
type Slot struct {
	Name      string
	Source    Source
	GoType    string
	Nullable  bool
	Expansion int // > 0 for a collection expanded into this many sibling slots; -1 for a slice parameter whose count is known only at call time
}

// LimitPolicy captures how a {{limit}}/{{offset}} placeholder should be
// realized by the synthesizer (§4.5): either a compile-time-constant
// clause, or a runtime-conditional one driven by a nullable parameter.
type LimitPolicy struct {
	Present     bool
	ParamName   string // method parameter backing this clause, "" if a preset
	PresetValue int    // valid when ParamName == ""
	Nullable    bool   // true: omit the clause at runtime when the value is nil
	Sentinel    bool   // true: this policy was synthesized to satisfy OffsetRequiresLimit
}

// Plan is the computed BindingPlan for one method (§3).
type Plan struct {
	Slots  []Slot
	Limit  LimitPolicy
	Offset LimitPolicy
}

// identifierRe is the whitelist regex for DynamicIdentifier values (§4.4).
var identifierRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

var dangerousKeywords = []string{"DROP", "INSERT", "UPDATE", "DELETE", "--", "/*", "*/", ";"}

// UnsafeIdentifierError reports a DynamicIdentifier value that failed the
// whitelist or contains a disallowed keyword (§4.4, §7, §8 property 4).
type UnsafeIdentifierError struct {
	Value string
}

func (e *UnsafeIdentifierError) Error() string {
	return fmt.Sprintf("binding: unsafe identifier %q", e.Value)
}

// ValidateIdentifier rejects any value that is not a bare
// [A-Za-z_][A-Za-z0-9_]* token or that contains a dangerous keyword. It is
// called both at generation time (for literal default identifiers) and by
// generated methods at call time (for caller-supplied identifier values).
func ValidateIdentifier(v string) error {
	upper := identifierCaser.String(v)
	for _, kw := range dangerousKeywords {
		if strings.Contains(upper, kw) {
			return &UnsafeIdentifierError{Value: v}
		}
	}
	if !identifierRe.MatchString(v) {
		return &UnsafeIdentifierError{Value: v}
	}
	return nil
}

// NonNullableDefaultNullError reports a non-nullable parameter declared
// with an absent default (§4.4, §7).
type NonNullableDefaultNullError struct {
	Param string
}

func (e *NonNullableDefaultNullError) Error() string {
	return fmt.Sprintf("binding: parameter %q is non-nullable but has an absent default", e.Param)
}

// OffsetRequiresLimitError reports an {{offset}} placeholder with no
// paired {{limit}} in a dialect that forbids standalone OFFSET (§4.5).
type OffsetRequiresLimitError struct {
	Dialect dialect.Tag
}

func (e *OffsetRequiresLimitError) Error() string {
	return fmt.Sprintf("binding: %s requires a paired LIMIT for OFFSET", e.Dialect)
}

// paramRefRe finds literal "@name" occurrences inside literal SQL text
// (i.e. bind parameters referenced directly, outside any {{ }} placeholder).
var paramRefRe = regexp.MustCompile(`@([A-Za-z_][A-Za-z0-9_]*)`)

// Plan walks nodes in order and computes the BindingPlan for method. d and
// presets resolve dialect-specific and named-limit behavior. exprSlots,
// if non-nil, is an expression translator's Slots(); it is appended at
// every KindWhereExpr node, so it describes a template with a single
// {{where @param}} placeholder.
func Plan(nodes []template.Placeholder, method model.MethodSpec, d *dialect.Descriptor, presets *dialect.Presets, exprSlots []expr.Slot) (*Plan, error) {
	p := &Plan{}
	paramByName := map[string]model.Param{}
	for _, pm := range method.Params {
		paramByName[pm.Name] = pm
	}

	var sawLimit, sawOffset bool

	for _, n := range nodes {
		switch n.Kind {
		case template.KindLiteral:
			if err := planLiteralParams(n.Text, paramByName, p); err != nil {
				return nil, err
			}
		case template.KindWhereExpr:
			for _, s := range exprSlots {
				src := SourceExpressionConstant
				if _, isParam := paramByName[s.Name]; isParam {
					src = SourceExpressionPlaceholder
				}
				exp := 0
				if s.Expansion > 0 {
					exp = s.Expansion
				}
				p.Slots = append(p.Slots, Slot{Name: s.Name, Source: src, GoType: s.GoType, Expansion: exp})
			}
		case template.KindLimit:
			sawLimit = true
			lp, err := planLimitOffset(n, paramByName, presets)
			if err != nil {
				return nil, err
			}
			p.Limit = lp
			if lp.ParamName != "" {
				p.Slots = append(p.Slots, Slot{Name: lp.ParamName, Source: SourceMethodParam, GoType: "int", Nullable: lp.Nullable})
			}
		case template.KindOffset:
			sawOffset = true
			lp, err := planLimitOffset(n, paramByName, presets)
			if err != nil {
				return nil, err
			}
			p.Offset = lp
			if lp.ParamName != "" {
				p.Slots = append(p.Slots, Slot{Name: lp.ParamName, Source: SourceMethodParam, GoType: "int", Nullable: lp.Nullable})
			}
		case template.KindDynamicIdentifier:
			pm, ok := paramByName[n.Param]
			if ok && pm.HasDefault {
				if s, isStr := pm.Default.(string); isStr {
					if err := ValidateIdentifier(s); err != nil {
						return nil, err
					}
				}
			}
			// Inlined with dialect quoting by the synthesizer; identifiers
			// are never bound as parameters (§4.4).
		case template.KindDynamicFragment:
			// Inlined verbatim; no slot, no validation (documented as
			// dangerous on model.RoleDynamicFragment).
		default:
			// KindTable, KindColumns, KindPK, KindBoolTrue/False,
			// KindCurrentTimestamp, KindReturningID, KindBatchValues: pure
			// template expansion, no binding slot.
		}
	}

	if sawOffset && !sawLimit {
		if d.LimitSyntax != dialect.LimitOffset || requiresExplicitPair(d) {
			if !method.Options.AutoSentinelLimit {
				return nil, &OffsetRequiresLimitError{Dialect: d.ID}
			}
			p.Limit = LimitPolicy{Present: true, PresetValue: sentinelLimit, Sentinel: true}
		}
	}

	for _, pm := range method.Params {
		if pm.HasDefault && pm.Default == nil && !pm.Nullable {
			return nil, &NonNullableDefaultNullError{Param: pm.Name}
		}
	}

	return p, nil
}

// sentinelLimit is the synthesized LIMIT paired with a standalone OFFSET
// when AutoSentinelLimit is enabled (§9 Open Question (a) decision).
const sentinelLimit = 1 << 30

// requiresExplicitPair reports whether a dialect needs OFFSET always
// paired with LIMIT even though its syntax is nominally LimitOffset (none
// of the closed registry's LimitOffset dialects require this today, but
// the hook exists for a future dialect — kept literal per spec openness).
func requiresExplicitPair(d *dialect.Descriptor) bool { return false }

func planLiteralParams(text string, paramByName map[string]model.Param, p *Plan) error {
	for _, m := range paramRefRe.FindAllStringSubmatch(text, -1) {
		name := m[1]
		pm, ok := paramByName[name]
		goType := "any"
		expansion := 0
		if ok {
			goType = pm.Type
			if strings.HasPrefix(pm.Type, "[]") {
				// Collection expansion plan is resolved at call time by the
				// runtime shim (the count isn't known until the call), so
				// Expansion here is a marker (non-zero) rather than a count;
				// the synthesizer emits a runtime loop instead of N static
				// slots for plain @name collection references.
				expansion = -1
			}
		}
		p.Slots = append(p.Slots, Slot{Name: name, Source: SourceMethodParam, GoType: goType, Nullable: ok && pm.Nullable, Expansion: expansion})
	}
	return nil
}

func planLimitOffset(n template.Placeholder, paramByName map[string]model.Param, presets *dialect.Presets) (LimitPolicy, error) {
	if n.Arg != "" {
		val, ok := presets.Lookup(n.Arg)
		if !ok {
			return LimitPolicy{}, fmt.Errorf("binding: unknown limit preset %q", n.Arg)
		}
		return LimitPolicy{Present: true, PresetValue: val}, nil
	}
	name := n.Param
	if name == "" {
		if n.Kind == template.KindLimit {
			name = "limit"
		} else {
			name = "offset"
		}
	}
	pm, ok := paramByName[name]
	nullable := ok && pm.Nullable
	return LimitPolicy{Present: true, ParamName: name, Nullable: nullable}, nil
}
