// Package dialect holds the closed dialect registry described in spec §3
// and §4.1: immutable descriptors of how each supported database spells
// identifiers, parameters, booleans, pagination and insert-id retrieval.
//
// The registry is pure data plus small pure functions; it never opens a
// connection itself. Opening one is dialect/conn.go's job; that file is in
// this same package, so importing dialect also links the database drivers
// it imports.
package dialect

import (
	"fmt"
	"strconv"
	"strings"
)

// Tag identifies one of the closed set of supported dialects.
type Tag string

const (
	SQLite     Tag = "sqlite"
	MySQL      Tag = "mysql"
	Postgres   Tag = "postgres"
	SQLServer  Tag = "sqlserver"
	Oracle     Tag = "oracle"
)

// LimitSyntax selects how LIMIT/OFFSET (or their dialect equivalent) render.
type LimitSyntax int

const (
	LimitOffset LimitSyntax = iota // LIMIT x OFFSET y
	TopN                            // TOP (x), no OFFSET support
	OffsetFetch                     // OFFSET y ROWS FETCH NEXT x ROWS ONLY
)

// ReturningMode selects how an auto-generated primary key is retrieved
// after an INSERT.
type ReturningMode int

const (
	LastInsertRowID ReturningMode = iota
	Returning
	OutputInserted
	ScopeIdentity
)

// TruncateFallback selects how {{table}} truncation renders when a dialect
// lacks (or restricts) TRUNCATE.
type TruncateFallback int

const (
	TruncateTable TruncateFallback = iota
	DeleteFrom
)

// Descriptor is an immutable record describing one dialect's syntax (§3).
// Descriptors are constructed once by the registry and never mutated.
type Descriptor struct {
	ID                    Tag
	ParamPrefix           string // e.g. "@", "$", ":"
	ParamOrdinal          bool   // true if params are positional ($1, $2, ...) rather than named
	IdentOpen, IdentClose string
	BoolTrueLiteral       string
	BoolFalseLiteral      string
	LimitSyntax           LimitSyntax
	ReturningMode         ReturningMode
	CurrentTimestampLit   string
	TruncateFallback      TruncateFallback
	AnalyzeSyntax         string // "" means unsupported
	// RequiresOrderByForFetch is true for dialects whose OffsetFetch syntax
	// requires an ORDER BY clause to be present (§4.1 ordering & tie-breaks).
	RequiresOrderByForFetch bool
}

// registry is the closed enum of dialect descriptors, keyed by Tag.
var registry = map[Tag]*Descriptor{
	SQLite: {
		ID: SQLite, ParamPrefix: "?", ParamOrdinal: true,
		IdentOpen: `"`, IdentClose: `"`,
		BoolTrueLiteral: "1", BoolFalseLiteral: "0",
		LimitSyntax:         LimitOffset,
		ReturningMode:       LastInsertRowID,
		CurrentTimestampLit: "CURRENT_TIMESTAMP",
		TruncateFallback:    DeleteFrom,
		AnalyzeSyntax:       "ANALYZE",
	},
	MySQL: {
		ID: MySQL, ParamPrefix: "?", ParamOrdinal: true,
		IdentOpen: "`", IdentClose: "`",
		BoolTrueLiteral: "1", BoolFalseLiteral: "0",
		LimitSyntax:         LimitOffset,
		ReturningMode:       LastInsertRowID,
		CurrentTimestampLit: "CURRENT_TIMESTAMP()",
		TruncateFallback:    TruncateTable,
		AnalyzeSyntax:       "ANALYZE TABLE",
	},
	Postgres: {
		ID: Postgres, ParamPrefix: "$", ParamOrdinal: true,
		IdentOpen: `"`, IdentClose: `"`,
		BoolTrueLiteral: "true", BoolFalseLiteral: "false",
		LimitSyntax:         LimitOffset,
		ReturningMode:       Returning,
		CurrentTimestampLit: "CURRENT_TIMESTAMP",
		TruncateFallback:    TruncateTable,
		AnalyzeSyntax:       "ANALYZE",
	},
	SQLServer: {
		ID: SQLServer, ParamPrefix: "@p", ParamOrdinal: true,
		IdentOpen: "[", IdentClose: "]",
		BoolTrueLiteral: "1", BoolFalseLiteral: "0",
		LimitSyntax:         TopN,
		ReturningMode:       ScopeIdentity,
		CurrentTimestampLit: "SYSUTCDATETIME()",
		TruncateFallback:    TruncateTable,
		AnalyzeSyntax:       "", // no direct equivalent
	},
	Oracle: {
		ID: Oracle, ParamPrefix: ":p", ParamOrdinal: true,
		IdentOpen: `"`, IdentClose: `"`,
		BoolTrueLiteral: "1", BoolFalseLiteral: "0",
		LimitSyntax:             OffsetFetch,
		ReturningMode:           Returning,
		CurrentTimestampLit:     "SYSTIMESTAMP",
		TruncateFallback:        TruncateTable,
		AnalyzeSyntax:           "",
		RequiresOrderByForFetch: true,
	},
}

// Lookup returns the descriptor for tag, or (nil, false) if tag is not a
// member of the closed registry — the generation-time DialectUnsupported
// diagnostic (§4.9) is raised from this.
func Lookup(tag Tag) (*Descriptor, bool) {
	d, ok := registry[tag]
	return d, ok
}

// MustLookup is Lookup but panics on an unknown tag; used only where the
// caller has already validated the tag (e.g. inside the registry itself).
func MustLookup(tag Tag) *Descriptor {
	d, ok := Lookup(tag)
	if !ok {
		panic(fmt.Sprintf("dialect: unknown tag %q", tag))
	}
	return d
}

// QuoteIdent quotes a single identifier per the dialect's convention.
// Callers must have already validated name against the identifier
// whitelist (binding.ValidateIdentifier) — QuoteIdent does not re-validate.
func (d *Descriptor) QuoteIdent(name string) string {
	return d.IdentOpen + name + d.IdentClose
}

// ParamRef renders the n-th (0-based) occurrence of a named parameter.
// Ordinal dialects ignore name and render by position; named-style
// dialects (none in the closed registry today, but the hook exists for
// future dialects) would render "@name" instead.
func (d *Descriptor) ParamRef(name string, ordinal int) string {
	if d.ParamOrdinal {
		return d.ParamPrefix + strconv.Itoa(ordinal+1)
	}
	return d.ParamPrefix + name
}

// RenderBool renders a boolean literal.
func (d *Descriptor) RenderBool(v bool) string {
	if v {
		return d.BoolTrueLiteral
	}
	return d.BoolFalseLiteral
}

// CurrentTimestampExpr renders the dialect's CURRENT_TIMESTAMP expression.
func (d *Descriptor) CurrentTimestampExpr() string {
	return d.CurrentTimestampLit
}

// TruncateOrDelete renders the dialect's truncate fallback for table.
func (d *Descriptor) TruncateOrDelete(table string) string {
	q := d.QuoteIdent(table)
	switch d.TruncateFallback {
	case TruncateTable:
		return "TRUNCATE TABLE " + q
	default:
		return "DELETE FROM " + q
	}
}

// InsertIDSuffix returns the SQL fragment to append (or issue as a
// follow-up statement) to retrieve a generated primary key after INSERT.
// The bool result reports whether the fragment is appended to the same
// statement (true) or must run as a separate statement (false).
func (d *Descriptor) InsertIDSuffix() (fragment string, sameStatement bool) {
	switch d.ReturningMode {
	case Returning:
		return " RETURNING ", true
	case OutputInserted:
		return " OUTPUT INSERTED.", true
	case ScopeIdentity:
		return "SELECT SCOPE_IDENTITY()", false
	case LastInsertRowID:
		return "", false // driver-level LastInsertId()
	default:
		return "", false
	}
}

// LimitOffsetPolicy describes what the rendered SQL needs for a given
// (limit, offset) presence pair, used by the template renderer (§4.1).
type LimitOffsetPolicy struct {
	// EmitOrderBy is true when the dialect requires an ORDER BY that isn't
	// otherwise present in the query and none was supplied.
	EmitOrderBy bool
}

// RenderLimitOffset renders the LIMIT/OFFSET clause text for non-nil limit
// and/or offset values (already resolved to concrete ints by the binding
// planner — nil means "omit"). hasOrderBy reports whether the caller's SQL
// already contains an ORDER BY clause; pkForOrderBy is used to synthesize
// one when RequiresOrderByForFetch is set and none exists.
func (d *Descriptor) RenderLimitOffset(limit, offset *int, hasOrderBy bool, pkForOrderBy string) (string, error) {
	if limit == nil && offset == nil {
		return "", nil
	}
	switch d.LimitSyntax {
	case LimitOffset:
		var sb strings.Builder
		if limit != nil {
			fmt.Fprintf(&sb, "LIMIT %d", *limit)
		}
		if offset != nil {
			if sb.Len() > 0 {
				sb.WriteByte(' ')
			}
			fmt.Fprintf(&sb, "OFFSET %d", *offset)
		}
		return sb.String(), nil
	case TopN:
		// TOP (x) is injected after SELECT by the caller; OFFSET is not
		// supported in this legacy dialect mode.
		if offset != nil {
			return "", fmt.Errorf("dialect: %s does not support OFFSET without a newer FETCH syntax", d.ID)
		}
		if limit == nil {
			return "", nil
		}
		return fmt.Sprintf("TOP (%d)", *limit), nil
	case OffsetFetch:
		if !hasOrderBy && d.RequiresOrderByForFetch {
			if pkForOrderBy == "" {
				return "", ErrMissingOrderBy
			}
		}
		var sb strings.Builder
		if !hasOrderBy && d.RequiresOrderByForFetch {
			fmt.Fprintf(&sb, "ORDER BY %s ", d.QuoteIdent(pkForOrderBy))
		}
		off := 0
		if offset != nil {
			off = *offset
		}
		fmt.Fprintf(&sb, "OFFSET %d ROWS", off)
		if limit != nil {
			fmt.Fprintf(&sb, " FETCH NEXT %d ROWS ONLY", *limit)
		}
		return sb.String(), nil
	default:
		return "", fmt.Errorf("dialect: unknown limit syntax for %s", d.ID)
	}
}

// ErrMissingOrderBy is returned by RenderLimitOffset when an OffsetFetch
// dialect needs an ORDER BY and none is known (§4.1, surfaced upward as the
// diagnostics.MissingOrderBy category).
var ErrMissingOrderBy = fmt.Errorf("dialect: OFFSET/FETCH requires ORDER BY and none is known")

// UnsupportedOperationError reports an operation a dialect descriptor has
// no rendering for, e.g. ANALYZE on a dialect with an empty AnalyzeSyntax
// (§4.1, surfaced as diagnostics.DialectUnsupported).
type UnsupportedOperationError struct {
	Dialect Tag
	Op      string
}

func (e *UnsupportedOperationError) Error() string {
	return fmt.Sprintf("dialect: %s has no %s support", e.Dialect, e.Op)
}

// Presets is the named-limit preset table (§3), mutable so hosts may add or
// override entries via sqlgen.Config (§6 "limit presets").
type Presets struct {
	values map[string]int
}

// DefaultPresets returns the built-in preset table: tiny=5, small=10,
// medium=50, large=100, page=20.
func DefaultPresets() *Presets {
	return &Presets{values: map[string]int{
		"tiny": 5, "small": 10, "medium": 50, "large": 100, "page": 20,
	}}
}

// Set adds or overrides a named preset.
func (p *Presets) Set(name string, n int) { p.values[name] = n }

// Lookup returns the value for a named preset.
func (p *Presets) Lookup(name string) (int, bool) {
	n, ok := p.values[name]
	return n, ok
}
