// Package template implements the SQL template lexer/parser described in
// spec §4.2: turning a template string into literal segments and
// placeholder nodes, ready for the synthesizer to render per dialect.
package template

// Kind discriminates a Placeholder node (§3).
type Kind int

const (
	KindLiteral Kind = iota
	KindTable
	KindColumns
	KindPK
	KindWhereExpr
	KindLimit
	KindOffset
	KindBoolTrue
	KindBoolFalse
	KindCurrentTimestamp
	KindReturningID
	KindBatchValues
	KindDynamicIdentifier
	KindDynamicFragment
	KindMemberValues
)

// Placeholder is one node in the tokenized template (§3).
type Placeholder struct {
	Kind Kind
	// Text holds the literal text for KindLiteral.
	Text string
	// Arg holds the ":arg" suffix, e.g. the preset name in {{limit:small}}.
	Arg string
	// Param holds the "@paramName" suffix, e.g. {{where @pred}} or
	// {{status}} used as a dynamic-sql-param placeholder.
	Param string
}

// known is the set of recognized placeholder names (§4.2 "Unknown
// placeholder names fail with UnknownPlaceholder").
var known = map[string]Kind{
	"table":             KindTable,
	"columns":           KindColumns,
	"pk":                KindPK,
	"where":             KindWhereExpr,
	"limit":             KindLimit,
	"offset":            KindOffset,
	"bool_true":         KindBoolTrue,
	"bool_false":        KindBoolFalse,
	"current_timestamp": KindCurrentTimestamp,
	"returning_id":      KindReturningID,
	"batch_values":      KindBatchValues,
	"member_values":     KindMemberValues,
}

// KnownName reports whether name is a recognized built-in placeholder name.
// Names not in this set are treated as DynamicIdentifier/DynamicFragment
// references, resolved against the method's parameter list by Parse's
// knownDynamic callback; a name the callback does not know fails with
// UnknownPlaceholderError.
func KnownName(name string) (Kind, bool) {
	k, ok := known[name]
	return k, ok
}
