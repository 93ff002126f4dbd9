// Package model defines the host-model contract described in spec §3 and
// §6: the structural description an external host hands to the generator.
// Types in this package are plain data — no behavior depends on reflection,
// and nothing here talks to a database.
package model

// Role marks how a method parameter participates in SQL generation.
type Role int

const (
	// RoleNormal is a regular bind parameter.
	RoleNormal Role = iota
	// RoleCancellation is a cancellation token threaded into async execution.
	RoleCancellation
	// RoleExpressionPredicate is an expression tree for a WHERE clause.
	RoleExpressionPredicate
	// RoleDynamicIdentifier is inlined (quoted) after whitelist validation.
	RoleDynamicIdentifier
	// RoleDynamicFragment is inlined verbatim (dangerous, documented).
	RoleDynamicFragment
)

func (r Role) String() string {
	switch r {
	case RoleCancellation:
		return "cancellation"
	case RoleExpressionPredicate:
		return "expression-predicate"
	case RoleDynamicIdentifier:
		return "dynamic-sql-identifier"
	case RoleDynamicFragment:
		return "dynamic-sql-fragment"
	default:
		return "normal"
	}
}

// ReturnShape is the declared return category of a method (§4.6).
type ReturnShape int

const (
	ShapeNone ReturnShape = iota
	ShapeScalar
	ShapeOptionalEntity
	ShapeEntityList
	ShapePage
	ShapeDictRowList
	ShapeGeneratedID
	ShapeEntityWithID
)

func (s ReturnShape) String() string {
	switch s {
	case ShapeScalar:
		return "scalar"
	case ShapeOptionalEntity:
		return "optional-entity"
	case ShapeEntityList:
		return "entity-list"
	case ShapePage:
		return "paged-result"
	case ShapeDictRowList:
		return "dictionary-row-list"
	case ShapeGeneratedID:
		return "generated-id"
	case ShapeEntityWithID:
		return "entity-with-id"
	default:
		return "rows-affected"
	}
}

// Param describes one declared method parameter.
type Param struct {
	Name     string
	Type     string // Go type, e.g. "int64", "string", "[]int64"
	Nullable bool
	HasDefault bool
	Default  any
	Role     Role
}

// PKGeneration distinguishes how a primary-key value is produced, which
// changes the Insert/GeneratedId recipe (§4.6, §9 Design Notes): a
// database-assigned key is read back after INSERT, a client-assigned one
// (e.g. a UUID) is set before INSERT and never round-tripped.
type PKGeneration int

const (
	// PKAutoIncrement is read back via the dialect's insert-id retrieval.
	PKAutoIncrement PKGeneration = iota
	// PKClientUUID is generated by the caller's code (google/uuid) before
	// the row is written.
	PKClientUUID
)

// Field describes one public named member of an entity.
type Field struct {
	// Name is the Go (PascalCase) member name.
	Name string
	// Column is the snake_case database column name.
	Column string
	// Type is the Go type of the member.
	Type string
	// Nullable indicates the column may be NULL / the Go field is a pointer.
	Nullable bool
	// PrimaryKey marks the entity's primary-key member.
	PrimaryKey bool
	// Generation is meaningful only when PrimaryKey is true.
	Generation PKGeneration
}

// Entity describes a user type sufficient to map rows to values (§3).
type Entity struct {
	Name   string
	Table  string
	Fields []Field
}

// PrimaryKey returns the entity's primary-key field, or nil if none declared.
func (e *Entity) PrimaryKey() *Field {
	for i := range e.Fields {
		if e.Fields[i].PrimaryKey {
			return &e.Fields[i]
		}
	}
	return nil
}

// ClientGeneratedID reports whether e's primary key is produced by caller
// code rather than read back from the database (§4.6, §9).
func (e *Entity) ClientGeneratedID() bool {
	pk := e.PrimaryKey()
	return pk != nil && pk.Generation == PKClientUUID
}

// Options carries per-method option flags (§3 MethodSpec, §6 Configuration).
type Options struct {
	ReturnsInsertedID bool
	IsBatch           bool
	MaxBatchSize      int
	AutoSentinelLimit bool
}

// MethodSpec is the input from the host for one method (§3).
type MethodSpec struct {
	Name     string
	Params   []Param
	Shape    ReturnShape
	// Template is the explicit SQL template, or "" to inherit one from a
	// predefined shape (§4.7).
	Template string
	// PredefinedShape names a repo.ShapeName family (e.g. "Crud") to look
	// the skeleton up from when Template == "" (§4.7 last line: a
	// predefined method is treated identically to a user-authored one once
	// resolved).
	PredefinedShape string
	// Entity is the entity this method operates over.
	Entity *Entity
	// Dialect is the owning interface's dialect tag (e.g. "postgres").
	Dialect string
	// Table overrides {{table}} for this interface, else Entity.Table is used.
	Table string
	// ScalarType is an explicit Go type annotation for ShapeScalar and
	// ShapeGeneratedID methods, e.g. "bool" for an EXISTS query or
	// "float64" for a SUM over a decimal column. When empty, the planner
	// falls back to the method's Entity primary key type (§4.6).
	ScalarType string
	Options    Options
}

// Interface is one repository interface in the host model (§6).
type Interface struct {
	Name    string
	Dialect string
	Table   string
	Methods []MethodSpec
}
