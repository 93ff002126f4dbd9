// Package shape implements the result-shape planner of spec §4.6: it maps
// a method's declared return category onto a materialization recipe.
package shape

import (
	"fmt"

	"github.com/syssam/sqlgen/model"
)

// Kind is the materialization recipe kind (§3 ResultRecipe).
type Kind int

const (
	KindNone Kind = iota
	KindScalar
	KindOptional
	KindList
	KindPage
	KindDictRow
	KindGeneratedID
	KindEntityWithID
)

// NullPolicy controls behavior when a scalar query returns SQL NULL.
type NullPolicy int

const (
	// RaiseNullScalar is used when T is non-nullable: a NULL from the
	// driver surfaces as runtime.NullScalarError.
	RaiseNullScalar NullPolicy = iota
	// AllowNull is used when T is itself a pointer/nullable Go type.
	AllowNull
)

// Recipe is the planner's output for one method (§3 ResultRecipe).
type Recipe struct {
	Kind        Kind
	ScalarType  string // valid when Kind == KindScalar
	NullPolicy  NullPolicy
	Entity      *model.Entity // valid for Optional/List/Page/EntityWithID
	GeneratedID string        // Go integer/uuid type, valid for KindGeneratedID
}

// UnsupportedReturnShapeError is raised when a declared shape cannot be
// planned (§4.9, §7).
type UnsupportedReturnShapeError struct {
	Shape model.ReturnShape
}

func (e *UnsupportedReturnShapeError) Error() string {
	return fmt.Sprintf("shape: unsupported return shape %s", e.Shape)
}

// scalarNullable reports whether a scalar Go type spelling is itself
// nullable (a pointer or an "any"), exempting it from NullScalar.
func scalarNullable(t string) bool {
	return t == "any" || (len(t) > 0 && t[0] == '*')
}

// Plan computes the ResultRecipe for method (§4.6 table).
func Plan(method model.MethodSpec) (*Recipe, error) {
	switch method.Shape {
	case model.ShapeNone:
		return &Recipe{Kind: KindNone}, nil
	case model.ShapeScalar:
		np := RaiseNullScalar
		if scalarNullable(scalarGoType(method)) {
			np = AllowNull
		}
		return &Recipe{Kind: KindScalar, ScalarType: scalarGoType(method), NullPolicy: np}, nil
	case model.ShapeOptionalEntity:
		if method.Entity == nil {
			return nil, &UnsupportedReturnShapeError{Shape: method.Shape}
		}
		return &Recipe{Kind: KindOptional, Entity: method.Entity}, nil
	case model.ShapeEntityList:
		if method.Entity == nil {
			return nil, &UnsupportedReturnShapeError{Shape: method.Shape}
		}
		return &Recipe{Kind: KindList, Entity: method.Entity}, nil
	case model.ShapePage:
		if method.Entity == nil {
			return nil, &UnsupportedReturnShapeError{Shape: method.Shape}
		}
		return &Recipe{Kind: KindPage, Entity: method.Entity}, nil
	case model.ShapeDictRowList:
		return &Recipe{Kind: KindDictRow}, nil
	case model.ShapeGeneratedID:
		return &Recipe{Kind: KindGeneratedID, GeneratedID: scalarGoType(method)}, nil
	case model.ShapeEntityWithID:
		if method.Entity == nil || method.Entity.PrimaryKey() == nil {
			return nil, &UnsupportedReturnShapeError{Shape: method.Shape}
		}
		return &Recipe{Kind: KindEntityWithID, Entity: method.Entity}, nil
	default:
		return nil, &UnsupportedReturnShapeError{Shape: method.Shape}
	}
}

// scalarGoType finds the scalar return type annotation. method.ScalarType
// is authoritative when set (e.g. "bool" for EXISTS, the real aggregated
// column type for SUM/MAX) — method.Entity's primary key type is only a
// fallback for methods that never declare one, since most of those are
// simple id-keyed scalars (§4.6).
func scalarGoType(method model.MethodSpec) string {
	if method.ScalarType != "" {
		return method.ScalarType
	}
	if method.Entity != nil {
		if pk := method.Entity.PrimaryKey(); pk != nil {
			return pk.Type
		}
	}
	for _, p := range method.Params {
		if p.Name == "__return" {
			return p.Type
		}
	}
	return "int64"
}

// PageRecipe computes total_pages for a paged result (§4.6, §8 property 6).
func PageRecipe(totalCount, pageSize int) int {
	if pageSize <= 0 {
		return 0
	}
	pages := totalCount / pageSize
	if totalCount%pageSize != 0 {
		pages++
	}
	return pages
}
