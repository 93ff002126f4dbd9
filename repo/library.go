// Package repo implements the predefined shape library of spec §4.7: a
// closed set of generic repository descriptors whose methods carry a fixed
// SQL template skeleton, default binding plan, and declared result shape,
// so the host doesn't have to hand-author SQL for common CRUD operations.
//
// The Synthesizer treats a predefined method identically to a
// user-authored one once it has looked up the skeleton (§4.7 last line).
package repo

import "github.com/syssam/sqlgen/model"

// Skeleton is one predefined method's template+shape+params triple.
type Skeleton struct {
	Name     string
	Template string
	Shape    model.ReturnShape
	Params   []model.Param
	Options  model.Options
	// ScalarType annotates the Go type a ShapeScalar skeleton's query
	// actually produces, when it isn't the entity's primary key type
	// (§4.6; see model.MethodSpec.ScalarType).
	ScalarType string
}

// ShapeName is one of the closed set of predefined repository shapes.
type ShapeName string

const (
	Crud            ShapeName = "Crud"
	Query           ShapeName = "Query"
	Command         ShapeName = "Command"
	Batch           ShapeName = "Batch"
	Aggregate       ShapeName = "Aggregate"
	PartialUpdate   ShapeName = "PartialUpdate"
	ExpressionUpdate ShapeName = "ExpressionUpdate"
	Advanced        ShapeName = "Advanced"
	Schema          ShapeName = "Schema"
)

// Library is the closed registry: shape name -> its methods.
type Library map[ShapeName][]Skeleton

// NewLibrary builds the standard library. maxBatchSize is threaded into
// Batch skeletons' Options (§6 "max-batch-size", default 100).
func NewLibrary(maxBatchSize int) Library {
	if maxBatchSize <= 0 {
		maxBatchSize = 100
	}
	return Library{
		Crud:             crudSkeletons(),
		Query:            querySkeletons(),
		Command:          commandSkeletons(),
		Batch:            batchSkeletons(maxBatchSize),
		Aggregate:        aggregateSkeletons(),
		PartialUpdate:    partialUpdateSkeletons(),
		ExpressionUpdate: expressionUpdateSkeletons(),
		Advanced:         advancedSkeletons(),
		Schema:           schemaSkeletons(),
	}
}

// Lookup finds a method skeleton by shape and method name.
func (l Library) Lookup(shape ShapeName, method string) (Skeleton, bool) {
	for _, s := range l[shape] {
		if s.Name == method {
			return s, true
		}
	}
	return Skeleton{}, false
}
