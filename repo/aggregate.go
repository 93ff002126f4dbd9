package repo

import "github.com/syssam/sqlgen/model"

// aggregateSkeletons covers single-number summaries over a predicate.
func aggregateSkeletons() []Skeleton {
	return []Skeleton{
		{
			Name:       "Count",
			Template:   `SELECT COUNT(*) FROM {{table}} WHERE {{where @pred}}`,
			Shape:      model.ShapeScalar,
			Params:     []model.Param{{Name: "pred", Type: "expr.Node", Role: model.RoleExpressionPredicate}},
			ScalarType: "int64",
		},
		{
			// SumColumn/MaxColumn aggregate an arbitrary caller-chosen
			// column, so the skeleton can't know its Go type; the host
			// must set model.MethodSpec.ScalarType to the real column
			// type (e.g. "float64" for a decimal column) when declaring
			// this method for an interface, or it falls back to the
			// entity's primary key type (§4.6).
			Name:     "SumColumn",
			Template: `SELECT COALESCE(SUM({{column}}), 0) FROM {{table}} WHERE {{where @pred}}`,
			Shape:    model.ShapeScalar,
			Params: []model.Param{
				{Name: "column", Type: "string", Role: model.RoleDynamicIdentifier},
				{Name: "pred", Type: "expr.Node", Role: model.RoleExpressionPredicate},
			},
		},
		{
			Name:     "MaxColumn",
			Template: `SELECT MAX({{column}}) FROM {{table}} WHERE {{where @pred}}`,
			Shape:    model.ShapeScalar,
			Params: []model.Param{
				{Name: "column", Type: "string", Role: model.RoleDynamicIdentifier},
				{Name: "pred", Type: "expr.Node", Role: model.RoleExpressionPredicate},
			},
		},
	}
}
