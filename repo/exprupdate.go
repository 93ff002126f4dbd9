package repo

import "github.com/syssam/sqlgen/model"

// expressionUpdateSkeletons covers SET clauses whose predicate AND
// projection are both expression trees, e.g. `UPDATE t SET balance =
// balance + @amount WHERE id IN (...)` — the projection may reference
// existing column values, unlike PartialUpdate's literal-only SET (§4.3
// "Update projections").
func expressionUpdateSkeletons() []Skeleton {
	return []Skeleton{
		{
			Name:     "UpdateWhere",
			Template: `UPDATE {{table}} SET {{where @set}} WHERE {{where @pred}}`,
			Shape:    model.ShapeNone,
			Params: []model.Param{
				{Name: "set", Type: "expr.Node", Role: model.RoleExpressionPredicate},
				{Name: "pred", Type: "expr.Node", Role: model.RoleExpressionPredicate},
			},
		},
	}
}
