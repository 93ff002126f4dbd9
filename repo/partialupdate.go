package repo

import "github.com/syssam/sqlgen/model"

// partialUpdateSkeletons covers updates that touch only the columns named
// in an explicit projection, leaving the rest byte-identical (§8 property 8
// "Unchanged fields", §8 scenario S6).
func partialUpdateSkeletons() []Skeleton {
	return []Skeleton{
		{
			Name:     "UpdateFields",
			Template: `UPDATE {{table}} SET {{where @set}} WHERE {{pk}} = @id`,
			Shape:    model.ShapeNone,
			Params: []model.Param{
				{Name: "id", Type: "int64"},
				{Name: "set", Type: "expr.Node", Role: model.RoleExpressionPredicate},
			},
		},
	}
}
