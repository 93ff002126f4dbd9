package repo

import "github.com/syssam/sqlgen/model"

// commandSkeletons covers single-statement writes whose affected-row count
// is the whole contract (rows-affected / None recipe, §4.6).
func commandSkeletons() []Skeleton {
	return []Skeleton{
		{
			Name:     "DeleteWhere",
			Template: `DELETE FROM {{table}} WHERE {{where @pred}}`,
			Shape:    model.ShapeNone,
			Params:   []model.Param{{Name: "pred", Type: "expr.Node", Role: model.RoleExpressionPredicate}},
		},
		{
			Name:     "Truncate",
			Template: `{{table}}`, // rendered via dialect.TruncateOrDelete, not the generic token path
			Shape:    model.ShapeNone,
		},
		{
			Name:     "TouchUpdatedAt",
			Template: `UPDATE {{table}} SET updated_at = {{current_timestamp}} WHERE {{pk}} = @id`,
			Shape:    model.ShapeNone,
			Params:   []model.Param{{Name: "id", Type: "int64"}},
		},
	}
}
