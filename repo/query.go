package repo

import "github.com/syssam/sqlgen/model"

// querySkeletons covers read-only listing/searching beyond a single id
// lookup: the full table, a predicate-filtered list, existence check, and
// the nullable-limit scenario from spec §8 scenario S1.
func querySkeletons() []Skeleton {
	return []Skeleton{
		{
			Name:     "GetAll",
			Template: `SELECT {{columns}} FROM {{table}} ORDER BY {{pk}}`,
			Shape:    model.ShapeEntityList,
		},
		{
			Name:     "Find",
			Template: `SELECT {{columns}} FROM {{table}} WHERE {{where @pred}} ORDER BY {{pk}}`,
			Shape:    model.ShapeEntityList,
			Params:   []model.Param{{Name: "pred", Type: "expr.Node", Role: model.RoleExpressionPredicate}},
		},
		{
			Name:       "Exists",
			Template:   `SELECT EXISTS(SELECT 1 FROM {{table}} WHERE {{where @pred}})`,
			Shape:      model.ShapeScalar,
			Params:     []model.Param{{Name: "pred", Type: "expr.Node", Role: model.RoleExpressionPredicate}},
			ScalarType: "bool",
		},
		{
			Name:     "GetWithNullableLimit",
			Template: `SELECT {{columns}} FROM {{table}} ORDER BY {{pk}} {{limit}}`,
			Shape:    model.ShapeEntityList,
			Params:   []model.Param{{Name: "limit", Type: "int", Nullable: true}},
		},
	}
}
