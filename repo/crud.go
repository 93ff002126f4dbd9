package repo

import "github.com/syssam/sqlgen/model"

// crudSkeletons covers the basic single-row lifecycle: fetch by id, insert,
// update by id, delete by id, and a bounded page listing (§4.7 examples).
func crudSkeletons() []Skeleton {
	return []Skeleton{
		{
			Name:     "GetById",
			Template: `SELECT {{columns}} FROM {{table}} WHERE {{pk}} = @id`,
			Shape:    model.ShapeOptionalEntity,
			Params:   []model.Param{{Name: "id", Type: "int64"}},
		},
		{
			Name:     "Insert",
			Template: `INSERT INTO {{table}} ({{columns}}) VALUES ({{member_values @entity}}){{returning_id}}`,
			Shape:    model.ShapeGeneratedID,
			Params:   []model.Param{{Name: "entity", Type: "entity", Role: model.RoleNormal}},
			Options:  model.Options{ReturnsInsertedID: true},
		},
		{
			Name:     "Update",
			Template: `UPDATE {{table}} SET {{where @set}} WHERE {{pk}} = @id`,
			Shape:    model.ShapeNone,
			Params: []model.Param{
				{Name: "id", Type: "int64"},
				{Name: "set", Type: "expr.Node", Role: model.RoleExpressionPredicate},
			},
		},
		{
			Name:     "DeleteById",
			Template: `DELETE FROM {{table}} WHERE {{pk}} = @id`,
			Shape:    model.ShapeNone,
			Params:   []model.Param{{Name: "id", Type: "int64"}},
		},
		{
			Name:     "GetPage",
			Template: `SELECT {{columns}} FROM {{table}} ORDER BY {{pk}} {{limit @pageSize}} {{offset @pageOffset}}`,
			Shape:    model.ShapePage,
			Params: []model.Param{
				{Name: "pageNumber", Type: "int"},
				{Name: "pageSize", Type: "int"},
				{Name: "pageOffset", Type: "int"},
			},
		},
	}
}
