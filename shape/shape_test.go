package shape_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/sqlgen/model"
	"github.com/syssam/sqlgen/shape"
)

func TestPlanScalarNonNullableRaisesOnNull(t *testing.T) {
	r, err := shape.Plan(model.MethodSpec{Shape: model.ShapeScalar})
	require.NoError(t, err)
	assert.Equal(t, shape.KindScalar, r.Kind)
	assert.Equal(t, shape.RaiseNullScalar, r.NullPolicy)
}

func TestPlanScalarPrefersExplicitScalarTypeOverEntityPK(t *testing.T) {
	e := &model.Entity{
		Name:  "User",
		Table: "users",
		Fields: []model.Field{
			{Name: "ID", Column: "id", Type: "int64", PrimaryKey: true},
		},
	}
	r, err := shape.Plan(model.MethodSpec{Shape: model.ShapeScalar, Entity: e, ScalarType: "bool"})
	require.NoError(t, err)
	assert.Equal(t, "bool", r.ScalarType)
}

func TestPlanScalarFallsBackToEntityPKWhenUnset(t *testing.T) {
	e := &model.Entity{
		Name:  "User",
		Table: "users",
		Fields: []model.Field{
			{Name: "ID", Column: "id", Type: "int64", PrimaryKey: true},
		},
	}
	r, err := shape.Plan(model.MethodSpec{Shape: model.ShapeScalar, Entity: e})
	require.NoError(t, err)
	assert.Equal(t, "int64", r.ScalarType)
}

func TestPlanOptionalRequiresEntity(t *testing.T) {
	_, err := shape.Plan(model.MethodSpec{Shape: model.ShapeOptionalEntity})
	var uerr *shape.UnsupportedReturnShapeError
	require.ErrorAs(t, err, &uerr)
}

func TestPlanPage(t *testing.T) {
	e := &model.Entity{Name: "User", Table: "users"}
	r, err := shape.Plan(model.MethodSpec{Shape: model.ShapePage, Entity: e})
	require.NoError(t, err)
	assert.Equal(t, shape.KindPage, r.Kind)
}

func TestPageRecipeCeil(t *testing.T) {
	assert.Equal(t, 3, shape.PageRecipe(15, 5))
	assert.Equal(t, 4, shape.PageRecipe(16, 5))
	assert.Equal(t, 0, shape.PageRecipe(0, 5))
}
