package binding_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/sqlgen/binding"
	"github.com/syssam/sqlgen/dialect"
	"github.com/syssam/sqlgen/model"
	"github.com/syssam/sqlgen/template"
)

func method(params ...model.Param) model.MethodSpec {
	return model.MethodSpec{Name: "M", Params: params}
}

func TestPlanLiteralParamSlot(t *testing.T) {
	nodes, err := template.Parse(`SELECT 1 FROM t WHERE id = @id`, nil)
	require.NoError(t, err)
	m := method(model.Param{Name: "id", Type: "int64"})
	p, err := binding.Plan(nodes, m, dialect.MustLookup(dialect.Postgres), dialect.DefaultPresets(), nil)
	require.NoError(t, err)
	require.Len(t, p.Slots, 1)
	assert.Equal(t, "id", p.Slots[0].Name)
	assert.Equal(t, binding.SourceMethodParam, p.Slots[0].Source)
}

func TestPlanNullableLimit(t *testing.T) {
	nodes, err := template.Parse(`SELECT 1 FROM t {{limit}}`, nil)
	require.NoError(t, err)
	m := method(model.Param{Name: "limit", Type: "int", Nullable: true})
	p, err := binding.Plan(nodes, m, dialect.MustLookup(dialect.Postgres), dialect.DefaultPresets(), nil)
	require.NoError(t, err)
	assert.True(t, p.Limit.Present)
	assert.True(t, p.Limit.Nullable)
	assert.Equal(t, "limit", p.Limit.ParamName)
}

func TestPlanLimitPreset(t *testing.T) {
	nodes, err := template.Parse(`SELECT 1 FROM t {{limit:small}}`, nil)
	require.NoError(t, err)
	p, err := binding.Plan(nodes, method(), dialect.MustLookup(dialect.Postgres), dialect.DefaultPresets(), nil)
	require.NoError(t, err)
	assert.Equal(t, 10, p.Limit.PresetValue)
	assert.Empty(t, p.Limit.ParamName)
}

func TestPlanOffsetRequiresLimit(t *testing.T) {
	nodes, err := template.Parse(`SELECT 1 FROM t {{offset}}`, nil)
	require.NoError(t, err)
	ora := dialect.MustLookup(dialect.Oracle)
	_, err = binding.Plan(nodes, method(model.Param{Name: "offset", Type: "int"}), ora, dialect.DefaultPresets(), nil)
	var oerr *binding.OffsetRequiresLimitError
	require.ErrorAs(t, err, &oerr)
}

func TestPlanOffsetAutoSentinel(t *testing.T) {
	nodes, err := template.Parse(`SELECT 1 FROM t {{offset}}`, nil)
	require.NoError(t, err)
	ora := dialect.MustLookup(dialect.Oracle)
	m := method(model.Param{Name: "offset", Type: "int"})
	m.Options.AutoSentinelLimit = true
	p, err := binding.Plan(nodes, m, ora, dialect.DefaultPresets(), nil)
	require.NoError(t, err)
	assert.True(t, p.Limit.Sentinel)
}

func TestValidateIdentifierRejectsInjection(t *testing.T) {
	err := binding.ValidateIdentifier("status'; DROP TABLE users --")
	var uerr *binding.UnsafeIdentifierError
	require.ErrorAs(t, err, &uerr)
}

func TestValidateIdentifierAccepts(t *testing.T) {
	assert.NoError(t, binding.ValidateIdentifier("status"))
	assert.NoError(t, binding.ValidateIdentifier("_private_col"))
}

func TestPlanNonNullableDefaultNull(t *testing.T) {
	nodes, err := template.Parse(`SELECT 1`, nil)
	require.NoError(t, err)
	m := method(model.Param{Name: "x", Type: "int", Nullable: false, HasDefault: true, Default: nil})
	_, err = binding.Plan(nodes, m, dialect.MustLookup(dialect.Postgres), dialect.DefaultPresets(), nil)
	var nerr *binding.NonNullableDefaultNullError
	require.ErrorAs(t, err, &nerr)
}
