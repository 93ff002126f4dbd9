package expr_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/sqlgen/dialect"
	"github.com/syssam/sqlgen/expr"
	"github.com/syssam/sqlgen/model"
)

func userEntity() *model.Entity {
	return &model.Entity{
		Name:  "User",
		Table: "users",
		Fields: []model.Field{
			{Name: "ID", Column: "id", Type: "int64", PrimaryKey: true},
			{Name: "Name", Column: "name", Type: "string"},
			{Name: "IsActive", Column: "is_active", Type: "bool"},
		},
	}
}

func TestTranslateBoolColumnLiteral(t *testing.T) {
	d := dialect.MustLookup(dialect.Postgres)
	tr := expr.NewTranslator(d, userEntity())
	f := expr.NewField[bool]("IsActive")
	sql, err := tr.Render(f.EQ(true))
	require.NoError(t, err)
	assert.Equal(t, `"is_active" = true`, sql)
	assert.Empty(t, tr.Slots())
}

func TestTranslateConstParam(t *testing.T) {
	d := dialect.MustLookup(dialect.Postgres)
	tr := expr.NewTranslator(d, userEntity())
	f := expr.NewField[string]("Name")
	sql, err := tr.Render(f.EQ("alice"))
	require.NoError(t, err)
	assert.Equal(t, `"name" = $1`, sql)
	require.Len(t, tr.Slots(), 1)
	assert.Equal(t, "alice", tr.Slots()[0].Value)
}

func TestTranslateNamedSharedSlot(t *testing.T) {
	d := dialect.MustLookup(dialect.Postgres)
	tr := expr.NewTranslator(d, userEntity())
	f := expr.NewField[string]("Name")
	pred := expr.And(f.EQValue("x", "alice"), f.NEQ("bob"))
	// touch the same named slot twice
	sql1, err := tr.Render(pred)
	require.NoError(t, err)
	sql2, err := tr.Render(f.EQValue("x", "alice"))
	require.NoError(t, err)
	assert.Contains(t, sql1, "$1")
	assert.Equal(t, `"name" = $1`, sql2)
	// one slot for "x", one for the bob const
	require.Len(t, tr.Slots(), 2)
	assert.Equal(t, "alice", tr.Slots()[0].Value)
	assert.Equal(t, "bob", tr.Slots()[1].Value)
}

func TestTranslateFillUnknownSlot(t *testing.T) {
	d := dialect.MustLookup(dialect.Postgres)
	tr := expr.NewTranslator(d, userEntity())
	f := expr.NewField[string]("Name")
	_, err := tr.Render(f.EQValue("x", "alice"))
	require.NoError(t, err)

	require.NoError(t, tr.Fill("x", "override"))
	assert.Equal(t, "override", tr.Slots()[0].Value)

	err = tr.Fill("missing", "value")
	require.Error(t, err)
	var unknown *expr.UnknownSlotError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "missing", unknown.Name)
	assert.Equal(t, []string{"x"}, unknown.Available)
}

func TestTranslateInCollectionEmpty(t *testing.T) {
	d := dialect.MustLookup(dialect.Postgres)
	tr := expr.NewTranslator(d, userEntity())
	f := expr.NewField[int64]("ID")
	sql, err := tr.Render(f.In())
	require.NoError(t, err)
	assert.Equal(t, "1=0", sql)
	assert.Empty(t, tr.Slots())
}

func TestTranslateInCollectionExpands(t *testing.T) {
	d := dialect.MustLookup(dialect.Postgres)
	tr := expr.NewTranslator(d, userEntity())
	f := expr.NewField[int64]("ID")
	sql, err := tr.Render(f.In(1, 2, 3))
	require.NoError(t, err)
	assert.Equal(t, `"id" IN ($1, $2, $3)`, sql)
	require.Len(t, tr.Slots(), 3)
	assert.Equal(t, int64(1), tr.Slots()[0].Value)
	assert.Equal(t, int64(3), tr.Slots()[2].Value)
}

func TestTranslateStringContainsLike(t *testing.T) {
	d := dialect.MustLookup(dialect.Postgres)
	tr := expr.NewTranslator(d, userEntity())
	f := expr.NewStringField("Name")
	sql, err := tr.Render(f.Contains("q", "100%_off"))
	require.NoError(t, err)
	assert.Equal(t, `"name" LIKE $1`, sql)
	require.Len(t, tr.Slots(), 1)
	assert.Equal(t, `%100\%\_off%`, tr.Slots()[0].Value)
}

func TestTranslateStringStartsEndsWithAnchorsAndEscapes(t *testing.T) {
	d := dialect.MustLookup(dialect.Postgres)
	tr := expr.NewTranslator(d, userEntity())
	f := expr.NewStringField("Name")

	sql, err := tr.Render(f.StartsWith("prefix", "a_b"))
	require.NoError(t, err)
	assert.Equal(t, `"name" LIKE $1`, sql)
	assert.Equal(t, `a\_b%`, tr.Slots()[0].Value)

	tr2 := expr.NewTranslator(d, userEntity())
	sql2, err := tr2.Render(f.EndsWith("suffix", "a%b"))
	require.NoError(t, err)
	assert.Equal(t, `"name" LIKE $1`, sql2)
	assert.Equal(t, `%a\%b`, tr2.Slots()[0].Value)
}

func TestTranslateUpdateProjection(t *testing.T) {
	d := dialect.MustLookup(dialect.Postgres)
	tr := expr.NewTranslator(d, userEntity())
	sql, err := tr.Render(expr.Update(
		expr.SetValue(expr.NewField[string]("Name"), "name", "newName"),
	))
	require.NoError(t, err)
	assert.Equal(t, `"name" = $1`, sql)
	require.Len(t, tr.Slots(), 1)
	assert.Equal(t, "newName", tr.Slots()[0].Value)
}
