package dialect_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/sqlgen/dialect"
)

func TestLookupClosedRegistry(t *testing.T) {
	for _, tag := range []dialect.Tag{dialect.SQLite, dialect.MySQL, dialect.Postgres, dialect.SQLServer, dialect.Oracle} {
		d, ok := dialect.Lookup(tag)
		require.True(t, ok, "expected %s to be registered", tag)
		require.NotNil(t, d)
	}

	_, ok := dialect.Lookup("db2")
	assert.False(t, ok)
}

func TestQuoteIdent(t *testing.T) {
	pg := dialect.MustLookup(dialect.Postgres)
	assert.Equal(t, `"users"`, pg.QuoteIdent("users"))

	ms := dialect.MustLookup(dialect.SQLServer)
	assert.Equal(t, "[users]", ms.QuoteIdent("users"))

	my := dialect.MustLookup(dialect.MySQL)
	assert.Equal(t, "`users`", my.QuoteIdent("users"))
}

func TestRenderBool(t *testing.T) {
	pg := dialect.MustLookup(dialect.Postgres)
	assert.Equal(t, "true", pg.RenderBool(true))
	assert.Equal(t, "false", pg.RenderBool(false))

	ms := dialect.MustLookup(dialect.SQLServer)
	assert.Equal(t, "1", ms.RenderBool(true))
	assert.Equal(t, "0", ms.RenderBool(false))
}

func TestRenderLimitOffsetDialects(t *testing.T) {
	limit, offset := 10, 20

	pg := dialect.MustLookup(dialect.Postgres)
	out, err := pg.RenderLimitOffset(&limit, &offset, true, "")
	require.NoError(t, err)
	assert.Equal(t, "LIMIT 10 OFFSET 20", out)

	ms := dialect.MustLookup(dialect.SQLServer)
	out, err = ms.RenderLimitOffset(&limit, nil, true, "")
	require.NoError(t, err)
	assert.Equal(t, "TOP (10)", out)

	_, err = ms.RenderLimitOffset(&limit, &offset, true, "")
	assert.Error(t, err)

	ora := dialect.MustLookup(dialect.Oracle)
	out, err = ora.RenderLimitOffset(&limit, &offset, true, "")
	require.NoError(t, err)
	assert.Equal(t, "OFFSET 20 ROWS FETCH NEXT 10 ROWS ONLY", out)

	_, err = ora.RenderLimitOffset(&limit, &offset, false, "")
	assert.ErrorIs(t, err, dialect.ErrMissingOrderBy)

	out, err = ora.RenderLimitOffset(&limit, &offset, false, "id")
	require.NoError(t, err)
	assert.Equal(t, `ORDER BY "id" OFFSET 20 ROWS FETCH NEXT 10 ROWS ONLY`, out)
}

func TestRenderLimitOffsetOmitted(t *testing.T) {
	pg := dialect.MustLookup(dialect.Postgres)
	out, err := pg.RenderLimitOffset(nil, nil, true, "")
	require.NoError(t, err)
	assert.Equal(t, "", out)
}

func TestDefaultPresets(t *testing.T) {
	p := dialect.DefaultPresets()
	for name, want := range map[string]int{"tiny": 5, "small": 10, "medium": 50, "large": 100, "page": 20} {
		got, ok := p.Lookup(name)
		require.True(t, ok)
		assert.Equal(t, want, got)
	}
	p.Set("huge", 1000)
	got, ok := p.Lookup("huge")
	require.True(t, ok)
	assert.Equal(t, 1000, got)
}
