package template_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/sqlgen/template"
)

func TestParseLiteralAndPlaceholders(t *testing.T) {
	nodes, err := template.Parse(`SELECT {{columns}} FROM {{table}} WHERE is_active = {{bool_true}}`, nil)
	require.NoError(t, err)
	require.Len(t, nodes, 6)
	assert.Equal(t, template.KindLiteral, nodes[0].Kind)
	assert.Equal(t, "SELECT ", nodes[0].Text)
	assert.Equal(t, template.KindColumns, nodes[1].Kind)
	assert.Equal(t, template.KindTable, nodes[3].Kind)
	assert.Equal(t, template.KindBoolTrue, nodes[5].Kind)
}

func TestParseLimitWithPreset(t *testing.T) {
	nodes, err := template.Parse(`{{limit:small}}`, nil)
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.Equal(t, template.KindLimit, nodes[0].Kind)
	assert.Equal(t, "small", nodes[0].Arg)
}

func TestParseWhereExpr(t *testing.T) {
	nodes, err := template.Parse(`SELECT * FROM t WHERE {{where @pred}}`, nil)
	require.NoError(t, err)
	last := nodes[len(nodes)-1]
	assert.Equal(t, template.KindWhereExpr, last.Kind)
	assert.Equal(t, "pred", last.Param)
}

func TestParseUnknownPlaceholder(t *testing.T) {
	_, err := template.Parse(`{{bogus}}`, nil)
	var uerr *template.UnknownPlaceholderError
	require.True(t, errors.As(err, &uerr))
	assert.Equal(t, "bogus", uerr.Name)
}

func TestParseDynamicIdentifierResolvesViaCallback(t *testing.T) {
	nodes, err := template.Parse(`{{sortColumn}}`, func(name string) (bool, bool) {
		return false, name == "sortColumn"
	})
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.Equal(t, template.KindDynamicIdentifier, nodes[0].Kind)
	assert.Equal(t, "sortColumn", nodes[0].Param)
}

func TestParseDynamicFragment(t *testing.T) {
	nodes, err := template.Parse(`{{rawSql}}`, func(name string) (bool, bool) {
		return true, name == "rawSql"
	})
	require.NoError(t, err)
	assert.Equal(t, template.KindDynamicFragment, nodes[0].Kind)
}

func TestParseMalformedTemplate(t *testing.T) {
	_, err := template.Parse(`SELECT * FROM t {{table`, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, template.ErrMalformedTemplate)
}

func TestParseLiteralBraceNotStartingPlaceholder(t *testing.T) {
	nodes, err := template.Parse(`{single} brace`, nil)
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.Equal(t, "{single} brace", nodes[0].Text)
}
