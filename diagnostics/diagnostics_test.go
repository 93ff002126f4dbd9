package diagnostics_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/sqlgen/binding"
	"github.com/syssam/sqlgen/diagnostics"
	"github.com/syssam/sqlgen/template"
)

func TestClassifyUnknownPlaceholder(t *testing.T) {
	_, err := template.Parse("{{bogus}}", nil)
	require.Error(t, err)
	d := diagnostics.Classify("UserRepo", "GetAll", err)
	assert.Equal(t, diagnostics.UnknownPlaceholder, d.Category)
	assert.Equal(t, "UserRepo", d.Interface)
	assert.NotEmpty(t, d.Remediation)
}

func TestClassifyUnsafeIdentifier(t *testing.T) {
	err := binding.ValidateIdentifier("a; DROP TABLE x")
	require.Error(t, err)
	d := diagnostics.Classify("UserRepo", "Sort", err)
	assert.Equal(t, diagnostics.UnsafeIdentifier, d.Category)
}

func TestValidatorHasFatalScopedToMethod(t *testing.T) {
	var v diagnostics.Validator
	v.Report(&diagnostics.Diagnostic{Category: diagnostics.MalformedTemplate, Interface: "X", Method: "A"})
	assert.True(t, v.HasFatal("X", "A"))
	assert.False(t, v.HasFatal("X", "B"))
	require.Len(t, v.Diagnostics(), 1)
}
