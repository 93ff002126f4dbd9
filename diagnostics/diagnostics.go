// Package diagnostics implements the generation-time validator of spec
// §4.9: every failure the generator can detect is surfaced as a located,
// actionable Diagnostic instead of a bare error, and one method's fatal
// diagnostic never prevents emission for unaffected methods (§4.9, §7).
package diagnostics

import (
	"errors"
	"fmt"

	"github.com/syssam/sqlgen/binding"
	"github.com/syssam/sqlgen/dialect"
	"github.com/syssam/sqlgen/shape"
	"github.com/syssam/sqlgen/template"
)

// Category is one of the closed set of generation-time failure kinds (§7).
type Category string

const (
	MalformedTemplate      Category = "MalformedTemplate"
	UnknownPlaceholder     Category = "UnknownPlaceholder"
	UnsafeIdentifier       Category = "UnsafeIdentifier"
	OffsetRequiresLimit    Category = "OffsetRequiresLimit"
	MissingOrderBy         Category = "MissingOrderBy"
	UnsupportedReturnShape Category = "UnsupportedReturnShape"
	DialectUnsupported     Category = "DialectUnsupported"
	AmbiguousColumn        Category = "AmbiguousColumn"
	NonNullableDefaultNull Category = "NonNullableDefaultNull"
)

// Diagnostic is a located, actionable generation-time failure (§4.9).
type Diagnostic struct {
	Category    Category
	Interface   string
	Method      string
	Message     string
	Remediation string
}

func (d *Diagnostic) Error() string {
	return fmt.Sprintf("%s: %s.%s: %s", d.Category, d.Interface, d.Method, d.Message)
}

// Classify maps an error surfaced by template/binding/shape/dialect into a
// Diagnostic category, attaching location and remediation text. Error
// types it does not recognize get the category "Unknown", the error's own
// message, and no remediation text, rather than a guessed category.
func Classify(ifaceName, methodName string, err error) *Diagnostic {
	d := &Diagnostic{Interface: ifaceName, Method: methodName}

	var unknownPH *template.UnknownPlaceholderError
	var unsafeID *binding.UnsafeIdentifierError
	var offsetErr *binding.OffsetRequiresLimitError
	var nonNullDefault *binding.NonNullableDefaultNullError
	var shapeErr *shape.UnsupportedReturnShapeError
	var unsupportedOp *dialect.UnsupportedOperationError

	switch {
	case errors.Is(err, template.ErrMalformedTemplate):
		d.Category = MalformedTemplate
		d.Message = err.Error()
		d.Remediation = "close every \"{{\" with a matching \"}}\""
	case errors.As(err, &unknownPH):
		d.Category = UnknownPlaceholder
		d.Message = err.Error()
		d.Remediation = fmt.Sprintf("use a recognized placeholder or declare %q as a method parameter", unknownPH.Name)
	case errors.As(err, &unsafeID):
		d.Category = UnsafeIdentifier
		d.Message = err.Error()
		d.Remediation = "identifiers must match [A-Za-z_][A-Za-z0-9_]* and contain no SQL keywords"
	case errors.As(err, &offsetErr):
		d.Category = OffsetRequiresLimit
		d.Message = err.Error()
		d.Remediation = "add a {{limit}} placeholder, or enable AutoSentinelLimit for this method"
	case errors.Is(err, dialect.ErrMissingOrderBy):
		d.Category = MissingOrderBy
		d.Message = err.Error()
		d.Remediation = "add an ORDER BY clause or declare the entity's primary key"
	case errors.As(err, &nonNullDefault):
		d.Category = NonNullableDefaultNull
		d.Message = err.Error()
		d.Remediation = "mark the parameter Nullable, or give it a concrete default value"
	case errors.As(err, &shapeErr):
		d.Category = UnsupportedReturnShape
		d.Message = err.Error()
		d.Remediation = "declare an Entity for this method, or pick a supported return shape"
	case errors.As(err, &unsupportedOp):
		d.Category = DialectUnsupported
		d.Message = err.Error()
		d.Remediation = "this operation has no rendering for the target dialect; guard it out or pick another dialect"
	default:
		d.Category = Category("Unknown")
		d.Message = err.Error()
	}
	return d
}

// Validator collects diagnostics across an entire generation run so the
// synthesizer can skip only the affected methods (§4.9 "generation
// continues for unaffected methods").
type Validator struct {
	diags []*Diagnostic
}

// Report records a diagnostic.
func (v *Validator) Report(d *Diagnostic) { v.diags = append(v.diags, d) }

// Diagnostics returns all reported diagnostics, in report order.
func (v *Validator) Diagnostics() []*Diagnostic { return v.diags }

// HasFatal reports whether any diagnostic was recorded for the given
// interface+method (every category in this registry is fatal to that one
// method; there is no warning tier at generation time).
func (v *Validator) HasFatal(ifaceName, methodName string) bool {
	for _, d := range v.diags {
		if d.Interface == ifaceName && d.Method == methodName {
			return true
		}
	}
	return false
}
