package loader

import (
	"fmt"
	"go/ast"
	"strings"

	"github.com/go-openapi/inflect"

	"github.com/syssam/sqlgen/model"
)

// entityFromStruct builds a model.Entity from a struct type declaration
// carrying a "sqlgen:entity" doc directive. Column names default to the
// snake_case form of the Go field name (inflect.Underscore) and the table
// name defaults to the pluralized, underscored entity name
// (inflect.Pluralize + inflect.Underscore) unless overridden — the
// conservative column-list rule spec.md §9 Open Question (b) settles on
// ("exactly the entity's public members, in declaration order") falls out
// naturally from walking st.Fields.List in order.
func entityFromStruct(name string, st *ast.StructType, ds []directive) (*model.Entity, error) {
	ent := &model.Entity{Name: name}
	if d, ok := find(ds, "entity"); ok {
		ent.Table = d.args["table"]
	}
	if ent.Table == "" {
		ent.Table = inflect.Underscore(inflect.Pluralize(name))
	}

	for _, f := range st.Fields.List {
		if len(f.Names) == 0 {
			continue // embedded field; entities here are plain data, no embedding support
		}
		goType, err := typeString(f.Type)
		if err != nil {
			return nil, fmt.Errorf("loader: entity %s: %w", name, err)
		}
		nullable := strings.HasPrefix(goType, "*")
		goType = strings.TrimPrefix(goType, "*")

		for _, nameIdent := range f.Names {
			if !nameIdent.IsExported() {
				continue
			}
			fld := model.Field{
				Name:     nameIdent.Name,
				Column:   inflect.Underscore(nameIdent.Name),
				Type:     goType,
				Nullable: nullable,
			}
			if tag := fieldTag(f); tag != "" {
				applyFieldTag(&fld, tag)
			}
			ent.Fields = append(ent.Fields, fld)
		}
	}
	return ent, nil
}

// fieldTag extracts the `sqlgen:"..."` struct tag, if present.
func fieldTag(f *ast.Field) string {
	if f.Tag == nil {
		return ""
	}
	raw := strings.Trim(f.Tag.Value, "`")
	const key = `sqlgen:"`
	i := strings.Index(raw, key)
	if i < 0 {
		return ""
	}
	rest := raw[i+len(key):]
	j := strings.Index(rest, `"`)
	if j < 0 {
		return ""
	}
	return rest[:j]
}

// applyFieldTag parses comma-separated `sqlgen:"column=is_active,pk,uuid"`
// tag content, overriding the inferred column name and marking primary-key
// / client-generated-UUID status.
func applyFieldTag(fld *model.Field, tag string) {
	for _, part := range strings.Split(tag, ",") {
		k, v, hasVal := strings.Cut(strings.TrimSpace(part), "=")
		switch k {
		case "column":
			if hasVal {
				fld.Column = v
			}
		case "pk":
			fld.PrimaryKey = true
		case "uuid":
			fld.Generation = model.PKClientUUID
		}
	}
	if fld.PrimaryKey && fld.Type == "uuid.UUID" {
		fld.Generation = model.PKClientUUID
	}
}

// typeString renders an AST type expression as the Go type spelling used
// throughout this module's model ("int64", "[]string", "uuid.UUID", ...).
func typeString(expr ast.Expr) (string, error) {
	switch t := expr.(type) {
	case *ast.Ident:
		return t.Name, nil
	case *ast.StarExpr:
		inner, err := typeString(t.X)
		if err != nil {
			return "", err
		}
		return "*" + inner, nil
	case *ast.ArrayType:
		inner, err := typeString(t.Elt)
		if err != nil {
			return "", err
		}
		return "[]" + inner, nil
	case *ast.SelectorExpr:
		pkgIdent, ok := t.X.(*ast.Ident)
		if !ok {
			return "", fmt.Errorf("unsupported selector type %T", t.X)
		}
		return pkgIdent.Name + "." + t.Sel.Name, nil
	default:
		return "", fmt.Errorf("unsupported field type %T", expr)
	}
}
