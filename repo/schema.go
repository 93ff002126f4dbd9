package repo

import "github.com/syssam/sqlgen/model"

// schemaSkeletons covers maintenance operations that act on the table as a
// whole rather than individual rows. Both templates resolve to {{table}}
// alone; the synthesizer recognizes these two skeleton names and substitutes
// the dialect's TruncateOrDelete/AnalyzeSyntax rendering instead of a plain
// SELECT/DML statement (spec.md §4.1 truncate_fallback, §4.7 "Truncate:
// dialect's truncate_fallback").
func schemaSkeletons() []Skeleton {
	return []Skeleton{
		{
			Name:     "TruncateTable",
			Template: `{{table}}`,
			Shape:    model.ShapeNone,
		},
		{
			Name:     "AnalyzeTable",
			Template: `{{table}}`,
			Shape:    model.ShapeNone,
		},
	}
}
