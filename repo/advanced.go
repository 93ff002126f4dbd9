package repo

import "github.com/syssam/sqlgen/model"

// advancedSkeletons covers escape-hatch shapes that don't fit the other
// eight: whole-statement passthrough and distinct-value listing with an
// identifier supplied at call time (§8 scenario S4, §4.4 DynamicFragment).
func advancedSkeletons() []Skeleton {
	return []Skeleton{
		{
			Name:     "GetDistinctValues",
			Template: `SELECT DISTINCT {{column}} FROM {{table}} WHERE {{column}} IS NOT NULL ORDER BY {{column}} LIMIT 1000`,
			Shape:    model.ShapeDictRowList,
			Params:   []model.Param{{Name: "column", Type: "string", Role: model.RoleDynamicIdentifier}},
		},
		{
			Name:     "RawQuery",
			Template: `{{sql}}`,
			Shape:    model.ShapeDictRowList,
			Params:   []model.Param{{Name: "sql", Type: "string", Role: model.RoleDynamicFragment}},
		},
	}
}
