package repo

import "github.com/syssam/sqlgen/model"

// batchSkeletons covers multi-row writes (§6 Configuration, §4.7
// BatchInsertAndGetIds, §8 property 7). maxBatchSize is recorded in each
// skeleton's Options; the emitted statement is not split by it.
func batchSkeletons(maxBatchSize int) []Skeleton {
	return []Skeleton{
		{
			Name:     "BatchInsertAndGetIds",
			Template: `INSERT INTO {{table}} ({{columns}}) VALUES {{batch_values}}{{returning_id}}`,
			Shape:    model.ShapeGeneratedID,
			Params:   []model.Param{{Name: "items", Type: "[]entity", Role: model.RoleNormal}},
			Options:  model.Options{IsBatch: true, MaxBatchSize: maxBatchSize, ReturnsInsertedID: true},
		},
		{
			Name:     "BatchDeleteByIds",
			Template: `DELETE FROM {{table}} WHERE {{pk}} IN (@ids)`,
			Shape:    model.ShapeNone,
			Params:   []model.Param{{Name: "ids", Type: "[]int64"}},
			Options:  model.Options{IsBatch: true, MaxBatchSize: maxBatchSize},
		},
	}
}
