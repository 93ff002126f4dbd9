package loader_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/syssam/sqlgen/loader"
	"github.com/syssam/sqlgen/model"
)

const src = `package repos

import (
	"context"

	"github.com/google/uuid"
	"github.com/syssam/sqlgen/expr"
)

// sqlgen:entity table=users
type User struct {
	ID     int64 ` + "`sqlgen:\"pk\"`" + `
	Name   string
	Score  int
	Active bool
}

// sqlgen:entity
type Widget struct {
	ID   uuid.UUID ` + "`sqlgen:\"pk,uuid\"`" + `
	Name string
}

// sqlgen:repo dialect=postgres entity=User
type UserRepository interface {
	// sqlgen:sql SELECT {{columns}} FROM {{table}} WHERE {{pk}} = @id
	// sqlgen:shape return=optional
	GetByID(ctx context.Context, id int64) (*User, error)

	// sqlgen:shape Crud
	Insert(ctx context.Context, entity *User) (int64, error)

	// sqlgen:sql DELETE FROM {{table}} WHERE {{where @pred}}
	// sqlgen:param pred role=predicate
	// sqlgen:shape return=none
	DeleteWhere(ctx context.Context, pred expr.Node) (int64, error)
}
`

func TestLoadParsesEntitiesAndInterfaces(t *testing.T) {
	m, err := loader.Load([]loader.Source{{Filename: "repos.go", Content: src}})
	require.NoError(t, err)

	require.Contains(t, m.Entities, "User")
	user := m.Entities["User"]
	require.Equal(t, "users", user.Table)
	require.Len(t, user.Fields, 4)
	require.Equal(t, "id", user.Fields[0].Column)
	require.True(t, user.Fields[0].PrimaryKey)

	widget := m.Entities["Widget"]
	require.NotNil(t, widget)
	require.Equal(t, model.PKClientUUID, widget.PrimaryKey().Generation)

	require.Len(t, m.Interfaces, 1)
	repo := m.Interfaces[0]
	require.Equal(t, "UserRepository", repo.Name)
	require.Equal(t, "postgres", repo.Dialect)
	require.Len(t, repo.Methods, 3)

	get := repo.Methods[0]
	require.Equal(t, "GetByID", get.Name)
	require.Equal(t, model.ShapeOptionalEntity, get.Shape)
	require.Len(t, get.Params, 1)
	require.Equal(t, "id", get.Params[0].Name)
	require.Equal(t, "int64", get.Params[0].Type)

	insert := repo.Methods[1]
	require.Equal(t, "Crud", insert.PredefinedShape)

	del := repo.Methods[2]
	require.Equal(t, model.ShapeNone, del.Shape)
	require.Equal(t, model.RoleExpressionPredicate, del.Params[0].Role)
}
