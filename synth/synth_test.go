package synth_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/syssam/sqlgen/dialect"
	"github.com/syssam/sqlgen/model"
	"github.com/syssam/sqlgen/synth"
)

func userEntity() *model.Entity {
	return &model.Entity{
		Name:  "User",
		Table: "users",
		Fields: []model.Field{
			{Name: "ID", Column: "id", Type: "int64", PrimaryKey: true},
			{Name: "Name", Column: "name", Type: "string"},
			{Name: "Active", Column: "active", Type: "bool"},
		},
	}
}

func TestSynthesizerGenerateOrdersFilesAndMethods(t *testing.T) {
	entity := userEntity()
	iface := model.Interface{
		Name:    "UserRepository",
		Dialect: "postgres",
		Methods: []model.MethodSpec{
			{
				Name:     "GetByID",
				Template: "SELECT {{columns}} FROM {{table}} WHERE {{pk}} = @id",
				Shape:    model.ShapeOptionalEntity,
				Entity:   entity,
				Params:   []model.Param{{Name: "id", Type: "int64"}},
			},
			{
				Name:            "Insert",
				PredefinedShape: "Crud",
				Shape:           model.ShapeGeneratedID,
				Entity:          entity,
				Params:          []model.Param{{Name: "entity", Type: "*User"}},
			},
		},
	}

	s := synth.NewSynthesizer(100, dialect.DefaultPresets())
	var logged []string
	s.Logf = func(format string, args ...any) { logged = append(logged, format) }

	files, diags, err := s.Generate("repos", []model.Interface{iface})
	require.NoError(t, err)
	require.Empty(t, diags)
	require.Len(t, files, 1)
	require.Equal(t, "UserRepository", files[0].Interface)
	require.Equal(t, "userRepository_gen.go", files[0].Filename)
	require.NotEmpty(t, logged)

	var buf bytes.Buffer
	require.NoError(t, files[0].File.Render(&buf))
	out := buf.String()
	require.Contains(t, out, "func (r *UserRepositoryImpl) GetByID(")
	require.Contains(t, out, "func (r *UserRepositoryImpl) Insert(")
	require.Contains(t, out, "SELECT")
}

func TestSynthesizerGeneratePageSQLServerUsesOffsetPtr(t *testing.T) {
	entity := userEntity()
	iface := model.Interface{
		Name:    "UserRepository",
		Dialect: "sqlserver",
		Methods: []model.MethodSpec{
			{
				Name:            "GetPage",
				PredefinedShape: "Crud",
				Shape:           model.ShapePage,
				Entity:          entity,
				Params: []model.Param{
					{Name: "pageNumber", Type: "int"},
					{Name: "pageSize", Type: "int"},
					{Name: "pageOffset", Type: "int"},
				},
			},
		},
	}

	s := synth.NewSynthesizer(100, dialect.DefaultPresets())
	files, diags, err := s.Generate("repos", []model.Interface{iface})
	require.NoError(t, err)
	require.Empty(t, diags)
	require.Len(t, files, 1)

	var buf bytes.Buffer
	require.NoError(t, files[0].File.Render(&buf))
	out := buf.String()
	require.Contains(t, out, "offsetPtr")
	require.Contains(t, out, "RenderLimitOffset")
}

func TestSynthesizerGenerateDiagnosticsSortedByMethod(t *testing.T) {
	entity := userEntity()
	iface := model.Interface{
		Name:    "UserRepository",
		Dialect: "postgres",
		Methods: []model.MethodSpec{
			{Name: "Zebra", Template: "SELECT {{nonsense}} FROM {{table}}", Shape: model.ShapeScalar, Entity: entity},
			{Name: "Alpha", Template: "SELECT {{nonsense}} FROM {{table}}", Shape: model.ShapeScalar, Entity: entity},
			{Name: "Mango", Template: "SELECT {{nonsense}} FROM {{table}}", Shape: model.ShapeScalar, Entity: entity},
		},
	}

	s := synth.NewSynthesizer(100, dialect.DefaultPresets())
	for i := 0; i < 5; i++ {
		_, diags, err := s.Generate("repos", []model.Interface{iface})
		require.NoError(t, err)
		require.Len(t, diags, 3)
		require.Equal(t, []string{"Alpha", "Mango", "Zebra"}, []string{diags[0].Method, diags[1].Method, diags[2].Method})
	}
}

func TestSynthesizerGenerateReportsUnsupportedDialect(t *testing.T) {
	iface := model.Interface{
		Name:    "BrokenRepository",
		Dialect: "does-not-exist",
		Methods: []model.MethodSpec{{Name: "Noop", Shape: model.ShapeNone}},
	}

	s := synth.NewSynthesizer(100, dialect.DefaultPresets())
	files, diags, err := s.Generate("repos", []model.Interface{iface})
	require.NoError(t, err)
	require.Empty(t, files)
	require.Len(t, diags, 1)
	require.Equal(t, "DialectUnsupported", string(diags[0].Category))
}

func TestSynthesizerGenerateSkipsOnlyFailingMethod(t *testing.T) {
	entity := userEntity()
	iface := model.Interface{
		Name:    "UserRepository",
		Dialect: "postgres",
		Methods: []model.MethodSpec{
			{
				Name:     "GetByID",
				Template: "SELECT {{columns}} FROM {{table}} WHERE {{pk}} = @id",
				Shape:    model.ShapeOptionalEntity,
				Entity:   entity,
				Params:   []model.Param{{Name: "id", Type: "int64"}},
			},
			{
				Name:     "Broken",
				Template: "SELECT {{nonsense}} FROM {{table}}",
				Shape:    model.ShapeScalar,
				Entity:   entity,
			},
		},
	}

	s := synth.NewSynthesizer(100, dialect.DefaultPresets())
	files, diags, err := s.Generate("repos", []model.Interface{iface})
	require.NoError(t, err)
	require.Len(t, files, 1)
	require.NotEmpty(t, diags)

	var buf bytes.Buffer
	require.NoError(t, files[0].File.Render(&buf))
	out := buf.String()
	require.Contains(t, out, "GetByID")
	require.NotContains(t, out, "Broken")
}
