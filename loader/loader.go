// Package loader is the pre-pass spec.md §9 Design Notes calls for: "a
// pre-pass that reads type descriptions ... and feeds the generator" in
// place of the source system's runtime attributes. It parses Go source
// with the standard library's go/parser and go/ast — never go/types and
// never reflection — picking up "sqlgen:" doc-comment directives on
// repository interfaces, their methods, and entity structs, and builds
// the model.Interface/model.Entity graph the generator consumes.
package loader

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"sort"
	"strconv"
	"strings"

	"github.com/syssam/sqlgen/model"
)

// Source is one Go source file to load, named for error messages.
type Source struct {
	Filename string
	Content  string
}

// Model is the host model loader.Load produces: every annotated
// repository interface plus the entities they reference (§6 Host model).
type Model struct {
	Interfaces []model.Interface
	Entities   map[string]*model.Entity
}

// Load parses every source and returns the combined host model. Entities
// are collected first (order-independent of the interfaces that reference
// them) so a "sqlgen:repo entity=User" directive can resolve regardless of
// declaration order across files.
func Load(sources []Source) (*Model, error) {
	fset := token.NewFileSet()
	files := make([]*ast.File, 0, len(sources))
	for _, s := range sources {
		f, err := parser.ParseFile(fset, s.Filename, s.Content, parser.ParseComments)
		if err != nil {
			return nil, fmt.Errorf("loader: parsing %s: %w", s.Filename, err)
		}
		files = append(files, f)
	}

	m := &Model{Entities: map[string]*model.Entity{}}
	for _, f := range files {
		if err := collectEntities(f, m); err != nil {
			return nil, err
		}
	}
	for _, f := range files {
		if err := collectInterfaces(f, m); err != nil {
			return nil, err
		}
	}

	sort.Slice(m.Interfaces, func(i, j int) bool { return m.Interfaces[i].Name < m.Interfaces[j].Name })
	return m, nil
}

func commentLines(cg *ast.CommentGroup) []string {
	if cg == nil {
		return nil
	}
	var out []string
	for _, c := range cg.List {
		out = append(out, c.Text)
	}
	return out
}

func collectEntities(f *ast.File, m *Model) error {
	for _, decl := range f.Decls {
		gd, ok := decl.(*ast.GenDecl)
		if !ok || gd.Tok != token.TYPE {
			continue
		}
		for _, spec := range gd.Specs {
			ts, ok := spec.(*ast.TypeSpec)
			if !ok {
				continue
			}
			st, ok := ts.Type.(*ast.StructType)
			if !ok {
				continue
			}
			ds := parseDirectives(commentLines(gd.Doc))
			if _, ok := find(ds, "entity"); !ok {
				continue
			}
			ent, err := entityFromStruct(ts.Name.Name, st, ds)
			if err != nil {
				return err
			}
			m.Entities[ent.Name] = ent
		}
	}
	return nil
}

func collectInterfaces(f *ast.File, m *Model) error {
	for _, decl := range f.Decls {
		gd, ok := decl.(*ast.GenDecl)
		if !ok || gd.Tok != token.TYPE {
			continue
		}
		for _, spec := range gd.Specs {
			ts, ok := spec.(*ast.TypeSpec)
			if !ok {
				continue
			}
			it, ok := ts.Type.(*ast.InterfaceType)
			if !ok {
				continue
			}
			ds := parseDirectives(commentLines(gd.Doc))
			repoDir, ok := find(ds, "repo")
			if !ok {
				continue
			}
			iface, err := interfaceFromDecl(ts.Name.Name, it, repoDir, m)
			if err != nil {
				return err
			}
			m.Interfaces = append(m.Interfaces, *iface)
		}
	}
	return nil
}

func interfaceFromDecl(name string, it *ast.InterfaceType, repoDir directive, m *Model) (*model.Interface, error) {
	iface := &model.Interface{
		Name:    name,
		Dialect: repoDir.args["dialect"],
		Table:   repoDir.args["table"],
	}
	var entity *model.Entity
	if en := repoDir.args["entity"]; en != "" {
		e, ok := m.Entities[en]
		if !ok {
			return nil, fmt.Errorf("loader: interface %s: unknown entity %q (declare it with \"sqlgen:entity\")", name, en)
		}
		entity = e
	}

	for _, field := range it.Methods.List {
		ft, ok := field.Type.(*ast.FuncType)
		if !ok || len(field.Names) == 0 {
			continue // embedded interface; not supported
		}
		ds := parseDirectives(commentLines(field.Doc))
		method, err := methodFromDecl(field.Names[0].Name, ft, ds, entity)
		if err != nil {
			return nil, fmt.Errorf("loader: interface %s: %w", name, err)
		}
		iface.Methods = append(iface.Methods, *method)
	}
	return iface, nil
}

func methodFromDecl(name string, ft *ast.FuncType, ds []directive, entity *model.Entity) (*model.MethodSpec, error) {
	method := &model.MethodSpec{Name: name, Entity: entity}

	if d, ok := find(ds, "sql"); ok {
		method.Template = d.raw
	}
	if d, ok := find(ds, "shape"); ok {
		method.PredefinedShape = d.raw
		if method.Template == "" && d.raw == "" {
			return nil, fmt.Errorf("method %s: \"sqlgen:shape\" needs a family name (e.g. Crud)", name)
		}
	}

	if d, ok := find(ds, "options"); ok {
		method.Options = parseOptions(d.args)
	}

	paramDirs := findAll(ds, "param")
	roleByName := map[string]model.Role{}
	defaultByName := map[string]string{}
	for _, pd := range paramDirs {
		pname, rest, _ := strings.Cut(pd.raw, " ")
		args := parseArgs(rest)
		if role, ok := args["role"]; ok {
			roleByName[pname] = parseRole(role)
		}
		if def, ok := args["default"]; ok {
			defaultByName[pname] = def
		}
	}

	if ft.Params != nil {
		for _, p := range ft.Params.List {
			goType, err := typeString(p.Type)
			if err != nil {
				return nil, fmt.Errorf("method %s: %w", name, err)
			}
			if goType == "context.Context" {
				continue // every generated method takes ctx implicitly (§5)
			}
			nullable := strings.HasPrefix(goType, "*")
			goType = strings.TrimPrefix(goType, "*")
			names := p.Names
			if len(names) == 0 {
				names = []*ast.Ident{ast.NewIdent("_")}
			}
			for _, n := range names {
				param := model.Param{Name: n.Name, Type: goType, Nullable: nullable}
				if role, ok := roleByName[n.Name]; ok {
					param.Role = role
				}
				if def, ok := defaultByName[n.Name]; ok {
					param.HasDefault = true
					if def != "null" {
						param.Default = def
					}
				}
				method.Params = append(method.Params, param)
			}
		}
	}

	shape, err := resolveShape(ds, ft, entity)
	if err != nil {
		return nil, fmt.Errorf("method %s: %w", name, err)
	}
	method.Shape = shape
	return method, nil
}

func parseRole(s string) model.Role {
	switch s {
	case "cancellation":
		return model.RoleCancellation
	case "predicate":
		return model.RoleExpressionPredicate
	case "identifier":
		return model.RoleDynamicIdentifier
	case "fragment":
		return model.RoleDynamicFragment
	default:
		return model.RoleNormal
	}
}

func parseOptions(args map[string]string) model.Options {
	var opt model.Options
	if _, ok := args["return-inserted-id"]; ok {
		opt.ReturnsInsertedID = true
	}
	if _, ok := args["batch"]; ok {
		opt.IsBatch = true
	}
	if v, ok := args["max-batch-size"]; ok {
		if n, err := strconv.Atoi(v); err == nil {
			opt.MaxBatchSize = n
		}
	}
	if _, ok := args["auto-sentinel-limit"]; ok {
		opt.AutoSentinelLimit = true
	}
	return opt
}

// resolveShape determines the method's ReturnShape, preferring an explicit
// "sqlgen:shape ... return=<kind>" directive and otherwise inferring one
// from the Go return-type shape (§4.6).
func resolveShape(ds []directive, ft *ast.FuncType, entity *model.Entity) (model.ReturnShape, error) {
	if d, ok := find(ds, "shape"); ok {
		if kind := parseArgs(d.raw)["return"]; kind != "" {
			return shapeFromName(kind)
		}
	}
	if d, ok := find(ds, "returns"); ok {
		if kind := d.raw; kind != "" {
			return shapeFromName(kind)
		}
	}
	if ft.Results == nil || len(ft.Results.List) == 0 {
		return model.ShapeNone, nil
	}
	// Results are (<value>, error) for a successful call; take the first.
	t, err := typeString(ft.Results.List[0].Type)
	if err != nil {
		return model.ShapeNone, err
	}
	switch {
	case t == "error":
		return model.ShapeNone, nil
	case strings.HasPrefix(t, "[]*") && entity != nil:
		return model.ShapeEntityList, nil
	case strings.HasPrefix(t, "[]"):
		return model.ShapeDictRowList, nil
	case strings.HasPrefix(t, "*") && entity != nil:
		return model.ShapeOptionalEntity, nil
	default:
		return model.ShapeScalar, nil
	}
}

func shapeFromName(s string) (model.ReturnShape, error) {
	switch s {
	case "none":
		return model.ShapeNone, nil
	case "scalar":
		return model.ShapeScalar, nil
	case "optional":
		return model.ShapeOptionalEntity, nil
	case "list":
		return model.ShapeEntityList, nil
	case "page":
		return model.ShapePage, nil
	case "dictrow":
		return model.ShapeDictRowList, nil
	case "generatedid":
		return model.ShapeGeneratedID, nil
	case "entitywithid":
		return model.ShapeEntityWithID, nil
	default:
		return model.ShapeNone, fmt.Errorf("unknown return shape %q", s)
	}
}
