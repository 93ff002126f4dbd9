package synth

import (
	"github.com/dave/jennifer/jen"

	"github.com/syssam/sqlgen/binding"
	"github.com/syssam/sqlgen/dialect"
	"github.com/syssam/sqlgen/model"
	"github.com/syssam/sqlgen/shape"
)

const (
	pkgExpr    = "github.com/syssam/sqlgen/expr"
	pkgRuntime = "github.com/syssam/sqlgen/runtime"
	pkgDialect = "github.com/syssam/sqlgen/dialect"
	pkgUUID    = "github.com/google/uuid"
)

// repoStructName derives the generated struct name from an interface name
// by appending "Impl", e.g. "UserRepository" -> "UserRepositoryImpl"; the
// struct is exported exactly when the interface is.
func repoStructName(ifaceName string) string { return ifaceName + "Impl" }

// EmitInterface renders one interface's generated implementation as a
// jennifer file: a struct (named by repoStructName) wrapping a connection and dialect,
// a constructor, and one method per MethodIR (§4.8).
func EmitInterface(pkg string, iface model.Interface, methods []*MethodIR) *jen.File {
	f := jen.NewFile(pkg)
	f.HeaderComment("Code generated by sqlgen. DO NOT EDIT.")

	structName := repoStructName(iface.Name)

	f.Commentf("%s implements %s against one SQL connection.", structName, iface.Name)
	f.Type().Id(structName).Struct(
		jen.Id("conn").Qual(pkgRuntime, "ExecQuerier"),
		jen.Id("dialect").Op("*").Qual(pkgDialect, "Descriptor"),
	)

	f.Commentf("New%s wires conn to the %s dialect.", structName, iface.Dialect)
	f.Func().Id("New"+structName).Params(
		jen.Id("conn").Qual(pkgRuntime, "ExecQuerier"),
		jen.Id("d").Op("*").Qual(pkgDialect, "Descriptor"),
	).Op("*").Id(structName).Block(
		jen.Return(jen.Op("&").Id(structName).Values(jen.Dict{
			jen.Id("conn"):    jen.Id("conn"),
			jen.Id("dialect"): jen.Id("d"),
		})),
	)

	for _, name := range entitiesNeedingMeta(methods) {
		f.Line()
		emitEntityMeta(f, name, entityByName(methods, name))
	}

	for _, m := range methods {
		f.Line()
		emitMethod(f, structName, m)
	}

	return f
}

// entitiesNeedingMeta returns, in first-occurrence order, the entity names
// any method's opWhereExpr needs an expr.Translator for (§4.3).
func entitiesNeedingMeta(methods []*MethodIR) []string {
	seen := map[string]bool{}
	var out []string
	add := func(ir *MethodIR, ops []op) {
		if ir.Entity == nil {
			return
		}
		for _, o := range ops {
			if o.Kind == opWhereExpr && !seen[ir.Entity.Name] {
				seen[ir.Entity.Name] = true
				out = append(out, ir.Entity.Name)
			}
		}
	}
	for _, m := range methods {
		add(m, m.Ops)
		add(m, m.CountOps)
	}
	return out
}

func entityByName(methods []*MethodIR, name string) *model.Entity {
	for _, m := range methods {
		if m.Entity != nil && m.Entity.Name == name {
			return m.Entity
		}
	}
	return nil
}

// emitEntityMeta emits the package-level *model.Entity literal a
// Translator needs to resolve Go field names to SQL columns at call time
// (§4.3; generation time already validated every Column reference, so this
// literal only needs to carry the name/column/type a predicate can use).
func emitEntityMeta(f *jen.File, entityName string, entity *model.Entity) {
	if entity == nil {
		return
	}
	fieldLits := make([]jen.Code, len(entity.Fields))
	for i, fld := range entity.Fields {
		fieldLits[i] = jen.Values(jen.Dict{
			jen.Id("Name"):       jen.Lit(fld.Name),
			jen.Id("Column"):     jen.Lit(fld.Column),
			jen.Id("Type"):       jen.Lit(fld.Type),
			jen.Id("Nullable"):   jen.Lit(fld.Nullable),
			jen.Id("PrimaryKey"): jen.Lit(fld.PrimaryKey),
		})
	}
	f.Commentf("%s is the field/column map %s's predicate parameters render against.", entityMetaVar(entityName), entityName)
	f.Var().Id(entityMetaVar(entityName)).Op("=").Op("&").Qual("github.com/syssam/sqlgen/model", "Entity").Values(jen.Dict{
		jen.Id("Name"):   jen.Lit(entity.Name),
		jen.Id("Table"):  jen.Lit(entity.Table),
		jen.Id("Fields"): jen.Index().Qual("github.com/syssam/sqlgen/model", "Field").Values(fieldLits...),
	})
}

func emitMethod(f *jen.File, structName string, ir *MethodIR) {
	returnType := emitReturnType(ir.Recipe, ir.Entity)

	params := []jen.Code{jen.Id("ctx").Qual("context", "Context")}
	for _, p := range ir.Method.Params {
		params = append(params, jen.Id(p.Name).Add(goParamType(p, ir.Entity)))
	}

	f.Commentf("%s is generated from the %s predefined shape.", ir.Method.Name, orDefault(ir.Method.PredefinedShape, "user-authored"))
	f.Func().Params(jen.Id("r").Op("*").Id(structName)).Id(ir.Method.Name).
		Params(params...).
		Params(returnType, jen.Error()).
		BlockFunc(func(g *jen.Group) {
			emitBody(g, ir)
		})
}

// entityParamName finds the method parameter declared as the entity type
// itself (the "entity" role param a Crud.Insert-style skeleton binds),
// used to read back a client-generated id after INSERT.
func entityParamName(ir *MethodIR) string {
	for _, p := range ir.Method.Params {
		if p.Type == "entity" {
			return p.Name
		}
	}
	return "entity"
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func emitReturnType(r *shape.Recipe, entity *model.Entity) jen.Code {
	switch r.Kind {
	case shape.KindNone:
		return jen.Int64()
	case shape.KindScalar:
		return scalarJenType(r.ScalarType)
	case shape.KindOptional, shape.KindEntityWithID:
		return jen.Op("*").Id(entity.Name)
	case shape.KindList:
		return jen.Index().Op("*").Id(entity.Name)
	case shape.KindPage:
		return jen.Op("*").Qual(pkgRuntime, "Page").Index(jen.Op("*").Id(entity.Name))
	case shape.KindDictRow:
		return jen.Index().Map(jen.String()).Any()
	case shape.KindGeneratedID:
		return scalarJenType(r.GeneratedID)
	default:
		return jen.Any()
	}
}

func scalarJenType(t string) jen.Code {
	switch t {
	case "int64":
		return jen.Int64()
	case "int":
		return jen.Int()
	case "string":
		return jen.String()
	case "float64":
		return jen.Float64()
	case "bool":
		return jen.Bool()
	case "uuid.UUID":
		return jen.Qual(pkgUUID, "UUID")
	default:
		return jen.Id(t)
	}
}

func goParamType(p model.Param, entity *model.Entity) jen.Code {
	base := goParamBaseType(p, entity)
	if p.Nullable && p.Type != "expr.Node" && p.Type != "entity" && p.Type != "[]entity" {
		return jen.Op("*").Add(base)
	}
	return base
}

func goParamBaseType(p model.Param, entity *model.Entity) jen.Code {
	switch p.Type {
	case "expr.Node":
		return jen.Qual(pkgExpr, "Node")
	case "entity":
		return jen.Op("*").Id(entity.Name)
	case "[]entity":
		return jen.Index().Op("*").Id(entity.Name)
	case "int64":
		return jen.Int64()
	case "int":
		return jen.Int()
	case "string":
		return jen.String()
	case "bool":
		return jen.Bool()
	case "[]int64":
		return jen.Index().Int64()
	case "[]string":
		return jen.Index().String()
	case "uuid.UUID":
		return jen.Qual(pkgUUID, "UUID")
	default:
		return jen.Id(p.Type)
	}
}

// zeroValue returns an expression for returnType's zero value, used on
// every early-error-return (§4.8 generated methods never panic).
func zeroValue(r *shape.Recipe) jen.Code {
	switch r.Kind {
	case shape.KindNone:
		return jen.Lit(0)
	case shape.KindScalar:
		return jen.Op("*").New(scalarJenType(r.ScalarType))
	case shape.KindGeneratedID:
		return jen.Op("*").New(scalarJenType(r.GeneratedID))
	default:
		return jen.Nil()
	}
}

// target names the *strings.Builder/args-slice pair one op sequence writes
// into. A Page-shaped method builds two independent query texts (the list
// query and its paired COUNT(*) query) from the same op-emission logic, so
// every emit* helper is parameterized on target instead of hardcoding
// "sb"/"args" (§4.6).
type target struct{ sb, args string }

var mainTarget = target{sb: "sb", args: "args"}
var countTarget = target{sb: "sbCount", args: "argsCount"}

// emitBody emits the op-driven query assembly followed by the
// shape-appropriate Materialize call (§4.8).
func emitBody(g *jen.Group, ir *MethodIR) {
	zero := zeroValue(ir.Recipe)

	g.Var().Id(mainTarget.sb).Qual("strings", "Builder")
	g.Var().Id(mainTarget.args).Index().Any()

	topNVar := ""
	for _, o := range ir.Ops {
		if v := emitOp(g, ir, o, zero, mainTarget); v != "" {
			topNVar = v
		}
	}

	g.Id("query").Op(":=").Id(mainTarget.sb).Dot("String").Call()
	if topNVar != "" {
		g.Id("query").Op("=").Qual(pkgRuntime, "SpliceTopN").Call(
			jen.Id("query"),
			jen.Qual(pkgRuntime, "ExpandTopN").Call(jen.Id("r").Dot("dialect"), jen.Id(topNVar)),
		)
	}

	if ir.Recipe.Kind == shape.KindPage {
		g.Var().Id(countTarget.sb).Qual("strings", "Builder")
		g.Var().Id(countTarget.args).Index().Any()
		for _, o := range ir.CountOps {
			emitOp(g, ir, o, zero, countTarget)
		}
		g.Id("countQuery").Op(":=").Id(countTarget.sb).Dot("String").Call()
	}

	emitMaterialize(g, ir, zero)
}

// emitOp emits one op's statements, returning the name of a *int "limit"
// variable that still needs splicing into the finished query text (only
// non-empty for a TopN-dialect opPagination), so emitBody can apply it
// after sb.String().
func emitOp(g *jen.Group, ir *MethodIR, o op, zero jen.Code, t target) string {
	switch o.Kind {
	case opLiteral:
		g.Id(t.sb).Dot("WriteString").Call(jen.Lit(o.Text))
	case opParam:
		if o.Collection {
			g.Id(t.sb).Dot("WriteString").Call(
				jen.Qual(pkgRuntime, "ExpandCollectionParameter").Index(elemType(o.GoType)).Call(
					jen.Id("r").Dot("dialect"), jen.Op("&").Id(t.args), jen.Lit(o.ParamName), jen.Id(o.ParamName),
				),
			)
		} else {
			g.Id(t.sb).Dot("WriteString").Call(
				jen.Id("r").Dot("dialect").Dot("ParamRef").Call(jen.Lit(o.ParamName), jen.Len(jen.Id(t.args))),
			)
			g.Id(t.args).Op("=").Append(jen.Id(t.args), jen.Id(o.ParamName))
		}
	case opWhereExpr:
		emitWhereExpr(g, ir, o, zero, t)
	case opPagination:
		return emitPagination(g, ir, o, zero, t)
	case opBatchValues:
		emitBatchValues(g, ir, o, t)
	case opMemberValues:
		emitMemberValues(g, ir, o, t)
	case opDynamicIdentifier:
		g.If(
			jen.Err().Op(":=").Qual("github.com/syssam/sqlgen/binding", "ValidateIdentifier").Call(jen.Id(o.ParamName)),
			jen.Err().Op("!=").Nil(),
		).Block(jen.Return(zero, jen.Err()))
		g.Id(t.sb).Dot("WriteString").Call(jen.Id("r").Dot("dialect").Dot("QuoteIdent").Call(jen.Id(o.ParamName)))
	case opDynamicFragment:
		g.Id(t.sb).Dot("WriteString").Call(jen.Id(o.ParamName))
	}
	return ""
}

func elemType(sliceType string) jen.Code {
	if len(sliceType) > 2 && sliceType[:2] == "[]" {
		return scalarJenType(sliceType[2:])
	}
	return jen.Any()
}

// entityMetaVar names the package-level *model.Entity literal emitted once
// per entity referenced by a WHERE-expression parameter (§4.3: Render needs
// the entity's Go-name-to-column map at call time, not just at generation
// time, since the predicate tree is built by caller code).
func entityMetaVar(entityName string) string {
	return lowerFirst(entityName) + "EntityMeta"
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	if r[0] >= 'A' && r[0] <= 'Z' {
		r[0] += 'a' - 'A'
	}
	return string(r)
}

func emitWhereExpr(g *jen.Group, ir *MethodIR, o op, zero jen.Code, t target) {
	suffix := o.ParamName + "_" + t.sb
	trVar := "tr_" + suffix
	fragVar := "frag_" + suffix
	entityArg := jen.Id(entityMetaVar(ir.Entity.Name))
	g.Id(trVar).Op(":=").Qual(pkgExpr, "NewTranslator").Call(jen.Id("r").Dot("dialect"), entityArg)
	g.Id(trVar).Dot("StartOffset").Op("=").Len(jen.Id(t.args))
	g.List(jen.Id(fragVar), jen.Err()).Op(":=").Id(trVar).Dot("Render").Call(jen.Id(o.ParamName))
	g.If(jen.Err().Op("!=").Nil()).Block(jen.Return(zero, jen.Err()))
	g.Id(t.sb).Dot("WriteString").Call(jen.Id(fragVar))
	g.For(jen.List(jen.Id("_"), jen.Id("s")).Op(":=").Range().Id(trVar).Dot("Slots").Call()).Block(
		jen.Id(t.args).Op("=").Append(jen.Id(t.args), jen.Id("s").Dot("Value")),
	)
}

// limitPointerStmts appends the statements that compute a *int for one
// LimitPolicy, returning the variable name holding it. A preset or
// sentinel policy becomes a local constant taken by address; a
// parameter-backed nullable policy is the parameter itself (already *int);
// a parameter-backed non-nullable policy is the parameter's address.
func limitPointerStmts(g *jen.Group, varName string, p binding.LimitPolicy) {
	switch {
	case !p.Present:
		g.Var().Id(varName).Op("*").Int()
	case p.ParamName == "":
		g.Id(varName + "Val").Op(":=").Lit(p.PresetValue)
		g.Id(varName).Op(":=").Op("&").Id(varName + "Val")
	case p.Nullable:
		g.Id(varName).Op(":=").Id(p.ParamName)
	default:
		g.Id(varName).Op(":=").Op("&").Id(p.ParamName)
	}
}

// emitPagination emits the LIMIT/OFFSET clause and returns the name of the
// *int limit variable when the dialect needs it spliced in after
// sb.String() (TopN only); "" otherwise.
func emitPagination(g *jen.Group, ir *MethodIR, o op, zero jen.Code, t target) string {
	pkCol := ""
	if ir.Entity != nil {
		if pk := ir.Entity.PrimaryKey(); pk != nil {
			pkCol = pk.Column
		}
	}
	hasOrderBy := hasOrderByLiteral(ir.Ops)

	limitPointerStmts(g, "limitPtr", o.Limit)
	limitPointerStmts(g, "offsetPtr", o.Offset)

	if ir.Dialect.LimitSyntax == dialect.TopN {
		// TOP (x) belongs right after SELECT, not at this template
		// position; the finished query text is patched in emitBody once
		// sb.String() has run (§4.1). RenderLimitOffset still runs here,
		// discarding its text, so a call that supplies an OFFSET against
		// this dialect returns RenderLimitOffset's error at call time
		// instead of compiling with offsetPtr unused and OFFSET silently
		// dropped.
		g.List(jen.Id("_"), jen.Id("loOffsetErr")).Op(":=").Id("r").Dot("dialect").Dot("RenderLimitOffset").Call(
			jen.Id("limitPtr"), jen.Id("offsetPtr"), jen.Lit(hasOrderBy), jen.Lit(pkCol),
		)
		g.If(jen.Id("loOffsetErr").Op("!=").Nil()).Block(jen.Return(zero, jen.Id("loOffsetErr")))
		return "limitPtr"
	}

	g.List(jen.Id("loFrag"), jen.Err()).Op(":=").Id("r").Dot("dialect").Dot("RenderLimitOffset").Call(
		jen.Id("limitPtr"), jen.Id("offsetPtr"), jen.Lit(hasOrderBy), jen.Lit(pkCol),
	)
	g.If(jen.Err().Op("!=").Nil()).Block(jen.Return(zero, jen.Err()))
	g.If(jen.Id("loFrag").Op("!=").Lit("")).Block(
		jen.Id(t.sb).Dot("WriteString").Call(jen.Lit(" ")),
		jen.Id(t.sb).Dot("WriteString").Call(jen.Id("loFrag")),
	)
	return ""
}

func emitBatchValues(g *jen.Group, ir *MethodIR, o op, t target) {
	clientID := ir.Entity.ClientGeneratedID()
	fields := insertFields(ir.Entity, !clientID)
	rowsVar := "rowFrags_" + t.sb
	g.Id(rowsVar).Op(":=").Make(jen.Index().String(), jen.Len(jen.Id(o.ItemsParam)))
	g.For(jen.List(jen.Id("i"), jen.Id("item")).Op(":=").Range().Id(o.ItemsParam)).BlockFunc(func(loop *jen.Group) {
		if clientID {
			pk := ir.Entity.PrimaryKey()
			loop.Id("item").Dot(pk.Name).Op("=").Qual(pkgUUID, "New").Call()
		}
		parts := make([]jen.Code, len(fields))
		for i, fld := range fields {
			parts[i] = jen.Id("r").Dot("dialect").Dot("ParamRef").Call(
				jen.Lit(fld.Column), jen.Len(jen.Id(t.args)),
			)
			loop.Id(t.args).Op("=").Append(jen.Id(t.args), jen.Id("item").Dot(fld.Name))
		}
		loop.Id(rowsVar).Index(jen.Id("i")).Op("=").Lit("(").Op("+").Qual("strings", "Join").Call(
			jen.Index().String().Values(parts...), jen.Lit(", "),
		).Op("+").Lit(")")
	})
	g.Id(t.sb).Dot("WriteString").Call(jen.Qual("strings", "Join").Call(jen.Id(rowsVar), jen.Lit(", ")))
}

func emitMemberValues(g *jen.Group, ir *MethodIR, o op, t target) {
	clientID := ir.Entity.ClientGeneratedID()
	if clientID {
		pk := ir.Entity.PrimaryKey()
		g.Id(o.ParamName).Dot(pk.Name).Op("=").Qual(pkgUUID, "New").Call()
	}
	fields := insertFields(ir.Entity, !clientID)
	parts := make([]jen.Code, len(fields))
	for i, fld := range fields {
		parts[i] = jen.Id("r").Dot("dialect").Dot("ParamRef").Call(jen.Lit(fld.Column), jen.Len(jen.Id(t.args)))
		g.Id(t.args).Op("=").Append(jen.Id(t.args), jen.Id(o.ParamName).Dot(fld.Name))
	}
	g.Id(t.sb).Dot("WriteString").Call(jen.Qual("strings", "Join").Call(
		jen.Index().String().Values(parts...), jen.Lit(", "),
	))
}

func emitMaterialize(g *jen.Group, ir *MethodIR, zero jen.Code) {
	switch ir.Recipe.Kind {
	case shape.KindNone:
		g.Id("res").Op(",").Id("err").Op(":=").Id("r").Dot("conn").Dot("ExecContext").Call(jen.Id("ctx"), jen.Id("query"), jen.Id("args").Op("..."))
		g.If(jen.Err().Op("!=").Nil()).Block(jen.Return(zero, jen.Err()))
		g.Return(jen.Id("res").Dot("RowsAffected").Call())
	case shape.KindScalar:
		raise := ir.Recipe.NullPolicy == shape.RaiseNullScalar
		g.Return(jen.Qual(pkgRuntime, "MaterializeScalar").Index(scalarJenType(ir.Recipe.ScalarType)).Call(
			jen.Id("ctx"), jen.Id("r").Dot("conn"), jen.Id("query"), jen.Id("args"), jen.Lit(""), jen.Lit(raise),
		))
	case shape.KindOptional:
		g.Return(jen.Qual(pkgRuntime, "MaterializeOptional").Index(jen.Id(ir.Entity.Name)).Call(
			jen.Id("ctx"), jen.Id("r").Dot("conn"), jen.Id("query"), jen.Id("args"), scanFunc(ir.Entity), jen.False(), jen.Nil(),
		))
	case shape.KindList:
		g.Return(jen.Qual(pkgRuntime, "MaterializeList").Index(jen.Id(ir.Entity.Name)).Call(
			jen.Id("ctx"), jen.Id("r").Dot("conn"), jen.Id("query"), jen.Id("args"), scanFunc(ir.Entity),
		))
	case shape.KindPage:
		g.Return(jen.Qual(pkgRuntime, "MaterializePage").Index(jen.Id(ir.Entity.Name)).Call(
			jen.Id("ctx"), jen.Id("r").Dot("conn"), jen.Id("countQuery"), jen.Id(countTarget.args), jen.Id("query"), jen.Id(mainTarget.args), scanFunc(ir.Entity),
			jen.Id("pageNumber"), jen.Id("pageSize"),
		))
	case shape.KindDictRow:
		g.Return(jen.Qual(pkgRuntime, "MaterializeDictRows").Call(jen.Id("ctx"), jen.Id("r").Dot("conn"), jen.Id("query"), jen.Id("args")))
	case shape.KindGeneratedID:
		if ir.Entity != nil && ir.Entity.ClientGeneratedID() {
			// The id is already set on the entity parameter before this
			// query ran (emitMemberValues/emitBatchValues) — no dialect
			// retrieval is needed or possible for a client-assigned key
			// (§4.6, §9 Design Notes).
			pname := entityParamName(ir)
			pk := ir.Entity.PrimaryKey()
			g.List(jen.Id("_"), jen.Err()).Op(":=").Id("r").Dot("conn").Dot("ExecContext").Call(jen.Id("ctx"), jen.Id("query"), jen.Id("args").Op("..."))
			g.If(jen.Err().Op("!=").Nil()).Block(jen.Return(zero, jen.Err()))
			g.Return(jen.Id(pname).Dot(pk.Name), jen.Nil())
			break
		}
		g.List(jen.Id("frag"), jen.Id("sameStmt")).Op(":=").Id("r").Dot("dialect").Dot("InsertIDSuffix").Call()
		g.Id("followUp").Op(":=").Lit("")
		g.If(jen.Op("!").Id("sameStmt")).Block(jen.Id("followUp").Op("=").Id("frag"))
		g.Return(jen.Qual(pkgRuntime, "MaterializeGeneratedID").Index(scalarJenType(ir.Recipe.GeneratedID)).Call(
			jen.Id("ctx"), jen.Id("r").Dot("conn"), jen.Id("r").Dot("dialect"), jen.Id("query"), jen.Id("args"), jen.Id("followUp"),
		))
	case shape.KindEntityWithID:
		g.Return(jen.Qual(pkgRuntime, "MaterializeOptional").Index(jen.Id(ir.Entity.Name)).Call(
			jen.Id("ctx"), jen.Id("r").Dot("conn"), jen.Id("query"), jen.Id("args"), scanFunc(ir.Entity), jen.False(), jen.Nil(),
		))
	}
}

// scanFunc emits an inline row-mapping closure over entity's fields, in
// the same order as columnList (§4.8, mirrors the teacher's generated
// scan-assign sequences).
func scanFunc(entity *model.Entity) jen.Code {
	return jen.Func().Params(jen.Id("rows").Op("*").Qual("database/sql", "Rows")).Params(jen.Op("*").Id(entity.Name), jen.Error()).
		BlockFunc(func(g *jen.Group) {
			g.Var().Id("v").Id(entity.Name)
			dests := make([]jen.Code, len(entity.Fields))
			for i, f := range entity.Fields {
				dests[i] = jen.Op("&").Id("v").Dot(f.Name)
			}
			g.If(jen.Err().Op(":=").Id("rows").Dot("Scan").Call(dests...), jen.Err().Op("!=").Nil()).Block(
				jen.Return(jen.Nil(), jen.Err()),
			)
			g.Return(jen.Op("&").Id("v"), jen.Nil())
		})
}
