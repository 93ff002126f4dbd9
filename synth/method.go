package synth

import (
	"github.com/syssam/sqlgen/binding"
	"github.com/syssam/sqlgen/dialect"
	"github.com/syssam/sqlgen/model"
	"github.com/syssam/sqlgen/repo"
	"github.com/syssam/sqlgen/shape"
	"github.com/syssam/sqlgen/template"
)

// PlanMethod resolves and plans one method: template lookup, tokenizing,
// op-lowering, binding validation, and result-shape planning (§4.8 "one
// method synthesizes independently of its siblings").
func PlanMethod(iface model.Interface, rawMethod model.MethodSpec, d *dialect.Descriptor, presets *dialect.Presets, lib repo.Library) (*MethodIR, error) {
	method, err := resolveTemplate(rawMethod, lib)
	if err != nil {
		return nil, err
	}

	recipe, err := shape.Plan(method)
	if err != nil {
		return nil, err
	}

	if ops, handled, err := specialCaseOps(method, d); handled {
		if err != nil {
			return nil, err
		}
		return &MethodIR{
			Iface: iface, Method: method, Dialect: d, Entity: method.Entity,
			Ops: ops, Plan: &binding.Plan{}, Recipe: recipe,
		}, nil
	}

	nodes, err := template.Parse(method.Template, knownDynamicFunc(method))
	if err != nil {
		return nil, err
	}

	plan, err := binding.Plan(nodes, method, d, presets, nil)
	if err != nil {
		return nil, err
	}

	ops, err := buildOps(nodes, method, d, method.Entity, presets)
	if err != nil {
		return nil, err
	}
	if plan.Limit.Sentinel {
		// A standalone OFFSET accepted under AutoSentinelLimit is paired
		// with the planner's sentinel LIMIT.
		for i := range ops {
			if ops[i].Kind == opPagination {
				ops[i].Limit = plan.Limit
			}
		}
	}

	var countOps []op
	if recipe.Kind == shape.KindPage {
		countOps, err = buildCountOps(nodes, method, d, method.Entity, presets)
		if err != nil {
			return nil, err
		}
	}

	return &MethodIR{
		Iface:    iface,
		Method:   method,
		Dialect:  d,
		Entity:   method.Entity,
		Ops:      ops,
		CountOps: countOps,
		Plan:     plan,
		Recipe:   recipe,
	}, nil
}
