package synth

import (
	"fmt"
	"sort"
	"sync"

	"github.com/dave/jennifer/jen"
	"golang.org/x/sync/errgroup"

	"github.com/syssam/sqlgen/diagnostics"
	"github.com/syssam/sqlgen/dialect"
	"github.com/syssam/sqlgen/model"
	"github.com/syssam/sqlgen/repo"
)

// Synthesizer ties the dialect registry, predefined shape library, and
// per-method planning/emission together into one generation run (§4.8).
// A Synthesizer holds no per-run state and is safe to reuse.
type Synthesizer struct {
	Library repo.Library
	Presets *dialect.Presets
	// Logf receives progress messages; nil is a safe no-op. No third-party
	// logging library is introduced here — see DESIGN.md.
	Logf func(format string, args ...any)
}

// NewSynthesizer builds a Synthesizer from the resolved generation options
// (§6 Configuration: max-batch-size, limit presets).
func NewSynthesizer(maxBatchSize int, presets *dialect.Presets) *Synthesizer {
	return &Synthesizer{Library: repo.NewLibrary(maxBatchSize), Presets: presets}
}

func (s *Synthesizer) logf(format string, args ...any) {
	if s.Logf != nil {
		s.Logf(format, args...)
	}
}

// GeneratedFile is one emitted Go source file (§6 "Emitted artifact": one
// companion class fragment per repository interface).
type GeneratedFile struct {
	Interface string
	Filename  string
	File      *jen.File
}

// methodResult pairs a planned MethodIR with its original declaration
// index, so results computed out of order can be re-sorted back into
// declaration order (§5 determinism).
type methodResult struct {
	index int
	ir    *MethodIR
}

// Generate plans and emits every method of every interface in ifaces.
// Per-method planning runs concurrently via errgroup (§5: "parallelism
// across methods is permitted but not required"); a fatal diagnostic on
// one method excludes only that method from emission (§4.9) and never
// aborts the run for its siblings. Each file's method order matches the
// host model's declaration order; files are sorted by interface name and
// diagnostics by (interface, method) name. Neither depends on completion
// order, so output is byte-identical across runs (§5 "must be
// deterministic").
func (s *Synthesizer) Generate(pkg string, ifaces []model.Interface) ([]GeneratedFile, []*diagnostics.Diagnostic, error) {
	v := &diagnostics.Validator{}
	var mu sync.Mutex

	files := make([]GeneratedFile, 0, len(ifaces))
	for _, iface := range ifaces {
		d, ok := dialect.Lookup(dialect.Tag(iface.Dialect))
		if !ok {
			mu.Lock()
			v.Report(&diagnostics.Diagnostic{
				Category:    diagnostics.DialectUnsupported,
				Interface:   iface.Name,
				Message:     fmt.Sprintf("unknown dialect %q", iface.Dialect),
				Remediation: "use one of the registered dialect tags (sqlite, mysql, postgres, sqlserver, oracle)",
			})
			mu.Unlock()
			continue
		}

		results := make([]*methodResult, len(iface.Methods))
		var g errgroup.Group
		for i, method := range iface.Methods {
			i, method := i, method
			g.Go(func() error {
				ir, err := PlanMethod(iface, method, d, s.Presets, s.Library)
				if err != nil {
					mu.Lock()
					v.Report(diagnostics.Classify(iface.Name, method.Name, err))
					mu.Unlock()
					return nil // a fatal diagnostic skips this method only (§4.9)
				}
				results[i] = &methodResult{index: i, ir: ir}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, nil, err
		}

		var ordered []*MethodIR
		for _, r := range results {
			if r != nil {
				ordered = append(ordered, r.ir)
			}
		}
		if len(ordered) == 0 {
			s.logf("sqlgen: %s: no methods emitted, skipping file", iface.Name)
			continue
		}

		s.logf("sqlgen: %s: emitting %d method(s)", iface.Name, len(ordered))
		files = append(files, GeneratedFile{
			Interface: iface.Name,
			Filename:  fileName(iface.Name),
			File:      EmitInterface(pkg, iface, ordered),
		})
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Interface < files[j].Interface })

	diags := v.Diagnostics()
	sort.SliceStable(diags, func(i, j int) bool {
		if diags[i].Interface != diags[j].Interface {
			return diags[i].Interface < diags[j].Interface
		}
		return diags[i].Method < diags[j].Method
	})
	return files, diags, nil
}

func fileName(ifaceName string) string {
	return lowerFirst(ifaceName) + "_gen.go"
}
