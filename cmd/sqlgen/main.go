// Command sqlgen scans a directory of Go source for "sqlgen:"-annotated
// repository interfaces and entity structs and writes one generated
// implementation file per interface (spec.md §6, §9 Design Notes).
//
// Run: sqlgen -in ./repos -pkg repos -out ./repos -config sqlgen.yaml
package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/sync/errgroup"
	"golang.org/x/tools/imports"

	"github.com/syssam/sqlgen"
	"github.com/syssam/sqlgen/loader"
	"github.com/syssam/sqlgen/model"
	"github.com/syssam/sqlgen/synth"
)

func main() {
	var (
		inDir      = flag.String("in", ".", "directory to scan for sqlgen-annotated Go source")
		outDir     = flag.String("out", "", "output directory for generated files (default: same as -in)")
		pkgName    = flag.String("pkg", "", "package name for generated files (default: inferred from -out)")
		configPath = flag.String("config", "", "path to a sqlgen YAML config file")
		dialectTag = flag.String("dialect", "", "default dialect tag for interfaces that don't declare one")
		watch      = flag.Bool("watch", false, "watch -in for changes and regenerate")
	)
	flag.Parse()

	if *outDir == "" {
		*outDir = *inDir
	}
	if *pkgName == "" {
		*pkgName = filepath.Base(*outDir)
	}

	cfg := sqlgen.DefaultConfig()
	if *configPath != "" {
		c, err := sqlgen.LoadConfig(*configPath)
		if err != nil {
			log.Fatalf("sqlgen: %v", err)
		}
		cfg = c
	}
	run := func() error { return generate(*inDir, *outDir, *pkgName, *dialectTag, cfg) }

	if err := run(); err != nil {
		log.Fatalf("sqlgen: %v", err)
	}
	if !*watch {
		return
	}

	if err := watchAndRegenerate(*inDir, run); err != nil {
		log.Fatalf("sqlgen: watch: %v", err)
	}
}

// generate loads every ".go" file under inDir, synthesizes every annotated
// repository interface it finds, and writes the result to outDir.
func generate(inDir, outDir, pkgName, defaultDialect string, cfg *sqlgen.Config) error {
	sources, err := readSources(inDir)
	if err != nil {
		return err
	}
	if len(sources) == 0 {
		log.Printf("sqlgen: no Go files found under %s", inDir)
		return nil
	}

	hostModel, err := loader.Load(sources)
	if err != nil {
		return fmt.Errorf("load: %w", err)
	}

	for i := range hostModel.Interfaces {
		iface := &hostModel.Interfaces[i]
		if iface.Dialect == "" {
			iface.Dialect = string(cfg.Dialect)
		}
		if iface.Dialect == "" {
			iface.Dialect = defaultDialect
		}
		iface.Table = cfg.TableFor(iface.Name, iface.Table)
		for j := range iface.Methods {
			applyBatchDefault(&iface.Methods[j], cfg)
		}
	}

	s := synth.NewSynthesizer(cfg.MaxBatchSize, cfg.Presets())
	s.Logf = func(format string, args ...any) { log.Printf(format, args...) }

	files, diags, err := s.Generate(pkgName, hostModel.Interfaces)
	if err != nil {
		return fmt.Errorf("generate: %w", err)
	}
	for _, d := range diags {
		log.Printf("sqlgen: %s: %s.%s: %s (%s)", d.Category, d.Interface, d.Method, d.Message, d.Remediation)
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	eg, _ := errgroup.WithContext(context.Background())
	for _, f := range files {
		f := f
		eg.Go(func() error { return writeFile(outDir, f) })
	}
	return eg.Wait()
}

// applyBatchDefault threads the configured max-batch-size and
// return-inserted-id defaults into a method's options when the host model
// left them unset (§6).
func applyBatchDefault(m *model.MethodSpec, cfg *sqlgen.Config) {
	if m.Options.IsBatch && m.Options.MaxBatchSize == 0 {
		m.Options.MaxBatchSize = cfg.MaxBatchSize
	}
	if m.Shape == model.ShapeGeneratedID && cfg.ReturnInsertedID {
		m.Options.ReturnsInsertedID = true
	}
}

// writeFile formats one generated file with goimports and writes it to
// disk, mirroring the teacher's TemplateWriter.generateFile pipeline.
func writeFile(outDir string, f synth.GeneratedFile) error {
	var buf bytes.Buffer
	if err := f.File.Render(&buf); err != nil {
		return fmt.Errorf("render %s: %w", f.Filename, err)
	}

	fullPath := filepath.Join(outDir, f.Filename)
	formatted, err := imports.Process(fullPath, buf.Bytes(), nil)
	if err != nil {
		debugPath := fullPath + ".error"
		_ = os.WriteFile(debugPath, buf.Bytes(), 0o644)
		return fmt.Errorf("format %s: %w (unformatted written to %s)", f.Filename, err, debugPath)
	}
	return os.WriteFile(fullPath, formatted, 0o644)
}

func readSources(dir string) ([]loader.Source, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", dir, err)
	}
	var sources []loader.Source
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".go" {
			continue
		}
		if strings.HasSuffix(e.Name(), "_gen.go") || strings.HasSuffix(e.Name(), "_test.go") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		sources = append(sources, loader.Source{Filename: path, Content: string(content)})
	}
	return sources, nil
}

// watchAndRegenerate re-runs run whenever a ".go" file changes under dir,
// debouncing bursts of events (editors and "go fmt" fire several writes per
// save) into a single regeneration (§6 "--watch").
func watchAndRegenerate(dir string, run func() error) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()
	if err := w.Add(dir); err != nil {
		return err
	}

	log.Printf("sqlgen: watching %s for changes", dir)
	var timer *time.Timer
	debounced := func() {
		if err := run(); err != nil {
			log.Printf("sqlgen: regeneration failed: %v", err)
		}
	}

	for {
		select {
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Ext(ev.Name) != ".go" {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(200*time.Millisecond, debounced)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Printf("sqlgen: watch error: %v", err)
		}
	}
}
