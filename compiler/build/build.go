// Package build turns OpenAPI documents into a canonical spec, a version,
// an artifacts file and generated Go models.
//
// Each document is processed on its own schema collection, so several
// documents can be built in parallel.
package build

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/vmihailenco/msgpack/v5"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/syssam/oaorm"
	"github.com/syssam/oaorm/compiler/gen"
	"github.com/syssam/oaorm/compiler/load"
	"github.com/syssam/oaorm/schema"
)

// Artifacts is the content of the artifacts file.
type Artifacts struct {
	Version string       `json:"version" yaml:"version"`
	Models  []*gen.Model `json:"models" yaml:"models"`
}

// Result is a built document.
type Result struct {
	// Name is the file name of the document without its extension.
	Name string
	// Version is info.version or a hash of Spec.
	Version string
	// Spec is the compact JSON of the processed schemas.
	Spec  []byte
	Graph *gen.Graph
}

// Artifacts returns the artifacts of the result.
func (r *Result) Artifacts() *Artifacts {
	return &Artifacts{Version: r.Version, Models: r.Graph.Models}
}

// Build processes a loaded document.
func Build(spec *load.Spec, opts ...Option) (*Result, error) {
	cfg, err := NewConfig(opts...)
	if err != nil {
		return nil, err
	}
	return build(spec, cfg)
}

func build(spec *load.Spec, cfg *Config) (*Result, error) {
	g, err := gen.NewGraph(spec.Schemas,
		gen.WithPackage(cfg.Package),
		gen.WithValidation(cfg.Validate),
	)
	if err != nil {
		return nil, oaorm.NewBuildError("process", spec.Path, err)
	}
	canonical, err := Canonical(g.Schemas)
	if err != nil {
		return nil, oaorm.NewBuildError("spec", spec.Path, err)
	}
	version, ok := spec.Version()
	if !ok {
		version = Hash(canonical)
	}
	return &Result{
		Name:    name(spec.Path),
		Version: version,
		Spec:    canonical,
		Graph:   g,
	}, nil
}

// Canonical returns the compact JSON document {"components":{"schemas":...}}
// of a schema collection.
func Canonical(schemas *schema.Schemas) ([]byte, error) {
	return json.Marshal(map[string]any{
		"components": map[string]any{"schemas": schemas},
	})
}

// Hash returns the first 20 hex characters of the SHA-1 of spec.
func Hash(spec []byte) string {
	sum := sha1.Sum(spec)
	return hex.EncodeToString(sum[:])[:20]
}

// Encode encodes the artifacts in the given format.
func Encode(a *Artifacts, format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		return json.MarshalIndent(a, "", "  ")
	case FormatYAML:
		return yaml.Marshal(a)
	case FormatMsgpack:
		var buf bytes.Buffer
		enc := msgpack.NewEncoder(&buf)
		enc.SetCustomStructTag("json")
		if err := enc.Encode(a); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
	return nil, fmt.Errorf("unknown format %q", format)
}

// Execute builds every document at paths in parallel and writes the results
// under outDir. The files of a document go to a directory named after it:
//
//	<outDir>/<name>/spec.json
//	<outDir>/<name>/artifacts.<format>
//	<outDir>/<name>/<package>/*.go
func Execute(ctx context.Context, paths []string, outDir string, opts ...Option) ([]*Result, error) {
	cfg, err := NewConfig(opts...)
	if err != nil {
		return nil, err
	}
	results := make([]*Result, len(paths))
	errg, ctx := errgroup.WithContext(ctx)
	errg.SetLimit(cfg.Workers)
	for i, path := range paths {
		errg.Go(func() error {
			spec, err := load.File(ctx, path, load.WithOpenAPIValidation(cfg.OpenAPIValidation))
			if err != nil {
				return err
			}
			r, err := build(spec, cfg)
			if err != nil {
				return err
			}
			if err := write(ctx, r, filepath.Join(outDir, r.Name), cfg); err != nil {
				return oaorm.NewBuildError("write", path, err)
			}
			zap.S().Infow("built document",
				"path", path,
				"version", r.Version,
				"models", len(r.Graph.Models),
			)
			results[i] = r
			return nil
		})
	}
	if err := errg.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func write(ctx context.Context, r *Result, dir string, cfg *Config) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dir, "spec.json"), r.Spec, 0o644); err != nil {
		return err
	}
	data, err := Encode(r.Artifacts(), cfg.Format)
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dir, "artifacts."+string(cfg.Format)), data, 0o644); err != nil {
		return err
	}
	g := *r.Graph
	g.Config = &gen.Config{
		Package: cfg.Package,
		Header:  gen.DefaultHeader,
		Target:  filepath.Join(dir, cfg.Package),
		Workers: cfg.Workers,
	}
	return gen.NewGenerator(&g).Generate(ctx)
}

func name(path string) string {
	if path == "" {
		return "spec"
	}
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
