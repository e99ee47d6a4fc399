package build

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"

	"github.com/syssam/oaorm"
	"github.com/syssam/oaorm/compiler/gen"
	"github.com/syssam/oaorm/compiler/load"
	"github.com/syssam/oaorm/schema"
)

func loadSpec(t *testing.T, path string) *load.Spec {
	t.Helper()
	spec, err := load.File(context.Background(), path)
	require.NoError(t, err)
	return spec
}

func TestCanonical(t *testing.T) {
	schemas := schema.NewSchemas().
		Add("B", schema.Schema{"type": "object"}).
		Add("A", schema.Schema{"type": "object", "x-tablename": "a"})

	data, err := Canonical(schemas)
	require.NoError(t, err)
	assert.Equal(t, `{"components":{"schemas":{"B":{"type":"object"},"A":{"type":"object","x-tablename":"a"}}}}`, string(data))
}

func TestHash(t *testing.T) {
	assert.Equal(t, "a9993e364706816aba3e", Hash([]byte("abc")))
	assert.Len(t, Hash(nil), 20)
}

func TestBuild(t *testing.T) {
	t.Run("declared version", func(t *testing.T) {
		r, err := Build(loadSpec(t, "testdata/company.yaml"))
		require.NoError(t, err)
		assert.Equal(t, "company", r.Name)
		assert.Equal(t, "1.0.0", r.Version)
		assert.Contains(t, string(r.Spec), `"x-backrefs":{"employees":`)
		assert.Len(t, r.Graph.Models, 2)
	})

	t.Run("hashed version", func(t *testing.T) {
		r, err := Build(loadSpec(t, "testdata/projects.yml"))
		require.NoError(t, err)
		assert.Equal(t, "projects", r.Name)
		assert.Equal(t, Hash(r.Spec), r.Version)
		assert.Equal(t, []string{"Employee", "Project", "EmployeeProject"}, r.Graph.Schemas.Names())
	})

	t.Run("deterministic", func(t *testing.T) {
		first, err := Build(loadSpec(t, "testdata/projects.yml"))
		require.NoError(t, err)
		second, err := Build(loadSpec(t, "testdata/projects.yml"))
		require.NoError(t, err)
		assert.Equal(t, first.Spec, second.Spec)
		assert.Equal(t, first.Version, second.Version)
	})

	t.Run("broken reference", func(t *testing.T) {
		_, err := Build(loadSpec(t, "testdata/broken.yaml"))
		require.Error(t, err)
		assert.True(t, oaorm.IsBuildError(err))
		assert.True(t, oaorm.IsSchemaNotFound(err))
	})
}

func TestEncode(t *testing.T) {
	r, err := Build(loadSpec(t, "testdata/company.yaml"))
	require.NoError(t, err)
	a := r.Artifacts()

	t.Run("json", func(t *testing.T) {
		data, err := Encode(a, FormatJSON)
		require.NoError(t, err)
		var decoded map[string]any
		require.NoError(t, json.Unmarshal(data, &decoded))
		assert.Equal(t, "1.0.0", decoded["version"])
		models := decoded["models"].([]any)
		require.Len(t, models, 2)
		employee := models[1].(map[string]any)
		assert.Equal(t, "Employee", employee["name"])
		rel := employee["relationships"].([]any)[0].(map[string]any)
		assert.Equal(t, "many-to-one", rel["kind"])
	})

	t.Run("yaml", func(t *testing.T) {
		data, err := Encode(a, FormatYAML)
		require.NoError(t, err)
		var decoded Artifacts
		require.NoError(t, yaml.Unmarshal(data, &decoded))
		assert.Equal(t, a.Version, decoded.Version)
		require.Len(t, decoded.Models, 2)
		assert.Equal(t, "division", decoded.Models[0].Tablename)
	})

	t.Run("msgpack", func(t *testing.T) {
		data, err := Encode(a, FormatMsgpack)
		require.NoError(t, err)
		var decoded map[string]any
		require.NoError(t, msgpack.Unmarshal(data, &decoded))
		assert.Equal(t, "1.0.0", decoded["version"])
		models := decoded["models"].([]any)
		require.Len(t, models, 2)
		assert.Equal(t, "Division", models[0].(map[string]any)["name"])
	})

	t.Run("unknown", func(t *testing.T) {
		_, err := Encode(a, Format("xml"))
		require.Error(t, err)
	})
}

func TestExecute(t *testing.T) {
	out := t.TempDir()
	results, err := Execute(context.Background(),
		[]string{"testdata/company.yaml", "testdata/projects.yml"},
		out,
		WithWorkers(2),
		WithFormat("yaml"),
		WithPackage("entity"),
	)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "company", results[0].Name)
	assert.Equal(t, "projects", results[1].Name)

	for _, file := range []string{
		"company/spec.json",
		"company/artifacts.yaml",
		"company/entity/employee.go",
		"company/entity/division.go",
		"company/entity/tables.go",
		"projects/entity/employee_project.go",
	} {
		_, err := os.Stat(filepath.Join(out, file))
		assert.NoError(t, err, file)
	}
	spec, err := os.ReadFile(filepath.Join(out, "company", "spec.json"))
	require.NoError(t, err)
	assert.Equal(t, results[0].Spec, spec)
}

func TestExecute_Errors(t *testing.T) {
	_, err := Execute(context.Background(), []string{"testdata/company.yaml", "testdata/missing.yaml"}, t.TempDir())
	require.Error(t, err)
	assert.True(t, oaorm.IsBuildError(err))

	_, err = Execute(context.Background(), nil, t.TempDir(), WithFormat("xml"))
	assert.True(t, gen.IsConfigError(err))
}

func TestOptions(t *testing.T) {
	c, err := NewConfig()
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, c.Format)
	assert.Equal(t, "models", c.Package)
	assert.True(t, c.Validate)

	_, err = NewConfig(WithWorkers(0))
	assert.True(t, gen.IsConfigError(err))
	_, err = NewConfig(WithPackage("not/valid"))
	assert.True(t, gen.IsConfigError(err))

	c, err = NewConfig(WithFormat("msgpack"), WithOpenAPIValidation(true), WithValidation(false))
	require.NoError(t, err)
	assert.Equal(t, FormatMsgpack, c.Format)
	assert.True(t, c.OpenAPIValidation)
	assert.False(t, c.Validate)
}
