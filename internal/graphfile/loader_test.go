package graphfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/dagstream/internal/testutil"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_SingleFile(t *testing.T) {
	ctx, _ := testutil.NewContext(t)
	dir := t.TempDir()
	path := writeFile(t, dir, "main.hcl", `
node "a" {
  function = "sum"
}

node "b" {
  function     = "offset"
  display_name = "Offset B"
  pipe_from    = ["a"]
}

node "c" {
  function = "print"
  after    = ["a", "b"]
}

run {
  mandatory  = ["c"]
  first_args = [1, 2.5]
  args       = ["x", true, [1, 2]]
  kwargs     = { factor = 3, label = "z" }
  save_all   = true
  workers    = 4
}
`)

	def, err := NewLoader().Load(ctx, path)
	require.NoError(t, err)

	require.Len(t, def.Nodes, 3)
	assert.Equal(t, NodeSpec{Name: "a", Function: "sum"}, def.Nodes[0])
	assert.Equal(t, NodeSpec{Name: "b", Function: "offset", DisplayName: "Offset B", PipeFrom: []string{"a"}}, def.Nodes[1])
	assert.Equal(t, []string{"a", "b"}, def.Nodes[2].After)

	run := def.Run
	assert.Equal(t, []string{"c"}, run.Mandatory)
	assert.Equal(t, []any{1, 2.5}, run.FirstArgs)
	assert.Equal(t, []any{"x", true, []any{1, 2}}, run.Args)
	assert.Equal(t, map[string]any{"factor": 3, "label": "z"}, run.Kwargs)
	assert.True(t, run.SaveAll)
	assert.Equal(t, 4, run.Workers)
}

func TestLoad_DirectoryMergesFiles(t *testing.T) {
	ctx, _ := testutil.NewContext(t)
	dir := t.TempDir()
	writeFile(t, dir, "a.hcl", `node "a" { function = "sum" }`)
	writeFile(t, dir, "nested/b.hcl", `node "b" {
  function = "sum"
  after    = ["a"]
}`)
	writeFile(t, dir, "notes.txt", `not hcl`)

	def, err := NewLoader().Load(ctx, dir)
	require.NoError(t, err)
	require.Len(t, def.Nodes, 2)
	assert.Equal(t, "a", def.Nodes[0].Name)
	assert.Equal(t, "b", def.Nodes[1].Name)
	assert.Empty(t, def.Run.Mandatory)
	assert.Nil(t, def.Run.Args)
	assert.Nil(t, def.Run.Kwargs)
}

func TestLoad_Errors(t *testing.T) {
	testCases := []struct {
		name    string
		files   map[string]string
		wantErr string
	}{
		{
			name: "duplicate node across files",
			files: map[string]string{
				"a.hcl": `node "x" { function = "sum" }`,
				"b.hcl": `node "x" { function = "add" }`,
			},
			wantErr: `node "x" already declared`,
		},
		{
			name: "two run blocks",
			files: map[string]string{
				"a.hcl": `run {}`,
				"b.hcl": `run {}`,
			},
			wantErr: "only one run block is allowed",
		},
		{
			name:    "args not a list",
			files:   map[string]string{"a.hcl": `run { args = "nope" }`},
			wantErr: "args must be a list",
		},
		{
			name:    "kwargs not an object",
			files:   map[string]string{"a.hcl": `run { kwargs = [1] }`},
			wantErr: "kwargs must be an object",
		},
		{
			name:    "negative workers",
			files:   map[string]string{"a.hcl": `run { workers = -1 }`},
			wantErr: "workers must be >= 0",
		},
		{
			name:    "missing function",
			files:   map[string]string{"a.hcl": `node "x" {}`},
			wantErr: "failed to decode HCL file",
		},
		{
			name:    "syntax error",
			files:   map[string]string{"a.hcl": `node "x" {`},
			wantErr: "failed to parse HCL file",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctx, _ := testutil.NewContext(t)
			dir := t.TempDir()
			for name, content := range tc.files {
				writeFile(t, dir, name, content)
			}
			_, err := NewLoader().Load(ctx, dir)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestLoad_NoFiles(t *testing.T) {
	ctx, _ := testutil.NewContext(t)
	_, err := NewLoader().Load(ctx, t.TempDir())
	assert.ErrorIs(t, err, ErrNoFiles)

	_, err = NewLoader().Load(ctx, filepath.Join(t.TempDir(), "missing.hcl"))
	assert.ErrorContains(t, err, "error accessing path")
}
