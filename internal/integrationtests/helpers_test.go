package integrationtests

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/vk/dagstream/internal/app"
	"github.com/vk/dagstream/internal/registry"
	"github.com/vk/dagstream/internal/testutil"
	"github.com/vk/dagstream/modules/arith"
)

// sleeperModule registers one "sleep_<id>" function per id.
type sleeperModule struct {
	sleeper *testutil.Sleeper
	ids     []string
}

func newSleeperModule(sleep time.Duration, ids ...string) *sleeperModule {
	return &sleeperModule{sleeper: testutil.NewSleeper(sleep), ids: ids}
}

func (m *sleeperModule) Register(r *registry.Registry) {
	for _, id := range m.ids {
		r.RegisterFunc("sleep_"+id, m.sleeper.Func(id))
	}
}

func (m *sleeperModule) record(t *testing.T, id string) *testutil.ExecutionRecord {
	t.Helper()
	rec, ok := m.sleeper.Record(id)
	require.True(t, ok, "node %s did not run", id)
	return rec
}

// failingModule registers "fail", which always errors, and "count", which
// counts its invocations.
type failingModule struct {
	calls atomic.Int32
}

func (m *failingModule) Register(r *registry.Registry) {
	r.RegisterFunc("fail", func() error { return errors.New("node exploded") })
	r.RegisterFunc("count", func() int { return int(m.calls.Add(1)) })
}

// writeFiles writes name -> content pairs under a fresh directory.
func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	}
	return dir
}

// runApp runs the app on path and returns its output.
func runApp(t *testing.T, cfg app.Config, modules ...registry.Module) (string, error) {
	t.Helper()
	cfg.LogFormat = "text"
	if cfg.LogLevel == "" {
		cfg.LogLevel = "error"
	}
	if len(modules) == 0 {
		modules = []registry.Module{&arith.Module{}}
	}
	out := &bytes.Buffer{}
	a := app.NewApp(out, &cfg, modules...)
	err := a.Run(context.Background())
	return out.String(), err
}

// resultLine returns the JSON result line, the last line of the output.
func resultLine(out string) string {
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	return lines[len(lines)-1]
}
