package integrationtests

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/dagstream/internal/app"
)

const sleep = 100 * time.Millisecond

func TestDagConcurrency_IndependentNodesOverlap(t *testing.T) {
	dir := writeFiles(t, map[string]string{"main.hcl": `
node "A" { function = "sleep_A" }
node "B" { function = "sleep_B" }
`})
	mod := newSleeperModule(sleep, "A", "B")

	out, err := runApp(t, app.Config{GraphPath: dir, Workers: 2}, mod)
	require.NoError(t, err)
	assert.JSONEq(t, `{"A":"A","B":"B"}`, resultLine(out))
	assert.True(t, mod.record(t, "A").Overlaps(mod.record(t, "B")), "independent nodes should run concurrently")
}

func TestDagConcurrency_FanInWaitsForAllParents(t *testing.T) {
	dir := writeFiles(t, map[string]string{"main.hcl": `
node "A" { function = "sleep_A" }
node "B" { function = "sleep_B" }
node "C" { function = "sleep_C" }
node "D" {
  function = "sleep_D"
  after    = ["A", "B", "C"]
}
`})
	mod := newSleeperModule(sleep, "A", "B", "C", "D")

	out, err := runApp(t, app.Config{GraphPath: dir, Workers: 4}, mod)
	require.NoError(t, err)
	assert.JSONEq(t, `{"D":"D"}`, resultLine(out))

	d := mod.record(t, "D")
	for _, id := range []string{"A", "B", "C"} {
		assert.False(t, d.Start.Before(mod.record(t, id).End), "D started before %s finished", id)
	}
	assert.True(t, mod.record(t, "A").Overlaps(mod.record(t, "C")))
}

func TestDagConcurrency_FanOutRunsChildrenTogether(t *testing.T) {
	dir := writeFiles(t, map[string]string{"main.hcl": `
node "A" { function = "sleep_A" }
node "B" {
  function = "sleep_B"
  after    = ["A"]
}
node "C" {
  function = "sleep_C"
  after    = ["A"]
}
`})
	mod := newSleeperModule(sleep, "A", "B", "C")

	_, err := runApp(t, app.Config{GraphPath: filepath.Join(dir, "main.hcl"), Workers: 3}, mod)
	require.NoError(t, err)

	a := mod.record(t, "A")
	b, c := mod.record(t, "B"), mod.record(t, "C")
	assert.False(t, b.Start.Before(a.End))
	assert.False(t, c.Start.Before(a.End))
	assert.True(t, b.Overlaps(c), "children of a finished node should run concurrently")
}

func TestDagConcurrency_SequentialNeverOverlaps(t *testing.T) {
	dir := writeFiles(t, map[string]string{"main.hcl": `
node "A" { function = "sleep_A" }
node "B" { function = "sleep_B" }
`})
	mod := newSleeperModule(10*time.Millisecond, "A", "B")

	_, err := runApp(t, app.Config{GraphPath: dir}, mod)
	require.NoError(t, err)
	assert.False(t, mod.record(t, "A").Overlaps(mod.record(t, "B")))
}
