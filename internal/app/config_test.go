package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig(t *testing.T) {
	cfg, err := NewConfig(Config{GraphPath: "graph.hcl", Workers: 4})
	require.NoError(t, err)
	assert.Equal(t, "graph.hcl", cfg.GraphPath)
	assert.Equal(t, 4, cfg.Workers)

	_, err = NewConfig(Config{})
	assert.ErrorContains(t, err, "GraphPath is a required")

	_, err = NewConfig(Config{GraphPath: "g", Workers: -1})
	assert.ErrorContains(t, err, "workers must be >= 0")

	_, err = NewConfig(Config{GraphPath: "g", EventsNamespace: "/dag"})
	assert.ErrorContains(t, err, "requires an events URL")
}
