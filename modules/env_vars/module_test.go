package env_vars

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvVars(t *testing.T) {
	t.Setenv("DAGSTREAM_ENV_TEST", "a=b")
	all := EnvVars()
	assert.Equal(t, "a=b", all["DAGSTREAM_ENV_TEST"])
}

func TestEnv(t *testing.T) {
	t.Setenv("DAGSTREAM_ENV_TEST", "value")

	v, err := Env("DAGSTREAM_ENV_TEST")
	require.NoError(t, err)
	assert.Equal(t, "value", v)

	v, err = Env("DAGSTREAM_ENV_MISSING", 7)
	require.NoError(t, err)
	assert.Equal(t, 7, v)

	_, err = Env("DAGSTREAM_ENV_MISSING")
	assert.ErrorContains(t, err, `"DAGSTREAM_ENV_MISSING" is not set`)
}
