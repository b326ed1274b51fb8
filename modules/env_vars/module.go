// Package env_vars exposes the process environment to graph files.
package env_vars

import (
	"fmt"
	"os"
	"strings"

	"github.com/vk/dagstream/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// EnvVars returns every environment variable as a map.
func EnvVars() map[string]any {
	envMap := make(map[string]any)
	for _, e := range os.Environ() {
		pair := strings.SplitN(e, "=", 2)
		if len(pair) == 2 {
			envMap[pair[0]] = pair[1]
		}
	}
	return envMap
}

// Env returns the value of the named variable, or fallback when it is
// unset. Without a fallback an unset variable is an error.
func Env(name string, fallback ...any) (any, error) {
	if v, ok := os.LookupEnv(name); ok {
		return v, nil
	}
	if len(fallback) > 0 {
		return fallback[0], nil
	}
	return nil, fmt.Errorf("environment variable %q is not set", name)
}

// Register registers the functions with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterFunc("env_vars", EnvVars)
	r.RegisterFunc("env", Env)
}
