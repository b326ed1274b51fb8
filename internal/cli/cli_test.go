package cli

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/dagstream/internal/app"
)

func TestParse(t *testing.T) {
	testCases := []struct {
		name     string
		args     []string
		want     *app.Config
		wantExit bool
		wantErr  string
	}{
		{
			name: "positional path with defaults",
			args: []string{"graph.hcl"},
			want: &app.Config{GraphPath: "graph.hcl", LogFormat: "text", LogLevel: "info"},
		},
		{
			name: "graph flag wins over shorthand and positional",
			args: []string{"-graph", "a.hcl", "-g", "b.hcl", "c.hcl"},
			want: &app.Config{GraphPath: "a.hcl", LogFormat: "text", LogLevel: "info"},
		},
		{
			name: "all options",
			args: []string{
				"-g", "dir", "-workers", "4", "-save-all", "-log-format", "JSON", "-log-level", "Debug",
				"-diagram", "out.mmd", "-events-url", "http://localhost:3000", "-events-namespace", "/dag",
			},
			want: &app.Config{
				GraphPath:       "dir",
				LogFormat:       "json",
				LogLevel:        "debug",
				Workers:         4,
				SaveAll:         true,
				DiagramPath:     "out.mmd",
				EventsURL:       "http://localhost:3000",
				EventsNamespace: "/dag",
			},
		},
		{name: "no path prints usage", args: nil, wantExit: true},
		{name: "help", args: []string{"-h"}, wantExit: true},
		{name: "unknown flag", args: []string{"-nope"}, wantErr: "flag provided but not defined: -nope"},
		{name: "bad log format", args: []string{"-log-format", "xml", "g.hcl"}, wantErr: "invalid log-format"},
		{name: "bad log level", args: []string{"-log-level", "trace", "g.hcl"}, wantErr: "invalid log-level"},
		{name: "negative workers", args: []string{"-workers", "-2", "g.hcl"}, wantErr: "workers must be >= 0"},
		{name: "namespace without url", args: []string{"-events-namespace", "/x", "g.hcl"}, wantErr: "requires an events URL"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			out := &bytes.Buffer{}
			cfg, exit, err := Parse(tc.args, out)

			if tc.wantErr != "" {
				require.Error(t, err)
				var exitErr *ExitError
				require.True(t, errors.As(err, &exitErr))
				assert.Equal(t, 2, exitErr.Code)
				assert.Contains(t, exitErr.Message, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantExit, exit)
			if tc.wantExit {
				assert.Nil(t, cfg)
				assert.Contains(t, out.String(), "Usage:")
				return
			}
			assert.Equal(t, tc.want, cfg)
		})
	}
}
