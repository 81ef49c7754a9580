package uitest

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/afs"
	"github.com/viant/uitest/service/interpreter"
)

func TestLoadConfig(t *testing.T) {
	ctx := context.Background()
	fs := afs.New()
	t.Setenv("UITEST_HOST", "ssh://ci-browser:2222")
	URL := "mem://localhost/config/uitest.yaml"
	require.NoError(t, fs.Upload(ctx, URL, 0644, strings.NewReader(`testFolder: tests/ui
htmlFolder: build/html
parallelism: 8
stallTimeout: 30s
variables:
  - name: WINDOWS_PATH
    value: 'D:\x'
interpreter:
  command: node ./bin/interpreter.js
browser:
  url: ${env.UITEST_HOST}
  credentials: ci-ssh
log:
  level: debug
`)))

	config, err := LoadConfig(ctx, fs, URL)
	require.NoError(t, err)
	assert.Equal(t, "tests/ui", config.TestFolder)
	assert.Equal(t, ".goml", config.ScriptExt)
	assert.Equal(t, 30*time.Second, config.StallTimeout)
	assert.Equal(t, 5, config.Limit())
	assert.Equal(t, "node ./bin/interpreter.js", config.Interpreter.Command)
	assert.Equal(t, 300000, config.Interpreter.TimeoutMs)
	assert.Equal(t, "ssh://ci-browser:2222", config.Browser.URL)
	assert.False(t, config.Browser.IsLocal())
	assert.Equal(t, "debug", config.Log.Level)
	assert.Equal(t, []interpreter.Variable{
		{Name: "DOC_PATH", Value: "build/html"},
		{Name: "WINDOWS_PATH", Value: `D:\x`},
	}, config.ScriptVariables())
	assert.Contains(t, config.Diagnostic.Variables, interpreter.Variable{Name: "DOC_PATH", Value: "build/html"})

	_, err = LoadConfig(ctx, fs, "mem://localhost/config/missing.yaml")
	assert.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	testCases := []struct {
		description string
		mutate      func(c *Config)
		expectErr   bool
	}{
		{description: "defaults", mutate: func(c *Config) {}},
		{description: "negative parallelism", mutate: func(c *Config) { c.Parallelism = -1 }, expectErr: true},
		{description: "negative stall timeout", mutate: func(c *Config) { c.StallTimeout = -time.Second }, expectErr: true},
		{description: "negative interpreter timeout", mutate: func(c *Config) { c.Interpreter.TimeoutMs = -1 }, expectErr: true},
	}
	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			config := DefaultConfig()
			tc.mutate(config)
			err := config.Validate()
			if tc.expectErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestConfig_Limit(t *testing.T) {
	config := DefaultConfig()
	config.Parallelism = 1
	assert.Equal(t, 1, config.Limit())
	config.Parallelism = 0
	assert.GreaterOrEqual(t, config.Limit(), 1)
}
