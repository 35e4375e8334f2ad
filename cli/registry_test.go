package cli

import (
	"testing"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	stagehand "github.com/goliatone/go-stagehand"
)

type pingCmd struct {
	Verbose bool
	ran     *int
}

func (p *pingCmd) Run() error {
	*p.ran++
	return nil
}

func parserFor(t *testing.T, reg *Registry) *kong.Kong {
	t.Helper()
	opts, err := reg.Options()
	require.NoError(t, err)

	parser, err := kong.New(&struct{}{}, append(opts, kong.Name("app"), kong.Exit(func(int) {}))...)
	require.NoError(t, err)
	return parser
}

func TestRegistryBuildsNestedCommands(t *testing.T) {
	var runs int
	reg := NewRegistry()
	require.NoError(t, reg.Register(
		Mount(&pingCmd{ran: &runs}, Config{Path: []string{"ping"}, Aliases: []string{"p"}}),
		Mount(&pingCmd{ran: &runs}, Config{
			Path:   []string{"config", "show"},
			Groups: []GroupConfig{{Name: "config", Description: "Configuration helpers."}},
		}),
	))
	require.NoError(t, reg.Initialize())

	parser := parserFor(t, reg)

	kctx, err := parser.Parse([]string{"config", "show", "--verbose"})
	require.NoError(t, err)
	assert.Equal(t, "config show", kctx.Command())
	require.NoError(t, kctx.Run())

	kctx, err = parser.Parse([]string{"p"})
	require.NoError(t, err)
	assert.Equal(t, "ping", kctx.Command())
	require.NoError(t, kctx.Run())

	assert.Equal(t, 2, runs)
}

func TestRegistryRejectsConflictingPaths(t *testing.T) {
	tests := []struct {
		name string
		cmds []Command
		code string
	}{
		{
			name: "same path twice",
			cmds: []Command{
				Mount(&pingCmd{}, Config{Path: []string{"run"}}),
				Mount(&pingCmd{}, Config{Path: []string{"run"}}),
			},
			code: ErrCodePathConflict,
		},
		{
			name: "command used as a group",
			cmds: []Command{
				Mount(&pingCmd{}, Config{Path: []string{"run"}}),
				Mount(&pingCmd{}, Config{Path: []string{"run", "fast"}}),
			},
			code: ErrCodePathConflict,
		},
		{
			name: "empty path",
			cmds: []Command{Mount(&pingCmd{}, Config{Path: []string{" "}})},
			code: ErrCodePathEmpty,
		},
		{
			name: "handler is not a struct pointer",
			cmds: []Command{Mount(pingCmd{}, Config{Path: []string{"run"}})},
			code: ErrCodeBadHandler,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := NewRegistry()
			require.NoError(t, reg.Register(tt.cmds...))
			err := reg.Initialize()
			require.Error(t, err)
			assert.Equal(t, tt.code, stagehand.ErrorCode(err))
		})
	}
}

func TestRegistryLifecycle(t *testing.T) {
	reg := NewRegistry()

	_, err := reg.Options()
	assert.Equal(t, ErrCodeNotInitialized, stagehand.ErrorCode(err))

	assert.Equal(t, ErrCodeNilCommand, stagehand.ErrorCode(reg.Register(nil)))

	require.NoError(t, reg.Initialize())
	assert.Equal(t, ErrCodeAlreadyInitialized, stagehand.ErrorCode(reg.Initialize()))
	assert.Equal(t, ErrCodeAlreadyInitialized, stagehand.ErrorCode(reg.Register(Mount(&pingCmd{}, Config{Path: []string{"late"}}))))

	opts, err := reg.Options()
	require.NoError(t, err)
	assert.Empty(t, opts)
}

func TestExportFieldName(t *testing.T) {
	tests := map[string]string{
		"config":   "Config",
		"dry-run":  "DryRun",
		"log_tail": "LogTail",
		"2fa":      "Cmd2fa",
		"--":       "Cmd",
	}
	for in, want := range tests {
		assert.Equal(t, want, exportFieldName(in), in)
	}
}
