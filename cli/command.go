package cli

// Command is anything that mounts a kong command struct into the CLI.
type Command interface {
	CLIHandler() any
	CLIOptions() Config
}

// Config places a command in the tree. Path segments before the last one
// become parent commands.
type Config struct {
	Path        []string
	Description string
	Group       string
	Aliases     []string
	Hidden      bool
	// Groups describe the parent segments, matched by name.
	Groups []GroupConfig
}

type GroupConfig struct {
	Name        string
	Description string
}

func (opts Config) groupDescription(name string) string {
	for _, g := range opts.Groups {
		if g.Name == name {
			return g.Description
		}
	}
	return ""
}

// handler pairs a command struct with its placement.
type handler struct {
	cmd  any
	opts Config
}

func (h handler) CLIHandler() any    { return h.cmd }
func (h handler) CLIOptions() Config { return h.opts }

// Mount wraps a bare kong command struct so it can be registered.
func Mount(cmd any, opts Config) Command {
	return handler{cmd: cmd, opts: opts}
}
