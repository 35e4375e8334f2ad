package cli

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-stagehand/config"
	"github.com/goliatone/go-stagehand/sim"
	"github.com/goliatone/go-stagehand/tutorial"
)

// Commands returns every command of the binary.
func Commands() []Command {
	return []Command{
		Mount(&RunCmd{}, Config{
			Path:        []string{"run"},
			Description: "Run the tutorial workflows against a simulated world.",
		}),
		Mount(&StagesCmd{}, Config{
			Path:        []string{"stages"},
			Description: "List the stage order and every stage's substates.",
			Aliases:     []string{"ls"},
		}),
		Mount(&SchemaCmd{}, Config{
			Path:        []string{"schema"},
			Description: "Print the configuration JSON schema.",
		}),
		Mount(&CheckCmd{}, Config{
			Path:        []string{"check"},
			Description: "Validate a configuration or scenario file.",
		}),
		Mount(&DefaultsCmd{}, Config{
			Path:        []string{"config", "defaults"},
			Description: "Print the built-in configuration as YAML.",
			Groups:      []GroupConfig{{Name: "config", Description: "Configuration helpers."}},
		}),
	}
}

type StagesCmd struct{}

func (c *StagesCmd) Run(app *App) error {
	_, err := fmt.Fprintln(app.Out, RenderOutlines(tutorial.Outlines()))
	return err
}

type SchemaCmd struct{}

func (c *SchemaCmd) Run(app *App) error {
	data, err := config.Schema()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(app.Out, string(data))
	return err
}

type CheckCmd struct {
	File     string `arg:"" help:"File to validate." type:"existingfile"`
	Scenario bool   `help:"Validate FILE as a scenario instead of a configuration."`
}

func (c *CheckCmd) Run(app *App) error {
	if c.Scenario {
		sc, err := sim.Load(c.File)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(app.Out, "%s: ok (%d reactions)\n", c.File, len(sc.Reactions))
		return err
	}

	if _, err := config.Load(c.File); err != nil {
		return err
	}
	_, err := fmt.Fprintf(app.Out, "%s: ok\n", c.File)
	return err
}

type DefaultsCmd struct{}

func (c *DefaultsCmd) Run(app *App) error {
	enc := yaml.NewEncoder(app.Out)
	enc.SetIndent(2)
	if err := enc.Encode(config.Default()); err != nil {
		return err
	}
	return enc.Close()
}
