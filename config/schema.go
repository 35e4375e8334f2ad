package config

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/invopop/jsonschema"
	sjsonschema "github.com/santhosh-tekuri/jsonschema/v6"
)

const schemaID = "https://github.com/goliatone/go-stagehand/schemas/config.json"

// Schema returns the JSON schema of Config.
func Schema() ([]byte, error) {
	r := new(jsonschema.Reflector)
	r.DoNotReference = true

	s := r.Reflect(&Config{})
	s.ID = schemaID
	s.Title = "stagehand configuration"
	s.Description = "Runtime settings for a stagehand run"

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	return data, nil
}

var compiled struct {
	once   sync.Once
	schema *sjsonschema.Schema
	err    error
}

func compiledSchema() (*sjsonschema.Schema, error) {
	compiled.once.Do(func() {
		raw, err := Schema()
		if err != nil {
			compiled.err = err
			return
		}
		var doc any
		if err := json.Unmarshal(raw, &doc); err != nil {
			compiled.err = fmt.Errorf("unmarshal schema: %w", err)
			return
		}
		c := sjsonschema.NewCompiler()
		if err := c.AddResource(schemaID, doc); err != nil {
			compiled.err = fmt.Errorf("add schema resource: %w", err)
			return
		}
		compiled.schema, compiled.err = c.Compile(schemaID)
	})
	return compiled.schema, compiled.err
}

// validateSchema checks the JSON form of c against Schema.
func validateSchema(c Config) error {
	sch, err := compiledSchema()
	if err != nil {
		return invalidConfig(err.Error(), []string{err.Error()})
	}
	data, err := json.Marshal(c)
	if err != nil {
		return invalidConfig(err.Error(), []string{err.Error()})
	}
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return invalidConfig(err.Error(), []string{err.Error()})
	}
	if err := sch.Validate(doc); err != nil {
		return invalidConfig("schema: "+err.Error(), []string{err.Error()})
	}
	return nil
}
