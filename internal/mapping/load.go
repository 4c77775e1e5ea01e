package mapping

import (
	_ "embed"
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueyaml "cuelang.org/go/encoding/yaml"
	"gopkg.in/yaml.v3"
)

//go:embed schema.cue
var schemaSource string

// Load reads a mapping configuration from a YAML file. The file is first
// validated against the embedded CUE schema, then decoded; defaults are
// filled for fields the file leaves out.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read mapping file: %w", err)
	}
	return Parse(path, data)
}

// Parse validates and decodes mapping YAML. filename is used in error
// positions only.
func Parse(filename string, data []byte) (*Config, error) {
	if err := checkSchema(filename, data); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("decode mapping file %s: %w", filename, err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("mapping file %s: %w", filename, err)
	}
	return cfg, nil
}

// checkSchema unifies the YAML document with the #Config definition.
// Definitions are closed in CUE, so misspelled keys are conflicts, not
// silently ignored extras.
func checkSchema(filename string, data []byte) error {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile mapping schema: %w", err)
	}
	config := schema.LookupPath(cue.ParsePath("#Config"))
	if !config.Exists() {
		return fmt.Errorf("mapping schema has no #Config definition")
	}

	file, err := cueyaml.Extract(filename, data)
	if err != nil {
		return fmt.Errorf("parse mapping file %s: %w", filename, err)
	}
	doc := ctx.BuildFile(file)
	if err := doc.Err(); err != nil {
		return fmt.Errorf("parse mapping file %s: %w", filename, err)
	}

	if err := config.Unify(doc).Validate(); err != nil {
		return fmt.Errorf("mapping file %s does not match schema: %w", filename, err)
	}
	return nil
}
