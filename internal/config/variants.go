package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/talgya/darkhollow/internal/engine"
)

//go:embed variants.yaml
var builtinVariants []byte

type variantFile struct {
	Variants []engine.Variant `yaml:"variants"`
}

func parseVariants(raw []byte, into map[string]engine.Variant) error {
	var f variantFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return err
	}
	for _, v := range f.Variants {
		if err := v.Check(); err != nil {
			return err
		}
		into[v.Name] = v
	}
	return nil
}

// LoadVariants returns the built-in variants, overlaid with the ones in
// path when path is set.
func LoadVariants(path string) (map[string]engine.Variant, error) {
	out := make(map[string]engine.Variant)
	if err := parseVariants(builtinVariants, out); err != nil {
		return nil, fmt.Errorf("builtin variants: %w", err)
	}
	if path == "" {
		return out, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := parseVariants(raw, out); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if _, ok := out[engine.DefaultVariant]; !ok {
		return nil, fmt.Errorf("%s: default variant %q missing", path, engine.DefaultVariant)
	}
	return out, nil
}
