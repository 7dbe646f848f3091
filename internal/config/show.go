package config

import (
	"fmt"
	"io"

	"github.com/goccy/go-yaml"
)

// Print writes the configuration as YAML. The password is never printed and a key
// given on the command line is masked.
func (c *Config) Print(w io.Writer) error {
	masked := *c

	if masked.Key.String != "" {
		masked.Key.String = "<masked>"
	}

	out, err := yaml.Marshal(masked)
	if err != nil {
		return fmt.Errorf("marshalling configuration: %w", err)
	}

	_, err = w.Write(out)

	return err
}
