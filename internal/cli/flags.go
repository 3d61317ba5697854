package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/example/workhub/internal/apperr"
)

// addMapFlag registers a repeatable key=value flag.
func addMapFlag(cmd *cobra.Command, name, usage string) {
	cmd.Flags().StringToString(name, nil, usage+" (key=value, repeatable)")
}

// mapFlag reads a key=value flag, decoding each value as a YAML scalar so
// "true" and "3" arrive as a bool and an int. Returns nil when the flag was not given.
func mapFlag(cmd *cobra.Command, name string) (map[string]any, error) {
	if !cmd.Flags().Changed(name) {
		return nil, nil
	}
	raw, err := cmd.Flags().GetStringToString(name)
	if err != nil {
		return nil, err
	}
	out := make(map[string]any, len(raw))
	for k, v := range raw {
		var decoded any
		if err := yaml.Unmarshal([]byte(v), &decoded); err != nil || decoded == nil {
			decoded = v
		}
		out[k] = decoded
	}
	return out, nil
}

// stringFlag returns a pointer to the flag value only when it was set.
func stringFlag(cmd *cobra.Command, name string) *string {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, _ := cmd.Flags().GetString(name)
	return &v
}

// intFlag returns a pointer to the flag value only when it was set.
func intFlag(cmd *cobra.Command, name string) *int {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, _ := cmd.Flags().GetInt(name)
	return &v
}

// readYAMLMap loads a YAML document whose top level is a mapping.
func readYAMLMap(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	var content map[string]any
	if err := yaml.Unmarshal(data, &content); err != nil {
		return nil, apperr.Validation("%s is not a YAML mapping: %v", path, err)
	}
	if content == nil {
		content = map[string]any{}
	}
	return content, nil
}
