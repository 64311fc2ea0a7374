package config

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// LoadTOML loads configuration from a TOML file.
// Keys absent from the file leave the corresponding target fields untouched.
func LoadTOML(path string, target interface{}) error {
	// #nosec G304 -- path comes from the operator's command line.
	md, err := toml.DecodeFile(path, target)
	if err != nil {
		return fmt.Errorf("failed to decode TOML file %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("unknown TOML keys in %s: %v", path, undecoded)
	}
	return nil
}
