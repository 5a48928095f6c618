package yaml

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ochairo/tinsrecipe/internal/domain/entities"
	"github.com/ochairo/tinsrecipe/internal/domain/services"
)

type yamlProfile struct {
	OS      string                 `yaml:"os"`
	Options map[string]interface{} `yaml:"options"`
}

// ParseProfile parses a YAML profile. Values must be booleans or strings;
// their spelling is checked later by the option parser.
func ParseProfile(data []byte) (*entities.Profile, error) {
	var yp yamlProfile
	if err := yaml.Unmarshal(data, &yp); err != nil {
		return nil, fmt.Errorf("failed to parse YAML profile: %w", err)
	}

	options, err := services.OptionValues(yp.Options)
	if err != nil {
		return nil, fmt.Errorf("invalid YAML profile: %w", err)
	}

	return &entities.Profile{OS: yp.OS, Options: options}, nil
}

// ParseProfileFile reads and parses a YAML profile file
func ParseProfileFile(filePath string) (*entities.Profile, error) {
	//nolint:gosec // G304: profile path is provided by the user
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile %s: %w", filePath, err)
	}
	return ParseProfile(data)
}
