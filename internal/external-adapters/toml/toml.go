// Package toml provides TOML profile parsing and lock encoding.
package toml

import (
	"bytes"
	"fmt"
	"os"

	gotoml "github.com/pelletier/go-toml/v2"

	"github.com/ochairo/tinsrecipe/internal/domain/entities"
	"github.com/ochairo/tinsrecipe/internal/domain/services"
)

type tomlProfile struct {
	OS      string                 `toml:"os"`
	Options map[string]interface{} `toml:"options"`
}

// ParseProfile parses a TOML profile
func ParseProfile(data []byte) (*entities.Profile, error) {
	var tp tomlProfile
	if err := gotoml.Unmarshal(data, &tp); err != nil {
		return nil, fmt.Errorf("failed to parse TOML profile: %w", err)
	}

	options, err := services.OptionValues(tp.Options)
	if err != nil {
		return nil, fmt.Errorf("invalid TOML profile: %w", err)
	}

	return &entities.Profile{OS: tp.OS, Options: options}, nil
}

// ParseProfileFile reads and parses a TOML profile file
func ParseProfileFile(filePath string) (*entities.Profile, error) {
	//nolint:gosec // G304: profile path is provided by the user
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile %s: %w", filePath, err)
	}
	return ParseProfile(data)
}

// EncodeResolution renders a resolution as a TOML lock document
func EncodeResolution(res entities.Resolution) ([]byte, error) {
	var buf bytes.Buffer
	enc := gotoml.NewEncoder(&buf)
	enc.SetIndentTables(true)
	if err := enc.Encode(res); err != nil {
		return nil, fmt.Errorf("failed to encode TOML lock: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodeResolution reads a TOML lock document
func DecodeResolution(data []byte) (entities.Resolution, error) {
	var res entities.Resolution
	if err := gotoml.Unmarshal(data, &res); err != nil {
		return entities.Resolution{}, fmt.Errorf("failed to decode TOML lock: %w", err)
	}
	return res, nil
}
