package yaml

import (
	"bytes"
	"fmt"

	"github.com/ochairo/tinsrecipe/internal/domain/entities"
	"gopkg.in/yaml.v3"
)

// EncodeResolution renders a resolution as a YAML lock document
func EncodeResolution(res entities.Resolution) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(res); err != nil {
		return nil, fmt.Errorf("failed to encode YAML lock: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode YAML lock: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodeResolution reads a YAML lock document
func DecodeResolution(data []byte) (entities.Resolution, error) {
	var res entities.Resolution
	if err := yaml.Unmarshal(data, &res); err != nil {
		return entities.Resolution{}, fmt.Errorf("failed to decode YAML lock: %w", err)
	}
	return res, nil
}
