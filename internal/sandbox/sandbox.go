// Package sandbox bundles the offline dataset used when the upstream API is disabled
// or unreachable.
package sandbox

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"guest_reviews/internal/domain"
)

//go:embed mock_reviews.json
var reviewsJSON []byte

//go:embed properties.yaml
var propertiesYAML []byte

// Reviews returns the raw sandbox reviews in Hostaway shape. A non-empty path
// replaces the bundled file; it may hold the {"result": [...]} envelope, a
// {"reviews": [...]} object or a bare array.
func Reviews(path string) ([]map[string]any, error) {
	data := reviewsJSON
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("sandbox reviews: %w", err)
		}
		data = b
	}
	return decodeReviews(data)
}

func decodeReviews(data []byte) ([]map[string]any, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var out []map[string]any
		if err := json.Unmarshal(trimmed, &out); err != nil {
			return nil, fmt.Errorf("sandbox reviews: %w", err)
		}
		return out, nil
	}
	var env struct {
		Result  *[]map[string]any `json:"result"`
		Reviews *[]map[string]any `json:"reviews"`
	}
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return nil, fmt.Errorf("sandbox reviews: %w", err)
	}
	list := env.Result
	if list == nil {
		list = env.Reviews
	}
	if list == nil {
		return nil, errors.New(`sandbox reviews: expected an array or an object with "result" or "reviews"`)
	}
	if *list == nil {
		return []map[string]any{}, nil
	}
	return *list, nil
}

type catalogue struct {
	Properties []domain.Property `yaml:"properties"`
}

// Properties returns the bundled property catalogue.
func Properties() ([]domain.Property, error) {
	var c catalogue
	if err := yaml.Unmarshal(propertiesYAML, &c); err != nil {
		return nil, fmt.Errorf("sandbox properties: %w", err)
	}
	return c.Properties, nil
}
