// Package yamlutil wraps YAML parsing to isolate the external dependency.
// Configuration and the conversion history both go through it.
package yamlutil

import (
	"errors"
	"fmt"

	"github.com/goccy/go-yaml"
)

// Input size limits. Config files are small; history files carry rendered
// documents and may grow much larger.
const (
	MaxConfigSize  = 1 << 20
	MaxHistorySize = 64 << 20
)

var (
	ErrNilData        = errors.New("yamlutil: nil or empty data")
	ErrNilDestination = errors.New("yamlutil: nil destination pointer")
	ErrInputTooLarge  = errors.New("yamlutil: input exceeds maximum size")
)

func validateInput(data []byte, v any, maxSize int) error {
	if len(data) == 0 {
		return ErrNilData
	}
	if len(data) > maxSize {
		return fmt.Errorf("%w: %d bytes (max %d)", ErrInputTooLarge, len(data), maxSize)
	}
	if v == nil {
		return ErrNilDestination
	}
	return nil
}

// Unmarshal decodes data of at most maxSize bytes into v.
func Unmarshal(data []byte, v any, maxSize int) error {
	if err := validateInput(data, v, maxSize); err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, v); err != nil {
		return fmt.Errorf("yamlutil: %w", err)
	}
	return nil
}

// UnmarshalStrict is Unmarshal that also rejects unknown fields.
func UnmarshalStrict(data []byte, v any, maxSize int) error {
	if err := validateInput(data, v, maxSize); err != nil {
		return err
	}
	if err := yaml.UnmarshalWithOptions(data, v, yaml.Strict()); err != nil {
		return fmt.Errorf("yamlutil: %w", err)
	}
	return nil
}

// Marshal encodes v with two-space indentation. Multiline strings, such as
// stored input text and markup, are written as literal blocks so the file
// stays readable.
func Marshal(v any) ([]byte, error) {
	result, err := yaml.MarshalWithOptions(v, yaml.Indent(2), yaml.UseLiteralStyleIfMultiline(true))
	if err != nil {
		return nil, fmt.Errorf("yamlutil: %w", err)
	}
	return result, nil
}
