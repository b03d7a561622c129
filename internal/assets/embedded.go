package assets

import (
	"embed"
	"fmt"
	"strings"
)

//go:embed styles/*.css templates/*.html
var files embed.FS

// EmbeddedLoader reads assets compiled into the binary.
type EmbeddedLoader struct{}

// NewEmbeddedLoader creates an EmbeddedLoader.
func NewEmbeddedLoader() *EmbeddedLoader {
	return &EmbeddedLoader{}
}

// LoadStyle loads a CSS style by name, without the .css extension.
func (e *EmbeddedLoader) LoadStyle(name string) (string, error) {
	return read("styles/", name, ".css", ErrStyleNotFound)
}

// LoadTemplate loads an HTML template by name, without the .html extension.
func (e *EmbeddedLoader) LoadTemplate(name string) (string, error) {
	return read("templates/", name, ".html", ErrTemplateNotFound)
}

func read(dir, name, ext string, notFound error) (string, error) {
	if err := validateName(name); err != nil {
		return "", err
	}
	content, err := files.ReadFile(dir + name + ext)
	if err != nil {
		return "", fmt.Errorf("%w: %q", notFound, name)
	}
	return string(content), nil
}

// validateName accepts bare names only. Dots are refused as well as
// separators, so a caller cannot pick another extension.
func validateName(name string) error {
	if name == "" || strings.ContainsAny(name, "/\\.") {
		return fmt.Errorf("%w: %q", ErrInvalidAssetName, name)
	}
	return nil
}
