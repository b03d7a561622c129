package assets

// Names of the built-in assets.
const (
	ThemeStyleName       = "classic"
	DocumentTemplateName = "document"
)

// defaultLoader is the package-level embedded loader.
var defaultLoader = NewEmbeddedLoader()

// LoadTheme returns the theme stylesheet.
func LoadTheme() (string, error) {
	return defaultLoader.LoadStyle(ThemeStyleName)
}

// LoadDocumentTemplate returns the document shell template source.
func LoadDocumentTemplate() (string, error) {
	return defaultLoader.LoadTemplate(DocumentTemplateName)
}
