package pipeline

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/text/encoding/unicode"
)

// Artifact defaults.
const (
	DefaultFilenamePrefix = "document"
	DocExtension          = ".doc"
	DocContentType        = "application/msword"
)

// officeNamespaces make word processors open the markup as a native
// document instead of a web page.
var officeNamespaces = []html.Attribute{
	{Key: "xmlns:o", Val: "urn:schemas-microsoft-com:office:office"},
	{Key: "xmlns:w", Val: "urn:schemas-microsoft-com:office:word"},
	{Key: "xmlns", Val: "http://www.w3.org/TR/REC-html40"},
}

var errEmptyDocument = errors.New("document has no markup")

// Artifact is an exported payload and its suggested file name.
type Artifact struct {
	Data        []byte
	Filename    string
	ContentType string
}

// Exporter turns rendered documents into word-processor artifacts.
type Exporter struct {
	prefix string
	now    func() time.Time
}

// NewExporter creates an Exporter. An empty prefix falls back to
// DefaultFilenamePrefix; a nil clock falls back to time.Now.
func NewExporter(prefix string, now func() time.Time) *Exporter {
	if prefix == "" {
		prefix = DefaultFilenamePrefix
	}
	if now == nil {
		now = time.Now
	}
	return &Exporter{prefix: prefix, now: now}
}

// Export builds the artifact for doc. Any failure, including a panic in a
// dependency, is reported as ErrExportFailed and no artifact is returned.
func (e *Exporter) Export(doc Document) (art Artifact, err error) {
	defer func() {
		if r := recover(); r != nil {
			art, err = Artifact{}, fmt.Errorf("%w: %v", ErrExportFailed, r)
		}
	}()

	if strings.TrimSpace(doc.HTML) == "" {
		return Artifact{}, fmt.Errorf("%w: %v", ErrExportFailed, errEmptyDocument)
	}

	markup, err := addOfficeNamespaces(doc.HTML)
	if err != nil {
		return Artifact{}, fmt.Errorf("%w: %v", ErrExportFailed, err)
	}

	data, err := unicode.UTF8BOM.NewEncoder().Bytes(markup)
	if err != nil {
		return Artifact{}, fmt.Errorf("%w: encoding: %v", ErrExportFailed, err)
	}

	return Artifact{
		Data:        data,
		Filename:    e.Filename(),
		ContentType: DocContentType,
	}, nil
}

// Filename returns <prefix>_<unix milliseconds>.doc for the current time.
func (e *Exporter) Filename() string {
	return fmt.Sprintf("%s_%d%s", e.prefix, e.now().UnixMilli(), DocExtension)
}

// addOfficeNamespaces declares the Office namespaces on the first <html>
// start tag. Every other token is copied byte for byte, so the payload keeps
// the rendered markup exactly. A document without a root element is wrapped
// in one after its doctype and leading comments.
func addOfficeNamespaces(markup string) ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(len(markup) + 256)

	z := html.NewTokenizer(strings.NewReader(markup))
	rooted, synthesized := false, false
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			if err := z.Err(); !errors.Is(err, io.EOF) {
				return nil, fmt.Errorf("reading document: %w", err)
			}
			break
		}

		if !rooted && !isPreamble(tt, z.Raw()) {
			rooted = true
			if isRootTag(tt, z) {
				writeRootTag(&buf, z)
				continue
			}
			writeRootTag(&buf, nil)
			synthesized = true
		}
		buf.Write(z.Raw())
	}

	if !rooted {
		writeRootTag(&buf, nil)
		synthesized = true
	}
	if synthesized {
		buf.WriteString("</html>")
	}
	return buf.Bytes(), nil
}

// isPreamble reports tokens allowed before the root element.
func isPreamble(tt html.TokenType, raw []byte) bool {
	switch tt {
	case html.DoctypeToken, html.CommentToken:
		return true
	case html.TextToken:
		return len(bytes.TrimSpace(raw)) == 0
	}
	return false
}

func isRootTag(tt html.TokenType, z *html.Tokenizer) bool {
	if tt != html.StartTagToken && tt != html.SelfClosingTagToken {
		return false
	}
	name, _ := z.TagName()
	return atom.Lookup(name) == atom.Html
}

// writeRootTag writes an <html> start tag carrying the Office namespaces
// followed by the non-namespace attributes of the tag under z, if any.
// It consumes the tokenizer's attributes.
func writeRootTag(buf *bytes.Buffer, z *html.Tokenizer) {
	buf.WriteString("<html")
	for _, a := range officeNamespaces {
		writeAttr(buf, a.Key, a.Val)
	}
	if z != nil {
		for more := true; more; {
			var key, val []byte
			key, val, more = z.TagAttr()
			if len(key) == 0 || isNamespaceKey(string(key)) {
				continue
			}
			writeAttr(buf, string(key), string(val))
		}
	}
	buf.WriteByte('>')
}

func writeAttr(buf *bytes.Buffer, key, val string) {
	buf.WriteString(" " + key + `="` + html.EscapeString(val) + `"`)
}

func isNamespaceKey(key string) bool {
	return key == "xmlns" || strings.HasPrefix(key, "xmlns:")
}
