package minify

import (
	tdminify "github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/html"
)

// HTMLMinifier strips comments and insignificant whitespace while keeping
// attribute quotes, document tags and end tags intact. Inline style and
// script content is left untouched because it is already minified upstream.
type HTMLMinifier struct {
	m *tdminify.M
}

// NewHTMLMinifier creates the markup minifier.
func NewHTMLMinifier() *HTMLMinifier {
	m := tdminify.New()
	m.Add("text/html", &html.Minifier{
		KeepQuotes:       true,
		KeepDocumentTags: true,
		KeepEndTags:      true,
	})
	return &HTMLMinifier{m: m}
}

// Minify implements MarkupMinifier.
func (h *HTMLMinifier) Minify(doc string) (string, error) {
	return h.m.String("text/html", doc)
}
