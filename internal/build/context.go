package build

import (
	"encoding/json"
	"html/template"
	"strconv"
	"strings"

	"github.com/nebulabroadcast/html-template-builder/internal/manifest"
)

// RenderContext is the per-build set of values handed to the core layout.
// Each build owns its own RenderContext; it is never shared.
type RenderContext map[string]any

// SetStylesheet stores compiled template CSS for verbatim embedding.
func (rc RenderContext) SetStylesheet(css string) {
	rc[KeyTplCSS] = template.CSS(css)
}

// SetScript stores minified template JavaScript for verbatim embedding.
func (rc RenderContext) SetScript(js string) {
	rc[KeyTplJS] = template.JS(js)
}

// SetBody stores the raw template markup for verbatim embedding.
func (rc RenderContext) SetBody(html string) {
	rc[KeyBody] = template.HTML(html)
}

// SetManifest stores the manifest and the parameter map derived from it.
func (rc RenderContext) SetManifest(m *manifest.Manifest) {
	rc[KeyManifest] = m
	rc[KeyParamMap] = template.JS(NewParamMap(m.Parameters).Literal())
}

// Has reports whether key is present.
func (rc RenderContext) Has(key string) bool {
	_, ok := rc[key]
	return ok
}

// ParamEntry maps a short positional key to a declared parameter id.
type ParamEntry struct {
	Key string
	ID  string
}

// ParamMap maps f0, f1, ... to the manifest parameter ids in declaration
// order.
type ParamMap []ParamEntry

// NewParamMap builds the positional parameter map.
func NewParamMap(params []manifest.Parameter) ParamMap {
	pm := make(ParamMap, len(params))
	for i, p := range params {
		pm[i] = ParamEntry{Key: "f" + strconv.Itoa(i), ID: p.ID}
	}
	return pm
}

// Lookup returns the parameter id for a short key.
func (pm ParamMap) Lookup(key string) (string, bool) {
	for _, e := range pm {
		if e.Key == key {
			return e.ID, true
		}
	}
	return "", false
}

// Literal renders the map as a JavaScript object literal with keys in
// declaration order, e.g. {"f0":"title","f1":"subtitle"}.
func (pm ParamMap) Literal() string {
	var b strings.Builder
	b.WriteByte('{')
	for i, e := range pm {
		if i > 0 {
			b.WriteByte(',')
		}
		b.Write(jsString(e.Key))
		b.WriteByte(':')
		b.Write(jsString(e.ID))
	}
	b.WriteByte('}')
	return b.String()
}

// jsString quotes s as a JSON string. encoding/json escapes <, > and & so the
// literal is safe inside a script element.
func jsString(s string) []byte {
	out, _ := json.Marshal(s)
	return out
}
