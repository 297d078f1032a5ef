// Package manifest loads the per-template manifest.json descriptor.
//
// Every field is optional. The Manifest keeps unset fields unset and exposes
// accessors that apply the defaults, so an absent manifest and an empty one
// behave the same way downstream.
package manifest

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/nebulabroadcast/html-template-builder/internal/errors"
)

// FileName is the manifest file inside a template source directory.
const FileName = "manifest.json"

// Defaults applied when the manifest leaves a field unset.
const (
	DefaultAuthorName    = "Nebula Broadcast"
	DefaultAuthorEmail   = "info@nebulabroadcast.com"
	DefaultWidth         = 1920
	DefaultHeight        = 1080
	DefaultFrameRate     = 50.0
	DefaultParameterType = "string"
)

// Manifest is the declarative description of a template.
type Manifest struct {
	AuthorNameValue  *string     `json:"author_name,omitempty"`
	AuthorEmailValue *string     `json:"author_email,omitempty"`
	WidthValue       *int        `json:"width,omitempty"`
	HeightValue      *int        `json:"height,omitempty"`
	FrameRateValue   *float64    `json:"frame_rate,omitempty"`
	Parameters       []Parameter `json:"parameters,omitempty"`
}

// Parameter is a user-adjustable template field.
type Parameter struct {
	ID   string `json:"id"`
	Type string `json:"type,omitempty"`
	Info string `json:"info,omitempty"`
}

// AuthorName returns the author name or its default.
func (m *Manifest) AuthorName() string {
	if m.AuthorNameValue == nil {
		return DefaultAuthorName
	}
	return *m.AuthorNameValue
}

// AuthorEmail returns the author email or its default.
func (m *Manifest) AuthorEmail() string {
	if m.AuthorEmailValue == nil {
		return DefaultAuthorEmail
	}
	return *m.AuthorEmailValue
}

// Width returns the canvas width or its default.
func (m *Manifest) Width() int {
	if m.WidthValue == nil {
		return DefaultWidth
	}
	return *m.WidthValue
}

// Height returns the canvas height or its default.
func (m *Manifest) Height() int {
	if m.HeightValue == nil {
		return DefaultHeight
	}
	return *m.HeightValue
}

// FrameRate returns the frame rate or its default.
func (m *Manifest) FrameRate() float64 {
	if m.FrameRateValue == nil {
		return DefaultFrameRate
	}
	return *m.FrameRateValue
}

// Empty returns a manifest with every field unset.
func Empty() *Manifest {
	return &Manifest{}
}

// Load reads the manifest at path. A missing file yields Empty(); a file that
// exists but cannot be parsed is a manifest parse error.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Empty(), nil
		}
		return nil, errors.NewFileSystemError("MANIFEST_READ", "cannot read manifest", err).WithPath(path)
	}

	m, perr := parse(data)
	if perr != nil {
		return nil, perr.WithPath(path)
	}
	return m, nil
}

// Parse decodes manifest JSON and applies parameter defaults.
func Parse(data []byte) (*Manifest, error) {
	m, err := parse(data)
	if err != nil {
		return nil, err
	}
	return m, nil
}

func parse(data []byte) (*Manifest, *errors.BuildError) {
	var m Manifest

	// Unmarshal rejects anything but whitespace after the top-level object.
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, errors.NewManifestParseError("MANIFEST_JSON", "invalid manifest", err)
	}

	for i := range m.Parameters {
		p := &m.Parameters[i]
		if p.ID == "" {
			return nil, errors.NewManifestParseError("MANIFEST_PARAM", fmt.Sprintf("parameter %d has no id", i), nil)
		}
		if p.Type == "" {
			p.Type = DefaultParameterType
		}
	}

	return &m, nil
}
