package build

import (
	"encoding/xml"
	"fmt"
	"strconv"

	"github.com/nebulabroadcast/html-template-builder/internal/manifest"
)

// DescriptorVersion is written to the version attribute of every descriptor.
const DescriptorVersion = "2.0.0"

// Descriptor is the XML sidecar describing a template to the playout runtime.
type Descriptor struct {
	XMLName           xml.Name            `xml:"template"`
	Version           string              `xml:"version,attr"`
	AuthorName        string              `xml:"authorName,attr"`
	AuthorEmail       string              `xml:"authorEmail,attr"`
	TemplateInfo      string              `xml:"templateInfo,attr"`
	OriginalWidth     string              `xml:"originalWidth,attr"`
	OriginalHeight    string              `xml:"originalHeight,attr"`
	OriginalFrameRate string              `xml:"originalFrameRate,attr"`
	Components        struct{}            `xml:"components"`
	Keyframes         struct{}            `xml:"keyframes"`
	Instances         struct{}            `xml:"instances"`
	Parameters        DescriptorParamList `xml:"parameters"`
}

// DescriptorParamList wraps the parameter elements so an empty list still
// yields a <parameters> element.
type DescriptorParamList struct {
	Items []DescriptorParam `xml:"parameter"`
}

// DescriptorParam is one <parameter> element.
type DescriptorParam struct {
	ID   string `xml:"id,attr"`
	Type string `xml:"type,attr"`
	Info string `xml:"info,attr"`
}

// NewDescriptor builds the descriptor for m.
func NewDescriptor(m *manifest.Manifest) *Descriptor {
	d := &Descriptor{
		Version:           DescriptorVersion,
		AuthorName:        m.AuthorName(),
		AuthorEmail:       m.AuthorEmail(),
		OriginalWidth:     strconv.Itoa(m.Width()),
		OriginalHeight:    strconv.Itoa(m.Height()),
		OriginalFrameRate: strconv.FormatFloat(m.FrameRate(), 'f', -1, 64),
	}

	d.Parameters.Items = make([]DescriptorParam, 0, len(m.Parameters))
	for _, p := range m.Parameters {
		typ := p.Type
		if typ == "" {
			typ = manifest.DefaultParameterType
		}
		d.Parameters.Items = append(d.Parameters.Items, DescriptorParam{
			ID:   p.ID,
			Type: typ,
			Info: p.Info,
		})
	}
	return d
}

// Marshal renders the descriptor as an indented XML document with header.
func (d *Descriptor) Marshal() ([]byte, error) {
	body, err := xml.MarshalIndent(d, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding descriptor: %w", err)
	}

	out := make([]byte, 0, len(xml.Header)+len(body)+1)
	out = append(out, xml.Header...)
	out = append(out, body...)
	out = append(out, '\n')
	return out, nil
}
