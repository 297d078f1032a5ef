package build

import (
	"encoding/xml"
	"strings"
	"testing"

	"github.com/nebulabroadcast/html-template-builder/internal/manifest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDescriptorMarshal(t *testing.T) {
	m, err := manifest.Parse([]byte(`{
		"author_name": "Studio",
		"author_email": "gfx@example.com",
		"width": 1280,
		"height": 720,
		"frame_rate": 29.97,
		"parameters": [
			{"id": "title", "info": "Main title"},
			{"id": "count", "type": "int"}
		]
	}`))
	require.NoError(t, err)

	out, err := NewDescriptor(m).Marshal()
	require.NoError(t, err)
	doc := string(out)

	assert.True(t, strings.HasPrefix(doc, xml.Header))
	assert.Contains(t, doc, `<template version="2.0.0" authorName="Studio" authorEmail="gfx@example.com" templateInfo="" originalWidth="1280" originalHeight="720" originalFrameRate="29.97">`)
	assert.Contains(t, doc, `<parameter id="title" type="string" info="Main title"></parameter>`)
	assert.Contains(t, doc, `<parameter id="count" type="int" info=""></parameter>`)

	var decoded Descriptor
	require.NoError(t, xml.Unmarshal(out, &decoded))
	require.Len(t, decoded.Parameters.Items, 2)
	assert.Equal(t, "title", decoded.Parameters.Items[0].ID)
	assert.Equal(t, "count", decoded.Parameters.Items[1].ID)
}

func TestDescriptorFrameRateFormatting(t *testing.T) {
	tests := []struct {
		rate float64
		want string
	}{
		{50, "50"},
		{25, "25"},
		{59.94, "59.94"},
		{23.976, "23.976"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			m := manifest.Empty()
			m.FrameRateValue = &tt.rate
			assert.Equal(t, tt.want, NewDescriptor(m).OriginalFrameRate)
		})
	}
}
