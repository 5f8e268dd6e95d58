package printpdf

import (
	"github.com/RustWorks/printpdf/pdf"
)

// Layer holds drawing operations and markers. Layers are written as
// optional content groups when the conformance allows them.
type Layer struct {
	Name string

	operations []pdf.Operation
	markers    []Marker

	// resources used by operations
	fonts map[FontIndex]bool
	svgs  map[SvgIndex]bool
}

func newLayer(name string) *Layer {
	return &Layer{
		Name:  name,
		fonts: map[FontIndex]bool{},
		svgs:  map[SvgIndex]bool{},
	}
}

// Operations returns a copy of the content stream operations.
func (l Layer) Operations() []pdf.Operation {
	return append([]pdf.Operation(nil), l.operations...)
}

// Markers returns a copy of the markers on the layer.
func (l Layer) Markers() []Marker {
	return append([]Marker(nil), l.markers...)
}

func (l *Layer) clone() Layer {
	c := Layer{
		Name:       l.Name,
		operations: l.Operations(),
		markers:    l.Markers(),
		fonts:      make(map[FontIndex]bool, len(l.fonts)),
		svgs:       make(map[SvgIndex]bool, len(l.svgs)),
	}
	for font := range l.fonts {
		c.fonts[font] = true
	}
	for svg := range l.svgs {
		c.svgs[svg] = true
	}
	return c
}

func (l *Layer) add(ops ...pdf.Operation) {
	l.operations = append(l.operations, ops...)
}

func (l *Layer) addMarker(m Marker) int {
	l.markers = append(l.markers, m)
	return len(l.markers) - 1
}

// wrapGraphicsState saves and restores the graphics state around ops.
func wrapGraphicsState(ops []pdf.Operation) []pdf.Operation {
	if len(ops) == 0 {
		return nil
	}
	wrapped := make([]pdf.Operation, 0, len(ops)+2)
	wrapped = append(wrapped, pdf.Op("q"))
	wrapped = append(wrapped, ops...)
	return append(wrapped, pdf.Op("Q"))
}
