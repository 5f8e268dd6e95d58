package printpdf

// PageIndex addresses a page of a Document.
type PageIndex int

// LayerIndex addresses a layer on a page.
type LayerIndex struct {
	Page  PageIndex
	Layer int
}

// MarkerIndex addresses a marker on a layer.
type MarkerIndex struct {
	Page   PageIndex
	Layer  int
	Marker int
}

// LayerIndex returns the layer the marker is on.
func (m MarkerIndex) LayerIndex() LayerIndex {
	return LayerIndex{Page: m.Page, Layer: m.Layer}
}

// ContentIndex addresses arbitrary content added to a Document.
type ContentIndex int

// FontIndex addresses a font added to a Document.
type FontIndex int

// SvgIndex addresses an SVG graphic added to a Document.
type SvgIndex int
