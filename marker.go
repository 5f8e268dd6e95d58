package printpdf

// Marker is a position on a layer, used to place text and graphics.
type Marker struct {
	X, Y Pt
}

// NewMarker creates a marker from millimeters, measured from the bottom
// left corner of the page.
func NewMarker(x, y Mm) Marker {
	return Marker{X: x.Pt(), Y: y.Pt()}
}
