package printpdf

import (
	"github.com/RustWorks/printpdf/pdf"
)

// Point is a position in PDF user space, from the bottom left corner.
type Point struct {
	X, Y Pt
}

// NewPoint converts a position in millimeters.
func NewPoint(x, y Mm) Point {
	return Point{X: x.Pt(), Y: y.Pt()}
}

// LinePoint is a point of a Line. When Bezier is set the point that
// follows it is a control handle of a cubic bezier curve.
type LinePoint struct {
	Point
	Bezier bool
}

// Line is a path made of straight segments and cubic bezier curves.
type Line struct {
	Points []LinePoint

	// Closed connects the last point with the first.
	Closed bool

	Fill   bool
	Stroke bool

	// ClippingPath intersects the clipping path with the line instead of
	// painting it.
	ClippingPath bool
}

// Outline is the stroke color and line width of a Line.
type Outline struct {
	Color     Color
	Thickness Pt
}

// Fill is the fill color of a Line.
type Fill struct {
	Color Color
}

// operations for constructing and painting the path (§8.5.2, §8.5.3)
func (l Line) operations() []pdf.Operation {
	if len(l.Points) == 0 {
		return nil
	}

	points := l.Points
	ops := []pdf.Operation{pdf.Op("m", pt(points[0].X), pt(points[0].Y))}

	j := 0
	for j+1 < len(points) {
		// two handles and an end point are needed for a curve
		if points[j].Bezier && points[j+1].Bezier && j+3 < len(points) {
			c1, c2, end := points[j+1], points[j+2], points[j+3]
			ops = append(ops, pdf.Op("c",
				pt(c1.X), pt(c1.Y),
				pt(c2.X), pt(c2.Y),
				pt(end.X), pt(end.Y)))
			j += 3
			continue
		}
		next := points[j+1]
		ops = append(ops, pdf.Op("l", pt(next.X), pt(next.Y)))
		j++
	}

	return append(ops, l.paintOperations()...)
}

func (l Line) paintOperations() []pdf.Operation {
	switch {
	case l.ClippingPath:
		if l.Closed {
			return []pdf.Operation{pdf.Op("h"), pdf.Op("W"), pdf.Op("n")}
		}
		return []pdf.Operation{pdf.Op("W"), pdf.Op("n")}
	case l.Fill && l.Stroke:
		if l.Closed {
			return []pdf.Operation{pdf.Op("b")}
		}
		return []pdf.Operation{pdf.Op("B")}
	case l.Fill:
		return []pdf.Operation{pdf.Op("f")}
	case l.Stroke:
		if l.Closed {
			return []pdf.Operation{pdf.Op("s")}
		}
		return []pdf.Operation{pdf.Op("S")}
	case l.Closed:
		return []pdf.Operation{pdf.Op("h"), pdf.Op("n")}
	}
	return []pdf.Operation{pdf.Op("n")}
}

func pt(v Pt) pdf.Object {
	return pdf.Real(v)
}
