package printpdf

// Mm is a length in millimeters.
type Mm float64

// Pt is a length in PostScript points (1/72 inch), the default unit of
// PDF user space.
type Pt float64

const ptPerMm = 72.0 / 25.4

// Pt converts millimeters to points.
func (mm Mm) Pt() Pt {
	return Pt(float64(mm) * ptPerMm)
}

// Mm converts points to millimeters.
func (pt Pt) Mm() Mm {
	return Mm(float64(pt) / ptPerMm)
}
