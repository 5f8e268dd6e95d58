package printpdf

import (
	"github.com/RustWorks/printpdf/pdf"
)

// A Color sets the fill or stroke color of following drawing
// operations. Implemented by Rgb, Cmyk and Greyscale.
type Color interface {
	// operation returns the color operator for filling or stroking.
	operation(stroke bool) pdf.Operation
	space() colorSpace
}

type colorSpace int

const (
	spaceRgb colorSpace = iota
	spaceCmyk
	spaceGrey
)

// Rgb is a DeviceRGB color, components range from 0 to 1.
type Rgb struct {
	R, G, B float64
}

// Cmyk is a DeviceCMYK color, components range from 0 to 1.
type Cmyk struct {
	C, M, Y, K float64
}

// Greyscale is a DeviceGray color, 0 is black and 1 is white.
type Greyscale struct {
	Gray float64
}

func (c Rgb) operation(stroke bool) pdf.Operation {
	operator := "rg"
	if stroke {
		operator = "RG"
	}
	return pdf.Op(operator, pdf.Real(c.R), pdf.Real(c.G), pdf.Real(c.B))
}

func (Rgb) space() colorSpace { return spaceRgb }

// Cmyk converts to CMYK without a color profile.
func (c Rgb) Cmyk() Cmyk {
	k := 1 - max3(c.R, c.G, c.B)
	if k >= 1 {
		return Cmyk{K: 1}
	}
	return Cmyk{
		C: (1 - c.R - k) / (1 - k),
		M: (1 - c.G - k) / (1 - k),
		Y: (1 - c.B - k) / (1 - k),
		K: k,
	}
}

func (c Cmyk) operation(stroke bool) pdf.Operation {
	operator := "k"
	if stroke {
		operator = "K"
	}
	return pdf.Op(operator, pdf.Real(c.C), pdf.Real(c.M), pdf.Real(c.Y), pdf.Real(c.K))
}

func (Cmyk) space() colorSpace { return spaceCmyk }

func (c Greyscale) operation(stroke bool) pdf.Operation {
	operator := "g"
	if stroke {
		operator = "G"
	}
	return pdf.Op(operator, pdf.Real(c.Gray))
}

func (Greyscale) space() colorSpace { return spaceGrey }

func max3(a, b, c float64) float64 {
	m := a
	if b > m {
		m = b
	}
	if c > m {
		m = c
	}
	return m
}

// rgbOperands reads the operands of an rg or RG operation.
func rgbOperands(operands []pdf.Object) (Rgb, bool) {
	if len(operands) != 3 {
		return Rgb{}, false
	}
	var components [3]float64
	for i, operand := range operands {
		value, ok := pdf.Number(operand)
		if !ok {
			return Rgb{}, false
		}
		components[i] = value
	}
	return Rgb{R: components[0], G: components[1], B: components[2]}, true
}
