package printpdf

import (
	"github.com/RustWorks/printpdf/pdf"
	"github.com/juju/errgo"
	"golang.org/x/text/encoding/charmap"
)

// fontResource is a font that can encode text for its own show text
// operations and write itself into a file.
type fontResource interface {
	// encode converts text into the string operand of Tj.
	encode(text string) ([]byte, error)
	// write adds the font dictionary and everything it needs to f.
	write(f *pdf.File) (pdf.ObjectReference, error)
	// embedded reports whether the font program is in the file.
	embedded() bool
	name() string
}

// BuiltinFont is one of the 14 standard Type 1 fonts every PDF reader
// provides (§9.6.2.2). They are not embedded.
type BuiltinFont int

const (
	TimesRoman BuiltinFont = iota
	TimesBold
	TimesItalic
	TimesBoldItalic
	Helvetica
	HelveticaBold
	HelveticaOblique
	HelveticaBoldOblique
	Courier
	CourierOblique
	CourierBold
	CourierBoldOblique
	Symbol
	ZapfDingbats
)

var builtinFontNames = [...]string{
	TimesRoman:           "Times-Roman",
	TimesBold:            "Times-Bold",
	TimesItalic:          "Times-Italic",
	TimesBoldItalic:      "Times-BoldItalic",
	Helvetica:            "Helvetica",
	HelveticaBold:        "Helvetica-Bold",
	HelveticaOblique:     "Helvetica-Oblique",
	HelveticaBoldOblique: "Helvetica-BoldOblique",
	Courier:              "Courier",
	CourierOblique:       "Courier-Oblique",
	CourierBold:          "Courier-Bold",
	CourierBoldOblique:   "Courier-BoldOblique",
	Symbol:               "Symbol",
	ZapfDingbats:         "ZapfDingbats",
}

// String returns the PostScript name of the font.
func (b BuiltinFont) String() string {
	if b < 0 || int(b) >= len(builtinFontNames) {
		return "BuiltinFont(?)"
	}
	return builtinFontNames[b]
}

// ParseBuiltinFont looks up a standard font by its PostScript name.
func ParseBuiltinFont(name string) (BuiltinFont, bool) {
	for i, builtin := range builtinFontNames {
		if builtin == name {
			return BuiltinFont(i), true
		}
	}
	return 0, false
}

func (b BuiltinFont) symbolic() bool {
	return b == Symbol || b == ZapfDingbats
}

type builtinFont struct {
	font BuiltinFont
}

func (b builtinFont) encode(text string) ([]byte, error) {
	if b.font.symbolic() {
		// the built-in encoding of the font applies
		for _, r := range text {
			if r > 0xff {
				return nil, errgo.WithCausef(nil, ErrFont, "%s cannot show %q", b.font, r)
			}
		}
		return []byte(latin1(text)), nil
	}

	encoded, err := charmap.Windows1252.NewEncoder().String(text)
	if err != nil {
		return nil, errgo.WithCausef(nil, ErrFont, "%q cannot be shown with WinAnsiEncoding", text)
	}
	return []byte(encoded), nil
}

func latin1(text string) string {
	b := make([]byte, 0, len(text))
	for _, r := range text {
		b = append(b, byte(r))
	}
	return string(b)
}

func (b builtinFont) write(f *pdf.File) (pdf.ObjectReference, error) {
	dict := pdf.Dictionary{
		pdf.Name("Type"):     pdf.Name("Font"),
		pdf.Name("Subtype"):  pdf.Name("Type1"),
		pdf.Name("BaseFont"): pdf.Name(b.font.String()),
	}
	if !b.font.symbolic() {
		dict[pdf.Name("Encoding")] = pdf.Name("WinAnsiEncoding")
	}
	return f.Add(dict)
}

func (builtinFont) embedded() bool { return false }

func (b builtinFont) name() string { return b.font.String() }
