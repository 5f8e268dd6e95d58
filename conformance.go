package printpdf

import (
	"fmt"
	"strings"

	"github.com/RustWorks/printpdf/pdf"
)

// Conformance describes a PDF standard a document is written for and
// the restrictions it brings. The predefined values cover the PDF/A and
// PDF/X standards; other values describe custom requirements.
type Conformance struct {
	// Identifier names the standard, e.g. "PDF/X-3:2003".
	// Empty when no standard applies.
	Identifier string

	// Version is the version written in the file header.
	Version string

	RequiresXMP bool

	// RequiresICC demands an output intent with an embedded
	// destination profile.
	RequiresICC bool

	RequiresEmbeddedFonts bool
	AllowsLayers          bool
	AllowsRGB             bool

	// OutputIntent is the subtype of the output intent (GTS_PDFX,
	// GTS_PDFA1), none is written when empty.
	OutputIntent pdf.Name

	// PDF/A identification written to the XMP metadata
	pdfaPart        int
	pdfaConformance string

	// PDF/X identification written to the info dictionary
	pdfxVersion     string
	pdfxConformance string
}

var (
	PdfA1b2005 = Conformance{
		Identifier:            "PDF/A-1b:2005",
		Version:               "1.4",
		RequiresXMP:           true,
		RequiresICC:           true,
		RequiresEmbeddedFonts: true,
		AllowsRGB:             true,
		OutputIntent:          "GTS_PDFA1",
		pdfaPart:              1,
		pdfaConformance:       "B",
	}
	PdfA1a2005 = Conformance{
		Identifier:            "PDF/A-1a:2005",
		Version:               "1.4",
		RequiresXMP:           true,
		RequiresICC:           true,
		RequiresEmbeddedFonts: true,
		AllowsRGB:             true,
		OutputIntent:          "GTS_PDFA1",
		pdfaPart:              1,
		pdfaConformance:       "A",
	}
	PdfA2b2011 = Conformance{
		Identifier:            "PDF/A-2b:2011",
		Version:               "1.7",
		RequiresXMP:           true,
		RequiresICC:           true,
		RequiresEmbeddedFonts: true,
		AllowsLayers:          true,
		AllowsRGB:             true,
		OutputIntent:          "GTS_PDFA1",
		pdfaPart:              2,
		pdfaConformance:       "B",
	}
	PdfX1a2001 = Conformance{
		Identifier:            "PDF/X-1a:2001",
		Version:               "1.3",
		RequiresXMP:           true,
		RequiresEmbeddedFonts: true,
		OutputIntent:          "GTS_PDFX",
		pdfxVersion:           "PDF/X-1:2001",
		pdfxConformance:       "PDF/X-1a:2001",
	}
	PdfX32002 = Conformance{
		Identifier:            "PDF/X-3:2002",
		Version:               "1.3",
		RequiresXMP:           true,
		RequiresEmbeddedFonts: true,
		AllowsRGB:             true,
		OutputIntent:          "GTS_PDFX",
		pdfxVersion:           "PDF/X-3:2002",
	}
	PdfX1a2003 = Conformance{
		Identifier:            "PDF/X-1a:2003",
		Version:               "1.4",
		RequiresXMP:           true,
		RequiresEmbeddedFonts: true,
		OutputIntent:          "GTS_PDFX",
		pdfxVersion:           "PDF/X-1a:2003",
	}
	PdfX32003 = Conformance{
		Identifier:            "PDF/X-3:2003",
		Version:               "1.4",
		RequiresXMP:           true,
		RequiresEmbeddedFonts: true,
		AllowsRGB:             true,
		OutputIntent:          "GTS_PDFX",
		pdfxVersion:           "PDF/X-3:2003",
	}
	PdfX42010 = Conformance{
		Identifier:            "PDF/X-4",
		Version:               "1.6",
		RequiresXMP:           true,
		RequiresEmbeddedFonts: true,
		AllowsLayers:          true,
		AllowsRGB:             true,
		OutputIntent:          "GTS_PDFX",
		pdfxVersion:           "PDF/X-4",
	}

	// NoConformance places no restrictions on the document.
	NoConformance = Conformance{
		Version:      "1.7",
		AllowsLayers: true,
		AllowsRGB:    true,
	}
)

var conformances = []Conformance{
	PdfA1b2005, PdfA1a2005, PdfA2b2011,
	PdfX1a2001, PdfX32002, PdfX1a2003, PdfX32003, PdfX42010,
}

// ParseConformance looks up a predefined conformance by identifier,
// ignoring case. "" and "none" return NoConformance.
func ParseConformance(identifier string) (Conformance, bool) {
	if identifier == "" || strings.EqualFold(identifier, "none") {
		return NoConformance, true
	}
	for _, c := range conformances {
		if strings.EqualFold(c.Identifier, identifier) {
			return c, true
		}
	}
	return Conformance{}, false
}

func (c Conformance) String() string {
	if c.Identifier == "" {
		return "none"
	}
	return c.Identifier
}

func (c Conformance) isPdfA() bool {
	return c.pdfaPart != 0
}

func (c Conformance) isPdfX() bool {
	return c.pdfxVersion != ""
}

// violation is a way the document does not meet its conformance
type violation struct {
	message string

	// repair changes the document to remove the violation,
	// nil when that is not possible
	repair func()
}

// violations of the document against c, the caller holds the lock
func (d *Document) violations(c Conformance) []violation {
	var found []violation

	if !c.AllowsLayers {
		for i, page := range d.pages {
			if len(page.layers) > 1 {
				page := page
				found = append(found, violation{
					message: fmt.Sprintf("page %d has %d layers, %s does not allow optional content", i, len(page.layers), c),
					repair:  func() { page.mergeLayers() },
				})
			}
		}
	}

	if !c.AllowsRGB {
		for i, page := range d.pages {
			for j, layer := range page.layers {
				if usesRGB(layer.operations) {
					layer := layer
					found = append(found, violation{
						message: fmt.Sprintf("layer %d of page %d uses RGB colors, %s only allows CMYK and gray", j, i, c),
						repair:  func() { layer.operations = rgbToCmyk(layer.operations) },
					})
				}
			}
		}
		for i, svg := range d.svgs {
			if usesRGB(svg.operations) {
				svg := svg
				found = append(found, violation{
					message: fmt.Sprintf("svg %d uses RGB colors, %s only allows CMYK and gray", i, c),
					repair:  func() { svg.operations = rgbToCmyk(svg.operations) },
				})
			}
		}
	}

	if c.RequiresEmbeddedFonts {
		for i, font := range d.fonts {
			if !font.embedded() {
				found = append(found, violation{
					message: fmt.Sprintf("font %d (%s) is not embedded, %s requires embedded fonts", i, font.name(), c),
				})
			}
		}
	}

	if c.RequiresICC && d.iccProfile == nil {
		found = append(found, violation{
			message: fmt.Sprintf("%s requires an output intent with an ICC profile", c),
		})
	}

	return found
}

func usesRGB(ops []pdf.Operation) bool {
	for _, op := range ops {
		if op.Operator == "rg" || op.Operator == "RG" {
			return true
		}
	}
	return false
}

// rgbToCmyk replaces RGB color operations with their CMYK equivalent
func rgbToCmyk(ops []pdf.Operation) []pdf.Operation {
	converted := make([]pdf.Operation, len(ops))
	for i, op := range ops {
		converted[i] = op
		if op.Operator != "rg" && op.Operator != "RG" {
			continue
		}
		rgb, ok := rgbOperands(op.Operands)
		if !ok {
			continue
		}
		converted[i] = rgb.Cmyk().operation(op.Operator == "RG")
	}
	return converted
}
