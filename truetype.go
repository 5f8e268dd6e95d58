package printpdf

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
	"unicode/utf16"

	"github.com/RustWorks/printpdf/pdf"
	"github.com/juju/errgo"
	"golang.org/x/image/font"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
)

// trueTypeFont is an embedded TrueType font written as a Type0 font
// with an Identity-H encoding (§9.7.6). Text is shown with two byte
// glyph ids, so every glyph of the font can be used.
type trueTypeFont struct {
	data       []byte
	font       *sfnt.Font
	buf        sfnt.Buffer
	postscript string
	unitsPerEm fixed.Int26_6

	// used glyphs and the rune they were first used for
	used map[sfnt.GlyphIndex]rune
}

func parseTrueType(data []byte) (*trueTypeFont, error) {
	f, err := sfnt.Parse(data)
	if err != nil {
		return nil, errgo.WithCausef(err, ErrFont, "unable to parse font")
	}

	t := &trueTypeFont{
		data: data,
		font: f,
		used: map[sfnt.GlyphIndex]rune{},
	}
	t.unitsPerEm = fixed.I(int(f.UnitsPerEm()))
	if t.unitsPerEm == 0 {
		return nil, errgo.WithCausef(nil, ErrFont, "font has no units per em")
	}

	name, err := f.Name(&t.buf, sfnt.NameIDPostScript)
	if err != nil || name == "" {
		name, err = f.Name(&t.buf, sfnt.NameIDFull)
		if err != nil {
			return nil, errgo.WithCausef(err, ErrFont, "font has no name")
		}
	}
	t.postscript = strings.Map(func(r rune) rune {
		if r <= ' ' || r > '~' || strings.ContainsRune("()<>[]{}/%#", r) {
			return -1
		}
		return r
	}, name)

	return t, nil
}

func (t *trueTypeFont) encode(text string) ([]byte, error) {
	encoded := make([]byte, 0, 2*len(text))
	for _, r := range text {
		gid, err := t.font.GlyphIndex(&t.buf, r)
		if err != nil {
			return nil, errgo.WithCausef(err, ErrFont, "glyph for %q", r)
		}
		// gid 0 is .notdef, drawn as a box
		if gid == 0 {
			return nil, errgo.WithCausef(nil, ErrFont, "%s has no glyph for %q", t.postscript, r)
		}
		if _, ok := t.used[gid]; !ok {
			t.used[gid] = r
		}
		encoded = append(encoded, byte(gid>>8), byte(gid))
	}
	return encoded, nil
}

// glyphSpace scales font units to 1000 units per em
func (t *trueTypeFont) glyphSpace(v fixed.Int26_6) pdf.Integer {
	return pdf.Integer(int64(v) * 1000 / int64(t.unitsPerEm))
}

func (t *trueTypeFont) write(f *pdf.File) (pdf.ObjectReference, error) {
	program := pdf.Stream{
		Dictionary: pdf.Dictionary{pdf.Name("Length1"): pdf.Integer(len(t.data))},
		Stream:     t.data,
	}
	program, err := program.Compress()
	if err != nil {
		return pdf.ObjectReference{}, errgo.Mask(err)
	}
	programRef, err := f.Add(program)
	if err != nil {
		return pdf.ObjectReference{}, errgo.Mask(err)
	}

	metrics, err := t.font.Metrics(&t.buf, t.unitsPerEm, font.HintingNone)
	if err != nil {
		return pdf.ObjectReference{}, errgo.WithCausef(err, ErrFont, "font metrics")
	}
	bounds, err := t.font.Bounds(&t.buf, t.unitsPerEm, font.HintingNone)
	if err != nil {
		return pdf.ObjectReference{}, errgo.WithCausef(err, ErrFont, "font bounds")
	}
	capHeight := metrics.CapHeight
	if capHeight == 0 {
		capHeight = metrics.Ascent
	}

	// sfnt measures y downwards
	descriptorRef, err := f.Add(pdf.Dictionary{
		pdf.Name("Type"):     pdf.Name("FontDescriptor"),
		pdf.Name("FontName"): pdf.Name(t.postscript),
		pdf.Name("Flags"):    pdf.Integer(32),
		pdf.Name("FontBBox"): pdf.Array{
			t.glyphSpace(bounds.Min.X),
			t.glyphSpace(-bounds.Max.Y),
			t.glyphSpace(bounds.Max.X),
			t.glyphSpace(-bounds.Min.Y),
		},
		pdf.Name("ItalicAngle"): pdf.Integer(0),
		pdf.Name("Ascent"):      t.glyphSpace(metrics.Ascent),
		pdf.Name("Descent"):     t.glyphSpace(-metrics.Descent),
		pdf.Name("CapHeight"):   t.glyphSpace(capHeight),
		pdf.Name("StemV"):       pdf.Integer(80),
		pdf.Name("FontFile2"):   programRef,
	})
	if err != nil {
		return pdf.ObjectReference{}, errgo.Mask(err)
	}

	widths, err := t.widths()
	if err != nil {
		return pdf.ObjectReference{}, err
	}

	cidFontRef, err := f.Add(pdf.Dictionary{
		pdf.Name("Type"):     pdf.Name("Font"),
		pdf.Name("Subtype"):  pdf.Name("CIDFontType2"),
		pdf.Name("BaseFont"): pdf.Name(t.postscript),
		pdf.Name("CIDSystemInfo"): pdf.Dictionary{
			pdf.Name("Registry"):   pdf.String("Adobe"),
			pdf.Name("Ordering"):   pdf.String("Identity"),
			pdf.Name("Supplement"): pdf.Integer(0),
		},
		pdf.Name("FontDescriptor"): descriptorRef,
		pdf.Name("DW"):             pdf.Integer(1000),
		pdf.Name("W"):              widths,
		pdf.Name("CIDToGIDMap"):    pdf.Name("Identity"),
	})
	if err != nil {
		return pdf.ObjectReference{}, errgo.Mask(err)
	}

	toUnicode, err := pdf.Stream{Stream: t.toUnicode()}.Compress()
	if err != nil {
		return pdf.ObjectReference{}, errgo.Mask(err)
	}
	toUnicodeRef, err := f.Add(toUnicode)
	if err != nil {
		return pdf.ObjectReference{}, errgo.Mask(err)
	}

	return f.Add(pdf.Dictionary{
		pdf.Name("Type"):            pdf.Name("Font"),
		pdf.Name("Subtype"):         pdf.Name("Type0"),
		pdf.Name("BaseFont"):        pdf.Name(t.postscript),
		pdf.Name("Encoding"):        pdf.Name("Identity-H"),
		pdf.Name("DescendantFonts"): pdf.Array{cidFontRef},
		pdf.Name("ToUnicode"):       toUnicodeRef,
	})
}

func (t *trueTypeFont) usedGlyphs() []sfnt.GlyphIndex {
	glyphs := make([]sfnt.GlyphIndex, 0, len(t.used))
	for gid := range t.used {
		glyphs = append(glyphs, gid)
	}
	sort.Slice(glyphs, func(i, j int) bool { return glyphs[i] < glyphs[j] })
	return glyphs
}

// widths of the used glyphs as a W array (§9.7.4.3), consecutive glyph
// ids share one entry
func (t *trueTypeFont) widths() (pdf.Array, error) {
	w := pdf.Array{}
	var run pdf.Array
	next := -1
	for _, gid := range t.usedGlyphs() {
		advance, err := t.font.GlyphAdvance(&t.buf, gid, t.unitsPerEm, font.HintingNone)
		if err != nil {
			return nil, errgo.WithCausef(err, ErrFont, "advance of glyph %d", gid)
		}
		if int(gid) != next {
			if run != nil {
				w = append(w, run)
			}
			w = append(w, pdf.Integer(gid))
			run = pdf.Array{}
		}
		run = append(run, t.glyphSpace(advance))
		next = int(gid) + 1
	}
	if run != nil {
		w = append(w, run)
	}
	return w, nil
}

// toUnicode builds the CMap mapping glyph ids back to text (§9.10.3)
func (t *trueTypeFont) toUnicode() []byte {
	buf := &bytes.Buffer{}
	buf.WriteString("/CIDInit /ProcSet findresource begin\n12 dict begin\nbegincmap\n")
	buf.WriteString("/CIDSystemInfo << /Registry (Adobe) /Ordering (UCS) /Supplement 0 >> def\n")
	buf.WriteString("/CMapName /Adobe-Identity-UCS def\n/CMapType 2 def\n")
	buf.WriteString("1 begincodespacerange\n<0000> <FFFF>\nendcodespacerange\n")

	glyphs := t.usedGlyphs()
	// at most 100 entries per block
	for start := 0; start < len(glyphs); start += 100 {
		end := start + 100
		if end > len(glyphs) {
			end = len(glyphs)
		}
		fmt.Fprintf(buf, "%d beginbfchar\n", end-start)
		for _, gid := range glyphs[start:end] {
			fmt.Fprintf(buf, "<%04X> <", uint16(gid))
			for _, unit := range utf16.Encode([]rune{t.used[gid]}) {
				fmt.Fprintf(buf, "%04X", unit)
			}
			buf.WriteString(">\n")
		}
		buf.WriteString("endbfchar\n")
	}

	buf.WriteString("endcmap\nCMapName currentdict /CMap defineresource pop\nend\nend\n")
	return buf.Bytes()
}

func (*trueTypeFont) embedded() bool { return true }

func (t *trueTypeFont) name() string { return t.postscript }
