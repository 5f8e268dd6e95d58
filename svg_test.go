package printpdf

import (
	"math"
	"strings"
	"testing"

	"github.com/RustWorks/printpdf/pdf"
	"github.com/juju/errgo"
)

const testSvg = `<?xml version="1.0"?>
<svg xmlns="http://www.w3.org/2000/svg" width="200" height="100" viewBox="0 0 100 50">
  <g fill="#ff0000" stroke="none">
    <rect x="10" y="10" width="20" height="10"/>
    <circle cx="50" cy="25" r="5" fill="none" stroke="black" stroke-width="2"/>
  </g>
  <path d="M10 40 l10 0 v-5 H10 z" style="fill: #00f; stroke: #000"/>
  <polyline points="0,0 10,10 20,0" fill="none" stroke="blue"/>
  <text x="0" y="0">ignored</text>
</svg>`

func TestParseSvg(t *testing.T) {
	svg, err := parseSvg(strings.NewReader(testSvg))
	if err != nil {
		t.Fatal(err)
	}
	if svg.width != 150 || svg.height != 75 {
		t.Errorf("expected 150x75pt, got %vx%v", svg.width, svg.height)
	}

	// the first operation flips the view box into PDF space
	flip := svg.operations[0]
	if flip.Operator != "cm" {
		t.Fatalf("expected cm, got %v", flip)
	}
	expected := []float64{1.5, 0, 0, -1.5, 0, 75}
	for i, operand := range flip.Operands {
		if v, _ := pdf.Number(operand); math.Abs(v-expected[i]) > 1e-9 {
			t.Errorf("cm operand %d: expected %v, got %v", i, expected[i], v)
		}
	}

	ops := strings.Join(operators(svg.operations), " ")
	for _, shape := range []string{
		"q rg re f Q",
		"q G w m c c c c h S Q",
		"q rg RG w m l l l h B Q",
		"q RG w m l l S Q",
	} {
		if !strings.Contains(ops, shape) {
			t.Errorf("operations do not contain %q: %s", shape, ops)
		}
	}
}

func TestParseSvgErrors(t *testing.T) {
	for _, data := range []string{
		"",
		"<html></html>",
		`<svg xmlns="http://www.w3.org/2000/svg"></svg>`,
		`<svg viewBox="0 0 0 10"></svg>`,
		`<svg width="10" height="10"><path d="10 10"/></svg>`,
	} {
		if _, err := parseSvg(strings.NewReader(data)); errgo.Cause(err) != ErrSvg {
			t.Errorf("%q: expected ErrSvg, got %v", data, err)
		}
	}
}

func TestSvgShapeLengths(t *testing.T) {
	tests := []struct {
		attrs    map[string]string
		expected []float64
	}{
		{map[string]string{"x": "10", "y": "10", "width": "50px", "height": "20px"}, []float64{10, 10, 50, 20}},
		{map[string]string{"width": "1in", "height": "72pt"}, []float64{0, 0, 96, 96}},
		{map[string]string{"x": "2.54cm", "width": "25.4mm", "height": "1"}, []float64{96, 0, 96, 1}},
	}
	for _, test := range tests {
		ops, err := svgShape("rect", test.attrs)
		if err != nil {
			t.Fatalf("%v: %v", test.attrs, err)
		}
		if len(ops) != 1 || ops[0].Operator != "re" {
			t.Fatalf("%v: expected a re operation, got %v", test.attrs, ops)
		}
		for i, operand := range ops[0].Operands {
			if v, _ := pdf.Number(operand); math.Abs(v-test.expected[i]) > 1e-6 {
				t.Errorf("%v: operand %d expected %v, got %v", test.attrs, i, test.expected[i], v)
			}
		}
	}

	for _, attrs := range []map[string]string{
		{"width": "wide", "height": "10"},
		{"width": "50%", "height": "10"},
		{"x": "1em", "width": "10", "height": "10"},
	} {
		if _, err := svgShape("rect", attrs); errgo.Cause(err) != ErrSvg {
			t.Errorf("%v: expected ErrSvg, got %v", attrs, err)
		}
	}
	if _, err := svgShape("circle", map[string]string{"r": "five"}); errgo.Cause(err) != ErrSvg {
		t.Errorf("expected ErrSvg for the circle radius, got %v", err)
	}
}

func TestSvgPath(t *testing.T) {
	ops, err := svgPath("M1,2 3,4 c1 1 2 2 3 3 h-6 V0 Z m1 1")
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.Join(operators(ops), " "); got != "m l c l l h m" {
		t.Fatalf("unexpected operators %s", got)
	}

	point := func(op pdf.Operation, i int) (float64, float64) {
		x, _ := pdf.Number(op.Operands[i])
		y, _ := pdf.Number(op.Operands[i+1])
		return x, y
	}
	for _, test := range []struct {
		op, operand int
		x, y        float64
	}{
		{1, 0, 3, 4}, // implicit line to
		{2, 4, 6, 7}, // relative curve end
		{3, 0, 0, 7}, // relative horizontal
		{4, 0, 0, 0}, // absolute vertical
		{6, 0, 2, 3}, // relative move from the start of the closed path
	} {
		if x, y := point(ops[test.op], test.operand); x != test.x || y != test.y {
			t.Errorf("operation %d: expected %v,%v, got %v,%v", test.op, test.x, test.y, x, y)
		}
	}
}

func TestScanSvgNumber(t *testing.T) {
	for _, test := range []struct {
		input string
		value float64
		n     int
	}{
		{"10-5", 10, 2},
		{"-5", -5, 2},
		{"1.5.5", 1.5, 3},
		{" 2e3,", 2000, 4},
		{".5", 0.5, 2},
	} {
		v, n, err := scanSvgNumber(test.input)
		if err != nil || v != test.value || n != test.n {
			t.Errorf("%q: expected %v (%d), got %v (%d) %v", test.input, test.value, test.n, v, n, err)
		}
	}
	if _, _, err := scanSvgNumber("x"); err == nil {
		t.Errorf("expected an error")
	}
}

func TestSvgColor(t *testing.T) {
	for _, test := range []struct {
		input string
		color Color
	}{
		{"none", nil},
		{"black", Greyscale{0}},
		{"#fff", Rgb{1, 1, 1}},
		{"#FF0000", Rgb{R: 1}},
		{"rgb(0, 0, 255)", Rgb{B: 1}},
		{"url(#gradient)", nil},
		{"#12", nil},
	} {
		if got := svgColor(test.input); got != test.color {
			t.Errorf("%q: expected %#v, got %#v", test.input, test.color, got)
		}
	}
}

func TestAddSvgAt(t *testing.T) {
	doc, _, layer := New("Svg", 210, 297, "Layer 1")
	doc.WithConformance(NoConformance)
	svg, err := doc.AddSvg(strings.NewReader(testSvg))
	if err != nil {
		t.Fatal(err)
	}
	marker, _ := doc.AddMarker(10, 20, layer)
	if err := doc.AddSvgAt(svg, 0, 0, marker); err != nil {
		t.Fatal(err)
	}
	// twice as wide, height follows
	if err := doc.AddSvgAt(svg, Pt(300).Mm(), 0, marker); err != nil {
		t.Fatal(err)
	}

	f := saveAndParse(t, doc)
	p := pagesOf(t, f)[0]
	if content := contentOf(t, f, p); !strings.Contains(content, "/X0 Do\n") || !strings.Contains(content, "1 0 0 1 ") || !strings.Contains(content, "2 0 0 2 ") {
		t.Errorf("unexpected content %q", content)
	}
	xobjects := getDict(t, f, p[pdf.Name("Resources")])[pdf.Name("XObject")].(pdf.Dictionary)
	form, ok := f.Get(xobjects[pdf.Name("X0")].(pdf.ObjectReference)).(pdf.Stream)
	if !ok {
		t.Fatal("missing form xobject")
	}
	if form.Dictionary[pdf.Name("Subtype")] != pdf.Name("Form") {
		t.Errorf("unexpected xobject %v", form.Dictionary)
	}
	bbox := form.Dictionary[pdf.Name("BBox")].(pdf.Array)
	if w, _ := pdf.Number(bbox[2]); w != 150 {
		t.Errorf("unexpected bbox %v", bbox)
	}
}
