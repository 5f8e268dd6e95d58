package printpdf

import (
	"math"
	"testing"

	"github.com/RustWorks/printpdf/pdf"
)

func operators(ops []pdf.Operation) []string {
	names := make([]string, len(ops))
	for i, op := range ops {
		names[i] = op.Operator
	}
	return names
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func linePoints(bezier ...bool) []LinePoint {
	points := make([]LinePoint, len(bezier))
	for i, b := range bezier {
		points[i] = LinePoint{Point: Point{X: Pt(i), Y: Pt(i)}, Bezier: b}
	}
	return points
}

func TestLineOperations(t *testing.T) {
	for n, test := range []struct {
		line      Line
		operators []string
	}{
		{Line{}, nil},
		{Line{Points: linePoints(false, false, false), Stroke: true}, []string{"m", "l", "l", "S"}},
		{Line{Points: linePoints(false, false, false), Stroke: true, Closed: true}, []string{"m", "l", "l", "s"}},
		{Line{Points: linePoints(false, false, false), Fill: true}, []string{"m", "l", "l", "f"}},
		{Line{Points: linePoints(false, false), Fill: true, Stroke: true}, []string{"m", "l", "B"}},
		{Line{Points: linePoints(false, false), Fill: true, Stroke: true, Closed: true}, []string{"m", "l", "b"}},
		{Line{Points: linePoints(false, false), ClippingPath: true, Fill: true}, []string{"m", "l", "W", "n"}},
		{Line{Points: linePoints(false, false), ClippingPath: true, Closed: true}, []string{"m", "l", "h", "W", "n"}},
		{Line{Points: linePoints(false, false)}, []string{"m", "l", "n"}},
		// 0 starts a curve with handles 1 and 2 ending in 3
		{Line{Points: linePoints(true, true, false, false), Stroke: true}, []string{"m", "c", "S"}},
		{Line{Points: linePoints(false, true, true, false, false, false), Stroke: true}, []string{"m", "l", "c", "l", "S"}},
		// not enough points left for a curve
		{Line{Points: linePoints(true, true, false), Stroke: true}, []string{"m", "l", "l", "S"}},
	} {
		got := operators(test.line.operations())
		if !equalStrings(got, test.operators) {
			t.Errorf("test %d: expected %v, got %v", n, test.operators, got)
		}
	}
}

func TestCurveOperands(t *testing.T) {
	line := Line{Points: linePoints(true, true, false, false)}
	ops := line.operations()
	curve := ops[1]
	if len(curve.Operands) != 6 {
		t.Fatalf("expected 6 operands, got %v", curve.Operands)
	}
	for i, expected := range []float64{1, 1, 2, 2, 3, 3} {
		if v, _ := pdf.Number(curve.Operands[i]); v != expected {
			t.Errorf("operand %d: expected %v, got %v", i, expected, v)
		}
	}
}

func TestColorOperations(t *testing.T) {
	for _, test := range []struct {
		color    Color
		stroke   bool
		operator string
		operands int
	}{
		{Rgb{R: 1}, false, "rg", 3},
		{Rgb{R: 1}, true, "RG", 3},
		{Cmyk{K: 1}, false, "k", 4},
		{Cmyk{K: 1}, true, "K", 4},
		{Greyscale{0.5}, false, "g", 1},
		{Greyscale{0.5}, true, "G", 1},
	} {
		op := test.color.operation(test.stroke)
		if op.Operator != test.operator || len(op.Operands) != test.operands {
			t.Errorf("%#v: unexpected operation %v", test.color, op)
		}
	}
}

func TestRgbToCmyk(t *testing.T) {
	for _, test := range []struct {
		rgb  Rgb
		cmyk Cmyk
	}{
		{Rgb{0, 0, 0}, Cmyk{K: 1}},
		{Rgb{1, 1, 1}, Cmyk{}},
		{Rgb{1, 0, 0}, Cmyk{M: 1, Y: 1}},
		{Rgb{0, 0.5, 0.5}, Cmyk{C: 1, K: 0.5}},
	} {
		got := test.rgb.Cmyk()
		if math.Abs(got.C-test.cmyk.C)+math.Abs(got.M-test.cmyk.M)+math.Abs(got.Y-test.cmyk.Y)+math.Abs(got.K-test.cmyk.K) > 1e-9 {
			t.Errorf("%v: expected %v, got %v", test.rgb, test.cmyk, got)
		}
	}
}

func TestUnits(t *testing.T) {
	if pt := Mm(25.4).Pt(); math.Abs(float64(pt)-72) > 1e-9 {
		t.Errorf("25.4mm should be 72pt, got %v", pt)
	}
	if mm := Pt(72).Mm(); math.Abs(float64(mm)-25.4) > 1e-9 {
		t.Errorf("72pt should be 25.4mm, got %v", mm)
	}
	if p := NewPoint(0, 25.4); p.X != 0 || math.Abs(float64(p.Y)-72) > 1e-9 {
		t.Errorf("unexpected point %v", p)
	}
}
