package printpdf

import (
	"encoding/xml"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/RustWorks/printpdf/pdf"
	"github.com/juju/errgo"
)

// svgXObject is an SVG image converted into the operations of a form
// XObject (§8.10) of width by height points.
type svgXObject struct {
	width, height float64
	operations    []pdf.Operation
}

// svgStyle is the inherited presentation state of an element
type svgStyle struct {
	fill        Color
	stroke      Color
	strokeWidth float64
}

// parseSvg imports the subset of SVG made of basic shapes and paths.
// Text, gradients, transforms and CSS beyond style attributes are
// ignored.
func parseSvg(r io.Reader) (*svgXObject, error) {
	decoder := xml.NewDecoder(r)
	decoder.Strict = false

	var (
		svg    *svgXObject
		styles = []svgStyle{{fill: Greyscale{0}, strokeWidth: 1}}
	)

	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errgo.WithCausef(err, ErrSvg, "unable to read svg")
		}

		switch element := token.(type) {
		case xml.StartElement:
			attrs := svgAttributes(element.Attr)
			if svg == nil {
				if element.Name.Local != "svg" {
					return nil, errgo.WithCausef(nil, ErrSvg, "root element is <%s>, not <svg>", element.Name.Local)
				}
				svg, err = newSvgXObject(attrs)
				if err != nil {
					return nil, err
				}
			}

			style := styles[len(styles)-1].inherit(attrs)
			styles = append(styles, style)

			ops, err := svgShape(element.Name.Local, attrs)
			if err != nil {
				return nil, err
			}
			if len(ops) != 0 {
				svg.operations = append(svg.operations, style.paint(ops)...)
			}
		case xml.EndElement:
			if len(styles) > 1 {
				styles = styles[:len(styles)-1]
			}
		}
	}

	if svg == nil {
		return nil, errgo.WithCausef(nil, ErrSvg, "no <svg> element")
	}
	return svg, nil
}

func svgAttributes(attrs []xml.Attr) map[string]string {
	m := make(map[string]string, len(attrs))
	for _, attr := range attrs {
		m[attr.Name.Local] = attr.Value
	}
	// style properties override presentation attributes
	for _, declaration := range strings.Split(m["style"], ";") {
		property, value, ok := strings.Cut(declaration, ":")
		if ok {
			m[strings.TrimSpace(property)] = strings.TrimSpace(value)
		}
	}
	return m
}

// newSvgXObject sets up the flip from the y-down SVG viewport into PDF
// user space.
func newSvgXObject(attrs map[string]string) (*svgXObject, error) {
	width, hasWidth := svgLength(attrs["width"])
	height, hasHeight := svgLength(attrs["height"])

	var viewBox []float64
	if attrs["viewBox"] != "" {
		numbers, err := svgNumbers(attrs["viewBox"])
		if err != nil || len(numbers) != 4 || numbers[2] <= 0 || numbers[3] <= 0 {
			return nil, errgo.WithCausef(nil, ErrSvg, "invalid viewBox %q", attrs["viewBox"])
		}
		viewBox = numbers
	}

	if viewBox == nil {
		if !hasWidth || !hasHeight {
			return nil, errgo.WithCausef(nil, ErrSvg, "svg needs a width and height or a viewBox")
		}
		viewBox = []float64{0, 0, width, height}
	}
	if !hasWidth {
		width = viewBox[2]
	}
	if !hasHeight {
		height = viewBox[3]
	}
	if width <= 0 || height <= 0 {
		return nil, errgo.WithCausef(nil, ErrSvg, "svg has no area")
	}

	sx := width / viewBox[2]
	sy := height / viewBox[3]
	return &svgXObject{
		width:  width,
		height: height,
		operations: []pdf.Operation{
			pdf.Op("cm",
				pdf.Real(sx), pdf.Real(0),
				pdf.Real(0), pdf.Real(-sy),
				pdf.Real(-viewBox[0]*sx), pdf.Real(height+viewBox[1]*sy)),
		},
	}, nil
}

// svgLength converts a length to points, unitless lengths are CSS px
func svgLength(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" || strings.HasSuffix(s, "%") {
		return 0, false
	}
	scale := 0.75
	for _, unit := range []struct {
		suffix string
		scale  float64
	}{{"px", 0.75}, {"pt", 1}, {"mm", ptPerMm}, {"cm", 10 * ptPerMm}, {"in", 72}} {
		if strings.HasSuffix(s, unit.suffix) {
			s = strings.TrimSuffix(s, unit.suffix)
			scale = unit.scale
			break
		}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v * scale, true
}

// svgUserLength converts a length to user units, where 1px is one unit
func svgUserLength(s string) (float64, bool) {
	pt, ok := svgLength(s)
	return pt / 0.75, ok
}

func (s svgStyle) inherit(attrs map[string]string) svgStyle {
	if fill, ok := attrs["fill"]; ok {
		s.fill = svgColor(fill)
	}
	if stroke, ok := attrs["stroke"]; ok {
		s.stroke = svgColor(stroke)
	}
	if width, ok := attrs["stroke-width"]; ok {
		if v, ok := svgLength(width); ok {
			s.strokeWidth = v / 0.75
		}
	}
	return s
}

// paint wraps path construction operations with the style's painting
func (s svgStyle) paint(path []pdf.Operation) []pdf.Operation {
	ops := []pdf.Operation{pdf.Op("q")}
	if s.fill != nil {
		ops = append(ops, s.fill.operation(false))
	}
	if s.stroke != nil {
		ops = append(ops, s.stroke.operation(true), pdf.Op("w", pdf.Real(s.strokeWidth)))
	}
	ops = append(ops, path...)

	switch {
	case s.fill != nil && s.stroke != nil:
		ops = append(ops, pdf.Op("B"))
	case s.fill != nil:
		ops = append(ops, pdf.Op("f"))
	case s.stroke != nil:
		ops = append(ops, pdf.Op("S"))
	default:
		ops = append(ops, pdf.Op("n"))
	}
	return append(ops, pdf.Op("Q"))
}

var svgNamedColors = map[string]Color{
	"black": Greyscale{0},
	"white": Greyscale{1},
	"gray":  Greyscale{128.0 / 255},
	"grey":  Greyscale{128.0 / 255},
	"red":   Rgb{R: 1},
	"green": Rgb{G: 128.0 / 255},
	"lime":  Rgb{G: 1},
	"blue":  Rgb{B: 1},
}

// svgColor returns nil for none and for colors it does not understand
func svgColor(s string) Color {
	s = strings.ToLower(strings.TrimSpace(s))
	if named, ok := svgNamedColors[s]; ok {
		return named
	}

	if strings.HasPrefix(s, "rgb(") && strings.HasSuffix(s, ")") {
		numbers, err := svgNumbers(s[4 : len(s)-1])
		if err != nil || len(numbers) != 3 {
			return nil
		}
		return Rgb{R: numbers[0] / 255, G: numbers[1] / 255, B: numbers[2] / 255}
	}

	if !strings.HasPrefix(s, "#") {
		return nil
	}
	hex := s[1:]
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return nil
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return nil
	}
	return Rgb{
		R: float64(v>>16&0xff) / 255,
		G: float64(v>>8&0xff) / 255,
		B: float64(v&0xff) / 255,
	}
}

func svgShape(element string, attrs map[string]string) ([]pdf.Operation, error) {
	// shape attributes are lengths in user units, missing ones are 0
	var err error
	number := func(name string) float64 {
		value, ok := attrs[name]
		if !ok || err != nil {
			return 0
		}
		v, valid := svgUserLength(value)
		if !valid {
			err = errgo.WithCausef(nil, ErrSvg, "<%s> %s=%q is not a length", element, name, value)
		}
		return v
	}

	var ops []pdf.Operation
	switch element {
	case "rect":
		x, y, w, h := number("x"), number("y"), number("width"), number("height")
		if w > 0 && h > 0 {
			ops = []pdf.Operation{pdf.Op("re", pdf.Real(x), pdf.Real(y), pdf.Real(w), pdf.Real(h))}
		}
	case "line":
		ops = []pdf.Operation{
			pdf.Op("m", pdf.Real(number("x1")), pdf.Real(number("y1"))),
			pdf.Op("l", pdf.Real(number("x2")), pdf.Real(number("y2"))),
		}
	case "polyline", "polygon":
		numbers, err := svgNumbers(attrs["points"])
		if err != nil {
			return nil, errgo.WithCausef(err, ErrSvg, "<%s> points", element)
		}
		if len(numbers) < 4 {
			return nil, nil
		}
		ops := []pdf.Operation{pdf.Op("m", pdf.Real(numbers[0]), pdf.Real(numbers[1]))}
		for i := 2; i+1 < len(numbers); i += 2 {
			ops = append(ops, pdf.Op("l", pdf.Real(numbers[i]), pdf.Real(numbers[i+1])))
		}
		if element == "polygon" {
			ops = append(ops, pdf.Op("h"))
		}
		return ops, nil
	case "circle":
		cx, cy, r := number("cx"), number("cy"), number("r")
		if r > 0 {
			ops = circle(cx, cy, r)
		}
	case "path":
		ops, err := svgPath(attrs["d"])
		if err != nil {
			return nil, errgo.WithCausef(err, ErrSvg, "<path> d")
		}
		return ops, nil
	}
	if err != nil {
		return nil, err
	}
	return ops, nil
}

// circle approximated by four cubic bezier curves
func circle(cx, cy, r float64) []pdf.Operation {
	k := r * 4 * (math.Sqrt2 - 1) / 3
	c := func(x1, y1, x2, y2, x3, y3 float64) pdf.Operation {
		return pdf.Op("c", pdf.Real(x1), pdf.Real(y1), pdf.Real(x2), pdf.Real(y2), pdf.Real(x3), pdf.Real(y3))
	}
	return []pdf.Operation{
		pdf.Op("m", pdf.Real(cx+r), pdf.Real(cy)),
		c(cx+r, cy+k, cx+k, cy+r, cx, cy+r),
		c(cx-k, cy+r, cx-r, cy+k, cx-r, cy),
		c(cx-r, cy-k, cx-k, cy-r, cx, cy-r),
		c(cx+k, cy-r, cx+r, cy-k, cx+r, cy),
		pdf.Op("h"),
	}
}

// svgPath converts path data with the commands M L H V C Z, absolute
// and relative.
func svgPath(d string) ([]pdf.Operation, error) {
	var (
		ops            []pdf.Operation
		x, y           float64
		startX, startY float64
		command        byte
		i              int
	)

	next := func() (float64, error) {
		v, n, err := scanSvgNumber(d[i:])
		i += n
		return v, err
	}

	for {
		i = skipSvgSeparators(d, i)
		if i >= len(d) {
			return ops, nil
		}

		if c := d[i]; strings.IndexByte("MmLlHhVvCcZz", c) >= 0 {
			command = c
			i++
		} else if command == 0 {
			return nil, errgo.Newf("expected a command at %q", d[i:])
		}

		relative := command >= 'a'
		dx, dy := 0.0, 0.0
		if relative {
			dx, dy = x, y
		}

		switch command {
		case 'M', 'm':
			px, err := next()
			if err != nil {
				return nil, err
			}
			py, err := next()
			if err != nil {
				return nil, err
			}
			x, y = px+dx, py+dy
			startX, startY = x, y
			ops = append(ops, pdf.Op("m", pdf.Real(x), pdf.Real(y)))
			// following pairs are implicit line tos
			if relative {
				command = 'l'
			} else {
				command = 'L'
			}
		case 'L', 'l':
			px, err := next()
			if err != nil {
				return nil, err
			}
			py, err := next()
			if err != nil {
				return nil, err
			}
			x, y = px+dx, py+dy
			ops = append(ops, pdf.Op("l", pdf.Real(x), pdf.Real(y)))
		case 'H', 'h':
			px, err := next()
			if err != nil {
				return nil, err
			}
			x = px + dx
			ops = append(ops, pdf.Op("l", pdf.Real(x), pdf.Real(y)))
		case 'V', 'v':
			py, err := next()
			if err != nil {
				return nil, err
			}
			y = py + dy
			ops = append(ops, pdf.Op("l", pdf.Real(x), pdf.Real(y)))
		case 'C', 'c':
			var v [6]float64
			for j := range v {
				n, err := next()
				if err != nil {
					return nil, err
				}
				v[j] = n
			}
			ops = append(ops, pdf.Op("c",
				pdf.Real(v[0]+dx), pdf.Real(v[1]+dy),
				pdf.Real(v[2]+dx), pdf.Real(v[3]+dy),
				pdf.Real(v[4]+dx), pdf.Real(v[5]+dy)))
			x, y = v[4]+dx, v[5]+dy
		case 'Z', 'z':
			ops = append(ops, pdf.Op("h"))
			x, y = startX, startY
			// a number after z is an error
			command = 0
		}
	}
}

func skipSvgSeparators(s string, i int) int {
	for i < len(s) && strings.IndexByte(" \t\r\n,", s[i]) >= 0 {
		i++
	}
	return i
}

// scanSvgNumber reads one number, allowing the compact forms "10-5" and
// "1.5.5".
func scanSvgNumber(s string) (float64, int, error) {
	i := skipSvgSeparators(s, 0)
	start := i
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	dot, exponent := false, false
scan:
	for ; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9':
		case c == '.' && !dot && !exponent:
			dot = true
		case (c == 'e' || c == 'E') && !exponent && i > start:
			exponent = true
			if i+1 < len(s) && (s[i+1] == '+' || s[i+1] == '-') {
				i++
			}
		default:
			break scan
		}
	}
	v, err := strconv.ParseFloat(s[start:i], 64)
	if err != nil {
		return 0, i, errgo.Newf("expected a number at %q", s[start:])
	}
	return v, i, nil
}

func svgNumbers(s string) ([]float64, error) {
	var numbers []float64
	for i := skipSvgSeparators(s, 0); i < len(s); i = skipSvgSeparators(s, i) {
		v, n, err := scanSvgNumber(s[i:])
		if err != nil {
			return nil, err
		}
		numbers = append(numbers, v)
		i += n
	}
	return numbers, nil
}

func (s *svgXObject) write(f *pdf.File, compress bool) (pdf.ObjectReference, error) {
	content, err := pdf.EncodeContent(s.operations)
	if err != nil {
		return pdf.ObjectReference{}, errgo.Mask(err)
	}
	form := pdf.Stream{
		Dictionary: pdf.Dictionary{
			pdf.Name("Type"):      pdf.Name("XObject"),
			pdf.Name("Subtype"):   pdf.Name("Form"),
			pdf.Name("BBox"):      pdf.Array{pdf.Integer(0), pdf.Integer(0), pdf.Real(s.width), pdf.Real(s.height)},
			pdf.Name("Resources"): pdf.Dictionary{},
		},
		Stream: content,
	}
	if compress {
		form, err = form.Compress()
		if err != nil {
			return pdf.ObjectReference{}, errgo.Mask(err)
		}
	}
	return f.Add(form)
}
