package config

import (
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/RustWorks/printpdf"
)

// Plan is a validated description, ready to be built into a document.
// Paths are resolved against the directory of the description.
type Plan struct {
	Path string

	Title       string
	Conformance printpdf.Conformance
	Compress    bool
	Author      string
	Creator     string
	Producer    string
	Subject     string
	Keywords    []string
	DocumentID  string
	IccProfile  string

	// Fonts in name order
	Fonts []PlanFont
	Pages []PlanPage
}

type PlanFont struct {
	Name    string
	Builtin *printpdf.BuiltinFont
	Path    string
}

type PlanPage struct {
	Width, Height printpdf.Mm
	Layers        []PlanLayer
}

type PlanLayer struct {
	Name  string
	Texts []PlanText
	Lines []PlanLine
	Svgs  []PlanSvg
}

type PlanText struct {
	Text string
	Font string
	Size float64
	X, Y printpdf.Mm
}

type PlanLine struct {
	Line    printpdf.Line
	Outline *printpdf.Outline
	Fill    *printpdf.Fill
}

type PlanSvg struct {
	Path          string
	X, Y          printpdf.Mm
	Width, Height printpdf.Mm
}

// Map validates a description read from path.
func Map(path string, d Description) (*Plan, error) {
	if strings.TrimSpace(d.Title) == "" {
		return nil, invalidField(path, "title", "title is required")
	}
	if len(d.Pages) == 0 {
		return nil, invalidField(path, "pages", "at least one page is required")
	}

	conformance, ok := printpdf.ParseConformance(d.Conformance)
	if !ok {
		return nil, invalidField(path, "conformance", fmt.Sprintf("unknown conformance %q", d.Conformance))
	}

	dir := filepath.Dir(path)
	plan := &Plan{
		Path:        path,
		Title:       d.Title,
		Conformance: conformance,
		Compress:    d.Compress,
		Author:      d.Author,
		Creator:     d.Creator,
		Producer:    d.Producer,
		Subject:     d.Subject,
		Keywords:    d.Keywords,
		DocumentID:  d.DocumentID,
		IccProfile:  resolve(dir, d.IccProfile),
	}

	names := make([]string, 0, len(d.Fonts))
	for name := range d.Fonts {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		font, err := mapFont(path, dir, name, d.Fonts[name])
		if err != nil {
			return nil, err
		}
		plan.Fonts = append(plan.Fonts, font)
	}

	for i, p := range d.Pages {
		page, err := mapPage(path, dir, fmt.Sprintf("pages[%d]", i), p, d.Fonts)
		if err != nil {
			return nil, err
		}
		plan.Pages = append(plan.Pages, page)
	}

	return plan, nil
}

func resolve(dir, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}

func mapFont(path, dir, name string, f FontDescription) (PlanFont, error) {
	field := "fonts." + name
	switch {
	case f.Builtin != "" && f.Path != "":
		return PlanFont{}, invalidField(path, field, "builtin and path are exclusive")
	case f.Builtin != "":
		builtin, ok := printpdf.ParseBuiltinFont(f.Builtin)
		if !ok {
			return PlanFont{}, invalidField(path, field+".builtin", fmt.Sprintf("unknown builtin font %q", f.Builtin))
		}
		return PlanFont{Name: name, Builtin: &builtin}, nil
	case f.Path != "":
		return PlanFont{Name: name, Path: resolve(dir, f.Path)}, nil
	}
	return PlanFont{}, invalidField(path, field, "builtin or path is required")
}

func mapPage(path, dir, field string, p PageDescription, fonts map[string]FontDescription) (PlanPage, error) {
	if p.Width <= 0 || p.Height <= 0 {
		return PlanPage{}, invalidField(path, field, "width and height must be positive")
	}

	page := PlanPage{Width: printpdf.Mm(p.Width), Height: printpdf.Mm(p.Height)}
	layers := p.Layers
	if len(layers) == 0 {
		layers = []LayerDescription{{}}
	}

	for i, l := range layers {
		layerField := fmt.Sprintf("%s.layers[%d]", field, i)
		layer := PlanLayer{Name: l.Name}
		if layer.Name == "" {
			layer.Name = fmt.Sprintf("Layer %d", i+1)
		}

		for j, t := range l.Texts {
			textField := fmt.Sprintf("%s.texts[%d]", layerField, j)
			if _, ok := fonts[t.Font]; !ok {
				return PlanPage{}, invalidField(path, textField+".font", fmt.Sprintf("unknown font %q", t.Font))
			}
			size := t.Size
			if size == 0 {
				size = 12
			}
			if size < 0 {
				return PlanPage{}, invalidField(path, textField+".size", "size must be positive")
			}
			layer.Texts = append(layer.Texts, PlanText{
				Text: t.Text,
				Font: t.Font,
				Size: size,
				X:    printpdf.Mm(t.X),
				Y:    printpdf.Mm(t.Y),
			})
		}

		for j, ld := range l.Lines {
			line, err := mapLine(path, fmt.Sprintf("%s.lines[%d]", layerField, j), ld)
			if err != nil {
				return PlanPage{}, err
			}
			layer.Lines = append(layer.Lines, line)
		}

		for j, s := range l.Svgs {
			if s.Path == "" {
				return PlanPage{}, invalidField(path, fmt.Sprintf("%s.svgs[%d].path", layerField, j), "path is required")
			}
			layer.Svgs = append(layer.Svgs, PlanSvg{
				Path:   resolve(dir, s.Path),
				X:      printpdf.Mm(s.X),
				Y:      printpdf.Mm(s.Y),
				Width:  printpdf.Mm(s.Width),
				Height: printpdf.Mm(s.Height),
			})
		}

		page.Layers = append(page.Layers, layer)
	}

	return page, nil
}

func mapLine(path, field string, l LineDescription) (PlanLine, error) {
	if len(l.Points) < 2 {
		return PlanLine{}, invalidField(path, field+".points", "a line needs at least two points")
	}

	line := PlanLine{Line: printpdf.Line{Closed: l.Closed}}
	for _, p := range l.Points {
		line.Line.Points = append(line.Line.Points, printpdf.LinePoint{
			Point:  printpdf.NewPoint(printpdf.Mm(p.X), printpdf.Mm(p.Y)),
			Bezier: p.Bezier,
		})
	}

	if l.Fill != "" {
		color, err := ParseColor(l.Fill)
		if err != nil {
			return PlanLine{}, invalidField(path, field+".fill", err.Error())
		}
		line.Fill = &printpdf.Fill{Color: color}
		line.Line.Fill = true
	}

	if l.Stroke != "" || l.Thickness > 0 {
		outline := &printpdf.Outline{Thickness: printpdf.Pt(l.Thickness)}
		if outline.Thickness == 0 {
			outline.Thickness = 1
		}
		if l.Stroke != "" {
			color, err := ParseColor(l.Stroke)
			if err != nil {
				return PlanLine{}, invalidField(path, field+".stroke", err.Error())
			}
			outline.Color = color
		}
		line.Outline = outline
		line.Line.Stroke = true
	}

	if !line.Line.Fill && !line.Line.Stroke {
		line.Line.Stroke = true
	}
	return line, nil
}

// ParseColor reads "#rgb", "#rrggbb", "gray(g)" and "cmyk(c, m, y, k)",
// components of the functional forms range from 0 to 1.
func ParseColor(s string) (printpdf.Color, error) {
	s = strings.ToLower(strings.TrimSpace(s))

	if strings.HasPrefix(s, "#") {
		hex := s[1:]
		if len(hex) == 3 {
			hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
		}
		v, err := strconv.ParseUint(hex, 16, 32)
		if err != nil || len(hex) != 6 {
			return nil, fmt.Errorf("invalid hex color %q", s)
		}
		return printpdf.Rgb{
			R: float64(v>>16&0xff) / 255,
			G: float64(v>>8&0xff) / 255,
			B: float64(v&0xff) / 255,
		}, nil
	}

	name, args, ok := strings.Cut(s, "(")
	if !ok || !strings.HasSuffix(args, ")") {
		return nil, fmt.Errorf("invalid color %q", s)
	}
	var components []float64
	for _, arg := range strings.Split(strings.TrimSuffix(args, ")"), ",") {
		v, err := strconv.ParseFloat(strings.TrimSpace(arg), 64)
		if err != nil || v < 0 || v > 1 {
			return nil, fmt.Errorf("invalid color component %q in %q", arg, s)
		}
		components = append(components, v)
	}

	switch {
	case name == "gray" && len(components) == 1:
		return printpdf.Greyscale{Gray: components[0]}, nil
	case name == "cmyk" && len(components) == 4:
		return printpdf.Cmyk{C: components[0], M: components[1], Y: components[2], K: components[3]}, nil
	case name == "rgb" && len(components) == 3:
		return printpdf.Rgb{R: components[0], G: components[1], B: components[2]}, nil
	}
	return nil, fmt.Errorf("invalid color %q", s)
}
