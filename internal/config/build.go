package config

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"

	"github.com/RustWorks/printpdf"
)

// Build creates the document described by the plan. Font, SVG and ICC
// files are read while building.
func (p *Plan) Build(logger *slog.Logger) (*printpdf.Document, error) {
	if logger == nil {
		logger = slog.Default()
	}

	first := p.Pages[0]
	doc, _, _ := printpdf.New(p.Title, first.Width, first.Height, first.Layers[0].Name)
	doc.WithConformance(p.Conformance).
		WithCompression(p.Compress).
		WithAuthor(p.Author).
		WithCreator(p.Creator).
		WithProducer(p.Producer).
		WithSubject(p.Subject).
		WithKeywords(p.Keywords...).
		WithLogger(logger)
	if p.DocumentID != "" {
		doc.WithDocumentID(p.DocumentID)
	}

	if p.IccProfile != "" {
		data, err := os.ReadFile(p.IccProfile)
		if err != nil {
			return nil, p.buildError("icc_profile", err)
		}
		// the profile of a PDF/A document describes RGB output
		components := 4
		if p.Conformance.OutputIntent == "GTS_PDFA1" {
			components = 3
		}
		profile, err := printpdf.NewIccProfile(bytes.NewReader(data), components)
		if err != nil {
			return nil, p.buildError("icc_profile", err)
		}
		doc.WithIccProfile(profile)
	}

	fonts := map[string]printpdf.FontIndex{}
	for _, f := range p.Fonts {
		var (
			index printpdf.FontIndex
			err   error
		)
		if f.Builtin != nil {
			index, err = doc.AddBuiltinFont(*f.Builtin)
		} else {
			index, err = p.addFontFile(doc, f.Path)
		}
		if err != nil {
			return nil, p.buildError("fonts."+f.Name, err)
		}
		fonts[f.Name] = index
	}

	svgs := map[string]printpdf.SvgIndex{}
	for i, page := range p.Pages {
		pageIndex := printpdf.PageIndex(0)
		if i > 0 {
			pageIndex, _ = doc.AddPage(page.Width, page.Height, page.Layers[0].Name)
		}

		for j, layer := range page.Layers {
			field := fmt.Sprintf("pages[%d].layers[%d]", i, j)
			layerIndex := printpdf.LayerIndex{Page: pageIndex, Layer: 0}
			if j > 0 {
				var err error
				layerIndex, err = doc.AddLayer(layer.Name, pageIndex)
				if err != nil {
					return nil, p.buildError(field, err)
				}
			}

			for k, line := range layer.Lines {
				if err := doc.AddLine(line.Line, layerIndex, line.Outline, line.Fill); err != nil {
					return nil, p.buildError(fmt.Sprintf("%s.lines[%d]", field, k), err)
				}
			}

			for k, svg := range layer.Svgs {
				svgField := fmt.Sprintf("%s.svgs[%d]", field, k)
				index, ok := svgs[svg.Path]
				if !ok {
					var err error
					index, err = p.addSvgFile(doc, svg.Path)
					if err != nil {
						return nil, p.buildError(svgField, err)
					}
					svgs[svg.Path] = index
				}
				marker, err := doc.AddMarker(svg.X, svg.Y, layerIndex)
				if err != nil {
					return nil, p.buildError(svgField, err)
				}
				if err := doc.AddSvgAt(index, svg.Width, svg.Height, marker); err != nil {
					return nil, p.buildError(svgField, err)
				}
			}

			for k, text := range layer.Texts {
				if err := doc.UseText(text.Text, text.Size, text.X, text.Y, fonts[text.Font], layerIndex); err != nil {
					return nil, p.buildError(fmt.Sprintf("%s.texts[%d]", field, k), err)
				}
			}
		}
	}

	logger.Debug("built document", "path", p.Path, "document", doc.String())
	return doc, nil
}

func (p *Plan) addFontFile(doc *printpdf.Document, path string) (printpdf.FontIndex, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	return doc.AddFont(f)
}

func (p *Plan) addSvgFile(doc *printpdf.Document, path string) (printpdf.SvgIndex, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	return doc.AddSvg(f)
}

func (p *Plan) buildError(field string, err error) error {
	return &OpError{
		Op:    "config.build",
		Kind:  KindBuild,
		Path:  p.Path,
		Field: field,
		Err:   err,
	}
}
