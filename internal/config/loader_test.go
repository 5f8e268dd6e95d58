package config

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/RustWorks/printpdf"
)

func TestLoadYAML(t *testing.T) {
	path := filepath.Join("testdata", "brochure.yaml")
	plan, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if plan.Title != "Brochure" {
		t.Fatalf("expected title Brochure, got %q", plan.Title)
	}
	if plan.Conformance.Identifier != printpdf.NoConformance.Identifier {
		t.Fatalf("expected no conformance, got %v", plan.Conformance)
	}
	if len(plan.Pages) != 2 {
		t.Fatalf("expected two pages, got %d", len(plan.Pages))
	}
	if len(plan.Fonts) != 2 || plan.Fonts[0].Name != "body" || plan.Fonts[1].Name != "heading" {
		t.Fatalf("expected fonts in name order, got %+v", plan.Fonts)
	}
	if got := plan.Pages[1].Layers[0].Name; got != "Layer 1" {
		t.Fatalf("expected default layer name, got %q", got)
	}
	if got := plan.Pages[0].Layers[1].Texts[1].Size; got != 12 {
		t.Fatalf("expected default size 12, got %v", got)
	}
	want := filepath.Join("testdata", "logo.svg")
	if got := plan.Pages[0].Layers[1].Svgs[0].Path; got != want {
		t.Fatalf("expected svg path %q, got %q", want, got)
	}
}

func TestLoadJSONC(t *testing.T) {
	plan, err := Load(filepath.Join("testdata", "brochure.jsonc"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	line := plan.Pages[0].Layers[0].Lines[0]
	if line.Outline == nil || line.Outline.Thickness != 0.5 {
		t.Fatalf("expected outline with thickness 0.5, got %+v", line.Outline)
	}
	if _, ok := line.Outline.Color.(printpdf.Cmyk); !ok {
		t.Fatalf("expected cmyk stroke, got %T", line.Outline.Color)
	}
	if line.Fill != nil || !line.Line.Stroke {
		t.Fatalf("expected a stroked, unfilled line")
	}
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(filepath.Join("testdata", "missing.yaml"))
	if !IsKind(err, KindNotFound) {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestLoadInvalid(t *testing.T) {
	path := filepath.Join("testdata", "invalid_font.yaml")
	_, err := Load(path)
	if !IsKind(err, KindInvalid) {
		t.Fatalf("expected invalid error, got %v", err)
	}
	if !strings.Contains(err.Error(), "pages[0].layers[0].texts[0].font") {
		t.Fatalf("expected field in error, got %v", err)
	}
	if !strings.Contains(err.Error(), path) {
		t.Fatalf("expected path in error, got %v", err)
	}
}

func TestLoadUnknownField(t *testing.T) {
	_, err := Load(filepath.Join("testdata", "unknown_field.yaml"))
	if !IsKind(err, KindInvalid) {
		t.Fatalf("expected invalid error, got %v", err)
	}
	if !strings.Contains(err.Error(), "colour") {
		t.Fatalf("expected unknown field in error, got %v", err)
	}
}

func TestDecodeJSONUnknownField(t *testing.T) {
	_, err := Decode("doc.json", []byte(`{"title": "x", /* note */ "colour": "red"}`))
	if !IsKind(err, KindInvalid) {
		t.Fatalf("expected invalid error, got %v", err)
	}
}
