package config

// Description is the file format of a document description, read from
// YAML or JSON with comments. Lengths are in millimeters.
type Description struct {
	Title       string   `yaml:"title" json:"title"`
	Conformance string   `yaml:"conformance" json:"conformance"`
	Compress    bool     `yaml:"compress" json:"compress"`
	Author      string   `yaml:"author" json:"author"`
	Creator     string   `yaml:"creator" json:"creator"`
	Producer    string   `yaml:"producer" json:"producer"`
	Subject     string   `yaml:"subject" json:"subject"`
	Keywords    []string `yaml:"keywords" json:"keywords"`
	DocumentID  string   `yaml:"document_id" json:"document_id"`
	IccProfile  string   `yaml:"icc_profile" json:"icc_profile"`

	Fonts map[string]FontDescription `yaml:"fonts" json:"fonts"`
	Pages []PageDescription          `yaml:"pages" json:"pages"`
}

// FontDescription names either a builtin font or a font file, relative
// to the description.
type FontDescription struct {
	Builtin string `yaml:"builtin" json:"builtin"`
	Path    string `yaml:"path" json:"path"`
}

type PageDescription struct {
	Width  float64            `yaml:"width" json:"width"`
	Height float64            `yaml:"height" json:"height"`
	Layers []LayerDescription `yaml:"layers" json:"layers"`
}

type LayerDescription struct {
	Name  string            `yaml:"name" json:"name"`
	Texts []TextDescription `yaml:"texts" json:"texts"`
	Lines []LineDescription `yaml:"lines" json:"lines"`
	Svgs  []SvgDescription  `yaml:"svgs" json:"svgs"`
}

type TextDescription struct {
	Text string  `yaml:"text" json:"text"`
	Font string  `yaml:"font" json:"font"`
	Size float64 `yaml:"size" json:"size"`
	X    float64 `yaml:"x" json:"x"`
	Y    float64 `yaml:"y" json:"y"`
}

type LineDescription struct {
	Points    []PointDescription `yaml:"points" json:"points"`
	Closed    bool               `yaml:"closed" json:"closed"`
	Fill      string             `yaml:"fill" json:"fill"`
	Stroke    string             `yaml:"stroke" json:"stroke"`
	Thickness float64            `yaml:"thickness" json:"thickness"`
}

type PointDescription struct {
	X      float64 `yaml:"x" json:"x"`
	Y      float64 `yaml:"y" json:"y"`
	Bezier bool    `yaml:"bezier" json:"bezier"`
}

type SvgDescription struct {
	Path   string  `yaml:"path" json:"path"`
	X      float64 `yaml:"x" json:"x"`
	Y      float64 `yaml:"y" json:"y"`
	Width  float64 `yaml:"width" json:"width"`
	Height float64 `yaml:"height" json:"height"`
}
