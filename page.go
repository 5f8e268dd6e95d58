package printpdf

// Page is a page of a Document. Its layers are painted in the order
// they were added.
type Page struct {
	Width  Pt
	Height Pt

	layers []*Layer
}

func newPage(width, height Mm, layerName string) *Page {
	return &Page{
		Width:  width.Pt(),
		Height: height.Pt(),
		layers: []*Layer{newLayer(layerName)},
	}
}

// Layers returns copies of the layers of the page.
func (p *Page) Layers() []Layer {
	layers := make([]Layer, len(p.layers))
	for i, layer := range p.layers {
		layers[i] = layer.clone()
	}
	return layers
}

func (p *Page) addLayer(name string) int {
	p.layers = append(p.layers, newLayer(name))
	return len(p.layers) - 1
}

func (p *Page) clone() Page {
	c := Page{Width: p.Width, Height: p.Height, layers: make([]*Layer, len(p.layers))}
	for i, layer := range p.layers {
		l := layer.clone()
		c.layers[i] = &l
	}
	return c
}

// mergeLayers flattens the page into a single layer named after the
// first one.
func (p *Page) mergeLayers() {
	if len(p.layers) < 2 {
		return
	}
	merged := newLayer(p.layers[0].Name)
	for _, layer := range p.layers {
		// each layer starts from the default graphics state
		merged.operations = append(merged.operations, wrapGraphicsState(layer.operations)...)
		merged.markers = append(merged.markers, layer.markers...)
		for font := range layer.fonts {
			merged.fonts[font] = true
		}
		for svg := range layer.svgs {
			merged.svgs[svg] = true
		}
	}
	p.layers = []*Layer{merged}
}
