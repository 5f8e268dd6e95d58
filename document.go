package printpdf

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/RustWorks/printpdf/pdf"
	"github.com/juju/errgo"
)

// Document is a PDF document under construction. It is safe for
// concurrent use; drawing operations on the same layer are applied in
// the order they are called.
type Document struct {
	mu sync.Mutex

	pages []*Page
	fonts []fontResource
	svgs  []*svgXObject

	// inner holds arbitrary content added by the user, the document
	// structure is added to a copy of it on every Save
	inner    *pdf.File
	contents []pdf.ObjectReference
	catalog  pdf.Dictionary

	currentMarker    MarkerIndex
	hasCurrentMarker bool

	metadata   Metadata
	compress   bool
	iccProfile *IccProfile
	logger     *slog.Logger
}

// New creates a document with one page of width by height millimeters
// holding one layer. The document conforms to PDF/X-3:2003 until
// changed with WithConformance.
func New(title string, width, height Mm, layerName string) (*Document, PageIndex, LayerIndex) {
	d := &Document{
		pages:    []*Page{newPage(width, height, layerName)},
		inner:    pdf.New("1.3"),
		catalog:  pdf.Dictionary{},
		metadata: newMetadata(title),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	return d, 0, LayerIndex{Page: 0, Layer: 0}
}

// ----- builders

// WithTrapping sets whether the document has been trapped for print.
func (d *Document) WithTrapping(trapping bool) *Document {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.metadata.Trapping = trapping
	return d
}

// WithDocumentID sets the identifier used to tell whether two files
// are versions of the same document.
func (d *Document) WithDocumentID(id string) *Document {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.metadata.DocumentID = id
	return d
}

func (d *Document) WithDocumentVersion(version uint32) *Document {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.metadata.DocumentVersion = version
	return d
}

// WithConformance changes the standard the document is written for.
// Use CheckForErrors afterwards to find what violates it.
func (d *Document) WithConformance(conformance Conformance) *Document {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.metadata.Conformance = conformance
	return d
}

// WithModDate sets the modification date, for documents that already
// have one.
func (d *Document) WithModDate(t time.Time) *Document {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.metadata.ModificationDate = t
	return d
}

func (d *Document) WithCreationDate(t time.Time) *Document {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.metadata.CreationDate = t
	return d
}

// WithCreator sets the application that created the content.
func (d *Document) WithCreator(creator string) *Document {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.metadata.Creator = creator
	return d
}

// WithProducer sets the application that wrote the PDF.
func (d *Document) WithProducer(producer string) *Document {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.metadata.Producer = producer
	return d
}

func (d *Document) WithAuthor(author string) *Document {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.metadata.Author = author
	return d
}

func (d *Document) WithSubject(subject string) *Document {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.metadata.Subject = subject
	return d
}

func (d *Document) WithKeywords(keywords ...string) *Document {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.metadata.Keywords = append([]string(nil), keywords...)
	return d
}

// WithCompression FlateDecode compresses page contents and SVG forms.
// Fonts and ICC profiles are always compressed, XMP metadata never.
func (d *Document) WithCompression(compress bool) *Document {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.compress = compress
	return d
}

// WithIccProfile embeds profile in the output intent.
func (d *Document) WithIccProfile(profile *IccProfile) *Document {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.iccProfile = profile
	return d
}

// WithLogger sets the logger for saving and repairing. Documents log
// nothing by default.
func (d *Document) WithLogger(logger *slog.Logger) *Document {
	d.mu.Lock()
	defer d.mu.Unlock()
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	d.logger = logger
	return d
}

// SetTitle changes the title in the information dictionary and the XMP
// metadata.
func (d *Document) SetTitle(title string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.metadata.Title = title
}

// Metadata returns a copy of the document metadata.
func (d *Document) Metadata() Metadata {
	d.mu.Lock()
	defer d.mu.Unlock()
	m := d.metadata
	m.Keywords = append([]string(nil), m.Keywords...)
	return m
}

// ----- add

// AddPage appends a page with one layer.
func (d *Document) AddPage(width, height Mm, layerName string) (PageIndex, LayerIndex) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pages = append(d.pages, newPage(width, height, layerName))
	page := PageIndex(len(d.pages) - 1)
	return page, LayerIndex{Page: page, Layer: 0}
}

// AddLayer adds a layer on top of the existing layers of page.
func (d *Document) AddLayer(name string, page PageIndex) (LayerIndex, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	p, err := d.page(page)
	if err != nil {
		return LayerIndex{}, err
	}
	return LayerIndex{Page: page, Layer: p.addLayer(name)}, nil
}

// AddMarker remembers the position x, y on layer.
func (d *Document) AddMarker(x, y Mm, layer LayerIndex) (MarkerIndex, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	l, err := d.layer(layer)
	if err != nil {
		return MarkerIndex{}, err
	}
	return MarkerIndex{Page: layer.Page, Layer: layer.Layer, Marker: l.addMarker(NewMarker(x, y))}, nil
}

// AddArbitraryContent adds obj to the file. It is only written when
// referenced from the document, see ContentReference and
// SetCatalogEntry.
func (d *Document) AddArbitraryContent(obj pdf.Object) (ContentIndex, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	ref, err := d.inner.Add(obj)
	if err != nil {
		return 0, errgo.Mask(err)
	}
	d.contents = append(d.contents, ref)
	return ContentIndex(len(d.contents) - 1), nil
}

// ContentReference returns the reference to arbitrary content, for use
// inside other objects.
func (d *Document) ContentReference(content ContentIndex) (pdf.ObjectReference, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if content < 0 || int(content) >= len(d.contents) {
		return pdf.ObjectReference{}, indexErrorf(ErrContentIndex, "content %d of %d", content, len(d.contents))
	}
	return d.contents[content], nil
}

// SetCatalogEntry adds an entry to the document catalog. Entries
// managed by the document (Type, Pages, Metadata, OutputIntents,
// OCProperties, PageLayout, PageMode) cannot be replaced.
func (d *Document) SetCatalogEntry(key string, obj pdf.Object) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.catalog[pdf.Name(key)] = obj
}

// AddFont reads a TrueType or OpenType font to be embedded.
func (d *Document) AddFont(r io.Reader) (FontIndex, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return 0, errgo.Mask(err)
	}
	font, err := parseTrueType(data)
	if err != nil {
		return 0, errgo.Mask(err, errgo.Is(ErrFont))
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.fonts = append(d.fonts, font)
	return FontIndex(len(d.fonts) - 1), nil
}

// AddBuiltinFont adds one of the standard 14 fonts.
func (d *Document) AddBuiltinFont(font BuiltinFont) (FontIndex, error) {
	if font < 0 || int(font) >= len(builtinFontNames) {
		return 0, errgo.WithCausef(nil, ErrFont, "unknown builtin font %d", int(font))
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.fonts = append(d.fonts, builtinFont{font: font})
	return FontIndex(len(d.fonts) - 1), nil
}

// AddSvg imports an SVG image to be placed with AddSvgAt.
func (d *Document) AddSvg(r io.Reader) (SvgIndex, error) {
	svg, err := parseSvg(r)
	if err != nil {
		return 0, errgo.Mask(err, errgo.Is(ErrSvg))
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.svgs = append(d.svgs, svg)
	return SvgIndex(len(d.svgs) - 1), nil
}

// ----- draw

// UseText writes text of size points at x, y on layer.
func (d *Document) UseText(text string, size float64, x, y Mm, font FontIndex, layer LayerIndex) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	l, err := d.layer(layer)
	if err != nil {
		return err
	}
	return d.showText(l, text, size, NewMarker(x, y), font)
}

// AddText writes text of size points at the position of marker.
func (d *Document) AddText(text string, font FontIndex, size float64, marker MarkerIndex) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	l, m, err := d.marker(marker)
	if err != nil {
		return err
	}
	return d.showText(l, text, size, m, font)
}

// showText adds a text object (§9.4)
func (d *Document) showText(l *Layer, text string, size float64, at Marker, font FontIndex) error {
	f, err := d.font(font)
	if err != nil {
		return err
	}
	encoded, err := f.encode(text)
	if err != nil {
		return errgo.Mask(err, errgo.Is(ErrFont))
	}

	l.add(
		pdf.Op("BT"),
		pdf.Op("Tf", fontResourceName(font), pdf.Real(size)),
		pdf.Op("Td", pdf.Real(at.X), pdf.Real(at.Y)),
		pdf.Op("Tj", pdf.String(encoded)),
		pdf.Op("ET"),
	)
	l.fonts[font] = true
	return nil
}

// AddLine draws line on layer. outline and fill may be nil to keep the
// current colors.
func (d *Document) AddLine(line Line, layer LayerIndex, outline *Outline, fill *Fill) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	l, err := d.layer(layer)
	if err != nil {
		return err
	}

	ops := []pdf.Operation{}
	if outline != nil {
		if outline.Color != nil {
			ops = append(ops, outline.Color.operation(true))
		}
		ops = append(ops, pdf.Op("w", pdf.Real(outline.Thickness)))
	}
	if fill != nil && fill.Color != nil {
		ops = append(ops, fill.Color.operation(false))
	}
	ops = append(ops, line.operations()...)

	l.add(wrapGraphicsState(ops)...)
	return nil
}

// AddSvgAt places svg with its bottom left corner at marker, scaled to
// width by height millimeters. When only one of them is given the aspect
// ratio is kept, when neither is the image keeps its size.
func (d *Document) AddSvgAt(svg SvgIndex, width, height Mm, marker MarkerIndex) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	l, m, err := d.marker(marker)
	if err != nil {
		return err
	}
	if svg < 0 || int(svg) >= len(d.svgs) {
		return indexErrorf(ErrSvgIndex, "svg %d of %d", svg, len(d.svgs))
	}
	form := d.svgs[svg]

	sx, sy := 1.0, 1.0
	if width > 0 {
		sx = float64(width.Pt()) / form.width
	}
	if height > 0 {
		sy = float64(height.Pt()) / form.height
	}
	switch {
	case width > 0 && height <= 0:
		sy = sx
	case height > 0 && width <= 0:
		sx = sy
	}

	l.add(
		pdf.Op("q"),
		pdf.Op("cm", pdf.Real(sx), pdf.Real(0), pdf.Real(0), pdf.Real(sy), pdf.Real(m.X), pdf.Real(m.Y)),
		pdf.Op("Do", svgResourceName(svg)),
		pdf.Op("Q"),
	)
	l.svgs[svg] = true
	return nil
}

// SetCurrentMarker remembers marker for CurrentMarker.
func (d *Document) SetCurrentMarker(marker MarkerIndex) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, _, err := d.marker(marker); err != nil {
		return err
	}
	d.currentMarker = marker
	d.hasCurrentMarker = true
	return nil
}

// CurrentMarker returns the marker set with SetCurrentMarker.
func (d *Document) CurrentMarker() (MarkerIndex, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.hasCurrentMarker {
		return MarkerIndex{}, indexErrorf(ErrMarkerIndex, "no current marker")
	}
	return d.currentMarker, nil
}

// ----- get

// PageCount returns the number of pages.
func (d *Document) PageCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pages)
}

// Page returns a copy of the page.
func (d *Document) Page(page PageIndex) (Page, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	p, err := d.page(page)
	if err != nil {
		return Page{}, err
	}
	return p.clone(), nil
}

// Layer returns a copy of the layer.
func (d *Document) Layer(layer LayerIndex) (Layer, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	l, err := d.layer(layer)
	if err != nil {
		return Layer{}, err
	}
	return l.clone(), nil
}

// Marker returns the position of the marker.
func (d *Document) Marker(marker MarkerIndex) (Marker, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, m, err := d.marker(marker)
	return m, err
}

func (d *Document) page(page PageIndex) (*Page, error) {
	if page < 0 || int(page) >= len(d.pages) {
		return nil, indexErrorf(ErrPageIndex, "page %d of %d", page, len(d.pages))
	}
	return d.pages[page], nil
}

func (d *Document) layer(layer LayerIndex) (*Layer, error) {
	p, err := d.page(layer.Page)
	if err != nil {
		return nil, err
	}
	if layer.Layer < 0 || layer.Layer >= len(p.layers) {
		return nil, indexErrorf(ErrLayerIndex, "layer %d of %d on page %d", layer.Layer, len(p.layers), layer.Page)
	}
	return p.layers[layer.Layer], nil
}

func (d *Document) marker(marker MarkerIndex) (*Layer, Marker, error) {
	l, err := d.layer(marker.LayerIndex())
	if err != nil {
		return nil, Marker{}, err
	}
	if marker.Marker < 0 || marker.Marker >= len(l.markers) {
		return nil, Marker{}, indexErrorf(ErrMarkerIndex, "marker %d of %d", marker.Marker, len(l.markers))
	}
	return l, l.markers[marker.Marker], nil
}

func (d *Document) font(font FontIndex) (fontResource, error) {
	if font < 0 || int(font) >= len(d.fonts) {
		return nil, indexErrorf(ErrFontIndex, "font %d of %d", font, len(d.fonts))
	}
	return d.fonts[font], nil
}

func fontResourceName(font FontIndex) pdf.Name {
	return pdf.Name(fmt.Sprintf("F%d", font))
}

func svgResourceName(svg SvgIndex) pdf.Name {
	return pdf.Name(fmt.Sprintf("X%d", svg))
}

// ----- conformance

// CheckForErrors reports everything in the document that violates its
// conformance. The error's cause is ErrConformance.
func (d *Document) CheckForErrors() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return violationsError(d.violations(d.metadata.Conformance))
}

// RepairErrors changes the conformance of the document and then the
// document until it conforms: layers are merged and RGB colors are
// converted to CMYK where needed. Violations that cannot be repaired,
// like fonts that are not embedded, are returned with the cause
// ErrConformance.
func (d *Document) RepairErrors(conformance Conformance) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.metadata.Conformance = conformance

	// a repair may replace what other violations refer to,
	// so look again after each one
	for {
		var repair *violation
		var unrepairable []violation
		for _, v := range d.violations(conformance) {
			v := v
			switch {
			case v.repair == nil:
				unrepairable = append(unrepairable, v)
			case repair == nil:
				repair = &v
			}
		}
		if repair == nil {
			return violationsError(unrepairable)
		}
		d.logger.Info("repairing document", "conformance", conformance.String(), "violation", repair.message)
		repair.repair()
	}
}

func violationsError(violations []violation) error {
	if len(violations) == 0 {
		return nil
	}
	messages := make([]string, len(violations))
	for i, v := range violations {
		messages[i] = v.message
	}
	return errgo.WithCausef(nil, ErrConformance, "%s", strings.Join(messages, "; "))
}

// String describes the document for logging.
func (d *Document) String() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return fmt.Sprintf("%q (%s, %d pages, %d fonts, %d svgs)", d.metadata.Title, d.metadata.Conformance, len(d.pages), len(d.fonts), len(d.svgs))
}
