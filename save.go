package printpdf

import (
	"encoding/hex"
	"fmt"
	"io"

	"github.com/RustWorks/printpdf/pdf"
	"github.com/google/uuid"
	"github.com/juju/errgo"
	"github.com/zeebo/blake3"
)

// Save writes the document to w. The document is not changed and can be
// saved again.
//
// Objects that are not reachable from the catalog or the information
// dictionary are dropped, and so are empty streams.
func (d *Document) Save(w io.Writer) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	conformance := d.metadata.Conformance
	version := conformance.Version
	if version == "" {
		version = "1.7"
	}

	f := d.inner.Clone()
	f.SetVersion(version)

	pagesRef := f.Reserve()

	fontRefs := make([]pdf.ObjectReference, len(d.fonts))
	for i, font := range d.fonts {
		ref, err := font.write(f)
		if err != nil {
			return errgo.NoteMask(err, fmt.Sprintf("font %d", i), errgo.Any)
		}
		fontRefs[i] = ref
	}

	svgRefs := make([]pdf.ObjectReference, len(d.svgs))
	for i, svg := range d.svgs {
		ref, err := svg.write(f, d.compress)
		if err != nil {
			return errgo.NoteMask(err, fmt.Sprintf("svg %d", i), errgo.Any)
		}
		svgRefs[i] = ref
	}

	kids := pdf.Array{}
	ocgs := pdf.Array{}
	for i, page := range d.pages {
		// only pages with several layers get optional content groups
		optionalContent := len(page.layers) > 1 && conformance.AllowsLayers
		if len(page.layers) > 1 && !conformance.AllowsLayers {
			d.logger.Warn("flattening layers", "page", i, "layers", len(page.layers), "conformance", conformance.String())
		}

		ref, pageOCGs, err := d.writePage(f, page, pagesRef, fontRefs, svgRefs, optionalContent)
		if err != nil {
			return errgo.Mask(err, errgo.Any)
		}
		kids = append(kids, ref)
		ocgs = append(ocgs, pageOCGs...)
	}

	_, err := f.Add(pdf.IndirectObject{
		ObjectReference: pagesRef,
		Object: pdf.Dictionary{
			pdf.Name("Type"):  pdf.Name("Pages"),
			pdf.Name("Count"): pdf.Integer(len(kids)),
			pdf.Name("Kids"):  kids,
		},
	})
	if err != nil {
		return errgo.Mask(err)
	}

	infoRef, err := f.Add(d.metadata.infoDictionary())
	if err != nil {
		return errgo.Mask(err)
	}

	catalog := pdf.Dictionary{}
	for name, obj := range d.catalog {
		catalog[name] = obj
	}
	catalog[pdf.Name("Type")] = pdf.Name("Catalog")
	catalog[pdf.Name("PageLayout")] = pdf.Name("OneColumn")
	catalog[pdf.Name("PageMode")] = pdf.Name("UseNone")
	catalog[pdf.Name("Pages")] = pagesRef
	delete(catalog, pdf.Name("Metadata"))
	delete(catalog, pdf.Name("OutputIntents"))
	delete(catalog, pdf.Name("OCProperties"))

	if conformance.RequiresXMP {
		xmp, err := d.metadata.xmpStream("uuid:" + uuid.NewString())
		if err != nil {
			return errgo.Notef(err, "xmp metadata")
		}
		xmpRef, err := f.Add(xmp)
		if err != nil {
			return errgo.Mask(err)
		}
		catalog[pdf.Name("Metadata")] = xmpRef
	}

	if conformance.OutputIntent != "" {
		intent, err := outputIntent(f, conformance.OutputIntent, d.iccProfile)
		if err != nil {
			return errgo.Notef(err, "output intent")
		}
		catalog[pdf.Name("OutputIntents")] = pdf.Array{intent}
	} else if d.iccProfile != nil {
		d.logger.Debug("icc profile not written, conformance has no output intent", "conformance", conformance.String())
	}

	if len(ocgs) != 0 {
		// §8.11.4
		catalog[pdf.Name("OCProperties")] = pdf.Dictionary{
			pdf.Name("OCGs"): ocgs,
			pdf.Name("D"): pdf.Dictionary{
				pdf.Name("Order"):     ocgs,
				pdf.Name("BaseState"): pdf.Name("ON"),
			},
		}
	}

	catalogRef, err := f.Add(catalog)
	if err != nil {
		return errgo.Mask(err)
	}

	f.Root = catalogRef
	f.Info = infoRef
	pruned := f.Prune()
	deleted := f.DeleteZeroLengthStreams()

	// the instance identifier is a hash of the file written with only
	// the document identifier
	documentID := fileIdentifier([]byte(d.metadata.DocumentID))
	f.ID = pdf.Array{documentID}
	hasher := blake3.New()
	if _, err := f.WriteTo(hasher); err != nil {
		return errgo.Mask(err)
	}
	f.ID = pdf.Array{documentID, fileIdentifier(hasher.Sum(nil))}

	n, err := f.WriteTo(w)
	if err != nil {
		return errgo.Mask(err, errgo.Any)
	}

	d.logger.Debug("saved document",
		"title", d.metadata.Title,
		"conformance", conformance.String(),
		"pages", len(d.pages),
		"objects", f.Len(),
		"pruned", pruned,
		"empty_streams", deleted,
		"bytes", n,
	)
	return nil
}

// writePage adds the content stream and page dictionary of page to f.
// When optionalContent is set every layer becomes an optional content
// group, which are returned.
func (d *Document) writePage(f *pdf.File, page *Page, parent pdf.ObjectReference, fontRefs, svgRefs []pdf.ObjectReference, optionalContent bool) (pdf.ObjectReference, pdf.Array, error) {
	fonts := pdf.Dictionary{}
	xobjects := pdf.Dictionary{}
	properties := pdf.Dictionary{}
	ocgs := pdf.Array{}

	var ops []pdf.Operation
	for i, layer := range page.layers {
		for font := range layer.fonts {
			fonts[fontResourceName(font)] = fontRefs[font]
		}
		for svg := range layer.svgs {
			xobjects[svgResourceName(svg)] = svgRefs[svg]
		}

		if !optionalContent {
			ops = append(ops, wrapGraphicsState(layer.operations)...)
			continue
		}

		ocg, err := f.Add(pdf.Dictionary{
			pdf.Name("Type"): pdf.Name("OCG"),
			pdf.Name("Name"): pdf.String(layer.Name),
		})
		if err != nil {
			return pdf.ObjectReference{}, nil, errgo.Mask(err)
		}
		ocgs = append(ocgs, ocg)

		// marked content tied to the group (§8.11.3.2)
		property := pdf.Name(fmt.Sprintf("OC%d", i))
		properties[property] = ocg
		ops = append(ops, pdf.Op("BDC", pdf.Name("OC"), property))
		ops = append(ops, wrapGraphicsState(layer.operations)...)
		ops = append(ops, pdf.Op("EMC"))
	}

	content, err := pdf.EncodeContent(ops)
	if err != nil {
		return pdf.ObjectReference{}, nil, errgo.Mask(err)
	}
	stream := pdf.Stream{Stream: content}
	if d.compress && len(content) != 0 {
		stream, err = stream.Compress()
		if err != nil {
			return pdf.ObjectReference{}, nil, errgo.Mask(err)
		}
	}
	contentsRef, err := f.Add(stream)
	if err != nil {
		return pdf.ObjectReference{}, nil, errgo.Mask(err)
	}

	resources := pdf.Dictionary{}
	for name, dict := range map[pdf.Name]pdf.Dictionary{
		"Font":       fonts,
		"XObject":    xobjects,
		"Properties": properties,
	} {
		if len(dict) != 0 {
			resources[name] = dict
		}
	}

	box := pdf.Array{pdf.Integer(0), pdf.Integer(0), pdf.Real(page.Width), pdf.Real(page.Height)}
	ref, err := f.Add(pdf.Dictionary{
		pdf.Name("Type"):      pdf.Name("Page"),
		pdf.Name("Parent"):    parent,
		pdf.Name("Rotate"):    pdf.Integer(0),
		pdf.Name("MediaBox"):  box,
		pdf.Name("TrimBox"):   box,
		pdf.Name("CropBox"):   box,
		pdf.Name("Resources"): resources,
		pdf.Name("Contents"):  contentsRef,
	})
	if err != nil {
		return pdf.ObjectReference{}, nil, errgo.Mask(err)
	}
	return ref, ocgs, nil
}

// fileIdentifier is 32 hexadecimal digits derived from data
func fileIdentifier(data []byte) pdf.String {
	sum := blake3.Sum256(data)
	return pdf.String(hex.EncodeToString(sum[:16]))
}
