/*
Package printpdf creates PDF documents page by page.

A Document starts with one page holding one layer. Content (text, lines,
SVG graphics) is drawn onto layers, addressed by the indices returned when
pages, layers and markers are added:

	doc, page, layer := printpdf.New("Report", 210, 297, "Layer 1")
	font, err := doc.AddBuiltinFont(printpdf.Helvetica)
	...
	err = doc.UseText("Hello", 24, 20, 270, font, layer)
	...
	err = doc.Save(w)

Positions and sizes are in millimeters (Mm) measured from the bottom left
corner of the page; they are converted to points (Pt) when written.

Layers become optional content groups (§8.11) when the document's
conformance allows them; otherwise they are flattened into the page.
*/
package printpdf
