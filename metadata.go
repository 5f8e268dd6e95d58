package printpdf

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/RustWorks/printpdf/pdf"
	"github.com/google/uuid"
)

// Metadata is written to the document information dictionary and the
// XMP metadata stream.
type Metadata struct {
	Title    string
	Author   string
	Creator  string
	Producer string
	Subject  string
	Keywords []string

	Trapping        bool
	DocumentVersion uint32
	Conformance     Conformance

	CreationDate     time.Time
	ModificationDate time.Time

	// DocumentID identifies the document across versions, it is the
	// XMP DocumentID and the source of the first trailer ID.
	DocumentID string

	// RenditionClass is the XMP rendition class, "default" when empty.
	RenditionClass string
}

func newMetadata(title string) Metadata {
	now := time.Now()
	return Metadata{
		Title:            title,
		DocumentVersion:  1,
		Conformance:      PdfX32003,
		CreationDate:     now,
		ModificationDate: now,
		DocumentID:       "uuid:" + uuid.NewString(),
	}
}

// pdfDate formats t as a PDF date string (§7.9.4),
// e.g. D:20170505150224+02'00'
func pdfDate(t time.Time) pdf.String {
	_, offset := t.Zone()
	sign := '+'
	if offset < 0 {
		sign = '-'
		offset = -offset
	}
	return pdf.String(fmt.Sprintf("D:%s%c%02d'%02d'", t.Format("20060102150405"), sign, offset/3600, offset%3600/60))
}

func trapped(trapping bool) pdf.Name {
	if trapping {
		return "True"
	}
	return "False"
}

// infoDictionary is the document information dictionary (§14.3.3)
func (m Metadata) infoDictionary() pdf.Dictionary {
	info := pdf.Dictionary{
		pdf.Name("Title"):        pdf.String(m.Title),
		pdf.Name("CreationDate"): pdfDate(m.CreationDate),
		pdf.Name("ModDate"):      pdfDate(m.ModificationDate),
		pdf.Name("Trapped"):      trapped(m.Trapping),
	}
	optional := map[string]string{
		"Author":   m.Author,
		"Creator":  m.Creator,
		"Producer": m.Producer,
		"Subject":  m.Subject,
		"Keywords": strings.Join(m.Keywords, ", "),
	}
	for name, value := range optional {
		if value != "" {
			info[pdf.Name(name)] = pdf.String(value)
		}
	}
	if m.Conformance.pdfxVersion != "" {
		info[pdf.Name("GTS_PDFXVersion")] = pdf.String(m.Conformance.pdfxVersion)
	}
	if m.Conformance.pdfxConformance != "" {
		info[pdf.Name("GTS_PDFXConformance")] = pdf.String(m.Conformance.pdfxConformance)
	}
	return info
}

var xmpTemplate = template.Must(template.New("xmp").Funcs(template.FuncMap{
	"x":    xmlEscape,
	"date": func(t time.Time) string { return t.Format(time.RFC3339) },
}).Parse(`<?xpacket begin="` + "\ufeff" + `" id="W5M0MpCehiHzreSzNTczkc9d"?>
<x:xmpmeta xmlns:x="adobe:ns:meta/">
<rdf:RDF xmlns:rdf="http://www.w3.org/1999/02/22-rdf-syntax-ns#">
<rdf:Description rdf:about=""
 xmlns:dc="http://purl.org/dc/elements/1.1/"
 xmlns:xmp="http://ns.adobe.com/xap/1.0/"
 xmlns:pdf="http://ns.adobe.com/pdf/1.3/"
 xmlns:xmpMM="http://ns.adobe.com/xap/1.0/mm/"
 xmlns:pdfxid="http://www.npes.org/pdfx/ns/id/"
 xmlns:pdfaid="http://www.aiim.org/pdfa/ns/id/">
<dc:format>application/pdf</dc:format>
<dc:title><rdf:Alt><rdf:li xml:lang="x-default">{{x .Title}}</rdf:li></rdf:Alt></dc:title>
{{- if .Author}}
<dc:creator><rdf:Seq><rdf:li>{{x .Author}}</rdf:li></rdf:Seq></dc:creator>
{{- end}}
{{- if .Subject}}
<dc:description><rdf:Alt><rdf:li xml:lang="x-default">{{x .Subject}}</rdf:li></rdf:Alt></dc:description>
{{- end}}
<xmp:CreateDate>{{date .CreationDate}}</xmp:CreateDate>
<xmp:ModifyDate>{{date .ModificationDate}}</xmp:ModifyDate>
<xmp:MetadataDate>{{date .ModificationDate}}</xmp:MetadataDate>
{{- if .Creator}}
<xmp:CreatorTool>{{x .Creator}}</xmp:CreatorTool>
{{- end}}
{{- if .Producer}}
<pdf:Producer>{{x .Producer}}</pdf:Producer>
{{- end}}
{{- if .Keywords}}
<pdf:Keywords>{{x .Keywords}}</pdf:Keywords>
{{- end}}
<pdf:Trapped>{{.Trapped}}</pdf:Trapped>
<xmpMM:DocumentID>{{x .DocumentID}}</xmpMM:DocumentID>
<xmpMM:InstanceID>{{x .InstanceID}}</xmpMM:InstanceID>
<xmpMM:VersionID>{{.DocumentVersion}}</xmpMM:VersionID>
<xmpMM:RenditionClass>{{x .RenditionClass}}</xmpMM:RenditionClass>
{{- if .PdfxVersion}}
<pdfxid:GTS_PDFXVersion>{{x .PdfxVersion}}</pdfxid:GTS_PDFXVersion>
{{- end}}
{{- if .PdfaPart}}
<pdfaid:part>{{.PdfaPart}}</pdfaid:part>
<pdfaid:conformance>{{.PdfaConformance}}</pdfaid:conformance>
{{- end}}
</rdf:Description>
</rdf:RDF>
</x:xmpmeta>
<?xpacket end="w"?>`))

func xmlEscape(s string) string {
	buf := &strings.Builder{}
	xml.EscapeText(buf, []byte(s))
	return buf.String()
}

// xmp renders the XMP metadata packet (§14.3.2) for one saved instance
func (m Metadata) xmp(instanceID string) ([]byte, error) {
	renditionClass := m.RenditionClass
	if renditionClass == "" {
		renditionClass = "default"
	}

	buf := &bytes.Buffer{}
	err := xmpTemplate.Execute(buf, struct {
		Metadata
		Keywords        string
		Trapped         pdf.Name
		InstanceID      string
		RenditionClass  string
		PdfxVersion     string
		PdfaPart        int
		PdfaConformance string
	}{
		Metadata:        m,
		Keywords:        strings.Join(m.Keywords, ", "),
		Trapped:         trapped(m.Trapping),
		InstanceID:      instanceID,
		RenditionClass:  renditionClass,
		PdfxVersion:     m.Conformance.pdfxVersion,
		PdfaPart:        m.Conformance.pdfaPart,
		PdfaConformance: m.Conformance.pdfaConformance,
	})
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// xmpStream is the metadata stream, never compressed so tools that do
// not understand PDF can find it.
func (m Metadata) xmpStream(instanceID string) (pdf.Stream, error) {
	packet, err := m.xmp(instanceID)
	if err != nil {
		return pdf.Stream{}, err
	}
	return pdf.Stream{
		Dictionary: pdf.Dictionary{
			pdf.Name("Type"):    pdf.Name("Metadata"),
			pdf.Name("Subtype"): pdf.Name("XML"),
		},
		Stream: packet,
	}, nil
}
