package printpdf

import (
	"io"

	"github.com/RustWorks/printpdf/pdf"
	"github.com/juju/errgo"
)

// IccProfile is the destination profile of the document's output
// intent (§14.11.5).
type IccProfile struct {
	Data []byte

	// Components is 3 for RGB and 4 for CMYK profiles.
	Components int

	// OutputConditionIdentifier and Info describe the characterized
	// printing condition. Defaults depend on Components.
	OutputConditionIdentifier string
	Info                      string
}

// NewIccProfile reads an ICC profile with the given number of color
// components.
func NewIccProfile(r io.Reader, components int) (*IccProfile, error) {
	if components != 1 && components != 3 && components != 4 {
		return nil, errgo.Newf("an icc profile has 1, 3 or 4 components, not %d", components)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errgo.Mask(err)
	}
	return &IccProfile{Data: data, Components: components}, nil
}

func (p *IccProfile) alternate() pdf.Name {
	switch p.Components {
	case 1:
		return "DeviceGray"
	case 3:
		return "DeviceRGB"
	}
	return "DeviceCMYK"
}

func (p *IccProfile) write(f *pdf.File) (pdf.ObjectReference, error) {
	stream, err := pdf.Stream{
		Dictionary: pdf.Dictionary{
			pdf.Name("N"):         pdf.Integer(p.Components),
			pdf.Name("Alternate"): p.alternate(),
		},
		Stream: p.Data,
	}.Compress()
	if err != nil {
		return pdf.ObjectReference{}, errgo.Mask(err)
	}
	return f.Add(stream)
}

const (
	fograIdentifier = "FOGRA39"
	fograInfo       = "Coated FOGRA39 (ISO 12647-2:2004)"
	fograCondition  = "Commercial and special offset print according to ISO 12647-2:2004 / Amd 1, " +
		"paper type 1 or 2 (matte or gloss-coated offset paper, 115 g/m2), screen ruling 60/cm"

	srgbIdentifier = "sRGB IEC61966-2.1"
)

// outputIntent builds the output intent dictionary (§14.11.5), adding
// the profile to f when there is one.
func outputIntent(f *pdf.File, subtype pdf.Name, profile *IccProfile) (pdf.Dictionary, error) {
	identifier, info, condition := fograIdentifier, fograInfo, fograCondition
	if profile != nil && profile.Components == 3 {
		identifier, info, condition = srgbIdentifier, srgbIdentifier, srgbIdentifier
	}
	if profile != nil && profile.OutputConditionIdentifier != "" {
		identifier = profile.OutputConditionIdentifier
	}
	if profile != nil && profile.Info != "" {
		info = profile.Info
	}

	intent := pdf.Dictionary{
		pdf.Name("Type"):                      pdf.Name("OutputIntent"),
		pdf.Name("S"):                         subtype,
		pdf.Name("OutputCondition"):           pdf.String(condition),
		pdf.Name("OutputConditionIdentifier"): pdf.String(identifier),
		pdf.Name("RegistryName"):              pdf.String("http://www.color.org"),
		pdf.Name("Info"):                      pdf.String(info),
	}

	if profile != nil {
		ref, err := profile.write(f)
		if err != nil {
			return nil, err
		}
		intent[pdf.Name("DestinationOutputProfile")] = ref
	}
	return intent, nil
}
