package printpdf

import (
	"github.com/juju/errgo"
)

// Causes of errors returned by Document methods. Test for them with
// errgo.Cause.
var (
	ErrPageIndex    = errgo.New("page index out of range")
	ErrLayerIndex   = errgo.New("layer index out of range")
	ErrMarkerIndex  = errgo.New("marker index out of range")
	ErrFontIndex    = errgo.New("font index out of range")
	ErrSvgIndex     = errgo.New("svg index out of range")
	ErrContentIndex = errgo.New("content index out of range")

	// ErrFont is the cause when font data cannot be used.
	ErrFont = errgo.New("invalid font")

	// ErrSvg is the cause when SVG data cannot be imported.
	ErrSvg = errgo.New("invalid svg")

	// ErrConformance is the cause when a document does not meet the
	// requirements of its conformance.
	ErrConformance = errgo.New("conformance violation")
)

func indexErrorf(cause error, format string, args ...interface{}) error {
	return errgo.WithCausef(nil, cause, format, args...)
}
