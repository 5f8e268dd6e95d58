package pdf

import (
	"bytes"
	"encoding/ascii85"
	"encoding/hex"
	"io"

	"github.com/juju/errgo"
	"github.com/klauspost/compress/zlib"
)

// TODO: LZWDecode, which needs the early change variant of lzw.

// Decode decodes the stream data using the filters in the stream's dictionary.
func (s Stream) Decode() ([]byte, error) {
	filters, parameters, err := s.filters()
	if err != nil {
		return nil, err
	}

	// apply the filters
	stream := s.Stream
	for i, filter := range filters {
		decoder, ok := decoders[filter]
		if !ok {
			return nil, errgo.WithCausef(nil, ErrUnsupported, "no decoder for %s", filter)
		}

		parameter := Dictionary{}
		if i < len(parameters) {
			parameter = parameters[i]
		}

		stream, err = decoder(stream, parameter)
		if err != nil {
			return nil, pushErrf(err, "%s", filter)
		}
	}

	return stream, nil
}

// Compress returns a copy of the stream with its data FlateDecode
// encoded. Streams that already have a filter are returned unchanged.
func (s Stream) Compress() (Stream, error) {
	if _, ok := s.Dictionary[Name("Filter")]; ok {
		return s, nil
	}

	buf := &bytes.Buffer{}
	w, err := zlib.NewWriterLevel(buf, zlib.BestCompression)
	if err != nil {
		return s, maskErr(err)
	}
	if _, err := w.Write(s.Stream); err != nil {
		return s, maskErr(err)
	}
	if err := w.Close(); err != nil {
		return s, maskErr(err)
	}

	dict := make(Dictionary, len(s.Dictionary)+1)
	for name, obj := range s.Dictionary {
		dict[name] = obj
	}
	dict[Name("Filter")] = Name("FlateDecode")

	return Stream{Dictionary: dict, Stream: buf.Bytes()}, nil
}

// extract the list of filters and their parameters
func (s Stream) filters() ([]Name, []Dictionary, error) {
	filters := []Name{}
	switch streamFilter := s.Dictionary[Name("Filter")].(type) {
	case nil:
	case Name:
		filters = append(filters, streamFilter)
	case Array:
		for _, filter := range streamFilter {
			name, ok := filter.(Name)
			if !ok {
				return nil, nil, malformedf("filter %v is not a name", filter)
			}
			filters = append(filters, name)
		}
	default:
		return nil, nil, malformedf("unhandled filter type %T", streamFilter)
	}

	parameters := []Dictionary{}
	switch streamParameter := s.Dictionary[Name("DecodeParms")].(type) {
	case nil:
	case Dictionary:
		parameters = append(parameters, streamParameter)
	case Array:
		for _, parameter := range streamParameter {
			dict, _ := parameter.(Dictionary)
			parameters = append(parameters, dict)
		}
	default:
		return nil, nil, malformedf("unhandled DecodeParms type %T", streamParameter)
	}

	return filters, parameters, nil
}

var decoders = map[Name]func([]byte, Dictionary) ([]byte, error){
	Name("ASCII85Decode"): func(encoded []byte, dict Dictionary) ([]byte, error) {
		// strip the end of data marker
		if i := bytes.Index(encoded, []byte("~>")); i >= 0 {
			encoded = encoded[:i]
		}
		return io.ReadAll(ascii85.NewDecoder(bytes.NewReader(encoded)))
	},
	Name("ASCIIHexDecode"): func(encoded []byte, dict Dictionary) ([]byte, error) {
		digits := make([]byte, 0, len(encoded))
		for _, c := range encoded {
			if c == '>' {
				break
			}
			if isHexDigit(c) {
				digits = append(digits, c)
			}
		}
		if len(digits)%2 == 1 {
			digits = append(digits, '0')
		}
		decoded := make([]byte, len(digits)/2)
		_, err := hex.Decode(decoded, digits)
		return decoded, err
	},
	Name("FlateDecode"): func(encoded []byte, dict Dictionary) ([]byte, error) {
		r, err := zlib.NewReader(bytes.NewReader(encoded))
		if err != nil {
			return nil, maskErr(err)
		}
		defer r.Close()

		decoded, err := io.ReadAll(r)
		if err != nil && len(decoded) == 0 {
			return nil, maskErr(err)
		}
		return unpredict(decoded, dict)
	},
}

// unpredict reverses the PNG predictors of §7.4.4.4 Table 8.
// TIFF predictor 2 is not supported.
func unpredict(data []byte, dict Dictionary) ([]byte, error) {
	predictor, _ := dict[Name("Predictor")].(Integer)
	if predictor < 10 {
		if predictor == 2 {
			return nil, errgo.WithCausef(nil, ErrUnsupported, "TIFF predictor")
		}
		return data, nil
	}

	columns := 1
	if c, ok := dict[Name("Columns")].(Integer); ok {
		columns = int(c)
	}
	colors := 1
	if c, ok := dict[Name("Colors")].(Integer); ok {
		colors = int(c)
	}
	bpc := 8
	if b, ok := dict[Name("BitsPerComponent")].(Integer); ok {
		bpc = int(b)
	}

	if columns <= 0 || colors <= 0 {
		return nil, malformedf("predictor with %d columns of %d colors", columns, colors)
	}
	switch bpc {
	case 1, 2, 4, 8, 16:
	default:
		return nil, malformedf("predictor with %d bits per component", bpc)
	}
	if len(data) == 0 {
		return data, nil
	}

	bpp := (colors*bpc + 7) / 8
	rowLength := (columns*colors*bpc + 7) / 8
	stride := rowLength + 1
	if rowLength <= 0 || stride > len(data) || len(data)%stride != 0 {
		return nil, malformedf("predicted data length %d is not a multiple of %d", len(data), stride)
	}

	out := make([]byte, 0, len(data)/stride*rowLength)
	prev := make([]byte, rowLength)
	for start := 0; start < len(data); start += stride {
		filter := data[start]
		row := make([]byte, rowLength)
		copy(row, data[start+1:start+stride])

		for i := range row {
			var left, upLeft byte
			if i >= bpp {
				left = row[i-bpp]
				upLeft = prev[i-bpp]
			}
			up := prev[i]

			switch filter {
			case 0: // None
			case 1: // Sub
				row[i] += left
			case 2: // Up
				row[i] += up
			case 3: // Average
				row[i] += byte((int(left) + int(up)) / 2)
			case 4: // Paeth
				row[i] += paeth(left, up, upLeft)
			default:
				return nil, malformedf("unknown png filter %d", filter)
			}
		}

		out = append(out, row...)
		prev = row
	}

	return out, nil
}

func paeth(a, b, c byte) byte {
	p := int(a) + int(b) - int(c)
	pa, pb, pc := abs(p-int(a)), abs(p-int(b)), abs(p-int(c))
	switch {
	case pa <= pb && pa <= pc:
		return a
	case pb <= pc:
		return b
	}
	return c
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
