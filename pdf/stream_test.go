package pdf

import (
	"bytes"
	"testing"

	"github.com/juju/errgo"
)

func TestCompressRoundTrip(t *testing.T) {
	original := Stream{
		Dictionary: Dictionary{Name("Type"): Name("XObject")},
		Stream:     bytes.Repeat([]byte("0 0 m 100 100 l S\n"), 50),
	}

	compressed, err := original.Compress()
	if err != nil {
		t.Fatal(err)
	}

	if compressed.Dictionary[Name("Filter")] != Name("FlateDecode") {
		t.Errorf("expected FlateDecode filter, got %v", compressed.Dictionary[Name("Filter")])
	}
	if _, ok := original.Dictionary[Name("Filter")]; ok {
		t.Error("Compress modified the original dictionary")
	}
	if len(compressed.Stream) >= len(original.Stream) {
		t.Errorf("expected compressed data to be smaller, %d >= %d", len(compressed.Stream), len(original.Stream))
	}

	decoded, err := compressed.Decode()
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(decoded, original.Stream) {
		t.Errorf("round trip changed the data")
	}

	// already filtered streams are left alone
	again, err := compressed.Compress()
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(again.Stream, compressed.Stream) {
		t.Error("compressed twice")
	}
}

// §7.4.2, §7.4.3
func TestASCIIFilters(t *testing.T) {
	tests := []struct {
		filter  Object
		encoded string
		decoded string
	}{
		{Name("ASCIIHexDecode"), "48 65 6C6c6F>", "Hello"},
		{Name("ASCIIHexDecode"), "7>", "p"},
		{Name("ASCII85Decode"), "87cURD]i,\"Ebo80~>", "Hello World"},
		{Array{Name("ASCIIHexDecode")}, "4869>", "Hi"},
	}

	for i, test := range tests {
		stream := Stream{
			Dictionary: Dictionary{Name("Filter"): test.filter},
			Stream:     []byte(test.encoded),
		}
		decoded, err := stream.Decode()
		if err != nil {
			t.Errorf("%d: %v", i, err)
			continue
		}
		if string(decoded) != test.decoded {
			t.Errorf("%d: expected %q, got %q", i, test.decoded, decoded)
		}
	}
}

func TestUnknownFilter(t *testing.T) {
	stream := Stream{
		Dictionary: Dictionary{Name("Filter"): Name("JBIG2Decode")},
		Stream:     []byte("data"),
	}

	_, err := stream.Decode()
	if errgo.Cause(err) != ErrUnsupported {
		t.Errorf("expected ErrUnsupported, got %v", err)
	}
}

// §7.4.4.4 PNG Up predictor, as used by cross-reference streams
func TestPNGPredictor(t *testing.T) {
	predicted := []byte{
		2, 1, 0, 10,
		2, 0, 0, 5,
		2, 0, 1, 0,
	}

	decoded, err := unpredict(predicted, Dictionary{
		Name("Predictor"): Integer(12),
		Name("Columns"):   Integer(3),
	})
	if err != nil {
		t.Fatal(err)
	}

	expected := []byte{
		1, 0, 10,
		1, 0, 15,
		1, 1, 15,
	}
	if !bytes.Equal(decoded, expected) {
		t.Errorf("expected %v, got %v", expected, decoded)
	}
}

func TestPredictorParameters(t *testing.T) {
	compressed, err := Stream{Stream: []byte{2, 1, 2, 3, 2, 1, 1, 1}}.Compress()
	if err != nil {
		t.Fatal(err)
	}

	for _, parms := range []Dictionary{
		{Name("Predictor"): Integer(12), Name("Columns"): Integer(-2)},
		{Name("Predictor"): Integer(12), Name("Columns"): Integer(0)},
		{Name("Predictor"): Integer(12), Name("Colors"): Integer(0)},
		{Name("Predictor"): Integer(12), Name("BitsPerComponent"): Integer(3)},
		{Name("Predictor"): Integer(12), Name("Columns"): Integer(1 << 20)},
	} {
		stream := Stream{Dictionary: Dictionary{}, Stream: compressed.Stream}
		for name, obj := range compressed.Dictionary {
			stream.Dictionary[name] = obj
		}
		stream.Dictionary[Name("DecodeParms")] = parms

		if _, err := stream.Decode(); errgo.Cause(err) != ErrMalformed {
			t.Errorf("%v: expected ErrMalformed, got %v", parms, err)
		}
	}

	// two rows of three columns with the Up filter
	stream := Stream{Dictionary: Dictionary{}, Stream: compressed.Stream}
	for name, obj := range compressed.Dictionary {
		stream.Dictionary[name] = obj
	}
	stream.Dictionary[Name("DecodeParms")] = Dictionary{Name("Predictor"): Integer(12), Name("Columns"): Integer(3)}
	decoded, err := stream.Decode()
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(decoded, []byte{1, 2, 3, 2, 3, 4}) {
		t.Errorf("unexpected rows %v", decoded)
	}
}
