package pdf

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/juju/errgo"
)

func TestBytesToInt(t *testing.T) {
	type test struct {
		b []byte
		v uint
	}
	tests := []test{
		{[]byte{0x0, 0x0, 0x0}, 0},
		{[]byte{0x0, 0x0, 0x01}, 1},
		{[]byte{0x0, 0x01, 0x0}, 256},
		{[]byte{0x01, 0x0, 0x0}, 65536},
		{[]byte{0x01, 0x01, 0x0}, 65792},
		{[]byte{}, 0},
	}

	for i, test := range tests {
		result := bytesToInt(test.b)
		if result != test.v {
			t.Errorf("%d: expected %v for %#v, got %v", i, test.v, test.b, result)
		}
	}
}

func TestIntToBytes(t *testing.T) {
	for _, value := range []uint{0, 1, 255, 256, 65535, 65536, 1 << 30} {
		size := nBytesForInt(int(value))
		encoded := intToBytes(value, size)
		if len(encoded) != size {
			t.Errorf("%d: expected %d bytes, got %d", value, size, len(encoded))
		}
		if decoded := bytesToInt(encoded); decoded != value {
			t.Errorf("%d: decoded as %d", value, decoded)
		}
	}
}

func TestParseXrefBlock(t *testing.T) {
	block := []byte("0 3\n0000000000 65535 f\r\n0000000017 00000 n\r\n0000000081 00002 n\r\ntrailer")
	refs := map[uint]interface{}{}

	n, err := parseXrefBlock(block, refs)
	if err != nil {
		t.Fatal(err)
	}

	if string(block[n:]) != "\r\ntrailer" {
		t.Errorf("consumed wrong amount, left %q", block[n:])
	}

	expected := map[uint]interface{}{
		0: crossReference{0, 0, 65535},
		1: crossReference{1, 17, 0},
		2: crossReference{1, 81, 2},
	}
	for objectNumber, xref := range expected {
		if refs[objectNumber] != xref {
			t.Errorf("%d: expected %v, got %v", objectNumber, xref, refs[objectNumber])
		}
	}
}

// fixture assembles PDF files by hand, recording object offsets
type fixture struct {
	buf     bytes.Buffer
	offsets map[uint]int
}

func newFixture() *fixture {
	f := &fixture{offsets: map[uint]int{}}
	f.buf.WriteString("%PDF-1.5\n")
	return f
}

func (f *fixture) object(objectNumber uint, body string) {
	f.offsets[objectNumber] = f.buf.Len()
	fmt.Fprintf(&f.buf, "%d 0 obj\n%s\nendobj\n", objectNumber, body)
}

// xrefTable writes one subsection per object and returns its offset
func (f *fixture) xrefTable(objectNumbers []uint, trailer string) int {
	offset := f.buf.Len()
	f.buf.WriteString("xref\n")
	for _, objectNumber := range objectNumbers {
		fmt.Fprintf(&f.buf, "%d 1\n%010d 00000 n\r\n", objectNumber, f.offsets[objectNumber])
	}
	fmt.Fprintf(&f.buf, "trailer\n%s\n", trailer)
	return offset
}

// xrefStream writes a cross-reference stream object (W [1 4 2]) holding
// entries and itself, and returns its offset
func (f *fixture) xrefStream(objectNumber uint, entries map[uint]crossReference, dict string) int {
	offset := f.buf.Len()
	all := map[uint]crossReference{objectNumber: {1, uint(offset), 0}}
	for n, xref := range entries {
		all[n] = xref
	}
	numbers := make([]uint, 0, len(all))
	for n := range all {
		numbers = append(numbers, n)
	}
	sortUints(numbers)

	var data []byte
	index := ""
	for _, n := range numbers {
		xref := all[n]
		data = append(data, intToBytes(xref[0], 1)...)
		data = append(data, intToBytes(xref[1], 4)...)
		data = append(data, intToBytes(xref[2], 2)...)
		index += fmt.Sprintf("%d 1 ", n)
	}

	f.offsets[objectNumber] = offset
	fmt.Fprintf(&f.buf, "%d 0 obj\n<</Type /XRef /W [1 4 2] /Index [%s] /Length %d %s>>\nstream\n", objectNumber, index, len(data), dict)
	f.buf.Write(data)
	f.buf.WriteString("\nendstream\nendobj\n")
	return offset
}

func (f *fixture) end(xrefOffset int) []byte {
	fmt.Fprintf(&f.buf, "startxref\n%d\n", xrefOffset)
	f.buf.WriteString("%%EOF\n")
	return f.buf.Bytes()
}

func parseFixture(t *testing.T, data []byte) *File {
	t.Helper()
	file, err := Parse(data)
	if err != nil {
		t.Fatalf("parse: %v\n%s", err, data)
	}
	return file
}

func expectString(t *testing.T, file *File, objectNumber uint, expected string) {
	t.Helper()
	obj := file.Get(ObjectReference{ObjectNumber: objectNumber})
	s, ok := obj.(String)
	if !ok || string(s) != expected {
		t.Errorf("object %d: expected (%s), got %#v", objectNumber, expected, obj)
	}
}

func TestPrevChainTables(t *testing.T) {
	f := newFixture()
	f.object(1, "<</Type /Catalog>>")
	f.object(2, "(old)")
	f.object(3, "(kept)")
	first := f.xrefTable([]uint{1, 2, 3}, "<</Size 4 /Root 1 0 R>>")
	f.end(first)

	// incremental update replacing object 2
	f.object(2, "(new)")
	second := f.xrefTable([]uint{2}, fmt.Sprintf("<</Size 4 /Prev %d>>", first))
	file := parseFixture(t, f.end(second))

	expectString(t, file, 2, "new")
	expectString(t, file, 3, "kept")
	if file.Root != (ObjectReference{ObjectNumber: 1}) {
		t.Errorf("expected Root from the previous trailer, got %v", file.Root)
	}
}

func TestHybridReferences(t *testing.T) {
	f := newFixture()
	f.object(1, "<</Type /Catalog>>")
	f.object(2, "(table)")
	f.object(4, "<</Type /ObjStm /N 1 /First 4 /Length 16>>\nstream\n3 0 (compressed)\nendstream")
	hybrid := f.xrefStream(5, map[uint]crossReference{3: {2, 4, 0}}, "/Size 6")
	table := f.xrefTable([]uint{1, 2, 4}, fmt.Sprintf("<</Size 6 /Root 1 0 R /XRefStm %d>>", hybrid))
	file := parseFixture(t, f.end(table))

	expectString(t, file, 2, "table")
	expectString(t, file, 3, "compressed")
}

func TestObjectStreams(t *testing.T) {
	f := newFixture()
	f.object(1, "<</Type /Catalog>>")
	f.object(2, "<</Type /ObjStm /N 2 /First 8 /Length 21>>\nstream\n3 0 4 7 (three)(four)\nendstream")
	xref := f.xrefStream(5, map[uint]crossReference{
		1: {1, uint(f.offsets[1]), 0},
		2: {1, uint(f.offsets[2]), 0},
		3: {2, 2, 0},
		4: {2, 2, 1},
	}, "/Size 6 /Root 1 0 R")
	file := parseFixture(t, f.end(xref))

	expectString(t, file, 3, "three")
	expectString(t, file, 4, "four")
	if file.Root != (ObjectReference{ObjectNumber: 1}) {
		t.Errorf("expected Root 1 0 R, got %v", file.Root)
	}
}

func TestXrefStreamNegativeWidth(t *testing.T) {
	_, err := parseXrefStream(Stream{
		Dictionary: Dictionary{
			Name("W"):    Array{Integer(1), Integer(-1), Integer(1)},
			Name("Size"): Integer(1),
		},
		Stream: []byte{1, 0, 0},
	})
	if errgo.Cause(err) != ErrMalformed {
		t.Errorf("expected ErrMalformed, got %v", err)
	}
}

// malformed objects resolve to Null with ErrMalformed instead of panicking
func TestMalformedReferences(t *testing.T) {
	streamWithLength := func(length string) []byte {
		f := newFixture()
		f.object(1, "<</Length 2 0 R>>\nstream\nhello\nendstream")
		f.object(2, length)
		return f.end(f.xrefTable([]uint{1, 2}, "<</Size 3>>"))
	}

	selfLength := newFixture()
	selfLength.object(1, "<</Length 1 0 R>>\nstream\nhello\nendstream")
	selfLengthData := selfLength.end(selfLength.xrefTable([]uint{1}, "<</Size 2>>"))

	negativeFirst := newFixture()
	negativeFirst.object(2, "<</Type /ObjStm /N 1 /First -5 /Length 7>>\nstream\n3 0 (x)\nendstream")
	negativeFirstData := negativeFirst.end(negativeFirst.xrefStream(5, map[uint]crossReference{
		2: {1, uint(negativeFirst.offsets[2]), 0},
		1: {2, 2, 0},
	}, "/Size 6"))

	nested := newFixture()
	nestedData := nested.end(nested.xrefStream(5, map[uint]crossReference{
		1: {2, 4, 0},
		4: {2, 1, 0},
	}, "/Size 6"))

	tests := []struct {
		name string
		data []byte
	}{
		{"negative length", streamWithLength("-1")},
		{"length past the stream", streamWithLength("99")},
		{"stream is its own length", selfLengthData},
		{"negative First", negativeFirstData},
		{"object stream in an object stream", nestedData},
	}
	for _, test := range tests {
		file := parseFixture(t, test.data)
		null, ok := file.Get(ObjectReference{ObjectNumber: 1}).(Null)
		if !ok || errgo.Cause(null.Error) != ErrMalformed {
			t.Errorf("%s: expected Null with ErrMalformed, got %#v", test.name, file.Get(ObjectReference{ObjectNumber: 1}))
		}
	}

	file := parseFixture(t, streamWithLength("3"))
	stream, ok := file.Get(ObjectReference{ObjectNumber: 1}).(Stream)
	if !ok || string(stream.Stream) != "hel" || stream.Dictionary[Name("Length")] != Integer(3) {
		t.Errorf("expected the indirect length to apply, got %#v", file.Get(ObjectReference{ObjectNumber: 1}))
	}
}
