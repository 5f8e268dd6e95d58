package pdf

import (
	"reflect"
	"testing"
)

func TestSerialize(t *testing.T) {
	tests := []struct {
		object   Object
		expected string
	}{
		{Boolean(true), "true"},
		{Integer(-42), "-42"},
		{Real(3.14), "3.14"},
		{Real(2), "2"},
		{Real(1e-9), "0"},
		{Real(-0.0000001), "0"},
		{Real(1e21), "1000000000000000000000"},
		{Real(0.1234567), "0.123457"},
		{String("a (b) \\c"), "(a \\(b\\) \\\\c)"},
		{Name("Lime Green"), "/Lime#20Green"},
		{Name("paired()parentheses"), "/paired#28#29parentheses"},
		{Name("The_Key_of_F#_Minor"), "/The_Key_of_F#23_Minor"},
		{Array{}, "[]"},
		{Array{Integer(1), Name("A"), Null{}}, "[1 /A null]"},
		{Dictionary{Name("Type"): Name("Page"), Name("Count"): Integer(3), Name("A"): Boolean(false)}, "<</A false /Count 3 /Type /Page>>"},
		{ObjectReference{ObjectNumber: 12, GenerationNumber: 1}, "12 1 R"},
		{Stream{Stream: []byte("abc")}, "<</Length 3>>\nstream\nabc\nendstream"},
		{IndirectObject{ObjectReference{ObjectNumber: 4}, Integer(7)}, "4 0 obj\n7\nendobj"},
	}

	for i, test := range tests {
		got, err := Serialize(test.object)
		if err != nil {
			t.Errorf("%d: %v", i, err)
			continue
		}
		if string(got) != test.expected {
			t.Errorf("%d: expected %q, got %q", i, test.expected, got)
		}
	}
}

// what is written can be read back
func TestSerializeParse(t *testing.T) {
	objects := []Object{
		Dictionary{
			Name("Title"):  String("Weird (chars) \\ and \r returns"),
			Name("Kids"):   Array{ObjectReference{ObjectNumber: 3}, ObjectReference{ObjectNumber: 4}},
			Name("Weird#"): Name("a b/c"),
			Name("Ratio"):  Real(0.5),
		},
		Array{Array{Integer(1)}, Dictionary{}},
	}

	for i, object := range objects {
		serialized, err := Serialize(object)
		if err != nil {
			t.Fatal(err)
		}

		parsed, n, err := ParseObject(serialized)
		if err != nil {
			t.Errorf("%d: %v", i, err)
			continue
		}
		if n != len(serialized) {
			t.Errorf("%d: consumed %d of %d bytes", i, n, len(serialized))
		}
		if !reflect.DeepEqual(parsed, object) {
			t.Errorf("%d: expected %#v, got %#v", i, object, parsed)
		}
	}
}

func TestEncodeContent(t *testing.T) {
	content, err := EncodeContent([]Operation{
		Op("BT"),
		Op("Tf", Name("F1"), Integer(12)),
		Op("Td", Real(10.5), Real(20)),
		Op("Tj", String("Hi")),
		Op("ET"),
	})
	if err != nil {
		t.Fatal(err)
	}

	expected := "BT\n/F1 12 Tf\n10.5 20 Td\n(Hi) Tj\nET\n"
	if string(content) != expected {
		t.Errorf("expected %q, got %q", expected, content)
	}
}
