package pdf

import (
	"fmt"
	"path"
	"reflect"
	"runtime"
	"testing"
)

type test struct {
	literal []byte
	object  Object
}

// general test runner for parse function tests
func runTests(t *testing.T, tests []test) {
	pc, _, line, ok := runtime.Caller(1)
	caller := "UNABLE TO DETERMINE CALLER"
	if ok {
		fn := runtime.FuncForPC(pc)
		functionName := path.Ext(path.Base(fn.Name()))[1:]
		caller = fmt.Sprintf("%v (line %v)", functionName, line)
	}

	for n, test := range tests {
		var fn parseFn
		switch test.object.(type) {
		case IndirectObject:
			fn = parseIndirectObject
		default:
			fn = parseObject
		}

		object, length, err := fn(test.literal)
		if err != nil {
			t.Errorf("%v test %v\nParse Error:\n\t%v\n", caller, n, err)
		}

		if length != len(test.literal) {
			t.Errorf("%v test %v\nExpected Length:\n\t%v\nGot Length:\n\t%v\n", caller, n, len(test.literal), length)
		}

		if !reflect.DeepEqual(object, test.object) {
			t.Errorf("%v test %v\nExpected Object:\n\t%#v\nGot Object:\n\t%#v\n", caller, n, test.object, object)
		}
	}
}

// §7.3.10 Example 1
func TestIndirectObjectsExample1(t *testing.T) {
	runTests(t, []test{
		{
			literal: []byte("12 0 obj\n\t(Brillig)\nendobj"),
			object: IndirectObject{
				ObjectReference: ObjectReference{ObjectNumber: 12},
				Object:          String("Brillig"),
			},
		},
	})
}

// §7.3.4.2 Example 1
func TestLiteralStringExample1(t *testing.T) {
	runTests(t, []test{
		{
			literal: []byte("(This is a string)"),
			object:  String("This is a string"),
		},
		{
			literal: []byte("(Strings may contain newlines\nand such.)"),
			object:  String("Strings may contain newlines\nand such."),
		},
		{
			literal: []byte("(Strings may contain balanced parentheses () and\nspecial characters (*!&}^% and so on).)"),
			object:  String("Strings may contain balanced parentheses () and\nspecial characters (*!&}^% and so on)."),
		},
		{
			literal: []byte("()"),
			object:  String(""),
		},
		{
			literal: []byte("(It has zero (0) length.)"),
			object:  String("It has zero (0) length."),
		},
	})
}

// §7.3.4.2 Example 2
func TestLiteralStringExample2(t *testing.T) {
	first, _, err := parseLiteralString([]byte("(These \\\ntwo strings \\\nare the same.)"))
	if err != nil {
		t.Error(err)
	}
	second, _, err := parseLiteralString([]byte("(These two strings are the same.)"))
	if err != nil {
		t.Error(err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Errorf("expected %q, got %q", second, first)
	}
}

// §7.3.4.2 Examples 3, 4, 5
func TestLiteralStringExamples345(t *testing.T) {
	runTests(t, []test{
		// Example 3
		{
			literal: []byte("(This string has an end-of-line at the end of it.\n)"),
			object:  String("This string has an end-of-line at the end of it.\n"),
		},
		// Example 4
		{
			literal: []byte("(This string contains \\245two octal characters\\307.)"),
			object:  String("This string contains \245two octal characters\307."),
		},
		// Example 5
		{
			literal: []byte("(\\0053)"),
			object:  String("\0053"),
		},
		{
			literal: []byte("(\\053)"),
			object:  String("+"),
		},
		{
			literal: []byte("(\\53)"),
			object:  String("+"),
		},
		// Table 3
		{
			literal: []byte("(\\n\\r\\t\\b\\f\\(\\)\\\\)"),
			object:  String("\n\r\t\b\f()\\"),
		},
	})
}

// §7.3.7 Example
func TestDictionaryExample(t *testing.T) {
	runTests(t, []test{
		{
			literal: []byte(`<< /Type /Example
/Subtype /DictionaryExample
/Version 0.01
/Integeritem 12
/StringItem (a string)
/Subdictionary << /Item1 0.4
				  /Item2 true
				  /LastItem (not!)
				  /VeryLastItem (OK)
			   >>
>>`),
			object: Dictionary{
				Name("Type"):        Name("Example"),
				Name("Subtype"):     Name("DictionaryExample"),
				Name("Version"):     Real(0.01),
				Name("Integeritem"): Integer(12),
				Name("StringItem"):  String("a string"),
				Name("Subdictionary"): Dictionary{
					Name("Item1"):        Real(0.4),
					Name("Item2"):        Boolean(true),
					Name("LastItem"):     String("not!"),
					Name("VeryLastItem"): String("OK"),
				},
			},
		},
	})
}

// §7.3.5 Table 4
func TestNameExamples(t *testing.T) {
	runTests(t, []test{
		{literal: []byte("/Name1"), object: Name("Name1")},
		{literal: []byte("/ASomewhatLongerName"), object: Name("ASomewhatLongerName")},
		{literal: []byte("/A;Name_With-Various***Characters?"), object: Name("A;Name_With-Various***Characters?")},
		{literal: []byte("/1.2"), object: Name("1.2")},
		{literal: []byte("/$$"), object: Name("$$")},
		{literal: []byte("/@pattern"), object: Name("@pattern")},
		{literal: []byte("/.notdef"), object: Name(".notdef")},
		{literal: []byte("/Lime#20Green"), object: Name("Lime Green")},
		{literal: []byte("/paired#28#29parentheses"), object: Name("paired()parentheses")},
		{literal: []byte("/The_Key_of_F#23_Minor"), object: Name("The_Key_of_F#_Minor")},
		{literal: []byte("/A#42"), object: Name("AB")},
	})
}

// §7.3.2
func TestBoolean(t *testing.T) {
	runTests(t, []test{
		{literal: []byte("true"), object: Boolean(true)},
		{literal: []byte("false"), object: Boolean(false)},
	})
}

// §7.3.3
func TestNumericObjects(t *testing.T) {
	runTests(t, []test{
		{literal: []byte("123"), object: Integer(123)},
		{literal: []byte("43445"), object: Integer(43445)},
		{literal: []byte("+17"), object: Integer(17)},
		{literal: []byte("-98"), object: Integer(-98)},
		{literal: []byte("0"), object: Integer(0)},
		{literal: []byte("34.5"), object: Real(34.5)},
		{literal: []byte("-3.62"), object: Real(-3.62)},
		{literal: []byte("+123.6"), object: Real(123.6)},
		{literal: []byte("4."), object: Real(4)},
		{literal: []byte("-.002"), object: Real(-.002)},
		{literal: []byte("0.0"), object: Real(0.0)},
	})
}

// §7.3.4.3 Examples 1, 2
func TestHexadecimalStringExamples12(t *testing.T) {
	runTests(t, []test{
		// Example 1
		{
			literal: []byte("<4E6F762073686D6F7A206B6120706F702E>"),
			object:  String("Nov shmoz ka pop."),
		},
		// Example 2
		{
			literal: []byte("<901FA3>"),
			object:  String{0x90, 0x1F, 0xA3},
		},
		{
			literal: []byte("<901FA>"),
			object:  String{0x90, 0x1F, 0xA0},
		},
		{
			literal: []byte("<90 1f\na3>"),
			object:  String{0x90, 0x1F, 0xA3},
		},
	})
}

// §7.3.6
func TestArrayExample(t *testing.T) {
	runTests(t, []test{
		{
			literal: []byte("[549 3.14 false (Ralph) /SomeName]"),
			object: Array{
				Integer(549),
				Real(3.14),
				Boolean(false),
				String("Ralph"),
				Name("SomeName"),
			},
		},
		{
			literal: []byte("[1 0 R 2 0 R]"),
			object: Array{
				ObjectReference{ObjectNumber: 1},
				ObjectReference{ObjectNumber: 2},
			},
		},
		{
			literal: []byte("[ % comment\n1 ]"),
			object:  Array{Integer(1)},
		},
	})
}

// §7.3.9
func TestNull(t *testing.T) {
	runTests(t, []test{
		{literal: []byte("null"), object: Null{}},
	})
}

// §7.3.8
func TestStream(t *testing.T) {
	runTests(t, []test{
		{
			literal: []byte("<</Length 5>>\nstream\nhello\nendstream"),
			object: Stream{
				Dictionary: Dictionary{Name("Length"): Integer(5)},
				Stream:     []byte("hello"),
			},
		},
		// wrong Length, recovered by searching for endstream
		{
			literal: []byte("<</Length 2>>\nstream\r\nhello\r\nendstream"),
			object: Stream{
				Dictionary: Dictionary{Name("Length"): Integer(2)},
				Stream:     []byte("hello"),
			},
		},
		{
			literal: []byte("<</Length 9 0 R>>\nstream\nhello\nendstream"),
			object: Stream{
				Dictionary: Dictionary{Name("Length"): ObjectReference{ObjectNumber: 9}},
				Stream:     []byte("hello"),
			},
		},
	})
}

func TestMalformed(t *testing.T) {
	for _, literal := range []string{
		"(unterminated",
		"[1 2",
		"<< /Key",
		"<zz>",
		"}",
		"",
	} {
		_, _, err := parseObject([]byte(literal))
		if err == nil {
			t.Errorf("expected an error for %q", literal)
		}
	}
}
