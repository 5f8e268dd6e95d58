package pdf

import (
	"bytes"
	"io"
	"sort"
	"strconv"
	"strings"
)

// Serialize returns the bytes obj is written as in a file.
func Serialize(obj Object) ([]byte, error) {
	buf := &buffer{}
	buf.Object(obj)
	if buf.Err() != nil {
		return nil, maskErr(buf.Err())
	}
	return buf.Bytes(), nil
}

// WriteTo serializes the Boolean according to the rules in
// §7.3.2
func (b Boolean) writeTo(w io.Writer) (int64, error) {
	if b {
		return writeString(w, "true")
	}
	return writeString(w, "false")
}

// WriteTo serializes the Integer according to the rules in
// §7.3.3
func (i Integer) writeTo(w io.Writer) (int64, error) {
	return writeString(w, strconv.Itoa(int(i)))
}

// WriteTo serializes the Real according to the rules in
// §7.3.3
// Exponential notation is not allowed, so values are written in fixed
// point with at most six decimals.
func (r Real) writeTo(w io.Writer) (int64, error) {
	return writeString(w, formatReal(float64(r)))
}

func formatReal(f float64) string {
	s := strconv.FormatFloat(f, 'f', 6, 64)
	s = strings.TrimRight(s, "0")
	s = strings.TrimSuffix(s, ".")
	if s == "-0" || s == "" {
		return "0"
	}
	return s
}

// WriteTo serializes the String according to the rules in
// §7.3.4
func (s String) writeTo(w io.Writer) (int64, error) {
	buf := &bytes.Buffer{}

	buf.WriteByte('(')
	for _, b := range []byte(s) {
		switch b {
		case '\\':
			buf.WriteString("\\\\")
		case '(':
			buf.WriteString("\\(")
		case ')':
			buf.WriteString("\\)")
		case '\r':
			buf.WriteString("\\r")
		default:
			buf.WriteByte(b)
		}
	}
	buf.WriteByte(')')

	return buf.WriteTo(w)
}

// WriteTo serializes the Name according to the rules in
// §7.3.5
func (n Name) writeTo(w io.Writer) (int64, error) {
	buf := &bytes.Buffer{}

	buf.WriteByte('/')
	for _, b := range []byte(n) {
		if b < '!' || b > '~' || b == '#' || isDelimiter(b) {
			buf.WriteByte('#')
			buf.WriteString(strings.ToUpper(strconv.FormatUint(uint64(b)|0x100, 16)[1:]))
			continue
		}
		buf.WriteByte(b)
	}

	return buf.WriteTo(w)
}

// WriteTo serializes the Array according to the rules in
// §7.3.6
func (a Array) writeTo(w io.Writer) (int64, error) {
	buf := &buffer{}

	buf.WriteByte('[')
	for i, obj := range a {
		if i != 0 {
			buf.WriteByte(' ')
		}
		buf.Object(obj)
	}
	buf.WriteByte(']')

	return buf.WriteTo(w)
}

// WriteTo serializes the Dictionary according to the rules in
// §7.3.7
// Keys are written in sorted order so that equal dictionaries
// serialize to equal bytes.
func (d Dictionary) writeTo(w io.Writer) (int64, error) {
	buf := &buffer{}

	buf.WriteString("<<")
	for _, name := range d.Keys() {
		buf.Object(name)
		buf.WriteByte(' ')
		buf.Object(d[name])
	}
	buf.WriteString(">>")

	return buf.WriteTo(w)
}

// Keys returns the dictionary's names in sorted order.
func (d Dictionary) Keys() []Name {
	names := make([]Name, 0, len(d))
	for name := range d {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

// WriteTo serializes the Stream according to the rules in
// §7.3.8
func (s Stream) writeTo(w io.Writer) (int64, error) {
	buf := &buffer{}

	// update the dictionary without changing the caller's copy
	dict := make(Dictionary, len(s.Dictionary)+1)
	for name, obj := range s.Dictionary {
		dict[name] = obj
	}
	dict[Name("Length")] = Integer(len(s.Stream))

	buf.Object(dict)
	buf.WriteString("\nstream\n")
	buf.Write(s.Stream)
	buf.WriteString("\nendstream")

	return buf.WriteTo(w)
}

// WriteTo serializes Null according to the rules in
// §7.3.9
func (null Null) writeTo(w io.Writer) (int64, error) {
	return writeString(w, "null")
}

// WriteTo serializes the ObjectReference according to the rules in
// §7.3.10
func (objref ObjectReference) writeTo(w io.Writer) (int64, error) {
	return writeString(w, objref.String())
}

// WriteTo serializes the IndirectObject according to the rules in
// §7.3.10
func (inobj IndirectObject) writeTo(w io.Writer) (int64, error) {
	buf := &buffer{}
	buf.Printf("%d %d obj\n", inobj.ObjectNumber, inobj.GenerationNumber)
	buf.Object(inobj.Object)
	buf.WriteString("\nendobj")
	return buf.WriteTo(w)
}

func writeString(w io.Writer, s string) (int64, error) {
	n, err := io.WriteString(w, s)
	return int64(n), err
}
