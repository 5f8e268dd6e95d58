package pdf

import (
	"bytes"
	"strconv"
)

// Returns an Object and the number of bytes consumed
// if err != nil, the int is the offset in the slice
// where the error was discovered. The object will
// be returned as far as it was completed (to allow
// for inspection)
type parseFn func(slice []byte) (Object, int, error)

// ParseObject parses the first object in slice.
func ParseObject(slice []byte) (Object, int, error) {
	return parseObject(slice)
}

// ParseIndirectObject parses "n g obj ... endobj" from the start of slice.
func ParseIndirectObject(slice []byte) (Object, int, error) {
	return parseIndirectObject(slice)
}

func parseObject(slice []byte) (Object, int, error) {
	start, ok := nextNonWhitespace(slice)
	if !ok {
		return nil, len(slice), malformedf("expected a non-whitespace char")
	}

	var parser parseFn
	maybeObjectReference := false
	maybeStream := false

	// determine the object type
	// except for Stream §7.3.8
	// streams start as dictionaries
	switch slice[start] {
	case 't', 'f':
		// Boolean §7.3.2
		parser = parseBoolean
	case '0', '1', '2', '3', '4', '5', '6', '7', '8', '9', '+', '-', '.':
		// Integer §7.3.3
		// Real §7.3.3
		// could also be the start of an object reference
		parser = parseNumeric
		maybeObjectReference = true
	case '(':
		// String §7.3.4
		parser = parseLiteralString
	case '/':
		// Name §7.3.5
		parser = parseName
	case '[':
		// Array §7.3.6
		parser = parseArray
	case '<':
		if start+1 < len(slice) && slice[start+1] == '<' {
			// Dictionary §7.3.7
			parser = parseDictionary
			maybeStream = true
		} else {
			// String §7.3.4
			parser = parseHexadecimalString
		}
	case 'n':
		// Null §7.3.9
		parser = parseNull
	default:
		return nil, start, malformedf("unexpected %q at offset %d", slice[start], start)
	}

	object, n, err := parser(slice[start:])
	if err != nil {
		return object, start + n, err
	}

	if maybeObjectReference {
		objectref, n2, err := parseObjectReference(slice[start:])
		if err == nil {
			object = objectref
			n = n2
		}
	}

	// handle streams
	if maybeStream {
		n2, isStream := match(slice[start+n:], "stream")
		if isStream {
			n += n2

			// consume end of line (§7.3.8.1 paragraph after example)
			if start+n >= len(slice) {
				return object, start + n, malformedf("unexpected end of stream")
			}
			switch slice[start+n] {
			case '\r':
				n++
				if start+n >= len(slice) || slice[start+n] != '\n' {
					return object, start + n, malformedf("end of line marker cannot have only a carriage return")
				}
			case '\n':
			default:
				return object, start + n, malformedf("expected end of line marker")
			}
			n++

			dict := object.(Dictionary)
			data := slice[start+n:]

			// a Length given as a reference is resolved by the File,
			// until then (or when Length is wrong) search for endstream
			streamLength := -1
			if length, ok := dict[Name("Length")].(Integer); ok && int(length) >= 0 && int(length) <= len(data) {
				if _, ok := match(data[length:], "endstream"); ok {
					streamLength = int(length)
				}
			}
			if streamLength < 0 {
				streamLength = endstreamIndex(data)
				if streamLength < 0 {
					return object, start + n, malformedf("expected 'endstream'")
				}
			}

			object = Stream{
				Dictionary: dict,
				Stream:     data[:streamLength],
			}
			n += streamLength

			n2, _ = match(slice[start+n:], "endstream")
			n += n2
		}
	}

	return object, start + n, nil
}

// finds the length of stream data, excluding the EOL before endstream
func endstreamIndex(data []byte) int {
	end := bytes.Index(data, []byte("endstream"))
	if end < 0 {
		return -1
	}
	if end > 0 && data[end-1] == '\n' {
		end--
	}
	if end > 0 && data[end-1] == '\r' {
		end--
	}
	return end
}

// for tokenized things, returns the next token
func nextToken(slice []byte) ([]byte, int) {
	// whitespace:
	// null, tab, line feed, form feed, carriage return, or space
	// §7.2.2 Table 1

	// delimiters:
	// (, ), <, >, [, ], {, }, /, %
	// §7.2.2 Table 2

	var begin, end int

	begin, ok := nextNonWhitespace(slice)
	if !ok {
		return nil, len(slice)
	}

	for end = begin; end < len(slice); end++ {
		if isWhitespace(slice[end]) || isDelimiter(slice[end]) {
			return slice[begin:end], end
		}
	}

	return slice[begin:], len(slice)
}

func isDelimiter(char byte) bool {
	switch char {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return false
}

func isWhitespace(char byte) bool {
	switch char {
	case 0, 9, 10, 12, 13, 32:
		return true
	}
	return false
}

func isHexDigit(char byte) bool {
	switch {
	case '0' <= char && char <= '9',
		'A' <= char && char <= 'F',
		'a' <= char && char <= 'f':
		return true
	}
	return false
}

// comments (§7.2.3) are treated as whitespace
func nextNonWhitespace(slice []byte) (int, bool) {
	for i := 0; i < len(slice); i++ {
		if slice[i] == '%' {
			for i < len(slice) && slice[i] != '\n' && slice[i] != '\r' {
				i++
			}
			continue
		}
		if !isWhitespace(slice[i]) {
			return i, true
		}
	}
	return 0, false
}

func match(slice []byte, toMatch string) (int, bool) {
	token, n := nextToken(slice)

	if string(token) != toMatch {
		return 0, false
	}

	return n, true
}

func parseLiteralString(slice []byte) (Object, int, error) {
	decoded := make([]byte, 0, len(slice))

	if len(slice) == 0 || slice[0] != '(' {
		return String(decoded), 0, malformedf("not a literal string")
	}

	parens := 1
	i := 1
	for i < len(slice) {
		c := slice[i]
		switch c {
		case '(':
			parens++
		case ')':
			parens--
			if parens == 0 {
				return String(decoded), i + 1, nil
			}
		case '\\':
			i++
			if i >= len(slice) {
				continue
			}
			switch e := slice[i]; e {
			case 'n':
				decoded = append(decoded, '\n')
			case 'r':
				decoded = append(decoded, '\r')
			case 't':
				decoded = append(decoded, '\t')
			case 'b':
				decoded = append(decoded, '\b')
			case 'f':
				decoded = append(decoded, '\f')
			case '(', ')', '\\':
				decoded = append(decoded, e)
			case '\r':
				// line continuation
				if i+1 < len(slice) && slice[i+1] == '\n' {
					i++
				}
			case '\n':
				// line continuation
			case '0', '1', '2', '3', '4', '5', '6', '7':
				value := 0
				digits := 0
				for digits < 3 && i < len(slice) && slice[i] >= '0' && slice[i] <= '7' {
					value = value*8 + int(slice[i]-'0')
					i++
					digits++
				}
				i--
				decoded = append(decoded, byte(value))
			default:
				// the backslash is ignored
				decoded = append(decoded, e)
			}
			i++
			continue
		case '\r':
			// all end of line markers are read as \n
			if i+1 < len(slice) && slice[i+1] == '\n' {
				i++
			}
			c = '\n'
		}
		decoded = append(decoded, c)
		i++
	}

	return String(decoded), i, malformedf("couldn't find end of string")
}

// returned int is the length of slice consumed
func parseDictionary(slice []byte) (Object, int, error) {
	dict := make(Dictionary)

	if len(slice) < 2 || slice[0] != '<' || slice[1] != '<' {
		return dict, 0, malformedf("not a dictionary")
	}

	i := 2
	for i < len(slice) {
		// skip whitespace
		n, ok := nextNonWhitespace(slice[i:])
		if !ok {
			break
		}
		i += n

		// check to see if end
		if slice[i] == '>' && i+1 < len(slice) && slice[i+1] == '>' {
			return dict, i + 2, nil
		}

		// get the key
		name, n, err := parseName(slice[i:])
		if err != nil {
			return dict, i + n, err
		}
		i += n

		// get the value
		value, n, err := parseObject(slice[i:])
		if err != nil {
			return dict, i + n, err
		}
		i += n

		// set the key/value pair
		dict[name.(Name)] = value
	}

	return dict, i, malformedf("end of dictionary not found")
}

func parseName(slice []byte) (Object, int, error) {
	name := make([]byte, 0, len(slice))

	if len(slice) == 0 || slice[0] != '/' {
		return Name(name), 0, malformedf("not a name")
	}

	i := 1
	for i < len(slice) {
		if isDelimiter(slice[i]) || isWhitespace(slice[i]) {
			break
		}

		switch slice[i] {
		case '#':
			if i+3 > len(slice) {
				return Name(name), i, malformedf("incomplete #xx escape in name")
			}
			char, err := strconv.ParseUint(string(slice[i+1:i+3]), 16, 8)
			if err != nil {
				return Name(name), i, malformedf("bad #xx escape in name: %v", err)
			}
			name = append(name, byte(char))
			i += 2
		default:
			name = append(name, slice[i])
		}
		i++
	}

	return Name(name), i, nil
}

func parseBoolean(slice []byte) (Object, int, error) {
	n, ok := match(slice, "true")
	if ok {
		return Boolean(true), n, nil
	}

	n, ok = match(slice, "false")
	if ok {
		return Boolean(false), n, nil
	}

	return Boolean(false), 0, malformedf("not a boolean")
}

// returns Integer when integer, Real when real
func parseNumeric(slice []byte) (Object, int, error) {
	token, n := nextToken(slice)

	isInteger := true
	for _, char := range token {
		if char == '.' {
			isInteger = false
			break
		}
	}

	if isInteger {
		integer, err := strconv.ParseInt(string(token), 10, 0)
		if err != nil {
			return Integer(integer), n, malformedf("bad integer %q", token)
		}

		return Integer(integer), n, nil
	}

	real, err := strconv.ParseFloat(string(token), 64)
	if err != nil {
		return Real(0), n, malformedf("bad real %q", token)
	}

	return Real(real), n, nil
}

func parseHexadecimalString(slice []byte) (Object, int, error) {
	hex := make(String, 0, len(slice)/2)

	if len(slice) == 0 || slice[0] != '<' {
		return hex, 0, malformedf("not a hexadecimal string")
	}

	digits := make([]byte, 0, len(slice))
	i := 1
	for ; i < len(slice); i++ {
		c := slice[i]
		if c == '>' {
			// a final odd digit is followed by an implied 0
			if len(digits)%2 == 1 {
				digits = append(digits, '0')
			}
			for j := 0; j < len(digits); j += 2 {
				b, _ := strconv.ParseUint(string(digits[j:j+2]), 16, 8)
				hex = append(hex, byte(b))
			}
			return hex, i + 1, nil
		}
		if isWhitespace(c) {
			continue
		}
		if !isHexDigit(c) {
			return hex, i, malformedf("%q is not a hex digit", c)
		}
		digits = append(digits, c)
	}

	return hex, i, malformedf("end of hexadecimal string not found")
}

func parseArray(slice []byte) (Object, int, error) {
	array := make(Array, 0)

	if len(slice) == 0 || slice[0] != '[' {
		return array, 0, malformedf("not an array")
	}

	i := 1
	for i < len(slice) {
		n, ok := nextNonWhitespace(slice[i:])
		if !ok {
			break
		}
		i += n

		if slice[i] == ']' {
			return array, i + 1, nil
		}

		object, n, err := parseObject(slice[i:])
		if err != nil {
			return array, i + n, err
		}
		i += n

		array = append(array, object)
	}

	return array, i, malformedf("end of array not found")
}

func parseNull(slice []byte) (Object, int, error) {
	n, ok := match(slice, "null")
	if ok {
		return Null{}, n, nil
	}

	return Null{}, 0, malformedf("not a Null")
}

func parseObjectReference(slice []byte) (Object, int, error) {
	objref := ObjectReference{}
	i := 0

	objectNumber, n, err := parseNumeric(slice[i:])
	i += n
	if err != nil {
		return objref, i, err
	}
	integer, ok := objectNumber.(Integer)
	if !ok || integer < 0 {
		return objref, i, malformedf("expected object number not an integer")
	}
	objref.ObjectNumber = uint(integer)

	token, _ := nextToken(slice[i:])
	if len(token) == 0 || token[0] < '0' || token[0] > '9' {
		return objref, i, malformedf("expected generation number")
	}
	generationNumber, n, err := parseNumeric(slice[i:])
	i += n
	if err != nil {
		return objref, i, err
	}
	integer, ok = generationNumber.(Integer)
	if !ok || integer < 0 {
		return objref, i, malformedf("expected generation number not an integer")
	}
	objref.GenerationNumber = uint(integer)

	n, ok = match(slice[i:], "R")
	i += n
	if !ok {
		return objref, i, malformedf("could not find end of object reference")
	}

	return objref, i, nil
}

func parseIndirectObject(slice []byte) (Object, int, error) {
	var io IndirectObject
	i := 0

	// Object Number
	token, n := nextToken(slice[i:])
	objectNumber, err := strconv.ParseUint(string(token), 10, 64)
	i += n
	if err != nil {
		return io, i, malformedf("bad object number %q", token)
	}
	io.ObjectNumber = uint(objectNumber)

	// Generation Number
	token, n = nextToken(slice[i:])
	generationNumber, err := strconv.ParseUint(string(token), 10, 64)
	i += n
	if err != nil {
		return io, i, malformedf("bad generation number %q", token)
	}
	io.GenerationNumber = uint(generationNumber)

	// "obj"
	n, ok := match(slice[i:], "obj")
	i += n
	if !ok {
		return io, i, malformedf("could not find 'obj'")
	}

	// the object
	object, n, err := parseObject(slice[i:])
	i += n
	io.Object = object
	if err != nil {
		return io, i, err
	}

	// "endobj"
	n, ok = match(slice[i:], "endobj")
	i += n
	if !ok {
		return io, i, malformedf("could not find 'endobj'")
	}

	return io, i, nil
}
