package pdf

import (
	"bytes"
	"encoding/binary"
	"sort"
	"strconv"
)

// CrossReference holds the data described in Table 18
// type 0 = f entries in cross-reference table
// type 1 = n entries in cross-reference table
// type 2 not in cross-reference table
// 0 number_of_next_free_object generation_number_if_used_again
// 1 byte_offset_of_object generation_number
// 2 object_number_of_object_stream_containing_this_object index_of_this_object_in_object_stream
type crossReference [3]uint

// handles cross-references
//
//  1. Cross-Reference Table (§7.5.4) and File Trailer (§7.5.5)
//  2. Cross-Reference Streams (§7.5.8) (since PDF-1.5)
//  3. Hybrid (§7.5.8.4) (since PDF-1.5)
//
// The method used can be determined by following the
// startxref reference. If the referenced position is an
// indirect object, then method 2 is used. Otherwise if the
// trailer has an XRefStm entry, then method 3 is used.
// Otherwise method 1 is used.
func (file *File) loadReferences() error {
	// find EOF tag to ignore junk in the file after it
	eofOffset := bytes.LastIndex(file.data, []byte("%%EOF"))
	if eofOffset == -1 {
		return malformedf("file does not have PDF ending")
	}

	// find last startxref
	startxrefOffset := bytes.LastIndex(file.data[:eofOffset], []byte("startxref"))
	if startxrefOffset == -1 {
		return malformedf("could not find startxref")
	}

	token, _ := nextToken(file.data[startxrefOffset+len("startxref") : eofOffset])
	xrefOffset64, err := strconv.ParseUint(string(token), 10, 64)
	if err != nil {
		return malformedf("startxref %q is not an offset", token)
	}
	xrefOffset := int(xrefOffset64)

	refs, trailer, err := file.parseReferences(xrefOffset, map[int]bool{})
	if err != nil {
		return err
	}

	file.prev = Integer(xrefOffset)
	file.objects = refs
	size, _ := trailer[Name("Size")].(Integer)
	file.size = uint(size)
	for objectNumber := range refs {
		if objectNumber >= file.size {
			file.size = objectNumber + 1
		}
	}

	// fill in values from the trailer
	if root, ok := trailer[Name("Root")].(ObjectReference); ok {
		file.Root = root
	}

	if encrypt, ok := trailer[Name("Encrypt")].(Dictionary); ok {
		file.Encrypt = encrypt
	}

	if info, ok := trailer[Name("Info")].(ObjectReference); ok {
		file.Info = info
	}

	if id, ok := trailer[Name("ID")].(Array); ok {
		file.ID = id
	}

	return nil
}

// parse and recursively load and merge references and trailer
// seen guards against Prev loops
func (file *File) parseReferences(xrefOffset int, seen map[int]bool) (map[uint]interface{}, Dictionary, error) {
	if xrefOffset < 0 || xrefOffset >= len(file.data) {
		return nil, nil, malformedf("cross reference offset %d is outside of the file", xrefOffset)
	}
	if seen[xrefOffset] {
		return nil, nil, malformedf("cross reference loop at offset %d", xrefOffset)
	}
	seen[xrefOffset] = true

	// parse refs, trailer
	refs := map[uint]interface{}{}
	var trailer Dictionary

	switch file.data[xrefOffset] {
	case '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		// indirect object and therefore a cross-reference stream §7.5.8
		xrstreamAsObject, _, err := parseIndirectObject(file.data[xrefOffset:])
		if err != nil {
			return nil, nil, err
		}
		xrstream, ok := xrstreamAsObject.(IndirectObject).Object.(Stream)
		if !ok {
			return nil, nil, malformedf("cross reference stream at %d is not a stream", xrefOffset)
		}

		trailer = xrstream.Dictionary
		refs, err = parseXrefStream(xrstream)
		if err != nil {
			return nil, nil, err
		}

	case 'x':
		// xref table §7.5.4
		i := xrefOffset

		token, n := nextToken(file.data[i:])
		if string(token) != "xref" {
			return nil, nil, malformedf("offset %d: could not match xref", i)
		}
		i += n

		for {
			token, n := nextToken(file.data[i:])
			if string(token) == "trailer" {
				i += n
				break
			}
			if len(token) == 0 {
				return nil, nil, malformedf("xref table without trailer")
			}

			n, err := parseXrefBlock(file.data[i:], refs)
			if err != nil {
				return nil, nil, err
			}
			i += n
		}

		trailerObj, _, err := parseObject(file.data[i:])
		if err != nil {
			return nil, nil, pushErrf(err, "xref trailer")
		}

		trailer, ok := trailerObj.(Dictionary)
		if !ok {
			return nil, nil, malformedf("trailer is not a dictionary")
		}
		return file.mergeReferences(refs, trailer, seen)

	default:
		return nil, nil, malformedf("no cross reference at offset %d", xrefOffset)
	}

	return file.mergeReferences(refs, trailer, seen)
}

func (file *File) mergeReferences(refs map[uint]interface{}, trailer Dictionary, seen map[int]bool) (map[uint]interface{}, Dictionary, error) {
	// previous references are masked by the current one
	if prev, hasPrev := trailer[Name("Prev")].(Integer); hasPrev {
		prevRefs, prevTrailer, err := file.parseReferences(int(prev), seen)
		if err != nil {
			return refs, trailer, err
		}

		for prevRef := range prevRefs {
			if _, ok := refs[prevRef]; !ok {
				refs[prevRef] = prevRefs[prevRef]
			}
		}

		for name := range prevTrailer {
			if _, ok := trailer[name]; !ok {
				trailer[name] = prevTrailer[name]
			}
		}
	}

	// hybrid references mask current ones
	if hybrid, hasHybrid := trailer[Name("XRefStm")].(Integer); hasHybrid {
		hybridRefs, hybridTrailer, err := file.parseReferences(int(hybrid), seen)
		if err != nil {
			return refs, trailer, err
		}

		for hybridRef := range hybridRefs {
			refs[hybridRef] = hybridRefs[hybridRef]
		}

		for name := range hybridTrailer {
			trailer[name] = hybridTrailer[name]
		}
	}

	return refs, trailer, nil
}

func parseXrefStream(xrstream Stream) (map[uint]interface{}, error) {
	refs := map[uint]interface{}{}

	stream, err := xrstream.Decode()
	if err != nil {
		return nil, err
	}

	w, ok := xrstream.Dictionary[Name("W")].(Array)
	if !ok || len(w) != 3 {
		return nil, malformedf("cross reference stream W must have three entries")
	}
	size, _ := xrstream.Dictionary[Name("Size")].(Integer)

	wi := []int{}
	for _, integer := range w {
		width, _ := integer.(Integer)
		if width < 0 {
			return nil, malformedf("cross reference stream W has negative width %d", width)
		}
		wi = append(wi, int(width))
	}

	type index struct {
		objectNumber int
		size         int
	}
	indexes := []index{}

	if indexArray, ok := xrstream.Dictionary[Name("Index")].(Array); ok {
		for i := 0; i+1 < len(indexArray); i += 2 {
			objectNumber, _ := indexArray[i].(Integer)
			count, _ := indexArray[i+1].(Integer)
			indexes = append(indexes, index{int(objectNumber), int(count)})
		}
	} else {
		// default when Index is not specified
		indexes = append(indexes, index{0, int(size)})
	}

	offset := 0
	for _, index := range indexes {
		objectNumber := index.objectNumber
		for n := 0; n < index.size; n++ {
			xref := crossReference{}
			for i := 0; i < len(wi); i++ {
				width := wi[i]
				if width > len(stream)-offset {
					return nil, malformedf("cross reference stream is too short")
				}
				xref[i] = bytesToInt(stream[offset : offset+width])
				offset += width
			}
			// a zero width type field defaults to type 1
			if wi[0] == 0 {
				xref[0] = 1
			}
			refs[uint(objectNumber)] = xref
			objectNumber++
		}
	}

	return refs, nil
}

func bytesToInt(bytesOfInt []byte) uint {
	// pad bytesOfInt so that it fits an uint64
	const sizeOfUint64 = 8
	if len(bytesOfInt) > sizeOfUint64 {
		bytesOfInt = bytesOfInt[len(bytesOfInt)-sizeOfUint64:]
	}
	paddedBytes := make([]byte, sizeOfUint64-len(bytesOfInt), sizeOfUint64)
	paddedBytes = append(paddedBytes, bytesOfInt...)

	return uint(binary.BigEndian.Uint64(paddedBytes))
}

// Number of bytes required to encode value
func nBytesForInt(value int) int {
	i := 1
	for i < 8 && value >= (1<<uint(8*i)) {
		i++
	}
	return i
}

func intToBytes(value uint, size int) []byte {
	bytesOfInt := make([]byte, 8)
	binary.BigEndian.PutUint64(bytesOfInt, uint64(value))
	return bytesOfInt[len(bytesOfInt)-size:]
}

// parses one subsection of an xref table into references
func parseXrefBlock(slice []byte, references map[uint]interface{}) (int, error) {
	var i int

	// object number
	token, n := nextToken(slice[i:])
	objectNumber, err := strconv.ParseUint(string(token), 10, 64)
	if err != nil {
		return i, malformedf("xref subsection object number %q", token)
	}
	i += n

	// number of objects
	token, n = nextToken(slice[i:])
	nObjects, err := strconv.ParseUint(string(token), 10, 64)
	if err != nil {
		return i, malformedf("xref subsection count %q", token)
	}
	i += n

	for j := 0; j < int(nObjects); j++ {
		// offset
		token, n = nextToken(slice[i:])
		offset, err := strconv.ParseUint(string(token), 10, 64)
		if err != nil {
			return i, malformedf("xref entry offset %q", token)
		}
		i += n

		// generation number
		token, n = nextToken(slice[i:])
		generation, err := strconv.ParseUint(string(token), 10, 64)
		if err != nil {
			return i, malformedf("xref entry generation %q", token)
		}
		i += n

		// type
		entryType, n := nextToken(slice[i:])
		i += n

		var xref crossReference
		switch string(entryType) {
		case "f":
			xref[0] = 0
		case "n":
			xref[0] = 1
		default:
			return i, malformedf("xref entry type %q", entryType)
		}

		xref[1] = uint(offset)
		xref[2] = uint(generation)

		// the first section found masks earlier ones
		if _, ok := references[uint(objectNumber)]; !ok {
			references[uint(objectNumber)] = xref
		}
		objectNumber++
	}

	return i, nil
}

func sortUints(values []uint) {
	sort.Slice(values, func(i, j int) bool { return values[i] < values[j] })
}
