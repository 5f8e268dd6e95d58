package pdf

import (
	"bytes"
	"fmt"
	"io"
	"os"
)

type countingWriter struct {
	w   io.Writer
	n   int64
	err error
}

func (cw *countingWriter) Write(p []byte) (int, error) {
	if cw.err != nil {
		return 0, cw.err
	}
	n, err := cw.w.Write(p)
	cw.n += int64(n)
	cw.err = err
	return n, err
}

func (cw *countingWriter) Printf(format string, args ...interface{}) {
	fmt.Fprintf(cw, format, args...)
}

func writeLineBreakTo(w io.Writer) (int64, error) {
	n, err := w.Write([]byte{'\n', '\n'})
	return int64(n), maskErr(err)
}

// WriteTo writes the complete file to w: header, every object in use
// (in object number order), a cross-reference table (§7.5.4) and the
// trailer (§7.5.5). Objects of an opened file are copied, so the
// result does not depend on the original.
func (f *File) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}

	// the comment marks the file as binary (§7.5.2)
	cw.Printf("%%PDF-%s\n%%\xe2\xe3\xcf\xd3\n", f.version)

	xrefs := map[uint]crossReference{}
	for _, objectNumber := range f.objectNumbers() {
		ref, ok := f.reference(objectNumber)
		if !ok {
			continue
		}

		obj := f.Get(ref)
		if null, ok := obj.(Null); ok && null.Error != nil {
			return cw.n, pushErrf(null.Error, "unable to write %v", ref)
		}

		xrefs[objectNumber] = crossReference{1, uint(cw.n), ref.GenerationNumber}
		if _, err := (IndirectObject{ObjectReference: ref, Object: obj}).writeTo(cw); err != nil {
			return cw.n, maskErr(err)
		}
		cw.Printf("\n")
	}

	// free entries form a linked list through the table starting at 0
	// §7.5.4
	size := f.size
	var free []uint
	for objectNumber := uint(0); objectNumber < size; objectNumber++ {
		if _, ok := xrefs[objectNumber]; !ok {
			free = append(free, objectNumber)
		}
	}
	for i, objectNumber := range free {
		next := uint(0)
		if i+1 < len(free) {
			next = free[i+1]
		}
		generation := uint(0)
		switch typed := f.objects[objectNumber].(type) {
		case freeObject:
			generation = uint(typed)
		case crossReference:
			if typed[0] == 0 {
				generation = typed[2]
			}
		}
		if objectNumber == 0 {
			generation = 65535
		}
		xrefs[objectNumber] = crossReference{0, next, generation}
	}

	xrefOffset := cw.n
	cw.Printf("xref\n0 %d\n", size)
	for objectNumber := uint(0); objectNumber < size; objectNumber++ {
		xref := xrefs[objectNumber]
		entryType := "n"
		if xref[0] == 0 {
			entryType = "f"
		}
		// each entry is exactly 20 bytes long
		cw.Printf("%010d %05d %s\r\n", xref[1], xref[2], entryType)
	}

	trailer := f.trailer()
	trailer[Name("Size")] = Integer(size)

	cw.Printf("trailer\n")
	if _, err := trailer.writeTo(cw); err != nil {
		return cw.n, maskErr(err)
	}
	cw.Printf("\nstartxref\n%d\n%%%%EOF\n", xrefOffset)

	return cw.n, maskErr(cw.err)
}

// Save appends the objects that have been added to the File
// to the file on disk. After saving, the File is still usable.
//
// NOTE: A new object index will be written on each save,
// taking space in the file on disk
func (f *File) Save() error {
	if f.filename == "" {
		return malformedf("file was not opened from or created on disk, use WriteTo")
	}
	return f.saveUsingXrefStream()
}

func (f *File) saveUsingXrefStream() error {
	info, err := os.Stat(f.filename)
	if err != nil {
		return maskErr(err)
	}

	file, err := os.OpenFile(f.filename, os.O_RDWR|os.O_APPEND, 0666)
	if err != nil {
		return maskErr(err)
	}
	defer file.Close()

	offset := info.Size()

	n, err := writeLineBreakTo(file)
	if err != nil {
		return maskErr(err)
	}
	offset += n

	xrefs := map[uint]crossReference{}
	xrefs[0] = crossReference{0, 0, 65535}

	free := []uint{0}
	for _, i := range f.objectNumbers() {
		switch typed := f.objects[i].(type) {
		case crossReference:
			// no-op, don't need to write unchanged objects to file
			// however, we do need to handle the free list
			if typed[0] == 0 {
				free = append(free, i)
			}
		case IndirectObject:
			xrefs[i] = crossReference{1, uint(offset), typed.GenerationNumber}
			n, err = typed.writeTo(file)
			if err != nil {
				return maskErr(err)
			}
			offset += n

			n, err = writeLineBreakTo(file)
			if err != nil {
				return maskErr(err)
			}
			offset += n
		case freeObject:
			xrefs[i] = crossReference{0, 0, uint(typed)}
			free = append(free, i)
		}
	}

	// add an xref for the xrefstream
	xrefstreamObjectNumber := f.size
	f.size++
	xrefs[xrefstreamObjectNumber] = crossReference{1, uint(offset), 0}

	// fill in the free linked list
	for i := 0; i < len(free)-1; i++ {
		xref := xrefs[free[i]]
		xref[1] = free[i+1]
		xrefs[free[i]] = xref
	}

	// group into consecutive sets
	objects := make([]uint, 0, len(xrefs))
	for objectNumber := range xrefs {
		objects = append(objects, objectNumber)
	}
	sortUints(objects)

	groups := [][]uint{}
	groupStart := 0
	for i := 1; i < len(objects); i++ {
		if objects[i] != objects[i-1]+1 {
			groups = append(groups, objects[groupStart:i])
			groupStart = i
		}
	}
	groups = append(groups, objects[groupStart:])

	// Create the xrefstream dictionary (the trailer)
	trailer := f.trailer()
	trailer[Name("Size")] = Integer(f.size)

	// Prev
	if f.prev != 0 {
		trailer[Name("Prev")] = f.prev
	}

	// Add xrefstream specific things to trailer
	trailer[Name("Type")] = Name("XRef")

	// Index
	index := Array{}
	for _, group := range groups {
		index = append(index, Integer(group[0]), Integer(len(group)))
	}
	trailer[Name("Index")] = index

	// layout for the stream (W)
	maxXref := [3]uint{}
	for _, xref := range xrefs {
		for i := 0; i < len(xref); i++ {
			if xref[i] > maxXref[i] {
				maxXref[i] = xref[i]
			}
		}
	}
	nBytes := [3]int{}
	for i := range nBytes {
		nBytes[i] = nBytesForInt(int(maxXref[i]))
	}
	trailer[Name("W")] = Array{Integer(nBytes[0]), Integer(nBytes[1]), Integer(nBytes[2])}

	stream := &bytes.Buffer{}
	for _, group := range groups {
		for _, objectNumber := range group {
			xref := xrefs[objectNumber]
			for i := range xref {
				stream.Write(intToBytes(xref[i], nBytes[i]))
			}
		}
	}

	xrefstream := IndirectObject{
		ObjectReference: ObjectReference{
			ObjectNumber: xrefstreamObjectNumber,
		},
		Object: Stream{
			Dictionary: trailer,
			Stream:     stream.Bytes(),
		},
	}

	_, err = xrefstream.writeTo(file)
	if err != nil {
		return maskErr(err)
	}

	_, err = fmt.Fprintf(file, "\nstartxref\n%d\n%%%%EOF", offset)
	if err != nil {
		return maskErr(err)
	}

	f.prev = Integer(offset)
	f.objects[xrefstreamObjectNumber] = xrefs[xrefstreamObjectNumber]
	return nil
}

// Prune frees every object that cannot be reached from the trailer
// (Root, Info, Encrypt). Returns the number of objects freed.
func (f *File) Prune() int {
	reachable := map[uint]bool{}
	queue := []ObjectReference{}
	visit := func(ref ObjectReference) {
		if !reachable[ref.ObjectNumber] {
			reachable[ref.ObjectNumber] = true
			queue = append(queue, ref)
		}
	}

	walkReferences(f.trailer(), visit)
	for len(queue) > 0 {
		ref := queue[0]
		queue = queue[1:]
		walkReferences(f.Get(ref), visit)
	}

	pruned := 0
	for _, ref := range f.References() {
		if !reachable[ref.ObjectNumber] {
			delete(f.objects, ref.ObjectNumber)
			pruned++
		}
	}
	return pruned
}

// DeleteZeroLengthStreams removes streams without data and every
// reference to them from arrays and dictionaries of the remaining
// objects. Returns the number of streams removed.
func (f *File) DeleteZeroLengthStreams() int {
	deleted := map[ObjectReference]bool{}
	for _, ref := range f.References() {
		if stream, ok := f.Get(ref).(Stream); ok && len(stream.Stream) == 0 {
			deleted[ref] = true
			delete(f.objects, ref.ObjectNumber)
		}
	}
	if len(deleted) == 0 {
		return 0
	}

	for _, ref := range f.References() {
		obj, changed := scrubReferences(f.Get(ref), deleted)
		if changed {
			f.objects[ref.ObjectNumber] = IndirectObject{ObjectReference: ref, Object: obj}
		}
	}
	return len(deleted)
}

// walkReferences calls visit for every ObjectReference inside obj
func walkReferences(obj Object, visit func(ObjectReference)) {
	switch typed := obj.(type) {
	case ObjectReference:
		visit(typed)
	case Array:
		for _, element := range typed {
			walkReferences(element, visit)
		}
	case Dictionary:
		for _, value := range typed {
			walkReferences(value, visit)
		}
	case Stream:
		walkReferences(typed.Dictionary, visit)
	case IndirectObject:
		walkReferences(typed.Object, visit)
	}
}

// scrubReferences returns a copy of obj without references in deleted
func scrubReferences(obj Object, deleted map[ObjectReference]bool) (Object, bool) {
	switch typed := obj.(type) {
	case Array:
		changed := false
		array := make(Array, 0, len(typed))
		for _, element := range typed {
			if ref, ok := element.(ObjectReference); ok && deleted[ref] {
				changed = true
				continue
			}
			element, elementChanged := scrubReferences(element, deleted)
			changed = changed || elementChanged
			array = append(array, element)
		}
		if !changed {
			return typed, false
		}
		return array, true
	case Dictionary:
		changed := false
		dict := make(Dictionary, len(typed))
		for name, value := range typed {
			if ref, ok := value.(ObjectReference); ok && deleted[ref] {
				changed = true
				continue
			}
			value, valueChanged := scrubReferences(value, deleted)
			changed = changed || valueChanged
			dict[name] = value
		}
		if !changed {
			return typed, false
		}
		return dict, true
	case Stream:
		dict, changed := scrubReferences(typed.Dictionary, deleted)
		if !changed {
			return typed, false
		}
		return Stream{Dictionary: dict.(Dictionary), Stream: typed.Stream}, true
	}
	return obj, false
}
