package pdf

// NOTE for encryption:
// encrypt during Add
// decrypt during Get

import (
	"bytes"
	"io"
	"os"
	"sort"

	"github.com/edsrzf/mmap-go"
	"github.com/juju/errgo"
)

type freeObject uint // generation number for next use of the object number where this is stored

// File manages access to objects stored in a PDF file.
// Contains the non-managed keys from the file trailer.
type File struct {
	filename string
	file     *os.File
	mmap     mmap.MMap
	data     []byte // the mmap, or the bytes given to Parse
	created  bool
	version  string

	// cross reference for existing objects
	// indirect object for new objects
	// free object for newly freed objects
	// map key is the object number
	// make sure generation number is >= existing generation number when modifying
	objects map[uint]interface{}
	size    uint // max object number + 1

	prev Integer

	// The catalog dictionary for the PDF document contained in the file.
	Root ObjectReference

	// The Document's encryption dictionary
	Encrypt Dictionary

	// The document's information dictionary
	Info ObjectReference

	// An array of two byte-strings constituting a file identifier for the file.
	ID Array
}

// New creates an in-memory File with no objects.
// version is the header version, e.g. "1.3".
func New(version string) *File {
	if version == "" {
		version = "1.7"
	}
	return &File{
		objects: map[uint]interface{}{},
		created: true,
		version: version,
		size:    1,
	}
}

// Open opens a PDF file for manipulation of its objects.
func Open(filename string) (*File, error) {
	file := &File{
		filename: filename,
		objects:  map[uint]interface{}{},
	}

	var err error
	file.file, err = os.Open(filename)
	if err != nil {
		return nil, maskErr(err)
	}

	file.mmap, err = mmap.Map(file.file, mmap.RDONLY, 0)
	if err != nil {
		// Close only releases mapped files
		file.file.Close()
		return nil, maskErr(err)
	}
	file.data = file.mmap

	if err := file.load(); err != nil {
		file.Close()
		return nil, err
	}

	return file, nil
}

// Parse loads a File from the bytes of a complete PDF.
// data must not be modified while the File is in use.
func Parse(data []byte) (*File, error) {
	file := &File{
		objects: map[uint]interface{}{},
		data:    data,
	}

	if err := file.load(); err != nil {
		return nil, err
	}

	return file, nil
}

func (f *File) load() error {
	// check pdf file header
	if len(f.data) < 8 || !bytes.Equal(f.data[:7], []byte("%PDF-1.")) {
		return malformedf("file does not have PDF header")
	}
	f.version = string(f.data[5:8])

	return maskErr(f.loadReferences())
}

// Create creates a new PDF file with no objects.
func Create(filename string) (*File, error) {
	file := New("1.7")
	file.filename = filename

	// create enough of the pdf so that
	// appends will not break things
	f, err := os.Create(filename)
	if err != nil {
		return nil, maskErr(err)
	}
	defer f.Close()

	if _, err := f.Write([]byte("%PDF-" + file.version)); err != nil {
		return nil, maskErr(err)
	}

	return file, nil
}

// Version returns the version from the file header, e.g. "1.3".
func (f *File) Version() string {
	return f.version
}

// SetVersion changes the version written in the file header by WriteTo.
func (f *File) SetVersion(version string) {
	f.version = version
}

// Clone returns an in-memory copy of the File sharing the underlying
// data. Objects added to or freed in the copy do not affect f.
func (f *File) Clone() *File {
	clone := &File{
		data:    f.data,
		created: true,
		version: f.version,
		objects: make(map[uint]interface{}, len(f.objects)),
		size:    f.size,
		prev:    f.prev,
		Root:    f.Root,
		Info:    f.Info,
	}
	for objectNumber, obj := range f.objects {
		clone.objects[objectNumber] = obj
	}
	if f.Encrypt != nil {
		clone.Encrypt = Dictionary{}
		for name, obj := range f.Encrypt {
			clone.Encrypt[name] = obj
		}
	}
	clone.ID = append(Array(nil), f.ID...)
	return clone
}

// Get returns the referenced object.
// When the object does not exist, Null is returned.
func (f *File) Get(reference ObjectReference) Object {
	object := f.get(reference)

	// deal with streams that have references to lengths
	if streamObj, ok := object.(Stream); ok {
		if lengthRef, ok := streamObj.Dictionary[Name("Length")].(ObjectReference); ok {
			if lengthRef.ObjectNumber == reference.ObjectNumber {
				return Null{malformedf("%v is its own length", reference)}
			}
			// lengths are integers, so they are looked up without this step
			length, ok := f.get(lengthRef).(Integer)
			if ok && (length < 0 || int(length) > len(streamObj.Stream)) {
				return Null{malformedf("%v has length %d, the stream has %d bytes", reference, length, len(streamObj.Stream))}
			}
			if ok {
				dict := Dictionary{}
				for name, obj := range streamObj.Dictionary {
					dict[name] = obj
				}
				dict[Name("Length")] = length
				streamObj.Dictionary = dict
				streamObj.Stream = streamObj.Stream[:int(length)]
			}
		}
		object = streamObj
	}

	return object
}

// get loads the referenced object without resolving stream lengths
func (f *File) get(reference ObjectReference) Object {
	objectRaw, ok := f.objects[reference.ObjectNumber]
	if !ok {
		return Null{errgo.WithCausef(nil, ErrNotFound, "%s not found", reference)}
	}

	switch typed := objectRaw.(type) {
	case crossReference: // existing object
		switch typed[0] {
		case 0: // free entry
			return Null{errgo.WithCausef(nil, ErrFreed, "%s is a free object", reference)}
		case 1: // normal
			offset := typed[1]
			if offset >= uint(len(f.data)) {
				return Null{malformedf("%s has offset %d past the end of the file", reference, offset)}
			}
			obj, _, err := parseIndirectObject(f.data[offset:])
			if err != nil {
				return Null{pushErrf(err, "error parsing %s", reference)}
			}

			iobj := obj.(IndirectObject)
			if iobj.Object == nil {
				return Null{malformedf("%v's object is nil", reference)}
			}
			return iobj.Object
		case 2: // in object stream
			object, err := f.getFromObjectStream(reference, typed)
			if err != nil {
				return Null{err}
			}
			return object
		default:
			return Null{malformedf("%s has unknown cross reference type %d", reference, typed[0])}
		}
	case IndirectObject: // new object
		return typed.Object
	case freeObject: // newly freed object
		return Null{errgo.WithCausef(nil, ErrFreed, "%v freed after pdf was loaded", reference)}
	}
	return Null{malformedf("%v has no usable entry", reference)}
}

func (f *File) getFromObjectStream(reference ObjectReference, xref crossReference) (Object, error) {
	// get the object stream, which cannot itself be in an object stream
	// (§7.5.7)
	objectStreamRef := ObjectReference{ObjectNumber: xref[1]}
	if entry, ok := f.objects[xref[1]].(crossReference); ok && entry[0] == 2 {
		return nil, malformedf("object stream %v of %v is inside an object stream", objectStreamRef, reference)
	}
	// the parser already found the end of the stream, so an indirect
	// Length is not needed and not followed
	objectStream, ok := f.get(objectStreamRef).(Stream)
	if !ok {
		return nil, malformedf("%v should be in object stream %v, but %v is not a stream", reference, objectStreamRef, objectStreamRef)
	}

	N, _ := objectStream.Dictionary[Name("N")].(Integer)
	first, _ := objectStream.Dictionary[Name("First")].(Integer)
	if N < 0 || first < 0 {
		return nil, malformedf("object stream %v has N %d and First %d", objectStreamRef, N, first)
	}
	stream, err := objectStream.Decode()
	if err != nil {
		return nil, pushErrf(err, "could not decode %v", objectStreamRef)
	}

	// parse the index (object number and offset pairs)
	index := []Integer{}
	offset := 0
	for i := 0; i < int(N)*2; i++ {
		obj, n, err := parseNumeric(stream[offset:])
		if err != nil {
			return nil, pushErrf(err, "unable to parse object stream index of %v", objectStreamRef)
		}

		integer, ok := obj.(Integer)
		if !ok {
			return nil, malformedf("object stream index of %v has a non integer", objectStreamRef)
		}
		index = append(index, integer)
		offset += n
	}

	// find the offset for the object we are looking for,
	// if the index from the cross reference is wrong,
	// search for the correct one
	objectOffset := -1
	start := int(xref[2]) * 2
	if start+1 < len(index) && index[start] == Integer(reference.ObjectNumber) {
		objectOffset = int(index[start+1])
	} else {
		for i := 0; i+1 < len(index); i += 2 {
			if index[i] == Integer(reference.ObjectNumber) {
				objectOffset = int(index[i+1])
				break
			}
		}
	}
	if objectOffset < 0 || int(first)+objectOffset < 0 || int(first)+objectOffset >= len(stream) {
		return nil, errgo.WithCausef(nil, ErrNotFound, "%v not in object stream %v", reference, objectStreamRef)
	}

	// grab the object
	object, _, err := parseObject(stream[int(first)+objectOffset:])
	if err != nil {
		return nil, pushErrf(err, "unable to parse %v in object stream", reference)
	}
	return object, nil
}

// Add returns the object reference of the object after adding it to the file.
// An IndirectObject's ObjectReference will be used,
// otherwise a free ObjectReference will be used.
//
// If an IndirectObject's ObjectReference also refers to an existing
// object, the newly added IndirectObject will mask the existing one.
// Only the most recently added object will be Saved to disk.
// GenerationNumber must be greater than or equal to the largest existing
// GenerationNumber for that ObjectNumber.
func (f *File) Add(obj Object) (ObjectReference, error) {
	ref := ObjectReference{}

	switch typed := obj.(type) {
	case IndirectObject:
		ref = typed.ObjectReference
		if ref.ObjectNumber == 0 {
			return ref, malformedf("object number 0 is reserved")
		}

		// check to see if the generation number works
		if existing, ok := f.objects[ref.ObjectNumber]; ok {
			// determine the minimum allowed generation number
			var minGenerationNumber uint
			switch typed := existing.(type) {
			case crossReference: // existing object
				switch typed[0] {
				case 0, 1: // free entry, normal
					minGenerationNumber = typed[2]
				case 2: // in object stream
					// objects in object streams must have a
					// generation number of 0
					minGenerationNumber = 0
				}
			case IndirectObject: // new object
				minGenerationNumber = typed.GenerationNumber
			case freeObject: // newly freed object
				minGenerationNumber = uint(typed)
			}

			if ref.GenerationNumber < minGenerationNumber {
				ref.GenerationNumber = minGenerationNumber
				return ref, errgo.WithCausef(nil, ErrGeneration, "%v needs a generation number of at least %d", typed.ObjectReference, minGenerationNumber)
			}
		}

		f.objects[ref.ObjectNumber] = typed
		if ref.ObjectNumber >= f.size {
			f.size = ref.ObjectNumber + 1
		}
	default:
		objectNumber := f.size
		f.size++

		ref.ObjectNumber = objectNumber

		f.objects[objectNumber] = IndirectObject{
			ObjectReference: ref,
			Object:          obj,
		}
	}
	return ref, nil
}

// Reserve returns an unused object reference, to be filled later by
// adding an IndirectObject with it. Needed for objects that refer to
// each other, e.g. a page tree and its pages.
func (f *File) Reserve() ObjectReference {
	ref := ObjectReference{ObjectNumber: f.size}
	f.size++
	f.objects[ref.ObjectNumber] = IndirectObject{
		ObjectReference: ref,
		Object:          Null{},
	}
	return ref
}

// Free the object with the specified number.
// Will automatically determine and increment the generation number.
func (f *File) Free(objectNumber uint) {
	obj, ok := f.objects[objectNumber]
	if !ok {
		// object does not exist, and therefore is already free
		return
	}

	switch typed := obj.(type) {
	case crossReference: // existing object
		switch typed[0] {
		case 0: // free entry
			// no-op
			// the object is already free
		case 1: // normal
			f.objects[objectNumber] = freeObject(typed[2] + 1)
		case 2: // in object stream
			// objects in object streams must have a
			// generation number of 0
			f.objects[objectNumber] = freeObject(1)
		}
	case IndirectObject: // new object
		f.objects[objectNumber] = freeObject(typed.GenerationNumber + 1)
	case freeObject: // newly freed object
		// no-op
		// already free
	}
}

// References returns the references of all objects that are in use,
// sorted by object number.
func (f *File) References() []ObjectReference {
	refs := make([]ObjectReference, 0, len(f.objects))
	for _, objectNumber := range f.objectNumbers() {
		if ref, ok := f.reference(objectNumber); ok {
			refs = append(refs, ref)
		}
	}
	return refs
}

// Len returns the number of objects in use.
func (f *File) Len() int {
	return len(f.References())
}

// reference for an object number, ok is false for free objects
func (f *File) reference(objectNumber uint) (ObjectReference, bool) {
	ref := ObjectReference{ObjectNumber: objectNumber}
	switch typed := f.objects[objectNumber].(type) {
	case crossReference:
		switch typed[0] {
		case 1:
			ref.GenerationNumber = typed[2]
			return ref, true
		case 2:
			return ref, true
		}
	case IndirectObject:
		ref.GenerationNumber = typed.GenerationNumber
		return ref, true
	}
	return ref, false
}

func (f *File) objectNumbers() []uint {
	numbers := make([]uint, 0, len(f.objects))
	for objectNumber := range f.objects {
		if objectNumber == 0 {
			continue
		}
		numbers = append(numbers, objectNumber)
	}
	sort.Slice(numbers, func(i, j int) bool { return numbers[i] < numbers[j] })
	return numbers
}

// Close the File, does not Save.
func (f *File) Close() error {
	if f.mmap == nil {
		// created or parsed files have nothing to clean up
		return nil
	}

	err := f.mmap.Unmap()
	if err != nil {
		return maskErr(err)
	}
	f.mmap = nil
	f.data = nil

	err = f.file.Close()
	if err != nil {
		return maskErr(err)
	}

	return nil
}

// trailer holds the keys managed by the File
func (f *File) trailer() Dictionary {
	trailer := Dictionary{}

	// Root
	trailer[Name("Root")] = f.Root

	// Encrypt
	if len(f.Encrypt) != 0 {
		trailer[Name("Encrypt")] = f.Encrypt
	}

	// Info
	if f.Info.ObjectNumber != 0 {
		trailer[Name("Info")] = f.Info
	}

	// ID
	if len(f.ID) != 0 {
		trailer[Name("ID")] = f.ID
	}

	return trailer
}

var _ io.WriterTo = (*File)(nil)
