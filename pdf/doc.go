/*
Package pdf defines and manages objects stored in a PDF.

A PDF file is essentially an append-only, random-access, persistent
object store. PDF documents are built using the objects the file can
manage.

Files are either opened from disk (memory mapped), parsed from a byte
slice, or built in memory with New and serialized with WriteTo.

Methods for random access:
	1. Cross-Reference Table (§7.5.4) and File Trailer (§7.5.5)
	2. Cross-Reference Streams (§7.5.8) (since PDF-1.5)
	3. Hybrid (§7.5.8.4) (since PDF-1.5)
*/
package pdf
