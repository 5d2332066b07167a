// Package zipstream reads ZIP and JAR archives as a forward-only stream of entries.
//
// Unlike archive/zip, which needs random access to the central directory, a Reader walks the local
// file headers in order and never seeks, so an archive can be consumed straight from an HTTP
// response body. The API mirrors archive/tar: Next advances to the following entry and Read
// returns the decompressed content of the current one.
package zipstream

import (
	"bufio"
	"encoding/binary"
	"hash"
	"hash/crc32"
	"io"
	"strings"

	"github.com/klauspost/compress/flate"
	"github.com/pkg/errors"
)

const (
	localHeaderSignature    = 0x04034b50
	centralHeaderSignature  = 0x02014b50
	endOfCentralSignature   = 0x06054b50
	zip64EndSignature       = 0x06064b50
	dataDescriptorSignature = 0x08074b50

	localHeaderLen = 30 // fixed part of a local file header, signature included

	zip64ExtraID = 0x0001

	flagEncrypted      = 0x1
	flagDataDescriptor = 0x8

	uint32Max = 0xffffffff
)

const (
	Store   uint16 = 0
	Deflate uint16 = 8
)

var (
	ErrFormat       = errors.New("zipstream: not a valid zip file")
	ErrAlgorithm    = errors.New("zipstream: unsupported compression algorithm")
	ErrChecksum     = errors.New("zipstream: checksum error")
	ErrEncrypted    = errors.New("zipstream: encrypted entries are not supported")
	ErrUnsizedEntry = errors.New("zipstream: stored entry without size cannot be skipped")
)

// Entry describes a single archive entry as found in its local file header.
type Entry struct {
	Name             string
	Method           uint16
	Flags            uint16
	CRC32            uint32
	CompressedSize   uint64
	UncompressedSize uint64

	zip64 bool
}

// IsDir reports whether the entry is a directory marker.
func (e *Entry) IsDir() bool {
	return strings.HasSuffix(e.Name, "/")
}

func (e *Entry) hasDataDescriptor() bool {
	return e.Flags&flagDataDescriptor != 0
}

// Reader provides sequential access to the entries of a ZIP stream.
type Reader struct {
	r   *bufio.Reader
	cur *entryReader
	err error // sticky error, the stream position is unknown after it
}

// NewReader creates a new Reader reading from r.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: bufio.NewReader(r)}
}

// Next advances to the next entry. Unread data of the current entry is discarded. io.EOF is
// returned once the central directory or the end of the stream is reached.
func (zr *Reader) Next() (*Entry, error) {
	if zr.err != nil {
		return nil, zr.err
	}

	if zr.cur != nil {
		if err := zr.cur.skip(); err != nil {
			zr.err = err
			return nil, err
		}
		zr.cur = nil
	}

	entry, err := zr.readLocalHeader()
	if err != nil {
		zr.err = err
		return nil, err
	}

	cur, err := zr.newEntryReader(entry)
	if err != nil {
		zr.err = err
		return nil, err
	}
	zr.cur = cur

	return entry, nil
}

// Read reads the decompressed content of the current entry. io.EOF marks the end of the entry.
func (zr *Reader) Read(p []byte) (int, error) {
	if zr.cur == nil {
		if zr.err != nil {
			return 0, zr.err
		}
		return 0, io.EOF
	}
	return zr.cur.Read(p)
}

func (zr *Reader) readLocalHeader() (*Entry, error) {
	var sig [4]byte
	if _, err := io.ReadFull(zr.r, sig[:]); err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, errors.WithMessage(err, "failed to read header signature")
	}

	switch binary.LittleEndian.Uint32(sig[:]) {
	case localHeaderSignature:
	case centralHeaderSignature, endOfCentralSignature, zip64EndSignature:
		return nil, io.EOF
	default:
		return nil, ErrFormat
	}

	var buf [localHeaderLen - 4]byte
	if _, err := io.ReadFull(zr.r, buf[:]); err != nil {
		return nil, errors.WithMessage(noEOF(err), "failed to read local file header")
	}

	b := readBuf(buf[:])
	b.uint16() // version needed to extract
	entry := &Entry{
		Flags:  b.uint16(),
		Method: b.uint16(),
	}
	b.uint32() // modified time and date
	entry.CRC32 = b.uint32()
	entry.CompressedSize = uint64(b.uint32())
	entry.UncompressedSize = uint64(b.uint32())
	nameLen := int(b.uint16())
	extraLen := int(b.uint16())

	name := make([]byte, nameLen)
	if _, err := io.ReadFull(zr.r, name); err != nil {
		return nil, errors.WithMessage(noEOF(err), "failed to read entry name")
	}
	entry.Name = string(name)

	extra := make([]byte, extraLen)
	if _, err := io.ReadFull(zr.r, extra); err != nil {
		return nil, errors.WithMessagef(noEOF(err), "failed to read extra field of %s", entry.Name)
	}
	parseZip64Extra(entry, extra)

	return entry, nil
}

// parseZip64Extra replaces saturated 32 bit sizes with the values of the zip64 extra field.
func parseZip64Extra(entry *Entry, extra []byte) {
	for b := readBuf(extra); len(b) >= 4; {
		id := b.uint16()
		size := int(b.uint16())
		if len(b) < size {
			return
		}
		field := readBuf(b[:size])
		b = b[size:]

		if id != zip64ExtraID {
			continue
		}

		entry.zip64 = true
		if entry.UncompressedSize == uint32Max && len(field) >= 8 {
			entry.UncompressedSize = field.uint64()
		}
		if entry.CompressedSize == uint32Max && len(field) >= 8 {
			entry.CompressedSize = field.uint64()
		}
	}
}

func (zr *Reader) newEntryReader(entry *Entry) (*entryReader, error) {
	er := &entryReader{
		zr:    zr,
		entry: entry,
		hash:  crc32.NewIEEE(),
	}

	if entry.hasDataDescriptor() {
		if entry.Method != Deflate {
			// the end of the data cannot be found without the central directory
			return nil, errors.WithMessage(ErrUnsizedEntry, entry.Name)
		}
		// the deflate stream is self terminating, and flate reads no further than its end
		// because bufio.Reader is an io.ByteReader
		er.raw = zr.r
	} else {
		er.limited = &io.LimitedReader{R: zr.r, N: int64(entry.CompressedSize)}
		er.raw = er.limited
	}

	switch {
	case entry.Flags&flagEncrypted != 0:
		er.unreadable = ErrEncrypted
	case entry.Method == Store:
		er.content = er.raw
	case entry.Method == Deflate:
		rc := flate.NewReader(er.raw)
		er.content = rc
		er.closer = rc
	default:
		er.unreadable = ErrAlgorithm
	}

	return er, nil
}

// entryReader decompresses and verifies the content of a single entry.
type entryReader struct {
	zr      *Reader
	entry   *Entry
	raw     io.Reader        // compressed bytes
	limited *io.LimitedReader // set when the compressed size is known
	content io.Reader         // decompressed bytes
	closer  io.Closer

	hash       hash.Hash32
	nread      uint64
	unreadable error // content cannot be decoded, but the raw bytes can still be skipped
	done       bool  // the stream is positioned after the entry
	err        error
}

func (er *entryReader) Read(p []byte) (int, error) {
	if er.err != nil {
		return 0, er.err
	}

	if er.unreadable != nil {
		er.err = er.unreadable
		return 0, er.err
	}

	n, err := er.content.Read(p)
	er.hash.Write(p[:n])
	er.nread += uint64(n)

	if err == io.EOF {
		if err = er.finish(); err == nil {
			err = io.EOF
		}
	} else if err != nil {
		err = errors.WithMessagef(noEOF(err), "failed to read %s", er.entry.Name)
	}

	if err != nil {
		er.err = err
	}

	return n, err
}

// finish positions the stream after the entry and verifies size and checksum.
func (er *entryReader) finish() error {
	if er.closer != nil {
		er.closer.Close()
	}

	if er.limited != nil {
		// flate may stop before the end of the compressed data
		if _, err := io.Copy(io.Discard, er.limited); err != nil {
			return errors.WithMessagef(err, "failed to skip %s", er.entry.Name)
		}
		if er.limited.N > 0 {
			return errors.WithMessagef(io.ErrUnexpectedEOF, "failed to skip %s", er.entry.Name)
		}
	}

	if er.entry.hasDataDescriptor() {
		if err := er.readDataDescriptor(); err != nil {
			return err
		}
	}

	er.done = true

	if er.nread != er.entry.UncompressedSize {
		return errors.WithMessagef(ErrFormat, "size mismatch for %s", er.entry.Name)
	}

	if er.hash.Sum32() != er.entry.CRC32 {
		return errors.WithMessage(ErrChecksum, er.entry.Name)
	}

	return nil
}

func (er *entryReader) readDataDescriptor() error {
	sizeLen := 4
	if er.entry.zip64 {
		sizeLen = 8
	}

	// the descriptor signature is optional
	var first [4]byte
	if _, err := io.ReadFull(er.zr.r, first[:]); err != nil {
		return errors.WithMessagef(noEOF(err), "failed to read data descriptor of %s", er.entry.Name)
	}
	crc := binary.LittleEndian.Uint32(first[:])
	if crc == dataDescriptorSignature {
		if _, err := io.ReadFull(er.zr.r, first[:]); err != nil {
			return errors.WithMessagef(noEOF(err), "failed to read data descriptor of %s", er.entry.Name)
		}
		crc = binary.LittleEndian.Uint32(first[:])
	}

	sizes := make([]byte, 2*sizeLen)
	if _, err := io.ReadFull(er.zr.r, sizes); err != nil {
		return errors.WithMessagef(noEOF(err), "failed to read data descriptor of %s", er.entry.Name)
	}

	b := readBuf(sizes)
	er.entry.CRC32 = crc
	if er.entry.zip64 {
		er.entry.CompressedSize = b.uint64()
		er.entry.UncompressedSize = b.uint64()
	} else {
		er.entry.CompressedSize = uint64(b.uint32())
		er.entry.UncompressedSize = uint64(b.uint32())
	}

	return nil
}

// skip discards the rest of the entry so that the next local header can be read.
//
// An entry with a known compressed size is skipped by its raw bytes, so a corrupt or undecodable
// entry never ends the stream. An entry sized by a data descriptor can only be skipped by
// decoding it to its end, and a decoding failure there leaves the stream position unknown.
func (er *entryReader) skip() error {
	if er.done {
		return nil
	}

	if er.limited == nil {
		if er.err == nil {
			io.Copy(io.Discard, er)
		}

		if er.done {
			return nil
		}

		if er.err != nil {
			return er.err
		}

		return errors.WithMessagef(ErrFormat, "failed to skip %s", er.entry.Name)
	}

	if er.closer != nil {
		er.closer.Close()
	}

	if _, err := io.Copy(io.Discard, er.limited); err != nil {
		return errors.WithMessagef(err, "failed to skip %s", er.entry.Name)
	}

	if er.limited.N > 0 {
		return errors.WithMessagef(io.ErrUnexpectedEOF, "failed to skip %s", er.entry.Name)
	}

	er.done = true

	return nil
}

func noEOF(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}

type readBuf []byte

func (b *readBuf) uint16() uint16 {
	v := binary.LittleEndian.Uint16(*b)
	*b = (*b)[2:]
	return v
}

func (b *readBuf) uint32() uint32 {
	v := binary.LittleEndian.Uint32(*b)
	*b = (*b)[4:]
	return v
}

func (b *readBuf) uint64() uint64 {
	v := binary.LittleEndian.Uint64(*b)
	*b = (*b)[8:]
	return v
}
