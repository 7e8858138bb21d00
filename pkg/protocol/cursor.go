package protocol

import (
	"encoding/binary"
	"errors"
)

// Encoding is big endian, like every multi-byte integer on the wire.
var Encoding = binary.BigEndian

var (
	// ErrShortBuffer means a read would pass the end of the receive buffer.
	ErrShortBuffer = errors.New("read past end of buffer")
	// ErrUnknownTag means the request tag byte is not a known action.
	ErrUnknownTag = errors.New("unknown action tag")
)

// Reader walks a fixed receive buffer. Every read is bounds-checked against
// the declared buffer length; a failed read leaves the cursor where it was.
type Reader struct {
	b   []byte
	off int
}

func NewReader(b []byte) *Reader {
	return &Reader{b: b}
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int {
	return len(r.b) - r.off
}

func (r *Reader) ReadUint8() (uint8, error) {
	if r.Remaining() < 1 {
		return 0, ErrShortBuffer
	}
	v := r.b[r.off]
	r.off++
	return v, nil
}

func (r *Reader) ReadUint32() (uint32, error) {
	if r.Remaining() < 4 {
		return 0, ErrShortBuffer
	}
	v := Encoding.Uint32(r.b[r.off:])
	r.off += 4
	return v, nil
}

// ReadString reads a length-prefixed UTF-8 string: [u32 length][bytes].
func (r *Reader) ReadString() (string, error) {
	length, err := r.ReadUint32()
	if err != nil {
		return "", err
	}
	if uint32(r.Remaining()) < length {
		r.off -= 4
		return "", ErrShortBuffer
	}
	s := string(r.b[r.off : r.off+int(length)])
	r.off += int(length)
	return s, nil
}

// Writer builds an outgoing frame. Writes never fail; the buffer grows.
type Writer struct {
	b []byte
}

func NewWriter() *Writer {
	return &Writer{b: make([]byte, 0, 64)}
}

func (w *Writer) PutUint8(v uint8) {
	w.b = append(w.b, v)
}

func (w *Writer) PutUint32(v uint32) {
	w.b = Encoding.AppendUint32(w.b, v)
}

// PutString writes a length-prefixed UTF-8 string: [u32 length][bytes].
func (w *Writer) PutString(s string) {
	w.PutUint32(uint32(len(s)))
	w.b = append(w.b, s...)
}

func (w *Writer) Bytes() []byte {
	return w.b
}
