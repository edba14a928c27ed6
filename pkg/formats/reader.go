// Package formats provides low-level readers for compiled geometry files.
package formats

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrTruncatedInput is returned when a read needs more bytes than remain.
var ErrTruncatedInput = errors.New("truncated input")

// Reader is a forward-only cursor over an in-memory buffer.
// All multi-byte values are little-endian.
type Reader struct {
	data []byte
	off  int
}

// NewReader returns a cursor positioned at the start of data.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Offset returns the index of the next unread byte.
func (r *Reader) Offset() int {
	return r.off
}

// Len returns the size of the underlying buffer.
func (r *Reader) Len() int {
	return len(r.data)
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int {
	return len(r.data) - r.off
}

// Done reports whether the cursor has reached the end of the buffer.
func (r *Reader) Done() bool {
	return r.off >= len(r.data)
}

// need checks that n bytes are available without moving the cursor.
func (r *Reader) need(n int) error {
	if n < 0 || r.Remaining() < n {
		return fmt.Errorf("%w: need %d bytes at offset %d, have %d", ErrTruncatedInput, n, r.off, r.Remaining())
	}
	return nil
}

// ReadFixed decodes a fixed-size value of type T and advances past it.
// T must be a type accepted by encoding/binary (fixed-size fields only).
func ReadFixed[T any](r *Reader) (T, error) {
	var v T
	size := binary.Size(v)
	if size < 0 {
		return v, fmt.Errorf("formats: %T is not a fixed-size type", v)
	}
	if err := r.need(size); err != nil {
		return v, err
	}
	if _, err := binary.Decode(r.data[r.off:r.off+size], binary.LittleEndian, &v); err != nil {
		return v, err
	}
	r.off += size
	return v, nil
}

// ReadBytes copies the next n bytes into a new slice and advances past them.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	if err := r.need(n); err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, r.data[r.off:r.off+n])
	r.off += n
	return out, nil
}

// View returns the next n bytes without copying and advances past them.
// The returned slice aliases the buffer.
func (r *Reader) View(n int) ([]byte, error) {
	if err := r.need(n); err != nil {
		return nil, err
	}
	out := r.data[r.off : r.off+n : r.off+n]
	r.off += n
	return out, nil
}

// Skip advances the cursor by n bytes.
func (r *Reader) Skip(n int) error {
	if err := r.need(n); err != nil {
		return err
	}
	r.off += n
	return nil
}

// ReadU8 reads a uint8.
func (r *Reader) ReadU8() (uint8, error) {
	if err := r.need(1); err != nil {
		return 0, err
	}
	v := r.data[r.off]
	r.off++
	return v, nil
}

// ReadU16 reads a little-endian uint16.
func (r *Reader) ReadU16() (uint16, error) {
	if err := r.need(2); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint16(r.data[r.off:])
	r.off += 2
	return v, nil
}

// ReadU32 reads a little-endian uint32.
func (r *Reader) ReadU32() (uint32, error) {
	if err := r.need(4); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint32(r.data[r.off:])
	r.off += 4
	return v, nil
}

// ReadBool reads a one-byte boolean. Any non-zero byte is true.
func (r *Reader) ReadBool() (bool, error) {
	b, err := r.ReadU8()
	return b != 0, err
}

// ReadString reads n bytes as a string. No terminator is expected.
func (r *Reader) ReadString(n int) (string, error) {
	if err := r.need(n); err != nil {
		return "", err
	}
	s := string(r.data[r.off : r.off+n])
	r.off += n
	return s, nil
}

// ReadString16 reads a uint16 length followed by that many bytes of string.
func (r *Reader) ReadString16() (string, error) {
	n, err := r.ReadU16()
	if err != nil {
		return "", err
	}
	return r.ReadString(int(n))
}
