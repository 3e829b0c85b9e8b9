// Package stream implements the little-endian, alignment-padded binary wire
// format shared by variants, properties, nodes, and actions.
//
// Primitive widths (bytes): i8/u8 1, i16/u16 2, i32/u32 4, i64/u64 8, f32 4,
// f64 8. Strings are written as an i32 length followed by that many bytes,
// padded with zero bytes to the next multiple of 4. Byte blocks follow the
// same length+pad convention.
package stream

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"math"
)

// ErrTruncated is returned when a read runs past the end of the buffer.
var ErrTruncated = errors.New("stream: truncated read")

// Writer accumulates a little-endian, padded binary record.
type Writer struct {
	buf bytes.Buffer
}

// NewWriter returns an empty Writer.
func NewWriter() *Writer {
	return &Writer{}
}

// Bytes returns the accumulated record.
func (w *Writer) Bytes() []byte {
	return w.buf.Bytes()
}

func (w *Writer) WriteBool(v bool) error {
	if v {
		return w.buf.WriteByte(1)
	}
	return w.buf.WriteByte(0)
}

func (w *Writer) WriteI8(v int8) error  { return w.buf.WriteByte(byte(v)) }
func (w *Writer) WriteU8(v uint8) error { return w.buf.WriteByte(v) }

func (w *Writer) WriteI16(v int16) error { return w.writeFixed(uint64(uint16(v)), 2) }
func (w *Writer) WriteU16(v uint16) error { return w.writeFixed(uint64(v), 2) }
func (w *Writer) WriteI32(v int32) error { return w.writeFixed(uint64(uint32(v)), 4) }
func (w *Writer) WriteU32(v uint32) error { return w.writeFixed(uint64(v), 4) }
func (w *Writer) WriteI64(v int64) error { return w.writeFixed(uint64(v), 8) }
func (w *Writer) WriteU64(v uint64) error { return w.writeFixed(v, 8) }

func (w *Writer) WriteF32(v float32) error {
	return w.WriteU32(math.Float32bits(v))
}

func (w *Writer) WriteF64(v float64) error {
	return w.WriteU64(math.Float64bits(v))
}

func (w *Writer) writeFixed(v uint64, width int) error {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	_, err := w.buf.Write(b[:width])
	return err
}

// WriteString writes the §6.1 string convention: i32 length, the raw bytes,
// then zero padding to the next multiple of 4.
func (w *Writer) WriteString(s string) error {
	return w.WriteBytesBlock([]byte(s))
}

// WriteBytesBlock writes an i32 length followed by the raw bytes, padded to
// a multiple of 4 — the convention used for both strings and Bytes node
// payloads.
func (w *Writer) WriteBytesBlock(b []byte) error {
	if err := w.WriteI32(int32(len(b))); err != nil {
		return err
	}
	if _, err := w.buf.Write(b); err != nil {
		return err
	}
	return w.writePad(len(b))
}

// WriteRaw writes bytes with no length prefix and no padding.
func (w *Writer) WriteRaw(b []byte) error {
	_, err := w.buf.Write(b)
	return err
}

func (w *Writer) writePad(n int) error {
	p := padLen(n)
	if p == 0 {
		return nil
	}
	var zeros [4]byte
	_, err := w.buf.Write(zeros[:p])
	return err
}

func padLen(n int) int {
	return (4 - n%4) % 4
}

// Reader consumes a record written by Writer. Once a read fails the Reader
// is flagged failed and every subsequent read returns ErrTruncated without
// touching the underlying buffer, matching the spec's "first failure
// short-circuits the rest" rule (§7).
type Reader struct {
	r      *bytes.Reader
	failed bool
}

// NewReader wraps data for reading.
func NewReader(data []byte) *Reader {
	return &Reader{r: bytes.NewReader(data)}
}

// Failed reports whether any prior read on this Reader failed.
func (r *Reader) Failed() bool {
	return r.failed
}

func (r *Reader) fail(err error) error {
	r.failed = true
	return err
}

func (r *Reader) ReadBool() (bool, error) {
	if r.failed {
		return false, ErrTruncated
	}
	b, err := r.r.ReadByte()
	if err != nil {
		return false, r.fail(ErrTruncated)
	}
	return b != 0, nil
}

func (r *Reader) ReadI8() (int8, error) {
	v, err := r.readFixed(1)
	return int8(v), err
}

func (r *Reader) ReadU8() (uint8, error) {
	v, err := r.readFixed(1)
	return uint8(v), err
}

func (r *Reader) ReadI16() (int16, error) {
	v, err := r.readFixed(2)
	return int16(v), err
}

func (r *Reader) ReadU16() (uint16, error) {
	v, err := r.readFixed(2)
	return uint16(v), err
}

func (r *Reader) ReadI32() (int32, error) {
	v, err := r.readFixed(4)
	return int32(v), err
}

func (r *Reader) ReadU32() (uint32, error) {
	v, err := r.readFixed(4)
	return uint32(v), err
}

func (r *Reader) ReadI64() (int64, error) {
	v, err := r.readFixed(8)
	return int64(v), err
}

func (r *Reader) ReadU64() (uint64, error) {
	return r.readFixed(8)
}

func (r *Reader) ReadF32() (float32, error) {
	v, err := r.ReadU32()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(v), nil
}

func (r *Reader) ReadF64() (float64, error) {
	v, err := r.ReadU64()
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(v), nil
}

func (r *Reader) readFixed(width int) (uint64, error) {
	if r.failed {
		return 0, ErrTruncated
	}
	var b [8]byte
	if _, err := io.ReadFull(r.r, b[:width]); err != nil {
		return 0, r.fail(ErrTruncated)
	}
	return binary.LittleEndian.Uint64(b[:8]), nil
}

// ReadString reads the §6.1 string convention.
func (r *Reader) ReadString() (string, error) {
	b, err := r.ReadBytesBlock()
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ReadBytesBlock reads a length-prefixed, padded byte block.
func (r *Reader) ReadBytesBlock() ([]byte, error) {
	if r.failed {
		return nil, ErrTruncated
	}
	n, err := r.ReadI32()
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, r.fail(ErrTruncated)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r.r, buf); err != nil {
		return nil, r.fail(ErrTruncated)
	}
	if err := r.skipPad(int(n)); err != nil {
		return nil, err
	}
	return buf, nil
}

// ReadRaw reads exactly n unpadded bytes.
func (r *Reader) ReadRaw(n int) ([]byte, error) {
	if r.failed {
		return nil, ErrTruncated
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r.r, buf); err != nil {
		return nil, r.fail(ErrTruncated)
	}
	return buf, nil
}

func (r *Reader) skipPad(n int) error {
	p := padLen(n)
	if p == 0 {
		return nil
	}
	if _, err := r.ReadRaw(p); err != nil {
		return err
	}
	return nil
}
