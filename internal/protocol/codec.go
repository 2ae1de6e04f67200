// Package protocol implements the tagged-union wire format exchanged over
// reliable streams and datagrams: a length-prefixed compact binary codec
// whose reads and writes advance through a buffer at stable positions, so a
// truncated buffer fails with a short-read error instead of being misread.
// Each reliable stream carries a single frame per direction, read whole by
// ReadFrame; nothing decodes leftover bytes after that frame.
package protocol

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Reader decodes values from a byte slice using Little-Endian byte order,
// mirroring the teacher's packet.Reader but sized for this protocol's
// compact encodings (uint16-length-prefixed UTF-8 strings instead of UTF-16).
type Reader struct {
	data []byte
	pos  int
}

// NewReader wraps data for sequential decoding.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Position returns the current read offset.
func (r *Reader) Position() int { return r.pos }

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int { return len(r.data) - r.pos }

func (r *Reader) need(n int) error {
	if r.pos+n > len(r.data) {
		return fmt.Errorf("protocol: short read (pos=%d, need=%d, len=%d)", r.pos, n, len(r.data))
	}
	return nil
}

// ReadByte reads a single byte.
func (r *Reader) ReadByte() (byte, error) {
	if err := r.need(1); err != nil {
		return 0, err
	}
	b := r.data[r.pos]
	r.pos++
	return b, nil
}

// ReadBool reads a one-byte boolean.
func (r *Reader) ReadBool() (bool, error) {
	b, err := r.ReadByte()
	return b != 0, err
}

// ReadInt16 reads a signed 16-bit integer.
func (r *Reader) ReadInt16() (int16, error) {
	if err := r.need(2); err != nil {
		return 0, err
	}
	v := int16(binary.LittleEndian.Uint16(r.data[r.pos:]))
	r.pos += 2
	return v, nil
}

// ReadUint16 reads an unsigned 16-bit integer.
func (r *Reader) ReadUint16() (uint16, error) {
	if err := r.need(2); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint16(r.data[r.pos:])
	r.pos += 2
	return v, nil
}

// ReadInt32 reads a signed 32-bit integer.
func (r *Reader) ReadInt32() (int32, error) {
	if err := r.need(4); err != nil {
		return 0, err
	}
	v := int32(binary.LittleEndian.Uint32(r.data[r.pos:]))
	r.pos += 4
	return v, nil
}

// ReadInt64 reads a signed 64-bit integer.
func (r *Reader) ReadInt64() (int64, error) {
	if err := r.need(8); err != nil {
		return 0, err
	}
	v := int64(binary.LittleEndian.Uint64(r.data[r.pos:]))
	r.pos += 8
	return v, nil
}

// ReadFloat32 reads an IEEE-754 single-precision float.
func (r *Reader) ReadFloat32() (float32, error) {
	if err := r.need(4); err != nil {
		return 0, err
	}
	v := math.Float32frombits(binary.LittleEndian.Uint32(r.data[r.pos:]))
	r.pos += 4
	return v, nil
}

// ReadFloat64 reads an IEEE-754 double-precision float.
func (r *Reader) ReadFloat64() (float64, error) {
	if err := r.need(8); err != nil {
		return 0, err
	}
	v := math.Float64frombits(binary.LittleEndian.Uint64(r.data[r.pos:]))
	r.pos += 8
	return v, nil
}

// ReadString reads a length-prefixed (uint16) UTF-8 string.
func (r *Reader) ReadString() (string, error) {
	n, err := r.ReadUint16()
	if err != nil {
		return "", fmt.Errorf("reading string length: %w", err)
	}
	if err := r.need(int(n)); err != nil {
		return "", fmt.Errorf("reading string body: %w", err)
	}
	s := string(r.data[r.pos : r.pos+int(n)])
	r.pos += int(n)
	return s, nil
}

// ReadOptString reads a presence byte followed by a string when present.
func (r *Reader) ReadOptString() (string, bool, error) {
	present, err := r.ReadBool()
	if err != nil {
		return "", false, err
	}
	if !present {
		return "", false, nil
	}
	s, err := r.ReadString()
	return s, true, err
}

// ReadOptInt64 reads a presence byte followed by an int64 when present.
func (r *Reader) ReadOptInt64() (int64, bool, error) {
	present, err := r.ReadBool()
	if err != nil {
		return 0, false, err
	}
	if !present {
		return 0, false, nil
	}
	v, err := r.ReadInt64()
	return v, true, err
}

// Writer encodes values in Little-Endian order into a growable buffer.
type Writer struct {
	buf []byte
}

// NewWriter returns a Writer with the given initial capacity hint.
func NewWriter(capacityHint int) *Writer {
	return &Writer{buf: make([]byte, 0, capacityHint)}
}

// Bytes returns the accumulated encoding.
func (w *Writer) Bytes() []byte { return w.buf }

// Len returns the number of bytes written so far.
func (w *Writer) Len() int { return len(w.buf) }

// WriteByte writes a single byte.
func (w *Writer) WriteByte(b byte) {
	w.buf = append(w.buf, b)
}

// WriteBool writes a one-byte boolean.
func (w *Writer) WriteBool(v bool) {
	if v {
		w.WriteByte(1)
	} else {
		w.WriteByte(0)
	}
}

// WriteInt16 writes a signed 16-bit integer.
func (w *Writer) WriteInt16(v int16) {
	w.buf = binary.LittleEndian.AppendUint16(w.buf, uint16(v))
}

// WriteUint16 writes an unsigned 16-bit integer.
func (w *Writer) WriteUint16(v uint16) {
	w.buf = binary.LittleEndian.AppendUint16(w.buf, v)
}

// WriteInt32 writes a signed 32-bit integer.
func (w *Writer) WriteInt32(v int32) {
	w.buf = binary.LittleEndian.AppendUint32(w.buf, uint32(v))
}

// WriteInt64 writes a signed 64-bit integer.
func (w *Writer) WriteInt64(v int64) {
	w.buf = binary.LittleEndian.AppendUint64(w.buf, uint64(v))
}

// WriteFloat32 writes an IEEE-754 single-precision float.
func (w *Writer) WriteFloat32(v float32) {
	w.buf = binary.LittleEndian.AppendUint32(w.buf, math.Float32bits(v))
}

// WriteFloat64 writes an IEEE-754 double-precision float.
func (w *Writer) WriteFloat64(v float64) {
	w.buf = binary.LittleEndian.AppendUint64(w.buf, math.Float64bits(v))
}

// WriteString writes a length-prefixed (uint16) UTF-8 string.
func (w *Writer) WriteString(s string) {
	w.WriteUint16(uint16(len(s)))
	w.buf = append(w.buf, s...)
}

// WriteOptString writes a presence byte followed by the string when present.
func (w *Writer) WriteOptString(s string, present bool) {
	w.WriteBool(present)
	if present {
		w.WriteString(s)
	}
}

// WriteOptInt64 writes a presence byte followed by the value when present.
func (w *Writer) WriteOptInt64(v int64, present bool) {
	w.WriteBool(present)
	if present {
		w.WriteInt64(v)
	}
}
