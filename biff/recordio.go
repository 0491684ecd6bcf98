package biff

import (
	"encoding/binary"
	"io"
)

// RecordInputStream is a little-endian cursor over the payload of a single
// record. It never reads past the end of that payload.
type RecordInputStream struct {
	sid  uint16
	data []byte
	pos  int
}

// NewRecordInputStream returns a cursor positioned at the start of data.
func NewRecordInputStream(sid uint16, data []byte) *RecordInputStream {
	return &RecordInputStream{sid: sid, data: data}
}

// Sid returns the tag of the record being read.
func (in *RecordInputStream) Sid() uint16 {
	return in.sid
}

// Remaining returns the number of bytes left before the record boundary.
func (in *RecordInputStream) Remaining() int {
	return len(in.data) - in.pos
}

func (in *RecordInputStream) need(n int) error {
	if n > in.Remaining() {
		err := NewBIFFError("record 0x%04x: need %d bytes, %d remaining", in.sid, n, in.Remaining())
		err.Err = io.ErrUnexpectedEOF
		return err
	}
	return nil
}

// ReadUShort reads an unsigned 16-bit value.
func (in *RecordInputStream) ReadUShort() (uint16, error) {
	if err := in.need(2); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint16(in.data[in.pos : in.pos+2])
	in.pos += 2
	return v, nil
}

// ReadUByte reads an unsigned 8-bit value.
func (in *RecordInputStream) ReadUByte() (uint8, error) {
	if err := in.need(1); err != nil {
		return 0, err
	}
	v := in.data[in.pos]
	in.pos++
	return v, nil
}

// ReadFully fills buf from the stream. Nothing is consumed when fewer than
// len(buf) bytes remain.
func (in *RecordInputStream) ReadFully(buf []byte) error {
	if err := in.need(len(buf)); err != nil {
		return err
	}
	copy(buf, in.data[in.pos:in.pos+len(buf)])
	in.pos += len(buf)
	return nil
}

// RecordOutput is the sink records serialize themselves into.
type RecordOutput interface {
	io.Writer
	WriteUShort(v uint16)
	WriteUByte(v uint8)
}

// LittleEndianBuffer is a growable RecordOutput.
type LittleEndianBuffer struct {
	buf []byte
}

// NewLittleEndianBuffer returns a buffer with capacity for size bytes.
func NewLittleEndianBuffer(size int) *LittleEndianBuffer {
	return &LittleEndianBuffer{buf: make([]byte, 0, size)}
}

func (o *LittleEndianBuffer) WriteUShort(v uint16) {
	o.buf = binary.LittleEndian.AppendUint16(o.buf, v)
}

func (o *LittleEndianBuffer) WriteUByte(v uint8) {
	o.buf = append(o.buf, v)
}

// Write appends p. It never fails.
func (o *LittleEndianBuffer) Write(p []byte) (int, error) {
	o.buf = append(o.buf, p...)
	return len(p), nil
}

// Len returns the number of bytes written so far.
func (o *LittleEndianBuffer) Len() int {
	return len(o.buf)
}

// Bytes returns the written bytes. The slice aliases the buffer.
func (o *LittleEndianBuffer) Bytes() []byte {
	return o.buf
}
