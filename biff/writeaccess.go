package biff

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strings"
)

// WRITEACCESS layout: [nChars u16][flags u8][name][padding]. The payload is
// always WriteAccessDataSize bytes, so the record is never continued.
const (
	WriteAccessDataSize   = 112
	writeAccessHeaderSize = 3

	// PadChar fills the unused tail of the record.
	PadChar byte = ' '
)

// WriteAccessRecord holds the name of the user who last saved the workbook.
//
// padding is kept verbatim from the decoded record so that an untouched
// record serializes back to the same bytes. SetUserName regenerates it.
type WriteAccessRecord struct {
	userName string
	padding  []byte
}

// NewWriteAccessRecord returns a record with an empty name and a zeroed
// padding area.
func NewWriteAccessRecord() *WriteAccessRecord {
	return &WriteAccessRecord{
		padding: make([]byte, WriteAccessDataSize-writeAccessHeaderSize),
	}
}

// ReadWriteAccessRecord decodes a WRITEACCESS payload from in.
//
// Padding shorter than the layout requires is tolerated: the missing tail is
// filled with PadChar. Some producers write such files.
func ReadWriteAccessRecord(in *RecordInputStream) (*WriteAccessRecord, error) {
	if in.Remaining() > WriteAccessDataSize {
		return nil, &MalformedRecordError{
			Sid:     in.Sid(),
			Message: fmt.Sprintf("expected data size (%d) but got (%d)", WriteAccessDataSize, in.Remaining()),
		}
	}

	nChars, err := in.ReadUShort()
	if err != nil {
		return nil, &MalformedRecordError{Sid: in.Sid(), Message: "truncated header", Err: err}
	}
	flags, err := in.ReadUByte()
	if err != nil {
		return nil, &MalformedRecordError{Sid: in.Sid(), Message: "truncated header", Err: err}
	}

	wide := flags&0x01 != 0
	nameBytes := int(nChars)
	if wide {
		nameBytes *= 2
	}
	// Remaining() is at most DataSize-3 here, so this also keeps the padding
	// length non-negative.
	if nameBytes > in.Remaining() {
		return nil, &MalformedRecordError{
			Sid:     in.Sid(),
			Message: fmt.Sprintf("name of %d chars needs %d bytes, %d remaining", nChars, nameBytes, in.Remaining()),
		}
	}

	var name string
	if wide {
		name, err = ReadUnicodeLE(in, int(nChars))
	} else {
		name, err = ReadCompressedUnicode(in, int(nChars))
	}
	if err != nil {
		return nil, &MalformedRecordError{Sid: in.Sid(), Message: "bad name", Err: err}
	}

	expectedPadSize := WriteAccessDataSize - writeAccessHeaderSize - nameBytes
	padding := make([]byte, expectedPadSize)
	padSize := in.Remaining()
	if err := in.ReadFully(padding[:padSize]); err != nil {
		return nil, &MalformedRecordError{Sid: in.Sid(), Message: "bad padding", Err: err}
	}
	fillPad(padding[padSize:])

	// A name flagged wide that fits in one byte per char serializes narrow,
	// which frees nChars bytes. Grow the padding so the size stays fixed.
	enc, err := encodeString(name)
	if err != nil {
		return nil, &MalformedRecordError{Sid: in.Sid(), Message: "bad name", Err: err}
	}
	if extra := nameBytes - len(enc.data); extra > 0 {
		padding = append(padding, bytes.Repeat([]byte{PadChar}, extra)...)
	}

	return &WriteAccessRecord{userName: name, padding: padding}, nil
}

// SetUserName sets the name of the user that saved the workbook and
// regenerates the padding. The record is unchanged if an error is returned.
func (r *WriteAccessRecord) SetUserName(name string) error {
	enc, err := encodeString(name)
	if err != nil {
		return err
	}
	encodedByteCount := writeAccessHeaderSize + len(enc.data)
	paddingSize := WriteAccessDataSize - encodedByteCount
	if paddingSize < 0 {
		return &NameTooLongError{Name: name, EncodedSize: encodedByteCount}
	}

	padding := make([]byte, paddingSize)
	fillPad(padding)
	r.padding = padding
	r.userName = name
	return nil
}

// UserName returns the name of the user that saved the workbook.
func (r *WriteAccessRecord) UserName() string {
	return r.userName
}

// Padding returns a copy of the bytes that follow the name.
func (r *WriteAccessRecord) Padding() []byte {
	return append([]byte(nil), r.padding...)
}

// Sid returns the record tag.
func (r *WriteAccessRecord) Sid() uint16 {
	return XL_WRITEACCESS
}

// DataSize returns the payload size, which is always WriteAccessDataSize.
func (r *WriteAccessRecord) DataSize() int {
	return WriteAccessDataSize
}

// RecordSize returns the size of the record including its 4-byte header.
func (r *WriteAccessRecord) RecordSize() int {
	return 4 + WriteAccessDataSize
}

// Serialize writes the record payload to out.
func (r *WriteAccessRecord) Serialize(out RecordOutput) error {
	enc, err := encodeString(r.userName)
	if err != nil {
		return err
	}
	out.WriteUShort(uint16(enc.nChars))
	if enc.wide {
		out.WriteUByte(0x01)
	} else {
		out.WriteUByte(0x00)
	}
	if _, err := out.Write(enc.data); err != nil {
		return err
	}
	_, err = out.Write(r.padding)
	return err
}

// Bytes returns the record payload.
func (r *WriteAccessRecord) Bytes() ([]byte, error) {
	out := NewLittleEndianBuffer(WriteAccessDataSize)
	if err := r.Serialize(out); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// AppendRecord appends the framed record (tag, length, payload) to dst.
func (r *WriteAccessRecord) AppendRecord(dst []byte) ([]byte, error) {
	payload, err := r.Bytes()
	if err != nil {
		return dst, err
	}
	dst = binary.LittleEndian.AppendUint16(dst, r.Sid())
	dst = binary.LittleEndian.AppendUint16(dst, uint16(r.DataSize()))
	return append(dst, payload...), nil
}

func (r *WriteAccessRecord) String() string {
	var buffer strings.Builder
	buffer.WriteString("[WRITEACCESS]\n")
	buffer.WriteString("    .name            = " + r.userName + "\n")
	buffer.WriteString("[/WRITEACCESS]\n")
	return buffer.String()
}

func fillPad(b []byte) {
	for i := range b {
		b[i] = PadChar
	}
}
