package biff

import (
	"bytes"
	"encoding/binary"
)

// frame returns one record with its 4-byte header.
func frame(sid uint16, data []byte) []byte {
	out := binary.LittleEndian.AppendUint16(nil, sid)
	out = binary.LittleEndian.AppendUint16(out, uint16(len(data)))
	return append(out, data...)
}

// bof8 is the payload of a BIFF8 workbook globals BOF.
func bof8() []byte {
	return []byte{
		0x00, 0x06, // BIFF8
		0x05, 0x00, // workbook globals
		0xBB, 0x0D, // build
		0xCC, 0x07, // year 1996
		0x00, 0x00, 0x00, 0x00,
		0x06, 0x00, 0x00, 0x00,
	}
}

// narrowPayload builds a well-formed WRITEACCESS payload for an ASCII name.
func narrowPayload(name string) []byte {
	out := binary.LittleEndian.AppendUint16(nil, uint16(len(name)))
	out = append(out, 0x00)
	out = append(out, name...)
	return append(out, bytes.Repeat([]byte{PadChar}, WriteAccessDataSize-len(out))...)
}

// workbookStream returns BOF, the given records and EOF, framed.
func workbookStream(records ...[]byte) []byte {
	out := frame(XL_BOF, bof8())
	for _, rec := range records {
		out = append(out, rec...)
	}
	return append(out, frame(XL_EOF, nil)...)
}
