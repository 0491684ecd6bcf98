package biff

import (
	"encoding/binary"
	"errors"

	"go.uber.org/zap"
)

// RawRecord is one framed record of a BIFF stream.
type RawRecord struct {
	Sid  uint16
	Data []byte
}

// StreamOptions contains options for parsing a record stream.
type StreamOptions struct {
	// Logger receives diagnostics. Defaults to the package logger.
	Logger *zap.Logger

	// IgnoreTruncatedTail drops a final record whose payload runs past the
	// end of the data instead of failing.
	IgnoreTruncatedTail bool
}

// Stream is a raw BIFF workbook stream split into records.
//
// You should not instantiate this type yourself. Use ParseStream.
type Stream struct {
	// BiffVersion is the BIFF version found in the leading BOF record,
	// e.g. 80 for BIFF8 (Excel 97 and later).
	BiffVersion int

	records []RawRecord
	logger  *zap.Logger
}

var boflen = map[int]int{
	0x0809: 8,
	0x0409: 6,
	0x0209: 6,
	0x0009: 4,
}

// ParseStream splits data into records. The first record must be a BOF.
func ParseStream(data []byte, opts *StreamOptions) (*Stream, error) {
	if opts == nil {
		opts = &StreamOptions{}
	}
	s := &Stream{logger: opts.Logger}
	if s.logger == nil {
		s.logger = Logger()
	}

	position := 0
	for position < len(data) {
		if position+4 > len(data) {
			if opts.IgnoreTruncatedTail {
				s.logger.Warn("dropping truncated record header", zap.Int("offset", position))
				break
			}
			return nil, NewBIFFError("Incomplete record header at offset %d; met end of file", position)
		}
		code := binary.LittleEndian.Uint16(data[position : position+2])
		length := int(binary.LittleEndian.Uint16(data[position+2 : position+4]))
		if position+4+length > len(data) {
			if opts.IgnoreTruncatedTail {
				s.logger.Warn("dropping truncated record",
					zap.String("record", RecordName(code)),
					zap.Int("offset", position),
					zap.Int("len", length),
					zap.Int("available", len(data)-position-4))
				break
			}
			return nil, NewBIFFError("Incomplete %s record at offset %d; met end of file", RecordName(code), position)
		}
		s.logger.Debug("record",
			zap.Uint16("sid", code),
			zap.String("record", RecordName(code)),
			zap.Int("offset", position),
			zap.Int("len", length))
		s.records = append(s.records, RawRecord{Sid: code, Data: data[position+4 : position+4+length]})
		position += 4 + length
	}

	if len(s.records) == 0 {
		return nil, NewBIFFError("Expected BOF record; met end of file")
	}
	first := s.records[0]
	if !IsBOF(int(first.Sid)) {
		return nil, NewBIFFError("Expected BOF record; found 0x%04x", first.Sid)
	}
	version, err := bofVersion(int(first.Sid), first.Data)
	if err != nil {
		return nil, err
	}
	s.BiffVersion = version
	s.logger.Debug("parsed stream",
		zap.String("biff", BiffTextFromNum(version)),
		zap.Int("records", len(s.records)))
	return s, nil
}

// bofVersion derives the BIFF version from a BOF record.
func bofVersion(opcode int, data []byte) (int, error) {
	length := len(data)
	if length < 4 || length > 20 {
		return 0, NewBIFFError("Invalid length (%d) for BOF record type 0x%04x", length, opcode)
	}
	// Pad if necessary
	if expectedLen := boflen[opcode]; length < expectedLen {
		data = append(append([]byte(nil), data...), make([]byte, expectedLen-length)...)
	}

	version1 := opcode >> 8
	version2 := binary.LittleEndian.Uint16(data[0:2])

	switch version1 {
	case 0x08:
		build := binary.LittleEndian.Uint16(data[4:6])
		year := binary.LittleEndian.Uint16(data[6:8])
		switch version2 {
		case 0x0600:
			return 80, nil
		case 0x0500:
			if year < 1994 || (build == 2412 || build == 3218 || build == 3321) {
				return 50, nil
			}
			return 70, nil
		case 0x0000, 0x0007:
			return 21, nil
		}
		return 0, NewBIFFError("Unknown BIFF version: 0x%04x", version2)
	case 0x04:
		return 40, nil
	case 0x02:
		return 30, nil
	case 0x00:
		return 20, nil
	}
	return 0, NewBIFFError("Unknown BIFF version: 0x%02x", version1)
}

// Records returns the records of the stream in order.
func (s *Stream) Records() []RawRecord {
	return s.records
}

// globalsIndex returns the index of the first record with the given tag in
// the workbook globals, i.e. before the first EOF, or -1.
func (s *Stream) globalsIndex(sid uint16) int {
	for i, rec := range s.records {
		if rec.Sid == sid {
			return i
		}
		if rec.Sid == XL_EOF {
			break
		}
	}
	return -1
}

func (s *Stream) checkWriteAccessLayout() error {
	if s.BiffVersion < BIFF_FIRST_UNICODE {
		return NewBIFFError("WRITEACCESS layout of BIFF %s is not supported", BiffTextFromNum(s.BiffVersion))
	}
	return nil
}

// WriteAccess decodes the WRITEACCESS record of the workbook globals.
// It returns ErrNoWriteAccess if there is none.
func (s *Stream) WriteAccess() (*WriteAccessRecord, error) {
	i := s.globalsIndex(XL_WRITEACCESS)
	if i < 0 {
		return nil, ErrNoWriteAccess
	}
	if err := s.checkWriteAccessLayout(); err != nil {
		return nil, err
	}
	rec := s.records[i]
	if len(rec.Data) < WriteAccessDataSize {
		s.logger.Debug("short WRITEACCESS record; padding will be filled",
			zap.Int("len", len(rec.Data)),
			zap.Int("want", WriteAccessDataSize))
	}
	r, err := ReadWriteAccessRecord(NewRecordInputStream(rec.Sid, rec.Data))
	if err != nil {
		var malformed *MalformedRecordError
		if errors.As(err, &malformed) {
			s.logger.Warn("malformed WRITEACCESS record", zap.Int("index", i), zap.Error(err))
		}
		return nil, err
	}
	return r, nil
}

// SetWriteAccess stores r in the stream, replacing the existing WRITEACCESS
// record or inserting one right after the leading BOF.
func (s *Stream) SetWriteAccess(r *WriteAccessRecord) error {
	if err := s.checkWriteAccessLayout(); err != nil {
		return err
	}
	payload, err := r.Bytes()
	if err != nil {
		return err
	}
	if i := s.globalsIndex(XL_WRITEACCESS); i >= 0 {
		s.records[i].Data = payload
		return nil
	}
	s.logger.Debug("inserting WRITEACCESS record after BOF")
	rec := RawRecord{Sid: XL_WRITEACCESS, Data: payload}
	s.records = append(s.records[:1], append([]RawRecord{rec}, s.records[1:]...)...)
	return nil
}

// Bytes frames the records back into a stream.
func (s *Stream) Bytes() []byte {
	size := 0
	for _, rec := range s.records {
		size += 4 + len(rec.Data)
	}
	out := make([]byte, 0, size)
	for _, rec := range s.records {
		out = binary.LittleEndian.AppendUint16(out, rec.Sid)
		out = binary.LittleEndian.AppendUint16(out, uint16(len(rec.Data)))
		out = append(out, rec.Data...)
	}
	return out
}
