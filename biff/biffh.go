package biff

import (
	"errors"
	"fmt"
)

// BIFFError represents an error that occurred while framing or reading a BIFF stream.
type BIFFError struct {
	Message string
	Err     error
}

func (e *BIFFError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *BIFFError) Unwrap() error {
	return e.Err
}

// NewBIFFError creates a new BIFFError with the given message.
func NewBIFFError(format string, args ...interface{}) *BIFFError {
	return &BIFFError{Message: fmt.Sprintf(format, args...)}
}

// MalformedRecordError is returned when a record payload cannot hold the
// layout its header describes.
type MalformedRecordError struct {
	Sid     uint16
	Message string
	Err     error
}

func (e *MalformedRecordError) Error() string {
	msg := fmt.Sprintf("malformed record 0x%04x: %s", e.Sid, e.Message)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *MalformedRecordError) Unwrap() error {
	return e.Err
}

// NameTooLongError is returned by SetUserName when the encoded name and its
// header do not fit in the fixed record size.
type NameTooLongError struct {
	Name        string
	EncodedSize int
}

func (e *NameTooLongError) Error() string {
	return fmt.Sprintf("name is too long (%d bytes encoded, max %d): %s",
		e.EncodedSize, WriteAccessDataSize, e.Name)
}

// ErrNoWriteAccess is returned when a stream carries no WRITEACCESS record.
var ErrNoWriteAccess = errors.New("no WRITEACCESS record in stream")

// BIFF version constants
const (
	BIFF_FIRST_UNICODE = 80
)

var biffTextFromNum = map[int]string{
	0:  "(not BIFF)",
	20: "2.0",
	21: "2.1",
	30: "3",
	40: "4S",
	45: "4W",
	50: "5",
	70: "7",
	80: "8",
	85: "8X",
}

// BiffTextFromNum returns a text representation of a BIFF version number.
func BiffTextFromNum(num int) string {
	if text, ok := biffTextFromNum[num]; ok {
		return text
	}
	return fmt.Sprintf("Unknown(%d)", num)
}

// BIFF record type constants
const (
	XL_BOF          = 0x809
	XL_BOUNDSHEET   = 0x85
	XL_CODEPAGE     = 0x42
	XL_CONTINUE     = 0x3c
	XL_COUNTRY      = 0x8C
	XL_DATEMODE     = 0x22
	XL_EOF          = 0x0a
	XL_FONT         = 0x31
	XL_FORMAT       = 0x41e
	XL_INTERFACEHDR = 0xe1
	XL_INTERFACEEND = 0xe2
	XL_MMS          = 0xc1
	XL_SST          = 0xfc
	XL_STYLE        = 0x293
	XL_WINDOW1      = 0x3d
	XL_WRITEACCESS  = 0x5C
	XL_XF           = 0xe0
)

var bofcodes = []int{0x0809, 0x0409, 0x0209, 0x0009}

var recordNames = map[uint16]string{
	XL_BOF:          "BOF",
	0x0409:          "BOF",
	0x0209:          "BOF",
	0x0009:          "BOF",
	XL_BOUNDSHEET:   "BOUNDSHEET",
	XL_CODEPAGE:     "CODEPAGE",
	XL_CONTINUE:     "CONTINUE",
	XL_COUNTRY:      "COUNTRY",
	XL_DATEMODE:     "DATEMODE",
	XL_EOF:          "EOF",
	XL_FONT:         "FONT",
	XL_FORMAT:       "FORMAT",
	XL_INTERFACEHDR: "INTERFACEHDR",
	XL_INTERFACEEND: "INTERFACEEND",
	XL_MMS:          "MMS",
	XL_SST:          "SST",
	XL_STYLE:        "STYLE",
	XL_WINDOW1:      "WINDOW1",
	XL_WRITEACCESS:  "WRITEACCESS",
	XL_XF:           "XF",
}

// RecordName returns the conventional name of a record tag, or a hex
// placeholder for tags this package does not know.
func RecordName(sid uint16) string {
	if name, ok := recordNames[sid]; ok {
		return name
	}
	return fmt.Sprintf("UNKNOWN_%04X", sid)
}

// IsBOF checks if the given code is one of the BOF record tags.
func IsBOF(c int) bool {
	for _, code := range bofcodes {
		if c == code {
			return true
		}
	}
	return false
}
