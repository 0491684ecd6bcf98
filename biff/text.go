package biff

import (
	"fmt"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// Narrow ("compressed") strings are ISO-8859-1, one byte per character.
// Wide strings are UTF-16LE with no byte order mark.
var (
	compressedEncoding = charmap.ISO8859_1
	unicodeLEEncoding  = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)
)

// HasMultibyte reports whether s contains any character that cannot be
// stored in one byte.
func HasMultibyte(s string) bool {
	for _, r := range s {
		if r > 0xFF {
			return true
		}
	}
	return false
}

// ReadCompressedUnicode reads nChars single-byte characters from in.
func ReadCompressedUnicode(in *RecordInputStream, nChars int) (string, error) {
	raw := make([]byte, nChars)
	if err := in.ReadFully(raw); err != nil {
		return "", err
	}
	utf8Bytes, err := compressedEncoding.NewDecoder().Bytes(raw)
	if err != nil {
		return "", fmt.Errorf("failed to decode Latin-1: %w", err)
	}
	return string(utf8Bytes), nil
}

// ReadUnicodeLE reads nChars UTF-16LE code units from in.
func ReadUnicodeLE(in *RecordInputStream, nChars int) (string, error) {
	raw := make([]byte, nChars*2)
	if err := in.ReadFully(raw); err != nil {
		return "", err
	}
	utf8Bytes, err := unicodeLEEncoding.NewDecoder().Bytes(raw)
	if err != nil {
		return "", fmt.Errorf("failed to decode UTF-16LE: %w", err)
	}
	return string(utf8Bytes), nil
}

// EncodeCompressedUnicode returns s as single-byte characters. It fails if s
// has any character for which HasMultibyte would report true.
func EncodeCompressedUnicode(s string) ([]byte, error) {
	b, err := compressedEncoding.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return nil, fmt.Errorf("failed to encode Latin-1: %w", err)
	}
	return b, nil
}

// EncodeUnicodeLE returns s as UTF-16LE code units.
func EncodeUnicodeLE(s string) ([]byte, error) {
	b, err := unicodeLEEncoding.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return nil, fmt.Errorf("failed to encode UTF-16LE: %w", err)
	}
	return b, nil
}

// PutCompressedUnicode writes s to out as single-byte characters.
func PutCompressedUnicode(s string, out RecordOutput) error {
	b, err := EncodeCompressedUnicode(s)
	if err != nil {
		return err
	}
	_, err = out.Write(b)
	return err
}

// PutUnicodeLE writes s to out as UTF-16LE code units.
func PutUnicodeLE(s string, out RecordOutput) error {
	b, err := EncodeUnicodeLE(s)
	if err != nil {
		return err
	}
	_, err = out.Write(b)
	return err
}

// encodedString is a string in its on-wire form along with the character
// count the wire format stores for it.
type encodedString struct {
	data   []byte
	nChars int
	wide   bool
}

func encodeString(s string) (encodedString, error) {
	if HasMultibyte(s) {
		b, err := EncodeUnicodeLE(s)
		if err != nil {
			return encodedString{}, err
		}
		return encodedString{data: b, nChars: len(b) / 2, wide: true}, nil
	}
	b, err := EncodeCompressedUnicode(s)
	if err != nil {
		return encodedString{}, err
	}
	return encodedString{data: b, nChars: len(b)}, nil
}
