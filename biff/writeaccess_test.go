package biff

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, data []byte) *WriteAccessRecord {
	t.Helper()
	r, err := ReadWriteAccessRecord(NewRecordInputStream(XL_WRITEACCESS, data))
	require.NoError(t, err)
	return r
}

func TestWriteAccessTomcat(t *testing.T) {
	r := NewWriteAccessRecord()
	require.NoError(t, r.SetUserName("tomcat"))

	data, err := r.Bytes()
	require.NoError(t, err)
	require.Len(t, data, WriteAccessDataSize)

	assert.Equal(t, []byte{0x06, 0x00, 0x00}, data[:3])
	assert.Equal(t, "tomcat", string(data[3:9]))
	assert.Equal(t, bytes.Repeat([]byte{' '}, 103), data[9:])
}

func TestWriteAccessEmptyRecord(t *testing.T) {
	r := NewWriteAccessRecord()
	assert.Equal(t, "", r.UserName())
	assert.Equal(t, make([]byte, 109), r.Padding())

	data, err := r.Bytes()
	require.NoError(t, err)
	assert.Equal(t, make([]byte, WriteAccessDataSize), data)
}

func TestWriteAccessRoundTrip(t *testing.T) {
	tests := []struct {
		name     string
		userName string
		wide     bool
	}{
		{"empty", "", false},
		{"ascii", "apache", false},
		{"latin1", "José Müller", false},
		{"greek", "Ωmega", true},
		{"japanese", "山田太郎", true},
		{"surrogate pair", "user😀", true},
		{"longest narrow", strings.Repeat("n", 109), false},
		{"longest wide", strings.Repeat("Ж", 54), true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := NewWriteAccessRecord()
			require.NoError(t, r.SetUserName(tc.userName))

			data, err := r.Bytes()
			require.NoError(t, err)
			require.Len(t, data, WriteAccessDataSize)
			if tc.wide {
				assert.Equal(t, byte(0x01), data[2], "flag")
			} else {
				assert.Equal(t, byte(0x00), data[2], "flag")
			}

			got := decode(t, data)
			assert.Equal(t, tc.userName, got.UserName())
			assert.Equal(t, r.Padding(), got.Padding())

			again, err := got.Bytes()
			require.NoError(t, err)
			assert.Equal(t, data, again)
		})
	}
}

func TestWriteAccessEncodingSelection(t *testing.T) {
	tests := []struct {
		userName  string
		flag      byte
		nChars    int
		nameBytes []byte
	}{
		{"abc", 0x00, 3, []byte("abc")},
		{"é", 0x00, 1, []byte{0xE9}},
		{"ÿ", 0x00, 1, []byte{0xFF}},
		{"Ā", 0x01, 1, []byte{0x00, 0x01}},
		{"aΩ", 0x01, 2, []byte{'a', 0x00, 0xA9, 0x03}},
		{"😀", 0x01, 2, []byte{0x3D, 0xD8, 0x00, 0xDE}},
	}

	for _, tc := range tests {
		r := NewWriteAccessRecord()
		require.NoError(t, r.SetUserName(tc.userName))
		data, err := r.Bytes()
		require.NoError(t, err)
		require.Len(t, data, WriteAccessDataSize, "name %q", tc.userName)

		assert.Equal(t, byte(tc.nChars), data[0], "nChars for %q", tc.userName)
		assert.Equal(t, byte(0), data[1], "nChars high byte for %q", tc.userName)
		assert.Equal(t, tc.flag, data[2], "flag for %q", tc.userName)
		assert.Equal(t, tc.nameBytes, data[3:3+len(tc.nameBytes)], "name bytes for %q", tc.userName)
	}
}

func TestSetUserNameBoundary(t *testing.T) {
	r := NewWriteAccessRecord()
	require.NoError(t, r.SetUserName(strings.Repeat("x", 109)))
	assert.Empty(t, r.Padding())

	err := r.SetUserName(strings.Repeat("x", 110))
	var tooLong *NameTooLongError
	require.ErrorAs(t, err, &tooLong)
	assert.Equal(t, 113, tooLong.EncodedSize)

	// 55 wide chars need 3 + 110 bytes.
	err = r.SetUserName(strings.Repeat("Ж", 55))
	require.ErrorAs(t, err, &tooLong)

	// The record is untouched by the failed calls.
	assert.Equal(t, strings.Repeat("x", 109), r.UserName())
	assert.Empty(t, r.Padding())
}

func TestSetUserNameRegeneratesPadding(t *testing.T) {
	payload := narrowPayload("bob")
	for i := 6; i < len(payload); i++ {
		payload[i] = byte(i)
	}
	r := decode(t, payload)
	assert.Equal(t, payload[6:], r.Padding())

	require.NoError(t, r.SetUserName("bob"))
	assert.Equal(t, bytes.Repeat([]byte{PadChar}, 106), r.Padding())
}

func TestReadWriteAccessPreservesPadding(t *testing.T) {
	payload := narrowPayload("owner")
	copy(payload[8:], []byte{0x00, 0x00, 0xFF, 0x10})

	r := decode(t, payload)
	assert.Equal(t, "owner", r.UserName())

	data, err := r.Bytes()
	require.NoError(t, err)
	assert.Equal(t, payload, data)
}

func TestReadWriteAccessShortPadding(t *testing.T) {
	data := []byte{0x03, 0x00, 0x00, 'a', 'b', 'c'}
	data = append(data, make([]byte, 10)...)

	r := decode(t, data)
	assert.Equal(t, "abc", r.UserName())

	padding := r.Padding()
	require.Len(t, padding, 106)
	assert.Equal(t, make([]byte, 10), padding[:10])
	assert.Equal(t, bytes.Repeat([]byte{PadChar}, 96), padding[10:])

	out, err := r.Bytes()
	require.NoError(t, err)
	assert.Len(t, out, WriteAccessDataSize)
}

func TestReadWriteAccessShortWidePadding(t *testing.T) {
	data := []byte{0x02, 0x00, 0x01, 0xA9, 0x03, 0xA9, 0x03}

	r := decode(t, data)
	assert.Equal(t, "ΩΩ", r.UserName())
	assert.Equal(t, bytes.Repeat([]byte{PadChar}, 105), r.Padding())
}

func TestReadWriteAccessWideFlagOnNarrowName(t *testing.T) {
	data := []byte{0x03, 0x00, 0x01, 'a', 0x00, 'b', 0x00, 'c', 0x00}
	data = append(data, bytes.Repeat([]byte{PadChar}, WriteAccessDataSize-len(data))...)

	r := decode(t, data)
	assert.Equal(t, "abc", r.UserName())
	assert.Len(t, r.Padding(), 106)

	out, err := r.Bytes()
	require.NoError(t, err)
	require.Len(t, out, WriteAccessDataSize)
	assert.Equal(t, []byte{0x03, 0x00, 0x00, 'a', 'b', 'c'}, out[:6])
}

func TestReadWriteAccessTooLong(t *testing.T) {
	in := NewRecordInputStream(XL_WRITEACCESS, make([]byte, WriteAccessDataSize+1))

	_, err := ReadWriteAccessRecord(in)
	var malformed *MalformedRecordError
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, uint16(XL_WRITEACCESS), malformed.Sid)
	assert.Equal(t, WriteAccessDataSize+1, in.Remaining(), "nothing must be read")
}

func TestReadWriteAccessMalformed(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"half header", []byte{0x01}},
		{"no flag", []byte{0x01, 0x00}},
		{"narrow name past end", []byte{0x05, 0x00, 0x00, 'a', 'b'}},
		{"wide name past end", []byte{0x02, 0x00, 0x01, 'a', 0x00, 'b'}},
		{"count larger than record", []byte{0xFF, 0xFF, 0x00, 'a'}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ReadWriteAccessRecord(NewRecordInputStream(XL_WRITEACCESS, tc.data))
			var malformed *MalformedRecordError
			require.ErrorAs(t, err, &malformed)
		})
	}
}

func TestReadWriteAccessTruncatedHeaderUnwraps(t *testing.T) {
	_, err := ReadWriteAccessRecord(NewRecordInputStream(XL_WRITEACCESS, []byte{0x01}))
	assert.True(t, errors.Is(err, io.ErrUnexpectedEOF))
}

func TestWriteAccessAppendRecord(t *testing.T) {
	r := NewWriteAccessRecord()
	require.NoError(t, r.SetUserName("apache"))

	out, err := r.AppendRecord([]byte{0xAA})
	require.NoError(t, err)
	require.Len(t, out, 1+r.RecordSize())
	assert.Equal(t, []byte{0xAA, 0x5C, 0x00, 0x70, 0x00}, out[:5])
	assert.Equal(t, 112, r.DataSize())
	assert.Equal(t, uint16(0x005C), r.Sid())
}

func TestWriteAccessString(t *testing.T) {
	r := NewWriteAccessRecord()
	require.NoError(t, r.SetUserName("tomcat"))
	assert.Equal(t, "[WRITEACCESS]\n    .name            = tomcat\n[/WRITEACCESS]\n", r.String())
}

func TestWriteAccessPaddingIsCopied(t *testing.T) {
	r := NewWriteAccessRecord()
	require.NoError(t, r.SetUserName("x"))
	p := r.Padding()
	p[0] = 0
	assert.Equal(t, PadChar, r.Padding()[0])
}
