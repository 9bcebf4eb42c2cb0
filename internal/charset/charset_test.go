package charset

import (
	"testing"

	"github.com/mcncl/json2xml/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromContentType(t *testing.T) {
	tests := []struct {
		header   string
		expected string
	}{
		{header: "", expected: "utf-8"},
		{header: "application/json", expected: "utf-8"},
		{header: "application/json; charset=ISO-8859-1", expected: "iso-8859-1"},
		{header: `application/json;charset="UTF-16LE"`, expected: "utf-16le"},
		{header: "not a / valid ;; header", expected: "utf-8"},
	}

	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			assert.Equal(t, tt.expected, FromContentType(tt.header))
		})
	}
}

func TestDecode_UTF8(t *testing.T) {
	text, err := Decode([]byte(`{"a":"é"}`), "")
	require.NoError(t, err)
	assert.Equal(t, `{"a":"é"}`, text)

	text, err = Decode(append([]byte{0xEF, 0xBB, 0xBF}, []byte(`{}`)...), "UTF-8")
	require.NoError(t, err)
	assert.Equal(t, `{}`, text, "BOM is stripped")
}

func TestDecode_Latin1(t *testing.T) {
	// "café" in ISO-8859-1: é is the single byte 0xE9.
	text, err := Decode([]byte{'"', 'c', 'a', 'f', 0xE9, '"'}, "iso-8859-1")
	require.NoError(t, err)
	assert.Equal(t, `"café"`, text)
}

func TestDecode_UTF16(t *testing.T) {
	// `{}` as UTF-16LE with BOM.
	text, err := Decode([]byte{0xFF, 0xFE, '{', 0x00, '}', 0x00}, "utf-16le")
	require.NoError(t, err)
	assert.Equal(t, "{}", text)
}

func TestDecode_UnknownCharset(t *testing.T) {
	_, err := Decode([]byte(`{}`), "klingon-8")
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrUnknownCharset)
	assert.Equal(t, errors.ErrorTypeInput, errors.TypeOf(err))
}

func TestDecodeForContentType(t *testing.T) {
	text, err := DecodeForContentType([]byte{'"', 0xE9, '"'}, "application/json; charset=windows-1252")
	require.NoError(t, err)
	assert.Equal(t, `"é"`, text)
}
