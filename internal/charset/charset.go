// Package charset turns a payload in a declared character set into the UTF-8
// text the parser works on.
package charset

import (
	"bytes"
	"fmt"
	"mime"
	"strings"

	"github.com/mcncl/json2xml/internal/errors"
	"golang.org/x/net/html/charset"
)

// DefaultCharset is assumed when a content type carries no charset parameter.
const DefaultCharset = "utf-8"

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// FromContentType returns the charset parameter of a Content-Type header
// value, or DefaultCharset when there is none or the header does not parse.
func FromContentType(header string) string {
	if strings.TrimSpace(header) == "" {
		return DefaultCharset
	}
	_, params, err := mime.ParseMediaType(header)
	if err != nil {
		return DefaultCharset
	}
	if cs := strings.TrimSpace(params["charset"]); cs != "" {
		return strings.ToLower(cs)
	}
	return DefaultCharset
}

// Decode converts data from the named charset to UTF-8. An empty label means
// UTF-8. A leading UTF-8 byte order mark is dropped.
func Decode(data []byte, label string) (string, error) {
	label = strings.ToLower(strings.TrimSpace(label))
	if label == "" {
		label = DefaultCharset
	}

	enc, name := charset.Lookup(label)
	if enc == nil {
		return "", errors.NewInputError(fmt.Sprintf("unsupported charset %q", label), errors.ErrUnknownCharset)
	}

	// UTF-8 input is passed through untouched so invalid sequences still
	// reach the tokenizer and are reported with a position.
	if name == "utf-8" {
		return string(bytes.TrimPrefix(data, utf8BOM)), nil
	}

	decoded, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return "", errors.NewInputError(fmt.Sprintf("failed to decode input as %s", name), err)
	}
	return string(bytes.TrimPrefix(decoded, utf8BOM)), nil
}

// DecodeForContentType decodes data using the charset declared by a
// Content-Type header value.
func DecodeForContentType(data []byte, contentType string) (string, error) {
	return Decode(data, FromContentType(contentType))
}
