package generator

import (
	"fmt"
	"unicode/utf8"

	"github.com/iancoleman/strcase"
	"github.com/mcncl/json2xml/internal/errors"
	"github.com/mcncl/json2xml/internal/models"
	"github.com/valyala/bytebufferpool"
)

// ArrayItemName is the element name used for items of an array that has no
// key of its own, i.e. an array nested directly inside another array or an
// array at the top of the document.
const ArrayItemName = "array"

// Declaration is the XML declaration written when Options.Declaration is set.
const Declaration = `<?xml version="1.0" encoding="UTF-8"?>`

// NamingStyle controls how JSON keys are turned into element names
type NamingStyle string

const (
	NamingKeep       NamingStyle = "keep"
	NamingCamel      NamingStyle = "camel"
	NamingLowerCamel NamingStyle = "lower_camel"
	NamingSnake      NamingStyle = "snake"
	NamingKebab      NamingStyle = "kebab"
)

// ParseNamingStyle validates a naming style name; "" means NamingKeep.
func ParseNamingStyle(s string) (NamingStyle, error) {
	switch NamingStyle(s) {
	case "", NamingKeep:
		return NamingKeep, nil
	case NamingCamel, NamingLowerCamel, NamingSnake, NamingKebab:
		return NamingStyle(s), nil
	}
	return "", fmt.Errorf("unknown naming style %q", s)
}

// Options tune the generated XML
type Options struct {
	Naming      NamingStyle
	Declaration bool
}

// Generator renders a value tree as XML text. It holds no per-call state and
// is safe for concurrent use.
type Generator struct {
	opts Options
}

// NewGenerator creates a new Generator instance
func NewGenerator() *Generator {
	return &Generator{opts: Options{Naming: NamingKeep}}
}

// NewGeneratorWithOptions creates a Generator with custom options
func NewGeneratorWithOptions(opts Options) *Generator {
	if opts.Naming == "" {
		opts.Naming = NamingKeep
	}
	return &Generator{opts: opts}
}

// GenerateXML renders doc, which must be an object, with each member becoming
// a top-level element. Callers wrap the parsed payload under the root element
// name (models.Wrap) so the result has exactly one top-level element.
func (g *Generator) GenerateXML(doc *models.Value) (string, error) {
	if doc == nil || doc.Kind != models.Object {
		kind := "nil"
		if doc != nil {
			kind = doc.Kind.String()
		}
		return "", errors.NewSerializationError(
			fmt.Sprintf("document must be an object, got %s", kind), nil)
	}

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	if g.opts.Declaration {
		buf.WriteString(Declaration)
	}

	w := &writer{buf: buf, naming: g.opts.Naming, names: make(map[string]string)}
	for _, m := range doc.Members() {
		// The naming style applies to payload keys, never to the root element.
		name := m.Key
		if !IsValidName(name) {
			return "", errors.NewSerializationError(
				fmt.Sprintf("root element %q is not a valid XML element name", name), errors.ErrInvalidName)
		}
		// Top-level values are always written as a single element so an
		// array payload cannot produce sibling roots.
		if err := w.element(name, m.Value); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}

// writer carries the state of one GenerateXML call.
type writer struct {
	buf    *bytebufferpool.ByteBuffer
	naming NamingStyle
	names  map[string]string
}

// member writes the object member key: v. Arrays repeat the key once per item.
func (w *writer) member(key string, v *models.Value) error {
	name, err := w.elementName(key)
	if err != nil {
		return err
	}
	if v.Kind == models.Array && len(v.Items) > 0 {
		for _, item := range v.Items {
			if err := w.element(name, item); err != nil {
				return err
			}
		}
		return nil
	}
	return w.element(name, v)
}

// element writes <name>content</name>. An array reaching here has no key of
// its own, so its items are written as ArrayItemName elements.
func (w *writer) element(name string, v *models.Value) error {
	w.open(name)
	switch v.Kind {
	case models.Object:
		for _, m := range v.Members() {
			if err := w.member(m.Key, m.Value); err != nil {
				return err
			}
		}
	case models.Array:
		for _, item := range v.Items {
			if err := w.element(ArrayItemName, item); err != nil {
				return err
			}
		}
	case models.Null:
	default:
		escapeText(w.buf, v.Text())
	}
	w.close(name)
	return nil
}

func (w *writer) open(name string) {
	w.buf.WriteByte('<')
	w.buf.WriteString(name)
	w.buf.WriteByte('>')
}

func (w *writer) close(name string) {
	w.buf.WriteString("</")
	w.buf.WriteString(name)
	w.buf.WriteByte('>')
}

func (w *writer) elementName(key string) (string, error) {
	if name, ok := w.names[key]; ok {
		return name, nil
	}
	name := ApplyNaming(w.naming, key)
	if !IsValidName(name) {
		msg := fmt.Sprintf("key %q is not a valid XML element name", key)
		if name != key {
			msg = fmt.Sprintf("key %q (renamed to %q) is not a valid XML element name", key, name)
		}
		return "", errors.NewSerializationError(msg, errors.ErrInvalidName)
	}
	w.names[key] = name
	return name, nil
}

// ApplyNaming returns the element name key is written as under style.
func ApplyNaming(style NamingStyle, key string) string {
	switch style {
	case NamingCamel:
		return strcase.ToCamel(key)
	case NamingLowerCamel:
		return strcase.ToLowerCamel(key)
	case NamingSnake:
		return strcase.ToSnake(key)
	case NamingKebab:
		return strcase.ToKebab(key)
	default:
		return key
	}
}

// IsValidName reports whether s matches the XML 1.0 Name production without
// the colon, since namespaces are not supported.
func IsValidName(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if r == utf8.RuneError {
			return false
		}
		if i == 0 {
			if !isNameStartChar(r) {
				return false
			}
			continue
		}
		if !isNameChar(r) {
			return false
		}
	}
	return true
}

func isNameStartChar(r rune) bool {
	switch {
	case r >= 'A' && r <= 'Z', r >= 'a' && r <= 'z', r == '_':
		return true
	case r >= 0xC0 && r <= 0xD6, r >= 0xD8 && r <= 0xF6, r >= 0xF8 && r <= 0x2FF:
		return true
	case r >= 0x370 && r <= 0x37D, r >= 0x37F && r <= 0x1FFF:
		return true
	case r >= 0x200C && r <= 0x200D, r >= 0x2070 && r <= 0x218F:
		return true
	case r >= 0x2C00 && r <= 0x2FEF, r >= 0x3001 && r <= 0xD7FF:
		return true
	case r >= 0xF900 && r <= 0xFDCF, r >= 0xFDF0 && r <= 0xFFFD:
		return true
	case r >= 0x10000 && r <= 0xEFFFF:
		return true
	}
	return false
}

func isNameChar(r rune) bool {
	switch {
	case isNameStartChar(r):
		return true
	case r == '-', r == '.', r >= '0' && r <= '9', r == 0xB7:
		return true
	case r >= 0x300 && r <= 0x36F, r >= 0x203F && r <= 0x2040:
		return true
	}
	return false
}

// isInCharacterRange reports whether r may appear in an XML 1.0 document.
func isInCharacterRange(r rune) bool {
	return r == 0x09 ||
		r == 0x0A ||
		r == 0x0D ||
		r >= 0x20 && r <= 0xD7FF ||
		r >= 0xE000 && r <= 0xFFFD ||
		r >= 0x10000 && r <= 0x10FFFF
}

// escapeText writes s as element content. &, < and > are always escaped and
// CR is written as a character reference so parsers do not normalise it away.
// Quotes are left as is. Characters outside the XML character range become
// U+FFFD.
func escapeText(buf *bytebufferpool.ByteBuffer, s string) {
	last := 0
	for i := 0; i < len(s); {
		r, width := utf8.DecodeRuneInString(s[i:])
		var esc string
		switch {
		case r == '&':
			esc = "&amp;"
		case r == '<':
			esc = "&lt;"
		case r == '>':
			esc = "&gt;"
		case r == '\r':
			esc = "&#xD;"
		case r == utf8.RuneError && width == 1, !isInCharacterRange(r):
			esc = "\uFFFD"
		default:
			i += width
			continue
		}
		buf.WriteString(s[last:i])
		buf.WriteString(esc)
		i += width
		last = i
	}
	buf.WriteString(s[last:])
}

// EscapeText returns s escaped for use as element content.
func EscapeText(s string) string {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	escapeText(buf, s)
	return buf.String()
}
