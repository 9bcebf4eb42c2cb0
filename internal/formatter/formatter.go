package formatter

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/mcncl/json2xml/internal/generator"
)

// DefaultIndent is the indentation used by NewFormatter
const DefaultIndent = "  "

// Formatter is responsible for pretty-printing generated XML
type Formatter struct {
	indent string
}

// NewFormatter creates a new Formatter instance
func NewFormatter() *Formatter {
	return &Formatter{indent: DefaultIndent}
}

// NewFormatterWithIndent creates a Formatter using indent for each level
func NewFormatterWithIndent(indent string) *Formatter {
	return &Formatter{indent: indent}
}

// level tracks one open element while formatting.
type level struct {
	name        string
	hasChildren bool
	text        strings.Builder
}

// Format takes compact XML and returns it with one element per line.
// Elements holding only text stay on a single line.
func (f *Formatter) Format(doc string) (string, error) {
	// Handle empty input
	if strings.TrimSpace(doc) == "" {
		return "", nil
	}

	dec := xml.NewDecoder(strings.NewReader(doc))
	var out strings.Builder
	var stack []*level
	started := false

	newline := func(depth int) {
		if started {
			out.WriteByte('\n')
		}
		started = true
		out.WriteString(strings.Repeat(f.indent, depth))
	}

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("failed to parse XML: %w", err)
		}

		switch t := tok.(type) {
		case xml.ProcInst:
			newline(0)
			fmt.Fprintf(&out, "<?%s %s?>", t.Target, string(t.Inst))
		case xml.StartElement:
			if len(stack) > 0 {
				parent := stack[len(stack)-1]
				parent.hasChildren = true
				f.flushText(&out, parent, len(stack), newline)
			}
			newline(len(stack))
			out.WriteByte('<')
			out.WriteString(t.Name.Local)
			for _, attr := range t.Attr {
				fmt.Fprintf(&out, ` %s="%s"`, attr.Name.Local, escapeAttr(attr.Value))
			}
			out.WriteByte('>')
			stack = append(stack, &level{name: t.Name.Local})
		case xml.CharData:
			if len(stack) > 0 {
				stack[len(stack)-1].text.Write(t)
			}
		case xml.EndElement:
			if len(stack) == 0 {
				return "", fmt.Errorf("failed to parse XML: unexpected </%s>", t.Name.Local)
			}
			cur := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if cur.hasChildren {
				f.flushText(&out, cur, len(stack)+1, newline)
				newline(len(stack))
			} else {
				out.WriteString(generator.EscapeText(cur.text.String()))
			}
			out.WriteString("</")
			out.WriteString(cur.name)
			out.WriteByte('>')
		}
	}

	if len(stack) > 0 {
		return "", fmt.Errorf("failed to parse XML: unclosed <%s>", stack[len(stack)-1].name)
	}
	out.WriteByte('\n')
	return out.String(), nil
}

// flushText writes pending mixed-content text of an element that also has
// child elements on its own line. Whitespace-only text is dropped.
func (f *Formatter) flushText(out *strings.Builder, l *level, depth int, newline func(int)) {
	text := l.text.String()
	l.text.Reset()
	if strings.TrimSpace(text) == "" {
		return
	}
	newline(depth)
	out.WriteString(generator.EscapeText(strings.TrimSpace(text)))
}

func escapeAttr(s string) string {
	return strings.ReplaceAll(generator.EscapeText(s), `"`, "&quot;")
}
