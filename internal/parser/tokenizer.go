package parser

import (
	"fmt"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/mcncl/json2xml/internal/errors"
)

// TokenKind identifies a lexical token.
type TokenKind int

const (
	TokenEOF TokenKind = iota
	TokenBeginObject
	TokenEndObject
	TokenBeginArray
	TokenEndArray
	TokenColon
	TokenComma
	TokenString
	TokenNumber
	TokenTrue
	TokenFalse
	TokenNull
)

var tokenNames = [...]string{
	TokenEOF:         "end of input",
	TokenBeginObject: "'{'",
	TokenEndObject:   "'}'",
	TokenBeginArray:  "'['",
	TokenEndArray:    "']'",
	TokenColon:       "':'",
	TokenComma:       "','",
	TokenString:      "string",
	TokenNumber:      "number",
	TokenTrue:        "'true'",
	TokenFalse:       "'false'",
	TokenNull:        "'null'",
}

func (k TokenKind) String() string {
	if k < 0 || int(k) >= len(tokenNames) {
		return "unknown token"
	}
	return tokenNames[k]
}

// Token is a single lexical unit. Text holds the decoded value of strings and
// the literal text of numbers. Depth is the nesting depth after the token is
// consumed.
type Token struct {
	Kind  TokenKind
	Text  string
	Pos   errors.Position
	Depth int
}

// Tokenizer splits decoded JSON text into tokens. Its only state is the
// cursor and the structural depth counter.
type Tokenizer struct {
	input string
	pos   int
	line  int
	col   int
	depth int
}

// NewTokenizer returns a Tokenizer positioned at the start of input.
func NewTokenizer(input string) *Tokenizer {
	return &Tokenizer{input: input, line: 1, col: 1}
}

// Depth returns the current structural nesting depth.
func (t *Tokenizer) Depth() int {
	return t.depth
}

// Position returns the cursor position.
func (t *Tokenizer) Position() errors.Position {
	return errors.Position{Offset: t.pos, Line: t.line, Column: t.col}
}

// advance moves the cursor n bytes forward, keeping line and column current.
// Columns count runes, not bytes.
func (t *Tokenizer) advance(n int) {
	for i := 0; i < n && t.pos < len(t.input); i++ {
		c := t.input[t.pos]
		t.pos++
		switch {
		case c == '\n':
			t.line++
			t.col = 1
		case c&0xC0 != 0x80:
			t.col++
		}
	}
}

func (t *Tokenizer) skipWhitespace() {
	for t.pos < len(t.input) {
		switch t.input[t.pos] {
		case ' ', '\t', '\n', '\r':
			t.advance(1)
		default:
			return
		}
	}
}

func (t *Tokenizer) lexErr(pos errors.Position, format string, args ...any) error {
	return errors.NewLexicalError(fmt.Sprintf(format, args...), pos)
}

// Next returns the next token, skipping insignificant whitespace.
func (t *Tokenizer) Next() (Token, error) {
	t.skipWhitespace()
	start := t.Position()
	if t.pos >= len(t.input) {
		return Token{Kind: TokenEOF, Pos: start, Depth: t.depth}, nil
	}

	c := t.input[t.pos]
	switch c {
	case '{', '[':
		t.advance(1)
		t.depth++
		kind := TokenBeginObject
		if c == '[' {
			kind = TokenBeginArray
		}
		return Token{Kind: kind, Pos: start, Depth: t.depth}, nil
	case '}', ']':
		t.advance(1)
		if t.depth > 0 {
			t.depth--
		}
		kind := TokenEndObject
		if c == ']' {
			kind = TokenEndArray
		}
		return Token{Kind: kind, Pos: start, Depth: t.depth}, nil
	case ':':
		t.advance(1)
		return Token{Kind: TokenColon, Pos: start, Depth: t.depth}, nil
	case ',':
		t.advance(1)
		return Token{Kind: TokenComma, Pos: start, Depth: t.depth}, nil
	case '"':
		s, err := t.lexString()
		if err != nil {
			return Token{}, err
		}
		return Token{Kind: TokenString, Text: s, Pos: start, Depth: t.depth}, nil
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		n, err := t.lexNumber()
		if err != nil {
			return Token{}, err
		}
		return Token{Kind: TokenNumber, Text: n, Pos: start, Depth: t.depth}, nil
	case '+':
		return Token{}, t.lexErr(start, "invalid number: leading '+' is not allowed")
	case '.':
		return Token{}, t.lexErr(start, "invalid number: missing integer part")
	}

	if isWordByte(c) {
		return t.lexWord(start)
	}

	r, _ := utf8.DecodeRuneInString(t.input[t.pos:])
	return Token{}, t.lexErr(start, "unexpected character %q", r)
}

func isWordByte(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '_'
}

func (t *Tokenizer) lexWord(start errors.Position) (Token, error) {
	end := t.pos
	for end < len(t.input) && isWordByte(t.input[end]) {
		end++
	}
	word := t.input[t.pos:end]

	var kind TokenKind
	switch word {
	case "true":
		kind = TokenTrue
	case "false":
		kind = TokenFalse
	case "null":
		kind = TokenNull
	default:
		if len(word) > 32 {
			word = word[:32] + "..."
		}
		return Token{}, t.lexErr(start, "unknown literal %q", word)
	}
	t.advance(end - t.pos)
	return Token{Kind: kind, Text: word, Pos: start, Depth: t.depth}, nil
}

// lexString reads a string literal starting at the opening quote and returns
// its decoded content.
func (t *Tokenizer) lexString() (string, error) {
	start := t.Position()
	t.advance(1)

	// Fast path: no escapes, no control characters, valid UTF-8.
	i := t.pos
	for i < len(t.input) {
		c := t.input[i]
		if c == '"' {
			s := t.input[t.pos:i]
			if utf8.ValidString(s) {
				t.advance(i - t.pos + 1)
				return s, nil
			}
			break
		}
		if c == '\\' || c < 0x20 {
			break
		}
		i++
	}

	var b strings.Builder
	for {
		if t.pos >= len(t.input) {
			return "", t.lexErr(start, "unterminated string")
		}
		c := t.input[t.pos]
		switch {
		case c == '"':
			t.advance(1)
			return b.String(), nil
		case c == '\\':
			if err := t.lexEscape(&b); err != nil {
				return "", err
			}
		case c < 0x20:
			return "", t.lexErr(t.Position(), "invalid control character %#02x in string", c)
		case c < utf8.RuneSelf:
			b.WriteByte(c)
			t.advance(1)
		default:
			r, size := utf8.DecodeRuneInString(t.input[t.pos:])
			if r == utf8.RuneError && size == 1 {
				return "", t.lexErr(t.Position(), "invalid UTF-8 in string")
			}
			b.WriteString(t.input[t.pos : t.pos+size])
			t.advance(size)
		}
	}
}

func (t *Tokenizer) lexEscape(b *strings.Builder) error {
	escPos := t.Position()
	if t.pos+1 >= len(t.input) {
		return t.lexErr(escPos, "unterminated string")
	}
	c := t.input[t.pos+1]
	switch c {
	case '"', '\\', '/':
		b.WriteByte(c)
	case 'b':
		b.WriteByte('\b')
	case 'f':
		b.WriteByte('\f')
	case 'n':
		b.WriteByte('\n')
	case 'r':
		b.WriteByte('\r')
	case 't':
		b.WriteByte('\t')
	case 'u':
		r, ok := t.hex4(t.pos + 2)
		if !ok {
			return t.lexErr(escPos, "invalid unicode escape, expected 4 hex digits")
		}
		t.advance(6)
		if utf16.IsSurrogate(r) {
			if r2, ok := t.lowSurrogate(); ok {
				if combined := utf16.DecodeRune(r, r2); combined != utf8.RuneError {
					b.WriteRune(combined)
					t.advance(6)
					return nil
				}
			}
			r = utf8.RuneError
		}
		b.WriteRune(r)
		return nil
	default:
		return t.lexErr(escPos, "invalid escape sequence '\\%c'", c)
	}
	t.advance(2)
	return nil
}

// lowSurrogate peeks for a "\uXXXX" escape at the cursor.
func (t *Tokenizer) lowSurrogate() (rune, bool) {
	if t.pos+1 >= len(t.input) || t.input[t.pos] != '\\' || t.input[t.pos+1] != 'u' {
		return 0, false
	}
	return t.hex4(t.pos + 2)
}

func (t *Tokenizer) hex4(at int) (rune, bool) {
	if at+4 > len(t.input) {
		return 0, false
	}
	var r rune
	for _, c := range []byte(t.input[at : at+4]) {
		r <<= 4
		switch {
		case c >= '0' && c <= '9':
			r |= rune(c - '0')
		case c >= 'a' && c <= 'f':
			r |= rune(c - 'a' + 10)
		case c >= 'A' && c <= 'F':
			r |= rune(c - 'A' + 10)
		default:
			return 0, false
		}
	}
	return r, true
}

// lexNumber reads -?(0|[1-9][0-9]*)(\.[0-9]+)?([eE][+-]?[0-9]+)?
func (t *Tokenizer) lexNumber() (string, error) {
	start := t.Position()
	in := t.input
	i := t.pos

	if in[i] == '-' {
		i++
	}
	switch {
	case i >= len(in) || !isDigit(in[i]):
		return "", t.lexErr(start, "invalid number: expected digit after '-'")
	case in[i] == '0':
		i++
		if i < len(in) && isDigit(in[i]) {
			return "", t.lexErr(start, "invalid number: leading zeros are not allowed")
		}
	default:
		for i < len(in) && isDigit(in[i]) {
			i++
		}
	}

	if i < len(in) && in[i] == '.' {
		i++
		if i >= len(in) || !isDigit(in[i]) {
			return "", t.lexErr(start, "invalid number: expected digit after decimal point")
		}
		for i < len(in) && isDigit(in[i]) {
			i++
		}
	}

	if i < len(in) && (in[i] == 'e' || in[i] == 'E') {
		i++
		if i < len(in) && (in[i] == '+' || in[i] == '-') {
			i++
		}
		if i >= len(in) || !isDigit(in[i]) {
			return "", t.lexErr(start, "invalid number: expected digit in exponent")
		}
		for i < len(in) && isDigit(in[i]) {
			i++
		}
	}

	// A number must be followed by a delimiter; "1.2.3" or "12abc" is one bad token.
	if i < len(in) && (in[i] == '.' || isWordByte(in[i]) || in[i] == '+' || in[i] == '-') {
		end := i
		for end < len(in) && (in[end] == '.' || isWordByte(in[end]) || in[end] == '+' || in[end] == '-') {
			end++
		}
		return "", t.lexErr(start, "invalid number %q", in[t.pos:end])
	}

	text := in[t.pos:i]
	t.advance(i - t.pos)
	return text, nil
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
