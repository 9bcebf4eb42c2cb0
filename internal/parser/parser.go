package parser

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mcncl/json2xml/internal/errors"
	"github.com/mcncl/json2xml/internal/models"
)

// DefaultMaxDepth is the nesting limit applied when none is configured.
const DefaultMaxDepth = 1000

// Parser builds a value tree from a token stream by recursive descent.
type Parser struct {
	tok      *Tokenizer
	maxDepth int
}

// NewParser returns a Parser reading from tok. A non-positive maxDepth falls
// back to DefaultMaxDepth.
func NewParser(tok *Tokenizer, maxDepth int) *Parser {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	return &Parser{tok: tok, maxDepth: maxDepth}
}

// Parse parses a complete JSON document. Any content after the first value
// other than whitespace is an error.
func (p *Parser) Parse() (*models.Value, error) {
	first, err := p.tok.Next()
	if err != nil {
		return nil, err
	}
	if first.Kind == TokenEOF {
		return nil, errors.NewSyntaxError("unexpected end of input, expected a JSON value", first.Pos)
	}

	root, err := p.parseValue(first)
	if err != nil {
		return nil, err
	}

	trailing, err := p.tok.Next()
	if err != nil {
		return nil, err
	}
	if trailing.Kind != TokenEOF {
		return nil, errors.NewSyntaxError(
			fmt.Sprintf("extra content after document: unexpected %s", trailing.Kind),
			trailing.Pos,
		)
	}
	return root, nil
}

func (p *Parser) parseValue(tok Token) (*models.Value, error) {
	switch tok.Kind {
	case TokenBeginObject:
		if err := p.checkDepth(tok, "object"); err != nil {
			return nil, err
		}
		return p.parseObject()
	case TokenBeginArray:
		if err := p.checkDepth(tok, "array"); err != nil {
			return nil, err
		}
		return p.parseArray()
	case TokenString:
		return models.NewString(tok.Text), nil
	case TokenNumber:
		return models.NewNumber(tok.Text), nil
	case TokenTrue:
		return models.NewBool(true), nil
	case TokenFalse:
		return models.NewBool(false), nil
	case TokenNull:
		return models.NewNull(), nil
	case TokenEOF:
		return nil, errors.NewSyntaxError("unexpected end of input, expected a JSON value", tok.Pos)
	default:
		return nil, errors.NewSyntaxError(fmt.Sprintf("unexpected %s, expected a JSON value", tok.Kind), tok.Pos)
	}
}

// checkDepth runs on the opening token, before any of the container's
// content is read. tok.Depth already counts the container being opened.
func (p *Parser) checkDepth(tok Token, what string) error {
	if tok.Depth > p.maxDepth {
		return errors.NewDepthError(
			fmt.Sprintf("%s nesting exceeds maximum depth %d", what, p.maxDepth),
			tok.Pos,
		)
	}
	return nil
}

func (p *Parser) parseObject() (*models.Value, error) {
	obj := models.NewObject()

	tok, err := p.tok.Next()
	if err != nil {
		return nil, err
	}
	if tok.Kind == TokenEndObject {
		return obj, nil
	}

	for {
		if tok.Kind != TokenString {
			return nil, p.unexpected(tok, "object key string")
		}
		key := tok.Text

		colon, err := p.tok.Next()
		if err != nil {
			return nil, err
		}
		if colon.Kind != TokenColon {
			return nil, p.unexpected(colon, "':' after object key")
		}

		valTok, err := p.tok.Next()
		if err != nil {
			return nil, err
		}
		val, err := p.parseValue(valTok)
		if err != nil {
			return nil, err
		}
		obj.Append(key, val)

		sep, err := p.tok.Next()
		if err != nil {
			return nil, err
		}
		switch sep.Kind {
		case TokenEndObject:
			return obj, nil
		case TokenComma:
		default:
			return nil, p.unexpected(sep, "',' or '}' in object")
		}

		if tok, err = p.tok.Next(); err != nil {
			return nil, err
		}
	}
}

func (p *Parser) parseArray() (*models.Value, error) {
	arr := models.NewArray()

	tok, err := p.tok.Next()
	if err != nil {
		return nil, err
	}
	if tok.Kind == TokenEndArray {
		return arr, nil
	}

	for {
		item, err := p.parseValue(tok)
		if err != nil {
			return nil, err
		}
		arr.Items = append(arr.Items, item)

		sep, err := p.tok.Next()
		if err != nil {
			return nil, err
		}
		switch sep.Kind {
		case TokenEndArray:
			return arr, nil
		case TokenComma:
		default:
			return nil, p.unexpected(sep, "',' or ']' in array")
		}

		if tok, err = p.tok.Next(); err != nil {
			return nil, err
		}
	}
}

func (p *Parser) unexpected(tok Token, expected string) error {
	if tok.Kind == TokenEOF {
		return errors.NewSyntaxError(fmt.Sprintf("unexpected end of input, expected %s", expected), tok.Pos)
	}
	return errors.NewSyntaxError(fmt.Sprintf("unexpected %s, expected %s", tok.Kind, expected), tok.Pos)
}

// Parse parses input with the given maximum nesting depth.
func Parse(input string, maxDepth int) (*models.Value, error) {
	return NewParser(NewTokenizer(input), maxDepth).Parse()
}

// ParseBytes parses a UTF-8 encoded buffer.
func ParseBytes(data []byte, maxDepth int) (*models.Value, error) {
	return Parse(string(data), maxDepth)
}

// ParseReader buffers the whole reader before parsing.
func ParseReader(reader io.Reader, maxDepth int) (*models.Value, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, errors.NewInputError("failed to read input", err)
	}
	return ParseBytes(data, maxDepth)
}

// ParseString parses JSON from a string, rejecting blank input up front.
func ParseString(jsonString string, maxDepth int) (*models.Value, error) {
	if strings.TrimSpace(jsonString) == "" {
		return nil, errors.NewInputError("input string is empty", errors.ErrEmptyInput)
	}
	return Parse(jsonString, maxDepth)
}

// ParseFile parses JSON from a file path
func ParseFile(filePath string, maxDepth int) (*models.Value, error) {
	data, err := ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	return ParseBytes(data, maxDepth)
}

// ReadFile loads a JSON payload from disk, mapping the usual failures onto
// input errors.
func ReadFile(filePath string) ([]byte, error) {
	if strings.TrimSpace(filePath) == "" {
		return nil, errors.NewInputError("file path is empty", errors.ErrInvalidFilePath)
	}
	data, err := os.ReadFile(filePath)
	if err != nil {
		// Check if the file doesn't exist
		if os.IsNotExist(err) {
			return nil, errors.NewInputError(
				fmt.Sprintf("file '%s' not found", filePath),
				errors.ErrFileNotFound,
			)
		}
		return nil, errors.NewInputError(
			fmt.Sprintf("failed to open file '%s'", filePath),
			err,
		)
	}
	if len(data) == 0 {
		return nil, errors.NewInputError(
			fmt.Sprintf("input file '%s' is empty", filePath),
			errors.ErrFileEmpty,
		)
	}
	return data, nil
}
