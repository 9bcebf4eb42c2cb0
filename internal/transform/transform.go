package transform

import (
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/mcncl/json2xml/internal/config"
	"github.com/mcncl/json2xml/internal/errors"
	"github.com/mcncl/json2xml/internal/formatter"
	"github.com/mcncl/json2xml/internal/generator"
	"github.com/mcncl/json2xml/internal/models"
	"github.com/mcncl/json2xml/internal/parser"
)

// MessagePrefix starts the message of every transformation failure.
const MessagePrefix = "Unable to transform JSON into XML: "

// ContentType is the media type of a transformed payload.
const ContentType = "application/xml;charset=UTF-8"

// FailureKey identifies a failed transformation to whoever reports it.
type FailureKey string

const (
	FailureKeyRequest  FailureKey = "JSON_INVALID_PAYLOAD"
	FailureKeyResponse FailureKey = "JSON_INVALID_MESSAGE_PAYLOAD"
)

// FailureKeyFor returns the failure key for a payload seen in scope.
func FailureKeyFor(scope config.Scope) FailureKey {
	if scope == config.ScopeRequest {
		return FailureKeyRequest
	}
	return FailureKeyResponse
}

// StatusFor returns the HTTP status a failed transformation maps to.
func StatusFor(scope config.Scope) int {
	if scope == config.ScopeRequest {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// Error is returned by every failed transformation.
type Error struct {
	Kind errors.ErrorType
	Err  *errors.AppError
}

func (e *Error) Error() string {
	return MessagePrefix + e.Err.Describe()
}

func (e *Error) Unwrap() error {
	return e.Err
}

func wrap(err error) error {
	var appErr *errors.AppError
	if !stderrors.As(err, &appErr) {
		appErr = errors.NewSerializationError(err.Error(), err)
	}
	return &Error{Kind: appErr.Type, Err: appErr}
}

type settings struct {
	rootElement string
	maxDepth    int
	naming      string
	declaration bool
	indent      string
}

// Option configures a Transformer.
type Option func(*settings)

// WithRootElement sets the element every payload is nested under.
func WithRootElement(name string) Option {
	return func(s *settings) { s.rootElement = name }
}

// WithMaxDepth bounds object and array nesting.
func WithMaxDepth(depth int) Option {
	return func(s *settings) { s.maxDepth = depth }
}

// WithNaming sets the key naming style (keep, camel, lower_camel, snake, kebab).
func WithNaming(style string) Option {
	return func(s *settings) { s.naming = style }
}

// WithDeclaration prefixes output with an XML declaration.
func WithDeclaration(on bool) Option {
	return func(s *settings) { s.declaration = on }
}

// WithIndent pretty-prints output using indent per level. Empty means compact.
func WithIndent(indent string) Option {
	return func(s *settings) { s.indent = indent }
}

// WithConfig takes every setting from a resolved configuration.
func WithConfig(cfg *config.Config) Option {
	return func(s *settings) {
		s.rootElement = cfg.RootElement
		s.maxDepth = cfg.MaxDepth
		s.naming = cfg.Naming.Style
		s.declaration = cfg.Output.Declaration
		s.indent = cfg.Output.Indent
	}
}

// Transformer turns JSON payloads into XML. It is immutable once built and
// safe for concurrent use.
type Transformer struct {
	rootElement string
	maxDepth    int
	gen         *generator.Generator
	pretty      *formatter.Formatter
}

// New resolves options once. Unset values fall back to the config defaults.
func New(opts ...Option) (*Transformer, error) {
	s := settings{
		rootElement: config.DefaultRootElement,
		maxDepth:    config.DefaultMaxDepth,
	}
	for _, opt := range opts {
		opt(&s)
	}

	if !generator.IsValidName(s.rootElement) {
		return nil, wrap(errors.NewConfigError(
			fmt.Sprintf("root element %q is not a valid XML element name", s.rootElement), errors.ErrInvalidName))
	}
	if s.maxDepth <= 0 || s.maxDepth > config.MaxDepthLimit {
		return nil, wrap(errors.NewConfigError(
			fmt.Sprintf("max depth must be between 1 and %d, got %d", config.MaxDepthLimit, s.maxDepth), nil))
	}
	naming, err := generator.ParseNamingStyle(s.naming)
	if err != nil {
		return nil, wrap(errors.NewConfigError(err.Error(), err))
	}

	t := &Transformer{
		rootElement: s.rootElement,
		maxDepth:    s.maxDepth,
		gen: generator.NewGeneratorWithOptions(generator.Options{
			Naming:      naming,
			Declaration: s.declaration,
		}),
	}
	if s.indent != "" {
		t.pretty = formatter.NewFormatterWithIndent(s.indent)
	}
	return t, nil
}

// RootElement returns the configured root element name.
func (t *Transformer) RootElement() string { return t.rootElement }

// MaxDepth returns the configured nesting bound.
func (t *Transformer) MaxDepth() int { return t.maxDepth }

// Parse parses input under the configured depth bound without serializing it.
func (t *Transformer) Parse(input string) (*models.Value, error) {
	doc, err := parser.Parse(input, t.maxDepth)
	if err != nil {
		return nil, wrap(err)
	}
	return doc, nil
}

// Transform converts one JSON document into XML. On failure no output is
// returned and the error is an *Error.
func (t *Transformer) Transform(input string) (string, error) {
	doc, err := t.Parse(input)
	if err != nil {
		return "", err
	}
	return t.Render(doc)
}

// Render serializes an already parsed document under the root element.
func (t *Transformer) Render(doc *models.Value) (string, error) {
	if doc == nil {
		return "", wrap(errors.NewSerializationError("no document to render", nil))
	}
	out, err := t.gen.GenerateXML(models.Wrap(t.rootElement, doc))
	if err != nil {
		return "", wrap(err)
	}
	if t.pretty != nil {
		out, err = t.pretty.Format(out)
		if err != nil {
			return "", wrap(errors.NewFormatError("failed to indent output", err))
		}
	}
	return out, nil
}

// Transform converts input with a one-off Transformer.
func Transform(input, rootElement string, maxDepth int) (string, error) {
	t, err := New(WithRootElement(rootElement), WithMaxDepth(maxDepth))
	if err != nil {
		return "", err
	}
	return t.Transform(input)
}
