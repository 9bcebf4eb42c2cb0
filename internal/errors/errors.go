package errors

import (
	"errors"
	"fmt"
)

// Standard application errors
var (
	ErrEmptyInput      = errors.New("input is empty or contains only whitespace")
	ErrInvalidJSON     = errors.New("invalid JSON format")
	ErrDepthExceeded   = errors.New("maximum nesting depth exceeded")
	ErrInvalidName     = errors.New("key is not a valid XML element name")
	ErrInputTooLarge   = errors.New("input exceeds the configured maximum size")
	ErrUnknownCharset  = errors.New("unknown charset")
	ErrFileNotFound    = errors.New("file not found")
	ErrFileEmpty       = errors.New("file is empty")
	ErrNoInput         = errors.New("no input provided: please specify a file with -i or pipe JSON data to stdin")
	ErrInvalidFilePath = errors.New("invalid file path")
)

// ErrorType categorizes errors
type ErrorType string

const (
	ErrorTypeInput         ErrorType = "input"
	ErrorTypeLexical       ErrorType = "lexical"
	ErrorTypeSyntax        ErrorType = "syntax"
	ErrorTypeDepth         ErrorType = "depth_exceeded"
	ErrorTypeSerialization ErrorType = "serialization"
	ErrorTypeConfig        ErrorType = "config"
	ErrorTypeFormat        ErrorType = "format"
	ErrorTypeOutput        ErrorType = "output"
	ErrorTypeUnknown       ErrorType = "unknown"
)

// Position locates an error inside the input text.
// Offset is a byte offset, Line and Column are 1-based.
type Position struct {
	Offset int
	Line   int
	Column int
}

// String renders the position for error messages
func (p Position) String() string {
	return fmt.Sprintf("line %d, column %d (offset %d)", p.Line, p.Column, p.Offset)
}

// AppError is an application-specific error with context
type AppError struct {
	Type    ErrorType
	Message string
	Pos     *Position
	Err     error
}

// Error implements error interface
func (e *AppError) Error() string {
	msg := e.Message
	if e.Pos != nil {
		msg = fmt.Sprintf("%s at %s", e.Message, e.Pos)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, msg)
}

// Unwrap returns wrapped error
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is for comparison
func (e *AppError) Is(target error) bool {
	// Check if target is also an *AppError and if the types match
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

// Describe returns the message with its position but without the type prefix
// or the wrapped cause.
func (e *AppError) Describe() string {
	if e.Pos != nil {
		return fmt.Sprintf("%s at %s", e.Message, e.Pos)
	}
	return e.Message
}

// TypeOf returns the ErrorType of the first AppError in err's chain,
// or ErrorTypeUnknown.
func TypeOf(err error) ErrorType {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type
	}
	return ErrorTypeUnknown
}

// NewInputError creates a new error related to input processing
func NewInputError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeInput,
		Message: message,
		Err:     err,
	}
}

// NewLexicalError creates an error for a malformed token
func NewLexicalError(message string, pos Position) *AppError {
	return &AppError{
		Type:    ErrorTypeLexical,
		Message: message,
		Pos:     &pos,
		Err:     ErrInvalidJSON,
	}
}

// NewSyntaxError creates an error for a token stream that does not match the grammar
func NewSyntaxError(message string, pos Position) *AppError {
	return &AppError{
		Type:    ErrorTypeSyntax,
		Message: message,
		Pos:     &pos,
		Err:     ErrInvalidJSON,
	}
}

// NewDepthError creates an error for nesting beyond the configured maximum
func NewDepthError(message string, pos Position) *AppError {
	return &AppError{
		Type:    ErrorTypeDepth,
		Message: message,
		Pos:     &pos,
		Err:     ErrDepthExceeded,
	}
}

// NewSerializationError creates a new error related to XML emission
func NewSerializationError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeSerialization,
		Message: message,
		Err:     err,
	}
}

// NewConfigError creates a new error related to configuration
func NewConfigError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeConfig,
		Message: message,
		Err:     err,
	}
}

// NewFormatError creates a new error related to XML pretty-printing
func NewFormatError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeFormat,
		Message: message,
		Err:     err,
	}
}

// NewOutputError creates a new error related to output processing
func NewOutputError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeOutput,
		Message: message,
		Err:     err,
	}
}

// UserFriendlyError returns a user-friendly error message
func UserFriendlyError(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		switch appErr.Type {
		case ErrorTypeInput:
			return fmt.Sprintf("Input error: %s", appErr.Message)
		case ErrorTypeLexical, ErrorTypeSyntax:
			return fmt.Sprintf("JSON parsing error: %s", appErr.Describe())
		case ErrorTypeDepth:
			return fmt.Sprintf("JSON nesting error: %s", appErr.Describe())
		case ErrorTypeSerialization:
			return fmt.Sprintf("XML generation error: %s", appErr.Message)
		case ErrorTypeConfig:
			return fmt.Sprintf("Configuration error: %s", appErr.Message)
		case ErrorTypeFormat:
			return fmt.Sprintf("XML formatting error: %s", appErr.Message)
		case ErrorTypeOutput:
			return fmt.Sprintf("Output error: %s", appErr.Message)
		default:
			return fmt.Sprintf("Error: %s", appErr.Message)
		}
	}

	// Handle standard errors
	if errors.Is(err, ErrEmptyInput) {
		return "Error: The input is empty. Please provide valid JSON data."
	}
	if errors.Is(err, ErrInvalidJSON) {
		return "Error: The input contains invalid JSON. Please check your JSON syntax."
	}
	if errors.Is(err, ErrDepthExceeded) {
		return "Error: The input is nested too deeply. Raise the maximum depth or flatten the document."
	}
	if errors.Is(err, ErrFileNotFound) {
		return "Error: The specified file could not be found. Please check the file path."
	}
	if errors.Is(err, ErrFileEmpty) {
		return "Error: The specified file is empty. Please provide a file with valid JSON content."
	}
	if errors.Is(err, ErrNoInput) {
		return "Error: No input provided. Please specify a file with -i or pipe JSON data to stdin."
	}
	if errors.Is(err, ErrInvalidFilePath) {
		return "Error: Invalid file path. Please provide a valid file path."
	}

	// Generic error message for unknown errors
	return fmt.Sprintf("Error: %v", err)
}
