package errors

import (
	"bufio"
	"fmt"
	"os"
)

// Category represents the type of error.
type Category string

const (
	CategoryConfig   Category = "config"
	CategoryRuntime  Category = "runtime"
	CategoryManifest Category = "manifest"
	CategoryCLI      Category = "cli"
	CategoryPublish  Category = "publish"
)

// Location is a position in a source file.
type Location struct {
	File   string `json:"file"`
	Line   int    `json:"line"`
	Column int    `json:"column,omitempty"`
}

// String returns the location as file:line[:column].
func (l *Location) String() string {
	if l == nil {
		return ""
	}
	if l.Column > 0 {
		return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
	}
	return fmt.Sprintf("%s:%d", l.File, l.Line)
}

// WeaveError is a coded error with optional location and fix suggestion.
type WeaveError struct {
	// Code is a registered error identifier (e.g., "E301").
	Code string

	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation.
	Detail string

	// Location is where the error was found, if it came from a file.
	Location *Location

	// Context holds the source lines surrounding Location, starting at
	// line ContextStart.
	Context      []string
	ContextStart int

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *WeaveError) Error() string {
	msg := e.Message
	if e.Code != "" {
		msg = e.Code + ": " + msg
	}
	if e.Wrapped != nil {
		msg += ": " + e.Wrapped.Error()
	}
	return msg
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *WeaveError) Unwrap() error {
	return e.Wrapped
}

// WithLocation records where the error occurred and loads the surrounding
// lines from file, if it can be read.
func (e *WeaveError) WithLocation(file string, line, column int) *WeaveError {
	e.Location = &Location{File: file, Line: line, Column: column}
	e.ContextStart, e.Context = readContextLines(file, line, 3)
	return e
}

// WithSuggestion adds a fix suggestion.
func (e *WeaveError) WithSuggestion(s string) *WeaveError {
	e.Suggestion = s
	return e
}

// WithDetail replaces the registered explanation.
func (e *WeaveError) WithDetail(d string) *WeaveError {
	e.Detail = d
	return e
}

// Wrap sets the underlying error.
func (e *WeaveError) Wrap(err error) *WeaveError {
	e.Wrapped = err
	return e
}

// readContextLines returns up to contextSize lines centred on targetLine and
// the number of the first one.
func readContextLines(filename string, targetLine, contextSize int) (int, []string) {
	file, err := os.Open(filename)
	if err != nil {
		return 0, nil
	}
	defer file.Close()

	startLine := max(targetLine-contextSize/2, 1)
	endLine := targetLine + contextSize/2

	var lines []string
	scanner := bufio.NewScanner(file)
	for lineNum := 1; scanner.Scan() && lineNum <= endLine; lineNum++ {
		if lineNum >= startLine {
			lines = append(lines, scanner.Text())
		}
	}
	return startLine, lines
}

// New creates a WeaveError from a registered code.
func New(code string) *WeaveError {
	tmpl, ok := registry[code]
	if !ok {
		return &WeaveError{Code: code, Message: "Unknown error"}
	}
	return &WeaveError{
		Code:     code,
		Category: tmpl.Category,
		Message:  tmpl.Message,
		Detail:   tmpl.Detail,
	}
}

// Newf creates an uncoded WeaveError with a formatted message.
func Newf(category Category, format string, args ...any) *WeaveError {
	return &WeaveError{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError wraps err in a WeaveError with code, unless it already is one.
func FromError(err error, code string) *WeaveError {
	if err == nil {
		return nil
	}
	if we, ok := err.(*WeaveError); ok {
		return we
	}
	return New(code).Wrap(err)
}
