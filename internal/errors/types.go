// Package errors defines the structured error taxonomy shared by every stage
// of a rebuild pass. Each failure carries a Type used for classification with
// errors.Is, an optional machine-readable Code, and the underlying cause.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorType represents the category of a site build failure.
type ErrorType string

const (
	ErrorTypeMalformedDocument ErrorType = "malformed_document"
	ErrorTypeMetadataParse     ErrorType = "metadata_parse"
	ErrorTypeTemplateSyntax    ErrorType = "template_syntax"
	ErrorTypeTemplateNotFound  ErrorType = "template_not_found"
	ErrorTypeUndefinedVariable ErrorType = "undefined_template_variable"
	ErrorTypeEmptyPostList     ErrorType = "empty_post_list"
	ErrorTypeIO                ErrorType = "io"
	ErrorTypeStylesheet        ErrorType = "stylesheet_compile"
	ErrorTypeDuplicateName     ErrorType = "duplicate_name"
	ErrorTypeRender            ErrorType = "render"
	ErrorTypeConfig            ErrorType = "config"
)

// Sentinels for errors.Is comparisons. A sentinel matches any SiteError of
// the same Type regardless of its Code.
var (
	ErrMalformedDocument         = &SiteError{Type: ErrorTypeMalformedDocument}
	ErrMetadataParse             = &SiteError{Type: ErrorTypeMetadataParse}
	ErrTemplateSyntax            = &SiteError{Type: ErrorTypeTemplateSyntax}
	ErrTemplateNotFound          = &SiteError{Type: ErrorTypeTemplateNotFound}
	ErrUndefinedTemplateVariable = &SiteError{Type: ErrorTypeUndefinedVariable}
	ErrEmptyPostList             = &SiteError{Type: ErrorTypeEmptyPostList}
	ErrIO                        = &SiteError{Type: ErrorTypeIO}
	ErrStylesheetCompile         = &SiteError{Type: ErrorTypeStylesheet}
	ErrDuplicateName             = &SiteError{Type: ErrorTypeDuplicateName}
	ErrRender                    = &SiteError{Type: ErrorTypeRender}
	ErrConfig                    = &SiteError{Type: ErrorTypeConfig}
)

// SiteError is a structured error type with context.
type SiteError struct {
	Type    ErrorType
	Code    string
	Message string
	Cause   error
	Path    string
	Context map[string]interface{}
}

// Error implements the error interface.
func (e *SiteError) Error() string {
	var parts []string

	if e.Code != "" {
		parts = append(parts, fmt.Sprintf("[%s]", e.Code))
	}

	if e.Path != "" {
		parts = append(parts, e.Path)
	}

	if e.Message != "" {
		parts = append(parts, e.Message)
	} else {
		parts = append(parts, string(e.Type))
	}

	result := strings.Join(parts, " ")

	if e.Cause != nil {
		result += fmt.Sprintf(": %v", e.Cause)
	}

	return result
}

// Unwrap returns the underlying cause error.
func (e *SiteError) Unwrap() error {
	return e.Cause
}

// Is matches on Type, and on Code when the target carries one.
func (e *SiteError) Is(target error) bool {
	var t *SiteError
	if !errors.As(target, &t) {
		return false
	}
	if e.Type != t.Type {
		return false
	}
	return t.Code == "" || e.Code == t.Code
}

// WithContext adds context information to the error.
func (e *SiteError) WithContext(key string, value interface{}) *SiteError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value

	return e
}

// WithPath records the source or output path the failure relates to.
func (e *SiteError) WithPath(path string) *SiteError {
	e.Path = path

	return e
}

// Recoverable reports whether the next rebuild pass may succeed without
// restarting the process. Only configuration errors are terminal.
func (e *SiteError) Recoverable() bool {
	return e.Type != ErrorTypeConfig
}

// Error codes.
const (
	CodeMissingDelimiter  = "MISSING_DELIMITER"
	CodeInvalidMetadata   = "INVALID_METADATA"
	CodeInvalidDate       = "INVALID_DATE"
	CodeMarkdownRender    = "MARKDOWN_RENDER"
	CodeTemplateParse     = "TEMPLATE_PARSE"
	CodeTemplateMissing   = "TEMPLATE_MISSING"
	CodeUndefinedField    = "UNDEFINED_FIELD"
	CodeTemplateExec      = "TEMPLATE_EXEC"
	CodeNoPosts           = "NO_POSTS"
	CodeReadFailed        = "READ_FAILED"
	CodeWriteFailed       = "WRITE_FAILED"
	CodeNotDirectory      = "NOT_DIRECTORY"
	CodeWatchFailed       = "WATCH_FAILED"
	CodeAbsolutePath      = "ABSOLUTE_PATH"
	CodeStylesheetCompile = "STYLESHEET_COMPILE"
	CodeDuplicateName     = "DUPLICATE_NAME"
	CodeConfigInvalid     = "CONFIG_INVALID"
)

// NewMalformedDocument reports a post source lacking the two-delimiter structure.
func NewMalformedDocument(parts int) *SiteError {
	return &SiteError{
		Type:    ErrorTypeMalformedDocument,
		Code:    CodeMissingDelimiter,
		Message: fmt.Sprintf("document did not have 3 delimiter-separated parts, had: %d", parts),
	}
}

// NewMetadataParse wraps a front matter decoding or validation failure.
func NewMetadataParse(code string, cause error) *SiteError {
	return &SiteError{
		Type:    ErrorTypeMetadataParse,
		Code:    code,
		Message: "parse post metadata",
		Cause:   cause,
	}
}

// NewTemplateSyntax wraps a template registration failure.
func NewTemplateSyntax(name string, cause error) *SiteError {
	return &SiteError{
		Type:    ErrorTypeTemplateSyntax,
		Code:    CodeTemplateParse,
		Message: fmt.Sprintf("register template %q", name),
		Cause:   cause,
	}
}

// NewTemplateNotFound reports a render against an unregistered template name.
func NewTemplateNotFound(name string) *SiteError {
	return &SiteError{
		Type:    ErrorTypeTemplateNotFound,
		Code:    CodeTemplateMissing,
		Message: fmt.Sprintf("template %q is not registered", name),
	}
}

// NewUndefinedVariable wraps a strict-mode render failure.
func NewUndefinedVariable(name string, cause error) *SiteError {
	return &SiteError{
		Type:    ErrorTypeUndefinedVariable,
		Code:    CodeUndefinedField,
		Message: fmt.Sprintf("render template %q", name),
		Cause:   cause,
	}
}

// NewEmptyPostList reports an index render requested with zero posts.
func NewEmptyPostList() *SiteError {
	return &SiteError{
		Type:    ErrorTypeEmptyPostList,
		Code:    CodeNoPosts,
		Message: "no blog summaries to render",
	}
}

// NewStylesheetCompile wraps a stylesheet compiler failure.
func NewStylesheetCompile(name string, cause error) *SiteError {
	return &SiteError{
		Type:    ErrorTypeStylesheet,
		Code:    CodeStylesheetCompile,
		Message: fmt.Sprintf("compile stylesheet %q", name),
		Cause:   cause,
	}
}

// NewDuplicateName reports a logical name produced twice by one traversal.
func NewDuplicateName(name, first, second string) *SiteError {
	return &SiteError{
		Type:    ErrorTypeDuplicateName,
		Code:    CodeDuplicateName,
		Message: fmt.Sprintf("logical name %q produced by both %s and %s", name, first, second),
	}
}

// NewConfigError creates a configuration error.
func NewConfigError(message string, cause error) *SiteError {
	return &SiteError{
		Type:    ErrorTypeConfig,
		Code:    CodeConfigInvalid,
		Message: message,
		Cause:   cause,
	}
}
