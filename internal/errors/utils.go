package errors

import (
	"errors"
)

// Wrap wraps an error with additional context, creating a SiteError if the
// input is not already one. An existing SiteError keeps its path and context.
func Wrap(err error, errType ErrorType, code, message string) *SiteError {
	if err == nil {
		return nil
	}

	var se *SiteError
	if errors.As(err, &se) {
		return &SiteError{
			Type:    errType,
			Code:    code,
			Message: message,
			Cause:   se,
			Path:    se.Path,
			Context: se.Context,
		}
	}

	return &SiteError{
		Type:    errType,
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// WrapIO wraps a filesystem failure and records the path involved.
func WrapIO(err error, code, path string) *SiteError {
	se := Wrap(err, ErrorTypeIO, code, "filesystem operation failed")
	if se != nil {
		se.Path = path
	}
	return se
}

// WrapRender wraps a template execution failure that is not a strict-mode
// reference error.
func WrapRender(err error, name string) *SiteError {
	return Wrap(err, ErrorTypeRender, CodeTemplateExec, "render template "+name)
}

// TypeOf returns the ErrorType of the outermost SiteError in the chain, or
// the empty string for foreign errors.
func TypeOf(err error) ErrorType {
	var se *SiteError
	if errors.As(err, &se) {
		return se.Type
	}
	return ""
}

// IsRecoverable checks if an error leaves the process able to run another pass.
func IsRecoverable(err error) bool {
	var se *SiteError
	if errors.As(err, &se) {
		return se.Recoverable()
	}

	return true
}

// GetErrorContext extracts context information from a SiteError for logging.
func GetErrorContext(err error) map[string]interface{} {
	var se *SiteError
	if errors.As(err, &se) {
		context := make(map[string]interface{}, len(se.Context)+3)
		for k, v := range se.Context {
			context[k] = v
		}
		if se.Path != "" {
			context["path"] = se.Path
		}
		context["type"] = string(se.Type)
		context["code"] = se.Code
		return context
	}

	return map[string]interface{}{
		"message": err.Error(),
		"type":    "unknown",
	}
}
