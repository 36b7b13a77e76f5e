package audit

import "fmt"

// ErrorKind classifies audit failures.
type ErrorKind string

// Supported error kinds.
const (
	ErrorKindIO                  ErrorKind = "io"
	ErrorKindParse               ErrorKind = "parse"
	ErrorKindPathNotFound        ErrorKind = "path_not_found"
	ErrorKindInvalidStructure    ErrorKind = "invalid_structure"
	ErrorKindUnsupportedLanguage ErrorKind = "unsupported_language"
)

const (
	errorWithSubjectAndCauseTemplateConstant = "%s: %s: %v"
	errorWithSubjectTemplateConstant         = "%s: %s"
	errorWithCauseTemplateConstant           = "%s: %v"
)

var errorKindDescriptions = map[ErrorKind]string{
	ErrorKindIO:                  "io error",
	ErrorKindParse:               "parse error",
	ErrorKindPathNotFound:        "path not found",
	ErrorKindInvalidStructure:    "invalid project structure",
	ErrorKindUnsupportedLanguage: "unsupported language",
}

// Sentinel errors matched by kind through errors.Is.
var (
	ErrIO                  = &Error{Kind: ErrorKindIO}
	ErrParse               = &Error{Kind: ErrorKindParse}
	ErrPathNotFound        = &Error{Kind: ErrorKindPathNotFound}
	ErrInvalidStructure    = &Error{Kind: ErrorKindInvalidStructure}
	ErrUnsupportedLanguage = &Error{Kind: ErrorKindUnsupportedLanguage}
)

// Error describes a failure together with the subject (usually a path) it concerns.
type Error struct {
	Kind    ErrorKind
	Subject string
	Cause   error
}

func newError(kind ErrorKind, subject string, cause error) *Error {
	return &Error{Kind: kind, Subject: subject, Cause: cause}
}

// Error formats the failure for humans.
func (auditError *Error) Error() string {
	description, known := errorKindDescriptions[auditError.Kind]
	if !known {
		description = string(auditError.Kind)
	}
	if auditError.Cause != nil && len(auditError.Subject) == 0 {
		return fmt.Sprintf(errorWithCauseTemplateConstant, description, auditError.Cause)
	}
	if auditError.Cause != nil {
		return fmt.Sprintf(errorWithSubjectAndCauseTemplateConstant, description, auditError.Subject, auditError.Cause)
	}
	if len(auditError.Subject) == 0 {
		return description
	}
	return fmt.Sprintf(errorWithSubjectTemplateConstant, description, auditError.Subject)
}

// Unwrap exposes the underlying cause.
func (auditError *Error) Unwrap() error {
	return auditError.Cause
}

// Is matches any audit error of the same kind.
func (auditError *Error) Is(target error) bool {
	targetError, isAuditError := target.(*Error)
	if !isAuditError {
		return false
	}
	return targetError.Kind == auditError.Kind
}
