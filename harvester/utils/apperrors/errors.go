package apperrors

import (
	"errors"
	"fmt"
	"time"
)

// Kind is the category of a pipeline error.
type Kind string

const (
	KindTransport          Kind = "transport"
	KindParse              Kind = "parse"
	KindCandidate          Kind = "candidate"
	KindCredentialsMissing Kind = "credentials_missing"
	KindSheetAPI           Kind = "sheet_api"
	KindLocalWrite         Kind = "local_write"
	KindStorage            Kind = "storage"
	KindConfig             Kind = "config"
)

// Error is the common error type for every stage of the pipeline.
type Error struct {
	Kind      Kind
	Message   string
	Timestamp time.Time
	Err       error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(kind Kind, message string, err error) *Error {
	return &Error{
		Kind:      kind,
		Message:   message,
		Timestamp: time.Now(),
		Err:       err,
	}
}

func Transport(url string, err error) *Error {
	return New(KindTransport, fmt.Sprintf("fetch %s failed", url), err)
}

func Parse(source string, err error) *Error {
	return New(KindParse, fmt.Sprintf("parse %s page failed", source), err)
}

func Candidate(index int, reason string) *Error {
	return New(KindCandidate, fmt.Sprintf("candidate %d skipped: %s", index, reason), nil)
}

func CredentialsMissing(searched []string) *Error {
	return New(KindCredentialsMissing, fmt.Sprintf("no credentials file found (searched %v)", searched), nil)
}

func SheetAPI(stage string, err error) *Error {
	return New(KindSheetAPI, fmt.Sprintf("spreadsheet %s failed", stage), err)
}

func LocalWrite(path string, err error) *Error {
	return New(KindLocalWrite, fmt.Sprintf("write %s failed", path), err)
}

func Storage(op string, err error) *Error {
	return New(KindStorage, op, err)
}

// IsKind reports whether any error in err's chain is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	for err != nil {
		if !errors.As(err, &e) {
			return false
		}
		if e.Kind == kind {
			return true
		}
		err = e.Err
	}
	return false
}

// KindOf returns the kind of the outermost *Error in err's chain, or "".
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
