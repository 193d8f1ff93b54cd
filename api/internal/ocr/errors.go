package ocr

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindValidation  Kind = "validation"
	KindEngineInit  Kind = "engine_init"
	KindRecognition Kind = "recognition"
	KindUnknown     Kind = "unknown"
)

const (
	errPrefix      = "OCR Processing failed: "
	unexpectedText = "An unexpected error occurred during OCR processing"
)

// Сентинелы для errors.Is: errors.Is(err, ocr.ErrValidation).
var (
	ErrValidation  = &Error{Kind: KindValidation}
	ErrEngineInit  = &Error{Kind: KindEngineInit}
	ErrRecognition = &Error{Kind: KindRecognition}
	ErrUnknown     = &Error{Kind: KindUnknown}
)

// Error — единственный тип ошибки, который отдаёт ExtractText.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Kind == KindUnknown && e.Msg == "" {
		return unexpectedText
	}
	return errPrefix + e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is сравнивает только по Kind, чтобы работали сентинелы.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf возвращает вид ошибки; для чужих ошибок — KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

func validationError(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Msg: fmt.Sprintf(format, args...)}
}

// wrap нормализует ошибку движка. Ошибка без текста превращается в unknown.
// Готовая *Error проходит как есть, только если это она сама, а не звено цепочки.
func wrap(kind Kind, err error) *Error {
	if e, ok := err.(*Error); ok {
		return e
	}
	if err == nil || err.Error() == "" {
		return &Error{Kind: KindUnknown, Err: err}
	}
	return &Error{Kind: kind, Msg: err.Error(), Err: err}
}
