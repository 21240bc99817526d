package domain

import "errors"

// Таксономия ошибок приложения. Слои оборачивают их через %w,
// HTTP-слой сопоставляет их со статусами в одном месте.
var (
	ErrValidation      = errors.New("validation failed")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrUnavailable     = errors.New("service unavailable")
)

// ValidationError несёт список сообщений по полям.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	if len(e.Messages) == 0 {
		return ErrValidation.Error()
	}
	msg := e.Messages[0]
	for _, m := range e.Messages[1:] {
		msg += ", " + m
	}
	return msg
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// Error: ошибка с сообщением, которое можно показать клиенту.
// Kind: одна из сентинел-ошибок выше.
type Error struct {
	Kind    error
	Message string
}

// NewError создаёт ошибку вида kind с публичным сообщением.
func NewError(kind error, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}
