// Package domain holds the error taxonomy shared by the client layers.
package domain

import (
	"errors"
	"fmt"
)

// Категории ошибок клиента.
var (
	// ErrValidation - локальная проверка не пройдена, сеть не трогали.
	ErrValidation = errors.New("validation failed")
	// ErrNotConfigured - операция требует настроенной сессии.
	ErrNotConfigured = fmt.Errorf("%w: session is not configured", ErrValidation)
	// ErrAuth - сервис отверг пароль при аутентификации.
	ErrAuth = errors.New("authentication rejected")
	// ErrTransport - сеть недоступна или ответ не разобрать.
	ErrTransport = errors.New("transport failure")
	// ErrService - сервис доступен, но ответил status:"error".
	ErrService = errors.New("service reported an error")
	// ErrBusy - предыдущий запрос еще выполняется.
	ErrBusy = errors.New("another request is in flight")
	// ErrNoteNotFound - заметка не найдена ни в списке, ни на сервере.
	ErrNoteNotFound = errors.New("note not found")
)

// ServiceError несет сообщение, присланное сервисом.
type ServiceError struct {
	Op     string
	Status int
	Msg    string
}

func (e *ServiceError) Error() string {
	if e.Msg == "" {
		return fmt.Sprintf("%s: service error (http %d)", e.Op, e.Status)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Msg)
}

func (e *ServiceError) Unwrap() error {
	return ErrService
}

// ValidationError описывает конкретное нарушение локальной проверки.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// Invalid создает ошибку валидации поля.
func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// ServiceMessage возвращает текст сервиса, если он есть в цепочке ошибок.
func ServiceMessage(err error) (string, bool) {
	var svcErr *ServiceError
	if errors.As(err, &svcErr) && svcErr.Msg != "" {
		return svcErr.Msg, true
	}
	return "", false
}
