package entities

import "strings"

// SessionState - состояние клиентской сессии.
type SessionState int

const (
	StateUnconfigured SessionState = iota
	StateAuthenticated
)

func (s SessionState) String() string {
	switch s {
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unconfigured"
	}
}

// Session - адрес сервера и пароль доступа. Либо оба поля заданы, либо ни одного.
type Session struct {
	Endpoint   string
	Credential string
}

// NewSession нормализует адрес: обрезает пробелы и завершающий слеш.
func NewSession(endpoint, credential string) Session {
	return Session{
		Endpoint:   strings.TrimRight(strings.TrimSpace(endpoint), "/"),
		Credential: strings.TrimSpace(credential),
	}
}

// Complete сообщает, заданы ли оба поля.
func (s Session) Complete() bool {
	return s.Endpoint != "" && s.Credential != ""
}
