package app

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"notedesk/internal/client/domain/entities"
	"notedesk/internal/client/ports/store"
	"notedesk/pkg/logger"
)

// Ключи сессии в локальном хранилище.
const (
	KeyServerURL      = "serverUrl"
	KeyAccessPassword = "accessPassword"
)

const (
	LogPartialSession         = "dropping partially persisted session"
	ErrorFailedLoadSession    = "failed to load session"
	ErrorFailedSaveSession    = "failed to save session"
	ErrorFailedClearSession   = "failed to clear session"
	ErrorFailedUpdatePassword = "failed to update stored password"
)

// SessionStore отображает сессию на хранилище ключ-значение.
// Пара ключей всегда пишется и удаляется целиком.
type SessionStore struct {
	kv store.KV
}

func NewSessionStore(kv store.KV) *SessionStore {
	return &SessionStore{kv: kv}
}

// Load возвращает сохраненную сессию. Половинчатая пара считается отсутствующей и удаляется.
func (s *SessionStore) Load(ctx context.Context) (entities.Session, bool, error) {
	endpoint, err := s.kv.Get(ctx, KeyServerURL)
	if err != nil {
		return entities.Session{}, false, fmt.Errorf("%s: %w", ErrorFailedLoadSession, err)
	}
	credential, err := s.kv.Get(ctx, KeyAccessPassword)
	if err != nil {
		return entities.Session{}, false, fmt.Errorf("%s: %w", ErrorFailedLoadSession, err)
	}

	session := entities.Session{Endpoint: endpoint, Credential: credential}
	if session.Complete() {
		return session, true, nil
	}

	if endpoint != "" || credential != "" {
		logger.Log(ctx).Warn(ctx, LogPartialSession,
			zap.Bool("has_endpoint", endpoint != ""),
			zap.Bool("has_credential", credential != ""))
		if err := s.Clear(ctx); err != nil {
			return entities.Session{}, false, err
		}
	}
	return entities.Session{}, false, nil
}

// Save пишет обе части сессии; при сбое второй записи откатывает первую.
func (s *SessionStore) Save(ctx context.Context, session entities.Session) error {
	if err := s.kv.Set(ctx, KeyServerURL, session.Endpoint); err != nil {
		return fmt.Errorf("%s: %w", ErrorFailedSaveSession, err)
	}
	if err := s.kv.Set(ctx, KeyAccessPassword, session.Credential); err != nil {
		rollbackErr := s.kv.Delete(ctx, KeyServerURL)
		return fmt.Errorf("%s: %w", ErrorFailedSaveSession, errors.Join(err, rollbackErr))
	}
	return nil
}

// UpdateCredential заменяет только пароль.
func (s *SessionStore) UpdateCredential(ctx context.Context, credential string) error {
	if err := s.kv.Set(ctx, KeyAccessPassword, credential); err != nil {
		return fmt.Errorf("%s: %w", ErrorFailedUpdatePassword, err)
	}
	return nil
}

// Clear удаляет оба ключа.
func (s *SessionStore) Clear(ctx context.Context) error {
	errEndpoint := s.kv.Delete(ctx, KeyServerURL)
	errCredential := s.kv.Delete(ctx, KeyAccessPassword)
	if err := errors.Join(errEndpoint, errCredential); err != nil {
		return fmt.Errorf("%s: %w", ErrorFailedClearSession, err)
	}
	return nil
}
