// Package app implements the client session controller and the UI-flow binder.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"go.uber.org/zap"

	"notedesk/internal/client/domain"
	"notedesk/internal/client/domain/entities"
	"notedesk/internal/client/metrics"
	"notedesk/internal/client/ports/remote"
	"notedesk/pkg/logger"
)

const (
	LogSessionRestored   = "session restored"
	LogAuthenticated     = "authenticated"
	LogLoggedOut         = "logged out"
	LogNoteSaved         = "note saved"
	LogNoteDeleted       = "deletion marker created"
	LogCredentialChanged = "access password changed"
	LogRejectedBusy      = "operation rejected, request in flight"

	ErrorFailedAuthenticate = "failed to authenticate"
	ErrorFailedListNotes    = "failed to list notes"
	ErrorFailedSaveNote     = "failed to save note"
	ErrorFailedDeleteNote   = "failed to delete note"
	ErrorFailedOpenNote     = "failed to open note"
	ErrorFailedChangeCred   = "failed to change password"
	ErrorFailedLogout       = "failed to logout"
)

// Controller хранит сессию и выполняет операции над удаленным сервисом.
// Безопасен для конкурентного использования; удаленные вызовы идут по одному.
type Controller struct {
	api      remote.NotesAPI
	sessions *SessionStore
	metrics  *metrics.Metrics
	guard    InFlightGuard

	mu      sync.Mutex
	state   entities.SessionState
	session entities.Session
	notes   []entities.Note
	current *entities.Note
	pending *entities.PendingDeletion
}

// NewController создает контроллер в состоянии Unconfigured. Метрики могут быть nil.
func NewController(api remote.NotesAPI, sessions *SessionStore, m *metrics.Metrics) *Controller {
	return &Controller{
		api:      api,
		sessions: sessions,
		metrics:  m,
		state:    entities.StateUnconfigured,
	}
}

// Restore читает сессию из хранилища без обращения к сети.
func (c *Controller) Restore(ctx context.Context) (entities.SessionState, error) {
	session, ok, err := c.sessions.Load(ctx)
	if err != nil {
		return entities.StateUnconfigured, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.resetLocked()
	if ok {
		c.session = session
		c.state = entities.StateAuthenticated
		logger.Log(ctx).Debug(ctx, LogSessionRestored, zap.String("endpoint", session.Endpoint))
	}
	return c.state, nil
}

// Authenticate проверяет пару адрес/пароль запросом списка и сохраняет ее при успехе.
func (c *Controller) Authenticate(ctx context.Context, endpoint, credential string) ([]entities.Note, error) {
	session := entities.NewSession(endpoint, credential)
	if session.Endpoint == "" {
		return nil, domain.Invalid("server url", "must not be empty")
	}
	if session.Credential == "" {
		return nil, domain.Invalid("password", "must not be empty")
	}

	release, err := c.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	notes, err := c.api.ListNotes(ctx, session.Endpoint, session.Credential)
	if err != nil {
		if errors.Is(err, domain.ErrService) {
			return nil, fmt.Errorf("%s: %w: %w", ErrorFailedAuthenticate, domain.ErrAuth, err)
		}
		return nil, fmt.Errorf("%s: %w", ErrorFailedAuthenticate, err)
	}

	if err := c.sessions.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrorFailedAuthenticate, err)
	}

	c.mu.Lock()
	c.resetLocked()
	c.session = session
	c.state = entities.StateAuthenticated
	c.notes = notes
	c.mu.Unlock()

	logger.Log(ctx).Info(ctx, LogAuthenticated,
		zap.String("endpoint", session.Endpoint),
		zap.Int("notes", len(notes)))
	return cloneNotes(notes), nil
}

// ListNotes запрашивает список заметок текущей сессии.
func (c *Controller) ListNotes(ctx context.Context) ([]entities.Note, error) {
	session, err := c.authenticated()
	if err != nil {
		return nil, err
	}

	release, err := c.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	notes, err := c.api.ListNotes(ctx, session.Endpoint, session.Credential)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrorFailedListNotes, err)
	}

	c.mu.Lock()
	c.notes = notes
	c.mu.Unlock()

	return cloneNotes(notes), nil
}

// SaveNote всегда создает новую заметку. Id открытой заметки при этом теряется.
func (c *Controller) SaveNote(ctx context.Context, title, content string) error {
	title = strings.TrimSpace(title)
	content = strings.TrimSpace(content)
	if title == "" {
		return domain.Invalid("title", "must not be empty")
	}

	session, err := c.authenticated()
	if err != nil {
		return err
	}

	release, err := c.acquire(ctx)
	if err != nil {
		return err
	}
	defer release()

	if err := c.api.CreateNote(ctx, session.Endpoint, session.Credential, title, content); err != nil {
		return fmt.Errorf("%s: %w", ErrorFailedSaveNote, err)
	}

	c.mu.Lock()
	c.current = &entities.Note{Title: title, Content: content}
	c.mu.Unlock()

	logger.Log(ctx).Info(ctx, LogNoteSaved, zap.Int("content_length", len(content)))
	return nil
}

// DeleteNote создает заметку-маркер удаления. Исходная заметка остается на сервере.
func (c *Controller) DeleteNote(ctx context.Context, id entities.NoteID, title string) error {
	if id == "" {
		return domain.Invalid("note id", "must not be empty")
	}

	session, err := c.authenticated()
	if err != nil {
		return err
	}

	release, err := c.acquire(ctx)
	if err != nil {
		return err
	}
	defer release()

	err = c.api.CreateNote(ctx, session.Endpoint, session.Credential, entities.DeletedTitle, entities.DeletedContent)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrorFailedDeleteNote, err)
	}

	c.mu.Lock()
	if c.current != nil && c.current.ID == id {
		c.current = nil
	}
	c.pending = nil
	c.mu.Unlock()

	logger.Log(ctx).Info(ctx, LogNoteDeleted,
		zap.String("note_id", id.String()),
		zap.String("title", title))
	return nil
}

// ChangeCredential меняет пароль на сервере и обновляет сохраненную сессию.
func (c *Controller) ChangeCredential(ctx context.Context, oldCredential, newCredential, confirm string) error {
	oldCredential = strings.TrimSpace(oldCredential)
	newCredential = strings.TrimSpace(newCredential)
	confirm = strings.TrimSpace(confirm)

	switch {
	case oldCredential == "":
		return domain.Invalid("old password", "must not be empty")
	case newCredential == "":
		return domain.Invalid("new password", "must not be empty")
	case newCredential != confirm:
		return domain.Invalid("new password", "does not match confirmation")
	}

	session, err := c.authenticated()
	if err != nil {
		return err
	}

	release, err := c.acquire(ctx)
	if err != nil {
		return err
	}
	defer release()

	if err := c.api.ChangePassword(ctx, session.Endpoint, oldCredential, newCredential); err != nil {
		return fmt.Errorf("%s: %w", ErrorFailedChangeCred, err)
	}

	if err := c.sessions.UpdateCredential(ctx, newCredential); err != nil {
		return fmt.Errorf("%s: %w", ErrorFailedChangeCred, err)
	}

	c.mu.Lock()
	c.session.Credential = newCredential
	c.mu.Unlock()

	logger.Log(ctx).Info(ctx, LogCredentialChanged, zap.String("endpoint", session.Endpoint))
	return nil
}

// Logout удаляет сессию из хранилища и сбрасывает состояние.
// Пока выполняется другой запрос, возвращает ErrBusy и ничего не меняет.
// Состояние в памяти сбрасывается даже при ошибке хранилища.
func (c *Controller) Logout(ctx context.Context) error {
	release, err := c.acquire(ctx)
	if err != nil {
		return err
	}
	defer release()

	err = c.sessions.Clear(ctx)

	c.mu.Lock()
	c.resetLocked()
	c.session = entities.Session{}
	c.state = entities.StateUnconfigured
	c.mu.Unlock()

	if err != nil {
		return fmt.Errorf("%s: %w", ErrorFailedLogout, err)
	}
	logger.Log(ctx).Info(ctx, LogLoggedOut)
	return nil
}

// NewNote очищает редактор.
func (c *Controller) NewNote() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = nil
}

// OpenNote открывает заметку из последнего списка, иначе запрашивает ее у сервера.
func (c *Controller) OpenNote(ctx context.Context, id entities.NoteID) (*entities.Note, error) {
	if id == "" {
		return nil, domain.Invalid("note id", "must not be empty")
	}

	session, err := c.authenticated()
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	for i := range c.notes {
		if c.notes[i].ID == id {
			note := c.notes[i]
			c.current = &note
			c.mu.Unlock()
			return &note, nil
		}
	}
	c.mu.Unlock()

	release, err := c.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	note, err := c.api.GetNote(ctx, session.Endpoint, session.Credential, id)
	if err != nil {
		var svcErr *domain.ServiceError
		if errors.As(err, &svcErr) && svcErr.Status == http.StatusNotFound {
			return nil, fmt.Errorf("%s: %w: %w", ErrorFailedOpenNote, domain.ErrNoteNotFound, err)
		}
		return nil, fmt.Errorf("%s: %w", ErrorFailedOpenNote, err)
	}

	opened := *note
	c.mu.Lock()
	c.current = &opened
	c.mu.Unlock()
	return note, nil
}

// CurrentNote возвращает копию открытой заметки или nil.
func (c *Controller) CurrentNote() *entities.Note {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return nil
	}
	note := *c.current
	return &note
}

// Notes возвращает последний полученный список.
func (c *Controller) Notes() []entities.Note {
	c.mu.Lock()
	defer c.mu.Unlock()
	return cloneNotes(c.notes)
}

// RequestDeletion запоминает заметку, ожидающую подтверждения удаления.
func (c *Controller) RequestDeletion(id entities.NoteID, title string) entities.PendingDeletion {
	pending := entities.PendingDeletion{ID: id, Title: title}
	c.mu.Lock()
	c.pending = &pending
	c.mu.Unlock()
	return pending
}

func (c *Controller) PendingDeletion() (entities.PendingDeletion, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending == nil {
		return entities.PendingDeletion{}, false
	}
	return *c.pending, true
}

func (c *Controller) CancelDeletion() {
	c.mu.Lock()
	c.pending = nil
	c.mu.Unlock()
}

// ConfirmDeletion удаляет заметку, ожидающую подтверждения.
func (c *Controller) ConfirmDeletion(ctx context.Context) error {
	pending, ok := c.PendingDeletion()
	if !ok {
		return domain.Invalid("deletion", "is not pending")
	}
	return c.DeleteNote(ctx, pending.ID, pending.Title)
}

func (c *Controller) State() entities.SessionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) Session() entities.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

func (c *Controller) authenticated() (entities.Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != entities.StateAuthenticated {
		return entities.Session{}, domain.ErrNotConfigured
	}
	return c.session, nil
}

func (c *Controller) acquire(ctx context.Context) (func(), error) {
	release, err := c.guard.Acquire()
	if err != nil {
		c.metrics.ObserveRejected()
		logger.Log(ctx).Warn(ctx, LogRejectedBusy)
		return nil, err
	}
	return release, nil
}

func (c *Controller) resetLocked() {
	c.notes = nil
	c.current = nil
	c.pending = nil
}

func cloneNotes(notes []entities.Note) []entities.Note {
	out := make([]entities.Note, len(notes))
	copy(out, notes)
	return out
}
