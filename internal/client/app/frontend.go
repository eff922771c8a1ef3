package app

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"notedesk/internal/client/domain"
	"notedesk/internal/client/domain/entities"
	"notedesk/internal/client/ports/presenter"
	"notedesk/pkg/logger"
)

// Действия интерфейса, используются в уведомлениях и логах.
const (
	ActionConnect        = "connect"
	ActionLoad           = "load"
	ActionOpen           = "open"
	ActionSave           = "save"
	ActionDelete         = "delete"
	ActionChangePassword = "change password"
	ActionLogout         = "logout"
)

// Тексты уведомлений об успехе.
const (
	NoticeSaved           = "saved"
	NoticeDeleted         = "deleted"
	NoticePasswordChanged = "password changed"
	NoticeLoggedOut       = "logged out"
)

const (
	LogActionFailed         = "ui action failed"
	ErrorFailedPresent      = "failed to present"
	ErrorUnknownDecision    = "unknown modal decision"
	msgBusy                 = "please wait, another request is still running"
	msgNotConfigured        = "server is not configured, connect first"
	msgNoteNotFound         = "note not found"
	msgConnectUnreachable   = "cannot connect to the server, check the server url"
	msgTransportUnreachable = "failed, check the server connection"
)

// Frontend связывает действия пользователя с контроллером и отображает результат.
// Каждая ошибка превращается ровно в одно уведомление и возвращается вызывающему.
type Frontend struct {
	ctrl *Controller
	view presenter.Presenter
}

func NewFrontend(ctrl *Controller, view presenter.Presenter) *Frontend {
	return &Frontend{ctrl: ctrl, view: view}
}

// Start восстанавливает сессию и показывает нужный экран.
func (f *Frontend) Start(ctx context.Context) error {
	state, err := f.ctrl.Restore(ctx)
	if err != nil {
		return f.fail(ctx, ActionLoad, err)
	}
	if state == entities.StateUnconfigured {
		return f.present(f.view.ShowConfig(ctx, ""))
	}
	return f.Refresh(ctx)
}

// SubmitConfig проверяет адрес и пароль и показывает список заметок.
func (f *Frontend) SubmitConfig(ctx context.Context, endpoint, credential string) error {
	notes, err := f.ctrl.Authenticate(ctx, endpoint, credential)
	if err != nil {
		failErr := f.fail(ctx, ActionConnect, err)
		if showErr := f.view.ShowConfig(ctx, endpoint); showErr != nil {
			return errors.Join(failErr, f.present(showErr))
		}
		return failErr
	}
	return f.present(f.view.ShowNotes(ctx, notes, f.ctrl.CurrentNote()))
}

// Refresh заново запрашивает список.
func (f *Frontend) Refresh(ctx context.Context) error {
	notes, err := f.ctrl.ListNotes(ctx)
	if err != nil {
		return f.fail(ctx, ActionLoad, err)
	}
	return f.present(f.view.ShowNotes(ctx, notes, f.ctrl.CurrentNote()))
}

func (f *Frontend) NewNote(ctx context.Context) error {
	f.ctrl.NewNote()
	return f.present(f.view.ShowEditor(ctx, nil))
}

func (f *Frontend) OpenNote(ctx context.Context, id entities.NoteID) error {
	note, err := f.ctrl.OpenNote(ctx, id)
	if err != nil {
		return f.fail(ctx, ActionOpen, err)
	}
	return f.present(f.view.ShowEditor(ctx, note))
}

// Save сохраняет содержимое редактора новой заметкой и обновляет список.
func (f *Frontend) Save(ctx context.Context, title, content string) error {
	if err := f.ctrl.SaveNote(ctx, title, content); err != nil {
		return f.fail(ctx, ActionSave, err)
	}
	if err := f.notify(ctx, NoticeSaved); err != nil {
		return err
	}
	return f.Refresh(ctx)
}

// RequestDelete запрашивает подтверждение. Если ответ придет позже, возвращает nil.
func (f *Frontend) RequestDelete(ctx context.Context, id entities.NoteID, title string) error {
	pending := f.ctrl.RequestDeletion(id, title)

	decision, err := f.view.ShowModal(ctx, presenter.Modal{
		Kind:    presenter.ModalDelete,
		Title:   "Delete note",
		Message: fmt.Sprintf("Delete %q?", pending.Title),
	})
	if err != nil {
		f.ctrl.CancelDeletion()
		return f.present(err)
	}

	switch decision {
	case presenter.DecisionPending:
		return nil
	case presenter.DecisionConfirm:
		return f.ConfirmDelete(ctx)
	case presenter.DecisionCancel:
		return f.CancelDelete(ctx)
	default:
		f.ctrl.CancelDeletion()
		return fmt.Errorf("%s: %d", ErrorUnknownDecision, decision)
	}
}

// ConfirmDelete выполняет отложенное удаление.
func (f *Frontend) ConfirmDelete(ctx context.Context) error {
	if err := f.ctrl.ConfirmDeletion(ctx); err != nil {
		return f.fail(ctx, ActionDelete, err)
	}
	if err := f.notify(ctx, NoticeDeleted); err != nil {
		return err
	}
	return f.Refresh(ctx)
}

func (f *Frontend) CancelDelete(ctx context.Context) error {
	f.ctrl.CancelDeletion()
	return f.present(f.view.ShowNotes(ctx, f.ctrl.Notes(), f.ctrl.CurrentNote()))
}

// ChangePassword меняет пароль; сессия остается действующей.
func (f *Frontend) ChangePassword(ctx context.Context, oldCredential, newCredential, confirm string) error {
	if err := f.ctrl.ChangeCredential(ctx, oldCredential, newCredential, confirm); err != nil {
		return f.fail(ctx, ActionChangePassword, err)
	}
	return f.notify(ctx, NoticePasswordChanged)
}

// RequestLogout запрашивает подтверждение выхода.
func (f *Frontend) RequestLogout(ctx context.Context) error {
	decision, err := f.view.ShowModal(ctx, presenter.Modal{
		Kind:    presenter.ModalLogout,
		Title:   "Logout",
		Message: "Forget the server url and password?",
	})
	if err != nil {
		return f.present(err)
	}

	switch decision {
	case presenter.DecisionPending, presenter.DecisionCancel:
		return nil
	case presenter.DecisionConfirm:
		return f.ConfirmLogout(ctx)
	default:
		return fmt.Errorf("%s: %d", ErrorUnknownDecision, decision)
	}
}

func (f *Frontend) ConfirmLogout(ctx context.Context) error {
	if err := f.ctrl.Logout(ctx); err != nil {
		return f.fail(ctx, ActionLogout, err)
	}
	return f.present(f.view.ShowConfig(ctx, ""))
}

func (f *Frontend) notify(ctx context.Context, message string) error {
	return f.present(f.view.Notify(ctx, presenter.Notice{Level: presenter.NoticeInfo, Message: message}))
}

// fail логирует ошибку, показывает уведомление и возвращает исходную ошибку.
func (f *Frontend) fail(ctx context.Context, action string, err error) error {
	log := logger.Log(ctx).With(zap.String("action", action), zap.Error(err))
	if errors.Is(err, domain.ErrValidation) || errors.Is(err, domain.ErrBusy) {
		log.Debug(ctx, LogActionFailed)
	} else {
		log.Warn(ctx, LogActionFailed)
	}

	notice := presenter.Notice{
		Level:   presenter.NoticeError,
		Message: UserMessage(action, err),
		Err:     err,
	}
	if notifyErr := f.view.Notify(ctx, notice); notifyErr != nil {
		return errors.Join(err, f.present(notifyErr))
	}
	return err
}

func (f *Frontend) present(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", ErrorFailedPresent, err)
}

// UserMessage формирует текст уведомления об ошибке действия.
func UserMessage(action string, err error) string {
	var validationErr *domain.ValidationError
	switch {
	case errors.Is(err, domain.ErrBusy):
		return msgBusy
	case errors.Is(err, domain.ErrNotConfigured):
		return msgNotConfigured
	case errors.As(err, &validationErr):
		return validationErr.Error()
	case errors.Is(err, domain.ErrNoteNotFound):
		return msgNoteNotFound
	case errors.Is(err, domain.ErrAuth):
		if msg, ok := domain.ServiceMessage(err); ok {
			return "wrong password: " + msg
		}
		return "wrong password"
	case errors.Is(err, domain.ErrService):
		if msg, ok := domain.ServiceMessage(err); ok {
			return action + " failed: " + msg
		}
		return action + " failed"
	case errors.Is(err, domain.ErrTransport):
		if action == ActionConnect {
			return msgConnectUnreachable
		}
		return action + " " + msgTransportUnreachable
	default:
		return action + " failed: " + err.Error()
	}
}
