// Package presenter определяет набор возможностей слоя отображения.
package presenter

import (
	"context"

	"notedesk/internal/client/domain/entities"
)

// Decision - ответ пользователя в модальном диалоге.
type Decision int

const (
	// DecisionPending - диалог показан, ответ придет отдельным действием.
	DecisionPending Decision = iota
	DecisionConfirm
	DecisionCancel
)

// ModalKind - вид модального диалога.
type ModalKind int

const (
	ModalDelete ModalKind = iota
	ModalLogout
)

// Modal - диалог подтверждения.
type Modal struct {
	Kind    ModalKind
	Title   string
	Message string
}

// NoticeLevel - важность уведомления.
type NoticeLevel int

const (
	NoticeInfo NoticeLevel = iota
	NoticeError
)

// Notice - блокирующее уведомление пользователя.
type Notice struct {
	Level   NoticeLevel
	Message string
	Err     error
}

// Presenter реализуется терминальным и браузерным интерфейсами.
type Presenter interface {
	// ShowConfig показывает форму адреса сервера и пароля.
	ShowConfig(ctx context.Context, endpoint string) error

	// ShowNotes показывает список; пустой список - заглушка "нет файлов".
	ShowNotes(ctx context.Context, notes []entities.Note, current *entities.Note) error

	// ShowEditor показывает редактор; nil - пустой редактор.
	ShowEditor(ctx context.Context, note *entities.Note) error

	// ShowModal показывает диалог подтверждения.
	ShowModal(ctx context.Context, modal Modal) (Decision, error)

	// Notify показывает уведомление.
	Notify(ctx context.Context, notice Notice) error
}
