// Package remote определяет порт удаленного сервиса хранения заметок.
package remote

import (
	"context"

	"notedesk/internal/client/domain/entities"
)

// NotesAPI описывает четыре операции удаленного сервиса.
// Адрес передается в каждый вызов, так как сессия может смениться.
type NotesAPI interface {
	// ListNotes возвращает все заметки, видимые под паролем.
	ListNotes(ctx context.Context, endpoint, credential string) ([]entities.Note, error)

	// GetNote возвращает одну заметку по id.
	GetNote(ctx context.Context, endpoint, credential string, id entities.NoteID) (*entities.Note, error)

	// CreateNote всегда создает новую заметку; обновления сервис не поддерживает.
	CreateNote(ctx context.Context, endpoint, credential, title, content string) error

	// ChangePassword меняет пароль доступа.
	ChangePassword(ctx context.Context, endpoint, oldPassword, newPassword string) error
}
