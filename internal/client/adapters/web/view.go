package web

import (
	"context"
	"embed"
	"html/template"

	"notedesk/internal/client/domain/entities"
	"notedesk/internal/client/ports/presenter"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/*.html"))

type noticeView struct {
	Error   bool
	Message string
}

type editorView struct {
	ID      entities.NoteID
	Title   string
	Content string
	Time    string
	Preview template.HTML
}

type modalView struct {
	Title         string
	Message       string
	ConfirmAction string
	CancelAction  string
	CancelMethod  string
}

// page - модель одной HTML страницы.
type page struct {
	Configured  bool
	Endpoint    string
	Notes       []entities.Note
	Editor      *editorView
	Modal       *modalView
	Notices     []noticeView
	RequestID   string
	notesShown  bool
	editorShown bool
}

// pageView - браузерный presenter на время одного запроса.
// Диалоги не блокируют: ответ придет отдельным POST.
type pageView struct {
	page page
}

var _ presenter.Presenter = (*pageView)(nil)

func (v *pageView) ShowConfig(_ context.Context, endpoint string) error {
	v.page.Configured = false
	v.page.Endpoint = endpoint
	v.page.Notes = nil
	v.page.Editor = nil
	v.page.Modal = nil
	return nil
}

func (v *pageView) ShowNotes(_ context.Context, notes []entities.Note, current *entities.Note) error {
	v.page.Configured = true
	v.page.Notes = notes
	v.page.notesShown = true
	if !v.page.editorShown {
		v.page.Editor = newEditorView(current)
	}
	return nil
}

func (v *pageView) ShowEditor(_ context.Context, note *entities.Note) error {
	v.page.Configured = true
	v.page.Editor = newEditorView(note)
	v.page.editorShown = true
	return nil
}

func (v *pageView) ShowModal(_ context.Context, modal presenter.Modal) (presenter.Decision, error) {
	view := &modalView{Title: modal.Title, Message: modal.Message}
	switch modal.Kind {
	case presenter.ModalDelete:
		view.ConfirmAction = "/delete/confirm"
		view.CancelAction = "/delete/cancel"
		view.CancelMethod = "post"
	case presenter.ModalLogout:
		view.ConfirmAction = "/logout/confirm"
		view.CancelAction = "/"
		view.CancelMethod = "get"
	}
	v.page.Configured = true
	v.page.Modal = view
	return presenter.DecisionPending, nil
}

func (v *pageView) Notify(_ context.Context, notice presenter.Notice) error {
	v.page.Notices = append(v.page.Notices, noticeView{
		Error:   notice.Level == presenter.NoticeError,
		Message: notice.Message,
	})
	return nil
}

func newEditorView(note *entities.Note) *editorView {
	if note == nil {
		return nil
	}
	return &editorView{
		ID:      note.ID,
		Title:   note.Title,
		Content: note.Content,
		Time:    note.Time,
		Preview: renderMarkdown(note.Content),
	}
}
