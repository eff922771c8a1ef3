package web

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/utils/v2"
	"go.uber.org/zap"

	"notedesk/internal/client/app"
	"notedesk/internal/client/domain"
	"notedesk/internal/client/domain/entities"
	"notedesk/pkg/logger"
)

const (
	LogHandlerIndex   = "web handler: index"
	LogHandlerAction  = "web handler: action"
	ErrorRenderPage   = "failed to render page"
	ErrorSendResponse = "failed to send response"
)

// Handler обслуживает страницы браузерного интерфейса.
type Handler struct {
	ctrl    *app.Controller
	log     *logger.Logger
	started atomic.Bool
}

func NewHandler(ctrl *app.Controller, log *logger.Logger) *Handler {
	return &Handler{ctrl: ctrl, log: log}
}

// Index показывает форму подключения или список с редактором.
// Первый запрос восстанавливает сессию из хранилища.
func (h *Handler) Index(c fiber.Ctx) error {
	return h.handle(c, func(ctx context.Context, front *app.Frontend) error {
		logger.Log(ctx).Debug(ctx, LogHandlerIndex)
		if h.started.CompareAndSwap(false, true) {
			return front.Start(ctx)
		}
		if h.ctrl.State() != entities.StateAuthenticated {
			return nil
		}
		return front.Refresh(ctx)
	})
}

func (h *Handler) SubmitConfig(c fiber.Ctx) error {
	return h.handle(c, func(ctx context.Context, front *app.Frontend) error {
		h.started.Store(true)
		return front.SubmitConfig(ctx, formValue(c, "endpoint"), formValue(c, "password"))
	})
}

func (h *Handler) Refresh(c fiber.Ctx) error {
	return h.handle(c, func(ctx context.Context, front *app.Frontend) error {
		return front.Refresh(ctx)
	})
}

func (h *Handler) NewNote(c fiber.Ctx) error {
	return h.handle(c, func(ctx context.Context, front *app.Frontend) error {
		return front.NewNote(ctx)
	})
}

func (h *Handler) OpenNote(c fiber.Ctx) error {
	return h.handle(c, func(ctx context.Context, front *app.Frontend) error {
		return front.OpenNote(ctx, noteID(c))
	})
}

func (h *Handler) Save(c fiber.Ctx) error {
	return h.handle(c, func(ctx context.Context, front *app.Frontend) error {
		return front.Save(ctx, formValue(c, "title"), formValue(c, "content"))
	})
}

func (h *Handler) RequestDelete(c fiber.Ctx) error {
	return h.handle(c, func(ctx context.Context, front *app.Frontend) error {
		return front.RequestDelete(ctx, noteID(c), formValue(c, "title"))
	})
}

func (h *Handler) ConfirmDelete(c fiber.Ctx) error {
	return h.handle(c, func(ctx context.Context, front *app.Frontend) error {
		return front.ConfirmDelete(ctx)
	})
}

func (h *Handler) CancelDelete(c fiber.Ctx) error {
	return h.handle(c, func(ctx context.Context, front *app.Frontend) error {
		return front.CancelDelete(ctx)
	})
}

func (h *Handler) ChangePassword(c fiber.Ctx) error {
	return h.handle(c, func(ctx context.Context, front *app.Frontend) error {
		return front.ChangePassword(ctx,
			formValue(c, "old_password"),
			formValue(c, "new_password"),
			formValue(c, "confirm_password"))
	})
}

func (h *Handler) RequestLogout(c fiber.Ctx) error {
	return h.handle(c, func(ctx context.Context, front *app.Frontend) error {
		return front.RequestLogout(ctx)
	})
}

func (h *Handler) ConfirmLogout(c fiber.Ctx) error {
	return h.handle(c, func(ctx context.Context, front *app.Frontend) error {
		return front.ConfirmLogout(ctx)
	})
}

func (h *Handler) Health(c fiber.Ctx) error {
	if err := c.SendString("ok"); err != nil {
		return fmt.Errorf("%s: %w", ErrorSendResponse, err)
	}
	return nil
}

// handle выполняет действие с presenter'ом этого запроса и рисует страницу.
// Ошибка действия уже показана баннером и влияет только на HTTP статус.
func (h *Handler) handle(c fiber.Ctx, action func(context.Context, *app.Frontend) error) error {
	ctx := requestContext(c, h.log)
	view := &pageView{}

	actionErr := action(ctx, app.NewFrontend(h.ctrl, view))
	if actionErr != nil {
		logger.Log(ctx).Debug(ctx, LogHandlerAction,
			zap.String("path", c.Path()),
			zap.Error(actionErr))
	}

	h.complete(&view.page)
	if id, ok := logger.GetRequestID(ctx); ok {
		view.page.RequestID = id
	}

	var buf bytes.Buffer
	if err := pageTemplate.ExecuteTemplate(&buf, "page", view.page); err != nil {
		logger.Log(ctx).Error(ctx, ErrorRenderPage, zap.Error(err))
		return fmt.Errorf("%s: %w", ErrorRenderPage, err)
	}

	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	if err := c.Status(statusFor(actionErr)).Send(buf.Bytes()); err != nil {
		return fmt.Errorf("%s: %w", ErrorSendResponse, err)
	}
	return nil
}

// complete дополняет страницу тем, чего действие не показало.
func (h *Handler) complete(p *page) {
	if h.ctrl.State() != entities.StateAuthenticated {
		p.Configured = false
		p.Notes = nil
		p.Editor = nil
		p.Modal = nil
		return
	}

	p.Configured = true
	p.Endpoint = h.ctrl.Session().Endpoint
	if !p.notesShown {
		p.Notes = h.ctrl.Notes()
	}
	if !p.editorShown && p.Editor == nil {
		p.Editor = newEditorView(h.ctrl.CurrentNote())
	}
}

// formValue копирует значение поля формы из буфера запроса.
func formValue(c fiber.Ctx, key string) string {
	return utils.CopyString(c.FormValue(key))
}

func noteID(c fiber.Ctx) entities.NoteID {
	return entities.NoteID(utils.CopyString(c.Params("id")))
}

func statusFor(err error) int {
	switch {
	case err == nil:
		return fiber.StatusOK
	case errors.Is(err, domain.ErrBusy):
		return fiber.StatusConflict
	case errors.Is(err, domain.ErrValidation):
		return fiber.StatusBadRequest
	case errors.Is(err, domain.ErrAuth):
		return fiber.StatusUnauthorized
	case errors.Is(err, domain.ErrNoteNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, domain.ErrTransport), errors.Is(err, domain.ErrService):
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}
