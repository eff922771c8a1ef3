// Package httpapi реализует порт удаленного сервиса заметок поверх HTTP/JSON.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/gofiber/fiber/v3/client"
	"go.uber.org/zap"

	"notedesk/internal/client/config"
	"notedesk/internal/client/domain"
	"notedesk/internal/client/domain/entities"
	"notedesk/internal/client/metrics"
	"notedesk/internal/client/ports/remote"
	"notedesk/pkg/logger"
)

// Пути API удаленного сервиса.
const (
	PathNotes          = "/api/notes"
	PathNote           = "/api/note"
	PathChangePassword = "/api/change_password"
)

// Имена операций для логов и метрик.
const (
	OpListNotes      = "list_notes"
	OpGetNote        = "get_note"
	OpCreateNote     = "create_note"
	OpChangePassword = "change_password"
)

const (
	statusSuccess = "success"
	statusError   = "error"

	LogRemoteCall      = "remote call"
	ErrorRequestFailed = "request failed"
	ErrorBadResponse   = "malformed response"
	ErrorHTTPStatus    = "unexpected http status"
)

type envelope struct {
	Status string          `json:"status"`
	Msg    string          `json:"msg"`
	Notes  []entities.Note `json:"notes"`
}

type createNoteRequest struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	Password string `json:"password"`
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// Client обращается к удаленному сервису через fiber HTTP клиент.
type Client struct {
	http      *client.Client
	metrics   *metrics.Metrics
	timeout   time.Duration
	userAgent string
}

var _ remote.NotesAPI = (*Client)(nil)

// NewClient создает клиента. Нулевой таймаут не ограничивает запросы.
func NewClient(cfg *config.RemoteConfig, m *metrics.Metrics) *Client {
	return &Client{
		http:      client.New(),
		metrics:   m,
		timeout:   cfg.Timeout,
		userAgent: cfg.UserAgent,
	}
}

// ListNotes запрашивает все заметки.
func (c *Client) ListNotes(ctx context.Context, endpoint, credential string) ([]entities.Note, error) {
	var env envelope
	err := c.do(ctx, OpListNotes, func(ctx context.Context) (*client.Response, error) {
		return c.request(ctx).
			SetParam("password", credential).
			Get(endpoint + PathNotes)
	}, &env)
	if err != nil {
		return nil, err
	}

	if env.Notes == nil {
		env.Notes = []entities.Note{}
	}
	c.metrics.ObserveList(len(env.Notes))
	return env.Notes, nil
}

// GetNote запрашивает одну заметку.
func (c *Client) GetNote(ctx context.Context, endpoint, credential string, id entities.NoteID) (*entities.Note, error) {
	var note entities.Note
	err := c.do(ctx, OpGetNote, func(ctx context.Context) (*client.Response, error) {
		return c.request(ctx).
			SetParam("password", credential).
			Get(endpoint + PathNote + "/" + url.PathEscape(id.String()))
	}, &note)
	if err != nil {
		return nil, err
	}
	return &note, nil
}

// CreateNote создает новую заметку.
func (c *Client) CreateNote(ctx context.Context, endpoint, credential, title, content string) error {
	var env envelope
	err := c.do(ctx, OpCreateNote, func(ctx context.Context) (*client.Response, error) {
		return c.request(ctx).
			SetJSON(createNoteRequest{Title: title, Content: content, Password: credential}).
			Post(endpoint + PathNote)
	}, &env)
	if err != nil {
		return err
	}
	return expectSuccess(OpCreateNote, env)
}

// ChangePassword меняет пароль доступа.
func (c *Client) ChangePassword(ctx context.Context, endpoint, oldPassword, newPassword string) error {
	var env envelope
	err := c.do(ctx, OpChangePassword, func(ctx context.Context) (*client.Response, error) {
		return c.request(ctx).
			SetJSON(changePasswordRequest{OldPassword: oldPassword, NewPassword: newPassword}).
			Post(endpoint + PathChangePassword)
	}, &env)
	if err != nil {
		return err
	}
	return expectSuccess(OpChangePassword, env)
}

func (c *Client) request(ctx context.Context) *client.Request {
	req := c.http.R().SetContext(ctx)
	if c.userAgent != "" {
		req.SetHeader("User-Agent", c.userAgent)
	}
	return req
}

// do выполняет запрос, разбирает ответ в out и классифицирует ошибки.
func (c *Client) do(
	ctx context.Context,
	op string,
	send func(context.Context) (*client.Response, error),
	out any,
) error {
	log := logger.Log(ctx).With(zap.String("operation", op))
	started := time.Now()

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	resp, err := send(ctx)
	if err != nil {
		c.metrics.ObserveRemote(op, metrics.OutcomeTransport, started)
		log.Warn(ctx, ErrorRequestFailed, zap.Error(err))
		return fmt.Errorf("%s: %w: %w", op, domain.ErrTransport, err)
	}
	status := resp.StatusCode()
	body := append([]byte(nil), resp.Body()...)
	resp.Close()

	log.Debug(ctx, LogRemoteCall,
		zap.Int("status", status),
		zap.Duration("latency", time.Since(started)))

	err = decode(op, status, body, out)
	switch {
	case err == nil:
		c.metrics.ObserveRemote(op, metrics.OutcomeSuccess, started)
	case errors.Is(err, domain.ErrService):
		c.metrics.ObserveRemote(op, metrics.OutcomeService, started)
	default:
		c.metrics.ObserveRemote(op, metrics.OutcomeTransport, started)
	}
	return err
}

// decode сначала ищет status:"error", затем разбирает полезную нагрузку.
func decode(op string, status int, body []byte, out any) error {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		if status >= http.StatusBadRequest {
			return fmt.Errorf("%s: %w: %s %d", op, domain.ErrTransport, ErrorHTTPStatus, status)
		}
		return fmt.Errorf("%s: %w: %s: %w", op, domain.ErrTransport, ErrorBadResponse, err)
	}

	if env.Status == statusError {
		return &domain.ServiceError{Op: op, Status: status, Msg: env.Msg}
	}
	if status >= http.StatusBadRequest {
		return fmt.Errorf("%s: %w: %s %d", op, domain.ErrTransport, ErrorHTTPStatus, status)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%s: %w: %s: %w", op, domain.ErrTransport, ErrorBadResponse, err)
	}
	return nil
}

func expectSuccess(op string, env envelope) error {
	if env.Status != statusSuccess {
		return &domain.ServiceError{Op: op, Status: http.StatusOK, Msg: env.Msg}
	}
	return nil
}
