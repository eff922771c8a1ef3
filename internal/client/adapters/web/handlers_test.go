package web_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notedesk/internal/client/adapters/httpapi"
	storeadapter "notedesk/internal/client/adapters/store"
	"notedesk/internal/client/adapters/web"
	"notedesk/internal/client/app"
	"notedesk/internal/client/config"
	"notedesk/internal/client/domain/entities"
	"notedesk/internal/client/metrics"
	"notedesk/internal/client/remotetest"
	"notedesk/pkg/logger"
)

type fixture struct {
	srv  *remotetest.Server
	kv   *storeadapter.MemoryKV
	ctrl *app.Controller
	app  *fiber.App
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	kv := storeadapter.NewMemoryKV()
	ctrl := app.NewController(httpapi.NewClient(&config.RemoteConfig{}, m), app.NewSessionStore(kv), m)

	return &fixture{
		srv:  remotetest.Start(t, remotetest.DefaultPassword),
		kv:   kv,
		ctrl: ctrl,
		app:  web.NewApp(&config.WebConfig{}, ctrl, reg, logger.NewNop()),
	}
}

func (f *fixture) do(t *testing.T, method, path string, form url.Values) (int, string, http.Header) {
	t.Helper()

	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, path, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := f.app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(raw), resp.Header
}

func (f *fixture) login(t *testing.T) string {
	t.Helper()
	status, body, _ := f.do(t, http.MethodPost, "/config", url.Values{
		"endpoint": {f.srv.URL},
		"password": {remotetest.DefaultPassword},
	})
	require.Equal(t, http.StatusOK, status, body)
	return body
}

func TestHealthAndRequestID(t *testing.T) {
	f := newFixture(t)

	status, body, header := f.do(t, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body)
	assert.Len(t, header.Get(web.HeaderRequestID), 36)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(web.HeaderRequestID, "given-id")
	resp, err := f.app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "given-id", resp.Header.Get(web.HeaderRequestID))

	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(web.HeaderRequestID, "<b>forged</b>")
	resp, err = f.app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Len(t, resp.Header.Get(web.HeaderRequestID), 36)
}

func TestUnknownRoute(t *testing.T) {
	f := newFixture(t)

	status, _, _ := f.do(t, http.MethodGet, "/nope", nil)

	assert.Equal(t, http.StatusNotFound, status)
}

func TestIndex(t *testing.T) {
	t.Run("unconfigured shows the connect form", func(t *testing.T) {
		f := newFixture(t)

		status, body, _ := f.do(t, http.MethodGet, "/", nil)

		assert.Equal(t, http.StatusOK, status)
		assert.Contains(t, body, `action="/config"`)
		assert.Zero(t, f.srv.Calls(""))
	})

	t.Run("stored session is restored on the first request", func(t *testing.T) {
		f := newFixture(t)
		f.srv.Seed(remotetest.Note{Title: "remembered", Content: "x"})
		require.NoError(t, app.NewSessionStore(f.kv).Save(context.Background(),
			entities.Session{Endpoint: f.srv.URL, Credential: remotetest.DefaultPassword}))

		status, body, _ := f.do(t, http.MethodGet, "/", nil)

		assert.Equal(t, http.StatusOK, status)
		assert.Contains(t, body, "remembered")
		assert.NotContains(t, body, `action="/config"`)
	})
}

func TestSubmitConfig(t *testing.T) {
	t.Run("wrong password", func(t *testing.T) {
		f := newFixture(t)

		status, body, _ := f.do(t, http.MethodPost, "/config", url.Values{
			"endpoint": {f.srv.URL},
			"password": {"bad"},
		})

		assert.Equal(t, http.StatusUnauthorized, status)
		assert.Contains(t, body, "wrong password")
		assert.Contains(t, body, `value="`+f.srv.URL+`"`)
		assert.Equal(t, entities.StateUnconfigured, f.ctrl.State())
	})

	t.Run("missing url issues no request", func(t *testing.T) {
		f := newFixture(t)

		status, body, _ := f.do(t, http.MethodPost, "/config", url.Values{"password": {"x"}})

		assert.Equal(t, http.StatusBadRequest, status)
		assert.Contains(t, body, "server url must not be empty")
		assert.Zero(t, f.srv.Calls(""))
	})

	t.Run("empty list shows placeholder", func(t *testing.T) {
		f := newFixture(t)

		body := f.login(t)

		assert.Contains(t, body, "no files")
		assert.Contains(t, body, f.srv.URL)
	})
}

func TestMetricsEndpoint(t *testing.T) {
	f := newFixture(t)
	f.login(t)

	status, body, _ := f.do(t, http.MethodGet, "/metrics", nil)

	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, `notedesk_remote_requests_total{operation="list_notes",outcome="success"} 1`)
	assert.Contains(t, body, "notedesk_listed_notes 0")
}

func TestOpenNote(t *testing.T) {
	f := newFixture(t)
	f.srv.Seed(remotetest.Note{Title: "doc", Content: "# Heading\n\n<script>alert(1)</script>\n\nsee https://example.com"})
	f.login(t)

	status, body, _ := f.do(t, http.MethodGet, "/notes/1", nil)

	require.Equal(t, http.StatusOK, status, body)
	assert.Contains(t, body, "<h1>Heading</h1>")
	assert.NotContains(t, body, "<script>alert(1)</script>")
	assert.Contains(t, body, `target="_blank"`)
	assert.Contains(t, body, `class=" active"`)

	status, _, _ = f.do(t, http.MethodGet, "/notes/404", nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, body, _ = f.do(t, http.MethodGet, "/notes/new", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.NotContains(t, body, "<h1>Heading</h1>")
}

func TestSave(t *testing.T) {
	f := newFixture(t)
	f.login(t)

	status, body, _ := f.do(t, http.MethodPost, "/notes", url.Values{"title": {""}, "content": {"C"}})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, body, "title must not be empty")
	assert.Zero(t, f.srv.Calls("/api/note"))

	status, body, _ = f.do(t, http.MethodPost, "/notes", url.Values{"title": {"Groceries"}, "content": {"milk"}})
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, app.NoticeSaved)
	assert.Contains(t, body, "Groceries")
	assert.Len(t, f.srv.Notes(), 1)
}

func TestDeleteFlow(t *testing.T) {
	f := newFixture(t)
	f.srv.Seed(remotetest.Note{Title: "victim", Content: "x"})
	f.login(t)

	status, body, _ := f.do(t, http.MethodPost, "/notes/1/delete", url.Values{"title": {"victim"}})
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, `action="/delete/confirm"`)
	assert.Zero(t, f.srv.Calls("/api/note"), "modal only")

	status, body, _ = f.do(t, http.MethodPost, "/delete/cancel", url.Values{})
	assert.Equal(t, http.StatusOK, status)
	assert.NotContains(t, body, `action="/delete/confirm"`)
	_, pending := f.ctrl.PendingDeletion()
	assert.False(t, pending)

	status, _, _ = f.do(t, http.MethodPost, "/delete/confirm", url.Values{})
	assert.Equal(t, http.StatusBadRequest, status, "nothing pending")

	f.do(t, http.MethodPost, "/notes/1/delete", url.Values{"title": {"victim"}})
	status, body, _ = f.do(t, http.MethodPost, "/delete/confirm", url.Values{})
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, app.NoticeDeleted)
	assert.Contains(t, body, entities.DeletedTitle)
	assert.Contains(t, body, "victim")
	assert.Len(t, f.srv.Notes(), 2)
}

func TestChangePassword(t *testing.T) {
	f := newFixture(t)
	f.login(t)

	status, body, _ := f.do(t, http.MethodPost, "/password", url.Values{
		"old_password":     {remotetest.DefaultPassword},
		"new_password":     {"a"},
		"confirm_password": {"b"},
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, body, "does not match confirmation")
	assert.Zero(t, f.srv.Calls("/api/change_password"))

	status, body, _ = f.do(t, http.MethodPost, "/password", url.Values{
		"old_password":     {remotetest.DefaultPassword},
		"new_password":     {"a"},
		"confirm_password": {"a"},
	})
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, app.NoticePasswordChanged)
	assert.Equal(t, "a", f.srv.Password())

	status, _, _ = f.do(t, http.MethodPost, "/refresh", url.Values{})
	assert.Equal(t, http.StatusOK, status)
}

func TestLogoutFlow(t *testing.T) {
	f := newFixture(t)
	f.login(t)

	status, body, _ := f.do(t, http.MethodPost, "/logout", url.Values{})
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, `action="/logout/confirm"`)
	assert.Equal(t, entities.StateAuthenticated, f.ctrl.State())

	status, body, _ = f.do(t, http.MethodPost, "/logout/confirm", url.Values{})
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, `action="/config"`)
	assert.Equal(t, entities.StateUnconfigured, f.ctrl.State())

	status, _, _ = f.do(t, http.MethodPost, "/refresh", url.Values{})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestTransportFailure(t *testing.T) {
	f := newFixture(t)
	f.login(t)
	f.srv.Break(http.StatusBadGateway, "<html>upstream down</html>")

	status, body, _ := f.do(t, http.MethodPost, "/refresh", url.Values{})

	assert.Equal(t, http.StatusBadGateway, status)
	assert.Contains(t, body, "load failed, check the server connection")
}

func TestSessionSurvivesLaterRequests(t *testing.T) {
	f := newFixture(t)
	f.srv.Seed(remotetest.Note{Title: "victim", Content: "x"})
	f.login(t)

	status, _, _ := f.do(t, http.MethodPost, "/notes/1/delete", url.Values{"title": {"victim"}})
	require.Equal(t, http.StatusOK, status)

	filler := strings.Repeat("y", 64)
	status, body, _ := f.do(t, http.MethodPost, "/notes", url.Values{"title": {filler}, "content": {filler}})
	require.Equal(t, http.StatusOK, status, body)
	f.do(t, http.MethodGet, "/notes/"+filler, nil)

	session := f.ctrl.Session()
	assert.Equal(t, f.srv.URL, session.Endpoint)
	assert.Equal(t, remotetest.DefaultPassword, session.Credential)

	stored, err := f.kv.Get(context.Background(), app.KeyServerURL)
	require.NoError(t, err)
	assert.Equal(t, f.srv.URL, stored)
	stored, err = f.kv.Get(context.Background(), app.KeyAccessPassword)
	require.NoError(t, err)
	assert.Equal(t, remotetest.DefaultPassword, stored)

	pending, ok := f.ctrl.PendingDeletion()
	require.True(t, ok)
	assert.Equal(t, entities.NoteID("1"), pending.ID)
	assert.Equal(t, "victim", pending.Title)

	status, _, _ = f.do(t, http.MethodPost, "/refresh", url.Values{})
	assert.Equal(t, http.StatusOK, status)
}
