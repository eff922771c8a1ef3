package app_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/mock"

	"notedesk/internal/client/adapters/httpapi"
	storeadapter "notedesk/internal/client/adapters/store"
	"notedesk/internal/client/app"
	"notedesk/internal/client/config"
	"notedesk/internal/client/domain/entities"
	"notedesk/internal/client/metrics"
	"notedesk/internal/client/ports/presenter"
	"notedesk/internal/client/ports/store"
	"notedesk/internal/client/remotetest"
)

var ErrStoreDown = errors.New("store is down")

type mockNotesAPI struct {
	mock.Mock
}

func (m *mockNotesAPI) ListNotes(ctx context.Context, endpoint, credential string) ([]entities.Note, error) {
	args := m.Called(ctx, endpoint, credential)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.Note), args.Error(1)
}

func (m *mockNotesAPI) GetNote(ctx context.Context, endpoint, credential string, id entities.NoteID) (*entities.Note, error) {
	args := m.Called(ctx, endpoint, credential, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Note), args.Error(1)
}

func (m *mockNotesAPI) CreateNote(ctx context.Context, endpoint, credential, title, content string) error {
	return m.Called(ctx, endpoint, credential, title, content).Error(0)
}

func (m *mockNotesAPI) ChangePassword(ctx context.Context, endpoint, oldPassword, newPassword string) error {
	return m.Called(ctx, endpoint, oldPassword, newPassword).Error(0)
}

// failingKV отказывает при записи указанного ключа.
type failingKV struct {
	store.KV
	failSet    string
	failDelete bool
}

func (f *failingKV) Set(ctx context.Context, key, value string) error {
	if key == f.failSet {
		return ErrStoreDown
	}
	return f.KV.Set(ctx, key, value)
}

func (f *failingKV) Delete(ctx context.Context, key string) error {
	if f.failDelete {
		return ErrStoreDown
	}
	return f.KV.Delete(ctx, key)
}

// recordingPresenter запоминает все вызовы и отвечает на диалоги заранее заданным решением.
type recordingPresenter struct {
	mu       sync.Mutex
	decision presenter.Decision
	configs  []string
	lists    [][]entities.Note
	editors  []*entities.Note
	modals   []presenter.Modal
	notices  []presenter.Notice
}

func (p *recordingPresenter) ShowConfig(_ context.Context, endpoint string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.configs = append(p.configs, endpoint)
	return nil
}

func (p *recordingPresenter) ShowNotes(_ context.Context, notes []entities.Note, _ *entities.Note) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lists = append(p.lists, notes)
	return nil
}

func (p *recordingPresenter) ShowEditor(_ context.Context, note *entities.Note) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.editors = append(p.editors, note)
	return nil
}

func (p *recordingPresenter) ShowModal(_ context.Context, modal presenter.Modal) (presenter.Decision, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.modals = append(p.modals, modal)
	return p.decision, nil
}

func (p *recordingPresenter) Notify(_ context.Context, notice presenter.Notice) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.notices = append(p.notices, notice)
	return nil
}

func (p *recordingPresenter) lastNotice() presenter.Notice {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.notices) == 0 {
		return presenter.Notice{}
	}
	return p.notices[len(p.notices)-1]
}

func (p *recordingPresenter) lastList() []entities.Note {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.lists) == 0 {
		return nil
	}
	return p.lists[len(p.lists)-1]
}

type harness struct {
	srv     *remotetest.Server
	kv      store.KV
	ctrl    *app.Controller
	metrics *metrics.Metrics
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	srv := remotetest.Start(t, remotetest.DefaultPassword)
	kv := storeadapter.NewMemoryKV()
	m := metrics.New(prometheus.NewRegistry())
	api := httpapi.NewClient(&config.RemoteConfig{}, m)
	return &harness{
		srv:     srv,
		kv:      kv,
		ctrl:    app.NewController(api, app.NewSessionStore(kv), m),
		metrics: m,
	}
}

func (h *harness) login(t *testing.T) {
	t.Helper()
	_, err := h.ctrl.Authenticate(context.Background(), h.srv.URL, remotetest.DefaultPassword)
	if err != nil {
		t.Fatalf("login: %v", err)
	}
}

func titles(notes []entities.Note) []string {
	out := make([]string, 0, len(notes))
	for _, n := range notes {
		out = append(out, n.Title)
	}
	return out
}
