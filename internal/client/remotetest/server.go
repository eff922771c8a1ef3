// Package remotetest поднимает in-memory двойник сервиса хранения заметок для тестов.
package remotetest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
)

// Пароль, с которым сервис стартует по умолчанию.
const DefaultPassword = "15378"

const timeLayout = "2006-01-02 15:04:05"

// Note - запись на стороне сервиса.
type Note struct {
	ID      int    `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
	Time    string `json:"time"`
}

type errorBody struct {
	Status string `json:"status"`
	Msg    string `json:"msg"`
}

// Server - двойник сервиса поверх httptest.Server.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	password string
	notes    []Note
	nextID   int
	calls    map[string]int
	broken   *brokenReply
	holds    map[string]*heldRequest
	now      func() time.Time
}

type heldRequest struct {
	started chan struct{}
	release chan struct{}
	once    sync.Once
}

type brokenReply struct {
	status int
	body   string
}

// Start запускает сервер и закрывает его по окончании теста.
func Start(t testing.TB, password string) *Server {
	t.Helper()
	s := New(password)
	t.Cleanup(s.Close)
	return s
}

// New запускает сервер; закрывать его должен вызывающий.
func New(password string) *Server {
	s := &Server{
		password: password,
		nextID:   1,
		calls:    map[string]int{},
		holds:    map[string]*heldRequest{},
		now:      time.Now,
	}

	r := chi.NewRouter()
	r.Use(s.count)
	r.Get("/api/notes", s.listNotes)
	r.Post("/api/note", s.createNote)
	r.Get("/api/note/{id}", s.getNote)
	r.Post("/api/change_password", s.changePassword)

	s.Server = httptest.NewServer(r)
	return s
}

// Seed добавляет заметки в обход API.
func (s *Server) Seed(notes ...Note) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range notes {
		s.insert(n.Title, n.Content)
	}
}

// Notes возвращает копию хранимых заметок в порядке создания.
func (s *Server) Notes() []Note {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Note, len(s.notes))
	copy(out, s.notes)
	return out
}

// Password возвращает текущий пароль.
func (s *Server) Password() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.password
}

// Calls возвращает количество запросов к пути; пустой путь - все запросы.
func (s *Server) Calls(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if path == "" {
		total := 0
		for _, n := range s.calls {
			total += n
		}
		return total
	}
	return s.calls[path]
}

// Break заставляет все следующие ответы быть status/body. Пустой status чинит сервер.
func (s *Server) Break(status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if status == 0 {
		s.broken = nil
		return
	}
	s.broken = &brokenReply{status: status, body: body}
}

// Hold задерживает следующий запрос к пути до вызова release.
// started закрывается, когда запрос пришел. release можно вызывать повторно.
func (s *Server) Hold(path string) (started <-chan struct{}, release func()) {
	h := &heldRequest{started: make(chan struct{}), release: make(chan struct{})}

	s.mu.Lock()
	s.holds[path] = h
	s.mu.Unlock()

	return h.started, func() {
		h.once.Do(func() { close(h.release) })
	}
}

func (s *Server) count(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.calls[r.URL.Path]++
		broken := s.broken
		held := s.holds[r.URL.Path]
		delete(s.holds, r.URL.Path)
		s.mu.Unlock()

		if held != nil {
			close(held.started)
			select {
			case <-held.release:
			case <-r.Context().Done():
				return
			}
		}

		if broken != nil {
			w.WriteHeader(broken.status)
			_, _ = w.Write([]byte(broken.body))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) insert(title, content string) Note {
	n := Note{ID: s.nextID, Title: title, Content: content, Time: s.now().Format(timeLayout)}
	s.nextID++
	s.notes = append(s.notes, n)
	return n
}

func (s *Server) checkPassword(password string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return password != "" && password == s.password
}

func (s *Server) listNotes(w http.ResponseWriter, r *http.Request) {
	if !s.checkPassword(r.URL.Query().Get("password")) {
		writeJSON(w, http.StatusUnauthorized, errorBody{Status: "error", Msg: "wrong password"})
		return
	}

	notes := s.Notes()
	sort.SliceStable(notes, func(i, j int) bool { return notes[i].ID > notes[j].ID })
	writeJSON(w, http.StatusOK, map[string]any{"notes": notes})
}

func (s *Server) getNote(w http.ResponseWriter, r *http.Request) {
	if !s.checkPassword(r.URL.Query().Get("password")) {
		writeJSON(w, http.StatusUnauthorized, errorBody{Status: "error", Msg: "wrong password"})
		return
	}

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorBody{Status: "error", Msg: "not found"})
		return
	}
	for _, n := range s.Notes() {
		if n.ID == id {
			writeJSON(w, http.StatusOK, n)
			return
		}
	}
	writeJSON(w, http.StatusNotFound, errorBody{Status: "error", Msg: "not found"})
}

func (s *Server) createNote(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title    string `json:"title"`
		Content  string `json:"content"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Status: "error", Msg: "invalid body"})
		return
	}
	if !s.checkPassword(req.Password) {
		writeJSON(w, http.StatusUnauthorized, errorBody{Status: "error", Msg: "wrong password"})
		return
	}
	if req.Title == "" || req.Content == "" {
		writeJSON(w, http.StatusBadRequest, errorBody{Status: "error", Msg: "title and content must not be empty"})
		return
	}

	s.mu.Lock()
	n := s.insert(req.Title, req.Content)
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{"status": "success", "id": n.ID})
}

func (s *Server) changePassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OldPassword string `json:"old_password"`
		NewPassword string `json:"new_password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Status: "error", Msg: "invalid body"})
		return
	}
	if !s.checkPassword(req.OldPassword) {
		writeJSON(w, http.StatusUnauthorized, errorBody{Status: "error", Msg: "wrong old password"})
		return
	}
	if req.NewPassword == "" {
		writeJSON(w, http.StatusBadRequest, errorBody{Status: "error", Msg: "new password must not be empty"})
		return
	}

	s.mu.Lock()
	s.password = req.NewPassword
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]string{"status": "success", "msg": "password changed"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
