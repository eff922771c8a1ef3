package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"notedesk/internal/client/ports/store"
)

const (
	tempFilePrefix = ".notedesk-tmp-"
	filePerm       = 0o600
	dirPerm        = 0o700

	ErrorFailedToRead  = "failed to read session file"
	ErrorFailedToParse = "failed to parse session file"
	ErrorFailedToWrite = "failed to write session file"
)

var errPathIsDir = errors.New("session path is a directory")

// FileKV хранит пары ключ-значение в YAML файле.
// Каждая запись целиком перезаписывает файл через временный файл и rename.
type FileKV struct {
	path string

	mu     sync.Mutex
	values map[string]string
}

var _ store.KV = (*FileKV)(nil)

// NewFileKV открывает файл сессии; отсутствующий файл означает пустое хранилище.
func NewFileKV(path string) (*FileKV, error) {
	kv := &FileKV{path: path, values: map[string]string{}}
	if err := kv.load(); err != nil {
		return nil, err
	}
	return kv, nil
}

// Path возвращает путь к файлу.
func (s *FileKV) Path() string {
	return s.path
}

func (s *FileKV) load() error {
	info, err := os.Stat(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("%s: %w", ErrorFailedToRead, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s: %w", ErrorFailedToRead, errPathIsDir)
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrorFailedToRead, err)
	}

	values := map[string]string{}
	if err := yaml.Unmarshal(data, &values); err != nil {
		return fmt.Errorf("%s: %w", ErrorFailedToParse, err)
	}
	s.values = values
	return nil
}

// Get возвращает значение или "".
func (s *FileKV) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.values[key], nil
}

// Set сохраняет значение и сразу пишет файл.
func (s *FileKV) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, had := s.values[key]
	s.values[key] = value
	if err := s.flush(); err != nil {
		if had {
			s.values[key] = prev
		} else {
			delete(s.values, key)
		}
		return err
	}
	return nil
}

// Delete удаляет ключ и пишет файл. Когда ключей не осталось, файл удаляется.
func (s *FileKV) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.values[key]; !ok {
		return nil
	}
	delete(s.values, key)

	if len(s.values) == 0 {
		if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%s: %w", ErrorFailedToWrite, err)
		}
		return nil
	}
	return s.flush()
}

// Close ничего не держит открытым.
func (s *FileKV) Close() error {
	return nil
}

func (s *FileKV) flush() error {
	data, err := yaml.Marshal(s.values)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrorFailedToWrite, err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), dirPerm); err != nil {
		return fmt.Errorf("%s: %w", ErrorFailedToWrite, err)
	}
	if err := writeFileAtomic(s.path, data, filePerm); err != nil {
		return fmt.Errorf("%s: %w", ErrorFailedToWrite, err)
	}
	return nil
}

func writeFileAtomic(filename string, data []byte, perm os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(filename), tempFilePrefix+"*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmp.Name(), perm); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), filename); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
