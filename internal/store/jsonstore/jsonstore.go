// Package jsonstore keeps todos in a single human-readable JSON file.
package jsonstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/Makepad-fr/tada-client/internal/model"
	"github.com/Makepad-fr/tada-client/internal/store"
)

// file is the on-disk layout.
type file struct {
	NextID int          `json:"next_id"`
	Todos  []model.Todo `json:"todos"`
}

// Store reads and rewrites the whole file on every call. The mutex serialises
// handlers within one process; nothing guards against a second process.
type Store struct {
	path string
	mu   sync.Mutex
	now  func() time.Time
}

var _ store.Store = (*Store)(nil)

// Open returns a store backed by path, creating its directory if needed.
// The file itself is created on first write.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}
	return &Store{path: path, now: time.Now}, nil
}

func (s *Store) load() (file, error) {
	b, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return file{NextID: 1, Todos: []model.Todo{}}, nil
		}
		return file{}, fmt.Errorf("read file: %w", err)
	}
	var f file
	if err := json.Unmarshal(b, &f); err != nil {
		return file{}, fmt.Errorf("json unmarshal: %w", err)
	}
	if f.Todos == nil {
		f.Todos = []model.Todo{}
	}
	if f.NextID < 1 {
		f.NextID = 1
	}
	return f, nil
}

func (s *Store) save(f file) error {
	b, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("json marshal: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	return nil
}

func (s *Store) stamp() string { return s.now().Format(model.TimeLayout) }

func (s *Store) List(ctx context.Context) ([]model.Todo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, err := s.load()
	if err != nil {
		return nil, err
	}
	return f.Todos, nil
}

func (s *Store) Get(ctx context.Context, id int) (model.Todo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, err := s.load()
	if err != nil {
		return model.Todo{}, err
	}
	t, ok := model.Find(f.Todos, id)
	if !ok {
		return model.Todo{}, store.ErrNotFound
	}
	return t, nil
}

func (s *Store) Create(ctx context.Context, in model.Input) (model.Todo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, err := s.load()
	if err != nil {
		return model.Todo{}, err
	}
	now := s.stamp()
	t := model.Todo{
		ID:          f.NextID,
		Title:       in.Title,
		Description: in.Description,
		Completed:   in.Completed,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	f.NextID++
	f.Todos = append(f.Todos, t)
	if err := s.save(f); err != nil {
		return model.Todo{}, err
	}
	return t, nil
}

func (s *Store) Update(ctx context.Context, id int, in model.Input) (model.Todo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, err := s.load()
	if err != nil {
		return model.Todo{}, err
	}
	for i := range f.Todos {
		if f.Todos[i].ID != id {
			continue
		}
		t := &f.Todos[i]
		t.Title = in.Title
		t.Description = in.Description
		t.Completed = in.Completed
		t.UpdatedAt = s.stamp()
		if err := s.save(f); err != nil {
			return model.Todo{}, err
		}
		return *t, nil
	}
	return model.Todo{}, store.ErrNotFound
}

func (s *Store) Delete(ctx context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, err := s.load()
	if err != nil {
		return err
	}
	for i, t := range f.Todos {
		if t.ID == id {
			f.Todos = append(f.Todos[:i], f.Todos[i+1:]...)
			return s.save(f)
		}
	}
	return store.ErrNotFound
}

func (s *Store) Close() error { return nil }
