// Package apptest provides an in-memory app.Backend for tests.
package apptest

import (
	"context"
	"fmt"
	"sync"

	"github.com/Makepad-fr/tada-client/internal/model"
)

// Call records one backend invocation.
type Call struct {
	Method string
	ID     int
	Input  model.Input
}

// Backend keeps todos in memory and records every call.
// Set the Err fields to make the matching operation fail.
type Backend struct {
	mu     sync.Mutex
	todos  []model.Todo
	nextID int
	calls  []Call

	ListErr   error
	CreateErr error
	UpdateErr error
	DeleteErr error
}

// New seeds a backend with todos; ids continue after the highest seeded id.
func New(todos ...model.Todo) *Backend {
	b := &Backend{nextID: 1}
	for _, t := range todos {
		b.todos = append(b.todos, t)
		if t.ID >= b.nextID {
			b.nextID = t.ID + 1
		}
	}
	return b
}

// Seed returns n uncompleted todos with ids 1..n.
func Seed(n int) []model.Todo {
	out := make([]model.Todo, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, model.Todo{ID: i, Title: fmt.Sprintf("todo %d", i)})
	}
	return out
}

func (b *Backend) record(c Call) {
	b.calls = append(b.calls, c)
}

func (b *Backend) List(ctx context.Context) ([]model.Todo, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.record(Call{Method: "List"})
	if b.ListErr != nil {
		return nil, b.ListErr
	}
	return append([]model.Todo(nil), b.todos...), nil
}

func (b *Backend) Create(ctx context.Context, in model.Input) (*model.Todo, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.record(Call{Method: "Create", Input: in})
	if b.CreateErr != nil {
		return nil, b.CreateErr
	}
	t := model.Todo{ID: b.nextID, Title: in.Title, Description: in.Description, Completed: in.Completed}
	b.nextID++
	b.todos = append(b.todos, t)
	return &t, nil
}

func (b *Backend) Update(ctx context.Context, id int, in model.Input) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.record(Call{Method: "Update", ID: id, Input: in})
	if b.UpdateErr != nil {
		return b.UpdateErr
	}
	for i := range b.todos {
		if b.todos[i].ID == id {
			b.todos[i].Title = in.Title
			b.todos[i].Description = in.Description
			b.todos[i].Completed = in.Completed
			return nil
		}
	}
	return fmt.Errorf("todo %d not found", id)
}

func (b *Backend) Delete(ctx context.Context, id int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.record(Call{Method: "Delete", ID: id})
	if b.DeleteErr != nil {
		return b.DeleteErr
	}
	for i := range b.todos {
		if b.todos[i].ID == id {
			b.todos = append(b.todos[:i], b.todos[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("todo %d not found", id)
}

// Calls returns a copy of the recorded calls.
func (b *Backend) Calls() []Call {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Call(nil), b.calls...)
}

// Methods returns just the method names of the recorded calls.
func (b *Backend) Methods() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, 0, len(b.calls))
	for _, c := range b.calls {
		out = append(out, c.Method)
	}
	return out
}

// Todos returns a copy of the stored todos.
func (b *Backend) Todos() []model.Todo {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]model.Todo(nil), b.todos...)
}
