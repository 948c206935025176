// Package app holds the to-do list view state and the operations that drive it.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/Makepad-fr/tada-client/internal/model"
)

var (
	// ErrLimitReached is returned when creating would exceed model.MaxTodos.
	ErrLimitReached = fmt.Errorf("cannot add more than %d todos", model.MaxTodos)
	// ErrUnknownTodo is returned for ids not present in the current list.
	ErrUnknownTodo = errors.New("no such todo in the current list")
)

// Backend is the remote API the view talks to.
type Backend interface {
	List(ctx context.Context) ([]model.Todo, error)
	Create(ctx context.Context, in model.Input) (*model.Todo, error)
	Update(ctx context.Context, id int, in model.Input) error
	Delete(ctx context.Context, id int) error
}

// State is the view state: the last list received, the active view and the
// add/edit form. It performs no I/O.
type State struct {
	// Todos is nil when the last fetch failed.
	Todos []model.Todo
	View  model.View

	Title       string
	Description string
	// EditID is the todo being edited; 0 means the form creates a new one.
	EditID int

	// Status is the last message meant for the user.
	Status string
}

// Submission is what PrepareSubmit decided to send.
type Submission struct {
	Create bool
	ID     int
	Input  model.Input
}

// ApplyList overwrites the list with the latest response.
func (s *State) ApplyList(todos []model.Todo) {
	if todos == nil {
		todos = []model.Todo{}
	}
	s.Todos = todos
}

// ApplyListError clears the list after a failed fetch.
func (s *State) ApplyListError() { s.Todos = nil }

// Available reports whether the last fetch succeeded.
func (s *State) Available() bool { return s.Todos != nil }

// Full reports whether the list is at the cap.
func (s *State) Full() bool { return len(s.Todos) >= model.MaxTodos }

// Editing reports whether the form targets an existing todo.
func (s *State) Editing() bool { return s.EditID != 0 }

// Displayed returns the todos visible under the current view.
func (s *State) Displayed() []model.Todo { return model.Filter(s.Todos, s.View) }

// SetView switches the active filter.
func (s *State) SetView(v model.View) { s.View = v }

// BeginEdit loads t into the form.
func (s *State) BeginEdit(t model.Todo) {
	s.EditID = t.ID
	s.Title = t.Title
	s.Description = t.Description
}

// CancelEdit clears the form and leaves edit mode.
func (s *State) CancelEdit() { s.FinishSubmit() }

// FinishSubmit resets the form after a successful submit.
func (s *State) FinishSubmit() {
	s.EditID = 0
	s.Title = ""
	s.Description = ""
}

// PrepareSubmit validates the form and decides between create and update.
// Creating while Full returns ErrLimitReached; updates are never capped.
func (s *State) PrepareSubmit() (Submission, error) {
	in, err := model.Validate(model.Input{Title: s.Title, Description: s.Description})
	if err != nil {
		return Submission{}, fmt.Errorf("invalid todo: %s", model.ValidationSummary(err))
	}
	if !s.Editing() {
		if s.Full() {
			return Submission{}, ErrLimitReached
		}
		return Submission{Create: true, Input: in}, nil
	}
	if cur, ok := model.Find(s.Todos, s.EditID); ok {
		in.Completed = cur.Completed
	}
	return Submission{ID: s.EditID, Input: in}, nil
}

// ToggleInput returns the update body that flips the completion of todo id.
func (s *State) ToggleInput(id int) (model.Input, error) {
	t, ok := model.Find(s.Todos, id)
	if !ok {
		return model.Input{}, fmt.Errorf("todo %d: %w", id, ErrUnknownTodo)
	}
	in := t.Input()
	in.Completed = !in.Completed
	return in, nil
}

// Lookup returns todo id from the current list.
func (s *State) Lookup(id int) (model.Todo, error) {
	t, ok := model.Find(s.Todos, id)
	if !ok {
		return model.Todo{}, fmt.Errorf("todo %d: %w", id, ErrUnknownTodo)
	}
	return t, nil
}
