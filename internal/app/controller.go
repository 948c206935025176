package app

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/Makepad-fr/tada-client/internal/model"
)

// Controller runs view operations synchronously against a Backend.
// Every successful mutation is followed by a fresh List. Mutation failures are
// logged and returned for display; a failed follow-up List is only logged.
type Controller struct {
	State   *State
	backend Backend
	logger  *log.Logger
}

func NewController(b Backend, logger *log.Logger) *Controller {
	return &Controller{State: &State{}, backend: b, logger: logger}
}

// Refresh replaces the list with the server's. On failure the list is cleared.
func (c *Controller) Refresh(ctx context.Context) error {
	todos, err := c.backend.List(ctx)
	if err != nil {
		c.logger.Error("Error fetching todos", "err", err)
		c.State.ApplyListError()
		c.State.Status = "could not load todos"
		return fmt.Errorf("fetch todos: %w", err)
	}
	c.State.ApplyList(todos)
	return nil
}

// Submit creates or updates from the form, then refreshes.
func (c *Controller) Submit(ctx context.Context) error {
	sub, err := c.State.PrepareSubmit()
	if err != nil {
		c.State.Status = err.Error()
		return err
	}
	if err := Send(ctx, c.backend, sub); err != nil {
		c.logger.Error("Error saving todo", "create", sub.Create, "id", sub.ID, "err", err)
		c.State.Status = err.Error()
		return err
	}
	c.State.FinishSubmit()
	if sub.Create {
		c.State.Status = "added"
	} else {
		c.State.Status = "updated"
	}
	c.refreshAfterWrite(ctx)
	return nil
}

// Edit updates todo id in one step. Nil fields keep their current value.
func (c *Controller) Edit(ctx context.Context, id int, title, description *string) error {
	t, err := c.State.Lookup(id)
	if err != nil {
		return err
	}
	c.State.BeginEdit(t)
	if title != nil {
		c.State.Title = *title
	}
	if description != nil {
		c.State.Description = *description
	}
	if err := c.Submit(ctx); err != nil {
		c.State.CancelEdit()
		return err
	}
	return nil
}

// Toggle flips the completion of todo id, then refreshes.
func (c *Controller) Toggle(ctx context.Context, id int) error {
	in, err := c.State.ToggleInput(id)
	if err != nil {
		return err
	}
	if err := c.backend.Update(ctx, id, in); err != nil {
		c.logger.Error("Error updating todo", "id", id, "err", err)
		c.State.Status = err.Error()
		return fmt.Errorf("update todo %d: %w", id, err)
	}
	c.State.Status = "toggled"
	c.refreshAfterWrite(ctx)
	return nil
}

// Delete removes todo id, then refreshes.
func (c *Controller) Delete(ctx context.Context, id int) error {
	if err := c.backend.Delete(ctx, id); err != nil {
		c.logger.Error("Error deleting todo", "id", id, "err", err)
		c.State.Status = "Error deleting todo: " + err.Error()
		return fmt.Errorf("delete todo %d: %w", id, err)
	}
	c.State.Status = "removed"
	c.refreshAfterWrite(ctx)
	return nil
}

// refreshAfterWrite refetches after a successful write. Refresh logs its own
// failure and the write itself still stands.
func (c *Controller) refreshAfterWrite(ctx context.Context) {
	_ = c.Refresh(ctx)
}

// SetView switches the filter; no request is made.
func (c *Controller) SetView(v model.View) { c.State.SetView(v) }

// Send performs the request a Submission describes.
func Send(ctx context.Context, b Backend, sub Submission) error {
	if sub.Create {
		if _, err := b.Create(ctx, sub.Input); err != nil {
			return fmt.Errorf("create todo: %w", err)
		}
		return nil
	}
	if err := b.Update(ctx, sub.ID, sub.Input); err != nil {
		return fmt.Errorf("update todo %d: %w", sub.ID, err)
	}
	return nil
}
