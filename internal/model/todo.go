package model

import "strings"

// MaxTodos is the soft cap on list size. Only the client enforces it,
// and only before creating a new item.
const MaxTodos = 10

// TimeLayout is the text format the server uses for timestamps.
const TimeLayout = "2006-01-02 15:04:05"

// Todo is a single list item exchanged verbatim with the API.
type Todo struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Completed   bool   `json:"completed"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

// Input is the request body for create and update calls.
type Input struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"max=1000"`
	Completed   bool   `json:"completed"`
}

// Input returns the writable fields of t.
func (t Todo) Input() Input {
	return Input{Title: t.Title, Description: t.Description, Completed: t.Completed}
}

// Normalize trims surrounding whitespace from the text fields.
func (in Input) Normalize() Input {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	return in
}

// View selects which items are displayed.
type View int

const (
	All View = iota
	Completed
	Uncompleted
)

var viewNames = [...]string{"all", "completed", "uncompleted"}

func (v View) String() string {
	if v < All || v > Uncompleted {
		return "all"
	}
	return viewNames[v]
}

// Next cycles all -> completed -> uncompleted -> all.
func (v View) Next() View {
	if v >= Uncompleted || v < All {
		return All
	}
	return v + 1
}

// ParseView accepts the view names plus a few short aliases.
func ParseView(s string) (View, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all", "a":
		return All, true
	case "completed", "done", "c":
		return Completed, true
	case "uncompleted", "pending", "open", "u":
		return Uncompleted, true
	}
	return All, false
}

// Filter returns the items visible under v. The input slice is never modified;
// All returns it as is.
func Filter(todos []Todo, v View) []Todo {
	switch v {
	case Completed, Uncompleted:
		want := v == Completed
		out := make([]Todo, 0, len(todos))
		for _, t := range todos {
			if t.Completed == want {
				out = append(out, t)
			}
		}
		return out
	default:
		return todos
	}
}

// Stats counts completed and pending items.
func Stats(todos []Todo) (done, pending int) {
	for _, t := range todos {
		if t.Completed {
			done++
		} else {
			pending++
		}
	}
	return
}

// Find returns the item with the given id.
func Find(todos []Todo, id int) (Todo, bool) {
	for _, t := range todos {
		if t.ID == id {
			return t, true
		}
	}
	return Todo{}, false
}
