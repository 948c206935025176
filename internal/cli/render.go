package cli

import (
	"fmt"

	"github.com/Makepad-fr/tada-client/internal/model"
	"github.com/Makepad-fr/tada-client/internal/ui"
)

// listLines builds the panel body for `todo ls`.
func listLines(todos []model.Todo, v model.View, group bool) []string {
	th := ui.Current()
	d, p := model.Stats(todos)
	header := fmt.Sprintf("%s  %s %d  %s %d  %s %d/%d",
		ui.C(th.Title, "Todos"),
		ui.C(th.Success, th.SymDone), d,
		ui.C(th.Pending, th.SymUnchecked), p,
		ui.C(th.Accent, "Total"), len(todos), model.MaxTodos,
	)

	lines := []string{header, ui.C(th.Muted, ui.ProgressBar(d, d+p, 28))}
	if v != model.All {
		lines = append(lines, ui.C(th.Muted, "view: "+v.String()))
	}
	lines = append(lines, "")

	shown := model.Filter(todos, v)
	if group {
		lines = append(lines, groupLines(shown)...)
	} else {
		lines = append(lines, flatLines(shown)...)
	}

	lines = append(lines, "")
	if len(todos) >= model.MaxTodos {
		lines = append(lines, ui.C(th.Pending, fmt.Sprintf("limit reached: remove a todo before adding (max %d)", model.MaxTodos)))
	} else {
		lines = append(lines, ui.C(th.Muted, "Tip: add with `todo add \"Buy milk\"`"))
	}
	return lines
}

func flatLines(todos []model.Todo) []string {
	th := ui.Current()
	if len(todos) == 0 {
		return []string{ui.C(th.Muted, "no items")}
	}
	out := make([]string, 0, len(todos)*2)
	for _, t := range todos {
		box, color := th.BoxUnchecked, th.Muted
		if t.Completed {
			box, color = th.BoxChecked, th.Success
		}
		out = append(out, fmt.Sprintf("%s %s %s",
			ui.Dim(fmt.Sprintf("#%-3d", t.ID)), ui.C(color, box), ui.Truncate(t.Title, 80)))
		if t.Description != "" {
			out = append(out, "       "+ui.C(th.Muted, ui.Truncate(t.Description, 76)))
		}
	}
	return out
}

func groupLines(todos []model.Todo) []string {
	var pend, done []model.Todo
	for _, t := range todos {
		if t.Completed {
			done = append(done, t)
		} else {
			pend = append(pend, t)
		}
	}
	th := ui.Current()
	var lines []string
	lines = append(lines, ui.C(th.Accent, "Pending"))
	if len(pend) == 0 {
		lines = append(lines, ui.C(th.Muted, "(none)"))
	} else {
		lines = append(lines, flatLines(pend)...)
	}
	lines = append(lines, "")
	lines = append(lines, ui.C(th.Accent, "Done"))
	if len(done) == 0 {
		lines = append(lines, ui.C(th.Muted, "(none)"))
	} else {
		lines = append(lines, flatLines(done)...)
	}
	return lines
}
