package model

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample() []Todo {
	return []Todo{
		{ID: 1, Title: "Buy milk", Completed: false},
		{ID: 2, Title: "Write report", Completed: true},
		{ID: 3, Title: "Call mom", Completed: false},
	}
}

func TestFilter(t *testing.T) {
	todos := sample()

	tests := []struct {
		name string
		view View
		want []int
	}{
		{"all", All, []int{1, 2, 3}},
		{"completed", Completed, []int{2}},
		{"uncompleted", Uncompleted, []int{1, 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []int
			for _, td := range Filter(todos, tt.view) {
				got = append(got, td.ID)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Filter(%s) mismatch (-want +got):\n%s", tt.view, diff)
			}
		})
	}

	if diff := cmp.Diff(sample(), todos); diff != "" {
		t.Errorf("Filter mutated its input:\n%s", diff)
	}
}

func TestFilterNil(t *testing.T) {
	assert.Nil(t, Filter(nil, All))
	assert.Empty(t, Filter(nil, Completed))
}

func TestStats(t *testing.T) {
	done, pending := Stats(sample())
	assert.Equal(t, 1, done)
	assert.Equal(t, 2, pending)
}

func TestViewParseAndCycle(t *testing.T) {
	v, ok := ParseView("Completed")
	require.True(t, ok)
	assert.Equal(t, Completed, v)

	v, ok = ParseView("pending")
	require.True(t, ok)
	assert.Equal(t, Uncompleted, v)

	_, ok = ParseView("archived")
	assert.False(t, ok)

	assert.Equal(t, Completed, All.Next())
	assert.Equal(t, Uncompleted, Completed.Next())
	assert.Equal(t, All, Uncompleted.Next())
	assert.Equal(t, "uncompleted", Uncompleted.String())
	assert.Equal(t, "all", View(42).String())
}

func TestFind(t *testing.T) {
	td, ok := Find(sample(), 2)
	require.True(t, ok)
	assert.Equal(t, "Write report", td.Title)

	_, ok = Find(sample(), 9)
	assert.False(t, ok)
}

func TestValidate(t *testing.T) {
	in, err := Validate(Input{Title: "  Buy milk ", Description: " 2 liters "})
	require.NoError(t, err)
	assert.Equal(t, "Buy milk", in.Title)
	assert.Equal(t, "2 liters", in.Description)

	_, err = Validate(Input{Title: "   "})
	require.Error(t, err)
	assert.Equal(t, "title is required", ValidationMessages(err)["title"])

	_, err = Validate(Input{Title: strings.Repeat("x", 201), Description: strings.Repeat("y", 1001)})
	require.Error(t, err)
	assert.Equal(t, "description must be at most 1000 characters; title must be at most 200 characters",
		ValidationSummary(err))
}
