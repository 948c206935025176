package server_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Makepad-fr/tada-client/internal/api"
	"github.com/Makepad-fr/tada-client/internal/app"
	"github.com/Makepad-fr/tada-client/internal/config"
	"github.com/Makepad-fr/tada-client/internal/logging"
	"github.com/Makepad-fr/tada-client/internal/model"
	"github.com/Makepad-fr/tada-client/internal/server"
	"github.com/Makepad-fr/tada-client/internal/store/jsonstore"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	st, err := jsonstore.Open(filepath.Join(t.TempDir(), "todos.json"))
	require.NoError(t, err)
	srv := httptest.NewServer(server.New(st, logging.Discard(), nil).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, method, url, body string) (*http.Response, map[string]any) {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	var payload map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&payload)
	return resp, payload
}

func TestCreateReturnsTodo(t *testing.T) {
	srv := newServer(t)

	resp, got := do(t, http.MethodPost, srv.URL+"/todos", `{"title":"  Buy milk ","description":"2 liters"}`)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	assert.EqualValues(t, 1, got["id"])
	assert.Equal(t, "Buy milk", got["title"])
	assert.Equal(t, false, got["completed"])
	assert.NotEmpty(t, got["created_at"])
}

func TestRequestErrors(t *testing.T) {
	srv := newServer(t)
	long := strings.Repeat("x", 201)

	tests := []struct {
		name, method, path, body string
		status                   int
		msg                      string
	}{
		{"empty title", http.MethodPost, "/todos", `{"title":"   "}`, http.StatusBadRequest, "title is required"},
		{"long title", http.MethodPost, "/todos", `{"title":"` + long + `"}`, http.StatusBadRequest, "title must be at most 200 characters"},
		{"bad json", http.MethodPost, "/todos", `{`, http.StatusBadRequest, "invalid JSON body"},
		{"missing id", http.MethodPut, "/todos", `{"title":"x"}`, http.StatusBadRequest, "missing id"},
		{"bad id", http.MethodDelete, "/todos?id=abc", "", http.StatusBadRequest, "invalid id: abc"},
		{"unknown id update", http.MethodPut, "/todos?id=9", `{"title":"x"}`, http.StatusNotFound, "todo 9 not found"},
		{"unknown id delete", http.MethodDelete, "/todos?id=9", "", http.StatusNotFound, "todo 9 not found"},
		{"wrong method", http.MethodPatch, "/todos", "", http.StatusMethodNotAllowed, "method not allowed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, got := do(t, tt.method, srv.URL+tt.path, tt.body)
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.Contains(t, got["error"], tt.msg)
		})
	}
}

func TestCORS(t *testing.T) {
	srv := newServer(t)

	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/todos", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", config.DefaultOrigin)
	req.Header.Set("Access-Control-Request-Method", http.MethodPut)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, config.DefaultOrigin, resp.Header.Get("Access-Control-Allow-Origin"))

	req, err = http.NewRequest(http.MethodGet, srv.URL+"/todos", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://evil.example")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Empty(t, resp.Header.Get("Access-Control-Allow-Origin"))
}

// The client, the controller and the server agree on the wire format.
func TestClientRoundTrip(t *testing.T) {
	srv := newServer(t)
	ctx := context.Background()

	client, err := api.New(srv.URL, api.WithTimeout(2*time.Second))
	require.NoError(t, err)
	c := app.NewController(client, logging.Discard())

	require.NoError(t, c.Refresh(ctx))
	assert.Empty(t, c.State.Todos)

	c.State.Title, c.State.Description = "Buy milk", "2 liters"
	require.NoError(t, c.Submit(ctx))
	require.Len(t, c.State.Todos, 1)
	id := c.State.Todos[0].ID

	require.NoError(t, c.Toggle(ctx, id))
	assert.True(t, c.State.Todos[0].Completed)

	title := "Buy oat milk"
	require.NoError(t, c.Edit(ctx, id, &title, nil))
	assert.Equal(t, "Buy oat milk", c.State.Todos[0].Title)
	assert.Equal(t, "2 liters", c.State.Todos[0].Description)
	assert.True(t, c.State.Todos[0].Completed, "edit keeps completion")

	err = c.Delete(ctx, id+100)
	assert.True(t, api.IsNotFound(err))

	require.NoError(t, c.Delete(ctx, id))
	assert.Empty(t, c.State.Todos)
}

func TestCapIsClientSide(t *testing.T) {
	srv := newServer(t)
	ctx := context.Background()
	client, err := api.New(srv.URL)
	require.NoError(t, err)

	for i := 0; i < model.MaxTodos+1; i++ {
		_, err := client.Create(ctx, model.Input{Title: "t"})
		require.NoError(t, err)
	}
	todos, err := client.List(ctx)
	require.NoError(t, err)
	assert.Len(t, todos, model.MaxTodos+1)

	c := app.NewController(client, logging.Discard())
	require.NoError(t, c.Refresh(ctx))
	c.State.Title = "one more"
	assert.ErrorIs(t, c.Submit(ctx), app.ErrLimitReached)
}

func TestOpenStore(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	st, err := server.OpenStore(ctx, config.ServerConfig{Store: "json", DSN: filepath.Join(dir, "todos.json")})
	require.NoError(t, err)
	require.NoError(t, st.Close())

	st, err = server.OpenStore(ctx, config.ServerConfig{Store: "sqlite", DSN: filepath.Join(dir, "todos.db")})
	require.NoError(t, err)
	require.NoError(t, st.Close())

	_, err = server.OpenStore(ctx, config.ServerConfig{Store: "redis"})
	assert.ErrorContains(t, err, `unknown store "redis"`)
}

func TestListenAndServeStopsOnCancel(t *testing.T) {
	st, err := jsonstore.Open(filepath.Join(t.TempDir(), "todos.json"))
	require.NoError(t, err)
	s := server.New(st, logging.Discard(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.ListenAndServe(ctx, "127.0.0.1:0") }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
