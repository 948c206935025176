package api

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Makepad-fr/tada-client/internal/model"
)

type recorded struct {
	method string
	uri    string
	auth   string
	ctype  string
	body   model.Input
}

// newTestServer answers every request with status and resp, recording what it saw.
func newTestServer(t *testing.T, status int, resp string) (*httptest.Server, *recorded) {
	t.Helper()
	rec := &recorded{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.method = r.Method
		rec.uri = r.URL.RequestURI()
		rec.auth = r.Header.Get("Authorization")
		rec.ctype = r.Header.Get("Content-Type")
		if r.Body != nil {
			_ = json.NewDecoder(r.Body).Decode(&rec.body)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(resp))
	}))
	t.Cleanup(srv.Close)
	return srv, rec
}

func newClient(t *testing.T, url string, opts ...Option) *Client {
	t.Helper()
	c, err := New(url, opts...)
	require.NoError(t, err)
	return c
}

func TestList(t *testing.T) {
	srv, rec := newTestServer(t, http.StatusOK, `[
		{"id":1,"title":"Buy milk","description":"","completed":false,"created_at":"2024-01-02 10:00:00","updated_at":"2024-01-02 10:00:00"},
		{"id":2,"title":"Ship it","description":"today","completed":true,"created_at":"2024-01-02 11:00:00","updated_at":"2024-01-03 09:30:00"}
	]`)
	c := newClient(t, srv.URL+"/", WithToken("secret"))

	todos, err := c.List(context.Background())
	require.NoError(t, err)
	require.Len(t, todos, 2)
	assert.Equal(t, "Ship it", todos[1].Title)
	assert.True(t, todos[1].Completed)
	assert.Equal(t, "2024-01-03 09:30:00", todos[1].UpdatedAt)

	assert.Equal(t, http.MethodGet, rec.method)
	assert.Equal(t, "/todos", rec.uri)
	assert.Equal(t, "Bearer secret", rec.auth)
}

func TestListNullBody(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusOK, `null`)
	todos, err := newClient(t, srv.URL).List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, todos)
	assert.Empty(t, todos)
}

func TestCreate(t *testing.T) {
	srv, rec := newTestServer(t, http.StatusCreated, `{"id":7,"title":"Buy milk","description":"2l","completed":false}`)
	c := newClient(t, srv.URL)

	created, err := c.Create(context.Background(), model.Input{Title: "Buy milk", Description: "2l"})
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, 7, created.ID)

	assert.Equal(t, http.MethodPost, rec.method)
	assert.Equal(t, "/todos", rec.uri)
	assert.Equal(t, "application/json", rec.ctype)
	assert.Equal(t, model.Input{Title: "Buy milk", Description: "2l"}, rec.body)
	assert.Empty(t, rec.auth)
}

func TestCreateWithoutEcho(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusOK, ``)
	created, err := newClient(t, srv.URL).Create(context.Background(), model.Input{Title: "x"})
	require.NoError(t, err)
	assert.Nil(t, created)
}

func TestUpdateAndDelete(t *testing.T) {
	srv, rec := newTestServer(t, http.StatusOK, `{}`)
	c := newClient(t, srv.URL)

	require.NoError(t, c.Update(context.Background(), 3, model.Input{Title: "t", Completed: true}))
	assert.Equal(t, http.MethodPut, rec.method)
	assert.Equal(t, "/todos?id=3", rec.uri)
	assert.True(t, rec.body.Completed)

	require.NoError(t, c.Delete(context.Background(), 3))
	assert.Equal(t, http.MethodDelete, rec.method)
	assert.Equal(t, "/todos?id=3", rec.uri)
}

func TestWritesReuseConnection(t *testing.T) {
	var conns atomic.Int32
	srv := httptest.NewUnstartedServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":3,"title":"t","description":"","completed":true}`))
	}))
	srv.Config.ConnState = func(_ net.Conn, st http.ConnState) {
		if st == http.StateNew {
			conns.Add(1)
		}
	}
	srv.Start()
	t.Cleanup(srv.Close)

	c := newClient(t, srv.URL)
	for i := 0; i < 3; i++ {
		require.NoError(t, c.Update(context.Background(), 3, model.Input{Title: "t"}))
		require.NoError(t, c.Delete(context.Background(), 3))
	}
	assert.EqualValues(t, 1, conns.Load())
}

func TestBasePathIsKept(t *testing.T) {
	srv, rec := newTestServer(t, http.StatusOK, `[]`)
	_, err := newClient(t, srv.URL+"/api/v1").List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "/api/v1/todos", rec.uri)
}

func TestStatusError(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusNotFound, `{"error":"todo 9 not found"}`)
	err := newClient(t, srv.URL).Delete(context.Background(), 9)
	require.Error(t, err)

	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusNotFound, se.StatusCode)
	assert.Equal(t, "todo 9 not found", se.Message)
	assert.Equal(t, "DELETE /todos?id=9: 404 Not Found: todo 9 not found", err.Error())
	assert.True(t, IsNotFound(err))
}

func TestStatusErrorPlainBody(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusInternalServerError, "database is down\n")
	_, err := newClient(t, srv.URL).List(context.Background())

	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "database is down", se.Message)
	assert.False(t, IsNotFound(err))
}

func TestBadJSON(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusOK, `{not json`)
	_, err := newClient(t, srv.URL).List(context.Background())
	assert.ErrorContains(t, err, "decode response")
}

func TestTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	t.Cleanup(srv.Close)

	_, err := newClient(t, srv.URL, WithTimeout(50*time.Millisecond)).List(context.Background())
	assert.Error(t, err)
}

func TestNewRejectsRelativeURL(t *testing.T) {
	_, err := New("localhost:8080")
	assert.Error(t, err)
	_, err = New("/todos")
	assert.Error(t, err)
}
