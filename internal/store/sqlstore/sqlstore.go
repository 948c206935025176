// Package sqlstore keeps todos in a SQL database: SQLite through
// modernc.org/sqlite or MySQL through go-sql-driver/mysql.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"

	"github.com/Makepad-fr/tada-client/internal/model"
	"github.com/Makepad-fr/tada-client/internal/store"
)

// Driver names accepted by Open.
const (
	SQLite = "sqlite"
	MySQL  = "mysql"
)

var schemas = map[string]string{
	SQLite: `CREATE TABLE IF NOT EXISTS todos (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	title TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	completed BOOLEAN NOT NULL DEFAULT 0,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
)`,
	MySQL: `CREATE TABLE IF NOT EXISTS todos (
	id INT NOT NULL AUTO_INCREMENT PRIMARY KEY,
	title VARCHAR(255) NOT NULL,
	description TEXT NOT NULL,
	completed BOOLEAN NOT NULL DEFAULT FALSE,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
)`,
}

const columns = "id, title, description, completed, created_at, updated_at"

type Store struct {
	db  *sql.DB
	now func() time.Time
}

var _ store.Store = (*Store)(nil)

// Open connects with driver ("sqlite" or "mysql") and creates the todos
// table when it does not exist.
func Open(ctx context.Context, driver, dsn string) (*Store, error) {
	schema, ok := schemas[driver]
	if !ok {
		return nil, fmt.Errorf("sqlstore: unsupported driver %q", driver)
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if driver == SQLite {
		// a single connection avoids SQLITE_BUSY between handlers
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect %s: %w", driver, err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create table: %w", err)
	}
	return &Store{db: db, now: time.Now}, nil
}

func (s *Store) stamp() string { return s.now().Format(model.TimeLayout) }

type scanner interface {
	Scan(dest ...any) error
}

func scanTodo(r scanner) (model.Todo, error) {
	var t model.Todo
	err := r.Scan(&t.ID, &t.Title, &t.Description, &t.Completed, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}

func (s *Store) List(ctx context.Context) ([]model.Todo, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+columns+" FROM todos ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}
	defer rows.Close()

	todos := []model.Todo{}
	for rows.Next() {
		t, err := scanTodo(rows)
		if err != nil {
			return nil, fmt.Errorf("scan todo: %w", err)
		}
		todos = append(todos, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}
	return todos, nil
}

func (s *Store) Get(ctx context.Context, id int) (model.Todo, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+columns+" FROM todos WHERE id = ?", id)
	t, err := scanTodo(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Todo{}, store.ErrNotFound
	}
	if err != nil {
		return model.Todo{}, fmt.Errorf("get todo %d: %w", id, err)
	}
	return t, nil
}

func (s *Store) Create(ctx context.Context, in model.Input) (model.Todo, error) {
	now := s.stamp()
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO todos (title, description, completed, created_at, updated_at) VALUES (?, ?, ?, ?, ?)",
		in.Title, in.Description, in.Completed, now, now)
	if err != nil {
		return model.Todo{}, fmt.Errorf("insert todo: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Todo{}, fmt.Errorf("insert todo: %w", err)
	}
	return model.Todo{
		ID:          int(id),
		Title:       in.Title,
		Description: in.Description,
		Completed:   in.Completed,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// Update checks existence first: MySQL reports zero affected rows for an
// update that changes nothing.
func (s *Store) Update(ctx context.Context, id int, in model.Input) (model.Todo, error) {
	t, err := s.Get(ctx, id)
	if err != nil {
		return model.Todo{}, err
	}
	t.Title, t.Description, t.Completed = in.Title, in.Description, in.Completed
	t.UpdatedAt = s.stamp()
	if _, err := s.db.ExecContext(ctx,
		"UPDATE todos SET title = ?, description = ?, completed = ?, updated_at = ? WHERE id = ?",
		t.Title, t.Description, t.Completed, t.UpdatedAt, id); err != nil {
		return model.Todo{}, fmt.Errorf("update todo %d: %w", id, err)
	}
	return t, nil
}

func (s *Store) Delete(ctx context.Context, id int) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM todos WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete todo %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete todo %d: %w", id, err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) Close() error { return s.db.Close() }
