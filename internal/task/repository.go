package task

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound indicates no task matches the requested identifier.
var ErrNotFound = errors.New("task not found")

// Filter narrows List results.
type Filter struct {
	Status   Status
	Assignee string
}

// Repository persists tasks.
type Repository interface {
	Create(ctx context.Context, t Task) error
	GetByID(ctx context.Context, id string) (Task, error)
	List(ctx context.Context, f Filter) ([]Task, error)
	Update(ctx context.Context, t Task) error
	Delete(ctx context.Context, id string) error
}

// PostgresRepository stores tasks in PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed task repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a task record.
func (r *PostgresRepository) Create(ctx context.Context, t Task) error {
	taskID, err := uuid.Parse(t.ID)
	if err != nil {
		return err
	}
	var due *time.Time
	if !t.DueDate.IsZero() {
		d := t.DueDate.UTC()
		due = &d
	}
	_, err = r.db.Exec(ctx, `INSERT INTO tasks
        (id, title, description, assignee, status, priority, due_date, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		taskID, t.Title, t.Description, t.Assignee, string(t.Status), t.Priority,
		due, t.CreatedAt.UTC(), t.UpdatedAt.UTC())
	return err
}

// GetByID fetches a task by identifier.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (Task, error) {
	taskID, err := uuid.Parse(id)
	if err != nil {
		return Task{}, ErrNotFound
	}
	row := r.db.QueryRow(ctx, `SELECT id, title, description, assignee, status, priority, due_date, created_at, updated_at
        FROM tasks WHERE id = $1`, taskID)
	return scanTask(row)
}

// List returns tasks matching the filter, newest first.
func (r *PostgresRepository) List(ctx context.Context, f Filter) ([]Task, error) {
	query := `SELECT id, title, description, assignee, status, priority, due_date, created_at, updated_at FROM tasks`
	var (
		args    []any
		clauses []string
	)
	if f.Status != "" {
		args = append(args, string(f.Status))
		clauses = append(clauses, `status = $1`)
	}
	if f.Assignee != "" {
		args = append(args, f.Assignee)
		if len(args) == 1 {
			clauses = append(clauses, `assignee = $1`)
		} else {
			clauses = append(clauses, `assignee = $2`)
		}
	}
	for i, clause := range clauses {
		if i == 0 {
			query += ` WHERE ` + clause
		} else {
			query += ` AND ` + clause
		}
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// Update overwrites the mutable fields of a task.
func (r *PostgresRepository) Update(ctx context.Context, t Task) error {
	taskID, err := uuid.Parse(t.ID)
	if err != nil {
		return ErrNotFound
	}
	var due *time.Time
	if !t.DueDate.IsZero() {
		d := t.DueDate.UTC()
		due = &d
	}
	cmd, err := r.db.Exec(ctx, `UPDATE tasks
        SET title = $1, description = $2, assignee = $3, status = $4, priority = $5, due_date = $6, updated_at = $7
        WHERE id = $8`,
		t.Title, t.Description, t.Assignee, string(t.Status), t.Priority, due,
		t.UpdatedAt.UTC(), taskID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a task.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	taskID, err := uuid.Parse(id)
	if err != nil {
		return ErrNotFound
	}
	cmd, err := r.db.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, taskID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (Task, error) {
	var (
		t         Task
		id        uuid.UUID
		status    string
		due       *time.Time
		createdAt time.Time
		updatedAt time.Time
	)
	if err := row.Scan(&id, &t.Title, &t.Description, &t.Assignee, &status, &t.Priority,
		&due, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Task{}, ErrNotFound
		}
		return Task{}, err
	}
	t.ID = id.String()
	t.Status = Status(status)
	if due != nil {
		t.DueDate = due.UTC()
	}
	t.CreatedAt = createdAt.UTC()
	t.UpdatedAt = updatedAt.UTC()
	return t, nil
}
