package cross

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

var (
	// ErrNotFound indicates no cross matches the requested identifier.
	ErrNotFound = errors.New("cross not found")
	// ErrAlreadyClosed indicates the cross was settled earlier.
	ErrAlreadyClosed = errors.New("cross already closed")
)

// Repository persists cross positions.
type Repository interface {
	Create(ctx context.Context, c Cross) error
	GetByID(ctx context.Context, id string) (Cross, error)
	List(ctx context.Context, status Status) ([]Cross, error)
	Close(ctx context.Context, id string, result decimal.Decimal, at time.Time) error
}

// PostgresRepository stores crosses in PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed cross repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a cross record.
func (r *PostgresRepository) Create(ctx context.Context, c Cross) error {
	crossID, err := uuid.Parse(c.ID)
	if err != nil {
		return err
	}
	longID, err := uuid.Parse(c.LongClientID)
	if err != nil {
		return err
	}
	shortID, err := uuid.Parse(c.ShortClientID)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO crosses
        (id, pair, long_client_id, short_client_id, long_broker, short_broker, amount, status, result, note, opened_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		crossID, c.Pair, longID, shortID, c.LongBroker, c.ShortBroker,
		c.Amount.String(), string(c.Status), c.Result.String(), c.Note, c.OpenedAt.UTC())
	return err
}

// GetByID fetches a cross by identifier.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (Cross, error) {
	crossID, err := uuid.Parse(id)
	if err != nil {
		return Cross{}, ErrNotFound
	}
	row := r.db.QueryRow(ctx, `SELECT id, pair, long_client_id, short_client_id, long_broker, short_broker,
        amount::text, status, result::text, note, opened_at, closed_at
        FROM crosses WHERE id = $1`, crossID)
	return scanCross(row)
}

// List returns crosses, optionally restricted by status, newest first.
func (r *PostgresRepository) List(ctx context.Context, status Status) ([]Cross, error) {
	query := `SELECT id, pair, long_client_id, short_client_id, long_broker, short_broker,
        amount::text, status, result::text, note, opened_at, closed_at FROM crosses`
	var args []any
	if status != "" {
		args = append(args, string(status))
		query += ` WHERE status = $1`
	}
	query += ` ORDER BY opened_at DESC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var crosses []Cross
	for rows.Next() {
		c, err := scanCross(rows)
		if err != nil {
			return nil, err
		}
		crosses = append(crosses, c)
	}
	return crosses, rows.Err()
}

// Close settles an open cross with its realized result.
func (r *PostgresRepository) Close(ctx context.Context, id string, result decimal.Decimal, at time.Time) error {
	crossID, err := uuid.Parse(id)
	if err != nil {
		return ErrNotFound
	}
	cmd, err := r.db.Exec(ctx, `UPDATE crosses SET status = $1, result = $2, closed_at = $3
        WHERE id = $4 AND status = $5`,
		string(StatusClosed), result.String(), at.UTC(), crossID, string(StatusOpen))
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		// distinguish missing from already settled
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return ErrAlreadyClosed
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCross(row rowScanner) (Cross, error) {
	var (
		c         Cross
		id        uuid.UUID
		longID    uuid.UUID
		shortID   uuid.UUID
		amountStr string
		resultStr string
		status    string
		openedAt  time.Time
		closedAt  *time.Time
	)
	if err := row.Scan(&id, &c.Pair, &longID, &shortID, &c.LongBroker, &c.ShortBroker,
		&amountStr, &status, &resultStr, &c.Note, &openedAt, &closedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Cross{}, ErrNotFound
		}
		return Cross{}, err
	}
	amount, err := decimal.NewFromString(amountStr)
	if err != nil {
		return Cross{}, err
	}
	result, err := decimal.NewFromString(resultStr)
	if err != nil {
		return Cross{}, err
	}
	c.ID = id.String()
	c.LongClientID = longID.String()
	c.ShortClientID = shortID.String()
	c.Amount = amount
	c.Result = result
	c.Status = Status(status)
	c.OpenedAt = openedAt.UTC()
	if closedAt != nil {
		c.ClosedAt = closedAt.UTC()
	}
	return c, nil
}
