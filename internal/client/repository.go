package client

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// ErrNotFound indicates no client matches the requested identifier.
var ErrNotFound = errors.New("client not found")

// Repository persists client records.
type Repository interface {
	Create(ctx context.Context, c Client) error
	GetByID(ctx context.Context, id string) (Client, error)
	List(ctx context.Context, activeOnly bool) ([]Client, error)
	Update(ctx context.Context, c Client) error
	SetActive(ctx context.Context, id string, active bool, at time.Time) error
}

// PostgresRepository stores clients in PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed client repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a client record.
func (r *PostgresRepository) Create(ctx context.Context, c Client) error {
	clientID, err := uuid.Parse(c.ID)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO clients
        (id, name, broker, platform, account_number, wallet_address, cpa_fee, active, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		clientID, c.Name, c.Broker, c.Platform, c.AccountNumber, c.WalletAddress,
		c.CPAFee.String(), c.Active, c.CreatedAt.UTC(), c.UpdatedAt.UTC())
	return err
}

// GetByID fetches a client by identifier.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (Client, error) {
	clientID, err := uuid.Parse(id)
	if err != nil {
		return Client{}, ErrNotFound
	}
	row := r.db.QueryRow(ctx, `SELECT id, name, broker, platform, account_number, wallet_address, cpa_fee::text, active, created_at, updated_at
        FROM clients WHERE id = $1`, clientID)
	return scanClient(row)
}

// List returns clients, newest first.
func (r *PostgresRepository) List(ctx context.Context, activeOnly bool) ([]Client, error) {
	query := `SELECT id, name, broker, platform, account_number, wallet_address, cpa_fee::text, active, created_at, updated_at FROM clients`
	if activeOnly {
		query += ` WHERE active`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var clients []Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		clients = append(clients, c)
	}
	return clients, rows.Err()
}

// Update overwrites the mutable fields of a client record.
func (r *PostgresRepository) Update(ctx context.Context, c Client) error {
	clientID, err := uuid.Parse(c.ID)
	if err != nil {
		return ErrNotFound
	}
	cmd, err := r.db.Exec(ctx, `UPDATE clients
        SET name = $1, broker = $2, platform = $3, account_number = $4, wallet_address = $5, cpa_fee = $6, updated_at = $7
        WHERE id = $8`,
		c.Name, c.Broker, c.Platform, c.AccountNumber, c.WalletAddress,
		c.CPAFee.String(), c.UpdatedAt.UTC(), clientID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SetActive flips the active flag.
func (r *PostgresRepository) SetActive(ctx context.Context, id string, active bool, at time.Time) error {
	clientID, err := uuid.Parse(id)
	if err != nil {
		return ErrNotFound
	}
	cmd, err := r.db.Exec(ctx, `UPDATE clients SET active = $1, updated_at = $2 WHERE id = $3`,
		active, at.UTC(), clientID)
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

func scanClient(row rowScanner) (Client, error) {
	var (
		c         Client
		id        uuid.UUID
		feeStr    string
		createdAt time.Time
		updatedAt time.Time
	)
	if err := row.Scan(&id, &c.Name, &c.Broker, &c.Platform, &c.AccountNumber,
		&c.WalletAddress, &feeStr, &c.Active, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Client{}, ErrNotFound
		}
		return Client{}, err
	}
	fee, err := decimal.NewFromString(feeStr)
	if err != nil {
		return Client{}, err
	}
	c.ID = id.String()
	c.CPAFee = fee
	c.CreatedAt = createdAt.UTC()
	c.UpdatedAt = updatedAt.UTC()
	return c, nil
}
