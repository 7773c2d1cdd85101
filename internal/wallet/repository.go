package wallet

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrNotFound indicates no wallet matches the requested identifier or name.
	ErrNotFound = errors.New("wallet not found")
	// ErrNameTaken indicates the requested display name is already in use.
	ErrNameTaken = errors.New("wallet name already in use")
)

// Filter narrows List results.
type Filter struct {
	Kind       Kind
	ActiveOnly bool
}

// Repository persists wallet metadata.
type Repository interface {
	Create(ctx context.Context, w Wallet) error
	GetByID(ctx context.Context, id string) (Wallet, error)
	GetByName(ctx context.Context, name string) (Wallet, error)
	List(ctx context.Context, f Filter) ([]Wallet, error)
	Rename(ctx context.Context, id, name string, at time.Time) error
	SetActive(ctx context.Context, id string, active bool, at time.Time) error
}

// PostgresRepository stores wallets in PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a repository backed by PostgreSQL.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a wallet record.
func (r *PostgresRepository) Create(ctx context.Context, w Wallet) error {
	walletID, err := uuid.Parse(w.ID)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO wallets (id, name, kind, currency, owner, active, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		walletID, w.Name, string(w.Kind), w.Currency, w.Owner, w.Active, w.CreatedAt.UTC(), w.UpdatedAt.UTC())
	if isUniqueViolation(err) {
		return ErrNameTaken
	}
	return err
}

// GetByID fetches wallet metadata by surrogate identifier.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (Wallet, error) {
	walletID, err := uuid.Parse(id)
	if err != nil {
		return Wallet{}, ErrNotFound
	}
	row := r.db.QueryRow(ctx, `SELECT id, name, kind, currency, owner, active, created_at, updated_at
        FROM wallets WHERE id = $1`, walletID)
	return scanWallet(row)
}

// GetByName fetches wallet metadata by display name.
func (r *PostgresRepository) GetByName(ctx context.Context, name string) (Wallet, error) {
	row := r.db.QueryRow(ctx, `SELECT id, name, kind, currency, owner, active, created_at, updated_at
        FROM wallets WHERE name = $1`, name)
	return scanWallet(row)
}

// List returns wallets matching the filter, newest first.
func (r *PostgresRepository) List(ctx context.Context, f Filter) ([]Wallet, error) {
	query := `SELECT id, name, kind, currency, owner, active, created_at, updated_at FROM wallets`
	args := []any{}
	clauses := []string{}
	if f.Kind != "" {
		args = append(args, string(f.Kind))
		clauses = append(clauses, `kind = $1`)
	}
	if f.ActiveOnly {
		clauses = append(clauses, `active`)
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

	var wallets []Wallet
	for rows.Next() {
		w, err := scanWallet(rows)
		if err != nil {
			return nil, err
		}
		wallets = append(wallets, w)
	}
	return wallets, rows.Err()
}

// Rename updates the display name. Transactions reference the surrogate ID,
// so history stays attached.
func (r *PostgresRepository) Rename(ctx context.Context, id, name string, at time.Time) error {
	walletID, err := uuid.Parse(id)
	if err != nil {
		return ErrNotFound
	}
	cmd, err := r.db.Exec(ctx, `UPDATE wallets SET name = $1, updated_at = $2 WHERE id = $3`,
		name, at.UTC(), walletID)
	if isUniqueViolation(err) {
		return ErrNameTaken
	}
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SetActive flips the active flag. Wallets are retired, never deleted.
func (r *PostgresRepository) SetActive(ctx context.Context, id string, active bool, at time.Time) error {
	walletID, err := uuid.Parse(id)
	if err != nil {
		return ErrNotFound
	}
	cmd, err := r.db.Exec(ctx, `UPDATE wallets SET active = $1, updated_at = $2 WHERE id = $3`,
		active, at.UTC(), walletID)
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

func scanWallet(row rowScanner) (Wallet, error) {
	var (
		w         Wallet
		id        uuid.UUID
		kind      string
		createdAt time.Time
		updatedAt time.Time
	)
	if err := row.Scan(&id, &w.Name, &kind, &w.Currency, &w.Owner, &w.Active, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Wallet{}, ErrNotFound
		}
		return Wallet{}, err
	}
	w.ID = id.String()
	w.Kind = Kind(kind)
	w.CreatedAt = createdAt.UTC()
	w.UpdatedAt = updatedAt.UTC()
	return w, nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pgErr interface{ SQLState() string }
	if errors.As(err, &pgErr) {
		return pgErr.SQLState() == "23505"
	}
	return false
}
