package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// PostgresStore persists ledger entries in PostgreSQL.
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore constructs a Postgres-backed transaction log.
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

const txColumns = `id, sender_id, receiver_id, sender_name, receiver_name,
        amount::text, currency, kind, status, note, tx_hash, fee::text, created_at, updated_at`

// Append inserts a single ledger entry.
func (s *PostgresStore) Append(ctx context.Context, tx Transaction) error {
	txID, err := uuid.Parse(tx.ID)
	if err != nil {
		return err
	}
	senderID, err := uuid.Parse(tx.SenderID)
	if err != nil {
		return err
	}
	receiverID, err := uuid.Parse(tx.ReceiverID)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(ctx, `INSERT INTO transactions
        (id, sender_id, receiver_id, sender_name, receiver_name, amount, currency, kind, status, note, tx_hash, fee, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		txID, senderID, receiverID, tx.SenderName, tx.ReceiverName,
		tx.Amount.String(), tx.Currency, tx.Kind, string(tx.Status),
		tx.Note, tx.TxHash, tx.Fee.String(), tx.CreatedAt.UTC(), tx.UpdatedAt.UTC())
	return err
}

// Get fetches a single entry by identifier.
func (s *PostgresStore) Get(ctx context.Context, id string) (Transaction, error) {
	txID, err := uuid.Parse(id)
	if err != nil {
		return Transaction{}, ErrNotFound
	}
	row := s.db.QueryRow(ctx, `SELECT `+txColumns+` FROM transactions WHERE id = $1`, txID)
	return scanTransaction(row)
}

// List returns entries matching the filter, newest first.
func (s *PostgresStore) List(ctx context.Context, f Filter) ([]Transaction, error) {
	query := `SELECT ` + txColumns + ` FROM transactions`
	var (
		args    []any
		clauses []string
	)
	if f.WalletID != "" {
		walletID, err := uuid.Parse(f.WalletID)
		if err != nil {
			return nil, fmt.Errorf("invalid wallet id %q", f.WalletID)
		}
		args = append(args, walletID)
		clauses = append(clauses, fmt.Sprintf(`(sender_id = $%d OR receiver_id = $%d)`, len(args), len(args)))
	}
	if f.Status != "" {
		args = append(args, string(f.Status))
		clauses = append(clauses, fmt.Sprintf(`status = $%d`, len(args)))
	}
	if f.Kind != "" {
		args = append(args, f.Kind)
		clauses = append(clauses, fmt.Sprintf(`kind = $%d`, len(args)))
	}
	for i, clause := range clauses {
		if i == 0 {
			query += ` WHERE ` + clause
		} else {
			query += ` AND ` + clause
		}
	}
	query += ` ORDER BY created_at DESC`
	if f.Limit > 0 {
		args = append(args, f.Limit)
		query += fmt.Sprintf(` LIMIT $%d`, len(args))
	}

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, tx)
	}
	return out, rows.Err()
}

// SetStatus updates the settlement state of an entry.
func (s *PostgresStore) SetStatus(ctx context.Context, id string, status Status, at time.Time) error {
	txID, err := uuid.Parse(id)
	if err != nil {
		return ErrNotFound
	}
	cmd, err := s.db.Exec(ctx, `UPDATE transactions SET status = $1, updated_at = $2 WHERE id = $3`,
		string(status), at.UTC(), txID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes an entry. Administrative use only.
func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	txID, err := uuid.Parse(id)
	if err != nil {
		return ErrNotFound
	}
	cmd, err := s.db.Exec(ctx, `DELETE FROM transactions WHERE id = $1`, txID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SumCompleted aggregates the completed amounts on each side of the wallet.
func (s *PostgresStore) SumCompleted(ctx context.Context, walletID string) (decimal.Decimal, decimal.Decimal, error) {
	wID, err := uuid.Parse(walletID)
	if err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("invalid wallet id %q", walletID)
	}
	const query = `
        SELECT
            COALESCE(SUM(amount) FILTER (WHERE receiver_id = $1), 0)::text,
            COALESCE(SUM(amount) FILTER (WHERE sender_id = $1), 0)::text
        FROM transactions
        WHERE (sender_id = $1 OR receiver_id = $1) AND status = 'completed'`
	var receivedStr, sentStr string
	if err := s.db.QueryRow(ctx, query, wID).Scan(&receivedStr, &sentStr); err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	received, err := decimal.NewFromString(receivedStr)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	sent, err := decimal.NewFromString(sentStr)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	return received, sent, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (Transaction, error) {
	var (
		tx         Transaction
		id         uuid.UUID
		senderID   uuid.UUID
		receiverID uuid.UUID
		amountStr  string
		feeStr     string
		status     string
		createdAt  time.Time
		updatedAt  time.Time
	)
	if err := row.Scan(&id, &senderID, &receiverID, &tx.SenderName, &tx.ReceiverName,
		&amountStr, &tx.Currency, &tx.Kind, &status, &tx.Note, &tx.TxHash, &feeStr,
		&createdAt, &updatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Transaction{}, ErrNotFound
		}
		return Transaction{}, err
	}
	amount, err := decimal.NewFromString(amountStr)
	if err != nil {
		return Transaction{}, err
	}
	fee, err := decimal.NewFromString(feeStr)
	if err != nil {
		return Transaction{}, err
	}
	tx.ID = id.String()
	tx.SenderID = senderID.String()
	tx.ReceiverID = receiverID.String()
	tx.Amount = amount
	tx.Fee = fee
	tx.Status = Status(status)
	tx.CreatedAt = createdAt.UTC()
	tx.UpdatedAt = updatedAt.UTC()
	return tx, nil
}
