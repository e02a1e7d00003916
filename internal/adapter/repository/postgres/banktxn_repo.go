package postgres

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/abbaskhatri/bynkbook/internal/domain"
)

// BankTransactionRepository implements usecase.BankTransactionRepository.
// Bank rows are append-only; there is deliberately no update or delete.
type BankTransactionRepository struct {
	pool *pgxpool.Pool
}

// NewBankTransactionRepository creates a new BankTransactionRepository.
func NewBankTransactionRepository(pool *pgxpool.Pool) *BankTransactionRepository {
	return &BankTransactionRepository{pool: pool}
}

const bankTxnColumns = `
	id, business_id, account_id, posted_at, description, amount_cents, source, created_at
`

// Insert stores a new bank transaction.
func (r *BankTransactionRepository) Insert(ctx context.Context, txn *domain.BankTransaction) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO bank_transactions (`+bankTxnColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		txn.ID, txn.BusinessID, txn.AccountID, txn.PostedAt,
		txn.Description, txn.Amount, string(txn.Source), txn.CreatedAt,
	)
	return err
}

// GetByID retrieves one bank transaction.
func (r *BankTransactionRepository) GetByID(ctx context.Context, id string) (*domain.BankTransaction, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+bankTxnColumns+` FROM bank_transactions WHERE id = $1`, id)

	txn, err := scanBankTxn(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrBankTransactionNotFound
	}
	return txn, err
}

// GetByIDs retrieves bank transactions by id set.
func (r *BankTransactionRepository) GetByIDs(ctx context.Context, ids []string) ([]*domain.BankTransaction, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+bankTxnColumns+` FROM bank_transactions WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanBankTxns(rows)
}

// ListByAccount retrieves an account's bank transactions, oldest first,
// optionally bounded by posting date.
func (r *BankTransactionRepository) ListByAccount(ctx context.Context, businessID, accountID string, from, to *time.Time, limit int) ([]*domain.BankTransaction, error) {
	query := `SELECT ` + bankTxnColumns + ` FROM bank_transactions WHERE business_id = $1 AND account_id = $2`
	args := []any{businessID, accountID}

	if from != nil {
		args = append(args, *from)
		query += ` AND posted_at >= $3`
	}
	if to != nil {
		args = append(args, *to)
		if from != nil {
			query += ` AND posted_at <= $4`
		} else {
			query += ` AND posted_at <= $3`
		}
	}

	args = append(args, limit)
	query += ` ORDER BY posted_at ASC, id ASC LIMIT $` + strconv.Itoa(len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanBankTxns(rows)
}

func scanBankTxns(rows pgx.Rows) ([]*domain.BankTransaction, error) {
	var txns []*domain.BankTransaction
	for rows.Next() {
		txn, err := scanBankTxn(rows)
		if err != nil {
			return nil, err
		}
		txns = append(txns, txn)
	}
	return txns, rows.Err()
}

func scanBankTxn(row pgx.Row) (*domain.BankTransaction, error) {
	var (
		t      domain.BankTransaction
		source string
	)
	err := row.Scan(
		&t.ID, &t.BusinessID, &t.AccountID, &t.PostedAt,
		&t.Description, &t.Amount, &source, &t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	t.Source = domain.BankTransactionSource(source)
	return &t, nil
}
