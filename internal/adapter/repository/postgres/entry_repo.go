package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/abbaskhatri/bynkbook/internal/domain"
	"github.com/abbaskhatri/bynkbook/internal/usecase"
)

// EntryRepository implements usecase.EntryRepository.
type EntryRepository struct {
	pool *pgxpool.Pool
}

// NewEntryRepository creates a new EntryRepository.
func NewEntryRepository(pool *pgxpool.Pool) *EntryRepository {
	return &EntryRepository{pool: pool}
}

const entryColumns = `
	id, business_id, account_id, entry_date, payee, memo, category_id,
	amount_cents, entry_type, payment_method, status,
	transfer_id, transfer_counter_account, transfer_direction,
	vendor_id, vendor_name, deleted_at, created_at, updated_at
`

// Create inserts a new entry.
func (r *EntryRepository) Create(ctx context.Context, tx usecase.Transaction, entry *domain.Entry) error {
	query := `
		INSERT INTO entries (` + entryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
	`

	var transferID, counterAccount, direction *string
	if entry.Transfer != nil {
		transferID = &entry.Transfer.TransferID
		counterAccount = &entry.Transfer.CounterAccountName
		d := string(entry.Transfer.Direction)
		direction = &d
	}
	var vendorID, vendorName *string
	if entry.Vendor != nil {
		vendorID = &entry.Vendor.VendorID
		vendorName = &entry.Vendor.Name
	}

	_, err := tx.(*Tx).PgxTx().Exec(ctx, query,
		entry.ID,
		entry.BusinessID,
		entry.AccountID,
		entry.Date,
		entry.Payee,
		entry.Memo,
		nullIfEmpty(entry.CategoryID),
		entry.Amount,
		string(entry.Type),
		nullIfEmpty(string(entry.Method)),
		entry.Status,
		transferID,
		counterAccount,
		direction,
		vendorID,
		vendorName,
		entry.DeletedAt,
		entry.CreatedAt,
		entry.UpdatedAt,
	)

	return err
}

// Update rewrites every mutable column of an entry.
func (r *EntryRepository) Update(ctx context.Context, tx usecase.Transaction, entry *domain.Entry) error {
	query := `
		UPDATE entries
		SET entry_date = $2, payee = $3, memo = $4, category_id = $5,
		    amount_cents = $6, payment_method = $7, status = $8, updated_at = $9
		WHERE id = $1
	`

	tag, err := tx.(*Tx).PgxTx().Exec(ctx, query,
		entry.ID,
		entry.Date,
		entry.Payee,
		entry.Memo,
		nullIfEmpty(entry.CategoryID),
		entry.Amount,
		nullIfEmpty(string(entry.Method)),
		entry.Status,
		entry.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrEntryNotFound
	}

	return nil
}

// SoftDelete marks an entry deleted without removing the row.
func (r *EntryRepository) SoftDelete(ctx context.Context, tx usecase.Transaction, id string, at time.Time) error {
	tag, err := tx.(*Tx).PgxTx().Exec(ctx,
		`UPDATE entries SET deleted_at = $2, updated_at = $2 WHERE id = $1 AND deleted_at IS NULL`,
		id, at,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrEntryNotFound
	}

	return nil
}

// Restore clears an entry's deleted marker.
func (r *EntryRepository) Restore(ctx context.Context, tx usecase.Transaction, id string) error {
	tag, err := tx.(*Tx).PgxTx().Exec(ctx,
		`UPDATE entries SET deleted_at = NULL, updated_at = NOW() WHERE id = $1 AND deleted_at IS NOT NULL`,
		id,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrEntryNotFound
	}

	return nil
}

// HardDelete permanently removes an entry row.
func (r *EntryRepository) HardDelete(ctx context.Context, tx usecase.Transaction, id string) error {
	tag, err := tx.(*Tx).PgxTx().Exec(ctx, `DELETE FROM entries WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrEntryNotFound
	}

	return nil
}

// GetByID retrieves a single entry.
func (r *EntryRepository) GetByID(ctx context.Context, id string) (*domain.Entry, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+entryColumns+` FROM entries WHERE id = $1`, id)

	entry, err := scanEntry(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrEntryNotFound
	}
	return entry, err
}

// GetByIDs retrieves entries by id set. Missing ids are simply absent
// from the result; the caller decides whether that is an error.
func (r *EntryRepository) GetByIDs(ctx context.Context, ids []string) ([]*domain.Entry, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+entryColumns+` FROM entries WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanEntries(rows)
}

// GetByTransfer retrieves both legs of a transfer.
func (r *EntryRepository) GetByTransfer(ctx context.Context, transferID string) ([]*domain.Entry, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+entryColumns+` FROM entries WHERE transfer_id = $1 ORDER BY amount_cents ASC`,
		transferID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanEntries(rows)
}

// ListByAccount retrieves an account's entries, newest day first.
// A limit of zero or less returns the full set; running balances need
// every entry, not a page.
func (r *EntryRepository) ListByAccount(ctx context.Context, businessID, accountID string, limit int, includeDeleted bool) ([]*domain.Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM entries WHERE business_id = $1 AND account_id = $2`
	if !includeDeleted {
		query += ` AND deleted_at IS NULL`
	}
	query += ` ORDER BY entry_date DESC, created_at DESC`

	args := []any{businessID, accountID}
	if limit > 0 {
		query += ` LIMIT $3`
		args = append(args, limit)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanEntries(rows)
}

func scanEntries(rows pgx.Rows) ([]*domain.Entry, error) {
	var entries []*domain.Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func scanEntry(row pgx.Row) (*domain.Entry, error) {
	var (
		e                                  domain.Entry
		categoryID, method                 *string
		transferID, counterAcct, direction *string
		vendorID, vendorName               *string
		typ                                string
	)

	err := row.Scan(
		&e.ID, &e.BusinessID, &e.AccountID, &e.Date, &e.Payee, &e.Memo, &categoryID,
		&e.Amount, &typ, &method, &e.Status,
		&transferID, &counterAcct, &direction,
		&vendorID, &vendorName, &e.DeletedAt, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	e.Type = domain.EntryType(typ)
	if categoryID != nil {
		e.CategoryID = *categoryID
	}
	if method != nil {
		e.Method = domain.PaymentMethod(*method)
	}
	if transferID != nil {
		e.Transfer = &domain.TransferLink{
			TransferID: *transferID,
			Direction:  domain.TransferDirection(deref(direction)),
		}
		if counterAcct != nil {
			e.Transfer.CounterAccountName = *counterAcct
		}
	}
	if vendorID != nil {
		e.Vendor = &domain.VendorLink{VendorID: *vendorID, Name: deref(vendorName)}
	}

	return &e, nil
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
