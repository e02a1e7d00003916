package postgres

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/abbaskhatri/bynkbook/internal/domain"
	"github.com/abbaskhatri/bynkbook/internal/usecase"
)

// MatchGroupRepository implements usecase.MatchGroupRepository. A group
// row plus two reference tables; references are written once at creation
// and never change, only the group's void columns mutate.
type MatchGroupRepository struct {
	pool *pgxpool.Pool
}

// NewMatchGroupRepository creates a new MatchGroupRepository.
func NewMatchGroupRepository(pool *pgxpool.Pool) *MatchGroupRepository {
	return &MatchGroupRepository{pool: pool}
}

// Create inserts a group and its references.
func (r *MatchGroupRepository) Create(ctx context.Context, tx usecase.Transaction, group *domain.MatchGroup) error {
	pgxTx := tx.(*Tx).PgxTx()

	_, err := pgxTx.Exec(ctx, `
		INSERT INTO match_groups (id, business_id, account_id, status, created_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, group.ID, group.BusinessID, group.AccountID, string(group.Status), group.CreatedAt, group.CreatedBy)
	if err != nil {
		return err
	}

	for _, ref := range group.BankTxns {
		_, err = pgxTx.Exec(ctx, `
			INSERT INTO match_group_bank_transactions (group_id, bank_transaction_id, amount_cents)
			VALUES ($1, $2, $3)
		`, group.ID, ref.BankTransactionID, ref.AmountCents)
		if err != nil {
			return err
		}
	}
	for _, ref := range group.Entries {
		_, err = pgxTx.Exec(ctx, `
			INSERT INTO match_group_entries (group_id, entry_id, amount_cents)
			VALUES ($1, $2, $3)
		`, group.ID, ref.EntryID, ref.AmountCents)
		if err != nil {
			return err
		}
	}

	return nil
}

// GetByID retrieves one group with its references.
func (r *MatchGroupRepository) GetByID(ctx context.Context, id string) (*domain.MatchGroup, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, business_id, account_id, status, created_at, created_by,
		       voided_at, voided_by, void_reason
		FROM match_groups WHERE id = $1
	`, id)

	group, err := scanGroup(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrGroupNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := r.loadRefs(ctx, r.pool, []*domain.MatchGroup{group}); err != nil {
		return nil, err
	}

	return group, nil
}

// GetByIDForUpdate retrieves and row-locks one group inside the
// transaction, so a concurrent void of the same group serializes.
func (r *MatchGroupRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.MatchGroup, error) {
	pgxTx := tx.(*Tx).PgxTx()

	row := pgxTx.QueryRow(ctx, `
		SELECT id, business_id, account_id, status, created_at, created_by,
		       voided_at, voided_by, void_reason
		FROM match_groups WHERE id = $1
		FOR UPDATE
	`, id)

	group, err := scanGroup(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrGroupNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := r.loadRefs(ctx, pgxTx, []*domain.MatchGroup{group}); err != nil {
		return nil, err
	}

	return group, nil
}

// ListByAccount retrieves an account's groups with references.
func (r *MatchGroupRepository) ListByAccount(ctx context.Context, businessID, accountID string, activeOnly bool) ([]*domain.MatchGroup, error) {
	query := `
		SELECT id, business_id, account_id, status, created_at, created_by,
		       voided_at, voided_by, void_reason
		FROM match_groups WHERE business_id = $1 AND account_id = $2
	`
	if activeOnly {
		query += ` AND status = 'ACTIVE'`
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := r.pool.Query(ctx, query, businessID, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var groups []*domain.MatchGroup
	for rows.Next() {
		group, err := scanGroup(rows)
		if err != nil {
			return nil, err
		}
		groups = append(groups, group)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.loadRefs(ctx, r.pool, groups); err != nil {
		return nil, err
	}

	return groups, nil
}

// ActiveReferencing returns active groups referencing any of the given
// items. It is the serialization point of the one-active-group-per-item
// rule: the referenced item rows are locked first, in sorted id order,
// so two concurrent creates over the same items queue on the item locks
// even when neither item belongs to an active group yet. Conflicting
// group rows are then locked until the transaction ends.
func (r *MatchGroupRepository) ActiveReferencing(ctx context.Context, tx usecase.Transaction, bankTxnIDs, entryIDs []string) ([]*domain.MatchGroup, error) {
	pgxTx := tx.(*Tx).PgxTx()

	if err := lockRows(ctx, pgxTx, "bank_transactions", bankTxnIDs); err != nil {
		return nil, err
	}
	if err := lockRows(ctx, pgxTx, "entries", entryIDs); err != nil {
		return nil, err
	}

	// A locking clause cannot be combined with DISTINCT, so conflicting
	// groups are found through a membership subquery instead of a join.
	rows, err := pgxTx.Query(ctx, `
		SELECT id, business_id, account_id, status, created_at, created_by,
		       voided_at, voided_by, void_reason
		FROM match_groups
		WHERE status = 'ACTIVE'
		  AND id IN (
		      SELECT group_id FROM match_group_bank_transactions WHERE bank_transaction_id = ANY($1)
		      UNION
		      SELECT group_id FROM match_group_entries WHERE entry_id = ANY($2)
		  )
		ORDER BY id
		FOR UPDATE
	`, bankTxnIDs, entryIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var groups []*domain.MatchGroup
	for rows.Next() {
		group, err := scanGroup(rows)
		if err != nil {
			return nil, err
		}
		groups = append(groups, group)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.loadRefs(ctx, pgxTx, groups); err != nil {
		return nil, err
	}

	return groups, nil
}

// Void stamps a group's terminal state. Only active groups may be voided.
func (r *MatchGroupRepository) Void(ctx context.Context, tx usecase.Transaction, id string, at time.Time, by, reason string) error {
	tag, err := tx.(*Tx).PgxTx().Exec(ctx, `
		UPDATE match_groups
		SET status = 'VOIDED', voided_at = $2, voided_by = $3, void_reason = $4
		WHERE id = $1 AND status = 'ACTIVE'
	`, id, at, by, reason)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrGroupAlreadyVoided
	}

	return nil
}

// lockRows takes FOR UPDATE locks on a table's rows in sorted id order,
// so every transaction acquires item locks in the same sequence.
func lockRows(ctx context.Context, tx pgx.Tx, table string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	sorted := make([]string, len(ids))
	copy(sorted, ids)
	sort.Strings(sorted)

	rows, err := tx.Query(ctx, `SELECT id FROM `+table+` WHERE id = ANY($1) ORDER BY id FOR UPDATE`, sorted)
	if err != nil {
		return err
	}
	rows.Close()
	return rows.Err()
}

// refQuerier is satisfied by both the pool and a pgx transaction.
type refQuerier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// loadRefs attaches bank and entry references to the given groups.
func (r *MatchGroupRepository) loadRefs(ctx context.Context, q refQuerier, groups []*domain.MatchGroup) error {
	if len(groups) == 0 {
		return nil
	}

	ids := make([]string, len(groups))
	byID := make(map[string]*domain.MatchGroup, len(groups))
	for i, g := range groups {
		ids[i] = g.ID
		byID[g.ID] = g
	}

	rows, err := q.Query(ctx, `
		SELECT group_id, bank_transaction_id, amount_cents
		FROM match_group_bank_transactions WHERE group_id = ANY($1)
		ORDER BY bank_transaction_id
	`, ids)
	if err != nil {
		return err
	}
	for rows.Next() {
		var groupID string
		var ref domain.BankTxnRef
		if err := rows.Scan(&groupID, &ref.BankTransactionID, &ref.AmountCents); err != nil {
			rows.Close()
			return err
		}
		byID[groupID].BankTxns = append(byID[groupID].BankTxns, ref)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	rows, err = q.Query(ctx, `
		SELECT group_id, entry_id, amount_cents
		FROM match_group_entries WHERE group_id = ANY($1)
		ORDER BY entry_id
	`, ids)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var groupID string
		var ref domain.EntryRef
		if err := rows.Scan(&groupID, &ref.EntryID, &ref.AmountCents); err != nil {
			return err
		}
		byID[groupID].Entries = append(byID[groupID].Entries, ref)
	}

	return rows.Err()
}

func scanGroup(row pgx.Row) (*domain.MatchGroup, error) {
	var (
		g          domain.MatchGroup
		status     string
		voidedBy   *string
		voidReason *string
	)
	err := row.Scan(
		&g.ID, &g.BusinessID, &g.AccountID, &status, &g.CreatedAt, &g.CreatedBy,
		&g.VoidedAt, &voidedBy, &voidReason,
	)
	if err != nil {
		return nil, err
	}
	g.Status = domain.MatchGroupStatus(status)
	if voidedBy != nil {
		g.VoidedBy = *voidedBy
	}
	if voidReason != nil {
		g.VoidReason = *voidReason
	}
	return &g, nil
}
