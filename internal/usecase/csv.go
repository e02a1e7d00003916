package usecase

import (
	"bytes"
	"encoding/csv"
)

// The export column lists are a user-facing compatibility surface; order
// and names are fixed.
var (
	auditCSVHeader = []string{
		"business_id", "account_id", "group_id", "event", "at", "by",
		"bank_transaction_ids", "entry_ids", "amount_cents", "amount", "reason",
	}
	matchesCSVHeader = []string{
		"business_id", "account_id", "group_id", "created_at", "created_by",
		"bank_transaction_ids", "entry_ids", "amount_cents", "amount",
	}
	bankTxnCSVHeader = []string{
		"business_id", "account_id", "bank_transaction_id", "posted_at",
		"description", "amount_cents", "amount", "source", "status", "group_id",
	}
)

// writeCSV renders rows with standard RFC 4180 quoting.
func writeCSV(rows [][]string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.WriteAll(rows); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
