package repositories

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/desertthunder/parthero/internal/shared"
)

// sequenced lists the tables that number their rows from a "{table}_sequence" counter.
var sequenced = map[string]bool{"upload_log": true}

// NextSequence advances the counter for table and returns the new value.
func NextSequence(db *sql.DB, table string) (int, error) {
	if !sequenced[table] {
		return 0, fmt.Errorf("%w: %s has no sequence", shared.ErrInvalidInput, table)
	}

	var n int
	query := fmt.Sprintf("UPDATE %s_sequence SET value = value + 1 WHERE id = 1 RETURNING value", table)
	err := db.QueryRow(query).Scan(&n)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("%s sequence was never seeded; run setup database", table)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to advance %s sequence: %w", table, err)
	}
	return n, nil
}
