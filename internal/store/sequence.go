package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	entsql "entgo.io/ent/dialect/sql"
)

// sequenceCounter hands out event-log sequence numbers from the single
// row of the sequence table. Read and increment share one transaction.
type sequenceCounter struct {
	mu sync.Mutex
	db *sql.DB
}

// Next returns the next sequence number and increments the counter.
func (sc *sequenceCounter) Next(ctx context.Context) (seq int64, err error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	tx, err := sc.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("next sequence: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	query, args := builder().Select("next_val").
		From(entsql.Table(tableSequence)).
		Where(entsql.EQ("id", 1)).
		Query()
	if err = tx.QueryRowContext(ctx, query, args...).Scan(&seq); err != nil {
		return 0, fmt.Errorf("read sequence: %w", err)
	}

	query, args = builder().Update(tableSequence).
		Add("next_val", 1).
		Where(entsql.EQ("id", 1)).
		Query()
	if _, err = tx.ExecContext(ctx, query, args...); err != nil {
		return 0, fmt.Errorf("advance sequence: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit sequence: %w", err)
	}
	return seq, nil
}
