package database

import (
	"context"
	"fmt"

	"github.com/surrealdb/surrealdb.go"
)

type sequence struct {
	Value int64 `json:"value"`
}

// NextID atomically advances the named counter and returns the new value.
// Records in this application use integer IDs (user:7, team:42) so that the
// REST and chat protocols can identify them with plain integers; every store
// draws its IDs from here.
func NextID(ctx context.Context, db *surrealdb.DB, name string) (int64, error) {
	query := "UPSERT type::thing('seq', $name) SET value += 1 RETURN AFTER"
	seq, err := QueryOne[sequence](ctx, db, query, map[string]any{"name": name})
	if err != nil {
		return 0, fmt.Errorf("failed to advance sequence %q: %w", name, err)
	}
	if seq == nil {
		return 0, fmt.Errorf("sequence %q returned no row", name)
	}
	return seq.Value, nil
}
