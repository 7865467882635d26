package database

import (
	"context"
	"fmt"

	"github.com/surrealdb/surrealdb.go"
)

// The stores in this package speak raw SurrealQL through three generic
// helpers. Every statement runs as a single query with named parameters;
// the helpers differ only in how much of the result set the caller wants.

// Query runs a statement and returns all rows of its first result set,
// decoded into T. A statement with no rows returns a nil slice.
func Query[T any](ctx context.Context, db *surrealdb.DB, statement string, params map[string]any) ([]T, error) {
	resultSets, err := surrealdb.Query[[]T](ctx, db, statement, params)
	if err != nil {
		return nil, fmt.Errorf("surreal query: %w", err)
	}
	if resultSets == nil || len(*resultSets) == 0 {
		return nil, nil
	}
	return (*resultSets)[0].Result, nil
}

// QueryOne runs a statement and returns its first row, or nil when the
// statement matched nothing. Callers map the nil onto their own not-found.
func QueryOne[T any](ctx context.Context, db *surrealdb.DB, statement string, params map[string]any) (*T, error) {
	rows, err := Query[T](ctx, db, statement, params)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

// Execute runs a statement for its side effects, discarding any rows.
func Execute(ctx context.Context, db *surrealdb.DB, statement string, params map[string]any) error {
	if _, err := surrealdb.Query[any](ctx, db, statement, params); err != nil {
		return fmt.Errorf("surreal query: %w", err)
	}
	return nil
}
