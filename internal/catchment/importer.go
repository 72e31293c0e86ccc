package catchment

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Import replaces the stored catchment rows with rows in a single transaction,
// streaming them with COPY. The table must already exist (see Store.AutoMigrate).
func Import(ctx context.Context, conn *pgx.Conn, ns uuid.UUID, rows []Row) (int64, error) {
	tx, err := conn.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	table := CatchmentRecord{}.TableName()
	if _, err := tx.Exec(ctx, "TRUNCATE TABLE "+table); err != nil {
		return 0, fmt.Errorf("truncate %s: %w", table, err)
	}

	n, err := tx.CopyFrom(ctx,
		pgx.Identifier{Schema, "catchment_rows"},
		recordColumns,
		pgx.CopyFromSlice(len(rows), func(i int) ([]any, error) {
			return NewRecord(ns, rows[i]).values(), nil
		}),
	)
	if err != nil {
		return 0, fmt.Errorf("copy catchment rows: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return n, nil
}
