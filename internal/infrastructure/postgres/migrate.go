package postgres

import (
	"context"
	_ "embed"
	"fmt"
)

//go:embed schema.sql
var schemaSQL string

// Migrate aplica el esquema (idempotente: CREATE ... IF NOT EXISTS) y siembra los roles fijos.
func Migrate(ctx context.Context, q Querier) error {
	if _, err := q.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("aplicar esquema: %w", err)
	}
	return nil
}

// SyncUserSequence ajusta la secuencia de users.id tras insertar ids explícitos (seeder).
func SyncUserSequence(ctx context.Context, q Querier) error {
	_, err := q.Exec(ctx, `
		SELECT setval(pg_get_serial_sequence('users', 'id'),
		              GREATEST((SELECT COALESCE(MAX(id), 0) FROM users), 1),
		              (SELECT COUNT(*) > 0 FROM users))`)
	if err != nil {
		return fmt.Errorf("sincronizar secuencia users: %w", err)
	}
	return nil
}
