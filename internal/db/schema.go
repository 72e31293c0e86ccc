package db

import (
	"context"
	"fmt"
	"regexp"

	"gorm.io/gorm"
)

var identifier = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// EnsureSchema creates the postgres schema if it does not exist. The name is
// spliced into the statement, so only plain lowercase identifiers pass.
func EnsureSchema(ctx context.Context, d *gorm.DB, schema string) error {
	if !identifier.MatchString(schema) {
		return fmt.Errorf("invalid schema name %q", schema)
	}
	return d.WithContext(ctx).Exec(`CREATE SCHEMA IF NOT EXISTS "` + schema + `"`).Error
}
