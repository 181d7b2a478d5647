package database

import (
	"context"
	"database/sql"
	"fmt"
)

// schema is applied in order on startup.  Every statement is idempotent.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS admission_checks (
		id             BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		input_text     MEDIUMTEXT      NOT NULL,
		output_text    MEDIUMTEXT      NOT NULL,
		valid          TINYINT(1)      NOT NULL,
		admitted       TINYINT(1)      NOT NULL,
		ticket_count   INT UNSIGNED    NOT NULL DEFAULT 0,
		rejected_count INT UNSIGNED    NOT NULL DEFAULT 0,
		locale         VARCHAR(8)      NOT NULL DEFAULT 'en',
		created_at     DATETIME        NOT NULL DEFAULT CURRENT_TIMESTAMP,
		KEY idx_admission_checks_created (created_at)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// EnsureSchema creates the tables used by the audit store.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement %d: %w", i, err)
		}
	}
	return nil
}
