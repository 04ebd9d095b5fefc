package storage

import (
	"database/sql"
	"embed"
	"fmt"

	_ "github.com/lib/pq"
)

//go:embed init.sql
var sqlFiles embed.FS

// InitDB creates the live_rates table if it does not exist.
func InitDB(db *sql.DB) error {
	sqlBytes, err := sqlFiles.ReadFile("init.sql")
	if err != nil {
		return fmt.Errorf("failed to read init.sql: %w", err)
	}

	if _, err := db.Exec(string(sqlBytes)); err != nil {
		return fmt.Errorf("failed to execute init.sql: %w", err)
	}
	return nil
}
