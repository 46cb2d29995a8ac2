// Package migration creates and drops the schema derived from the registered
// models and records what was applied in schema_migrations.
package migration

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// Migration is an ordered list of statements with their inverse.
type Migration struct {
	Version string   // Version (e.g., "0001")
	Name    string   // Migration name (e.g., "create_schema")
	Up      []string // Statements applying the migration, in order
	Down    []string // Statements reverting the migration, in order
}

// UpSQL returns the up statements as a single script.
func (m Migration) UpSQL() string {
	return joinStatements(m.Up)
}

// DownSQL returns the down statements as a single script.
func (m Migration) DownSQL() string {
	return joinStatements(m.Down)
}

// Checksum identifies the up statements, so status can tell when the models
// have changed since the migration was applied.
func (m Migration) Checksum() string {
	sum := sha256.Sum256([]byte(m.UpSQL()))
	return hex.EncodeToString(sum[:8])
}

func joinStatements(stmts []string) string {
	if len(stmts) == 0 {
		return ""
	}
	return strings.Join(stmts, "\n\n") + "\n"
}

// MigrationStatus represents the status of a migration.
type MigrationStatus string

const (
	// StatusPending means the migration has not been applied.
	StatusPending MigrationStatus = "pending"
	// StatusApplied means the migration has been applied.
	StatusApplied MigrationStatus = "applied"
	// StatusFailed means the migration failed to apply.
	StatusFailed MigrationStatus = "failed"
)

// MigrationRecord represents a migration in the tracking table.
type MigrationRecord struct {
	Version   string          `json:"version"`
	Name      string          `json:"name"`
	Status    MigrationStatus `json:"status"`
	Checksum  string          `json:"checksum"`
	AppliedAt *time.Time      `json:"applied_at,omitempty"`
	Error     *string         `json:"error,omitempty"`
}

// Stale reports whether the record was applied from different statements
// than m.
func (r MigrationRecord) Stale(m Migration) bool {
	return r.Status == StatusApplied && r.Checksum != "" && r.Checksum != m.Checksum()
}
