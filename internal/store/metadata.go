package store

import (
	"database/sql"
	"errors"
	"fmt"
)

// schemaVersion is the version of the scores table layout written by migrate.
const schemaVersion = "1"

// SetMetadata upserts a key-value pair in the ledger_metadata table.
func (s *Store) SetMetadata(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO ledger_metadata (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	return err
}

// GetMetadata returns the value for a metadata key.
// Returns empty string and nil error if the key is missing.
func (s *Store) GetMetadata(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM ledger_metadata WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return value, err
}

// checkSchemaVersion records the schema version on a new database and refuses
// to open one written by a different layout.
func (s *Store) checkSchemaVersion() error {
	v, err := s.GetMetadata("schema_version")
	if err != nil {
		return err
	}
	switch v {
	case "":
		return s.SetMetadata("schema_version", schemaVersion)
	case schemaVersion:
		return nil
	default:
		return fmt.Errorf("unsupported schema version %q (want %s)", v, schemaVersion)
	}
}
