package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/oakwood-commons/mccw/pkg/widget"
)

// DefaultTable is the table SQL stores use when none is configured.
const DefaultTable = "mccw_widget_settings"

// SQL keeps settings in a PostgreSQL table, one row per instance.
type SQL struct {
	db    *sql.DB
	table string
}

// OpenPostgres connects to dsn with the lib/pq driver, verifies the
// connection and creates the settings table when missing.
func OpenPostgres(ctx context.Context, dsn, table string) (*SQL, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	st := NewSQL(db, table)
	if err := st.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return st, nil
}

// NewSQL wraps an open database. An empty table selects DefaultTable.
func NewSQL(db *sql.DB, table string) *SQL {
	if table == "" {
		table = DefaultTable
	}
	return &SQL{db: db, table: pq.QuoteIdentifier(table)}
}

// Migrate creates the settings table if it does not exist.
func (s *SQL) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS `+s.table+` (
		instance_id TEXT PRIMARY KEY,
		title       TEXT    NOT NULL DEFAULT '',
		columns     INTEGER NOT NULL DEFAULT 2,
		show_count  BOOLEAN NOT NULL DEFAULT FALSE,
		updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
	)`)
	if err != nil {
		return fmt.Errorf("create settings table: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *SQL) Close() error {
	return s.db.Close()
}

// Get implements Store.
func (s *SQL) Get(ctx context.Context, instanceID string) (widget.Settings, error) {
	var out widget.Settings
	err := s.db.QueryRowContext(ctx,
		`SELECT title, columns, show_count FROM `+s.table+` WHERE instance_id = $1`,
		instanceID,
	).Scan(&out.Title, &out.Columns, &out.ShowCount)
	if errors.Is(err, sql.ErrNoRows) {
		return widget.Settings{}, ErrNotFound
	}
	if err != nil {
		return widget.Settings{}, fmt.Errorf("select settings %q: %w", instanceID, err)
	}
	return out, nil
}

// Set implements Store with an upsert, so concurrent writers to the same
// instance are serialized by the database.
func (s *SQL) Set(ctx context.Context, instanceID string, settings widget.Settings) error {
	if err := validateID(instanceID); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO `+s.table+` (instance_id, title, columns, show_count, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (instance_id) DO UPDATE
		SET title = EXCLUDED.title, columns = EXCLUDED.columns,
		    show_count = EXCLUDED.show_count, updated_at = now()`,
		instanceID, settings.Title, settings.Columns, settings.ShowCount,
	)
	if err != nil {
		return fmt.Errorf("upsert settings %q: %w", instanceID, err)
	}
	return nil
}

// Delete implements Store.
func (s *SQL) Delete(ctx context.Context, instanceID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM `+s.table+` WHERE instance_id = $1`, instanceID); err != nil {
		return fmt.Errorf("delete settings %q: %w", instanceID, err)
	}
	return nil
}

// List implements Store.
func (s *SQL) List(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT instance_id FROM `+s.table+` ORDER BY instance_id`)
	if err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan instance id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
