// Package sqlite stores catalog graph snapshots and the audit log in SQLite.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/ersonp/datacatalog/internal/domain/entities"
	"github.com/ersonp/datacatalog/internal/domain/graph"
	"github.com/ersonp/datacatalog/internal/infrastructure/config"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// timeNow returns the current time (can be mocked in tests).
var timeNow = time.Now

// Repository implements ports.SnapshotStore and ports.AuditLog using SQLite.
type Repository struct {
	db   *sqlx.DB
	path string
}

// NewRepository opens the SQLite database at cfg.Path.
func NewRepository(cfg config.SQLiteConfig) (*Repository, error) {
	if cfg.Path == "" {
		return nil, errors.New("sqlite path is required")
	}

	db, err := sqlx.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database: %w", err)
	}

	pragmas := []string{
		"PRAGMA busy_timeout = 5000",
	}
	if cfg.Path == ":memory:" {
		// Every connection would get its own empty database.
		db.SetMaxOpenConns(1)
	} else {
		pragmas = append(pragmas, "PRAGMA journal_mode = WAL")
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("executing %q: %w", p, err)
		}
	}

	return &Repository{
		db:   db,
		path: cfg.Path,
	}, nil
}

// NewFromDB wraps an open database handle. driverName selects the sqlx
// bind style.
func NewFromDB(db *sql.DB, driverName string) *Repository {
	return &Repository{db: sqlx.NewDb(db, driverName)}
}

// Close closes the database connection.
func (r *Repository) Close() error {
	return r.db.Close()
}

// Path returns the database file path.
func (r *Repository) Path() string {
	return r.path
}

// EnsureSchema creates the database schema if it doesn't exist.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	schema := `
	-- One row per catalog: the latest snapshot of its graph
	CREATE TABLE IF NOT EXISTS snapshots (
		catalog_id TEXT PRIMARY KEY,
		version INTEGER NOT NULL,
		nquads TEXT NOT NULL,
		fact_count INTEGER NOT NULL,
		saved_at TIMESTAMP NOT NULL
	);

	-- Audit log (completed catalog mutations)
	CREATE TABLE IF NOT EXISTS audit_log (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		action TEXT NOT NULL,
		data_product_id TEXT,
		details TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_audit_log_data_product ON audit_log(data_product_id);
	CREATE INDEX IF NOT EXISTS idx_audit_log_action ON audit_log(action);
	CREATE INDEX IF NOT EXISTS idx_audit_log_created ON audit_log(created_at);
	`

	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return unavailable("creating schema", err)
	}
	return nil
}

// Load returns the stored graph of a catalog, or nil if none was saved.
func (r *Repository) Load(ctx context.Context, catalogID string) (*graph.CatalogGraph, error) {
	var nquads string
	err := r.db.GetContext(ctx, &nquads, `SELECT nquads FROM snapshots WHERE catalog_id = ?`, catalogID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, unavailable("loading snapshot", err)
	}

	g, err := graph.ReadNQuads(strings.NewReader(nquads))
	if err != nil {
		return nil, unavailable("decoding snapshot", err)
	}
	return g, nil
}

// Save replaces the stored snapshot of a catalog and bumps its version.
func (r *Repository) Save(ctx context.Context, catalogID string, g *graph.CatalogGraph) (*entities.SnapshotInfo, error) {
	var buf strings.Builder
	if err := g.WriteNQuads(&buf); err != nil {
		return nil, fmt.Errorf("encoding snapshot: %w", err)
	}

	info := &entities.SnapshotInfo{
		CatalogID: catalogID,
		FactCount: g.Len(),
		SavedAt:   timeNow().UTC(),
	}

	query := `
		INSERT INTO snapshots (catalog_id, version, nquads, fact_count, saved_at)
		VALUES (?, 1, ?, ?, ?)
		ON CONFLICT(catalog_id) DO UPDATE SET
			version = snapshots.version + 1,
			nquads = excluded.nquads,
			fact_count = excluded.fact_count,
			saved_at = excluded.saved_at
		RETURNING version
	`
	err := r.db.QueryRowxContext(ctx, query, catalogID, buf.String(), info.FactCount, info.SavedAt).Scan(&info.Version)
	if err != nil {
		return nil, unavailable("saving snapshot", err)
	}
	return info, nil
}

// snapshotRow maps the metadata columns of the snapshots table.
type snapshotRow struct {
	CatalogID string    `db:"catalog_id"`
	Version   int       `db:"version"`
	FactCount int       `db:"fact_count"`
	SavedAt   time.Time `db:"saved_at"`
}

// Info returns metadata of the stored snapshot, or nil if none was saved.
func (r *Repository) Info(ctx context.Context, catalogID string) (*entities.SnapshotInfo, error) {
	var row snapshotRow
	err := r.db.GetContext(ctx, &row,
		`SELECT catalog_id, version, fact_count, saved_at FROM snapshots WHERE catalog_id = ?`, catalogID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, unavailable("reading snapshot info", err)
	}
	return &entities.SnapshotInfo{
		CatalogID: row.CatalogID,
		Version:   row.Version,
		FactCount: row.FactCount,
		SavedAt:   row.SavedAt,
	}, nil
}

// LogAction logs an action to the audit log.
func (r *Repository) LogAction(ctx context.Context, action string, dataProductID string, details map[string]any) error {
	var detailsJSON sql.NullString
	if details != nil {
		data, err := json.Marshal(details)
		if err != nil {
			return fmt.Errorf("marshaling details: %w", err)
		}
		detailsJSON = sql.NullString{String: string(data), Valid: true}
	}

	var dpID sql.NullString
	if dataProductID != "" {
		dpID = sql.NullString{String: dataProductID, Valid: true}
	}

	query := `INSERT INTO audit_log (action, data_product_id, details, created_at) VALUES (?, ?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, query, action, dpID, detailsJSON, timeNow().UTC()); err != nil {
		return unavailable("logging action", err)
	}
	return nil
}

// FindAuditLog finds audit log entries for a data product, newest first.
func (r *Repository) FindAuditLog(ctx context.Context, dataProductID string) ([]entities.AuditEntry, error) {
	query := `
		SELECT id, action, data_product_id, details, created_at
		FROM audit_log
		WHERE data_product_id = ?
		ORDER BY created_at DESC, id DESC
	`
	return r.queryAuditLog(ctx, query, dataProductID)
}

// RecentAuditLog returns the newest entries. An empty action matches all.
func (r *Repository) RecentAuditLog(ctx context.Context, action string, limit int) ([]entities.AuditEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT id, action, data_product_id, details, created_at
		FROM audit_log
		WHERE (? = '' OR action = ?)
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`
	return r.queryAuditLog(ctx, query, action, action, limit)
}

// auditRow maps the columns of the audit_log table.
type auditRow struct {
	ID            int64          `db:"id"`
	Action        string         `db:"action"`
	DataProductID sql.NullString `db:"data_product_id"`
	Details       sql.NullString `db:"details"`
	CreatedAt     time.Time      `db:"created_at"`
}

// queryAuditLog is a helper to execute audit log queries.
func (r *Repository) queryAuditLog(ctx context.Context, query string, args ...any) ([]entities.AuditEntry, error) {
	var rows []auditRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, unavailable("querying audit log", err)
	}

	entries := make([]entities.AuditEntry, 0, len(rows))
	for _, row := range rows {
		entry := entities.AuditEntry{
			ID:            row.ID,
			Action:        row.Action,
			DataProductID: row.DataProductID.String,
			CreatedAt:     row.CreatedAt,
		}
		if row.Details.Valid && row.Details.String != "" {
			if err := json.Unmarshal([]byte(row.Details.String), &entry.Details); err != nil {
				return nil, fmt.Errorf("unmarshaling details of entry %d: %w", row.ID, err)
			}
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, entities.ErrPersistenceUnavailable, err)
}
