package repository

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"archiviz/internal/common/apperr"
	"archiviz/internal/room/models"

	"github.com/fxamacker/cbor/v2"
)

//go:embed migrations/*.sql
var migrations embed.FS

// ============================================================
// SQLite Repository
// ============================================================

type Repository struct {
	db *sql.DB
}

func New(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Init применяет миграции.
func (r *Repository) Init(ctx context.Context) error {
	if err := r.runMigrations(ctx); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	return nil
}

// Ping проверяет доступность базы (для readiness-проб).
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Save сохраняет дизайн; полезная нагрузка кодируется в CBOR.
func (r *Repository) Save(ctx context.Context, d models.Design) error {
	payload, err := cbor.Marshal(d)
	if err != nil {
		return fmt.Errorf("encode design: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
        INSERT INTO designs (id, name, payload, created_at)
        VALUES (?, ?, ?, ?)
        ON CONFLICT(id) DO UPDATE SET name = excluded.name, payload = excluded.payload
    `, d.ID, d.Name, payload, d.CreatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("insert design: %w", err)
	}
	return nil
}

func (r *Repository) Get(ctx context.Context, id string) (*models.Design, error) {
	row := r.db.QueryRowContext(ctx, `
        SELECT payload, created_at
        FROM designs
        WHERE id = ?
    `, id)

	var payload []byte
	var createdAt string
	if err := row.Scan(&payload, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFoundf("design %s not found", id)
		}
		return nil, err
	}

	var d models.Design
	if err := cbor.Unmarshal(payload, &d); err != nil {
		return nil, fmt.Errorf("decode design %s: %w", id, err)
	}
	d.CreatedAt = parseTime(createdAt)
	return &d, nil
}

func (r *Repository) List(ctx context.Context) ([]models.DesignSummary, error) {
	rows, err := r.db.QueryContext(ctx, `
        SELECT id, name, created_at
        FROM designs
        ORDER BY created_at DESC, id
    `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.DesignSummary{}
	for rows.Next() {
		var s models.DesignSummary
		var createdAt string
		if err := rows.Scan(&s.ID, &s.Name, &createdAt); err != nil {
			return nil, err
		}
		s.CreatedAt = parseTime(createdAt)
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM designs WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return apperr.NotFoundf("design %s not found", id)
	}
	return nil
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// ============================================================
// Migrations
// ============================================================

func (r *Repository) runMigrations(ctx context.Context) error {
	entries, err := migrations.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("read migrations: %w", err)
	}
	for _, entry := range entries {
		data, err := migrations.ReadFile("migrations/" + entry.Name())
		if err != nil {
			return fmt.Errorf("read migration %s: %w", entry.Name(), err)
		}
		if _, err := r.db.ExecContext(ctx, string(data)); err != nil {
			return fmt.Errorf("apply migration %s: %w", entry.Name(), err)
		}
	}
	return nil
}

// OpenSQLite открывает sqlite по указанному пути.
func OpenSQLite(dbPath string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("mkdir db dir: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?cache=shared&mode=rwc&_pragma=busy_timeout=5000", dbPath)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	return db, nil
}
