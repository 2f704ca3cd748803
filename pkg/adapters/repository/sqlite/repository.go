package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	_ "github.com/tursodatabase/libsql-client-go/libsql" // Turso driver
	_ "modernc.org/sqlite"                               // Local SQLite driver

	"github.com/wadjakorntonsri/go-devlinks/pkg/core/domain"
	"github.com/wadjakorntonsri/go-devlinks/pkg/ports"
)

// SQLiteRepository stores profiles in a table and link collections as
// path-addressed JSON documents.
type SQLiteRepository struct {
	db       *sql.DB
	watchers *watchers
}

func NewSQLiteRepository(dbURL string) (*SQLiteRepository, error) {
	driverName := "sqlite"
	if strings.Contains(dbURL, "libsql://") || strings.Contains(dbURL, "wss://") {
		driverName = "libsql"
	}

	db, err := sql.Open(driverName, dbURL)
	if err != nil {
		return nil, err
	}
	if driverName == "sqlite" {
		// A single writer avoids SQLITE_BUSY on local files.
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	if err := migrate(db); err != nil {
		return nil, err
	}

	return &SQLiteRepository{db: db, watchers: newWatchers()}, nil
}

func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

func migrate(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS profiles (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		uid TEXT NOT NULL UNIQUE,
		full_name TEXT NOT NULL DEFAULT '',
		email TEXT NOT NULL DEFAULT '',
		profile_picture TEXT NOT NULL DEFAULT '',
		provider TEXT NOT NULL DEFAULT '',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_profiles_uid ON profiles(uid);

	CREATE TABLE IF NOT EXISTS documents (
		path TEXT PRIMARY KEY,
		collection TEXT NOT NULL,
		doc_id TEXT NOT NULL,
		data TEXT NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_documents_collection ON documents(collection);

	CREATE TABLE IF NOT EXISTS collection_versions (
		collection TEXT PRIMARY KEY,
		version INTEGER NOT NULL
	);
	`
	_, err := db.Exec(query)
	return err
}

// --- Profile Repository Implementation ---

const profileColumns = `id, uid, full_name, email, profile_picture, provider, created_at, updated_at`

func (r *SQLiteRepository) Create(ctx context.Context, profile *domain.Profile) error {
	query := `INSERT INTO profiles (uid, full_name, email, profile_picture, provider, created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?)`

	res, err := r.db.ExecContext(ctx, query, profile.UserID, profile.FullName, profile.Email,
		profile.ProfilePicture, profile.Provider, profile.CreatedAt, profile.UpdatedAt)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	profile.ID = id
	return nil
}

func (r *SQLiteRepository) GetByUserID(ctx context.Context, uid string) (*domain.Profile, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+profileColumns+` FROM profiles WHERE uid = ?`, uid)
	return scanProfile(row)
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id int64) (*domain.Profile, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+profileColumns+` FROM profiles WHERE id = ?`, id)
	return scanProfile(row)
}

func (r *SQLiteRepository) Update(ctx context.Context, profile *domain.Profile) error {
	query := `UPDATE profiles SET full_name = ?, email = ?, profile_picture = ?, provider = ?, updated_at = ? WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query, profile.FullName, profile.Email, profile.ProfilePicture,
		profile.Provider, profile.UpdatedAt, profile.ID)
	return err
}

func scanProfile(row *sql.Row) (*domain.Profile, error) {
	var p domain.Profile
	err := row.Scan(&p.ID, &p.UserID, &p.FullName, &p.Email, &p.ProfilePicture, &p.Provider, &p.CreatedAt, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func now() time.Time {
	return time.Now().UTC()
}

// Ensure interface compliance
var (
	_ ports.ProfileRepository = (*SQLiteRepository)(nil)
	_ ports.DocumentStore     = (*SQLiteRepository)(nil)
)
