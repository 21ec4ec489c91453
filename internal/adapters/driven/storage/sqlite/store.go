package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/paybridge/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/paybridge/internal/core/domain"
	"github.com/custodia-labs/paybridge/internal/core/ports/driven"
)

// Store is a unified SQLite-based storage that provides access to
// the storage ports through wrapper types.
type Store struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.paybridge/data/paybridge.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".paybridge", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "paybridge.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
		now:  time.Now,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// RecordStore returns a RecordStore interface backed by this store.
func (s *Store) RecordStore() driven.RecordStore {
	return &recordStore{store: s}
}

// ProcedureCaller returns a ProcedureCaller interface backed by this store.
func (s *Store) ProcedureCaller() driven.ProcedureCaller {
	return &recordStore{store: s}
}

// CredentialStore returns a CredentialStore interface backed by this store.
func (s *Store) CredentialStore() driven.CredentialStore {
	return &credentialStore{store: s}
}

// StateStore returns a PendingStateStore interface backed by this store.
func (s *Store) StateStore() driven.PendingStateStore {
	return &stateStore{store: s}
}

// migrate runs all pending migrations and records each applied version.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if name := entry.Name(); strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// "001_initial.up.sql" -> 1
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Credential Store ====================

// credentialStore implements driven.CredentialStore.
type credentialStore struct {
	store *Store
}

var _ driven.CredentialStore = (*credentialStore)(nil)

// Save stores or replaces the credential of a session.
func (s *credentialStore) Save(ctx context.Context, session domain.SessionID, cred domain.OAuthCredential) error {
	if cred.UpdatedAt.IsZero() {
		cred.UpdatedAt = s.store.now()
	}
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO oauth_credentials (session_id, access_token, refresh_token, token_type, expires_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(session_id) DO UPDATE SET
			access_token = excluded.access_token,
			refresh_token = excluded.refresh_token,
			token_type = excluded.token_type,
			expires_at = excluded.expires_at,
			updated_at = excluded.updated_at
	`, string(session), cred.AccessToken, cred.RefreshToken, cred.TokenType,
		cred.ExpiresAt.UnixMilli(), cred.UpdatedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("saving credential: %w", err)
	}
	return nil
}

// Get retrieves the credential of a session.
func (s *credentialStore) Get(ctx context.Context, session domain.SessionID) (*domain.OAuthCredential, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT access_token, refresh_token, token_type, expires_at, updated_at
		FROM oauth_credentials WHERE session_id = ?
	`, string(session))

	var cred domain.OAuthCredential
	var expiresAt, updatedAt int64
	if err := row.Scan(&cred.AccessToken, &cred.RefreshToken, &cred.TokenType, &expiresAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning credential: %w", err)
	}
	cred.ExpiresAt = time.UnixMilli(expiresAt)
	cred.UpdatedAt = time.UnixMilli(updatedAt)
	return &cred, nil
}

// Delete removes the credential of a session.
func (s *credentialStore) Delete(ctx context.Context, session domain.SessionID) error {
	if _, err := s.store.db.ExecContext(ctx,
		"DELETE FROM oauth_credentials WHERE session_id = ?", string(session)); err != nil {
		return fmt.Errorf("deleting credential: %w", err)
	}
	return nil
}

// ==================== Pending State Store ====================

// stateStore implements driven.PendingStateStore.
// Expired rows are pruned on every Put and Consume.
type stateStore struct {
	store *Store
}

var _ driven.PendingStateStore = (*stateStore)(nil)

// Put records an issued state.
func (s *stateStore) Put(ctx context.Context, state domain.PendingState) error {
	if err := s.prune(ctx); err != nil {
		return err
	}
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO pending_states (token, session_id, account_type, created_at, expires_at)
		VALUES (?, ?, ?, ?, ?)
	`, state.Token, string(state.Session), string(state.AccountType),
		state.CreatedAt.UnixMilli(), state.ExpiresAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("saving pending state: %w", err)
	}
	return nil
}

// Consume atomically deletes and returns a live state.
func (s *stateStore) Consume(ctx context.Context, token string) (*domain.PendingState, error) {
	if err := s.prune(ctx); err != nil {
		return nil, err
	}
	row := s.store.db.QueryRowContext(ctx, `
		DELETE FROM pending_states WHERE token = ? AND expires_at > ?
		RETURNING session_id, account_type, created_at, expires_at
	`, token, s.store.now().UnixMilli())

	state := domain.PendingState{Token: token}
	var sessionID, accountType string
	var createdAt, expiresAt int64
	if err := row.Scan(&sessionID, &accountType, &createdAt, &expiresAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrInvalidState
		}
		return nil, fmt.Errorf("consuming pending state: %w", err)
	}
	state.Session = domain.SessionID(sessionID)
	state.AccountType = domain.AccountType(accountType)
	state.CreatedAt = time.UnixMilli(createdAt)
	state.ExpiresAt = time.UnixMilli(expiresAt)
	return &state, nil
}

func (s *stateStore) prune(ctx context.Context) error {
	if _, err := s.store.db.ExecContext(ctx,
		"DELETE FROM pending_states WHERE expires_at <= ?", s.store.now().UnixMilli()); err != nil {
		return fmt.Errorf("pruning pending states: %w", err)
	}
	return nil
}
