// Package sqlite provides a SQLite-backed user store for single-node
// deployments where running Postgres is overkill.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"github.com/oksasatya/user-directory/internal/domain/entity"
	"github.com/oksasatya/user-directory/internal/domain/repository"
	"github.com/oksasatya/user-directory/internal/infrastructure/sqlite/migrations"
)

// Store persists users and follow edges in a SQLite file.
type Store struct {
	sqlDB  *sql.DB
	logger *logrus.Logger
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens the SQLite user store at path and applies embedded migrations.
func Open(path string, logger *logrus.Logger) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB, logger: logger}, nil
}

// applyMigrations executes each embedded .sql file at most once, in name
// order, tracked in a schema_migrations table.
func applyMigrations(sqlDB *sql.DB, migrationFS fs.FS) error {
	entries, err := fs.ReadDir(migrationFS, ".")
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)

	if _, err := sqlDB.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			name TEXT PRIMARY KEY,
			applied_at INTEGER NOT NULL
		)
	`); err != nil {
		return fmt.Errorf("ensure migration table: %w", err)
	}

	for _, file := range files {
		var n int
		if err := sqlDB.QueryRow(`SELECT COUNT(*) FROM schema_migrations WHERE name = ?`, file).Scan(&n); err != nil {
			return fmt.Errorf("check migration %s: %w", file, err)
		}
		if n > 0 {
			continue
		}

		content, err := fs.ReadFile(migrationFS, file)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", file, err)
		}

		tx, err := sqlDB.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %s: %w", file, err)
		}
		if _, err := tx.Exec(string(content)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("exec migration %s: %w", file, err)
		}
		if _, err := tx.Exec(`INSERT INTO schema_migrations (name, applied_at) VALUES (?, ?)`,
			file, toMillis(time.Now())); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record migration %s: %w", file, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %s: %w", file, err)
		}
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}

func (s *Store) Create(ctx context.Context, u *entity.User) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	u.CreatedAt = time.Now().UTC()

	_, err := s.sqlDB.ExecContext(ctx, `
		INSERT INTO users (id, name, email, phone, date_of_birth, profile_image, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, u.ID, u.Name, u.Email, u.Phone, u.DateOfBirth, u.ProfileImage, toMillis(u.CreatedAt))
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicateEmail
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *Store) scanUser(row *sql.Row) (*entity.User, error) {
	u := &entity.User{}
	var createdAt int64
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Phone, &u.DateOfBirth,
		&u.ProfileImage, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	u.CreatedAt = fromMillis(createdAt)
	return u, nil
}

func (s *Store) GetByID(ctx context.Context, id string) (*entity.User, error) {
	return s.scanUser(s.sqlDB.QueryRowContext(ctx, `
		SELECT id, name, email, phone, date_of_birth, profile_image, created_at
		FROM users
		WHERE id = ?
	`, id))
}

func (s *Store) List(ctx context.Context) ([]*entity.User, error) {
	rows, err := s.sqlDB.QueryContext(ctx, `
		SELECT id, name, email, phone, date_of_birth, profile_image, created_at
		FROM users
		ORDER BY rowid
	`)
	if err != nil {
		return nil, fmt.Errorf("select users: %w", err)
	}
	defer rows.Close()

	var users []*entity.User
	for rows.Next() {
		u := &entity.User{}
		var createdAt int64
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Phone, &u.DateOfBirth,
			&u.ProfileImage, &createdAt); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		u.CreatedAt = fromMillis(createdAt)
		users = append(users, u)
	}
	return users, rows.Err()
}

func (s *Store) Update(ctx context.Context, id string, upd repository.UserUpdate) (*entity.User, error) {
	if upd.IsZero() {
		return s.GetByID(ctx, id)
	}

	sets := make([]string, 0, 5)
	args := make([]any, 0, 6)
	add := func(col string, v any) {
		sets = append(sets, col+" = ?")
		args = append(args, v)
	}
	if upd.Name != nil {
		add("name", *upd.Name)
	}
	if upd.Email != nil {
		add("email", *upd.Email)
	}
	if upd.Phone != nil {
		add("phone", *upd.Phone)
	}
	if upd.DateOfBirth != nil {
		add("date_of_birth", *upd.DateOfBirth)
	}
	if upd.ProfileImage != nil {
		add("profile_image", *upd.ProfileImage)
	}
	args = append(args, id)

	res, err := s.sqlDB.ExecContext(ctx,
		fmt.Sprintf("UPDATE users SET %s WHERE id = ?", strings.Join(sets, ", ")), args...)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, repository.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	if affected == 0 {
		return nil, repository.ErrNotFound
	}
	return s.GetByID(ctx, id)
}

func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.sqlDB.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if affected == 0 {
		return repository.ErrNotFound
	}

	// Best-effort edge cleanup; failure is logged, not returned.
	if _, err := s.sqlDB.ExecContext(ctx, `
		DELETE FROM followers WHERE follower_id = ? OR following_id = ?
	`, id, id); err != nil {
		s.logger.WithError(err).WithField("user_id", id).Error("follower cleanup failed")
	}
	return nil
}

func (s *Store) Follow(ctx context.Context, followerID, targetID string) error {
	if followerID == targetID {
		return repository.ErrSelfFollow
	}

	var n int
	if err := s.sqlDB.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM users WHERE id = ? OR id = ?
	`, followerID, targetID).Scan(&n); err != nil {
		return fmt.Errorf("check users: %w", err)
	}
	if n != 2 {
		return repository.ErrNotFound
	}

	// The composite primary key closes the check-then-insert race.
	_, err := s.sqlDB.ExecContext(ctx, `
		INSERT INTO followers (follower_id, following_id, created_at)
		VALUES (?, ?, ?)
	`, followerID, targetID, toMillis(time.Now()))
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrAlreadyFollowing
		}
		return fmt.Errorf("insert follow edge: %w", err)
	}
	return nil
}

func (s *Store) Unfollow(ctx context.Context, followerID, targetID string) error {
	// Idempotent: deleting a missing edge is a no-op.
	_, err := s.sqlDB.ExecContext(ctx, `
		DELETE FROM followers WHERE follower_id = ? AND following_id = ?
	`, followerID, targetID)
	if err != nil {
		return fmt.Errorf("delete follow edge: %w", err)
	}
	return nil
}

func (s *Store) CountFollowers(ctx context.Context, id string) (int, error) {
	return s.countEdges(ctx, `SELECT COUNT(*) FROM followers WHERE following_id = ?`, id)
}

func (s *Store) CountFollowing(ctx context.Context, id string) (int, error) {
	return s.countEdges(ctx, `SELECT COUNT(*) FROM followers WHERE follower_id = ?`, id)
}

func (s *Store) countEdges(ctx context.Context, query, id string) (int, error) {
	var n int
	if err := s.sqlDB.QueryRowContext(ctx, query, id).Scan(&n); err != nil {
		return 0, fmt.Errorf("count follow edges: %w", err)
	}
	return n, nil
}

func (s *Store) FollowerIDs(ctx context.Context, id string) ([]string, error) {
	return s.edgeIDs(ctx, `SELECT follower_id FROM followers WHERE following_id = ?`, id)
}

func (s *Store) FollowingIDs(ctx context.Context, id string) ([]string, error) {
	return s.edgeIDs(ctx, `SELECT following_id FROM followers WHERE follower_id = ?`, id)
}

func (s *Store) edgeIDs(ctx context.Context, query, id string) ([]string, error) {
	rows, err := s.sqlDB.QueryContext(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("select follow edges: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var edgeID string
		if err := rows.Scan(&edgeID); err != nil {
			return nil, fmt.Errorf("scan follow edge: %w", err)
		}
		ids = append(ids, edgeID)
	}
	return ids, rows.Err()
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

var _ repository.UserRepository = (*Store)(nil)
