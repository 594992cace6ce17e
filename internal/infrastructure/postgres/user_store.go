package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/user-directory/internal/domain/entity"
	"github.com/oksasatya/user-directory/internal/domain/repository"
)

// DB is the subset of pgxpool.Pool the store needs. Declared here so tests
// can substitute a mock pool.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// UserRepository is the Postgres-backed user store. Email uniqueness and the
// one-edge-per-pair rule are enforced by the schema; constraint errors are
// mapped to the repository sentinels instead of being pre-checked.
type UserRepository struct {
	db     DB
	logger *logrus.Logger
}

func NewUserRepository(db DB, logger *logrus.Logger) *UserRepository {
	return &UserRepository{db: db, logger: logger}
}

const userColumns = "id, name, email, phone, date_of_birth, profile_image, created_at"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	u.CreatedAt = time.Now().UTC()

	_, err := r.db.Exec(ctx, `
		INSERT INTO users (id, name, email, phone, date_of_birth, profile_image, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, u.ID, u.Name, u.Email, u.Phone, u.DateOfBirth, u.ProfileImage, u.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicateEmail
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	u := &entity.User{}
	row := r.db.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE id = $1
	`, id)

	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Phone, &u.DateOfBirth,
		&u.ProfileImage, &u.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("select user: %w", err)
	}
	return u, nil
}

func (r *UserRepository) List(ctx context.Context) ([]*entity.User, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+userColumns+`
		FROM users
		ORDER BY created_at
	`)
	if err != nil {
		return nil, fmt.Errorf("select users: %w", err)
	}
	defer rows.Close()

	var users []*entity.User
	for rows.Next() {
		u := &entity.User{}
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Phone, &u.DateOfBirth,
			&u.ProfileImage, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *UserRepository) Update(ctx context.Context, id string, upd repository.UserUpdate) (*entity.User, error) {
	if upd.IsZero() {
		return r.GetByID(ctx, id)
	}

	sets := make([]string, 0, 5)
	args := make([]any, 0, 6)
	add := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
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

	u := &entity.User{}
	row := r.db.QueryRow(ctx, fmt.Sprintf(`
		UPDATE users
		SET %s
		WHERE id = $%d
		RETURNING `+userColumns,
		strings.Join(sets, ", "), len(args)), args...)

	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Phone, &u.DateOfBirth,
		&u.ProfileImage, &u.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		if isUniqueViolation(err) {
			return nil, repository.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	return u, nil
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	// Best-effort edge cleanup; the user row is already gone, so a failure
	// here is logged rather than returned.
	if _, err := r.db.Exec(ctx, `
		DELETE FROM followers WHERE follower_id = $1 OR following_id = $1
	`, id); err != nil {
		r.logger.WithError(err).WithField("user_id", id).Error("follower cleanup failed")
	}
	return nil
}

func (r *UserRepository) Follow(ctx context.Context, followerID, targetID string) error {
	if followerID == targetID {
		return repository.ErrSelfFollow
	}

	var n int
	if err := r.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM users WHERE id = $1 OR id = $2
	`, followerID, targetID).Scan(&n); err != nil {
		return fmt.Errorf("check users: %w", err)
	}
	if n != 2 {
		return repository.ErrNotFound
	}

	// The composite primary key closes the check-then-insert race.
	_, err := r.db.Exec(ctx, `
		INSERT INTO followers (follower_id, following_id, created_at)
		VALUES ($1, $2, $3)
	`, followerID, targetID, time.Now().UTC())
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrAlreadyFollowing
		}
		return fmt.Errorf("insert follow edge: %w", err)
	}
	return nil
}

func (r *UserRepository) Unfollow(ctx context.Context, followerID, targetID string) error {
	// Idempotent: deleting a missing edge is a no-op.
	_, err := r.db.Exec(ctx, `
		DELETE FROM followers WHERE follower_id = $1 AND following_id = $2
	`, followerID, targetID)
	if err != nil {
		return fmt.Errorf("delete follow edge: %w", err)
	}
	return nil
}

func (r *UserRepository) CountFollowers(ctx context.Context, id string) (int, error) {
	return r.countEdges(ctx, `SELECT COUNT(*) FROM followers WHERE following_id = $1`, id)
}

func (r *UserRepository) CountFollowing(ctx context.Context, id string) (int, error) {
	return r.countEdges(ctx, `SELECT COUNT(*) FROM followers WHERE follower_id = $1`, id)
}

func (r *UserRepository) countEdges(ctx context.Context, query, id string) (int, error) {
	var n int
	if err := r.db.QueryRow(ctx, query, id).Scan(&n); err != nil {
		return 0, fmt.Errorf("count follow edges: %w", err)
	}
	return n, nil
}

func (r *UserRepository) FollowerIDs(ctx context.Context, id string) ([]string, error) {
	return r.edgeIDs(ctx, `SELECT follower_id FROM followers WHERE following_id = $1`, id)
}

func (r *UserRepository) FollowingIDs(ctx context.Context, id string) ([]string, error) {
	return r.edgeIDs(ctx, `SELECT following_id FROM followers WHERE follower_id = $1`, id)
}

func (r *UserRepository) edgeIDs(ctx context.Context, query, id string) ([]string, error) {
	rows, err := r.db.Query(ctx, query, id)
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

func (r *UserRepository) Close() error {
	r.db.Close()
	return nil
}

var _ repository.UserRepository = (*UserRepository)(nil)
