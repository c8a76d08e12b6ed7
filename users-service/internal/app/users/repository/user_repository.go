package repository

import (
	"context"
	"errors"
	"fmt"

	"auctionhouse/pkg/metrics"
	"auctionhouse/users-service/internal/app/users/entity"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	serviceName = "users-service"

	uniqueViolation = "23505"

	constraintEmail    = "users_email_key"
	constraintUsername = "users_username_key"
)

const userColumns = `id, username, first_name, last_name, email, birth_date,
	municipality, locality, password_hash, is_admin, created_at`

type userRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *entity.User) (err error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpInsert, "users")
	defer func() { timer.ObserveDuration(err) }()

	query := `
		INSERT INTO users (` + userColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err = r.db.Exec(ctx, query,
		user.ID, user.Username, user.FirstName, user.LastName, user.Email, user.BirthDate,
		user.Municipality, user.Locality, user.PasswordHash, user.IsAdmin, user.CreatedAt,
	)
	return mapError(err, "create user")
}

func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username)
}

func (r *userRepository) getOne(ctx context.Context, query string, arg interface{}) (user *entity.User, err error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpSelect, "users")
	defer func() {
		if errors.Is(err, ErrNotFound) {
			timer.ObserveDuration(nil)
			return
		}
		timer.ObserveDuration(err)
	}()

	rows, err := r.db.Query(ctx, query, arg)
	if err != nil {
		return nil, mapError(err, "get user")
	}
	user, err = pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByName[entity.User])
	if err != nil {
		return nil, mapError(err, "get user")
	}
	return user, nil
}

func (r *userRepository) ExistsByEmail(ctx context.Context, email string, excludeID uuid.UUID) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1 AND id <> $2)`, email, excludeID)
}

func (r *userRepository) ExistsByUsername(ctx context.Context, username string, excludeID uuid.UUID) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE username = $1 AND id <> $2)`, username, excludeID)
}

func (r *userRepository) exists(ctx context.Context, query string, value string, excludeID uuid.UUID) (found bool, err error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpSelect, "users")
	defer func() { timer.ObserveDuration(err) }()

	if err = r.db.QueryRow(ctx, query, value, excludeID).Scan(&found); err != nil {
		return false, mapError(err, "check user uniqueness")
	}
	return found, nil
}

// Update writes the profile columns and the password hash in one statement.
// The admin flag is never changed here.
func (r *userRepository) Update(ctx context.Context, user *entity.User) (err error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpUpdate, "users")
	defer func() { timer.ObserveDuration(err) }()

	query := `
		UPDATE users
		SET username = $1, first_name = $2, last_name = $3, email = $4,
			birth_date = $5, municipality = $6, locality = $7, password_hash = $8
		WHERE id = $9
	`
	tag, err := r.db.Exec(ctx, query,
		user.Username, user.FirstName, user.LastName, user.Email,
		user.BirthDate, user.Municipality, user.Locality, user.PasswordHash, user.ID,
	)
	if err != nil {
		return mapError(err, "update user")
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *userRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) (err error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpUpdate, "users")
	defer func() { timer.ObserveDuration(err) }()

	tag, err := r.db.Exec(ctx, `UPDATE users SET password_hash = $1 WHERE id = $2`, passwordHash, id)
	if err != nil {
		return mapError(err, "update password")
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *userRepository) Delete(ctx context.Context, id uuid.UUID) (err error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpDelete, "users")
	defer func() { timer.ObserveDuration(err) }()

	tag, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return mapError(err, "delete user")
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *userRepository) List(ctx context.Context) (users []entity.User, err error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpSelect, "users")
	defer func() { timer.ObserveDuration(err) }()

	rows, err := r.db.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at ASC, username ASC`)
	if err != nil {
		return nil, mapError(err, "list users")
	}
	users, err = pgx.CollectRows(rows, pgx.RowToStructByName[entity.User])
	if err != nil {
		return nil, mapError(err, "list users")
	}
	return users, nil
}

// mapError turns pgx errors into repository errors. Unique violations are
// told apart by constraint name.
func mapError(err error, op string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		switch pgErr.ConstraintName {
		case constraintEmail:
			return ErrDuplicateEmail
		case constraintUsername:
			return ErrDuplicateUsername
		}
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}
