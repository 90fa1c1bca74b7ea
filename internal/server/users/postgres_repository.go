package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/image-cloud/api/internal/common"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) (*PostgresRepository, error) {
	return &PostgresRepository{db: db}, nil
}

func isDuplicate(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

func (r *PostgresRepository) Create(ctx context.Context, user *User) (*User, error) {

	query :=
		`INSERT INTO users (id, username, username_lower, email, email_lower, password_hash, is_admin, quota)
		 VALUES ($1, $2, LOWER($2), $3, LOWER($3), $4, $5, $6)
		 RETURNING created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		user.ID, user.Username, user.Email, user.PasswordHash, user.Admin, user.Quota).Scan(&user.CreatedAt)

	if err != nil {
		if isDuplicate(err) {
			return nil, common.ErrDuplicate
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	user.UsernameLower = strings.ToLower(user.Username)
	user.EmailLower = strings.ToLower(user.Email)

	return user, nil
}

func (r *PostgresRepository) scanOne(row *sql.Row) (*User, error) {
	user := &User{}
	err := row.Scan(&user.ID, &user.Username, &user.UsernameLower, &user.Email,
		&user.EmailLower, &user.PasswordHash, &user.Admin, &user.Quota, &user.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

const userColumns = "id, username, username_lower, email, email_lower, password_hash, is_admin, quota, created_at"

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepository) GetByLogin(ctx context.Context, login string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username_lower = $1 OR email_lower = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, login))
}

func (r *PostgresRepository) GetByUsername(ctx context.Context, usernameLower string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username_lower = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, usernameLower))
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, emailLower string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email_lower = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, emailLower))
}

func (r *PostgresRepository) List(ctx context.Context) ([]*User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*User
	for rows.Next() {
		user := &User{}
		err := rows.Scan(&user.ID, &user.Username, &user.UsernameLower, &user.Email,
			&user.EmailLower, &user.PasswordHash, &user.Admin, &user.Quota, &user.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func (r *PostgresRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return count, nil
}

// Update applies only the fields set in upd. The normalized columns are
// recomputed in SQL so they can never drift from the display values.
func (r *PostgresRepository) Update(ctx context.Context, id string, upd Update) error {

	set := make([]string, 0, 4)
	args := make([]any, 0, 5)

	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if upd.Username != nil {
		p := arg(*upd.Username)
		set = append(set, fmt.Sprintf("username = %s, username_lower = LOWER(%s)", p, p))
	}
	if upd.Email != nil {
		p := arg(*upd.Email)
		set = append(set, fmt.Sprintf("email = %s, email_lower = LOWER(%s)", p, p))
	}
	if upd.PasswordHash != nil {
		set = append(set, fmt.Sprintf("password_hash = %s", arg(*upd.PasswordHash)))
	}
	if upd.Quota != nil {
		set = append(set, fmt.Sprintf("quota = %s", arg(*upd.Quota)))
	}

	if len(set) == 0 {
		return nil
	}

	query := fmt.Sprintf("UPDATE users SET %s WHERE id = %s", strings.Join(set, ", "), arg(id))

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		if isDuplicate(err) {
			return common.ErrDuplicate
		}
		return fmt.Errorf("db error: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if affected == 0 {
		return common.ErrNotFound
	}

	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if affected == 0 {
		return common.ErrNotFound
	}

	return nil
}
