package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ereignis/ereignis-api/internal/domain"
)

// UserRepository defines persistence access for accounts.
type UserRepository interface {
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	Insert(ctx context.Context, user *domain.User) error
	UpdateFields(ctx context.Context, id int64, fields domain.UserFields) (*domain.User, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, page domain.PageRequest) ([]domain.User, error)
}

const userColumns = `id, username, email, phone, password_hash, confirmed, roles, created_at, updated_at`

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

// Insert relies on the unique indexes; a collision surfaces as domain.ErrDuplicate.
func (r *userRepository) Insert(ctx context.Context, user *domain.User) error {
	const query = `
        INSERT INTO users (username, email, phone, password_hash)
        VALUES ($1, $2, $3, $4)
        RETURNING ` + userColumns

	row := r.pool.QueryRow(ctx, query,
		user.Username,
		user.Email,
		user.Phone,
		user.PasswordHash,
	)
	created, err := scanUser(row)
	if err != nil {
		return translate(err)
	}
	*user = *created
	return nil
}

func (r *userRepository) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	return r.fetchSingle(ctx, `SELECT `+userColumns+` FROM users WHERE id=$1`, id)
}

func (r *userRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.fetchSingle(ctx, `SELECT `+userColumns+` FROM users WHERE username=$1`, username)
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.fetchSingle(ctx, `SELECT `+userColumns+` FROM users WHERE email=$1`, email)
}

func (r *userRepository) UpdateFields(ctx context.Context, id int64, fields domain.UserFields) (*domain.User, error) {
	sets := []string{"updated_at=NOW()"}
	args := []any{}

	if fields.Username != nil {
		args = append(args, *fields.Username)
		sets = append(sets, fmt.Sprintf("username=$%d", len(args)))
	}
	if fields.Email != nil {
		args = append(args, *fields.Email)
		sets = append(sets, fmt.Sprintf("email=$%d", len(args)))
	}
	if fields.Phone != nil {
		args = append(args, *fields.Phone)
		sets = append(sets, fmt.Sprintf("phone=$%d", len(args)))
	}
	if fields.Confirmed != nil {
		args = append(args, *fields.Confirmed)
		sets = append(sets, fmt.Sprintf("confirmed=$%d", len(args)))
	}
	if fields.Roles != nil {
		args = append(args, rolesToStrings(fields.Roles))
		sets = append(sets, fmt.Sprintf("roles=$%d", len(args)))
	}

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE users SET %s WHERE id=$%d RETURNING %s`,
		strings.Join(sets, ", "), len(args), userColumns)

	user, err := scanUser(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, translate(err)
	}
	return user, nil
}

func (r *userRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id=$1`, id)
	if err != nil {
		return translate(err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List returns at most page.Limit users created before page.Before, newest first.
func (r *userRepository) List(ctx context.Context, page domain.PageRequest) ([]domain.User, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if page.Before != nil {
		args = append(args, *page.Before)
		clauses = append(clauses, fmt.Sprintf("created_at < $%d", len(args)))
	}
	args = append(args, page.Limit)
	query := fmt.Sprintf(`SELECT %s FROM users WHERE %s ORDER BY created_at DESC LIMIT $%d`,
		userColumns, strings.Join(clauses, " AND "), len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()

	var result []domain.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *user)
	}
	return result, rows.Err()
}

func (r *userRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.User, error) {
	user, err := scanUser(r.pool.QueryRow(ctx, query, arg))
	if err != nil {
		return nil, translate(err)
	}
	return user, nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var (
		user  domain.User
		roles []string
	)
	if err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.Phone,
		&user.PasswordHash,
		&user.Confirmed,
		&roles,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return nil, err
	}
	user.Roles = make([]domain.Role, 0, len(roles))
	for _, r := range roles {
		user.Roles = append(user.Roles, domain.Role(r))
	}
	return &user, nil
}

func rolesToStrings(roles []domain.Role) []string {
	out := make([]string, 0, len(roles))
	for _, r := range roles {
		out = append(out, string(r))
	}
	return out
}
