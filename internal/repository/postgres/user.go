package postgres

import (
	"context"
	"errors"
	"fmt"

	"task-manager/internal/entities"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const (
	userColumns      = `id, name, email, password_hash, role, created_at, updated_at`
	insertUserQuery  = `INSERT INTO users(id, name, email, password_hash, role) VALUES ($1, $2, $3, $4, $5) RETURNING ` + userColumns
	selectUserQuery  = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	selectEmailQuery = `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	countUsersQuery  = `SELECT COUNT(*) FROM users`
	deleteUserQuery  = `DELETE FROM users WHERE id = $1`
	updateUserQuery  = `
UPDATE users SET
    name = COALESCE($2, name),
    email = COALESCE($3, email),
    password_hash = COALESCE($4, password_hash),
    role = COALESCE($5, role),
    updated_at = now()
WHERE id = $1
RETURNING ` + userColumns
)

func scanUser(row pgx.Row) (*entities.User, error) {
	var u entities.User
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

// CreateUser inserts an account. Email uniqueness is enforced by the database.
func (p *Postgres) CreateUser(ctx context.Context, user entities.User) (*entities.User, error) {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}

	created, err := scanUser(p.db.QueryRow(ctx, insertUserQuery, user.ID, user.Name, user.Email, user.PasswordHash, user.Role))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, entities.ErrEmailTaken
		}
		p.log.Errorw("failed to create user", "error", err, "email", user.Email)
		return nil, fmt.Errorf("create user: %w", err)
	}

	p.log.Infow("user created", "user_id", created.ID, "role", created.Role)
	return created, nil
}

// GetUser fetches a user by id.
func (p *Postgres) GetUser(ctx context.Context, userID string) (*entities.User, error) {
	if !validID(userID) {
		return nil, entities.ErrUserNotFound
	}
	u, err := scanUser(p.db.QueryRow(ctx, selectUserQuery, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entities.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// GetUserByEmail fetches a user by normalized email.
func (p *Postgres) GetUserByEmail(ctx context.Context, email string) (*entities.User, error) {
	u, err := scanUser(p.db.QueryRow(ctx, selectEmailQuery, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entities.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return u, nil
}

// ListUsers returns a page of users ordered by creation time, newest first.
func (p *Postgres) ListUsers(ctx context.Context, filter entities.UserFilter) (entities.UserList, error) {
	res := entities.UserList{Users: make([]entities.User, 0)}

	var cond conditions
	if filter.Role != nil {
		cond.add("role = ?", *filter.Role)
	}

	if err := p.db.QueryRow(ctx, countUsersQuery+cond.where(), cond.args...).Scan(&res.Total); err != nil {
		return res, fmt.Errorf("count users: %w", err)
	}

	limit, args := cond.paginate(filter.Page)
	query := `SELECT ` + userColumns + ` FROM users` + cond.where() + ` ORDER BY created_at DESC` + limit
	rows, err := p.db.Query(ctx, query, args...)
	if err != nil {
		return res, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return res, fmt.Errorf("scan user: %w", err)
		}
		res.Users = append(res.Users, *u)
	}
	if err := rows.Err(); err != nil {
		return res, fmt.Errorf("iterate users: %w", err)
	}
	return res, nil
}

// UpdateUser applies the non-nil fields of patch.
func (p *Postgres) UpdateUser(ctx context.Context, userID string, patch entities.UserPatch) (*entities.User, error) {
	if !validID(userID) {
		return nil, entities.ErrUserNotFound
	}

	var role *string
	if patch.Role != nil {
		r := string(*patch.Role)
		role = &r
	}

	u, err := scanUser(p.db.QueryRow(ctx, updateUserQuery, userID, patch.Name, patch.Email, patch.PasswordHash, role))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entities.ErrUserNotFound
		}
		if isUniqueViolation(err) {
			return nil, entities.ErrEmailTaken
		}
		p.log.Errorw("failed to update user", "error", err, "user_id", userID)
		return nil, fmt.Errorf("update user: %w", err)
	}

	p.log.Infow("user updated", "user_id", userID)
	return u, nil
}

// DeleteUser removes an account. Memberships cascade, assignments are cleared,
// and users still referenced as creators cannot be deleted.
func (p *Postgres) DeleteUser(ctx context.Context, userID string) error {
	if !validID(userID) {
		return entities.ErrUserNotFound
	}

	tag, err := p.db.Exec(ctx, deleteUserQuery, userID)
	if err != nil {
		if code, _ := pgError(err); code == codeForeignKeyViolation {
			return entities.ErrUserHasRecords
		}
		p.log.Errorw("failed to delete user", "error", err, "user_id", userID)
		return fmt.Errorf("delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return entities.ErrUserNotFound
	}

	p.log.Infow("user deleted", "user_id", userID)
	return nil
}

// CountUsers returns the number of accounts.
func (p *Postgres) CountUsers(ctx context.Context) (int, error) {
	var n int
	if err := p.db.QueryRow(ctx, countUsersQuery).Scan(&n); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}
