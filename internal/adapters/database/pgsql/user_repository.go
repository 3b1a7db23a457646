package pgsql

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/valutatrade/tradehub/internal/apperrors"
	"github.com/valutatrade/tradehub/internal/core/domain"
	portsrepo "github.com/valutatrade/tradehub/internal/core/ports/repositories"
)

// UserRepository is the Postgres persistence gateway for users. It keeps the
// same load-all/save-all contract as the JSON gateway: SaveUsers upserts the
// full list in one transaction and removes rows no longer present.
type UserRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

var _ portsrepo.UserRepositoryFacade = (*UserRepository)(nil)

func (r *UserRepository) LoadUsers(ctx context.Context) ([]domain.User, error) {
	query := `
        SELECT user_id, username, password_hash, salt, registration_date
        FROM users
        ORDER BY user_id;
    `
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query users: %v", apperrors.ErrPersistence, err)
	}
	defer rows.Close()

	users := []domain.User{}
	for rows.Next() {
		var user domain.User
		if err := rows.Scan(
			&user.UserID,
			&user.Username,
			&user.PasswordHash,
			&user.Salt,
			&user.RegistrationDate,
		); err != nil {
			return nil, fmt.Errorf("%w: failed to scan user row: %v", apperrors.ErrPersistence, err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: failed to read users: %v", apperrors.ErrPersistence, err)
	}
	return users, nil
}

func (r *UserRepository) SaveUsers(ctx context.Context, users []domain.User) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("%w: failed to begin transaction: %v", apperrors.ErrPersistence, err)
	}
	defer tx.Rollback(ctx)

	upsert := `
        INSERT INTO users (user_id, username, password_hash, salt, registration_date)
        VALUES ($1, $2, $3, $4, $5)
        ON CONFLICT (user_id) DO UPDATE SET
            username = EXCLUDED.username,
            password_hash = EXCLUDED.password_hash,
            salt = EXCLUDED.salt,
            registration_date = EXCLUDED.registration_date;
    `
	ids := make([]int64, 0, len(users))
	for _, user := range users {
		if _, err := tx.Exec(ctx, upsert,
			user.UserID,
			user.Username,
			user.PasswordHash,
			user.Salt,
			user.RegistrationDate,
		); err != nil {
			return fmt.Errorf("%w: failed to upsert user %d: %v", apperrors.ErrPersistence, user.UserID, err)
		}
		ids = append(ids, user.UserID)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM users WHERE user_id != ALL($1);`, ids); err != nil {
		return fmt.Errorf("%w: failed to prune users: %v", apperrors.ErrPersistence, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%w: failed to commit users: %v", apperrors.ErrPersistence, err)
	}
	return nil
}
