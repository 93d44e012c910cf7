package repository

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgxpool"

	"marketplace-api/internal/domain"
)

// UserRepository define el contrato de persistencia para cuentas.
// Las busquedas sin resultado devuelven pgx.ErrNoRows.
type UserRepository interface {
	Create(ctx context.Context, user domain.User) error
	GetByEmail(ctx context.Context, email string) (domain.User, error)
	GetByToken(ctx context.Context, token string) (domain.User, error)
}

// PgUserRepository implementa UserRepository usando pgxpool.
type PgUserRepository struct {
	pool *pgxpool.Pool
}

func NewPgUserRepository(pool *pgxpool.Pool) *PgUserRepository {
	return &PgUserRepository{pool: pool}
}

func (r *PgUserRepository) Create(ctx context.Context, user domain.User) error {
	const query = `
		INSERT INTO users (id, email, username, newsletter, avatar, token, hash, salt, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	avatar, err := marshalNullable(user.Account.Avatar)
	if err != nil {
		return err
	}

	_, err = r.pool.Exec(ctx, query,
		user.ID,
		user.Email,
		user.Account.Username,
		user.Newsletter,
		avatar,
		user.Token,
		user.Hash,
		user.Salt,
		user.CreatedAt,
	)
	return err
}

func (r *PgUserRepository) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	return r.getOne(ctx, "email", email)
}

func (r *PgUserRepository) GetByToken(ctx context.Context, token string) (domain.User, error) {
	return r.getOne(ctx, "token", token)
}

func (r *PgUserRepository) getOne(ctx context.Context, column, value string) (domain.User, error) {
	query := `
		SELECT id, email, username, newsletter, avatar, token, hash, salt, created_at
		FROM users
		WHERE ` + column + ` = $1`

	var (
		u      domain.User
		avatar []byte
	)
	err := r.pool.QueryRow(ctx, query, value).Scan(
		&u.ID,
		&u.Email,
		&u.Account.Username,
		&u.Newsletter,
		&avatar,
		&u.Token,
		&u.Hash,
		&u.Salt,
		&u.CreatedAt,
	)
	if err != nil {
		return domain.User{}, err
	}

	if len(avatar) > 0 {
		var img domain.Image
		if err := json.Unmarshal(avatar, &img); err != nil {
			return domain.User{}, err
		}
		u.Account.Avatar = &img
	}

	return u, nil
}

// marshalNullable serializa un valor opcional a JSON, dejando NULL
// cuando el puntero es nil.
func marshalNullable(v *domain.Image) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	return json.Marshal(v)
}
