package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"marketplace-api/internal/domain"
	"marketplace-api/internal/repository"
)

var (
	ErrMissingFields = errors.New("missing required fields")
	ErrEmailTaken    = errors.New("email already registered")
	// Mismo mensaje para email desconocido y password incorrecto, para
	// no revelar cuales cuentas existen.
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrMissingToken       = errors.New("missing token")
	ErrInvalidToken       = errors.New("invalid token")
)

// UserService coordina el alta y la autenticacion de cuentas.
type UserService struct {
	logger *zap.Logger
	users  repository.UserRepository
	tokens TokenCache
}

func NewUserService(logger *zap.Logger, users repository.UserRepository, tokens TokenCache) *UserService {
	return &UserService{
		logger: logger,
		users:  users,
		tokens: tokens,
	}
}

type SignupInput struct {
	Email      string
	Username   string
	Password   string
	Newsletter bool
}

// Signup crea una cuenta nueva. Genera salt, hash y token una sola
// vez; el token queda fijo para toda la vida de la cuenta.
func (s *UserService) Signup(ctx context.Context, input SignupInput) (domain.User, error) {
	email := strings.TrimSpace(input.Email)
	username := strings.TrimSpace(input.Username)

	if email == "" || username == "" || input.Password == "" {
		return domain.User{}, ErrMissingFields
	}

	// Chequeo amistoso; la carrera con signups concurrentes la cierra
	// el indice unico de email (ver abajo).
	_, err := s.users.GetByEmail(ctx, email)
	if err == nil {
		return domain.User{}, ErrEmailTaken
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, err
	}

	salt, err := GenerateToken(saltBytes)
	if err != nil {
		return domain.User{}, err
	}
	token, err := GenerateToken(tokenBytes)
	if err != nil {
		return domain.User{}, err
	}

	user := domain.User{
		ID:    uuid.NewString(),
		Email: email,
		Account: domain.Account{
			Username: username,
		},
		Newsletter: input.Newsletter,
		Token:      token,
		Hash:       ComputeHash(input.Password, salt),
		Salt:       salt,
		CreatedAt:  time.Now().UTC(),
	}

	if err := s.users.Create(ctx, user); err != nil {
		if isUniqueViolation(err) {
			// Signup concurrente con el mismo email gano la carrera.
			if s.logger != nil {
				s.logger.Warn("duplicate email rejected by unique index", zap.String("email", email))
			}
			return domain.User{}, ErrEmailTaken
		}
		return domain.User{}, err
	}

	return user, nil
}

// Login verifica las credenciales y devuelve la cuenta almacenada,
// con el mismo id y token emitidos en el signup. Nunca regenera el token.
func (s *UserService) Login(ctx context.Context, email, password string) (domain.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return domain.User{}, ErrMissingFields
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, ErrInvalidCredentials
		}
		return domain.User{}, err
	}

	hash := ComputeHash(password, user.Salt)
	if subtle.ConstantTimeCompare([]byte(hash), []byte(user.Hash)) != 1 {
		return domain.User{}, ErrInvalidCredentials
	}

	return user, nil
}

// ResolveToken resuelve el header Authorization de una request a la
// cuenta autenticada. Es el unico camino de entrada a operaciones
// protegidas.
func (s *UserService) ResolveToken(ctx context.Context, authHeader string) (domain.User, error) {
	header := strings.TrimSpace(authHeader)
	if header == "" {
		return domain.User{}, ErrMissingToken
	}

	token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	if token == "" {
		return domain.User{}, ErrInvalidToken
	}

	if s.tokens != nil {
		if user, ok := s.tokens.Get(token); ok {
			return user, nil
		}
	}

	user, err := s.users.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, ErrInvalidToken
		}
		return domain.User{}, err
	}

	if s.tokens != nil {
		s.tokens.Set(token, user)
	}

	return user, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}
