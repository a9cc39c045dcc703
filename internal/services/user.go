package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/Nimsara-boop/destinasian-journey-sisterhood-sub000/internal/models"
)

var (
	ErrUserNotFound          = errors.New("user not found")
	ErrEmailAlreadyExists    = errors.New("email already exists")
	ErrUsernameAlreadyExists = errors.New("username already exists")
)

const userColumns = `id, email, password_hash, username, display_name, avatar_url, is_private, created_at, updated_at`

type UserService struct {
	db DBConn
}

func NewUserService(db DBConn) *UserService {
	return &UserService{db: db}
}

func scanUser(row Row) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(&user.ID, &user.Email, &user.PasswordHash, &user.Username, &user.DisplayName,
		&user.AvatarURL, &user.IsPrivate, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) Create(ctx context.Context, params models.CreateUserParams) (*models.User, error) {
	var emailTaken, usernameTaken bool
	err := s.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE email = $1),
		        EXISTS(SELECT 1 FROM users WHERE LOWER(username) = LOWER($2))`,
		params.Email, params.Username,
	).Scan(&emailTaken, &usernameTaken)
	if err != nil {
		return nil, fmt.Errorf("checking user existence: %w", err)
	}
	if emailTaken {
		return nil, ErrEmailAlreadyExists
	}
	if usernameTaken {
		return nil, ErrUsernameAlreadyExists
	}

	user, err := scanUser(s.db.QueryRow(ctx,
		`INSERT INTO users (email, password_hash, username, display_name)
		 VALUES ($1, $2, $3, $4)
		 RETURNING `+userColumns,
		params.Email, params.PasswordHash, params.Username, params.DisplayName,
	))
	if err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}
	return user, nil
}

func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := scanUser(s.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`,
		id,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting user by id: %w", err)
	}
	return user, nil
}

func (s *UserService) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := scanUser(s.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`,
		email,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting user by email: %w", err)
	}
	return user, nil
}
