package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"github.com/Nimsara-boop/destinasian-journey-sisterhood-sub000/internal/models"
)

const (
	sessionDuration      = 30 * 24 * time.Hour // 30 days
	sessionKeyPrefix     = "session:"
	userSessionKeyPrefix = "user_sessions:"
)

var bcryptCost = 12

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrSessionNotFound    = errors.New("session not found")
)

type userLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// AuthService keeps sessions in Redis. Only the sha256 of a token is stored.
type AuthService struct {
	redis *redis.Client
	users userLookup
}

func NewAuthService(redis *redis.Client, users userLookup) *AuthService {
	return &AuthService{
		redis: redis,
		users: users,
	}
}

func (s *AuthService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(hash), nil
}

func (s *AuthService) VerifyPassword(hash, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

func (s *AuthService) GenerateSessionToken() (token string, hash string, err error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", "", fmt.Errorf("generating random bytes: %w", err)
	}

	token = hex.EncodeToString(bytes)
	return token, hashToken(token), nil
}

func hashToken(token string) string {
	hashBytes := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hashBytes[:])
}

func (s *AuthService) CreateSession(ctx context.Context, userID uuid.UUID) (string, error) {
	token, tokenHash, err := s.GenerateSessionToken()
	if err != nil {
		return "", err
	}

	userKey := userSessionKeyPrefix + userID.String()
	pipe := s.redis.TxPipeline()
	pipe.Set(ctx, sessionKeyPrefix+tokenHash, userID.String(), sessionDuration)
	pipe.SAdd(ctx, userKey, tokenHash)
	pipe.Expire(ctx, userKey, sessionDuration)
	if _, err := pipe.Exec(ctx); err != nil {
		return "", fmt.Errorf("storing session: %w", err)
	}

	return token, nil
}

// ValidateSession resolves a token to its user and slides the expiry.
func (s *AuthService) ValidateSession(ctx context.Context, token string) (*models.User, error) {
	redisKey := sessionKeyPrefix + hashToken(token)
	userIDStr, err := s.redis.Get(ctx, redisKey).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading session: %w", err)
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return nil, fmt.Errorf("parsing user id: %w", err)
	}

	user, err := s.users.GetByID(ctx, userID)
	if errors.Is(err, ErrUserNotFound) {
		s.redis.Del(ctx, redisKey)
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}

	s.redis.Expire(ctx, redisKey, sessionDuration)
	s.redis.Expire(ctx, userSessionKeyPrefix+userIDStr, sessionDuration)
	return user, nil
}

func (s *AuthService) DeleteSession(ctx context.Context, token string) error {
	tokenHash := hashToken(token)
	redisKey := sessionKeyPrefix + tokenHash

	userIDStr, err := s.redis.Get(ctx, redisKey).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("reading session: %w", err)
	}

	if err := s.redis.Del(ctx, redisKey).Err(); err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	if userIDStr != "" {
		s.redis.SRem(ctx, userSessionKeyPrefix+userIDStr, tokenHash)
	}
	return nil
}

func (s *AuthService) DeleteAllUserSessions(ctx context.Context, userID uuid.UUID) error {
	userKey := userSessionKeyPrefix + userID.String()
	hashes, err := s.redis.SMembers(ctx, userKey).Result()
	if err != nil {
		return fmt.Errorf("listing user sessions: %w", err)
	}

	keys := make([]string, 0, len(hashes)+1)
	for _, h := range hashes {
		keys = append(keys, sessionKeyPrefix+h)
	}
	keys = append(keys, userKey)

	if err := s.redis.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("deleting user sessions: %w", err)
	}
	return nil
}
