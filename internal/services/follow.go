package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/Nimsara-boop/destinasian-journey-sisterhood-sub000/internal/models"
)

var (
	ErrCannotFollowSelf = errors.New("cannot follow yourself")
	ErrAlreadyFollowing = errors.New("already following this user")
	ErrNotFollowing     = errors.New("not following this user")
	ErrUserBlocked      = errors.New("user is blocked")
)

const searchResultLimit = 20

type FollowService struct {
	db DB
}

func NewFollowService(db DB) *FollowService {
	return &FollowService{db: db}
}

func (s *FollowService) SearchUsers(ctx context.Context, currentUserID uuid.UUID, query string) ([]models.UserSummary, error) {
	query = strings.TrimSpace(query)
	if len(query) < 2 {
		return []models.UserSummary{}, nil
	}

	searchPattern := "%" + strings.ToLower(query) + "%"

	rows, err := s.db.Query(ctx,
		`SELECT id, username, display_name, avatar_url FROM users
		 WHERE id != $1
		   AND (LOWER(username) LIKE $2 OR LOWER(display_name) LIKE $2)
		   AND is_private = false
		   AND NOT EXISTS (
		     SELECT 1 FROM user_blocks
		     WHERE (blocker_id = $1 AND blocked_id = users.id)
		        OR (blocker_id = users.id AND blocked_id = $1)
		   )
		 ORDER BY username
		 LIMIT $3`,
		currentUserID, searchPattern, searchResultLimit,
	)
	if err != nil {
		return nil, fmt.Errorf("searching users: %w", err)
	}
	defer rows.Close()

	results := []models.UserSummary{}
	for rows.Next() {
		var u models.UserSummary
		if err := rows.Scan(&u.ID, &u.Username, &u.DisplayName, &u.AvatarURL); err != nil {
			return nil, fmt.Errorf("scanning user: %w", err)
		}
		results = append(results, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("searching users: %w", err)
	}
	return results, nil
}

func (s *FollowService) Follow(ctx context.Context, followerID, followingID uuid.UUID) error {
	if followerID == followingID {
		return ErrCannotFollowSelf
	}

	var targetExists, isBlocked bool
	err := s.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE id = $2),
		        EXISTS(
		          SELECT 1 FROM user_blocks
		          WHERE (blocker_id = $1 AND blocked_id = $2)
		             OR (blocker_id = $2 AND blocked_id = $1)
		        )`,
		followerID, followingID,
	).Scan(&targetExists, &isBlocked)
	if err != nil {
		return fmt.Errorf("checking follow target: %w", err)
	}
	if !targetExists {
		return ErrUserNotFound
	}
	if isBlocked {
		return ErrUserBlocked
	}

	result, err := s.db.Exec(ctx,
		`INSERT INTO follows (follower_id, following_id)
		 VALUES ($1, $2)
		 ON CONFLICT DO NOTHING`,
		followerID, followingID,
	)
	if err != nil {
		return fmt.Errorf("inserting follow: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrAlreadyFollowing
	}
	return nil
}

// Unfollow removes the edge together with any explicit location share the
// followed user granted to the ex-follower.
func (s *FollowService) Unfollow(ctx context.Context, followerID, followingID uuid.UUID) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin unfollow transaction: %w", err)
	}

	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback(ctx)
		}
	}()

	result, err := tx.Exec(ctx,
		"DELETE FROM follows WHERE follower_id = $1 AND following_id = $2",
		followerID, followingID,
	)
	if err != nil {
		return fmt.Errorf("deleting follow: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFollowing
	}

	_, err = tx.Exec(ctx,
		"DELETE FROM location_shares WHERE owner_id = $1 AND shared_with_user_id = $2",
		followingID, followerID,
	)
	if err != nil {
		return fmt.Errorf("removing location share: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit unfollow: %w", err)
	}
	committed = true
	return nil
}

func (s *FollowService) IsFollowing(ctx context.Context, followerID, followingID uuid.UUID) (bool, error) {
	var following bool
	err := s.db.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM follows WHERE follower_id = $1 AND following_id = $2)",
		followerID, followingID,
	).Scan(&following)
	if err != nil {
		return false, fmt.Errorf("checking follow: %w", err)
	}
	return following, nil
}

// ListFollowers returns the users following userID.
func (s *FollowService) ListFollowers(ctx context.Context, userID uuid.UUID) ([]models.FollowConnection, error) {
	return s.listConnections(ctx,
		`SELECT u.id, u.username, u.display_name, u.avatar_url, f.created_at
		 FROM follows f
		 JOIN users u ON u.id = f.follower_id
		 WHERE f.following_id = $1
		 ORDER BY u.username`,
		userID, "followers")
}

// ListFollowing returns the users userID follows.
func (s *FollowService) ListFollowing(ctx context.Context, userID uuid.UUID) ([]models.FollowConnection, error) {
	return s.listConnections(ctx,
		`SELECT u.id, u.username, u.display_name, u.avatar_url, f.created_at
		 FROM follows f
		 JOIN users u ON u.id = f.following_id
		 WHERE f.follower_id = $1
		 ORDER BY u.username`,
		userID, "following")
}

func (s *FollowService) listConnections(ctx context.Context, sql string, userID uuid.UUID, what string) ([]models.FollowConnection, error) {
	rows, err := s.db.Query(ctx, sql, userID)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", what, err)
	}
	defer rows.Close()

	conns := []models.FollowConnection{}
	for rows.Next() {
		var c models.FollowConnection
		if err := rows.Scan(&c.ID, &c.Username, &c.DisplayName, &c.AvatarURL, &c.Since); err != nil {
			return nil, fmt.Errorf("scanning %s: %w", what, err)
		}
		conns = append(conns, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing %s: %w", what, err)
	}
	return conns, nil
}
