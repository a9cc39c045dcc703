package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/Nimsara-boop/destinasian-journey-sisterhood-sub000/internal/models"
)

var (
	ErrCannotBlockSelf = errors.New("cannot block yourself")
	ErrBlockExists     = errors.New("user is already blocked")
	ErrBlockNotFound   = errors.New("block not found")
)

// severOnBlock runs inside the block transaction, both directions each.
var severOnBlock = []struct {
	what string
	sql  string
}{
	{"follows", `DELETE FROM follows
		 WHERE (follower_id = $1 AND following_id = $2)
		    OR (follower_id = $2 AND following_id = $1)`},
	{"location shares", `DELETE FROM location_shares
		 WHERE (owner_id = $1 AND shared_with_user_id = $2)
		    OR (owner_id = $2 AND shared_with_user_id = $1)`},
}

// BlockService manages user_blocks. A block severs the follow graph and any
// location shares between the pair, so neither side can see the other on the
// map until both re-follow after an unblock.
type BlockService struct {
	db DB
}

func NewBlockService(db DB) *BlockService {
	return &BlockService{db: db}
}

func (s *BlockService) Block(ctx context.Context, blockerID, blockedID uuid.UUID) (err error) {
	if blockerID == blockedID {
		return ErrCannotBlockSelf
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin block transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	tag, err := tx.Exec(ctx,
		`INSERT INTO user_blocks (blocker_id, blocked_id)
		 VALUES ($1, $2)
		 ON CONFLICT DO NOTHING`,
		blockerID, blockedID,
	)
	if err != nil {
		return fmt.Errorf("insert block: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrBlockExists
	}

	for _, step := range severOnBlock {
		if _, err = tx.Exec(ctx, step.sql, blockerID, blockedID); err != nil {
			return fmt.Errorf("remove %s: %w", step.what, err)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit block: %w", err)
	}
	return nil
}

func (s *BlockService) Unblock(ctx context.Context, blockerID, blockedID uuid.UUID) error {
	tag, err := s.db.Exec(ctx,
		"DELETE FROM user_blocks WHERE blocker_id = $1 AND blocked_id = $2",
		blockerID, blockedID,
	)
	if err != nil {
		return fmt.Errorf("delete block: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrBlockNotFound
	}
	return nil
}

// IsBlocked reports a block in either direction.
func (s *BlockService) IsBlocked(ctx context.Context, userID, otherUserID uuid.UUID) (bool, error) {
	var blocked bool
	err := s.db.QueryRow(ctx,
		`SELECT EXISTS(
			SELECT 1 FROM user_blocks
			WHERE (blocker_id = $1 AND blocked_id = $2)
			   OR (blocker_id = $2 AND blocked_id = $1)
		)`,
		userID, otherUserID,
	).Scan(&blocked)
	if err != nil {
		return false, fmt.Errorf("check block status: %w", err)
	}
	return blocked, nil
}

func (s *BlockService) ListBlocked(ctx context.Context, blockerID uuid.UUID) ([]models.BlockedUser, error) {
	rows, err := s.db.Query(ctx,
		`SELECT u.id, u.username, u.display_name, u.avatar_url, ub.created_at
		 FROM user_blocks ub
		 JOIN users u ON u.id = ub.blocked_id
		 WHERE ub.blocker_id = $1
		 ORDER BY LOWER(u.username)`,
		blockerID,
	)
	if err != nil {
		return nil, fmt.Errorf("list blocked users: %w", err)
	}
	defer rows.Close()

	blocked := []models.BlockedUser{}
	for rows.Next() {
		var b models.BlockedUser
		if err := rows.Scan(&b.ID, &b.Username, &b.DisplayName, &b.AvatarURL, &b.BlockedAt); err != nil {
			return nil, fmt.Errorf("scan blocked user: %w", err)
		}
		blocked = append(blocked, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list blocked users: %w", err)
	}
	return blocked, nil
}
