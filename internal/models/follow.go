package models

import (
	"time"

	"github.com/google/uuid"
)

// FollowEdge is the directed pair "FollowerID follows FollowingID".
type FollowEdge struct {
	FollowerID  uuid.UUID `json:"follower_id"`
	FollowingID uuid.UUID `json:"following_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// FollowConnection is the other side of a follow edge plus when it was created.
type FollowConnection struct {
	UserSummary
	Since time.Time `json:"since"`
}

// BlockedUser is someone the viewer has blocked.
type BlockedUser struct {
	UserSummary
	BlockedAt time.Time `json:"blocked_at"`
}
