package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/Nimsara-boop/destinasian-journey-sisterhood-sub000/internal/geo"
	"github.com/Nimsara-boop/destinasian-journey-sisterhood-sub000/internal/models"
)

// UserServiceInterface defines the contract for user operations.
type UserServiceInterface interface {
	Create(ctx context.Context, params models.CreateUserParams) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

// AuthServiceInterface defines the contract for authentication operations.
type AuthServiceInterface interface {
	HashPassword(password string) (string, error)
	VerifyPassword(hash, password string) bool
	CreateSession(ctx context.Context, userID uuid.UUID) (token string, err error)
	ValidateSession(ctx context.Context, token string) (*models.User, error)
	DeleteSession(ctx context.Context, token string) error
	DeleteAllUserSessions(ctx context.Context, userID uuid.UUID) error
}

// FollowServiceInterface defines the contract for follow-graph operations.
type FollowServiceInterface interface {
	SearchUsers(ctx context.Context, currentUserID uuid.UUID, query string) ([]models.UserSummary, error)
	Follow(ctx context.Context, followerID, followingID uuid.UUID) error
	Unfollow(ctx context.Context, followerID, followingID uuid.UUID) error
	IsFollowing(ctx context.Context, followerID, followingID uuid.UUID) (bool, error)
	ListFollowers(ctx context.Context, userID uuid.UUID) ([]models.FollowConnection, error)
	ListFollowing(ctx context.Context, userID uuid.UUID) ([]models.FollowConnection, error)
}

// BlockServiceInterface defines the contract for blocking operations.
type BlockServiceInterface interface {
	Block(ctx context.Context, blockerID, blockedID uuid.UUID) error
	Unblock(ctx context.Context, blockerID, blockedID uuid.UUID) error
	IsBlocked(ctx context.Context, userID, otherUserID uuid.UUID) (bool, error)
	ListBlocked(ctx context.Context, blockerID uuid.UUID) ([]models.BlockedUser, error)
}

// SharingServiceInterface defines the contract for location sharing preferences.
type SharingServiceInterface interface {
	GetPreferences(ctx context.Context, ownerID uuid.UUID) (*models.SharingPreferences, error)
	SetEnabled(ctx context.Context, ownerID uuid.UUID, enabled bool) (*models.SharingPreferences, error)
	SetVisibleToAllFollowers(ctx context.Context, ownerID uuid.UUID, visible bool) (*models.SharingPreferences, error)
	GrantShare(ctx context.Context, ownerID, targetID uuid.UUID) error
	RevokeShare(ctx context.Context, ownerID, targetID uuid.UUID) error
	ListFollowersWithSharingState(ctx context.Context, ownerID uuid.UUID) ([]models.FollowerShareState, error)
	ListSharesReceived(ctx context.Context, userID uuid.UUID) ([]models.LocationShare, error)
}

// LocationServiceInterface defines the contract for capturing and reading fixes.
type LocationServiceInterface interface {
	Capture(ctx context.Context, userID uuid.UUID, locator geo.Locator, fresh bool) (*models.CaptureResult, error)
	StartTracking(ctx context.Context, userID uuid.UUID, locator geo.Locator) (*models.CaptureResult, error)
	StopTracking(ctx context.Context, userID uuid.UUID) error
	IsTracking(ctx context.Context, userID uuid.UUID) (bool, error)
	GetLocation(ctx context.Context, userID uuid.UUID) (*models.UserLocation, error)
	ClearLocation(ctx context.Context, userID uuid.UUID) error
}

// FriendMapServiceInterface defines the contract for assembling the friend map.
type FriendMapServiceInterface interface {
	ComputeVisibleLocations(ctx context.Context, viewerID uuid.UUID) ([]models.VisibleFriendLocation, error)
	Load(ctx context.Context, viewerID uuid.UUID, filter string) models.FriendMap
	SelectLocation(ctx context.Context, viewerID, userID uuid.UUID) (*models.FriendLocationDetail, error)
}

// AccountServiceInterface defines the contract for account data operations.
type AccountServiceInterface interface {
	Export(ctx context.Context, userID uuid.UUID) (*models.AccountExport, error)
	Delete(ctx context.Context, userID uuid.UUID) (*models.DeletionReport, error)
	Activity(ctx context.Context, userID uuid.UUID) ([]models.ActivityItem, error)
}

// SessionPurger removes every session a user holds.
type SessionPurger interface {
	DeleteAllUserSessions(ctx context.Context, userID uuid.UUID) error
}
