package models

import (
	"time"

	"github.com/google/uuid"
)

// SharingPreferences governs who may see an owner's last known location.
// A missing row reads as the zero value: disabled, no followers, no shares.
type SharingPreferences struct {
	OwnerID               uuid.UUID   `json:"owner_id"`
	Enabled               bool        `json:"enabled"`
	VisibleToAllFollowers bool        `json:"visible_to_all_followers"`
	ExplicitShares        []uuid.UUID `json:"explicit_shares"`
	UpdatedAt             *time.Time  `json:"updated_at,omitempty"`
}

type LocationShare struct {
	OwnerID          uuid.UUID `json:"owner_id"`
	SharedWithUserID uuid.UUID `json:"shared_with_user_id"`
	CreatedAt        time.Time `json:"created_at"`
}

type FollowerShareState struct {
	Follower         UserSummary `json:"follower"`
	IsSharingEnabled bool        `json:"is_sharing_enabled"`
}
