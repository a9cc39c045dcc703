package models

import (
	"time"

	"github.com/google/uuid"
)

// VisibleFriendLocation is one entry of the friend map, derived per request.
type VisibleFriendLocation struct {
	UserID      uuid.UUID `json:"user_id"`
	Username    string    `json:"username"`
	DisplayName string    `json:"display_name"`
	AvatarURL   *string   `json:"avatar_url,omitempty"`
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	Accuracy    *float64  `json:"accuracy,omitempty"`
	LastSeen    time.Time `json:"last_seen"`
}

type FriendMapStatus string

const (
	FriendMapStatusOK     FriendMapStatus = "ok"
	FriendMapStatusFailed FriendMapStatus = "failed"
)

type FriendMap struct {
	Status    FriendMapStatus         `json:"status"`
	Message   string                  `json:"message,omitempty"`
	Locations []VisibleFriendLocation `json:"locations"`
}

// FriendLocationDetail backs the detail panel opened from a pin.
type FriendLocationDetail struct {
	Profile    UserSummary           `json:"profile"`
	Location   VisibleFriendLocation `json:"location"`
	DistanceKm *float64              `json:"distance_km,omitempty"`
	MessageURL string                `json:"message_url"`
}
