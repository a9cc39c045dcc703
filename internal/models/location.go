package models

import (
	"time"

	"github.com/google/uuid"
)

// UserLocation is the latest fix for a user. Coordinates are (latitude, longitude).
type UserLocation struct {
	UserID     uuid.UUID `json:"user_id"`
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	Accuracy   *float64  `json:"accuracy,omitempty"`
	CapturedAt time.Time `json:"captured_at"`
}

type CaptureResult struct {
	Location UserLocation `json:"location"`
	Reused   bool         `json:"reused"`
}
