package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// AccountExport is everything stored about one account.
type AccountExport struct {
	ExportedAt     time.Time          `json:"exported_at"`
	Profile        User               `json:"profile"`
	Following      []FollowConnection `json:"following"`
	Followers      []FollowConnection `json:"followers"`
	Sharing        SharingPreferences `json:"sharing"`
	SharesReceived []LocationShare    `json:"shares_received"`
	Location       *UserLocation      `json:"location,omitempty"`
}

// DeletionStep records the outcome of deleting one dependent table.
type DeletionStep struct {
	Table       string `json:"table"`
	Column      string `json:"column"`
	RowsDeleted int64  `json:"rows_deleted"`
	Error       string `json:"error,omitempty"`
}

func (s DeletionStep) Failed() bool {
	return s.Error != ""
}

type DeletionReport struct {
	UserID          uuid.UUID      `json:"user_id"`
	Steps           []DeletionStep `json:"steps"`
	IdentityDeleted bool           `json:"identity_deleted"`
}

// FailedTables lists the dependent tables that may still hold rows for the user.
func (r *DeletionReport) FailedTables() []string {
	var tables []string
	for _, s := range r.Steps {
		if s.Failed() {
			tables = append(tables, s.Table)
		}
	}
	return tables
}

type ActivityKind string

const (
	ActivityFollow        ActivityKind = "follow"
	ActivityFollower      ActivityKind = "follower"
	ActivityShareGranted  ActivityKind = "share_granted"
	ActivityShareReceived ActivityKind = "share_received"
	ActivityLocation      ActivityKind = "location"
)

// ActivityItem is a tagged union: Kind selects which payload field is set.
// follow, follower, share_granted and share_received carry User;
// location carries Location.
type ActivityItem struct {
	Kind     ActivityKind  `json:"kind"`
	At       time.Time     `json:"at"`
	User     *UserSummary  `json:"user,omitempty"`
	Location *UserLocation `json:"location,omitempty"`
}

// Summary renders a one-line description, dispatching on Kind.
func (a ActivityItem) Summary() string {
	switch a.Kind {
	case ActivityFollow:
		return "You followed " + a.userName()
	case ActivityFollower:
		return a.userName() + " followed you"
	case ActivityShareGranted:
		return "You shared your location with " + a.userName()
	case ActivityShareReceived:
		return a.userName() + " shared their location with you"
	case ActivityLocation:
		if a.Location == nil {
			return "Location updated"
		}
		return fmt.Sprintf("Location updated to %.4f, %.4f", a.Location.Latitude, a.Location.Longitude)
	default:
		return string(a.Kind)
	}
}

func (a ActivityItem) userName() string {
	if a.User == nil {
		return "someone"
	}
	if a.User.DisplayName != "" {
		return a.User.DisplayName
	}
	return "@" + a.User.Username
}
