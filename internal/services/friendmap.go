package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/paulmach/orb/geo"

	"github.com/Nimsara-boop/destinasian-journey-sisterhood-sub000/internal/logging"
	"github.com/Nimsara-boop/destinasian-journey-sisterhood-sub000/internal/mapview"
	"github.com/Nimsara-boop/destinasian-journey-sisterhood-sub000/internal/models"
	"github.com/Nimsara-boop/destinasian-journey-sisterhood-sub000/internal/visibility"
)

var ErrLocationNotVisible = errors.New("location not visible")

const (
	defaultMapQueryTimeout = 5 * time.Second
	friendMapLoadFailed    = "Could not load friend locations. Try again."
)

// candidateQuery selects every user with a live location whom the viewer ($1)
// follows or who shares explicitly with the viewer. Preferences are left
// joined so a missing row reaches the visibility rule as "no preferences".
const candidateQuery = `
SELECT u.id, u.username, u.display_name, u.avatar_url,
       l.latitude, l.longitude, l.accuracy, l.captured_at,
       p.owner_id IS NOT NULL,
       COALESCE(p.enabled, false),
       COALESCE(p.visible_to_all_followers, false),
       EXISTS(SELECT 1 FROM follows f WHERE f.follower_id = $1 AND f.following_id = u.id),
       EXISTS(SELECT 1 FROM location_shares s WHERE s.owner_id = u.id AND s.shared_with_user_id = $1)
FROM user_locations l
JOIN users u ON u.id = l.user_id
LEFT JOIN location_sharing_preferences p ON p.owner_id = l.user_id
WHERE l.user_id <> $1
  AND (
    EXISTS(SELECT 1 FROM follows f WHERE f.follower_id = $1 AND f.following_id = u.id)
    OR EXISTS(SELECT 1 FROM location_shares s WHERE s.owner_id = u.id AND s.shared_with_user_id = $1)
  )`

// FriendMapService assembles the set of friend locations a viewer may see.
type FriendMapService struct {
	db           DBConn
	queryTimeout time.Duration
	log          *logging.Logger
}

func NewFriendMapService(db DBConn, queryTimeout time.Duration, log *logging.Logger) *FriendMapService {
	if queryTimeout <= 0 {
		queryTimeout = defaultMapQueryTimeout
	}
	if log == nil {
		log = logging.New()
	}
	return &FriendMapService{db: db, queryTimeout: queryTimeout, log: log.Named("friendmap")}
}

func (s *FriendMapService) ComputeVisibleLocations(ctx context.Context, viewerID uuid.UUID) ([]models.VisibleFriendLocation, error) {
	return s.visible(ctx, viewerID, candidateQuery+"\nORDER BY u.username", viewerID)
}

func (s *FriendMapService) visible(ctx context.Context, viewerID uuid.UUID, sql string, args ...any) ([]models.VisibleFriendLocation, error) {
	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	rows, err := s.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("querying friend locations: %w", err)
	}
	defer rows.Close()

	locs := []models.VisibleFriendLocation{}
	for rows.Next() {
		var loc models.VisibleFriendLocation
		in := visibility.Input{HasLocation: true}
		if err := rows.Scan(
			&loc.UserID, &loc.Username, &loc.DisplayName, &loc.AvatarURL,
			&loc.Latitude, &loc.Longitude, &loc.Accuracy, &loc.LastSeen,
			&in.HasPreferences, &in.Enabled, &in.VisibleToAllFollowers,
			&in.ViewerFollowsOwner, &in.SharedWithViewer,
		); err != nil {
			return nil, fmt.Errorf("scanning friend location: %w", err)
		}
		in.ViewerIsOwner = loc.UserID == viewerID
		if visibility.Decide(in).Visible {
			locs = append(locs, loc)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("querying friend locations: %w", err)
	}
	return locs, nil
}

// Load never fails: backend errors yield an empty map with a failed status.
func (s *FriendMapService) Load(ctx context.Context, viewerID uuid.UUID, filter string) models.FriendMap {
	locs, err := s.ComputeVisibleLocations(ctx, viewerID)
	if err != nil {
		s.log.Error("loading friend map failed", map[string]interface{}{
			"viewer_id": viewerID.String(),
			"error":     err.Error(),
		})
		return models.FriendMap{
			Status:    models.FriendMapStatusFailed,
			Message:   friendMapLoadFailed,
			Locations: []models.VisibleFriendLocation{},
		}
	}
	return models.FriendMap{
		Status:    models.FriendMapStatusOK,
		Locations: mapview.FilterByName(locs, filter),
	}
}

// SelectLocation returns the detail panel for one visible friend.
func (s *FriendMapService) SelectLocation(ctx context.Context, viewerID, userID uuid.UUID) (*models.FriendLocationDetail, error) {
	if viewerID == userID {
		return nil, ErrLocationNotVisible
	}
	locs, err := s.visible(ctx, viewerID, candidateQuery+"\n  AND u.id = $2", viewerID, userID)
	if err != nil {
		return nil, err
	}
	if len(locs) == 0 {
		return nil, ErrLocationNotVisible
	}
	loc := locs[0]

	detail := &models.FriendLocationDetail{
		Profile: models.UserSummary{
			ID:          loc.UserID,
			Username:    loc.Username,
			DisplayName: loc.DisplayName,
			AvatarURL:   loc.AvatarURL,
		},
		Location:   loc,
		MessageURL: MessageURL(loc.UserID),
	}

	var lat, lng float64
	err = s.db.QueryRow(ctx,
		"SELECT latitude, longitude FROM user_locations WHERE user_id = $1",
		viewerID,
	).Scan(&lat, &lng)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
	case err != nil:
		s.log.Warn("viewer location lookup failed", map[string]interface{}{
			"viewer_id": viewerID.String(),
			"error":     err.Error(),
		})
	default:
		km := geo.DistanceHaversine(
			mapview.ToLngLat(lat, lng).Point(),
			mapview.ToLngLat(loc.Latitude, loc.Longitude).Point(),
		) / 1000
		detail.DistanceKm = &km
	}
	return detail, nil
}

// MessageURL is the link behind the "message this person" action.
func MessageURL(userID uuid.UUID) string {
	return "/messages/new?to=" + userID.String()
}
