package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"

	"github.com/Nimsara-boop/destinasian-journey-sisterhood-sub000/internal/config"
	"github.com/Nimsara-boop/destinasian-journey-sisterhood-sub000/internal/geo"
	"github.com/Nimsara-boop/destinasian-journey-sisterhood-sub000/internal/logging"
	"github.com/Nimsara-boop/destinasian-journey-sisterhood-sub000/internal/models"
)

const (
	recentFixKeyPrefix = "location:recent:"
	trackingKeyPrefix  = "location:tracking:"
)

var ErrLocationNotFound = errors.New("location not found")

// LocationService captures fixes and keeps one live row per user in
// user_locations. A recent fix is cached in Redis so a repeat capture within
// the maximum age reuses it instead of querying the locator again.
type LocationService struct {
	db          DBConn
	redis       *redis.Client
	opts        geo.Options
	trackingTTL time.Duration
	log         *logging.Logger
	now         func() time.Time
}

func NewLocationService(db DBConn, redis *redis.Client, cfg config.LocationConfig, log *logging.Logger) *LocationService {
	if log == nil {
		log = logging.New()
	}
	return &LocationService{
		db:    db,
		redis: redis,
		opts: geo.Options{
			HighAccuracy: true,
			Timeout:      cfg.CaptureTimeout,
			MaximumAge:   cfg.MaximumAge,
		},
		trackingTTL: cfg.TrackingTTL,
		log:         log.Named("location"),
		now:         time.Now,
	}
}

// Capture records the user's current position. Unless fresh is set, a fix
// younger than the maximum age is returned as-is with Reused set in place of
// a sensor query. A device-reported fix or error is always recorded or
// returned, since the device has already read its sensor.
func (s *LocationService) Capture(ctx context.Context, userID uuid.UUID, locator geo.Locator, fresh bool) (*models.CaptureResult, error) {
	if !fresh && !geo.Replays(locator) {
		if loc, ok := s.recentFix(ctx, userID); ok {
			return &models.CaptureResult{Location: *loc, Reused: true}, nil
		}
	}

	pos, err := geo.Capture(ctx, locator, s.opts)
	if err != nil {
		return nil, err
	}

	loc, err := s.save(ctx, userID, pos)
	if err != nil {
		return nil, err
	}
	s.cacheFix(ctx, loc)
	return &models.CaptureResult{Location: *loc}, nil
}

func (s *LocationService) save(ctx context.Context, userID uuid.UUID, pos geo.Position) (*models.UserLocation, error) {
	loc := &models.UserLocation{}
	err := s.db.QueryRow(ctx,
		`INSERT INTO user_locations (user_id, latitude, longitude, accuracy, captured_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (user_id) DO UPDATE
		   SET latitude = EXCLUDED.latitude,
		       longitude = EXCLUDED.longitude,
		       accuracy = EXCLUDED.accuracy,
		       captured_at = EXCLUDED.captured_at
		 RETURNING user_id, latitude, longitude, accuracy, captured_at`,
		userID, pos.Latitude, pos.Longitude, pos.Accuracy, pos.Timestamp,
	).Scan(&loc.UserID, &loc.Latitude, &loc.Longitude, &loc.Accuracy, &loc.CapturedAt)
	if err != nil {
		return nil, fmt.Errorf("saving location: %w", err)
	}
	return loc, nil
}

func (s *LocationService) recentFix(ctx context.Context, userID uuid.UUID) (*models.UserLocation, bool) {
	if s.redis == nil || s.opts.MaximumAge <= 0 {
		return nil, false
	}
	data, err := s.redis.Get(ctx, recentFixKeyPrefix+userID.String()).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.log.Warn("recent fix lookup failed", map[string]interface{}{"user_id": userID.String(), "error": err.Error()})
		}
		return nil, false
	}
	var loc models.UserLocation
	if err := json.Unmarshal(data, &loc); err != nil {
		return nil, false
	}
	if s.now().Sub(loc.CapturedAt) > s.opts.MaximumAge {
		return nil, false
	}
	return &loc, true
}

func (s *LocationService) cacheFix(ctx context.Context, loc *models.UserLocation) {
	if s.redis == nil || s.opts.MaximumAge <= 0 {
		return
	}
	data, err := json.Marshal(loc)
	if err != nil {
		return
	}
	if err := s.redis.Set(ctx, recentFixKeyPrefix+loc.UserID.String(), data, s.opts.MaximumAge).Err(); err != nil {
		s.log.Warn("caching recent fix failed", map[string]interface{}{"user_id": loc.UserID.String(), "error": err.Error()})
	}
}

// StartTracking marks the user as tracking and performs a single capture.
// Periodic updates are the client's job: it calls Capture on its own
// interval while tracking is on. A failed capture clears the flag.
func (s *LocationService) StartTracking(ctx context.Context, userID uuid.UUID, locator geo.Locator) (*models.CaptureResult, error) {
	key := trackingKeyPrefix + userID.String()
	if s.redis != nil {
		if err := s.redis.Set(ctx, key, s.now().UTC().Format(time.RFC3339), s.trackingTTL).Err(); err != nil {
			return nil, fmt.Errorf("setting tracking flag: %w", err)
		}
	}

	result, err := s.Capture(ctx, userID, locator, false)
	if err != nil {
		if s.redis != nil {
			s.redis.Del(context.WithoutCancel(ctx), key)
		}
		return nil, err
	}
	return result, nil
}

func (s *LocationService) StopTracking(ctx context.Context, userID uuid.UUID) error {
	if s.redis == nil {
		return nil
	}
	if err := s.redis.Del(ctx, trackingKeyPrefix+userID.String()).Err(); err != nil {
		return fmt.Errorf("clearing tracking flag: %w", err)
	}
	return nil
}

func (s *LocationService) IsTracking(ctx context.Context, userID uuid.UUID) (bool, error) {
	if s.redis == nil {
		return false, nil
	}
	n, err := s.redis.Exists(ctx, trackingKeyPrefix+userID.String()).Result()
	if err != nil {
		return false, fmt.Errorf("reading tracking flag: %w", err)
	}
	return n > 0, nil
}

func (s *LocationService) GetLocation(ctx context.Context, userID uuid.UUID) (*models.UserLocation, error) {
	loc := &models.UserLocation{}
	err := s.db.QueryRow(ctx,
		`SELECT user_id, latitude, longitude, accuracy, captured_at
		 FROM user_locations WHERE user_id = $1`,
		userID,
	).Scan(&loc.UserID, &loc.Latitude, &loc.Longitude, &loc.Accuracy, &loc.CapturedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrLocationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting location: %w", err)
	}
	return loc, nil
}

// ClearLocation forgets the user's last known position.
func (s *LocationService) ClearLocation(ctx context.Context, userID uuid.UUID) error {
	if _, err := s.db.Exec(ctx, "DELETE FROM user_locations WHERE user_id = $1", userID); err != nil {
		return fmt.Errorf("clearing location: %w", err)
	}
	if s.redis != nil {
		s.redis.Del(ctx, recentFixKeyPrefix+userID.String())
	}
	return nil
}
