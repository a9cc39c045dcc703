package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/Nimsara-boop/destinasian-journey-sisterhood-sub000/internal/models"
)

var (
	ErrCannotShareWithSelf    = errors.New("cannot share location with yourself")
	ErrShareTargetNotFollower = errors.New("location can only be shared with a follower")
)

// SharingService stores who may see an owner's location. Every read fails
// closed: an owner without a preferences row shares with nobody.
type SharingService struct {
	db DBConn
}

func NewSharingService(db DBConn) *SharingService {
	return &SharingService{db: db}
}

func (s *SharingService) GetPreferences(ctx context.Context, ownerID uuid.UUID) (*models.SharingPreferences, error) {
	prefs := &models.SharingPreferences{OwnerID: ownerID}
	var updatedAt time.Time
	err := s.db.QueryRow(ctx,
		`SELECT enabled, visible_to_all_followers, updated_at
		 FROM location_sharing_preferences WHERE owner_id = $1`,
		ownerID,
	).Scan(&prefs.Enabled, &prefs.VisibleToAllFollowers, &updatedAt)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
	case err != nil:
		return nil, fmt.Errorf("getting sharing preferences: %w", err)
	default:
		prefs.UpdatedAt = &updatedAt
	}

	shares, err := s.explicitShares(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	prefs.ExplicitShares = shares
	return prefs, nil
}

// SetEnabled flips the master switch and returns the persisted preferences.
func (s *SharingService) SetEnabled(ctx context.Context, ownerID uuid.UUID, enabled bool) (*models.SharingPreferences, error) {
	return s.upsert(ctx, ownerID,
		`INSERT INTO location_sharing_preferences (owner_id, enabled)
		 VALUES ($1, $2)
		 ON CONFLICT (owner_id) DO UPDATE
		   SET enabled = EXCLUDED.enabled, updated_at = NOW()
		 RETURNING enabled, visible_to_all_followers, updated_at`,
		enabled)
}

// SetVisibleToAllFollowers sets the all-followers flag and returns the
// persisted preferences. The master switch is left untouched.
func (s *SharingService) SetVisibleToAllFollowers(ctx context.Context, ownerID uuid.UUID, visible bool) (*models.SharingPreferences, error) {
	return s.upsert(ctx, ownerID,
		`INSERT INTO location_sharing_preferences (owner_id, visible_to_all_followers)
		 VALUES ($1, $2)
		 ON CONFLICT (owner_id) DO UPDATE
		   SET visible_to_all_followers = EXCLUDED.visible_to_all_followers, updated_at = NOW()
		 RETURNING enabled, visible_to_all_followers, updated_at`,
		visible)
}

func (s *SharingService) upsert(ctx context.Context, ownerID uuid.UUID, sql string, value bool) (*models.SharingPreferences, error) {
	prefs := &models.SharingPreferences{OwnerID: ownerID}
	var updatedAt time.Time
	err := s.db.QueryRow(ctx, sql, ownerID, value).
		Scan(&prefs.Enabled, &prefs.VisibleToAllFollowers, &updatedAt)
	if err != nil {
		return nil, fmt.Errorf("updating sharing preferences: %w", err)
	}
	prefs.UpdatedAt = &updatedAt

	shares, err := s.explicitShares(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	prefs.ExplicitShares = shares
	return prefs, nil
}

// GrantShare adds an explicit share for a current follower. Granting an
// existing share is a no-op.
func (s *SharingService) GrantShare(ctx context.Context, ownerID, targetID uuid.UUID) error {
	if ownerID == targetID {
		return ErrCannotShareWithSelf
	}

	var isFollower bool
	err := s.db.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM follows WHERE follower_id = $1 AND following_id = $2)",
		targetID, ownerID,
	).Scan(&isFollower)
	if err != nil {
		return fmt.Errorf("checking follower: %w", err)
	}
	if !isFollower {
		return ErrShareTargetNotFollower
	}

	_, err = s.db.Exec(ctx,
		`INSERT INTO location_shares (owner_id, shared_with_user_id)
		 VALUES ($1, $2)
		 ON CONFLICT DO NOTHING`,
		ownerID, targetID,
	)
	if err != nil {
		return fmt.Errorf("granting share: %w", err)
	}
	return nil
}

// RevokeShare removes an explicit share. Revoking a missing share is a no-op.
func (s *SharingService) RevokeShare(ctx context.Context, ownerID, targetID uuid.UUID) error {
	_, err := s.db.Exec(ctx,
		"DELETE FROM location_shares WHERE owner_id = $1 AND shared_with_user_id = $2",
		ownerID, targetID,
	)
	if err != nil {
		return fmt.Errorf("revoking share: %w", err)
	}
	return nil
}

func (s *SharingService) ListFollowersWithSharingState(ctx context.Context, ownerID uuid.UUID) ([]models.FollowerShareState, error) {
	rows, err := s.db.Query(ctx,
		`SELECT u.id, u.username, u.display_name, u.avatar_url,
		        EXISTS(
		          SELECT 1 FROM location_shares ls
		          WHERE ls.owner_id = $1 AND ls.shared_with_user_id = u.id
		        )
		 FROM follows f
		 JOIN users u ON u.id = f.follower_id
		 WHERE f.following_id = $1
		 ORDER BY u.username`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing followers with sharing state: %w", err)
	}
	defer rows.Close()

	states := []models.FollowerShareState{}
	for rows.Next() {
		var st models.FollowerShareState
		f := &st.Follower
		if err := rows.Scan(&f.ID, &f.Username, &f.DisplayName, &f.AvatarURL, &st.IsSharingEnabled); err != nil {
			return nil, fmt.Errorf("scanning follower: %w", err)
		}
		states = append(states, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing followers with sharing state: %w", err)
	}
	return states, nil
}

// ListSharesReceived returns the explicit shares other owners granted to userID.
func (s *SharingService) ListSharesReceived(ctx context.Context, userID uuid.UUID) ([]models.LocationShare, error) {
	rows, err := s.db.Query(ctx,
		`SELECT owner_id, shared_with_user_id, created_at
		 FROM location_shares
		 WHERE shared_with_user_id = $1
		 ORDER BY created_at`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing received shares: %w", err)
	}
	defer rows.Close()

	shares := []models.LocationShare{}
	for rows.Next() {
		var sh models.LocationShare
		if err := rows.Scan(&sh.OwnerID, &sh.SharedWithUserID, &sh.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning share: %w", err)
		}
		shares = append(shares, sh)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing received shares: %w", err)
	}
	return shares, nil
}

func (s *SharingService) explicitShares(ctx context.Context, ownerID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := s.db.Query(ctx,
		"SELECT shared_with_user_id FROM location_shares WHERE owner_id = $1 ORDER BY created_at",
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing explicit shares: %w", err)
	}
	defer rows.Close()

	ids := []uuid.UUID{}
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning explicit share: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing explicit shares: %w", err)
	}
	return ids, nil
}
