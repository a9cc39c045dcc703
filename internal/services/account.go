package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/Nimsara-boop/destinasian-journey-sisterhood-sub000/internal/logging"
	"github.com/Nimsara-boop/destinasian-journey-sisterhood-sub000/internal/models"
)

var ErrAccountDeleteFailed = errors.New("account could not be deleted")

type deletionStep struct {
	table  string
	column string
}

// accountDeletionSteps lists every dependent table in the order it is
// cleared before the users row itself.
var accountDeletionSteps = []deletionStep{
	{"location_shares", "owner_id"},
	{"location_shares", "shared_with_user_id"},
	{"location_sharing_preferences", "owner_id"},
	{"user_locations", "user_id"},
	{"follows", "follower_id"},
	{"follows", "following_id"},
	{"user_blocks", "blocker_id"},
	{"user_blocks", "blocked_id"},
}

type AccountService struct {
	db        DBConn
	users     UserServiceInterface
	follows   FollowServiceInterface
	sharing   SharingServiceInterface
	locations LocationServiceInterface
	sessions  SessionPurger
	log       *logging.Logger
	now       func() time.Time
}

func NewAccountService(
	db DBConn,
	users UserServiceInterface,
	follows FollowServiceInterface,
	sharing SharingServiceInterface,
	locations LocationServiceInterface,
	sessions SessionPurger,
	log *logging.Logger,
) *AccountService {
	if log == nil {
		log = logging.New()
	}
	return &AccountService{
		db:        db,
		users:     users,
		follows:   follows,
		sharing:   sharing,
		locations: locations,
		sessions:  sessions,
		log:       log.Named("account"),
		now:       time.Now,
	}
}

func (s *AccountService) Export(ctx context.Context, userID uuid.UUID) (*models.AccountExport, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	following, err := s.follows.ListFollowing(ctx, userID)
	if err != nil {
		return nil, err
	}
	followers, err := s.follows.ListFollowers(ctx, userID)
	if err != nil {
		return nil, err
	}
	prefs, err := s.sharing.GetPreferences(ctx, userID)
	if err != nil {
		return nil, err
	}
	received, err := s.sharing.ListSharesReceived(ctx, userID)
	if err != nil {
		return nil, err
	}
	loc, err := s.locations.GetLocation(ctx, userID)
	if err != nil && !errors.Is(err, ErrLocationNotFound) {
		return nil, err
	}

	return &models.AccountExport{
		ExportedAt:     s.now().UTC(),
		Profile:        *user,
		Following:      following,
		Followers:      followers,
		Sharing:        *prefs,
		SharesReceived: received,
		Location:       loc,
	}, nil
}

// Delete clears each dependent table independently, recording what happened,
// then deletes the users row. Only a failure on the users row is returned as
// an error; the report lists any dependent table that may still hold rows.
func (s *AccountService) Delete(ctx context.Context, userID uuid.UUID) (*models.DeletionReport, error) {
	report := &models.DeletionReport{UserID: userID}
	log := s.log.WithField("user_id", userID.String())

	for _, step := range accountDeletionSteps {
		rec := models.DeletionStep{Table: step.table, Column: step.column}
		result, err := s.db.Exec(ctx,
			fmt.Sprintf("DELETE FROM %s WHERE %s = $1", step.table, step.column),
			userID,
		)
		if err != nil {
			rec.Error = err.Error()
			log.Warn("account data deletion step failed", map[string]interface{}{
				"table":  step.table,
				"column": step.column,
				"error":  err.Error(),
			})
		} else {
			rec.RowsDeleted = result.RowsAffected()
		}
		report.Steps = append(report.Steps, rec)
	}

	result, err := s.db.Exec(ctx, "DELETE FROM users WHERE id = $1", userID)
	if err != nil {
		log.Error("account identity deletion failed", map[string]interface{}{"error": err.Error()})
		return report, fmt.Errorf("%w: %v", ErrAccountDeleteFailed, err)
	}
	if result.RowsAffected() == 0 {
		return report, ErrUserNotFound
	}
	report.IdentityDeleted = true

	if s.sessions != nil {
		if err := s.sessions.DeleteAllUserSessions(ctx, userID); err != nil {
			log.Warn("purging sessions after account deletion failed", map[string]interface{}{"error": err.Error()})
		}
	}

	if failed := report.FailedTables(); len(failed) > 0 {
		log.Warn("account deleted with leftover dependent rows", map[string]interface{}{"tables": failed})
	} else {
		log.Info("account deleted")
	}
	return report, nil
}

// Activity returns the account's history, newest first.
func (s *AccountService) Activity(ctx context.Context, userID uuid.UUID) ([]models.ActivityItem, error) {
	items := []models.ActivityItem{}

	following, err := s.follows.ListFollowing(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, c := range following {
		items = append(items, userActivity(models.ActivityFollow, c.UserSummary, c.Since))
	}

	followers, err := s.follows.ListFollowers(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, c := range followers {
		items = append(items, userActivity(models.ActivityFollower, c.UserSummary, c.Since))
	}

	granted, err := s.shareActivity(ctx, models.ActivityShareGranted,
		`SELECT u.id, u.username, u.display_name, u.avatar_url, s.created_at
		 FROM location_shares s
		 JOIN users u ON u.id = s.shared_with_user_id
		 WHERE s.owner_id = $1`,
		userID)
	if err != nil {
		return nil, err
	}
	items = append(items, granted...)

	received, err := s.shareActivity(ctx, models.ActivityShareReceived,
		`SELECT u.id, u.username, u.display_name, u.avatar_url, s.created_at
		 FROM location_shares s
		 JOIN users u ON u.id = s.owner_id
		 WHERE s.shared_with_user_id = $1`,
		userID)
	if err != nil {
		return nil, err
	}
	items = append(items, received...)

	loc, err := s.locations.GetLocation(ctx, userID)
	switch {
	case errors.Is(err, ErrLocationNotFound):
	case err != nil:
		return nil, err
	default:
		items = append(items, models.ActivityItem{Kind: models.ActivityLocation, At: loc.CapturedAt, Location: loc})
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].At.After(items[j].At)
	})
	return items, nil
}

func userActivity(kind models.ActivityKind, u models.UserSummary, at time.Time) models.ActivityItem {
	return models.ActivityItem{Kind: kind, At: at, User: &u}
}

func (s *AccountService) shareActivity(ctx context.Context, kind models.ActivityKind, sql string, userID uuid.UUID) ([]models.ActivityItem, error) {
	rows, err := s.db.Query(ctx, sql, userID)
	if err != nil {
		return nil, fmt.Errorf("listing %s activity: %w", kind, err)
	}
	defer rows.Close()

	var items []models.ActivityItem
	for rows.Next() {
		var u models.UserSummary
		var at time.Time
		if err := rows.Scan(&u.ID, &u.Username, &u.DisplayName, &u.AvatarURL, &at); err != nil {
			return nil, fmt.Errorf("scanning %s activity: %w", kind, err)
		}
		items = append(items, userActivity(kind, u, at))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing %s activity: %w", kind, err)
	}
	return items, nil
}
