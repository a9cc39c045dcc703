package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/Nimsara-boop/destinasian-journey-sisterhood-sub000/internal/geo"
	"github.com/Nimsara-boop/destinasian-journey-sisterhood-sub000/internal/models"
)

func withUser(req *http.Request, user *models.User) *http.Request {
	return req.WithContext(SetUserInContext(req.Context(), user))
}

type mockUserService struct {
	CreateFunc     func(ctx context.Context, params models.CreateUserParams) (*models.User, error)
	GetByIDFunc    func(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmailFunc func(ctx context.Context, email string) (*models.User, error)
}

func (m *mockUserService) Create(ctx context.Context, params models.CreateUserParams) (*models.User, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, params)
	}
	return nil, nil
}

func (m *mockUserService) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockUserService) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.GetByEmailFunc != nil {
		return m.GetByEmailFunc(ctx, email)
	}
	return nil, nil
}

type mockAuthService struct {
	HashPasswordFunc          func(password string) (string, error)
	VerifyPasswordFunc        func(hash, password string) bool
	CreateSessionFunc         func(ctx context.Context, userID uuid.UUID) (string, error)
	ValidateSessionFunc       func(ctx context.Context, token string) (*models.User, error)
	DeleteSessionFunc         func(ctx context.Context, token string) error
	DeleteAllUserSessionsFunc func(ctx context.Context, userID uuid.UUID) error
}

func (m *mockAuthService) HashPassword(password string) (string, error) {
	if m.HashPasswordFunc != nil {
		return m.HashPasswordFunc(password)
	}
	return "hashed_" + password, nil
}

func (m *mockAuthService) VerifyPassword(hash, password string) bool {
	if m.VerifyPasswordFunc != nil {
		return m.VerifyPasswordFunc(hash, password)
	}
	return hash == "hashed_"+password
}

func (m *mockAuthService) CreateSession(ctx context.Context, userID uuid.UUID) (string, error) {
	if m.CreateSessionFunc != nil {
		return m.CreateSessionFunc(ctx, userID)
	}
	return "test_session_token", nil
}

func (m *mockAuthService) ValidateSession(ctx context.Context, token string) (*models.User, error) {
	if m.ValidateSessionFunc != nil {
		return m.ValidateSessionFunc(ctx, token)
	}
	return nil, nil
}

func (m *mockAuthService) DeleteSession(ctx context.Context, token string) error {
	if m.DeleteSessionFunc != nil {
		return m.DeleteSessionFunc(ctx, token)
	}
	return nil
}

func (m *mockAuthService) DeleteAllUserSessions(ctx context.Context, userID uuid.UUID) error {
	if m.DeleteAllUserSessionsFunc != nil {
		return m.DeleteAllUserSessionsFunc(ctx, userID)
	}
	return nil
}

type mockFollowService struct {
	SearchUsersFunc   func(ctx context.Context, currentUserID uuid.UUID, query string) ([]models.UserSummary, error)
	FollowFunc        func(ctx context.Context, followerID, followingID uuid.UUID) error
	UnfollowFunc      func(ctx context.Context, followerID, followingID uuid.UUID) error
	IsFollowingFunc   func(ctx context.Context, followerID, followingID uuid.UUID) (bool, error)
	ListFollowersFunc func(ctx context.Context, userID uuid.UUID) ([]models.FollowConnection, error)
	ListFollowingFunc func(ctx context.Context, userID uuid.UUID) ([]models.FollowConnection, error)
}

func (m *mockFollowService) SearchUsers(ctx context.Context, currentUserID uuid.UUID, query string) ([]models.UserSummary, error) {
	if m.SearchUsersFunc != nil {
		return m.SearchUsersFunc(ctx, currentUserID, query)
	}
	return []models.UserSummary{}, nil
}

func (m *mockFollowService) Follow(ctx context.Context, followerID, followingID uuid.UUID) error {
	if m.FollowFunc != nil {
		return m.FollowFunc(ctx, followerID, followingID)
	}
	return nil
}

func (m *mockFollowService) Unfollow(ctx context.Context, followerID, followingID uuid.UUID) error {
	if m.UnfollowFunc != nil {
		return m.UnfollowFunc(ctx, followerID, followingID)
	}
	return nil
}

func (m *mockFollowService) IsFollowing(ctx context.Context, followerID, followingID uuid.UUID) (bool, error) {
	if m.IsFollowingFunc != nil {
		return m.IsFollowingFunc(ctx, followerID, followingID)
	}
	return false, nil
}

func (m *mockFollowService) ListFollowers(ctx context.Context, userID uuid.UUID) ([]models.FollowConnection, error) {
	if m.ListFollowersFunc != nil {
		return m.ListFollowersFunc(ctx, userID)
	}
	return []models.FollowConnection{}, nil
}

func (m *mockFollowService) ListFollowing(ctx context.Context, userID uuid.UUID) ([]models.FollowConnection, error) {
	if m.ListFollowingFunc != nil {
		return m.ListFollowingFunc(ctx, userID)
	}
	return []models.FollowConnection{}, nil
}

type mockBlockService struct {
	BlockFunc       func(ctx context.Context, blockerID, blockedID uuid.UUID) error
	UnblockFunc     func(ctx context.Context, blockerID, blockedID uuid.UUID) error
	ListBlockedFunc func(ctx context.Context, blockerID uuid.UUID) ([]models.BlockedUser, error)
}

func (m *mockBlockService) Block(ctx context.Context, blockerID, blockedID uuid.UUID) error {
	if m.BlockFunc != nil {
		return m.BlockFunc(ctx, blockerID, blockedID)
	}
	return nil
}

func (m *mockBlockService) Unblock(ctx context.Context, blockerID, blockedID uuid.UUID) error {
	if m.UnblockFunc != nil {
		return m.UnblockFunc(ctx, blockerID, blockedID)
	}
	return nil
}

func (m *mockBlockService) IsBlocked(ctx context.Context, userID, otherUserID uuid.UUID) (bool, error) {
	return false, nil
}

func (m *mockBlockService) ListBlocked(ctx context.Context, blockerID uuid.UUID) ([]models.BlockedUser, error) {
	if m.ListBlockedFunc != nil {
		return m.ListBlockedFunc(ctx, blockerID)
	}
	return []models.BlockedUser{}, nil
}

type mockSharingService struct {
	GetPreferencesFunc                func(ctx context.Context, ownerID uuid.UUID) (*models.SharingPreferences, error)
	SetEnabledFunc                    func(ctx context.Context, ownerID uuid.UUID, enabled bool) (*models.SharingPreferences, error)
	SetVisibleToAllFollowersFunc      func(ctx context.Context, ownerID uuid.UUID, visible bool) (*models.SharingPreferences, error)
	GrantShareFunc                    func(ctx context.Context, ownerID, targetID uuid.UUID) error
	RevokeShareFunc                   func(ctx context.Context, ownerID, targetID uuid.UUID) error
	ListFollowersWithSharingStateFunc func(ctx context.Context, ownerID uuid.UUID) ([]models.FollowerShareState, error)
	ListSharesReceivedFunc            func(ctx context.Context, userID uuid.UUID) ([]models.LocationShare, error)
}

func (m *mockSharingService) GetPreferences(ctx context.Context, ownerID uuid.UUID) (*models.SharingPreferences, error) {
	if m.GetPreferencesFunc != nil {
		return m.GetPreferencesFunc(ctx, ownerID)
	}
	return &models.SharingPreferences{OwnerID: ownerID, ExplicitShares: []uuid.UUID{}}, nil
}

func (m *mockSharingService) SetEnabled(ctx context.Context, ownerID uuid.UUID, enabled bool) (*models.SharingPreferences, error) {
	if m.SetEnabledFunc != nil {
		return m.SetEnabledFunc(ctx, ownerID, enabled)
	}
	return &models.SharingPreferences{OwnerID: ownerID, Enabled: enabled}, nil
}

func (m *mockSharingService) SetVisibleToAllFollowers(ctx context.Context, ownerID uuid.UUID, visible bool) (*models.SharingPreferences, error) {
	if m.SetVisibleToAllFollowersFunc != nil {
		return m.SetVisibleToAllFollowersFunc(ctx, ownerID, visible)
	}
	return &models.SharingPreferences{OwnerID: ownerID, VisibleToAllFollowers: visible}, nil
}

func (m *mockSharingService) GrantShare(ctx context.Context, ownerID, targetID uuid.UUID) error {
	if m.GrantShareFunc != nil {
		return m.GrantShareFunc(ctx, ownerID, targetID)
	}
	return nil
}

func (m *mockSharingService) RevokeShare(ctx context.Context, ownerID, targetID uuid.UUID) error {
	if m.RevokeShareFunc != nil {
		return m.RevokeShareFunc(ctx, ownerID, targetID)
	}
	return nil
}

func (m *mockSharingService) ListFollowersWithSharingState(ctx context.Context, ownerID uuid.UUID) ([]models.FollowerShareState, error) {
	if m.ListFollowersWithSharingStateFunc != nil {
		return m.ListFollowersWithSharingStateFunc(ctx, ownerID)
	}
	return nil, nil
}

func (m *mockSharingService) ListSharesReceived(ctx context.Context, userID uuid.UUID) ([]models.LocationShare, error) {
	if m.ListSharesReceivedFunc != nil {
		return m.ListSharesReceivedFunc(ctx, userID)
	}
	return []models.LocationShare{}, nil
}

type mockLocationService struct {
	CaptureFunc       func(ctx context.Context, userID uuid.UUID, locator geo.Locator, fresh bool) (*models.CaptureResult, error)
	StartTrackingFunc func(ctx context.Context, userID uuid.UUID, locator geo.Locator) (*models.CaptureResult, error)
	StopTrackingFunc  func(ctx context.Context, userID uuid.UUID) error
	IsTrackingFunc    func(ctx context.Context, userID uuid.UUID) (bool, error)
	GetLocationFunc   func(ctx context.Context, userID uuid.UUID) (*models.UserLocation, error)
	ClearLocationFunc func(ctx context.Context, userID uuid.UUID) error
}

func (m *mockLocationService) Capture(ctx context.Context, userID uuid.UUID, locator geo.Locator, fresh bool) (*models.CaptureResult, error) {
	if m.CaptureFunc != nil {
		return m.CaptureFunc(ctx, userID, locator, fresh)
	}
	return &models.CaptureResult{Location: models.UserLocation{UserID: userID}}, nil
}

func (m *mockLocationService) StartTracking(ctx context.Context, userID uuid.UUID, locator geo.Locator) (*models.CaptureResult, error) {
	if m.StartTrackingFunc != nil {
		return m.StartTrackingFunc(ctx, userID, locator)
	}
	return &models.CaptureResult{Location: models.UserLocation{UserID: userID}}, nil
}

func (m *mockLocationService) StopTracking(ctx context.Context, userID uuid.UUID) error {
	if m.StopTrackingFunc != nil {
		return m.StopTrackingFunc(ctx, userID)
	}
	return nil
}

func (m *mockLocationService) IsTracking(ctx context.Context, userID uuid.UUID) (bool, error) {
	if m.IsTrackingFunc != nil {
		return m.IsTrackingFunc(ctx, userID)
	}
	return false, nil
}

func (m *mockLocationService) GetLocation(ctx context.Context, userID uuid.UUID) (*models.UserLocation, error) {
	if m.GetLocationFunc != nil {
		return m.GetLocationFunc(ctx, userID)
	}
	return nil, nil
}

func (m *mockLocationService) ClearLocation(ctx context.Context, userID uuid.UUID) error {
	if m.ClearLocationFunc != nil {
		return m.ClearLocationFunc(ctx, userID)
	}
	return nil
}

type mockFriendMapService struct {
	ComputeVisibleLocationsFunc func(ctx context.Context, viewerID uuid.UUID) ([]models.VisibleFriendLocation, error)
	LoadFunc                    func(ctx context.Context, viewerID uuid.UUID, filter string) models.FriendMap
	SelectLocationFunc          func(ctx context.Context, viewerID, userID uuid.UUID) (*models.FriendLocationDetail, error)
}

func (m *mockFriendMapService) ComputeVisibleLocations(ctx context.Context, viewerID uuid.UUID) ([]models.VisibleFriendLocation, error) {
	if m.ComputeVisibleLocationsFunc != nil {
		return m.ComputeVisibleLocationsFunc(ctx, viewerID)
	}
	return []models.VisibleFriendLocation{}, nil
}

func (m *mockFriendMapService) Load(ctx context.Context, viewerID uuid.UUID, filter string) models.FriendMap {
	if m.LoadFunc != nil {
		return m.LoadFunc(ctx, viewerID, filter)
	}
	return models.FriendMap{Status: models.FriendMapStatusOK, Locations: []models.VisibleFriendLocation{}}
}

func (m *mockFriendMapService) SelectLocation(ctx context.Context, viewerID, userID uuid.UUID) (*models.FriendLocationDetail, error) {
	if m.SelectLocationFunc != nil {
		return m.SelectLocationFunc(ctx, viewerID, userID)
	}
	return nil, nil
}

type mockAccountService struct {
	ExportFunc   func(ctx context.Context, userID uuid.UUID) (*models.AccountExport, error)
	DeleteFunc   func(ctx context.Context, userID uuid.UUID) (*models.DeletionReport, error)
	ActivityFunc func(ctx context.Context, userID uuid.UUID) ([]models.ActivityItem, error)
}

func (m *mockAccountService) Export(ctx context.Context, userID uuid.UUID) (*models.AccountExport, error) {
	if m.ExportFunc != nil {
		return m.ExportFunc(ctx, userID)
	}
	return &models.AccountExport{}, nil
}

func (m *mockAccountService) Delete(ctx context.Context, userID uuid.UUID) (*models.DeletionReport, error) {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, userID)
	}
	return &models.DeletionReport{UserID: userID, IdentityDeleted: true}, nil
}

func (m *mockAccountService) Activity(ctx context.Context, userID uuid.UUID) ([]models.ActivityItem, error) {
	if m.ActivityFunc != nil {
		return m.ActivityFunc(ctx, userID)
	}
	return []models.ActivityItem{}, nil
}
