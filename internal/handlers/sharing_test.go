package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/Nimsara-boop/destinasian-journey-sisterhood-sub000/internal/models"
	"github.com/Nimsara-boop/destinasian-journey-sisterhood-sub000/internal/services"
)

func TestSharingHandler_SetEnabled_ReturnsPersistedState(t *testing.T) {
	viewer := &models.User{ID: uuid.New()}
	handler := NewSharingHandler(&mockSharingService{
		SetEnabledFunc: func(ctx context.Context, ownerID uuid.UUID, enabled bool) (*models.SharingPreferences, error) {
			if ownerID != viewer.ID || !enabled {
				t.Fatalf("unexpected call owner=%s enabled=%v", ownerID, enabled)
			}
			return &models.SharingPreferences{OwnerID: ownerID, Enabled: true, VisibleToAllFollowers: true}, nil
		},
	})

	req := withUser(httptest.NewRequest(http.MethodPut, "/api/sharing/enabled", strings.NewReader(`{"enabled":true}`)), viewer)
	rr := httptest.NewRecorder()
	handler.SetEnabled(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var response SharingResponse
	decodeBody(t, rr, &response)
	if !response.Preferences.Enabled || !response.Preferences.VisibleToAllFollowers {
		t.Fatalf("expected persisted preferences echoed, got %+v", response.Preferences)
	}
}

func TestSharingHandler_SetEnabled_MissingField(t *testing.T) {
	handler := NewSharingHandler(&mockSharingService{
		SetEnabledFunc: func(ctx context.Context, ownerID uuid.UUID, enabled bool) (*models.SharingPreferences, error) {
			t.Fatal("SetEnabled should not be called")
			return nil, nil
		},
	})

	req := withUser(httptest.NewRequest(http.MethodPut, "/api/sharing/enabled", strings.NewReader(`{}`)), &models.User{ID: uuid.New()})
	rr := httptest.NewRecorder()
	handler.SetEnabled(rr, req)
	assertErrorResponse(t, rr, http.StatusBadRequest, "Invalid request body")
}

func TestSharingHandler_FailedToggleRevertsToStoredState(t *testing.T) {
	viewer := &models.User{ID: uuid.New()}
	handler := NewSharingHandler(&mockSharingService{
		SetVisibleToAllFollowersFunc: func(ctx context.Context, ownerID uuid.UUID, visible bool) (*models.SharingPreferences, error) {
			return nil, errors.New("write failed")
		},
		GetPreferencesFunc: func(ctx context.Context, ownerID uuid.UUID) (*models.SharingPreferences, error) {
			return &models.SharingPreferences{OwnerID: ownerID, Enabled: true, VisibleToAllFollowers: false}, nil
		},
	})

	req := withUser(httptest.NewRequest(http.MethodPut, "/api/sharing/all-followers", strings.NewReader(`{"visible_to_all_followers":true}`)), viewer)
	rr := httptest.NewRecorder()
	handler.SetVisibleToAllFollowers(rr, req)

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
	var response SharingErrorResponse
	decodeBody(t, rr, &response)
	if response.Error == "" {
		t.Fatal("expected error message")
	}
	if response.Preferences == nil || response.Preferences.VisibleToAllFollowers {
		t.Fatalf("expected stored state (false), got %+v", response.Preferences)
	}
}

func TestSharingHandler_FailedToggleWithoutReread(t *testing.T) {
	handler := NewSharingHandler(&mockSharingService{
		SetEnabledFunc: func(ctx context.Context, ownerID uuid.UUID, enabled bool) (*models.SharingPreferences, error) {
			return nil, errors.New("write failed")
		},
		GetPreferencesFunc: func(ctx context.Context, ownerID uuid.UUID) (*models.SharingPreferences, error) {
			return nil, errors.New("read failed")
		},
	})

	req := withUser(httptest.NewRequest(http.MethodPut, "/api/sharing/enabled", strings.NewReader(`{"enabled":false}`)), &models.User{ID: uuid.New()})
	rr := httptest.NewRecorder()
	handler.SetEnabled(rr, req)

	var response SharingErrorResponse
	decodeBody(t, rr, &response)
	if rr.Code != http.StatusInternalServerError || response.Preferences != nil {
		t.Fatalf("expected bare error, got %d %+v", rr.Code, response)
	}
}

func TestSharingHandler_GrantShare(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"granted", nil, http.StatusOK},
		{"self", services.ErrCannotShareWithSelf, http.StatusBadRequest},
		{"not follower", services.ErrShareTargetNotFollower, http.StatusConflict},
		{"db", errors.New("db"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target := uuid.New()
			handler := NewSharingHandler(&mockSharingService{
				GrantShareFunc: func(ctx context.Context, ownerID, targetID uuid.UUID) error {
					if targetID != target {
						t.Fatalf("expected target %s, got %s", target, targetID)
					}
					return tt.err
				},
			})
			req := withUser(httptest.NewRequest(http.MethodPut, "/api/sharing/shares/x", nil), &models.User{ID: uuid.New()})
			req.SetPathValue("id", target.String())
			rr := httptest.NewRecorder()
			handler.GrantShare(rr, req)
			if rr.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d", tt.wantStatus, rr.Code)
			}
		})
	}
}

func TestSharingHandler_RevokeShare_InvalidID(t *testing.T) {
	handler := NewSharingHandler(&mockSharingService{})
	req := withUser(httptest.NewRequest(http.MethodDelete, "/api/sharing/shares/x", nil), &models.User{ID: uuid.New()})
	req.SetPathValue("id", "x")
	rr := httptest.NewRecorder()
	handler.RevokeShare(rr, req)
	assertErrorResponse(t, rr, http.StatusBadRequest, "Invalid user ID")
}

func TestSharingHandler_Followers(t *testing.T) {
	handler := NewSharingHandler(&mockSharingService{})
	rr := httptest.NewRecorder()
	handler.Followers(rr, withUser(httptest.NewRequest(http.MethodGet, "/api/sharing/followers", nil), &models.User{ID: uuid.New()}))

	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), `"followers":[]`) {
		t.Fatalf("expected empty followers, got %d %s", rr.Code, rr.Body.String())
	}
}
