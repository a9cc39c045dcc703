package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/Nimsara-boop/destinasian-journey-sisterhood-sub000/internal/logging"
	"github.com/Nimsara-boop/destinasian-journey-sisterhood-sub000/internal/models"
	"github.com/Nimsara-boop/destinasian-journey-sisterhood-sub000/internal/services"
)

type SharingHandler struct {
	sharingService services.SharingServiceInterface
}

func NewSharingHandler(sharingService services.SharingServiceInterface) *SharingHandler {
	return &SharingHandler{sharingService: sharingService}
}

type SetEnabledRequest struct {
	Enabled *bool `json:"enabled"`
}

type SetAllFollowersRequest struct {
	VisibleToAllFollowers *bool `json:"visible_to_all_followers"`
}

type SharingResponse struct {
	Preferences *models.SharingPreferences `json:"preferences"`
	Message     string                     `json:"message,omitempty"`
}

// SharingErrorResponse carries the persisted preferences alongside a failed
// write so the client can revert its toggle.
type SharingErrorResponse struct {
	Error       string                     `json:"error"`
	Preferences *models.SharingPreferences `json:"preferences,omitempty"`
}

type FollowerSharingResponse struct {
	Followers []models.FollowerShareState `json:"followers"`
}

func (h *SharingHandler) Get(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	prefs, err := h.sharingService.GetPreferences(r.Context(), user.ID)
	if err != nil {
		logging.Error("Error loading sharing preferences", map[string]interface{}{"error": err.Error()})
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, SharingResponse{Preferences: prefs})
}

func (h *SharingHandler) SetEnabled(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req SetEnabledRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Enabled == nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	prefs, err := h.sharingService.SetEnabled(r.Context(), user.ID, *req.Enabled)
	if err != nil {
		h.writeToggleFailure(r.Context(), w, user.ID, "enabled", err)
		return
	}
	writeJSON(w, http.StatusOK, SharingResponse{Preferences: prefs})
}

func (h *SharingHandler) SetVisibleToAllFollowers(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req SetAllFollowersRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.VisibleToAllFollowers == nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	prefs, err := h.sharingService.SetVisibleToAllFollowers(r.Context(), user.ID, *req.VisibleToAllFollowers)
	if err != nil {
		h.writeToggleFailure(r.Context(), w, user.ID, "visible_to_all_followers", err)
		return
	}
	writeJSON(w, http.StatusOK, SharingResponse{Preferences: prefs})
}

// writeToggleFailure re-reads the stored preferences after a failed write.
// If the re-read fails too, the response carries only the error.
func (h *SharingHandler) writeToggleFailure(ctx context.Context, w http.ResponseWriter, ownerID uuid.UUID, field string, cause error) {
	logging.Error("Error updating sharing preference", map[string]interface{}{
		"field": field,
		"error": cause.Error(),
	})

	resp := SharingErrorResponse{Error: "Could not update sharing settings"}
	prefs, err := h.sharingService.GetPreferences(ctx, ownerID)
	if err != nil {
		logging.Warn("Re-reading sharing preferences failed", map[string]interface{}{"error": err.Error()})
	} else {
		resp.Preferences = prefs
	}
	writeJSON(w, http.StatusInternalServerError, resp)
}

func (h *SharingHandler) GrantShare(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	targetID, ok := targetFromPath(w, r)
	if !ok {
		return
	}

	err := h.sharingService.GrantShare(r.Context(), user.ID, targetID)
	switch {
	case errors.Is(err, services.ErrCannotShareWithSelf):
		writeError(w, http.StatusBadRequest, "Cannot share location with yourself")
	case errors.Is(err, services.ErrShareTargetNotFollower):
		writeError(w, http.StatusConflict, "Location can only be shared with a follower")
	case err != nil:
		logging.Error("Error granting location share", map[string]interface{}{"error": err.Error()})
		writeError(w, http.StatusInternalServerError, "Internal server error")
	default:
		writeJSON(w, http.StatusOK, map[string]string{"message": "Location shared"})
	}
}

func (h *SharingHandler) RevokeShare(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	targetID, ok := targetFromPath(w, r)
	if !ok {
		return
	}

	if err := h.sharingService.RevokeShare(r.Context(), user.ID, targetID); err != nil {
		logging.Error("Error revoking location share", map[string]interface{}{"error": err.Error()})
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Location share removed"})
}

func (h *SharingHandler) Followers(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	followers, err := h.sharingService.ListFollowersWithSharingState(r.Context(), user.ID)
	if err != nil {
		logging.Error("Error listing followers with sharing state", map[string]interface{}{"error": err.Error()})
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if followers == nil {
		followers = []models.FollowerShareState{}
	}
	writeJSON(w, http.StatusOK, FollowerSharingResponse{Followers: followers})
}
