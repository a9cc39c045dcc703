package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/Nimsara-boop/destinasian-journey-sisterhood-sub000/internal/logging"
	"github.com/Nimsara-boop/destinasian-journey-sisterhood-sub000/internal/models"
	"github.com/Nimsara-boop/destinasian-journey-sisterhood-sub000/internal/services"
)

type FollowHandler struct {
	followService services.FollowServiceInterface
}

func NewFollowHandler(followService services.FollowServiceInterface) *FollowHandler {
	return &FollowHandler{followService: followService}
}

type FollowRequest struct {
	UserID string `json:"user_id"`
}

// targetFromBody reads the other user's id from a FollowRequest body,
// answering 400 itself when it is missing or malformed.
func targetFromBody(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	var req FollowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return uuid.Nil, false
	}
	id, err := uuid.Parse(req.UserID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid user ID")
		return uuid.Nil, false
	}
	return id, true
}

func targetFromPath(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid user ID")
		return uuid.Nil, false
	}
	return id, true
}

type UserSearchResponse struct {
	Users []models.UserSummary `json:"users"`
}

type FollowListResponse struct {
	Users []models.FollowConnection `json:"users"`
}

func (h *FollowHandler) Search(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	users, err := h.followService.SearchUsers(r.Context(), user.ID, r.URL.Query().Get("q"))
	if err != nil {
		logging.Error("Error searching users", map[string]interface{}{"error": err.Error()})
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, UserSearchResponse{Users: users})
}

func (h *FollowHandler) Follow(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	targetID, ok := targetFromBody(w, r)
	if !ok {
		return
	}

	err := h.followService.Follow(r.Context(), user.ID, targetID)
	switch {
	case errors.Is(err, services.ErrCannotFollowSelf):
		writeError(w, http.StatusBadRequest, "Cannot follow yourself")
	case errors.Is(err, services.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "User not found")
	case errors.Is(err, services.ErrUserBlocked):
		writeError(w, http.StatusForbidden, "Cannot follow this user")
	case errors.Is(err, services.ErrAlreadyFollowing):
		writeError(w, http.StatusConflict, "Already following this user")
	case err != nil:
		logging.Error("Error following user", map[string]interface{}{"error": err.Error()})
		writeError(w, http.StatusInternalServerError, "Internal server error")
	default:
		writeJSON(w, http.StatusCreated, map[string]string{"message": "Now following"})
	}
}

func (h *FollowHandler) Unfollow(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	targetID, ok := targetFromPath(w, r)
	if !ok {
		return
	}

	err := h.followService.Unfollow(r.Context(), user.ID, targetID)
	if errors.Is(err, services.ErrNotFollowing) {
		writeError(w, http.StatusNotFound, "Not following this user")
		return
	}
	if err != nil {
		logging.Error("Error unfollowing user", map[string]interface{}{"error": err.Error()})
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Unfollowed"})
}

func (h *FollowHandler) Followers(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	users, err := h.followService.ListFollowers(r.Context(), user.ID)
	if err != nil {
		logging.Error("Error listing followers", map[string]interface{}{"error": err.Error()})
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, FollowListResponse{Users: users})
}

func (h *FollowHandler) Following(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	users, err := h.followService.ListFollowing(r.Context(), user.ID)
	if err != nil {
		logging.Error("Error listing following", map[string]interface{}{"error": err.Error()})
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, FollowListResponse{Users: users})
}
