package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/Nimsara-boop/destinasian-journey-sisterhood-sub000/internal/logging"
	"github.com/Nimsara-boop/destinasian-journey-sisterhood-sub000/internal/mapview"
	"github.com/Nimsara-boop/destinasian-journey-sisterhood-sub000/internal/models"
	"github.com/Nimsara-boop/destinasian-journey-sisterhood-sub000/internal/services"
)

const friendDetailPathPrefix = "/api/map/friends/"

type FriendMapHandler struct {
	friendMapService services.FriendMapServiceInterface
}

func NewFriendMapHandler(friendMapService services.FriendMapServiceInterface) *FriendMapHandler {
	return &FriendMapHandler{friendMapService: friendMapService}
}

func (h *FriendMapHandler) List(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	fm := h.friendMapService.Load(r.Context(), user.ID, r.URL.Query().Get("q"))
	status := http.StatusOK
	if fm.Status == models.FriendMapStatusFailed {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, fm)
}

// GeoJSON renders the visible friends as map pins and returns the
// resulting FeatureCollection. A failed load answers with the same
// FriendMap body as List.
func (h *FriendMapHandler) GeoJSON(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	fm := h.friendMapService.Load(r.Context(), user.ID, r.URL.Query().Get("q"))
	if fm.Status == models.FriendMapStatusFailed {
		writeJSON(w, http.StatusServiceUnavailable, fm)
		return
	}

	view := mapview.NewGeoJSONView()
	view.DetailPath = func(id uuid.UUID) string { return friendDetailPathPrefix + id.String() }
	mapview.NewRenderer(view, nil).Render(fm.Locations, "")

	w.Header().Set("Content-Type", "application/geo+json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(view.FeatureCollection()); err != nil {
		logging.Warn("Error encoding friend map geojson", map[string]interface{}{"error": err.Error()})
	}
}

func (h *FriendMapHandler) Detail(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	friendID, ok := targetFromPath(w, r)
	if !ok {
		return
	}

	detail, err := h.friendMapService.SelectLocation(r.Context(), user.ID, friendID)
	if errors.Is(err, services.ErrLocationNotVisible) {
		writeError(w, http.StatusNotFound, "Location not available")
		return
	}
	if err != nil {
		logging.Error("Error loading friend location", map[string]interface{}{"error": err.Error()})
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, detail)
}
