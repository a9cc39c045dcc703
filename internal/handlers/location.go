package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/Nimsara-boop/destinasian-journey-sisterhood-sub000/internal/geo"
	"github.com/Nimsara-boop/destinasian-journey-sisterhood-sub000/internal/logging"
	"github.com/Nimsara-boop/destinasian-journey-sisterhood-sub000/internal/models"
	"github.com/Nimsara-boop/destinasian-journey-sisterhood-sub000/internal/services"
)

var (
	errUnknownLocationCode = errors.New("unknown location error code")
	errIncompleteFix       = errors.New("latitude and longitude are required together")
)

type LocationHandler struct {
	locationService services.LocationServiceInterface
}

func NewLocationHandler(locationService services.LocationServiceInterface) *LocationHandler {
	return &LocationHandler{locationService: locationService}
}

// LocationFix is what a device reports: either coordinates or an error code
// from its own geolocation attempt.
type LocationFix struct {
	Latitude   *float64   `json:"latitude"`
	Longitude  *float64   `json:"longitude"`
	Accuracy   *float64   `json:"accuracy"`
	CapturedAt *time.Time `json:"captured_at"`
	Error      string     `json:"error"`
}

// locator returns nil when the request carried neither a fix nor an error.
func (f LocationFix) locator() (geo.Locator, error) {
	if f.Error != "" {
		err := geo.ErrorForCode(f.Error)
		if err == nil {
			return nil, errUnknownLocationCode
		}
		return geo.Reported{Err: err}, nil
	}
	if f.Latitude == nil && f.Longitude == nil {
		return nil, nil
	}
	if f.Latitude == nil || f.Longitude == nil {
		return nil, errIncompleteFix
	}

	pos := geo.Position{
		Latitude:  *f.Latitude,
		Longitude: *f.Longitude,
		Accuracy:  f.Accuracy,
	}
	if f.CapturedAt != nil {
		pos.Timestamp = f.CapturedAt.UTC()
	}
	return geo.Reported{Position: pos}, nil
}

type TrackingRequest struct {
	Enabled *bool `json:"enabled"`
	LocationFix
}

type LocationResponse struct {
	Location *models.UserLocation `json:"location"`
	Reused   bool                 `json:"reused,omitempty"`
	Tracking bool                 `json:"tracking"`
}

type LocationErrorResponse struct {
	Error     string `json:"error"`
	Reason    string `json:"reason"`
	Retryable bool   `json:"retryable"`
}

// decodeFix accepts an empty body as "no device fix".
func decodeFix(r *http.Request, dst interface{}) error {
	if r.Body == nil {
		return nil
	}
	err := json.NewDecoder(r.Body).Decode(dst)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func (h *LocationHandler) Capture(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var fix LocationFix
	if err := decodeFix(r, &fix); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	locator, err := fix.locator()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	fresh, _ := strconv.ParseBool(r.URL.Query().Get("fresh"))

	result, err := h.locationService.Capture(r.Context(), user.ID, locator, fresh)
	if err != nil {
		writeCaptureError(w, err)
		return
	}

	tracking, _ := h.locationService.IsTracking(r.Context(), user.ID)
	writeJSON(w, http.StatusOK, LocationResponse{Location: &result.Location, Reused: result.Reused, Tracking: tracking})
}

func (h *LocationHandler) Get(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	loc, err := h.locationService.GetLocation(r.Context(), user.ID)
	if err != nil && !errors.Is(err, services.ErrLocationNotFound) {
		logging.Error("Error loading location", map[string]interface{}{"error": err.Error()})
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	tracking, err := h.locationService.IsTracking(r.Context(), user.ID)
	if err != nil {
		logging.Warn("Error reading tracking state", map[string]interface{}{"error": err.Error()})
	}

	writeJSON(w, http.StatusOK, LocationResponse{Location: loc, Tracking: tracking})
}

func (h *LocationHandler) Clear(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	if err := h.locationService.StopTracking(r.Context(), user.ID); err != nil {
		logging.Warn("Error clearing tracking flag", map[string]interface{}{"error": err.Error()})
	}
	if err := h.locationService.ClearLocation(r.Context(), user.ID); err != nil {
		logging.Error("Error clearing location", map[string]interface{}{"error": err.Error()})
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Location cleared"})
}

func (h *LocationHandler) SetTracking(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req TrackingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Enabled == nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if !*req.Enabled {
		if err := h.locationService.StopTracking(r.Context(), user.ID); err != nil {
			logging.Error("Error stopping tracking", map[string]interface{}{"error": err.Error()})
			writeError(w, http.StatusInternalServerError, "Internal server error")
			return
		}
		writeJSON(w, http.StatusOK, LocationResponse{Tracking: false})
		return
	}

	locator, err := req.locator()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	result, err := h.locationService.StartTracking(r.Context(), user.ID, locator)
	if err != nil {
		writeCaptureError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, LocationResponse{Location: &result.Location, Reused: result.Reused, Tracking: true})
}

func writeCaptureError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, geo.ErrPermissionDenied):
		writeJSON(w, http.StatusForbidden, LocationErrorResponse{
			Error:     "Location permission denied. Allow location access and try again.",
			Reason:    geo.CodePermissionDenied,
			Retryable: true,
		})
	case errors.Is(err, geo.ErrTimeout):
		writeJSON(w, http.StatusGatewayTimeout, LocationErrorResponse{
			Error:     "Getting your location took too long. Try again.",
			Reason:    geo.CodeTimeout,
			Retryable: true,
		})
	case errors.Is(err, geo.ErrUnavailable):
		writeJSON(w, http.StatusServiceUnavailable, LocationErrorResponse{
			Error:     "Your location is unavailable right now. Try again.",
			Reason:    geo.CodeUnavailable,
			Retryable: true,
		})
	case errors.Is(err, geo.ErrInvalidPosition):
		writeError(w, http.StatusBadRequest, "Invalid position")
	default:
		logging.Error("Error capturing location", map[string]interface{}{"error": err.Error()})
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}
