package handlers

import (
	"errors"
	"net/http"

	"github.com/Nimsara-boop/destinasian-journey-sisterhood-sub000/internal/logging"
	"github.com/Nimsara-boop/destinasian-journey-sisterhood-sub000/internal/models"
	"github.com/Nimsara-boop/destinasian-journey-sisterhood-sub000/internal/services"
)

type AccountHandler struct {
	accountService services.AccountServiceInterface
	secure         bool
}

func NewAccountHandler(accountService services.AccountServiceInterface, secure bool) *AccountHandler {
	return &AccountHandler{accountService: accountService, secure: secure}
}

type ActivityEntry struct {
	models.ActivityItem
	Summary string `json:"summary"`
}

type ActivityResponse struct {
	Items []ActivityEntry `json:"items"`
}

type DeleteAccountResponse struct {
	Report  *models.DeletionReport `json:"report"`
	Error   string                 `json:"error,omitempty"`
	Message string                 `json:"message,omitempty"`
}

func (h *AccountHandler) Export(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	export, err := h.accountService.Export(r.Context(), user.ID)
	if err != nil {
		logging.Error("Error exporting account", map[string]interface{}{"error": err.Error()})
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	w.Header().Set("Content-Disposition", `attachment; filename="account-export.json"`)
	writeJSON(w, http.StatusOK, export)
}

func (h *AccountHandler) Activity(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	items, err := h.accountService.Activity(r.Context(), user.ID)
	if err != nil {
		logging.Error("Error loading activity", map[string]interface{}{"error": err.Error()})
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	entries := make([]ActivityEntry, 0, len(items))
	for _, item := range items {
		entries = append(entries, ActivityEntry{ActivityItem: item, Summary: item.Summary()})
	}
	writeJSON(w, http.StatusOK, ActivityResponse{Items: entries})
}

func (h *AccountHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	report, err := h.accountService.Delete(r.Context(), user.ID)
	if errors.Is(err, services.ErrUserNotFound) {
		clearSessionCookie(w, h.secure)
		writeError(w, http.StatusNotFound, "Account not found")
		return
	}
	if err != nil {
		logging.Error("Error deleting account", map[string]interface{}{"error": err.Error()})
		writeJSON(w, http.StatusInternalServerError, DeleteAccountResponse{
			Report: report,
			Error:  "Could not delete account. Try again.",
		})
		return
	}

	clearSessionCookie(w, h.secure)
	writeJSON(w, http.StatusOK, DeleteAccountResponse{Report: report, Message: "Account deleted"})
}
