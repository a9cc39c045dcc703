package handlers

import (
	"errors"
	"net/http"

	"github.com/Nimsara-boop/destinasian-journey-sisterhood-sub000/internal/logging"
	"github.com/Nimsara-boop/destinasian-journey-sisterhood-sub000/internal/models"
	"github.com/Nimsara-boop/destinasian-journey-sisterhood-sub000/internal/services"
)

type BlockHandler struct {
	blockService services.BlockServiceInterface
}

func NewBlockHandler(blockService services.BlockServiceInterface) *BlockHandler {
	return &BlockHandler{blockService: blockService}
}

type BlockListResponse struct {
	Blocked []models.BlockedUser `json:"blocked"`
	Message string               `json:"message,omitempty"`
}

// Block also severs follow edges and location shares between the pair.
func (h *BlockHandler) Block(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	blockedID, ok := targetFromBody(w, r)
	if !ok {
		return
	}

	err := h.blockService.Block(r.Context(), user.ID, blockedID)
	switch {
	case errors.Is(err, services.ErrCannotBlockSelf):
		writeError(w, http.StatusBadRequest, "Cannot block yourself")
	case errors.Is(err, services.ErrBlockExists):
		writeError(w, http.StatusConflict, "User already blocked")
	case err != nil:
		logging.Error("Error blocking user", map[string]interface{}{"error": err.Error()})
		writeError(w, http.StatusInternalServerError, "Internal server error")
	default:
		writeJSON(w, http.StatusCreated, BlockListResponse{Message: "User blocked"})
	}
}

func (h *BlockHandler) Unblock(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	blockedID, ok := targetFromPath(w, r)
	if !ok {
		return
	}

	err := h.blockService.Unblock(r.Context(), user.ID, blockedID)
	if errors.Is(err, services.ErrBlockNotFound) {
		writeError(w, http.StatusNotFound, "Block not found")
		return
	}
	if err != nil {
		logging.Error("Error unblocking user", map[string]interface{}{"error": err.Error()})
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, BlockListResponse{Message: "User unblocked"})
}

func (h *BlockHandler) List(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	blocked, err := h.blockService.ListBlocked(r.Context(), user.ID)
	if err != nil {
		logging.Error("Error listing blocked users", map[string]interface{}{"error": err.Error()})
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if blocked == nil {
		blocked = []models.BlockedUser{}
	}

	writeJSON(w, http.StatusOK, BlockListResponse{Blocked: blocked})
}
