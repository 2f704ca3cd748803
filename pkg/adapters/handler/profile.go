package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/wadjakorntonsri/go-devlinks/pkg/core/domain"
	"github.com/wadjakorntonsri/go-devlinks/pkg/logging"
	"github.com/wadjakorntonsri/go-devlinks/pkg/ports"
)

type ProfileHandler struct {
	service ports.ProfileService
	logger  *slog.Logger
}

func NewProfileHandler(service ports.ProfileService, logger *slog.Logger) *ProfileHandler {
	return &ProfileHandler{service: service, logger: logging.WithComponent(logger, "http")}
}

// UpdateProfileRequest payload
type UpdateProfileRequest struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
}

// Get own Profile
func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	uid, _ := UserIDFromContext(r.Context())
	profile, err := h.service.GetProfile(r.Context(), uid)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// Update own Profile details
func (h *ProfileHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	uid, _ := UserIDFromContext(r.Context())

	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	profile, err := h.service.UpdateDetails(r.Context(), uid, req.FullName, req.Email)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// Get Public Profile by its sequential id
func (h *ProfileHandler) GetPublicProfile(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id < 1 {
		http.Error(w, "Invalid ID", http.StatusBadRequest)
		return
	}

	profile, err := h.service.GetPublicProfile(r.Context(), id)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// Platforms lists the selectable platforms
func (h *ProfileHandler) Platforms(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, domain.Catalogue())
}
