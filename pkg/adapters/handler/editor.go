package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/wadjakorntonsri/go-devlinks/pkg/core/domain"
	"github.com/wadjakorntonsri/go-devlinks/pkg/logging"
	"github.com/wadjakorntonsri/go-devlinks/pkg/ports"
)

type EditorHandler struct {
	editor   ports.EditorService
	profiles ports.ProfileService
	logger   *slog.Logger
}

func NewEditorHandler(editor ports.EditorService, profiles ports.ProfileService, logger *slog.Logger) *EditorHandler {
	return &EditorHandler{editor: editor, profiles: profiles, logger: logging.WithComponent(logger, "http")}
}

type draftResponse struct {
	Links  []domain.LinkEntry   `json:"links"`
	Status domain.SessionStatus `json:"status"`
	Added  *bool                `json:"added,omitempty"`
}

// EditLinkRequest payload
type EditLinkRequest struct {
	Field domain.LinkField `json:"field"`
	Value string           `json:"value"`
}

// ValidateRequest payload
type ValidateRequest struct {
	Platform string `json:"platform"`
	URL      string `json:"url"`
}

func (h *EditorHandler) respondDraft(w http.ResponseWriter, uid string, links []domain.LinkEntry) {
	if links == nil {
		links = []domain.LinkEntry{}
	}
	writeJSON(w, http.StatusOK, draftResponse{Links: links, Status: h.editor.Session(uid)})
}

// Get Draft
func (h *EditorHandler) Draft(w http.ResponseWriter, r *http.Request) {
	uid, _ := UserIDFromContext(r.Context())
	links, err := h.editor.Draft(r.Context(), uid)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	h.respondDraft(w, uid, links)
}

// Add Link
func (h *EditorHandler) AddLink(w http.ResponseWriter, r *http.Request) {
	uid, _ := UserIDFromContext(r.Context())
	links, added, err := h.editor.AddLink(r.Context(), uid)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	status := http.StatusOK
	if added {
		status = http.StatusCreated
	}
	writeJSON(w, status, draftResponse{Links: links, Status: h.editor.Session(uid), Added: &added})
}

// Edit Link
func (h *EditorHandler) EditLink(w http.ResponseWriter, r *http.Request) {
	uid, _ := UserIDFromContext(r.Context())
	position, ok := parsePosition(w, r)
	if !ok {
		return
	}

	var req EditLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	links, err := h.editor.EditLink(r.Context(), uid, position, req.Field, req.Value)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	h.respondDraft(w, uid, links)
}

// Remove Link
func (h *EditorHandler) RemoveLink(w http.ResponseWriter, r *http.Request) {
	uid, _ := UserIDFromContext(r.Context())
	position, ok := parsePosition(w, r)
	if !ok {
		return
	}

	links, err := h.editor.RemoveLink(r.Context(), uid, position)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	h.respondDraft(w, uid, links)
}

// Save Draft
func (h *EditorHandler) Save(w http.ResponseWriter, r *http.Request) {
	uid, _ := UserIDFromContext(r.Context())
	result, err := h.editor.Save(r.Context(), uid)
	if err != nil {
		logging.FromContext(r.Context(), h.logger).Error("save failed", "error", err)
		http.Error(w, "failed to save links", http.StatusInternalServerError)
		return
	}

	links, err := h.editor.Draft(r.Context(), uid)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"result": result,
		"links":  links,
		"status": h.editor.Session(uid),
	})
}

// Reload Draft from the saved links
func (h *EditorHandler) Reload(w http.ResponseWriter, r *http.Request) {
	uid, _ := UserIDFromContext(r.Context())
	links, err := h.editor.Reload(r.Context(), uid)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	h.respondDraft(w, uid, links)
}

// List saved links
func (h *EditorHandler) SavedLinks(w http.ResponseWriter, r *http.Request) {
	uid, _ := UserIDFromContext(r.Context())
	entries, err := h.editor.SavedLinks(r.Context(), uid)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	links := make([]domain.PublicLink, 0, len(entries))
	for _, e := range entries {
		links = append(links, domain.NewPublicLink(e))
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"links": links})
}

// Preview of the profile page with the current draft
func (h *EditorHandler) Preview(w http.ResponseWriter, r *http.Request) {
	uid, _ := UserIDFromContext(r.Context())
	links, err := h.editor.Draft(r.Context(), uid)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	preview, err := h.profiles.Preview(r.Context(), uid, links)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, preview)
}

// Validate a single link without touching the draft
func (h *EditorHandler) Validate(w http.ResponseWriter, r *http.Request) {
	var req ValidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	platform, _ := domain.ParsePlatform(req.Platform)
	resp := map[string]interface{}{"valid": false}
	if domain.ValidateLink(platform, req.URL) {
		resp["valid"] = true
		resp["formatted"] = domain.FormatURL(req.URL)
	}
	writeJSON(w, http.StatusOK, resp)
}

func parsePosition(w http.ResponseWriter, r *http.Request) (int, bool) {
	position, err := strconv.Atoi(r.PathValue("position"))
	if err != nil {
		http.Error(w, "Invalid position", http.StatusBadRequest)
		return 0, false
	}
	return position, true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps domain errors to status codes; anything else is logged
// and reported as a 500.
func writeError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, domain.ErrIndexOutOfRange),
		errors.Is(err, domain.ErrUnknownField),
		errors.Is(err, domain.ErrUnknownPlatform),
		errors.Is(err, domain.ErrInvalidEmail):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, domain.ErrProfileNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		logging.FromContext(r.Context(), logger).Error("request failed", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}
