package handlers

import (
	"net/http"

	"github.com/VELOCITY6097/valorant-tourney/models"
	"github.com/VELOCITY6097/valorant-tourney/services"
)

type SettingsHandler struct {
	settingsService *services.SettingsService
}

func NewSettingsHandler(ss *services.SettingsService) *SettingsHandler {
	return &SettingsHandler{settingsService: ss}
}

// GetHandler handles GET /communities/{communityRef}/settings
func (h *SettingsHandler) GetHandler(w http.ResponseWriter, r *http.Request) {
	communityID, err := getRefFromURL(r, "communityRef")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	settings, err := h.settingsService.Get(r.Context(), communityID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"settings": settings}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// SetupHandler handles PUT /communities/{communityRef}/settings
func (h *SettingsHandler) SetupHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}
	communityID, err := getRefFromURL(r, "communityRef")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var settings models.GuildSettings
	if err := readJSON(w, r, &settings); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	settings.CommunityID = communityID

	if err := h.settingsService.Setup(r.Context(), actor, &settings); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"settings": settings}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// MaintenanceHandler handles POST /communities/{communityRef}/maintenance
func (h *SettingsHandler) MaintenanceHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}
	communityID, err := getRefFromURL(r, "communityRef")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		Enabled bool   `json:"enabled"`
		Message string `json:"message"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.settingsService.SetMaintenance(r.Context(), actor, communityID, input.Enabled, input.Message); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
