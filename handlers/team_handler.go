package handlers

import (
	"net/http"

	"github.com/VELOCITY6097/valorant-tourney/services"
)

type TeamHandler struct {
	teamService *services.TeamService
}

func NewTeamHandler(ts *services.TeamService) *TeamHandler {
	return &TeamHandler{teamService: ts}
}

// RegisterHandler handles POST /teams. The inbound trigger carries the
// registration channel the interaction happened in; the tournament is
// resolved from it.
func (h *TeamHandler) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	var input struct {
		RegistrationChannelRef int64   `json:"registration_channel_ref"`
		Name                   string  `json:"name"`
		IconURL                *string `json:"icon_url"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	result, err := h.teamService.RegisterTeam(r.Context(), services.RegisterTeamInput{
		RegistrationChannelRef: input.RegistrationChannelRef,
		Name:                   input.Name,
		CaptainUserID:          actor.UserID,
		IconURL:                input.IconURL,
	})
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	// The key appears in this response and in the captain's DM, nowhere else.
	if err := writeJSON(w, http.StatusCreated, jsonResponse{
		"team":             result.Team,
		"registration_key": result.RegistrationKey,
	}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// JoinHandler handles POST /teams/join
func (h *TeamHandler) JoinHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	var input struct {
		JoinChannelRef  int64  `json:"join_channel_ref"`
		RegistrationKey string `json:"registration_key"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	team, err := h.teamService.JoinByKey(r.Context(), input.JoinChannelRef, actor.UserID, input.RegistrationKey)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"team": team}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// VerifyHandler handles POST /teams/{teamID}/verify
func (h *TeamHandler) VerifyHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}
	id, err := getIDFromURL(r, "teamID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.teamService.Verify(r.Context(), actor, id); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DisqualifyHandler handles DELETE /teams/{teamID}
func (h *TeamHandler) DisqualifyHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}
	id, err := getIDFromURL(r, "teamID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	reason := r.URL.Query().Get("reason")
	if err := h.teamService.Disqualify(r.Context(), actor, id, reason); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// TransferCaptainHandler handles POST /teams/{teamID}/captain
func (h *TeamHandler) TransferCaptainHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}
	id, err := getIDFromURL(r, "teamID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		NewCaptainUserID int64 `json:"new_captain_user_id"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.teamService.TransferCaptain(r.Context(), actor, id, input.NewCaptainUserID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
