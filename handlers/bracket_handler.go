package handlers

import (
	"net/http"

	"github.com/VELOCITY6097/valorant-tourney/services"
)

type BracketHandler struct {
	bracketService *services.BracketService
}

func NewBracketHandler(bs *services.BracketService) *BracketHandler {
	return &BracketHandler{bracketService: bs}
}

// InitializeHandler handles POST /tournaments/{tournamentID}/bracket
func (h *BracketHandler) InitializeHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tournament, err := h.bracketService.Initialize(r.Context(), actor, id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"tournament": tournament}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// RefreshHandler handles POST /tournaments/{tournamentID}/bracket/refresh
func (h *BracketHandler) RefreshHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	imageURL, err := h.bracketService.RefreshRender(r.Context(), actor, id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"image_url": imageURL}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// RecordResultHandler handles POST /matches/{matchID}/result
func (h *BracketHandler) RecordResultHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}
	id, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		TeamAScore int `json:"team_a_score"`
		TeamBScore int `json:"team_b_score"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.bracketService.RecordResult(r.Context(), actor, id, input.TeamAScore, input.TeamBScore)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
