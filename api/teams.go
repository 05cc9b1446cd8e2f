package api

import (
	"net/http"

	"github.com/buildwithgrove/ticket-tracker/store"
)

// createTeamRequest is the body of POST /api/teams.
type createTeamRequest struct {
	Name *string `json:"name"`
}

func (h *handler) listTeams(w http.ResponseWriter, r *http.Request) {
	writeJSON(h.logger, w, http.StatusOK, h.ticketStore.Teams())
}

func (h *handler) createTeam(w http.ResponseWriter, r *http.Request) {
	var req createTeamRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(h.logger, w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Name == nil {
		writeError(h.logger, w, http.StatusBadRequest, "missing field: name")
		return
	}

	team := store.Team{
		ID:   store.TeamID(h.newID()),
		Name: *req.Name,
	}
	h.ticketStore.CreateTeam(team)

	h.logger.Info().Str("team_id", string(team.ID)).Msg("created team")

	writeJSON(h.logger, w, http.StatusOK, []store.Team{team})
}
