package api

import (
	"net/http"

	"github.com/buildwithgrove/ticket-tracker/store"
)

// createUserRequest is the body of POST /api/users.
type createUserRequest struct {
	Name *string `json:"name"`
}

func (h *handler) listUsers(w http.ResponseWriter, r *http.Request) {
	writeJSON(h.logger, w, http.StatusOK, h.ticketStore.Users())
}

func (h *handler) createUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(h.logger, w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Name == nil {
		writeError(h.logger, w, http.StatusBadRequest, "missing field: name")
		return
	}

	user := store.User{
		ID:   store.UserID(h.newID()),
		Name: *req.Name,
	}
	h.ticketStore.CreateUser(user)

	h.logger.Info().Str("user_id", string(user.ID)).Msg("created user")

	writeJSON(h.logger, w, http.StatusOK, []store.User{user})
}
