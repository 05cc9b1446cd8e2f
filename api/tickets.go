package api

import (
	"net/http"

	"github.com/buildwithgrove/ticket-tracker/store"
)

// Cookie identifying the user making the request.
// Its value becomes the created_by of new tickets.
const userIDCookie = "user_id"

// ticketRequest is the body of POST and PUT /api/tickets.
// A nil field was absent or null in the request.
type ticketRequest struct {
	Title       *string             `json:"title"`
	Description *string             `json:"description"`
	Status      *store.TicketStatus `json:"status"`
	AssignedTo  *string             `json:"assigned_to"`
	TeamID      *string             `json:"team_id"`
}

// TicketResponse is a ticket with its user and team references resolved.
// A reference that does not resolve is rendered as null.
type TicketResponse struct {
	ID          store.TicketID     `json:"id"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Status      store.TicketStatus `json:"status"`
	CreatedBy   *store.User        `json:"created_by"`
	AssignedTo  *store.User        `json:"assigned_to"`
	Team        *store.Team        `json:"team"`
}

// listTickets filters tickets by the status and team query parameters.
//
// An empty status parameter (status=) is treated as absent and does not
// filter, where a strict enum parse would reject it. Any other value
// outside the four statuses is a 400.
func (h *handler) listTickets(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	var filter store.TicketFilter
	if statusParam := query.Get("status"); statusParam != "" {
		status, err := store.ParseTicketStatus(statusParam)
		if err != nil {
			writeError(h.logger, w, http.StatusBadRequest, err.Error())
			return
		}
		filter.Status = &status
	}
	if query.Has("team") {
		team := query.Get("team")
		filter.Team = &team
	}

	tickets := h.ticketStore.Tickets(filter)

	responses := make([]TicketResponse, 0, len(tickets))
	for _, ticket := range tickets {
		responses = append(responses, h.ticketResponse(ticket))
	}

	writeJSON(h.logger, w, http.StatusOK, responses)
}

func (h *handler) getTicket(w http.ResponseWriter, r *http.Request) {
	ticket, ok := h.ticketStore.GetTicket(store.TicketID(r.PathValue("id")))
	if !ok {
		writeError(h.logger, w, http.StatusNotFound, "Not found")
		return
	}

	writeJSON(h.logger, w, http.StatusOK, []TicketResponse{h.ticketResponse(ticket)})
}

func (h *handler) createTicket(w http.ResponseWriter, r *http.Request) {
	var req ticketRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(h.logger, w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Title == nil {
		writeError(h.logger, w, http.StatusBadRequest, "missing field: title")
		return
	}

	ticket := h.newTicket(r, req)
	h.ticketStore.CreateTicket(ticket)

	h.logger.Info().Str("ticket_id", string(ticket.ID)).Msg("created ticket")

	writeJSON(h.logger, w, http.StatusCreated, []TicketResponse{h.ticketResponse(ticket)})
}

// updateTicket merges the request over the stored ticket.
// A ticket that does not exist is created under a fresh ID instead.
func (h *handler) updateTicket(w http.ResponseWriter, r *http.Request) {
	var req ticketRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(h.logger, w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	ticketID := store.TicketID(r.PathValue("id"))

	existing, ok := h.ticketStore.GetTicket(ticketID)
	if !ok {
		ticket := h.newTicket(r, req)
		h.ticketStore.CreateTicket(ticket)

		h.logger.Info().
			Str("requested_ticket_id", string(ticketID)).
			Str("ticket_id", string(ticket.ID)).
			Msg("ticket to update not found, created a new one")

		writeJSON(h.logger, w, http.StatusCreated, []TicketResponse{h.ticketResponse(ticket)})
		return
	}

	ticket := mergeTicket(existing, req)
	h.ticketStore.CreateTicket(ticket)

	h.logger.Info().Str("ticket_id", string(ticket.ID)).Msg("updated ticket")

	writeJSON(h.logger, w, http.StatusOK, []TicketResponse{h.ticketResponse(ticket)})
}

// deleteTicket always succeeds, whether or not the ticket existed.
func (h *handler) deleteTicket(w http.ResponseWriter, r *http.Request) {
	ticketID := store.TicketID(r.PathValue("id"))
	h.ticketStore.DeleteTicket(ticketID)

	h.logger.Info().Str("ticket_id", string(ticketID)).Msg("deleted ticket")

	w.WriteHeader(http.StatusOK)
}

// --------------------------------- Helpers ---------------------------------

// newTicket builds a ticket with a fresh ID, defaulting every absent field.
func (h *handler) newTicket(r *http.Request, req ticketRequest) store.Ticket {
	return store.Ticket{
		ID:          store.TicketID(h.newID()),
		Title:       valueOr(req.Title, ""),
		Description: valueOr(req.Description, ""),
		Status:      valueOr(req.Status, store.TicketStatusNew),
		CreatedBy:   requestUserID(r),
		AssignedTo:  store.UserID(valueOr(req.AssignedTo, "")),
		TeamID:      store.TeamID(valueOr(req.TeamID, "")),
	}
}

// mergeTicket overwrites the fields of existing that are set in req.
// The ID and creator of a ticket never change.
func mergeTicket(existing store.Ticket, req ticketRequest) store.Ticket {
	return store.Ticket{
		ID:          existing.ID,
		Title:       valueOr(req.Title, existing.Title),
		Description: valueOr(req.Description, existing.Description),
		Status:      valueOr(req.Status, existing.Status),
		CreatedBy:   existing.CreatedBy,
		AssignedTo:  store.UserID(valueOr(req.AssignedTo, string(existing.AssignedTo))),
		TeamID:      store.TeamID(valueOr(req.TeamID, string(existing.TeamID))),
	}
}

// ticketResponse resolves the references of ticket.
// Each lookup is a separate store call.
func (h *handler) ticketResponse(ticket store.Ticket) TicketResponse {
	resp := TicketResponse{
		ID:          ticket.ID,
		Title:       ticket.Title,
		Description: ticket.Description,
		Status:      ticket.Status,
	}

	if user, ok := h.ticketStore.GetUser(ticket.CreatedBy); ok {
		resp.CreatedBy = &user
	}
	if user, ok := h.ticketStore.GetUser(ticket.AssignedTo); ok {
		resp.AssignedTo = &user
	}
	if team, ok := h.ticketStore.GetTeam(ticket.TeamID); ok {
		resp.Team = &team
	}

	return resp
}

// requestUserID returns the user ID cookie of r, or "" if it has none.
func requestUserID(r *http.Request) store.UserID {
	cookie, err := r.Cookie(userIDCookie)
	if err != nil {
		return ""
	}
	return store.UserID(cookie.Value)
}

func valueOr[T any](value *T, fallback T) T {
	if value == nil {
		return fallback
	}
	return *value
}
