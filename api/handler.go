// The api package serves the ticket tracker's JSON HTTP API.
// Responsibilities:
// - Routes /api/users, /api/teams and /api/tickets to the ticket store
// - Defaults and merges request bodies into store entities
// - Enriches tickets with the users and team they reference
// - Serves the static web UI for every other path
package api

import (
	"net/http"

	"github.com/pokt-network/poktroll/pkg/polylog"

	"github.com/buildwithgrove/ticket-tracker/store"
)

// TicketStore interface provides the in-memory store of users, teams and tickets.
//
// Used for:
// - Answering every API request from memory
type TicketStore interface {
	Users() []store.User
	GetUser(userID store.UserID) (store.User, bool)
	CreateUser(user store.User)

	Teams() []store.Team
	GetTeam(teamID store.TeamID) (store.Team, bool)
	CreateTeam(team store.Team)

	Tickets(filter store.TicketFilter) []store.Ticket
	GetTicket(ticketID store.TicketID) (store.Ticket, bool)
	CreateTicket(ticket store.Ticket)
	DeleteTicket(ticketID store.TicketID)
}

// handler holds the dependencies shared by every route.
type handler struct {
	logger      polylog.Logger
	ticketStore TicketStore

	// newID generates the ID of each created entity.
	newID func() string
}

// NewHandler returns the HTTP handler for the API and the static UI.
//
// Every route is registered both with and without a trailing slash,
// since the web UI requests collection paths with one.
// An empty staticDir disables static file serving.
func NewHandler(logger polylog.Logger, ticketStore TicketStore, staticDir string) http.Handler {
	h := &handler{
		logger:      logger.With("component", "api_handler"),
		ticketStore: ticketStore,
		newID:       newUUID,
	}

	return h.routes(staticDir)
}

func (h *handler) routes(staticDir string) http.Handler {
	mux := http.NewServeMux()

	handleCollection := func(pattern string, handlerFunc http.HandlerFunc) {
		mux.HandleFunc(pattern, handlerFunc)
		mux.HandleFunc(pattern+"/{$}", handlerFunc)
	}

	handleCollection("GET /api/users", h.listUsers)
	handleCollection("POST /api/users", h.createUser)

	handleCollection("GET /api/teams", h.listTeams)
	handleCollection("POST /api/teams", h.createTeam)

	handleCollection("GET /api/tickets", h.listTickets)
	handleCollection("POST /api/tickets", h.createTicket)
	mux.HandleFunc("GET /api/tickets/{id}", h.getTicket)
	mux.HandleFunc("PUT /api/tickets/{id}", h.updateTicket)
	mux.HandleFunc("DELETE /api/tickets/{id}", h.deleteTicket)

	if staticDir != "" {
		mux.Handle("GET /", http.FileServer(http.Dir(staticDir)))
	}

	return instrument(h.logger, mux)
}
