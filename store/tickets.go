package store

import (
	"strings"

	"github.com/buildwithgrove/ticket-tracker/metrics"
)

// TicketFilter narrows down the tickets returned by Tickets.
// A nil field does not filter.
type TicketFilter struct {
	// Status keeps only tickets in exactly this status.
	Status *TicketStatus
	// Team keeps only tickets whose team_id resolves to a team with exactly this name.
	// A blank (whitespace only) name does not filter.
	Team *string
}

func (f TicketFilter) filtersByTeam() bool {
	return f.Team != nil && strings.TrimSpace(*f.Team) != ""
}

// Tickets returns every ticket matching the filter, in no particular order.
//
// The team filter is resolved against the teams collection at call time.
// Tickets whose team_id does not resolve to any team never match a team filter.
func (s *Store) Tickets(filter TicketFilter) []Ticket {
	tickets := s.ticketsWithStatus(filter.Status)
	if !filter.filtersByTeam() {
		return tickets
	}

	// Resolved after the tickets lock is released: only one collection lock is held at a time.
	teamIDs := s.teamIDsNamed(*filter.Team)

	filtered := make([]Ticket, 0, len(tickets))
	for _, ticket := range tickets {
		if _, ok := teamIDs[ticket.TeamID]; ok {
			filtered = append(filtered, ticket)
		}
	}
	return filtered
}

// ticketsWithStatus copies out all tickets in the given status, or all tickets if status is nil.
func (s *Store) ticketsWithStatus(status *TicketStatus) []Ticket {
	s.ticketsMu.RLock()
	defer s.ticketsMu.RUnlock()

	tickets := make([]Ticket, 0, len(s.tickets))
	for _, ticket := range s.tickets {
		if status != nil && ticket.Status != *status {
			continue
		}
		tickets = append(tickets, ticket)
	}
	return tickets
}

// GetTicket returns a Ticket from the store and a bool indicating if it exists in the store.
func (s *Store) GetTicket(ticketID TicketID) (Ticket, bool) {
	s.ticketsMu.RLock()
	defer s.ticketsMu.RUnlock()

	ticket, ok := s.tickets[ticketID]
	return ticket, ok
}

// CreateTicket inserts the ticket, replacing any existing ticket with the same ID.
//
// It is used both to create tickets and to update them: callers are
// responsible for merging changed fields over the existing record first.
func (s *Store) CreateTicket(ticket Ticket) {
	s.ticketsMu.Lock()
	defer s.ticketsMu.Unlock()

	s.tickets[ticket.ID] = ticket
	metrics.UpdateStoreSize(metrics.StoreTypeTickets, float64(len(s.tickets)))
}

// DeleteTicket removes a ticket. Deleting an absent ticket is a no-op.
func (s *Store) DeleteTicket(ticketID TicketID) {
	s.ticketsMu.Lock()
	defer s.ticketsMu.Unlock()

	delete(s.tickets, ticketID)
	metrics.UpdateStoreSize(metrics.StoreTypeTickets, float64(len(s.tickets)))
}
