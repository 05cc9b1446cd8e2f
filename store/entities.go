package store

import (
	"encoding/json"
	"fmt"
)

type (
	UserID   string
	TeamID   string
	TicketID string
)

// User is a person who can create tickets or be assigned to them.
type User struct {
	ID   UserID `json:"id"`
	Name string `json:"name"`
}

// Team groups tickets. Tickets are filtered by team name, not team ID.
type Team struct {
	ID   TeamID `json:"id"`
	Name string `json:"name"`
}

// Ticket is a single unit of tracked work.
//
// The user and team references are not enforced: any of them may be empty
// or hold an ID that no longer resolves to an entity.
type Ticket struct {
	ID          TicketID     `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Status      TicketStatus `json:"status"`
	// Empty if the ticket was created without a user_id cookie.
	CreatedBy UserID `json:"created_by"`
	// Empty if the ticket is unassigned.
	AssignedTo UserID `json:"assigned_to"`
	// Empty if the ticket belongs to no team.
	TeamID TeamID `json:"team_id"`
}

// TicketStatus is the workflow state of a ticket.
type TicketStatus string

const (
	TicketStatusNew      TicketStatus = "New"
	TicketStatusPending  TicketStatus = "Pending"
	TicketStatusComplete TicketStatus = "Complete"
	TicketStatusRejected TicketStatus = "Rejected"
)

// ParseTicketStatus returns the TicketStatus named by s.
// Only the four exact status names are accepted.
func ParseTicketStatus(s string) (TicketStatus, error) {
	switch status := TicketStatus(s); status {
	case TicketStatusNew, TicketStatusPending, TicketStatusComplete, TicketStatusRejected:
		return status, nil
	default:
		return "", fmt.Errorf("invalid ticket status %q: must be one of New, Pending, Complete, Rejected", s)
	}
}

// UnmarshalJSON rejects any status outside of the four known values,
// both in request bodies and in persisted snapshots.
func (s *TicketStatus) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("ticket status must be a string: %w", err)
	}

	status, err := ParseTicketStatus(raw)
	if err != nil {
		return err
	}

	*s = status
	return nil
}
