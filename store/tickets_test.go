package store

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_Tickets(t *testing.T) {
	statusNew := TicketStatusNew
	statusRejected := TicketStatusRejected
	teamAlpha := "Alpha"
	teamBeta := "Beta"
	teamMissing := "Nonexistent"
	teamBlank := "   "
	teamAlphaPadded := " Alpha "

	tests := []struct {
		name            string
		filter          TicketFilter
		expectedTickets []TicketID
	}{
		{
			name:            "should return every ticket without a filter",
			filter:          TicketFilter{},
			expectedTickets: []TicketID{"T1", "T2", "T3", "T4", "T5"},
		},
		{
			name:            "should filter by status",
			filter:          TicketFilter{Status: &statusNew},
			expectedTickets: []TicketID{"T1", "T3", "T4", "T5"},
		},
		{
			name:            "should filter by team name",
			filter:          TicketFilter{Team: &teamAlpha},
			expectedTickets: []TicketID{"T1", "T2"},
		},
		{
			name:            "should combine status and team filters",
			filter:          TicketFilter{Status: &statusNew, Team: &teamAlpha},
			expectedTickets: []TicketID{"T1"},
		},
		{
			name:            "should return nothing for a team name that does not exist",
			filter:          TicketFilter{Team: &teamMissing},
			expectedTickets: []TicketID{},
		},
		{
			name:            "should ignore a blank team name",
			filter:          TicketFilter{Status: &statusNew, Team: &teamBlank},
			expectedTickets: []TicketID{"T1", "T3", "T4", "T5"},
		},
		{
			name:            "should compare the team name exactly",
			filter:          TicketFilter{Team: &teamAlphaPadded},
			expectedTickets: []TicketID{},
		},
		{
			name:            "should exclude tickets with dangling or empty team IDs from a team filter",
			filter:          TicketFilter{Team: &teamBeta},
			expectedTickets: []TicketID{"T3"},
		},
		{
			name:            "should return nothing for a status no ticket has",
			filter:          TicketFilter{Status: &statusRejected},
			expectedTickets: []TicketID{},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			c := require.New(t)

			store := newTestStore(t)
			store.CreateTeam(Team{ID: "A", Name: "Alpha"})
			store.CreateTeam(Team{ID: "B", Name: "Beta"})
			store.CreateTicket(Ticket{ID: "T1", Status: TicketStatusNew, TeamID: "A"})
			store.CreateTicket(Ticket{ID: "T2", Status: TicketStatusPending, TeamID: "A"})
			store.CreateTicket(Ticket{ID: "T3", Status: TicketStatusNew, TeamID: "B"})
			store.CreateTicket(Ticket{ID: "T4", Status: TicketStatusNew, TeamID: "deleted_team"})
			store.CreateTicket(Ticket{ID: "T5", Status: TicketStatusNew})

			tickets := store.Tickets(test.filter)
			c.NotNil(tickets)

			ticketIDs := make([]TicketID, 0, len(tickets))
			for _, ticket := range tickets {
				ticketIDs = append(ticketIDs, ticket.ID)
			}
			c.ElementsMatch(test.expectedTickets, ticketIDs)
		})
	}
}

func Test_Tickets_ResolvesTeamNameAtCallTime(t *testing.T) {
	c := require.New(t)

	store := newTestStore(t)
	store.CreateTeam(Team{ID: "A", Name: "Alpha"})
	store.CreateTicket(Ticket{ID: "T1", Status: TicketStatusNew, TeamID: "A"})

	team := "Omega"
	c.Empty(store.Tickets(TicketFilter{Team: &team}))

	store.CreateTeam(Team{ID: "A", Name: "Omega"})
	c.Len(store.Tickets(TicketFilter{Team: &team}), 1)
}

func Test_CreateTicket(t *testing.T) {
	tests := []struct {
		name     string
		create   []Ticket
		expected Ticket
	}{
		{
			name: "should return the ticket unchanged after creation",
			create: []Ticket{{
				ID:          "ticket_1",
				Title:       "Broken login",
				Description: "Users cannot log in",
				Status:      TicketStatusPending,
				CreatedBy:   "user_1",
				AssignedTo:  "user_2",
				TeamID:      "team_a",
			}},
			expected: Ticket{
				ID:          "ticket_1",
				Title:       "Broken login",
				Description: "Users cannot log in",
				Status:      TicketStatusPending,
				CreatedBy:   "user_1",
				AssignedTo:  "user_2",
				TeamID:      "team_a",
			},
		},
		{
			name: "should replace the full record on a duplicate ID",
			create: []Ticket{
				{ID: "ticket_1", Title: "first", Description: "kept?", Status: TicketStatusNew, TeamID: "team_a"},
				{ID: "ticket_1", Title: "second", Status: TicketStatusComplete},
			},
			expected: Ticket{ID: "ticket_1", Title: "second", Status: TicketStatusComplete},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			c := require.New(t)

			store := newTestStore(t)
			for _, ticket := range test.create {
				store.CreateTicket(ticket)
			}

			ticket, found := store.GetTicket(test.expected.ID)
			c.True(found)
			c.Equal(test.expected, ticket)
			c.Len(store.Tickets(TicketFilter{}), 1)
		})
	}
}

func Test_GetTicket_DanglingReferences(t *testing.T) {
	c := require.New(t)

	store := newTestStore(t)
	store.CreateUser(User{ID: "user_1", Name: "Ada"})
	store.CreateTicket(Ticket{ID: "ticket_1", Status: TicketStatusNew, AssignedTo: "user_1", TeamID: "team_404"})
	store.DeleteUser("user_1")

	ticket, found := store.GetTicket("ticket_1")
	c.True(found)
	c.Equal(UserID("user_1"), ticket.AssignedTo)

	_, found = store.GetUser(ticket.AssignedTo)
	c.False(found)
	_, found = store.GetTeam(ticket.TeamID)
	c.False(found)
}

func Test_DeleteTicket(t *testing.T) {
	tests := []struct {
		name          string
		ticketID      TicketID
		expectedCount int
	}{
		{
			name:          "should remove an existing ticket",
			ticketID:      "ticket_1",
			expectedCount: 1,
		},
		{
			name:          "should be a no-op for an absent ticket",
			ticketID:      "ticket_404",
			expectedCount: 2,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			c := require.New(t)

			store := newTestStore(t)
			store.CreateTicket(Ticket{ID: "ticket_1", Status: TicketStatusNew})
			store.CreateTicket(Ticket{ID: "ticket_2", Status: TicketStatusNew})

			store.DeleteTicket(test.ticketID)

			c.Len(store.Tickets(TicketFilter{}), test.expectedCount)
			_, found := store.GetTicket(test.ticketID)
			c.False(found)
		})
	}
}
