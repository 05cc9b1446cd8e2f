package store

import (
	"errors"
	"sync"
	"testing"

	"github.com/pokt-network/poktroll/pkg/polylog/polyzero"
	"github.com/stretchr/testify/require"
	gomock "go.uber.org/mock/gomock"
)

func Test_NewStore(t *testing.T) {
	tests := []struct {
		name            string
		snapshot        *Snapshot
		fetchErr        error
		expectedErr     error
		expectedUsers   int
		expectedTeams   int
		expectedTickets int
	}{
		{
			name:            "should populate all collections from the snapshot",
			snapshot:        getTestSnapshot(),
			expectedUsers:   2,
			expectedTeams:   2,
			expectedTickets: 3,
		},
		{
			name:     "should start empty when the data source has no snapshot yet",
			snapshot: NewSnapshot(),
		},
		{
			name:        "should fail when the snapshot is malformed",
			fetchErr:    ErrMalformedSnapshot,
			expectedErr: ErrMalformedSnapshot,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			c := require.New(t)

			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockDS := NewMockDataSource(ctrl)
			mockDS.EXPECT().FetchSnapshot().Return(test.snapshot, test.fetchErr).Times(1)

			store, err := NewStore(polyzero.NewLogger(), mockDS)
			if test.expectedErr != nil {
				c.ErrorIs(err, test.expectedErr)
				c.Nil(store)
				return
			}

			c.NoError(err)
			c.Len(store.Users(), test.expectedUsers)
			c.Len(store.Teams(), test.expectedTeams)
			c.Len(store.Tickets(TicketFilter{}), test.expectedTickets)
		})
	}
}

func Test_NewStore_TrustsSnapshotKeys(t *testing.T) {
	c := require.New(t)

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	snapshot := NewSnapshot()
	snapshot.Users["key_id"] = User{ID: "embedded_id", Name: "Mismatched"}

	mockDS := NewMockDataSource(ctrl)
	mockDS.EXPECT().FetchSnapshot().Return(snapshot, nil)

	store, err := NewStore(polyzero.NewLogger(), mockDS)
	c.NoError(err)

	user, found := store.GetUser("key_id")
	c.True(found)
	c.Equal(UserID("embedded_id"), user.ID)

	_, found = store.GetUser("embedded_id")
	c.False(found)
}

func Test_Close(t *testing.T) {
	tests := []struct {
		name        string
		saveErr     error
		expectedErr error
	}{
		{
			name: "should flush the full store to the data source",
		},
		{
			name:        "should surface a write failure",
			saveErr:     errors.New("disk full"),
			expectedErr: ErrSnapshotWrite,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			c := require.New(t)

			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockDS := NewMockDataSource(ctrl)
			mockDS.EXPECT().FetchSnapshot().Return(NewSnapshot(), nil)

			var saved *Snapshot
			mockDS.EXPECT().SaveSnapshot(gomock.Any()).DoAndReturn(func(snapshot *Snapshot) error {
				saved = snapshot
				return test.saveErr
			}).Times(1)
			mockDS.EXPECT().Close().Times(1)

			store, err := NewStore(polyzero.NewLogger(), mockDS)
			c.NoError(err)

			store.CreateUser(User{ID: "user_1", Name: "Ada"})
			store.CreateTeam(Team{ID: "team_1", Name: "Alpha"})
			store.CreateTicket(Ticket{ID: "ticket_1", Title: "a", Status: TicketStatusNew})

			err = store.Close()
			if test.expectedErr != nil {
				c.ErrorIs(err, test.expectedErr)
			} else {
				c.NoError(err)
			}

			c.Equal(&Snapshot{
				Users:   map[UserID]User{"user_1": {ID: "user_1", Name: "Ada"}},
				Teams:   map[TeamID]Team{"team_1": {ID: "team_1", Name: "Alpha"}},
				Tickets: map[TicketID]Ticket{"ticket_1": {ID: "ticket_1", Title: "a", Status: TicketStatusNew}},
			}, saved)
		})
	}
}

func Test_Close_FlushesExactlyOnce(t *testing.T) {
	c := require.New(t)

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	saveErr := errors.New("read-only file system")

	mockDS := NewMockDataSource(ctrl)
	mockDS.EXPECT().FetchSnapshot().Return(NewSnapshot(), nil)
	mockDS.EXPECT().SaveSnapshot(gomock.Any()).Return(saveErr).Times(1)
	mockDS.EXPECT().Close().Times(1)

	store, err := NewStore(polyzero.NewLogger(), mockDS)
	c.NoError(err)

	var wg sync.WaitGroup
	errs := make([]error, 5)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = store.Close()
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		c.ErrorIs(err, ErrSnapshotWrite)
		c.ErrorIs(err, saveErr)
	}
}

func Test_Close_WithoutDataSource(t *testing.T) {
	c := require.New(t)

	store, err := NewStore(polyzero.NewLogger(), nil)
	c.NoError(err)

	store.CreateUser(User{ID: "user_1", Name: "Ada"})
	c.NoError(store.Close())

	// The store keeps answering from memory after close.
	_, found := store.GetUser("user_1")
	c.True(found)
}

func Test_Users(t *testing.T) {
	tests := []struct {
		name          string
		create        []User
		expectedUsers []User
	}{
		{
			name:          "should return an empty list when no users exist",
			expectedUsers: []User{},
		},
		{
			name: "should return every created user",
			create: []User{
				{ID: "user_1", Name: "Ada"},
				{ID: "user_2", Name: "Grace"},
			},
			expectedUsers: []User{
				{ID: "user_1", Name: "Ada"},
				{ID: "user_2", Name: "Grace"},
			},
		},
		{
			name: "should keep only the last write for a duplicate ID",
			create: []User{
				{ID: "user_1", Name: "Ada"},
				{ID: "user_1", Name: "Ada Lovelace"},
			},
			expectedUsers: []User{
				{ID: "user_1", Name: "Ada Lovelace"},
			},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			c := require.New(t)

			store := newTestStore(t)
			for _, user := range test.create {
				store.CreateUser(user)
			}

			users := store.Users()
			c.NotNil(users)
			c.ElementsMatch(test.expectedUsers, users)
		})
	}
}

func Test_GetUser(t *testing.T) {
	tests := []struct {
		name          string
		userID        UserID
		expectedUser  User
		expectedFound bool
	}{
		{
			name:          "should return user when found",
			userID:        "user_1",
			expectedUser:  User{ID: "user_1", Name: "Ada"},
			expectedFound: true,
		},
		{
			name:          "should return false when user not found",
			userID:        "user_404",
			expectedFound: false,
		},
		{
			name:          "should return false for an empty ID",
			userID:        "",
			expectedFound: false,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			c := require.New(t)

			store := newTestStore(t)
			store.CreateUser(User{ID: "user_1", Name: "Ada"})

			user, found := store.GetUser(test.userID)
			c.Equal(test.expectedFound, found)
			c.Equal(test.expectedUser, user)
		})
	}
}

func Test_DeleteUser(t *testing.T) {
	c := require.New(t)

	store := newTestStore(t)
	store.CreateUser(User{ID: "user_1", Name: "Ada"})
	store.CreateTicket(Ticket{ID: "ticket_1", Status: TicketStatusNew, AssignedTo: "user_1"})

	store.DeleteUser("user_404")
	c.Len(store.Users(), 1)

	store.DeleteUser("user_1")
	c.Empty(store.Users())

	// No cascade: the ticket still references the deleted user.
	ticket, found := store.GetTicket("ticket_1")
	c.True(found)
	c.Equal(UserID("user_1"), ticket.AssignedTo)
}

func Test_Teams(t *testing.T) {
	c := require.New(t)

	store := newTestStore(t)
	c.Empty(store.Teams())

	store.CreateTeam(Team{ID: "team_a", Name: "Alpha"})
	store.CreateTeam(Team{ID: "team_b", Name: "Beta"})
	store.CreateTeam(Team{ID: "team_b", Name: "Bravo"})

	c.ElementsMatch([]Team{
		{ID: "team_a", Name: "Alpha"},
		{ID: "team_b", Name: "Bravo"},
	}, store.Teams())

	team, found := store.GetTeam("team_a")
	c.True(found)
	c.Equal(Team{ID: "team_a", Name: "Alpha"}, team)

	_, found = store.GetTeam("team_404")
	c.False(found)
}

func Test_ConcurrentAccess(t *testing.T) {
	c := require.New(t)

	store := newTestStore(t)
	store.CreateTeam(Team{ID: "team_a", Name: "Alpha"})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(4)
		go func() {
			defer wg.Done()
			store.CreateTicket(Ticket{ID: "shared", Status: TicketStatusPending, TeamID: "team_a"})
		}()
		go func() {
			defer wg.Done()
			team := "Alpha"
			store.Tickets(TicketFilter{Team: &team})
		}()
		go func() {
			defer wg.Done()
			store.CreateTeam(Team{ID: "team_b", Name: "Beta"})
		}()
		go func() {
			defer wg.Done()
			store.Snapshot()
		}()
	}
	wg.Wait()

	c.Len(store.Tickets(TicketFilter{}), 1)
	c.Len(store.Teams(), 2)
}

func newTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := NewStore(polyzero.NewLogger(), nil)
	require.NoError(t, err)
	return store
}

// getTestSnapshot returns a snapshot used to populate a store on construction.
func getTestSnapshot() *Snapshot {
	return &Snapshot{
		Users: map[UserID]User{
			"user_1": {ID: "user_1", Name: "Ada"},
			"user_2": {ID: "user_2", Name: "Grace"},
		},
		Teams: map[TeamID]Team{
			"team_a": {ID: "team_a", Name: "Alpha"},
			"team_b": {ID: "team_b", Name: "Beta"},
		},
		Tickets: map[TicketID]Ticket{
			"ticket_1": {ID: "ticket_1", Title: "one", Status: TicketStatusNew, TeamID: "team_a", CreatedBy: "user_1"},
			"ticket_2": {ID: "ticket_2", Title: "two", Status: TicketStatusPending, TeamID: "team_a", AssignedTo: "user_2"},
			"ticket_3": {ID: "ticket_3", Title: "three", Status: TicketStatusNew, TeamID: "team_b"},
		},
	}
}
