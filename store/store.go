// The store package contains the in-memory data store of the ticket tracker.
//
// It holds three independent collections (users, teams and tickets), each guarded
// by its own lock. The store is loaded once from a DataSource snapshot on startup
// and flushed back to the DataSource exactly once, when it is closed.
package store
