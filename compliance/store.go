/*
store.go - Persisted store contract

PURPOSE:
  The engine treats persistence as an opaque load/save contract over AppData.
  Writes are fire-and-forget from the engine's point of view: mutations run
  to completion in memory and the surrounding layer persists afterwards. If
  two sessions mutate the same site concurrently, last-write-wins - there is
  no merge, no optimistic-concurrency token. Documented limitation, not a bug
  to fix here.

IMPLEMENTATIONS:
  - compliance/store: in-memory (tests, dev)
  - store/sqlite: SQLite-backed production store
*/
package compliance

import "context"

// Store persists the complete application state. Load returns (nil, nil)
// when nothing has been saved yet.
type Store interface {
	Load(ctx context.Context) (*AppData, error)
	Save(ctx context.Context, data *AppData) error
}
