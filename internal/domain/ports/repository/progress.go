package repository

import "context"

// ProgressRepository is the port to the game performance/progress store.
//
// Deletion is reachable only from the upgrade cascade, where the user trades
// module-scoped progress forward into the superseding plan. Expiry is a soft,
// reversible state and must never touch progress data.
type ProgressRepository interface {
	// DeleteModuleProgress removes a user's progress for one subject module
	// and returns the number of rows removed.
	DeleteModuleProgress(ctx context.Context, tx Tx, userID, module string) (int, error)
}
