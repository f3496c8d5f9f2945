package postgres

import (
	"context"

	"github.com/jackc/pgx/v4/pgxpool"

	"edu-games-subscription/internal/domain/ports/repository"
)

// Ensure progressRepo implements repository.ProgressRepository
var _ repository.ProgressRepository = (*progressRepo)(nil)

type progressRepo struct {
	pool *pgxpool.Pool
}

func NewProgressRepo(pool *pgxpool.Pool) *progressRepo {
	return &progressRepo{pool: pool}
}

// DeleteModuleProgress removes a user's per-module game progress. Reached
// only from the upgrade cascade; the reconciler never calls this.
func (r *progressRepo) DeleteModuleProgress(ctx context.Context, tx repository.Tx, userID, module string) (int, error) {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return 0, err
	}
	const q = `DELETE FROM game_progress WHERE user_id=$1 AND module=$2;`
	tag, err := ex.Exec(ctx, q, userID, module)
	if err != nil {
		return 0, mapErr(err)
	}
	return int(tag.RowsAffected()), nil
}
