package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"edu-games-subscription/internal/domain"
	"edu-games-subscription/internal/domain/model"
	"edu-games-subscription/internal/domain/ports/repository"
)

// Ensure subscriptionRepo implements repository.SubscriptionRepository
var _ repository.SubscriptionRepository = (*subscriptionRepo)(nil)

const subscriptionColumns = `id, user_id, plan_type, status, start_date, end_date, amount, selected_module, notes, created_at, updated_at`

type subscriptionRepo struct {
	pool *pgxpool.Pool
}

func NewSubscriptionRepo(pool *pgxpool.Pool) *subscriptionRepo {
	return &subscriptionRepo{pool: pool}
}

func (r *subscriptionRepo) Create(ctx context.Context, tx repository.Tx, s *model.Subscription) error {
	if !s.PlanType.Valid() {
		return domain.ErrInvalidPlanType
	}
	if !s.EndDate.After(s.StartDate) {
		return domain.ErrInvalidDateRange
	}
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	const q = `
INSERT INTO subscriptions (
  id, user_id, plan_type, status, start_date, end_date, amount, selected_module, notes, created_at, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,NOW(),NOW());`
	if _, err := ex.Exec(ctx, q, s.ID, s.UserID, s.PlanType, s.Status, s.StartDate, s.EndDate, s.Amount, s.SelectedModule, s.Notes); err != nil {
		return mapErr(err)
	}
	return nil
}

func (r *subscriptionRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Subscription, error) {
	const q = `SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE id=$1;`
	return r.queryOne(ctx, tx, q, id)
}

func (r *subscriptionRepo) FindByUser(ctx context.Context, tx repository.Tx, userID string) ([]*model.Subscription, error) {
	const q = `
SELECT ` + subscriptionColumns + `
  FROM subscriptions
 WHERE user_id=$1
 ORDER BY created_at DESC;`
	return r.queryMany(ctx, tx, q, userID)
}

func (r *subscriptionRepo) FindActiveByUser(ctx context.Context, tx repository.Tx, userID string, now time.Time) ([]*model.Subscription, error) {
	const q = `
SELECT ` + subscriptionColumns + `
  FROM subscriptions
 WHERE user_id=$1 AND status='ACTIVE' AND end_date > $2
 ORDER BY end_date DESC;`
	return r.queryMany(ctx, tx, q, userID, now)
}

func (r *subscriptionRepo) FindActiveByUserAndPlan(ctx context.Context, tx repository.Tx, userID string, plan model.PlanType, now time.Time) ([]*model.Subscription, error) {
	const q = `
SELECT ` + subscriptionColumns + `
  FROM subscriptions
 WHERE user_id=$1 AND plan_type=$2 AND status='ACTIVE' AND end_date > $3
 ORDER BY end_date DESC;`
	return r.queryMany(ctx, tx, q, userID, plan, now)
}

func (r *subscriptionRepo) FindExpiredCandidates(ctx context.Context, tx repository.Tx, now time.Time) ([]*model.Subscription, error) {
	const q = `
SELECT ` + subscriptionColumns + `
  FROM subscriptions
 WHERE status='ACTIVE' AND end_date < $1
 ORDER BY end_date ASC;`
	return r.queryMany(ctx, tx, q, now)
}

func (r *subscriptionRepo) UpdateStatus(ctx context.Context, tx repository.Tx, id string, status model.SubscriptionStatus) error {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	const q = `UPDATE subscriptions SET status=$2, updated_at=NOW() WHERE id=$1;`
	tag, err := ex.Exec(ctx, q, id, status)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *subscriptionRepo) ExtendEndDate(ctx context.Context, tx repository.Tx, id string, newEnd time.Time) error {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	const q = `UPDATE subscriptions SET end_date=$2, status='ACTIVE', updated_at=NOW() WHERE id=$1;`
	tag, err := ex.Exec(ctx, q, id, newEnd)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *subscriptionRepo) BulkUpdateStatus(ctx context.Context, tx repository.Tx, ids []string, status model.SubscriptionStatus) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return 0, err
	}
	// The status guard keeps re-runs from counting already-flipped rows.
	const q = `UPDATE subscriptions SET status=$2, updated_at=NOW() WHERE id = ANY($1) AND status <> $2;`
	tag, err := ex.Exec(ctx, q, ids, status)
	if err != nil {
		return 0, mapErr(err)
	}
	return int(tag.RowsAffected()), nil
}

func (r *subscriptionRepo) queryOne(ctx context.Context, tx repository.Tx, q string, args ...interface{}) (*model.Subscription, error) {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	s, err := scanSub(ex.QueryRow(ctx, q, args...))
	if err != nil {
		return nil, mapErr(err)
	}
	return s, nil
}

func (r *subscriptionRepo) queryMany(ctx context.Context, tx repository.Tx, q string, args ...interface{}) ([]*model.Subscription, error) {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	rows, err := ex.Query(ctx, q, args...)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()
	var out []*model.Subscription
	for rows.Next() {
		s, err := scanSub(rows)
		if err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.ErrReadDatabaseRow
	}
	return out, nil
}

func scanSub(row pgx.Row) (*model.Subscription, error) {
	var s model.Subscription
	var notes *string
	if err := row.Scan(&s.ID, &s.UserID, &s.PlanType, &s.Status, &s.StartDate, &s.EndDate, &s.Amount, &s.SelectedModule, &notes, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	if notes != nil {
		s.Notes = *notes
	}
	return &s, nil
}
