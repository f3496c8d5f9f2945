package postgres

import (
	"context"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"edu-games-subscription/internal/domain"
	"edu-games-subscription/internal/domain/model"
	"edu-games-subscription/internal/domain/ports/repository"
)

// Ensure paymentRepo implements repository.PaymentRepository
var _ repository.PaymentRepository = (*paymentRepo)(nil)

const paymentColumns = `id, user_id, plan_type, amount, currency, order_id, payment_ref, subscription_id, created_at`

type paymentRepo struct {
	pool *pgxpool.Pool
}

func NewPaymentRepo(pool *pgxpool.Pool) *paymentRepo {
	return &paymentRepo{pool: pool}
}

func (r *paymentRepo) Save(ctx context.Context, tx repository.Tx, p *model.Payment) error {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	const q = `
INSERT INTO payments (
  id, user_id, plan_type, amount, currency, order_id, payment_ref, subscription_id, created_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9);`
	if _, err := ex.Exec(ctx, q, p.ID, p.UserID, p.PlanType, p.Amount, p.Currency, p.OrderID, p.PaymentRef, p.SubscriptionID, p.CreatedAt); err != nil {
		return mapErr(err)
	}
	return nil
}

func (r *paymentRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Payment, error) {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	const q = `SELECT ` + paymentColumns + ` FROM payments WHERE id=$1;`
	p, err := scanPayment(ex.QueryRow(ctx, q, id))
	if err != nil {
		return nil, mapErr(err)
	}
	return p, nil
}

func (r *paymentRepo) ListByUser(ctx context.Context, tx repository.Tx, userID string) ([]*model.Payment, error) {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	const q = `
SELECT ` + paymentColumns + `
  FROM payments
 WHERE user_id=$1
 ORDER BY created_at DESC;`
	rows, err := ex.Query(ctx, q, userID)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()
	var out []*model.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.ErrReadDatabaseRow
	}
	return out, nil
}

func (r *paymentRepo) AttachSubscription(ctx context.Context, tx repository.Tx, paymentID, subscriptionID string) error {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	const q = `UPDATE payments SET subscription_id=$2 WHERE id=$1;`
	tag, err := ex.Exec(ctx, q, paymentID, subscriptionID)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanPayment(row pgx.Row) (*model.Payment, error) {
	var p model.Payment
	if err := row.Scan(&p.ID, &p.UserID, &p.PlanType, &p.Amount, &p.Currency, &p.OrderID, &p.PaymentRef, &p.SubscriptionID, &p.CreatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}
