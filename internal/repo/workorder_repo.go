package repo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ruvenss/centinela/internal/domain"
)

// WorkOrderRepo — открытые рабочие наряды (ODT).
type WorkOrderRepo struct {
	pool *pgxpool.Pool
}

// NewWorkOrderRepo создаёт новый WorkOrderRepo.
func NewWorkOrderRepo(pool *pgxpool.Pool) *WorkOrderRepo {
	return &WorkOrderRepo{pool: pool}
}

// ListOpenOlderThan возвращает наряды без записи о закрытии, открытые
// раньше чем monthsAgo месяцев назад. Сортировка по created_at DESC:
// первым идёт самый свежий из попавших под критерий, не самый старый.
func (r *WorkOrderRepo) ListOpenOlderThan(ctx context.Context, monthsAgo int) ([]domain.WorkOrder, error) {
	query := `
		SELECT odts.id_odt, users.name, users.lastname, odts.amount, currencys.symbol,
		       odts.created_at, clients.name, odts.description
		FROM odts
		JOIN users ON users.user_id = odts.id_user
		JOIN currencys USING (id_currency)
		JOIN clients USING (id_client)
		LEFT JOIN closure_odts USING (id_odt)
		WHERE id_closure_odt IS NULL
		  AND odts.created_at < CURRENT_DATE - make_interval(months => $1)
		ORDER BY odts.created_at DESC
	`
	rows, err := r.pool.Query(ctx, query, monthsAgo)
	if err != nil {
		return nil, fmt.Errorf("%w: list open work orders: %v", ErrQuery, err)
	}
	defer rows.Close()

	var orders []domain.WorkOrder
	for rows.Next() {
		var o domain.WorkOrder
		if err := rows.Scan(&o.ID, &o.OwnerName, &o.OwnerLastname, &o.Amount, &o.Symbol,
			&o.CreatedAt, &o.Client, &o.Description); err != nil {
			return nil, fmt.Errorf("%w: scan work order: %v", ErrQuery, err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list open work orders: %v", ErrQuery, err)
	}
	return orders, nil
}
