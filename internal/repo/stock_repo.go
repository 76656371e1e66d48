package repo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ruvenss/centinela/internal/domain"
)

// StockRepo — складские остатки расходных материалов.
type StockRepo struct {
	pool *pgxpool.Pool
}

// NewStockRepo создаёт новый StockRepo.
func NewStockRepo(pool *pgxpool.Pool) *StockRepo {
	return &StockRepo{pool: pool}
}

// ListBelowMid возвращает строки остатков ниже целевого уровня,
// по убыванию стоимости недостающего запаса: самый дорогой дефицит —
// первый алерт.
func (r *StockRepo) ListBelowMid(ctx context.Context) ([]domain.StockLine, error) {
	query := `
		SELECT spendable_products.code, storages.name, spendable_stocks.amount,
		       spendable_products.mid_stock, measures.unit,
		       (spendable_products.mid_stock - spendable_stocks.amount) * spendable_items.cost AS shortfall_cost
		FROM spendable_stocks
		JOIN spendable_items USING (id_spendable_item)
		JOIN spendable_products USING (id_spendable_product)
		JOIN storages USING (id_storage)
		JOIN measures USING (id_measure)
		WHERE spendable_stocks.amount < spendable_products.mid_stock
		ORDER BY shortfall_cost DESC
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: list low stocks: %v", ErrQuery, err)
	}
	defer rows.Close()

	var lines []domain.StockLine
	for rows.Next() {
		var l domain.StockLine
		if err := rows.Scan(&l.Code, &l.Storage, &l.Amount, &l.MidStock, &l.Unit, &l.ShortfallCost); err != nil {
			return nil, fmt.Errorf("%w: scan stock line: %v", ErrQuery, err)
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list low stocks: %v", ErrQuery, err)
	}
	return lines, nil
}
