package repo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ruvenss/centinela/internal/domain"
)

// DebtRepo — активные задолженности пользователей.
type DebtRepo struct {
	pool *pgxpool.Pool
}

// NewDebtRepo создаёт новый DebtRepo.
func NewDebtRepo(pool *pgxpool.Pool) *DebtRepo {
	return &DebtRepo{pool: pool}
}

// ListActive возвращает все ненулевые задолженности, по убыванию суммы.
// Отрицательные суммы тоже активны: алерт формируется для обоих знаков.
func (r *DebtRepo) ListActive(ctx context.Context) ([]domain.Debt, error) {
	query := `
		SELECT loans.id_user, users.name, users.lastname, loans.amount, currencys.symbol
		FROM loans
		JOIN currencys USING (id_currency)
		JOIN users ON users.user_id = loans.id_user
		WHERE loans.amount != 0
		ORDER BY loans.amount DESC
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: list active debts: %v", ErrQuery, err)
	}
	defer rows.Close()

	var debts []domain.Debt
	for rows.Next() {
		var d domain.Debt
		if err := rows.Scan(&d.UserID, &d.Name, &d.Lastname, &d.Amount, &d.Symbol); err != nil {
			return nil, fmt.Errorf("%w: scan debt: %v", ErrQuery, err)
		}
		debts = append(debts, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list active debts: %v", ErrQuery, err)
	}
	return debts, nil
}
