package repo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ruvenss/centinela/internal/domain"
)

// AttendanceRepo — последние отметки посещаемости.
type AttendanceRepo struct {
	pool *pgxpool.Pool
}

// NewAttendanceRepo создаёт новый AttendanceRepo.
func NewAttendanceRepo(pool *pgxpool.Pool) *AttendanceRepo {
	return &AttendanceRepo{pool: pool}
}

// LatestByUser возвращает самую свежую запись посещаемости для каждого
// из запрошенных пользователей. Пользователи без записей в результат
// не попадают — их определяет вызывающая сторона (requested − found).
//
// DISTINCT ON с сортировкой по created_at DESC оставляет по одной записи
// на пользователя; при равных created_at победителя выбирает БД —
// принятый недетерминизм.
func (r *AttendanceRepo) LatestByUser(ctx context.Context, userIDs []int64) ([]domain.AttendanceRecord, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}

	query := `
		SELECT DISTINCT ON (attendances.id_user)
		       attendances.id_user, users.name, users.lastname, attendances.created_at
		FROM attendances
		JOIN users ON attendances.id_user = users.user_id
		WHERE attendances.id_user = ANY($1)
		ORDER BY attendances.id_user, attendances.created_at DESC
	`
	rows, err := r.pool.Query(ctx, query, userIDs)
	if err != nil {
		return nil, fmt.Errorf("%w: latest attendance: %v", ErrQuery, err)
	}
	defer rows.Close()

	var records []domain.AttendanceRecord
	for rows.Next() {
		var rec domain.AttendanceRecord
		if err := rows.Scan(&rec.UserID, &rec.Name, &rec.Lastname, &rec.LastSeen); err != nil {
			return nil, fmt.Errorf("%w: scan attendance: %v", ErrQuery, err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: latest attendance: %v", ErrQuery, err)
	}
	return records, nil
}
