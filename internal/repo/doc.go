// Package repo — доступ к операционной базе PostgreSQL (read-only).
//
// По одному репозиторию на семейство проверяемых таблиц:
//
//   - AttendanceRepo — последние отметки посещаемости (attendances, users)
//   - DebtRepo — активные задолженности (loans, currencys, users)
//   - WorkOrderRepo — открытые ODT (odts, closure_odts, clients, ...)
//   - StockRepo — остатки ниже целевого уровня (spendable_stocks, ...)
//
// Репозитории только читают: аудит не изменяет данные. Фильтрация и
// сортировка выполняются в SQL; движок правил (internal/rules)
// перепроверяет пороги на своей стороне и не полагается на порядок
// слепо.
package repo
