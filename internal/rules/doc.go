// Package rules — движок правил обнаружения.
//
// # Обзор
//
// Четыре независимые проверки операционных данных:
//
//   - CheckAttendance — пользователи без отметки посещаемости
//     дольше двух суток (строгое неравенство: ровно 48 часов — не алерт)
//   - CheckDebts — ненулевые задолженности, по убыванию суммы
//   - CheckWorkOrders — ODT без закрытия старше N месяцев
//   - CheckLowStock — остатки ниже целевого уровня, по убыванию
//     стоимости дефицита
//
// Каждая проверка: источник данных → фильтр/порог → упорядоченный список
// готовых текстов алертов. Порядок сообщений внутри проверки значим и
// сохраняется до доставки.
//
// # Изоляция ошибок
//
// Ошибка запроса у одного источника даёт пустой список алертов этой
// проверки и логируется; остальные проверки и запуск в целом продолжаются.
//
// # Gate
//
// IsClosingDay — чистый предикат "сегодня около полумесячного закрытия":
// день месяца ∈ {12, 14, 27, предпоследний день месяца}. Проверка
// посещаемости выполняется каждый запуск независимо от предиката.
package rules
