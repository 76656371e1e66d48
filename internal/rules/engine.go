package rules

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/ruvenss/centinela/internal/domain"
	"github.com/ruvenss/centinela/internal/telemetry"
)

// Имена проверок для логов, метрик и зеркалирования алертов.
const (
	CheckNameAttendance = "attendance"
	CheckNameDebts      = "debts"
	CheckNameWorkOrders = "work_orders"
	CheckNameLowStock   = "low_stock"
)

// attendanceStaleAfter — порог устаревания отметки посещаемости.
// Алерт формируется при строгом превышении: ровно 48 часов — не алерт.
const attendanceStaleAfter = 48 * time.Hour

// Источники данных проверок. Реализуются пакетом repo;
// в тестах подменяются фейками.
type (
	// AttendanceSource отдаёт последнюю отметку посещаемости
	// для каждого из запрошенных пользователей.
	AttendanceSource interface {
		LatestByUser(ctx context.Context, userIDs []int64) ([]domain.AttendanceRecord, error)
	}

	// DebtSource отдаёт активные задолженности.
	DebtSource interface {
		ListActive(ctx context.Context) ([]domain.Debt, error)
	}

	// WorkOrderSource отдаёт открытые ODT старше monthsAgo месяцев.
	WorkOrderSource interface {
		ListOpenOlderThan(ctx context.Context, monthsAgo int) ([]domain.WorkOrder, error)
	}

	// StockSource отдаёт остатки ниже целевого уровня.
	StockSource interface {
		ListBelowMid(ctx context.Context) ([]domain.StockLine, error)
	}
)

// Engine — движок правил обнаружения.
//
// Движок перепроверяет пороги и сортировку на своей стороне,
// даже если источник уже отфильтровал и упорядочил данные в SQL:
// выходной порядок алертов — контракт движка, а не источника.
type Engine struct {
	attendance AttendanceSource
	debts      DebtSource
	workOrders WorkOrderSource
	stocks     StockSource

	formatDate DateFormatter
	now        func() time.Time
	logger     *slog.Logger
}

// Config — конфигурация Engine.
type Config struct {
	Attendance AttendanceSource
	Debts      DebtSource
	WorkOrders WorkOrderSource
	Stocks     StockSource

	// FormatDate — форматирование дат в текстах алертов
	// (default: FormatDateSpanish).
	FormatDate DateFormatter

	// Now — источник текущего времени (default: time.Now).
	Now func() time.Time

	// Logger (default: slog.Default()).
	Logger *slog.Logger
}

// New создаёт новый Engine.
func New(cfg Config) *Engine {
	formatDate := cfg.FormatDate
	if formatDate == nil {
		formatDate = FormatDateSpanish
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Engine{
		attendance: cfg.Attendance,
		debts:      cfg.Debts,
		workOrders: cfg.WorkOrders,
		stocks:     cfg.Stocks,
		formatDate: formatDate,
		now:        now,
		logger:     logger,
	}
}

// CheckAttendance возвращает алерты по пользователям, не отмечавшим
// посещаемость дольше attendanceStaleAfter, и отдельно — пользователей
// вообще без записей (requested − found). По отсутствующим алерт
// не формируется: это осознанный no-op, а не потеря данных.
func (e *Engine) CheckAttendance(ctx context.Context, userIDs []int64, now time.Time) (msgs []string, missing []int64) {
	if len(userIDs) == 0 {
		return nil, nil
	}

	records, err := e.attendance.LatestByUser(ctx, userIDs)
	if err != nil {
		e.failCheck(CheckNameAttendance, err)
		return nil, nil
	}

	cutoff := now.Add(-attendanceStaleAfter)
	found := make(map[int64]bool, len(records))

	for _, rec := range records {
		found[rec.UserID] = true
		if !rec.LastSeen.Before(cutoff) {
			continue
		}
		msgs = append(msgs, fmt.Sprintf(
			"**%s %s** no ha ingresado la asistencia desde el %s",
			rec.Name, rec.Lastname, e.formatDate(rec.LastSeen)))
	}

	for _, id := range userIDs {
		if !found[id] {
			missing = append(missing, id)
		}
	}

	return msgs, missing
}

// CheckDebts возвращает по одному алерту на каждую ненулевую
// задолженность, по убыванию суммы.
func (e *Engine) CheckDebts(ctx context.Context) []string {
	debts, err := e.debts.ListActive(ctx)
	if err != nil {
		e.failCheck(CheckNameDebts, err)
		return nil
	}

	active := debts[:0:0]
	for _, d := range debts {
		if d.Amount.IsZero() {
			continue
		}
		active = append(active, d)
	}
	sort.SliceStable(active, func(i, j int) bool {
		return active[i].Amount.GreaterThan(active[j].Amount)
	})

	msgs := make([]string, 0, len(active))
	for _, d := range active {
		msgs = append(msgs, fmt.Sprintf(
			"**%s %s** tiene una deuda de **%s%s**",
			d.Name, d.Lastname, d.Symbol, fixed2(d.Amount)))
	}
	return msgs
}

// CheckWorkOrders возвращает алерты по открытым ODT, созданным раньше
// чем monthsAgo месяцев назад. Первым идёт самый свежий из попавших
// под критерий наряд.
func (e *Engine) CheckWorkOrders(ctx context.Context, monthsAgo int) []string {
	orders, err := e.workOrders.ListOpenOlderThan(ctx, monthsAgo)
	if err != nil {
		e.failCheck(CheckNameWorkOrders, err)
		return nil
	}

	// Порог считается от сегодняшней даты, как CURRENT_DATE в источнике.
	now := e.now()
	cutoff := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).
		AddDate(0, -monthsAgo, 0)

	old := orders[:0:0]
	for _, o := range orders {
		if o.CreatedAt.Before(cutoff) {
			old = append(old, o)
		}
	}
	sort.SliceStable(old, func(i, j int) bool {
		return old[i].CreatedAt.After(old[j].CreatedAt)
	})

	msgs := make([]string, 0, len(old))
	for _, o := range old {
		msgs = append(msgs, fmt.Sprintf(
			"\tLa **ODT %d** de **%s %s** tiene más de %d meses abierta:\n"+
				"\tMonto: %s%s\n"+
				"\tCliente: %s\n"+
				"\tFecha de apertura: %s\n"+
				"\tDescripción: %s\n"+
				separator,
			o.ID, o.OwnerName, o.OwnerLastname, monthsAgo,
			o.Symbol, fixed2(o.Amount),
			o.Client,
			e.formatDate(o.CreatedAt),
			o.Description))
	}
	return msgs
}

// CheckLowStock возвращает алерты по остаткам ниже целевого уровня,
// по убыванию стоимости недостающего запаса.
func (e *Engine) CheckLowStock(ctx context.Context) []string {
	lines, err := e.stocks.ListBelowMid(ctx)
	if err != nil {
		e.failCheck(CheckNameLowStock, err)
		return nil
	}

	low := lines[:0:0]
	for _, l := range lines {
		if l.Amount.LessThan(l.MidStock) {
			low = append(low, l)
		}
	}
	sort.SliceStable(low, func(i, j int) bool {
		return low[i].ShortfallCost.GreaterThan(low[j].ShortfallCost)
	})

	msgs := make([]string, 0, len(low))
	for _, l := range low {
		msgs = append(msgs, fmt.Sprintf(
			"\tEl producto **%s** en el almacén **%s** tiene poco stock\n"+
				"\tStock actual: %s %s\n"+
				"\tStock medio: %s %s\n"+
				"\tStock mínimo necesario: %s %s\n"+
				separator,
			l.Code, l.Storage,
			fixed2(l.Amount), l.Unit,
			fixed2(l.MidStock), l.Unit,
			fixed2(l.Shortfall()), l.Unit))
	}
	return msgs
}

// failCheck логирует ошибку запроса на границе проверки.
// Проверка возвращает пустой список и не мешает остальным.
func (e *Engine) failCheck(check string, err error) {
	telemetry.CheckFailures.WithLabelValues(check).Inc()
	telemetry.WithCheck(e.logger, check).Error("check failed, returning no alerts", "error", err)
}
