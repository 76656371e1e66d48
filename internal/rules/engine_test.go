package rules

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ruvenss/centinela/internal/domain"
)

// --- Фейковые источники ---

type fakeAttendance struct {
	records []domain.AttendanceRecord
	err     error
}

func (f *fakeAttendance) LatestByUser(_ context.Context, _ []int64) ([]domain.AttendanceRecord, error) {
	return f.records, f.err
}

type fakeDebts struct {
	debts []domain.Debt
	err   error
}

func (f *fakeDebts) ListActive(_ context.Context) ([]domain.Debt, error) {
	return f.debts, f.err
}

type fakeWorkOrders struct {
	orders []domain.WorkOrder
	err    error

	gotMonthsAgo int
}

func (f *fakeWorkOrders) ListOpenOlderThan(_ context.Context, monthsAgo int) ([]domain.WorkOrder, error) {
	f.gotMonthsAgo = monthsAgo
	return f.orders, f.err
}

type fakeStocks struct {
	lines []domain.StockLine
	err   error
}

func (f *fakeStocks) ListBelowMid(_ context.Context) ([]domain.StockLine, error) {
	return f.lines, f.err
}

var testNow = time.Date(2026, time.August, 29, 12, 0, 0, 0, time.UTC)

func newTestEngine(cfg Config) *Engine {
	cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	if cfg.Now == nil {
		cfg.Now = func() time.Time { return testNow }
	}
	return New(cfg)
}

// --- CheckAttendance ---

func TestCheckAttendance_StrictBoundary(t *testing.T) {
	exactly := testNow.Add(-48 * time.Hour)
	justOver := testNow.Add(-48*time.Hour - time.Second)

	tests := []struct {
		name       string
		lastSeen   time.Time
		wantAlerts int
	}{
		{name: "exactly two days is not stale", lastSeen: exactly, wantAlerts: 0},
		{name: "one second past two days is stale", lastSeen: justOver, wantAlerts: 1},
		{name: "recent attendance", lastSeen: testNow.Add(-time.Hour), wantAlerts: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEngine(Config{Attendance: &fakeAttendance{
				records: []domain.AttendanceRecord{
					{UserID: 7, Name: "Ana", Lastname: "García", LastSeen: tt.lastSeen},
				},
			}})

			msgs, missing := e.CheckAttendance(context.Background(), []int64{7}, testNow)
			if len(msgs) != tt.wantAlerts {
				t.Fatalf("expected %d alerts, got %d: %v", tt.wantAlerts, len(msgs), msgs)
			}
			if len(missing) != 0 {
				t.Errorf("expected no missing users, got %v", missing)
			}
		})
	}
}

func TestCheckAttendance_MessageContents(t *testing.T) {
	lastSeen := time.Date(2026, time.June, 3, 8, 0, 0, 0, time.UTC)
	e := newTestEngine(Config{Attendance: &fakeAttendance{
		records: []domain.AttendanceRecord{
			{UserID: 7, Name: "Ana", Lastname: "García", LastSeen: lastSeen},
		},
	}})

	msgs, _ := e.CheckAttendance(context.Background(), []int64{7}, testNow)
	if len(msgs) != 1 {
		t.Fatalf("expected 1 alert, got %d", len(msgs))
	}

	want := "**Ana García** no ha ingresado la asistencia desde el 3 de junio de 2026"
	if msgs[0] != want {
		t.Errorf("unexpected message:\n got: %s\nwant: %s", msgs[0], want)
	}
}

func TestCheckAttendance_MissingUsers(t *testing.T) {
	e := newTestEngine(Config{Attendance: &fakeAttendance{
		records: []domain.AttendanceRecord{
			{UserID: 2, Name: "Luis", Lastname: "Pérez", LastSeen: testNow},
		},
	}})

	_, missing := e.CheckAttendance(context.Background(), []int64{1, 2, 3}, testNow)
	if len(missing) != 2 || missing[0] != 1 || missing[1] != 3 {
		t.Errorf("expected missing [1 3], got %v", missing)
	}
}

func TestCheckAttendance_EmptyRequest(t *testing.T) {
	// Источник не должен вызываться вовсе: err не срабатывает
	e := newTestEngine(Config{Attendance: &fakeAttendance{err: errors.New("must not be called")}})

	msgs, missing := e.CheckAttendance(context.Background(), nil, testNow)
	if msgs != nil || missing != nil {
		t.Errorf("expected empty result for empty request, got %v / %v", msgs, missing)
	}
}

func TestCheckAttendance_QueryFailureIsIsolated(t *testing.T) {
	e := newTestEngine(Config{Attendance: &fakeAttendance{err: errors.New("db down")}})

	msgs, missing := e.CheckAttendance(context.Background(), []int64{1}, testNow)
	if len(msgs) != 0 || len(missing) != 0 {
		t.Errorf("failed check must yield empty result, got %v / %v", msgs, missing)
	}
}

// --- CheckDebts ---

func TestCheckDebts_OrderAndZeroExclusion(t *testing.T) {
	e := newTestEngine(Config{Debts: &fakeDebts{debts: []domain.Debt{
		{Name: "Luis", Lastname: "Pérez", Amount: decimal.NewFromInt(50), Symbol: "$"},
		{Name: "Ana", Lastname: "García", Amount: decimal.NewFromInt(100), Symbol: "$"},
		{Name: "Eva", Lastname: "Soto", Amount: decimal.Zero, Symbol: "$"},
	}}})

	msgs := e.CheckDebts(context.Background())
	if len(msgs) != 2 {
		t.Fatalf("expected 2 alerts, got %d: %v", len(msgs), msgs)
	}

	// 100 раньше 50
	if !strings.Contains(msgs[0], "Ana García") || !strings.Contains(msgs[1], "Luis Pérez") {
		t.Errorf("debts must be ordered by amount descending: %v", msgs)
	}

	want := "**Ana García** tiene una deuda de **$100.00**"
	if msgs[0] != want {
		t.Errorf("unexpected message:\n got: %s\nwant: %s", msgs[0], want)
	}
}

func TestCheckDebts_NegativeAmountIsActive(t *testing.T) {
	e := newTestEngine(Config{Debts: &fakeDebts{debts: []domain.Debt{
		{Name: "Ana", Lastname: "García", Amount: decimal.RequireFromString("-12.5"), Symbol: "$"},
	}}})

	msgs := e.CheckDebts(context.Background())
	if len(msgs) != 1 {
		t.Fatalf("negative debt must produce an alert, got %v", msgs)
	}
	if !strings.Contains(msgs[0], "$-12.50") {
		t.Errorf("expected rounded negative amount, got: %s", msgs[0])
	}
}

func TestCheckDebts_QueryFailureIsIsolated(t *testing.T) {
	e := newTestEngine(Config{Debts: &fakeDebts{err: errors.New("db down")}})

	if msgs := e.CheckDebts(context.Background()); len(msgs) != 0 {
		t.Errorf("failed check must yield no alerts, got %v", msgs)
	}
}

// --- CheckWorkOrders ---

func TestCheckWorkOrders_AgeThreshold(t *testing.T) {
	src := &fakeWorkOrders{orders: []domain.WorkOrder{
		{ID: 11, OwnerName: "Ana", OwnerLastname: "García",
			Amount: decimal.NewFromInt(300), Symbol: "$",
			CreatedAt: testNow.AddDate(0, 0, -70), Client: "ACME", Description: "Reparación"},
		{ID: 12, OwnerName: "Luis", OwnerLastname: "Pérez",
			Amount: decimal.NewFromInt(80), Symbol: "$",
			CreatedAt: testNow.AddDate(0, 0, -50), Client: "Globex", Description: "Pintura"},
	}}
	e := newTestEngine(Config{WorkOrders: src})

	msgs := e.CheckWorkOrders(context.Background(), 2)
	if src.gotMonthsAgo != 2 {
		t.Errorf("expected monthsAgo=2 passed to source, got %d", src.gotMonthsAgo)
	}
	if len(msgs) != 1 {
		t.Fatalf("expected only the 70-day-old order, got %d: %v", len(msgs), msgs)
	}
	if !strings.Contains(msgs[0], "ODT 11") {
		t.Errorf("expected ODT 11 in message: %s", msgs[0])
	}
}

func TestCheckWorkOrders_MessageContents(t *testing.T) {
	created := time.Date(2026, time.March, 15, 0, 0, 0, 0, time.UTC)
	e := newTestEngine(Config{WorkOrders: &fakeWorkOrders{orders: []domain.WorkOrder{
		{ID: 9, OwnerName: "Ana", OwnerLastname: "García",
			Amount: decimal.RequireFromString("1234.5"), Symbol: "$",
			CreatedAt: created, Client: "ACME", Description: "Cambio de motor"},
	}}})

	msgs := e.CheckWorkOrders(context.Background(), 2)
	if len(msgs) != 1 {
		t.Fatalf("expected 1 alert, got %d", len(msgs))
	}

	for _, part := range []string{
		"La **ODT 9** de **Ana García** tiene más de 2 meses abierta:",
		"Monto: $1234.50",
		"Cliente: ACME",
		"Fecha de apertura: 15 de marzo de 2026",
		"Descripción: Cambio de motor",
		separator,
	} {
		if !strings.Contains(msgs[0], part) {
			t.Errorf("message missing %q:\n%s", part, msgs[0])
		}
	}
}

func TestCheckWorkOrders_NewestMatchFirst(t *testing.T) {
	e := newTestEngine(Config{WorkOrders: &fakeWorkOrders{orders: []domain.WorkOrder{
		{ID: 1, CreatedAt: testNow.AddDate(0, -6, 0), Symbol: "$"},
		{ID: 2, CreatedAt: testNow.AddDate(0, -3, 0), Symbol: "$"},
	}}})

	msgs := e.CheckWorkOrders(context.Background(), 2)
	if len(msgs) != 2 {
		t.Fatalf("expected 2 alerts, got %d", len(msgs))
	}
	// Самый свежий из подходящих — первым
	if !strings.Contains(msgs[0], "ODT 2") || !strings.Contains(msgs[1], "ODT 1") {
		t.Errorf("expected newest matching order first: %v", msgs)
	}
}

// --- CheckLowStock ---

func TestCheckLowStock_CostliestShortfallFirst(t *testing.T) {
	e := newTestEngine(Config{Stocks: &fakeStocks{lines: []domain.StockLine{
		{Code: "BARATO", Storage: "Central", Amount: decimal.NewFromInt(4),
			MidStock: decimal.NewFromInt(10), Unit: "kg",
			ShortfallCost: decimal.NewFromInt(30)},
		{Code: "CARO", Storage: "Central", Amount: decimal.NewFromInt(1),
			MidStock: decimal.NewFromInt(5), Unit: "l",
			ShortfallCost: decimal.NewFromInt(90)},
	}}})

	msgs := e.CheckLowStock(context.Background())
	if len(msgs) != 2 {
		t.Fatalf("expected 2 alerts, got %d", len(msgs))
	}
	if !strings.Contains(msgs[0], "CARO") || !strings.Contains(msgs[1], "BARATO") {
		t.Errorf("expected costliest shortfall first: %v", msgs)
	}
}

func TestCheckLowStock_MessageContents(t *testing.T) {
	e := newTestEngine(Config{Stocks: &fakeStocks{lines: []domain.StockLine{
		{Code: "ACEITE-5W30", Storage: "Bodega Norte",
			Amount:   decimal.RequireFromString("3.5"),
			MidStock: decimal.NewFromInt(10), Unit: "l",
			ShortfallCost: decimal.NewFromInt(65)},
	}}})

	msgs := e.CheckLowStock(context.Background())
	if len(msgs) != 1 {
		t.Fatalf("expected 1 alert, got %d", len(msgs))
	}

	for _, part := range []string{
		"El producto **ACEITE-5W30** en el almacén **Bodega Norte** tiene poco stock",
		"Stock actual: 3.50 l",
		"Stock medio: 10.00 l",
		"Stock mínimo necesario: 6.50 l",
		separator,
	} {
		if !strings.Contains(msgs[0], part) {
			t.Errorf("message missing %q:\n%s", part, msgs[0])
		}
	}
}

func TestCheckLowStock_QueryFailureIsIsolated(t *testing.T) {
	e := newTestEngine(Config{Stocks: &fakeStocks{err: errors.New("db down")}})

	if msgs := e.CheckLowStock(context.Background()); len(msgs) != 0 {
		t.Errorf("failed check must yield no alerts, got %v", msgs)
	}
}
