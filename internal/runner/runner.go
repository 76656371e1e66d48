// Package runner — координатор одного запуска аудита.
//
// Последовательность фиксированная: старт сессии → ожидание готовности
// (с таймаутом) → проверка посещаемости (каждый запуск) → gate →
// низкочастотные проверки (долги, ODT, остатки) → пауза на дослив →
// остановка сессии. Каждый батч полностью отправляется до начала
// следующего, порядок доставки равен порядку производства.
package runner

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ruvenss/centinela/internal/rules"
	"github.com/ruvenss/centinela/internal/telemetry"
)

// Значения по умолчанию.
const (
	defaultMonthsAgo    = 2
	defaultMessageDelay = 200 * time.Millisecond
	defaultDrainDelay   = 2 * time.Second
)

// Заголовки батчей, отправляемые перед алертами.
const (
	announceAttendance = "📆 Checking attendance"
	announceDebts      = "💰 Checking debts"
	announceWorkOrders = "📜 Checking old Open ODTs"
	announceLowStock   = "📋 Checking low stocks"
)

// Session — контракт менеджера сессии, нужный координатору.
type Session interface {
	Start() error
	AwaitReady(ctx context.Context) error
	Send(ctx context.Context, text string) error
	SendBatch(ctx context.Context, msgs []string, delay time.Duration)
	Stop()
}

// AlertMirror — необязательное зеркалирование алертов (RabbitMQ).
type AlertMirror interface {
	PublishAlert(ctx context.Context, runID, check, text string) error
}

// Runner выполняет один проход аудита.
type Runner struct {
	engine  *rules.Engine
	session Session
	mirror  AlertMirror

	runID          string
	monitoredUsers []int64
	monthsAgo      int
	messageDelay   time.Duration
	drainDelay     time.Duration
	force          bool
	dryRun         bool

	now    func() time.Time
	logger *slog.Logger
}

// Config — конфигурация Runner.
type Config struct {
	// Engine — движок правил обнаружения.
	Engine *rules.Engine

	// Session — менеджер сессии. В dry-run режиме не используется
	// и может быть nil.
	Session Session

	// Mirror — зеркалирование алертов (опционально).
	Mirror AlertMirror

	// RunID — идентификатор запуска для корреляции.
	RunID string

	// MonitoredUsers — пользователи для проверки посещаемости.
	MonitoredUsers []int64

	// MonthsAgo — порог возраста открытых ODT (default: 2).
	MonthsAgo int

	// MessageDelay — пауза между сообщениями низкочастотных батчей
	// (default: 200ms). Батч посещаемости отправляется без пауз —
	// сохранённая асимметрия исходного контракта.
	MessageDelay time.Duration

	// DrainDelay — пауза на дослив перед остановкой (default: 2s).
	DrainDelay time.Duration

	// Force — выполнить низкочастотные проверки независимо от gate.
	Force bool

	// DryRun — сформировать алерты и только залогировать их,
	// не трогая сессию.
	DryRun bool

	// Now — источник текущего времени (default: time.Now).
	Now func() time.Time

	// Logger (default: slog.Default()).
	Logger *slog.Logger
}

// New создаёт новый Runner.
func New(cfg Config) *Runner {
	monthsAgo := cfg.MonthsAgo
	if monthsAgo <= 0 {
		monthsAgo = defaultMonthsAgo
	}

	messageDelay := cfg.MessageDelay
	if messageDelay <= 0 {
		messageDelay = defaultMessageDelay
	}

	drainDelay := cfg.DrainDelay
	if drainDelay <= 0 {
		drainDelay = defaultDrainDelay
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Runner{
		engine:         cfg.Engine,
		session:        cfg.Session,
		mirror:         cfg.Mirror,
		runID:          cfg.RunID,
		monitoredUsers: cfg.MonitoredUsers,
		monthsAgo:      monthsAgo,
		messageDelay:   messageDelay,
		drainDelay:     drainDelay,
		force:          cfg.Force,
		dryRun:         cfg.DryRun,
		now:            now,
		logger:         logger,
	}
}

// Run выполняет один проход аудита.
//
// Единственная ошибка, прерывающая запуск, — неготовность сессии:
// без неё не может быть доставлен ни один алерт. Все остальные сбои
// изолируются на уровне проверки или отдельного сообщения.
func (r *Runner) Run(ctx context.Context) error {
	started := time.Now()
	defer func() {
		telemetry.RunDuration.Set(time.Since(started).Seconds())
	}()

	if !r.dryRun {
		if err := r.session.Start(); err != nil {
			return fmt.Errorf("start session: %w", err)
		}
		defer r.session.Stop()

		if err := r.session.AwaitReady(ctx); err != nil {
			return fmt.Errorf("session not ready: %w", err)
		}
	}

	now := r.now()

	// Посещаемость проверяется каждый запуск, без пауз внутри батча
	r.announce(ctx, announceAttendance)
	msgs, missing := r.engine.CheckAttendance(ctx, r.monitoredUsers, now)
	if len(missing) > 0 {
		// Пользователи вообще без записей: осознанный no-op, только лог
		r.logger.Warn("users with no attendance records", "user_ids", missing)
	}
	r.dispatch(ctx, rules.CheckNameAttendance, msgs, 0)

	if !r.force && !rules.IsClosingDay(now) {
		r.logger.Info("not a fortnightly closing day, skipping low-frequency checks",
			"day", now.Day())
		r.drain(ctx)
		return nil
	}

	r.announce(ctx, announceDebts)
	r.dispatch(ctx, rules.CheckNameDebts, r.engine.CheckDebts(ctx), r.messageDelay)

	r.announce(ctx, announceWorkOrders)
	r.dispatch(ctx, rules.CheckNameWorkOrders, r.engine.CheckWorkOrders(ctx, r.monthsAgo), r.messageDelay)

	r.announce(ctx, announceLowStock)
	r.dispatch(ctx, rules.CheckNameLowStock, r.engine.CheckLowStock(ctx), r.messageDelay)

	r.drain(ctx)
	return nil
}

// announce отправляет заголовок батча.
func (r *Runner) announce(ctx context.Context, text string) {
	if r.dryRun {
		r.logger.Info("dry-run announce", "text", text)
		return
	}
	_ = r.session.Send(ctx, text)
}

// dispatch отправляет батч алертов одной проверки: метрики,
// зеркалирование, затем последовательная доставка.
func (r *Runner) dispatch(ctx context.Context, check string, msgs []string, delay time.Duration) {
	telemetry.AlertsProduced.WithLabelValues(check).Add(float64(len(msgs)))
	logger := telemetry.WithCheck(r.logger, check)
	logger.Info("alerts prepared", "count", len(msgs))

	if r.mirror != nil {
		for _, msg := range msgs {
			if err := r.mirror.PublishAlert(ctx, r.runID, check, msg); err != nil {
				logger.Warn("failed to mirror alert", "error", err)
			}
		}
	}

	if r.dryRun {
		for _, msg := range msgs {
			logger.Info("dry-run alert", "text", msg)
		}
		return
	}

	r.session.SendBatch(ctx, msgs, delay)
}

// drain даёт платформе время дослать хвост перед остановкой сессии.
func (r *Runner) drain(ctx context.Context) {
	if r.dryRun {
		return
	}

	timer := time.NewTimer(r.drainDelay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
