package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ruvenss/centinela/internal/telemetry"
)

// defaultReadyTimeout — предел ожидания готовности сессии.
const defaultReadyTimeout = 10 * time.Second

// Transport — подключение к чат-платформе.
//
// Реализации возвращают из LookupRecipient и Send уже
// классифицированные ошибки (обёрнутые в сентинели пакета);
// неопознанные ошибки остаются как есть и считаются unclassified.
type Transport interface {
	// Connect устанавливает соединение. onReady вызывается ровно один
	// раз, когда платформа сообщает о готовности; сам Connect может
	// вернуться раньше этого события.
	Connect(onReady func()) error

	// LookupRecipient разрешает получателя в идентификатор DM-канала.
	// Сначала локальный кэш, затем удалённый fetch-by-id.
	LookupRecipient(ctx context.Context, recipientID string) (string, error)

	// Send доставляет одно сообщение в канал.
	Send(ctx context.Context, channelID, text string) error

	// Close завершает соединение; прерывает незавершённый Connect.
	Close() error
}

// Manager — менеджер жизненного цикла сессии.
//
// Единственный владелец состояния сессии: все остальные компоненты
// взаимодействуют только через Start/AwaitReady/Send/SendBatch/Stop.
type Manager struct {
	transport   Transport
	recipientID string

	readyTimeout time.Duration
	logger       *slog.Logger

	mu        sync.Mutex
	status    Status
	channelID string // кэш DM-канала получателя

	readyCh   chan struct{}
	readyOnce sync.Once
	errCh     chan error
	wg        sync.WaitGroup
}

// Config — конфигурация Manager.
type Config struct {
	// Transport — подключение к чат-платформе.
	Transport Transport

	// RecipientID — идентификатор единственного получателя.
	RecipientID string

	// ReadyTimeout — предел ожидания готовности (default: 10s).
	ReadyTimeout time.Duration

	// Logger (default: slog.Default()).
	Logger *slog.Logger
}

// New создаёт новый Manager в состоянии UNINITIALIZED.
func New(cfg Config) *Manager {
	readyTimeout := cfg.ReadyTimeout
	if readyTimeout <= 0 {
		readyTimeout = defaultReadyTimeout
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Manager{
		transport:    cfg.Transport,
		recipientID:  cfg.RecipientID,
		readyTimeout: readyTimeout,
		logger:       logger,
		status:       StatusUninitialized,
		readyCh:      make(chan struct{}),
		errCh:        make(chan error, 1),
	}
}

// Status возвращает текущее состояние сессии.
func (m *Manager) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

func (m *Manager) setStatus(s Status) {
	m.mu.Lock()
	m.status = s
	m.mu.Unlock()
}

// Start запускает установление сессии фоновой горутиной и не блокирует
// вызывающего. После Start вызывающий обязан дождаться AwaitReady.
func (m *Manager) Start() error {
	m.mu.Lock()
	if m.status != StatusUninitialized {
		m.mu.Unlock()
		return ErrAlreadyStarted
	}
	m.status = StatusStarting
	m.mu.Unlock()

	m.logger.Info("starting session")

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()

		err := m.transport.Connect(func() {
			m.readyOnce.Do(func() { close(m.readyCh) })
		})
		if err != nil {
			select {
			case m.errCh <- err:
			default:
			}
		}
	}()

	return nil
}

// AwaitReady блокирует вызывающего до сигнала готовности, ошибки
// установления или истечения таймаута. По таймауту установление
// отменяется и возвращается ErrReadyTimeout: запуск не должен
// переходить к отправке сообщений.
func (m *Manager) AwaitReady(ctx context.Context) error {
	if m.Status() != StatusStarting {
		return ErrNotStarted
	}

	timer := time.NewTimer(m.readyTimeout)
	defer timer.Stop()

	select {
	case <-m.readyCh:
		m.setStatus(StatusReady)
		m.logger.Info("session ready")
		return nil

	case err := <-m.errCh:
		m.teardown("establishment failed")
		return fmt.Errorf("%w: %v", ErrEstablishFailed, err)

	case <-timer.C:
		m.logger.Error("session did not become ready in time", "timeout", m.readyTimeout)
		m.teardown("ready timeout")
		return ErrReadyTimeout

	case <-ctx.Done():
		m.teardown("context cancelled")
		return ctx.Err()
	}
}

// Send доставляет одно сообщение единственному получателю.
//
// На неготовой сессии — no-op с логированием, без ошибки. Ошибки
// доставки классифицируются, логируются и возвращаются; вызывающий
// волен продолжать батч (SendBatch так и делает).
func (m *Manager) Send(ctx context.Context, text string) error {
	if m.Status() != StatusReady {
		m.logger.Warn("session is not ready, message dropped", "chars", len(text))
		return nil
	}

	channelID, err := m.recipientChannel(ctx)
	if err != nil {
		telemetry.SendFailures.WithLabelValues(kindLabel(err)).Inc()
		m.logger.Error("failed to resolve recipient",
			"recipient_id", m.recipientID,
			"kind", kindLabel(err),
			"error", err,
		)
		return err
	}

	if err := m.transport.Send(ctx, channelID, text); err != nil {
		telemetry.SendFailures.WithLabelValues(kindLabel(err)).Inc()
		m.logger.Error("failed to send message",
			"kind", kindLabel(err),
			"error", err,
		)
		return err
	}

	telemetry.MessagesSent.Inc()
	m.logger.Debug("message delivered", "chars", len(text))
	return nil
}

// SendBatch отправляет сообщения строго последовательно в порядке
// производителя. Между соседними отправками выдерживается delay
// (перед первым сообщением паузы нет). Неудача одного сообщения
// не прерывает батч; отмена контекста — прерывает.
func (m *Manager) SendBatch(ctx context.Context, msgs []string, delay time.Duration) {
	for i, msg := range msgs {
		if i > 0 && delay > 0 {
			if !m.sleep(ctx, delay) {
				return
			}
		}
		// Send сам классифицирует и логирует сбой
		_ = m.Send(ctx, msg)
	}
}

// Stop завершает сессию. Допустим из READY и STARTING; если фоновое
// установление ещё не завершилось, оно отменяется и его результат
// поглощается. Из остальных состояний Stop — no-op.
func (m *Manager) Stop() {
	switch m.Status() {
	case StatusReady, StatusStarting:
		m.teardown("stop")
	default:
		m.logger.Debug("stop ignored", "status", string(m.Status()))
	}
}

// teardown закрывает транспорт, дожидается фоновой горутины и
// переводит сессию в CLOSED. Ошибка прерванного установления —
// ожидаемый путь завершения, поэтому только логируется.
func (m *Manager) teardown(reason string) {
	m.mu.Lock()
	if m.status == StatusClosing || m.status == StatusClosed {
		m.mu.Unlock()
		return
	}
	m.status = StatusClosing
	m.mu.Unlock()

	if err := m.transport.Close(); err != nil {
		m.logger.Debug("transport close", "error", err)
	}

	m.wg.Wait()

	select {
	case err := <-m.errCh:
		m.logger.Debug("establishment ended", "error", err)
	default:
	}

	m.setStatus(StatusClosed)
	m.logger.Info("session closed", "reason", reason)
}

// recipientChannel возвращает DM-канал получателя, кэшируя его после
// первого успешного разрешения.
func (m *Manager) recipientChannel(ctx context.Context) (string, error) {
	m.mu.Lock()
	if m.channelID != "" {
		id := m.channelID
		m.mu.Unlock()
		return id, nil
	}
	m.mu.Unlock()

	id, err := m.transport.LookupRecipient(ctx, m.recipientID)
	if err != nil {
		return "", err
	}

	m.mu.Lock()
	m.channelID = id
	m.mu.Unlock()
	return id, nil
}

// sleep ждёт d с учётом отмены контекста.
func (m *Manager) sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
