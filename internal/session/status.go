package session

// Status — состояние сессии.
//
// Жизненный цикл:
//
//	UNINITIALIZED → STARTING → READY → CLOSING → CLOSED
//	                        ↘ (ошибка/таймаут установления) → CLOSING → CLOSED
type Status string

const (
	// StatusUninitialized — сессия создана, установление не начиналось.
	StatusUninitialized Status = "UNINITIALIZED"

	// StatusStarting — фоновое установление соединения в процессе.
	StatusStarting Status = "STARTING"

	// StatusReady — сессия готова к отправке сообщений.
	// Достигается не более одного раза за запуск.
	StatusReady Status = "READY"

	// StatusClosing — идёт завершение сессии.
	StatusClosing Status = "CLOSING"

	// StatusClosed — сессия завершена. Терминальное состояние.
	StatusClosed Status = "CLOSED"
)

// IsTerminal возвращает true, если статус финальный.
func (s Status) IsTerminal() bool {
	return s == StatusClosed
}
