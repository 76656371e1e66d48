package session

import "errors"

// Ошибки жизненного цикла сессии.
var (
	// ErrAlreadyStarted — Start вызван повторно.
	ErrAlreadyStarted = errors.New("session already started")

	// ErrNotStarted — AwaitReady вызван до Start.
	ErrNotStarted = errors.New("session not started")

	// ErrEstablishFailed — установление соединения завершилось ошибкой.
	ErrEstablishFailed = errors.New("session establishment failed")

	// ErrReadyTimeout — сессия не стала готовой за отведённое время.
	// Единственная ошибка, прерывающая весь запуск: без готовой
	// сессии не может быть доставлен ни один алерт.
	ErrReadyTimeout = errors.New("session ready timeout")
)

// Классификация ошибок доставки. Все три вида изолируются на уровне
// одного сообщения: батч продолжается.
var (
	// ErrRecipientNotFound — получатель не найден ни в кэше, ни удалённо.
	ErrRecipientNotFound = errors.New("recipient not found")

	// ErrDeliveryForbidden — получатель закрыл DM или заблокировал бота.
	ErrDeliveryForbidden = errors.New("delivery forbidden")

	// ErrDeliveryTransport — протокольная/HTTP ошибка доставки.
	ErrDeliveryTransport = errors.New("delivery transport error")
)

// kindLabel возвращает метку вида ошибки доставки для метрик и логов.
func kindLabel(err error) string {
	switch {
	case errors.Is(err, ErrDeliveryForbidden):
		return "forbidden"
	case errors.Is(err, ErrDeliveryTransport):
		return "transport"
	case errors.Is(err, ErrRecipientNotFound):
		return "recipient_not_found"
	default:
		return "unclassified"
	}
}
