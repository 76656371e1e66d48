// Package session управляет жизненным циклом сессии чат-платформы.
//
// # Обзор
//
// Manager владеет единственной на процесс сессией и проводит её через
// строго линейный жизненный цикл:
//
//	UNINITIALIZED → STARTING → READY → CLOSING → CLOSED
//
// Установление соединения выполняется фоновой горутиной (Start не
// блокирует вызывающего); готовность сигналится one-shot каналом,
// ожидание ограничено таймаутом (AwaitReady). По таймауту установление
// отменяется, и запуск обязан завершиться без единой отправки.
//
// # Доставка
//
// Send на неготовой сессии — безопасный no-op (логируется, ошибки нет).
// Получатель один, настраивается идентификатором; DM-канал кэшируется
// после первого разрешения. Ошибки доставки классифицируются в закрытый
// набор (forbidden / transport / unclassified), логируются и изолируются:
// неудача одного сообщения не прерывает остальные.
//
// SendBatch отправляет сообщения строго последовательно в порядке
// производителя, с настраиваемой паузой между соседними отправками.
// Пауза — осознанный простейший rate limiter, параметр задаёт вызывающий.
//
// # Остановка
//
// Stop допустим из READY и STARTING: транспорт закрывается, фоновое
// установление отменяется и его ошибка поглощается (отмена — ожидаемый
// путь завершения, не сбой). CLOSED — терминальное состояние.
package session
