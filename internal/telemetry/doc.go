// Package telemetry — логирование и метрики Centinela.
//
// Логирование построено на log/slog: JSON для production, text для
// разработки (LOG_FORMAT), уровень из LOG_LEVEL. Каждому запуску
// присваивается run_id, который добавляется ко всем записям.
//
// Метрики — prometheus counters/gauges. Поскольку процесс одноразовый,
// вместо /metrics endpoint используется push в Pushgateway при
// завершении запуска (переменная PUSHGATEWAY_URL).
package telemetry
