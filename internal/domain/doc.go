// Package domain содержит доменные сущности Centinela.
//
// Все сущности — read-only проекции из операционной БД (посещаемость,
// задолженности, открытые ODT, складские остатки). Система не создаёт
// постоянных записей: сущности живут только в пределах одного запуска
// аудита и превращаются в текстовые алерты.
//
// Денежные суммы и количества представлены decimal.Decimal, чтобы
// округление до 2 знаков было точным и единообразным.
package domain
