package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AttendanceRecord — последняя отметка посещаемости пользователя.
//
// Для каждого отслеживаемого пользователя учитывается ровно одна,
// самая свежая запись. Пользователи вообще без записей в выборку
// не попадают и определяются отдельно (requested − found).
type AttendanceRecord struct {
	// UserID — идентификатор пользователя.
	UserID int64

	// Name, Lastname — имя и фамилия для текста алерта.
	Name     string
	Lastname string

	// LastSeen — время последней отметки (timezone-aware, UTC в БД).
	LastSeen time.Time
}

// Debt — активная задолженность пользователя.
//
// Активной считается задолженность с amount != 0; знак значения не имеет,
// алерт формируется и для положительных, и для отрицательных сумм.
type Debt struct {
	UserID   int64
	Name     string
	Lastname string

	// Amount — сумма задолженности.
	Amount decimal.Decimal

	// Symbol — символ валюты (например "$").
	Symbol string
}

// WorkOrder — открытый рабочий наряд (ODT).
//
// Открытым считается наряд без записи о закрытии (closure_odts).
type WorkOrder struct {
	ID int64

	// OwnerName, OwnerLastname — ответственный за наряд.
	OwnerName     string
	OwnerLastname string

	// Amount — сумма наряда, Symbol — символ валюты.
	Amount decimal.Decimal
	Symbol string

	// CreatedAt — дата открытия наряда.
	CreatedAt time.Time

	// Client — название клиента.
	Client string

	// Description — описание работ.
	Description string
}

// StockLine — строка складского остатка ниже целевого уровня.
type StockLine struct {
	// Code — код продукта.
	Code string

	// Storage — название склада.
	Storage string

	// Amount — текущий остаток.
	Amount decimal.Decimal

	// MidStock — целевой ("средний") уровень запаса.
	MidStock decimal.Decimal

	// Unit — единица измерения (кг, л, шт...).
	Unit string

	// ShortfallCost — стоимость недостающего запаса:
	// (MidStock − Amount) × цена единицы. По ней сортируются алерты.
	ShortfallCost decimal.Decimal
}

// Shortfall возвращает недостающее количество (MidStock − Amount).
func (s StockLine) Shortfall() decimal.Decimal {
	return s.MidStock.Sub(s.Amount)
}
