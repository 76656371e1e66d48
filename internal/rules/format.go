package rules

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// DateFormatter — чистая функция форматирования даты для текста алерта.
type DateFormatter func(time.Time) string

// Разделитель многострочных алертов.
const separator = "**----------------------------------------------**"

// spanishMonths — названия месяцев без зависимости от системной локали.
var spanishMonths = [...]string{
	"enero", "febrero", "marzo", "abril",
	"mayo", "junio", "julio", "agosto",
	"septiembre", "octubre", "noviembre", "diciembre",
}

// FormatDateSpanish форматирует дату как "2 de enero de 2006".
func FormatDateSpanish(t time.Time) string {
	return fmt.Sprintf("%d de %s de %d", t.Day(), spanishMonths[t.Month()-1], t.Year())
}

// fixed2 округляет до 2 знаков и форматирует с фиксированной точностью.
// Режим округления — half away from zero, единый для всех сумм и количеств.
func fixed2(d decimal.Decimal) string {
	return d.StringFixed(2)
}
