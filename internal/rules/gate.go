package rules

import "time"

// IsClosingDay возвращает true, если сегодняшний день месяца попадает
// на полумесячное закрытие: 12, 14, 27 или предпоследний день месяца.
// В эти дни выполняются низкочастотные проверки (долги, ODT, остатки).
func IsClosingDay(today time.Time) bool {
	switch today.Day() {
	case 12, 14, 27, lastDayOfMonth(today)-1:
		return true
	}
	return false
}

// lastDayOfMonth возвращает число последнего дня месяца даты t.
// День 0 следующего месяца нормализуется в последний день текущего.
func lastDayOfMonth(t time.Time) int {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, t.Location()).Day()
}
