package calendar

import (
	"fmt"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"morningbrief/internal/core"
)

var brPrinter = message.NewPrinter(language.BrazilianPortuguese)

var weekdayNames = [...]string{
	time.Sunday:    "domingo",
	time.Monday:    "segunda-feira",
	time.Tuesday:   "terça-feira",
	time.Wednesday: "quarta-feira",
	time.Thursday:  "quinta-feira",
	time.Friday:    "sexta-feira",
	time.Saturday:  "sábado",
}

var monthNames = [...]string{
	time.January:   "janeiro",
	time.February:  "fevereiro",
	time.March:     "março",
	time.April:     "abril",
	time.May:       "maio",
	time.June:      "junho",
	time.July:      "julho",
	time.August:    "agosto",
	time.September: "setembro",
	time.October:   "outubro",
	time.November:  "novembro",
	time.December:  "dezembro",
}

// FormatShort renders DD/MM/YYYY.
func FormatShort(d core.Date) string {
	return fmt.Sprintf("%02d/%02d/%04d", d.Day, int(d.Month), d.Year)
}

// FormatLong renders e.g. "domingo, 11 de janeiro de 2026".
func FormatLong(d core.Date) string {
	return fmt.Sprintf("%s, %d de %s de %d", WeekdayName(d), d.Day, monthNames[d.Month], d.Year)
}

// MonthYear renders e.g. "janeiro de 2026".
func MonthYear(d core.Date) string {
	return fmt.Sprintf("%s de %d", monthNames[d.Month], d.Year)
}

// WeekdayName returns the Portuguese weekday name.
func WeekdayName(d core.Date) string {
	return weekdayNames[d.Weekday()]
}

// FormatTimestamp renders t in the locale as "DD/MM/YYYY, HH:MM:SS".
func (l Locale) FormatTimestamp(t time.Time) string {
	return t.In(l.Location()).Format("02/01/2006, 15:04:05")
}

// FormatAmount renders v with two decimals in Brazilian notation (1.600,00).
func FormatAmount(v float64) string {
	return brPrinter.Sprintf("%.2f", v)
}

// FormatBRL renders v as a real amount (R$ 1.600,00).
func FormatBRL(v float64) string {
	return "R$ " + FormatAmount(v)
}

// FormatPercent renders v with one decimal and a percent sign (12,5%).
func FormatPercent(v float64) string {
	return brPrinter.Sprintf("%.1f", v) + "%"
}
