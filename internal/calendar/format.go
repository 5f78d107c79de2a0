package calendar

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var monthNames = [...]string{
	"Januar", "Februar", "Mars", "April", "Mai", "Juni",
	"Juli", "August", "September", "Oktober", "November", "Desember",
}

var shortMonths = [...]string{
	"jan", "feb", "mar", "apr", "mai", "jun",
	"jul", "aug", "sep", "okt", "nov", "des",
}

var titleCaser = cases.Title(language.Norwegian)

func MonthName(m time.Month) string {
	return monthNames[m-1]
}

func MonthTitle(t time.Time) string {
	return fmt.Sprintf("%s %d", MonthName(t.Month()), t.Year())
}

func ShortMonth(m time.Month) string {
	return shortMonths[m-1]
}

// ShortMonthTitle is the capitalized short month used on event cards ("Mar").
func ShortMonthTitle(m time.Month) string {
	return titleCaser.String(ShortMonth(m))
}

// LongDate formats like "15. mars 2024".
func LongDate(t time.Time) string {
	return fmt.Sprintf("%d. %s %d", t.Day(), strings.ToLower(MonthName(t.Month())), t.Year())
}

// ShortDate formats like "05. mar".
func ShortDate(t time.Time) string {
	return fmt.Sprintf("%02d. %s", t.Day(), ShortMonth(t.Month()))
}

func Clock(t time.Time) string {
	return t.Format("15:04")
}

// FormatDate renders a stored date string as a long Norwegian date, or returns
// it unchanged when it cannot be parsed.
func FormatDate(s string, loc *time.Location) string {
	if s == "" {
		return ""
	}

	t, ok := ParseTime(s, loc)
	if !ok {
		return s
	}

	return LongDate(t)
}

// EncodeURIComponent escapes like the browser function of the same name.
func EncodeURIComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
