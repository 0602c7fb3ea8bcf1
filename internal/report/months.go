package report

import (
	"fmt"
	"time"

	"github.com/and161185/coursereports/internal/errs"
)

// MonthNames is indexed by calendar month; index 0 is unused.
type MonthNames [13]string

var Swedish = MonthNames{
	"", "januari", "februari", "mars", "april", "maj", "juni",
	"juli", "augusti", "september", "oktober", "november", "december",
}

var English = MonthNames{
	"", "january", "february", "march", "april", "may", "june",
	"july", "august", "september", "october", "november", "december",
}

var locales = map[string]MonthNames{
	"sv": Swedish,
	"en": English,
}

func LookupMonthNames(locale string) (MonthNames, error) {
	names, ok := locales[locale]
	if !ok {
		return MonthNames{}, fmt.Errorf("%w: %q", errs.ErrUnknownLocale, locale)
	}
	return names, nil
}

// Label renders "<month>-<yyyy>", e.g. "mars-2025".
func (n MonthNames) Label(year int, month time.Month) string {
	return fmt.Sprintf("%s-%04d", n[month], year)
}

// WindowStart returns the first day of asOf's month one year earlier, in UTC.
func WindowStart(asOf time.Time) time.Time {
	asOf = asOf.UTC()
	return time.Date(asOf.Year()-1, asOf.Month(), 1, 0, 0, 0, 0, time.UTC)
}
