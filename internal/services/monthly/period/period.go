// Package period resolves calendar months to bucket ids
package period

import (
	"fmt"
	"strings"
	"time"

	perr "immiwatch/internal/platform/errors"
	"immiwatch/internal/services/monthly/domain"
)

const idLayout = "2006-01"

// Resolve returns the period containing t, in t's location
func Resolve(t time.Time) domain.Period {
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	end := start.AddDate(0, 1, 0).Add(-time.Nanosecond)
	return domain.Period{
		BucketID:    start.Format(idLayout),
		DisplayName: start.Format("January 2006"),
		Start:       start,
		End:         end,
		Month:       Info(start.Year(), start.Month()),
	}
}

// ResolveUpcoming returns the current period on the first of the month and the
// next one on every other day
func ResolveUpcoming(now time.Time) domain.Period {
	if now.Day() == 1 {
		return Resolve(now)
	}
	return Resolve(time.Date(now.Year(), now.Month()+1, 1, 0, 0, 0, 0, now.Location()))
}

// ParseBucketID validates a YYYY-MM id and returns its period in UTC
func ParseBucketID(id string) (domain.Period, error) {
	t, err := time.Parse(idLayout, strings.TrimSpace(id))
	if err != nil || t.Format(idLayout) != strings.TrimSpace(id) {
		return domain.Period{}, perr.WithField(
			perr.Wrapf(domain.ErrInvalidDate, perr.ErrorCodeValidation, "bucket id %q", id), "bucket_id")
	}
	return Resolve(t), nil
}

// Info builds the display and layout metadata for a month
func Info(year int, month time.Month) domain.MonthInfo {
	name := month.String()
	lower := strings.ToLower(name)
	dir := fmt.Sprintf("ee-%s-%d", lower, year)
	return domain.MonthInfo{
		Year:        year,
		Month:       int(month),
		MonthName:   name,
		MonthShort:  name[:3],
		DisplayName: fmt.Sprintf("%s %d", name, year),
		Directory:   dir,
		URLPath:     "reports/express-entry/" + dir + "/",
	}
}
