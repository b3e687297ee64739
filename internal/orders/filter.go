package orders

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"order-management-service/pkg/fielderrs"
)

// recentWindow is how far back the "recent" filter reaches. The filter has always
// shipped with a 10-day window; clients depend on it.
const recentWindow = 10 * 24 * time.Hour

const dateLayout = "2006-01-02"

// Filter holds the parsed order list/revenue query parameters. Date comparisons
// work at day precision.
type Filter struct {
	Status    string
	CreatedAt *time.Time
	CreatedLT *time.Time
	CreatedGT *time.Time
	Month     *int
	Recent    bool
}

// ParseFilter reads the supported query parameters; malformed values surface as
// field errors.
func ParseFilter(q url.Values) (Filter, error) {
	var f Filter
	fe := fielderrs.FieldErrors{}

	f.Status = q.Get("status")
	if f.Status != "" && !validStatus(f.Status) {
		fe.Add("status", "select a valid choice.")
	}

	f.CreatedAt = parseDate(q, "created_at", fe)
	f.CreatedLT = parseDate(q, "created_at__lt", fe)
	f.CreatedGT = parseDate(q, "created_at__gt", fe)

	if raw := q.Get("month"); raw != "" {
		month, err := strconv.Atoi(raw)
		if err != nil || month < 1 || month > 12 {
			fe.Add("month", "enter a month between 1 and 12.")
		} else {
			f.Month = &month
		}
	}

	if raw := q.Get("recent"); raw != "" {
		recent, err := strconv.ParseBool(raw)
		if err != nil {
			fe.Add("recent", "enter a valid boolean.")
		} else {
			f.Recent = recent
		}
	}

	if len(fe) > 0 {
		return Filter{}, fe
	}
	return f, nil
}

func parseDate(q url.Values, key string, fe fielderrs.FieldErrors) *time.Time {
	raw := q.Get(key)
	if raw == "" {
		return nil
	}
	t, err := time.ParseInLocation(dateLayout, raw, time.Local)
	if err != nil {
		fe.Add(key, "enter a valid date (YYYY-MM-DD).")
		return nil
	}
	return &t
}

// whereClause builds the WHERE fragment over the orders table aliased as "o".
// now anchors the "recent" cutoff so callers and tests share one clock.
func (f Filter) whereClause(now time.Time) (string, []any) {
	var conds []string
	var args []any

	next := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.Status != "" {
		conds = append(conds, fmt.Sprintf("o.status = %s", next(f.Status)))
	}
	if f.CreatedAt != nil {
		conds = append(conds, fmt.Sprintf("o.created_at::date = %s", next(f.CreatedAt.Format(dateLayout))))
	}
	if f.CreatedLT != nil {
		conds = append(conds, fmt.Sprintf("o.created_at::date < %s", next(f.CreatedLT.Format(dateLayout))))
	}
	if f.CreatedGT != nil {
		conds = append(conds, fmt.Sprintf("o.created_at::date > %s", next(f.CreatedGT.Format(dateLayout))))
	}
	if f.Month != nil {
		conds = append(conds, fmt.Sprintf("EXTRACT(MONTH FROM o.created_at) = %s", next(*f.Month)))
	}
	if f.Recent {
		conds = append(conds, fmt.Sprintf("o.created_at >= %s", next(now.Add(-recentWindow))))
	}

	if len(conds) == 0 {
		return "", nil
	}
	return "WHERE " + strings.Join(conds, " AND "), args
}
