package orders

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// revenueRow is one line item joined with its product price and order timestamp.
type revenueRow struct {
	price     decimal.Decimal
	quantity  int
	createdAt time.Time
}

// sumRevenue totals price*quantity over the rows with decimal arithmetic.
// An empty row set yields zero, not an error.
func sumRevenue(rows []revenueRow) decimal.Decimal {
	total := decimal.Zero
	for _, r := range rows {
		total = total.Add(r.price.Mul(decimal.NewFromInt(int64(r.quantity))))
	}
	return total
}

// monthlyRevenue buckets the rows by calendar month in the server timezone and
// returns one entry per month that has revenue, ascending. Empty months are
// omitted, not zero-filled.
func monthlyRevenue(rows []revenueRow) []MonthRevenue {
	buckets := map[time.Time]decimal.Decimal{}
	for _, r := range rows {
		local := r.createdAt.In(time.Local)
		month := time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, time.Local)
		buckets[month] = buckets[month].Add(r.price.Mul(decimal.NewFromInt(int64(r.quantity))))
	}

	months := make([]time.Time, 0, len(buckets))
	for month := range buckets {
		months = append(months, month)
	}
	sort.Slice(months, func(i, j int) bool { return months[i].Before(months[j]) })

	result := make([]MonthRevenue, 0, len(months))
	for _, month := range months {
		result = append(result, MonthRevenue{
			Label: month.Format("Jan 2006"),
			Value: buckets[month],
		})
	}
	return result
}
