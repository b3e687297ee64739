package orders

import (
	"net/url"
	"testing"
	"time"

	"order-management-service/pkg/fielderrs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFilterStatus(t *testing.T) {
	q := url.Values{}
	q.Set("status", "Completed")

	f, err := ParseFilter(q)
	require.NoError(t, err)
	assert.Equal(t, "Completed", f.Status)
}

func TestParseFilterRejectsUnknownStatus(t *testing.T) {
	q := url.Values{}
	q.Set("status", "Shipped")

	_, err := ParseFilter(q)
	fe, ok := fielderrs.From(err)
	require.True(t, ok)
	assert.Contains(t, fe, "status")
}

func TestParseFilterDates(t *testing.T) {
	q := url.Values{}
	q.Set("created_at", "2025-01-15")
	q.Set("created_at__lt", "2025-02-01")
	q.Set("created_at__gt", "2024-12-31")

	f, err := ParseFilter(q)
	require.NoError(t, err)
	assert.Equal(t, 15, f.CreatedAt.Day())
	assert.Equal(t, time.February, f.CreatedLT.Month())
	assert.Equal(t, 2024, f.CreatedGT.Year())
}

func TestParseFilterMonthBounds(t *testing.T) {
	for _, bad := range []string{"0", "13", "abc"} {
		q := url.Values{}
		q.Set("month", bad)
		_, err := ParseFilter(q)
		assert.Error(t, err, "month=%q", bad)
	}

	q := url.Values{}
	q.Set("month", "3")
	f, err := ParseFilter(q)
	require.NoError(t, err)
	require.NotNil(t, f.Month)
	assert.Equal(t, 3, *f.Month)
}

func TestWhereClauseRecentUsesTenDayCutoff(t *testing.T) {
	now := time.Date(2025, time.June, 20, 12, 0, 0, 0, time.UTC)
	f := Filter{Recent: true}

	where, args := f.whereClause(now)

	assert.Contains(t, where, "o.created_at >= $1")
	require.Len(t, args, 1)
	cutoff, ok := args[0].(time.Time)
	require.True(t, ok)
	assert.Equal(t, now.AddDate(0, 0, -10), cutoff)
}

func TestWhereClauseEmpty(t *testing.T) {
	where, args := Filter{}.whereClause(time.Now())
	assert.Empty(t, where)
	assert.Empty(t, args)
}

func TestWhereClauseCombines(t *testing.T) {
	month := 2
	created := time.Date(2025, time.February, 10, 0, 0, 0, 0, time.Local)
	f := Filter{Status: StatusPending, CreatedLT: &created, Month: &month}

	where, args := f.whereClause(time.Now())

	assert.Contains(t, where, "o.status = $1")
	assert.Contains(t, where, "o.created_at::date < $2")
	assert.Contains(t, where, "EXTRACT(MONTH FROM o.created_at) = $3")
	assert.Equal(t, []any{StatusPending, "2025-02-10", 2}, args)
}

func TestValidateItems(t *testing.T) {
	err := validateItems([]ItemEntry{{ProductID: 1, Quantity: 0}})
	fe, ok := fielderrs.From(err)
	require.True(t, ok)
	assert.Contains(t, fe["quantity"], "Quantity must be greater than 0.")

	err = validateItems([]ItemEntry{{Quantity: 2}})
	fe, ok = fielderrs.From(err)
	require.True(t, ok)
	assert.Contains(t, fe, "product")

	assert.NoError(t, validateItems([]ItemEntry{{ProductID: 1, Quantity: 2}}))
}
