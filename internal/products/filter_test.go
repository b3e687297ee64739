package products

import (
	"net/url"
	"testing"

	"order-management-service/pkg/fielderrs"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFilterPriceRange(t *testing.T) {
	q := url.Values{}
	q.Set("price__range", "10,20")

	f, err := ParseFilter(q)
	require.NoError(t, err)
	require.NotNil(t, f.PriceRange)
	assert.True(t, f.PriceRange[0].Equal(decimal.NewFromInt(10)))
	assert.True(t, f.PriceRange[1].Equal(decimal.NewFromInt(20)))

	where, args := f.whereClause()
	assert.Contains(t, where, "price BETWEEN $1 AND $2")
	require.Len(t, args, 2)
}

func TestParseFilterDecimalBoundaries(t *testing.T) {
	q := url.Values{}
	q.Set("price__range", "10.00,19.99")

	f, err := ParseFilter(q)
	require.NoError(t, err)
	assert.True(t, f.PriceRange[0].Equal(decimal.RequireFromString("10.00")))
	assert.True(t, f.PriceRange[1].Equal(decimal.RequireFromString("19.99")))
}

func TestParseFilterBadValues(t *testing.T) {
	q := url.Values{}
	q.Set("price", "abc")
	q.Set("stock__lt", "many")
	q.Set("active", "maybe")
	q.Set("price__range", "10")

	_, err := ParseFilter(q)
	require.Error(t, err)

	fe, ok := fielderrs.From(err)
	require.True(t, ok)
	assert.Contains(t, fe, "price")
	assert.Contains(t, fe, "stock__lt")
	assert.Contains(t, fe, "active")
	assert.Contains(t, fe, "price__range")
}

func TestWhereClauseEmptyFilter(t *testing.T) {
	where, args := Filter{}.whereClause()
	assert.Empty(t, where)
	assert.Empty(t, args)
}

func TestWhereClauseCombinesConditions(t *testing.T) {
	active := true
	stockGT := 5
	f := Filter{
		NameContains: "chair",
		Active:       &active,
		StockGT:      &stockGT,
		Search:       "oak",
	}

	where, args := f.whereClause()
	assert.Contains(t, where, "name ILIKE")
	assert.Contains(t, where, "active = ")
	assert.Contains(t, where, "stock > ")
	assert.Contains(t, where, "CAST(id AS TEXT) ILIKE")
	assert.Len(t, args, 5)
}

func TestOrderClause(t *testing.T) {
	cases := []struct {
		ordering string
		want     string
	}{
		{"", "ORDER BY id ASC"},
		{"price", "ORDER BY price ASC, id ASC"},
		{"-price", "ORDER BY price DESC, id ASC"},
		{"-stock", "ORDER BY stock DESC, id ASC"},
		{"name", "ORDER BY name ASC, id ASC"},
		{"drop table", "ORDER BY id ASC"},
		{"-created_at", "ORDER BY id ASC"},
	}
	for _, tc := range cases {
		got := Filter{Ordering: tc.ordering}.orderClause()
		assert.Equal(t, tc.want, got, "ordering=%q", tc.ordering)
	}
}
