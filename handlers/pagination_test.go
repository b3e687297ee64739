package handlers

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPageParamsDefaults(t *testing.T) {
	r := httptest.NewRequest("GET", "/products", nil)
	page, pageSize := pageParams(r)
	assert.Equal(t, 1, page)
	assert.Equal(t, defaultPageSize, pageSize)
}

func TestPageParamsClampsPageSize(t *testing.T) {
	r := httptest.NewRequest("GET", "/products?page=3&page_size=500", nil)
	page, pageSize := pageParams(r)
	assert.Equal(t, 3, page)
	assert.Equal(t, maxPageSize, pageSize)
}

func TestPageParamsIgnoresGarbage(t *testing.T) {
	r := httptest.NewRequest("GET", "/products?page=abc&page_size=-2", nil)
	page, pageSize := pageParams(r)
	assert.Equal(t, 1, page)
	assert.Equal(t, defaultPageSize, pageSize)
}

func TestLimitOffsetParams(t *testing.T) {
	r := httptest.NewRequest("GET", "/orders?limit=25&offset=50", nil)
	limit, offset := limitOffsetParams(r)
	assert.Equal(t, 25, limit)
	assert.Equal(t, 50, offset)
}

func TestPageNumberEnvelopeLinks(t *testing.T) {
	r := httptest.NewRequest("GET", "/products?page=2&page_size=10", nil)

	env := pageNumberEnvelope(r, 35, 2, 10, nil)

	assert.Equal(t, 35, env.Count)
	require.NotNil(t, env.Next)
	assert.Contains(t, *env.Next, "page=3")
	require.NotNil(t, env.Previous)
	assert.Contains(t, *env.Previous, "page=1")
}

func TestPageNumberEnvelopeBoundaries(t *testing.T) {
	r := httptest.NewRequest("GET", "/products", nil)

	first := pageNumberEnvelope(r, 35, 1, 10, nil)
	assert.NotNil(t, first.Next)
	assert.Nil(t, first.Previous)

	last := pageNumberEnvelope(r, 35, 4, 10, nil)
	assert.Nil(t, last.Next)
	assert.NotNil(t, last.Previous)

	exact := pageNumberEnvelope(r, 20, 2, 10, nil)
	assert.Nil(t, exact.Next)
}

func TestLimitOffsetEnvelopeLinks(t *testing.T) {
	r := httptest.NewRequest("GET", "/orders?limit=10&offset=10", nil)

	env := limitOffsetEnvelope(r, 25, 10, 10, nil)

	require.NotNil(t, env.Next)
	assert.Contains(t, *env.Next, "offset=20")
	require.NotNil(t, env.Previous)
	assert.Contains(t, *env.Previous, "offset=0")
}

func TestLimitOffsetEnvelopeFirstPage(t *testing.T) {
	r := httptest.NewRequest("GET", "/orders", nil)

	env := limitOffsetEnvelope(r, 5, 10, 0, nil)

	assert.Nil(t, env.Next)
	assert.Nil(t, env.Previous)
}

func TestLimitOffsetEnvelopePreviousClampedToZero(t *testing.T) {
	r := httptest.NewRequest("GET", "/orders?limit=10&offset=4", nil)

	env := limitOffsetEnvelope(r, 100, 10, 4, nil)

	require.NotNil(t, env.Previous)
	assert.Contains(t, *env.Previous, "offset=0")
}
