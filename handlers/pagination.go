package handlers

import (
	"net/http"
	"strconv"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
	defaultLimit    = 10
	maxLimit        = 100
)

// listEnvelope is the paginated response body shared by product and order lists.
type listEnvelope struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  any     `json:"results"`
}

// pageParams reads page-number pagination query parameters. Out-of-range values
// fall back to the defaults rather than erroring.
func pageParams(r *http.Request) (page, pageSize int) {
	page = positiveIntQuery(r, "page", 1)
	pageSize = positiveIntQuery(r, "page_size", defaultPageSize)
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return page, pageSize
}

// limitOffsetParams reads limit/offset pagination query parameters.
func limitOffsetParams(r *http.Request) (limit, offset int) {
	limit = positiveIntQuery(r, "limit", defaultLimit)
	if limit > maxLimit {
		limit = maxLimit
	}
	offset = positiveIntQuery(r, "offset", 0)
	return limit, offset
}

func positiveIntQuery(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return fallback
	}
	if key == "page" && n == 0 {
		return fallback
	}
	return n
}

// pageNumberEnvelope wraps one page of results with next/previous links that
// rewrite the page parameter on the request URL.
func pageNumberEnvelope(r *http.Request, count, page, pageSize int, results any) listEnvelope {
	env := listEnvelope{Count: count, Results: results}
	if page*pageSize < count {
		env.Next = urlWithParam(r, "page", page+1)
	}
	if page > 1 {
		env.Previous = urlWithParam(r, "page", page-1)
	}
	return env
}

// limitOffsetEnvelope wraps one page of results with next/previous links that
// rewrite the offset parameter on the request URL.
func limitOffsetEnvelope(r *http.Request, count, limit, offset int, results any) listEnvelope {
	env := listEnvelope{Count: count, Results: results}
	if offset+limit < count {
		env.Next = urlWithParam(r, "offset", offset+limit)
	}
	if offset > 0 {
		prev := offset - limit
		if prev < 0 {
			prev = 0
		}
		env.Previous = urlWithParam(r, "offset", prev)
	}
	return env
}

func urlWithParam(r *http.Request, key string, value int) *string {
	u := *r.URL
	q := u.Query()
	q.Set(key, strconv.Itoa(value))
	u.RawQuery = q.Encode()
	s := u.String()
	return &s
}
