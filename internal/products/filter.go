package products

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"order-management-service/pkg/fielderrs"

	"github.com/shopspring/decimal"
)

// Filter holds the parsed list-endpoint query parameters. Nil pointers mean
// the parameter was absent.
type Filter struct {
	Name         string
	NameContains string

	Price      *decimal.Decimal
	PriceLT    *decimal.Decimal
	PriceGT    *decimal.Decimal
	PriceRange *[2]decimal.Decimal

	Active *bool

	Stock      *int
	StockLT    *int
	StockGT    *int
	StockRange *[2]int

	Search   string
	Ordering string
}

// ParseFilter reads the supported query parameters. Malformed values surface as
// field errors so the handler can answer 400.
func ParseFilter(q url.Values) (Filter, error) {
	var f Filter
	fe := fielderrs.FieldErrors{}

	f.Name = q.Get("name")
	f.NameContains = q.Get("name__contains")
	f.Search = q.Get("search")
	f.Ordering = q.Get("ordering")

	f.Price = parseDecimal(q, "price", fe)
	f.PriceLT = parseDecimal(q, "price__lt", fe)
	f.PriceGT = parseDecimal(q, "price__gt", fe)
	if raw := q.Get("price__range"); raw != "" {
		lo, hi, err := splitRange(raw)
		if err != nil {
			fe.Add("price__range", err.Error())
		} else {
			loDec, errLo := decimal.NewFromString(lo)
			hiDec, errHi := decimal.NewFromString(hi)
			if errLo != nil || errHi != nil {
				fe.Add("price__range", "enter valid decimal bounds.")
			} else {
				f.PriceRange = &[2]decimal.Decimal{loDec, hiDec}
			}
		}
	}

	if raw := q.Get("active"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			fe.Add("active", "enter a valid boolean.")
		} else {
			f.Active = &active
		}
	}

	f.Stock = parseInt(q, "stock", fe)
	f.StockLT = parseInt(q, "stock__lt", fe)
	f.StockGT = parseInt(q, "stock__gt", fe)
	if raw := q.Get("stock__range"); raw != "" {
		lo, hi, err := splitRange(raw)
		if err != nil {
			fe.Add("stock__range", err.Error())
		} else {
			loInt, errLo := strconv.Atoi(lo)
			hiInt, errHi := strconv.Atoi(hi)
			if errLo != nil || errHi != nil {
				fe.Add("stock__range", "enter valid integer bounds.")
			} else {
				f.StockRange = &[2]int{loInt, hiInt}
			}
		}
	}

	if len(fe) > 0 {
		return Filter{}, fe
	}
	return f, nil
}

func parseDecimal(q url.Values, key string, fe fielderrs.FieldErrors) *decimal.Decimal {
	raw := q.Get(key)
	if raw == "" {
		return nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		fe.Add(key, "enter a valid decimal.")
		return nil
	}
	return &d
}

func parseInt(q url.Values, key string, fe fielderrs.FieldErrors) *int {
	raw := q.Get(key)
	if raw == "" {
		return nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		fe.Add(key, "enter a valid integer.")
		return nil
	}
	return &n
}

func splitRange(raw string) (string, string, error) {
	parts := strings.Split(raw, ",")
	if len(parts) != 2 {
		return "", "", fmt.Errorf("expected two comma-separated bounds")
	}
	return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]), nil
}

// whereClause builds the WHERE fragment and its arguments. An empty string means
// no filtering applies.
func (f Filter) whereClause() (string, []any) {
	var conds []string
	var args []any

	next := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.Name != "" {
		conds = append(conds, fmt.Sprintf("LOWER(name) = LOWER(%s)", next(f.Name)))
	}
	if f.NameContains != "" {
		conds = append(conds, fmt.Sprintf("name ILIKE '%%' || %s || '%%'", next(f.NameContains)))
	}
	if f.Price != nil {
		conds = append(conds, fmt.Sprintf("price = %s", next(*f.Price)))
	}
	if f.PriceLT != nil {
		conds = append(conds, fmt.Sprintf("price < %s", next(*f.PriceLT)))
	}
	if f.PriceGT != nil {
		conds = append(conds, fmt.Sprintf("price > %s", next(*f.PriceGT)))
	}
	if f.PriceRange != nil {
		conds = append(conds, fmt.Sprintf("price BETWEEN %s AND %s", next(f.PriceRange[0]), next(f.PriceRange[1])))
	}
	if f.Active != nil {
		conds = append(conds, fmt.Sprintf("active = %s", next(*f.Active)))
	}
	if f.Stock != nil {
		conds = append(conds, fmt.Sprintf("stock = %s", next(*f.Stock)))
	}
	if f.StockLT != nil {
		conds = append(conds, fmt.Sprintf("stock < %s", next(*f.StockLT)))
	}
	if f.StockGT != nil {
		conds = append(conds, fmt.Sprintf("stock > %s", next(*f.StockGT)))
	}
	if f.StockRange != nil {
		conds = append(conds, fmt.Sprintf("stock BETWEEN %s AND %s", next(f.StockRange[0]), next(f.StockRange[1])))
	}
	if f.Search != "" {
		conds = append(conds, fmt.Sprintf("(CAST(id AS TEXT) ILIKE '%%' || %s || '%%' OR name ILIKE '%%' || %s || '%%')",
			next(f.Search), next(f.Search)))
	}

	if len(conds) == 0 {
		return "", nil
	}
	return "WHERE " + strings.Join(conds, " AND "), args
}

// orderClause maps the ordering parameter onto a whitelisted ORDER BY. Unknown
// fields fall back to primary-key order.
func (f Filter) orderClause() string {
	field := f.Ordering
	direction := "ASC"
	if strings.HasPrefix(field, "-") {
		field = field[1:]
		direction = "DESC"
	}
	switch field {
	case "name", "price", "stock":
		return fmt.Sprintf("ORDER BY %s %s, id ASC", field, direction)
	default:
		return "ORDER BY id ASC"
	}
}
