package parse

import (
	"net/url"
	"strconv"
	"strings"

	"jeonse-ledger-backend/internal/listing"
	"jeonse-ledger-backend/internal/store"
	"jeonse-ledger-backend/internal/validation"
)

const (
	DefaultPageSize = 25
	MaxPageSize     = 100
	MaxPage         = 100_000
)

// sortableColumns are the list columns a client may order by. The detail
// link column is not orderable.
var sortableColumns = map[string]bool{
	"id":                       true,
	"jeonse_deposit_amount":    true,
	"wolse_deposit_amount":     true,
	"wolse_monthly_payment":    true,
	"gwanlibi_monthly_payment": true,
	"annual_interest_rate":     true,
	"total_monthly_payment":    true,
	"total_area":               true,
	"number_of_rooms":          true,
	"number_of_bathrooms":      true,
	"created_at":               true,
}

// ListingQuery builds a listing query from URL parameters:
//
//	jeonse_deposit_amount_lte, wolse_deposit_amount_lte,
//	total_monthly_payment_lte  inclusive upper bounds (integers)
//	page                       1-based page number, 1..MaxPage
//	page_size                  rows per page, 1..MaxPageSize
//	sort                       column name, "-" prefix for descending
//
// Empty parameters are ignored. Every malformed parameter is reported in the
// returned *validation.Error.
func ListingQuery(values url.Values) (listing.Query, error) {
	errs := map[string]string{}
	q := listing.Query{
		Page: store.Page{Number: 1, Size: DefaultPageSize},
	}

	q.Filter.MaxJeonseDepositAmount = bound(values, "jeonse_deposit_amount_lte", errs)
	q.Filter.MaxWolseDepositAmount = bound(values, "wolse_deposit_amount_lte", errs)
	q.Filter.MaxTotalMonthlyPayment = bound(values, "total_monthly_payment_lte", errs)

	if raw := strings.TrimSpace(values.Get("page")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > MaxPage {
			errs["page"] = "must be an integer between 1 and " + strconv.Itoa(MaxPage)
		} else {
			q.Page.Number = n
		}
	}

	if raw := strings.TrimSpace(values.Get("page_size")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > MaxPageSize {
			errs["page_size"] = "must be an integer between 1 and " + strconv.Itoa(MaxPageSize)
		} else {
			q.Page.Size = n
		}
	}

	if raw := strings.TrimSpace(values.Get("sort")); raw != "" {
		column := strings.TrimPrefix(raw, "-")
		if !sortableColumns[column] {
			errs["sort"] = "unknown column " + strconv.Quote(column)
		} else {
			q.Page.OrderBy = column
			q.Page.Desc = strings.HasPrefix(raw, "-")
		}
	}

	if len(errs) > 0 {
		return listing.Query{}, &validation.Error{Fields: errs}
	}
	return q, nil
}

func bound(values url.Values, key string, errs map[string]string) *int64 {
	raw := strings.TrimSpace(values.Get(key))
	if raw == "" {
		return nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		errs[key] = "must be an integer"
		return nil
	}
	return &n
}
