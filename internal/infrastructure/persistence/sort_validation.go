package persistence

import (
	"strings"

	"github.com/ipshield/backend/internal/domain/shared"
	"gorm.io/gorm"
)

const defaultSortField = "created_at"

// Sortable columns per list endpoint. Anything else from a query string
// falls back to defaultSortField, so user input never reaches ORDER BY.
var (
	CustomerSortFields = columnSet("id", "created_at", "updated_at", "customer_code", "name", "type", "status")
	ContractSortFields = columnSet("id", "created_at", "updated_at", "contract_no", "service_type", "contract_value", "status", "signed_date")
)

func columnSet(cols ...string) map[string]bool {
	set := make(map[string]bool, len(cols))
	for _, c := range cols {
		set[c] = true
	}
	return set
}

// ValidateSortOrder is ASC only when asked for; everything else is DESC
func ValidateSortOrder(orderDir string) string {
	if strings.EqualFold(strings.TrimSpace(orderDir), "asc") {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField returns sortField when allowed lists it, else defaultField
func ValidateSortField(sortField string, allowed map[string]bool, defaultField string) string {
	if f := strings.TrimSpace(sortField); allowed[f] {
		return f
	}
	return defaultField
}

// orderAndPage sorts by a whitelisted column, then id for a stable order,
// and applies LIMIT/OFFSET when a page size is set. table qualifies the
// columns for joined queries.
func orderAndPage(query *gorm.DB, filter shared.Filter, allowed map[string]bool, table string) *gorm.DB {
	col := func(name string) string {
		if table == "" {
			return name
		}
		return table + "." + name
	}
	field := ValidateSortField(filter.OrderBy, allowed, defaultSortField)
	query = query.Order(col(field) + " " + ValidateSortOrder(filter.OrderDir)).Order(col("id"))
	if filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}
	return query
}
