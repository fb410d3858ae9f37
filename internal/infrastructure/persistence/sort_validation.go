package persistence

import (
	"strings"

	"github.com/rinkpass/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// CommonSortFields contains fields common to most entities
var CommonSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
}

// MemberSortFields contains allowed sort fields for members
var MemberSortFields = map[string]bool{
	"id":            true,
	"created_at":    true,
	"updated_at":    true,
	"first_name":    true,
	"last_name":     true,
	"email":         true,
	"status":        true,
	"date_of_birth": true,
}

// RegistrationSortFields contains allowed sort fields for registrations
var RegistrationSortFields = map[string]bool{
	"id":           true,
	"created_at":   true,
	"updated_at":   true,
	"reference":    true,
	"status":       true,
	"amount":       true,
	"submitted_at": true,
	"paid_at":      true,
}

// PaymentSortFields contains allowed sort fields for payments
var PaymentSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"status":     true,
	"amount":     true,
	"paid_at":    true,
}

// StagingSortFields contains allowed sort fields for staging queue rows
var StagingSortFields = map[string]bool{
	"id":            true,
	"created_at":    true,
	"updated_at":    true,
	"sync_status":   true,
	"retry_count":   true,
	"next_retry_at": true,
	"synced_at":     true,
	"amount":        true,
}

// applyPagination applies ordering and pagination from the filter. The sort
// field must be validated by the caller against the entity's whitelist.
func applyPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	orderBy := ValidateSortField(filter.OrderBy, CommonSortFields, "created_at")
	query = query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}
	return query
}

// applyPaginationWithFields is applyPagination with a custom sort whitelist
func applyPaginationWithFields(query *gorm.DB, filter shared.Filter, allowedFields map[string]bool) *gorm.DB {
	orderBy := ValidateSortField(filter.OrderBy, allowedFields, "created_at")
	query = query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}
	return query
}
