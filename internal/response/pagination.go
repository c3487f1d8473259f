package response

import (
	"net/http"
	"strconv"

	"greenquest/internal/models"
)

const (
	// DefaultPageSize is used when the client does not ask for a limit
	DefaultPageSize = 20
	// MaxPageSize caps the requested limit
	MaxPageSize = 100
)

// ParsePagination reads limit, offset, sort and order query parameters
// into pagination params with sane defaults.
func ParsePagination(r *http.Request) models.PaginationParams {
	params := models.PaginationParams{
		Limit:  DefaultPageSize,
		Offset: 0,
	}

	query := r.URL.Query()
	if raw := query.Get("limit"); raw != "" {
		if limit, err := strconv.Atoi(raw); err == nil && limit > 0 {
			if limit > MaxPageSize {
				limit = MaxPageSize
			}
			params.Limit = limit
		}
	}
	if raw := query.Get("offset"); raw != "" {
		if offset, err := strconv.Atoi(raw); err == nil && offset >= 0 {
			params.Offset = offset
		}
	}

	switch query.Get("sort") {
	case "created_at", "updated_at", "amount", "status":
		params.Sort = query.Get("sort")
	}
	switch query.Get("order") {
	case "asc", "desc":
		params.Order = query.Get("order")
	}

	return params
}
