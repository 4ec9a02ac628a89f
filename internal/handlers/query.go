package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/mkuznecov/blogplatform/internal/handlers/middleware"
	"github.com/mkuznecov/blogplatform/internal/models"
)

const (
	defaultPage     = 1
	defaultPageSize = 10
	maxPageSize     = 100
)

// parsePageQuery reads pagination and sorting params with sane fallbacks.
// Unknown sortBy values are passed through: repositories whitelist columns
// themselves
func parsePageQuery(r *http.Request) models.PageQuery {
	query := r.URL.Query()

	page := parsePositiveInt(query.Get("pageNumber"), defaultPage)
	pageSize := parsePositiveInt(query.Get("pageSize"), defaultPageSize)
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	return models.PageQuery{
		Page:     page,
		PageSize: pageSize,
		SortBy:   query.Get("sortBy"),
		SortDesc: !strings.EqualFold(query.Get("sortDirection"), "asc"),
	}
}

func parsePositiveInt(value string, def int) int {
	n, err := strconv.Atoi(value)
	if err != nil || n < 1 {
		return def
	}
	return n
}

// pathUUID parses the named path segment as uuid
func pathUUID(r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue(name))
	return id, err == nil
}

// viewerID resolves the user attached by the access guard; uuid.Nil for
// anonymous viewers
func viewerID(r *http.Request) uuid.UUID {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		return uuid.Nil
	}
	return user.ID
}
