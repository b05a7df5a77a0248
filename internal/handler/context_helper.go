package handler

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/pricelist-review-api/internal/dto"
	"github.com/noah-isme/pricelist-review-api/internal/middleware"
	"github.com/noah-isme/pricelist-review-api/internal/models"
	appErrors "github.com/noah-isme/pricelist-review-api/pkg/errors"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	claims, ok := middleware.Claims(c)
	if !ok {
		return nil
	}
	return claims
}

// queryInt reads a positive integer query value; absent values yield 0.
func queryInt(c *gin.Context, key string) (int, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		return 0, appErrors.Clone(appErrors.ErrValidation, key+" must be a positive integer")
	}
	return v, nil
}

// jobListQuery parses the job history filters. A date-only date_to covers
// the whole day.
func jobListQuery(c *gin.Context) (dto.JobListQuery, error) {
	filters := models.DefaultFilterState()
	filters.SearchQuery = strings.TrimSpace(c.Query("search"))
	if v := strings.TrimSpace(c.Query("client")); v != "" {
		filters.ClientFilter = v
	}
	if v := strings.TrimSpace(c.Query("status")); v != "" {
		filters.StatusFilter = v
	}

	var err error
	if filters.DateFrom, err = models.ParseDateBound(c.Query("date_from"), false); err != nil {
		return dto.JobListQuery{}, appErrors.Clone(appErrors.ErrValidation, "date_from: "+err.Error())
	}
	if filters.DateTo, err = models.ParseDateBound(c.Query("date_to"), true); err != nil {
		return dto.JobListQuery{}, appErrors.Clone(appErrors.ErrValidation, "date_to: "+err.Error())
	}
	if filters.DateFrom != nil && filters.DateTo != nil && filters.DateTo.Before(*filters.DateFrom) {
		return dto.JobListQuery{}, appErrors.Clone(appErrors.ErrValidation, "date_to must not be before date_from")
	}

	page, err := queryInt(c, "page")
	if err != nil {
		return dto.JobListQuery{}, err
	}
	if page > 0 {
		filters.CurrentPage = page
	}
	pageSize, err := queryInt(c, "page_size")
	if err != nil {
		return dto.JobListQuery{}, err
	}

	if key := strings.TrimSpace(c.Query("sort_key")); key != "" {
		filters.Sort.Key = key
	}
	switch dir := models.SortDirection(strings.ToLower(strings.TrimSpace(c.Query("sort_dir")))); dir {
	case "":
	case models.SortAsc, models.SortDesc:
		filters.Sort.Direction = dir
	default:
		return dto.JobListQuery{}, appErrors.Clone(appErrors.ErrValidation, "sort_dir must be asc or desc")
	}

	return dto.JobListQuery{Filters: filters, PageSize: pageSize}, nil
}
