package params

import (
	"strconv"
	"strings"

	"appointment-scheduler/core/constants"

	"github.com/labstack/echo/v4"
)

type QueryParams struct {
	PageNumber int
	PageSize   int
	Search     string
}

func (p QueryParams) Offset() int {
	return (p.PageNumber - 1) * p.PageSize
}

// NewQueryParams reads page/limit (page_size is accepted as an alias) from the query string.
func NewQueryParams(c echo.Context) *QueryParams {
	return NewQueryParamsWithDefault(c, constants.DefaultPageSize)
}

func NewQueryParamsWithDefault(c echo.Context, defaultPageSize int) *QueryParams {
	limit := c.QueryParam("limit")
	if limit == "" {
		limit = c.QueryParam("page_size")
	}
	return &QueryParams{
		PageNumber: positiveInt(c.QueryParam("page"), constants.DefaultPageNumber, 0),
		PageSize:   positiveInt(limit, defaultPageSize, constants.MaxPageSize),
		Search:     strings.TrimSpace(c.QueryParam("search")),
	}
}

func positiveInt(raw string, def, max int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n <= 0 {
		return def
	}
	if max > 0 && n > max {
		return max
	}
	return n
}
