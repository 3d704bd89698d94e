// Package pagination parses limit/offset query parameters
package pagination

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/richxcame/expense-tracker/pkg/common"
)

const (
	DefaultLimit  = 20
	MaxLimit      = 100
	DefaultOffset = 0
)

// Params holds pagination parameters
type Params struct {
	Limit  int
	Offset int
}

// ParseParams reads ?limit= and ?offset=. Invalid values fall back to the
// defaults and limit is capped at MaxLimit.
func ParseParams(c *gin.Context) Params {
	limit := DefaultLimit
	if v, err := strconv.Atoi(c.Query("limit")); err == nil && v > 0 {
		limit = v
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	offset := DefaultOffset
	if v, err := strconv.Atoi(c.Query("offset")); err == nil && v >= 0 {
		offset = v
	}

	return Params{Limit: limit, Offset: offset}
}

// BuildMeta builds the response meta for a page
func BuildMeta(limit, offset int, total int64) *common.Meta {
	totalPages := 0
	if limit > 0 && total > 0 {
		totalPages = int((total + int64(limit) - 1) / int64(limit))
	}

	return &common.Meta{
		Limit:      limit,
		Offset:     offset,
		Total:      total,
		TotalPages: totalPages,
	}
}

// HasMore reports whether items remain after this page
func HasMore(offset, limit int, total int64) bool {
	return int64(offset+limit) < total
}

// GetCurrentPage returns the 1-based page number
func GetCurrentPage(offset, limit int) int {
	if limit <= 0 {
		return 1
	}
	return offset/limit + 1
}
