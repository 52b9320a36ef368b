package utils

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// Page holds validated pagination parameters
type Page struct {
	Page     int // 1-based page number
	PageSize int // Items per page, at most 100
}

// ParsePage reads page and page_size from the query string
func ParsePage(c *gin.Context) Page {
	p := Page{Page: 1, PageSize: 20} // Defaults
	if v, err := strconv.Atoi(c.Query("page")); err == nil && v > 0 {
		p.Page = v
	}
	if v, err := strconv.Atoi(c.Query("page_size")); err == nil && v > 0 && v <= 100 {
		p.PageSize = v
	}
	return p
}

// Offset returns the number of rows to skip
func (p Page) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// TotalPages computes the page count for total rows
func (p Page) TotalPages(total int64) int {
	return (int(total) + p.PageSize - 1) / p.PageSize
}

// Key renders the page for use in cache keys
func (p Page) Key() string {
	return "page=" + strconv.Itoa(p.Page) + ":size=" + strconv.Itoa(p.PageSize)
}
