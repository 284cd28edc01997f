package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/GTDGit/panel_api/internal/repository"
)

// listFilter reads the shared status, search, page and limit query params.
func listFilter(c *gin.Context) repository.ListFilter {
	f := repository.ListFilter{
		Status: c.Query("status"),
		Search: c.Query("search"),
		Page:   1,
		Limit:  50,
	}
	if v := c.Query("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			f.Page = n
		}
	}
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			f.Limit = n
		}
	}
	if f.Limit > 200 {
		f.Limit = 200
	}
	return f
}
