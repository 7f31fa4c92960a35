package api

import (
	"math"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/foodgram/backend/internal/repository"
	"github.com/foodgram/backend/internal/types"
)

// maxPageSize caps the limit query parameter.
const maxPageSize = 100

// pagination is the page/limit pair of a list request.
type pagination struct {
	page  int
	limit int
}

func parsePagination(c *gin.Context, defaultLimit int) pagination {
	p := pagination{page: 1, limit: defaultLimit}
	if n, err := strconv.Atoi(c.Query("page")); err == nil && n > 0 {
		p.page = n
	}
	if n, err := strconv.Atoi(c.Query("limit")); err == nil && n > 0 {
		p.limit = n
	}
	if p.limit > maxPageSize {
		p.limit = maxPageSize
	}
	if p.limit < 1 {
		p.limit = 1
	}
	// keeps page*limit and the offset from overflowing
	if maxPage := math.MaxInt / p.limit; p.page > maxPage {
		p.page = maxPage
	}
	return p
}

func (p pagination) repo() repository.Page {
	return repository.Page{Limit: p.limit, Offset: (p.page - 1) * p.limit}
}

// newPage wraps results with the total count and absolute links to the
// neighbouring pages.
func newPage[T any](c *gin.Context, p pagination, count int64, results []T) types.Page[T] {
	if results == nil {
		results = []T{}
	}
	out := types.Page[T]{Count: count, Results: results}
	if int64(p.page*p.limit) < count {
		next := pageURL(c, p.page+1)
		out.Next = &next
	}
	if p.page > 1 {
		prev := pageURL(c, p.page-1)
		out.Previous = &prev
	}
	return out
}

func pageURL(c *gin.Context, page int) string {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if fwd := c.GetHeader("X-Forwarded-Proto"); fwd != "" {
		scheme = fwd
	}
	q := c.Request.URL.Query()
	if page <= 1 {
		q.Del("page")
	} else {
		q.Set("page", strconv.Itoa(page))
	}
	u := url.URL{Scheme: scheme, Host: c.Request.Host, Path: c.Request.URL.Path, RawQuery: q.Encode()}
	return u.String()
}

func respondPage[T any](c *gin.Context, p pagination, count int64, results []T) {
	c.JSON(http.StatusOK, newPage(c, p, count, results))
}
