package controller

import (
	"context"
	"net/http"
	"strconv"

	service "github.com/Itish41/Poligap/service"

	"github.com/gin-gonic/gin"
)

type Searcher interface {
	Search(ctx context.Context, query string, limit int) ([]service.SearchHit, error)
}

type SearchController struct {
	service Searcher
}

func NewSearchController(svc Searcher) *SearchController {
	return &SearchController{service: svc}
}

// Search handles GET /api/search?q=...&limit=N.
func (sc *SearchController) Search(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	hits, err := sc.service.Search(c.Request.Context(), c.Query("q"), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "results": hits, "total": len(hits)})
}
