package controller

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	model "github.com/Itish41/Poligap/models"
	service "github.com/Itish41/Poligap/service"

	"github.com/gin-gonic/gin"
)

// AuditLogService reads and writes audit log snapshots.
type AuditLogService interface {
	SaveAuditLog(ctx context.Context, in service.AuditLogInput) (*model.AuditLog, error)
	FetchAuditLogs(ctx context.Context, standards []string, limit int) ([]model.AuditLog, error)
	GetAuditLog(ctx context.Context, id string) (*model.AuditLog, error)
}

type AuditController struct {
	service AuditLogService
}

func NewAuditController(svc AuditLogService) *AuditController {
	return &AuditController{service: svc}
}

// GetAuditLogs handles GET /api/audit-logs?standards=a,b&limit=N.
func (ac *AuditController) GetAuditLogs(c *gin.Context) {
	var standards []string
	if raw := c.Query("standards"); raw != "" {
		standards = strings.Split(raw, ",")
	}
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a non-negative integer"})
			return
		}
		limit = n
	}

	logs, err := ac.service.FetchAuditLogs(c.Request.Context(), standards, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "logs": logs})
}

func (ac *AuditController) CreateAuditLog(c *gin.Context) {
	var in service.AuditLogInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}
	entry, err := ac.service.SaveAuditLog(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "log": entry})
}

func (ac *AuditController) GetAuditLog(c *gin.Context) {
	entry, err := ac.service.GetAuditLog(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "log": entry})
}
