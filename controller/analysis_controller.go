package controller

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/Itish41/Poligap/analyzer"
	"github.com/Itish41/Poligap/catalog"
	model "github.com/Itish41/Poligap/models"
	service "github.com/Itish41/Poligap/service"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// DocumentAnalyzer runs one compliance analysis.
type DocumentAnalyzer interface {
	Analyze(ctx context.Context, doc analyzer.Document, standardIDs []string) (*service.AnalysisReport, error)
}

// AuditRecorder stores the snapshot of a finished analysis.
type AuditRecorder interface {
	SaveAuditLog(ctx context.Context, in service.AuditLogInput) (*model.AuditLog, error)
}

type AnalysisController struct {
	analysis DocumentAnalyzer
	audit    AuditRecorder
	catalog  *catalog.Catalog
}

func NewAnalysisController(analysis DocumentAnalyzer, audit AuditRecorder, cat *catalog.Catalog) *AnalysisController {
	return &AnalysisController{analysis: analysis, audit: audit, catalog: cat}
}

// GetStandards lists the catalog so the UI can render the standard picker.
func (ac *AnalysisController) GetStandards(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"standards":  ac.catalog.Standards(),
		"priorities": ac.catalog.Priorities(),
	})
}

// AnalyzeDocument handles POST /api/compliance-analysis (multipart: file,
// selectedStandards). "standards" is accepted as an alias.
func (ac *AnalysisController) AnalyzeDocument(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "File is too large"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file provided"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read uploaded file"})
		return
	}

	doc := analyzer.Document{
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}
	standards := parseStandards(c.PostFormArray("selectedStandards"))
	if len(standards) == 0 {
		standards = parseStandards(c.PostFormArray("standards"))
	}

	report, err := ac.analysis.Analyze(c.Request.Context(), doc, standards)
	if err != nil {
		if report == nil {
			respondError(c, err)
			return
		}
		log.Error().Err(err).Str("file", doc.FileName).Msg("[AnalysisController] all providers failed")
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   err.Error(),
			"result":  report.Result,
		})
		return
	}

	resp := gin.H{
		"success":           true,
		"fileName":          report.FileName,
		"selectedStandards": report.StandardIDs,
		"analysis":          report.Outcome.Result,
		"method":            report.Outcome.Method,
		"result":            report.Result,
	}
	if ac.audit != nil {
		entry, err := ac.audit.SaveAuditLog(c.Request.Context(), service.SnapshotFromReport(report, header.Size))
		if err != nil {
			log.Warn().Err(err).Str("file", doc.FileName).Msg("[AnalysisController] audit log not saved")
		} else {
			resp["auditLogId"] = entry.ID
		}
	}
	c.JSON(http.StatusOK, resp)
}

// parseStandards accepts repeated fields, comma lists or a JSON array.
func parseStandards(values []string) []string {
	var out []string
	for _, v := range values {
		v = strings.TrimSpace(v)
		if strings.HasPrefix(v, "[") {
			var arr []string
			if err := json.Unmarshal([]byte(v), &arr); err == nil {
				out = append(out, arr...)
				continue
			}
		}
		out = append(out, v)
	}
	return out
}
