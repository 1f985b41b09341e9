package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/Itish41/Poligap/analyzer"
	"github.com/Itish41/Poligap/catalog"
	model "github.com/Itish41/Poligap/models"

	"github.com/lib/pq"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"gorm.io/datatypes"
)

const (
	defaultAuditLimit = 50
	maxAuditLimit     = 200
)

// AuditLogStore persists audit log snapshots.
type AuditLogStore interface {
	Create(ctx context.Context, entry *model.AuditLog) error
	List(ctx context.Context, standards []string, limit int) ([]model.AuditLog, error)
	Get(ctx context.Context, id string) (*model.AuditLog, error)
}

// AuditLogInput is the snapshot of one completed analysis.
type AuditLogInput struct {
	ResultID         string                   `json:"resultId"`
	FileName         string                   `json:"fileName"`
	FileSize         int64                    `json:"fileSize"`
	Standards        []string                 `json:"standards"`
	Score            float64                  `json:"score"`
	Gaps             []model.ComplianceGap    `json:"gaps"`
	Suggestions      []string                 `json:"suggestions"`
	Method           string                   `json:"analysisMethod"`
	DetailedAnalysis *analyzer.AnalysisResult `json:"detailedAnalysis,omitempty"`
	AnalyzedAt       time.Time                `json:"uploadDate"`
}

type AuditService struct {
	store   AuditLogStore
	catalog *catalog.Catalog
	indexer Indexer
}

func NewAuditService(store AuditLogStore, cat *catalog.Catalog, indexer Indexer) *AuditService {
	return &AuditService{store: store, catalog: cat, indexer: indexer}
}

// SnapshotFromReport converts a successful analysis into an audit log input.
func SnapshotFromReport(report *AnalysisReport, fileSize int64) AuditLogInput {
	return AuditLogInput{
		ResultID:         report.Result.ID,
		FileName:         report.FileName,
		FileSize:         fileSize,
		Standards:        report.StandardIDs,
		Score:            report.Result.Score,
		Gaps:             report.Result.Gaps,
		Suggestions:      report.Result.Suggestions,
		Method:           string(report.Outcome.Method),
		DetailedAnalysis: report.Outcome.Result,
		AnalyzedAt:       report.Result.UploadDate,
	}
}

// SaveAuditLog validates and persists a snapshot. The status is derived
// from the score so a stored log never disagrees with its own score.
func (s *AuditService) SaveAuditLog(ctx context.Context, in AuditLogInput) (*model.AuditLog, error) {
	if strings.TrimSpace(in.FileName) == "" {
		return nil, invalid("fileName is required")
	}
	ids := normalizeIDs(in.Standards)
	if len(ids) == 0 {
		return nil, invalid("At least one standard is required")
	}
	if err := s.catalog.ValidateIDs(ids); err != nil {
		return nil, invalid(err.Error())
	}
	if in.Score < 0 || in.Score > 100 {
		return nil, invalid("score must be between 0 and 100")
	}
	for _, g := range in.Gaps {
		if _, ok := s.catalog.Priority(g.Priority); !ok {
			return nil, invalid(fmt.Sprintf("unknown gap priority %q", g.Priority))
		}
	}

	gaps := in.Gaps
	if gaps == nil {
		gaps = []model.ComplianceGap{}
	}
	gapsJSON, err := json.Marshal(gaps)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal gaps: %w", err)
	}
	var detailed datatypes.JSON
	if in.DetailedAnalysis != nil {
		b, err := json.Marshal(in.DetailedAnalysis)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal detailed analysis: %w", err)
		}
		detailed = datatypes.JSON(b)
	}

	analyzedAt := in.AnalyzedAt
	if analyzedAt.IsZero() {
		analyzedAt = nowFunc().UTC()
	}
	entry := &model.AuditLog{
		ID:               newIDFunc(),
		ResultID:         in.ResultID,
		FileName:         in.FileName,
		FileSize:         in.FileSize,
		Standards:        pq.StringArray(ids),
		StandardNames:    strings.Join(s.catalog.Names(ids), ", "),
		Status:           analyzer.StatusForScore(in.Score),
		Score:            in.Score,
		Gaps:             datatypes.JSON(gapsJSON),
		GapCount:         len(gaps),
		Suggestions:      pq.StringArray(in.Suggestions),
		Method:           in.Method,
		DetailedAnalysis: detailed,
		AnalyzedAt:       analyzedAt,
		CreatedAt:        nowFunc().UTC(),
	}
	if err := s.store.Create(ctx, entry); err != nil {
		log.Error().Err(err).Str("file", in.FileName).Msg("[AuditService] failed to save audit log")
		return nil, fmt.Errorf("failed to save audit log: %w", err)
	}
	log.Info().Str("id", entry.ID).Str("file", entry.FileName).Int("gaps", entry.GapCount).Msg("[AuditService] audit log saved")

	if s.indexer != nil {
		s.indexer.Index(ctx, AuditLogIndex, entry.ID, auditLogDocument(entry))
	}
	return entry, nil
}

// FetchAuditLogs returns logs whose standards overlap the given ids,
// newest first. An empty filter returns all logs.
func (s *AuditService) FetchAuditLogs(ctx context.Context, standards []string, limit int) ([]model.AuditLog, error) {
	if limit <= 0 {
		limit = defaultAuditLimit
	}
	limit = lo.Min([]int{limit, maxAuditLimit})

	logs, err := s.store.List(ctx, normalizeIDs(standards), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch audit logs: %w", err)
	}
	if logs == nil {
		logs = []model.AuditLog{}
	}
	return logs, nil
}

func (s *AuditService) GetAuditLog(ctx context.Context, id string) (*model.AuditLog, error) {
	if strings.TrimSpace(id) == "" {
		return nil, invalid("id is required")
	}
	return s.store.Get(ctx, id)
}
