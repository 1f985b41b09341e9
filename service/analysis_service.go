package services

import (
	"context"
	"strings"

	"github.com/Itish41/Poligap/analyzer"
	"github.com/Itish41/Poligap/catalog"
	model "github.com/Itish41/Poligap/models"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
)

const unsupportedFileMessage = "Unsupported file type. Please upload PDF, DOC, DOCX, or TXT files."

// Runner runs the provider chain for one document.
type Runner interface {
	Run(ctx context.Context, doc analyzer.Document, standardNames []string) analyzer.Outcome
}

// AnalysisReport is what one analysis request produces. Result is always
// set, even when every provider failed.
type AnalysisReport struct {
	FileName      string
	StandardIDs   []string
	StandardNames []string
	Outcome       analyzer.Outcome
	Result        model.ComplianceResult
}

type AnalysisService struct {
	catalog *catalog.Catalog
	runner  Runner
}

func NewAnalysisService(cat *catalog.Catalog, runner Runner) *AnalysisService {
	return &AnalysisService{catalog: cat, runner: runner}
}

// Analyze validates the request, runs the pipeline and builds the
// compliance result. A provider failure returns the report (holding the
// failed result) together with the error.
func (s *AnalysisService) Analyze(ctx context.Context, doc analyzer.Document, standardIDs []string) (*AnalysisReport, error) {
	if doc.FileName == "" || len(doc.Data) == 0 {
		return nil, invalid("No file provided")
	}
	if !analyzer.IsSupported(doc) {
		return nil, invalid(unsupportedFileMessage)
	}

	ids := normalizeIDs(standardIDs)
	if len(ids) == 0 {
		return nil, invalid("No compliance standards selected")
	}
	if err := s.catalog.ValidateIDs(ids); err != nil {
		return nil, invalid(err.Error())
	}

	names := s.catalog.Names(ids)
	log.Info().Str("file", doc.FileName).Int("size", len(doc.Data)).Strs("standards", ids).Msg("[AnalysisService] starting analysis")

	outcome := s.runner.Run(ctx, doc, names)
	report := &AnalysisReport{
		FileName:      doc.FileName,
		StandardIDs:   ids,
		StandardNames: names,
		Outcome:       outcome,
	}
	if outcome.Failed() {
		report.Result = FailedComplianceResult(doc.FileName, names, outcome.Err)
		return report, outcome.Err
	}

	report.Result = BuildComplianceResult(s.catalog, outcome.Result, doc.FileName, names)
	log.Info().
		Str("file", doc.FileName).
		Str("method", string(outcome.Method)).
		Float64("score", report.Result.Score).
		Int("gaps", len(report.Result.Gaps)).
		Msg("[AnalysisService] analysis finished")
	return report, nil
}

// normalizeIDs lower-cases, trims and deduplicates standard ids. Form
// values may arrive as one comma-separated string.
func normalizeIDs(ids []string) []string {
	split := lo.FlatMap(ids, func(id string, _ int) []string {
		return strings.Split(id, ",")
	})
	cleaned := lo.FilterMap(split, func(id string, _ int) (string, bool) {
		id = strings.ToLower(strings.TrimSpace(id))
		return id, id != ""
	})
	return lo.Uniq(cleaned)
}
