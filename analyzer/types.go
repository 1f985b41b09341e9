package analyzer

import (
	"errors"
	"fmt"
	"strings"
)

// Analysis statuses derived from a score.
const (
	StatusCompliant    = "compliant"
	StatusPartial      = "partial"
	StatusNonCompliant = "non-compliant"
)

// FailedStandard labels the standards entry of a result the miner gave up on.
const FailedStandard = "Analysis Failed"

// AnalysisResult is the structured verdict the AI providers are asked to return.
type AnalysisResult struct {
	OverallScore      float64            `json:"overallScore"`
	StandardsAnalysis []StandardAnalysis `json:"standardsAnalysis"`
	Summary           Summary            `json:"summary"`
	DetailedFindings  DetailedFindings   `json:"detailedFindings"`
}

// StandardAnalysis is the verdict for one standard.
type StandardAnalysis struct {
	Standard       string   `json:"standard"`
	Score          float64  `json:"score"`
	Status         string   `json:"status"`
	Gaps           []string `json:"gaps"`
	Suggestions    []string `json:"suggestions"`
	CriticalIssues []string `json:"criticalIssues"`
}

type Summary struct {
	TotalGaps       int    `json:"totalGaps"`
	CriticalIssues  int    `json:"criticalIssues"`
	Recommendations int    `json:"recommendations"`
	Overview        string `json:"overview,omitempty"`
}

type DetailedFindings struct {
	Strengths  []string `json:"strengths"`
	Weaknesses []string `json:"weaknesses"`
	RiskAreas  []string `json:"riskAreas"`
}

// Failed reports whether the result is the miner's explicit give-up result.
func (r *AnalysisResult) Failed() bool {
	return len(r.StandardsAnalysis) > 0 && r.StandardsAnalysis[0].Standard == FailedStandard
}

// Document is an uploaded file handed to the analyzers.
type Document struct {
	FileName    string
	ContentType string
	Data        []byte
}

// Ext returns the lower-cased file extension including the dot.
func (d Document) Ext() string {
	i := strings.LastIndex(d.FileName, ".")
	if i < 0 {
		return ""
	}
	return strings.ToLower(d.FileName[i:])
}

// StatusForScore maps a score to its status: >=90 compliant, >=70 partial.
func StatusForScore(score float64) string {
	switch {
	case score >= 90:
		return StatusCompliant
	case score >= 70:
		return StatusPartial
	default:
		return StatusNonCompliant
	}
}

// ClampScore keeps a score inside [0,100].
func ClampScore(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// ErrMissingCredential is returned when a provider has no API key configured.
var ErrMissingCredential = errors.New("provider credential is not configured")

// AnalysisError is a provider-level failure.
type AnalysisError struct {
	Provider string
	Err      error
}

func (e *AnalysisError) Error() string {
	return fmt.Sprintf("%s analysis failed: %v", e.Provider, e.Err)
}

func (e *AnalysisError) Unwrap() error { return e.Err }
