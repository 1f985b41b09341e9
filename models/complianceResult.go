package models

import (
	"time"

	"github.com/Itish41/Poligap/analyzer"
)

// Gap priorities, highest first.
const (
	PriorityCritical = "critical"
	PriorityHigh     = "high"
	PriorityMedium   = "medium"
	PriorityLow      = "low"
)

// ComplianceGap is one deficiency found by an analysis. Never mutated
// after the result is built.
type ComplianceGap struct {
	ID             string `json:"id"`
	Title          string `json:"title"`
	Description    string `json:"description"`
	Priority       string `json:"priority"`
	Category       string `json:"category"`
	Recommendation string `json:"recommendation"`
	Section        string `json:"section,omitempty"`
}

// ComplianceResult is the normalized outcome of one analysis run.
type ComplianceResult struct {
	ID               string                   `json:"id"`
	FileName         string                   `json:"fileName"`
	Standard         string                   `json:"standard"`
	Status           string                   `json:"status"`
	Score            float64                  `json:"score"`
	Gaps             []ComplianceGap          `json:"gaps"`
	Suggestions      []string                 `json:"suggestions"`
	UploadDate       time.Time                `json:"uploadDate"`
	DetailedAnalysis *analyzer.AnalysisResult `json:"detailedAnalysis,omitempty"`
}
