package services

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/Itish41/Poligap/analyzer"
	"github.com/Itish41/Poligap/catalog"
	model "github.com/Itish41/Poligap/models"

	"github.com/samber/lo"
)

const maxGapTitleLen = 80

const (
	noGapsTitle       = "No Gaps Identified"
	noSuggestionsText = "No specific suggestions"
	analysisErrorGap  = "Analysis Error"
)

var sectionRef = regexp.MustCompile(`(?i)\b(?:section|article|clause|§)\s*\d+(?:\.\d+)*(?:\([a-z0-9]+\))*`)

// ClassifyGapPriority assigns a priority to a gap. The rules are checked in
// order and the first match wins; stored audit snapshots depend on this
// exact order.
func ClassifyGapPriority(text string, standardScore float64) string {
	t := strings.ToLower(text)
	switch {
	case standardScore == 0:
		return model.PriorityCritical
	case strings.Contains(t, "critical"),
		strings.Contains(t, "complete absence"),
		strings.Contains(t, "no procedures"):
		return model.PriorityCritical
	case strings.Contains(t, "insufficient"),
		strings.Contains(t, "inadequate"),
		standardScore < 30:
		return model.PriorityHigh
	case strings.Contains(t, "limited"),
		strings.Contains(t, "unclear"),
		standardScore < 70:
		return model.PriorityMedium
	default:
		return model.PriorityLow
	}
}

// GapTitle is the text before the first period, or the first 80
// characters when there is no usable sentence.
func GapTitle(text string) string {
	text = strings.TrimSpace(text)
	title := text
	if i := strings.Index(text, "."); i > 0 {
		title = strings.TrimSpace(text[:i])
	}
	if utf8.RuneCountInString(title) > maxGapTitleLen {
		title = string([]rune(title)[:maxGapTitleLen])
	}
	return title
}

// BuildComplianceResult turns an analysis into the gap/suggestion shape the
// UI and audit log use. Critical issues always become critical gaps; the
// remaining gaps are classified. Gaps are ordered by catalog priority rank.
func BuildComplianceResult(cat *catalog.Catalog, analysis *analyzer.AnalysisResult, fileName string, standardNames []string) model.ComplianceResult {
	score := analyzer.ClampScore(analysis.OverallScore)
	result := model.ComplianceResult{
		ID:               newIDFunc(),
		FileName:         fileName,
		Standard:         strings.Join(standardNames, ", "),
		Status:           analyzer.StatusForScore(score),
		Score:            score,
		UploadDate:       nowFunc().UTC(),
		DetailedAnalysis: analysis,
	}

	// Gaps repeat within a standard but keep one entry per standard they
	// were found under.
	seen := map[string]bool{}
	var gaps []model.ComplianceGap
	add := func(text, priority string, sa analyzer.StandardAnalysis, idx int) {
		norm := strings.ToLower(strings.TrimSpace(text))
		if norm == "" {
			return
		}
		key := sa.Standard + "\x00" + norm
		if seen[key] {
			return
		}
		seen[key] = true
		gaps = append(gaps, model.ComplianceGap{
			Title:          GapTitle(text),
			Description:    text,
			Priority:       priority,
			Category:       sa.Standard,
			Recommendation: recommendationFor(sa, idx),
			Section:        sectionRef.FindString(text),
		})
	}
	for _, sa := range analysis.StandardsAnalysis {
		for i, issue := range sa.CriticalIssues {
			add(issue, model.PriorityCritical, sa, i)
		}
		for i, gap := range sa.Gaps {
			add(gap, ClassifyGapPriority(gap, sa.Score), sa, i)
		}
	}

	sort.SliceStable(gaps, func(i, j int) bool {
		return cat.PriorityRank(gaps[i].Priority) < cat.PriorityRank(gaps[j].Priority)
	})
	for i := range gaps {
		gaps[i].ID = fmt.Sprintf("gap-%d", i+1)
	}
	if len(gaps) == 0 {
		gaps = []model.ComplianceGap{{
			ID:             "gap-1",
			Title:          noGapsTitle,
			Description:    "No compliance gaps were identified for the selected standards.",
			Priority:       model.PriorityLow,
			Category:       "General",
			Recommendation: "Keep the document under periodic review as the standards evolve.",
		}}
	}
	result.Gaps = gaps

	suggestions := lo.Uniq(lo.FlatMap(analysis.StandardsAnalysis, func(sa analyzer.StandardAnalysis, _ int) []string {
		return sa.Suggestions
	}))
	if len(suggestions) == 0 {
		suggestions = []string{noSuggestionsText}
	}
	result.Suggestions = suggestions
	return result
}

func recommendationFor(sa analyzer.StandardAnalysis, idx int) string {
	if idx < len(sa.Suggestions) {
		return sa.Suggestions[idx]
	}
	return fmt.Sprintf("Review the document against %s requirements and address this gap.", sa.Standard)
}

// FailedComplianceResult is what the results view shows when no provider
// could analyze the document, so the wizard always has a result to render.
func FailedComplianceResult(fileName string, standardNames []string, cause error) model.ComplianceResult {
	return model.ComplianceResult{
		ID:       newIDFunc(),
		FileName: fileName,
		Standard: strings.Join(standardNames, ", "),
		Status:   analyzer.StatusNonCompliant,
		Score:    0,
		Gaps: []model.ComplianceGap{{
			ID:             "gap-1",
			Title:          analysisErrorGap,
			Description:    cause.Error(),
			Priority:       model.PriorityCritical,
			Category:       "System",
			Recommendation: "Retry the analysis. If it keeps failing, upload a text-based copy of the document.",
		}},
		Suggestions: []string{"Please try the analysis again or contact support if the problem persists."},
		UploadDate:  nowFunc().UTC(),
	}
}

// ToggleStandard adds id to the selection or removes it when present.
// The input slice is left untouched.
func ToggleStandard(selected []string, id string) []string {
	if lo.Contains(selected, id) {
		return lo.Without(selected, id)
	}
	out := make([]string, 0, len(selected)+1)
	out = append(out, selected...)
	return append(out, id)
}
