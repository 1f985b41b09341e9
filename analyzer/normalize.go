package analyzer

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/samber/lo"
)

// Greedy on purpose: spans from the first '{' to the last '}' so nested
// objects survive surrounding prose or code fences.
var jsonObjectPattern = regexp.MustCompile(`(?s)\{.*\}`)

// ParseResponse turns raw provider text into a result. It decodes the
// embedded JSON object when there is one; otherwise the text is mined.
// The second return value reports whether structured JSON was used.
func ParseResponse(text string, standardNames []string) (*AnalysisResult, bool) {
	if raw := jsonObjectPattern.FindString(text); raw != "" {
		if result, ok := decodeResult(raw); ok {
			return Normalize(result, standardNames), true
		}
	}
	return MineText(text, standardNames), false
}

func decodeResult(raw string) (*AnalysisResult, bool) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return nil, false
	}
	_, hasScore := fields["overallScore"]
	_, hasStandards := fields["standardsAnalysis"]
	if !hasScore && !hasStandards {
		return nil, false
	}

	var result AnalysisResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return nil, false
	}
	return &result, true
}

// Normalize repairs a decoded result so it satisfies the result invariants:
// scores in [0,100], status derived from score, no nil lists and summary
// counts that match the lists.
func Normalize(result *AnalysisResult, standardNames []string) *AnalysisResult {
	if result == nil {
		result = &AnalysisResult{}
	}

	if len(result.StandardsAnalysis) == 0 {
		for _, name := range standardNames {
			result.StandardsAnalysis = append(result.StandardsAnalysis, StandardAnalysis{
				Standard: name,
				Score:    result.OverallScore,
			})
		}
	}

	var scoreSum float64
	for i := range result.StandardsAnalysis {
		sa := &result.StandardsAnalysis[i]
		if strings.TrimSpace(sa.Standard) == "" && i < len(standardNames) {
			sa.Standard = standardNames[i]
		}
		sa.Score = ClampScore(sa.Score)
		sa.Status = StatusForScore(sa.Score)
		sa.Gaps = cleanList(sa.Gaps)
		sa.Suggestions = cleanList(sa.Suggestions)
		sa.CriticalIssues = cleanList(sa.CriticalIssues)
		scoreSum += sa.Score
	}

	result.OverallScore = ClampScore(result.OverallScore)
	if result.OverallScore == 0 && scoreSum > 0 && len(result.StandardsAnalysis) > 0 {
		result.OverallScore = scoreSum / float64(len(result.StandardsAnalysis))
	}

	result.DetailedFindings.Strengths = cleanList(result.DetailedFindings.Strengths)
	result.DetailedFindings.Weaknesses = cleanList(result.DetailedFindings.Weaknesses)
	result.DetailedFindings.RiskAreas = cleanList(result.DetailedFindings.RiskAreas)

	result.Summary.TotalGaps = 0
	result.Summary.CriticalIssues = 0
	result.Summary.Recommendations = 0
	for _, sa := range result.StandardsAnalysis {
		result.Summary.TotalGaps += len(sa.Gaps)
		result.Summary.CriticalIssues += len(sa.CriticalIssues)
		result.Summary.Recommendations += len(sa.Suggestions)
	}
	return result
}

func cleanList(items []string) []string {
	out := lo.FilterMap(items, func(s string, _ int) (string, bool) {
		s = strings.TrimSpace(s)
		return s, s != ""
	})
	if out == nil {
		return []string{}
	}
	return out
}
