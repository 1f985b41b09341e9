package analyzer

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

const maxBucketSize = 5

var (
	scorePattern   = regexp.MustCompile(`(?i)score\s*(?:of|is|:|=)?\s*(\d{1,3}(?:\.\d+)?)`)
	percentPattern = regexp.MustCompile(`(\d{1,3}(?:\.\d+)?)\s*%`)
	sentenceSplit  = regexp.MustCompile(`[.!?]+\s+|\n+`)

	gapKeywords        = regexp.MustCompile(`(?i)gap|issue|missing|lacking|absent|insufficient`)
	suggestionKeywords = regexp.MustCompile(`(?i)suggest|recommend|should|improve|add|include`)
	criticalKeywords   = regexp.MustCompile(`(?i)critical|urgent|important|risk|violation|non-compliant`)
	strengthKeywords   = regexp.MustCompile(`(?i)strength|strong|robust|adequate|comprehensive|well-defined|good`)
	weaknessKeywords   = regexp.MustCompile(`(?i)weak|poor|inadequate|deficien|vague|unclear`)
	riskAreaKeywords   = regexp.MustCompile(`(?i)risk|exposure|vulnerab|threat|liabilit|breach`)
)

// failedGap and failedSuggestion fill the result the miner returns when
// nothing usable could be found.
const (
	failedGap        = "Analysis could not be completed: the AI response contained no structured result and no identifiable findings."
	failedSuggestion = "Retry the analysis, or upload a text-based version of the document."
)

// MineText builds a result from free text by pattern matching. It never
// invents a passing grade: without a score and without any gap or
// suggestion sentence the result is the explicit failed analysis.
func MineText(text string, standardNames []string) *AnalysisResult {
	score, hasScore := extractScore(text)
	sentences := splitSentences(text)

	gaps := collect(sentences, gapKeywords)
	suggestions := collect(sentences, suggestionKeywords)
	critical := collect(sentences, criticalKeywords)

	if !hasScore && len(gaps) == 0 && len(suggestions) == 0 {
		return failedAnalysis()
	}
	if !hasScore {
		score = estimateScore(len(gaps), len(critical))
	}

	name := strings.Join(standardNames, ", ")
	if name == "" {
		name = "General Compliance"
	}
	result := &AnalysisResult{
		OverallScore: score,
		StandardsAnalysis: []StandardAnalysis{{
			Standard:       name,
			Score:          score,
			Gaps:           gaps,
			Suggestions:    suggestions,
			CriticalIssues: critical,
		}},
		DetailedFindings: DetailedFindings{
			Strengths:  collect(sentences, strengthKeywords),
			Weaknesses: collect(sentences, weaknessKeywords),
			RiskAreas:  collect(sentences, riskAreaKeywords),
		},
	}
	result = Normalize(result, standardNames)
	result.Summary.Overview = "Result extracted from an unstructured AI response."
	return result
}

func extractScore(text string) (float64, bool) {
	for _, re := range []*regexp.Regexp{scorePattern, percentPattern} {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		v, err := strconv.ParseFloat(m[1], 64)
		if err != nil || v > 100 {
			continue
		}
		return ClampScore(v), true
	}
	return 0, false
}

// estimateScore is used when findings exist but no score was stated.
// It stays below the partial threshold.
func estimateScore(gaps, critical int) float64 {
	return math.Max(0, 60-5*float64(gaps)-10*float64(critical))
}

func splitSentences(text string) []string {
	parts := sentenceSplit.Split(text, -1)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(strings.Trim(strings.TrimSpace(p), "-*#•.!?"))
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func collect(sentences []string, re *regexp.Regexp) []string {
	out := []string{}
	for _, s := range sentences {
		if len(out) == maxBucketSize {
			break
		}
		if re.MatchString(s) {
			out = append(out, s)
		}
	}
	return out
}

func failedAnalysis() *AnalysisResult {
	return &AnalysisResult{
		OverallScore: 0,
		StandardsAnalysis: []StandardAnalysis{{
			Standard:       FailedStandard,
			Score:          0,
			Status:         StatusNonCompliant,
			Gaps:           []string{failedGap},
			Suggestions:    []string{failedSuggestion},
			CriticalIssues: []string{},
		}},
		Summary: Summary{
			TotalGaps:       1,
			Recommendations: 1,
			Overview:        "The analysis could not be completed.",
		},
		DetailedFindings: DetailedFindings{
			Strengths:  []string{},
			Weaknesses: []string{},
			RiskAreas:  []string{},
		},
	}
}
