package analyzer

import (
	"fmt"
	"strings"
)

// BuildPrompt renders the analysis instructions shared by both providers.
func BuildPrompt(standardNames []string, fileName string) string {
	return fmt.Sprintf(`You are a compliance auditor. Analyze the attached document %q against the following compliance standards:
%s

Instructions:
1. Evaluate the document separately for every listed standard.
2. Score each standard from 0 to 100, where 100 means fully compliant.
3. List concrete compliance gaps, the critical issues among them, and actionable suggestions.
4. Summarize overall strengths, weaknesses and risk areas.
5. Respond with a single JSON object and nothing else.

Response Format:
{
    "overallScore": 0,
    "standardsAnalysis": [
        {
            "standard": "Standard name",
            "score": 0,
            "status": "compliant | partial | non-compliant",
            "gaps": ["..."],
            "suggestions": ["..."],
            "criticalIssues": ["..."]
        }
    ],
    "summary": {
        "totalGaps": 0,
        "criticalIssues": 0,
        "recommendations": 0,
        "overview": "..."
    },
    "detailedFindings": {
        "strengths": ["..."],
        "weaknesses": ["..."],
        "riskAreas": ["..."]
    }
}`, fileName, "- "+strings.Join(standardNames, "\n- "))
}
