package analyzer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusForScore(t *testing.T) {
	cases := map[float64]string{
		100:  StatusCompliant,
		90:   StatusCompliant,
		89.9: StatusPartial,
		70:   StatusPartial,
		69.5: StatusNonCompliant,
		0:    StatusNonCompliant,
	}
	for score, want := range cases {
		assert.Equal(t, want, StatusForScore(score), "score %v", score)
	}
}

func TestMineTextGivesUpOnPlainProse(t *testing.T) {
	result := MineText("The weather today is sunny and pleasant. Birds were singing in the park.", []string{"GDPR"})

	require.NotNil(t, result)
	assert.Equal(t, 0.0, result.OverallScore)
	require.Len(t, result.StandardsAnalysis, 1)
	assert.Equal(t, FailedStandard, result.StandardsAnalysis[0].Standard)
	assert.Len(t, result.StandardsAnalysis[0].Gaps, 1)
	assert.True(t, result.Failed())
}

func TestMineTextExtractsScoreAndBuckets(t *testing.T) {
	text := `Overall the policy is reasonable. Compliance score: 72.
There is a gap in breach notification timelines. Data retention periods are missing.
You should add a data protection officer contact. We recommend you include a cookie banner.
Lack of encryption at rest is a critical risk.`

	result := MineText(text, []string{"GDPR", "HIPAA"})

	assert.Equal(t, 72.0, result.OverallScore)
	require.Len(t, result.StandardsAnalysis, 1)
	sa := result.StandardsAnalysis[0]
	assert.Equal(t, "GDPR, HIPAA", sa.Standard)
	assert.Equal(t, StatusPartial, sa.Status)
	assert.Contains(t, sa.Gaps, "There is a gap in breach notification timelines")
	assert.Contains(t, sa.Gaps, "Data retention periods are missing")
	assert.Contains(t, sa.Suggestions, "You should add a data protection officer contact")
	assert.Contains(t, sa.CriticalIssues, "Lack of encryption at rest is a critical risk")
	assert.Contains(t, result.DetailedFindings.RiskAreas, "Lack of encryption at rest is a critical risk")
	assert.Equal(t, len(sa.Gaps), result.Summary.TotalGaps)
}

func TestMineTextPercentScore(t *testing.T) {
	result := MineText("The document reaches 95% coverage of the controls.", []string{"SOC 2"})
	assert.Equal(t, 95.0, result.OverallScore)
	assert.Equal(t, StatusCompliant, result.StandardsAnalysis[0].Status)
}

func TestMineTextCapsBuckets(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 12; i++ {
		sb.WriteString("Another issue was found in section ")
		sb.WriteString(string(rune('A' + i)))
		sb.WriteString(". ")
	}
	result := MineText(sb.String(), []string{"ISO 27001"})

	assert.Len(t, result.StandardsAnalysis[0].Gaps, maxBucketSize)
}

func TestMineTextWithoutScoreStaysBelowPartial(t *testing.T) {
	result := MineText("Access logs are missing. Vendor contracts are lacking a DPA.", []string{"GDPR"})

	assert.False(t, result.Failed())
	assert.Less(t, result.OverallScore, 70.0)
	assert.Equal(t, StatusNonCompliant, result.StandardsAnalysis[0].Status)
}

func TestMineTextIsDeterministic(t *testing.T) {
	text := "Score: 40. Consent records are missing. You should improve logging."
	assert.Equal(t, MineText(text, []string{"GDPR"}), MineText(text, []string{"GDPR"}))
}
