package models

import (
	"encoding/json"
	"time"

	"github.com/lib/pq"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AuditLog is the persisted, read-only snapshot of one completed analysis.
type AuditLog struct {
	// ID is generated on save; it is indexed as a keyword in Elasticsearch.
	ID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id" elastic:"type:keyword"`

	// ResultID is the id of the ComplianceResult the snapshot was taken from.
	ResultID string `gorm:"index" json:"resultId" elastic:"type:keyword"`

	FileName string `gorm:"not null" json:"fileName" elastic:"type:text,analyzer:standard"`
	FileSize int64  `json:"fileSize"`

	// Standards holds the catalog ids; queries filter on overlap (&&).
	Standards pq.StringArray `gorm:"type:text[];not null" json:"standards" elastic:"type:keyword"`

	// StandardNames is the concatenated display list shown in the UI.
	StandardNames string `json:"standard" elastic:"type:text,analyzer:standard"`

	Status      string         `gorm:"not null" json:"status" elastic:"type:keyword"`
	Score       float64        `json:"score" elastic:"type:float"`
	Gaps        datatypes.JSON `gorm:"type:jsonb;not null" json:"gaps"`
	GapCount    int            `json:"gapCount"`
	Suggestions pq.StringArray `gorm:"type:text[]" json:"suggestions"`
	Method      string         `json:"analysisMethod" elastic:"type:keyword"`

	// DetailedAnalysis is the raw AnalysisResult payload.
	DetailedAnalysis datatypes.JSON `gorm:"type:jsonb" json:"detailedAnalysis,omitempty"`

	AnalyzedAt time.Time `json:"uploadDate" elastic:"type:date"`
	CreatedAt  time.Time `json:"createdAt" elastic:"type:date"`

	// SearchContent is only indexed in Elasticsearch.
	SearchContent string `gorm:"-" json:"-" elastic:"type:text,analyzer:standard"`
}

// BeforeSave populates SearchContent from the file name and standards.
func (a *AuditLog) BeforeSave(tx *gorm.DB) error {
	a.SearchContent = a.FileName + " " + a.StandardNames + " " + a.Status
	return nil
}

// DecodeGaps unmarshals the stored gap list.
func (a *AuditLog) DecodeGaps() ([]ComplianceGap, error) {
	var gaps []ComplianceGap
	if len(a.Gaps) == 0 {
		return gaps, nil
	}
	if err := json.Unmarshal(a.Gaps, &gaps); err != nil {
		return nil, err
	}
	return gaps, nil
}
