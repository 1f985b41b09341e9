package models

import "time"

// Task statuses.
const (
	TaskPending    = "pending"
	TaskInProgress = "in-progress"
	TaskCompleted  = "completed"
)

// Task sources.
const (
	SourceCompliance = "compliance"
	SourceContract   = "contract"
	SourceManual     = "manual"
)

type Task struct {
	ID          string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Title       string `gorm:"not null" json:"title"`
	Description string `json:"description"`
	Status      string `gorm:"not null;default:pending" json:"status"`
	Priority    string `gorm:"not null;default:medium" json:"priority"`
	Category    string `json:"category"`
	Source      string `gorm:"not null;default:manual" json:"source"`

	// Back-references to the gap or suggestion the task was created from.
	ResultID *string `json:"resultId,omitempty"`
	GapID    *string `json:"gapId,omitempty"`
	AssetID  *string `gorm:"type:uuid" json:"assetId,omitempty"`

	// DedupeKey is unique when set: gap:<resultId>:<gapId> or suggestion:<resultId>:<index>.
	DedupeKey *string `gorm:"uniqueIndex" json:"dedupeKey,omitempty"`

	DueDate     *time.Time `json:"dueDate,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}
