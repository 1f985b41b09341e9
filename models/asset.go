package models

import (
	"strings"
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Asset is a file in the knowledge library.
type Asset struct {
	ID           string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id" elastic:"type:keyword"`
	Name         string `gorm:"not null" json:"name" elastic:"type:text,analyzer:standard"`
	OriginalName string `json:"originalName"`
	MimeType     string `json:"mimetype" elastic:"type:keyword"`
	Size         int64  `json:"size"`

	Tags     pq.StringArray `gorm:"type:text[]" json:"tags" elastic:"type:keyword"`
	Category string         `json:"category" elastic:"type:keyword"`

	// StorageKey is the object key in the bucket; empty for external URLs.
	StorageKey string `json:"-"`
	URL        string `json:"url" elastic:"type:keyword"`

	UploadDate time.Time `json:"uploadDate" elastic:"type:date"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`

	SearchContent string `gorm:"-" json:"-" elastic:"type:text,analyzer:standard"`
}

// BeforeSave populates SearchContent from the name, category and tags.
func (a *Asset) BeforeSave(tx *gorm.DB) error {
	a.SearchContent = a.Name + " " + a.Category + " " + strings.Join(a.Tags, " ")
	return nil
}
