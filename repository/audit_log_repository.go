package repository

import (
	"context"
	"fmt"

	model "github.com/Itish41/Poligap/models"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

type AuditLogRepository struct {
	db *gorm.DB
}

func NewAuditLogRepository(db *gorm.DB) *AuditLogRepository {
	return &AuditLogRepository{db: db}
}

func (r *AuditLogRepository) Create(ctx context.Context, entry *model.AuditLog) error {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("failed to save audit log: %w", err)
	}
	return nil
}

// List returns the newest logs whose standards overlap the given ids.
// An empty id list matches every log.
func (r *AuditLogRepository) List(ctx context.Context, standards []string, limit int) ([]model.AuditLog, error) {
	q := r.db.WithContext(ctx).Model(&model.AuditLog{})
	if len(standards) > 0 {
		q = q.Where("standards && ?", pq.StringArray(standards))
	}

	var logs []model.AuditLog
	if err := q.Order("created_at DESC").Limit(limit).Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch audit logs: %w", err)
	}
	return logs, nil
}

func (r *AuditLogRepository) Get(ctx context.Context, id string) (*model.AuditLog, error) {
	var entry model.AuditLog
	if err := r.db.WithContext(ctx).First(&entry, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &entry, nil
}
