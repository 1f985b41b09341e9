package repository

import (
	"context"
	"fmt"
	"time"

	model "github.com/Itish41/Poligap/models"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// AssetFilter narrows List; empty fields are ignored.
type AssetFilter struct {
	Query    string
	Category string
	Tag      string
	Limit    int
}

type AssetRepository struct {
	db *gorm.DB
}

func NewAssetRepository(db *gorm.DB) *AssetRepository {
	return &AssetRepository{db: db}
}

func (r *AssetRepository) Create(ctx context.Context, asset *model.Asset) error {
	if err := r.db.WithContext(ctx).Create(asset).Error; err != nil {
		return fmt.Errorf("failed to save asset: %w", err)
	}
	return nil
}

func (r *AssetRepository) Get(ctx context.Context, id string) (*model.Asset, error) {
	var asset model.Asset
	if err := r.db.WithContext(ctx).First(&asset, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &asset, nil
}

func (r *AssetRepository) List(ctx context.Context, f AssetFilter) ([]model.Asset, error) {
	q := r.db.WithContext(ctx).Model(&model.Asset{})
	if f.Query != "" {
		q = q.Where("name ILIKE ?", likePattern(f.Query))
	}
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.Tag != "" {
		q = q.Where("tags @> ?", pq.StringArray{f.Tag})
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}

	var assets []model.Asset
	if err := q.Order("upload_date DESC").Find(&assets).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch assets: %w", err)
	}
	return assets, nil
}

func (r *AssetRepository) UpdateTags(ctx context.Context, id string, tags []string) error {
	res := r.db.WithContext(ctx).Model(&model.Asset{}).Where("id = ?", id).Updates(map[string]interface{}{
		"tags":       pq.StringArray(tags),
		"updated_at": time.Now(),
	})
	if res.Error != nil {
		return fmt.Errorf("failed to update tags for asset %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *AssetRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&model.Asset{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete asset %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
