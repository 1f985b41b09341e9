package repository

import (
	"context"
	"fmt"

	model "github.com/Itish41/Poligap/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TaskFilter narrows List; empty fields are ignored.
type TaskFilter struct {
	Query    string
	Status   string
	Priority string
	Source   string
	Limit    int
}

type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}
	return nil
}

// CreateIfAbsent inserts the task unless its dedupe key already exists.
// It reports whether a row was written.
func (r *TaskRepository) CreateIfAbsent(ctx context.Context, task *model.Task) (bool, error) {
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(task)
	if res.Error != nil {
		return false, fmt.Errorf("failed to create task: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *TaskRepository) FindByDedupeKey(ctx context.Context, key string) (*model.Task, error) {
	var task model.Task
	if err := r.db.WithContext(ctx).Where("dedupe_key = ?", key).First(&task).Error; err != nil {
		return nil, notFound(err)
	}
	return &task, nil
}

func (r *TaskRepository) Get(ctx context.Context, id string) (*model.Task, error) {
	var task model.Task
	if err := r.db.WithContext(ctx).First(&task, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &task, nil
}

func (r *TaskRepository) List(ctx context.Context, f TaskFilter) ([]model.Task, error) {
	q := r.db.WithContext(ctx).Model(&model.Task{})
	if f.Query != "" {
		p := likePattern(f.Query)
		q = q.Where("title ILIKE ? OR description ILIKE ?", p, p)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Priority != "" {
		q = q.Where("priority = ?", f.Priority)
	}
	if f.Source != "" {
		q = q.Where("source = ?", f.Source)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}

	var tasks []model.Task
	if err := q.Order("created_at DESC").Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch tasks: %w", err)
	}
	return tasks, nil
}

// Save writes every column of an existing task.
func (r *TaskRepository) Save(ctx context.Context, task *model.Task) error {
	if err := r.db.WithContext(ctx).Save(task).Error; err != nil {
		return fmt.Errorf("failed to update task %s: %w", task.ID, err)
	}
	return nil
}

func (r *TaskRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&model.Task{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete task %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
