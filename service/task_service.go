package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/Itish41/Poligap/catalog"
	model "github.com/Itish41/Poligap/models"
	"github.com/Itish41/Poligap/repository"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
)

// TaskStore persists tasks. CreateIfAbsent reports false when a task with
// the same dedupe key already exists.
type TaskStore interface {
	Create(ctx context.Context, task *model.Task) error
	CreateIfAbsent(ctx context.Context, task *model.Task) (bool, error)
	FindByDedupeKey(ctx context.Context, key string) (*model.Task, error)
	Get(ctx context.Context, id string) (*model.Task, error)
	List(ctx context.Context, f repository.TaskFilter) ([]model.Task, error)
	Save(ctx context.Context, task *model.Task) error
	Delete(ctx context.Context, id string) error
}

// allowedTransitions lists the statuses each status may move to.
var allowedTransitions = map[string][]string{
	model.TaskPending:    {model.TaskInProgress, model.TaskCompleted},
	model.TaskInProgress: {model.TaskPending, model.TaskCompleted},
	model.TaskCompleted:  {model.TaskInProgress},
}

var validSources = []string{model.SourceCompliance, model.SourceContract, model.SourceManual}

// TaskInput creates a manual task.
type TaskInput struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Priority    string     `json:"priority"`
	Category    string     `json:"category"`
	Source      string     `json:"source"`
	AssetID     *string    `json:"assetId"`
	DueDate     *time.Time `json:"dueDate"`
}

// TaskUpdate changes the fields that are set.
type TaskUpdate struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Status      *string    `json:"status"`
	Priority    *string    `json:"priority"`
	Category    *string    `json:"category"`
	DueDate     *time.Time `json:"dueDate"`
}

// GapTaskInput creates a task for one gap of a compliance result.
type GapTaskInput struct {
	ResultID string              `json:"resultId"`
	Gap      model.ComplianceGap `json:"gap"`
}

// SuggestionTaskInput creates a task for the suggestion at Index.
type SuggestionTaskInput struct {
	ResultID   string `json:"resultId"`
	Index      int    `json:"index"`
	Suggestion string `json:"suggestion"`
	Category   string `json:"category"`
}

// AddTaskResult reports whether the task already existed (or was being
// created by a concurrent request).
type AddTaskResult struct {
	Task    *model.Task
	Deduped bool
}

type TaskService struct {
	store   TaskStore
	catalog *catalog.Catalog

	mu       sync.Mutex
	inflight map[string]struct{}
}

func NewTaskService(store TaskStore, cat *catalog.Catalog) *TaskService {
	return &TaskService{store: store, catalog: cat, inflight: map[string]struct{}{}}
}

func GapDedupeKey(resultID, gapID string) string {
	return fmt.Sprintf("gap:%s:%s", resultID, gapID)
}

func SuggestionDedupeKey(resultID string, index int) string {
	return fmt.Sprintf("suggestion:%s:%d", resultID, index)
}

func (s *TaskService) CreateTask(ctx context.Context, in TaskInput) (*model.Task, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, invalid("title is required")
	}
	priority, err := s.priority(in.Priority)
	if err != nil {
		return nil, err
	}
	source := strings.ToLower(strings.TrimSpace(in.Source))
	if source == "" {
		source = model.SourceManual
	}
	if !lo.Contains(validSources, source) {
		return nil, invalid(fmt.Sprintf("unknown task source %q", in.Source))
	}

	now := nowFunc().UTC()
	task := &model.Task{
		ID:          newIDFunc(),
		Title:       title,
		Description: in.Description,
		Status:      model.TaskPending,
		Priority:    priority,
		Category:    in.Category,
		Source:      source,
		AssetID:     in.AssetID,
		DueDate:     in.DueDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}
	log.Info().Str("id", task.ID).Str("source", task.Source).Msg("[TaskService] task created")
	return task, nil
}

func (s *TaskService) ListTasks(ctx context.Context, f repository.TaskFilter) ([]model.Task, error) {
	if f.Status != "" && !isStatus(f.Status) {
		return nil, invalid(fmt.Sprintf("unknown task status %q", f.Status))
	}
	tasks, err := s.store.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	if tasks == nil {
		tasks = []model.Task{}
	}
	return tasks, nil
}

// UpdateTask applies the set fields. Status changes follow
// allowedTransitions; moving to completed stamps CompletedAt and leaving
// completed clears it.
func (s *TaskService) UpdateTask(ctx context.Context, id string, upd TaskUpdate) (*model.Task, error) {
	task, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if upd.Title != nil {
		title := strings.TrimSpace(*upd.Title)
		if title == "" {
			return nil, invalid("title cannot be empty")
		}
		task.Title = title
	}
	if upd.Description != nil {
		task.Description = *upd.Description
	}
	if upd.Category != nil {
		task.Category = *upd.Category
	}
	if upd.DueDate != nil {
		task.DueDate = upd.DueDate
	}
	if upd.Priority != nil {
		priority, err := s.priority(*upd.Priority)
		if err != nil {
			return nil, err
		}
		task.Priority = priority
	}
	if upd.Status != nil && *upd.Status != task.Status {
		next := *upd.Status
		if !isStatus(next) {
			return nil, invalid(fmt.Sprintf("unknown task status %q", next))
		}
		if !lo.Contains(allowedTransitions[task.Status], next) {
			return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, task.Status, next)
		}
		task.Status = next
		if next == model.TaskCompleted {
			completed := nowFunc().UTC()
			task.CompletedAt = &completed
		} else {
			task.CompletedAt = nil
		}
	}

	task.UpdatedAt = nowFunc().UTC()
	if err := s.store.Save(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}
	return task, nil
}

func (s *TaskService) DeleteTask(ctx context.Context, id string) error {
	return s.store.Delete(ctx, id)
}

// AddTaskFromGap creates at most one task per (result, gap) pair.
func (s *TaskService) AddTaskFromGap(ctx context.Context, in GapTaskInput) (*AddTaskResult, error) {
	if in.ResultID == "" || in.Gap.ID == "" {
		return nil, invalid("resultId and gap.id are required")
	}
	title := in.Gap.Title
	if title == "" {
		title = GapTitle(in.Gap.Description)
	}
	description := in.Gap.Description
	if in.Gap.Recommendation != "" {
		description += "\n\nRecommendation: " + in.Gap.Recommendation
	}
	priority := in.Gap.Priority
	if _, ok := s.catalog.Priority(priority); !ok {
		priority = model.PriorityMedium
	}

	resultID, gapID := in.ResultID, in.Gap.ID
	task := &model.Task{
		Title:       title,
		Description: description,
		Priority:    priority,
		Category:    in.Gap.Category,
		ResultID:    &resultID,
		GapID:       &gapID,
	}
	return s.addDeduped(ctx, GapDedupeKey(in.ResultID, in.Gap.ID), task)
}

// AddTaskFromSuggestion creates at most one task per (result, suggestion index) pair.
func (s *TaskService) AddTaskFromSuggestion(ctx context.Context, in SuggestionTaskInput) (*AddTaskResult, error) {
	text := strings.TrimSpace(in.Suggestion)
	if in.ResultID == "" || text == "" {
		return nil, invalid("resultId and suggestion are required")
	}
	if in.Index < 0 {
		return nil, invalid("index must not be negative")
	}

	resultID := in.ResultID
	task := &model.Task{
		Title:       GapTitle(text),
		Description: text,
		Priority:    model.PriorityMedium,
		Category:    in.Category,
		ResultID:    &resultID,
	}
	return s.addDeduped(ctx, SuggestionDedupeKey(in.ResultID, in.Index), task)
}

// addDeduped short-circuits a key that is already being created in this
// process, then relies on the unique dedupe_key index for the rest.
func (s *TaskService) addDeduped(ctx context.Context, key string, task *model.Task) (*AddTaskResult, error) {
	if !s.acquire(key) {
		log.Debug().Str("key", key).Msg("[TaskService] task creation already in flight")
		return &AddTaskResult{Deduped: true}, nil
	}
	defer s.release(key)

	existing, err := s.store.FindByDedupeKey(ctx, key)
	switch {
	case err == nil:
		return &AddTaskResult{Task: existing, Deduped: true}, nil
	case !errors.Is(err, ErrNotFound):
		return nil, fmt.Errorf("failed to look up task: %w", err)
	}

	now := nowFunc().UTC()
	task.ID = newIDFunc()
	task.Status = model.TaskPending
	task.Source = model.SourceCompliance
	task.DedupeKey = &key
	task.CreatedAt = now
	task.UpdatedAt = now

	created, err := s.store.CreateIfAbsent(ctx, task)
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}
	if !created {
		existing, err := s.store.FindByDedupeKey(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("failed to look up task: %w", err)
		}
		return &AddTaskResult{Task: existing, Deduped: true}, nil
	}
	log.Info().Str("id", task.ID).Str("key", key).Msg("[TaskService] task created from compliance result")
	return &AddTaskResult{Task: task}, nil
}

func (s *TaskService) acquire(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inflight[key]; busy {
		return false
	}
	s.inflight[key] = struct{}{}
	return true
}

func (s *TaskService) release(key string) {
	s.mu.Lock()
	delete(s.inflight, key)
	s.mu.Unlock()
}

func (s *TaskService) priority(p string) (string, error) {
	p = strings.ToLower(strings.TrimSpace(p))
	if p == "" {
		return model.PriorityMedium, nil
	}
	if _, ok := s.catalog.Priority(p); !ok {
		return "", invalid(fmt.Sprintf("unknown priority %q", p))
	}
	return p, nil
}

func isStatus(status string) bool {
	_, ok := allowedTransitions[status]
	return ok
}
