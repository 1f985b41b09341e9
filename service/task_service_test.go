package services

import (
	"context"
	"sync"
	"testing"

	model "github.com/Itish41/Poligap/models"
	"github.com/Itish41/Poligap/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestDedupeKeys(t *testing.T) {
	assert.Equal(t, "gap:res-1:gap-2", GapDedupeKey("res-1", "gap-2"))
	assert.Equal(t, "suggestion:res-1:0", SuggestionDedupeKey("res-1", 0))
}

func TestCreateTaskDefaultsAndValidation(t *testing.T) {
	pinClock(t)
	store := &MockTaskStore{}
	store.On("Create", mock.AnythingOfType("*models.Task")).Return(nil)
	svc := NewTaskService(store, testCatalog(t))

	task, err := svc.CreateTask(context.Background(), TaskInput{Title: "  Review NDA  "})
	require.NoError(t, err)
	assert.Equal(t, "Review NDA", task.Title)
	assert.Equal(t, model.TaskPending, task.Status)
	assert.Equal(t, model.PriorityMedium, task.Priority)
	assert.Equal(t, model.SourceManual, task.Source)
	assert.Equal(t, FixedTime, task.CreatedAt)

	_, err = svc.CreateTask(context.Background(), TaskInput{})
	assert.True(t, IsValidation(err))
	_, err = svc.CreateTask(context.Background(), TaskInput{Title: "x", Priority: "urgent"})
	assert.True(t, IsValidation(err))
	_, err = svc.CreateTask(context.Background(), TaskInput{Title: "x", Source: "email"})
	assert.True(t, IsValidation(err))
}

func TestUpdateTaskTransitions(t *testing.T) {
	tests := []struct {
		from, to string
		wantErr  error
	}{
		{model.TaskPending, model.TaskInProgress, nil},
		{model.TaskPending, model.TaskCompleted, nil},
		{model.TaskInProgress, model.TaskPending, nil},
		{model.TaskInProgress, model.TaskCompleted, nil},
		{model.TaskCompleted, model.TaskInProgress, nil},
		{model.TaskCompleted, model.TaskPending, ErrInvalidTransition},
		{model.TaskCompleted, model.TaskCompleted, nil},
	}
	for _, tt := range tests {
		t.Run(tt.from+"->"+tt.to, func(t *testing.T) {
			pinClock(t)
			store := &MockTaskStore{}
			task := &model.Task{ID: "t1", Title: "x", Status: tt.from}
			if tt.from == model.TaskCompleted {
				done := FixedTime.Add(-1)
				task.CompletedAt = &done
			}
			store.On("Get", "t1").Return(task, nil)
			store.On("Save", task).Return(nil)
			svc := NewTaskService(store, testCatalog(t))

			got, err := svc.UpdateTask(context.Background(), "t1", TaskUpdate{Status: strPtr(tt.to)})

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				store.AssertNotCalled(t, "Save", mock.Anything)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.to, got.Status)
			if tt.to == model.TaskCompleted {
				assert.NotNil(t, got.CompletedAt)
			} else {
				assert.Nil(t, got.CompletedAt)
			}
		})
	}
}

func TestUpdateTaskNotFound(t *testing.T) {
	store := &MockTaskStore{}
	store.On("Get", "missing").Return(nil, repository.ErrNotFound)
	svc := NewTaskService(store, testCatalog(t))

	_, err := svc.UpdateTask(context.Background(), "missing", TaskUpdate{Title: strPtr("y")})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAddTaskFromGapCreates(t *testing.T) {
	pinClock(t)
	store := &MockTaskStore{}
	key := "gap:res-1:gap-1"
	store.On("FindByDedupeKey", key).Return(nil, repository.ErrNotFound)
	store.On("CreateIfAbsent", mock.AnythingOfType("*models.Task")).Return(true, nil)
	svc := NewTaskService(store, testCatalog(t))

	res, err := svc.AddTaskFromGap(context.Background(), GapTaskInput{
		ResultID: "res-1",
		Gap:      model.ComplianceGap{ID: "gap-1", Title: "No DPO", Description: "No DPO appointed.", Priority: "high", Category: "GDPR", Recommendation: "Appoint one"},
	})

	require.NoError(t, err)
	assert.False(t, res.Deduped)
	assert.Equal(t, "No DPO", res.Task.Title)
	assert.Equal(t, model.SourceCompliance, res.Task.Source)
	assert.Equal(t, key, *res.Task.DedupeKey)
	assert.Contains(t, res.Task.Description, "Recommendation: Appoint one")
}

func TestAddTaskFromGapExistingIsDeduped(t *testing.T) {
	store := &MockTaskStore{}
	existing := &model.Task{ID: "t9", Title: "No DPO"}
	store.On("FindByDedupeKey", "gap:res-1:gap-1").Return(existing, nil)
	svc := NewTaskService(store, testCatalog(t))

	res, err := svc.AddTaskFromGap(context.Background(), GapTaskInput{ResultID: "res-1", Gap: model.ComplianceGap{ID: "gap-1", Title: "No DPO"}})

	require.NoError(t, err)
	assert.True(t, res.Deduped)
	assert.Same(t, existing, res.Task)
	store.AssertNotCalled(t, "CreateIfAbsent", mock.Anything)
}

func TestAddTaskFromSuggestionLosesInsertRace(t *testing.T) {
	pinClock(t)
	store := &MockTaskStore{}
	winner := &model.Task{ID: "t-other"}
	key := "suggestion:res-1:2"
	store.On("FindByDedupeKey", key).Return(nil, repository.ErrNotFound).Once()
	store.On("CreateIfAbsent", mock.Anything).Return(false, nil)
	store.On("FindByDedupeKey", key).Return(winner, nil).Once()
	svc := NewTaskService(store, testCatalog(t))

	res, err := svc.AddTaskFromSuggestion(context.Background(), SuggestionTaskInput{ResultID: "res-1", Index: 2, Suggestion: "Encrypt backups."})

	require.NoError(t, err)
	assert.True(t, res.Deduped)
	assert.Same(t, winner, res.Task)
}

func TestAddTaskInFlightShortCircuits(t *testing.T) {
	pinClock(t)
	store := &MockTaskStore{}
	entered := make(chan struct{})
	release := make(chan struct{})
	store.On("FindByDedupeKey", "gap:res-1:gap-1").
		Run(func(mock.Arguments) {
			close(entered)
			<-release
		}).
		Return(nil, repository.ErrNotFound).Once()
	store.On("CreateIfAbsent", mock.Anything).Return(true, nil).Once()
	svc := NewTaskService(store, testCatalog(t))
	in := GapTaskInput{ResultID: "res-1", Gap: model.ComplianceGap{ID: "gap-1", Title: "No DPO"}}

	var wg sync.WaitGroup
	var first *AddTaskResult
	wg.Add(1)
	go func() {
		defer wg.Done()
		first, _ = svc.AddTaskFromGap(context.Background(), in)
	}()
	<-entered

	second, err := svc.AddTaskFromGap(context.Background(), in)
	require.NoError(t, err)
	assert.True(t, second.Deduped)
	assert.Nil(t, second.Task)

	close(release)
	wg.Wait()
	require.NotNil(t, first)
	assert.False(t, first.Deduped)
	store.AssertNumberOfCalls(t, "CreateIfAbsent", 1)
}

func TestListTasksRejectsUnknownStatus(t *testing.T) {
	svc := NewTaskService(&MockTaskStore{}, testCatalog(t))
	_, err := svc.ListTasks(context.Background(), repository.TaskFilter{Status: "blocked"})
	assert.True(t, IsValidation(err))
}
