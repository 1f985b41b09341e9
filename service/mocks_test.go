package services

import (
	"context"
	"testing"
	"time"

	"github.com/Itish41/Poligap/analyzer"
	"github.com/Itish41/Poligap/catalog"
	model "github.com/Itish41/Poligap/models"
	"github.com/Itish41/Poligap/repository"

	"github.com/agiledragon/gomonkey/v2"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// FixedTime is what nowFunc returns under pinClock.
var FixedTime = time.Date(2025, time.March, 5, 10, 0, 0, 0, time.UTC)

// pinClock patches the clock and id generator; ids are id-1, id-2, ...
func pinClock(t *testing.T) {
	t.Helper()
	n := 0
	patches := gomonkey.ApplyFuncVar(&nowFunc, func() time.Time { return FixedTime })
	patches.ApplyFuncVar(&newIDFunc, func() string {
		n++
		return "id-" + string(rune('0'+n))
	})
	t.Cleanup(patches.Reset)
}

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.Load()
	require.NoError(t, err)
	return cat
}

type MockRunner struct{ mock.Mock }

func (m *MockRunner) Run(ctx context.Context, doc analyzer.Document, names []string) analyzer.Outcome {
	args := m.Called(doc.FileName, names)
	return args.Get(0).(analyzer.Outcome)
}

type MockAuditStore struct{ mock.Mock }

func (m *MockAuditStore) Create(ctx context.Context, entry *model.AuditLog) error {
	return m.Called(entry).Error(0)
}

func (m *MockAuditStore) List(ctx context.Context, standards []string, limit int) ([]model.AuditLog, error) {
	args := m.Called(standards, limit)
	logs, _ := args.Get(0).([]model.AuditLog)
	return logs, args.Error(1)
}

func (m *MockAuditStore) Get(ctx context.Context, id string) (*model.AuditLog, error) {
	args := m.Called(id)
	entry, _ := args.Get(0).(*model.AuditLog)
	return entry, args.Error(1)
}

type MockTaskStore struct{ mock.Mock }

func (m *MockTaskStore) Create(ctx context.Context, task *model.Task) error {
	return m.Called(task).Error(0)
}

func (m *MockTaskStore) CreateIfAbsent(ctx context.Context, task *model.Task) (bool, error) {
	args := m.Called(task)
	return args.Bool(0), args.Error(1)
}

func (m *MockTaskStore) FindByDedupeKey(ctx context.Context, key string) (*model.Task, error) {
	args := m.Called(key)
	task, _ := args.Get(0).(*model.Task)
	return task, args.Error(1)
}

func (m *MockTaskStore) Get(ctx context.Context, id string) (*model.Task, error) {
	args := m.Called(id)
	task, _ := args.Get(0).(*model.Task)
	return task, args.Error(1)
}

func (m *MockTaskStore) List(ctx context.Context, f repository.TaskFilter) ([]model.Task, error) {
	args := m.Called(f)
	tasks, _ := args.Get(0).([]model.Task)
	return tasks, args.Error(1)
}

func (m *MockTaskStore) Save(ctx context.Context, task *model.Task) error {
	return m.Called(task).Error(0)
}

func (m *MockTaskStore) Delete(ctx context.Context, id string) error {
	return m.Called(id).Error(0)
}

type MockAssetStore struct{ mock.Mock }

func (m *MockAssetStore) Create(ctx context.Context, asset *model.Asset) error {
	return m.Called(asset).Error(0)
}

func (m *MockAssetStore) Get(ctx context.Context, id string) (*model.Asset, error) {
	args := m.Called(id)
	asset, _ := args.Get(0).(*model.Asset)
	return asset, args.Error(1)
}

func (m *MockAssetStore) List(ctx context.Context, f repository.AssetFilter) ([]model.Asset, error) {
	args := m.Called(f)
	assets, _ := args.Get(0).([]model.Asset)
	return assets, args.Error(1)
}

func (m *MockAssetStore) UpdateTags(ctx context.Context, id string, tags []string) error {
	return m.Called(id, tags).Error(0)
}

func (m *MockAssetStore) Delete(ctx context.Context, id string) error {
	return m.Called(id).Error(0)
}

type MockObjectStore struct{ mock.Mock }

func (m *MockObjectStore) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	args := m.Called(key, data, contentType)
	return args.String(0), args.Error(1)
}

func (m *MockObjectStore) Delete(ctx context.Context, key string) error {
	return m.Called(key).Error(0)
}

type MockIndexer struct{ mock.Mock }

func (m *MockIndexer) Index(ctx context.Context, index, id string, doc map[string]interface{}) {
	m.Called(index, id, doc)
}

func (m *MockIndexer) Delete(ctx context.Context, index, id string) {
	m.Called(index, id)
}
