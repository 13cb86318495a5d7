package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/budprat/stock-sense/backend-go/internal/domain"
	"github.com/budprat/stock-sense/backend-go/internal/spoilage"
	"github.com/budprat/stock-sense/backend-go/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var asOf = time.Date(2024, time.July, 15, 9, 30, 0, 0, time.UTC)

type mockEngine struct {
	mock.Mock
}

func (m *mockEngine) ComputeAllRisks(ctx context.Context, ownerID int64) (*domain.RiskReport, error) {
	args := m.Called(ctx, ownerID)
	report, _ := args.Get(0).(*domain.RiskReport)
	return report, args.Error(1)
}

func (m *mockEngine) ComputeAllPredictions(ctx context.Context, ownerID int64) (*domain.PredictionReport, error) {
	args := m.Called(ctx, ownerID)
	report, _ := args.Get(0).(*domain.PredictionReport)
	return report, args.Error(1)
}

func (m *mockEngine) Assess(ctx context.Context, ownerID int64, snapshot domain.InventorySnapshot) (*domain.SpoilageRisk, error) {
	args := m.Called(ctx, ownerID, snapshot)
	risk, _ := args.Get(0).(*domain.SpoilageRisk)
	return risk, args.Error(1)
}

func (m *mockEngine) Now() time.Time {
	return asOf
}

type mockLookup struct {
	mock.Mock
}

func (m *mockLookup) GetInventoryItem(ctx context.Context, ownerID, productID int64) (*domain.InventorySnapshot, error) {
	args := m.Called(ctx, ownerID, productID)
	item, _ := args.Get(0).(*domain.InventorySnapshot)
	return item, args.Error(1)
}

type mockJobStore struct {
	mock.Mock
}

func (m *mockJobStore) SaveJob(ctx context.Context, job *domain.PredictionJob) error {
	return m.Called(ctx, job).Error(0)
}

func (m *mockJobStore) LatestJob(ctx context.Context, ownerID int64) (*domain.PredictionJob, bool, error) {
	args := m.Called(ctx, ownerID)
	job, _ := args.Get(0).(*domain.PredictionJob)
	return job, args.Bool(1), args.Error(2)
}

func (m *mockJobStore) GetJob(ctx context.Context, ownerID int64, jobID string) (*domain.PredictionJob, bool, error) {
	args := m.Called(ctx, ownerID, jobID)
	job, _ := args.Get(0).(*domain.PredictionJob)
	return job, args.Bool(1), args.Error(2)
}

func (m *mockJobStore) InvalidateOwner(ctx context.Context, ownerID int64) error {
	return m.Called(ctx, ownerID).Error(0)
}

func (m *mockJobStore) InvalidateAll(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type mockObjects struct {
	mock.Mock
}

func (m *mockObjects) ListObjects(ctx context.Context, prefix string) ([]storage.ObjectInfo, error) {
	args := m.Called(ctx, prefix)
	objs, _ := args.Get(0).([]storage.ObjectInfo)
	return objs, args.Error(1)
}

func (m *mockObjects) DownloadObject(ctx context.Context, key, destPath string) error {
	return m.Called(ctx, key, destPath).Error(0)
}

func (m *mockObjects) UploadObject(ctx context.Context, key string, data []byte) error {
	return m.Called(ctx, key, data).Error(0)
}

func risk(id int64, level domain.RiskLevel, score float64, days int) domain.SpoilageRisk {
	return domain.SpoilageRisk{ProductID: id, SpoilageRisk: level, RiskScore: score, DaysUntilExpiry: days}
}

func TestGetCriticalAlerts(t *testing.T) {
	engine := &mockEngine{}
	engine.On("ComputeAllRisks", mock.Anything, int64(7)).Return(&domain.RiskReport{
		OwnerID: 7,
		AsOf:    asOf,
		Risks: []domain.SpoilageRisk{
			risk(1, domain.RiskCritical, 0.95, 5),
			risk(2, domain.RiskCritical, 0.93, 1),
			risk(3, domain.RiskHigh, 0.85, 3),
			risk(4, domain.RiskHigh, 0.82, -1),
			risk(5, domain.RiskMedium, 0.7, 0),
		},
		Partial: true,
	}, nil)

	svc := NewSpoilageService(engine, &mockLookup{}, nil, nil, 0)

	tests := []struct {
		name    string
		horizon int
		want    []int64
	}{
		{"default horizon", 0, []int64{2, 3, 4}},
		{"explicit horizon", 5, []int64{1, 2, 3, 4}},
		{"narrow horizon", 1, []int64{2, 4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report, err := svc.GetCriticalAlerts(context.Background(), 7, tt.horizon)
			require.NoError(t, err)

			ids := make([]int64, 0, len(report.Alerts))
			for _, a := range report.Alerts {
				ids = append(ids, a.ProductID)
			}
			assert.Equal(t, tt.want, ids)
			assert.True(t, report.Partial)
		})
	}
}

func TestGetCriticalAlertsPropagatesError(t *testing.T) {
	engine := &mockEngine{}
	engine.On("ComputeAllRisks", mock.Anything, int64(7)).Return(nil, spoilage.ErrInventoryUnavailable)

	svc := NewSpoilageService(engine, &mockLookup{}, nil, nil, 3)
	_, err := svc.GetCriticalAlerts(context.Background(), 7, 0)
	assert.ErrorIs(t, err, spoilage.ErrInventoryUnavailable)
}

func TestGetProductRisk(t *testing.T) {
	exp := asOf.AddDate(0, 0, 2)
	item := &domain.InventorySnapshot{ProductID: 3, HasProduct: true, ExpirationDate: &exp}
	want := risk(3, domain.RiskHigh, 0.85, 2)

	t.Run("found", func(t *testing.T) {
		engine := &mockEngine{}
		lookup := &mockLookup{}
		lookup.On("GetInventoryItem", mock.Anything, int64(7), int64(3)).Return(item, nil)
		engine.On("Assess", mock.Anything, int64(7), *item).Return(&want, nil)

		got, err := NewSpoilageService(engine, lookup, nil, nil, 3).GetProductRisk(context.Background(), 7, 3)
		require.NoError(t, err)
		assert.Equal(t, want, *got)
		engine.AssertExpectations(t)
	})

	t.Run("missing", func(t *testing.T) {
		lookup := &mockLookup{}
		lookup.On("GetInventoryItem", mock.Anything, int64(7), int64(3)).Return(nil, nil)

		_, err := NewSpoilageService(&mockEngine{}, lookup, nil, nil, 3).GetProductRisk(context.Background(), 7, 3)
		assert.ErrorIs(t, err, spoilage.ErrProductNotFound)
	})

	t.Run("lookup failure", func(t *testing.T) {
		lookup := &mockLookup{}
		lookup.On("GetInventoryItem", mock.Anything, int64(7), int64(3)).Return(nil, errors.New("conn reset"))

		_, err := NewSpoilageService(&mockEngine{}, lookup, nil, nil, 3).GetProductRisk(context.Background(), 7, 3)
		assert.ErrorIs(t, err, spoilage.ErrInventoryUnavailable)
	})
}

func TestRunPredictionJob(t *testing.T) {
	report := &domain.PredictionReport{
		OwnerID:     7,
		AsOf:        asOf,
		Predictions: []domain.SpoilagePrediction{{ProductID: 1, Confidence: 0.9}},
	}

	engine := &mockEngine{}
	engine.On("ComputeAllPredictions", mock.Anything, int64(7)).Return(report, nil)

	objects := &mockObjects{}
	objects.On("UploadObject", mock.Anything, "predictions/7/2024-07-15/job-1.json", mock.Anything).Return(nil)

	jobs := &mockJobStore{}
	jobs.On("SaveJob", mock.Anything, mock.MatchedBy(func(j *domain.PredictionJob) bool {
		return j.ID == "job-1" && j.ExportKey == "predictions/7/2024-07-15/job-1.json"
	})).Return(nil)

	svc := NewSpoilageService(engine, &mockLookup{}, jobs, objects, 3)
	svc.newID = func() string { return "job-1" }

	job, err := svc.RunPredictionJob(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "job-1", job.ID)
	assert.Equal(t, asOf, job.StartedAt)
	assert.Same(t, report, job.Report)
	objects.AssertExpectations(t)
	jobs.AssertExpectations(t)
}

func TestRunPredictionJobToleratesExportAndStoreFailures(t *testing.T) {
	engine := &mockEngine{}
	engine.On("ComputeAllPredictions", mock.Anything, int64(7)).Return(&domain.PredictionReport{OwnerID: 7, AsOf: asOf}, nil)

	objects := &mockObjects{}
	objects.On("UploadObject", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("bucket gone"))

	jobs := &mockJobStore{}
	jobs.On("SaveJob", mock.Anything, mock.Anything).Return(errors.New("redis down"))

	job, err := NewSpoilageService(engine, &mockLookup{}, jobs, objects, 3).RunPredictionJob(context.Background(), 7)
	require.NoError(t, err)
	assert.Empty(t, job.ExportKey)
	assert.NotEmpty(t, job.ID)
}

func TestRunPredictionJobFailsWhenEngineFails(t *testing.T) {
	engine := &mockEngine{}
	engine.On("ComputeAllPredictions", mock.Anything, int64(7)).Return(nil, context.Canceled)

	jobs := &mockJobStore{}
	_, err := NewSpoilageService(engine, &mockLookup{}, jobs, nil, 3).RunPredictionJob(context.Background(), 7)
	assert.ErrorIs(t, err, context.Canceled)
	jobs.AssertNotCalled(t, "SaveJob", mock.Anything, mock.Anything)
}

func TestListPredictionExportsWithoutStorage(t *testing.T) {
	svc := NewSpoilageService(&mockEngine{}, &mockLookup{}, nil, nil, 3)
	objs, err := svc.ListPredictionExports(context.Background(), 7)
	require.NoError(t, err)
	assert.Empty(t, objs)
}
