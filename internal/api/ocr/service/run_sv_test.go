package ocrService

import (
	"context"
	"database/sql"
	"testing"

	"ProjectOCR/internal/api/ocr"
	ocrRepository "ProjectOCR/internal/api/ocr/repository"
	"ProjectOCR/internal/entity"
	"ProjectOCR/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRunStore struct {
	runs      map[string]entity.OCRRun
	recent    []entity.OCRRun
	saved     []entity.OCRRun
	lastLimit int
}

func (f *fakeRunStore) SaveRun(_ context.Context, run entity.OCRRun) error {
	f.saved = append(f.saved, run)
	return nil
}

func (f *fakeRunStore) GetRunByID(_ context.Context, id string) (entity.OCRRun, error) {
	run, ok := f.runs[id]
	if !ok {
		return entity.OCRRun{}, sql.ErrNoRows
	}
	return run, nil
}

func (f *fakeRunStore) GetRecentRuns(_ context.Context, limit int) ([]entity.OCRRun, error) {
	f.lastLimit = limit
	return f.recent, nil
}

type fakeRepository struct {
	store *fakeRunStore
}

func (f *fakeRepository) NewClient(_ bool) (ocrRepository.Client, error) {
	return ocrRepository.Client{
		Runs:     f.store,
		Commit:   func() error { return nil },
		Rollback: func() error { return nil },
	}, nil
}

func newRunTestService(store *fakeRunStore, gemini *fakeGemini) IOCRService {
	return NewOCRService(testLogger(), &fakeRepository{store: store}, gemini, &fakeMLKit{}, &fakeScanner{}, &fakeNormalizer{}, nil, nil, utils.New())
}

func TestRunByID(t *testing.T) {
	store := &fakeRunStore{runs: map[string]entity.OCRRun{
		"01J0000000000000000000RUN1": {
			ID:           "01J0000000000000000000RUN1",
			DocumentType: entity.DocumentTypeCheque,
			Success:      true,
			Confidence:   38,
		},
	}}
	svc := newRunTestService(store, &fakeGemini{})

	run, err := svc.RunByID(context.Background(), "01J0000000000000000000RUN1")
	require.NoError(t, err)
	assert.Equal(t, entity.DocumentTypeCheque, run.DocumentType)
	assert.Equal(t, 38, run.Confidence)
}

func TestRunByIDNotFound(t *testing.T) {
	svc := newRunTestService(&fakeRunStore{}, &fakeGemini{})

	_, err := svc.RunByID(context.Background(), "missing")
	assert.ErrorIs(t, err, ocr.ErrRunNotFound)
}

func TestRecentRunsLimitBounds(t *testing.T) {
	tests := []struct {
		name      string
		limit     int
		wantLimit int
	}{
		{"zero falls back to default", 0, 20},
		{"negative falls back to default", -3, 20},
		{"in range passes through", 5, 5},
		{"above ceiling is clamped", 500, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeRunStore{recent: []entity.OCRRun{{ID: "run-1"}}}
			svc := newRunTestService(store, &fakeGemini{})

			runs, err := svc.RecentRuns(context.Background(), tt.limit)
			require.NoError(t, err)
			assert.Len(t, runs, 1)
			assert.Equal(t, tt.wantLimit, store.lastLimit)
		})
	}
}

func TestRunQueriesWithoutRepository(t *testing.T) {
	svc := newTestService(&fakeGemini{}, &fakeMLKit{}, &fakeScanner{})

	_, err := svc.RunByID(context.Background(), "any")
	assert.ErrorIs(t, err, ocr.ErrNotInitialized)

	_, err = svc.RecentRuns(context.Background(), 10)
	assert.ErrorIs(t, err, ocr.ErrNotInitialized)
}

func TestProcessChequePersistsAuditRow(t *testing.T) {
	store := &fakeRunStore{}
	svc := newRunTestService(store, &fakeGemini{response: wrappedChequeResponse})

	result := svc.ProcessCheque(context.Background(), ocr.ImageSource{Data: []byte("image-bytes")}, ocr.ProcessingOptions{})
	require.True(t, result.Success)

	require.Len(t, store.saved, 1)
	row := store.saved[0]
	assert.NotEmpty(t, row.ID)
	assert.Equal(t, entity.DocumentTypeCheque, row.DocumentType)
	assert.True(t, row.Success)
	assert.Equal(t, 38, row.Confidence)
	assert.Equal(t, 1, row.FraudIndicators)
	assert.Empty(t, row.ErrorMessage)
}
