package ocrService

import (
	"database/sql"
	"errors"

	"ProjectOCR/internal/api/ocr"
	"ProjectOCR/internal/entity"
	"golang.org/x/net/context"
)

const (
	defaultRunListLimit = 20
	maxRunListLimit     = 100
)

func (s *ocrService) RunByID(c context.Context, id string) (entity.OCRRun, error) {
	if s.repo == nil {
		return entity.OCRRun{}, ocr.ErrNotInitialized
	}

	client, err := s.repo.NewClient(false)
	if err != nil {
		return entity.OCRRun{}, err
	}

	run, err := client.Runs.GetRunByID(c, id)
	if errors.Is(err, sql.ErrNoRows) {
		return entity.OCRRun{}, ocr.ErrRunNotFound
	}
	if err != nil {
		return entity.OCRRun{}, err
	}

	return run, nil
}

func (s *ocrService) RecentRuns(c context.Context, limit int) ([]entity.OCRRun, error) {
	if s.repo == nil {
		return nil, ocr.ErrNotInitialized
	}

	if limit <= 0 {
		limit = defaultRunListLimit
	}
	if limit > maxRunListLimit {
		limit = maxRunListLimit
	}

	client, err := s.repo.NewClient(false)
	if err != nil {
		return nil, err
	}

	return client.Runs.GetRecentRuns(c, limit)
}
