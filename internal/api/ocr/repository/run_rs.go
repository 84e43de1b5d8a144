package ocrRepository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"ProjectOCR/internal/entity"
	contextPkg "ProjectOCR/pkg/context"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

type OCRRunDB struct {
	ID               sql.NullString `db:"id"`
	RequestID        sql.NullString `db:"request_id"`
	DocumentType     sql.NullString `db:"document_type"`
	Success          sql.NullBool   `db:"success"`
	Confidence       sql.NullInt64  `db:"confidence"`
	ProcessingTimeMS sql.NullInt64  `db:"processing_time_ms"`
	ValidationErrors sql.NullInt64  `db:"validation_errors"`
	FraudIndicators  sql.NullInt64  `db:"fraud_indicators"`
	ErrorMessage     sql.NullString `db:"error_message"`
	CreatedAt        time.Time      `db:"created_at"`
}

func (d OCRRunDB) toEntity() entity.OCRRun {
	return entity.OCRRun{
		ID:               d.ID.String,
		RequestID:        d.RequestID.String,
		DocumentType:     entity.DocumentType(d.DocumentType.String),
		Success:          d.Success.Bool,
		Confidence:       int(d.Confidence.Int64),
		ProcessingTimeMS: d.ProcessingTimeMS.Int64,
		ValidationErrors: int(d.ValidationErrors.Int64),
		FraudIndicators:  int(d.FraudIndicators.Int64),
		ErrorMessage:     d.ErrorMessage.String,
		CreatedAt:        d.CreatedAt,
	}
}

func (r *runRepository) SaveRun(c context.Context, run entity.OCRRun) error {
	requestID := contextPkg.GetRequestID(c)
	argsKV := map[string]interface{}{
		"id":                 run.ID,
		"request_id":         run.RequestID,
		"document_type":      string(run.DocumentType),
		"success":            run.Success,
		"confidence":         run.Confidence,
		"processing_time_ms": run.ProcessingTimeMS,
		"validation_errors":  run.ValidationErrors,
		"fraud_indicators":   run.FraudIndicators,
		"error_message":      run.ErrorMessage,
		"created_at":         time.Now(),
	}

	query, args, err := sqlx.Named(querySaveRun, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to build SQL query for SaveRun")
		return err
	}
	query = r.q.Rebind(query)

	_, err = r.q.ExecContext(c, query, args...)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Database error when saving OCR run")

		return err
	}

	return nil
}

func (r *runRepository) GetRunByID(c context.Context, id string) (entity.OCRRun, error) {
	requestID := contextPkg.GetRequestID(c)
	var run OCRRunDB

	argsKV := map[string]interface{}{
		"id": id,
	}

	query, args, err := sqlx.Named(queryGetRunById, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetRunByID named query preparation err")
		return entity.OCRRun{}, err
	}
	query = r.q.Rebind(query)

	if err := r.q.QueryRowxContext(c, query, args...).StructScan(&run); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return entity.OCRRun{}, err
		}
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Database error when fetching OCR run")
		return entity.OCRRun{}, err
	}

	return run.toEntity(), nil
}

func (r *runRepository) GetRecentRuns(c context.Context, limit int) ([]entity.OCRRun, error) {
	requestID := contextPkg.GetRequestID(c)
	var rows []OCRRunDB

	argsKV := map[string]interface{}{
		"limit": limit,
	}

	query, args, err := sqlx.Named(queryGetRecentRuns, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetRecentRuns named query preparation err")
		return nil, err
	}
	query = r.q.Rebind(query)

	if err := r.q.SelectContext(c, &rows, query, args...); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Database error when listing OCR runs")
		return nil, err
	}

	runs := make([]entity.OCRRun, 0, len(rows))
	for _, row := range rows {
		runs = append(runs, row.toEntity())
	}

	return runs, nil
}
