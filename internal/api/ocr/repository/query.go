package ocrRepository

const (
	querySaveRun = `
		INSERT INTO ocr_runs (
			id,
			request_id,
			document_type,
			success,
			confidence,
			processing_time_ms,
			validation_errors,
			fraud_indicators,
			error_message,
			created_at
		) VALUES (
			:id,
			:request_id,
			:document_type,
			:success,
			:confidence,
			:processing_time_ms,
			:validation_errors,
			:fraud_indicators,
			:error_message,
			:created_at
		)
	`

	queryGetRunById = `
		SELECT
			id,
			request_id,
			document_type,
			success,
			confidence,
			processing_time_ms,
			validation_errors,
			fraud_indicators,
			error_message,
			created_at
		FROM ocr_runs
		WHERE id = :id
	`

	queryGetRecentRuns = `
		SELECT
			id,
			request_id,
			document_type,
			success,
			confidence,
			processing_time_ms,
			validation_errors,
			fraud_indicators,
			error_message,
			created_at
		FROM ocr_runs
		ORDER BY created_at DESC
		LIMIT :limit
	`
)
