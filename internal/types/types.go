package types

import (
	"fmt"
	"time"
)

// Config represents the CLI configuration loaded from environment variables
type Config struct {
	// AWS configuration
	AWSRegion string `json:"aws_region" env:"AWS_REGION,default=us-east-1"`

	// S3 document storage configuration
	S3Bucket string `json:"s3_bucket" env:"AWS_S3_BUCKET"`
	S3Prefix string `json:"s3_prefix" env:"S3_PREFIX,default=documents/"`

	// Knowledge base configuration
	KnowledgeBaseID  string `json:"knowledge_base_id" env:"KNOWLEDGE_BASE_ID"`
	EmbeddingModel   string `json:"embedding_model" env:"BEDROCK_EMBEDDING_MODEL,default=amazon.titan-embed-text-v1"`
	GenerationModel  string `json:"generation_model" env:"BEDROCK_LLM_MODEL,default=meta.llama3-1-70b-instruct-v1:0"`
	ModelARN         string `json:"model_arn" env:"BEDROCK_MODEL_ARN"`
	ExecutionRoleARN string `json:"execution_role_arn" env:"KB_EXECUTION_ROLE_ARN"`

	// Upload configuration
	UploadConcurrency int `json:"upload_concurrency" env:"UPLOAD_CONCURRENCY,default=5"`

	// Ingestion job polling configuration
	IngestPollInterval time.Duration `json:"ingest_poll_interval" env:"INGEST_POLL_INTERVAL,default=10s"`
	IngestTimeout      time.Duration `json:"ingest_timeout" env:"INGEST_TIMEOUT,default=600s"`

	// Vector collection activation polling configuration
	CollectionPollInterval time.Duration `json:"collection_poll_interval" env:"COLLECTION_POLL_INTERVAL,default=30s"`
	CollectionTimeout      time.Duration `json:"collection_timeout" env:"COLLECTION_TIMEOUT,default=1200s"`
}

// RetrievedDocument represents one ranked snippet returned by knowledge base retrieval
type RetrievedDocument struct {
	SourceURI string  `json:"source_uri"`
	FileName  string  `json:"file_name"`
	Content   string  `json:"content"`
	Score     float64 `json:"score"`
}

// QueryResult represents the raw retrieval output for a question
type QueryResult struct {
	Question  string              `json:"question"`
	Documents []RetrievedDocument `json:"documents"`
}

// GeneratedAnswer represents a retrieval result with an LLM-generated answer layered on top
type GeneratedAnswer struct {
	Question   string              `json:"question"`
	Answer     string              `json:"answer"`
	Confidence float64             `json:"confidence"`
	Sources    []RetrievedDocument `json:"sources"`
}

// KnowledgeBaseSummary represents a knowledge base as listed by the control plane
type KnowledgeBaseSummary struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Status      string    `json:"status"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// DataSourceSummary represents a data source registered on a knowledge base
type DataSourceSummary struct {
	ID              string    `json:"id"`
	KnowledgeBaseID string    `json:"knowledge_base_id"`
	Name            string    `json:"name"`
	Status          string    `json:"status"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// IngestionStatistics holds the document counters reported by an ingestion job
type IngestionStatistics struct {
	Scanned         int64 `json:"scanned"`
	NewIndexed      int64 `json:"new_indexed"`
	ModifiedIndexed int64 `json:"modified_indexed"`
	Deleted         int64 `json:"deleted"`
	Failed          int64 `json:"failed"`
}

// IngestionJobInfo represents the observable state of an ingestion job
type IngestionJobInfo struct {
	ID             string               `json:"id"`
	Status         string               `json:"status"`
	Statistics     *IngestionStatistics `json:"statistics,omitempty"`
	FailureReasons []string             `json:"failure_reasons,omitempty"`
	StartedAt      time.Time            `json:"started_at"`
	UpdatedAt      time.Time            `json:"updated_at"`
}

// Terminal ingestion job states; anything else means the job is still running.
const (
	JobStatusComplete = "COMPLETE"
	JobStatusFailed   = "FAILED"
	JobStatusStopped  = "STOPPED"
)

// IsTerminal reports whether the job has reached a terminal state
func (j *IngestionJobInfo) IsTerminal() bool {
	switch j.Status {
	case JobStatusComplete, JobStatusFailed, JobStatusStopped:
		return true
	}
	return false
}

// ModelInfo represents a foundation model available in the region
type ModelInfo struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Provider string `json:"provider"`
	ARN      string `json:"arn"`
}

// ErrorType represents the type of error that occurred
type ErrorType string

const (
	ErrorTypeFileRead       ErrorType = "file_read"
	ErrorTypeS3Upload       ErrorType = "s3_upload"
	ErrorTypeProvisioning   ErrorType = "provisioning"
	ErrorTypeIngestion      ErrorType = "ingestion"
	ErrorTypeRetrieval      ErrorType = "retrieval"
	ErrorTypeGeneration     ErrorType = "generation"
	ErrorTypeValidation     ErrorType = "validation"
	ErrorTypeAuthentication ErrorType = "authentication"
	ErrorTypeTimeout        ErrorType = "timeout"
)

// OperationError is an error annotated with the operation stage it occurred in
type OperationError struct {
	Type      ErrorType `json:"type"`
	Message   string    `json:"message"`
	Path      string    `json:"path,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Err       error     `json:"-"`
}

// Error implements the error interface for OperationError
func (e *OperationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("[%s] %s (path: %s)", e.Type, e.Message, e.Path)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap exposes the underlying cause for errors.Is/As
func (e *OperationError) Unwrap() error {
	return e.Err
}

// NewOperationError creates an OperationError wrapping the given cause
func NewOperationError(errType ErrorType, message string, path string, err error) *OperationError {
	return &OperationError{
		Type:      errType,
		Message:   message,
		Path:      path,
		Timestamp: time.Now(),
		Err:       err,
	}
}
