package knowledgebase

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockagent"
	agenttypes "github.com/aws/aws-sdk-go-v2/service/bedrockagent/types"
	"github.com/google/uuid"

	"github.com/Bhadri2015-SB/Bedrock/internal/types"
)

// StartIngestion starts an ingestion job for the data source and returns the job ID
func (c *Client) StartIngestion(ctx context.Context, kbID, dsID string) (string, error) {
	out, err := c.agent.StartIngestionJob(ctx, &bedrockagent.StartIngestionJobInput{
		KnowledgeBaseId: aws.String(kbID),
		DataSourceId:    aws.String(dsID),
		ClientToken:     aws.String(uuid.NewString()),
	})
	if err != nil {
		return "", fmt.Errorf("failed to start ingestion job: %w", err)
	}
	if out.IngestionJob == nil || out.IngestionJob.IngestionJobId == nil {
		return "", fmt.Errorf("start ingestion job response missing job ID")
	}

	return *out.IngestionJob.IngestionJobId, nil
}

// GetIngestionJob fetches the current state of an ingestion job
func (c *Client) GetIngestionJob(ctx context.Context, kbID, dsID, jobID string) (*types.IngestionJobInfo, error) {
	out, err := c.agent.GetIngestionJob(ctx, &bedrockagent.GetIngestionJobInput{
		KnowledgeBaseId: aws.String(kbID),
		DataSourceId:    aws.String(dsID),
		IngestionJobId:  aws.String(jobID),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get ingestion job status: %w", err)
	}
	if out.IngestionJob == nil {
		return nil, fmt.Errorf("ingestion job %s not found in response", jobID)
	}

	return jobInfoFromSDK(out.IngestionJob), nil
}

// WaitForIngestion polls the ingestion job until it reaches a terminal state
// or the configured timeout elapses. On timeout the last observed state is
// returned without error since the job keeps running remotely.
func (c *Client) WaitForIngestion(ctx context.Context, kbID, dsID, jobID string) (*types.IngestionJobInfo, error) {
	deadline := time.Now().Add(c.pollTimeout)
	start := time.Now()
	var previousStatus string

	for {
		job, err := c.GetIngestionJob(ctx, kbID, dsID, jobID)
		if err != nil {
			return nil, err
		}

		if job.Status != previousStatus {
			log.Printf("[%ds] Ingestion status: %s", int(time.Since(start).Seconds()), job.Status)
			previousStatus = job.Status
		}

		if stats := job.Statistics; stats != nil {
			log.Printf("  Documents: %d scanned, %d indexed, %d failed",
				stats.Scanned, stats.NewIndexed+stats.ModifiedIndexed, stats.Failed)
		}

		if job.IsTerminal() {
			switch job.Status {
			case types.JobStatusComplete:
				log.Println("Ingestion job completed successfully")
			case types.JobStatusFailed:
				log.Println("Ingestion job failed")
				for _, reason := range job.FailureReasons {
					log.Printf("  failure reason: %s", reason)
				}
			default:
				log.Println("Ingestion job was stopped")
			}
			return job, nil
		}

		if time.Now().After(deadline) {
			log.Printf("Reached maximum wait time of %v; ingestion job is still running in the background", c.pollTimeout)
			return job, nil
		}

		select {
		case <-ctx.Done():
			return job, ctx.Err()
		case <-time.After(c.pollInterval):
		}
	}
}

func jobInfoFromSDK(job *agenttypes.IngestionJob) *types.IngestionJobInfo {
	info := &types.IngestionJobInfo{
		ID:             aws.ToString(job.IngestionJobId),
		Status:         string(job.Status),
		FailureReasons: job.FailureReasons,
	}
	if job.StartedAt != nil {
		info.StartedAt = *job.StartedAt
	}
	if job.UpdatedAt != nil {
		info.UpdatedAt = *job.UpdatedAt
	}
	if stats := job.Statistics; stats != nil {
		info.Statistics = &types.IngestionStatistics{
			Scanned:         stats.NumberOfDocumentsScanned,
			NewIndexed:      stats.NumberOfNewDocumentsIndexed,
			ModifiedIndexed: stats.NumberOfModifiedDocumentsIndexed,
			Deleted:         stats.NumberOfDocumentsDeleted,
			Failed:          stats.NumberOfDocumentsFailed,
		}
	}
	return info
}
