package knowledgebase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockagent"
	agenttypes "github.com/aws/aws-sdk-go-v2/service/bedrockagent/types"
	"github.com/aws/smithy-go"
	"github.com/google/uuid"

	"github.com/Bhadri2015-SB/Bedrock/internal/types"
)

// apiErrorCode extracts the service error code from an AWS API error
func apiErrorCode(err error) string {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode()
	}
	return ""
}

// BedrockAgentAPI is the subset of the Bedrock Agent control-plane client used here
type BedrockAgentAPI interface {
	CreateKnowledgeBase(ctx context.Context, params *bedrockagent.CreateKnowledgeBaseInput, optFns ...func(*bedrockagent.Options)) (*bedrockagent.CreateKnowledgeBaseOutput, error)
	GetKnowledgeBase(ctx context.Context, params *bedrockagent.GetKnowledgeBaseInput, optFns ...func(*bedrockagent.Options)) (*bedrockagent.GetKnowledgeBaseOutput, error)
	ListKnowledgeBases(ctx context.Context, params *bedrockagent.ListKnowledgeBasesInput, optFns ...func(*bedrockagent.Options)) (*bedrockagent.ListKnowledgeBasesOutput, error)
	CreateDataSource(ctx context.Context, params *bedrockagent.CreateDataSourceInput, optFns ...func(*bedrockagent.Options)) (*bedrockagent.CreateDataSourceOutput, error)
	ListDataSources(ctx context.Context, params *bedrockagent.ListDataSourcesInput, optFns ...func(*bedrockagent.Options)) (*bedrockagent.ListDataSourcesOutput, error)
	StartIngestionJob(ctx context.Context, params *bedrockagent.StartIngestionJobInput, optFns ...func(*bedrockagent.Options)) (*bedrockagent.StartIngestionJobOutput, error)
	GetIngestionJob(ctx context.Context, params *bedrockagent.GetIngestionJobInput, optFns ...func(*bedrockagent.Options)) (*bedrockagent.GetIngestionJobOutput, error)
}

// Client wraps the Bedrock Agent control plane for knowledge base administration
type Client struct {
	agent        BedrockAgentAPI
	region       string
	pollInterval time.Duration
	pollTimeout  time.Duration
}

// ClientConfig holds the configuration for the knowledge base client
type ClientConfig struct {
	Region       string
	PollInterval time.Duration
	PollTimeout  time.Duration
}

// NewClient creates a knowledge base client from an AWS configuration
func NewClient(awsConfig aws.Config, cfg *ClientConfig) *Client {
	pollInterval := cfg.PollInterval
	if pollInterval <= 0 {
		pollInterval = 10 * time.Second
	}
	pollTimeout := cfg.PollTimeout
	if pollTimeout <= 0 {
		pollTimeout = 600 * time.Second
	}

	return &Client{
		agent:        bedrockagent.NewFromConfig(awsConfig),
		region:       cfg.Region,
		pollInterval: pollInterval,
		pollTimeout:  pollTimeout,
	}
}

// CreateKnowledgeBaseParams holds the inputs for knowledge base creation
type CreateKnowledgeBaseParams struct {
	Name           string
	EmbeddingModel string
	RoleARN        string
	CollectionARN  string
	VectorIndex    string
}

// CreateKnowledgeBase creates a vector knowledge base backed by an OpenSearch
// Serverless collection and returns its ID
func (c *Client) CreateKnowledgeBase(ctx context.Context, params *CreateKnowledgeBaseParams) (string, error) {
	if params.Name == "" {
		return "", fmt.Errorf("knowledge base name is required")
	}

	vectorIndex := params.VectorIndex
	if vectorIndex == "" {
		vectorIndex = params.Name + "-index"
	}

	embeddingModelARN := fmt.Sprintf("arn:aws:bedrock:%s::foundation-model/%s", c.region, params.EmbeddingModel)

	out, err := c.agent.CreateKnowledgeBase(ctx, &bedrockagent.CreateKnowledgeBaseInput{
		Name:        aws.String(params.Name),
		Description: aws.String(fmt.Sprintf("Knowledge Base for %s documents", params.Name)),
		RoleArn:     aws.String(params.RoleARN),
		ClientToken: aws.String(uuid.NewString()),
		KnowledgeBaseConfiguration: &agenttypes.KnowledgeBaseConfiguration{
			Type: agenttypes.KnowledgeBaseTypeVector,
			VectorKnowledgeBaseConfiguration: &agenttypes.VectorKnowledgeBaseConfiguration{
				EmbeddingModelArn: aws.String(embeddingModelARN),
			},
		},
		StorageConfiguration: &agenttypes.StorageConfiguration{
			Type: agenttypes.KnowledgeBaseStorageTypeOpensearchServerless,
			OpensearchServerlessConfiguration: &agenttypes.OpenSearchServerlessConfiguration{
				CollectionArn:   aws.String(params.CollectionARN),
				VectorIndexName: aws.String(vectorIndex),
				FieldMapping: &agenttypes.OpenSearchServerlessFieldMapping{
					VectorField:   aws.String("vector"),
					TextField:     aws.String("text"),
					MetadataField: aws.String("metadata"),
				},
			},
		},
	})
	if err != nil {
		if apiErrorCode(err) == "ConflictException" {
			return "", fmt.Errorf("knowledge base %q already exists: %w", params.Name, err)
		}
		return "", fmt.Errorf("failed to create knowledge base: %w", err)
	}
	if out.KnowledgeBase == nil || out.KnowledgeBase.KnowledgeBaseId == nil {
		return "", fmt.Errorf("create knowledge base response missing knowledge base ID")
	}

	return *out.KnowledgeBase.KnowledgeBaseId, nil
}

// GetKnowledgeBase fetches details for a single knowledge base
func (c *Client) GetKnowledgeBase(ctx context.Context, kbID string) (*types.KnowledgeBaseSummary, error) {
	out, err := c.agent.GetKnowledgeBase(ctx, &bedrockagent.GetKnowledgeBaseInput{
		KnowledgeBaseId: aws.String(kbID),
	})
	if err != nil {
		if apiErrorCode(err) == "ResourceNotFoundException" {
			return nil, fmt.Errorf("knowledge base %s does not exist: %w", kbID, err)
		}
		return nil, fmt.Errorf("failed to get knowledge base %s: %w", kbID, err)
	}
	if out.KnowledgeBase == nil {
		return nil, fmt.Errorf("knowledge base %s not found in response", kbID)
	}

	kb := out.KnowledgeBase
	summary := &types.KnowledgeBaseSummary{
		ID:     aws.ToString(kb.KnowledgeBaseId),
		Name:   aws.ToString(kb.Name),
		Status: string(kb.Status),
	}
	if kb.Description != nil {
		summary.Description = *kb.Description
	}
	if kb.UpdatedAt != nil {
		summary.UpdatedAt = *kb.UpdatedAt
	}
	return summary, nil
}

// ListKnowledgeBases lists all knowledge bases in the account/region with pagination
func (c *Client) ListKnowledgeBases(ctx context.Context) ([]types.KnowledgeBaseSummary, error) {
	var summaries []types.KnowledgeBaseSummary

	paginator := bedrockagent.NewListKnowledgeBasesPaginator(c.agent, &bedrockagent.ListKnowledgeBasesInput{})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list knowledge bases: %w", err)
		}
		for _, kb := range page.KnowledgeBaseSummaries {
			summary := types.KnowledgeBaseSummary{
				ID:     aws.ToString(kb.KnowledgeBaseId),
				Name:   aws.ToString(kb.Name),
				Status: string(kb.Status),
			}
			if kb.Description != nil {
				summary.Description = *kb.Description
			}
			if kb.UpdatedAt != nil {
				summary.UpdatedAt = *kb.UpdatedAt
			}
			summaries = append(summaries, summary)
		}
	}

	return summaries, nil
}

// CreateDataSource registers an S3 location as a data source on the knowledge
// base and returns the data source ID
func (c *Client) CreateDataSource(ctx context.Context, kbID, name, bucket, prefix string) (string, error) {
	if kbID == "" {
		return "", fmt.Errorf("knowledge base ID is required")
	}
	if bucket == "" {
		return "", fmt.Errorf("S3 bucket name is required")
	}

	// The inclusion prefix always addresses a folder-like key space
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}

	input := &bedrockagent.CreateDataSourceInput{
		KnowledgeBaseId: aws.String(kbID),
		Name:            aws.String(name + "-s3-source"),
		Description:     aws.String(fmt.Sprintf("S3 data source for %s", name)),
		ClientToken:     aws.String(uuid.NewString()),
		DataSourceConfiguration: &agenttypes.DataSourceConfiguration{
			Type: agenttypes.DataSourceTypeS3,
			S3Configuration: &agenttypes.S3DataSourceConfiguration{
				BucketArn: aws.String("arn:aws:s3:::" + bucket),
			},
		},
	}
	if prefix != "" {
		input.DataSourceConfiguration.S3Configuration.InclusionPrefixes = []string{prefix}
	}

	out, err := c.agent.CreateDataSource(ctx, input)
	if err != nil {
		return "", fmt.Errorf("failed to create data source: %w", err)
	}
	if out.DataSource == nil || out.DataSource.DataSourceId == nil {
		return "", fmt.Errorf("create data source response missing data source ID")
	}

	return *out.DataSource.DataSourceId, nil
}

// ListDataSources lists all data sources registered on a knowledge base
func (c *Client) ListDataSources(ctx context.Context, kbID string) ([]types.DataSourceSummary, error) {
	var summaries []types.DataSourceSummary

	paginator := bedrockagent.NewListDataSourcesPaginator(c.agent, &bedrockagent.ListDataSourcesInput{
		KnowledgeBaseId: aws.String(kbID),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list data sources: %w", err)
		}
		for _, ds := range page.DataSourceSummaries {
			summary := types.DataSourceSummary{
				ID:              aws.ToString(ds.DataSourceId),
				KnowledgeBaseID: aws.ToString(ds.KnowledgeBaseId),
				Name:            aws.ToString(ds.Name),
				Status:          string(ds.Status),
			}
			if ds.UpdatedAt != nil {
				summary.UpdatedAt = *ds.UpdatedAt
			}
			summaries = append(summaries, summary)
		}
	}

	return summaries, nil
}
