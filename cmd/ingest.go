package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Bhadri2015-SB/Bedrock/internal/knowledgebase"
	"github.com/Bhadri2015-SB/Bedrock/internal/types"
)

var (
	ingestDataSourceID string
	ingestWait         bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Start an ingestion job on the configured knowledge base",
	Long: `
Start an ingestion job that syncs the S3 data source into the knowledge base
vector index. If --data-source is omitted, the knowledge base's single data
source is used; when none exists yet, a timestamped S3 data source is created
from the configured bucket and prefix.

With --wait, the command polls until the job reaches a terminal state,
printing status transitions and document statistics.

Examples:
  bedrock ingest --wait
  bedrock ingest --data-source DSXYZ
`,
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVar(&ingestDataSourceID, "data-source", "", "Data source ID (defaults to the only data source)")
	ingestCmd.Flags().BoolVarP(&ingestWait, "wait", "w", false, "Poll until the job reaches a terminal state")
}

func runIngest(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if cfg.KnowledgeBaseID == "" {
		return fmt.Errorf("KNOWLEDGE_BASE_ID is required")
	}

	ctx := context.Background()
	awsConfig, err := loadAWSConfig(ctx, cfg)
	if err != nil {
		return err
	}

	client := knowledgebase.NewClient(awsConfig, &knowledgebase.ClientConfig{
		Region:       cfg.AWSRegion,
		PollInterval: cfg.IngestPollInterval,
		PollTimeout:  cfg.IngestTimeout,
	})

	dsID, err := resolveDataSource(ctx, client, cfg, ingestDataSourceID)
	if err != nil {
		return err
	}

	jobID, err := client.StartIngestion(ctx, cfg.KnowledgeBaseID, dsID)
	if err != nil {
		return err
	}
	fmt.Printf("Ingestion job started: %s\n", jobID)

	if !ingestWait {
		fmt.Printf("Monitor with: bedrock monitor --job %s --data-source %s\n", jobID, dsID)
		return nil
	}

	job, err := client.WaitForIngestion(ctx, cfg.KnowledgeBaseID, dsID, jobID)
	if err != nil {
		return err
	}

	printIngestionJob(job)
	return nil
}

// resolveDataSource picks the data source to ingest: the explicit ID when
// given, otherwise the knowledge base's single data source. When the
// knowledge base has none, a timestamped S3 data source is created from the
// configured bucket and prefix.
func resolveDataSource(ctx context.Context, client *knowledgebase.Client, cfg *types.Config, explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}

	kbID := cfg.KnowledgeBaseID
	sources, err := client.ListDataSources(ctx, kbID)
	if err != nil {
		return "", err
	}
	switch len(sources) {
	case 0:
		if cfg.S3Bucket == "" {
			return "", fmt.Errorf("knowledge base %s has no data sources and AWS_S3_BUCKET is not set", kbID)
		}
		name := fmt.Sprintf("sync-%d", time.Now().Unix())
		dsID, err := client.CreateDataSource(ctx, kbID, name, cfg.S3Bucket, cfg.S3Prefix)
		if err != nil {
			return "", err
		}
		fmt.Printf("Data source created: %s\n", dsID)
		return dsID, nil
	case 1:
		return sources[0].ID, nil
	default:
		return "", fmt.Errorf("knowledge base %s has %d data sources, pick one with --data-source", kbID, len(sources))
	}
}
