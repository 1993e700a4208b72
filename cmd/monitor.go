package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Bhadri2015-SB/Bedrock/internal/knowledgebase"
)

var (
	monitorJobID        string
	monitorDataSourceID string
	monitorWait         bool
)

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Show the status of an ingestion job",
	Long: `
Show the current status and document statistics of an ingestion job. With
--wait, poll until the job reaches a terminal state.

Examples:
  bedrock monitor --job JOBXYZ
  bedrock monitor --job JOBXYZ --wait
`,
	RunE: runMonitor,
}

func init() {
	monitorCmd.Flags().StringVar(&monitorJobID, "job", "", "Ingestion job ID (required)")
	monitorCmd.Flags().StringVar(&monitorDataSourceID, "data-source", "", "Data source ID (defaults to the only data source)")
	monitorCmd.Flags().BoolVarP(&monitorWait, "wait", "w", false, "Poll until the job reaches a terminal state")

	if err := monitorCmd.MarkFlagRequired("job"); err != nil {
		panic(err)
	}
}

func runMonitor(cmd *cobra.Command, args []string) error {
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

	dsID, err := resolveDataSource(ctx, client, cfg, monitorDataSourceID)
	if err != nil {
		return err
	}

	if monitorWait {
		job, err := client.WaitForIngestion(ctx, cfg.KnowledgeBaseID, dsID, monitorJobID)
		if err != nil {
			return err
		}
		printIngestionJob(job)
		return nil
	}

	job, err := client.GetIngestionJob(ctx, cfg.KnowledgeBaseID, dsID, monitorJobID)
	if err != nil {
		return err
	}
	printIngestionJob(job)
	return nil
}
