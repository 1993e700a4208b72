package cmd

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	appconfig "github.com/Bhadri2015-SB/Bedrock/internal/config"
	"github.com/Bhadri2015-SB/Bedrock/internal/types"
)

var regionFlag string

var rootCmd = &cobra.Command{
	Use:   "bedrock",
	Short: "Bedrock - knowledge base builder for document Q&A",
	Long: `Bedrock is a CLI tool for building a document Q&A system on Amazon Bedrock
Knowledge Bases: upload documents to S3, provision a knowledge base backed by
OpenSearch Serverless, run ingestion jobs, and query with retrieval-augmented
generation.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Missing .env is fine, the environment may already be configured
		_ = godotenv.Load()
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&regionFlag, "region", "", "AWS region (overrides AWS_REGION)")

	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(monitorCmd)
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(workflowCmd)
	rootCmd.AddCommand(setupCmd)
}

// loadConfig loads the application configuration and applies the global
// region flag override
func loadConfig() (*types.Config, error) {
	cfg, err := appconfig.Load()
	if err != nil {
		return nil, err
	}
	if regionFlag != "" {
		cfg.AWSRegion = regionFlag
	}
	return cfg, nil
}

// loadAWSConfig resolves the AWS SDK configuration for the configured region
func loadAWSConfig(ctx context.Context, cfg *types.Config) (aws.Config, error) {
	awsConfig, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load AWS configuration: %w", err)
	}
	return awsConfig, nil
}
