package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/Bhadri2015-SB/Bedrock/internal/knowledgebase"
)

var (
	createName        string
	createVectorIndex string
	createSkipSource  bool
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a knowledge base with its supporting resources",
	Long: `
Create a vector knowledge base on Amazon Bedrock. This provisions the
supporting resources in order: the IAM execution role (unless
KB_EXECUTION_ROLE_ARN is set), an OpenSearch Serverless vector collection,
the knowledge base itself, and an S3 data source pointing at the configured
bucket and prefix.

Collection activation can take several minutes; the command waits for it.

Examples:
  bedrock create --name product-docs
  bedrock create --name product-docs --skip-data-source
`,
	RunE: runCreate,
}

func init() {
	createCmd.Flags().StringVarP(&createName, "name", "n", "", "Knowledge base name (required)")
	createCmd.Flags().StringVar(&createVectorIndex, "vector-index", "", "Vector index name (defaults to <name>-index)")
	createCmd.Flags().BoolVar(&createSkipSource, "skip-data-source", false, "Skip creating the S3 data source")

	if err := createCmd.MarkFlagRequired("name"); err != nil {
		panic(err)
	}
}

func runCreate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if cfg.S3Bucket == "" && !createSkipSource {
		return fmt.Errorf("AWS_S3_BUCKET is required to create the data source")
	}

	ctx := context.Background()
	awsConfig, err := loadAWSConfig(ctx, cfg)
	if err != nil {
		return err
	}

	roleARN := cfg.ExecutionRoleARN
	if roleARN == "" {
		log.Printf("Ensuring knowledge base execution role")
		roleARN, err = knowledgebase.NewRoleProvisioner(awsConfig).EnsureRole(ctx)
		if err != nil {
			return err
		}
	}
	fmt.Printf("Execution role: %s\n", roleARN)

	collections := knowledgebase.NewCollectionProvisioner(awsConfig, cfg.CollectionPollInterval, cfg.CollectionTimeout)
	collectionARN, err := collections.EnsureCollection(ctx, createName+"-vectors")
	if err != nil {
		return err
	}
	fmt.Printf("Vector collection: %s\n", collectionARN)

	client := knowledgebase.NewClient(awsConfig, &knowledgebase.ClientConfig{
		Region:       cfg.AWSRegion,
		PollInterval: cfg.IngestPollInterval,
		PollTimeout:  cfg.IngestTimeout,
	})

	kbID, err := client.CreateKnowledgeBase(ctx, &knowledgebase.CreateKnowledgeBaseParams{
		Name:           createName,
		EmbeddingModel: cfg.EmbeddingModel,
		RoleARN:        roleARN,
		CollectionARN:  collectionARN,
		VectorIndex:    createVectorIndex,
	})
	if err != nil {
		return err
	}
	fmt.Printf("Knowledge base created: %s\n", kbID)

	if !createSkipSource {
		dsID, err := client.CreateDataSource(ctx, kbID, createName, cfg.S3Bucket, cfg.S3Prefix)
		if err != nil {
			return err
		}
		fmt.Printf("Data source created: %s\n", dsID)
	}

	fmt.Printf("\nSet KNOWLEDGE_BASE_ID=%s to use this knowledge base, then run 'bedrock ingest'.\n", kbID)
	return nil
}
