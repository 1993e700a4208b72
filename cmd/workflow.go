package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/spf13/cobra"

	"github.com/Bhadri2015-SB/Bedrock/internal/knowledgebase"
	"github.com/Bhadri2015-SB/Bedrock/internal/query"
	"github.com/Bhadri2015-SB/Bedrock/internal/types"
	"github.com/Bhadri2015-SB/Bedrock/internal/uploader"
)

var (
	workflowName      string
	workflowDirPath   string
	workflowRecursive bool
	workflowQuestion  string
)

var workflowCmd = &cobra.Command{
	Use:   "workflow",
	Short: "Run the full pipeline: upload, provision, ingest",
	Long: `
Run the end-to-end pipeline in one command: upload a directory of documents
to S3, provision the knowledge base with its supporting resources (or reuse
the one named by KNOWLEDGE_BASE_ID), then run an ingestion job to completion.
With --question, finish by asking a test question against the fresh index.

Examples:
  bedrock workflow --name product-docs --dir ./docs --recursive
  bedrock workflow --name product-docs --dir ./docs --question "What is covered?"
`,
	RunE: runWorkflow,
}

func init() {
	workflowCmd.Flags().StringVarP(&workflowName, "name", "n", "", "Knowledge base name (required)")
	workflowCmd.Flags().StringVarP(&workflowDirPath, "dir", "d", "", "Directory of documents to upload (required)")
	workflowCmd.Flags().BoolVarP(&workflowRecursive, "recursive", "r", false, "Recurse into subdirectories")
	workflowCmd.Flags().StringVarP(&workflowQuestion, "question", "q", "", "Question to ask once ingestion completes")

	if err := workflowCmd.MarkFlagRequired("name"); err != nil {
		panic(err)
	}
	if err := workflowCmd.MarkFlagRequired("dir"); err != nil {
		panic(err)
	}
}

func runWorkflow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if cfg.S3Bucket == "" {
		return fmt.Errorf("AWS_S3_BUCKET is required")
	}

	ctx := context.Background()

	fmt.Println("Step 1/4: Uploading documents")
	up, err := uploader.NewS3Uploader(cfg.S3Bucket, cfg.S3Prefix, cfg.AWSRegion, cfg.UploadConcurrency)
	if err != nil {
		return err
	}
	uploadResult, err := up.UploadDirectory(ctx, workflowDirPath, workflowRecursive)
	if err != nil {
		return err
	}
	for _, failed := range uploadResult.Failed {
		log.Printf("WARNING: Failed to upload %s: %v", failed.Path, failed.Err)
	}
	if len(uploadResult.Keys) == 0 {
		return fmt.Errorf("no files were uploaded from %s", workflowDirPath)
	}
	fmt.Printf("Uploaded %d file(s) to s3://%s/%s\n", len(uploadResult.Keys), up.Bucket(), up.Prefix())

	awsConfig, err := loadAWSConfig(ctx, cfg)
	if err != nil {
		return err
	}

	client := knowledgebase.NewClient(awsConfig, &knowledgebase.ClientConfig{
		Region:       cfg.AWSRegion,
		PollInterval: cfg.IngestPollInterval,
		PollTimeout:  cfg.IngestTimeout,
	})

	kbID := cfg.KnowledgeBaseID
	if kbID != "" {
		fmt.Printf("Step 2/4: Using existing knowledge base %s\n", kbID)
		if _, err := client.GetKnowledgeBase(ctx, kbID); err != nil {
			return err
		}
	} else {
		fmt.Println("Step 2/4: Provisioning knowledge base")
		kbID, err = provisionKnowledgeBase(ctx, awsConfig, client, cfg)
		if err != nil {
			return err
		}
		fmt.Printf("Knowledge base created: %s\n", kbID)
		cfg.KnowledgeBaseID = kbID
	}

	fmt.Println("Step 3/4: Running ingestion")
	dsID, err := resolveDataSource(ctx, client, cfg, "")
	if err != nil {
		return err
	}
	jobID, err := client.StartIngestion(ctx, kbID, dsID)
	if err != nil {
		return err
	}
	job, err := client.WaitForIngestion(ctx, kbID, dsID, jobID)
	if err != nil {
		return err
	}
	printIngestionJob(job)

	if job.Status != types.JobStatusComplete {
		return fmt.Errorf("ingestion finished with status %s", job.Status)
	}

	if workflowQuestion != "" {
		fmt.Println("Step 4/4: Running test query")
		querier, err := query.NewQuerier(awsConfig, &query.QuerierConfig{
			KnowledgeBaseID: kbID,
			GenerationModel: cfg.GenerationModel,
			ModelARN:        cfg.ModelARN,
		})
		if err != nil {
			return err
		}
		answer, err := querier.Answer(ctx, workflowQuestion, 5, "")
		if err != nil {
			return err
		}
		printGeneratedAnswer(answer, true)
	} else {
		fmt.Println("Step 4/4: Done")
	}

	fmt.Printf("\nWorkflow complete. Set KNOWLEDGE_BASE_ID=%s to keep querying this knowledge base.\n", kbID)
	return nil
}

// provisionKnowledgeBase creates the execution role, vector collection, and
// knowledge base in order, reusing resources that already exist
func provisionKnowledgeBase(ctx context.Context, awsConfig aws.Config, client *knowledgebase.Client, cfg *types.Config) (string, error) {
	roleARN := cfg.ExecutionRoleARN
	var err error
	if roleARN == "" {
		roleARN, err = knowledgebase.NewRoleProvisioner(awsConfig).EnsureRole(ctx)
		if err != nil {
			return "", err
		}
	}

	collections := knowledgebase.NewCollectionProvisioner(awsConfig, cfg.CollectionPollInterval, cfg.CollectionTimeout)
	collectionARN, err := collections.EnsureCollection(ctx, workflowName+"-vectors")
	if err != nil {
		return "", err
	}

	return client.CreateKnowledgeBase(ctx, &knowledgebase.CreateKnowledgeBaseParams{
		Name:           workflowName,
		EmbeddingModel: cfg.EmbeddingModel,
		RoleARN:        roleARN,
		CollectionARN:  collectionARN,
	})
}
