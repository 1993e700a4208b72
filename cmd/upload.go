package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/Bhadri2015-SB/Bedrock/internal/uploader"
)

var (
	uploadFilePath  string
	uploadDirPath   string
	uploadRecursive bool
	uploadList      bool
)

var uploadCmd = &cobra.Command{
	Use:   "upload",
	Short: "Upload documents to the S3 document bucket",
	Long: `
Upload a single file or a directory of documents to the configured S3 bucket
under the configured prefix. Uploaded objects become visible to the knowledge
base on the next ingestion run.

Examples:
  # Upload one file
  bedrock upload --file ./docs/guide.md

  # Upload a directory recursively
  bedrock upload --dir ./docs --recursive

  # List objects already uploaded
  bedrock upload --list
`,
	RunE: runUpload,
}

func init() {
	uploadCmd.Flags().StringVarP(&uploadFilePath, "file", "f", "", "Path of a single file to upload")
	uploadCmd.Flags().StringVarP(&uploadDirPath, "dir", "d", "", "Path of a directory to upload")
	uploadCmd.Flags().BoolVarP(&uploadRecursive, "recursive", "r", false, "Recurse into subdirectories with --dir")
	uploadCmd.Flags().BoolVar(&uploadList, "list", false, "List objects under the configured prefix")
}

func runUpload(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	up, err := uploader.NewS3Uploader(cfg.S3Bucket, cfg.S3Prefix, cfg.AWSRegion, cfg.UploadConcurrency)
	if err != nil {
		return err
	}

	ctx := context.Background()

	switch {
	case uploadList:
		keys, err := up.ListObjects(ctx)
		if err != nil {
			return err
		}
		if len(keys) == 0 {
			fmt.Printf("No objects found in s3://%s/%s\n", up.Bucket(), up.Prefix())
			return nil
		}
		fmt.Printf("Objects in s3://%s/%s (%d):\n", up.Bucket(), up.Prefix(), len(keys))
		for _, key := range keys {
			fmt.Printf("  %s\n", key)
		}
		return nil

	case uploadFilePath != "":
		key, err := up.UploadFile(ctx, uploadFilePath)
		if err != nil {
			return err
		}
		fmt.Printf("Uploaded %s to s3://%s/%s\n", uploadFilePath, up.Bucket(), key)
		return nil

	case uploadDirPath != "":
		result, err := up.UploadDirectory(ctx, uploadDirPath, uploadRecursive)
		if err != nil {
			return err
		}
		fmt.Printf("Uploaded %d file(s) to s3://%s/%s\n", len(result.Keys), up.Bucket(), up.Prefix())
		for _, failed := range result.Failed {
			log.Printf("WARNING: Failed to upload %s: %v", failed.Path, failed.Err)
		}
		if len(result.Failed) > 0 {
			return fmt.Errorf("%d file(s) failed to upload", len(result.Failed))
		}
		return nil

	default:
		return fmt.Errorf("one of --file, --dir, or --list is required")
	}
}
