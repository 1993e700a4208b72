package uploader

import (
	"context"
	"fmt"
	"io/fs"
	"log"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"golang.org/x/sync/errgroup"

	"github.com/Bhadri2015-SB/Bedrock/internal/types"
)

const defaultContentType = "application/octet-stream"

// S3API is the subset of the S3 client used by the uploader
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// S3Uploader uploads local documents into an S3 bucket under a fixed prefix
type S3Uploader struct {
	client      S3API
	bucket      string
	prefix      string
	concurrency int
}

// FailedUpload records a file that could not be uploaded
type FailedUpload struct {
	Path string
	Err  error
}

// UploadResult summarizes a directory upload
type UploadResult struct {
	Keys   []string
	Failed []FailedUpload
}

// NewS3Uploader creates a new S3Uploader instance
func NewS3Uploader(bucket, prefix, region string, concurrency int) (*S3Uploader, error) {
	if bucket == "" {
		return nil, fmt.Errorf("S3 bucket name is required")
	}

	cfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(region),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	return newS3UploaderWithClient(s3.NewFromConfig(cfg), bucket, prefix, concurrency), nil
}

func newS3UploaderWithClient(client S3API, bucket, prefix string, concurrency int) *S3Uploader {
	normalizedPrefix := prefix
	if normalizedPrefix != "" && !strings.HasSuffix(normalizedPrefix, "/") {
		normalizedPrefix += "/"
	}
	if concurrency < 1 {
		concurrency = 1
	}

	return &S3Uploader{
		client:      client,
		bucket:      bucket,
		prefix:      normalizedPrefix,
		concurrency: concurrency,
	}
}

// UploadFile uploads a single file and returns the S3 key it was stored under
func (u *S3Uploader) UploadFile(ctx context.Context, path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", types.NewOperationError(types.ErrorTypeFileRead, "failed to open file", path, err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			log.Printf("Warning: failed to close %s: %v", path, closeErr)
		}
	}()

	key := u.prefix + filepath.Base(path)
	contentType := detectContentType(path)

	log.Printf("Uploading %s to s3://%s/%s", path, u.bucket, key)

	_, err = u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		Body:        file,
		ContentType: aws.String(contentType),
		Metadata: map[string]string{
			"filename": filepath.Base(path),
		},
	})
	if err != nil {
		return "", types.NewOperationError(types.ErrorTypeS3Upload, "failed to upload file", path, err)
	}

	return key, nil
}

// UploadDirectory uploads all regular files under dirPath. Uploads run with
// bounded concurrency; individual failures are collected rather than aborting
// the batch.
func (u *S3Uploader) UploadDirectory(ctx context.Context, dirPath string, recursive bool) (*UploadResult, error) {
	info, err := os.Stat(dirPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat directory %s: %w", dirPath, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dirPath)
	}

	paths, err := collectFiles(dirPath, recursive)
	if err != nil {
		return nil, fmt.Errorf("failed to scan directory %s: %w", dirPath, err)
	}

	result := &UploadResult{}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(u.concurrency)

	for _, path := range paths {
		path := path
		g.Go(func() error {
			key, uploadErr := u.UploadFile(gctx, path)

			mu.Lock()
			defer mu.Unlock()
			if uploadErr != nil {
				log.Printf("Error uploading %s: %v", path, uploadErr)
				result.Failed = append(result.Failed, FailedUpload{Path: path, Err: uploadErr})
				return nil
			}
			result.Keys = append(result.Keys, key)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return result, err
	}

	log.Printf("Uploaded %d files to S3 (%d failed)", len(result.Keys), len(result.Failed))
	return result, nil
}

// ListObjects lists object keys in the bucket under the configured prefix
func (u *S3Uploader) ListObjects(ctx context.Context) ([]string, error) {
	var keys []string

	paginator := s3.NewListObjectsV2Paginator(u.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(u.bucket),
		Prefix: aws.String(u.prefix),
	})

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list bucket contents: %w", err)
		}
		for _, obj := range page.Contents {
			if obj.Key == nil {
				continue
			}
			keys = append(keys, *obj.Key)
		}
	}

	return keys, nil
}

// Bucket returns the configured bucket name
func (u *S3Uploader) Bucket() string {
	return u.bucket
}

// Prefix returns the normalized prefix
func (u *S3Uploader) Prefix() string {
	return u.prefix
}

func collectFiles(dirPath string, recursive bool) ([]string, error) {
	var paths []string

	if recursive {
		err := filepath.WalkDir(dirPath, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				// Skip unreadable entries but continue the walk
				return nil
			}
			if d.IsDir() {
				return nil
			}
			paths = append(paths, path)
			return nil
		})
		if err != nil {
			return nil, err
		}
		return paths, nil
	}

	entries, err := os.ReadDir(dirPath)
	if err != nil {
		return nil, err
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		paths = append(paths, filepath.Join(dirPath, entry.Name()))
	}
	return paths, nil
}

func detectContentType(path string) string {
	contentType := mime.TypeByExtension(filepath.Ext(path))
	if contentType == "" {
		return defaultContentType
	}
	return contentType
}
