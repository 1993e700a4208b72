package uploader

import (
	"context"
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/johannesboyne/gofakes3"
	"github.com/johannesboyne/gofakes3/backend/s3mem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupFakeS3 creates a fake S3 server and returns an S3 client configured to use it
func setupFakeS3(t *testing.T) (*s3.Client, *httptest.Server) {
	t.Helper()

	backend := s3mem.New()
	faker := gofakes3.New(backend)
	server := httptest.NewServer(faker.Server())

	cfg, err := config.LoadDefaultConfig(context.Background(),
		config.WithRegion("us-east-1"),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider("test", "test", "")),
	)
	require.NoError(t, err)

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(server.URL)
		o.UsePathStyle = true
	})

	return client, server
}

func createTestBucket(t *testing.T, client *s3.Client, bucketName string) {
	t.Helper()

	_, err := client.CreateBucket(context.Background(), &s3.CreateBucketInput{
		Bucket: aws.String(bucketName),
	})
	require.NoError(t, err)
}

func writeTempFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestNewS3Uploader(t *testing.T) {
	t.Run("empty bucket name returns error", func(t *testing.T) {
		_, err := NewS3Uploader("", "documents/", "us-east-1", 5)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "S3 bucket name is required")
	})
}

func TestS3Uploader_UploadFile(t *testing.T) {
	client, server := setupFakeS3(t)
	defer server.Close()

	createTestBucket(t, client, "test-bucket")
	uploader := newS3UploaderWithClient(client, "test-bucket", "documents", 5)

	tmpDir := t.TempDir()
	path := writeTempFile(t, tmpDir, "report.txt", "quarterly numbers")

	key, err := uploader.UploadFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "documents/report.txt", key, "prefix should be normalized with trailing slash")

	obj, err := client.GetObject(context.Background(), &s3.GetObjectInput{
		Bucket: aws.String("test-bucket"),
		Key:    aws.String(key),
	})
	require.NoError(t, err)
	defer func() { _ = obj.Body.Close() }()

	body, err := io.ReadAll(obj.Body)
	require.NoError(t, err)
	assert.Equal(t, "quarterly numbers", string(body))
	assert.Equal(t, "report.txt", obj.Metadata["filename"])
}

func TestS3Uploader_UploadFile_ContentType(t *testing.T) {
	client, server := setupFakeS3(t)
	defer server.Close()

	createTestBucket(t, client, "test-bucket")
	uploader := newS3UploaderWithClient(client, "test-bucket", "documents/", 1)

	tmpDir := t.TempDir()
	path := writeTempFile(t, tmpDir, "blob.unknownext", "binary-ish")

	key, err := uploader.UploadFile(context.Background(), path)
	require.NoError(t, err)

	obj, err := client.GetObject(context.Background(), &s3.GetObjectInput{
		Bucket: aws.String("test-bucket"),
		Key:    aws.String(key),
	})
	require.NoError(t, err)
	defer func() { _ = obj.Body.Close() }()

	require.NotNil(t, obj.ContentType)
	assert.Equal(t, "application/octet-stream", *obj.ContentType)
}

func TestS3Uploader_UploadFile_MissingFile(t *testing.T) {
	client, server := setupFakeS3(t)
	defer server.Close()

	createTestBucket(t, client, "test-bucket")
	uploader := newS3UploaderWithClient(client, "test-bucket", "documents/", 1)

	_, err := uploader.UploadFile(context.Background(), filepath.Join(t.TempDir(), "missing.txt"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "file_read")
}

func TestS3Uploader_UploadDirectory(t *testing.T) {
	client, server := setupFakeS3(t)
	defer server.Close()

	createTestBucket(t, client, "test-bucket")

	tmpDir := t.TempDir()
	writeTempFile(t, tmpDir, "a.md", "# A")
	writeTempFile(t, tmpDir, "b.md", "# B")
	writeTempFile(t, tmpDir, "nested/c.md", "# C")

	t.Run("recursive", func(t *testing.T) {
		uploader := newS3UploaderWithClient(client, "test-bucket", "docs/", 4)

		result, err := uploader.UploadDirectory(context.Background(), tmpDir, true)
		require.NoError(t, err)
		assert.Len(t, result.Keys, 3)
		assert.Empty(t, result.Failed)
		assert.Contains(t, result.Keys, "docs/c.md")
	})

	t.Run("non-recursive skips subdirectories", func(t *testing.T) {
		uploader := newS3UploaderWithClient(client, "test-bucket", "flat/", 4)

		result, err := uploader.UploadDirectory(context.Background(), tmpDir, false)
		require.NoError(t, err)
		assert.Len(t, result.Keys, 2)
		assert.NotContains(t, result.Keys, "flat/c.md")
	})

	t.Run("not a directory", func(t *testing.T) {
		uploader := newS3UploaderWithClient(client, "test-bucket", "docs/", 4)

		path := writeTempFile(t, tmpDir, "plain.txt", "x")
		_, err := uploader.UploadDirectory(context.Background(), path, true)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "is not a directory")
	})
}

func TestS3Uploader_ListObjects(t *testing.T) {
	client, server := setupFakeS3(t)
	defer server.Close()

	createTestBucket(t, client, "test-bucket")

	tmpDir := t.TempDir()
	writeTempFile(t, tmpDir, "one.md", "1")
	writeTempFile(t, tmpDir, "two.md", "2")

	uploader := newS3UploaderWithClient(client, "test-bucket", "documents/", 2)
	_, err := uploader.UploadDirectory(context.Background(), tmpDir, false)
	require.NoError(t, err)

	// Object outside the prefix should not be listed
	writeTempFile(t, tmpDir, "stray.md", "3")
	other := newS3UploaderWithClient(client, "test-bucket", "other/", 1)
	_, err = other.UploadFile(context.Background(), filepath.Join(tmpDir, "stray.md"))
	require.NoError(t, err)

	keys, err := uploader.ListObjects(context.Background())
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"documents/one.md", "documents/two.md"}, keys)
}
