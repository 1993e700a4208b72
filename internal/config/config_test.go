package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("AWS_REGION", "")
	t.Setenv("S3_PREFIX", "")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "us-east-1", cfg.AWSRegion)
	require.Equal(t, "documents/", cfg.S3Prefix)
	require.Equal(t, "amazon.titan-embed-text-v1", cfg.EmbeddingModel)
	require.Equal(t, "meta.llama3-1-70b-instruct-v1:0", cfg.GenerationModel)
	require.Equal(t, 5, cfg.UploadConcurrency)
	require.Equal(t, 10*time.Second, cfg.IngestPollInterval)
	require.Equal(t, 600*time.Second, cfg.IngestTimeout)
	require.Equal(t, 30*time.Second, cfg.CollectionPollInterval)
	require.Equal(t, 1200*time.Second, cfg.CollectionTimeout)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("AWS_REGION", "ap-northeast-1")
	t.Setenv("AWS_S3_BUCKET", "docs-bucket")
	t.Setenv("S3_PREFIX", "reports")
	t.Setenv("KNOWLEDGE_BASE_ID", "KB12345678")
	t.Setenv("BEDROCK_LLM_MODEL", "anthropic.claude-3-5-sonnet-20240620-v1:0")
	t.Setenv("INGEST_POLL_INTERVAL", "2s")
	t.Setenv("INGEST_TIMEOUT", "90s")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "ap-northeast-1", cfg.AWSRegion)
	require.Equal(t, "docs-bucket", cfg.S3Bucket)
	require.Equal(t, "reports/", cfg.S3Prefix, "prefix should gain a trailing slash")
	require.Equal(t, "KB12345678", cfg.KnowledgeBaseID)
	require.Equal(t, "anthropic.claude-3-5-sonnet-20240620-v1:0", cfg.GenerationModel)
	require.Equal(t, 2*time.Second, cfg.IngestPollInterval)
	require.Equal(t, 90*time.Second, cfg.IngestTimeout)
}

func TestLoadClampsConcurrency(t *testing.T) {
	t.Run("below minimum", func(t *testing.T) {
		t.Setenv("UPLOAD_CONCURRENCY", "0")

		cfg, err := Load()
		require.NoError(t, err)
		require.Equal(t, 1, cfg.UploadConcurrency)
	})

	t.Run("above maximum", func(t *testing.T) {
		t.Setenv("UPLOAD_CONCURRENCY", "50")

		cfg, err := Load()
		require.NoError(t, err)
		require.Equal(t, 20, cfg.UploadConcurrency)
	})
}

func TestLoadRejectsInvertedPolling(t *testing.T) {
	t.Setenv("INGEST_POLL_INTERVAL", "120s")
	t.Setenv("INGEST_TIMEOUT", "60s")

	_, err := Load()
	require.Error(t, err)
	require.Contains(t, err.Error(), "INGEST_POLL_INTERVAL")
}

func TestNormalizePrefix(t *testing.T) {
	require.Equal(t, "", NormalizePrefix(""))
	require.Equal(t, "documents/", NormalizePrefix("documents"))
	require.Equal(t, "documents/", NormalizePrefix("documents/"))
	require.Equal(t, "a/b/", NormalizePrefix("a/b"))
}
