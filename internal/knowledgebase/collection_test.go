package knowledgebase

import (
	"context"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/opensearchserverless"
	osstypes "github.com/aws/aws-sdk-go-v2/service/opensearchserverless/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCollectionAPI struct {
	createCollection   func(*opensearchserverless.CreateCollectionInput) (*opensearchserverless.CreateCollectionOutput, error)
	batchGetCollection func(*opensearchserverless.BatchGetCollectionInput) (*opensearchserverless.BatchGetCollectionOutput, error)
}

func (f *fakeCollectionAPI) CreateCollection(ctx context.Context, params *opensearchserverless.CreateCollectionInput, optFns ...func(*opensearchserverless.Options)) (*opensearchserverless.CreateCollectionOutput, error) {
	return f.createCollection(params)
}

func (f *fakeCollectionAPI) BatchGetCollection(ctx context.Context, params *opensearchserverless.BatchGetCollectionInput, optFns ...func(*opensearchserverless.Options)) (*opensearchserverless.BatchGetCollectionOutput, error) {
	return f.batchGetCollection(params)
}

func newTestProvisioner(api CollectionAPI) *CollectionProvisioner {
	return &CollectionProvisioner{
		client:       api,
		pollInterval: time.Millisecond,
		pollTimeout:  100 * time.Millisecond,
	}
}

func collectionOutput(arn string, status osstypes.CollectionStatus) *opensearchserverless.BatchGetCollectionOutput {
	return &opensearchserverless.BatchGetCollectionOutput{
		CollectionDetails: []osstypes.CollectionDetail{
			{Arn: aws.String(arn), Name: aws.String("docs-kb-vectors"), Status: status},
		},
	}
}

func TestEnsureCollection_ReusesActiveCollection(t *testing.T) {
	created := false
	api := &fakeCollectionAPI{
		createCollection: func(params *opensearchserverless.CreateCollectionInput) (*opensearchserverless.CreateCollectionOutput, error) {
			created = true
			return nil, nil
		},
		batchGetCollection: func(params *opensearchserverless.BatchGetCollectionInput) (*opensearchserverless.BatchGetCollectionOutput, error) {
			assert.Equal(t, []string{"docs-kb-vectors"}, params.Names)
			return collectionOutput("arn:aws:aoss:us-east-1:123456789012:collection/abc", osstypes.CollectionStatusActive), nil
		},
	}

	arn, err := newTestProvisioner(api).EnsureCollection(context.Background(), "docs-kb-vectors")
	require.NoError(t, err)
	assert.Equal(t, "arn:aws:aoss:us-east-1:123456789012:collection/abc", arn)
	assert.False(t, created, "existing active collection should not be recreated")
}

func TestEnsureCollection_CreatesAndWaitsForActivation(t *testing.T) {
	lookups := 0
	created := false
	api := &fakeCollectionAPI{
		createCollection: func(params *opensearchserverless.CreateCollectionInput) (*opensearchserverless.CreateCollectionOutput, error) {
			created = true
			assert.Equal(t, osstypes.CollectionTypeVectorsearch, params.Type)
			return &opensearchserverless.CreateCollectionOutput{
				CreateCollectionDetail: &osstypes.CreateCollectionDetail{
					Arn:    aws.String("arn:aws:aoss:us-east-1:123456789012:collection/new"),
					Status: osstypes.CollectionStatusCreating,
				},
			}, nil
		},
		batchGetCollection: func(params *opensearchserverless.BatchGetCollectionInput) (*opensearchserverless.BatchGetCollectionOutput, error) {
			lookups++
			switch {
			case lookups == 1:
				// Initial existence check before creation
				return &opensearchserverless.BatchGetCollectionOutput{}, nil
			case lookups < 4:
				return collectionOutput("arn:aws:aoss:us-east-1:123456789012:collection/new", osstypes.CollectionStatusCreating), nil
			default:
				return collectionOutput("arn:aws:aoss:us-east-1:123456789012:collection/new", osstypes.CollectionStatusActive), nil
			}
		},
	}

	arn, err := newTestProvisioner(api).EnsureCollection(context.Background(), "docs-kb-vectors")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "arn:aws:aoss:us-east-1:123456789012:collection/new", arn)
	assert.GreaterOrEqual(t, lookups, 4)
}

func TestEnsureCollection_FailedState(t *testing.T) {
	api := &fakeCollectionAPI{
		batchGetCollection: func(params *opensearchserverless.BatchGetCollectionInput) (*opensearchserverless.BatchGetCollectionOutput, error) {
			return collectionOutput("arn:aws:aoss:us-east-1:123456789012:collection/bad", osstypes.CollectionStatusFailed), nil
		},
	}

	_, err := newTestProvisioner(api).EnsureCollection(context.Background(), "docs-kb-vectors")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "FAILED")
}

func TestEnsureCollection_ActivationTimeout(t *testing.T) {
	api := &fakeCollectionAPI{
		batchGetCollection: func(params *opensearchserverless.BatchGetCollectionInput) (*opensearchserverless.BatchGetCollectionOutput, error) {
			return collectionOutput("arn:aws:aoss:us-east-1:123456789012:collection/slow", osstypes.CollectionStatusCreating), nil
		},
	}

	p := newTestProvisioner(api)
	p.pollTimeout = 5 * time.Millisecond

	// Timeout returns the ARN anyway; activation continues remotely
	arn, err := p.EnsureCollection(context.Background(), "docs-kb-vectors")
	require.NoError(t, err)
	assert.Equal(t, "arn:aws:aoss:us-east-1:123456789012:collection/slow", arn)
}

func TestEnsureCollection_RequiresName(t *testing.T) {
	_, err := newTestProvisioner(&fakeCollectionAPI{}).EnsureCollection(context.Background(), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "collection name is required")
}
