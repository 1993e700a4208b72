package knowledgebase

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/opensearchserverless"
	osstypes "github.com/aws/aws-sdk-go-v2/service/opensearchserverless/types"
	"github.com/google/uuid"
)

// CollectionAPI is the subset of the OpenSearch Serverless client used here
type CollectionAPI interface {
	CreateCollection(ctx context.Context, params *opensearchserverless.CreateCollectionInput, optFns ...func(*opensearchserverless.Options)) (*opensearchserverless.CreateCollectionOutput, error)
	BatchGetCollection(ctx context.Context, params *opensearchserverless.BatchGetCollectionInput, optFns ...func(*opensearchserverless.Options)) (*opensearchserverless.BatchGetCollectionOutput, error)
}

// CollectionProvisioner creates OpenSearch Serverless vector collections and
// waits for them to become active
type CollectionProvisioner struct {
	client       CollectionAPI
	pollInterval time.Duration
	pollTimeout  time.Duration
}

// NewCollectionProvisioner creates a provisioner from an AWS configuration
func NewCollectionProvisioner(awsConfig aws.Config, pollInterval, pollTimeout time.Duration) *CollectionProvisioner {
	if pollInterval <= 0 {
		pollInterval = 30 * time.Second
	}
	if pollTimeout <= 0 {
		pollTimeout = 1200 * time.Second
	}

	return &CollectionProvisioner{
		client:       opensearchserverless.NewFromConfig(awsConfig),
		pollInterval: pollInterval,
		pollTimeout:  pollTimeout,
	}
}

// EnsureCollection returns the ARN of the named VECTORSEARCH collection,
// creating it and waiting for activation when it does not exist yet
func (p *CollectionProvisioner) EnsureCollection(ctx context.Context, name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("collection name is required")
	}

	// Reuse an existing collection regardless of its lifecycle state
	if detail, err := p.findCollection(ctx, name); err != nil {
		return "", err
	} else if detail != nil {
		if detail.Status == osstypes.CollectionStatusActive {
			return aws.ToString(detail.Arn), nil
		}
		log.Printf("Collection %s exists with status %s, waiting for activation", name, detail.Status)
		return p.waitForActive(ctx, name)
	}

	log.Printf("Creating OpenSearch Serverless vector collection: %s", name)
	out, err := p.client.CreateCollection(ctx, &opensearchserverless.CreateCollectionInput{
		Name:        aws.String(name),
		Type:        osstypes.CollectionTypeVectorsearch,
		Description: aws.String(fmt.Sprintf("Vector collection for %s", name)),
		ClientToken: aws.String(uuid.NewString()),
	})
	if err != nil {
		return "", fmt.Errorf("failed to create vector collection: %w", err)
	}
	if out.CreateCollectionDetail == nil {
		return "", fmt.Errorf("create collection response missing collection detail")
	}

	return p.waitForActive(ctx, name)
}

// waitForActive polls the collection until it is ACTIVE. On timeout the last
// known ARN is returned along with a warning; collection creation continues
// remotely.
func (p *CollectionProvisioner) waitForActive(ctx context.Context, name string) (string, error) {
	deadline := time.Now().Add(p.pollTimeout)
	start := time.Now()

	for {
		detail, err := p.findCollection(ctx, name)
		if err != nil {
			return "", err
		}
		if detail == nil {
			return "", fmt.Errorf("collection %s disappeared while waiting for activation", name)
		}

		log.Printf("Collection status: %s (waited %ds)", detail.Status, int(time.Since(start).Seconds()))

		switch detail.Status {
		case osstypes.CollectionStatusActive:
			return aws.ToString(detail.Arn), nil
		case osstypes.CollectionStatusFailed:
			return "", fmt.Errorf("collection %s entered FAILED state", name)
		case osstypes.CollectionStatusDeleting:
			return "", fmt.Errorf("collection %s is being deleted", name)
		}

		if time.Now().After(deadline) {
			log.Printf("Warning: timed out waiting for collection %s to become active", name)
			return aws.ToString(detail.Arn), nil
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(p.pollInterval):
		}
	}
}

func (p *CollectionProvisioner) findCollection(ctx context.Context, name string) (*osstypes.CollectionDetail, error) {
	out, err := p.client.BatchGetCollection(ctx, &opensearchserverless.BatchGetCollectionInput{
		Names: []string{name},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to look up collection %s: %w", name, err)
	}
	if len(out.CollectionDetails) == 0 {
		return nil, nil
	}
	return &out.CollectionDetails[0], nil
}
