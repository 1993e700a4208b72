package query

import (
	"context"
	"fmt"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrock"

	"github.com/Bhadri2015-SB/Bedrock/internal/types"
)

// ModelLister lists the foundation models available in a region
type ModelLister struct {
	control ControlPlaneAPI
}

// NewModelLister creates a model lister from an AWS configuration
func NewModelLister(awsConfig aws.Config) *ModelLister {
	return &ModelLister{control: bedrock.NewFromConfig(awsConfig)}
}

// List returns the available foundation models sorted by provider then model ID
func (l *ModelLister) List(ctx context.Context) ([]types.ModelInfo, error) {
	out, err := l.control.ListFoundationModels(ctx, &bedrock.ListFoundationModelsInput{})
	if err != nil {
		return nil, fmt.Errorf("failed to list foundation models: %w", err)
	}

	models := make([]types.ModelInfo, 0, len(out.ModelSummaries))
	for _, summary := range out.ModelSummaries {
		models = append(models, types.ModelInfo{
			ID:       aws.ToString(summary.ModelId),
			Name:     aws.ToString(summary.ModelName),
			Provider: aws.ToString(summary.ProviderName),
			ARN:      aws.ToString(summary.ModelArn),
		})
	}

	sort.Slice(models, func(i, j int) bool {
		if models[i].Provider != models[j].Provider {
			return models[i].Provider < models[j].Provider
		}
		return models[i].ID < models[j].ID
	})

	return models, nil
}
