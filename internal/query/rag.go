package query

import (
	"context"
	"fmt"
	"log"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockagentruntime"
	barttypes "github.com/aws/aws-sdk-go-v2/service/bedrockagentruntime/types"

	"github.com/Bhadri2015-SB/Bedrock/internal/types"
)

const (
	ragNumberOfResults = 5
	ragTemperature     = 0.5
	ragTopP            = 0.9
	ragMaxTokens       = 512
)

// RetrieveAndGenerate runs the managed retrieve-and-generate flow where
// Bedrock performs both retrieval and answer generation server side
func (q *Querier) RetrieveAndGenerate(ctx context.Context, question string) (*types.GeneratedAnswer, error) {
	if question == "" {
		return nil, fmt.Errorf("question cannot be empty")
	}
	if q.modelARN == "" {
		return nil, fmt.Errorf("model ARN is required for retrieve-and-generate")
	}

	inferenceConfig := &barttypes.InferenceConfig{
		TextInferenceConfig: &barttypes.TextInferenceConfig{
			Temperature: aws.Float32(ragTemperature),
			TopP:        aws.Float32(ragTopP),
			MaxTokens:   aws.Int32(ragMaxTokens),
		},
	}

	log.Printf("Running retrieve-and-generate with model: %s", q.modelARN)
	out, err := q.runtime.RetrieveAndGenerate(ctx, &bedrockagentruntime.RetrieveAndGenerateInput{
		Input: &barttypes.RetrieveAndGenerateInput{
			Text: aws.String(question),
		},
		RetrieveAndGenerateConfiguration: &barttypes.RetrieveAndGenerateConfiguration{
			Type: barttypes.RetrieveAndGenerateTypeKnowledgeBase,
			KnowledgeBaseConfiguration: &barttypes.KnowledgeBaseRetrieveAndGenerateConfiguration{
				KnowledgeBaseId: aws.String(q.kbID),
				ModelArn:        aws.String(q.modelARN),
				RetrievalConfiguration: &barttypes.KnowledgeBaseRetrievalConfiguration{
					VectorSearchConfiguration: &barttypes.KnowledgeBaseVectorSearchConfiguration{
						NumberOfResults: aws.Int32(ragNumberOfResults),
					},
				},
				GenerationConfiguration: &barttypes.GenerationConfiguration{
					InferenceConfig: inferenceConfig,
				},
				OrchestrationConfiguration: &barttypes.OrchestrationConfiguration{
					InferenceConfig: inferenceConfig,
				},
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve and generate: %w", err)
	}

	answer := &types.GeneratedAnswer{Question: question}
	if out.Output != nil {
		answer.Answer = aws.ToString(out.Output.Text)
	}
	for _, citation := range out.Citations {
		for _, ref := range citation.RetrievedReferences {
			doc := types.RetrievedDocument{}
			if ref.Content != nil {
				doc.Content = aws.ToString(ref.Content.Text)
			}
			if ref.Location != nil && ref.Location.S3Location != nil {
				doc.SourceURI = aws.ToString(ref.Location.S3Location.Uri)
			}
			doc.FileName = fileNameFromURI(doc.SourceURI)
			answer.Sources = append(answer.Sources, doc)
		}
	}

	return answer, nil
}
