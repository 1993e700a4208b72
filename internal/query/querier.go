package query

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrock"
	"github.com/aws/aws-sdk-go-v2/service/bedrockagentruntime"
	barttypes "github.com/aws/aws-sdk-go-v2/service/bedrockagentruntime/types"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"

	"github.com/Bhadri2015-SB/Bedrock/internal/types"
)

// NoAnswerText is returned when retrieval finds nothing to ground a response on
const NoAnswerText = "I couldn't find any relevant information in the knowledge base to answer your question."

// AgentRuntimeAPI is the subset of the Bedrock Agent runtime client used here
type AgentRuntimeAPI interface {
	Retrieve(ctx context.Context, params *bedrockagentruntime.RetrieveInput, optFns ...func(*bedrockagentruntime.Options)) (*bedrockagentruntime.RetrieveOutput, error)
	RetrieveAndGenerate(ctx context.Context, params *bedrockagentruntime.RetrieveAndGenerateInput, optFns ...func(*bedrockagentruntime.Options)) (*bedrockagentruntime.RetrieveAndGenerateOutput, error)
}

// ModelRuntimeAPI is the subset of the Bedrock runtime client used here
type ModelRuntimeAPI interface {
	InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error)
}

// ControlPlaneAPI is the subset of the Bedrock control-plane client used here
type ControlPlaneAPI interface {
	ListFoundationModels(ctx context.Context, params *bedrock.ListFoundationModelsInput, optFns ...func(*bedrock.Options)) (*bedrock.ListFoundationModelsOutput, error)
}

// Querier retrieves ranked snippets from a knowledge base and optionally
// layers LLM generation on top
type Querier struct {
	runtime AgentRuntimeAPI
	model   ModelRuntimeAPI

	kbID            string
	generationModel string
	modelARN        string
}

// QuerierConfig holds the configuration for the querier
type QuerierConfig struct {
	KnowledgeBaseID string
	GenerationModel string
	ModelARN        string
}

// NewQuerier creates a querier from an AWS configuration
func NewQuerier(awsConfig aws.Config, cfg *QuerierConfig) (*Querier, error) {
	if cfg.KnowledgeBaseID == "" {
		return nil, fmt.Errorf("knowledge base ID is required")
	}

	return &Querier{
		runtime:         bedrockagentruntime.NewFromConfig(awsConfig),
		model:           bedrockruntime.NewFromConfig(awsConfig),
		kbID:            cfg.KnowledgeBaseID,
		generationModel: cfg.GenerationModel,
		modelARN:        cfg.ModelARN,
	}, nil
}

// Retrieve runs vector-similarity retrieval and returns ranked snippets
func (q *Querier) Retrieve(ctx context.Context, question string, maxResults int) (*types.QueryResult, error) {
	if question == "" {
		return nil, fmt.Errorf("question cannot be empty")
	}
	if maxResults < 1 {
		maxResults = 1
	}

	out, err := q.runtime.Retrieve(ctx, &bedrockagentruntime.RetrieveInput{
		KnowledgeBaseId: aws.String(q.kbID),
		RetrievalQuery: &barttypes.KnowledgeBaseQuery{
			Text: aws.String(question),
		},
		RetrievalConfiguration: &barttypes.KnowledgeBaseRetrievalConfiguration{
			VectorSearchConfiguration: &barttypes.KnowledgeBaseVectorSearchConfiguration{
				NumberOfResults: aws.Int32(int32(maxResults)),
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query knowledge base: %w", err)
	}

	result := &types.QueryResult{Question: question}
	for _, item := range out.RetrievalResults {
		doc := types.RetrievedDocument{}
		if item.Content != nil {
			doc.Content = aws.ToString(item.Content.Text)
		}
		if item.Location != nil && item.Location.S3Location != nil {
			doc.SourceURI = aws.ToString(item.Location.S3Location.Uri)
		}
		doc.FileName = fileNameFromURI(doc.SourceURI)
		if item.Score != nil {
			doc.Score = *item.Score
		}
		result.Documents = append(result.Documents, doc)
	}

	return result, nil
}

// Answer retrieves snippets for the question and generates a grounded answer
// with the configured model. The confidence score is the mean of the
// retrieval scores clamped to [0,1].
func (q *Querier) Answer(ctx context.Context, question string, maxResults int, modelID string) (*types.GeneratedAnswer, error) {
	retrieval, err := q.Retrieve(ctx, question, maxResults)
	if err != nil {
		return nil, err
	}

	if len(retrieval.Documents) == 0 {
		return &types.GeneratedAnswer{
			Question:   question,
			Answer:     NoAnswerText,
			Confidence: 0.0,
		}, nil
	}

	docContext := buildContext(retrieval.Documents)
	prompt := buildPrompt(question, docContext)

	if modelID == "" {
		modelID = q.generationModel
	}

	log.Printf("Generating answer with model: %s", modelID)
	answer, err := q.generate(ctx, modelID, prompt)
	if err != nil {
		return nil, err
	}

	return &types.GeneratedAnswer{
		Question:   question,
		Answer:     answer,
		Confidence: confidenceScore(retrieval.Documents),
		Sources:    retrieval.Documents,
	}, nil
}

// confidenceScore averages retrieval scores and clamps the result to [0,1]
func confidenceScore(docs []types.RetrievedDocument) float64 {
	if len(docs) == 0 {
		return 0.0
	}

	var sum float64
	for _, doc := range docs {
		sum += doc.Score
	}
	avg := sum / float64(len(docs))

	if avg < 0.0 {
		return 0.0
	}
	if avg > 1.0 {
		return 1.0
	}
	return avg
}

// buildContext formats retrieved snippets into a numbered context block
func buildContext(docs []types.RetrievedDocument) string {
	var parts []string
	for i, doc := range docs {
		parts = append(parts, fmt.Sprintf("Document %d [Source: %s]\n%s\n", i+1, doc.FileName, doc.Content))
	}
	return strings.Join(parts, "\n")
}

func buildPrompt(question, docContext string) string {
	return fmt.Sprintf(`You are a helpful assistant that answers questions based only on the provided context.
Be concise and factual. If you don't know the answer or if the information isn't in the context, say so.

Context:
%s

Question: %s

Answer:`, docContext, question)
}

func fileNameFromURI(uri string) string {
	if uri == "" {
		return "Unknown"
	}
	if idx := strings.LastIndex(uri, "/"); idx >= 0 && idx < len(uri)-1 {
		return uri[idx+1:]
	}
	return uri
}
