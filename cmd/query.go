package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Bhadri2015-SB/Bedrock/internal/query"
)

var (
	queryText       string
	queryMaxResults int
	queryRaw        bool
	queryRAG        bool
	queryModel      string
	queryJSON       bool
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Ask a question against the knowledge base",
	Long: `
Ask a question against the configured knowledge base. By default the command
retrieves relevant snippets and generates a grounded answer with the
configured model. With --raw, only the retrieved snippets are shown. With
--rag, Bedrock's managed retrieve-and-generate flow is used instead
(requires BEDROCK_MODEL_ARN).

Examples:
  bedrock query -q "How do I rotate credentials?"
  bedrock query -q "What regions are supported?" --raw --max-results 10
  bedrock query -q "Summarize the upgrade guide" --rag
`,
	RunE: runQueryCmd,
}

func init() {
	queryCmd.Flags().StringVarP(&queryText, "question", "q", "", "Question to ask (required)")
	queryCmd.Flags().IntVarP(&queryMaxResults, "max-results", "k", 5, "Number of snippets to retrieve")
	queryCmd.Flags().BoolVar(&queryRaw, "raw", false, "Show retrieved snippets without generation")
	queryCmd.Flags().BoolVar(&queryRAG, "rag", false, "Use the managed retrieve-and-generate flow")
	queryCmd.Flags().StringVarP(&queryModel, "model", "m", "", "Generation model ID (overrides BEDROCK_LLM_MODEL)")
	queryCmd.Flags().BoolVarP(&queryJSON, "json", "j", false, "Output in JSON format")

	if err := queryCmd.MarkFlagRequired("question"); err != nil {
		panic(err)
	}
}

func runQueryCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if cfg.KnowledgeBaseID == "" {
		return fmt.Errorf("KNOWLEDGE_BASE_ID is required")
	}

	ctx := context.Background()
	awsConfig, err := loadAWSConfig(ctx, cfg)
	if err != nil {
		return err
	}

	querier, err := query.NewQuerier(awsConfig, &query.QuerierConfig{
		KnowledgeBaseID: cfg.KnowledgeBaseID,
		GenerationModel: cfg.GenerationModel,
		ModelARN:        cfg.ModelARN,
	})
	if err != nil {
		return err
	}

	switch {
	case queryRaw:
		result, err := querier.Retrieve(ctx, queryText, queryMaxResults)
		if err != nil {
			return err
		}
		if queryJSON {
			return printJSON(result)
		}
		printRetrievalResult(result)
		return nil

	case queryRAG:
		answer, err := querier.RetrieveAndGenerate(ctx, queryText)
		if err != nil {
			return err
		}
		if queryJSON {
			return printJSON(answer)
		}
		printGeneratedAnswer(answer, false)
		return nil

	default:
		answer, err := querier.Answer(ctx, queryText, queryMaxResults, queryModel)
		if err != nil {
			return err
		}
		if queryJSON {
			return printJSON(answer)
		}
		printGeneratedAnswer(answer, true)
		return nil
	}
}
