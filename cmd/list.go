package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Bhadri2015-SB/Bedrock/internal/knowledgebase"
	"github.com/Bhadri2015-SB/Bedrock/internal/query"
)

var (
	listDataSources bool
	listModels      bool
	listJSON        bool
	listKBID        string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List knowledge bases, data sources, or foundation models",
	Long: `
List knowledge bases in the configured region. With --data-sources, list the
data sources of the configured knowledge base instead. With --models, list the
foundation models available in the region.

Examples:
  bedrock list
  bedrock list --data-sources --kb-id KB123
  bedrock list --models --json
`,
	RunE: runList,
}

func init() {
	listCmd.Flags().BoolVar(&listDataSources, "data-sources", false, "List data sources of the configured knowledge base")
	listCmd.Flags().BoolVar(&listModels, "models", false, "List foundation models available in the region")
	listCmd.Flags().BoolVarP(&listJSON, "json", "j", false, "Output in JSON format")
	listCmd.Flags().StringVar(&listKBID, "kb-id", "", "Knowledge base ID (overrides KNOWLEDGE_BASE_ID)")
}

func runList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	ctx := context.Background()
	awsConfig, err := loadAWSConfig(ctx, cfg)
	if err != nil {
		return err
	}

	switch {
	case listModels:
		models, err := query.NewModelLister(awsConfig).List(ctx)
		if err != nil {
			return err
		}
		if listJSON {
			return printJSON(models)
		}
		fmt.Printf("Foundation models in %s (%d):\n", cfg.AWSRegion, len(models))
		for _, model := range models {
			fmt.Printf("  %-50s %s (%s)\n", model.ID, model.Name, model.Provider)
		}
		return nil

	case listDataSources:
		kbID := listKBID
		if kbID == "" {
			kbID = cfg.KnowledgeBaseID
		}
		if kbID == "" {
			return fmt.Errorf("--kb-id or KNOWLEDGE_BASE_ID is required to list data sources")
		}
		client := knowledgebase.NewClient(awsConfig, &knowledgebase.ClientConfig{Region: cfg.AWSRegion})
		sources, err := client.ListDataSources(ctx, kbID)
		if err != nil {
			return err
		}
		if listJSON {
			return printJSON(sources)
		}
		fmt.Printf("Data sources for %s (%d):\n", kbID, len(sources))
		for _, ds := range sources {
			fmt.Printf("  %-15s %-30s %s\n", ds.ID, ds.Name, ds.Status)
		}
		return nil

	default:
		client := knowledgebase.NewClient(awsConfig, &knowledgebase.ClientConfig{Region: cfg.AWSRegion})
		bases, err := client.ListKnowledgeBases(ctx)
		if err != nil {
			return err
		}
		if listJSON {
			return printJSON(bases)
		}
		if len(bases) == 0 {
			fmt.Println("No knowledge bases found.")
			return nil
		}
		fmt.Printf("Knowledge bases (%d):\n", len(bases))
		for _, kb := range bases {
			fmt.Printf("  %-15s %-30s %s\n", kb.ID, kb.Name, kb.Status)
		}
		return nil
	}
}

func printJSON(v any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
