package cmd

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Bhadri2015-SB/Bedrock/internal/query"
)

var (
	chatMaxResults int
	chatModelID    string
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Interactive Q&A session against the knowledge base",
	Long: `
Start an interactive session where each question is answered with
retrieval-augmented generation against the configured knowledge base.

Examples:
  bedrock chat
  bedrock chat --max-results 10 --model anthropic.claude-3-5-sonnet-20240620-v1:0
`,
	RunE: runChatCmd,
}

func init() {
	chatCmd.Flags().IntVarP(&chatMaxResults, "max-results", "k", 5, "Number of snippets to retrieve per question")
	chatCmd.Flags().StringVarP(&chatModelID, "model", "m", "", "Generation model ID (overrides BEDROCK_LLM_MODEL)")
}

func runChatCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if cfg.KnowledgeBaseID == "" {
		return fmt.Errorf("KNOWLEDGE_BASE_ID is required")
	}

	awsConfig, err := loadAWSConfig(context.Background(), cfg)
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

	model := chatModelID
	if model == "" {
		model = cfg.GenerationModel
	}
	log.Printf("Chat ready! Knowledge base: %s, model: %s", cfg.KnowledgeBaseID, model)
	fmt.Println("=== Knowledge Base Chat ===")
	fmt.Println("Type 'exit' or 'quit' to end the session")
	fmt.Println("Type 'help' for available commands")
	fmt.Println("===========================")
	fmt.Println()

	return chatLoop(querier)
}

func chatLoop(querier *query.Querier) error {
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print("You: ")
		if !scanner.Scan() {
			break
		}

		input := strings.TrimSpace(scanner.Text())
		switch strings.ToLower(input) {
		case "exit", "quit":
			fmt.Println("Goodbye!")
			return nil
		case "help":
			printChatHelp()
			continue
		case "":
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		answer, err := querier.Answer(ctx, input, chatMaxResults, chatModelID)
		cancel()
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			continue
		}

		fmt.Printf("Assistant: %s\n", answer.Answer)
		if len(answer.Sources) > 0 {
			var names []string
			seen := map[string]bool{}
			for _, source := range answer.Sources {
				if !seen[source.FileName] {
					seen[source.FileName] = true
					names = append(names, source.FileName)
				}
			}
			fmt.Printf("(confidence %.2f, sources: %s)\n", answer.Confidence, strings.Join(names, ", "))
		}
		fmt.Println()
	}

	return scanner.Err()
}

func printChatHelp() {
	fmt.Println("Available commands:")
	fmt.Println("  exit, quit - End the session")
	fmt.Println("  help       - Show this help")
	fmt.Println("Anything else is asked against the knowledge base.")
}
