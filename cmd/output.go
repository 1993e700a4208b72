package cmd

import (
	"fmt"
	"strings"

	"github.com/Bhadri2015-SB/Bedrock/internal/types"
)

const snippetMaxLen = 200

// printRetrievalResult prints ranked snippets for a raw retrieval
func printRetrievalResult(result *types.QueryResult) {
	if len(result.Documents) == 0 {
		fmt.Println("No relevant documents found.")
		return
	}

	fmt.Printf("Retrieved %d document(s):\n\n", len(result.Documents))
	for i, doc := range result.Documents {
		fmt.Printf("%d. %s (score: %.4f)\n", i+1, doc.FileName, doc.Score)
		fmt.Printf("   %s\n\n", snippet(doc.Content))
	}
}

// printGeneratedAnswer prints a generated answer with its sources.
// Confidence is only meaningful for the local generation flow.
func printGeneratedAnswer(answer *types.GeneratedAnswer, withConfidence bool) {
	fmt.Printf("%s\n\n", answer.Answer)
	if withConfidence {
		fmt.Printf("Confidence: %.2f\n", answer.Confidence)
	}
	if len(answer.Sources) > 0 {
		fmt.Println("Sources:")
		seen := map[string]bool{}
		for _, source := range answer.Sources {
			if seen[source.FileName] {
				continue
			}
			seen[source.FileName] = true
			fmt.Printf("  - %s\n", source.FileName)
		}
	}
}

// printIngestionJob prints the status and statistics of an ingestion job
func printIngestionJob(job *types.IngestionJobInfo) {
	fmt.Printf("Job %s: %s\n", job.ID, job.Status)
	if job.Statistics != nil {
		stats := job.Statistics
		fmt.Printf("  Scanned: %d  New: %d  Modified: %d  Deleted: %d  Failed: %d\n",
			stats.Scanned, stats.NewIndexed, stats.ModifiedIndexed, stats.Deleted, stats.Failed)
	}
	for _, reason := range job.FailureReasons {
		fmt.Printf("  Failure: %s\n", reason)
	}
}

// snippet collapses whitespace and truncates content for terminal display
func snippet(content string) string {
	collapsed := strings.Join(strings.Fields(content), " ")
	if len(collapsed) <= snippetMaxLen {
		return collapsed
	}
	return collapsed[:snippetMaxLen] + "..."
}
