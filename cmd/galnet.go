package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mudguts/cmdrlog/pkg/galnet"
)

// galnetCmd implements: cmdrlog galnet
//
// Fetches the latest GalNet articles, archives them, and refreshes the
// normalized knowledge entries the diary's lore retrieval reads.
var galnetCmd = &cobra.Command{
	Use:   "galnet",
	Short: "Fetch GalNet news into the knowledge base",
	RunE: func(cmd *cobra.Command, args []string) error {
		fetcher := galnet.NewFetcher(viper.GetString("galnet.url"))
		articles, err := fetcher.FetchLatest(cmd.Context())
		if err != nil {
			return fmt.Errorf("fetching GalNet: %w", err)
		}
		if len(articles) == 0 {
			fmt.Println("No GalNet articles found.")
			return nil
		}

		knowledgeDir := viper.GetString("knowledge.dir")
		merged, added, err := galnet.MergeIntoStore(knowledgeDir, articles)
		if err != nil {
			return fmt.Errorf("updating article store: %w", err)
		}
		if added == 0 {
			fmt.Println("No new articles. Knowledge base unchanged.")
			return nil
		}
		if err := galnet.Normalize(merged, filepath.Join(knowledgeDir, "galnet_entries.json")); err != nil {
			return fmt.Errorf("normalizing articles: %w", err)
		}
		fmt.Printf("Stored %d new article(s) out of %d fetched.\n", added, len(articles))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(galnetCmd)
}
