package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mudguts/cmdrlog/internal/utils"
	"github.com/mudguts/cmdrlog/pkg/diary"
	"github.com/mudguts/cmdrlog/pkg/knowledge"
	"github.com/mudguts/cmdrlog/pkg/state"
)

// diaryCmd implements: cmdrlog diary
//
// Generates the in-character log entry for one date of the daily history and
// saves it under diary.dir.
var diaryCmd = &cobra.Command{
	Use:   "diary",
	Short: "Generate a commander's log entry for a date",
	RunE: func(cmd *cobra.Command, args []string) error {
		date, _ := cmd.Flags().GetString("date")

		history := state.LoadHistory(viper.GetString("state.dir"))
		dates := history.Dates()
		if len(dates) == 0 {
			return fmt.Errorf("no history yet; run 'cmdrlog ingest' first")
		}
		if date == "" {
			date = dates[len(dates)-1]
			utils.Log.Infof("No date given, using latest: %s", date)
		}
		activities, ok := history[date]
		if !ok {
			return fmt.Errorf("no history for %s (available: %s .. %s)", date, dates[0], dates[len(dates)-1])
		}

		base, err := knowledge.Load(viper.GetString("knowledge.dir"))
		if err != nil {
			return fmt.Errorf("loading knowledge base: %w", err)
		}
		lore := base.Retrieve(diary.CompressActivities(activities))

		gen, err := diary.NewGenerator(diary.Config{
			Endpoint: viper.GetString("lmstudio.endpoint"),
			Model:    viper.GetString("lmstudio.model"),
			APIKey:   viper.GetString("lmstudio.api_key"),
		})
		if err != nil {
			return err
		}

		commander := viper.GetString("commander.name")
		text, err := gen.Generate(cmd.Context(), commander, date, activities, lore)
		if err != nil {
			return err
		}

		path, err := diary.Save(viper.GetString("diary.dir"), date, text)
		if err != nil {
			return fmt.Errorf("saving diary entry: %w", err)
		}
		fmt.Printf("%s's log for %s:\n\n%s\n\nSaved to %s\n", commander, date, text, path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(diaryCmd)
	diaryCmd.Flags().String("date", "", "History date to narrate (YYYY-MM-DD, default latest)")
}
