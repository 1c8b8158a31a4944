package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mudguts/cmdrlog/pkg/state"
)

// dayExport is the per-date document downstream consumers read. They never
// touch journals or snapshots directly.
type dayExport struct {
	Commander  string   `json:"commander"`
	Date       string   `json:"date"`
	Activities []string `json:"activities"`
}

// exportCmd implements: cmdrlog export
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export per-date history as JSON for downstream consumers",
	RunE: func(cmd *cobra.Command, args []string) error {
		date, _ := cmd.Flags().GetString("date")
		outDir, _ := cmd.Flags().GetString("out")
		all, _ := cmd.Flags().GetBool("all")

		history := state.LoadHistory(viper.GetString("state.dir"))
		dates := history.Dates()
		if len(dates) == 0 {
			return fmt.Errorf("no history yet; run 'cmdrlog ingest' first")
		}

		commander := viper.GetString("commander.name")
		write := func(d string) error {
			doc := dayExport{Commander: commander, Date: d, Activities: history[d]}
			data, err := json.MarshalIndent(doc, "", "  ")
			if err != nil {
				return err
			}
			data = append(data, '\n')
			if outDir == "" {
				_, err = os.Stdout.Write(data)
				return err
			}
			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return err
			}
			return os.WriteFile(filepath.Join(outDir, d+".json"), data, 0o644)
		}

		if all {
			if outDir == "" {
				return fmt.Errorf("--all requires --out")
			}
			for _, d := range dates {
				if err := write(d); err != nil {
					return err
				}
			}
			fmt.Printf("Exported %d date(s) to %s\n", len(dates), outDir)
			return nil
		}

		if date == "" {
			date = dates[len(dates)-1]
		}
		if _, ok := history[date]; !ok {
			return fmt.Errorf("no history for %s", date)
		}
		return write(date)
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().String("date", "", "Date to export (YYYY-MM-DD, default latest)")
	exportCmd.Flags().String("out", "", "Directory to write <date>.json into (default stdout)")
	exportCmd.Flags().Bool("all", false, "Export every date in the history")
}
