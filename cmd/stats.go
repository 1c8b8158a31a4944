package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mudguts/cmdrlog/pkg/archive"
)

// statsCmd represents the stats command
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print event statistics from the archive.",
	Long:  "Prints per-event-type and per-date counts from the sqlite event archive.",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := viper.GetString("archive.path")
		if _, err := os.Stat(path); err != nil {
			return fmt.Errorf("no event archive at %s; run 'cmdrlog ingest' with archiving enabled first", path)
		}

		db, err := archive.Open(path)
		if err != nil {
			return err
		}
		defer db.Close()

		byType, err := db.TypeStats(context.Background())
		if err != nil {
			return err
		}
		if len(byType) == 0 {
			fmt.Println("No events in the archive to generate stats.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.AlignRight)
		fmt.Fprintln(w, "EVENT\tCATEGORY\tCOUNT\t")
		total := 0
		for _, s := range byType {
			fmt.Fprintf(w, "%s\t%s\t%d\t\n", s.EventType, s.Category, s.Count)
			total += s.Count
		}
		fmt.Fprintf(w, "TOTAL\t\t%d\t\n", total)
		w.Flush()

		byDate, err := db.DateStats(context.Background())
		if err != nil {
			return err
		}
		fmt.Println()
		dw := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.AlignRight)
		fmt.Fprintln(dw, "DATE\tEVENTS\t")
		for _, s := range byDate {
			fmt.Fprintf(dw, "%s\t%d\t\n", s.Date, s.Count)
		}
		dw.Flush()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
