package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mudguts/cmdrlog/internal/utils"
	"github.com/mudguts/cmdrlog/pkg/archive"
	"github.com/mudguts/cmdrlog/pkg/ingest"
)

// ingestCmd implements: cmdrlog ingest
//
// One batch pass over the journal directory. Safe to re-run at any time:
// already-processed files are skipped and an interrupted run commits nothing.
var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Ingest new journal files into the daily history",
	RunE: func(cmd *cobra.Command, args []string) error {
		journalDir, _ := cmd.Flags().GetString("journal-dir")
		if journalDir == "" {
			journalDir = viper.GetString("journal.dir")
		}
		if journalDir == "" {
			return fmt.Errorf("no journal directory configured (set journal.dir in config or pass --journal-dir)")
		}
		stateDir := viper.GetString("state.dir")

		lock, err := utils.NewRunLock(stateDir)
		if err != nil {
			return err
		}
		if err := lock.Lock(); err != nil {
			return err
		}
		defer lock.Unlock()

		cfg := ingest.Config{
			JournalDir: journalDir,
			StateDir:   stateDir,
		}
		if viper.GetBool("archive.enabled") {
			db, err := archive.Open(viper.GetString("archive.path"))
			if err != nil {
				return fmt.Errorf("opening event archive: %w", err)
			}
			defer db.Close()
			cfg.Archive = db
		}

		runner, err := ingest.NewRunner(cfg)
		if err != nil {
			return err
		}
		stats, err := runner.RunOnce(cmd.Context())
		if err != nil {
			return err
		}
		if stats.FilesIngested > 0 {
			fmt.Printf("Ingested %d file(s) covering %d date(s) for %s.\n",
				stats.FilesIngested, len(stats.DatesTouched), stats.Commander)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(ingestCmd)
	ingestCmd.Flags().String("journal-dir", "", "Journal directory (overrides journal.dir from config)")
}
