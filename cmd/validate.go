package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mudguts/cmdrlog/pkg/knowledge"
)

// validateCmd implements: cmdrlog validate
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate knowledge base entry files",
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := viper.GetString("knowledge.dir")

		mergePrefix, _ := cmd.Flags().GetString("merge")
		if mergePrefix != "" {
			out, _ := cmd.Flags().GetString("out")
			if out == "" {
				return fmt.Errorf("--merge requires --out")
			}
			n, err := knowledge.MergeEntryFiles(dir, mergePrefix, out)
			if err != nil {
				return err
			}
			fmt.Printf("Merged %d entries into %s\n", n, out)
		}

		issues, err := knowledge.Validate(dir)
		if err != nil {
			return err
		}
		if len(issues) == 0 {
			fmt.Printf("All knowledge files in %s are valid.\n", dir)
			return nil
		}
		for _, issue := range issues {
			fmt.Println(issue)
		}
		return fmt.Errorf("%d knowledge file(s) have problems", len(issues))
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().String("merge", "", "Also merge entry files with this filename prefix")
	validateCmd.Flags().String("out", "", "Output file for --merge")
}
