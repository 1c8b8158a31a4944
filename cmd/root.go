package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/mudguts/cmdrlog/internal/utils"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

var cfgFile string

const (
	LOGO = `                    _      _
   ___ _ __ ___   __| |_ __| | ___   __ _
  / __| '_ ' _ \ / _' | '__| |/ _ \ / _' |
 | (__| | | | | | (_| | |  | | (_) | (_| |
  \___|_| |_| |_|\__,_|_|  |_|\___/ \__, |
                                    |___/
`
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "cmdrlog",
	Short: "A commander's log keeper for Elite Dangerous journals.",
	Long: LOGO + `cmdrlog ingests Elite Dangerous journal files into a per-day activity
history, tracks inventory changes between runs, and turns any day's history
into an in-character commander's log via a local LLM.`,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.cmdrlog.yaml)")
	rootCmd.PersistentFlags().StringP("loglevel", "l", "info", "Set log level. Available: debug, info, warn, error, fatal")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		viper.AddConfigPath(home)
		viper.SetConfigName(".cmdrlog")
		viper.SetConfigType("yaml")
	}

	viper.AutomaticEnv()

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found; create it with defaults.
			home, _ := homedir.Dir()
			configPath := home + "/.cmdrlog.yaml"
			if err := viper.SafeWriteConfigAs(configPath); err != nil {
				fmt.Printf("Error creating config file: %s", err)
			}
		}
	}

	home, _ := homedir.Dir()
	dataDir := filepath.Join(home, ".cmdrlog")

	// Set default values for all keys
	viper.SetDefault("journal.dir", "")
	viper.SetDefault("state.dir", dataDir)
	viper.SetDefault("knowledge.dir", filepath.Join(dataDir, "knowledge"))
	viper.SetDefault("diary.dir", filepath.Join(dataDir, "diary"))
	viper.SetDefault("archive.enabled", true)
	viper.SetDefault("archive.path", filepath.Join(dataDir, "archive.sqlite"))
	viper.SetDefault("commander.name", "CMDR Toadie Mudguts")
	viper.SetDefault("lmstudio.endpoint", "http://localhost:1234/v1/chat/completions")
	viper.SetDefault("lmstudio.model", "")
	viper.SetDefault("lmstudio.api_key", "")
	viper.SetDefault("galnet.url", "https://community.elitedangerous.com")

	// Init log library
	levelString, _ := rootCmd.PersistentFlags().GetString("loglevel")
	utils.SetLogLevel(levelString)
}
