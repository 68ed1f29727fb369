package cmd

import (
	"fmt"
	"os"

	"algoquest/config"
	"algoquest/logger"

	"github.com/spf13/cobra"
)

var (
	cfg *config.Config
	log *logger.Logger
)

var rootCmd = &cobra.Command{
	Use:   "algoquest",
	Short: "AlgoQuest game backend",
	Long: `AlgoQuest serves the REST API and realtime feed behind the AlgoQuest
game: accounts, answer grading, scores, badges and mission progress.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if log != nil {
			log.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return serveCmd.RunE(cmd, args)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(reconcileCmd)
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setup loads the configuration and the logger shared by every command.
func setup(cmd *cobra.Command, args []string) error {
	loaded, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	l, err := logger.New(loaded.LogMode)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	cfg = loaded
	log = l
	return nil
}
