package cmd

import (
	"fmt"

	"algoquest/config"
	"algoquest/services"

	"github.com/spf13/cobra"
)

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Repair best scores from the attempt log once and exit",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := config.InitDB(cfg)
		if err != nil {
			return err
		}

		redisClient := config.InitRedis(cfg)
		defer redisClient.Close()
		cache := services.NewProgressCache(redisClient, cfg.ProgressCacheTTL, log)

		repaired, err := services.NewReconciler(db, cache, nil, log).Reconcile(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "repaired %d score rows\n", repaired)
		return nil
	},
}
