package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or clear the scan cache",
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show scan cache statistics",
	Args:  cobra.NoArgs,
	RunE:  runCacheStats,
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every cached scan",
	Args:  cobra.NoArgs,
	RunE:  runCacheClear,
}

func init() {
	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	rootCmd.AddCommand(cacheCmd)
}

func runCacheStats(cmd *cobra.Command, args []string) error {
	a, err := initializeApp(cmd)
	if err != nil {
		return err
	}

	manager, release, err := a.openCache()
	if err != nil {
		return err
	}
	defer release()

	stats, err := manager.GetStats()
	if err != nil {
		return err
	}
	return a.formatter.PrintCacheStats(stats)
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	a, err := initializeApp(cmd)
	if err != nil {
		return err
	}

	if a.cfg.DisableCache {
		a.formatter.PrintInfo("Scan cache is disabled")
		return nil
	}

	manager, release, err := a.openCache()
	if err != nil {
		return err
	}
	defer release()

	removed, err := manager.Clear()
	if err != nil {
		return err
	}
	a.formatter.PrintSuccess(fmt.Sprintf("Removed %d cached scans", removed))
	return nil
}
