package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	configPath string
	envPath    string
)

var rootCmd = &cobra.Command{
	Use:   "billing-scraper",
	Short: "billing-scraper pages through an AG Grid billing table and prints its rows.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Load(envPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", envPath, err)
		}
		return nil
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.yaml", "Path to configuration file (skipped if missing)")
	rootCmd.PersistentFlags().StringVar(&envPath, "env", ".env", "Path to a .env file with credentials (skipped if missing)")

	rootCmd.AddCommand(scrapeCmd, snapshotCmd, rowCmd)
}

func main() {
	// stdout carries the records; progress goes to stderr tagged with the run
	log.SetOutput(os.Stderr)
	log.SetPrefix(fmt.Sprintf("[%s] ", uuid.NewString()[:8]))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
