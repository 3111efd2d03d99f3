package commands

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/Houeta/pricewatch/internal/config"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	envFiles   []string
	jsonOutput bool

	cfg    *config.Config
	logger *slog.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "pricewatch",
	Short: "Track product prices across online shops",
	Long: `pricewatch scrapes product listings from configured shops, keeps a price history
per product and notifies users when a watched price drops.

Configuration is read from CF_-prefixed environment variables and an optional .env file.`,
	SilenceUsage: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		loaded, err := config.Load(envFiles...)
		if err != nil {
			return err
		}
		cfg = loaded
		logger = setupLogger(cfg.Env)

		return nil
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringSliceVar(&envFiles, "env-file", nil, "Env files to load before reading the environment (default .env)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")

	rootCmd.AddCommand(serveCmd, scrapeCmd, sitesCmd)
}
