// Stockgate — HTTP gateway for stock and market-index data.
//
// Main CLI entrypoint using cobra command framework.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/seenimoa/stockgate/api"
	"github.com/seenimoa/stockgate/internal/config"
	"github.com/seenimoa/stockgate/internal/normalize"
	"github.com/seenimoa/stockgate/internal/yahoo"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Global config
var cfg *config.Config

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "stockgate",
	Short: "Stockgate — stock and market data gateway",
	Long: `Stockgate proxies stock and market-index data from Yahoo Finance,
reshaping the upstream responses into a flat JSON schema for a
frontend client.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Local .env, if present, feeds the env overrides viper reads.
		_ = godotenv.Load()

		var err error
		configFile, _ := cmd.Flags().GetString("config")
		if configFile != "" {
			cfg, err = config.LoadFromFile(configFile)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config/config.yaml)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(quoteCmd)
}

// --- Version Command ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("Stockgate %s\n", version)
		fmt.Printf("  commit:  %s\n", commit)
		fmt.Printf("  built:   %s\n", date)
	},
}

// --- Serve Command ---

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP gateway server",
	RunE: func(cmd *cobra.Command, args []string) error {
		srv := api.NewServer(cfg)
		fmt.Printf("Stockgate listening on %s\n", cfg.Addr())
		return srv.ListenAndServe(cfg.Addr())
	},
}

// --- Quote Command ---

var quoteCmd = &cobra.Command{
	Use:   "quote [symbol]",
	Short: "Fetch and print the normalized detail record for a symbol",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		symbol := args[0]

		client := yahoo.NewClient(yahoo.Config{
			QueryBaseURL: cfg.Yahoo.QueryBaseURL,
			FeedBaseURL:  cfg.Yahoo.FeedBaseURL,
			Timeout:      time.Duration(cfg.Yahoo.TimeoutSec) * time.Second,
		})

		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()

		bundle, err := client.FetchQuoteSummary(ctx, symbol, yahoo.DefaultModules)
		if err != nil {
			return fmt.Errorf("fetch %s: %w", symbol, err)
		}

		detail := normalize.StockDetail(symbol, bundle)
		out, err := json.MarshalIndent(detail, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	},
}
