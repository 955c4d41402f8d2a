// Command fetch-skins downloads every wardrobe skin from the GW2 API and
// writes the trimmed snapshot file served by the skin cache.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/nzvengeance/gw2style/internal/config"
	"github.com/nzvengeance/gw2style/internal/gw2"
	"github.com/nzvengeance/gw2style/internal/skins"
)

var (
	outputPath string
	baseURL    string
	rateLimit  float64
	burst      int
	timeout    time.Duration
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "fetch-skins",
	Short: "Build the wardrobe skin snapshot",
	Long:  `Fetches all Armor, Back and Weapon skins from the Guild Wars 2 API and writes them to a JSON snapshot file.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := zerolog.InfoLevel
		if verbose {
			level = zerolog.DebugLevel
		}
		zerolog.SetGlobalLevel(level)
	},
	RunE: runFetch,
}

func init() {
	// Flag defaults come from the environment, so the logger has to be set
	// before the .env file is read.
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	config.LoadDotEnv(".env")
	cfg := config.Load()

	rootCmd.Flags().StringVarP(&outputPath, "output", "o", cfg.SkinSnapshotPath, "snapshot file to write")
	rootCmd.Flags().StringVar(&baseURL, "base-url", cfg.GW2BaseURL, "GW2 API base URL")
	rootCmd.Flags().Float64Var(&rateLimit, "rate-limit", cfg.GW2RateLimit, "requests per second")
	rootCmd.Flags().IntVar(&burst, "burst", cfg.GW2Burst, "request burst size")
	rootCmd.Flags().DurationVar(&timeout, "timeout", 30*time.Minute, "overall fetch timeout")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log every batch")
}

func runFetch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	client := gw2.NewClient(baseURL, rateLimit, burst)

	snap, err := skins.NewFetcher(client).Fetch(ctx)
	if err != nil {
		return fmt.Errorf("fetching skins: %w", err)
	}

	if err := skins.NewFileStore(outputPath).Save(ctx, snap); err != nil {
		return err
	}

	byType := skins.CountByType(snap)
	log.Info().
		Str("path", outputPath).
		Str("version", snap.Version).
		Int("count", snap.Count).
		Int("armor", byType["Armor"]).
		Int("back", byType["Back"]).
		Int("weapon", byType["Weapon"]).
		Dur("took", time.Since(start)).
		Msg("skin snapshot written")
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
