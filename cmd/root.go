package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/lehigh-university-libraries/crossview/internal/artwork"
	"github.com/lehigh-university-libraries/crossview/internal/config"
	"github.com/lehigh-university-libraries/crossview/internal/dashboard"
	"github.com/lehigh-university-libraries/crossview/internal/images"
)

// globalFlags are shared by every subcommand.
type globalFlags struct {
	configPath string
	dataset    string
	delimiter  string
	verbose    bool
}

func NewRootCmd() *cobra.Command {
	flags := &globalFlags{}

	cmd := &cobra.Command{
		Use:   "crossview",
		Short: "Linked filtering dashboard for artwork datasets",
		Long: `Crossview loads an artwork dataset and serves a dashboard of linked panels.

Each panel (a country map, a year timeline, a depicted-subject treemap, a
movement cluster and an artwork detail card) filters every other panel but
never itself. Small categories are folded into a single "Other" bucket.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()

			level := slog.LevelInfo
			if flags.verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
		},
	}

	cmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "Config file (default ~/.crossview/config.yaml)")
	cmd.PersistentFlags().StringVarP(&flags.dataset, "dataset", "d", "", "Path to the artwork dataset (.csv, .tsv, .jsonl or .parquet)")
	cmd.PersistentFlags().StringVar(&flags.delimiter, "delimiter", "", "Separator of multi-valued columns (default \",\")")
	cmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "Enable debug logging")

	// Add subcommands
	cmd.AddCommand(newServeCmd(flags))
	cmd.AddCommand(newSummaryCmd(flags))
	cmd.AddCommand(newInspectCmd(flags))
	cmd.AddCommand(newConvertCmd(flags))
	cmd.AddCommand(newConfigCmd(flags))

	return cmd
}

// resolve layers the config file, environment and flags.
func (f *globalFlags) resolve(extra config.ResolveOptions) (config.ResolvedConfig, config.Settings, error) {
	extra.ConfigPath = f.configPath
	extra.CLIDataset = f.dataset
	extra.CLIDelimiter = f.delimiter

	resolved, err := config.ResolveConfig(extra)
	if err != nil {
		return resolved, config.Settings{}, fmt.Errorf("failed to resolve config: %w", err)
	}
	settings, err := resolved.Settings()
	return resolved, settings, err
}

// loadDataset reads and normalizes the configured dataset.
func loadDataset(settings config.Settings, limit int) ([]*artwork.Record, error) {
	if settings.Dataset == "" {
		return nil, fmt.Errorf("no dataset given: use --dataset or set %s", config.EnvDataset)
	}

	loader := artwork.NewLoader(settings.Dataset, artwork.NormalizeOptions{Delimiter: settings.Delimiter})
	records, err := loader.LoadSample(limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load dataset: %w", err)
	}

	slog.Info("Dataset loaded", "path", settings.Dataset, "records", len(records))
	return records, nil
}

func dashboardOptions(settings config.Settings) dashboard.Options {
	return dashboard.Options{
		Threshold:        settings.Threshold,
		DropSingletons:   settings.DropSingletons,
		ClusterAttribute: settings.ClusterAttribute,
		Bins:             settings.Bins,
		Fetcher:          images.NewFetcher(settings.ImageTimeout),
	}
}
