package cmd

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lehigh-university-libraries/crossview/internal/artwork"
	"github.com/lehigh-university-libraries/crossview/internal/config"
)

func newConvertCmd(flags *globalFlags) *cobra.Command {
	var (
		output string
		limit  int
	)

	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Normalize a dataset and write it as Parquet",
		Long: `Reads a CSV, TSV or JSONL artwork dataset, normalizes every record and writes
the result as a Parquet file that loads faster on the next run.

Multi-valued columns are re-joined with the configured delimiter.`,
		Example: `  crossview convert --dataset artworks.csv --output artworks.parquet`,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, settings, err := flags.resolve(config.ResolveOptions{})
			if err != nil {
				return err
			}

			if output == "" {
				output = strings.TrimSuffix(settings.Dataset, filepath.Ext(settings.Dataset)) + ".parquet"
			}
			if filepath.Clean(output) == filepath.Clean(settings.Dataset) {
				return fmt.Errorf("output %s would overwrite the dataset", output)
			}

			records, err := loadDataset(settings, limit)
			if err != nil {
				return err
			}

			if err := artwork.WriteParquet(output, records, settings.Delimiter); err != nil {
				return err
			}

			slog.Info("Dataset converted", "input", settings.Dataset, "output", output, "records", len(records))
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d records to %s\n", len(records), output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Parquet file to write (default: dataset name with .parquet)")
	cmd.Flags().IntVar(&limit, "limit", -1, "Convert at most this many records (-1 for all)")

	return cmd
}
