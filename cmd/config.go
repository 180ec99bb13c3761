package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/lehigh-university-libraries/crossview/internal/config"
)

func newConfigCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:     "config",
		Short:   "Show the resolved configuration and where each value came from",
		Example: `  CROSSVIEW_OTHER_THRESHOLD=0.1 crossview config --dataset artworks.csv`,
		RunE: func(cmd *cobra.Command, args []string) error {
			resolved, err := config.ResolveConfig(config.ResolveOptions{
				ConfigPath:   flags.configPath,
				CLIDataset:   flags.dataset,
				CLIDelimiter: flags.delimiter,
			})
			if err != nil {
				return fmt.Errorf("failed to resolve config: %w", err)
			}

			data, err := yaml.Marshal(resolved)
			if err != nil {
				return fmt.Errorf("failed to marshal YAML: %w", err)
			}
			if _, err := cmd.OutOrStdout().Write(data); err != nil {
				return err
			}

			// report invalid values after showing where they came from
			_, err = resolved.Settings()
			return err
		},
	}
}
