package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/gocribo/cribo/internal/clog"
	"github.com/gocribo/cribo/internal/config"
	"github.com/gocribo/cribo/internal/pipeline"
)

func newBundleCmd() *cobra.Command {
	var (
		entry         string
		srcDirs       []string
		pythonVersion int
		output        string
		listDeps      bool
		verbose       bool
	)

	cmd := &cobra.Command{
		Use:   "bundle",
		Short: "Bundle a Python entry point and its first-party imports into one file",
		RunE: func(cmd *cobra.Command, args []string) error {
			clog.SetVerbose(verbose)

			if entry == "" {
				return fmt.Errorf("--entry is required")
			}

			cfg, err := loadConfig(entry)
			if err != nil {
				return err
			}
			roots := srcDirs
			if len(roots) == 0 {
				roots = cfg.Src
			}
			version := pythonVersion
			if version == 0 {
				version = cfg.PythonVersion
			}

			result, err := pipeline.Run(context.Background(), pipeline.Options{
				Entry:         entry,
				SrcRoots:      roots,
				PythonVersion: version,
				PythonPath:    os.Getenv("PYTHONPATH"),
			})
			if err != nil {
				return err
			}

			if listDeps {
				for _, name := range result.ThirdPartyImports {
					fmt.Fprintln(cmd.OutOrStdout(), name)
				}
			}

			if output == "" {
				fmt.Fprint(cmd.OutOrStdout(), result.Source)
				return nil
			}
			return os.WriteFile(output, []byte(result.Source), 0o644)
		},
	}

	cmd.Flags().StringVar(&entry, "entry", "", "entry point .py file (required)")
	cmd.Flags().StringArrayVar(&srcDirs, "src", nil, "source root to search for first-party modules (repeatable)")
	cmd.Flags().IntVar(&pythonVersion, "python-version", 0, "target Python version, written as the major and minor digits run together (e.g. 38 for 3.8, 312 for 3.12)")
	cmd.Flags().StringVar(&output, "output", "", "write the bundled module here instead of stdout")
	cmd.Flags().BoolVar(&listDeps, "list-deps", false, "also print every third-party import name encountered")
	cmd.Flags().BoolVar(&verbose, "verbose", false, "enable debug logging")

	return cmd
}

// loadConfig looks for cribo.toml next to the entry file, falling back to
// config.Default() when absent (config.Load already treats a missing file
// this way).
func loadConfig(entry string) (config.Config, error) {
	dir := filepath.Dir(entry)
	return config.Load(filepath.Join(dir, config.FileName))
}
