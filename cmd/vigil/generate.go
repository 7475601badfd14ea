package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"vigil/internal/diag"
	"vigil/internal/diagfmt"
	"vigil/internal/driver"
)

var generateCmd = &cobra.Command{
	Use:   "generate [flags] [packages]",
	Short: "Generate observation procedures for marked types",
	Long: `Analyze the given packages (./... by default), validate every marked
type and write a vigil_generated.go next to the accepted ones`,
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().Int("jobs", 0, "max parallel workers (0=auto)")
	generateCmd.Flags().Bool("dry-run", false, "analyze and report, write nothing")
	generateCmd.Flags().Bool("disk-cache", false, "reuse results for unchanged packages")
	generateCmd.Flags().Bool("warnings-as-errors", false, "treat warnings as errors")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return err
	}
	dryRun, err := cmd.Flags().GetBool("dry-run")
	if err != nil {
		return err
	}
	useCache, err := cmd.Flags().GetBool("disk-cache")
	if err != nil {
		return err
	}
	warningsAsErrors, err := cmd.Flags().GetBool("warnings-as-errors")
	if err != nil {
		return err
	}
	maxDiags, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return err
	}
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return err
	}

	patterns := args
	if manifest, ok, err := loadProjectManifest("."); err != nil {
		return err
	} else if ok {
		if len(patterns) == 0 {
			patterns = manifest.Config.Generate.Patterns
		}
		if jobs == 0 {
			jobs = manifest.Config.Generate.Jobs
		}
		useCache = useCache || manifest.Config.Generate.Cache
	}

	var cache *driver.DiskCache
	if useCache {
		cache, err = driver.OpenDiskCache("vigil")
		if err != nil {
			return fmt.Errorf("opening disk cache: %w", err)
		}
	}

	results, err := driver.Run(cmd.Context(), driver.Options{
		Patterns:       patterns,
		Jobs:           jobs,
		MaxDiagnostics: maxDiags,
		Cache:          cache,
		DryRun:         dryRun,
	})
	if err != nil {
		return err
	}

	colored := useColor(cmd)
	failed := false
	written := 0
	for _, res := range results {
		diagfmt.Pretty(os.Stderr, res.Bag, diagfmt.PrettyOpts{
			Color:       colored,
			ShowNotes:   true,
			ShowPreview: true,
		})
		if res.Bag.HasErrors() || (warningsAsErrors && res.Bag.HasWarnings()) {
			failed = true
		}
		if res.Wrote {
			written++
			if !quiet {
				fmt.Printf("wrote %s\n", res.Dir+"/"+driver.OutputFileName)
			}
		}
		if res.Removed && !quiet {
			fmt.Printf("removed stale %s\n", res.Dir+"/"+driver.OutputFileName)
		}
	}

	if !quiet {
		merged := diag.NewBag(maxDiags)
		for _, res := range results {
			merged.Merge(res.Bag)
		}
		diagfmt.Summary(os.Stderr, merged, colored)
	}
	if failed {
		return fmt.Errorf("generation failed")
	}
	return nil
}
