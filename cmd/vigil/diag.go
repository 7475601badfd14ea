package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"vigil/internal/diag"
	"vigil/internal/diagfmt"
	"vigil/internal/driver"
)

var diagCmd = &cobra.Command{
	Use:   "diag [flags] [packages]",
	Short: "Report marker diagnostics without writing files",
	Long: `Run the full analysis over the given packages (./... by default) and
print every diagnostic; nothing is written to disk`,
	RunE: runDiag,
}

func init() {
	diagCmd.Flags().String("format", "pretty", "output format (pretty|short|json)")
	diagCmd.Flags().Bool("with-notes", false, "include diagnostic notes in output")
	diagCmd.Flags().Bool("no-warnings", false, "drop warnings from the output")
	diagCmd.Flags().Bool("warnings-as-errors", false, "treat warnings as errors")
	diagCmd.Flags().Int("jobs", 0, "max parallel workers (0=auto)")
}

func runDiag(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return err
	}
	withNotes, err := cmd.Flags().GetBool("with-notes")
	if err != nil {
		return err
	}
	noWarnings, err := cmd.Flags().GetBool("no-warnings")
	if err != nil {
		return err
	}
	warningsAsErrors, err := cmd.Flags().GetBool("warnings-as-errors")
	if err != nil {
		return err
	}
	if noWarnings && warningsAsErrors {
		return fmt.Errorf("no-warnings and warnings-as-errors flags cannot be used together")
	}
	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return err
	}
	maxDiags, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return err
	}

	results, err := driver.Run(cmd.Context(), driver.Options{
		Patterns:       args,
		Jobs:           jobs,
		MaxDiagnostics: maxDiags,
		DryRun:         true,
	})
	if err != nil {
		return err
	}

	bag := diag.NewBag(maxDiags)
	for _, res := range results {
		bag.Merge(res.Bag)
	}
	bag.Sort()
	bag.Dedup()
	if noWarnings {
		bag = dropWarnings(bag, maxDiags)
	}

	switch format {
	case "pretty":
		diagfmt.Pretty(os.Stdout, bag, diagfmt.PrettyOpts{
			Color:       useColor(cmd),
			ShowNotes:   withNotes,
			ShowPreview: true,
		})
	case "short":
		diagfmt.Short(os.Stdout, bag, withNotes)
	case "json":
		if err := diagfmt.JSON(os.Stdout, bag, diagfmt.JSONOpts{IncludeNotes: withNotes}); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown format %q (want pretty, short or json)", format)
	}

	if bag.HasErrors() || (warningsAsErrors && bag.HasWarnings()) {
		return fmt.Errorf("diagnostics reported")
	}
	return nil
}

func dropWarnings(bag *diag.Bag, maxDiags int) *diag.Bag {
	out := diag.NewBag(maxDiags)
	for _, d := range bag.Items() {
		if d.Severity >= diag.SevError {
			out.Add(d)
		}
	}
	return out
}
