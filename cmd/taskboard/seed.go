package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/nhle/taskboard/internal/seed"
)

func seedCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed [file]",
		Short: "Import categories, tasks and templates from a JSON file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			demo, _ := cmd.Flags().GetBool("demo")
			if !demo && len(args) == 0 {
				return fmt.Errorf("seed needs a file argument or --demo")
			}

			var (
				doc *seed.Document
				err error
			)
			if demo {
				doc, err = seed.Demo()
			} else {
				doc, err = readSeedFile(args[0])
			}
			if err != nil {
				return err
			}

			rt, err := openBoard(opts, configuredLogPath)
			if err != nil {
				return err
			}
			defer rt.Close()

			sum := seed.Apply(cmd.Context(), doc, seedServices(rt), time.Now())
			printSummary(cmd.OutOrStdout(), sum)
			if len(sum.Failures) > 0 {
				return fmt.Errorf("%d seed entries failed", len(sum.Failures))
			}
			return nil
		},
	}

	cmd.Flags().Bool("demo", false, "Import the built-in demo data set")

	return cmd
}

func readSeedFile(path string) (*seed.Document, error) {
	if path == "-" {
		return seed.Load(os.Stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening seed file: %w", err)
	}
	defer f.Close()
	return seed.Load(f)
}

func printSummary(w io.Writer, sum seed.Summary) {
	fmt.Fprintf(w, "Categories: %d\n", sum.Categories)
	fmt.Fprintf(w, "Tasks:      %d (%d completed)\n", sum.Tasks, sum.Completed)
	fmt.Fprintf(w, "Templates:  %d\n", sum.Templates)
	for _, f := range sum.Failures {
		fmt.Fprintf(w, "  failed: %s\n", f)
	}
}
