package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var Version = "dev"

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:           "taskboard",
		Short:         "Taskboard - terminal task manager",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			demo, _ := cmd.Flags().GetBool("demo")
			return runTUI(cmd.Context(), opts, demo)
		},
	}

	opts.bind(cmd)
	cmd.Flags().Bool("demo", false, "Load the demo data set when the board is empty")

	cmd.AddCommand(serveCmd(opts))
	cmd.AddCommand(seedCmd(opts))
	cmd.AddCommand(tokenCmd())
	cmd.AddCommand(configCmd(opts))

	return cmd
}
