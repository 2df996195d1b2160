package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nhle/taskboard/internal/model"
)

func configCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or create the config file",
	}

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file with default values",
		RunE: func(cmd *cobra.Command, args []string) error {
			force, _ := cmd.Flags().GetBool("force")
			if _, err := os.Stat(opts.configPath); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", opts.configPath)
			}
			if err := model.SaveConfig(opts.configPath, model.DefaultAppConfig()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", opts.configPath)
			return nil
		},
	}
	initCmd.Flags().Bool("force", false, "Overwrite an existing file")
	cmd.AddCommand(initCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "config:        %s\n", opts.configPath)
			fmt.Fprintf(w, "backend:       %s\n", cfg.Backend)
			fmt.Fprintf(w, "database.path: %s\n", cfg.Database.Path)
			fmt.Fprintf(w, "remote.url:    %s\n", cfg.Remote.BaseURL)
			fmt.Fprintf(w, "log.level:     %s\n", cfg.Log.Level)
			fmt.Fprintf(w, "log.file:      %s\n", cfg.Log.File)
			fmt.Fprintf(w, "server.addr:   %s\n", cfg.Server.Addr)
			fmt.Fprintf(w, "default sort:  %s\n", defaultSort(cfg.Display.DefaultSort))
			return nil
		},
	})

	return cmd
}
