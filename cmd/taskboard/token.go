package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nhle/taskboard/internal/credential"
)

func tokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Manage the record API bearer token in the system keyring",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "set [token]",
		Short: "Store the API token (reads stdin when no argument is given)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			token := ""
			if len(args) == 1 {
				token = args[0]
			} else {
				line, err := bufio.NewReader(os.Stdin).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("reading token: %w", err)
				}
				token = line
			}
			token = strings.TrimSpace(token)
			if token == "" {
				return fmt.Errorf("token is empty")
			}

			creds, err := credential.Open()
			if err != nil {
				return err
			}
			if err := creds.Set(credential.APITokenKey, token); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Token stored.")
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete",
		Short: "Remove the stored API token",
		RunE: func(cmd *cobra.Command, args []string) error {
			creds, err := credential.Open()
			if err != nil {
				return err
			}
			if err := creds.Delete(credential.APITokenKey); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Token removed.")
			return nil
		},
	})

	return cmd
}
