package main

import (
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/nhle/sqs-console/internal/credential"
)

func newCredentialsCommand() *cobra.Command {
	credsCmd := &cobra.Command{
		Use:     "credentials",
		Aliases: []string{"creds"},
		Short:   "Manage secrets stored in the OS keyring",
	}

	credsCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List the supported credential keys",
		RunE: func(cmd *cobra.Command, args []string) error {
			ks, err := credential.Open()
			if err != nil {
				return err
			}
			for _, key := range credential.Keys() {
				state := "not set"
				if v, err := ks.Lookup(key); err == nil && v != "" {
					state = "set"
				}
				cmd.Printf("%-22s %-8s %s\n", key, state, credential.Describe(key))
			}
			return nil
		},
	})

	credsCmd.AddCommand(&cobra.Command{
		Use:   "set <key> [value]",
		Short: "Store a credential; prompts for the value when omitted",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			if credential.Describe(key) == "" {
				return fmt.Errorf("%w: %q", credential.ErrUnknownKey, key)
			}

			var value string
			if len(args) == 2 {
				value = args[1]
			} else {
				err := huh.NewInput().
					Title(key).
					Description(credential.Describe(key)).
					EchoMode(huh.EchoModePassword).
					Value(&value).
					Run()
				if err != nil {
					return err
				}
			}

			ks, err := credential.Open()
			if err != nil {
				return err
			}
			if err := ks.Set(key, value); err != nil {
				return err
			}
			cmd.Println("stored", key)
			return nil
		},
	})

	credsCmd.AddCommand(&cobra.Command{
		Use:   "delete <key>",
		Short: "Remove a credential",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ks, err := credential.Open()
			if err != nil {
				return err
			}
			if err := ks.Delete(args[0]); err != nil {
				return err
			}
			cmd.Println("deleted", args[0])
			return nil
		},
	})

	return credsCmd
}
