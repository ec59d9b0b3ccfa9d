package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nhle/sqs-console/internal/model"
)

func newConfigCommand(opts *runOptions) *cobra.Command {
	configCmd := &cobra.Command{Use: "config", Short: "Configuration commands"}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file with the default settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := opts.path()
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists; use --force to overwrite", path)
			}
			if err := model.SaveConfig(path, model.DefaultConfig()); err != nil {
				return err
			}
			cmd.Println("wrote", path)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config file")
	configCmd.AddCommand(initCmd)

	configCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the config file path",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Println(opts.path())
		},
	})

	return configCmd
}
