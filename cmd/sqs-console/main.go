package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		cancel()
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var opts runOptions

	rootCmd := &cobra.Command{
		Use:          "sqs-console",
		Short:        "Terminal console for SQS queues",
		Long:         "sqs-console browses SQS queues and their messages through an SQS admin API or SQS directly.",
		SilenceUsage: true,
		Version:      version,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConsole(cmd.Context(), cmd, opts)
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Config file (default ~/.config/sqs-console/config.yaml)")
	rootCmd.Flags().StringVar(&opts.backend, "backend", "", "Backend: http|sqs")
	rootCmd.Flags().StringVar(&opts.baseURL, "base-url", "", "Admin API base URL for the http backend")
	rootCmd.Flags().StringVar(&opts.endpoint, "endpoint", "", "SQS endpoint override for the sqs backend (LocalStack, ElasticMQ)")
	rootCmd.Flags().StringVar(&opts.region, "region", "", "AWS region for the sqs backend")
	rootCmd.Flags().StringVar(&opts.logLevel, "log-level", "", "Log level: debug|info|warn|error")

	rootCmd.AddCommand(newConfigCommand(&opts))
	rootCmd.AddCommand(newCredentialsCommand())
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Println("sqs-console", version)
		},
	})

	return rootCmd
}
