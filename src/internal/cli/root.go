package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/api-sage/open-finance-kit/src/internal/commons"
	"github.com/api-sage/open-finance-kit/src/internal/config"
	"github.com/api-sage/open-finance-kit/src/internal/logger"
	"github.com/spf13/cobra"
)

var (
	verbose      bool
	envFile      string
	outputFormat string
	cfg          config.Config
	rootCmd      *cobra.Command
)

func init() {
	rootCmd = &cobra.Command{
		Use:   "ofkit",
		Short: "Open finance sandbox starter kit",
		Long: `ofkit exercises an open finance sandbox: it checks your setup, fetches an
access token, reads accounts and runs a payment end to end.

Settings come from the environment and an optional .env file.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: loadConfig,
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log every request and response to stderr")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Path to the env file")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "text", "Output format: text, json or yaml")
}

// Execute runs the root command. The context is cancelled on SIGINT or SIGTERM.
func Execute(version string) error {
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(tokenCmd)
	rootCmd.AddCommand(accountsCmd)
	rootCmd.AddCommand(paymentCmd)
	rootCmd.AddCommand(paymentsCmd)
	rootCmd.AddCommand(sandboxCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.Version = version

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, red("Error:"), commons.Describe(err))
		return err
	}
	return nil
}

func loadConfig(cmd *cobra.Command, _ []string) error {
	switch outputFormat {
	case "text", "json", "yaml":
	default:
		return fmt.Errorf("unknown output format %q", outputFormat)
	}

	loaded, err := config.Load(envFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg = loaded

	logger.Setup(cmd.ErrOrStderr(), cfg.LogFormat, verbose)
	return nil
}
