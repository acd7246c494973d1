package cli

import (
	"fmt"
	"io"

	"github.com/api-sage/open-finance-kit/src/internal/adapter/openfinance"
	"github.com/api-sage/open-finance-kit/src/internal/commons"
	"github.com/api-sage/open-finance-kit/src/internal/domain"
	"github.com/api-sage/open-finance-kit/src/internal/usecase/services"
	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify environment, certificates and sandbox connectivity",
	Long: `Runs the connection checks in order and reports pass or fail for each:
required and optional settings, certificate files, the transport identity and
one token request. Exits non-zero when any required check fails.`,
	Args: cobra.NoArgs,
	RunE: runCheck,
}

func runCheck(cmd *cobra.Command, _ []string) error {
	svc := services.NewConnectionCheckService(cfg, func() (openfinance.AuthAPI, error) {
		return openfinance.NewClient(openfinance.ClientConfigFrom(cfg))
	})

	report := svc.Run(cmd.Context())
	if err := render(cmd.OutOrStdout(), report, func(w io.Writer) error {
		return printReport(w, report)
	}); err != nil {
		return err
	}

	if report.Failed() {
		return commons.ErrChecksFailed
	}
	return nil
}

func printReport(w io.Writer, report domain.CheckReport) error {
	group := ""
	for _, c := range report.Checks {
		if c.Group != group {
			if group != "" {
				fmt.Fprintln(w)
			}
			group = c.Group
			fmt.Fprintf(w, "%s:\n", group)
		}

		line := fmt.Sprintf("  %s %s", statusMark(c.Status), c.Name)
		if c.Detail != "" {
			line += dim(" - " + c.Detail)
		}
		fmt.Fprintln(w, line)
	}

	fmt.Fprintln(w)
	_, err := fmt.Fprintf(w, "Results: %d passed, %d warnings, %d failed, %d skipped\n",
		report.Count(domain.CheckPass),
		report.Count(domain.CheckWarn),
		report.Count(domain.CheckFail),
		report.Count(domain.CheckSkip),
	)
	return err
}

func statusMark(status domain.CheckStatus) string {
	switch status {
	case domain.CheckPass:
		return green("✓")
	case domain.CheckWarn:
		return yellow("!")
	case domain.CheckFail:
		return red("✗")
	default:
		return dim("-")
	}
}
