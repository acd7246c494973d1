package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/api-sage/open-finance-kit/src/internal/adapter/http/router"
	"github.com/api-sage/open-finance-kit/src/internal/adapter/repository/memory"
	"github.com/api-sage/open-finance-kit/src/internal/logger"
	"github.com/api-sage/open-finance-kit/src/internal/sandbox"
	"github.com/spf13/cobra"
)

const (
	defaultSandboxClientID     = "sandbox-client"
	defaultSandboxClientSecret = "sandbox-secret"
	sandboxShutdownTimeout     = 10 * time.Second
)

var (
	sandboxAddr     string
	sandboxTokenTTL time.Duration
)

var sandboxCmd = &cobra.Command{
	Use:   "sandbox",
	Short: "Serve a local mock bank to run the other commands against",
	Long: `Starts an in-memory bank on plain HTTP. Point API_BASE_URL at it and use the
same CLIENT_ID and CLIENT_SECRET (sandbox-client / sandbox-secret when unset).
Payments above 1000 need the OTP ` + sandbox.AuthorizationOTP + `.`,
	Args: cobra.NoArgs,
	RunE: runSandbox,
}

func init() {
	sandboxCmd.Flags().StringVar(&sandboxAddr, "addr", "", "Listen address, defaults to SANDBOX_ADDR")
	sandboxCmd.Flags().DurationVar(&sandboxTokenTTL, "token-ttl", sandbox.DefaultTokenTTL, "Lifetime of issued access tokens")
}

func runSandbox(cmd *cobra.Command, _ []string) error {
	addr := firstNonEmpty(sandboxAddr, cfg.SandboxAddr)
	creds := sandbox.Credentials{
		ClientID:     firstNonEmpty(cfg.ClientID, defaultSandboxClientID),
		ClientSecret: firstNonEmpty(cfg.ClientSecret, defaultSandboxClientSecret),
	}

	bank := sandbox.NewBank(creds, memory.NewPayeeDirectoryRepository(), sandboxTokenTTL)
	server := &http.Server{
		Handler:           router.NewSandbox(bank),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s sandbox listening on http://%s (client id %s)\n", green("✓"), ln.Addr(), creds.ClientID)
	logger.Info("sandbox started", logger.Fields{"addr": ln.Addr().String()})

	return serve(cmd.Context(), server, ln)
}

// serve runs server on ln until ctx is cancelled, then shuts it down.
func serve(ctx context.Context, server *http.Server, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), sandboxShutdownTimeout)
	defer cancel()

	logger.Info("sandbox shutting down", nil)
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown sandbox: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
