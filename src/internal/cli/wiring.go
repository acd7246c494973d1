package cli

import (
	"context"
	"errors"
	"time"

	"github.com/api-sage/open-finance-kit/src/internal/adapter/messaging"
	"github.com/api-sage/open-finance-kit/src/internal/adapter/openfinance"
	"github.com/api-sage/open-finance-kit/src/internal/adapter/repository/memory"
	"github.com/api-sage/open-finance-kit/src/internal/adapter/repository/postgres"
	"github.com/api-sage/open-finance-kit/src/internal/adapter/repository/rediscache"
	"github.com/api-sage/open-finance-kit/src/internal/adapter/repository/repo_interfaces"
	"github.com/api-sage/open-finance-kit/src/internal/config"
	"github.com/api-sage/open-finance-kit/src/internal/logger"
	"github.com/api-sage/open-finance-kit/src/internal/usecase/services"
)

const infraConnectTimeout = 5 * time.Second

// clientKeys are the settings every API command needs. Transport
// certificates are only mandatory for `ofkit check`.
var clientKeys = []string{"CLIENT_ID", "CLIENT_SECRET", "API_BASE_URL"}

// app holds the dependencies one command invocation needs.
type app struct {
	client   *openfinance.Client
	tokens   *services.TokenProvider
	accounts *services.AccountService
	payments *services.PaymentService
	closers  []func() error
}

func newApp(ctx context.Context, cfg config.Config) (*app, error) {
	var missing []string
	for _, key := range clientKeys {
		if cfg.Value(key) == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return nil, &missingConfigError{keys: missing}
	}

	client, err := openfinance.NewClient(openfinance.ClientConfigFrom(cfg))
	if err != nil {
		return nil, err
	}

	a := &app{client: client}

	store := a.tokenStore(ctx, cfg)
	journal := a.journal(ctx, cfg)
	publisher := a.publisher(cfg)

	a.tokens = services.NewTokenProvider(client, store, cfg.ClientID, services.DefaultTokenSkew)
	a.accounts = services.NewAccountService(client, a.tokens, cfg.SnapshotConcurrency)
	a.payments = services.NewPaymentService(client, a.tokens, journal, publisher, services.PollPolicy{
		MaxAttempts: cfg.PollMaxAttempts,
		Interval:    cfg.PollInterval,
		Multiplier:  cfg.PollMultiplier,
		MaxInterval: cfg.PollMaxInterval,
	})
	a.tokens.Start(ctx)
	return a, nil
}

func (a *app) tokenStore(ctx context.Context, cfg config.Config) repo_interfaces.TokenStore {
	if cfg.RedisAddr == "" {
		return memory.NewTokenStore()
	}

	store := rediscache.NewTokenStore(rediscache.NewClient(cfg.RedisAddr))
	pingCtx, cancel := context.WithTimeout(ctx, infraConnectTimeout)
	defer cancel()
	if err := store.Ping(pingCtx); err != nil {
		logger.Warn("redis unavailable, caching tokens in memory", logger.Fields{"addr": cfg.RedisAddr, "error": err.Error()})
		_ = store.Close()
		return memory.NewTokenStore()
	}

	a.closers = append(a.closers, store.Close)
	return store
}

func (a *app) journal(ctx context.Context, cfg config.Config) repo_interfaces.PaymentJournalRepository {
	if cfg.DatabaseDSN == "" {
		return memory.NewPaymentJournalRepository()
	}

	openCtx, cancel := context.WithTimeout(ctx, infraConnectTimeout)
	defer cancel()
	db, err := postgres.Open(openCtx, cfg.DatabaseDSN)
	if err != nil {
		logger.Warn("postgres unavailable, journaling in memory", logger.Fields{"error": err.Error()})
		return memory.NewPaymentJournalRepository()
	}

	a.closers = append(a.closers, db.Close)
	return postgres.NewPaymentJournalRepository(db)
}

func (a *app) publisher(cfg config.Config) messaging.Publisher {
	if cfg.AMQPURL == "" {
		return messaging.Noop{}
	}

	pub, err := messaging.NewRabbitPublisher(cfg.AMQPURL)
	if err != nil {
		logger.Warn("rabbitmq unavailable, payment events disabled", logger.Fields{"error": err.Error()})
		return messaging.Noop{}
	}

	a.closers = append(a.closers, pub.Close)
	return pub
}

func (a *app) Close() error {
	a.tokens.Stop()

	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
