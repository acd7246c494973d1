package controller

import (
	"context"
	"net/http"
	"time"

	"github.com/api-sage/open-finance-kit/src/internal/adapter/http/models"
	"github.com/api-sage/open-finance-kit/src/internal/domain"
)

type AccountProvider interface {
	ListAccounts(ctx context.Context) ([]domain.Account, error)
	GetBalances(ctx context.Context, accountID string) ([]domain.Balance, error)
	GetTransactions(ctx context.Context, accountID string, query models.TransactionQuery) ([]domain.Transaction, error)
}

type AccountController struct {
	service AccountProvider
}

func NewAccountController(service AccountProvider) *AccountController {
	return &AccountController{service: service}
}

func (c *AccountController) RegisterRoutes(mux *http.ServeMux, authMiddleware func(http.Handler) http.Handler) {
	mux.Handle("GET /accounts", protect(c.listAccounts, authMiddleware))
	mux.Handle("GET /accounts/{id}/balances", protect(c.getBalances, authMiddleware))
	mux.Handle("GET /accounts/{id}/transactions", protect(c.getTransactions, authMiddleware))
}

func (c *AccountController) listAccounts(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logRequest(r, nil)

	accounts, err := c.service.ListAccounts(r.Context())
	if err != nil {
		respondError[[]domain.Account](w, r, err, start)
		return
	}
	respond(w, r, http.StatusOK, "accounts fetched successfully", accounts, start)
}

func (c *AccountController) getBalances(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logRequest(r, nil)

	balances, err := c.service.GetBalances(r.Context(), r.PathValue("id"))
	if err != nil {
		respondError[[]domain.Balance](w, r, err, start)
		return
	}
	respond(w, r, http.StatusOK, "balances fetched successfully", balances, start)
}

func (c *AccountController) getTransactions(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logRequest(r, nil)

	query, err := models.ParseTransactionQuery(r.URL.Query())
	if err != nil {
		respondError[[]domain.Transaction](w, r, validationError{err}, start)
		return
	}

	transactions, err := c.service.GetTransactions(r.Context(), r.PathValue("id"), query)
	if err != nil {
		respondError[[]domain.Transaction](w, r, err, start)
		return
	}
	respond(w, r, http.StatusOK, "transactions fetched successfully", transactions, start)
}

func protect(handler http.HandlerFunc, authMiddleware func(http.Handler) http.Handler) http.Handler {
	if authMiddleware == nil {
		return handler
	}
	return authMiddleware(handler)
}
