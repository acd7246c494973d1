package router

import (
	"net/http"

	"github.com/api-sage/open-finance-kit/src/internal/adapter/http/controller"
	"github.com/api-sage/open-finance-kit/src/internal/adapter/http/middleware"
	"github.com/api-sage/open-finance-kit/src/internal/sandbox"
)

// NewSandbox wires the sandbox bank behind the open finance routes.
func NewSandbox(bank *sandbox.Bank) *http.ServeMux {
	return New(
		controller.NewTokenController(bank),
		controller.NewAccountController(bank),
		controller.NewPaymentController(bank),
		middleware.BearerAuth(bank.ValidToken),
	)
}
