package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/api-sage/open-finance-kit/src/internal/adapter/http/models"
	"github.com/api-sage/open-finance-kit/src/internal/commons"
	"github.com/api-sage/open-finance-kit/src/internal/domain"
)

const headerIdempotencyKey = "x-idempotency-key"

type PaymentProcessor interface {
	VerifyPayee(ctx context.Context, req models.PayeeVerificationRequest) (domain.PayeeVerification, error)
	InitiatePayment(ctx context.Context, req models.InitiatePaymentRequest, idempotencyKey string) (domain.Payment, bool, error)
	AuthorizePayment(ctx context.Context, paymentID string, otp string) (domain.Payment, error)
	GetPayment(ctx context.Context, paymentID string) (domain.Payment, error)
	CancelPayment(ctx context.Context, paymentID string) (domain.Payment, error)
	ListPayments(ctx context.Context) ([]domain.Payment, error)
}

type PaymentController struct {
	service PaymentProcessor
}

func NewPaymentController(service PaymentProcessor) *PaymentController {
	return &PaymentController{service: service}
}

func (c *PaymentController) RegisterRoutes(mux *http.ServeMux, authMiddleware func(http.Handler) http.Handler) {
	mux.Handle("POST /payee-verification", protect(c.verifyPayee, authMiddleware))
	mux.Handle("POST /payments", protect(c.initiatePayment, authMiddleware))
	mux.Handle("GET /payments", protect(c.listPayments, authMiddleware))
	mux.Handle("GET /payments/{id}", protect(c.getPayment, authMiddleware))
	mux.Handle("DELETE /payments/{id}", protect(c.cancelPayment, authMiddleware))
	mux.Handle("POST /payments/{id}/authorize", protect(c.authorizePayment, authMiddleware))
}

func (c *PaymentController) verifyPayee(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req models.PayeeVerificationRequest
	if !decodeBody(w, r, &req, start) {
		return
	}
	logRequest(r, req)

	if err := req.Validate(); err != nil {
		respondError[domain.PayeeVerification](w, r, validationError{err}, start)
		return
	}

	result, err := c.service.VerifyPayee(r.Context(), req)
	if err != nil {
		respondError[domain.PayeeVerification](w, r, err, start)
		return
	}
	respond(w, r, http.StatusOK, "payee verified", result, start)
}

func (c *PaymentController) initiatePayment(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req models.InitiatePaymentRequest
	if !decodeBody(w, r, &req, start) {
		return
	}
	logRequest(r, req)

	req = req.Normalize()
	if err := req.Validate(); err != nil {
		respondError[domain.Payment](w, r, validationError{err}, start)
		return
	}

	payment, created, err := c.service.InitiatePayment(r.Context(), req, strings.TrimSpace(r.Header.Get(headerIdempotencyKey)))
	if err != nil {
		respondError[domain.Payment](w, r, err, start)
		return
	}

	if created {
		respond(w, r, http.StatusCreated, "payment created", payment, start)
		return
	}
	respond(w, r, http.StatusOK, "payment already exists for idempotency key", payment, start)
}

func (c *PaymentController) authorizePayment(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req models.AuthorizePaymentRequest
	if !decodeBody(w, r, &req, start) {
		return
	}
	logRequest(r, req)

	if err := req.Validate(); err != nil {
		respondError[domain.Payment](w, r, validationError{err}, start)
		return
	}

	payment, err := c.service.AuthorizePayment(r.Context(), r.PathValue("id"), req.OTP)
	if err != nil {
		respondError[domain.Payment](w, r, err, start)
		return
	}
	respond(w, r, http.StatusOK, "payment authorized", payment, start)
}

func (c *PaymentController) getPayment(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logRequest(r, nil)

	payment, err := c.service.GetPayment(r.Context(), r.PathValue("id"))
	if err != nil {
		respondError[domain.Payment](w, r, err, start)
		return
	}
	respond(w, r, http.StatusOK, "payment fetched successfully", payment, start)
}

func (c *PaymentController) cancelPayment(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logRequest(r, nil)

	payment, err := c.service.CancelPayment(r.Context(), r.PathValue("id"))
	if err != nil {
		respondError[domain.Payment](w, r, err, start)
		return
	}
	respond(w, r, http.StatusOK, "payment cancelled", payment, start)
}

func (c *PaymentController) listPayments(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logRequest(r, nil)

	payments, err := c.service.ListPayments(r.Context())
	if err != nil {
		respondError[[]domain.Payment](w, r, err, start)
		return
	}
	respond(w, r, http.StatusOK, "payments fetched successfully", payments, start)
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any, start time.Time) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		logError(r, err, nil)
		response := commons.ErrorResponse[any]("invalid request body", err.Error())
		writeJSON(w, http.StatusBadRequest, response)
		logResponse(r, http.StatusBadRequest, response, start)
		return false
	}
	return true
}
