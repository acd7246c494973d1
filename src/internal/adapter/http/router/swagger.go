package router

import (
	"fmt"
	"net/http"
)

func registerSwaggerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /swagger", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/swagger/", http.StatusMovedPermanently)
	})

	mux.HandleFunc("GET /swagger/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = fmt.Fprintf(w, swaggerHTML, "/swagger/openapi.json")
	})

	mux.HandleFunc("GET /swagger/openapi.json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(openAPI))
	})
}

const swaggerHTML = `<!doctype html>
<html>
<head>
  <meta charset="utf-8" />
  <title>Open Finance Sandbox API Docs</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    window.onload = function() {
      window.ui = SwaggerUIBundle({
        url: "%s",
        dom_id: "#swagger-ui"
      });
    };
  </script>
</body>
</html>`

const openAPI = `{
  "openapi": "3.0.3",
  "info": {
    "title": "Open Finance Sandbox API",
    "version": "1.0.0",
    "description": "Local mock of the open finance endpoints. Payments advance one status per GET; amounts ending in .99 are rejected; amounts above 1000 need OTP 123456."
  },
  "components": {
    "securitySchemes": {
      "BearerAuth": {"type": "http", "scheme": "bearer"}
    },
    "schemas": {
      "Envelope": {
        "type": "object",
        "properties": {
          "success": {"type": "boolean"},
          "message": {"type": "string"},
          "data": {},
          "errors": {"type": "array", "items": {"type": "string"}}
        }
      },
      "Creditor": {
        "type": "object",
        "required": ["name", "accountNumber", "bankCode"],
        "properties": {
          "name": {"type": "string"},
          "accountNumber": {"type": "string"},
          "bankCode": {"type": "string"}
        }
      },
      "InitiatePaymentRequest": {
        "type": "object",
        "required": ["amount", "currency", "debtorAccountId", "creditor"],
        "properties": {
          "amount": {"type": "string", "example": "100.00"},
          "currency": {"type": "string", "example": "AED"},
          "debtorAccountId": {"type": "string", "example": "acc-1001"},
          "creditor": {"$ref": "#/components/schemas/Creditor"},
          "reference": {"type": "string"},
          "description": {"type": "string"}
        }
      }
    }
  },
  "security": [{"BearerAuth": []}],
  "paths": {
    "/oauth/token": {
      "post": {
        "summary": "Client credentials grant",
        "security": [],
        "requestBody": {
          "content": {
            "application/x-www-form-urlencoded": {
              "schema": {
                "type": "object",
                "required": ["grant_type", "client_id", "client_secret"],
                "properties": {
                  "grant_type": {"type": "string", "example": "client_credentials"},
                  "client_id": {"type": "string"},
                  "client_secret": {"type": "string"},
                  "scope": {"type": "string"}
                }
              }
            }
          }
        },
        "responses": {"200": {"description": "Access token"}, "400": {"description": "Unsupported grant"}, "401": {"description": "Invalid client"}}
      }
    },
    "/accounts": {
      "get": {"summary": "List accounts", "responses": {"200": {"description": "Accounts", "content": {"application/json": {"schema": {"$ref": "#/components/schemas/Envelope"}}}}}}
    },
    "/accounts/{id}/balances": {
      "get": {
        "summary": "Account balances",
        "parameters": [{"name": "id", "in": "path", "required": true, "schema": {"type": "string"}}],
        "responses": {"200": {"description": "Balances"}, "404": {"description": "Account not found"}}
      }
    },
    "/accounts/{id}/transactions": {
      "get": {
        "summary": "Account transactions",
        "parameters": [
          {"name": "id", "in": "path", "required": true, "schema": {"type": "string"}},
          {"name": "fromBookingDate", "in": "query", "schema": {"type": "string", "format": "date"}},
          {"name": "toBookingDate", "in": "query", "schema": {"type": "string", "format": "date"}},
          {"name": "limit", "in": "query", "schema": {"type": "integer"}}
        ],
        "responses": {"200": {"description": "Transactions"}, "400": {"description": "Bad query"}, "404": {"description": "Account not found"}}
      }
    },
    "/payee-verification": {
      "post": {
        "summary": "Confirmation of payee",
        "requestBody": {"content": {"application/json": {"schema": {"$ref": "#/components/schemas/Creditor"}}}},
        "responses": {"200": {"description": "MATCH, CLOSE_MATCH or NO_MATCH"}}
      }
    },
    "/payments": {
      "get": {"summary": "List payments", "responses": {"200": {"description": "Payments"}}},
      "post": {
        "summary": "Initiate payment",
        "parameters": [{"name": "x-idempotency-key", "in": "header", "schema": {"type": "string"}}],
        "requestBody": {"content": {"application/json": {"schema": {"$ref": "#/components/schemas/InitiatePaymentRequest"}}}},
        "responses": {"201": {"description": "Created"}, "200": {"description": "Idempotent replay"}, "400": {"description": "Validation failed"}, "422": {"description": "Currency mismatch"}}
      }
    },
    "/payments/{id}": {
      "get": {
        "summary": "Payment status",
        "parameters": [{"name": "id", "in": "path", "required": true, "schema": {"type": "string"}}],
        "responses": {"200": {"description": "Payment"}, "404": {"description": "Payment not found"}}
      },
      "delete": {
        "summary": "Cancel payment",
        "parameters": [{"name": "id", "in": "path", "required": true, "schema": {"type": "string"}}],
        "responses": {"200": {"description": "Cancelled"}, "409": {"description": "Not cancellable"}}
      }
    },
    "/payments/{id}/authorize": {
      "post": {
        "summary": "Authorize payment with OTP",
        "parameters": [{"name": "id", "in": "path", "required": true, "schema": {"type": "string"}}],
        "requestBody": {"content": {"application/json": {"schema": {"type": "object", "properties": {"otp": {"type": "string", "example": "123456"}}}}}},
        "responses": {"200": {"description": "Authorized"}, "400": {"description": "Invalid OTP"}, "409": {"description": "Not awaiting authorization"}}
      }
    }
  }
}`
