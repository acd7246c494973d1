package models

import (
	"errors"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const DateFormat = "2006-01-02"

// TransactionQuery filters GET /accounts/{id}/transactions. Zero values are
// left off the query string.
type TransactionQuery struct {
	From  time.Time
	To    time.Time
	Limit int
}

func (q TransactionQuery) Validate() error {
	if !q.From.IsZero() && !q.To.IsZero() && q.To.Before(q.From) {
		return errors.New("to must not be before from")
	}
	if q.Limit < 0 {
		return errors.New("limit must not be negative")
	}
	return nil
}

func (q TransactionQuery) Values() url.Values {
	values := url.Values{}
	if !q.From.IsZero() {
		values.Set("fromBookingDate", q.From.UTC().Format(DateFormat))
	}
	if !q.To.IsZero() {
		values.Set("toBookingDate", q.To.UTC().Format(DateFormat))
	}
	if q.Limit > 0 {
		values.Set("limit", strconv.Itoa(q.Limit))
	}
	return values
}

// ParseTransactionQuery reads the query string written by Values.
func ParseTransactionQuery(values url.Values) (TransactionQuery, error) {
	var (
		q    TransactionQuery
		errs []string
	)

	if raw := strings.TrimSpace(values.Get("fromBookingDate")); raw != "" {
		t, err := time.Parse(DateFormat, raw)
		if err != nil {
			errs = append(errs, "fromBookingDate must be YYYY-MM-DD")
		}
		q.From = t
	}
	if raw := strings.TrimSpace(values.Get("toBookingDate")); raw != "" {
		t, err := time.Parse(DateFormat, raw)
		if err != nil {
			errs = append(errs, "toBookingDate must be YYYY-MM-DD")
		}
		q.To = t
	}
	if raw := strings.TrimSpace(values.Get("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			errs = append(errs, "limit must be a number")
		}
		q.Limit = n
	}

	if len(errs) > 0 {
		return TransactionQuery{}, errors.New(strings.Join(errs, "; "))
	}
	return q, q.Validate()
}
