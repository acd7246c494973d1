package service_interfaces

import (
	"context"

	"github.com/api-sage/open-finance-kit/src/internal/domain"
)

type ConnectionCheckService interface {
	Run(ctx context.Context) domain.CheckReport
}
