package contract

import (
	"context"

	"store-locator-be/internal/entity"
	"store-locator-be/internal/repository/specification"
)

type InteractionLogRepository interface {
	Create(ctx context.Context, log *entity.InteractionLog) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.InteractionLog, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
