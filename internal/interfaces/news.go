package interfaces

import (
	"context"

	"crypto-forecast-dashboard/internal/types"
)

type NewsSource interface {
	News(ctx context.Context, symbol string) (types.NewsResponse, error)
}
