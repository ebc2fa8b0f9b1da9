package interfaces

import (
	"context"
	"time"

	"geekgalaxy_pos/internal/domain/entities"
)

//go:generate mockgen -source=client_repository_interface.go -destination=mocks/mock_client_repository_interface.go -package=mock_interfaces

// IClientRepository abstracts client persistence. Lookups return a zero Client and a nil
// error when nothing matches. Create fails with entities.ErrClientExists on a taken CPF.
type IClientRepository interface {
	Create(ctx context.Context, c entities.Client) (entities.Client, error)
	GetByID(ctx context.Context, id string) (entities.Client, error)
	List(ctx context.Context, filter entities.ClientFilter) ([]entities.Client, error)
	UpdateDetails(ctx context.Context, id string, d entities.ClientDetails, now time.Time) (entities.Client, error)
}
