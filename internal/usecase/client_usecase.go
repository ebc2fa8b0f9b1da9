package usecase

import (
	"context"
	"strings"
	"time"

	"geekgalaxy_pos/internal/domain/entities"
	"geekgalaxy_pos/internal/usecase/interfaces"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrInvalidClientID    = entities.NewValidationError("client_id", "must not be blank")
	ErrInvalidClientName  = entities.NewValidationError("name", "must not be blank")
	ErrInvalidClientCPF   = entities.NewValidationError("cpf", "must have 11 digits")
	ErrEmptyClientDetails = entities.NewValidationError("details", "at least one field must be provided")
)

//go:generate mockgen -source=client_usecase.go -destination=../adapter/http/handlers/mocks/mock_client_usecase.go -package=mocks

// IClientUseCase maintains the customer registry sales are attributed to. Clients are never
// deleted because sales keep referencing them.
type IClientUseCase interface {
	Create(ctx context.Context, principal entities.Principal, c entities.Client) (entities.Client, error)
	GetByID(ctx context.Context, principal entities.Principal, id string) (entities.Client, error)
	List(ctx context.Context, principal entities.Principal, filter entities.ClientFilter) ([]entities.Client, error)
	UpdateDetails(ctx context.Context, principal entities.Principal, id string, d entities.ClientDetails) (entities.Client, error)
}

type ClientUseCase struct {
	repo   interfaces.IClientRepository
	policy interfaces.IAccessPolicy
	logger *zap.Logger
	now    func() time.Time
}

var _ IClientUseCase = (*ClientUseCase)(nil)

func NewClientUseCase(repo interfaces.IClientRepository, policy interfaces.IAccessPolicy, logger *zap.Logger) *ClientUseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClientUseCase{
		repo:   repo,
		policy: policy,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (u *ClientUseCase) Create(ctx context.Context, principal entities.Principal, c entities.Client) (entities.Client, error) {
	c.Name = strings.TrimSpace(c.Name)
	c.Email = strings.TrimSpace(c.Email)
	c.Phone = strings.TrimSpace(c.Phone)
	c.City = strings.TrimSpace(c.City)
	if c.Name == "" {
		return entities.Client{}, ErrInvalidClientName
	}
	if raw := strings.TrimSpace(c.CPF); raw != "" {
		cpf, ok := entities.NormalizeCPF(raw)
		if !ok {
			return entities.Client{}, ErrInvalidClientCPF
		}
		c.CPF = cpf
	} else {
		c.CPF = ""
	}
	if !u.policy.CanPerform(principal, entities.ActionClientWrite, "") {
		return entities.Client{}, &entities.PermissionDeniedError{PrincipalID: principal.ID, Action: entities.ActionClientWrite}
	}

	now := u.now()
	c.ID = uuid.NewString()
	c.CreatedAt = now
	c.UpdatedAt = now

	created, err := u.repo.Create(ctx, c)
	if err != nil {
		u.logger.Warn("[client][usecase] create failed", zap.String("name", c.Name), zap.Error(err))
		return entities.Client{}, wrapPersistence("create client", err)
	}
	u.logger.Info("[client][usecase] created", zap.String("client_id", created.ID))
	return created, nil
}

func (u *ClientUseCase) GetByID(ctx context.Context, principal entities.Principal, id string) (entities.Client, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return entities.Client{}, ErrInvalidClientID
	}
	if !u.policy.CanPerform(principal, entities.ActionClientRead, "") {
		return entities.Client{}, &entities.PermissionDeniedError{PrincipalID: principal.ID, Action: entities.ActionClientRead}
	}

	c, err := u.repo.GetByID(ctx, id)
	if err != nil {
		return entities.Client{}, wrapPersistence("get client", err)
	}
	if c.ID == "" {
		return entities.Client{}, entities.ErrClientNotFound
	}
	return c, nil
}

func (u *ClientUseCase) List(ctx context.Context, principal entities.Principal, filter entities.ClientFilter) ([]entities.Client, error) {
	filter.Search = strings.TrimSpace(filter.Search)
	if !u.policy.CanPerform(principal, entities.ActionClientRead, "") {
		return nil, &entities.PermissionDeniedError{PrincipalID: principal.ID, Action: entities.ActionClientRead}
	}
	clients, err := u.repo.List(ctx, filter)
	if err != nil {
		return nil, wrapPersistence("list clients", err)
	}
	return clients, nil
}

func (u *ClientUseCase) UpdateDetails(ctx context.Context, principal entities.Principal, id string, d entities.ClientDetails) (entities.Client, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return entities.Client{}, ErrInvalidClientID
	}
	if d.IsEmpty() {
		return entities.Client{}, ErrEmptyClientDetails
	}
	if d.Name != nil {
		name := strings.TrimSpace(*d.Name)
		if name == "" {
			return entities.Client{}, ErrInvalidClientName
		}
		d.Name = &name
	}
	if d.Email != nil {
		email := strings.TrimSpace(*d.Email)
		d.Email = &email
	}
	if !u.policy.CanPerform(principal, entities.ActionClientWrite, "") {
		return entities.Client{}, &entities.PermissionDeniedError{PrincipalID: principal.ID, Action: entities.ActionClientWrite}
	}

	updated, err := u.repo.UpdateDetails(ctx, id, d, u.now())
	if err != nil {
		return entities.Client{}, wrapPersistence("update client", err)
	}
	if updated.ID == "" {
		return entities.Client{}, entities.ErrClientNotFound
	}
	u.logger.Info("[client][usecase] details updated", zap.String("client_id", id))
	return updated, nil
}
