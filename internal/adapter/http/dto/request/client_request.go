package request

import (
	"strings"

	"geekgalaxy_pos/internal/domain/entities"
)

type CreateClientRequest struct {
	Name  string `json:"name" binding:"required" example:"Ana Souza"`
	CPF   string `json:"cpf" example:"123.456.789-09"`
	Email string `json:"email" binding:"omitempty,email" example:"ana@example.com"`
	Phone string `json:"phone"`
	City  string `json:"city"`
}

func (r CreateClientRequest) ToClient() entities.Client {
	return entities.Client{
		Name:  r.Name,
		CPF:   r.CPF,
		Email: r.Email,
		Phone: r.Phone,
		City:  r.City,
	}
}

// UpdateClientRequest is a partial update. The CPF cannot be changed.
type UpdateClientRequest struct {
	Name  *string `json:"name"`
	Email *string `json:"email" binding:"omitempty,email"`
	Phone *string `json:"phone"`
	City  *string `json:"city"`
}

func (r UpdateClientRequest) ToDetails() entities.ClientDetails {
	return entities.ClientDetails{
		Name:  r.Name,
		Email: r.Email,
		Phone: r.Phone,
		City:  r.City,
	}
}

// ListClientsQuery binds the ?search= filter.
type ListClientsQuery struct {
	Search string `form:"search"`
}

func (q ListClientsQuery) ToFilter() entities.ClientFilter {
	return entities.ClientFilter{Search: strings.TrimSpace(q.Search)}
}
