package service

import (
	"context"

	"github.com/pesio-ai/be-crm-cli/internal/domain"
	"github.com/pesio-ai/be-crm-cli/internal/logger"
	"github.com/pesio-ai/be-crm-cli/internal/repository"
)

type ClientService struct {
	store *repository.Store
	log   *logger.Logger
}

func NewClientService(store *repository.Store, log *logger.Logger) *ClientService {
	return &ClientService{store: store, log: log}
}

type CreateClientRequest struct {
	Name    string
	Email   string
	Phone   string
	Company string
}

// CreateClient creates a client owned by the acting commercial.
func (s *ClientService) CreateClient(ctx context.Context, actor domain.Identity, req *CreateClientRequest) (*repository.Client, error) {
	s.log.Info().Str("email", req.Email).Int64("sales_contact_id", actor.UserID).Msg("Creating client")

	client := &repository.Client{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Company: req.Company,
	}
	err := s.store.UnitOfWork(ctx, func(r *repository.Repositories) error {
		owner, err := r.Users.GetByID(ctx, actor.UserID)
		if err != nil {
			return err
		}
		client.SalesContactID = owner.ID
		client.SalesContact = owner.Name
		return r.Clients.Create(ctx, client)
	})
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to create client")
		return nil, err
	}

	s.log.Info().Int64("client_id", client.ID).Msg("Client created successfully")
	return client, nil
}

// UpdateClientRequest carries the fields to change. Nil fields keep their value.
type UpdateClientRequest struct {
	ID      int64
	Name    *string
	Email   *string
	Phone   *string
	Company *string
}

// UpdateClient updates a client managed by the acting commercial.
func (s *ClientService) UpdateClient(ctx context.Context, actor domain.Identity, req *UpdateClientRequest) (*repository.Client, error) {
	s.log.Info().Int64("client_id", req.ID).Msg("Updating client")

	var client *repository.Client
	err := s.store.UnitOfWork(ctx, func(r *repository.Repositories) error {
		var err error
		client, err = r.Clients.GetByID(ctx, req.ID)
		if err != nil {
			return err
		}
		if err := domain.CanMutateClient(actor, client.Ref()); err != nil {
			return err
		}

		if req.Name != nil {
			client.Name = *req.Name
		}
		if req.Email != nil {
			client.Email = *req.Email
		}
		if req.Phone != nil {
			client.Phone = *req.Phone
		}
		if req.Company != nil {
			client.Company = *req.Company
		}
		return r.Clients.Update(ctx, client)
	})
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to update client")
		return nil, err
	}

	s.log.Info().Int64("client_id", client.ID).Msg("Client updated successfully")
	return client, nil
}

// ListClients lists every client
func (s *ClientService) ListClients(ctx context.Context) ([]*repository.Client, error) {
	var clients []*repository.Client
	err := s.store.UnitOfWork(ctx, func(r *repository.Repositories) error {
		var err error
		clients, err = r.Clients.List(ctx, 0)
		return err
	})
	return clients, err
}
