package service

import (
	"context"

	"github.com/pesio-ai/be-crm-cli/internal/domain"
	"github.com/pesio-ai/be-crm-cli/internal/logger"
	"github.com/pesio-ai/be-crm-cli/internal/repository"
)

type ContractService struct {
	store *repository.Store
	log   *logger.Logger
}

func NewContractService(store *repository.Store, log *logger.Logger) *ContractService {
	return &ContractService{store: store, log: log}
}

type CreateContractRequest struct {
	ClientID        int64
	AmountTotal     float64
	AmountRemaining float64
	Status          string
}

// CreateContract creates a contract for a client. The sales contact is copied
// from the client.
func (s *ContractService) CreateContract(ctx context.Context, req *CreateContractRequest) (*repository.Contract, error) {
	s.log.Info().Int64("client_id", req.ClientID).Msg("Creating contract")

	status, err := domain.ParseContractStatus(req.Status)
	if err != nil {
		return nil, err
	}
	if err := domain.ValidateAmounts(req.AmountTotal, req.AmountRemaining); err != nil {
		return nil, err
	}

	contract := &repository.Contract{
		ClientID:        req.ClientID,
		AmountTotal:     req.AmountTotal,
		AmountRemaining: req.AmountRemaining,
		Status:          status,
	}
	err = s.store.UnitOfWork(ctx, func(r *repository.Repositories) error {
		client, err := r.Clients.GetByID(ctx, req.ClientID)
		if err != nil {
			return err
		}
		contract.ClientName = client.Name
		contract.SalesContactID = client.SalesContactID
		contract.SalesContact = client.SalesContact
		return r.Contracts.Create(ctx, contract)
	})
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to create contract")
		return nil, err
	}

	s.log.Info().
		Int64("contract_id", contract.ID).
		Str("unique_id", contract.UniqueID).
		Msg("Contract created successfully")
	return contract, nil
}

// UpdateContractRequest carries the fields to change. Nil fields keep their value.
type UpdateContractRequest struct {
	ID              int64
	AmountTotal     *float64
	AmountRemaining *float64
	Status          *string
}

// UpdateContract updates a contract the actor is allowed to manage. Nothing is
// written when any field is rejected.
func (s *ContractService) UpdateContract(ctx context.Context, actor domain.Identity, req *UpdateContractRequest) (*repository.Contract, error) {
	s.log.Info().Int64("contract_id", req.ID).Msg("Updating contract")

	var contract *repository.Contract
	err := s.store.UnitOfWork(ctx, func(r *repository.Repositories) error {
		var err error
		contract, err = r.Contracts.GetByID(ctx, req.ID)
		if err != nil {
			return err
		}
		if err := domain.CanMutateContract(actor, contract.Ref()); err != nil {
			return err
		}

		if req.Status != nil {
			status, err := domain.ParseContractStatus(*req.Status)
			if err != nil {
				return err
			}
			contract.Status = status
		}
		if req.AmountTotal != nil {
			contract.AmountTotal = *req.AmountTotal
		}
		if req.AmountRemaining != nil {
			contract.AmountRemaining = *req.AmountRemaining
		}
		if err := domain.ValidateAmounts(contract.AmountTotal, contract.AmountRemaining); err != nil {
			return err
		}

		return r.Contracts.Update(ctx, contract)
	})
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to update contract")
		return nil, err
	}

	s.log.Info().Int64("contract_id", contract.ID).Str("status", string(contract.Status)).Msg("Contract updated successfully")
	return contract, nil
}

// ListUnsignedOrUnpaid returns the actor's contracts that are not signed or
// still have an amount due.
func (s *ContractService) ListUnsignedOrUnpaid(ctx context.Context, actor domain.Identity) ([]*repository.Contract, error) {
	var contracts []*repository.Contract
	err := s.store.UnitOfWork(ctx, func(r *repository.Repositories) error {
		var err error
		contracts, err = r.Contracts.List(ctx, repository.ContractFilter{
			SalesContactID:   actor.UserID,
			UnsignedOrUnpaid: true,
		})
		return err
	})
	return contracts, err
}

// ListContracts returns the contracts visible to the actor: all of them for
// gestion, their own for a commercial, none otherwise.
func (s *ContractService) ListContracts(ctx context.Context, actor domain.Identity) ([]*repository.Contract, error) {
	var all []*repository.Contract
	err := s.store.UnitOfWork(ctx, func(r *repository.Repositories) error {
		var err error
		all, err = r.Contracts.List(ctx, repository.ContractFilter{})
		return err
	})
	if err != nil {
		return nil, err
	}

	visible := make([]*repository.Contract, 0, len(all))
	for _, contract := range all {
		if domain.CanSeeContract(actor, contract.Ref()) {
			visible = append(visible, contract)
		}
	}
	return visible, nil
}
