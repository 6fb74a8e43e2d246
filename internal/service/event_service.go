package service

import (
	"context"
	"time"

	"github.com/pesio-ai/be-crm-cli/internal/domain"
	"github.com/pesio-ai/be-crm-cli/internal/logger"
	"github.com/pesio-ai/be-crm-cli/internal/repository"
	apperrors "github.com/pesio-ai/be-crm-cli/pkg/errors"
)

type EventService struct {
	store *repository.Store
	log   *logger.Logger
}

func NewEventService(store *repository.Store, log *logger.Logger) *EventService {
	return &EventService{store: store, log: log}
}

// CreateEventRequest describes a new event. A nil or zero SupportContactID
// leaves the event unassigned.
type CreateEventRequest struct {
	ContractID       int64
	Start            time.Time
	End              time.Time
	Location         string
	Attendees        int
	Notes            string
	SupportContactID *int64
}

// CreateEvent creates an event for a signed contract owned by the acting
// commercial. The client name and contact are copied from the client.
func (s *EventService) CreateEvent(ctx context.Context, actor domain.Identity, req *CreateEventRequest) (*repository.Event, error) {
	s.log.Info().Int64("contract_id", req.ContractID).Msg("Creating event")

	if err := domain.ValidateEventWindow(req.Start, req.End); err != nil {
		return nil, err
	}
	if req.Attendees < 0 {
		return nil, apperrors.InvalidInput("attendees must not be negative")
	}

	event := &repository.Event{
		ContractID:     req.ContractID,
		EventDateStart: req.Start,
		EventDateEnd:   req.End,
		Location:       req.Location,
		Attendees:      req.Attendees,
		Notes:          req.Notes,
	}
	err := s.store.UnitOfWork(ctx, func(r *repository.Repositories) error {
		contract, err := r.Contracts.GetByID(ctx, req.ContractID)
		if err != nil {
			return err
		}
		if err := domain.CanCreateEvent(actor, contract.Ref()); err != nil {
			return err
		}

		client, err := r.Clients.GetByID(ctx, contract.ClientID)
		if err != nil {
			return err
		}
		event.ClientName = client.Name
		event.ClientContact = client.Contact()

		if req.SupportContactID != nil {
			if err := setSupport(ctx, r, event, *req.SupportContactID); err != nil {
				return err
			}
		}

		return r.Events.Create(ctx, event)
	})
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to create event")
		return nil, err
	}

	s.log.Info().Int64("event_id", event.ID).Msg("Event created successfully")
	return event, nil
}

// UpdateEventRequest carries the fields to change. Nil fields keep their
// value. SupportContactID pointing at 0 removes the assignment.
type UpdateEventRequest struct {
	ID               int64
	Start            *time.Time
	End              *time.Time
	Location         *string
	Attendees        *int
	Notes            *string
	SupportContactID *int64
}

// UpdateEvent updates an event the actor may manage. The date window is
// checked on the merged values.
func (s *EventService) UpdateEvent(ctx context.Context, actor domain.Identity, req *UpdateEventRequest) (*repository.Event, error) {
	s.log.Info().Int64("event_id", req.ID).Msg("Updating event")

	var event *repository.Event
	err := s.store.UnitOfWork(ctx, func(r *repository.Repositories) error {
		var err error
		event, err = r.Events.GetByID(ctx, req.ID)
		if err != nil {
			return err
		}
		if err := domain.CanMutateEvent(actor, event.Ref()); err != nil {
			return err
		}

		if req.Start != nil {
			event.EventDateStart = *req.Start
		}
		if req.End != nil {
			event.EventDateEnd = *req.End
		}
		if err := domain.ValidateEventWindow(event.EventDateStart, event.EventDateEnd); err != nil {
			return err
		}
		if req.Location != nil {
			event.Location = *req.Location
		}
		if req.Attendees != nil {
			if *req.Attendees < 0 {
				return apperrors.InvalidInput("attendees must not be negative")
			}
			event.Attendees = *req.Attendees
		}
		if req.Notes != nil {
			event.Notes = *req.Notes
		}
		if req.SupportContactID != nil {
			if err := assignSupport(ctx, r, actor, event, *req.SupportContactID); err != nil {
				return err
			}
		}

		return r.Events.Update(ctx, event)
	})
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to update event")
		return nil, err
	}

	s.log.Info().Int64("event_id", event.ID).Msg("Event updated successfully")
	return event, nil
}

// assignSupport changes the support contact of an existing event.
func assignSupport(ctx context.Context, r *repository.Repositories, actor domain.Identity, event *repository.Event, userID int64) error {
	if err := domain.CanAssignSupport(actor); err != nil {
		return err
	}
	return setSupport(ctx, r, event, userID)
}

// setSupport points the event at a support user, or clears it for id 0.
func setSupport(ctx context.Context, r *repository.Repositories, event *repository.Event, userID int64) error {
	if userID == 0 {
		event.SupportContactID = nil
		event.SupportContact = nil
		return domain.ValidateSupportAssignee(nil)
	}

	user, err := r.Users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := domain.ValidateSupportAssignee(&user.Role); err != nil {
		return err
	}

	event.SupportContactID = &user.ID
	event.SupportContact = &user.Name
	return nil
}

// ListWithoutSupport lists events no support user is assigned to.
func (s *EventService) ListWithoutSupport(ctx context.Context) ([]*repository.Event, error) {
	return s.list(ctx, repository.EventFilter{Unassigned: true})
}

// ListForSupport lists the events assigned to the actor.
func (s *EventService) ListForSupport(ctx context.Context, actor domain.Identity) ([]*repository.Event, error) {
	return s.list(ctx, repository.EventFilter{SupportContactID: actor.UserID})
}

// ListEvents lists every event.
func (s *EventService) ListEvents(ctx context.Context) ([]*repository.Event, error) {
	return s.list(ctx, repository.EventFilter{})
}

func (s *EventService) list(ctx context.Context, filter repository.EventFilter) ([]*repository.Event, error) {
	var events []*repository.Event
	err := s.store.UnitOfWork(ctx, func(r *repository.Repositories) error {
		var err error
		events, err = r.Events.List(ctx, filter)
		return err
	})
	return events, err
}
