package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/gofrs/uuid/v5"

	"homeboard/internal/errs"
	"homeboard/internal/models"
	"homeboard/internal/providers"
	"homeboard/internal/storage"
)

const popupEventName = "popup"

type PopupServiceInterface interface {
	Active(ctx context.Context) ([]models.Popup, error)
	History(ctx context.Context) ([]models.Popup, error)
	Create(ctx context.Context, in models.PopupInput) (models.Popup, error)
	Update(ctx context.Context, id string, in models.PopupInput) (models.Popup, error)
	ClearAll(ctx context.Context) error
}

// PopupService serializes popup writes together with their push events, so
// displays see upserts and clears in the order they were stored.
type PopupService struct {
	mu       sync.Mutex
	store    storage.Store
	notifier Notifier
	identity DeviceIdentity
	logger   providers.Logger
	clock    models.Clock
}

func NewPopupService(store storage.Store, notifier Notifier, identity DeviceIdentity, logger providers.Logger, clock models.Clock) *PopupService {
	return &PopupService{
		store:    store,
		notifier: notifier,
		identity: identity,
		logger:   logger,
		clock:    clock,
	}
}

func (s *PopupService) Active(ctx context.Context) ([]models.Popup, error) {
	popups, err := s.store.ListActivePopups(ctx, s.clock())
	if err != nil {
		return nil, fmt.Errorf("list active popups: %w", err)
	}
	return popups, nil
}

// History returns every popup ever created, hidden ones included.
func (s *PopupService) History(ctx context.Context) ([]models.Popup, error) {
	popups, err := s.store.ListPopups(ctx)
	if err != nil {
		return nil, fmt.Errorf("list popups: %w", err)
	}
	return popups, nil
}

func (s *PopupService) Create(ctx context.Context, in models.PopupInput) (models.Popup, error) {
	if in.Message == nil || *in.Message == "" {
		return models.Popup{}, fmt.Errorf("%w: message is required", errs.ErrValidation)
	}
	id, err := uuid.NewV4()
	if err != nil {
		return models.Popup{}, fmt.Errorf("generate popup id: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p := models.NewPopup(id.String(), in, s.clock())
	if err := s.store.UpsertPopup(ctx, p); err != nil {
		return models.Popup{}, fmt.Errorf("create popup: %w", err)
	}
	s.notify(ctx, models.PopupEvent{Action: models.PopupActionUpsert, Popup: &p, ID: p.ID})
	return p, nil
}

// Update returns errs.ErrNotFound for an unknown id.
func (s *PopupService) Update(ctx context.Context, id string, in models.PopupInput) (models.Popup, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.store.GetPopup(ctx, id)
	if err != nil {
		return models.Popup{}, err
	}

	p := in.Apply(current, s.clock())
	if err := s.store.UpsertPopup(ctx, p); err != nil {
		return models.Popup{}, fmt.Errorf("update popup: %w", err)
	}
	s.notify(ctx, models.PopupEvent{Action: models.PopupActionUpsert, Popup: &p, ID: p.ID})
	return p, nil
}

func (s *PopupService) ClearAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.ClearPopups(ctx, s.clock()); err != nil {
		return fmt.Errorf("clear popups: %w", err)
	}
	s.notify(ctx, models.PopupEvent{Action: models.PopupActionClear})
	return nil
}

func (s *PopupService) notify(ctx context.Context, ev models.PopupEvent) {
	id, err := s.identity.DeviceID(ctx)
	if err != nil {
		s.logger.Errorf(providers.TypePush, "skip popup broadcast: %v", err)
		return
	}
	s.notifier.BroadcastEvent(id, popupEventName, ev)
}
